package assets

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"GopherStage/internal/logger"
	"GopherStage/internal/scene"

	"go.uber.org/zap"
)

type faceVertex struct {
	v, vt, vn int32
}

// ParseOBJ reads Wavefront OBJ text into an indexed geometry. Every distinct
// position/uv/normal triple becomes one vertex. Quads and larger polygons are
// fan triangulated. Normals are computed when the file has none or when
// recalculateNormals is set.
func ParseOBJ(r io.Reader, name string, recalculateNormals bool) (*scene.Geometry, error) {
	var positions, uvs, normals []float32
	var faces []faceVertex

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 || strings.HasPrefix(parts[0], "#") {
			continue
		}
		switch parts[0] {
		case "v":
			v, err := parseFloats(parts[1:], 3)
			if err != nil {
				return nil, fmt.Errorf("%s:%d: vertex: %w", name, lineNo, err)
			}
			positions = append(positions, v...)
		case "vt":
			vt, err := parseFloats(parts[1:], 2)
			if err != nil {
				return nil, fmt.Errorf("%s:%d: texture coordinate: %w", name, lineNo, err)
			}
			uvs = append(uvs, vt...)
		case "vn":
			vn, err := parseFloats(parts[1:], 3)
			if err != nil {
				return nil, fmt.Errorf("%s:%d: normal: %w", name, lineNo, err)
			}
			normals = append(normals, vn...)
		case "f":
			face, err := parseFace(parts[1:], len(positions)/3, len(uvs)/2, len(normals)/3)
			if err != nil {
				return nil, fmt.Errorf("%s:%d: face: %w", name, lineNo, err)
			}
			faces = append(faces, face...)
		case "mtllib", "usemtl", "o", "g", "s":
			// materials and grouping are not carried into a single geometry
		default:
			logger.Log.Debug("Skipping OBJ statement", zap.String("file", name), zap.String("statement", parts[0]))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if len(faces) == 0 {
		return nil, fmt.Errorf("%s: no faces", name)
	}

	geo := &scene.Geometry{Name: name}
	hasNormals := false
	index := make(map[faceVertex]uint32, len(faces))
	for _, fv := range faces {
		if idx, ok := index[fv]; ok {
			geo.Indices = append(geo.Indices, idx)
			continue
		}
		idx := uint32(len(geo.Positions) / 3)
		index[fv] = idx
		geo.Indices = append(geo.Indices, idx)

		geo.Positions = append(geo.Positions, positions[fv.v*3:fv.v*3+3]...)
		if fv.vt >= 0 {
			geo.UVs = append(geo.UVs, uvs[fv.vt*2:fv.vt*2+2]...)
		} else {
			geo.UVs = append(geo.UVs, 0, 0)
		}
		if fv.vn >= 0 {
			hasNormals = true
			geo.Normals = append(geo.Normals, normals[fv.vn*3:fv.vn*3+3]...)
		} else {
			geo.Normals = append(geo.Normals, 0, 1, 0)
		}
	}

	// Some models ship broken or missing normals.
	if recalculateNormals || !hasNormals {
		geo.ComputeVertexNormals()
	}
	geo.MarkDirty()

	logger.Log.Debug("OBJ parsed",
		zap.String("file", name),
		zap.Int("sourceVertices", len(positions)/3),
		zap.Int("vertices", geo.VertexCount()),
		zap.Int("triangles", geo.TriangleCount()))
	return geo, nil
}

// parseFloats reads at least n numbers; extra components (w) are dropped.
func parseFloats(parts []string, n int) ([]float32, error) {
	if len(parts) < n {
		return nil, fmt.Errorf("want %d components, got %d", n, len(parts))
	}
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		val, err := strconv.ParseFloat(parts[i], 32)
		if err != nil {
			return nil, fmt.Errorf("invalid value %q: %w", parts[i], err)
		}
		out[i] = float32(val)
	}
	return out, nil
}

func parseFace(parts []string, nv, nvt, nvn int) ([]faceVertex, error) {
	if len(parts) < 3 {
		return nil, fmt.Errorf("want at least 3 vertices, got %d", len(parts))
	}
	face := make([]faceVertex, 0, len(parts))
	for _, part := range parts {
		vals := strings.Split(part, "/")

		v, err := parseIndex(vals[0], nv)
		if err != nil {
			return nil, err
		}
		fv := faceVertex{v: v, vt: -1, vn: -1}
		if len(vals) > 1 && vals[1] != "" {
			if fv.vt, err = parseIndex(vals[1], nvt); err != nil {
				return nil, err
			}
		}
		if len(vals) > 2 && vals[2] != "" {
			if fv.vn, err = parseIndex(vals[2], nvn); err != nil {
				return nil, err
			}
		}
		face = append(face, fv)
	}

	if len(face) == 3 {
		return face, nil
	}
	tris := make([]faceVertex, 0, (len(face)-2)*3)
	for i := 1; i < len(face)-1; i++ {
		tris = append(tris, face[0], face[i], face[i+1])
	}
	return tris, nil
}

// parseIndex converts a 1-based (or negative, relative) OBJ index to a
// 0-based one and checks it against the count seen so far.
func parseIndex(s string, count int) (int32, error) {
	i, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid index %q: %w", s, err)
	}
	switch {
	case i > 0:
		i--
	case i < 0:
		i += int64(count)
	default:
		return 0, fmt.Errorf("index 0 is not valid")
	}
	if i < 0 || i >= int64(count) {
		return 0, fmt.Errorf("index %s out of range (%d defined)", s, count)
	}
	return int32(i), nil
}
