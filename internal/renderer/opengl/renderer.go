// Package opengl is the go-gl 4.1 core backend of renderer.Render.
package opengl

import (
	"fmt"
	"sync"

	"GopherStage/internal/logger"
	"GopherStage/internal/renderer"
	"GopherStage/internal/scene"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// Context is the GL context a renderer draws into, typically a window.
type Context interface {
	MakeContextCurrent()
}

// Framebuffer is implemented by contexts that know their drawable size in
// physical pixels.
type Framebuffer interface {
	FramebufferSize() (int, int)
}

// viewportSize is the area GL draws into. A window framebuffer cannot be
// shrunk, so it is always covered in full and the pixel ratio cap only
// limits the reported drawing buffer size. Contexts without a framebuffer
// size use the drawing buffer.
func viewportSize(ctx Context, bufferW, bufferH int) (int, int) {
	if fb, ok := ctx.(Framebuffer); ok {
		if w, h := fb.FramebufferSize(); w > 0 && h > 0 {
			return w, h
		}
	}
	return bufferW, bufferH
}

const defaultTextureName = "__default_white"

type gpuGeometry struct {
	VAO, VBO, EBO uint32
	IndexCount    int32
	version       uint64
}

type OpenGLRenderer struct {
	renderer.Viewport

	ctx      Context
	opts     renderer.Options
	shader   Shader
	textures *renderer.TextureManager

	defaultTexture uint32
	geometries     map[*scene.Geometry]*gpuGeometry
	textureIDs     map[*scene.Texture]uint32

	// Dispose hooks may fire off the render thread; GL deletes wait here
	// until the next Render.
	mu               sync.Mutex
	pendingGeometry  []*scene.Geometry
	pendingTextures  []*scene.Texture
	currentTextureID uint32
}

// New initializes GL on ctx and compiles the basic shader.
func New(ctx Context, opts renderer.Options) (*OpenGLRenderer, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	ctx.MakeContextCurrent()
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("OpenGL initialization failed: %w", err)
	}

	rend := &OpenGLRenderer{
		ctx:        ctx,
		opts:       opts,
		shader:     NewBasicShader(),
		textures:   renderer.NewTextureManager(TextureUploader{}),
		geometries: make(map[*scene.Geometry]*gpuGeometry),
		textureIDs: make(map[*scene.Texture]uint32),
	}
	if err := rend.shader.Compile(); err != nil {
		return nil, err
	}
	id, err := rend.textures.CreateTextureFromImage(whitePixel(), defaultTextureName)
	if err != nil {
		rend.shader.Delete()
		return nil, err
	}
	rend.defaultTexture = id
	if opts.Antialias {
		gl.Enable(gl.MULTISAMPLE)
	}

	logger.Log.Info("OpenGL render initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.Bool("antialias", opts.Antialias),
		zap.String("powerPreference", opts.PowerPreference))
	return rend, nil
}

func (rend *OpenGLRenderer) Render(sc *scene.Scene, camera *renderer.Camera) {
	if sc == nil || camera == nil {
		return
	}
	rend.ctx.MakeContextCurrent()
	rend.releasePending()

	w, h := viewportSize(rend.ctx, rend.DrawingBufferSize())
	gl.Viewport(0, 0, int32(w), int32(h))

	bg := sc.Background
	if bg == (mgl32.Vec3{}) {
		bg = rend.opts.ClearColor
	}
	gl.ClearColor(bg.X(), bg.Y(), bg.Z(), 1.0)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	gl.Enable(gl.DEPTH_TEST)
	gl.DepthMask(true)

	rend.shader.Use()
	rend.shader.SetMat4("viewProjection", camera.GetViewProjection())
	rend.shader.SetInt("textureSampler", 0)
	gl.ActiveTexture(gl.TEXTURE0)
	rend.currentTextureID = 0

	frustum := camera.CalculateFrustum()
	for _, mesh := range scene.VisibleMeshes(sc) {
		if mesh.Geometry == nil || mesh.Geometry.TriangleCount() == 0 {
			continue
		}
		center, radius := mesh.WorldBoundingSphere()
		if !frustum.IntersectsSphere(center, radius) {
			continue
		}
		rend.drawMesh(mesh)
	}

	gl.BindVertexArray(0)
	gl.Disable(gl.BLEND)
	gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
	gl.Disable(gl.DEPTH_TEST)
}

func (rend *OpenGLRenderer) drawMesh(mesh *scene.Mesh) {
	gpu := rend.upload(mesh.Geometry)
	mat := mesh.Material

	rend.shader.SetMat4("model", mesh.WorldMatrix())
	rend.shader.SetVec3("diffuseColor", mat.Color)
	rend.shader.SetFloat("opacity", mat.Opacity)

	textureID := rend.defaultTexture
	repeat := mgl32.Vec2{1, 1}
	if mat.Map != nil {
		textureID = rend.textureFor(mat.Map)
		repeat = mat.Map.Repeat
	}
	rend.shader.SetVec2("uvRepeat", repeat)
	if textureID != rend.currentTextureID {
		gl.BindTexture(gl.TEXTURE_2D, textureID)
		rend.currentTextureID = textureID
	}

	if mat.Transparent || mat.Opacity < 1 {
		gl.Enable(gl.BLEND)
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	} else {
		gl.Disable(gl.BLEND)
	}
	if mat.Wireframe {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
	} else {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
	}

	gl.BindVertexArray(gpu.VAO)
	gl.DrawElements(gl.TRIANGLES, gpu.IndexCount, gl.UNSIGNED_INT, nil)
}

// upload creates GL buffers on first use and refreshes them when the
// geometry version changes.
func (rend *OpenGLRenderer) upload(g *scene.Geometry) *gpuGeometry {
	gpu, ok := rend.geometries[g]
	if ok && gpu.version == g.Version {
		return gpu
	}
	interleaved := g.Interleaved()
	if !ok {
		gpu = &gpuGeometry{}
		gl.GenVertexArrays(1, &gpu.VAO)
		gl.GenBuffers(1, &gpu.VBO)
		gl.GenBuffers(1, &gpu.EBO)
		rend.geometries[g] = gpu
		g.OnDispose(func() {
			rend.mu.Lock()
			rend.pendingGeometry = append(rend.pendingGeometry, g)
			rend.mu.Unlock()
		})
	}

	gl.BindVertexArray(gpu.VAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, gpu.VBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(interleaved)*4, gl.Ptr(interleaved), gl.STATIC_DRAW)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, gpu.EBO)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(g.Indices)*4, gl.Ptr(g.Indices), gl.STATIC_DRAW)

	stride := int32(scene.FloatsPerVertex * 4)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, stride, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(1, 2, gl.FLOAT, false, stride, gl.PtrOffset(3*4))
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointer(2, 3, gl.FLOAT, false, stride, gl.PtrOffset(5*4))
	gl.EnableVertexAttribArray(2)

	gpu.IndexCount = int32(len(g.Indices))
	gpu.version = g.Version
	return gpu
}

func (rend *OpenGLRenderer) textureFor(tex *scene.Texture) uint32 {
	if id, ok := rend.textureIDs[tex]; ok {
		return id
	}
	if tex.Image == nil {
		return rend.defaultTexture
	}
	key := tex.Source
	if key == "" {
		key = fmt.Sprintf("%p", tex)
	}
	id, err := rend.textures.CreateTextureFromImage(tex.Image, key)
	if err != nil {
		logger.Log.Error("Texture upload failed", zap.String("source", tex.Source), zap.Error(err))
		rend.textureIDs[tex] = rend.defaultTexture
		return rend.defaultTexture
	}
	rend.textureIDs[tex] = id
	tex.OnDispose(func() {
		rend.mu.Lock()
		rend.pendingTextures = append(rend.pendingTextures, tex)
		rend.mu.Unlock()
	})
	return id
}

func (rend *OpenGLRenderer) releasePending() {
	rend.mu.Lock()
	geometries := rend.pendingGeometry
	textures := rend.pendingTextures
	rend.pendingGeometry = nil
	rend.pendingTextures = nil
	rend.mu.Unlock()

	for _, g := range geometries {
		if gpu, ok := rend.geometries[g]; ok {
			rend.deleteGeometry(gpu)
			delete(rend.geometries, g)
		}
	}
	for _, tex := range textures {
		if id, ok := rend.textureIDs[tex]; ok {
			if id != rend.defaultTexture {
				rend.textures.ReleaseTexture(id)
			}
			delete(rend.textureIDs, tex)
		}
	}
}

func (rend *OpenGLRenderer) deleteGeometry(gpu *gpuGeometry) {
	gl.DeleteVertexArrays(1, &gpu.VAO)
	gl.DeleteBuffers(1, &gpu.VBO)
	gl.DeleteBuffers(1, &gpu.EBO)
}

func (rend *OpenGLRenderer) Cleanup() {
	rend.ctx.MakeContextCurrent()
	for g, gpu := range rend.geometries {
		rend.deleteGeometry(gpu)
		delete(rend.geometries, g)
	}
	rend.textures.LogStats()
	rend.textures.Clear()
	rend.textureIDs = make(map[*scene.Texture]uint32)
	rend.shader.Delete()
	logger.Log.Info("OpenGL renderer cleaned up")
}
