package water

import (
	"testing"
	"time"

	"GopherStage/internal/clock"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSimulationBuildsWaves(t *testing.T) {
	ws := NewSimulation(10, 0.1, 8)
	require.Len(t, ws.Waves, MaxWaves)
	assert.Equal(t, 81, ws.Mesh.Geometry.VertexCount())

	for i, w := range ws.Waves {
		assert.InDelta(t, 1, w.Direction.Len(), 1e-5, "wave %d", i)
		assert.Greater(t, w.Speed, float32(0))
	}
	assert.InDelta(t, 0.1*(1.2+0.8+0.6+0.4), ws.MaxHeight(), 1e-5)
}

func TestUpdateStaysWithinMaxHeight(t *testing.T) {
	ws := NewSimulation(10, 0.2, 16)
	ws.Start()
	version := ws.Mesh.Geometry.Version

	ws.Update(clock.Frame{Elapsed: 1500 * time.Millisecond})
	assert.Greater(t, ws.Mesh.Geometry.Version, version)

	limit := ws.MaxHeight() + 1e-4
	moved := false
	for i := 0; i < ws.Mesh.Geometry.VertexCount(); i++ {
		z := ws.Mesh.Geometry.Position(i).Z()
		assert.LessOrEqual(t, z, limit)
		assert.GreaterOrEqual(t, z, -limit)
		if z != 0 {
			moved = true
		}
	}
	assert.True(t, moved)
}

func TestUpdateIsRelativeToRest(t *testing.T) {
	ws := NewSimulation(10, 0.2, 4)
	frame := clock.Frame{Elapsed: 2 * time.Second}

	ws.Update(frame)
	first := append([]float32(nil), ws.Mesh.Geometry.Positions...)
	ws.Update(clock.Frame{Elapsed: 3 * time.Second})
	ws.Update(frame)
	assert.Equal(t, first, ws.Mesh.Geometry.Positions)
}

func TestZeroHeightIsFlat(t *testing.T) {
	ws := NewSimulation(10, 0.5, 4)
	ws.Height = 0
	assert.Equal(t, mgl32.Vec3{}, ws.Displacement(1, 2, 3))
}

func TestApplyConfig(t *testing.T) {
	ws := NewSimulation(10, 0.1, 4)
	cfg := ws.GetConfig()
	cfg.BaseAmplitude = 0.3
	cfg.Color = [3]float32{1, 0, 0}
	cfg.Wireframe = true
	ws.ApplyConfig(cfg)

	assert.InDelta(t, 0.3*1.2, ws.Waves[0].Amplitude, 1e-6)
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, ws.Mesh.Material.Color)
	assert.True(t, ws.Mesh.Material.Wireframe)
	assert.Equal(t, cfg, ws.GetConfig())
}
