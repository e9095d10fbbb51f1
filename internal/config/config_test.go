package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, float32(75), cfg.Camera.Fov)
	assert.Equal(t, float32(0.1), cfg.Camera.Near)
	assert.Equal(t, float32(2000), cfg.Camera.Far)
	assert.Equal(t, float32(3), cfg.Camera.DepthOffset)
	assert.Equal(t, 2.0, cfg.Viewport.PixelRatioCap)
	assert.Equal(t, "default-webgl", cfg.Host.CanvasID)
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverlaysFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stage.toml")
	data := `
[viewport]
width = 1280
height = 720

[camera]
fov = 45

[assets]
timeout_ms = 250
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 1280, cfg.Viewport.Width)
	assert.Equal(t, 720, cfg.Viewport.Height)
	assert.Equal(t, float32(45), cfg.Camera.Fov)
	// untouched keys keep their defaults
	assert.Equal(t, float32(2000), cfg.Camera.Far)
	assert.Equal(t, 2.0, cfg.Viewport.PixelRatioCap)
	assert.Equal(t, 250*time.Millisecond, cfg.Assets.Timeout())
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stage.toml")
	require.NoError(t, os.WriteFile(path, []byte("[camera]\nnear = 10.0\nfar = 1.0\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsMalformedToml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stage.toml")
	require.NoError(t, os.WriteFile(path, []byte("[viewport\nwidth = "), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stage.toml")
	cfg := Default()
	cfg.Host.Title = "saved"
	cfg.Debug.Active = true

	require.NoError(t, Save(path, cfg))
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestFrameInterval(t *testing.T) {
	assert.Equal(t, time.Second/30, LoopConfig{HeadlessFPS: 30}.FrameInterval())
	assert.Equal(t, time.Second/60, LoopConfig{}.FrameInterval())
}

func TestWriteEncodesSections(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, Default()))

	out := buf.String()
	assert.Contains(t, out, "[viewport]")
	assert.Contains(t, out, "canvas_id")
	assert.Contains(t, out, "default-webgl")
}

func TestFixedStep(t *testing.T) {
	assert.Equal(t, 20*time.Millisecond, Default().Loop.FixedStep())
	assert.Zero(t, LoopConfig{}.FixedStep())
}

func TestLoadWaterSection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stage.toml")
	data := `
[water]
height = 2.5
color = [0.1, 0.2, 0.3]
wireframe = false
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, float32(2.5), cfg.Water.Height)
	assert.Equal(t, [3]float32{0.1, 0.2, 0.3}, cfg.Water.Color)
	assert.False(t, cfg.Water.Wireframe)
	assert.Equal(t, float32(10), cfg.Water.Size)
}

func TestValidateRejectsBadWaterAndStep(t *testing.T) {
	cfg := Default()
	cfg.Water.Size = 0
	cfg.Loop.FixedStepHz = -1
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "water size")
	assert.Contains(t, err.Error(), "fixed_step_hz")
}
