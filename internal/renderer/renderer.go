package renderer

import (
	"fmt"

	"GopherStage/internal/scene"

	"github.com/go-gl/mathgl/mgl32"
)

// Power preferences a renderer backend may be asked for.
const (
	PowerDefault         = "default"
	PowerHighPerformance = "high-performance"
	PowerLowPower        = "low-power"
)

// Sizer is anything that follows the viewport size, such as a renderer or
// a post-processing composer.
type Sizer interface {
	SetSize(width, height int)
}

// PixelRatioSetter is implemented by resize targets that also track the
// device pixel ratio.
type PixelRatioSetter interface {
	SetPixelRatio(ratio float64)
}

// Render draws a scene from a camera into a surface. Size is in logical
// pixels; the drawing buffer is Size scaled by PixelRatio.
type Render interface {
	Sizer
	PixelRatioSetter
	Size() (int, int)
	PixelRatio() float64
	DrawingBufferSize() (int, int)
	Render(sc *scene.Scene, camera *Camera)
	Cleanup()
}

// Options are forwarded from surface creation to the backend.
type Options struct {
	Antialias       bool
	PowerPreference string
	ClearColor      mgl32.Vec3
}

func (o Options) Validate() error {
	switch o.PowerPreference {
	case "", PowerDefault, PowerHighPerformance, PowerLowPower:
		return nil
	}
	return fmt.Errorf("unknown power preference %q", o.PowerPreference)
}

// Viewport is the size bookkeeping shared by backends. Embed it to get the
// sizing half of Render.
type Viewport struct {
	width, height int
	pixelRatio    float64
}

func (v *Viewport) SetSize(width, height int) {
	v.width, v.height = max(width, 0), max(height, 0)
}

func (v *Viewport) Size() (int, int) {
	return v.width, v.height
}

func (v *Viewport) SetPixelRatio(ratio float64) {
	if ratio <= 0 {
		ratio = 1
	}
	v.pixelRatio = ratio
}

func (v *Viewport) PixelRatio() float64 {
	if v.pixelRatio <= 0 {
		return 1
	}
	return v.pixelRatio
}

func (v *Viewport) DrawingBufferSize() (int, int) {
	r := v.PixelRatio()
	return int(float64(v.width) * r), int(float64(v.height) * r)
}
