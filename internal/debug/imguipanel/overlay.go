// Package imguipanel draws a debug.Panel as a Dear ImGui window on top of a
// GLFW window. It needs the window's OpenGL context current on the calling
// thread for New, Draw and Dispose.
package imguipanel

import (
	"fmt"
	"math"
	"time"

	"GopherStage/internal/debug"
	"GopherStage/internal/host"

	"github.com/inkyblackness/imgui-go/v4"
	"go.uber.org/zap"
)

// Surface is the window the overlay draws into.
type Surface interface {
	Size() (int, int)
	FramebufferSize() (int, int)
	MakeContextCurrent()
}

type Overlay struct {
	ctx      *imgui.Context
	io       imgui.IO
	surface  Surface
	panel    *debug.Panel
	gl       *glRenderer
	log      *zap.Logger
	mouse    imgui.Vec2
	down     [3]bool
	pressed  [3]bool
	lastDraw time.Time
}

func New(surface Surface, panel *debug.Panel, log *zap.Logger) (*Overlay, error) {
	surface.MakeContextCurrent()
	ctx := imgui.CreateContext(nil)
	io := imgui.CurrentIO()
	io.SetIniFilename("")

	r, err := newGLRenderer(io)
	if err != nil {
		ctx.Destroy()
		return nil, fmt.Errorf("debug overlay: %w", err)
	}
	return &Overlay{
		ctx:     ctx,
		io:      io,
		surface: surface,
		panel:   panel,
		gl:      r,
		log:     log,
		mouse:   imgui.Vec2{X: -math.MaxFloat32, Y: -math.MaxFloat32},
	}, nil
}

func buttonIndex(b host.PointerButton) (int, bool) {
	switch b {
	case host.ButtonPrimary:
		return 0, true
	case host.ButtonSecondary:
		return 1, true
	case host.ButtonMiddle:
		return 2, true
	}
	return 0, false
}

// HandlePointer feeds ev to the GUI. Presses are latched until the next Draw
// so a click shorter than a frame still registers.
func (o *Overlay) HandlePointer(ev host.PointerEvent) {
	o.mouse = imgui.Vec2{X: float32(ev.X), Y: float32(ev.Y)}
	switch ev.Kind {
	case host.PointerDown:
		if i, ok := buttonIndex(ev.Button); ok {
			o.down[i] = true
			o.pressed[i] = true
		}
	case host.PointerUp:
		if i, ok := buttonIndex(ev.Button); ok {
			o.down[i] = false
		}
	case host.PointerWheel:
		o.io.AddMouseWheelDelta(0, float32(-ev.DeltaY/100))
	}
}

func (o *Overlay) WantsPointer() bool {
	return o.io.WantCaptureMouse()
}

// Draw lays out the panel and renders it over the current frame.
func (o *Overlay) Draw() {
	if o.ctx == nil || !o.panel.Active() {
		return
	}
	w, h := o.surface.Size()
	fbW, fbH := o.surface.FramebufferSize()
	if w <= 0 || h <= 0 {
		return
	}
	o.surface.MakeContextCurrent()
	o.newFrame(float32(w), float32(h))

	imgui.NewFrame()
	imgui.SetNextWindowPosV(imgui.Vec2{X: float32(w) - 310, Y: 10}, imgui.ConditionFirstUseEver, imgui.Vec2{})
	imgui.SetNextWindowSizeV(imgui.Vec2{X: 300, Y: 0}, imgui.ConditionFirstUseEver)
	if imgui.BeginV("Debug", nil, imgui.WindowFlagsAlwaysAutoResize) {
		if err := o.panel.Draw(imguiUI{}); err != nil {
			o.log.Warn("Debug edit rejected", zap.Error(err))
		}
	}
	imgui.End()
	imgui.Render()

	o.gl.render([2]float32{float32(w), float32(h)}, [2]float32{float32(fbW), float32(fbH)}, imgui.RenderedDrawData())
}

func (o *Overlay) newFrame(w, h float32) {
	o.io.SetDisplaySize(imgui.Vec2{X: w, Y: h})

	now := time.Now()
	dt := float32(1.0 / 60.0)
	if !o.lastDraw.IsZero() {
		if d := float32(now.Sub(o.lastDraw).Seconds()); d > 0 {
			dt = d
		}
	}
	o.lastDraw = now
	o.io.SetDeltaTime(dt)

	o.io.SetMousePosition(o.mouse)
	for i := range o.down {
		o.io.SetMouseButtonDown(i, o.down[i] || o.pressed[i])
		o.pressed[i] = false
	}
}

func (o *Overlay) Dispose() {
	if o.ctx == nil {
		return
	}
	o.surface.MakeContextCurrent()
	o.gl.dispose()
	o.ctx.Destroy()
	o.ctx = nil
}

// imguiUI draws panel widgets with imgui.
type imguiUI struct{}

func (imguiUI) Folder(name string) bool {
	return imgui.TreeNodeV(name, imgui.TreeNodeFlagsDefaultOpen)
}

func (imguiUI) EndFolder() { imgui.TreePop() }

func (imguiUI) SliderFloat(label string, v *float32, min, max float32) bool {
	return imgui.SliderFloatV(label, v, min, max, "%.3f", 0)
}

func (imguiUI) DragFloat(label string, v *float32, speed float32) bool {
	return imgui.DragFloatV(label, v, speed, 0, 0, "%.3f", 0)
}

func (imguiUI) Checkbox(label string, v *bool) bool {
	return imgui.Checkbox(label, v)
}

func (imguiUI) ColorEdit3(label string, v *[3]float32) bool {
	return imgui.ColorEdit3V(label, v, 0)
}
