package debug

import (
	"errors"

	"github.com/go-gl/mathgl/mgl32"
)

// UI is an immediate mode GUI the panel draws itself on every frame. Widget
// methods edit v in place and report whether the user changed it.
type UI interface {
	// Folder opens a collapsible group. EndFolder is only called when it
	// returns true.
	Folder(name string) bool
	EndFolder()
	SliderFloat(label string, v *float32, min, max float32) bool
	DragFloat(label string, v *float32, speed float32) bool
	Checkbox(label string, v *bool) bool
	ColorEdit3(label string, v *[3]float32) bool
}

// defaultDragSpeed is used for unranged numbers without a step.
const defaultDragSpeed = 0.01

// Draw shows every folder and control on ui. Edits go through Set, so they
// are snapped, clamped and reported like any other change.
func (p *Panel) Draw(ui UI) error {
	if !p.Active() {
		return nil
	}
	return p.drawFolder(ui, p.root)
}

func (p *Panel) drawFolder(ui UI, f *Folder) error {
	var errs []error
	for _, c := range f.controls {
		if err := p.drawControl(ui, c); err != nil {
			errs = append(errs, err)
		}
	}
	for _, sub := range f.folders {
		if !ui.Folder(sub.Name) {
			continue
		}
		errs = append(errs, p.drawFolder(ui, sub))
		ui.EndFolder()
	}
	return errors.Join(errs...)
}

func (p *Panel) drawControl(ui UI, c Control) error {
	switch c := c.(type) {
	case *Float:
		v := *c.target
		var changed bool
		if c.ranged {
			changed = ui.SliderFloat(c.label, &v, c.min, c.max)
		} else {
			speed := c.step
			if speed <= 0 {
				speed = defaultDragSpeed
			}
			changed = ui.DragFloat(c.label, &v, speed)
		}
		if changed {
			return p.Set(c.path, v)
		}
	case *Bool:
		v := *c.target
		if ui.Checkbox(c.label, &v) {
			return p.Set(c.path, v)
		}
	case *Color:
		v := [3]float32(*c.target)
		if ui.ColorEdit3(c.label, &v) {
			return p.Set(c.path, mgl32.Vec3(v))
		}
	}
	return nil
}
