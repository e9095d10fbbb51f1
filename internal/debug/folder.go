package debug

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Folder groups controls under a name.
type Folder struct {
	Name     string
	path     string
	panel    *Panel
	folders  []*Folder
	controls []Control
}

// Folder returns the named sub folder, creating it if needed.
func (f *Folder) Folder(name string) *Folder {
	for _, sub := range f.folders {
		if sub.Name == name {
			return sub
		}
	}
	sub := &Folder{Name: name, path: join(f.path, name), panel: f.panel}
	if f.panel.Active() {
		f.folders = append(f.folders, sub)
	}
	return sub
}

func (f *Folder) register(c Control) {
	if f.panel.Active() {
		f.controls = append(f.controls, c)
	}
}

func (f *Folder) walk(fn func(Control)) {
	for _, c := range f.controls {
		fn(c)
	}
	for _, sub := range f.folders {
		sub.walk(fn)
	}
}

// AddFloat binds a number to target. Chain Range, Step and OnChange to
// configure it.
func (f *Folder) AddFloat(key string, target *float32) *Float {
	c := &Float{control: newControl(f, key), target: target}
	f.register(c)
	return c
}

func (f *Folder) AddBool(key string, target *bool) *Bool {
	c := &Bool{control: newControl(f, key), target: target}
	f.register(c)
	return c
}

// AddColor binds an RGB color with components in [0, 1].
func (f *Folder) AddColor(key string, target *mgl32.Vec3) *Color {
	c := &Color{control: newControl(f, key), target: target}
	f.register(c)
	return c
}

func join(dir, name string) string {
	if dir == "" {
		return name
	}
	return dir + "/" + name
}
