// Package debug provides a tweak panel for live-editing demo parameters.
// A panel is created by whoever owns the demo and passed down explicitly.
// Controls bind to variables through pointers and are changed with Set,
// which the CLI and tests drive. Use a panel from the host thread only.
package debug

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"go.uber.org/zap"
)

var (
	ErrInactive       = errors.New("debug panel is inactive")
	ErrDisposed       = errors.New("debug panel is disposed")
	ErrUnknownControl = errors.New("unknown debug control")
	ErrInvalidValue   = errors.New("invalid debug value")
)

// Control is one tweakable value.
type Control interface {
	Label() string
	// Path is the slash separated folder path plus the control's key.
	Path() string
	Value() any
	set(v any) error
}

type Panel struct {
	active    bool
	disposed  bool
	root      *Folder
	log       *zap.Logger
	onDispose []func()
}

type Option func(*Panel)

func WithLogger(l *zap.Logger) Option {
	return func(p *Panel) { p.log = l }
}

// New creates a panel. An inactive panel hands out working controls that
// are not registered, so demo code can build its UI unconditionally.
func New(active bool, opts ...Option) *Panel {
	p := &Panel{active: active, log: zap.NewNop()}
	for _, o := range opts {
		o(p)
	}
	p.root = &Folder{panel: p}
	if active {
		p.log.Debug("Debug panel active")
	}
	return p
}

func (p *Panel) Active() bool {
	return p.active && !p.disposed
}

// Root is the top level folder.
func (p *Panel) Root() *Folder {
	return p.root
}

// Folder returns the named top level folder, creating it if needed.
func (p *Panel) Folder(name string) *Folder {
	return p.root.Folder(name)
}

// Controls lists every registered control, folders depth first.
func (p *Panel) Controls() []Control {
	var out []Control
	p.root.walk(func(c Control) { out = append(out, c) })
	return out
}

// Lookup finds a control by path.
func (p *Panel) Lookup(path string) (Control, bool) {
	var found Control
	p.root.walk(func(c Control) {
		if found == nil && c.Path() == path {
			found = c
		}
	})
	return found, found != nil
}

// Set changes the control at path and runs its change callbacks. Numbers
// accept any Go number or a decimal string; colors accept "#rrggbb".
func (p *Panel) Set(path string, value any) error {
	switch {
	case p.disposed:
		return ErrDisposed
	case !p.active:
		return ErrInactive
	}
	c, ok := p.Lookup(path)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownControl, path)
	}
	if err := c.set(value); err != nil {
		return fmt.Errorf("set %s: %w", path, err)
	}
	p.log.Debug("Debug value changed", zap.String("control", path), zap.Any("value", c.Value()))
	return nil
}

// Apply sets "path=value" assignments in order and stops at the first error.
func (p *Panel) Apply(assignments []string) error {
	for _, a := range assignments {
		path, value, ok := strings.Cut(a, "=")
		if !ok {
			return fmt.Errorf("%w: %q is not path=value", ErrInvalidValue, a)
		}
		if err := p.Set(strings.TrimSpace(path), strings.TrimSpace(value)); err != nil {
			return err
		}
	}
	return nil
}

// OnDispose registers fn to run when the panel is disposed.
func (p *Panel) OnDispose(fn func()) {
	if p.disposed {
		fn()
		return
	}
	p.onDispose = append(p.onDispose, fn)
}

// Dispose drops every control. Calling it again does nothing.
func (p *Panel) Dispose() {
	if p.disposed {
		return
	}
	p.disposed = true
	p.root = &Folder{panel: p}
	for _, fn := range p.onDispose {
		fn()
	}
	p.onDispose = nil
}

// Print writes the current controls as a table.
func (p *Panel) Print(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, c := range p.Controls() {
		fmt.Fprintf(tw, "%s\t%s\t%v\n", c.Path(), c.Label(), c.Value())
	}
	return tw.Flush()
}
