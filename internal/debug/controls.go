package debug

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

type control struct {
	key   string
	label string
	path  string
}

func newControl(f *Folder, key string) control {
	return control{key: key, label: key, path: join(f.path, key)}
}

func (c *control) Label() string { return c.label }
func (c *control) Path() string  { return c.path }

// Float is a numeric control. Set values are snapped to Step and then
// clamped to the range.
type Float struct {
	control
	target   *float32
	min, max float32
	step     float32
	ranged   bool
	onChange []func(float32)
}

func (c *Float) Name(label string) *Float {
	c.label = label
	return c
}

func (c *Float) Range(min, max float32) *Float {
	c.min, c.max, c.ranged = min, max, true
	return c
}

func (c *Float) Step(step float32) *Float {
	c.step = step
	return c
}

func (c *Float) OnChange(fn func(float32)) *Float {
	c.onChange = append(c.onChange, fn)
	return c
}

func (c *Float) Value() any { return *c.target }

func (c *Float) set(v any) error {
	f, err := toFloat(v)
	if err != nil {
		return err
	}
	if c.step > 0 {
		f = math.Round(f/float64(c.step)) * float64(c.step)
	}
	if c.ranged {
		f = math.Max(float64(c.min), math.Min(float64(c.max), f))
	}
	*c.target = float32(f)
	for _, fn := range c.onChange {
		fn(*c.target)
	}
	return nil
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float32:
		return float64(n), nil
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidValue, n)
		}
		return f, nil
	}
	return 0, fmt.Errorf("%w: %T is not a number", ErrInvalidValue, v)
}

type Bool struct {
	control
	target   *bool
	onChange []func(bool)
}

func (c *Bool) Name(label string) *Bool {
	c.label = label
	return c
}

func (c *Bool) OnChange(fn func(bool)) *Bool {
	c.onChange = append(c.onChange, fn)
	return c
}

func (c *Bool) Value() any { return *c.target }

func (c *Bool) set(v any) error {
	var b bool
	switch x := v.(type) {
	case bool:
		b = x
	case string:
		var err error
		if b, err = strconv.ParseBool(x); err != nil {
			return fmt.Errorf("%w: %q is not a boolean", ErrInvalidValue, x)
		}
	default:
		return fmt.Errorf("%w: %T is not a boolean", ErrInvalidValue, v)
	}
	*c.target = b
	for _, fn := range c.onChange {
		fn(b)
	}
	return nil
}

type Color struct {
	control
	target   *mgl32.Vec3
	onChange []func(mgl32.Vec3)
}

func (c *Color) Name(label string) *Color {
	c.label = label
	return c
}

func (c *Color) OnChange(fn func(mgl32.Vec3)) *Color {
	c.onChange = append(c.onChange, fn)
	return c
}

// Value is the color as "#rrggbb".
func (c *Color) Value() any { return FormatHex(*c.target) }

func (c *Color) set(v any) error {
	var col mgl32.Vec3
	switch x := v.(type) {
	case mgl32.Vec3:
		col = x
	case string:
		var err error
		if col, err = ParseHex(x); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: %T is not a color", ErrInvalidValue, v)
	}
	for i := range col {
		col[i] = mgl32.Clamp(col[i], 0, 1)
	}
	*c.target = col
	for _, fn := range c.onChange {
		fn(col)
	}
	return nil
}

// ParseHex reads "#rrggbb" or "rrggbb".
func ParseHex(s string) (mgl32.Vec3, error) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return mgl32.Vec3{}, fmt.Errorf("%w: %q is not #rrggbb", ErrInvalidValue, s)
	}
	n, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return mgl32.Vec3{}, fmt.Errorf("%w: %q is not #rrggbb", ErrInvalidValue, s)
	}
	return mgl32.Vec3{
		float32(n>>16&0xff) / 255,
		float32(n>>8&0xff) / 255,
		float32(n&0xff) / 255,
	}, nil
}

func FormatHex(c mgl32.Vec3) string {
	b := func(f float32) uint8 {
		return uint8(math.Round(float64(mgl32.Clamp(f, 0, 1)) * 255))
	}
	return fmt.Sprintf("#%02x%02x%02x", b(c[0]), b(c[1]), b(c[2]))
}
