// Package water animates an ocean surface with summed Gerstner waves.
package water

import (
	"math"

	"GopherStage/internal/clock"
	"GopherStage/internal/config"
	"GopherStage/internal/scene"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	// DefaultResolution is the segment count per side of the water plane.
	DefaultResolution = 64
	// MaxWaves is the number of Gerstner waves summed per vertex.
	MaxWaves = 4
	gravity  = 9.8
)

// Wave is one Gerstner wave travelling along Direction.
type Wave struct {
	Direction mgl32.Vec2
	Amplitude float32
	// Frequency is the wave number, 2π over the wavelength.
	Frequency float32
	// Speed is the angular frequency from deep water dispersion.
	Speed     float32
	Phase     float32
	Steepness float32
}

// waveShape holds the relative amplitude and wave number of each wave. Wave
// numbers are in cycles per ocean size.
var waveShape = [MaxWaves]struct{ amp, cycles float32 }{
	{1.2, 0.8},
	{0.8, 1.5},
	{0.6, 4},
	{0.4, 8},
}

// Simulation displaces a flat plane every frame. Local X and Y span the
// surface and local Z is height; rotate the mesh to lay it flat.
type Simulation struct {
	Mesh  *scene.Mesh
	Waves []Wave

	Size          float32
	BaseAmplitude float32
	// SpeedMultiplier scales time. Height scales every amplitude.
	SpeedMultiplier float32
	Height          float32

	rest []mgl32.Vec3
}

// Config is the saveable subset of a Simulation, stored as the [water]
// section of the stage config.
type Config = config.WaterConfig

// NewSimulation builds a size x size water plane with resolution segments
// per side.
func NewSimulation(size, amplitude float32, resolution int) *Simulation {
	if resolution <= 0 {
		resolution = DefaultResolution
	}
	mat := scene.NewBasicMaterial(mgl32.Vec3{0.06, 0.22, 0.45})
	mesh := scene.NewMesh("water", scene.Plane(size, size, resolution, resolution), mat)
	mesh.SetRotation(-mgl32.DegToRad(90), 0, 0)

	ws := &Simulation{
		Mesh:            mesh,
		Size:            size,
		SpeedMultiplier: 1,
		Height:          1,
	}
	ws.setWaves(amplitude)
	return ws
}

func (ws *Simulation) setWaves(amplitude float32) {
	ws.BaseAmplitude = amplitude
	ws.Waves = make([]Wave, MaxWaves)
	for i, shape := range waveShape {
		angle := float64(i) * 45 * math.Pi / 180
		k := 2 * math.Pi * float64(shape.cycles) / float64(ws.Size)
		ws.Waves[i] = Wave{
			Direction: mgl32.Vec2{float32(math.Cos(angle)), float32(math.Sin(angle))},
			Amplitude: amplitude * shape.amp,
			Frequency: float32(k),
			Speed:     float32(math.Sqrt(gravity * k)),
			Phase:     float32(i) * math.Pi / 3,
			Steepness: 0.2 + float32(i)*0.1,
		}
	}
}

// Displacement is the offset of the rest point (x, y) at time t.
func (ws *Simulation) Displacement(x, y, t float32) mgl32.Vec3 {
	var d mgl32.Vec3
	for _, w := range ws.Waves {
		amp := w.Amplitude * ws.Height
		theta := w.Frequency*(w.Direction.X()*x+w.Direction.Y()*y) - w.Speed*t + w.Phase
		s, c := math.Sincos(float64(theta))
		horizontal := w.Steepness * amp * float32(c)
		d[0] += horizontal * w.Direction.X()
		d[1] += horizontal * w.Direction.Y()
		d[2] += amp * float32(s)
	}
	return d
}

// MaxHeight bounds the absolute vertical displacement.
func (ws *Simulation) MaxHeight() float32 {
	var sum float32
	for _, w := range ws.Waves {
		sum += w.Amplitude
	}
	return sum * ws.Height
}

// Start records the rest positions displacement is applied to.
func (ws *Simulation) Start() {
	if ws.rest != nil {
		return
	}
	geo := ws.Mesh.Geometry
	ws.rest = make([]mgl32.Vec3, geo.VertexCount())
	for i := range ws.rest {
		ws.rest[i] = geo.Position(i)
	}
}

func (ws *Simulation) Update(frame clock.Frame) {
	if ws.rest == nil {
		ws.Start()
	}
	t := float32(frame.Elapsed.Seconds()) * ws.SpeedMultiplier
	geo := ws.Mesh.Geometry
	for i, p := range ws.rest {
		geo.SetPosition(i, p.Add(ws.Displacement(p.X(), p.Y(), t)))
	}
	geo.ComputeVertexNormals()
	geo.MarkDirty()
}

// GetConfig returns the current settings for saving.
func (ws *Simulation) GetConfig() Config {
	c := ws.Mesh.Material.Color
	return Config{
		Size:            ws.Size,
		BaseAmplitude:   ws.BaseAmplitude,
		Color:           [3]float32{c.X(), c.Y(), c.Z()},
		SpeedMultiplier: ws.SpeedMultiplier,
		Height:          ws.Height,
		Wireframe:       ws.Mesh.Material.Wireframe,
	}
}

// ApplyConfig applies saved settings. Size only takes effect on a new
// Simulation since the plane is already built.
func (ws *Simulation) ApplyConfig(cfg Config) {
	ws.Mesh.Material.Color = mgl32.Vec3{cfg.Color[0], cfg.Color[1], cfg.Color[2]}
	ws.Mesh.Material.Wireframe = cfg.Wireframe
	ws.SpeedMultiplier = cfg.SpeedMultiplier
	ws.Height = cfg.Height
	if cfg.BaseAmplitude != ws.BaseAmplitude {
		ws.setWaves(cfg.BaseAmplitude)
	}
}
