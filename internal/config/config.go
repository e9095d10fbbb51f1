package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

type ViewportConfig struct {
	Width         int     `toml:"width"`
	Height        int     `toml:"height"`
	PixelRatioCap float64 `toml:"pixel_ratio_cap"`
}

type CameraConfig struct {
	Fov         float32 `toml:"fov"`
	Near        float32 `toml:"near"`
	Far         float32 `toml:"far"`
	DepthOffset float32 `toml:"depth_offset"`
}

type LoopConfig struct {
	HeadlessFPS int `toml:"headless_fps"`
	// MaxFrames stops the loop after this many frames. 0 runs until closed.
	MaxFrames uint64 `toml:"max_frames"`
	// FixedStepHz is the rate of fixed updates for physics behaviours.
	FixedStepHz int `toml:"fixed_step_hz"`
}

type AssetsConfig struct {
	Root      string `toml:"root"`
	Workers   int    `toml:"workers"`
	TimeoutMS int    `toml:"timeout_ms"`
	Retries   int    `toml:"retries"`
	BackoffMS int    `toml:"backoff_ms"`
	Watch     bool   `toml:"watch"`
}

type HostConfig struct {
	Title           string `toml:"title"`
	CanvasID        string `toml:"canvas_id"`
	AllowFullscreen bool   `toml:"allow_fullscreen"`
	Antialias       bool   `toml:"antialias"`
	PowerPreference string `toml:"power_preference"`
}

// WaterConfig holds the tunable settings of the ocean demo.
type WaterConfig struct {
	Size            float32    `toml:"size"`
	BaseAmplitude   float32    `toml:"base_amplitude"`
	Color           [3]float32 `toml:"color"`
	SpeedMultiplier float32    `toml:"speed_multiplier"`
	Height          float32    `toml:"height"`
	Wireframe       bool       `toml:"wireframe"`
}

type DebugConfig struct {
	Active bool `toml:"active"`
}

// Config is the on-disk configuration of a stage run.
type Config struct {
	Viewport ViewportConfig `toml:"viewport"`
	Camera   CameraConfig   `toml:"camera"`
	Loop     LoopConfig     `toml:"loop"`
	Assets   AssetsConfig   `toml:"assets"`
	Host     HostConfig     `toml:"host"`
	Debug    DebugConfig    `toml:"debug"`
	Water    WaterConfig    `toml:"water"`
}

// Default returns the values every demo used before a config file existed.
func Default() Config {
	return Config{
		Viewport: ViewportConfig{
			Width:         800,
			Height:        600,
			PixelRatioCap: 2,
		},
		Camera: CameraConfig{
			Fov:         75,
			Near:        0.1,
			Far:         2000,
			DepthOffset: 3,
		},
		Loop: LoopConfig{
			HeadlessFPS: 60,
			FixedStepHz: 50,
		},
		Assets: AssetsConfig{
			Root:      "static",
			Workers:   4,
			TimeoutMS: 10000,
			Retries:   2,
			BackoffMS: 200,
		},
		Host: HostConfig{
			Title:           "GopherStage",
			CanvasID:        "default-webgl",
			AllowFullscreen: true,
			PowerPreference: "default",
		},
		Water: WaterConfig{
			Size:            10,
			BaseAmplitude:   0.15,
			Color:           [3]float32{0.06, 0.22, 0.45},
			SpeedMultiplier: 1,
			Height:          1,
			Wireframe:       true,
		},
	}
}

// Load reads a TOML file on top of Default. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Save writes the configuration as TOML.
func Save(path string, cfg Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Write encodes cfg as TOML to w.
func Write(w io.Writer, cfg Config) error {
	return toml.NewEncoder(w).Encode(cfg)
}

func (c Config) Validate() error {
	var errs []error
	if c.Viewport.Width < 0 || c.Viewport.Height < 0 {
		errs = append(errs, fmt.Errorf("viewport size must not be negative, got %dx%d", c.Viewport.Width, c.Viewport.Height))
	}
	if c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near {
		errs = append(errs, fmt.Errorf("camera clip planes must satisfy 0 < near < far, got near=%g far=%g", c.Camera.Near, c.Camera.Far))
	}
	if c.Camera.Fov <= 0 || c.Camera.Fov >= 180 {
		errs = append(errs, fmt.Errorf("camera fov must be in (0, 180), got %g", c.Camera.Fov))
	}
	if c.Loop.HeadlessFPS <= 0 {
		errs = append(errs, fmt.Errorf("loop headless_fps must be positive, got %d", c.Loop.HeadlessFPS))
	}
	if c.Loop.FixedStepHz < 0 {
		errs = append(errs, fmt.Errorf("loop fixed_step_hz must not be negative, got %d", c.Loop.FixedStepHz))
	}
	if c.Water.Size <= 0 {
		errs = append(errs, fmt.Errorf("water size must be positive, got %g", c.Water.Size))
	}
	if c.Assets.Workers <= 0 {
		errs = append(errs, fmt.Errorf("assets workers must be positive, got %d", c.Assets.Workers))
	}
	if c.Assets.Retries < 0 {
		errs = append(errs, fmt.Errorf("assets retries must not be negative, got %d", c.Assets.Retries))
	}
	switch c.Host.PowerPreference {
	case "default", "high-performance", "low-power":
	default:
		errs = append(errs, fmt.Errorf("unknown power_preference %q", c.Host.PowerPreference))
	}
	return errors.Join(errs...)
}

func (a AssetsConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutMS) * time.Millisecond
}

func (a AssetsConfig) Backoff() time.Duration {
	return time.Duration(a.BackoffMS) * time.Millisecond
}

func (l LoopConfig) FrameInterval() time.Duration {
	if l.HeadlessFPS <= 0 {
		return time.Second / 60
	}
	return time.Second / time.Duration(l.HeadlessFPS)
}

// FixedStep is the fixed update interval, 0 when fixed updates are off.
func (l LoopConfig) FixedStep() time.Duration {
	if l.FixedStepHz <= 0 {
		return 0
	}
	return time.Second / time.Duration(l.FixedStepHz)
}
