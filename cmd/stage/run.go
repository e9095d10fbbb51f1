package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"GopherStage/internal/assets"
	"GopherStage/internal/bootstrap"
	"GopherStage/internal/config"
	"GopherStage/internal/debug"
	"GopherStage/internal/debug/imguipanel"
	"GopherStage/internal/examples"
	"GopherStage/internal/host"
	"GopherStage/internal/host/glfwhost"
	"GopherStage/internal/logger"
	"GopherStage/internal/renderer"
	"GopherStage/internal/renderer/opengl"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type runOptions struct {
	*rootOptions
	headless bool
	frames   uint64
	debug    bool
	sets     []string
	seed     int64
	save     bool
}

func newRunCommand(root *rootOptions) *cobra.Command {
	opts := &runOptions{rootOptions: root}
	cmd := &cobra.Command{
		Use:   "run <example>",
		Short: "Run one example in a window or headless",
		Args:  cobra.ExactArgs(1),
		ValidArgsFunction: func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
			return examples.Default().Names(), cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			if opts.debug {
				cfg.Debug.Active = true
			}
			if cmd.Flags().Changed("frames") {
				cfg.Loop.MaxFrames = opts.frames
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			if opts.headless {
				return runHeadless(ctx, cfg, args[0], opts, cmd.OutOrStdout())
			}
			return runWindowed(ctx, cfg, args[0], opts, cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.BoolVar(&opts.headless, "headless", false, "render into a recording renderer instead of a window")
	f.Uint64Var(&opts.frames, "frames", 0, "stop after this many frames; 0 runs until interrupted")
	f.BoolVar(&opts.debug, "debug", false, "activate the debug panel")
	f.StringArrayVar(&opts.sets, "set", nil, "debug panel assignment path=value, repeatable")
	f.Int64Var(&opts.seed, "seed", time.Now().UnixNano(), "seed for the random parts of a demo")
	f.BoolVar(&opts.save, "save", false, "write the settings the demo was left with to the config file")
	return cmd
}

// startExample wires the per-run services into an Env and starts name. The
// returned Env owns every resource; Close it when the run ends.
func startExample(ctx context.Context, stage *bootstrap.Stage, cfg config.Config, name string, opts *runOptions, out io.Writer) (*examples.Env, *bootstrap.LoopHandle, error) {
	loader := assets.NewLoader(assets.OptionsFromConfig(cfg.Assets), assets.WithLogger(logger.Log))
	panel := debug.New(cfg.Debug.Active, debug.WithLogger(logger.Log))
	env := examples.NewEnv(stage, cfg, panel, loader, opts.seed)
	env.OnClose(loader.Close)
	env.OnClose(panel.Dispose)

	handle, err := examples.Default().Run(ctx, name, env)
	if err != nil {
		env.Close()
		return nil, nil, err
	}
	if err := panel.Apply(opts.sets); err != nil {
		env.Close()
		return nil, nil, err
	}
	if panel.Active() {
		if err := panel.Print(out); err != nil {
			logger.Log.Warn("Could not print debug panel", zap.Error(err))
		}
	}
	return env, handle, nil
}

func runHeadless(ctx context.Context, cfg config.Config, name string, opts *runOptions, out io.Writer) error {
	h := host.NewHeadless(cfg.Viewport.Width, cfg.Viewport.Height, host.WithFrameInterval(cfg.Loop.FrameInterval()))
	h.AddSurface(cfg.Host.CanvasID)

	var rec *renderer.RecordingRenderer
	stage := bootstrap.New(h, func(_ host.Surface, o renderer.Options) (renderer.Render, error) {
		rec = renderer.NewRecordingRenderer(o, 1)
		return rec, nil
	}, bootstrap.WithConfig(cfg), bootstrap.WithLogger(logger.Log))

	env, handle, err := startExample(ctx, stage, cfg, name, opts, out)
	if err != nil {
		return err
	}
	defer env.Close()

	if limit := cfg.Loop.MaxFrames; limit > 0 {
		for handle.Running() && handle.Frames() < limit && ctx.Err() == nil {
			h.Step()
		}
	} else {
		go func() {
			select {
			case <-handle.Done():
				h.Close()
			case <-ctx.Done():
			}
		}()
		if err := h.Run(ctx); err != nil {
			return err
		}
	}

	if err := closeExample(env, opts); err != nil {
		return err
	}
	if snap, ok := rec.Last(); ok {
		_, err := fmt.Fprintf(out, "%s: %d frames, %dx%d @%gx, camera %v, %d meshes\n",
			name, handle.Frames(), snap.Width, snap.Height, snap.PixelRatio, snap.CameraPosition, len(snap.Meshes))
		return err
	}
	return nil
}

func runWindowed(ctx context.Context, cfg config.Config, name string, opts *runOptions, out io.Writer) error {
	gh, err := glfwhost.New(glfwhost.Options{
		Antialias:       cfg.Host.Antialias,
		PowerPreference: cfg.Host.PowerPreference,
	})
	if err != nil {
		return err
	}
	defer gh.Terminate()

	width, height := cfg.Viewport.Width, cfg.Viewport.Height
	if width <= 0 || height <= 0 {
		width, height = config.Default().Viewport.Width, config.Default().Viewport.Height
	}
	primary, err := gh.CreateSurface(cfg.Host.CanvasID, width, height, cfg.Host.Title)
	if err != nil {
		return err
	}

	stage := bootstrap.New(gh, func(s host.Surface, o renderer.Options) (renderer.Render, error) {
		win, ok := s.(*glfwhost.Window)
		if !ok {
			return nil, fmt.Errorf("surface %s is not a GLFW window", s.ID())
		}
		rend, err := opengl.New(win, o)
		if err != nil {
			return nil, err
		}
		return rend, nil
	}, bootstrap.WithConfig(cfg), bootstrap.WithLogger(logger.Log))

	env, handle, err := startExample(ctx, stage, cfg, name, opts, out)
	if err != nil {
		return err
	}
	defer env.Close()
	attachDebugOverlay(env, primary)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go stopAfterFrames(runCtx, handle, cfg.Loop.MaxFrames, cancel)
	err = gh.Run(runCtx)
	return errors.Join(err, closeExample(env, opts))
}

// attachDebugOverlay shows the demo's debug panel as a GUI over win. A failed
// overlay leaves the panel usable through --set.
func attachDebugOverlay(env *examples.Env, win *glfwhost.Window) {
	if !env.Panel.Active() {
		return
	}
	ov, err := imguipanel.New(win, env.Panel, logger.Log)
	if err != nil {
		logger.Log.Warn("Debug overlay unavailable", zap.Error(err))
		return
	}
	env.OnClose(ov.Dispose)
	env.OnClose(win.AddOverlay(ov))
}

// closeExample tears the run down and, with --save, writes the config the
// demo left behind.
func closeExample(env *examples.Env, opts *runOptions) error {
	env.Close()
	if !opts.save {
		return nil
	}
	if err := config.Save(opts.configPath, env.Config); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	logger.Log.Info("Config saved", zap.String("path", opts.configPath))
	return nil
}

// stopAfterFrames cancels the host run once the loop ends or has rendered
// limit frames. A zero limit only waits for the loop to end.
func stopAfterFrames(ctx context.Context, handle *bootstrap.LoopHandle, limit uint64, cancel context.CancelFunc) {
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-handle.Done():
			cancel()
			return
		case <-ticker.C:
			if limit > 0 && handle.Frames() >= limit {
				cancel()
				return
			}
		}
	}
}
