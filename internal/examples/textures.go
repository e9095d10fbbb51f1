package examples

import (
	"context"
	"errors"
	"sync/atomic"

	"GopherStage/internal/assets"
	"GopherStage/internal/bootstrap"
	"GopherStage/internal/clock"
	"GopherStage/internal/scene"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// DoorTexture is loaded relative to the assets root.
const DoorTexture = "textures/door/color.jpg"

const doorSource = "doorColor"

var errNoLoader = errors.New("example needs an asset loader")

// TextureLoader shows the red cube until the door texture arrives, then
// maps it onto the cube. A failed load keeps the red cube. With asset
// watching on, edits to the file are mapped again as they land.
func TextureLoader(ctx context.Context, env *Env) (*bootstrap.LoopHandle, error) {
	if env.Loader == nil {
		return nil, errNoLoader
	}
	setup, err := env.cube()
	if err != nil {
		return nil, err
	}

	loadCtx, cancel := context.WithCancel(ctx)
	env.OnClose(cancel)
	res := assets.NewResources(loadCtx, env.Loader, []assets.Source{
		{Name: doorSource, Kind: assets.KindTexture, Path: DoorTexture},
	})
	env.Log.Info("Loading texture", zap.String("path", DoorTexture))

	// reloads arrive on watcher goroutines; the frame callback applies them
	var reloaded atomic.Pointer[scene.Texture]
	res.OnReload(func(_ string, item any) {
		if tex, ok := item.(*scene.Texture); ok {
			reloaded.Store(tex)
		}
	})
	if env.Config.Assets.Watch {
		w, err := assets.Watch(loadCtx, res, assets.DefaultDebounce)
		if err != nil {
			env.Log.Warn("Could not watch assets", zap.Error(err))
		} else {
			env.OnClose(func() { _ = w.Close() })
		}
	}

	mat := setup.Material
	apply := func(tex *scene.Texture) { mapTexture(mat, tex) }

	ready := res.Ready()
	pending := true
	return env.orbit(ctx, setup, func(clock.Frame) {
		if tex := reloaded.Swap(nil); tex != nil {
			apply(tex)
			env.Log.Info("Texture reloaded", zap.String("path", DoorTexture))
		}
		if !pending {
			return
		}
		select {
		case <-ready.Done():
		default:
			return
		}
		pending = false
		tex, ok := res.Texture(doorSource)
		if !ok {
			env.Log.Error("Could not load texture", zap.String("path", DoorTexture), zap.Error(res.Err(doorSource)))
			return
		}
		apply(tex)
		env.Log.Info("Texture applied", zap.String("path", DoorTexture))
	}), nil
}

// mapTexture puts tex on mat and disposes the texture it replaces.
func mapTexture(mat *scene.Material, tex *scene.Texture) {
	if old := mat.Map; old != nil && old != tex {
		old.Dispose()
	}
	mat.Color = mgl32.Vec3{1, 1, 1}
	mat.Map = tex
}
