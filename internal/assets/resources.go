package assets

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sync"

	"GopherStage/internal/scene"

	"go.uber.org/zap"
)

type Kind string

const (
	KindTexture  Kind = "texture"
	KindGeometry Kind = "geometry"
	KindBytes    Kind = "bytes"
)

// Source names one asset of a resource set.
type Source struct {
	Name string
	Kind Kind
	Path string
}

// Resources loads a set of sources and tracks them by name. Ready resolves
// once every source has finished, successfully or not.
type Resources struct {
	loader  *Loader
	sources []Source
	log     *zap.Logger

	mu       sync.Mutex
	items    map[string]any
	errs     map[string]error
	loaded   int
	ready    *Future[map[string]any]
	onReload []func(name string, item any)
}

// NewResources starts loading every source.
func NewResources(ctx context.Context, loader *Loader, sources []Source) *Resources {
	r := &Resources{
		loader:  loader,
		sources: append([]Source(nil), sources...),
		log:     loader.log,
		items:   make(map[string]any, len(sources)),
		errs:    make(map[string]error),
		ready:   newFuture[map[string]any](nil),
	}
	if len(sources) == 0 {
		r.ready.resolve(map[string]any{}, nil)
		return r
	}
	for _, src := range r.sources {
		go r.await(ctx, src, r.start(ctx, src))
	}
	return r
}

type pending interface {
	wait(ctx context.Context) (any, error)
}

type pendingFuture[T any] struct{ f *Future[T] }

func (p pendingFuture[T]) wait(ctx context.Context) (any, error) {
	return p.f.Await(ctx)
}

func (r *Resources) start(ctx context.Context, src Source) pending {
	switch src.Kind {
	case KindTexture:
		return pendingFuture[*scene.Texture]{r.loader.LoadTexture(ctx, src.Path)}
	case KindGeometry:
		return pendingFuture[*scene.Geometry]{r.loader.LoadGeometry(ctx, src.Path)}
	case KindBytes:
		return pendingFuture[[]byte]{r.loader.LoadBytes(ctx, src.Path)}
	default:
		return pendingFuture[any]{Resolved[any](nil, fmt.Errorf("%w: kind %q for %s", ErrUnsupportedAsset, src.Kind, src.Name))}
	}
}

func (r *Resources) await(ctx context.Context, src Source, p pending) {
	item, err := p.wait(ctx)

	r.mu.Lock()
	if err != nil {
		r.errs[src.Name] = err
		r.log.Error("Could not load resource", zap.String("name", src.Name), zap.String("path", src.Path), zap.Error(err))
	} else {
		r.items[src.Name] = item
	}
	r.loaded++
	done := r.loaded == len(r.sources)
	var items map[string]any
	var errs []error
	if done {
		items = make(map[string]any, len(r.items))
		for k, v := range r.items {
			items[k] = v
		}
		for _, src := range r.sources {
			if e, ok := r.errs[src.Name]; ok {
				errs = append(errs, fmt.Errorf("%s: %w", src.Name, e))
			}
		}
	}
	r.mu.Unlock()

	if done {
		r.log.Debug("Resources ready", zap.Int("loaded", len(items)), zap.Int("failed", len(errs)))
		r.ready.resolve(items, errors.Join(errs...))
	}
}

// Ready resolves with all loaded items. Its error joins the failures of
// individual sources; the items that did load are still returned.
func (r *Resources) Ready() *Future[map[string]any] {
	return r.ready
}

func (r *Resources) Sources() []Source {
	return append([]Source(nil), r.sources...)
}

// Progress reports how many sources have finished out of the total.
func (r *Resources) Progress() (loaded, total int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loaded, len(r.sources)
}

// Item returns a loaded item by source name.
func (r *Resources) Item(name string) (any, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.items[name]
	return v, ok
}

// Err returns the load error of a source, if any.
func (r *Resources) Err(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.errs[name]
}

// Texture is Item narrowed to a texture.
func (r *Resources) Texture(name string) (*scene.Texture, bool) {
	v, ok := r.Item(name)
	if !ok {
		return nil, false
	}
	t, ok := v.(*scene.Texture)
	return t, ok
}

func (r *Resources) Geometry(name string) (*scene.Geometry, bool) {
	v, ok := r.Item(name)
	if !ok {
		return nil, false
	}
	g, ok := v.(*scene.Geometry)
	return g, ok
}

// OnReload registers fn for sources reloaded by Reload. fn runs on the
// goroutine that finished the load; hand the item to the host thread
// before touching the scene.
func (r *Resources) OnReload(fn func(name string, item any)) {
	r.mu.Lock()
	r.onReload = append(r.onReload, fn)
	r.mu.Unlock()
}

// SourceForPath finds the source loaded from the slash-separated path p,
// relative to the loader root.
func (r *Resources) SourceForPath(p string) (Source, bool) {
	p = path.Clean(p)
	for _, src := range r.sources {
		if path.Clean(src.Path) == p {
			return src, true
		}
	}
	return Source{}, false
}

// Reload loads one source again and replaces its item on success.
func (r *Resources) Reload(ctx context.Context, name string) error {
	var src Source
	found := false
	for _, s := range r.sources {
		if s.Name == name {
			src, found = s, true
			break
		}
	}
	if !found {
		return fmt.Errorf("reload %s: unknown resource", name)
	}

	item, err := r.start(ctx, src).wait(ctx)
	if err != nil {
		r.log.Warn("Reload failed", zap.String("name", name), zap.Error(err))
		return err
	}

	r.mu.Lock()
	r.items[name] = item
	delete(r.errs, name)
	listeners := make([]func(string, any), len(r.onReload))
	copy(listeners, r.onReload)
	r.mu.Unlock()

	for _, fn := range listeners {
		fn(name, item)
	}
	r.log.Info("Resource reloaded", zap.String("name", name))
	return nil
}
