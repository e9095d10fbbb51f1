// Package assets loads textures, geometry and raw files off the host thread.
// Loads run on a worker pool and hand their results back through futures.
package assets

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"io/fs"
	"os"
	"path"
	"strings"
	"sync"
	"time"

	"GopherStage/internal/config"
	"GopherStage/internal/scene"

	"github.com/alitto/pond/v2"
	"github.com/h2non/filetype"
	"go.uber.org/zap"
)

var (
	// ErrLoadTimeout is returned when every attempt at a source timed out.
	ErrLoadTimeout = errors.New("asset load timed out")
	// ErrUnsupportedAsset is returned for content no decoder understands.
	ErrUnsupportedAsset = errors.New("unsupported asset")
	// ErrLoaderClosed is returned for loads started after Close.
	ErrLoaderClosed = errors.New("asset loader closed")
)

const readChunk = 32 * 1024

type Options struct {
	Root    string
	Workers int
	// Timeout bounds one attempt. 0 disables it.
	Timeout time.Duration
	// Retries is the number of extra attempts after a failure.
	Retries int
	// Backoff is the wait before the first retry; it doubles on each one.
	Backoff time.Duration
}

func OptionsFromConfig(cfg config.AssetsConfig) Options {
	return Options{
		Root:    cfg.Root,
		Workers: cfg.Workers,
		Timeout: cfg.Timeout(),
		Retries: cfg.Retries,
		Backoff: cfg.Backoff(),
	}
}

// Loader reads sources from a file system on a bounded worker pool.
type Loader struct {
	opts Options
	fsys fs.FS
	pool pond.Pool
	log  *zap.Logger

	mu     sync.RWMutex
	closed bool
}

type LoaderOption func(*Loader)

// WithFS reads sources from fsys instead of the Root directory.
func WithFS(fsys fs.FS) LoaderOption {
	return func(l *Loader) { l.fsys = fsys }
}

func WithLogger(log *zap.Logger) LoaderOption {
	return func(l *Loader) { l.log = log }
}

func NewLoader(opts Options, lopts ...LoaderOption) *Loader {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	l := &Loader{opts: opts, log: zap.NewNop()}
	for _, o := range lopts {
		o(l)
	}
	if l.fsys == nil {
		l.fsys = os.DirFS(opts.Root)
	}
	l.pool = pond.NewPool(opts.Workers)
	return l
}

func (l *Loader) Options() Options {
	return l.opts
}

// Close waits for running loads and rejects new ones.
func (l *Loader) Close() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.closed = true
	l.mu.Unlock()
	l.pool.StopAndWait()
}

// LoadBytes reads a source as is.
func (l *Loader) LoadBytes(ctx context.Context, name string) *Future[[]byte] {
	return load(ctx, l, name, func(_ string, data []byte) ([]byte, error) {
		return data, nil
	})
}

// LoadTexture reads and decodes a PNG or JPEG image.
func (l *Loader) LoadTexture(ctx context.Context, name string) *Future[*scene.Texture] {
	return load(ctx, l, name, DecodeTexture)
}

// LoadGeometry reads a Wavefront OBJ file.
func (l *Loader) LoadGeometry(ctx context.Context, name string) *Future[*scene.Geometry] {
	return load(ctx, l, name, DecodeOBJ)
}

func load[T any](ctx context.Context, l *Loader, name string, decode func(string, []byte) (T, error)) *Future[T] {
	var zero T
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return Resolved(zero, fmt.Errorf("load %s: %w", name, ErrLoaderClosed))
	}

	ctx, cancel := context.WithCancel(ctx)
	f := newFuture[T](cancel)
	l.pool.Submit(func() {
		data, err := l.fetch(ctx, name, f.report)
		if err != nil {
			f.resolve(zero, fmt.Errorf("load %s: %w", name, err))
			return
		}
		v, err := decode(name, data)
		if err != nil {
			f.resolve(zero, fmt.Errorf("decode %s: %w", name, err))
			return
		}
		if f.resolve(v, nil) {
			l.log.Debug("Asset loaded", zap.String("name", name), zap.Int("bytes", len(data)))
		}
	})
	return f
}

// fetch reads name, retrying failed attempts with exponential backoff.
// Missing files and cancellation are not retried.
func (l *Loader) fetch(ctx context.Context, name string, report func(Progress)) ([]byte, error) {
	backoff := l.opts.Backoff
	var lastErr error
	for attempt := 0; attempt <= l.opts.Retries; attempt++ {
		if attempt > 0 {
			l.log.Warn("Retrying asset load",
				zap.String("name", name),
				zap.Int("attempt", attempt),
				zap.Duration("backoff", backoff),
				zap.Error(lastErr))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			backoff *= 2
		}

		data, err := l.readAttempt(ctx, name, report)
		if err == nil {
			return data, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrInvalid) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

// readAttempt runs one read bounded by the per-attempt timeout. The read
// itself is not interruptible, so it runs apart and is abandoned on timeout.
func (l *Loader) readAttempt(ctx context.Context, name string, report func(Progress)) ([]byte, error) {
	if l.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.opts.Timeout)
		defer cancel()
	}

	type result struct {
		data []byte
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		data, err := l.read(ctx, name, report)
		ch <- result{data, err}
	}()

	select {
	case r := <-ch:
		return r.data, r.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, ErrLoadTimeout
		}
		return nil, ctx.Err()
	}
}

func (l *Loader) read(ctx context.Context, name string, report func(Progress)) ([]byte, error) {
	file, err := l.fsys.Open(path.Clean(name))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	total := int64(-1)
	if info, err := file.Stat(); err == nil && info.Mode().IsRegular() {
		total = info.Size()
	}

	var buf bytes.Buffer
	if total > 0 {
		buf.Grow(int(total))
	}
	chunk := make([]byte, readChunk)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n, err := file.Read(chunk)
		buf.Write(chunk[:n])
		if n > 0 {
			report(Progress{Loaded: int64(buf.Len()), Total: total})
		}
		if errors.Is(err, io.EOF) {
			return buf.Bytes(), nil
		}
		if err != nil {
			return nil, err
		}
	}
}

// DecodeTexture sniffs data and decodes PNG or JPEG images.
func DecodeTexture(name string, data []byte) (*scene.Texture, error) {
	if !filetype.IsImage(data) {
		return nil, fmt.Errorf("%w: %s is not an image", ErrUnsupportedAsset, name)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if errors.Is(err, image.ErrFormat) {
		kind, _ := filetype.Match(data)
		return nil, fmt.Errorf("%w: %s image", ErrUnsupportedAsset, kind.Extension)
	}
	if err != nil {
		return nil, err
	}
	return scene.NewTexture(name, img), nil
}

// DecodeOBJ parses OBJ text. Content recognised as a binary format is
// rejected before parsing.
func DecodeOBJ(name string, data []byte) (*scene.Geometry, error) {
	if kind, _ := filetype.Match(data); kind != filetype.Unknown {
		return nil, fmt.Errorf("%w: %s content in %s", ErrUnsupportedAsset, kind.Extension, name)
	}
	if ext := strings.ToLower(path.Ext(name)); ext != ".obj" {
		return nil, fmt.Errorf("%w: %q geometry", ErrUnsupportedAsset, ext)
	}
	return ParseOBJ(bytes.NewReader(data), name, false)
}
