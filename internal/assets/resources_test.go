package assets

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestResourcesReady(t *testing.T) {
	l := newTestLoader(t, testFS(t), Options{})
	res := NewResources(context.Background(), l, []Source{
		{Name: "doorColor", Kind: KindTexture, Path: "textures/door.png"},
		{Name: "quad", Kind: KindGeometry, Path: "models/quad.obj"},
		{Name: "notes", Kind: KindBytes, Path: "notes.txt"},
	})

	items, err := await(t, res.Ready())
	require.NoError(t, err)
	assert.Len(t, items, 3)

	loaded, total := res.Progress()
	assert.Equal(t, 3, loaded)
	assert.Equal(t, 3, total)

	tex, ok := res.Texture("doorColor")
	require.True(t, ok)
	assert.Equal(t, "textures/door.png", tex.Source)
	_, ok = res.Geometry("quad")
	assert.True(t, ok)
	_, ok = res.Texture("quad")
	assert.False(t, ok, "wrong kind")
}

func TestResourcesReportFailuresPerSource(t *testing.T) {
	l := newTestLoader(t, testFS(t), Options{})
	res := NewResources(context.Background(), l, []Source{
		{Name: "notes", Kind: KindBytes, Path: "notes.txt"},
		{Name: "missing", Kind: KindTexture, Path: "textures/none.png"},
		{Name: "odd", Kind: Kind("font"), Path: "fonts/x.ttf"},
	})

	items, err := await(t, res.Ready())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedAsset)
	assert.Contains(t, err.Error(), "missing")
	assert.Len(t, items, 1, "successful items are still delivered")

	assert.Error(t, res.Err("missing"))
	assert.NoError(t, res.Err("notes"))
	_, ok := res.Item("missing")
	assert.False(t, ok)
}

func TestResourcesWithoutSourcesAreReady(t *testing.T) {
	l := newTestLoader(t, testFS(t), Options{})
	items, err := await(t, NewResources(context.Background(), l, nil).Ready())
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestReloadNotifiesListeners(t *testing.T) {
	l := newTestLoader(t, testFS(t), Options{})
	res := NewResources(context.Background(), l, []Source{{Name: "notes", Kind: KindBytes, Path: "notes.txt"}})
	_, err := await(t, res.Ready())
	require.NoError(t, err)

	var got []string
	res.OnReload(func(name string, item any) { got = append(got, name) })
	require.NoError(t, res.Reload(context.Background(), "notes"))
	assert.Equal(t, []string{"notes"}, got)

	assert.Error(t, res.Reload(context.Background(), "unknown"))
}

func TestSourceForPathCleansPaths(t *testing.T) {
	l := newTestLoader(t, testFS(t), Options{})
	res := NewResources(context.Background(), l, []Source{{Name: "notes", Kind: KindBytes, Path: "notes.txt"}})
	_, err := await(t, res.Ready())
	require.NoError(t, err)

	src, ok := res.SourceForPath("./notes.txt")
	require.True(t, ok)
	assert.Equal(t, "notes", src.Name)
	_, ok = res.SourceForPath("other.txt")
	assert.False(t, ok)

	w := &Watcher{res: res, root: "static"}
	src, ok = w.sourceFor(filepath.Join("static", "notes.txt"))
	require.True(t, ok)
	assert.Equal(t, "notes", src.Name)
	_, ok = w.sourceFor(filepath.Join("elsewhere", "notes.txt"))
	assert.False(t, ok)
}

func TestWatcherReloadsChangedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data", "level.txt")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0o644))

	l := NewLoader(Options{Root: dir, Workers: 1}, WithLogger(zaptest.NewLogger(t)))
	t.Cleanup(l.Close)
	res := NewResources(context.Background(), l, []Source{{Name: "level", Kind: KindBytes, Path: "data/level.txt"}})
	_, err := await(t, res.Ready())
	require.NoError(t, err)

	var mu sync.Mutex
	var reloaded []byte
	res.OnReload(func(name string, item any) {
		mu.Lock()
		defer mu.Unlock()
		reloaded = item.([]byte)
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w, err := Watch(ctx, res, 10*time.Millisecond)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(path, []byte("v2"), 0o644))
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return string(reloaded) == "v2"
	}, 5*time.Second, 10*time.Millisecond)

	item, ok := res.Item("level")
	require.True(t, ok)
	assert.Equal(t, "v2", string(item.([]byte)))
}
