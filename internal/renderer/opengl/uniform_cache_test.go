package opengl

import (
	"testing"
)

func newTestCache(locs map[string]int32, calls *int) *UniformCache {
	cache := NewUniformCache(7)
	cache.lookup = func(program uint32, name string) int32 {
		*calls++
		if program != 7 {
			return -1
		}
		if loc, ok := locs[name]; ok {
			return loc
		}
		return -1
	}
	return cache
}

func TestUniformCacheFetchesOnce(t *testing.T) {
	var calls int
	cache := newTestCache(map[string]int32{"model": 3}, &calls)

	if loc := cache.GetLocation("model"); loc != 3 {
		t.Errorf("expected location 3, got %d", loc)
	}
	cache.GetLocation("model")
	if calls != 1 {
		t.Errorf("expected one lookup, got %d", calls)
	}
}

func TestUniformCacheRemembersMissing(t *testing.T) {
	var calls int
	cache := newTestCache(nil, &calls)

	if loc := cache.GetLocation("nope"); loc != -1 {
		t.Errorf("missing uniform should be -1, got %d", loc)
	}
	cache.GetLocation("nope")
	if calls != 1 {
		t.Errorf("missing uniform should be cached, got %d lookups", calls)
	}
}

func TestUniformCacheClear(t *testing.T) {
	var calls int
	cache := newTestCache(map[string]int32{"opacity": 1}, &calls)
	cache.GetLocation("opacity")

	cache.Clear()

	if len(cache.locations) != 0 {
		t.Error("Clear should empty the cache")
	}
	cache.GetLocation("opacity")
	if calls != 2 {
		t.Errorf("lookup should run again after Clear, got %d", calls)
	}
}
