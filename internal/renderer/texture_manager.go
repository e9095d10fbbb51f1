package renderer

import (
	"errors"
	"fmt"
	"image"
	"sync"

	"GopherStage/internal/logger"

	"go.uber.org/zap"
)

// TextureStats provides debugging and profiling information
type TextureStats struct {
	TotalTextures  int
	CacheHits      int
	CacheMisses    int
	ActiveTextures int
}

// TextureUploader moves image data to the backend and frees it again.
type TextureUploader interface {
	Upload(img image.Image) (uint32, error)
	Delete(id uint32)
}

// TextureManager caches backend textures by source key with reference counts.
type TextureManager struct {
	uploader        TextureUploader
	textureCache    map[string]uint32 // source -> texture ID
	textureRefCount map[uint32]int    // texture ID -> reference count
	texturePaths    map[uint32]string // texture ID -> source (for debugging)
	mu              sync.RWMutex
	stats           TextureStats
}

func NewTextureManager(uploader TextureUploader) *TextureManager {
	return &TextureManager{
		uploader:        uploader,
		textureCache:    make(map[string]uint32),
		textureRefCount: make(map[uint32]int),
		texturePaths:    make(map[uint32]string),
	}
}

// CreateTextureFromImage uploads img under name, or returns the cached
// texture ID for name.
func (tm *TextureManager) CreateTextureFromImage(img image.Image, name string) (uint32, error) {
	if img == nil {
		return 0, errors.New("nil texture image")
	}
	tm.mu.Lock()
	defer tm.mu.Unlock()

	if textureID, exists := tm.textureCache[name]; exists {
		tm.textureRefCount[textureID]++
		tm.stats.CacheHits++
		return textureID, nil
	}
	tm.stats.CacheMisses++

	textureID, err := tm.uploader.Upload(img)
	if err != nil {
		return 0, fmt.Errorf("upload texture %s: %w", name, err)
	}

	tm.textureCache[name] = textureID
	tm.textureRefCount[textureID] = 1
	tm.texturePaths[textureID] = name
	tm.stats.TotalTextures++

	b := img.Bounds()
	logger.Log.Info("Texture loaded and cached",
		zap.String("name", name),
		zap.Uint32("textureID", textureID),
		zap.Int("width", b.Dx()),
		zap.Int("height", b.Dy()))

	return textureID, nil
}

// ReleaseTexture decrements the reference count and frees the texture when
// it reaches zero.
func (tm *TextureManager) ReleaseTexture(textureID uint32) {
	if textureID == 0 {
		return
	}

	tm.mu.Lock()
	defer tm.mu.Unlock()

	refCount, exists := tm.textureRefCount[textureID]
	if !exists {
		logger.Log.Warn("Attempted to release unknown texture",
			zap.Uint32("textureID", textureID))
		return
	}

	refCount--
	tm.textureRefCount[textureID] = refCount
	if refCount > 0 {
		return
	}

	tm.uploader.Delete(textureID)
	path := tm.texturePaths[textureID]
	delete(tm.textureCache, path)
	delete(tm.textureRefCount, textureID)
	delete(tm.texturePaths, textureID)

	logger.Log.Debug("Texture freed",
		zap.Uint32("textureID", textureID),
		zap.String("name", path))
}

// RefCount reports the references held on textureID.
func (tm *TextureManager) RefCount(textureID uint32) int {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	return tm.textureRefCount[textureID]
}

func (tm *TextureManager) GetStats() TextureStats {
	tm.mu.RLock()
	defer tm.mu.RUnlock()

	stats := tm.stats
	stats.ActiveTextures = len(tm.textureRefCount)
	return stats
}

func (tm *TextureManager) LogStats() {
	stats := tm.GetStats()
	var hitRate float64
	if total := stats.CacheHits + stats.CacheMisses; total > 0 {
		hitRate = float64(stats.CacheHits) / float64(total)
	}
	logger.Log.Info("Texture Manager Stats",
		zap.Int("totalTextures", stats.TotalTextures),
		zap.Int("activeTextures", stats.ActiveTextures),
		zap.Int("cacheHits", stats.CacheHits),
		zap.Int("cacheMisses", stats.CacheMisses),
		zap.Float64("hitRate", hitRate))
}

// Clear frees every texture regardless of references.
func (tm *TextureManager) Clear() {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	for textureID := range tm.textureRefCount {
		tm.uploader.Delete(textureID)
	}

	tm.textureCache = make(map[string]uint32)
	tm.textureRefCount = make(map[uint32]int)
	tm.texturePaths = make(map[uint32]string)
}
