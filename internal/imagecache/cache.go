// Package imagecache caches rendered cover and thumbnail bytes per book id.
//
// Covers live either in a byte-budgeted in-memory map with FIFO eviction or
// as per-id files on disk, selected once at construction. Thumbnails are
// small and always stay in memory. One mutex guards every public operation;
// cache traffic is light enough that the simplicity is worth more than
// finer-grained locking.
package imagecache

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"log"
	"os"
	"path/filepath"
	"sync"
)

// Mode names the active cover storage strategy.
type Mode string

const (
	ModeMemory Mode = "memory"
	ModeDisk   Mode = "disk"
)

const coverExt = ".jpg"

// Config selects the storage strategy.
type Config struct {
	InMemory       bool
	MaxMemoryBytes int64  // cover byte budget, memory mode only
	CoversDir      string // disk mode
	ThumbsDir      string // disk mode
}

// Cache is the tiered image cache. Construct with New; the zero value is not
// usable.
type Cache struct {
	mu sync.Mutex

	inMemory bool
	maxBytes int64

	covers     map[string][]byte
	order      []string // cover insertion order, oldest first
	coverBytes int64

	thumbs     map[string][]byte
	thumbBytes int64

	coversDir string
	thumbsDir string
}

// CacheStats is a point-in-time snapshot for diagnostics.
type CacheStats struct {
	Mode       Mode
	Covers     int
	Thumbnails int
	CoverBytes int64
	CoverLimit int64
	ThumbBytes int64
}

// New builds a cache for the configured mode. Disk mode creates the cover
// and thumbnail directories.
func New(cfg Config) (*Cache, error) {
	c := &Cache{
		inMemory:  cfg.InMemory,
		maxBytes:  cfg.MaxMemoryBytes,
		covers:    make(map[string][]byte),
		thumbs:    make(map[string][]byte),
		coversDir: cfg.CoversDir,
		thumbsDir: cfg.ThumbsDir,
	}
	if !c.inMemory {
		for _, dir := range []string{c.coversDir, c.thumbsDir} {
			if dir == "" {
				return nil, fmt.Errorf("disk image cache requires cover and thumbnail directories")
			}
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create cache dir %s: %w", dir, err)
			}
		}
	}
	return c, nil
}

// Add stores a rendered artifact: the thumbnail always in memory, the cover
// per the active mode. An artifact with no usable bytes is a no-op, and an
// id that is already cached is not refreshed (first write wins).
func (c *Cache) Add(img *Rendered) {
	if img == nil || img.ID == "" || (!img.HasCover() && !img.HasThumbnail()) {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if img.HasThumbnail() {
		if _, taken := c.thumbs[img.ID]; !taken {
			c.thumbs[img.ID] = clone(img.ThumbBytes)
			c.thumbBytes += int64(len(img.ThumbBytes))
		}
	}

	if c.inMemory {
		if img.HasCover() {
			c.addMemoryCover(img.ID, img.CoverBytes)
		}
		return
	}

	if img.HasCover() {
		c.writeImageFile(c.coversDir, img.ID, img.CoverBytes)
	}
	if img.HasThumbnail() {
		c.writeImageFile(c.thumbsDir, img.ID, img.ThumbBytes)
	}
}

// addMemoryCover enforces the byte budget by evicting oldest-inserted covers
// until the new one fits. A cover larger than the whole budget is not cached
// at all (its thumbnail still is).
func (c *Cache) addMemoryCover(id string, data []byte) {
	if _, taken := c.covers[id]; taken {
		return
	}
	size := int64(len(data))
	if size > c.maxBytes {
		log.Printf("Image cache: cover for %s (%d bytes) exceeds the %d byte budget, not cached", id, size, c.maxBytes)
		return
	}
	for c.coverBytes+size > c.maxBytes && len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		c.coverBytes -= int64(len(c.covers[oldest]))
		delete(c.covers, oldest)
	}
	c.covers[id] = clone(data)
	c.order = append(c.order, id)
	c.coverBytes += size
}

// writeImageFile persists one image under dir, skipping files that already
// exist and normalizing undetermined formats to JPEG. Failures are logged;
// the cache is a disposable accelerator and must never fail a caller.
func (c *Cache) writeImageFile(dir, id string, data []byte) {
	path := filepath.Join(dir, id+coverExt)
	if _, err := os.Stat(path); err == nil {
		return
	}

	normalized, err := normalizeJPEG(data)
	if err != nil {
		log.Printf("Image cache: failed to normalize image for %s: %v", id, err)
		return
	}

	tmp, err := os.CreateTemp(dir, "img_tmp_")
	if err != nil {
		log.Printf("Image cache: failed to create temp file in %s: %v", dir, err)
		return
	}
	tmpPath := tmp.Name()
	_, writeErr := tmp.Write(normalized)
	closeErr := tmp.Close()
	if writeErr != nil || closeErr != nil {
		os.Remove(tmpPath)
		log.Printf("Image cache: failed to write %s: %v", path, writeErr)
		return
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		log.Printf("Image cache: failed to store %s: %v", path, err)
	}
}

// normalizeJPEG passes JPEG bytes through untouched and re-encodes anything
// else it can decode.
func normalizeJPEG(data []byte) ([]byte, error) {
	if len(data) >= 2 && data[0] == 0xFF && data[1] == 0xD8 {
		return data, nil
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("undecodable image data: %w", err)
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
		return nil, fmt.Errorf("jpeg encode: %w", err)
	}
	return buf.Bytes(), nil
}

// HasImage reports whether a thumbnail or a cover is cached for the id under
// the active mode.
func (c *Cache) HasImage(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.thumbs[id]; ok {
		return true
	}
	if c.inMemory {
		_, ok := c.covers[id]
		return ok
	}
	if _, err := os.Stat(filepath.Join(c.coversDir, id+coverExt)); err == nil {
		return true
	}
	_, err := os.Stat(filepath.Join(c.thumbsDir, id+coverExt))
	return err == nil
}

// GetImage returns the cached artifact for the id, or nil when nothing is
// cached. The returned image owns independent copies of the bytes.
func (c *Cache) GetImage(id string) *Cached {
	c.mu.Lock()
	defer c.mu.Unlock()

	thumb := clone(c.thumbs[id])
	var cover []byte

	if c.inMemory {
		cover = clone(c.covers[id])
	} else {
		cover = c.readImageFile(c.coversDir, id)
		if thumb == nil {
			// Thumbnails written by a previous process read through too.
			thumb = c.readImageFile(c.thumbsDir, id)
		}
	}

	if cover == nil && thumb == nil {
		return nil
	}
	return &Cached{id: id, cover: cover, thumb: thumb}
}

func (c *Cache) readImageFile(dir, id string) []byte {
	data, err := os.ReadFile(filepath.Join(dir, id+coverExt))
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Image cache: failed to read cached image for %s: %v", id, err)
		}
		return nil
	}
	return data
}

// Clear empties every in-memory structure and deletes cached files on disk.
// Disk errors are logged, never raised.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.covers = make(map[string][]byte)
	c.order = nil
	c.coverBytes = 0
	c.thumbs = make(map[string][]byte)
	c.thumbBytes = 0

	if c.inMemory {
		log.Printf("Image cache cleared")
		return
	}
	for _, dir := range []string{c.coversDir, c.thumbsDir} {
		entries, err := os.ReadDir(dir)
		if err != nil {
			log.Printf("Image cache: failed to list %s during clear: %v", dir, err)
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil {
				log.Printf("Image cache: failed to remove %s: %v", entry.Name(), err)
			}
		}
	}
	log.Printf("Image cache cleared")
}

// Stats returns a snapshot of cache occupancy.
func (c *Cache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := CacheStats{
		Mode:       ModeMemory,
		Thumbnails: len(c.thumbs),
		ThumbBytes: c.thumbBytes,
	}
	if c.inMemory {
		stats.Covers = len(c.covers)
		stats.CoverBytes = c.coverBytes
		stats.CoverLimit = c.maxBytes
		return stats
	}

	stats.Mode = ModeDisk
	if entries, err := os.ReadDir(c.coversDir); err == nil {
		for _, entry := range entries {
			if !entry.IsDir() {
				stats.Covers++
			}
		}
	}
	return stats
}

func clone(data []byte) []byte {
	if data == nil {
		return nil
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out
}
