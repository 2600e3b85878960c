package imagecache

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemoryCache(t *testing.T, budget int64) *Cache {
	c, err := New(Config{InMemory: true, MaxMemoryBytes: budget})
	require.NoError(t, err)
	return c
}

func newDiskCache(t *testing.T) *Cache {
	dir := t.TempDir()
	c, err := New(Config{
		CoversDir: filepath.Join(dir, "covers"),
		ThumbsDir: filepath.Join(dir, "thumbs"),
	})
	require.NoError(t, err)
	return c
}

// jpegBytes starts with the JPEG magic so disk mode stores it verbatim.
func jpegBytes(size int) []byte {
	data := make([]byte, size)
	data[0], data[1] = 0xFF, 0xD8
	return data
}

func pngBytes(t *testing.T) []byte {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			img.Set(x, y, color.RGBA{R: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestMemory_AddAndGet(t *testing.T) {
	c := newMemoryCache(t, 1_000_000)
	c.Add(&Rendered{ID: "b1", CoverBytes: jpegBytes(100), ThumbBytes: jpegBytes(10)})

	require.True(t, c.HasImage("b1"))

	img := c.GetImage("b1")
	require.NotNil(t, img)
	assert.Equal(t, "b1", img.BookID())
	assert.True(t, img.HasCover())
	assert.True(t, img.HasThumbnail())

	cover, err := io.ReadAll(img.Cover())
	require.NoError(t, err)
	assert.Len(t, cover, 100)
}

func TestGetImage_MissReturnsNil(t *testing.T) {
	c := newMemoryCache(t, 1_000_000)
	assert.Nil(t, c.GetImage("absent"))
	assert.False(t, c.HasImage("absent"))
}

func TestGetImage_FreshReaderPerCall(t *testing.T) {
	c := newMemoryCache(t, 1_000_000)
	c.Add(&Rendered{ID: "b1", CoverBytes: jpegBytes(64)})

	img := c.GetImage("b1")
	require.NotNil(t, img)

	first, err := io.ReadAll(img.Cover())
	require.NoError(t, err)
	second, err := io.ReadAll(img.Cover())
	require.NoError(t, err)
	assert.Equal(t, first, second, "each Cover call reads from the start")
}

func TestGetImage_CopiesDoNotAliasCache(t *testing.T) {
	c := newMemoryCache(t, 1_000_000)
	c.Add(&Rendered{ID: "b1", CoverBytes: jpegBytes(16)})

	img := c.GetImage("b1")
	require.NotNil(t, img)
	data, err := io.ReadAll(img.Cover())
	require.NoError(t, err)
	data[5] = 0xAB

	again, err := io.ReadAll(c.GetImage("b1").Cover())
	require.NoError(t, err)
	assert.Equal(t, byte(0), again[5], "served bytes are independent copies")
}

func TestMemory_FirstWriteWins(t *testing.T) {
	c := newMemoryCache(t, 1_000_000)
	c.Add(&Rendered{ID: "b1", CoverBytes: jpegBytes(100)})
	c.Add(&Rendered{ID: "b1", CoverBytes: jpegBytes(200)})

	cover, err := io.ReadAll(c.GetImage("b1").Cover())
	require.NoError(t, err)
	assert.Len(t, cover, 100)
	assert.Equal(t, int64(100), c.Stats().CoverBytes)
}

func TestMemory_FIFOEviction(t *testing.T) {
	c := newMemoryCache(t, 1_000_000)

	// Covers only, so presence tracks the cover map exactly.
	c.Add(&Rendered{ID: "b1", CoverBytes: jpegBytes(700_000)})
	c.Add(&Rendered{ID: "b2", CoverBytes: jpegBytes(200_000)})
	require.True(t, c.HasImage("b1"))

	c.Add(&Rendered{ID: "b3", CoverBytes: jpegBytes(500_000)})

	assert.False(t, c.HasImage("b1"), "oldest cover is evicted first")
	assert.True(t, c.HasImage("b2"))
	assert.True(t, c.HasImage("b3"))
	assert.LessOrEqual(t, c.Stats().CoverBytes, int64(1_000_000))
}

func TestMemory_ThumbnailSurvivesCoverEviction(t *testing.T) {
	c := newMemoryCache(t, 1_000_000)
	c.Add(&Rendered{ID: "b1", CoverBytes: jpegBytes(900_000), ThumbBytes: jpegBytes(500)})
	c.Add(&Rendered{ID: "b2", CoverBytes: jpegBytes(900_000)})

	require.True(t, c.HasImage("b1"), "thumbnail keeps the id present")
	img := c.GetImage("b1")
	require.NotNil(t, img)
	assert.False(t, img.HasCover())
	assert.True(t, img.HasThumbnail())
}

func TestMemory_OversizeCoverNotCached(t *testing.T) {
	c := newMemoryCache(t, 1000)
	c.Add(&Rendered{ID: "big", CoverBytes: jpegBytes(2000), ThumbBytes: jpegBytes(50)})

	img := c.GetImage("big")
	require.NotNil(t, img)
	assert.False(t, img.HasCover(), "a cover over the whole budget is skipped")
	assert.True(t, img.HasThumbnail())
	assert.Equal(t, int64(0), c.Stats().CoverBytes)
}

func TestAdd_EmptyArtifactIsNoOp(t *testing.T) {
	c := newMemoryCache(t, 1000)
	c.Add(nil)
	c.Add(&Rendered{ID: "b1"})
	c.Add(&Rendered{CoverBytes: jpegBytes(10)})

	assert.Equal(t, 0, c.Stats().Covers)
	assert.Equal(t, 0, c.Stats().Thumbnails)
}

func TestClear_Memory(t *testing.T) {
	c := newMemoryCache(t, 1_000_000)
	c.Add(&Rendered{ID: "b1", CoverBytes: jpegBytes(100), ThumbBytes: jpegBytes(10)})

	c.Clear()

	assert.False(t, c.HasImage("b1"))
	stats := c.Stats()
	assert.Equal(t, 0, stats.Covers)
	assert.Equal(t, int64(0), stats.CoverBytes)
	assert.Equal(t, 0, stats.Thumbnails)
}

func TestDisk_WritesFiles(t *testing.T) {
	c := newDiskCache(t)
	c.Add(&Rendered{ID: "b1", CoverBytes: jpegBytes(100), ThumbBytes: jpegBytes(10)})

	_, err := os.Stat(filepath.Join(c.coversDir, "b1.jpg"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(c.thumbsDir, "b1.jpg"))
	assert.NoError(t, err)
	assert.True(t, c.HasImage("b1"))
}

func TestDisk_SkipsExistingFile(t *testing.T) {
	c := newDiskCache(t)
	path := filepath.Join(c.coversDir, "b1.jpg")
	require.NoError(t, os.WriteFile(path, jpegBytes(42), 0644))

	c.Add(&Rendered{ID: "b1", CoverBytes: jpegBytes(999)})

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(42), info.Size(), "existing files are never rewritten")
}

func TestDisk_NormalizesPNGToJPEG(t *testing.T) {
	c := newDiskCache(t)
	c.Add(&Rendered{ID: "b1", CoverBytes: pngBytes(t)})

	data, err := os.ReadFile(filepath.Join(c.coversDir, "b1.jpg"))
	require.NoError(t, err)
	require.True(t, len(data) >= 2)
	assert.Equal(t, []byte{0xFF, 0xD8}, data[:2], "stored file must be JPEG")
}

func TestDisk_ReadThrough(t *testing.T) {
	c := newDiskCache(t)
	require.NoError(t, os.WriteFile(filepath.Join(c.coversDir, "b1.jpg"), jpegBytes(100), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(c.thumbsDir, "b1.jpg"), jpegBytes(20), 0644))

	img := c.GetImage("b1")
	require.NotNil(t, img)
	assert.True(t, img.HasCover())
	assert.True(t, img.HasThumbnail(), "thumbnails from a previous process read through")
}

func TestClear_DiskRemovesFiles(t *testing.T) {
	c := newDiskCache(t)
	c.Add(&Rendered{ID: "b1", CoverBytes: jpegBytes(100), ThumbBytes: jpegBytes(10)})

	c.Clear()

	entries, err := os.ReadDir(c.coversDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.False(t, c.HasImage("b1"))
}

func TestStats_Modes(t *testing.T) {
	mem := newMemoryCache(t, 500)
	mem.Add(&Rendered{ID: "b1", CoverBytes: jpegBytes(100), ThumbBytes: jpegBytes(10)})
	stats := mem.Stats()
	assert.Equal(t, ModeMemory, stats.Mode)
	assert.Equal(t, 1, stats.Covers)
	assert.Equal(t, int64(100), stats.CoverBytes)
	assert.Equal(t, int64(500), stats.CoverLimit)
	assert.Equal(t, int64(10), stats.ThumbBytes)

	disk := newDiskCache(t)
	disk.Add(&Rendered{ID: "b1", CoverBytes: jpegBytes(100)})
	stats = disk.Stats()
	assert.Equal(t, ModeDisk, stats.Mode)
	assert.Equal(t, 1, stats.Covers)
}
