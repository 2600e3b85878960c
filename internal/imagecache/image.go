package imagecache

import (
	"bytes"
	"io"
)

// BookImage is the shared view over freshly rendered and cache-served book
// artwork. Cover and Thumbnail return a new reader positioned at the start
// on every call, and never one that aliases cache-internal buffers.
type BookImage interface {
	BookID() string
	Cover() io.Reader
	Thumbnail() io.Reader
	HasCover() bool
	HasThumbnail() bool
}

// Rendered is renderer output on its way into the cache.
type Rendered struct {
	ID         string
	CoverBytes []byte
	ThumbBytes []byte
}

func (r *Rendered) BookID() string { return r.ID }

func (r *Rendered) HasCover() bool { return len(r.CoverBytes) > 0 }

func (r *Rendered) HasThumbnail() bool { return len(r.ThumbBytes) > 0 }

func (r *Rendered) Cover() io.Reader {
	if !r.HasCover() {
		return nil
	}
	return bytes.NewReader(r.CoverBytes)
}

func (r *Rendered) Thumbnail() io.Reader {
	if !r.HasThumbnail() {
		return nil
	}
	return bytes.NewReader(r.ThumbBytes)
}

// Cached is an artifact served back out of the cache. Its slices are private
// copies taken at lookup time, so callers can hold it as long as they like.
type Cached struct {
	id    string
	cover []byte
	thumb []byte
}

func (c *Cached) BookID() string { return c.id }

func (c *Cached) HasCover() bool { return len(c.cover) > 0 }

func (c *Cached) HasThumbnail() bool { return len(c.thumb) > 0 }

func (c *Cached) Cover() io.Reader {
	if !c.HasCover() {
		return nil
	}
	return bytes.NewReader(c.cover)
}

func (c *Cached) Thumbnail() io.Reader {
	if !c.HasThumbnail() {
		return nil
	}
	return bytes.NewReader(c.thumb)
}
