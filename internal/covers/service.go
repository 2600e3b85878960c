// Package covers serves book artwork through the image cache, invoking the
// external renderer only on a miss.
package covers

import (
	"log"

	"github.com/akovalenko/homelib/internal/entities"
	"github.com/akovalenko/homelib/internal/imagecache"
)

// Renderer produces raw cover and thumbnail bytes for a book. It is an
// external collaborator; either slice may be empty when the book has no
// usable artwork.
type Renderer interface {
	Render(book *entities.Book) (cover, thumbnail []byte, err error)
}

// Service is the read-through layer in front of the image cache.
type Service struct {
	cache    *imagecache.Cache
	renderer Renderer
}

// NewService creates a covers service.
func NewService(cache *imagecache.Cache, renderer Renderer) *Service {
	return &Service{cache: cache, renderer: renderer}
}

// GetImage returns artwork for the book: cached when present, freshly
// rendered (and stored back) otherwise. A failed render degrades to nil;
// the miss just costs a re-render next time.
func (s *Service) GetImage(book *entities.Book) imagecache.BookImage {
	if book == nil || book.ID == "" {
		return nil
	}

	if cached := s.cache.GetImage(book.ID); cached != nil {
		return cached
	}

	cover, thumb, err := s.renderer.Render(book)
	if err != nil {
		log.Printf("Cover render failed for %s: %v", book.ID, err)
		return nil
	}
	rendered := &imagecache.Rendered{ID: book.ID, CoverBytes: cover, ThumbBytes: thumb}
	if !rendered.HasCover() && !rendered.HasThumbnail() {
		return nil
	}

	s.cache.Add(rendered)
	return rendered
}

// HasImage reports whether artwork is already cached for the id.
func (s *Service) HasImage(id string) bool {
	return s.cache.HasImage(id)
}
