package dedup

import "github.com/akovalenko/homelib/internal/entities"

// Batch is a transient overlay index for bulk imports. Books accepted during
// the session are indexed by content hash and duplicate key so later checks
// in the same session skip the store round-trip. It persists nothing and is
// not safe for concurrent use; one ingestion worker owns it.
type Batch struct {
	byHash map[string]*entities.Book
	byKey  map[string][]*entities.Book
}

// NewBatch opens a batch context for one bulk-import session.
func NewBatch() *Batch {
	return &Batch{
		byHash: make(map[string]*entities.Book),
		byKey:  make(map[string][]*entities.Book),
	}
}

// Add indexes an accepted book into the overlay.
func (b *Batch) Add(book *entities.Book) {
	if book.ContentHash != "" {
		if _, taken := b.byHash[book.ContentHash]; !taken {
			b.byHash[book.ContentHash] = book
		}
	}
	key := book.DuplicateKey
	if key == "" {
		key = book.ComputeDuplicateKey()
	}
	b.byKey[key] = append(b.byKey[key], book)
}

// Remove drops a book from the overlay after its acceptance is reverted.
func (b *Batch) Remove(book *entities.Book) {
	if existing := b.byHash[book.ContentHash]; existing != nil && existing.ID == book.ID {
		delete(b.byHash, book.ContentHash)
	}
	key := book.DuplicateKey
	if key == "" {
		key = entities.MakeDuplicateKey(book.Title, book.PrimaryAuthor(), book.Language)
	}
	list := b.byKey[key]
	for i, candidate := range list {
		if candidate.ID == book.ID {
			b.byKey[key] = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(b.byKey[key]) == 0 {
		delete(b.byKey, key)
	}
}

// Size returns the number of distinct books indexed by duplicate key.
func (b *Batch) Size() int {
	n := 0
	for _, list := range b.byKey {
		n += len(list)
	}
	return n
}
