package entities

import (
	"regexp"
	"strings"
	"time"
)

// Book is a single catalog entry. A book whose ReplacedByID is non-empty has
// been superseded by a newer copy: it stays addressable by ID for history but
// is excluded from every active-catalog lookup.
type Book struct {
	ID           string
	Version      float64
	Title        string
	Language     string
	BookDate     time.Time
	DocumentDate time.Time
	Annotation   string
	DocumentSize int64

	AddedDate        time.Time
	LastDownloadDate time.Time

	// ContentHash is the identifier declared inside the document itself.
	// It is whatever the source tool wrote there, not a real hash, and is
	// frequently garbage; DocumentIDTrusted records whether it passed
	// validation at ingest time.
	ContentHash       string
	DocumentIDTrusted bool

	DuplicateKey string
	ReplacedByID string

	Authors     []string
	Translators []string
	GenreTags   []string
	Sequences   []SequenceRef
}

// SequenceRef ties a book to a named sequence at a position.
type SequenceRef struct {
	Name   string
	Number int
}

// PrimaryAuthor returns the first listed author, or an empty string.
func (b *Book) PrimaryAuthor() string {
	if len(b.Authors) == 0 {
		return ""
	}
	return b.Authors[0]
}

// IsReplaced reports whether the book has been superseded.
func (b *Book) IsReplaced() bool {
	return b.ReplacedByID != ""
}

var whitespaceRuns = regexp.MustCompile(`\s+`)

// MakeDuplicateKey builds the normalized (title, primary author, language)
// composite used by the fallback duplicate-matching tier. Case-folded,
// whitespace-collapsed, stable across ingests of the same edition.
func MakeDuplicateKey(title, primaryAuthor, language string) string {
	norm := func(s string) string {
		return whitespaceRuns.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), " ")
	}
	return norm(title) + "|" + norm(primaryAuthor) + "|" + norm(language)
}

// ComputeDuplicateKey stamps the book's DuplicateKey from its current fields.
func (b *Book) ComputeDuplicateKey() string {
	b.DuplicateKey = MakeDuplicateKey(b.Title, b.PrimaryAuthor(), b.Language)
	return b.DuplicateKey
}
