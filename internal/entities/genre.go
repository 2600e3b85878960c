package entities

import "strings"

// MainGenrePrefix marks the synthetic rows that carry a main category's
// translation. Tags with this prefix are bookkeeping only and must never be
// listed as real subgenres.
const MainGenrePrefix = "@"

// Genre is one node of the hierarchical genre taxonomy: either a subgenre
// (real tag, belongs to a main category by name) or a sentinel row holding a
// main category's translation (tag prefixed with MainGenrePrefix).
type Genre struct {
	ID          int64
	Tag         string
	Name        string
	Translation string
	Category    string
}

// IsMainTranslation reports whether the row is a main-category sentinel
// rather than a real subgenre.
func (g *Genre) IsMainTranslation() bool {
	return strings.HasPrefix(g.Tag, MainGenrePrefix)
}
