// Package genres maintains the hierarchical genre taxonomy.
//
// Merges are additive-only: book_genres rows reference tags by value, so an
// import must never delete a tag that existing books point at. The only
// destructive path is the explicit administrative Reload.
package genres

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/akovalenko/homelib/internal/database"
	"github.com/akovalenko/homelib/internal/entities"
	"github.com/akovalenko/homelib/internal/taxonomy"
)

// Repository handles genre taxonomy operations.
type Repository struct {
	db *database.Database
}

// NewRepository creates a new genre repository over a shared handle.
func NewRepository(db *database.Database) *Repository {
	return &Repository{db: db}
}

// Merge imports an external taxonomy additively. It proceeds only when the
// source carries strictly more subgenres than are already stored, so
// re-running an import with a subset of known tags changes nothing.
func (r *Repository) Merge(tax *taxonomy.Taxonomy) error {
	incoming := tax.SubgenreCount()
	stored, err := r.NonPlaceholderCount()
	if err != nil {
		return fmt.Errorf("failed to count stored genres: %w", err)
	}
	if incoming <= stored {
		log.Printf("Genre import skipped: source has %d subgenres, store has %d", incoming, stored)
		return nil
	}

	return r.db.WithTx(func(tx *sql.Tx) error {
		return insertTaxonomy(tx, tax)
	})
}

// Reload clears the taxonomy and re-seeds it from the source. This is the
// only destructive genre operation and exists for administrative re-seeding.
func (r *Repository) Reload(tax *taxonomy.Taxonomy) error {
	return r.db.WithTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec("DELETE FROM genres"); err != nil {
			return fmt.Errorf("failed to clear genres: %w", err)
		}
		return insertTaxonomy(tx, tax)
	})
}

func insertTaxonomy(tx *sql.Tx, tax *taxonomy.Taxonomy) error {
	for _, cat := range tax.Categories {
		// Sentinel row carrying the main category's translation. The
		// prefixed tag keeps it apart from real subgenre tags.
		sentinel := entities.MainGenrePrefix + cat.Name
		if _, err := tx.Exec(`
			INSERT OR IGNORE INTO genres (tag, name, translation, category)
			VALUES (?, ?, ?, ?)`,
			sentinel, cat.Name, cat.Translation, cat.Name); err != nil {
			return fmt.Errorf("failed to upsert category %q: %w", cat.Name, err)
		}

		for _, sub := range cat.Subgenres {
			if sub.Tag == "" {
				continue
			}
			if _, err := tx.Exec(`
				INSERT OR IGNORE INTO genres (tag, name, translation, category)
				VALUES (?, ?, ?, ?)`,
				sub.Tag, sub.Name, sub.Translation, cat.Name); err != nil {
				return fmt.Errorf("failed to upsert genre %q: %w", sub.Tag, err)
			}
		}
	}
	return nil
}

// NonPlaceholderCount returns the number of stored real subgenre tags,
// excluding the main-category sentinel rows.
func (r *Repository) NonPlaceholderCount() (int, error) {
	var n int
	err := r.db.DB.QueryRow(
		"SELECT COUNT(*) FROM genres WHERE tag NOT LIKE ? || '%'",
		entities.MainGenrePrefix).Scan(&n)
	return n, err
}

// Subgenres lists every real subgenre, sentinel rows filtered out.
func (r *Repository) Subgenres() ([]entities.Genre, error) {
	return r.list("SELECT id, tag, name, translation, category FROM genres WHERE tag NOT LIKE ? || '%' ORDER BY category, tag",
		entities.MainGenrePrefix)
}

// MainCategories lists the main-category sentinel rows.
func (r *Repository) MainCategories() ([]entities.Genre, error) {
	return r.list("SELECT id, tag, name, translation, category FROM genres WHERE tag LIKE ? || '%' ORDER BY name",
		entities.MainGenrePrefix)
}

// ByTag returns a single genre row, or database.ErrNotFound.
func (r *Repository) ByTag(tag string) (*entities.Genre, error) {
	var g entities.Genre
	var name, translation, category sql.NullString
	err := r.db.DB.QueryRow(
		"SELECT id, tag, name, translation, category FROM genres WHERE tag = ?", tag).
		Scan(&g.ID, &g.Tag, &name, &translation, &category)
	if err == sql.ErrNoRows {
		return nil, database.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	g.Name = database.NullString(name)
	g.Translation = database.NullString(translation)
	g.Category = database.NullString(category)
	return &g, nil
}

func (r *Repository) list(query string, args ...any) ([]entities.Genre, error) {
	rows, err := r.db.DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []entities.Genre
	for rows.Next() {
		var g entities.Genre
		var name, translation, category sql.NullString
		if err := rows.Scan(&g.ID, &g.Tag, &name, &translation, &category); err != nil {
			return nil, err
		}
		g.Name = database.NullString(name)
		g.Translation = database.NullString(translation)
		g.Category = database.NullString(category)
		result = append(result, g)
	}
	return result, rows.Err()
}
