// Package books provides database operations for catalog entries.
//
// All writes that touch more than one table run inside a transaction, and the
// FTS shadow tables are maintained by the schema triggers within that same
// transaction, so the search index never drifts from the primary rows.
package books

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/akovalenko/homelib/internal/database"
	"github.com/akovalenko/homelib/internal/entities"
)

// Repository handles all book catalog operations.
type Repository struct {
	db *database.Database
}

// NewRepository creates a new book repository over a shared handle.
func NewRepository(db *database.Database) *Repository {
	return &Repository{db: db}
}

// Save upserts a book together with its authors, translators, genre tags and
// sequence references. The duplicate key is stamped from the current fields
// if the caller has not set it. A mid-sequence failure rolls everything back.
func (r *Repository) Save(book *entities.Book) error {
	if book.ID == "" {
		return fmt.Errorf("book has no id")
	}
	if book.DuplicateKey == "" {
		book.ComputeDuplicateKey()
	}
	if book.AddedDate.IsZero() {
		book.AddedDate = time.Now()
	}

	return r.db.WithTx(func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO books (id, title, language, version, annotation,
				book_date, document_date, document_size, added_date,
				last_download_date, content_hash, document_id_trusted,
				duplicate_key, replaced_by_id)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				title = excluded.title,
				language = excluded.language,
				version = excluded.version,
				annotation = excluded.annotation,
				book_date = excluded.book_date,
				document_date = excluded.document_date,
				document_size = excluded.document_size,
				content_hash = excluded.content_hash,
				document_id_trusted = excluded.document_id_trusted,
				duplicate_key = excluded.duplicate_key,
				replaced_by_id = excluded.replaced_by_id`,
			book.ID, book.Title, book.Language, book.Version, book.Annotation,
			database.TimeOrNull(book.BookDate), database.TimeOrNull(book.DocumentDate),
			book.DocumentSize, book.AddedDate,
			database.TimeOrNull(book.LastDownloadDate), book.ContentHash,
			book.DocumentIDTrusted, book.DuplicateKey, book.ReplacedByID)
		if err != nil {
			return fmt.Errorf("failed to save book %s: %w", book.ID, err)
		}

		if err := r.saveRelations(tx, book); err != nil {
			return err
		}
		return nil
	})
}

func (r *Repository) saveRelations(tx *sql.Tx, book *entities.Book) error {
	for _, table := range []string{"book_authors", "book_translators", "book_genres", "book_sequences"} {
		if _, err := tx.Exec("DELETE FROM "+table+" WHERE book_id = ?", book.ID); err != nil {
			return fmt.Errorf("failed to clear %s for %s: %w", table, book.ID, err)
		}
	}

	for i, name := range book.Authors {
		id, err := upsertNamed(tx, "authors", name)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(
			"INSERT INTO book_authors (book_id, author_id, position) VALUES (?, ?, ?)",
			book.ID, id, i); err != nil {
			return fmt.Errorf("failed to link author %q: %w", name, err)
		}
	}

	for i, name := range book.Translators {
		id, err := upsertNamed(tx, "translators", name)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(
			"INSERT INTO book_translators (book_id, translator_id, position) VALUES (?, ?, ?)",
			book.ID, id, i); err != nil {
			return fmt.Errorf("failed to link translator %q: %w", name, err)
		}
	}

	for _, tag := range book.GenreTags {
		if _, err := tx.Exec(
			"INSERT OR IGNORE INTO book_genres (book_id, genre_tag) VALUES (?, ?)",
			book.ID, tag); err != nil {
			return fmt.Errorf("failed to link genre %q: %w", tag, err)
		}
	}

	for _, seq := range book.Sequences {
		id, err := upsertNamed(tx, "sequences", seq.Name)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(
			"INSERT INTO book_sequences (book_id, sequence_id, seq_number) VALUES (?, ?, ?)",
			book.ID, id, seq.Number); err != nil {
			return fmt.Errorf("failed to link sequence %q: %w", seq.Name, err)
		}
	}
	return nil
}

// upsertNamed inserts a row into a (id, name UNIQUE) table if absent and
// returns its id.
func upsertNamed(tx *sql.Tx, table, name string) (int64, error) {
	if _, err := tx.Exec("INSERT OR IGNORE INTO "+table+" (name) VALUES (?)", name); err != nil {
		return 0, fmt.Errorf("failed to upsert into %s: %w", table, err)
	}
	var id int64
	if err := tx.QueryRow("SELECT id FROM "+table+" WHERE name = ?", name).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to resolve %s id for %q: %w", table, name, err)
	}
	return id, nil
}

const bookColumns = `id, title, language, version, annotation, book_date,
	document_date, document_size, added_date, last_download_date,
	content_hash, document_id_trusted, duplicate_key, replaced_by_id`

func scanBook(row interface{ Scan(...any) error }) (*entities.Book, error) {
	var b entities.Book
	var annotation, contentHash, duplicateKey, replacedBy, language sql.NullString
	var bookDate, docDate, added, lastDownload sql.NullTime
	var size sql.NullInt64
	var version sql.NullFloat64
	var trusted sql.NullBool

	err := row.Scan(&b.ID, &b.Title, &language, &version, &annotation,
		&bookDate, &docDate, &size, &added, &lastDownload,
		&contentHash, &trusted, &duplicateKey, &replacedBy)
	if err != nil {
		return nil, err
	}

	b.Language = database.NullString(language)
	b.Version = database.NullFloat64(version)
	b.Annotation = database.NullString(annotation)
	b.BookDate = database.NullTime(bookDate)
	b.DocumentDate = database.NullTime(docDate)
	b.DocumentSize = database.NullInt64(size)
	b.AddedDate = database.NullTime(added)
	b.LastDownloadDate = database.NullTime(lastDownload)
	b.ContentHash = database.NullString(contentHash)
	b.DocumentIDTrusted = trusted.Valid && trusted.Bool
	b.DuplicateKey = database.NullString(duplicateKey)
	b.ReplacedByID = database.NullString(replacedBy)
	return &b, nil
}

// GetByID returns a book with its relations. Replaced books are still
// retrievable here; only the active lookups exclude them.
func (r *Repository) GetByID(id string) (*entities.Book, error) {
	row := r.db.DB.QueryRow("SELECT "+bookColumns+" FROM books WHERE id = ?", id)
	book, err := scanBook(row)
	if err == sql.ErrNoRows {
		return nil, database.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load book %s: %w", id, err)
	}
	if err := r.loadRelations(book); err != nil {
		return nil, err
	}
	return book, nil
}

func (r *Repository) loadRelations(book *entities.Book) error {
	var err error
	book.Authors, err = r.namedFor("authors", "book_authors", "author_id", book.ID)
	if err != nil {
		return err
	}
	book.Translators, err = r.namedFor("translators", "book_translators", "translator_id", book.ID)
	if err != nil {
		return err
	}

	rows, err := r.db.DB.Query(
		"SELECT genre_tag FROM book_genres WHERE book_id = ? ORDER BY genre_tag", book.ID)
	if err != nil {
		return fmt.Errorf("failed to load genres for %s: %w", book.ID, err)
	}
	defer rows.Close()
	book.GenreTags = nil
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return err
		}
		book.GenreTags = append(book.GenreTags, tag)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	seqRows, err := r.db.DB.Query(`
		SELECT s.name, bs.seq_number
		FROM book_sequences bs JOIN sequences s ON s.id = bs.sequence_id
		WHERE bs.book_id = ? ORDER BY s.name`, book.ID)
	if err != nil {
		return fmt.Errorf("failed to load sequences for %s: %w", book.ID, err)
	}
	defer seqRows.Close()
	book.Sequences = nil
	for seqRows.Next() {
		var ref entities.SequenceRef
		if err := seqRows.Scan(&ref.Name, &ref.Number); err != nil {
			return err
		}
		book.Sequences = append(book.Sequences, ref)
	}
	return seqRows.Err()
}

func (r *Repository) namedFor(table, link, fk, bookID string) ([]string, error) {
	rows, err := r.db.DB.Query(fmt.Sprintf(`
		SELECT n.name FROM %s l JOIN %s n ON n.id = l.%s
		WHERE l.book_id = ? ORDER BY l.position`, link, table, fk), bookID)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s for %s: %w", table, bookID, err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (r *Repository) queryBooks(query string, args ...any) ([]*entities.Book, error) {
	rows, err := r.db.DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*entities.Book
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, book)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, book := range result {
		if err := r.loadRelations(book); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// ActiveByContentHash returns the non-replaced books sharing a declared
// document identifier.
func (r *Repository) ActiveByContentHash(hash string) ([]*entities.Book, error) {
	if hash == "" {
		return nil, nil
	}
	return r.queryBooks(
		"SELECT "+bookColumns+" FROM books WHERE content_hash = ? AND replaced_by_id = ''", hash)
}

// ActiveByDuplicateKey returns the non-replaced books sharing a normalized
// duplicate key.
func (r *Repository) ActiveByDuplicateKey(key string) ([]*entities.Book, error) {
	if key == "" {
		return nil, nil
	}
	return r.queryBooks(
		"SELECT "+bookColumns+" FROM books WHERE duplicate_key = ? AND replaced_by_id = ''", key)
}

// MarkReplaced records that the book identified by id has been superseded.
// This is its own small transaction.
func (r *Repository) MarkReplaced(id, byID string) error {
	res, err := r.db.DB.Exec("UPDATE books SET replaced_by_id = ? WHERE id = ?", byID, id)
	if err != nil {
		return fmt.Errorf("failed to mark %s replaced by %s: %w", id, byID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return database.ErrNotFound
	}
	return nil
}

// Delete removes a book and, via cascades and triggers, its relation rows
// and search-index entries.
func (r *Repository) Delete(id string) error {
	_, err := r.db.DB.Exec("DELETE FROM books WHERE id = ?", id)
	return err
}

// TouchLastDownload stamps the book's last download time.
func (r *Repository) TouchLastDownload(id string, t time.Time) error {
	_, err := r.db.DB.Exec("UPDATE books SET last_download_date = ? WHERE id = ?", t, id)
	return err
}

// Search runs a full-text query over titles and annotations of active books.
func (r *Repository) Search(query string, limit int) ([]*entities.Book, error) {
	if limit <= 0 {
		limit = 50
	}
	return r.queryBooks(`
		SELECT `+bookColumns+` FROM books
		WHERE rowid IN (SELECT rowid FROM books_fts WHERE books_fts MATCH ?)
		  AND replaced_by_id = ''
		LIMIT ?`, query, limit)
}

// SearchAuthors runs a full-text query over author names.
func (r *Repository) SearchAuthors(query string, limit int) ([]string, error) {
	return r.searchNames("authors", "authors_fts", query, limit)
}

// SearchSequences runs a full-text query over sequence names.
func (r *Repository) SearchSequences(query string, limit int) ([]string, error) {
	return r.searchNames("sequences", "sequences_fts", query, limit)
}

func (r *Repository) searchNames(table, fts, query string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.DB.Query(fmt.Sprintf(`
		SELECT name FROM %s WHERE id IN (SELECT rowid FROM %s WHERE %s MATCH ?)
		ORDER BY name LIMIT ?`, table, fts, fts), query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// ReplacedCount returns how many books have been superseded.
func (r *Repository) ReplacedCount() (int, error) {
	return r.countRow("SELECT COUNT(*) FROM books WHERE replaced_by_id <> ''")
}

// TrustedActiveCount returns how many active books carry a trusted
// document identifier.
func (r *Repository) TrustedActiveCount() (int, error) {
	return r.countRow(
		"SELECT COUNT(*) FROM books WHERE document_id_trusted = 1 AND replaced_by_id = ''")
}

// DuplicateKeyGroupCount returns the number of distinct duplicate-key groups
// among active books.
func (r *Repository) DuplicateKeyGroupCount() (int, error) {
	return r.countRow(
		"SELECT COUNT(DISTINCT duplicate_key) FROM books WHERE replaced_by_id = '' AND duplicate_key <> ''")
}

// CountAddedSince returns how many active books were added after the cutoff.
func (r *Repository) CountAddedSince(cutoff time.Time) (int, error) {
	var n int
	err := r.db.DB.QueryRow(
		"SELECT COUNT(*) FROM books WHERE replaced_by_id = '' AND added_date >= ?", cutoff).Scan(&n)
	return n, err
}

func (r *Repository) countRow(query string) (int, error) {
	var n int
	err := r.db.DB.QueryRow(query).Scan(&n)
	return n, err
}
