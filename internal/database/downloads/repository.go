// Package downloads keeps the append-only download history.
package downloads

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/akovalenko/homelib/internal/database"
	"github.com/akovalenko/homelib/internal/entities"
)

// Repository handles download history operations.
type Repository struct {
	db *database.Database
}

// NewRepository creates a new download repository over a shared handle.
func NewRepository(db *database.Database) *Repository {
	return &Repository{db: db}
}

// Record appends a download fact. Existing records are never updated.
func (r *Repository) Record(bookID string, dt entities.DownloadType, format, clientInfo string) error {
	if bookID == "" {
		return fmt.Errorf("download record has no book id")
	}
	_, err := r.db.DB.Exec(`
		INSERT INTO downloads (book_id, ts, download_type, format, client_info)
		VALUES (?, ?, ?, ?, ?)`,
		bookID, time.Now(), string(dt), format, clientInfo)
	if err != nil {
		return fmt.Errorf("failed to record download of %s: %w", bookID, err)
	}
	return nil
}

const entryQuery = `
	SELECT d.id, d.book_id, d.ts, d.download_type, d.format, d.client_info,
	       COALESCE(b.title, ''),
	       COALESCE((SELECT a.name FROM book_authors ba JOIN authors a ON a.id = ba.author_id
	                 WHERE ba.book_id = d.book_id ORDER BY ba.position LIMIT 1), '')
	FROM downloads d LEFT JOIN books b ON b.id = d.book_id`

// Recent returns download history newest-first, joined back to the books.
func (r *Repository) Recent(limit, offset int) ([]entities.DownloadEntry, error) {
	return r.queryEntries(entryQuery+" ORDER BY d.ts DESC LIMIT ? OFFSET ?", limit, offset)
}

// Alphabetic returns download history ordered by book title.
func (r *Repository) Alphabetic(limit, offset int) ([]entities.DownloadEntry, error) {
	return r.queryEntries(entryQuery+" ORDER BY b.title COLLATE NOCASE, d.ts DESC LIMIT ? OFFSET ?", limit, offset)
}

func (r *Repository) queryEntries(query string, limit, offset int) ([]entities.DownloadEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := r.db.DB.Query(query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []entities.DownloadEntry
	for rows.Next() {
		var e entities.DownloadEntry
		var ts sql.NullTime
		var dt, format, client sql.NullString
		if err := rows.Scan(&e.ID, &e.BookID, &ts, &dt, &format, &client, &e.Title, &e.Author); err != nil {
			return nil, err
		}
		e.Timestamp = database.NullTime(ts)
		e.Type = entities.DownloadType(database.NullString(dt))
		e.Format = database.NullString(format)
		e.ClientInfo = database.NullString(client)
		result = append(result, e)
	}
	return result, rows.Err()
}

// UniqueCount returns the number of distinct downloaded books.
func (r *Repository) UniqueCount() (int, error) {
	var n int
	err := r.db.DB.QueryRow("SELECT COUNT(DISTINCT book_id) FROM downloads").Scan(&n)
	return n, err
}

// TotalCount returns the total number of download records.
func (r *Repository) TotalCount() (int, error) {
	var n int
	err := r.db.DB.QueryRow("SELECT COUNT(*) FROM downloads").Scan(&n)
	return n, err
}

// ClearAll removes the whole history.
func (r *Repository) ClearAll() error {
	_, err := r.db.DB.Exec("DELETE FROM downloads")
	return err
}

// ClearOlderThan removes records before the cutoff.
func (r *Repository) ClearOlderThan(cutoff time.Time) (int64, error) {
	res, err := r.db.DB.Exec("DELETE FROM downloads WHERE ts < ?", cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ClearForBook removes every record for one book.
func (r *Repository) ClearForBook(bookID string) error {
	_, err := r.db.DB.Exec("DELETE FROM downloads WHERE book_id = ?", bookID)
	return err
}
