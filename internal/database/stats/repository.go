// Package stats persists the library's aggregate counters.
package stats

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/akovalenko/homelib/internal/database"
	"github.com/akovalenko/homelib/internal/entities"
)

// Repository handles library statistics operations.
type Repository struct {
	db *database.Database
}

// NewRepository creates a new statistics repository over a shared handle.
func NewRepository(db *database.Database) *Repository {
	return &Repository{db: db}
}

// Get returns a counter value, or 0 when the key has never been set.
func (r *Repository) Get(key string) (int, error) {
	var value int
	err := r.db.DB.QueryRow("SELECT value FROM library_stats WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read stat %s: %w", key, err)
	}
	return value, nil
}

// Set upserts a counter without a period.
func (r *Repository) Set(key string, value int) error {
	return r.SetWithPeriod(key, value, 0)
}

// SetWithPeriod upserts a counter carrying a time window, used for counters
// like "new books in the last N days".
func (r *Repository) SetWithPeriod(key string, value, periodDays int) error {
	return upsert(r.db.DB, key, value, periodDays, time.Now())
}

func upsert(ex database.Executor, key string, value, periodDays int, now time.Time) error {
	_, err := ex.Exec(`
		INSERT INTO library_stats (key, value, updated_at, period_days)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at,
			period_days = excluded.period_days`,
		key, value, now, periodDays)
	if err != nil {
		return fmt.Errorf("failed to upsert stat %s: %w", key, err)
	}
	return nil
}

// GetAll returns every stored counter keyed by name.
func (r *Repository) GetAll() (map[string]entities.LibraryStat, error) {
	rows, err := r.db.DB.Query("SELECT key, value, updated_at, period_days FROM library_stats")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string]entities.LibraryStat)
	for rows.Next() {
		var s entities.LibraryStat
		var updated sql.NullTime
		var period sql.NullInt64
		if err := rows.Scan(&s.Key, &s.Value, &updated, &period); err != nil {
			return nil, err
		}
		s.UpdatedAt = database.NullTime(updated)
		s.PeriodDays = int(database.NullInt64(period))
		result[s.Key] = s
	}
	return result, rows.Err()
}

// SetMany upserts a batch of counters in one transaction. Only the new_books
// key receives the period value; every other key is stored without one.
func (r *Repository) SetMany(values map[string]int, newBooksPeriod int) error {
	now := time.Now()
	return r.db.WithTx(func(tx *sql.Tx) error {
		for key, value := range values {
			period := 0
			if key == entities.StatNewBooks {
				period = newBooksPeriod
			}
			if err := upsert(tx, key, value, period, now); err != nil {
				return err
			}
		}
		return nil
	})
}

// Snapshot recomputes the standard counters from the stats_overview view plus
// the windowed new-books count, without writing anything.
func (r *Repository) Snapshot(newBooksPeriodDays int) (map[string]int, error) {
	var total, authors, sequences, genres, totalDl, uniqueDl int
	err := r.db.DB.QueryRow(`
		SELECT total_books, authors_count, sequences_count, genres_count,
		       total_downloads, unique_downloads
		FROM stats_overview`).
		Scan(&total, &authors, &sequences, &genres, &totalDl, &uniqueDl)
	if err != nil {
		return nil, fmt.Errorf("failed to read stats overview: %w", err)
	}

	cutoff := time.Now().AddDate(0, 0, -newBooksPeriodDays)
	var newBooks int
	err = r.db.DB.QueryRow(
		"SELECT COUNT(*) FROM books WHERE replaced_by_id = '' AND added_date >= ?", cutoff).
		Scan(&newBooks)
	if err != nil {
		return nil, fmt.Errorf("failed to count new books: %w", err)
	}

	return map[string]int{
		entities.StatTotalBooks:      total,
		entities.StatAuthorsCount:    authors,
		entities.StatSequencesCount:  sequences,
		entities.StatGenresCount:     genres,
		entities.StatTotalDownloads:  totalDl,
		entities.StatUniqueDownloads: uniqueDl,
		entities.StatNewBooks:        newBooks,
	}, nil
}

// Refresh recomputes and persists the standard counters.
func (r *Repository) Refresh(newBooksPeriodDays int) error {
	snapshot, err := r.Snapshot(newBooksPeriodDays)
	if err != nil {
		return err
	}
	return r.SetMany(snapshot, newBooksPeriodDays)
}
