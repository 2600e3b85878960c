package database

import (
	"database/sql"
	"errors"
	"time"
)

// ErrNotFound is returned when a record is not found.
var ErrNotFound = errors.New("record not found")

// Executor is satisfied by both *sql.DB and *sql.Tx, so repository helpers
// can run inside or outside an explicit transaction.
type Executor interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// NullString maps a NULL column to an empty string.
func NullString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// NullInt64 maps a NULL column to zero.
func NullInt64(ni sql.NullInt64) int64 {
	if ni.Valid {
		return ni.Int64
	}
	return 0
}

// NullFloat64 maps a NULL column to zero.
func NullFloat64(nf sql.NullFloat64) float64 {
	if nf.Valid {
		return nf.Float64
	}
	return 0
}

// NullTime maps a NULL column to the zero time.
func NullTime(nt sql.NullTime) time.Time {
	if nt.Valid {
		return nt.Time
	}
	return time.Time{}
}

// TimeOrNull maps the zero time back to a NULL parameter, so that "no date"
// round-trips instead of persisting year 1.
func TimeOrNull(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
