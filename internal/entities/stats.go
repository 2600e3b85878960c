package entities

import "time"

// Well-known library statistic keys.
const (
	StatTotalBooks      = "total_books"
	StatAuthorsCount    = "authors_count"
	StatSequencesCount  = "sequences_count"
	StatGenresCount     = "genres_count"
	StatNewBooks        = "new_books"
	StatUniqueDownloads = "unique_downloads"
	StatTotalDownloads  = "total_downloads"
)

// LibraryStat is a named aggregate counter. PeriodDays is only meaningful for
// time-windowed counters such as StatNewBooks and is zero otherwise.
type LibraryStat struct {
	Key        string
	Value      int
	UpdatedAt  time.Time
	PeriodDays int
}
