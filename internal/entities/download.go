package entities

import "time"

// DownloadType distinguishes a full file download from an online read.
type DownloadType string

const (
	DownloadTypeDownload DownloadType = "download"
	DownloadTypeRead     DownloadType = "read"
)

// DownloadRecord is an immutable append-only fact about a served book.
// Records are removed only by the explicit retention operations.
type DownloadRecord struct {
	ID         int64
	BookID     string
	Timestamp  time.Time
	Type       DownloadType
	Format     string
	ClientInfo string
}

// DownloadEntry is a download record joined back to its book for history
// listings. Title and Author may be empty if the book row has been purged.
type DownloadEntry struct {
	DownloadRecord
	Title  string
	Author string
}
