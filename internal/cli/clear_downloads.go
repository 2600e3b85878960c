package cli

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/akovalenko/homelib/internal/config"
	"github.com/akovalenko/homelib/internal/database"
	"github.com/akovalenko/homelib/internal/database/downloads"
)

// ClearDownloadsCommand applies retention to the download history.
type ClearDownloadsCommand struct {
	DatabasePath  string
	OlderThanDays int
	BookID        string
}

// NewClearDownloadsCommand creates a new ClearDownloadsCommand.
func NewClearDownloadsCommand() *ClearDownloadsCommand {
	return &ClearDownloadsCommand{}
}

// ParseFlags parses command line flags.
func (cmd *ClearDownloadsCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("clear-downloads", flag.ExitOnError)
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the catalog database file")
	fs.IntVar(&cmd.OlderThanDays, "older-than", 0, "Only remove records older than this many days (0 = all)")
	fs.StringVar(&cmd.BookID, "book", "", "Only remove records for this book id")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s clear-downloads [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Remove download history records. Without options the whole history is cleared.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}
	return fs.Parse(args)
}

// Run executes the command.
func (cmd *ClearDownloadsCommand) Run() error {
	db, err := database.New(cmd.DatabasePath)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.Initialize(); err != nil {
		return err
	}

	repo := downloads.NewRepository(db)
	switch {
	case cmd.BookID != "":
		if err := repo.ClearForBook(cmd.BookID); err != nil {
			return err
		}
		fmt.Printf("Cleared download history for book %s\n", cmd.BookID)
	case cmd.OlderThanDays > 0:
		cutoff := time.Now().AddDate(0, 0, -cmd.OlderThanDays)
		removed, err := repo.ClearOlderThan(cutoff)
		if err != nil {
			return err
		}
		fmt.Printf("Removed %d download records older than %s\n", removed, cutoff.Format("2006-01-02"))
	default:
		if err := repo.ClearAll(); err != nil {
			return err
		}
		fmt.Println("Cleared the whole download history")
	}
	return nil
}
