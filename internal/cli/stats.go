package cli

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/akovalenko/homelib/internal/config"
	"github.com/akovalenko/homelib/internal/database"
	"github.com/akovalenko/homelib/internal/database/stats"
)

// StatsCommand prints the stored library statistics.
type StatsCommand struct {
	DatabasePath       string
	Refresh            bool
	NewBooksPeriodDays int
}

// NewStatsCommand creates a new StatsCommand.
func NewStatsCommand() *StatsCommand {
	return &StatsCommand{}
}

// ParseFlags parses command line flags.
func (cmd *StatsCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the catalog database file")
	fs.BoolVar(&cmd.Refresh, "refresh", false, "Recompute the counters before printing")
	fs.IntVar(&cmd.NewBooksPeriodDays, "new-books-period", 7, "Window in days for the new_books counter (with -refresh)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s stats [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Print the stored library statistics.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}
	return fs.Parse(args)
}

// Run executes the command.
func (cmd *StatsCommand) Run() error {
	db, err := database.New(cmd.DatabasePath)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.Initialize(); err != nil {
		return err
	}

	repo := stats.NewRepository(db)
	if cmd.Refresh {
		if err := repo.Refresh(cmd.NewBooksPeriodDays); err != nil {
			return err
		}
	}

	all, err := repo.GetAll()
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(all))
	for key := range all {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		stat := all[key]
		if stat.PeriodDays > 0 {
			fmt.Printf("%-20s %8d  (last %d days)\n", key, stat.Value, stat.PeriodDays)
		} else {
			fmt.Printf("%-20s %8d\n", key, stat.Value)
		}
	}
	return nil
}
