package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/akovalenko/homelib/internal/config"
	"github.com/akovalenko/homelib/internal/database"
)

// InitDBCommand creates the database schema without starting the server.
type InitDBCommand struct {
	DatabasePath string
}

// NewInitDBCommand creates a new InitDBCommand.
func NewInitDBCommand() *InitDBCommand {
	return &InitDBCommand{}
}

// ParseFlags parses command line flags.
func (cmd *InitDBCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("init-db", flag.ExitOnError)
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the catalog database file")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s init-db [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Create the catalog schema. Safe to run repeatedly; existing data is never touched.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}
	return fs.Parse(args)
}

// Run executes the command.
func (cmd *InitDBCommand) Run() error {
	db, err := database.New(cmd.DatabasePath)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Initialize(); err != nil {
		return err
	}
	fmt.Printf("Schema ready at %s\n", cmd.DatabasePath)
	return nil
}
