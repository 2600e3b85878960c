package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/akovalenko/homelib/internal/config"
	"github.com/akovalenko/homelib/internal/database"
	"github.com/akovalenko/homelib/internal/database/genres"
	"github.com/akovalenko/homelib/internal/taxonomy"
)

// ImportGenresCommand merges an FB2 genre taxonomy file into the catalog.
type ImportGenresCommand struct {
	DatabasePath string
	GenresPath   string
	Force        bool
}

// NewImportGenresCommand creates a new ImportGenresCommand.
func NewImportGenresCommand() *ImportGenresCommand {
	return &ImportGenresCommand{}
}

// ParseFlags parses command line flags.
func (cmd *ImportGenresCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("import-genres", flag.ExitOnError)
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the catalog database file")
	fs.StringVar(&cmd.GenresPath, "genres", config.DefaultGenresPath, "Path to the FB2 genres.xml taxonomy file")
	fs.BoolVar(&cmd.Force, "force", false, "Clear and rebuild the taxonomy instead of merging additively")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s import-genres [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Merge a genre taxonomy into the catalog. The default merge is additive and\n")
		fmt.Fprintf(os.Stderr, "only runs when the source has more subgenres than the store; -force clears\n")
		fmt.Fprintf(os.Stderr, "and re-seeds (administrative re-seeding only).\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}
	return fs.Parse(args)
}

// ReloadGenresCommand clears and rebuilds the genre taxonomy. Equivalent to
// import-genres -force.
type ReloadGenresCommand struct {
	ImportGenresCommand
}

// NewReloadGenresCommand creates a new ReloadGenresCommand.
func NewReloadGenresCommand() *ReloadGenresCommand {
	cmd := &ReloadGenresCommand{}
	cmd.Force = true
	return cmd
}

// ParseFlags parses command line flags.
func (cmd *ReloadGenresCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("reload-genres", flag.ExitOnError)
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the catalog database file")
	fs.StringVar(&cmd.GenresPath, "genres", config.DefaultGenresPath, "Path to the FB2 genres.xml taxonomy file")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s reload-genres [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Clear the genre taxonomy and re-seed it from the source file. Destructive;\n")
		fmt.Fprintf(os.Stderr, "intended for administrative re-seeding only.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}
	return fs.Parse(args)
}

// Run executes the command.
func (cmd *ImportGenresCommand) Run() error {
	tax, err := taxonomy.Load(cmd.GenresPath)
	if err != nil {
		return err
	}

	db, err := database.New(cmd.DatabasePath)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.Initialize(); err != nil {
		return err
	}

	repo := genres.NewRepository(db)
	if cmd.Force {
		if err := repo.Reload(tax); err != nil {
			return err
		}
	} else if err := repo.Merge(tax); err != nil {
		return err
	}

	count, err := repo.NonPlaceholderCount()
	if err != nil {
		return err
	}
	fmt.Printf("Taxonomy holds %d subgenres\n", count)
	return nil
}
