package main

import (
	"fmt"
	"os"

	"github.com/akovalenko/homelib/internal/cli"
	"github.com/akovalenko/homelib/internal/config"
	"github.com/akovalenko/homelib/internal/entrypoint"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	// If no arguments or "serve" command, run the catalog core
	if len(os.Args) < 2 || os.Args[1] == "serve" {
		cfg := config.NewConfig()
		entrypoint.Run(cfg, Version)
		return
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "init-db":
		runCommand(cli.NewInitDBCommand(), args)

	case "import-genres":
		runCommand(cli.NewImportGenresCommand(), args)

	case "reload-genres":
		runCommand(cli.NewReloadGenresCommand(), args)

	case "stats":
		runCommand(cli.NewStatsCommand(), args)

	case "clear-downloads":
		runCommand(cli.NewClearDownloadsCommand(), args)

	case "-h", "--help", "help":
		printUsage()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

type command interface {
	ParseFlags(args []string) error
	Run() error
}

func runCommand(cmd command, args []string) {
	if err := cmd.ParseFlags(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := cmd.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [options]\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  serve            Run the catalog core (default if no command given)\n")
	fmt.Fprintf(os.Stderr, "  init-db          Create the database schema\n")
	fmt.Fprintf(os.Stderr, "  import-genres    Merge an FB2 genre taxonomy into the catalog\n")
	fmt.Fprintf(os.Stderr, "  reload-genres    Clear and rebuild the genre taxonomy\n")
	fmt.Fprintf(os.Stderr, "  stats            Print library statistics\n")
	fmt.Fprintf(os.Stderr, "  clear-downloads  Apply retention to the download history\n")
	fmt.Fprintf(os.Stderr, "\nUse '%s <command> -h' for help on a specific command.\n", os.Args[0])
}
