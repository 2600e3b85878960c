package database

import (
	"database/sql"
	"fmt"
	"log"
	"strings"

	// The schema uses FTS5 virtual tables; build with -tags sqlite_fts5
	// (see the Makefile) or Initialize fails with "no such module: fts5".
	_ "github.com/mattn/go-sqlite3"
)

// Database owns the single logical SQLite connection and the schema
// lifecycle. Repositories share this handle; they never open their own.
//
// The manager provides no internal locking beyond SQLite's own transactional
// isolation: callers issuing overlapping transactions must serialize
// themselves (ingestion is expected to run single-threaded).
type Database struct {
	DB   *sql.DB
	path string
}

// New opens the database file. The schema is not applied yet; call
// Initialize before handing the database to repositories.
func New(path string) (*Database, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}
	// One logical connection, as the transaction contract assumes.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database %s: %w", path, err)
	}

	return &Database{DB: db, path: path}, nil
}

// Initialize creates every table, index, trigger, and view if absent.
// Safe to call on every startup; a failure here is fatal and must abort
// the caller.
func (d *Database) Initialize() error {
	if _, err := d.DB.Exec(schemaSQL); err != nil {
		if strings.Contains(err.Error(), "fts5") {
			return fmt.Errorf("failed to apply schema (binary built without -tags sqlite_fts5?): %w", err)
		}
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	log.Printf("Database initialized at %s", d.path)
	return nil
}

// Path returns the database file path.
func (d *Database) Path() string {
	return d.path
}

func (d *Database) Close() error {
	return d.DB.Close()
}

// Begin starts an explicit transaction.
func (d *Database) Begin() (*sql.Tx, error) {
	return d.DB.Begin()
}

// WithTx runs fn inside a transaction. Any error (or panic) rolls the
// transaction back, leaving the store exactly as before the sequence
// started; otherwise it commits.
func (d *Database) WithTx(fn func(tx *sql.Tx) error) error {
	tx, err := d.DB.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
			log.Printf("rollback failed: %v (after: %v)", rbErr, err)
		}
		return err
	}
	return tx.Commit()
}
