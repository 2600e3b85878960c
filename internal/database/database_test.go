package database

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *Database {
	db, err := New(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	require.NoError(t, db.Initialize())
	t.Cleanup(func() { db.Close() })
	return db
}

func TestInitialize_Idempotent(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.DB.Exec(
		"INSERT INTO books (id, title) VALUES ('b1', 'The Master and Margarita')")
	require.NoError(t, err)

	// Re-running the schema on an existing store must neither fail nor
	// touch existing rows.
	require.NoError(t, db.Initialize())
	require.NoError(t, db.Initialize())

	var count int
	require.NoError(t, db.DB.QueryRow("SELECT COUNT(*) FROM books").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestFullTextSync_InsertUpdateDelete(t *testing.T) {
	db := setupTestDB(t)

	searchCount := func(term string) int {
		var n int
		err := db.DB.QueryRow(
			"SELECT COUNT(*) FROM books_fts WHERE books_fts MATCH ?", term).Scan(&n)
		require.NoError(t, err)
		return n
	}

	_, err := db.DB.Exec(
		"INSERT INTO books (id, title, annotation) VALUES ('b1', 'Roadside Picnic', 'the zone')")
	require.NoError(t, err)
	assert.Equal(t, 1, searchCount("roadside"))
	assert.Equal(t, 1, searchCount("zone"))

	_, err = db.DB.Exec("UPDATE books SET title = 'Hard to Be a God' WHERE id = 'b1'")
	require.NoError(t, err)
	assert.Equal(t, 0, searchCount("roadside"))
	assert.Equal(t, 1, searchCount("god"))

	_, err = db.DB.Exec("DELETE FROM books WHERE id = 'b1'")
	require.NoError(t, err)
	assert.Equal(t, 0, searchCount("god"))
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	db := setupTestDB(t)

	err := db.WithTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec(
			"INSERT INTO books (id, title) VALUES ('b1', 'We')"); err != nil {
			return err
		}
		return fmt.Errorf("boom")
	})
	require.Error(t, err)

	var count int
	require.NoError(t, db.DB.QueryRow("SELECT COUNT(*) FROM books").Scan(&count))
	assert.Equal(t, 0, count, "a failed sequence must leave the store untouched")
}

func TestWithTx_Commits(t *testing.T) {
	db := setupTestDB(t)

	err := db.WithTx(func(tx *sql.Tx) error {
		_, err := tx.Exec("INSERT INTO books (id, title) VALUES ('b1', 'We')")
		return err
	})
	require.NoError(t, err)

	var count int
	require.NoError(t, db.DB.QueryRow("SELECT COUNT(*) FROM books").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestStatsOverviewView(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.DB.Exec("INSERT INTO books (id, title) VALUES ('b1', 'One')")
	require.NoError(t, err)
	_, err = db.DB.Exec(
		"INSERT INTO books (id, title, replaced_by_id) VALUES ('b2', 'Two', 'b1')")
	require.NoError(t, err)

	var total int
	require.NoError(t, db.DB.QueryRow("SELECT total_books FROM stats_overview").Scan(&total))
	assert.Equal(t, 1, total, "replaced books are not active")
}
