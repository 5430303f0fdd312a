package db

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func schemaVersionOf(t *testing.T, db *sql.DB) int {
	t.Helper()
	var version int
	require.NoError(t, db.QueryRow(`SELECT version FROM schema_version`).Scan(&version))
	return version
}

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var found string
	err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, name).Scan(&found)
	if err == sql.ErrNoRows {
		return false
	}
	require.NoError(t, err)
	return true
}

func TestMigrate_CreatesStepTables(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, Migrate(db))

	assert.True(t, tableExists(t, db, "schema_version"))
	assert.True(t, tableExists(t, db, "step_files"))
	assert.True(t, tableExists(t, db, "step_definitions"))
	assert.Equal(t, len(All), schemaVersionOf(t, db))
}

func TestMigrate_EmptyListLeavesVersionZero(t *testing.T) {
	origAll := All
	defer func() { All = origAll }()
	All = nil

	db := openTestDB(t)
	require.NoError(t, Migrate(db))
	assert.Equal(t, 0, schemaVersionOf(t, db))
}

func TestMigrate_AppliesOnlyPendingMigrations(t *testing.T) {
	origAll := All
	defer func() { All = origAll }()

	All = []string{`CREATE TABLE first (id INTEGER PRIMARY KEY)`}
	db := openTestDB(t)
	require.NoError(t, Migrate(db))
	require.NoError(t, Migrate(db))
	assert.Equal(t, 1, schemaVersionOf(t, db))

	All = append(All, `CREATE TABLE second (id INTEGER PRIMARY KEY)`)
	require.NoError(t, Migrate(db))
	assert.Equal(t, 2, schemaVersionOf(t, db))
	assert.True(t, tableExists(t, db, "second"))
}

func TestMigrate_StopsAtFailingMigration(t *testing.T) {
	origAll := All
	defer func() { All = origAll }()

	All = []string{
		`CREATE TABLE good (id INTEGER PRIMARY KEY)`,
		`NOT SQL AT ALL`,
		`CREATE TABLE never (id INTEGER PRIMARY KEY)`,
	}

	db := openTestDB(t)
	err := Migrate(db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "migration 2")

	assert.Equal(t, 1, schemaVersionOf(t, db))
	assert.False(t, tableExists(t, db, "never"))
}

func TestOpen_CreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "steps.db")
	db, err := Open(path)
	require.NoError(t, err)
	defer db.Close()

	var mode string
	require.NoError(t, db.QueryRow(`PRAGMA journal_mode`).Scan(&mode))
	assert.Equal(t, "wal", mode)
	assert.Equal(t, len(All), schemaVersionOf(t, db))
}
