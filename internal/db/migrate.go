package db

import (
	"database/sql"
	"fmt"
)

// All contains the ordered list of migrations to apply.
var All = []string{
	`CREATE TABLE step_files (
		id              INTEGER PRIMARY KEY,
		file_path       TEXT UNIQUE NOT NULL,
		size            INTEGER NOT NULL,
		mod_time        INTEGER NOT NULL,
		default_matcher TEXT NOT NULL,
		scanned_at      DATETIME NOT NULL DEFAULT (datetime('now'))
	)`,
	`CREATE TABLE step_definitions (
		id          INTEGER PRIMARY KEY,
		file_id     INTEGER NOT NULL REFERENCES step_files(id),
		seq         INTEGER NOT NULL,
		kind        TEXT NOT NULL,
		pattern     TEXT NOT NULL,
		matcher     TEXT NOT NULL,
		line_number INTEGER NOT NULL
	)`,
	`CREATE INDEX step_definitions_file ON step_definitions (file_id, seq)`,
}

// Migrate brings db up to len(All), one transaction per migration.
func Migrate(db *sql.DB) error {
	current, err := schemaVersion(db)
	if err != nil {
		return err
	}
	for i := current; i < len(All); i++ {
		if err := apply(db, i+1, All[i]); err != nil {
			return err
		}
	}
	return nil
}

func schemaVersion(db *sql.DB) (int, error) {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`); err != nil {
		return 0, fmt.Errorf("creating schema_version table: %w", err)
	}
	var version int
	err := db.QueryRow(`SELECT version FROM schema_version`).Scan(&version)
	if err == sql.ErrNoRows {
		if _, err := db.Exec(`INSERT INTO schema_version (version) VALUES (0)`); err != nil {
			return 0, fmt.Errorf("initializing schema version: %w", err)
		}
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}
	return version, nil
}

func apply(db *sql.DB, version int, stmt string) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning migration %d: %w", version, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(stmt); err != nil {
		return fmt.Errorf("migration %d failed: %w", version, err)
	}
	if _, err := tx.Exec(`UPDATE schema_version SET version = ?`, version); err != nil {
		return fmt.Errorf("updating schema version to %d: %w", version, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing migration %d: %w", version, err)
	}
	return nil
}
