package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/chriserin/stepjump/internal/step"
)

// DefaultPath is the cache location under the user cache directory.
func DefaultPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "stepjump", "steps.db")
}

// Stamp identifies one version of a scanned step module.
type Stamp struct {
	Path           string
	Size           int64
	ModTime        int64 // unix nanoseconds
	DefaultMatcher string
}

// StampFile stats path.
func StampFile(path, defaultMatcher string) (Stamp, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Stamp{}, err
	}
	return Stamp{
		Path:           path,
		Size:           info.Size(),
		ModTime:        info.ModTime().UnixNano(),
		DefaultMatcher: defaultMatcher,
	}, nil
}

// Cache stores step definitions per file stamp.
type Cache struct {
	db *sql.DB
}

func NewCache(sqlDB *sql.DB) *Cache {
	return &Cache{db: sqlDB}
}

// OpenCache opens the database at path.
func OpenCache(path string) (*Cache, error) {
	sqlDB, err := Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening step cache: %w", err)
	}
	return NewCache(sqlDB), nil
}

func (c *Cache) Close() error {
	return c.db.Close()
}

// Lookup returns the cached definitions for an exact stamp match.
func (c *Cache) Lookup(s Stamp) ([]step.Definition, bool, error) {
	var fileID int64
	err := c.db.QueryRow(`
		SELECT id FROM step_files
		WHERE file_path = ? AND size = ? AND mod_time = ? AND default_matcher = ?
	`, s.Path, s.Size, s.ModTime, s.DefaultMatcher).Scan(&fileID)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("querying %s: %w", s.Path, err)
	}

	rows, err := c.db.Query(`
		SELECT kind, pattern, matcher, line_number
		FROM step_definitions
		WHERE file_id = ?
		ORDER BY seq
	`, fileID)
	if err != nil {
		return nil, false, fmt.Errorf("querying definitions of %s: %w", s.Path, err)
	}
	defer rows.Close()

	defs := []step.Definition{}
	for rows.Next() {
		d := step.Definition{File: s.Path}
		var kind string
		if err := rows.Scan(&kind, &d.Pattern, &d.Matcher, &d.Line); err != nil {
			return nil, false, fmt.Errorf("scanning row: %w", err)
		}
		k, err := step.ParseKind(kind)
		if err != nil {
			// unreadable row; treat as a miss so the next Store rewrites it
			return nil, false, nil
		}
		d.Kind = k
		defs = append(defs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("iterating rows: %w", err)
	}
	return defs, true, nil
}

// Store replaces whatever is cached for s.Path.
func (c *Cache) Store(s Stamp, defs []step.Definition) error {
	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning cache write: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM step_definitions WHERE file_id IN (SELECT id FROM step_files WHERE file_path = ?)`, s.Path); err != nil {
		return fmt.Errorf("clearing definitions of %s: %w", s.Path, err)
	}
	if _, err := tx.Exec(`DELETE FROM step_files WHERE file_path = ?`, s.Path); err != nil {
		return fmt.Errorf("clearing %s: %w", s.Path, err)
	}
	res, err := tx.Exec(`
		INSERT INTO step_files (file_path, size, mod_time, default_matcher)
		VALUES (?, ?, ?, ?)
	`, s.Path, s.Size, s.ModTime, s.DefaultMatcher)
	if err != nil {
		return fmt.Errorf("inserting %s: %w", s.Path, err)
	}
	fileID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading id of %s: %w", s.Path, err)
	}
	for i, d := range defs {
		_, err := tx.Exec(`
			INSERT INTO step_definitions (file_id, seq, kind, pattern, matcher, line_number)
			VALUES (?, ?, ?, ?, ?, ?)
		`, fileID, i, string(d.Kind), d.Pattern, d.Matcher, d.Line)
		if err != nil {
			return fmt.Errorf("inserting definition %d of %s: %w", i, s.Path, err)
		}
	}
	return tx.Commit()
}

// Clear drops every cached file and returns how many there were.
func (c *Cache) Clear() (int, error) {
	var count int
	if err := c.db.QueryRow(`SELECT COUNT(*) FROM step_files`).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting cached files: %w", err)
	}
	if _, err := c.db.Exec(`DELETE FROM step_definitions`); err != nil {
		return 0, fmt.Errorf("clearing definitions: %w", err)
	}
	if _, err := c.db.Exec(`DELETE FROM step_files`); err != nil {
		return 0, fmt.Errorf("clearing files: %w", err)
	}
	return count, nil
}
