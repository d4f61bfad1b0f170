// Package storage persists named dictionaries and query history in SQLite.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"simindex/internal/models"
)

// Storage handles persistence of dictionaries and their words
type Storage struct {
	db     *sql.DB
	dbPath string
}

// NewStorage creates a new Storage
func NewStorage(dbPath string) (*Storage, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Storage{db: db, dbPath: dbPath}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Current schema version
const schemaVersion = 2

// migrations defines all schema migrations
// Each migration should be idempotent (safe to run multiple times)
var migrations = []struct {
	version     int
	description string
	up          string
}{
	{
		version:     1,
		description: "Initial schema",
		up:          "", // Handled by base schema creation
	},
	{
		version:     2,
		description: "Add source column for tracking where a dictionary was imported from",
		up: `
			ALTER TABLE dictionaries ADD COLUMN source TEXT DEFAULT '';
		`,
	},
}

// init creates the database schema
func (s *Storage) init() error {
	// Create schema_version table first
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	// Create base schema
	schema := `
	CREATE TABLE IF NOT EXISTS dictionaries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT UNIQUE NOT NULL,
		imported_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS words (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		dict_id INTEGER NOT NULL,
		word TEXT NOT NULL,
		UNIQUE(dict_id, word)
	);

	CREATE INDEX IF NOT EXISTS idx_words_dict_id ON words(dict_id);

	CREATE TABLE IF NOT EXISTS query_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		dict TEXT NOT NULL,
		term TEXT NOT NULL,
		threshold INTEGER NOT NULL,
		matches INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		queried_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`

	_, err = s.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	// Run migrations
	if err := s.migrate(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// migrate runs pending schema migrations
func (s *Storage) migrate() error {
	currentVersion := s.getSchemaVersion()

	for _, m := range migrations {
		if m.version <= currentVersion || m.up == "" {
			continue
		}

		// Check if migration is needed (column might already exist)
		if m.version == 2 {
			if s.columnExists("dictionaries", "source") {
				s.setSchemaVersion(m.version)
				continue
			}
		}

		// Execute migration
		if _, err := s.db.Exec(m.up); err != nil {
			return fmt.Errorf("migration %d (%s) failed: %w", m.version, m.description, err)
		}

		s.setSchemaVersion(m.version)
	}

	return nil
}

// getSchemaVersion returns the current schema version
func (s *Storage) getSchemaVersion() int {
	var version int
	err := s.db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&version)
	if err != nil {
		return 0
	}
	return version
}

// setSchemaVersion records a migration as applied
func (s *Storage) setSchemaVersion(version int) {
	s.db.Exec(`INSERT OR REPLACE INTO schema_version (version) VALUES (?)`, version)
}

// columnExists checks if a column exists in a table
func (s *Storage) columnExists(table, column string) bool {
	var count int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?
	`, table, column).Scan(&count)
	if err != nil {
		return false
	}
	return count > 0
}

// Close closes the database connection
func (s *Storage) Close() error {
	return s.db.Close()
}

// SaveDictionary stores a word list under a name, replacing any previous
// import with that name.
func (s *Storage) SaveDictionary(name, source string, words []string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var id int64
	err = tx.QueryRow(`SELECT id FROM dictionaries WHERE name = ?`, name).Scan(&id)
	switch {
	case err == sql.ErrNoRows:
		res, err := tx.Exec(`INSERT INTO dictionaries (name, source) VALUES (?, ?)`, name, source)
		if err != nil {
			return fmt.Errorf("failed to insert dictionary: %w", err)
		}
		id, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get dictionary id: %w", err)
		}
	case err != nil:
		return fmt.Errorf("failed to look up dictionary: %w", err)
	default:
		_, err = tx.Exec(`
			UPDATE dictionaries SET source = ?, imported_at = CURRENT_TIMESTAMP WHERE id = ?
		`, source, id)
		if err != nil {
			return fmt.Errorf("failed to update dictionary: %w", err)
		}
		if _, err := tx.Exec(`DELETE FROM words WHERE dict_id = ?`, id); err != nil {
			return fmt.Errorf("failed to clear old words: %w", err)
		}
	}

	stmt, err := tx.Prepare(`INSERT OR IGNORE INTO words (dict_id, word) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, word := range words {
		if _, err := stmt.Exec(id, word); err != nil {
			return fmt.Errorf("failed to insert word %q: %w", word, err)
		}
	}

	return tx.Commit()
}

// Words returns the words of a dictionary in insertion order.
func (s *Storage) Words(name string) ([]string, error) {
	var id int64
	err := s.db.QueryRow(`SELECT id FROM dictionaries WHERE name = ?`, name).Scan(&id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("dictionary %q not found", name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up dictionary: %w", err)
	}

	rows, err := s.db.Query(`SELECT word FROM words WHERE dict_id = ? ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query words: %w", err)
	}
	defer rows.Close()

	var words []string
	for rows.Next() {
		var word string
		if err := rows.Scan(&word); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		words = append(words, word)
	}

	return words, rows.Err()
}

// Dictionaries returns all stored dictionaries with their word counts
func (s *Storage) Dictionaries() ([]*models.Dictionary, error) {
	rows, err := s.db.Query(`
		SELECT d.id, d.name, d.source, COUNT(w.id), d.imported_at
		FROM dictionaries d
		LEFT JOIN words w ON w.dict_id = d.id
		GROUP BY d.id
		ORDER BY d.name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query dictionaries: %w", err)
	}
	defer rows.Close()

	var dicts []*models.Dictionary
	for rows.Next() {
		d := &models.Dictionary{}
		var source sql.NullString
		var importedAt string
		err := rows.Scan(&d.ID, &d.Name, &source, &d.WordCount, &importedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		d.Source = source.String
		d.ImportedAt, _ = time.Parse("2006-01-02 15:04:05", importedAt)
		dicts = append(dicts, d)
	}

	return dicts, rows.Err()
}

// DeleteDictionary removes a dictionary and its words
func (s *Storage) DeleteDictionary(name string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var id int64
	err = tx.QueryRow(`SELECT id FROM dictionaries WHERE name = ?`, name).Scan(&id)
	if err == sql.ErrNoRows {
		return fmt.Errorf("dictionary %q not found", name)
	}
	if err != nil {
		return fmt.Errorf("failed to look up dictionary: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM words WHERE dict_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete words: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM dictionaries WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete dictionary: %w", err)
	}

	return tx.Commit()
}

// RecordQuery records a query in history
func (s *Storage) RecordQuery(dict, term string, threshold, matches int, elapsed time.Duration) error {
	_, err := s.db.Exec(`
		INSERT INTO query_history (dict, term, threshold, matches, duration_ms)
		VALUES (?, ?, ?, ?, ?)
	`, dict, term, threshold, matches, elapsed.Milliseconds())
	return err
}
