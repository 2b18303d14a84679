// Package store persists work records in SQLite. A record carries a module
// scope - the seed modules for neighborhood extraction - and the store
// refuses to persist a scope that does not validate against the policy.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"modatlas/internal/logging"
)

// RecordStore manages the records database.
type RecordStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	dbPath string
}

// Schema versions:
// v1: records table (id, title, module_scope, status, created_at, updated_at)
const currentSchemaVersion = 1

// Open initializes the records database at the given path.
func Open(path string) (*RecordStore, error) {
	timer := logging.StartTimer(logging.CategoryStore, "Open")
	defer timer.Stop()

	logging.Store("Opening record store at %s", path)

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &RecordStore{db: db, dbPath: path}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return s, nil
}

// Close closes the underlying database.
func (s *RecordStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// migrate creates or upgrades the schema, tracked via PRAGMA user_version.
func (s *RecordStore) migrate() error {
	var version int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	logging.StoreDebug("Schema version %d (current %d)", version, currentSchemaVersion)
	if version >= currentSchemaVersion {
		return nil
	}

	if version < 1 {
		_, err := s.db.Exec(`
			CREATE TABLE IF NOT EXISTS records (
				id           TEXT PRIMARY KEY,
				title        TEXT NOT NULL,
				module_scope TEXT NOT NULL DEFAULT '[]',
				status       TEXT NOT NULL DEFAULT 'open',
				created_at   DATETIME NOT NULL,
				updated_at   DATETIME NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_records_status ON records(status);
		`)
		if err != nil {
			return fmt.Errorf("failed to create records table: %w", err)
		}
	}

	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("failed to set schema version: %w", err)
	}

	logging.Store("Migrated schema from v%d to v%d", version, currentSchemaVersion)
	return nil
}
