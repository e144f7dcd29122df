package storage

import (
	"database/sql"
	"path/filepath"
	"testing"
)

// NewTestDB wraps an already open connection, for tests in other packages
// that build their own schema.
func NewTestDB(sqlDB *sql.DB) *DB {
	return &DB{conn: sqlDB}
}

// OpenTestDB opens a migrated database file under t.TempDir and closes it
// when the test ends.
func OpenTestDB(t testing.TB) *DB {
	t.Helper()

	config := DefaultConfig(filepath.Join(t.TempDir(), "test.db"))
	config.AutoMigrate = true

	db, err := Open(config)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}
