package repository

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"
)

// setupTestDB creates an in-memory database with the repository schema.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)

	schema := `
		CREATE TABLE match_records (
			id TEXT PRIMARY KEY,
			position INTEGER NOT NULL,
			season TEXT NOT NULL DEFAULT '',
			date TEXT,
			environment TEXT NOT NULL DEFAULT '',
			my_deck TEXT NOT NULL DEFAULT '',
			my_deck_type TEXT NOT NULL DEFAULT '',
			opponent_deck TEXT NOT NULL DEFAULT '',
			opponent_deck_type TEXT NOT NULL DEFAULT '',
			first_second TEXT NOT NULL CHECK (first_second IN ('first', 'second')),
			result TEXT NOT NULL CHECK (result IN ('win', 'loss')),
			finish_turn INTEGER,
			memo TEXT NOT NULL DEFAULT '',
			imported_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE players (
			name TEXT PRIMARY KEY,
			twitter_id TEXT NOT NULL DEFAULT '',
			team TEXT NOT NULL DEFAULT '',
			nickname TEXT NOT NULL DEFAULT '',
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE tournament_results (
			id TEXT PRIMARY KEY,
			position INTEGER NOT NULL,
			player_name TEXT NOT NULL DEFAULT '',
			tournament TEXT NOT NULL DEFAULT '',
			deck TEXT NOT NULL DEFAULT '',
			record TEXT NOT NULL DEFAULT '',
			memo TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE import_runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			kind TEXT NOT NULL,
			source TEXT NOT NULL DEFAULT '',
			accepted INTEGER NOT NULL DEFAULT 0,
			skipped INTEGER NOT NULL DEFAULT 0,
			started_at DATETIME NOT NULL,
			finished_at DATETIME NOT NULL
		);
	`

	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() { _ = db.Close() })
	return db
}
