package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	backupPrefix = "war-record_"
	backupSuffix = ".db"
)

// BackupName returns a timestamped backup file name.
func BackupName(now time.Time) string {
	return backupPrefix + now.Format("20060102_150405") + backupSuffix
}

// BackupTo writes a consistent copy of the database to path with VACUUM INTO
// and checks that the copy opens and holds the record table. An existing file
// at path is an error.
func (db *DB) BackupTo(ctx context.Context, path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("backup target already exists: %s", path)
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to stat backup target: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create backup directory: %w", err)
	}

	if _, err := db.conn.ExecContext(ctx, "VACUUM INTO ?", path); err != nil {
		return fmt.Errorf("failed to write backup: %w", err)
	}

	if err := verifyBackup(ctx, path); err != nil {
		_ = os.Remove(path)
		return fmt.Errorf("backup verification failed: %w", err)
	}
	return nil
}

func verifyBackup(ctx context.Context, path string) error {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return err
	}
	defer conn.Close()

	var result string
	if err := conn.QueryRowContext(ctx, "PRAGMA integrity_check").Scan(&result); err != nil {
		return err
	}
	if result != "ok" {
		return fmt.Errorf("integrity check: %s", result)
	}

	var n int
	if err := conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM match_records").Scan(&n); err != nil {
		return fmt.Errorf("record table unreadable: %w", err)
	}
	return nil
}
