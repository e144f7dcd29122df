package storage

import (
	"testing"
)

// setupTestService creates a test service on a migrated temporary database.
func setupTestService(t *testing.T) *Service {
	t.Helper()
	return NewService(OpenTestDB(t))
}
