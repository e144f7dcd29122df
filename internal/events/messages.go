package events

import "time"

// Event types.
const (
	RecordsReloaded = "records:reloaded"
	ReloadFailed    = "records:reload_failed"
	DataImported    = "data:imported"

	// RecordsCurrent greets a new websocket client with the snapshot in
	// service. It is never dispatched.
	RecordsCurrent = "records:current"
)

// RecordsReloadedEvent is the payload of records:reloaded. It tells
// clients to refetch; it never carries records.
type RecordsReloadedEvent struct {
	Version  uint64    `json:"version"`
	Records  int       `json:"records"`
	Skipped  int       `json:"skipped"`
	Source   string    `json:"source"`
	LoadedAt time.Time `json:"loaded_at"`
}

// ReloadFailedEvent is the payload of records:reload_failed. The previous
// snapshot stays in service.
type ReloadFailedEvent struct {
	Source string `json:"source"`
	Error  string `json:"error"`
}

// DataImportedEvent is the payload of data:imported, sent after a player or
// result sheet import.
type DataImportedEvent struct {
	Kind     string `json:"kind"`
	Source   string `json:"source"`
	Accepted int    `json:"accepted"`
}
