package models

import "time"

// Import kinds.
const (
	ImportRecords = "records"
	ImportPlayers = "players"
	ImportResults = "results"
)

// ImportRun records one import of a source file.
type ImportRun struct {
	ID         int       `json:"id"`
	Kind       string    `json:"kind"`
	Source     string    `json:"source"`
	Accepted   int       `json:"accepted"`
	Skipped    int       `json:"skipped"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}
