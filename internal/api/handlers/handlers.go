// Package handlers implements the HTTP handlers of the API.
package handlers

import (
	"context"

	"github.com/We-are-incomplete/war-record-only-read/internal/analysis"
	"github.com/We-are-incomplete/war-record-only-read/internal/metrics"
	"github.com/We-are-incomplete/war-record-only-read/internal/snapshot"
	"github.com/We-are-incomplete/war-record-only-read/internal/stats"
	"github.com/We-are-incomplete/war-record-only-read/internal/storage/models"
)

// Analyzer answers statistics queries. *analysis.Service implements it.
type Analyzer interface {
	Options() analysis.Options
	Archetypes(filter models.RecordFilter) []string
	Types(filter models.RecordFilter, archetype string) []string
	Overview(filter models.RecordFilter) ([]stats.ArchetypeSummary, error)
	Focus(filter models.RecordFilter, key models.ArchetypeKey) (*stats.FocusReport, error)
	Records(filter models.RecordFilter) []models.MatchRecord
	Snapshot() *snapshot.Snapshot
}

// PlayerStore reads the player directory and tournament results.
type PlayerStore interface {
	ListPlayers(ctx context.Context) ([]models.Player, error)
	ListResults(ctx context.Context) ([]models.TournamentResult, error)
}

// StatusStore reports storage health and import history.
type StatusStore interface {
	Ping(ctx context.Context) error
	RecentImports(ctx context.Context, limit int) ([]models.ImportRun, error)
}

// MetricsSummary reports in-process statistics. *metrics.Metrics
// implements it.
type MetricsSummary interface {
	Summary() metrics.Summary
}

var _ Analyzer = (*analysis.Service)(nil)
