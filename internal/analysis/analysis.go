// Package analysis answers statistics queries against the snapshot in
// service. It is the single entry point used by the API and the CLI.
package analysis

import (
	"time"

	"github.com/We-are-incomplete/war-record-only-read/internal/metrics"
	"github.com/We-are-incomplete/war-record-only-read/internal/snapshot"
	"github.com/We-are-incomplete/war-record-only-read/internal/stats"
	"github.com/We-are-incomplete/war-record-only-read/internal/storage/models"
)

// Query kinds used as metric labels.
const (
	KindOptions    = "options"
	KindArchetypes = "archetypes"
	KindTypes      = "types"
	KindOverview   = "overview"
	KindFocus      = "focus"
	KindRecords    = "records"
)

// Service runs engine queries. Every call reads one snapshot, so a reload
// in the middle of a request is never half-seen.
type Service struct {
	holder  *snapshot.Holder
	metrics *metrics.Metrics
}

// NewService creates a service reading from holder. m may be nil.
func NewService(holder *snapshot.Holder, m *metrics.Metrics) *Service {
	return &Service{holder: holder, metrics: m}
}

// Options lists the values offered for filtering, taken from the whole
// snapshot.
type Options struct {
	Version      uint64   `json:"version"`
	Seasons      []string `json:"seasons"`
	Environments []string `json:"environments"`
	Archetypes   []string `json:"archetypes"`
}

// Options returns the filter choices.
func (s *Service) Options() Options {
	defer s.observe(KindOptions, time.Now())

	snap := s.holder.Current()
	return Options{
		Version:      snap.Version,
		Seasons:      stats.ListSeasons(snap.Records),
		Environments: stats.ListEnvironments(snap.Records),
		Archetypes:   stats.ListArchetypes(snap.Records),
	}
}

// Archetypes lists the archetypes among the filtered records.
func (s *Service) Archetypes(filter models.RecordFilter) []string {
	defer s.observe(KindArchetypes, time.Now())
	return stats.ListArchetypes(s.selected(filter))
}

// Types lists the type choices for archetype, ALL first.
func (s *Service) Types(filter models.RecordFilter, archetype string) []string {
	defer s.observe(KindTypes, time.Now())
	return stats.TypeOptions(s.selected(filter), archetype)
}

// Overview computes the per-archetype summary table.
func (s *Service) Overview(filter models.RecordFilter) ([]stats.ArchetypeSummary, error) {
	defer s.observe(KindOverview, time.Now())

	res, err := stats.Evaluate(s.holder.Current().Records, stats.Request{Filter: filter})
	if err != nil {
		return nil, err
	}
	return res.Overview, nil
}

// Focus computes the report for one archetype key.
func (s *Service) Focus(filter models.RecordFilter, key models.ArchetypeKey) (*stats.FocusReport, error) {
	defer s.observe(KindFocus, time.Now())

	res, err := stats.Evaluate(s.holder.Current().Records, stats.Request{Filter: filter, Focus: &key})
	if err != nil {
		return nil, err
	}
	return res.Focus, nil
}

// Records returns the filtered records, newest first and undated last.
func (s *Service) Records(filter models.RecordFilter) []models.MatchRecord {
	defer s.observe(KindRecords, time.Now())

	records := s.selected(filter)
	stats.SortRecordsByDate(records)
	return records
}

// Snapshot returns the snapshot in service.
func (s *Service) Snapshot() *snapshot.Snapshot {
	return s.holder.Current()
}

// selected returns a fresh slice, so callers may sort it.
func (s *Service) selected(filter models.RecordFilter) []models.MatchRecord {
	return filter.Apply(s.holder.Current().Records)
}

func (s *Service) observe(kind string, start time.Time) {
	s.metrics.ObserveQuery(kind, time.Since(start))
}
