package snapshot

import (
	"context"
	"fmt"
	"os"

	"github.com/We-are-incomplete/war-record-only-read/internal/events"
	"github.com/We-are-incomplete/war-record-only-read/internal/ingest"
	"github.com/We-are-incomplete/war-record-only-read/internal/logging"
	"github.com/We-are-incomplete/war-record-only-read/internal/metrics"
	"github.com/We-are-incomplete/war-record-only-read/internal/storage"
	"github.com/We-are-incomplete/war-record-only-read/internal/storage/models"
)

// Store is the part of the storage service the reloader needs.
type Store interface {
	ReplaceRecords(ctx context.Context, records []models.MatchRecord, summary storage.ImportSummary) (*models.ImportRun, error)
	LoadRecords(ctx context.Context) ([]models.MatchRecord, error)
}

// Reloader imports the record source into the store and republishes the
// snapshot. A failed reload leaves the previous snapshot in service.
type Reloader struct {
	store      Store
	holder     *Holder
	dispatcher *events.Dispatcher
	metrics    *metrics.Metrics
	logger     *logging.Logger
	opts       ingest.Options
}

// ReloaderConfig wires a Reloader. Dispatcher and Metrics are optional.
type ReloaderConfig struct {
	Store      Store
	Holder     *Holder
	Dispatcher *events.Dispatcher
	Metrics    *metrics.Metrics
	Logger     *logging.Logger
	Lenient    bool
}

// NewReloader creates a reloader.
func NewReloader(cfg ReloaderConfig) *Reloader {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &Reloader{
		store:      cfg.Store,
		holder:     cfg.Holder,
		dispatcher: cfg.Dispatcher,
		metrics:    cfg.Metrics,
		logger:     logger.Named("reload"),
		opts:       ingest.Options{Lenient: cfg.Lenient},
	}
}

// Refresh publishes the records currently in the store.
func (r *Reloader) Refresh(ctx context.Context) (*Snapshot, error) {
	records, err := r.store.LoadRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load records: %w", err)
	}
	s := r.holder.Publish(records, "database")
	r.metrics.SetSnapshotRecords(s.Len())
	r.logger.Info("snapshot refreshed", "version", s.Version, "records", s.Len())
	return s, nil
}

// ImportFile replaces the stored records with the contents of path and
// publishes them.
func (r *Reloader) ImportFile(ctx context.Context, path string) (*Snapshot, error) {
	s, skipped, err := r.importFile(ctx, path)
	if err != nil {
		r.metrics.ObserveReload(metrics.ReloadFailure)
		r.logger.ErrorContext(ctx, "reload failed", "source", path, "error", err)
		r.dispatch(ctx, events.ReloadFailed, events.ReloadFailedEvent{Source: path, Error: err.Error()})
		return nil, err
	}

	r.metrics.ObserveReload(metrics.ReloadSuccess)
	r.metrics.SetSnapshotRecords(s.Len())
	r.logger.InfoContext(ctx, "records reloaded",
		"source", path, "version", s.Version, "records", s.Len(), "skipped", skipped)
	r.dispatch(ctx, events.RecordsReloaded, events.RecordsReloadedEvent{
		Version:  s.Version,
		Records:  s.Len(),
		Skipped:  skipped,
		Source:   path,
		LoadedAt: s.LoadedAt,
	})
	return s, nil
}

func (r *Reloader) importFile(ctx context.Context, path string) (*Snapshot, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open record source: %w", err)
	}
	defer func() { _ = f.Close() }()

	set, err := ingest.ReadRecords(f, r.opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read %s: %w", path, err)
	}
	for _, skip := range set.Skipped {
		r.logger.Warn("skipped record row", "source", path, "row", skip.Row, "error", skip.Err)
	}

	_, err = r.store.ReplaceRecords(ctx, set.Records, storage.ImportSummary{
		Kind:     models.ImportRecords,
		Source:   path,
		Accepted: len(set.Records),
		Skipped:  len(set.Skipped),
	})
	if err != nil {
		return nil, 0, err
	}
	return r.holder.Publish(set.Records, path), len(set.Skipped), nil
}

// WatchFunc returns a Watcher callback that reimports path.
func (r *Reloader) WatchFunc(path string) func(ctx context.Context) {
	return func(ctx context.Context) {
		_, _ = r.ImportFile(ctx, path)
	}
}

func (r *Reloader) dispatch(ctx context.Context, eventType string, data any) {
	if r.dispatcher == nil {
		return
	}
	r.dispatcher.Dispatch(events.Event{Type: eventType, Data: data, Context: ctx})
}
