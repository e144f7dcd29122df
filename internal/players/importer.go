package players

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/We-are-incomplete/war-record-only-read/internal/events"
	"github.com/We-are-incomplete/war-record-only-read/internal/ingest"
	"github.com/We-are-incomplete/war-record-only-read/internal/logging"
	"github.com/We-are-incomplete/war-record-only-read/internal/storage"
	"github.com/We-are-incomplete/war-record-only-read/internal/storage/models"
)

// Store is the part of the storage service the importer writes to.
type Store interface {
	ReplacePlayers(ctx context.Context, players []models.Player, summary storage.ImportSummary) (*models.ImportRun, error)
	ReplaceResults(ctx context.Context, results []models.TournamentResult, summary storage.ImportSummary) (*models.ImportRun, error)
}

// Importer loads the player and result sheets into the store. Each import
// replaces the previous contents in one transaction.
type Importer struct {
	store      Store
	dispatcher *events.Dispatcher
	logger     *logging.Logger
}

// NewImporter creates an importer. dispatcher may be nil.
func NewImporter(store Store, dispatcher *events.Dispatcher, logger *logging.Logger) *Importer {
	if logger == nil {
		logger = logging.Default()
	}
	return &Importer{store: store, dispatcher: dispatcher, logger: logger.Named("players")}
}

// ImportPlayers replaces the player directory with the sheet at path.
func (im *Importer) ImportPlayers(ctx context.Context, path string) (*models.ImportRun, error) {
	directory, err := readFile(path, ingest.ReadPlayers)
	if err != nil {
		return nil, err
	}
	run, err := im.store.ReplacePlayers(ctx, directory, storage.ImportSummary{
		Kind:     models.ImportPlayers,
		Source:   path,
		Accepted: len(directory),
	})
	if err != nil {
		return nil, err
	}
	im.imported(ctx, run)
	return run, nil
}

// ImportResults replaces the tournament results with the sheet at path.
func (im *Importer) ImportResults(ctx context.Context, path string) (*models.ImportRun, error) {
	results, err := readFile(path, ingest.ReadResults)
	if err != nil {
		return nil, err
	}
	run, err := im.store.ReplaceResults(ctx, results, storage.ImportSummary{
		Kind:     models.ImportResults,
		Source:   path,
		Accepted: len(results),
	})
	if err != nil {
		return nil, err
	}
	im.imported(ctx, run)
	return run, nil
}

func (im *Importer) imported(ctx context.Context, run *models.ImportRun) {
	im.logger.InfoContext(ctx, "sheet imported", "kind", run.Kind, "source", run.Source, "rows", run.Accepted)
	if im.dispatcher != nil {
		im.dispatcher.Dispatch(events.NewEvent(ctx, events.DataImported, events.DataImportedEvent{
			Kind:     run.Kind,
			Source:   run.Source,
			Accepted: run.Accepted,
		}))
	}
}

func readFile[T any](path string, read func(r io.Reader) ([]T, error)) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	rows, err := read(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return rows, nil
}
