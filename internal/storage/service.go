package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/We-are-incomplete/war-record-only-read/internal/storage/repository"
)

// Service provides high-level operations over the record store.
type Service struct {
	db      *DB
	records repository.RecordRepository
	players repository.PlayerRepository
	imports repository.ImportRunRepository
	now     func() time.Time
}

// NewService creates a new storage service.
func NewService(db *DB) *Service {
	return &Service{
		db:      db,
		records: repository.NewRecordRepository(db.Conn()),
		players: repository.NewPlayerRepository(db.Conn()),
		imports: repository.NewImportRunRepository(db.Conn()),
		now:     time.Now,
	}
}

// ImportSummary describes what an import stored.
type ImportSummary struct {
	Kind     string
	Source   string
	Accepted int
	Skipped  int
}

// ReplaceRecords swaps the stored records for records in one transaction and
// logs the import. Readers see either the old set or the new one.
func (s *Service) ReplaceRecords(ctx context.Context, records []MatchRecord, summary ImportSummary) (*ImportRun, error) {
	return s.replace(ctx, summary, func(tx *sql.Tx) error {
		repo := s.records.WithTx(tx)
		if _, err := repo.DeleteAll(ctx); err != nil {
			return err
		}
		return repo.CreateBatch(ctx, records)
	})
}

// AppendRecords adds records after the stored ones and logs the import.
func (s *Service) AppendRecords(ctx context.Context, records []MatchRecord, summary ImportSummary) (*ImportRun, error) {
	return s.replace(ctx, summary, func(tx *sql.Tx) error {
		return s.records.WithTx(tx).CreateBatch(ctx, records)
	})
}

// ReplacePlayers swaps the player directory and logs the import.
func (s *Service) ReplacePlayers(ctx context.Context, players []Player, summary ImportSummary) (*ImportRun, error) {
	return s.replace(ctx, summary, func(tx *sql.Tx) error {
		return s.players.WithTx(tx).ReplacePlayers(ctx, players)
	})
}

// ReplaceResults swaps the tournament results and logs the import.
func (s *Service) ReplaceResults(ctx context.Context, results []TournamentResult, summary ImportSummary) (*ImportRun, error) {
	return s.replace(ctx, summary, func(tx *sql.Tx) error {
		return s.players.WithTx(tx).ReplaceResults(ctx, results)
	})
}

func (s *Service) replace(ctx context.Context, summary ImportSummary, write TxFunc) (*ImportRun, error) {
	run := &ImportRun{
		Kind:      summary.Kind,
		Source:    summary.Source,
		Accepted:  summary.Accepted,
		Skipped:   summary.Skipped,
		StartedAt: s.now().UTC(),
	}

	err := s.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		if err := write(tx); err != nil {
			return err
		}
		run.FinishedAt = s.now().UTC()
		return s.imports.WithTx(tx).Create(ctx, run)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to import %s: %w", summary.Kind, err)
	}
	return run, nil
}

// LoadRecords returns every stored record in import order.
func (s *Service) LoadRecords(ctx context.Context) ([]MatchRecord, error) {
	return s.records.List(ctx)
}

// ListRecords returns the stored records passing filter.
func (s *Service) ListRecords(ctx context.Context, filter RecordFilter) ([]MatchRecord, error) {
	return s.records.ListFiltered(ctx, filter)
}

// CountRecords returns the number of stored records.
func (s *Service) CountRecords(ctx context.Context) (int, error) {
	return s.records.Count(ctx)
}

// ListPlayers returns the player directory.
func (s *Service) ListPlayers(ctx context.Context) ([]Player, error) {
	return s.players.ListPlayers(ctx)
}

// ListResults returns every tournament result.
func (s *Service) ListResults(ctx context.Context) ([]TournamentResult, error) {
	return s.players.ListResults(ctx)
}

// RecentImports returns up to limit import runs, newest first.
func (s *Service) RecentImports(ctx context.Context, limit int) ([]ImportRun, error) {
	return s.imports.Recent(ctx, limit)
}

// Backup writes a verified copy of the database to path.
func (s *Service) Backup(ctx context.Context, path string) error {
	return s.db.BackupTo(ctx, path)
}

// Ping checks the database connection.
func (s *Service) Ping(ctx context.Context) error {
	return s.db.Conn().PingContext(ctx)
}

// Close closes the database connection.
func (s *Service) Close() error {
	return s.db.Close()
}
