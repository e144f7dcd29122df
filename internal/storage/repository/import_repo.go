package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/We-are-incomplete/war-record-only-read/internal/storage/models"
)

// ImportRunRepository keeps the import history.
type ImportRunRepository interface {
	Create(ctx context.Context, run *models.ImportRun) error

	// Latest returns the newest run of kind, or nil, nil when there is none.
	Latest(ctx context.Context, kind string) (*models.ImportRun, error)

	// Recent returns up to limit runs, newest first.
	Recent(ctx context.Context, limit int) ([]models.ImportRun, error)

	WithTx(tx *sql.Tx) ImportRunRepository
}

type importRunRepository struct {
	q Querier
}

// NewImportRunRepository creates a new import run repository.
func NewImportRunRepository(db *sql.DB) ImportRunRepository {
	return &importRunRepository{q: db}
}

func (r *importRunRepository) WithTx(tx *sql.Tx) ImportRunRepository {
	return &importRunRepository{q: tx}
}

func (r *importRunRepository) Create(ctx context.Context, run *models.ImportRun) error {
	query := `
		INSERT INTO import_runs (kind, source, accepted, skipped, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	res, err := r.q.ExecContext(ctx, query,
		run.Kind,
		run.Source,
		run.Accepted,
		run.Skipped,
		run.StartedAt,
		run.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create import run: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	run.ID = int(id)
	return nil
}

const selectImportRunColumns = `
	SELECT id, kind, source, accepted, skipped, started_at, finished_at
	FROM import_runs
`

func scanImportRun(s rowScanner) (*models.ImportRun, error) {
	var run models.ImportRun
	err := s.Scan(&run.ID, &run.Kind, &run.Source, &run.Accepted, &run.Skipped, &run.StartedAt, &run.FinishedAt)
	if err != nil {
		return nil, err
	}
	return &run, nil
}

func (r *importRunRepository) Latest(ctx context.Context, kind string) (*models.ImportRun, error) {
	row := r.q.QueryRowContext(ctx, selectImportRunColumns+` WHERE kind = ? ORDER BY id DESC LIMIT 1`, kind)
	run, err := scanImportRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest import run: %w", err)
	}
	return run, nil
}

func (r *importRunRepository) Recent(ctx context.Context, limit int) ([]models.ImportRun, error) {
	rows, err := r.q.QueryContext(ctx, selectImportRunColumns+` ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list import runs: %w", err)
	}
	defer rows.Close()

	runs := []models.ImportRun{}
	for rows.Next() {
		run, err := scanImportRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan import run: %w", err)
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating import runs: %w", err)
	}
	return runs, nil
}
