package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/We-are-incomplete/war-record-only-read/internal/storage/models"
)

const dateLayout = "2006-01-02"

// RecordRepository handles database operations for match records.
type RecordRepository interface {
	// Create inserts one record after the existing ones. An empty ID is
	// replaced with a new UUID.
	Create(ctx context.Context, record *models.MatchRecord) error

	// CreateBatch inserts records in order after the existing ones.
	CreateBatch(ctx context.Context, records []models.MatchRecord) error

	// GetByID returns nil, nil when no record has the ID.
	GetByID(ctx context.Context, id string) (*models.MatchRecord, error)

	// List returns every record in import order.
	List(ctx context.Context) ([]models.MatchRecord, error)

	// ListFiltered returns the records passing filter, in import order.
	ListFiltered(ctx context.Context, filter models.RecordFilter) ([]models.MatchRecord, error)

	// Count returns the number of stored records.
	Count(ctx context.Context) (int, error)

	// DeleteAll removes every record and reports how many were removed.
	DeleteAll(ctx context.Context) (int64, error)

	// WithTx returns a repository that runs its statements on tx.
	WithTx(tx *sql.Tx) RecordRepository
}

type recordRepository struct {
	q Querier
}

// NewRecordRepository creates a new record repository.
func NewRecordRepository(db *sql.DB) RecordRepository {
	return &recordRepository{q: db}
}

func (r *recordRepository) WithTx(tx *sql.Tx) RecordRepository {
	return &recordRepository{q: tx}
}

const insertRecordQuery = `
	INSERT INTO match_records (
		id, position, season, date, environment,
		my_deck, my_deck_type, opponent_deck, opponent_deck_type,
		first_second, result, finish_turn, memo
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

func (r *recordRepository) nextPosition(ctx context.Context) (int, error) {
	var pos sql.NullInt64
	if err := r.q.QueryRowContext(ctx, `SELECT MAX(position) FROM match_records`).Scan(&pos); err != nil {
		return 0, fmt.Errorf("failed to read record position: %w", err)
	}
	if !pos.Valid {
		return 0, nil
	}
	return int(pos.Int64) + 1, nil
}

func (r *recordRepository) insert(ctx context.Context, record *models.MatchRecord, position int) error {
	if err := record.Validate(0); err != nil {
		return err
	}
	if record.ID == "" {
		record.ID = uuid.NewString()
	}

	var date *string
	if record.Date != nil {
		d := record.Date.Format(dateLayout)
		date = &d
	}

	_, err := r.q.ExecContext(ctx, insertRecordQuery,
		record.ID,
		position,
		record.Season,
		nullString(date),
		record.Environment,
		record.MyDeck,
		record.MyDeckType,
		record.OpponentDeck,
		record.OpponentDeckType,
		record.FirstSecond.String(),
		record.Result.String(),
		nullInt(record.FinishTurn),
		record.Memo,
	)
	if err != nil {
		return fmt.Errorf("failed to create record: %w", err)
	}
	return nil
}

func (r *recordRepository) Create(ctx context.Context, record *models.MatchRecord) error {
	pos, err := r.nextPosition(ctx)
	if err != nil {
		return err
	}
	return r.insert(ctx, record, pos)
}

func (r *recordRepository) CreateBatch(ctx context.Context, records []models.MatchRecord) error {
	pos, err := r.nextPosition(ctx)
	if err != nil {
		return err
	}
	for i := range records {
		if err := r.insert(ctx, &records[i], pos+i); err != nil {
			return fmt.Errorf("record %d: %w", i+1, err)
		}
	}
	return nil
}

const selectRecordColumns = `
	SELECT id, season, date, environment,
		my_deck, my_deck_type, opponent_deck, opponent_deck_type,
		first_second, result, finish_turn, memo
	FROM match_records
`

func (r *recordRepository) GetByID(ctx context.Context, id string) (*models.MatchRecord, error) {
	row := r.q.QueryRowContext(ctx, selectRecordColumns+` WHERE id = ?`, id)
	record, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get record: %w", err)
	}
	return record, nil
}

func (r *recordRepository) List(ctx context.Context) ([]models.MatchRecord, error) {
	return r.ListFiltered(ctx, models.RecordFilter{})
}

func (r *recordRepository) ListFiltered(ctx context.Context, filter models.RecordFilter) ([]models.MatchRecord, error) {
	query := selectRecordColumns
	var where []string
	var args []any

	if filter.Season != "" {
		where = append(where, "season = ?")
		args = append(args, filter.Season)
	}
	if len(filter.Environments) > 0 {
		placeholders := make([]string, len(filter.Environments))
		for i, env := range filter.Environments {
			placeholders[i] = "?"
			args = append(args, env)
		}
		where = append(where, "environment IN ("+strings.Join(placeholders, ", ")+")")
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY position ASC"

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()

	records := []models.MatchRecord{}
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating records: %w", err)
	}
	return records, nil
}

func (r *recordRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM match_records`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return n, nil
}

func (r *recordRepository) DeleteAll(ctx context.Context) (int64, error) {
	res, err := r.q.ExecContext(ctx, `DELETE FROM match_records`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete records: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(s rowScanner) (*models.MatchRecord, error) {
	var (
		record     models.MatchRecord
		date       sql.NullString
		seat       string
		result     string
		finishTurn sql.NullInt64
	)

	err := s.Scan(
		&record.ID,
		&record.Season,
		&date,
		&record.Environment,
		&record.MyDeck,
		&record.MyDeckType,
		&record.OpponentDeck,
		&record.OpponentDeckType,
		&seat,
		&result,
		&finishTurn,
		&record.Memo,
	)
	if err != nil {
		return nil, err
	}

	if record.FirstSecond, err = models.ParseSeat(seat); err != nil {
		return nil, err
	}
	if record.Result, err = models.ParseResult(result); err != nil {
		return nil, err
	}
	if date.Valid && date.String != "" {
		d, err := time.Parse(dateLayout, date.String)
		if err != nil {
			return nil, fmt.Errorf("invalid stored date %q: %w", date.String, err)
		}
		record.Date = &d
	}
	if finishTurn.Valid {
		v := int(finishTurn.Int64)
		record.FinishTurn = &v
	}
	return &record, nil
}
