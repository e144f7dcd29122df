package ingest

import (
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/We-are-incomplete/war-record-only-read/internal/storage/models"
)

// Record columns in canonical order.
const (
	colSeason = iota
	colDate
	colEnvironment
	colMyDeck
	colMyDeckType
	colOpponentDeck
	colOpponentDeckType
	colFirstSecond
	colResult
	colFinishTurn
	colMemo
)

var recordAliases = [][]string{
	colSeason:           {"season", "シーズン"},
	colDate:             {"date", "日付"},
	colEnvironment:      {"environment", "環境"},
	colMyDeck:           {"my_deck", "使用デッキ"},
	colMyDeckType:       {"my_deck_type", "使用デッキタイプ"},
	colOpponentDeck:     {"opponent_deck", "対戦デッキ"},
	colOpponentDeckType: {"opponent_deck_type", "対戦デッキタイプ"},
	colFirstSecond:      {"first_second", "先後"},
	colResult:           {"result", "勝敗"},
	colFinishTurn:       {"finish_turn", "決着ターン"},
	colMemo:             {"memo", "メモ"},
}

// ErrMissingColumns is returned when a records file lacks the result or
// seat column.
var ErrMissingColumns = errors.New("records file is missing required columns")

// Options controls how rows that cannot be coerced are handled.
type Options struct {
	// Lenient skips invalid rows instead of failing the whole read.
	Lenient bool
}

// SkippedRow is a row dropped in lenient mode.
type SkippedRow struct {
	Row int
	Err error
}

// RecordSet is the outcome of reading a records file.
type RecordSet struct {
	Records []models.MatchRecord
	Skipped []SkippedRow
}

// ReadRecords reads a records CSV. Every accepted row gets a fresh UUID.
// In strict mode the first bad row stops the read with an
// *models.InvalidRecordError carrying its 1-based data row number.
func ReadRecords(r io.Reader, opts Options) (*RecordSet, error) {
	t, err := readTable(r)
	if err != nil {
		return nil, err
	}

	cols := t.columns(recordAliases)
	for _, required := range []int{colResult, colFirstSecond} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("%w: need %s and %s", ErrMissingColumns,
				recordAliases[colResult][0], recordAliases[colFirstSecond][0])
		}
	}

	set := &RecordSet{Records: make([]models.MatchRecord, 0, len(t.rows))}
	for i, row := range t.rows {
		rec, err := normalizeRecord(row, cols, t.index[i])
		if err != nil {
			if !opts.Lenient {
				return nil, err
			}
			set.Skipped = append(set.Skipped, SkippedRow{Row: t.index[i], Err: err})
			continue
		}
		set.Records = append(set.Records, rec)
	}
	return set, nil
}

func normalizeRecord(row []string, cols map[int]int, dataRow int) (models.MatchRecord, error) {
	rawResult := cell(row, cols, colResult)
	result, ok := ParseResultLabel(rawResult)
	if !ok {
		return models.MatchRecord{}, &models.InvalidRecordError{
			Row: dataRow, Field: "result", Value: rawResult, Reason: "unknown result label",
		}
	}

	rawSeat := cell(row, cols, colFirstSecond)
	seat, ok := ParseSeatLabel(rawSeat)
	if !ok {
		return models.MatchRecord{}, &models.InvalidRecordError{
			Row: dataRow, Field: "first_second", Value: rawSeat, Reason: "unknown seat label",
		}
	}

	return models.MatchRecord{
		ID:               uuid.NewString(),
		Season:           cell(row, cols, colSeason),
		Date:             ParseDate(cell(row, cols, colDate)),
		Environment:      cell(row, cols, colEnvironment),
		MyDeck:           cell(row, cols, colMyDeck),
		MyDeckType:       cell(row, cols, colMyDeckType),
		OpponentDeck:     cell(row, cols, colOpponentDeck),
		OpponentDeckType: cell(row, cols, colOpponentDeckType),
		FirstSecond:      seat,
		Result:           result,
		FinishTurn:       ParseFinishTurn(cell(row, cols, colFinishTurn)),
		Memo:             cell(row, cols, colMemo),
	}, nil
}
