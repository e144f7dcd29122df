// Package models defines the record and result types shared by storage,
// ingestion and the statistics engine.
package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Result is the outcome of a game from one player's point of view.
type Result int

const (
	// ResultWin means the recording side won.
	ResultWin Result = iota + 1
	// ResultLoss means the recording side lost.
	ResultLoss
)

// Valid reports whether r is one of the two defined outcomes.
func (r Result) Valid() bool {
	return r == ResultWin || r == ResultLoss
}

// Invert returns the outcome as seen by the other side.
func (r Result) Invert() Result {
	switch r {
	case ResultWin:
		return ResultLoss
	case ResultLoss:
		return ResultWin
	default:
		return r
	}
}

// String returns the storage label of the result.
func (r Result) String() string {
	switch r {
	case ResultWin:
		return "win"
	case ResultLoss:
		return "loss"
	default:
		return fmt.Sprintf("Result(%d)", int(r))
	}
}

// MarshalJSON encodes the result as its storage label.
func (r Result) MarshalJSON() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("cannot marshal invalid result %d", int(r))
	}
	return json.Marshal(r.String())
}

// UnmarshalJSON decodes a storage label.
func (r *Result) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseResult(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// ParseResult parses a storage label ("win" or "loss").
func ParseResult(s string) (Result, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "win":
		return ResultWin, nil
	case "loss":
		return ResultLoss, nil
	default:
		return 0, fmt.Errorf("unknown result %q", s)
	}
}

// Seat is the turn order of the recording player.
type Seat int

const (
	// SeatFirst means the recording player went first.
	SeatFirst Seat = iota + 1
	// SeatSecond means the recording player went second.
	SeatSecond
)

// Valid reports whether s is one of the two defined seats.
func (s Seat) Valid() bool {
	return s == SeatFirst || s == SeatSecond
}

// Invert returns the seat taken by the other side.
func (s Seat) Invert() Seat {
	switch s {
	case SeatFirst:
		return SeatSecond
	case SeatSecond:
		return SeatFirst
	default:
		return s
	}
}

// String returns the storage label of the seat.
func (s Seat) String() string {
	switch s {
	case SeatFirst:
		return "first"
	case SeatSecond:
		return "second"
	default:
		return fmt.Sprintf("Seat(%d)", int(s))
	}
}

// MarshalJSON encodes the seat as its storage label.
func (s Seat) MarshalJSON() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("cannot marshal invalid seat %d", int(s))
	}
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a storage label.
func (s *Seat) UnmarshalJSON(data []byte) error {
	var label string
	if err := json.Unmarshal(data, &label); err != nil {
		return err
	}
	parsed, err := ParseSeat(label)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseSeat parses a storage label ("first" or "second").
func ParseSeat(s string) (Seat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "first":
		return SeatFirst, nil
	case "second":
		return SeatSecond, nil
	default:
		return 0, fmt.Errorf("unknown seat %q", s)
	}
}

// MatchRecord is one completed game, recorded from the "my" side.
// A single game produces exactly one record.
type MatchRecord struct {
	ID               string     `json:"id"`
	Season           string     `json:"season"`
	Date             *time.Time `json:"date"` // Nullable
	Environment      string     `json:"environment"`
	MyDeck           string     `json:"my_deck"`
	MyDeckType       string     `json:"my_deck_type"`
	OpponentDeck     string     `json:"opponent_deck"`
	OpponentDeckType string     `json:"opponent_deck_type"`
	FirstSecond      Seat       `json:"first_second"`
	Result           Result     `json:"result"`
	FinishTurn       *int       `json:"finish_turn"` // Nullable
	Memo             string     `json:"memo"`
}

// Validate checks the enumerated fields.
// row is only used to annotate the returned error.
func (r *MatchRecord) Validate(row int) error {
	if !r.Result.Valid() {
		return &InvalidRecordError{Row: row, Field: "result", Value: r.Result.String(), Reason: "must be win or loss"}
	}
	if !r.FirstSecond.Valid() {
		return &InvalidRecordError{Row: row, Field: "first_second", Value: r.FirstSecond.String(), Reason: "must be first or second"}
	}
	if r.FinishTurn != nil && *r.FinishTurn < 1 {
		return &InvalidRecordError{Row: row, Field: "finish_turn", Value: fmt.Sprintf("%d", *r.FinishTurn), Reason: "must be at least 1"}
	}
	return nil
}

// HasMemo reports whether the record carries a non-blank memo.
func (r *MatchRecord) HasMemo() bool {
	return !IsBlank(r.Memo)
}

// InvalidRecordError reports a record that violates the record schema.
type InvalidRecordError struct {
	Row    int // 1-based data row, 0 when unknown
	Field  string
	Value  string
	Reason string
}

func (e *InvalidRecordError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("invalid record at row %d: %s=%q: %s", e.Row, e.Field, e.Value, e.Reason)
	}
	return fmt.Sprintf("invalid record: %s=%q: %s", e.Field, e.Value, e.Reason)
}

// IsBlank reports whether s is empty after trimming whitespace.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
