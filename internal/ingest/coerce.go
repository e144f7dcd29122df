package ingest

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/We-are-incomplete/war-record-only-read/internal/storage/models"
)

var resultLabels = map[string]models.Result{
	"勝ち":   models.ResultWin,
	"勝":    models.ResultWin,
	"win":  models.ResultWin,
	"w":    models.ResultWin,
	"負け":   models.ResultLoss,
	"負":    models.ResultLoss,
	"loss": models.ResultLoss,
	"lose": models.ResultLoss,
	"l":    models.ResultLoss,
}

var seatLabels = map[string]models.Seat{
	"先攻":     models.SeatFirst,
	"first":  models.SeatFirst,
	"1st":    models.SeatFirst,
	"後攻":     models.SeatSecond,
	"second": models.SeatSecond,
	"2nd":    models.SeatSecond,
}

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006/1/2",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// ParseResultLabel maps a spreadsheet result label to a Result.
func ParseResultLabel(s string) (models.Result, bool) {
	r, ok := resultLabels[strings.ToLower(cleanCell(s))]
	return r, ok
}

// ParseSeatLabel maps a spreadsheet seat label to a Seat.
func ParseSeatLabel(s string) (models.Seat, bool) {
	seat, ok := seatLabels[strings.ToLower(cleanCell(s))]
	return seat, ok
}

// ParseDate returns nil for blank or unparsable dates. Only the calendar
// day is kept.
func ParseDate(s string) *time.Time {
	s = cleanCell(s)
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return &day
		}
	}
	return nil
}

// ParseFinishTurn accepts integers and integral floats such as "5.0".
// Anything else, or a turn below 1, is absent.
func ParseFinishTurn(s string) *int {
	s = cleanCell(s)
	if s == "" {
		return nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return positive(n)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || f > math.MaxInt32 {
		return nil
	}
	return positive(int(f))
}

func positive(n int) *int {
	if n < 1 {
		return nil
	}
	return &n
}
