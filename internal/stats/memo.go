package stats

import (
	"sort"
	"strconv"

	"github.com/We-are-incomplete/war-record-only-read/internal/storage/models"
)

// DateLayout is how memo and export dates are rendered.
const DateLayout = "2006-01-02"

// MemoEntry is a record carrying a memo, with its date pre-rendered.
type MemoEntry struct {
	Date   string             `json:"date"` // Empty when undated
	Record models.MatchRecord `json:"record"`
}

// extractMemos returns the memo-bearing records among the given indexes,
// once per record, newest first and undated last.
func extractMemos(records []models.MatchRecord, indexes []int) []MemoEntry {
	seen := make(map[string]struct{}, len(indexes))
	picked := make([]models.MatchRecord, 0)
	for _, i := range indexes {
		r := records[i]
		if !r.HasMemo() {
			continue
		}
		id := recordIdentity(&r, i)
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		picked = append(picked, r)
	}

	SortRecordsByDate(picked)

	out := make([]MemoEntry, 0, len(picked))
	for _, r := range picked {
		out = append(out, MemoEntry{Date: FormatDate(r.Date), Record: r})
	}
	return out
}

// recordIdentity prefers the stored ID and falls back to the slice position.
func recordIdentity(r *models.MatchRecord, index int) string {
	if r.ID != "" {
		return r.ID
	}
	return "#" + strconv.Itoa(index)
}

// SortRecordsByDate sorts in place, newest first. Undated records trail in
// their original order.
func SortRecordsByDate(records []models.MatchRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i].Date, records[j].Date
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})
}
