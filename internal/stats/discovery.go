package stats

import (
	"sort"

	"github.com/We-are-incomplete/war-record-only-read/internal/storage/models"
)

// ListArchetypes returns every non-blank archetype name seen on either side,
// sorted lexicographically.
func ListArchetypes(records []models.MatchRecord) []string {
	seen := make(map[string]struct{})
	for i := range records {
		addNonBlank(seen, records[i].MyDeck)
		addNonBlank(seen, records[i].OpponentDeck)
	}
	return sortedKeys(seen)
}

// ListTypes returns the non-blank types recorded for archetype on either side,
// sorted lexicographically.
func ListTypes(records []models.MatchRecord, archetype string) []string {
	seen := make(map[string]struct{})
	for i := range records {
		r := &records[i]
		if r.MyDeck == archetype {
			addNonBlank(seen, r.MyDeckType)
		}
		if r.OpponentDeck == archetype {
			addNonBlank(seen, r.OpponentDeckType)
		}
	}
	return sortedKeys(seen)
}

// TypeOptions returns ListTypes prefixed with the ALL label, for callers that
// offer a type-blind choice.
func TypeOptions(records []models.MatchRecord, archetype string) []string {
	return append([]string{models.AllTypesLabel}, ListTypes(records, archetype)...)
}

// ListSeasons returns the distinct non-blank seasons, sorted.
func ListSeasons(records []models.MatchRecord) []string {
	seen := make(map[string]struct{})
	for i := range records {
		addNonBlank(seen, records[i].Season)
	}
	return sortedKeys(seen)
}

// ListEnvironments returns the distinct non-blank environments, sorted.
func ListEnvironments(records []models.MatchRecord) []string {
	seen := make(map[string]struct{})
	for i := range records {
		addNonBlank(seen, records[i].Environment)
	}
	return sortedKeys(seen)
}

func addNonBlank(set map[string]struct{}, s string) {
	if models.IsBlank(s) {
		return
	}
	set[s] = struct{}{}
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
