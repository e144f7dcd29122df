package stats

import (
	"sort"

	"github.com/We-are-incomplete/war-record-only-read/internal/storage/models"
)

// ArchetypeSummary is one overview row: an archetype pooled over all its types.
type ArchetypeSummary struct {
	Archetype string `json:"archetype"`
	AggregateMetrics

	// AverageMatchupWinRate gives every distinct opponent equal weight,
	// unlike WinRate which weighs every game equally.
	AverageMatchupWinRate *float64 `json:"average_matchup_win_rate"`
	OpponentCount         int      `json:"opponent_count"`
}

// BuildOverview computes one summary row per archetype, sorted by average
// matchup win rate descending. Rows without opponents sort last, and ties keep
// the alphabetical discovery order.
func BuildOverview(records []models.MatchRecord) ([]ArchetypeSummary, error) {
	if err := validate(records); err != nil {
		return nil, err
	}

	archetypes := ListArchetypes(records)
	rows := make([]ArchetypeSummary, 0, len(archetypes))
	for _, name := range archetypes {
		row := summarize(records, name)
		if row.Appearances == 0 {
			continue
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rateAbove(rows[i].AverageMatchupWinRate, rows[j].AverageMatchupWinRate)
	})
	return rows, nil
}

func summarize(records []models.MatchRecord, name string) ArchetypeSummary {
	key := models.AllTypesOf(name)

	var own Tally
	perOpponent := make(map[string]*Tally)
	for i := range records {
		p, ok := View(&records[i], key)
		if !ok {
			continue
		}
		own.AddView(p)

		opp := p.OpponentDeck
		if opp == name || models.IsBlank(opp) {
			continue
		}
		t, found := perOpponent[opp]
		if !found {
			t = &Tally{}
			perOpponent[opp] = t
		}
		t.AddView(p)
	}

	row := ArchetypeSummary{
		Archetype:        name,
		AggregateMetrics: own.Metrics(),
		OpponentCount:    len(perOpponent),
	}
	row.AverageMatchupWinRate = averageWinRate(perOpponent)
	return row
}

// averageWinRate is the unweighted mean of per-opponent win rates. Opponents
// are summed in name order so the float result never depends on map order.
func averageWinRate(perOpponent map[string]*Tally) *float64 {
	if len(perOpponent) == 0 {
		return nil
	}
	names := make([]string, 0, len(perOpponent))
	for name := range perOpponent {
		names = append(names, name)
	}
	sort.Strings(names)

	var sum float64
	for _, name := range names {
		sum += *perOpponent[name].WinRate()
	}
	v := sum / float64(len(names))
	return &v
}

// rateAbove orders defined rates descending, nil last.
func rateAbove(a, b *float64) bool {
	switch {
	case a == nil:
		return false
	case b == nil:
		return true
	default:
		return *a > *b
	}
}
