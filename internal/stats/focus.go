package stats

import (
	"sort"

	"github.com/We-are-incomplete/war-record-only-read/internal/storage/models"
)

// MatchupRow is the focus archetype's record against one opponent selection.
type MatchupRow struct {
	OpponentDeck string `json:"opponent_deck"`
	OpponentType string `json:"opponent_type"`
	// AllTypes marks the pooled row covering every type of OpponentDeck.
	AllTypes bool `json:"all_types"`
	// Mirror marks rows whose opponent selection is the focus key itself.
	Mirror bool `json:"mirror"`
	AggregateMetrics
}

// TypeLabel returns the opponent type for display.
func (r MatchupRow) TypeLabel() string {
	if r.AllTypes {
		return models.AllTypesLabel
	}
	return r.OpponentType
}

// FocusReport is the deep dive for one archetype key.
type FocusReport struct {
	Key      models.ArchetypeKey `json:"key"`
	Metrics  AggregateMetrics    `json:"metrics"`
	Matchups []MatchupRow        `json:"matchups"`
	Memos    []MemoEntry         `json:"memos"`
}

// IsEmpty reports whether the key matched no records.
func (r *FocusReport) IsEmpty() bool {
	return r.Metrics.Appearances == 0
}

type opponentKey struct {
	deck string
	typ  string
}

// BuildFocusReport computes own metrics, the two-tier matchup table and the
// memo list for key. A key matching nothing yields an empty report, and so
// does a blank archetype name since discovery never offers one.
func BuildFocusReport(records []models.MatchRecord, key models.ArchetypeKey) (*FocusReport, error) {
	if err := validate(records); err != nil {
		return nil, err
	}
	if models.IsBlank(key.Name) {
		records = nil
	}

	var own Tally
	specific := make(map[opponentKey]*Tally)
	pooled := make(map[string]*Tally)
	var involved []int

	for i := range records {
		p, ok := View(&records[i], key)
		if !ok {
			continue
		}
		involved = append(involved, i)
		own.AddView(p)

		if models.IsBlank(p.OpponentDeck) {
			continue
		}
		sk := opponentKey{deck: p.OpponentDeck, typ: p.OpponentType}
		if specific[sk] == nil {
			specific[sk] = &Tally{}
		}
		specific[sk].AddView(p)

		if pooled[p.OpponentDeck] == nil {
			pooled[p.OpponentDeck] = &Tally{}
		}
		pooled[p.OpponentDeck].AddView(p)
	}

	rows := make([]MatchupRow, 0, len(specific)+len(pooled))
	for sk, t := range specific {
		rows = append(rows, MatchupRow{
			OpponentDeck:     sk.deck,
			OpponentType:     sk.typ,
			Mirror:           key.Matches(sk.deck, sk.typ),
			AggregateMetrics: t.Metrics(),
		})
	}
	for deck, t := range pooled {
		rows = append(rows, MatchupRow{
			OpponentDeck:     deck,
			AllTypes:         true,
			Mirror:           key.AllTypes && deck == key.Name,
			AggregateMetrics: t.Metrics(),
		})
	}
	sortMatchups(rows)

	return &FocusReport{
		Key:      key,
		Metrics:  own.Metrics(),
		Matchups: rows,
		Memos:    extractMemos(records, involved),
	}, nil
}

// sortMatchups orders rows by opponent name, the pooled row first within each
// opponent, then by type.
func sortMatchups(rows []MatchupRow) {
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.OpponentDeck != b.OpponentDeck {
			return a.OpponentDeck < b.OpponentDeck
		}
		if a.AllTypes != b.AllTypes {
			return a.AllTypes
		}
		return a.OpponentType < b.OpponentType
	})
}
