package stats

import (
	"time"

	"github.com/We-are-incomplete/war-record-only-read/internal/storage/models"
)

func intPtr(v int) *int { return &v }

func datePtr(s string) *time.Time {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		panic(err)
	}
	return &t
}

// rec builds a record from the recording side's point of view.
func rec(my, myType, opp, oppType string, seat models.Seat, result models.Result, turn *int) models.MatchRecord {
	return models.MatchRecord{
		MyDeck:           my,
		MyDeckType:       myType,
		OpponentDeck:     opp,
		OpponentDeckType: oppType,
		FirstSecond:      seat,
		Result:           result,
		FinishTurn:       turn,
	}
}

func findSummary(rows []ArchetypeSummary, name string) (ArchetypeSummary, bool) {
	for _, r := range rows {
		if r.Archetype == name {
			return r, true
		}
	}
	return ArchetypeSummary{}, false
}

func findMatchup(rows []MatchupRow, deck, typ string, all bool) (MatchupRow, bool) {
	for _, r := range rows {
		if r.OpponentDeck == deck && r.AllTypes == all && (all || r.OpponentType == typ) {
			return r, true
		}
	}
	return MatchupRow{}, false
}

// sampleRecords has three archetypes, several types and no mirrors.
func sampleRecords() []models.MatchRecord {
	return []models.MatchRecord{
		rec("Alpha", "Red", "Beta", "Blue", models.SeatFirst, models.ResultWin, intPtr(5)),
		rec("Beta", "Blue", "Alpha", "Red", models.SeatSecond, models.ResultLoss, intPtr(7)),
		rec("Alpha", "Green", "Beta", "Black", models.SeatSecond, models.ResultLoss, nil),
		rec("Gamma", "", "Alpha", "Red", models.SeatFirst, models.ResultWin, intPtr(4)),
		rec("Beta", "Blue", "Gamma", "", models.SeatFirst, models.ResultWin, intPtr(6)),
		rec("Gamma", "", "Beta", "Black", models.SeatSecond, models.ResultLoss, intPtr(9)),
		rec("Alpha", "Red", "Gamma", "", models.SeatFirst, models.ResultWin, intPtr(8)),
	}
}
