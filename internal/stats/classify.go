// Package stats is the deck performance and matchup aggregation engine.
//
// Every function in this package is a pure transform over a record slice
// supplied by the caller. Nothing here logs, caches or touches storage, so
// any number of goroutines may query the same snapshot at once.
package stats

import (
	"github.com/We-are-incomplete/war-record-only-read/internal/storage/models"
)

// Role is how a record relates to an archetype key.
type Role int

const (
	// NotInvolved means neither side of the record matches the key.
	NotInvolved Role = iota
	// AsSelf means the recording side matches the key.
	AsSelf
	// AsOpponent means only the opposing side matches the key.
	AsOpponent
)

func (r Role) String() string {
	switch r {
	case AsSelf:
		return "AS_SELF"
	case AsOpponent:
		return "AS_OPPONENT"
	default:
		return "NOT_INVOLVED"
	}
}

// Classify decides whether and how a record contributes to key.
// When both sides match, the record counts once as AsSelf.
func Classify(r *models.MatchRecord, key models.ArchetypeKey) Role {
	if key.Matches(r.MyDeck, r.MyDeckType) {
		return AsSelf
	}
	if key.Matches(r.OpponentDeck, r.OpponentDeckType) {
		return AsOpponent
	}
	return NotInvolved
}

// Perspective is a record seen from one archetype's side.
type Perspective struct {
	Role       Role
	Result     models.Result
	Seat       models.Seat
	FinishTurn *int

	// OpponentDeck and OpponentType describe the other side of the game.
	OpponentDeck string
	OpponentType string
}

// View returns the record as seen by key, with result and seat inverted
// for AsOpponent. ok is false when the record is not involved.
func View(r *models.MatchRecord, key models.ArchetypeKey) (p Perspective, ok bool) {
	switch Classify(r, key) {
	case AsSelf:
		return Perspective{
			Role:         AsSelf,
			Result:       r.Result,
			Seat:         r.FirstSecond,
			FinishTurn:   r.FinishTurn,
			OpponentDeck: r.OpponentDeck,
			OpponentType: r.OpponentDeckType,
		}, true
	case AsOpponent:
		return Perspective{
			Role:         AsOpponent,
			Result:       r.Result.Invert(),
			Seat:         r.FirstSecond.Invert(),
			FinishTurn:   r.FinishTurn,
			OpponentDeck: r.MyDeck,
			OpponentType: r.MyDeckType,
		}, true
	default:
		return Perspective{}, false
	}
}

// validate fails fast on records outside the enumerations instead of
// letting them skew a tally.
func validate(records []models.MatchRecord) error {
	for i := range records {
		if err := records[i].Validate(i + 1); err != nil {
			return err
		}
	}
	return nil
}
