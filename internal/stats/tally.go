package stats

import (
	"github.com/We-are-incomplete/war-record-only-read/internal/storage/models"
)

// AggregateMetrics summarizes a set of games from one archetype's side.
// Rate and mean fields are nil when their denominator is zero.
type AggregateMetrics struct {
	Appearances int      `json:"appearances"`
	Wins        int      `json:"wins"`
	Losses      int      `json:"losses"`
	WinRate     *float64 `json:"win_rate"` // Percentage

	FirstAppearances  int      `json:"first_appearances"`
	FirstWins         int      `json:"first_wins"`
	FirstWinRate      *float64 `json:"first_win_rate"`
	SecondAppearances int      `json:"second_appearances"`
	SecondWins        int      `json:"second_wins"`
	SecondWinRate     *float64 `json:"second_win_rate"`

	MeanWinTurn  *float64 `json:"mean_win_turn"`
	MeanLossTurn *float64 `json:"mean_loss_turn"`
}

// HasData reports whether any game was counted.
func (m AggregateMetrics) HasData() bool {
	return m.Appearances > 0
}

// Tally accumulates effective outcomes. The zero value is ready to use,
// and the order of Add calls never changes the result.
type Tally struct {
	games       int
	wins        int
	firstGames  int
	firstWins   int
	secondGames int
	secondWins  int
	winTurnSum  int
	winTurnN    int
	lossTurnSum int
	lossTurnN   int
}

// Add counts one game with an already role-flipped result and seat.
func (t *Tally) Add(result models.Result, seat models.Seat, finishTurn *int) {
	t.games++
	won := result == models.ResultWin
	if won {
		t.wins++
	}

	switch seat {
	case models.SeatFirst:
		t.firstGames++
		if won {
			t.firstWins++
		}
	case models.SeatSecond:
		t.secondGames++
		if won {
			t.secondWins++
		}
	}

	if finishTurn == nil {
		return
	}
	if won {
		t.winTurnSum += *finishTurn
		t.winTurnN++
	} else {
		t.lossTurnSum += *finishTurn
		t.lossTurnN++
	}
}

// AddView counts a perspective produced by View.
func (t *Tally) AddView(p Perspective) {
	t.Add(p.Result, p.Seat, p.FinishTurn)
}

// Merge folds another tally into t.
func (t *Tally) Merge(o Tally) {
	t.games += o.games
	t.wins += o.wins
	t.firstGames += o.firstGames
	t.firstWins += o.firstWins
	t.secondGames += o.secondGames
	t.secondWins += o.secondWins
	t.winTurnSum += o.winTurnSum
	t.winTurnN += o.winTurnN
	t.lossTurnSum += o.lossTurnSum
	t.lossTurnN += o.lossTurnN
}

// Games returns the number of games counted so far.
func (t *Tally) Games() int {
	return t.games
}

// WinRate returns the overall win percentage, nil without games.
func (t *Tally) WinRate() *float64 {
	return percent(t.wins, t.games)
}

// Metrics converts the tally into its reported form.
func (t *Tally) Metrics() AggregateMetrics {
	return AggregateMetrics{
		Appearances:       t.games,
		Wins:              t.wins,
		Losses:            t.games - t.wins,
		WinRate:           percent(t.wins, t.games),
		FirstAppearances:  t.firstGames,
		FirstWins:         t.firstWins,
		FirstWinRate:      percent(t.firstWins, t.firstGames),
		SecondAppearances: t.secondGames,
		SecondWins:        t.secondWins,
		SecondWinRate:     percent(t.secondWins, t.secondGames),
		MeanWinTurn:       mean(t.winTurnSum, t.winTurnN),
		MeanLossTurn:      mean(t.lossTurnSum, t.lossTurnN),
	}
}

func percent(num, den int) *float64 {
	if den == 0 {
		return nil
	}
	v := float64(num) / float64(den) * 100
	return &v
}

func mean(sum, n int) *float64 {
	if n == 0 {
		return nil
	}
	v := float64(sum) / float64(n)
	return &v
}
