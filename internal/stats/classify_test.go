package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/We-are-incomplete/war-record-only-read/internal/storage/models"
)

func TestClassify(t *testing.T) {
	r := rec("Alpha", "Red", "Beta", "Blue", models.SeatFirst, models.ResultWin, nil)
	mirror := rec("Alpha", "Red", "Alpha", "Red", models.SeatFirst, models.ResultWin, nil)

	tests := []struct {
		name   string
		record models.MatchRecord
		key    models.ArchetypeKey
		want   Role
	}{
		{"self all types", r, models.AllTypesOf("Alpha"), AsSelf},
		{"self matching type", r, models.TypedKey("Alpha", "Red"), AsSelf},
		{"self other type", r, models.TypedKey("Alpha", "Green"), NotInvolved},
		{"opponent all types", r, models.AllTypesOf("Beta"), AsOpponent},
		{"opponent matching type", r, models.TypedKey("Beta", "Blue"), AsOpponent},
		{"opponent other type", r, models.TypedKey("Beta", "Black"), NotInvolved},
		{"unrelated", r, models.AllTypesOf("Gamma"), NotInvolved},
		{"mirror counts as self", mirror, models.TypedKey("Alpha", "Red"), AsSelf},
		{"empty type is concrete", rec("Alpha", "", "Beta", "", models.SeatFirst, models.ResultWin, nil), models.TypedKey("Alpha", ""), AsSelf},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(&tt.record, tt.key)
			if got != tt.want {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestView_RoleFlip(t *testing.T) {
	results := []models.Result{models.ResultWin, models.ResultLoss}
	seats := []models.Seat{models.SeatFirst, models.SeatSecond}

	for _, result := range results {
		for _, seat := range seats {
			r := rec("Alpha", "Red", "Beta", "Blue", seat, result, intPtr(6))

			self, ok := View(&r, models.AllTypesOf("Alpha"))
			assert.True(t, ok)
			assert.Equal(t, AsSelf, self.Role)
			assert.Equal(t, result, self.Result)
			assert.Equal(t, seat, self.Seat)
			assert.Equal(t, "Beta", self.OpponentDeck)
			assert.Equal(t, "Blue", self.OpponentType)

			opp, ok := View(&r, models.AllTypesOf("Beta"))
			assert.True(t, ok)
			assert.Equal(t, AsOpponent, opp.Role)
			assert.NotEqual(t, result, opp.Result)
			assert.Equal(t, result.Invert(), opp.Result)
			assert.NotEqual(t, seat, opp.Seat)
			assert.Equal(t, seat.Invert(), opp.Seat)
			assert.Equal(t, "Alpha", opp.OpponentDeck)
			assert.Equal(t, "Red", opp.OpponentType)
			assert.Equal(t, 6, *opp.FinishTurn)
		}
	}
}

func TestView_NotInvolved(t *testing.T) {
	r := rec("Alpha", "Red", "Beta", "Blue", models.SeatFirst, models.ResultWin, nil)
	_, ok := View(&r, models.AllTypesOf("Gamma"))
	assert.False(t, ok)
}
