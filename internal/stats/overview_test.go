package stats

import (
	"testing"

	"github.com/sourcegraph/conc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/We-are-incomplete/war-record-only-read/internal/storage/models"
)

func TestBuildOverview_Empty(t *testing.T) {
	rows, err := BuildOverview(nil)
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.NotNil(t, rows)
}

func TestBuildOverview_Sample(t *testing.T) {
	rows, err := BuildOverview(sampleRecords())
	require.NoError(t, err)
	require.Len(t, rows, 3)

	order := []string{rows[0].Archetype, rows[1].Archetype, rows[2].Archetype}
	assert.Equal(t, []string{"Beta", "Alpha", "Gamma"}, order)

	tests := []struct {
		archetype   string
		appearances int
		first       int
		wins        int
		losses      int
		winRate     float64
		avgMatchup  float64
		opponents   int
	}{
		{"Alpha", 5, 3, 3, 2, 60.0, (200.0/3 + 50.0) / 2, 2},
		{"Beta", 5, 3, 3, 2, 60.0, (100.0/3 + 100.0) / 2, 2},
		{"Gamma", 4, 1, 1, 3, 25.0, 25.0, 2},
	}

	for _, tt := range tests {
		t.Run(tt.archetype, func(t *testing.T) {
			row, ok := findSummary(rows, tt.archetype)
			require.True(t, ok)
			assert.Equal(t, tt.appearances, row.Appearances)
			assert.Equal(t, tt.first, row.FirstAppearances)
			assert.Equal(t, tt.wins, row.Wins)
			assert.Equal(t, tt.losses, row.Losses)
			require.NotNil(t, row.WinRate)
			assert.InDelta(t, tt.winRate, *row.WinRate, 1e-9)
			require.NotNil(t, row.AverageMatchupWinRate)
			assert.InDelta(t, tt.avgMatchup, *row.AverageMatchupWinRate, 1e-9)
			assert.Equal(t, tt.opponents, row.OpponentCount)
		})
	}
}

func TestBuildOverview_NoOpponentsSortLast(t *testing.T) {
	records := []models.MatchRecord{
		// Only mirrors: no distinct opponent, so no average.
		rec("Aardvark", "", "Aardvark", "", models.SeatFirst, models.ResultWin, nil),
		rec("Zebra", "", "Yak", "", models.SeatFirst, models.ResultLoss, nil),
		// Blank opponents are not archetypes.
		rec("Moose", "", " ", "", models.SeatFirst, models.ResultWin, nil),
	}

	rows, err := BuildOverview(records)
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, "Yak", rows[0].Archetype)
	assert.Equal(t, "Zebra", rows[1].Archetype)
	// Rows without the metric keep alphabetical discovery order.
	assert.Equal(t, "Aardvark", rows[2].Archetype)
	assert.Equal(t, "Moose", rows[3].Archetype)
	assert.Nil(t, rows[2].AverageMatchupWinRate)
	assert.Nil(t, rows[3].AverageMatchupWinRate)
	assert.Equal(t, 1, rows[2].Appearances)
}

func TestBuildOverview_TiesKeepDiscoveryOrder(t *testing.T) {
	records := []models.MatchRecord{
		rec("Delta", "", "Echo", "", models.SeatFirst, models.ResultWin, nil),
		rec("Echo", "", "Delta", "", models.SeatFirst, models.ResultWin, nil),
	}

	rows, err := BuildOverview(records)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Delta", rows[0].Archetype)
	assert.Equal(t, "Echo", rows[1].Archetype)
	assert.InDelta(t, 50.0, *rows[0].AverageMatchupWinRate, 1e-9)
}

func TestBuildOverview_MatchupWeightDiffersFromGameWeight(t *testing.T) {
	// Nine wins against one opponent, one loss against another.
	var records []models.MatchRecord
	for i := 0; i < 9; i++ {
		records = append(records, rec("Alpha", "", "Beta", "", models.SeatFirst, models.ResultWin, nil))
	}
	records = append(records, rec("Alpha", "", "Gamma", "", models.SeatFirst, models.ResultLoss, nil))

	rows, err := BuildOverview(records)
	require.NoError(t, err)
	alpha, ok := findSummary(rows, "Alpha")
	require.True(t, ok)
	assert.InDelta(t, 90.0, *alpha.WinRate, 1e-9)
	assert.InDelta(t, 50.0, *alpha.AverageMatchupWinRate, 1e-9)
}

func TestBuildOverview_Conservation(t *testing.T) {
	records := sampleRecords()
	rows, err := BuildOverview(records)
	require.NoError(t, err)

	for _, row := range rows {
		var asMine, asOpponent int
		for _, r := range records {
			if r.MyDeck == row.Archetype {
				asMine++
			}
			if r.OpponentDeck == row.Archetype {
				asOpponent++
			}
		}
		assert.Equal(t, asMine+asOpponent, row.Appearances, row.Archetype)
		assert.Equal(t, row.Appearances, row.Wins+row.Losses, row.Archetype)
		assert.Equal(t, row.Appearances, row.FirstAppearances+row.SecondAppearances, row.Archetype)
	}
}

func TestBuildOverview_InvalidRecord(t *testing.T) {
	records := sampleRecords()
	records[2].Result = 0

	_, err := BuildOverview(records)
	require.Error(t, err)

	var invalid *models.InvalidRecordError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, 3, invalid.Row)
	assert.Equal(t, "result", invalid.Field)
}

func TestBuildOverview_Deterministic(t *testing.T) {
	records := sampleRecords()
	want, err := BuildOverview(records)
	require.NoError(t, err)

	results := make([][]ArchetypeSummary, 16)
	var wg conc.WaitGroup
	for i := range results {
		wg.Go(func() {
			rows, err := BuildOverview(records)
			if err == nil {
				results[i] = rows
			}
		})
	}
	wg.Wait()

	for i, got := range results {
		assert.Equal(t, want, got, "run %d", i)
	}
}
