package display

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/We-are-incomplete/war-record-only-read/internal/players"
	"github.com/We-are-incomplete/war-record-only-read/internal/stats"
	"github.com/We-are-incomplete/war-record-only-read/internal/storage/models"
)

func intPtr(v int) *int { return &v }

func sampleRecords() []models.MatchRecord {
	d := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	return []models.MatchRecord{
		{Season: "S1", Date: &d, MyDeck: "Dragon", MyDeckType: "Ramp", OpponentDeck: "Witch", FirstSecond: models.SeatFirst, Result: models.ResultWin, FinishTurn: intPtr(7), Memo: "good draw"},
		{Season: "S1", MyDeck: "Dragon", OpponentDeck: "Dragon", FirstSecond: models.SeatSecond, Result: models.ResultLoss},
		{Season: "S1", MyDeck: "Witch", OpponentDeck: "Dragon", FirstSecond: models.SeatSecond, Result: models.ResultLoss},
	}
}

func TestTruncateString(t *testing.T) {
	tests := []struct {
		name   string
		s      string
		maxLen int
		want   string
	}{
		{"short", "abc", 5, "abc"},
		{"exact", "abcde", 5, "abcde"},
		{"long", "abcdefgh", 6, "abc..."},
		{"tiny limit", "abcdef", 2, "ab"},
		{"multibyte", "ドラゴンの先攻", 5, "ドラ..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, truncateString(tt.s, tt.maxLen))
		})
	}
}

func TestOverview(t *testing.T) {
	rows, err := stats.BuildOverview(sampleRecords())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, New(&buf).Overview(rows))
	out := buf.String()
	assert.Contains(t, out, "Dragon")
	assert.Contains(t, out, "Witch")
	assert.Contains(t, out, stats.NoData)
}

func TestOverview_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New(&buf).Overview(nil))
	assert.Contains(t, buf.String(), "No records")
}

func TestFocusAndMemos(t *testing.T) {
	report, err := stats.BuildFocusReport(sampleRecords(), models.AllTypesOf("Dragon"))
	require.NoError(t, err)

	var buf bytes.Buffer
	d := New(&buf)
	require.NoError(t, d.Focus(report))
	out := buf.String()
	assert.Contains(t, out, "Record:")
	assert.Contains(t, out, "(mirror)")
	assert.Contains(t, out, "Witch")

	buf.Reset()
	require.NoError(t, d.Memos(report))
	assert.Contains(t, buf.String(), "good draw")
	assert.Contains(t, buf.String(), "Dragon / Ramp")
}

func TestFocus_Empty(t *testing.T) {
	report, err := stats.BuildFocusReport(sampleRecords(), models.AllTypesOf("Knight"))
	require.NoError(t, err)

	var buf bytes.Buffer
	d := New(&buf)
	require.NoError(t, d.Focus(report))
	assert.Contains(t, buf.String(), "No records for this archetype.")

	buf.Reset()
	require.NoError(t, d.Memos(report))
	assert.Contains(t, buf.String(), "No memos.")
}

func TestRecords(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New(&buf).Records(sampleRecords()))
	out := buf.String()
	assert.Contains(t, out, "2024-03-01")
	assert.Contains(t, out, "second")
	assert.Contains(t, out, "3 records")
}

func TestPlayers(t *testing.T) {
	entries := []players.Entry{
		{Result: models.TournamentResult{PlayerName: "alice", Tournament: "Cup", Deck: "Dragon", Record: "5-0"},
			Player: &models.Player{Name: "alice", Team: "Red", TwitterID: "alice_tw"}},
		{Result: models.TournamentResult{PlayerName: "bob", Tournament: "Cup", Deck: "Witch", Record: "3-2"}},
	}

	var buf bytes.Buffer
	require.NoError(t, New(&buf).Players(entries))
	out := buf.String()
	assert.Contains(t, out, "alice")
	assert.Contains(t, out, "Red")
	assert.Contains(t, out, players.TwitterURL("alice_tw"))
	assert.Contains(t, out, "bob")
}

func TestImports(t *testing.T) {
	runs := []models.ImportRun{{Kind: "records", Source: "records.csv", Accepted: 10, Skipped: 1, FinishedAt: time.Now()}}

	var buf bytes.Buffer
	require.NoError(t, New(&buf).Imports(runs))
	assert.Contains(t, buf.String(), "records.csv")

	buf.Reset()
	require.NoError(t, New(&buf).Imports(nil))
	assert.Contains(t, buf.String(), "No imports yet.")
}

func TestList(t *testing.T) {
	var buf bytes.Buffer
	New(&buf).List("Seasons", []string{"S1", "S2"})
	assert.Equal(t, "Seasons (2)\n  S1\n  S2\n", buf.String())
}
