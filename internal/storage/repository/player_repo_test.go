package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/We-are-incomplete/war-record-only-read/internal/storage/models"
)

func TestPlayerRepository_Upsert(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPlayerRepository(db)
	ctx := context.Background()

	p := &models.Player{Name: "Taro", TwitterID: "@taro", Team: "Red Team", Nickname: "T"}
	require.NoError(t, repo.Upsert(ctx, p))

	p2 := &models.Player{Name: "Taro", TwitterID: "@taro2", Team: "Blue Team"}
	require.NoError(t, repo.Upsert(ctx, p2))

	got, err := repo.GetByName(ctx, "Taro")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "@taro2", got.TwitterID)
	assert.Equal(t, "Blue Team", got.Team)
	assert.Equal(t, "", got.Nickname)

	missing, err := repo.GetByName(ctx, "Hanako")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestPlayerRepository_ReplacePlayers(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPlayerRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, &models.Player{Name: "Old"}))
	require.NoError(t, repo.ReplacePlayers(ctx, []models.Player{
		{Name: "Zen"},
		{Name: "Aki"},
	}))

	players, err := repo.ListPlayers(ctx)
	require.NoError(t, err)
	require.Len(t, players, 2)
	assert.Equal(t, "Aki", players[0].Name)
	assert.Equal(t, "Zen", players[1].Name)
}

func TestPlayerRepository_Results(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPlayerRepository(db)
	ctx := context.Background()

	first := &models.TournamentResult{PlayerName: "Taro", Tournament: "Cup 1", Deck: "Alpha", Record: "3-1"}
	require.NoError(t, repo.AddResult(ctx, first))
	assert.NotEmpty(t, first.ID)
	assert.False(t, first.CreatedAt.IsZero())

	second := &models.TournamentResult{PlayerName: "T", Tournament: "Cup 2", Deck: "Beta", CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, repo.AddResult(ctx, second))

	results, err := repo.ListResults(ctx)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "Cup 1", results[0].Tournament)
	assert.Equal(t, "Cup 2", results[1].Tournament)

	require.NoError(t, repo.ReplaceResults(ctx, []models.TournamentResult{{PlayerName: "Hanako", Tournament: "Cup 3"}}))
	results, err = repo.ListResults(ctx)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Hanako", results[0].PlayerName)
}

func TestImportRunRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewImportRunRepository(db)
	ctx := context.Background()

	latest, err := repo.Latest(ctx, models.ImportRecords)
	require.NoError(t, err)
	assert.Nil(t, latest)

	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	for i, kind := range []string{models.ImportRecords, models.ImportPlayers, models.ImportRecords} {
		run := &models.ImportRun{
			Kind:       kind,
			Source:     "sheet.csv",
			Accepted:   10 + i,
			StartedAt:  start.Add(time.Duration(i) * time.Minute),
			FinishedAt: start.Add(time.Duration(i)*time.Minute + time.Second),
		}
		require.NoError(t, repo.Create(ctx, run))
		assert.Equal(t, i+1, run.ID)
	}

	latest, err = repo.Latest(ctx, models.ImportRecords)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, 12, latest.Accepted)

	recent, err := repo.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, 3, recent[0].ID)
	assert.Equal(t, 2, recent[1].ID)
}
