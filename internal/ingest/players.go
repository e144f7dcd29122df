package ingest

import (
	"io"

	"github.com/google/uuid"

	"github.com/We-are-incomplete/war-record-only-read/internal/storage/models"
)

const (
	colPlayerName = iota
	colTwitterID
	colTeam
	colNickname
)

var playerAliases = [][]string{
	colPlayerName: {"選手名", "name"},
	colTwitterID:  {"TwitterID", "twitter_id"},
	colTeam:       {"所属チーム", "team"},
	colNickname:   {"通称", "nickname"},
}

const (
	colResultPlayer = iota
	colTournament
	colDeck
	colPlacing
	colResultMemo
)

var resultAliases = [][]string{
	colResultPlayer: {"選手名", "player"},
	colTournament:   {"大会名", "tournament"},
	colDeck:         {"使用デッキ", "deck"},
	colPlacing:      {"戦績", "record"},
	colResultMemo:   {"メモ", "memo"},
}

// ReadPlayers reads a player directory sheet. Rows without a name are
// dropped.
func ReadPlayers(r io.Reader) ([]models.Player, error) {
	t, err := readTable(r)
	if err != nil {
		return nil, err
	}
	cols := t.columns(playerAliases)

	players := make([]models.Player, 0, len(t.rows))
	for _, row := range t.rows {
		p := models.Player{
			Name:      cell(row, cols, colPlayerName),
			TwitterID: cell(row, cols, colTwitterID),
			Team:      cell(row, cols, colTeam),
			Nickname:  cell(row, cols, colNickname),
		}
		if p.Name == "" {
			continue
		}
		players = append(players, p)
	}
	return players, nil
}

// ReadResults reads a tournament result sheet.
func ReadResults(r io.Reader) ([]models.TournamentResult, error) {
	t, err := readTable(r)
	if err != nil {
		return nil, err
	}
	cols := t.columns(resultAliases)

	results := make([]models.TournamentResult, 0, len(t.rows))
	for _, row := range t.rows {
		results = append(results, models.TournamentResult{
			ID:         uuid.NewString(),
			PlayerName: cell(row, cols, colResultPlayer),
			Tournament: cell(row, cols, colTournament),
			Deck:       cell(row, cols, colDeck),
			Record:     cell(row, cols, colPlacing),
			Memo:       cell(row, cols, colResultMemo),
		})
	}
	return results, nil
}
