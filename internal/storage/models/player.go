package models

import "time"

// Player is one entry of the player directory.
type Player struct {
	Name      string    `json:"name"`
	TwitterID string    `json:"twitter_id"`
	Team      string    `json:"team"`
	Nickname  string    `json:"nickname"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TournamentResult is one tournament placing filed under a player name or nickname.
type TournamentResult struct {
	ID         string    `json:"id"`
	PlayerName string    `json:"player_name"`
	Tournament string    `json:"tournament"`
	Deck       string    `json:"deck"`
	Record     string    `json:"record"`
	Memo       string    `json:"memo"`
	CreatedAt  time.Time `json:"created_at"`
}
