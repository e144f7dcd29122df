package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/We-are-incomplete/war-record-only-read/internal/storage/models"
)

// PlayerRepository handles the player directory and tournament results.
type PlayerRepository interface {
	// Upsert inserts a player or replaces the one with the same name.
	Upsert(ctx context.Context, player *models.Player) error

	// GetByName returns nil, nil when no player has the name.
	GetByName(ctx context.Context, name string) (*models.Player, error)

	// ListPlayers returns every player ordered by name.
	ListPlayers(ctx context.Context) ([]models.Player, error)

	// ReplacePlayers swaps the whole directory for players.
	ReplacePlayers(ctx context.Context, players []models.Player) error

	// AddResult inserts a tournament result. An empty ID gets a new UUID.
	AddResult(ctx context.Context, result *models.TournamentResult) error

	// ListResults returns every tournament result in import order.
	ListResults(ctx context.Context) ([]models.TournamentResult, error)

	// ReplaceResults swaps every tournament result for results.
	ReplaceResults(ctx context.Context, results []models.TournamentResult) error

	// WithTx returns a repository that runs its statements on tx.
	WithTx(tx *sql.Tx) PlayerRepository
}

type playerRepository struct {
	q Querier
}

// NewPlayerRepository creates a new player repository.
func NewPlayerRepository(db *sql.DB) PlayerRepository {
	return &playerRepository{q: db}
}

func (r *playerRepository) WithTx(tx *sql.Tx) PlayerRepository {
	return &playerRepository{q: tx}
}

func (r *playerRepository) Upsert(ctx context.Context, player *models.Player) error {
	if player.UpdatedAt.IsZero() {
		player.UpdatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO players (name, twitter_id, team, nickname, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			twitter_id = excluded.twitter_id,
			team = excluded.team,
			nickname = excluded.nickname,
			updated_at = excluded.updated_at
	`
	_, err := r.q.ExecContext(ctx, query,
		player.Name,
		player.TwitterID,
		player.Team,
		player.Nickname,
		player.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert player: %w", err)
	}
	return nil
}

func (r *playerRepository) GetByName(ctx context.Context, name string) (*models.Player, error) {
	query := `SELECT name, twitter_id, team, nickname, updated_at FROM players WHERE name = ?`

	var p models.Player
	err := r.q.QueryRowContext(ctx, query, name).Scan(&p.Name, &p.TwitterID, &p.Team, &p.Nickname, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	return &p, nil
}

func (r *playerRepository) ListPlayers(ctx context.Context) ([]models.Player, error) {
	query := `SELECT name, twitter_id, team, nickname, updated_at FROM players ORDER BY name ASC`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	defer rows.Close()

	players := []models.Player{}
	for rows.Next() {
		var p models.Player
		if err := rows.Scan(&p.Name, &p.TwitterID, &p.Team, &p.Nickname, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		players = append(players, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating players: %w", err)
	}
	return players, nil
}

func (r *playerRepository) ReplacePlayers(ctx context.Context, players []models.Player) error {
	if _, err := r.q.ExecContext(ctx, `DELETE FROM players`); err != nil {
		return fmt.Errorf("failed to clear players: %w", err)
	}
	for i := range players {
		if err := r.Upsert(ctx, &players[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *playerRepository) nextResultPosition(ctx context.Context) (int, error) {
	var pos sql.NullInt64
	if err := r.q.QueryRowContext(ctx, `SELECT MAX(position) FROM tournament_results`).Scan(&pos); err != nil {
		return 0, fmt.Errorf("failed to read result position: %w", err)
	}
	if !pos.Valid {
		return 0, nil
	}
	return int(pos.Int64) + 1, nil
}

func (r *playerRepository) insertResult(ctx context.Context, result *models.TournamentResult, position int) error {
	if result.ID == "" {
		result.ID = uuid.NewString()
	}
	if result.CreatedAt.IsZero() {
		result.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO tournament_results (
			id, position, player_name, tournament, deck, record, memo, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.q.ExecContext(ctx, query,
		result.ID,
		position,
		result.PlayerName,
		result.Tournament,
		result.Deck,
		result.Record,
		result.Memo,
		result.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create tournament result: %w", err)
	}
	return nil
}

func (r *playerRepository) AddResult(ctx context.Context, result *models.TournamentResult) error {
	pos, err := r.nextResultPosition(ctx)
	if err != nil {
		return err
	}
	return r.insertResult(ctx, result, pos)
}

func (r *playerRepository) ListResults(ctx context.Context) ([]models.TournamentResult, error) {
	query := `
		SELECT id, player_name, tournament, deck, record, memo, created_at
		FROM tournament_results
		ORDER BY position ASC
	`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournament results: %w", err)
	}
	defer rows.Close()

	results := []models.TournamentResult{}
	for rows.Next() {
		var tr models.TournamentResult
		if err := rows.Scan(&tr.ID, &tr.PlayerName, &tr.Tournament, &tr.Deck, &tr.Record, &tr.Memo, &tr.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan tournament result: %w", err)
		}
		results = append(results, tr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tournament results: %w", err)
	}
	return results, nil
}

func (r *playerRepository) ReplaceResults(ctx context.Context, results []models.TournamentResult) error {
	if _, err := r.q.ExecContext(ctx, `DELETE FROM tournament_results`); err != nil {
		return fmt.Errorf("failed to clear tournament results: %w", err)
	}
	for i := range results {
		if err := r.insertResult(ctx, &results[i], i); err != nil {
			return err
		}
	}
	return nil
}
