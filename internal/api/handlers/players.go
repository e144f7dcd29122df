package handlers

import (
	"net/http"

	"github.com/We-are-incomplete/war-record-only-read/internal/api/response"
	"github.com/We-are-incomplete/war-record-only-read/internal/players"
)

// PlayerHandler serves the player directory.
type PlayerHandler struct {
	store PlayerStore
}

// NewPlayerHandler creates a new PlayerHandler.
func NewPlayerHandler(store PlayerStore) *PlayerHandler {
	return &PlayerHandler{store: store}
}

// PlayerEntry is one joined result with the player's profile link.
type PlayerEntry struct {
	players.Entry
	TwitterURL string `json:"twitter_url,omitempty"`
}

// List returns tournament results joined to the directory. Query
// parameters: q (keyword), and repeatable team, tournament and deck.
func (h *PlayerHandler) List(w http.ResponseWriter, r *http.Request) {
	directory, err := h.store.ListPlayers(r.Context())
	if err != nil {
		response.InternalError(w, err)
		return
	}
	results, err := h.store.ListResults(r.Context())
	if err != nil {
		response.InternalError(w, err)
		return
	}

	query := r.URL.Query()
	filter := players.ColumnFilter{
		Teams:       query["team"],
		Tournaments: query["tournament"],
		Decks:       query["deck"],
	}

	entries := players.Join(directory, results)
	entries = filter.Apply(entries)
	entries = players.Search(entries, directory, query.Get("q"))

	out := make([]PlayerEntry, 0, len(entries))
	for _, e := range entries {
		pe := PlayerEntry{Entry: e}
		if e.Player != nil {
			pe.TwitterURL = players.TwitterURL(e.Player.TwitterID)
		}
		out = append(out, pe)
	}
	response.Success(w, out)
}
