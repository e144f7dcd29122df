// Package players joins tournament results to the player directory and
// searches the joined table.
package players

import (
	"strings"

	"github.com/We-are-incomplete/war-record-only-read/internal/storage/models"
)

// Entry is one tournament result with the player it was matched to.
// Player is nil when neither a name nor a nickname matched. Entries built
// from a directory with no results carry a zero Result.
type Entry struct {
	Result models.TournamentResult `json:"result"`
	Player *models.Player          `json:"player"`
}

// Name returns the player name the entry is filed under.
func (e *Entry) Name() string {
	if e.Result.PlayerName != "" {
		return e.Result.PlayerName
	}
	if e.Player != nil {
		return e.Player.Name
	}
	return ""
}

// Join attaches each result to the player whose name equals the result's
// player field, then retries unmatched results against nicknames. Result
// order is preserved. With no results the directory itself is returned.
func Join(directory []models.Player, results []models.TournamentResult) []Entry {
	if len(results) == 0 {
		entries := make([]Entry, 0, len(directory))
		for i := range directory {
			p := directory[i]
			entries = append(entries, Entry{Player: &p})
		}
		return entries
	}

	byName := make(map[string]*models.Player, len(directory))
	byNickname := make(map[string]*models.Player, len(directory))
	for i := range directory {
		p := &directory[i]
		if _, dup := byName[p.Name]; !dup {
			byName[p.Name] = p
		}
		if p.Nickname != "" {
			if _, dup := byNickname[p.Nickname]; !dup {
				byNickname[p.Nickname] = p
			}
		}
	}

	entries := make([]Entry, 0, len(results))
	for _, r := range results {
		e := Entry{Result: r}
		if p, ok := byName[r.PlayerName]; ok {
			cp := *p
			e.Player = &cp
		} else if p, ok := byNickname[r.PlayerName]; ok {
			cp := *p
			e.Player = &cp
		}
		entries = append(entries, e)
	}
	return entries
}

// TwitterURL returns the profile URL for a Twitter handle, or "" when the
// handle is blank.
func TwitterURL(id string) string {
	id = strings.TrimLeft(strings.TrimSpace(id), "@")
	if id == "" {
		return ""
	}
	return "https://twitter.com/" + id
}
