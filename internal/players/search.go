package players

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/width"

	"github.com/We-are-incomplete/war-record-only-read/internal/storage/models"
)

// folder normalizes text for matching: full-width forms become half-width
// and case is folded. A folder is not safe for concurrent use.
type folder struct {
	caser cases.Caser
}

func newFolder() *folder {
	return &folder{caser: cases.Fold()}
}

func (f *folder) fold(s string) string {
	return f.caser.String(width.Fold.String(s))
}

// Search returns the entries containing keyword in any column, ignoring
// case and character width. A keyword that hits a player's name or
// nickname also returns every result filed under either of them. A blank
// keyword returns entries unchanged.
func Search(entries []Entry, directory []models.Player, keyword string) []Entry {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return entries
	}

	f := newFolder()
	needle := f.fold(keyword)

	aliases := make(map[string]struct{})
	for _, p := range directory {
		if strings.Contains(f.fold(p.Name), needle) || (p.Nickname != "" && strings.Contains(f.fold(p.Nickname), needle)) {
			aliases[p.Name] = struct{}{}
			if p.Nickname != "" {
				aliases[p.Nickname] = struct{}{}
			}
		}
	}

	result := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if _, ok := aliases[e.Name()]; ok || e.contains(f, needle) {
			result = append(result, e)
		}
	}
	return result
}

func (e *Entry) contains(f *folder, needle string) bool {
	for _, v := range e.columns() {
		if v != "" && strings.Contains(f.fold(v), needle) {
			return true
		}
	}
	return false
}

func (e *Entry) columns() []string {
	cols := []string{
		e.Result.PlayerName,
		e.Result.Tournament,
		e.Result.Deck,
		e.Result.Record,
		e.Result.Memo,
	}
	if e.Player != nil {
		cols = append(cols, e.Player.Name, e.Player.TwitterID, e.Player.Team, e.Player.Nickname)
	}
	return cols
}

// ColumnFilter keeps entries whose column values are among the selected
// ones. An empty selection does not filter.
type ColumnFilter struct {
	Teams       []string `json:"teams,omitempty"`
	Tournaments []string `json:"tournaments,omitempty"`
	Decks       []string `json:"decks,omitempty"`
}

// IsZero reports whether the filter selects nothing.
func (c ColumnFilter) IsZero() bool {
	return len(c.Teams) == 0 && len(c.Tournaments) == 0 && len(c.Decks) == 0
}

// Apply returns the entries passing every selection.
func (c ColumnFilter) Apply(entries []Entry) []Entry {
	if c.IsZero() {
		return entries
	}

	result := make([]Entry, 0, len(entries))
	for _, e := range entries {
		team := ""
		if e.Player != nil {
			team = e.Player.Team
		}
		if !selected(c.Teams, team) || !selected(c.Tournaments, e.Result.Tournament) || !selected(c.Decks, e.Result.Deck) {
			continue
		}
		result = append(result, e)
	}
	return result
}

func selected(choices []string, v string) bool {
	if len(choices) == 0 {
		return true
	}
	for _, c := range choices {
		if c == v {
			return true
		}
	}
	return false
}
