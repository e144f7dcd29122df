// Package display renders statistics for the terminal.
package display

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/We-are-incomplete/war-record-only-read/internal/players"
	"github.com/We-are-incomplete/war-record-only-read/internal/stats"
	"github.com/We-are-incomplete/war-record-only-read/internal/storage/models"
)

// memoWidth is the widest memo shown in table cells, in runes.
const memoWidth = 40

// Displayer writes tables to out.
type Displayer struct {
	out io.Writer
}

// New creates a displayer writing to out.
func New(out io.Writer) *Displayer {
	return &Displayer{out: out}
}

// List prints a titled list, one value per line.
func (d *Displayer) List(title string, values []string) {
	fmt.Fprintf(d.out, "%s (%d)\n", title, len(values))
	for _, v := range values {
		fmt.Fprintf(d.out, "  %s\n", v)
	}
}

// Overview prints one row per archetype.
func (d *Displayer) Overview(rows []stats.ArchetypeSummary) error {
	if len(rows) == 0 {
		fmt.Fprintln(d.out, "No records match the filter.")
		return nil
	}

	table := tablewriter.NewWriter(d.out)
	table.Header("#", "Archetype", "Games", "Avg matchup", "Win rate", "First", "Second", "Win turn", "Loss turn", "Opponents")
	for i, r := range rows {
		if err := table.Append(
			strconv.Itoa(i+1),
			r.Archetype,
			stats.FormatAppearances(r.Appearances, r.FirstAppearances),
			stats.FormatPercent(r.AverageMatchupWinRate),
			stats.FormatPercent(r.WinRate),
			stats.FormatPercent(r.FirstWinRate),
			stats.FormatPercent(r.SecondWinRate),
			stats.FormatTurn(r.MeanWinTurn),
			stats.FormatTurn(r.MeanLossTurn),
			strconv.Itoa(r.OpponentCount),
		); err != nil {
			return err
		}
	}
	return table.Render()
}

// Focus prints the own metrics and the matchup table of a report.
func (d *Displayer) Focus(report *stats.FocusReport) error {
	fmt.Fprintf(d.out, "%s\n", stats.KeyLabel(report.Key))
	if report.IsEmpty() {
		fmt.Fprintln(d.out, "No records for this archetype.")
		return nil
	}

	m := report.Metrics
	fmt.Fprintf(d.out, "  Games:     %s\n", stats.FormatAppearances(m.Appearances, m.FirstAppearances))
	fmt.Fprintf(d.out, "  Record:    %d-%d\n", m.Wins, m.Losses)
	fmt.Fprintf(d.out, "  Win rate:  %s (first %s, second %s)\n",
		stats.FormatPercent(m.WinRate), stats.FormatPercent(m.FirstWinRate), stats.FormatPercent(m.SecondWinRate))
	fmt.Fprintf(d.out, "  Win turn:  %s\n", stats.FormatTurn(m.MeanWinTurn))
	fmt.Fprintf(d.out, "  Loss turn: %s\n\n", stats.FormatTurn(m.MeanLossTurn))

	table := tablewriter.NewWriter(d.out)
	table.Header("Opponent", "Type", "Games", "W-L", "Win rate", "First", "Second", "Win turn", "Loss turn")
	for _, r := range report.Matchups {
		opponent := r.OpponentDeck
		if r.Mirror {
			opponent += " (mirror)"
		}
		if err := table.Append(
			opponent,
			r.TypeLabel(),
			stats.FormatAppearances(r.Appearances, r.FirstAppearances),
			fmt.Sprintf("%d-%d", r.Wins, r.Losses),
			stats.FormatPercent(r.WinRate),
			stats.FormatPercent(r.FirstWinRate),
			stats.FormatPercent(r.SecondWinRate),
			stats.FormatTurn(r.MeanWinTurn),
			stats.FormatTurn(r.MeanLossTurn),
		); err != nil {
			return err
		}
	}
	return table.Render()
}

// Memos prints the memo list of a report, newest first.
func (d *Displayer) Memos(report *stats.FocusReport) error {
	if len(report.Memos) == 0 {
		fmt.Fprintln(d.out, "No memos.")
		return nil
	}

	table := tablewriter.NewWriter(d.out)
	table.Header("Date", "Deck", "Opponent", "Result", "Memo")
	for _, e := range report.Memos {
		r := e.Record
		if err := table.Append(
			e.Date,
			deckLabel(r.MyDeck, r.MyDeckType),
			deckLabel(r.OpponentDeck, r.OpponentDeckType),
			r.Result.String(),
			r.Memo,
		); err != nil {
			return err
		}
	}
	return table.Render()
}

// Records prints a record list in the given order.
func (d *Displayer) Records(records []models.MatchRecord) error {
	if len(records) == 0 {
		fmt.Fprintln(d.out, "No records match the filter.")
		return nil
	}

	table := tablewriter.NewWriter(d.out)
	table.Header("Date", "Season", "Env", "Deck", "Opponent", "Seat", "Result", "Turn", "Memo")
	for _, r := range records {
		turn := ""
		if r.FinishTurn != nil {
			turn = strconv.Itoa(*r.FinishTurn)
		}
		if err := table.Append(
			stats.FormatDate(r.Date),
			r.Season,
			r.Environment,
			deckLabel(r.MyDeck, r.MyDeckType),
			deckLabel(r.OpponentDeck, r.OpponentDeckType),
			r.FirstSecond.String(),
			r.Result.String(),
			turn,
			truncateString(r.Memo, memoWidth),
		); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}
	fmt.Fprintf(d.out, "%d records\n", len(records))
	return nil
}

// Players prints joined tournament results.
func (d *Displayer) Players(entries []players.Entry) error {
	if len(entries) == 0 {
		fmt.Fprintln(d.out, "No players match.")
		return nil
	}

	table := tablewriter.NewWriter(d.out)
	table.Header("Player", "Team", "Tournament", "Deck", "Record", "Twitter")
	for i := range entries {
		e := &entries[i]
		team, twitter := "", ""
		if e.Player != nil {
			team = e.Player.Team
			twitter = players.TwitterURL(e.Player.TwitterID)
		}
		if err := table.Append(e.Name(), team, e.Result.Tournament, e.Result.Deck, e.Result.Record, twitter); err != nil {
			return err
		}
	}
	return table.Render()
}

// Imports prints import history.
func (d *Displayer) Imports(runs []models.ImportRun) error {
	if len(runs) == 0 {
		fmt.Fprintln(d.out, "No imports yet.")
		return nil
	}

	table := tablewriter.NewWriter(d.out)
	table.Header("Finished", "Kind", "Source", "Accepted", "Skipped")
	for _, r := range runs {
		if err := table.Append(
			r.FinishedAt.Local().Format("2006-01-02 15:04:05"),
			r.Kind,
			r.Source,
			strconv.Itoa(r.Accepted),
			strconv.Itoa(r.Skipped),
		); err != nil {
			return err
		}
	}
	return table.Render()
}

func deckLabel(deck, deckType string) string {
	if deckType == "" {
		return deck
	}
	return deck + " / " + deckType
}

// truncateString shortens s to maxLen runes, marking the cut with "...".
func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
