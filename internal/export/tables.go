package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/We-are-incomplete/war-record-only-read/internal/stats"
	"github.com/We-are-incomplete/war-record-only-read/internal/storage/models"
)

// Table names an exportable table.
type Table string

const (
	TableRecords  Table = "records"
	TableOverview Table = "overview"
	TableMatchups Table = "matchups"
	TableMemos    Table = "memos"
)

// Tables lists every exportable table.
var Tables = []Table{TableRecords, TableOverview, TableMatchups, TableMemos}

// ParseTable validates a table name.
func ParseTable(s string) (Table, error) {
	for _, t := range Tables {
		if strings.EqualFold(s, string(t)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown table %q", s)
}

// NeedsFocus reports whether the table is built from a focus report.
func (t Table) NeedsFocus() bool {
	return t == TableMatchups || t == TableMemos
}

// RecordRow is one exported match record.
type RecordRow struct {
	Season           string `csv:"season" json:"season"`
	Date             string `csv:"date" json:"date"`
	Environment      string `csv:"environment" json:"environment"`
	MyDeck           string `csv:"my_deck" json:"my_deck"`
	MyDeckType       string `csv:"my_deck_type" json:"my_deck_type"`
	OpponentDeck     string `csv:"opponent_deck" json:"opponent_deck"`
	OpponentDeckType string `csv:"opponent_deck_type" json:"opponent_deck_type"`
	FirstSecond      string `csv:"first_second" json:"first_second"`
	Result           string `csv:"result" json:"result"`
	FinishTurn       *int   `csv:"finish_turn" json:"finish_turn"`
	Memo             string `csv:"memo" json:"memo"`
}

// RecordRows converts records in their given order.
func RecordRows(records []models.MatchRecord) []RecordRow {
	rows := make([]RecordRow, 0, len(records))
	for i := range records {
		r := &records[i]
		rows = append(rows, RecordRow{
			Season:           r.Season,
			Date:             stats.FormatDate(r.Date),
			Environment:      r.Environment,
			MyDeck:           r.MyDeck,
			MyDeckType:       r.MyDeckType,
			OpponentDeck:     r.OpponentDeck,
			OpponentDeckType: r.OpponentDeckType,
			FirstSecond:      r.FirstSecond.String(),
			Result:           r.Result.String(),
			FinishTurn:       r.FinishTurn,
			Memo:             r.Memo,
		})
	}
	return rows
}

// metrics holds the shared metric columns. Percentages and turns are
// rounded to one decimal; nil means no data.
type metrics struct {
	Appearances      int
	FirstAppearances int
	Wins             int
	Losses           int
	WinRate          *float64
	FirstWinRate     *float64
	SecondWinRate    *float64
	MeanWinTurn      *float64
	MeanLossTurn     *float64
}

func metricColumns(m stats.AggregateMetrics) metrics {
	return metrics{
		Appearances:      m.Appearances,
		FirstAppearances: m.FirstAppearances,
		Wins:             m.Wins,
		Losses:           m.Losses,
		WinRate:          round1(m.WinRate),
		FirstWinRate:     round1(m.FirstWinRate),
		SecondWinRate:    round1(m.SecondWinRate),
		MeanWinTurn:      round1(m.MeanWinTurn),
		MeanLossTurn:     round1(m.MeanLossTurn),
	}
}

// OverviewRow is one exported overview row.
type OverviewRow struct {
	Archetype             string   `csv:"archetype" json:"archetype"`
	AverageMatchupWinRate *float64 `csv:"average_matchup_win_rate" json:"average_matchup_win_rate"`
	OpponentCount         int      `csv:"opponent_count" json:"opponent_count"`
	Appearances           int      `csv:"appearances" json:"appearances"`
	FirstAppearances      int      `csv:"first_appearances" json:"first_appearances"`
	Wins                  int      `csv:"wins" json:"wins"`
	Losses                int      `csv:"losses" json:"losses"`
	WinRate               *float64 `csv:"win_rate" json:"win_rate"`
	FirstWinRate          *float64 `csv:"first_win_rate" json:"first_win_rate"`
	SecondWinRate         *float64 `csv:"second_win_rate" json:"second_win_rate"`
	MeanWinTurn           *float64 `csv:"mean_win_turn" json:"mean_win_turn"`
	MeanLossTurn          *float64 `csv:"mean_loss_turn" json:"mean_loss_turn"`
}

// OverviewRows converts overview summaries, keeping their order.
func OverviewRows(summaries []stats.ArchetypeSummary) []OverviewRow {
	rows := make([]OverviewRow, 0, len(summaries))
	for _, s := range summaries {
		m := metricColumns(s.AggregateMetrics)
		rows = append(rows, OverviewRow{
			Archetype:             s.Archetype,
			AverageMatchupWinRate: round1(s.AverageMatchupWinRate),
			OpponentCount:         s.OpponentCount,
			Appearances:           m.Appearances,
			FirstAppearances:      m.FirstAppearances,
			Wins:                  m.Wins,
			Losses:                m.Losses,
			WinRate:               m.WinRate,
			FirstWinRate:          m.FirstWinRate,
			SecondWinRate:         m.SecondWinRate,
			MeanWinTurn:           m.MeanWinTurn,
			MeanLossTurn:          m.MeanLossTurn,
		})
	}
	return rows
}

// MatchupRow is one exported matchup row of a focus report.
type MatchupRow struct {
	OpponentDeck     string   `csv:"opponent_deck" json:"opponent_deck"`
	OpponentType     string   `csv:"opponent_type" json:"opponent_type"`
	Mirror           bool     `csv:"mirror" json:"mirror"`
	Appearances      int      `csv:"appearances" json:"appearances"`
	FirstAppearances int      `csv:"first_appearances" json:"first_appearances"`
	Wins             int      `csv:"wins" json:"wins"`
	Losses           int      `csv:"losses" json:"losses"`
	WinRate          *float64 `csv:"win_rate" json:"win_rate"`
	FirstWinRate     *float64 `csv:"first_win_rate" json:"first_win_rate"`
	SecondWinRate    *float64 `csv:"second_win_rate" json:"second_win_rate"`
	MeanWinTurn      *float64 `csv:"mean_win_turn" json:"mean_win_turn"`
	MeanLossTurn     *float64 `csv:"mean_loss_turn" json:"mean_loss_turn"`
}

// MatchupRows converts the matchup table of a report.
func MatchupRows(report *stats.FocusReport) []MatchupRow {
	if report == nil {
		return []MatchupRow{}
	}
	rows := make([]MatchupRow, 0, len(report.Matchups))
	for _, r := range report.Matchups {
		m := metricColumns(r.AggregateMetrics)
		rows = append(rows, MatchupRow{
			OpponentDeck:     r.OpponentDeck,
			OpponentType:     r.TypeLabel(),
			Mirror:           r.Mirror,
			Appearances:      m.Appearances,
			FirstAppearances: m.FirstAppearances,
			Wins:             m.Wins,
			Losses:           m.Losses,
			WinRate:          m.WinRate,
			FirstWinRate:     m.FirstWinRate,
			SecondWinRate:    m.SecondWinRate,
			MeanWinTurn:      m.MeanWinTurn,
			MeanLossTurn:     m.MeanLossTurn,
		})
	}
	return rows
}

// MemoRow is one exported memo. It carries every record column, date first.
type MemoRow struct {
	Date             string `csv:"date" json:"date"`
	Season           string `csv:"season" json:"season"`
	Environment      string `csv:"environment" json:"environment"`
	MyDeck           string `csv:"my_deck" json:"my_deck"`
	MyDeckType       string `csv:"my_deck_type" json:"my_deck_type"`
	OpponentDeck     string `csv:"opponent_deck" json:"opponent_deck"`
	OpponentDeckType string `csv:"opponent_deck_type" json:"opponent_deck_type"`
	FirstSecond      string `csv:"first_second" json:"first_second"`
	Result           string `csv:"result" json:"result"`
	FinishTurn       *int   `csv:"finish_turn" json:"finish_turn"`
	Memo             string `csv:"memo" json:"memo"`
}

// MemoRows converts the memo list of a report.
func MemoRows(report *stats.FocusReport) []MemoRow {
	if report == nil {
		return []MemoRow{}
	}
	rows := make([]MemoRow, 0, len(report.Memos))
	for _, e := range report.Memos {
		rows = append(rows, MemoRow{
			Date:             e.Date,
			Season:           e.Record.Season,
			Environment:      e.Record.Environment,
			MyDeck:           e.Record.MyDeck,
			MyDeckType:       e.Record.MyDeckType,
			OpponentDeck:     e.Record.OpponentDeck,
			OpponentDeckType: e.Record.OpponentDeckType,
			FirstSecond:      e.Record.FirstSecond.String(),
			Result:           e.Record.Result.String(),
			FinishTurn:       e.Record.FinishTurn,
			Memo:             e.Record.Memo,
		})
	}
	return rows
}

func round1(v *float64) *float64 {
	if v == nil {
		return nil
	}
	r := math.Round(*v*10) / 10
	return &r
}
