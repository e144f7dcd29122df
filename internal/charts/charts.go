// Package charts renders statistics tables as interactive HTML charts.
package charts

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/We-are-incomplete/war-record-only-read/internal/stats"
)

// noData is how echarts marks a missing point.
const noData = "-"

// ChartConfig holds configuration for charts.
type ChartConfig struct {
	Title      string
	Subtitle   string
	Width      string // e.g. "900px"
	Height     string
	Theme      string
	ShowLegend bool
	Colors     []string
}

// DefaultChartConfig returns default chart configuration.
func DefaultChartConfig() ChartConfig {
	return ChartConfig{
		Width:      "1000px",
		Height:     "520px",
		Theme:      "light",
		ShowLegend: true,
		Colors:     []string{"#5470C6", "#91CC75", "#FAC858", "#EE6666", "#73C0DE", "#3BA272", "#FC8452", "#9A60B4", "#EA7CCC"},
	}
}

// series is one named bar series; nil values render as gaps.
type series struct {
	name   string
	values []*float64
}

// RenderOverview draws average matchup win rate and game-weighted win rate
// per archetype, in the row order given.
func RenderOverview(w io.Writer, rows []stats.ArchetypeSummary, config ChartConfig) error {
	if config.Title == "" {
		config.Title = "Archetype overview"
	}

	labels := make([]string, len(rows))
	avg := series{name: "Average matchup win rate"}
	overall := series{name: "Win rate"}
	for i, r := range rows {
		labels[i] = r.Archetype
		avg.values = append(avg.values, r.AverageMatchupWinRate)
		overall.values = append(overall.values, r.WinRate)
	}
	return renderBars(w, labels, []series{avg, overall}, config)
}

// RenderFocus draws the pooled matchup rows of a focus report: overall,
// first-seat and second-seat win rate per opponent archetype.
func RenderFocus(w io.Writer, report *stats.FocusReport, config ChartConfig) error {
	if report == nil {
		return fmt.Errorf("no focus report to chart")
	}
	if config.Title == "" {
		config.Title = stats.KeyLabel(report.Key) + " matchups"
	}
	if config.Subtitle == "" {
		config.Subtitle = fmt.Sprintf("%d games, win rate %s", report.Metrics.Appearances, stats.FormatPercent(report.Metrics.WinRate))
	}

	var labels []string
	overall := series{name: "Win rate"}
	first := series{name: "First"}
	second := series{name: "Second"}
	for _, r := range report.Matchups {
		if !r.AllTypes {
			continue
		}
		labels = append(labels, r.OpponentDeck)
		overall.values = append(overall.values, r.WinRate)
		first.values = append(first.values, r.FirstWinRate)
		second.values = append(second.values, r.SecondWinRate)
	}
	return renderBars(w, labels, []series{overall, first, second}, config)
}

func renderBars(w io.Writer, labels []string, data []series, config ChartConfig) error {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Width:  config.Width,
			Height: config.Height,
			Theme:  config.Theme,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    config.Title,
			Subtitle: config.Subtitle,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(config.ShowLegend),
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: "%",
			Min:  0,
			Max:  100,
		}),
		charts.WithXAxisOpts(opts.XAxis{
			AxisLabel: &opts.AxisLabel{Rotate: 30, Interval: "0"},
		}),
	)

	bar.SetXAxis(labels)
	for i, s := range data {
		items := make([]opts.BarData, len(s.values))
		for j, v := range s.values {
			if v == nil {
				items[j] = opts.BarData{Value: noData}
			} else {
				items[j] = opts.BarData{Value: *v}
			}
		}
		color := config.Colors[i%len(config.Colors)]
		bar.AddSeries(s.name, items,
			charts.WithItemStyleOpts(opts.ItemStyle{Color: color}),
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(false)}),
		)
	}

	if err := bar.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

// WriteFile renders with render into a new file at path.
func WriteFile(path string, render func(io.Writer) error) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create chart directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	return render(f)
}

// OpenInBrowser opens the given file path in the default web browser.
func OpenInBrowser(filePath string) error {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", absPath)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", absPath)
	case "linux":
		cmd = exec.Command("xdg-open", absPath)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
	return cmd.Start()
}
