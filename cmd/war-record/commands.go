package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/We-are-incomplete/war-record-only-read/internal/analysis"
	"github.com/We-are-incomplete/war-record-only-read/internal/charts"
	"github.com/We-are-incomplete/war-record-only-read/internal/config"
	"github.com/We-are-incomplete/war-record-only-read/internal/display"
	"github.com/We-are-incomplete/war-record-only-read/internal/events"
	"github.com/We-are-incomplete/war-record-only-read/internal/export"
	"github.com/We-are-incomplete/war-record-only-read/internal/logging"
	"github.com/We-are-incomplete/war-record-only-read/internal/players"
	"github.com/We-are-incomplete/war-record-only-read/internal/snapshot"
	"github.com/We-are-incomplete/war-record-only-read/internal/stats"
	"github.com/We-are-incomplete/war-record-only-read/internal/storage"
	"github.com/We-are-incomplete/war-record-only-read/internal/storage/models"
)

// command is one subcommand that runs against an opened store.
type command struct {
	name    string
	usage   string
	summary string
	run     func(a *app, ctx context.Context, args []string) error
}

// commands is also the order of the usage text. migrate and hash-password
// are dispatched before the store is opened.
var commands = []command{
	{"import", "import records|players|results <csv> [-lenient]", "Replace stored data with a CSV export", (*app).runImport},
	{"options", "options", "List seasons, environments and archetypes", (*app).runOptions},
	{"archetypes", "archetypes", "List archetypes in the filtered records", (*app).runArchetypes},
	{"types", "types <archetype>", "List the types of an archetype", (*app).runTypes},
	{"overview", "overview", "Per-archetype summary table", (*app).runOverview},
	{"focus", "focus <archetype> [-type T]", "Own metrics and matchup table", (*app).runFocus},
	{"memos", "memos <archetype> [-type T]", "Memos of records involving an archetype", (*app).runMemos},
	{"records", "records", "Filtered records, newest first", (*app).runRecords},
	{"export", "export <table> [archetype] [-format F] [-o file]", "Write records|overview|matchups|memos as CSV or JSON", (*app).runExport},
	{"chart", "chart overview|focus [archetype] [-o file] [-open]", "Render an HTML bar chart", (*app).runChart},
	{"players", "players [-q keyword] [-team T] [-tournament T] [-deck D]", "Search tournament results", (*app).runPlayers},
	{"imports", "imports", "Show recent imports", (*app).runImports},
	{"backup", "backup [file]", "Write a verified copy of the database", (*app).runBackup},
	{"migrate", "migrate up|down|version|force <v>", "Manage the database schema", nil},
	{"hash-password", "hash-password [password]", "Print a bcrypt hash for server.password_hash", nil},
}

func lookupCommand(name string) (command, bool) {
	for _, c := range commands {
		if c.name != name {
			continue
		}
		if c.run == nil && name != "migrate" {
			return command{}, false
		}
		return c, true
	}
	return command{}, false
}

// app holds what the store-backed commands share.
type app struct {
	cfg      *config.Config
	out      io.Writer
	logger   *logging.Logger
	store    *storage.Service
	holder   *snapshot.Holder
	svc      *analysis.Service
	display  *display.Displayer
	importer *players.Importer
	// filter holds the global -season/-env flags. Commands copy it and
	// never write to it.
	filter models.RecordFilter
	now      func() time.Time
}

func newApp(cfg *config.Config, store *storage.Service, out io.Writer, logger *logging.Logger) *app {
	holder := snapshot.NewHolder()
	dispatcher := events.NewDispatcher(logger)
	dispatcher.Register(events.NewLoggingObserver(logger))

	return &app{
		cfg:      cfg,
		out:      out,
		logger:   logger,
		store:    store,
		holder:   holder,
		svc:      analysis.NewService(holder, nil),
		display:  display.New(out),
		importer: players.NewImporter(store, dispatcher, logger),
		now:      time.Now,
	}
}

func (a *app) reloader(lenient bool) *snapshot.Reloader {
	return snapshot.NewReloader(snapshot.ReloaderConfig{
		Store:   a.store,
		Holder:  a.holder,
		Logger:  a.logger,
		Lenient: lenient,
	})
}

// load publishes the stored records.
func (a *app) load(ctx context.Context) error {
	_, err := a.reloader(a.cfg.Source.Lenient).Refresh(ctx)
	return err
}

// flagSet returns a flag set carrying the filter flags, and the filter
// they fill. The filter starts from the global one and belongs to this
// command alone.
func (a *app) flagSet(name string) (*flag.FlagSet, *models.RecordFilter) {
	filter := &models.RecordFilter{
		Season:       a.filter.Season,
		Environments: slices.Clone(a.filter.Environments),
	}
	fs := flag.NewFlagSet("war-record "+name, flag.ContinueOnError)
	fs.StringVar(&filter.Season, "season", filter.Season, "Only records of this season")
	fs.Var((*stringList)(&filter.Environments), "env", "Only records of this environment (repeatable)")
	return fs, filter
}

func (a *app) runImport(ctx context.Context, args []string) error {
	fs, _ := a.flagSet("import")
	lenient := fs.Bool("lenient", a.cfg.Source.Lenient, "Skip invalid record rows instead of rejecting the file")
	pos, err := parseInterspersed(fs, args)
	if err != nil {
		return err
	}
	if len(pos) != 2 {
		fmt.Fprintln(fs.Output(), "usage: war-record import records|players|results <csv> [-lenient]")
		return errUsage
	}

	kind, path := pos[0], pos[1]
	switch kind {
	case models.ImportRecords:
		s, err := a.reloader(*lenient).ImportFile(ctx, path)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Imported %d records from %s\n", s.Len(), path)
	case models.ImportPlayers:
		run, err := a.importer.ImportPlayers(ctx, path)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Imported %d players from %s\n", run.Accepted, path)
	case models.ImportResults:
		run, err := a.importer.ImportResults(ctx, path)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Imported %d tournament results from %s\n", run.Accepted, path)
	default:
		return fmt.Errorf("unknown import kind %q (want records, players or results)", kind)
	}
	return nil
}

func (a *app) runOptions(_ context.Context, args []string) error {
	fs, _ := a.flagSet("options")
	if _, err := parseInterspersed(fs, args); err != nil {
		return err
	}
	opts := a.svc.Options()
	a.display.List("Seasons", opts.Seasons)
	a.display.List("Environments", opts.Environments)
	a.display.List("Archetypes", opts.Archetypes)
	return nil
}

func (a *app) runArchetypes(_ context.Context, args []string) error {
	fs, filter := a.flagSet("archetypes")
	if _, err := parseInterspersed(fs, args); err != nil {
		return err
	}
	a.display.List("Archetypes", a.svc.Archetypes(*filter))
	return nil
}

func (a *app) runTypes(_ context.Context, args []string) error {
	fs, filter := a.flagSet("types")
	pos, err := parseInterspersed(fs, args)
	if err != nil {
		return err
	}
	if len(pos) != 1 {
		fmt.Fprintln(fs.Output(), "usage: war-record types <archetype>")
		return errUsage
	}
	a.display.List("Types of "+pos[0], a.svc.Types(*filter, pos[0]))
	return nil
}

func (a *app) runOverview(_ context.Context, args []string) error {
	fs, filter := a.flagSet("overview")
	if _, err := parseInterspersed(fs, args); err != nil {
		return err
	}
	rows, err := a.svc.Overview(*filter)
	if err != nil {
		return err
	}
	return a.display.Overview(rows)
}

// focus parses "<archetype> [-type T]" and builds the report.
func (a *app) focus(name string, args []string) (*stats.FocusReport, error) {
	fs, filter := a.flagSet(name)
	typ := fs.String("type", "", "Archetype type; empty or ALL pools every type")
	pos, err := parseInterspersed(fs, args)
	if err != nil {
		return nil, err
	}
	if len(pos) != 1 {
		fmt.Fprintf(fs.Output(), "usage: war-record %s <archetype> [-type T]\n", name)
		return nil, errUsage
	}
	return a.svc.Focus(*filter, models.ParseArchetypeKey(pos[0], *typ))
}

func (a *app) runFocus(_ context.Context, args []string) error {
	report, err := a.focus("focus", args)
	if err != nil {
		return err
	}
	return a.display.Focus(report)
}

func (a *app) runMemos(_ context.Context, args []string) error {
	report, err := a.focus("memos", args)
	if err != nil {
		return err
	}
	return a.display.Memos(report)
}

func (a *app) runRecords(_ context.Context, args []string) error {
	fs, filter := a.flagSet("records")
	if _, err := parseInterspersed(fs, args); err != nil {
		return err
	}
	return a.display.Records(a.svc.Records(*filter))
}

func (a *app) runExport(_ context.Context, args []string) error {
	fs, filter := a.flagSet("export")
	formatName := fs.String("format", "csv", "csv or json")
	output := fs.String("o", "", "Output file (default: <table>_<timestamp>.<format>)")
	typ := fs.String("type", "", "Archetype type for matchups and memos")
	pretty := fs.Bool("pretty", false, "Indent JSON output")
	force := fs.Bool("force", false, "Overwrite an existing file")
	pos, err := parseInterspersed(fs, args)
	if err != nil {
		return err
	}
	if len(pos) < 1 || len(pos) > 2 {
		fmt.Fprintln(fs.Output(), "usage: war-record export <table> [archetype] [-format csv|json] [-o file]")
		return errUsage
	}

	table, err := export.ParseTable(pos[0])
	if err != nil {
		return err
	}
	format, err := export.ParseFormat(*formatName)
	if err != nil {
		return err
	}
	if table.NeedsFocus() && len(pos) < 2 {
		return fmt.Errorf("the %s table needs an archetype", table)
	}

	var rows any
	switch table {
	case export.TableRecords:
		rows = export.RecordRows(a.svc.Records(*filter))
	case export.TableOverview:
		summaries, err := a.svc.Overview(*filter)
		if err != nil {
			return err
		}
		rows = export.OverviewRows(summaries)
	default:
		report, err := a.svc.Focus(*filter, models.ParseArchetypeKey(pos[1], *typ))
		if err != nil {
			return err
		}
		if table == export.TableMatchups {
			rows = export.MatchupRows(report)
		} else {
			rows = export.MemoRows(report)
		}
	}

	path := *output
	if path == "" {
		path = export.GenerateFilename(string(table), format, a.now())
	}
	exporter := export.NewExporter(export.Options{
		Format:     format,
		FilePath:   path,
		PrettyJSON: *pretty,
		Overwrite:  *force,
	})
	if err := exporter.Export(rows); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Exported %s to %s\n", table, path)
	return nil
}

func (a *app) runChart(_ context.Context, args []string) error {
	fs, filter := a.flagSet("chart")
	output := fs.String("o", "", "Output HTML file (default: <kind>_chart.html)")
	typ := fs.String("type", "", "Archetype type for the focus chart")
	open := fs.Bool("open", false, "Open the chart in the default browser")
	pos, err := parseInterspersed(fs, args)
	if err != nil {
		return err
	}
	if len(pos) == 0 {
		fmt.Fprintln(fs.Output(), "usage: war-record chart overview|focus [archetype] [-o file] [-open]")
		return errUsage
	}

	var render func(io.Writer) error
	cfg := charts.DefaultChartConfig()
	switch pos[0] {
	case "overview":
		rows, err := a.svc.Overview(*filter)
		if err != nil {
			return err
		}
		render = func(w io.Writer) error { return charts.RenderOverview(w, rows, cfg) }
	case "focus":
		if len(pos) != 2 {
			return errors.New("the focus chart needs an archetype")
		}
		report, err := a.svc.Focus(*filter, models.ParseArchetypeKey(pos[1], *typ))
		if err != nil {
			return err
		}
		render = func(w io.Writer) error { return charts.RenderFocus(w, report, cfg) }
	default:
		return fmt.Errorf("unknown chart %q (want overview or focus)", pos[0])
	}

	path := *output
	if path == "" {
		path = pos[0] + "_chart.html"
	}
	if err := charts.WriteFile(path, render); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Chart written to %s\n", path)

	if *open {
		return charts.OpenInBrowser(path)
	}
	return nil
}

func (a *app) runPlayers(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("war-record players", flag.ContinueOnError)
	keyword := fs.String("q", "", "Keyword matched against every column")
	var columns players.ColumnFilter
	fs.Var((*stringList)(&columns.Teams), "team", "Only this team (repeatable)")
	fs.Var((*stringList)(&columns.Tournaments), "tournament", "Only this tournament (repeatable)")
	fs.Var((*stringList)(&columns.Decks), "deck", "Only this deck (repeatable)")
	if _, err := parseInterspersed(fs, args); err != nil {
		return err
	}

	directory, err := a.store.ListPlayers(ctx)
	if err != nil {
		return err
	}
	results, err := a.store.ListResults(ctx)
	if err != nil {
		return err
	}

	entries := columns.Apply(players.Join(directory, results))
	return a.display.Players(players.Search(entries, directory, *keyword))
}

func (a *app) runImports(ctx context.Context, _ []string) error {
	runs, err := a.store.RecentImports(ctx, 20)
	if err != nil {
		return err
	}
	return a.display.Imports(runs)
}

func (a *app) runBackup(ctx context.Context, args []string) error {
	path := storage.BackupName(a.now())
	if len(args) > 0 {
		path = args[0]
	}
	if err := a.store.Backup(ctx, path); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Backup written to %s\n", path)
	return nil
}
