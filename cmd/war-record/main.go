// Command war-record queries match records from the terminal. Records are
// read from the sqlite store filled by "war-record import" or the API
// server's source watcher.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/We-are-incomplete/war-record-only-read/internal/config"
	"github.com/We-are-incomplete/war-record-only-read/internal/logging"
	"github.com/We-are-incomplete/war-record-only-read/internal/storage"
	"github.com/We-are-incomplete/war-record-only-read/internal/storage/models"
	"github.com/We-are-incomplete/war-record-only-read/internal/version"
)

var (
	configPath = flag.String("config", "", "Config file (default: ~/.war-record/config.toml)")
	dbPath     = flag.String("db-path", "", "Database path (overrides config)")
	verbose    = flag.Bool("v", false, "Log progress to stderr")
	season     = flag.String("season", "", "Only records of this season")
	showVer    = flag.Bool("version", false, "Print the version and exit")
	envs       stringList
)

func init() {
	flag.Var(&envs, "env", "Only records of this environment (repeatable)")
}

// errUsage reports a malformed command line; the usage text has already
// been printed.
var errUsage = errors.New("invalid arguments")

func main() {
	flag.Usage = printUsage
	flag.Parse()

	if *showVer {
		fmt.Println("war-record", version.GetVersion())
		return
	}

	if flag.NArg() == 0 {
		printUsage()
		os.Exit(2)
	}

	if err := run(flag.Arg(0), flag.Args()[1:]); err != nil {
		if errors.Is(err, errUsage) || errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "war-record: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	out := flag.CommandLine.Output()
	fmt.Fprintln(out, "war-record - match record statistics")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Usage: war-record [global flags] <command> [args]")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Commands:")
	for _, c := range commands {
		fmt.Fprintf(out, "  %-44s %s\n", c.usage, c.summary)
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Global flags:")
	flag.PrintDefaults()
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Examples:")
	fmt.Fprintln(out, "  war-record import records ~/Downloads/records.csv")
	fmt.Fprintln(out, "  war-record -season S3 overview")
	fmt.Fprintln(out, "  war-record focus Dragon -type Ramp -env ranked")
	fmt.Fprintln(out, "  war-record export matchups Dragon -format csv -o dragon.csv")
}

func run(name string, args []string) error {
	if name == "help" {
		printUsage()
		return nil
	}
	if name == "hash-password" {
		return runHashPassword(os.Stdin, os.Stdout, args)
	}

	cmd, ok := lookupCommand(name)
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", name)
		printUsage()
		return errUsage
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	level := logging.LevelWarn
	if *verbose {
		level = logging.LevelInfo
	}
	logger := logging.NewConsole(level)
	logging.SetDefault(logger)
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if name == "migrate" {
		return runMigrate(os.Stdout, cfg.Database.Path, args)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}
	dbConfig := storage.DefaultConfig(cfg.Database.Path)
	dbConfig.AutoMigrate = cfg.Database.AutoMigrate
	db, err := storage.Open(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	store := storage.NewService(db)
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	a := newApp(cfg, store, os.Stdout, logger)
	a.filter = models.RecordFilter{Season: *season, Environments: envs}
	if err := a.load(ctx); err != nil {
		return err
	}
	return cmd.run(a, ctx, args)
}

func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if *configPath != "" {
		cfg, err = config.LoadFrom(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// stringList is a repeatable string flag.
type stringList []string

func (s *stringList) String() string {
	return strings.Join(*s, ",")
}

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// parseInterspersed parses fs from args, allowing flags after positional
// arguments, and returns the positional arguments in order.
func parseInterspersed(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			// The flag set has already reported the problem.
			if errors.Is(err, flag.ErrHelp) {
				return nil, err
			}
			return nil, errUsage
		}
		args = fs.Args()
		if len(args) == 0 {
			return positional, nil
		}
		positional = append(positional, args[0])
		args = args[1:]
	}
}
