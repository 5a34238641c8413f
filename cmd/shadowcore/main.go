// ShadowCore is a turn-based journey of scenes and shadow encounters.
// Usage: shadowcore [--version] [--config <file>] [--plain] [--script <file>] [--trace] [--seed <n>] [game_directory]
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/nathoo/shadowcore/cli"
	"github.com/nathoo/shadowcore/config"
	"github.com/nathoo/shadowcore/engine"
	"github.com/nathoo/shadowcore/engine/history"
	"github.com/nathoo/shadowcore/engine/history/sqlite"
	"github.com/nathoo/shadowcore/loader"
	"github.com/nathoo/shadowcore/tui"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const usage = "Usage: shadowcore [--version] [--config <file>] [--plain] [--script <file>] [--trace] [--seed <n>] [game_directory]"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type flags struct {
	configFile string
	scriptFile string
	gameDir    string
	seed       int64
	plain      bool
	trace      bool
	version    bool
}

func parseFlags(args []string) (flags, error) {
	f := flags{configFile: "shadowcore.yaml"}
	value := func(i *int, name string) (string, error) {
		if *i+1 >= len(args) {
			return "", fmt.Errorf("%s requires a value", name)
		}
		*i++
		return args[*i], nil
	}

	for i := 0; i < len(args); i++ {
		var err error
		switch args[i] {
		case "--version":
			f.version = true
		case "--plain":
			f.plain = true
		case "--trace":
			f.trace = true
		case "--config":
			f.configFile, err = value(&i, "--config")
		case "--script":
			f.scriptFile, err = value(&i, "--script")
		case "--seed":
			var s string
			if s, err = value(&i, "--seed"); err == nil {
				f.seed, err = strconv.ParseInt(s, 10, 64)
			}
		default:
			if f.gameDir == "" {
				f.gameDir = args[i]
			}
		}
		if err != nil {
			return f, err
		}
	}
	return f, nil
}

func run() error {
	fl, err := parseFlags(os.Args[1:])
	if err != nil {
		return fmt.Errorf("%w\n%s", err, usage)
	}
	if fl.version {
		fmt.Printf("shadowcore %s (commit %s, built %s)\n", version, commit, date)
		return nil
	}

	cfg, err := config.LoadWithEnv(fl.configFile)
	if err != nil {
		return err
	}
	if fl.gameDir != "" {
		cfg.GameDir = fl.gameDir
	}
	if fl.seed != 0 {
		cfg.Seed = fl.seed
	}
	if cfg.GameDir == "" {
		return fmt.Errorf("no game directory given\n%s", usage)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// The TUI owns the terminal, so logs go to a file there.
	useTUI := fl.scriptFile == "" && !fl.plain && isTerminal()
	logger, closeLog, err := newLogger(cfg, useTUI)
	if err != nil {
		return err
	}
	defer closeLog()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load and compile Lua game content.
	defs, err := loader.Load(cfg.GameDir)
	if err != nil {
		return fmt.Errorf("loading game: %w", err)
	}

	seed := cfg.Seed
	if seed == 0 {
		if seed, err = engine.NewSeed(); err != nil {
			return err
		}
	}

	sink, closeSink, err := openHistory(cfg)
	if err != nil {
		return err
	}
	defer closeSink()
	recorder := history.NewRecorder(sink, cfg.UserID, logger)
	defer recorder.Wait()

	eng := engine.New(defs, engine.Options{
		Rules:    cfg.Balance,
		Seed:     seed,
		Recorder: recorder,
		Logger:   logger,
	})
	logger.Info("session started", "game", defs.Game.Title, "seed", seed, "user", cfg.UserID)

	if useTUI {
		return tui.Run(ctx, eng, defs, tui.Options{SaveDir: cfg.SaveDir, UserID: cfg.UserID})
	}

	c := cli.New(eng, defs, cfg.SaveDir, cfg.UserID)
	c.Meta.Trace = fl.trace

	// Script mode: read commands from a file and echo them.
	if fl.scriptFile != "" {
		f, err := os.Open(fl.scriptFile)
		if err != nil {
			return fmt.Errorf("opening script: %w", err)
		}
		defer f.Close()
		c.In = f
		c.EchoInput = true
	}

	fmt.Printf("%s v%s by %s\n\n", defs.Game.Title, defs.Game.Version, defs.Game.Author)
	c.Run(ctx)
	return nil
}

// newLogger builds the process logger. TUI sessions log to cfg.LogFile.
func newLogger(cfg config.Config, toFile bool) (*slog.Logger, func(), error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, nil, err
	}
	opts := &slog.HandlerOptions{Level: level}

	if !toFile {
		return slog.New(slog.NewTextHandler(os.Stderr, opts)), func() {}, nil
	}
	if cfg.LogFile == "" {
		return slog.New(slog.NewTextHandler(io.Discard, opts)), func() {}, nil
	}
	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	return slog.New(slog.NewJSONHandler(f, opts)), func() { _ = f.Close() }, nil
}

// openHistory returns the sqlite store when a database path is set and an
// in-memory sink otherwise.
func openHistory(cfg config.Config) (history.Sink, func(), error) {
	if cfg.HistoryDB == "" {
		return history.NewMemorySink(), func() {}, nil
	}
	store, err := sqlite.Open(cfg.HistoryDB)
	if err != nil {
		return nil, nil, fmt.Errorf("opening history: %w", err)
	}
	return store, func() { _ = store.Close() }, nil
}

// isTerminal returns true if stdout is a terminal (not piped/redirected).
func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
