// Regioncore runs tile maps whose regions and terrain tags carry
// passability, tile attributes, traits and common events.
// Usage: regioncore [--version] [--plain] [--script <file>] [--trace]
// [--config <file>] [--allow-scripts] <game_directory>
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/nathoo/regioncore/cli"
	"github.com/nathoo/regioncore/config"
	"github.com/nathoo/regioncore/ctxlog"
	"github.com/nathoo/regioncore/engine"
	"github.com/nathoo/regioncore/engine/datafile"
	"github.com/nathoo/regioncore/engine/state"
	"github.com/nathoo/regioncore/loader"
	"github.com/nathoo/regioncore/tui"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const usage = "Usage: regioncore [--version] [--plain] [--script <file>] [--trace] [--config <file>] [--allow-scripts] <game_directory>"

// flags holds the parsed command line. Boolean flags only ever switch a
// setting on, so they are applied on top of the file and environment.
type flags struct {
	plain        bool
	trace        bool
	allowScripts bool
	configFile   string
	scriptFile   string
	gameDir      string
}

func main() {
	f, ok := parseArgs(os.Args[1:])
	if !ok {
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, f); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func parseArgs(args []string) (flags, bool) {
	var f flags
	needValue := func(i int, name string) {
		if i+1 >= len(args) {
			fmt.Fprintf(os.Stderr, "%s requires a file path\n", name)
			os.Exit(1)
		}
	}
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--version":
			fmt.Printf("regioncore %s (commit %s, built %s)\n", version, commit, date)
			return f, false
		case "--plain":
			f.plain = true
		case "--trace":
			f.trace = true
		case "--allow-scripts":
			f.allowScripts = true
		case "--script":
			needValue(i, "--script")
			i++
			f.scriptFile = args[i]
		case "--config":
			needValue(i, "--config")
			i++
			f.configFile = args[i]
		default:
			if f.gameDir == "" {
				f.gameDir = args[i]
			}
		}
	}
	if f.gameDir == "" {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(1)
	}
	return f, true
}

func run(ctx context.Context, f flags) error {
	settings, err := loadSettings(f)
	if err != nil {
		return err
	}

	interactive := f.scriptFile == "" && !settings.Plain && isTerminal()

	// The TUI owns the screen, so its logs go to a file in the save dir.
	logOut := io.Writer(os.Stderr)
	if interactive {
		if err := os.MkdirAll(settings.SaveDir, 0o755); err != nil {
			return fmt.Errorf("create save dir: %w", err)
		}
		lf, err := os.OpenFile(filepath.Join(settings.SaveDir, "regioncore.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer lf.Close()
		logOut = lf
	}
	logger := config.NewLogger(settings.LogLevel, settings.LogFormat, logOut)
	ctx = ctxlog.WithLogger(ctx, logger)

	defs, err := loader.Load(ctx, f.gameDir)
	if err != nil {
		logger.Error("loading game failed", "dir", f.gameDir, "error", err)
		return fmt.Errorf("loading game: %w", err)
	}

	data, err := datafile.Load(ctx, f.gameDir, defs.DataFiles)
	if err != nil {
		logger.Error("loading data files failed", "dir", f.gameDir, "error", err)
		return fmt.Errorf("loading data files: %w", err)
	}

	opts := []engine.Option{
		engine.WithLogger(logger),
		engine.WithScripts(settings.AllowScripts),
		engine.WithDamageFloor(settings.DamageFloorAmount),
		engine.WithData(data),
	}
	if settings.Seed != 0 {
		opts = append(opts, engine.WithSeed(settings.Seed))
	}
	eng := engine.New(defs, opts...)

	if f.scriptFile != "" {
		script, err := os.Open(f.scriptFile)
		if err != nil {
			return fmt.Errorf("open script: %w", err)
		}
		defer script.Close()
		c := newCLI(eng, defs, settings, logger)
		c.In = script
		c.EchoInput = true
		c.Run()
		return nil
	}

	if !interactive {
		newCLI(eng, defs, settings, logger).Run()
		return nil
	}

	return tui.Run(newCommands(eng, defs, settings, logger))
}

// loadSettings layers the settings file, the environment and the flags.
// Without --config, a regioncore.hcl next to the game content is used
// when present.
func loadSettings(f flags) (config.Settings, error) {
	path := f.configFile
	if path == "" {
		if candidate := filepath.Join(f.gameDir, config.DefaultFile); config.FileExists(candidate) {
			path = candidate
		}
	}
	s, err := config.Load(path)
	if err != nil {
		return config.Settings{}, fmt.Errorf("settings: %w", err)
	}
	s.Plain = s.Plain || f.plain
	s.Trace = s.Trace || f.trace
	s.AllowScripts = s.AllowScripts || f.allowScripts
	return s, nil
}

func newCLI(eng *engine.Engine, defs *state.Defs, s config.Settings, logger *slog.Logger) *cli.CLI {
	fmt.Printf("%s v%s by %s\n\n", defs.Game.Title, defs.Game.Version, defs.Game.Author)
	c := cli.New(eng, defs, s.SaveDir)
	c.Commands = *newCommands(eng, defs, s, logger)
	return c
}

// newCommands binds the slash commands both frontends share to the
// resolved settings.
func newCommands(eng *engine.Engine, defs *state.Defs, s config.Settings, logger *slog.Logger) *cli.Commands {
	cmds := cli.NewCommands(eng, defs, s.SaveDir)
	cmds.Trace = s.Trace
	cmds.Log = logger
	return cmds
}

// isTerminal returns true if stdout is a terminal (not piped/redirected).
func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
