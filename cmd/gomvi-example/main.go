// gomvi-example hosts the choice, counter and details screens.
//
// Usage:
//
//	gomvi-example [flags]
//
// Flags:
//
//	-config string      Path to a TOML config file (default: ~/.config/gomvi/config.toml)
//	-start string       Route of the first screen (default "choice")
//	-headless           Run a key script instead of the TUI; implied when stdout is not a terminal
//	-script string      Key script for headless mode (default "r t 1 esc c wait:1.5s b q")
//	-views              Print the rendered screens in headless mode
//	-verbose            Log at debug level
//	-reset-state        Drop the saved screen state and exit
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"

	"github.com/jask/gomvi/internal/config"
	"github.com/jask/gomvi/internal/database"
	"github.com/jask/gomvi/internal/database/repository"
	"github.com/jask/gomvi/internal/headless"
	"github.com/jask/gomvi/internal/prefs"
	"github.com/jask/gomvi/internal/screens/counter"
	"github.com/jask/gomvi/internal/tui"
)

const defaultScript = "r t 1 esc c wait:1.5s b q"

// stateResetter is implemented by the saved state backends.
type stateResetter interface {
	Reset(ctx context.Context, owners ...string) (int, error)
}

func main() {
	configPath := flag.String("config", "", "path to a TOML config file")
	start := flag.String("start", tui.StartRoute, "route of the first screen")
	runHeadless := flag.Bool("headless", false, "run a key script instead of the TUI")
	script := flag.String("script", defaultScript, "key script for headless mode")
	views := flag.Bool("views", false, "print rendered screens in headless mode")
	verbose := flag.Bool("verbose", false, "log at debug level")
	resetState := flag.Bool("reset-state", false, "drop the saved screen state and exit")
	flag.Parse()

	if *configPath == "" {
		*configPath = os.Getenv(config.EnvPrefix + "_CONFIG")
	}
	cfg, err := config.LoadFile(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	level, err := cfg.Log.SlogLevel()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if *verbose {
		level = slog.LevelDebug
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Log.File), 0o755); err != nil {
		log.Fatalf("mkdir log dir: %v", err)
	}
	logFile, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		log.Fatalf("open log file: %v", err)
	}
	defer logFile.Close()
	logger := slog.New(slog.NewTextHandler(logFile, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	effectPhase, statePhase, err := cfg.Lifecycle.Phases()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	factory := tui.DefaultFactory(logger)
	factory.Counter = counter.Config{
		Interval:    cfg.Counter.Interval,
		StopTimeout: cfg.State.StopTimeout,
		ResetOnStop: cfg.State.ResetOnStop,
	}
	factory.Phases.State = statePhase
	factory.Phases.Effect = effectPhase
	var resetter stateResetter
	switch cfg.State.Backend {
	case config.BackendSQLite:
		db, err := openDatabase(cfg.Database, logger)
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		defer db.Close()
		repo := repository.NewSavedStateRepo(db)
		factory.States = repo
		resetter = repo
	case config.BackendFile:
		backend, err := prefs.NewFileBackend(config.StateDir())
		if err != nil {
			log.Fatalf("state: %v", err)
		}
		factory.States = backend
		resetter = backend
	}
	logger.Debug("saved state", "backend", cfg.State.Backend)

	if *resetState {
		if resetter == nil {
			fmt.Println("no saved state backend configured")
			return
		}
		n, err := resetter.Reset(ctx, tui.PersistedRoutes()...)
		if err != nil {
			log.Fatalf("reset state: %v", err)
		}
		logger.Info("saved state reset", "removed", n)
		fmt.Printf("removed %d saved entries\n", n)
		return
	}

	keys := tui.NewKeyRegistry()
	if err := keys.LoadOverrides(cfg.UI.KeymapFile); err != nil {
		log.Fatalf("keymap: %v", err)
	}

	app, err := tui.New(ctx, factory, keys, *start)
	if err != nil {
		log.Fatalf("start: %v", err)
	}

	if *runHeadless || !isatty.IsTerminal(os.Stdout.Fd()) {
		steps, err := headless.ParseScript(*script)
		if err != nil {
			app.Close()
			log.Fatalf("script: %v", err)
		}
		logger.Info("running headless", "steps", len(steps), "start", *start)
		r := &headless.Runner{App: app, Out: os.Stdout, Logger: logger, Views: *views}
		if err := r.Run(ctx, steps); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		return
	}

	logger.Info("starting tui", "start", *start)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithReportFocus(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		fmt.Printf("error: %v\n", err)
	}
	app.Close()
}

func openDatabase(cfg config.DatabaseConfig, logger *slog.Logger) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}
	if err := database.RunMigrations(cfg.Path, cfg.Migrations); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	version, dirty, err := database.MigrationVersion(cfg.Path, cfg.Migrations)
	if err != nil {
		return nil, fmt.Errorf("migration version: %w", err)
	}
	if dirty {
		return nil, fmt.Errorf("schema version %d is dirty", version)
	}
	logger.Info("database ready", "path", cfg.Path, "schema", version)
	return database.Open(cfg.Path)
}
