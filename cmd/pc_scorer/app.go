package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"github.com/user/pc_scorer_go/internal/config"
	"github.com/user/pc_scorer_go/internal/console"
	"github.com/user/pc_scorer_go/internal/parser"
	"github.com/user/pc_scorer_go/internal/scoring"
	"github.com/user/pc_scorer_go/internal/validate"
)

type AppOptions struct {
	ConfigPath string
	SkipConfig bool // commands that never read the event run on defaults
	Color      string
	Quiet      bool
	Verbose    bool
	Jobs       int
	Stdout     io.Writer
	Stderr     io.Writer
}

// App carries what every command shares: the event config, the console
// printer, the logger and the run id.
type App struct {
	cfg     *config.AppConfig
	printer *console.Printer
	logger  *slog.Logger
	runID   string
	jobs    int
	color   bool
}

func NewApp(opts AppOptions) (*App, error) {
	mode, err := console.ParseColorMode(opts.Color)
	if err != nil {
		return nil, err
	}
	colorOn := mode == console.ColorOn
	if f, ok := opts.Stdout.(*os.File); ok {
		colorOn = console.UseColor(mode, f)
	}

	level := slog.LevelWarn
	if opts.Verbose {
		level = slog.LevelDebug
	}
	runID := uuid.NewString()
	logger := slog.New(slog.NewTextHandler(opts.Stderr, &slog.HandlerOptions{Level: level})).With("run", runID)

	cfg := config.Default()
	if !opts.SkipConfig {
		if cfg, err = config.Load(opts.ConfigPath); err != nil {
			return nil, err
		}
	}
	if cfg.Path == "" {
		logger.Debug("no config file, using defaults", "path", opts.ConfigPath)
	}

	return &App{
		cfg:     cfg,
		printer: console.NewPrinter(opts.Stdout, opts.Stderr, colorOn, opts.Quiet),
		logger:  logger,
		runID:   runID,
		jobs:    opts.Jobs,
		color:   colorOn,
	}, nil
}

func (a *App) sendStatus(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	a.printer.Status("%s", msg)
	a.logger.Debug(msg)
}

// event is everything loaded for one computation.
type event struct {
	race     *parser.RaceData
	settings *parser.Settings
	overlay  *config.Overlay
	repo     *config.Repository
}

// loadSettings reads the settings folder and the overlay.
func (a *App) loadSettings() (*parser.Settings, *config.Overlay, error) {
	a.sendStatus("Loading settings: %s", a.cfg.SettingsDir)
	settings, err := parser.LoadSettings(a.cfg.SettingsDir)
	if err != nil {
		return nil, nil, fmt.Errorf("settings: %w", err)
	}
	overlay, err := config.LoadOverlay(a.cfg.Overlay)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", a.cfg.Overlay, err)
	}
	a.sendStatus("Loaded %d entries, %d segments.", len(settings.Entries), len(settings.Segments))
	return settings, overlay, nil
}

func (a *App) load() (*event, error) {
	settings, overlay, err := a.loadSettings()
	if err != nil {
		return nil, err
	}
	return a.loadRace(settings, overlay)
}

// loadRace parses the race folder and binds it to already loaded settings.
func (a *App) loadRace(settings *parser.Settings, overlay *config.Overlay) (*event, error) {
	repo, err := config.NewRepository(settings, a.cfg, overlay)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", a.cfg.Overlay, err)
	}

	a.sendStatus("Parsing race folder: %s", a.cfg.RaceDir)
	race, err := parser.ParseRaceDir(a.cfg.RaceDir)
	if err != nil {
		return nil, fmt.Errorf("race data: %w", err)
	}
	a.sendStatus("Parsed %d files, %d bibs.", len(race.Files), len(race.Bibs()))
	for _, w := range race.ParseErrors {
		a.printer.Warn("%s", w)
	}

	return &event{
		race:     race,
		settings: settings,
		overlay:  overlay,
		repo:     repo,
	}, nil
}

// check runs the consistency checks and reports every finding.
func (a *App) check(ev *event) []validate.Issue {
	issues := validate.Run(ev.race, ev.repo)
	for _, is := range issues {
		a.printer.Warn("%s", is)
	}
	return issues
}

func (a *App) compute(ctx context.Context, ev *event) (*scoring.Results, error) {
	a.sendStatus("Scoring...")
	engine := scoring.NewEngine(ev.race, ev.repo, scoring.WithJobs(a.jobs), scoring.WithLogger(a.logger))
	res, err := engine.Compute(ctx)
	if err != nil {
		return nil, err
	}
	a.sendStatus("Scored %d competitors on %d segments.", len(res.Rows), len(res.Segments))
	return res, nil
}
