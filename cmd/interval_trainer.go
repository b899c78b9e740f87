package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/lowaak/interval-trainer/internal/config"
	"github.com/lowaak/interval-trainer/internal/cues"
	"github.com/lowaak/interval-trainer/internal/i18n"
	"github.com/lowaak/interval-trainer/internal/logging"
	"github.com/lowaak/interval-trainer/internal/plans"
	"github.com/lowaak/interval-trainer/internal/platform"
	"github.com/lowaak/interval-trainer/internal/sequencer"
	"github.com/lowaak/interval-trainer/internal/trainer"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if errors.Is(err, config.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", config.AppName, err)
		os.Exit(2)
	}

	logs := logging.New(logging.Options{
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	logger := logs.Logger
	defer func() {
		if err := logs.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "close log: %v\n", err)
		}
	}()
	logger.Printf("Main: starting %s (locale %s, log %s)", config.AppName, i18n.ResolveTag(cfg.Locale), cfg.Log.File)

	catalog, err := plans.Load(cfg.PlansFile)
	must(logger, "load plans", err)
	logger.Printf("Main: %d plans available", catalog.Len())

	baseScreen, err := tcell.NewScreen()
	must(logger, "open terminal", err)
	screen := trainer.NewFocusScreen(baseScreen)

	tone, err := platform.NewTonePlayer(cfg.Sound, screen)
	if err != nil {
		logger.Printf("Main: sound disabled: %v", err)
		tone = nil
	}

	desktop := platform.NewDesktop(config.AppName)
	defer func() {
		if err := desktop.Close(); err != nil {
			logger.Printf("Main: close desktop: %v", err)
		}
	}()

	channels := cues.Channels{Tone: tone, Focus: screen}
	if cfg.Notifications {
		channels.Notifier = desktop.Notifier
	}
	if cfg.WakeLock {
		channels.WakeLock = desktop.WakeLock
	}
	emitter := cues.NewEmitter(channels, logger, cues.Options{Locale: cfg.Locale})
	defer emitter.Shutdown()

	session, err := sequencer.NewSequencer(catalog, emitter, logger, sequencer.Options{
		TickInterval: cfg.TickInterval,
		PlanKey:      startupPlan(cfg, catalog, logger),
	})
	must(logger, "create sequencer", err)
	defer session.Close()

	model := trainer.NewUIModel(session, catalog.Plans(), cfg.DataDir, logger, logs.UILog())
	defer model.Shutdown()
	controller := trainer.NewUIController(model, session, logger)

	app := tview.NewApplication().SetScreen(screen)
	view := trainer.NewCursesUIView(logger, app, model, i18n.Printer(cfg.Locale))
	base := trainer.NewBaseUIView(trainer.NewBaseUIViewArg{
		UIViewImpl:   view,
		UIModel:      model,
		UIController: controller,
		Logger:       logger,
	})
	defer base.Shutdown()

	if err := base.Run(); err != nil {
		logger.Printf("Main: UI exited with error: %v", err)
	}
	logger.Println("Main: shutting down")
}

// startupPlan picks the --plan flag, then the remembered plan, then the
// catalog default.
func startupPlan(cfg config.Config, catalog *plans.Catalog, logger *log.Logger) string {
	if cfg.Plan != "" {
		return cfg.Plan
	}
	preferred := trainer.LoadPreferredPlan(cfg.DataDir, logger)
	if preferred != "" && catalog.Has(preferred) {
		return preferred
	}
	return catalog.DefaultKey()
}

func must(logger *log.Logger, action string, err error) {
	if err != nil {
		logger.Printf("Main: failed to %s: %v", action, err)
		panic("failed to " + action + ": " + err.Error())
	}
}
