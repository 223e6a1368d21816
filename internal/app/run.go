package app

import (
	"fmt"
	"log/slog"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"yashubustudio/pyroclassifier/classifier"
	"yashubustudio/pyroclassifier/internal/history"
	"yashubustudio/pyroclassifier/internal/logging"
)

// Run initializes required resources and starts the desktop UI.
func Run() error {
	a := fyneapp.NewWithID(fyneAppID)
	w := a.NewWindow(windowTitle)

	cfg, err := classifier.LoadConfig(defaultConfigFile)
	if err != nil {
		showFatalError(w, fmt.Errorf("load config: %w", err))
		return err
	}

	panel := newLogPanel(logLineLimit)
	logger, closeLog, err := logging.New(logging.Options{
		Level: logging.ParseLevel(cfg.Log.Level),
		Dir:   cfg.Log.Dir,
		Tee:   panel,
	})
	if err != nil {
		showFatalError(w, fmt.Errorf("set up logging: %w", err))
		return err
	}
	defer closeLog()

	destroyRuntime, err := classifier.InitRuntime(cfg.OrtLibrary, logger)
	if err != nil {
		showFatalError(w, err)
		return err
	}
	defer destroyRuntime()

	opts, closeStore, err := newOptions(cfg, logger)
	if err != nil {
		showFatalError(w, err)
		return err
	}
	defer closeStore()

	u := buildUI(w, opts, panel.text, logger)
	defer u.shutdown()
	w.SetOnClosed(u.cancel)

	logger.Info("Application started", "config", defaultConfigFile)
	w.ShowAndRun()
	return nil
}

// newOptions builds the classifier service and optional history store from cfg.
func newOptions(cfg classifier.Config, logger *slog.Logger) (Options, func(), error) {
	noop := func() {}
	classes, err := classifier.LoadClassTable(cfg.ClassesFile)
	if err != nil {
		return Options{}, noop, fmt.Errorf("load class table: %w", err)
	}
	pre, err := classifier.NewPreprocessor(cfg.Model)
	if err != nil {
		return Options{}, noop, fmt.Errorf("configure preprocessing: %w", err)
	}
	svc, err := classifier.NewService(classes, pre, logger)
	if err != nil {
		return Options{}, noop, err
	}

	opts := Options{
		Service:    svc,
		Config:     cfg,
		ConfigPath: defaultConfigFile,
		LoadModel: func(path string) (classifier.Model, error) {
			return classifier.LoadOrtModel(path, pre.Shape())
		},
	}

	if cfg.HistoryDB == "" {
		return opts, noop, nil
	}
	store, err := history.Open(cfg.HistoryDB)
	if err != nil {
		logger.Warn("Run history disabled", "path", cfg.HistoryDB, "error", err)
		return opts, noop, nil
	}
	opts.History = store
	return opts, func() {
		if err := store.Close(); err != nil {
			logger.Warn("Failed to close history store", "error", err)
		}
	}, nil
}

func showFatalError(w fyne.Window, err error) {
	w.SetContent(widget.NewLabel(err.Error()))
	w.Resize(fyne.NewSize(480, 160))
	dialog.ShowError(err, w)
	w.ShowAndRun()
}
