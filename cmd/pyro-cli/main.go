package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"yashubustudio/pyroclassifier/classifier"
	"yashubustudio/pyroclassifier/internal/history"
	"yashubustudio/pyroclassifier/internal/logging"
)

const defaultHistoryDB = "history.db"

type cliOptions struct {
	configPath string
	modelPath  string
	dirPath    string
	csvPath    string
	history    bool
}

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		log.Fatalf("pyro-cli: %v", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, opts, os.Stdout); err != nil {
		stop()
		log.Fatalf("pyro-cli: %v", err)
	}
}

func parseFlags(args []string, output io.Writer) (cliOptions, error) {
	var opts cliOptions
	fs := flag.NewFlagSet("pyro-cli", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&opts.configPath, "config", "", "Path to config.toml (default: ./config.toml)")
	fs.StringVar(&opts.modelPath, "model", "", "ONNX model file")
	fs.StringVar(&opts.dirPath, "dir", "", "Directory of images to classify")
	fs.StringVar(&opts.csvPath, "csv", "", "Write class counts to this CSV file")
	fs.BoolVar(&opts.history, "history", false, "Record the run in the history database")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: %s -model FILE -dir DIR [options]\n\n", filepath.Base(os.Args[0]))
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	opts.configPath = strings.TrimSpace(opts.configPath)
	opts.modelPath = strings.TrimSpace(opts.modelPath)
	opts.dirPath = strings.TrimSpace(opts.dirPath)
	opts.csvPath = strings.TrimSpace(opts.csvPath)

	var missing error
	if opts.modelPath == "" {
		missing = errors.Join(missing, classifier.ErrNoModel)
	}
	if opts.dirPath == "" {
		missing = errors.Join(missing, classifier.ErrNoDirectory)
	}
	if missing != nil {
		fmt.Fprintln(output, classifier.PreconditionMessage)
		fs.Usage()
		return opts, missing
	}
	return opts, nil
}

func run(ctx context.Context, opts cliOptions, out io.Writer) error {
	cfg, err := classifier.LoadConfig(opts.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, closeLog, err := logging.New(logging.Options{
		Level: logging.ParseLevel(cfg.Log.Level),
		Dir:   cfg.Log.Dir,
	})
	if err != nil {
		return fmt.Errorf("set up logging: %w", err)
	}
	defer closeLog()

	classes, err := classifier.LoadClassTable(cfg.ClassesFile)
	if err != nil {
		return fmt.Errorf("load class table: %w", err)
	}
	pre, err := classifier.NewPreprocessor(cfg.Model)
	if err != nil {
		return fmt.Errorf("configure preprocessing: %w", err)
	}
	svc, err := classifier.NewService(classes, pre, logger)
	if err != nil {
		return fmt.Errorf("init service: %w", err)
	}

	destroy, err := classifier.InitRuntime(cfg.OrtLibrary, logger)
	if err != nil {
		return err
	}
	defer destroy()

	model, err := classifier.LoadOrtModel(opts.modelPath, pre.Shape())
	if err != nil {
		return fmt.Errorf("load model: %w", err)
	}
	defer model.Close()

	res, runErr := svc.ClassifyDir(ctx, model, opts.dirPath, nil)
	if res == nil {
		return fmt.Errorf("classify: %w", runErr)
	}
	fmt.Fprint(out, classifier.FormatCounts(classes, res))
	if runErr != nil {
		return fmt.Errorf("classify: %w", runErr)
	}

	if opts.csvPath != "" {
		if err := classifier.SaveCSV(opts.csvPath, classes, res); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
		logger.Info("Wrote class counts", "path", opts.csvPath)
	}

	if opts.history {
		recordHistory(ctx, historyPath(cfg), opts.modelPath, res, logger)
	}
	return nil
}

func historyPath(cfg classifier.Config) string {
	if cfg.HistoryDB != "" {
		return cfg.HistoryDB
	}
	return defaultHistoryDB
}

// recordHistory stores res; failures are logged only.
func recordHistory(ctx context.Context, path, modelPath string, res *classifier.Result, logger *slog.Logger) {
	store, err := history.Open(path)
	if err != nil {
		logger.Warn("Failed to open history", "path", path, "error", err)
		return
	}
	defer store.Close()
	id, err := store.Record(ctx, history.FromResult(modelPath, res))
	if err != nil {
		logger.Warn("Failed to record run history", "error", err)
		return
	}
	logger.Info("Recorded run", "id", id, "path", path)
}
