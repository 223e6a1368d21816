package classifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

var (
	// ErrNoModel is returned when a run is requested before a model is loaded.
	ErrNoModel = errors.New("no model selected")
	// ErrNoDirectory is returned when a run is requested without an image directory.
	ErrNoDirectory = errors.New("no directory selected")
)

// PreconditionMessage is shown when a run is requested without a model or directory.
const PreconditionMessage = "Please select both a model and a directory."

// Service runs batch classification over image directories.
type Service struct {
	classes *ClassTable
	pre     *Preprocessor
	logger  *slog.Logger
}

// NewService constructs a service for the given class table and preprocessor.
func NewService(classes *ClassTable, pre *Preprocessor, logger *slog.Logger) (*Service, error) {
	if classes == nil {
		return nil, errors.New("class table is required")
	}
	if pre == nil {
		return nil, errors.New("preprocessor is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{classes: classes, pre: pre, logger: logger}, nil
}

// Classes returns the class table used to label predictions.
func (s *Service) Classes() *ClassTable {
	return s.classes
}

// ClassifyFile predicts the class of a single image.
func (s *Service) ClassifyFile(ctx context.Context, model Model, path string) (int, string, error) {
	input, err := s.pre.Load(path)
	if err != nil {
		return -1, "", err
	}
	scores, err := model.Predict(ctx, input)
	if err != nil {
		return -1, "", fmt.Errorf("predict: %w", err)
	}
	idx := Argmax(scores)
	if idx < 0 {
		return -1, "", errors.New("model returned no scores")
	}
	label, ok := s.classes.Label(idx)
	if !ok {
		return idx, "", fmt.Errorf("predicted index %d is outside the %d-class table", idx, s.classes.Len())
	}
	return idx, label, nil
}

// ClassifyDir classifies every entry of dir one at a time and counts the
// predicted labels. Entries that cannot be processed are logged and skipped.
// When ctx is cancelled the partial result is returned with ctx.Err().
func (s *Service) ClassifyDir(ctx context.Context, model Model, dir string, progress ProgressFunc) (*Result, error) {
	if model == nil {
		return nil, ErrNoModel
	}
	if dir == "" {
		return nil, ErrNoDirectory
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory: %w", err)
	}

	res := &Result{
		Directory: dir,
		Counts:    make(Counts),
		Started:   time.Now(),
	}
	total := len(entries)
	s.logger.Info("Classification started", "dir", dir, "entries", total)

	for i, entry := range entries {
		if err := ctx.Err(); err != nil {
			res.Elapsed = time.Since(res.Started)
			return res, err
		}
		path := filepath.Join(dir, entry.Name())
		_, label, err := s.ClassifyFile(ctx, model, path)
		if err != nil {
			s.logger.Warn("Error processing image", "path", path, "error", err)
			res.Skipped = append(res.Skipped, FileError{Path: path, Err: err})
		} else {
			res.Counts[label]++
			res.Processed++
		}
		if progress != nil {
			progress(i+1, total)
		}
	}

	res.Elapsed = time.Since(res.Started)
	s.logger.Info("Classification finished",
		"dir", dir,
		"processed", res.Processed,
		"skipped", len(res.Skipped),
		"elapsed", res.Elapsed.Round(time.Millisecond))
	return res, nil
}
