package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/data/binding"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"yashubustudio/pyroclassifier/classifier"
	"yashubustudio/pyroclassifier/internal/history"
)

type uiState struct {
	opts   Options
	cfg    classifier.Config
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	// runAsync starts the classification worker.
	runAsync func(func())

	model     classifier.Model
	modelPath string
	dirPath   string
	last      *classifier.Result

	w            fyne.Window
	modelLabel   *widget.Label
	dirLabel     *widget.Label
	resultLabel  *widget.Label
	status       *widget.Label
	progress     *widget.ProgressBar
	statusBind   binding.String
	progressBind binding.Float

	modelBtn    *widget.Button
	dirBtn      *widget.Button
	classifyBtn *widget.Button
	exportBtn   *widget.Button
	historyBtn  *widget.Button
}

func buildUI(w fyne.Window, opts Options, logBind binding.String, logger *slog.Logger) *uiState {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	u := &uiState{
		opts:     opts,
		cfg:      opts.Config,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
		runAsync: func(fn func()) { go fn() },
		w:        w,
	}

	u.statusBind = binding.NewString()
	_ = u.statusBind.Set("Ready")
	u.progressBind = binding.NewFloat()

	u.modelLabel = widget.NewLabel("Select Model:")
	u.dirLabel = widget.NewLabel("Select Directory:")
	u.resultLabel = widget.NewLabel("Results will be displayed here.")
	u.resultLabel.Wrapping = fyne.TextWrapWord
	u.status = widget.NewLabelWithData(u.statusBind)
	u.progress = widget.NewProgressBarWithData(u.progressBind)
	u.progress.Hide()

	u.modelBtn = widget.NewButtonWithIcon("Browse", theme.FileIcon(), func() { u.onSelectModel() })
	u.dirBtn = widget.NewButtonWithIcon("Browse", theme.FolderOpenIcon(), func() { u.onSelectDirectory() })
	u.classifyBtn = widget.NewButtonWithIcon("Classify Images", theme.ConfirmIcon(), func() { u.onClassify() })
	u.exportBtn = widget.NewButtonWithIcon("Export CSV", theme.DocumentSaveIcon(), func() { u.onExport() })
	u.historyBtn = widget.NewButtonWithIcon("History", theme.HistoryIcon(), func() { u.onHistory() })

	controls := container.NewVBox(
		u.modelLabel,
		u.modelBtn,
		u.dirLabel,
		u.dirBtn,
		u.classifyBtn,
		u.progress,
		u.status,
		widget.NewSeparator(),
		u.resultLabel,
		container.NewGridWithColumns(2, u.exportBtn, u.historyBtn),
	)

	content := controls
	if logBind != nil {
		logView := widget.NewLabelWithData(logBind)
		logView.Wrapping = fyne.TextWrapWord
		logScroll := container.NewVScroll(logView)
		logScroll.SetMinSize(fyne.NewSize(200, 140))
		content = container.NewVBox(
			controls,
			widget.NewSeparator(),
			widget.NewLabelWithStyle("Log", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
			logScroll,
		)
	}

	w.SetContent(container.NewVScroll(content))
	w.Resize(fyne.NewSize(560, 640))
	return u
}

func (u *uiState) setBusy(b bool) {
	fyne.Do(func() {
		for _, btn := range []*widget.Button{u.modelBtn, u.dirBtn, u.classifyBtn, u.exportBtn} {
			if b {
				btn.Disable()
			} else {
				btn.Enable()
			}
		}
		if b {
			u.progress.Show()
		} else {
			u.progress.Hide()
		}
	})
}

func (u *uiState) setStatus(text string) {
	_ = u.statusBind.Set(text)
}

func (u *uiState) showError(err error) {
	if err != nil {
		dialog.ShowError(err, u.w)
	}
}

func (u *uiState) saveConfig() {
	if err := classifier.SaveLastPaths(u.opts.ConfigPath, u.cfg.LastModelPath, u.cfg.LastImageDir); err != nil {
		u.logger.Warn("Failed to save config", "error", err)
	}
}

// startLocation returns a dialog start folder for a remembered path.
func startLocation(path string) fyne.ListableURI {
	if path == "" {
		return nil
	}
	lister, err := storage.ListerForURI(storage.NewFileURI(path))
	if err != nil {
		return nil
	}
	return lister
}

func (u *uiState) onSelectModel() {
	fd := dialog.NewFileOpen(func(rc fyne.URIReadCloser, err error) {
		if err != nil {
			u.showError(err)
			return
		}
		if rc == nil {
			return
		}
		path := rc.URI().Path()
		rc.Close()
		u.selectModel(path)
	}, u.w)
	fd.SetFilter(storage.NewExtensionFileFilter([]string{".onnx"}))
	if u.cfg.LastModelPath != "" {
		if loc := startLocation(filepath.Dir(u.cfg.LastModelPath)); loc != nil {
			fd.SetLocation(loc)
		}
	}
	fd.Show()
}

// selectModel loads path and replaces the current model. On failure the
// previous model stays active.
func (u *uiState) selectModel(path string) {
	if u.opts.LoadModel == nil {
		u.showError(errors.New("model loading is not available"))
		return
	}
	model, err := u.opts.LoadModel(path)
	if err != nil {
		u.logger.Error("Failed to load model", "path", path, "error", err)
		u.showError(fmt.Errorf("load model: %w", err))
		return
	}
	if u.model != nil {
		if err := u.model.Close(); err != nil {
			u.logger.Warn("Failed to close previous model", "error", err)
		}
	}
	u.model = model
	u.modelPath = path
	u.modelLabel.SetText("Selected Model: " + path)
	u.logger.Info("Model loaded", "path", path)
	u.cfg.LastModelPath = path
	u.saveConfig()
}

func (u *uiState) onSelectDirectory() {
	fd := dialog.NewFolderOpen(func(lu fyne.ListableURI, err error) {
		if err != nil {
			u.showError(err)
			return
		}
		if lu == nil {
			return
		}
		u.selectDirectory(lu.Path())
	}, u.w)
	if loc := startLocation(u.cfg.LastImageDir); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (u *uiState) selectDirectory(path string) {
	u.dirPath = path
	u.dirLabel.SetText("Selected Directory: " + path)
	u.cfg.LastImageDir = path
	u.saveConfig()
}

func (u *uiState) onClassify() {
	if u.model == nil || u.dirPath == "" {
		u.resultLabel.SetText(classifier.PreconditionMessage)
		return
	}
	model, modelPath, dir := u.model, u.modelPath, u.dirPath

	_ = u.progressBind.Set(0)
	u.setStatus("Classifying...")
	u.setBusy(true)

	u.runAsync(func() {
		res, err := u.opts.Service.ClassifyDir(u.ctx, model, dir, func(done, total int) {
			if total > 0 {
				_ = u.progressBind.Set(float64(done) / float64(total))
			}
			u.setStatus(fmt.Sprintf("Classifying %d/%d", done, total))
		})
		u.setBusy(false)
		if err != nil && res == nil {
			u.setStatus("Error")
			u.logger.Error("Classification failed", "dir", dir, "error", err)
			fyne.Do(func() { u.showError(err) })
			return
		}

		text := classifier.FormatCounts(u.opts.Service.Classes(), res)
		fyne.Do(func() {
			u.last = res
			u.resultLabel.SetText(text)
		})
		if err != nil {
			u.setStatus("Stopped")
			return
		}
		u.setStatus(fmt.Sprintf("Done: %d images, %d skipped (%.1fs)",
			res.Processed, len(res.Skipped), res.Elapsed.Seconds()))
		u.recordHistory(modelPath, res)
	})
}

func (u *uiState) recordHistory(modelPath string, res *classifier.Result) {
	if u.opts.History == nil {
		return
	}
	if _, err := u.opts.History.Record(u.ctx, history.FromResult(modelPath, res)); err != nil {
		u.logger.Warn("Failed to record run history", "error", err)
	}
}

func (u *uiState) onExport() {
	if u.last == nil {
		dialog.ShowInformation("Export", "No results to export yet.", u.w)
		return
	}
	res := u.last
	fd := dialog.NewFileSave(func(uc fyne.URIWriteCloser, err error) {
		if err != nil {
			u.showError(err)
			return
		}
		if uc == nil {
			return
		}
		defer uc.Close()
		if err := classifier.WriteCSV(uc, u.opts.Service.Classes(), res); err != nil {
			u.showError(err)
			return
		}
		u.logger.Info("Exported class counts", "path", uc.URI().Path())
	}, u.w)
	fd.SetFileName(fmt.Sprintf("class_counts_%s.csv", time.Now().Format("20060102150405")))
	fd.SetFilter(storage.NewExtensionFileFilter([]string{".csv"}))
	fd.Show()
}

func (u *uiState) onHistory() {
	if u.opts.History == nil {
		dialog.ShowInformation("History", "Run history is disabled. Set history_db in config.toml to enable it.", u.w)
		return
	}
	runs, err := u.opts.History.Recent(u.ctx, historyLimit)
	if err != nil {
		u.showError(fmt.Errorf("load history: %w", err))
		return
	}
	text := widget.NewLabel(formatHistory(u.opts.Service.Classes(), runs))
	scroll := container.NewVScroll(text)
	scroll.SetMinSize(fyne.NewSize(460, 320))
	dialog.ShowCustom("Recent runs", "Close", scroll, u.w)
}

// shutdown stops a running batch and releases the model.
func (u *uiState) shutdown() {
	u.cancel()
	if u.model != nil {
		if err := u.model.Close(); err != nil {
			u.logger.Warn("Failed to close model", "error", err)
		}
		u.model = nil
	}
}
