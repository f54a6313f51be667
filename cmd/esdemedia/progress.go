package main

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/schollz/progressbar/v3"

	"esdemedia/internal/ffmpeg"
	"esdemedia/internal/logging"
)

// progressReporter shows ffmpeg progress as a bar on a terminal and as
// sampled log lines otherwise.
type progressReporter struct {
	mu      sync.Mutex
	out     io.Writer
	tty     bool
	logger  *slog.Logger
	sampler *logging.ProgressSampler

	bar    *progressbar.ProgressBar
	source string
	stage  string
}

func newProgressReporter(out io.Writer, logger *slog.Logger) *progressReporter {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &progressReporter{
		out:     out,
		tty:     shouldColorize(out),
		logger:  logging.NewComponentLogger(logger, "progress"),
		sampler: logging.NewProgressSampler(10),
	}
}

// Observe satisfies ffmpeg.ProgressObserver.
func (p *progressReporter) Observe(update ffmpeg.ProgressUpdate) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if update.Source != p.source || update.Stage != p.stage {
		p.finishLocked()
		p.source = update.Source
		p.stage = update.Stage
	}
	if p.tty {
		p.renderLocked(update)
		return
	}
	if !p.sampler.ShouldLog(update.Source, update.Stage, update.Percent) {
		return
	}
	attrs := []logging.Attr{
		logging.String("file", filepath.Base(update.Source)),
		logging.String(logging.FieldProgressStage, update.Stage),
	}
	if update.Percent >= 0 {
		attrs = append(attrs, logging.Float64(logging.FieldProgressPercent, update.Percent))
	}
	if update.ETA > 0 {
		attrs = append(attrs, logging.Duration(logging.FieldProgressETA, update.ETA))
	}
	p.logger.Info(update.Message(), logging.Args(attrs...)...)
}

func (p *progressReporter) renderLocked(update ffmpeg.ProgressUpdate) {
	if p.bar == nil {
		p.bar = progressbar.NewOptions64(100,
			progressbar.OptionSetWriter(p.out),
			progressbar.OptionSetDescription(fmt.Sprintf("%s %s", update.Stage, filepath.Base(update.Source))),
			progressbar.OptionSetPredictTime(true),
			progressbar.OptionClearOnFinish(),
		)
	}
	if update.Percent >= 0 {
		_ = p.bar.Set64(int64(update.Percent))
	}
	if update.Done {
		p.finishLocked()
	}
}

func (p *progressReporter) finishLocked() {
	if p.bar == nil {
		return
	}
	_ = p.bar.Finish()
	p.bar = nil
}

// Close clears any bar left on screen.
func (p *progressReporter) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.finishLocked()
	p.sampler.Reset()
}
