package walker

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"esdemedia/internal/config"
	"esdemedia/internal/convert"
	"esdemedia/internal/fileutil"
	"esdemedia/internal/imageopt"
	"esdemedia/internal/logging"
	"esdemedia/internal/pathpolicy"
)

const (
	GamelistName     = "gamelist.xml"
	MediaDirName     = "media"
	GamelistsDir     = "gamelists"
	DownloadedMedia  = "downloaded_media"
	pdfExtension     = ".pdf"
	defaultVideoDest = ".mkv"
)

// Options are the explicit roots and toggles for a run.
type Options struct {
	InputDir        string
	OutputDir       string
	SkipGamelists   bool
	SkipMedia       bool
	SkipVideo       bool
	SkipPDF         bool
	VideoExtensions []string
	VideoTarget     string
}

// OptionsFromConfig maps configuration (already merged with CLI flags) onto
// walker options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		InputDir:        cfg.Paths.InputDir,
		OutputDir:       cfg.Paths.OutputDir,
		SkipGamelists:   cfg.Pipeline.SkipGamelists,
		SkipMedia:       cfg.Pipeline.SkipMedia,
		SkipVideo:       cfg.Pipeline.SkipVideoOptimization,
		SkipPDF:         cfg.Pipeline.SkipPDFOptimization,
		VideoExtensions: append([]string(nil), cfg.Video.SourceExtensions...),
		VideoTarget:     cfg.Video.TargetExtension,
	}
}

// Converters maps job kinds to their implementations. Plain is required;
// a nil converter for another kind falls back to Plain.
type Converters struct {
	Video convert.Converter
	Image convert.Converter
	PDF   convert.Converter
	Plain convert.Converter
}

func (c Converters) forKind(kind convert.Kind) convert.Converter {
	var conv convert.Converter
	switch kind {
	case convert.KindVideo:
		conv = c.Video
	case convert.KindImage:
		conv = c.Image
	case convert.KindPDF:
		conv = c.PDF
	}
	if conv == nil {
		return c.Plain
	}
	return conv
}

// Walker runs the two passes over the input tree.
type Walker struct {
	opts      Options
	conv      Converters
	logger    *slog.Logger
	onOutcome func(convert.Job, convert.Outcome)
}

// Option customizes a Walker.
type Option func(*Walker)

// WithOutcomeHook registers a callback invoked after every job.
func WithOutcomeHook(fn func(convert.Job, convert.Outcome)) Option {
	return func(w *Walker) {
		w.onOutcome = fn
	}
}

// New constructs a walker.
func New(opts Options, conv Converters, logger *slog.Logger, options ...Option) *Walker {
	if conv.Plain == nil {
		conv.Plain = convert.Copier{Logger: logger}
	}
	if opts.VideoTarget == "" {
		opts.VideoTarget = defaultVideoDest
	}
	w := &Walker{opts: opts, conv: conv, logger: logging.NewComponentLogger(logger, "walker")}
	for _, opt := range options {
		opt(w)
	}
	return w
}

// Run executes the enabled passes. Per-job failures are counted in the
// summary; only an unreadable input root or cancellation returns an error.
func (w *Walker) Run(ctx context.Context) (summary Summary, err error) {
	started := time.Now()
	defer func() { summary.Duration = time.Since(started) }()

	info, statErr := os.Stat(w.opts.InputDir)
	if statErr != nil {
		return summary, fmt.Errorf("input dir: %w", statErr)
	}
	if !info.IsDir() {
		return summary, fmt.Errorf("input dir %s is not a directory", w.opts.InputDir)
	}

	if !w.opts.SkipGamelists {
		if err := w.gamelists(ctx, &summary); err != nil {
			return summary, err
		}
		w.logger.Info("gamelist pass complete",
			logging.Int("copied", summary.GamelistsCopied),
			logging.Int("skipped", summary.GamelistsSkipped),
			logging.Int("failed", summary.GamelistsFailed),
		)
	}
	if !w.opts.SkipMedia {
		if err := w.media(ctx, &summary); err != nil {
			return summary, err
		}
		w.logger.Info("media pass complete",
			logging.Int("media_folders", summary.MediaFolders),
			logging.Int("copied", summary.FilesCopied),
			logging.Int("skipped", summary.FilesSkipped),
			logging.Int("failed", summary.FilesFailed),
		)
	}
	return summary, nil
}

func (w *Walker) gamelists(ctx context.Context, summary *Summary) error {
	root := filepath.Join(w.opts.OutputDir, GamelistsDir)
	return w.walk(ctx, w.opts.InputDir, func(path string, d fs.DirEntry) error {
		if d.IsDir() || d.Name() != GamelistName {
			return nil
		}
		rel, err := filepath.Rel(w.opts.InputDir, filepath.Dir(path))
		if err != nil {
			return nil
		}
		job := convert.Job{Source: path, Dest: filepath.Join(root, rel, GamelistName), Kind: convert.KindPlain}
		out := w.dispatch(ctx, job)
		summary.recordGamelist(out)
		return nil
	})
}

func (w *Walker) media(ctx context.Context, summary *Summary) error {
	return w.walk(ctx, w.opts.InputDir, func(path string, d fs.DirEntry) error {
		if !d.IsDir() || d.Name() != MediaDirName || path == w.opts.InputDir {
			return nil
		}
		if err := w.mediaFolder(ctx, path, summary); err != nil {
			return err
		}
		summary.MediaFolders++
		return filepath.SkipDir
	})
}

func (w *Walker) mediaFolder(ctx context.Context, mediaDir string, summary *Summary) error {
	system := filepath.Base(filepath.Dir(mediaDir))
	systemDest := filepath.Join(w.opts.OutputDir, DownloadedMedia, system)
	entries, err := os.ReadDir(mediaDir)
	if err != nil {
		w.warnUnreadable(mediaDir, err)
		return nil
	}
	for _, entry := range entries {
		itemPath := filepath.Join(mediaDir, entry.Name())
		if info, err := os.Stat(itemPath); err != nil || !info.IsDir() {
			continue
		}
		itemDest := filepath.Join(systemDest, entry.Name())
		if err := os.MkdirAll(itemDest, 0o755); err != nil {
			w.warnUnreadable(itemDest, err)
			continue
		}
		err := w.walk(ctx, itemPath, func(path string, d fs.DirEntry) error {
			if d.IsDir() {
				rel, err := filepath.Rel(itemPath, path)
				if err != nil || rel == "." {
					return nil
				}
				if err := os.MkdirAll(filepath.Join(itemDest, rel), 0o755); err != nil {
					w.warnUnreadable(filepath.Join(itemDest, rel), err)
				}
				return nil
			}
			rel, err := filepath.Rel(itemPath, filepath.Dir(path))
			if err != nil {
				return nil
			}
			if pathpolicy.IsHidden(d.Name()) {
				summary.FilesSkipped++
				w.logger.Debug("skipping hidden file", logging.String("path", path))
				return nil
			}
			job := w.classify(path, filepath.Join(itemDest, rel))
			out := w.dispatch(ctx, job)
			summary.recordMedia(job, out)
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// classify picks the converter and destination name for a media file.
func (w *Walker) classify(src, destDir string) convert.Job {
	name := filepath.Base(src)
	ext := strings.ToLower(filepath.Ext(name))
	job := convert.Job{Source: src, Dest: filepath.Join(destDir, name), Kind: convert.KindPlain}
	switch {
	case w.isVideo(ext) && !w.opts.SkipVideo:
		job.Kind = convert.KindVideo
		job.Dest = fileutil.ReplaceExtension(job.Dest, w.opts.VideoTarget)
	case ext == pdfExtension && !w.opts.SkipPDF:
		job.Kind = convert.KindPDF
	case imageopt.Supported(name):
		job.Kind = convert.KindImage
	}
	return job
}

func (w *Walker) isVideo(ext string) bool {
	for _, candidate := range w.opts.VideoExtensions {
		if ext == candidate {
			return true
		}
	}
	return false
}

func (w *Walker) dispatch(ctx context.Context, job convert.Job) convert.Outcome {
	out := convert.Guard(ctx, w.logger, w.conv.forKind(job.Kind), job)
	jobLogger := logging.WithContext(ctx, w.logger).With(
		logging.String(logging.FieldJobKind, string(job.Kind)),
		logging.String(logging.FieldSource, job.Source),
	)
	switch {
	case out.Action == convert.ActionSkipped:
		jobLogger.Debug("job skipped", logging.String("reason", string(out.Reason)))
	case !out.Succeeded:
		logging.ErrorWithContext(jobLogger, "job failed", "job_failed",
			logging.Error(out.Err),
			logging.String(logging.FieldErrorHint, "rerun after fixing the cause; finished files are skipped"),
		)
	default:
		jobLogger.Debug("job finished",
			logging.String(logging.FieldAction, string(out.Action)),
			logging.String(logging.FieldTool, out.Tool),
			logging.String("dest", out.Written(job)),
		)
	}
	if w.onOutcome != nil {
		w.onOutcome(job, out)
	}
	return out
}

// walk wraps filepath.WalkDir with cancellation, output-root pruning and
// tolerant handling of unreadable subdirectories.
func (w *Walker) walk(ctx context.Context, root string, visit func(string, fs.DirEntry) error) error {
	output := filepath.Clean(w.opts.OutputDir)
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if path == root {
				return err
			}
			w.warnUnreadable(path, err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() && filepath.Clean(path) == output {
			return filepath.SkipDir
		}
		return visit(path, d)
	})
}

func (w *Walker) warnUnreadable(path string, err error) {
	if errors.Is(err, context.Canceled) {
		return
	}
	logging.WarnWithContext(w.logger, "skipping unreadable path", "path_unreadable",
		logging.String("path", path),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "check permissions on the ROM tree"),
		logging.String(logging.FieldImpact, "files below this path were not processed"),
	)
}
