package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"esdemedia/internal/config"
	"esdemedia/internal/convert"
	"esdemedia/internal/deps"
	"esdemedia/internal/imageopt"
	"esdemedia/internal/logging"
	"esdemedia/internal/pdfopt"
	"esdemedia/internal/preflight"
	"esdemedia/internal/runlock"
	"esdemedia/internal/services"
	"esdemedia/internal/videoopt"
	"esdemedia/internal/walker"
)

// runFlags mirrors the historical command line of the media optimiser.
type runFlags struct {
	inputDir      string
	outputDir     string
	skipGamelists bool
	skipMedia     bool
	skipVideo     bool
	skipPDF       bool
	logLevel      string
}

func (f *runFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&f.inputDir, "input_dir", "i", "", "ROM tree containing gamelists and media folders (default from config)")
	flags.StringVarP(&f.outputDir, "output_dir", "o", "", "Destination for gamelists/ and downloaded_media/ (default from config)")
	flags.BoolVar(&f.skipGamelists, "skip_gamelists", false, "Skip processing gamelist.xml files")
	flags.BoolVar(&f.skipMedia, "skip_media", false, "Skip processing media folders")
	flags.BoolVar(&f.skipVideo, "skip_video_optimization", false, "Copy videos without transcoding")
	flags.BoolVar(&f.skipPDF, "skip_pdf_optimization", false, "Copy PDFs without optimization")
	flags.StringVar(&f.logLevel, "log-level", "", "Override logging.level (debug, info, warn, error)")
}

// apply overlays explicitly set flags on the loaded configuration.
func (f *runFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("input_dir") {
		cfg.Paths.InputDir = f.inputDir
	}
	if flags.Changed("output_dir") {
		cfg.Paths.OutputDir = f.outputDir
	}
	if flags.Changed("skip_gamelists") {
		cfg.Pipeline.SkipGamelists = f.skipGamelists
	}
	if flags.Changed("skip_media") {
		cfg.Pipeline.SkipMedia = f.skipMedia
	}
	if flags.Changed("skip_video_optimization") {
		cfg.Pipeline.SkipVideoOptimization = f.skipVideo
	}
	if flags.Changed("skip_pdf_optimization") {
		cfg.Pipeline.SkipPDFOptimization = f.skipPDF
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = f.logLevel
	}
	if err := cfg.Normalize(); err != nil {
		return err
	}
	return cfg.Validate()
}

func runPipeline(cmd *cobra.Command, cfg *config.Config) error {
	if err := checkPreflight(cfg); err != nil {
		return err
	}

	runID := uuid.NewString()
	logger, logPath, err := logging.NewFromConfig(cfg, runID)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays, logging.RetentionTarget{
		Dir:     cfg.Paths.LogDir,
		Pattern: logging.RunLogPattern,
		Exclude: []string{logPath},
	})

	lock, err := runlock.Acquire(cfg.Paths.LogDir, cfg.Paths.OutputDir)
	if err != nil {
		return err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			logger.Warn("failed to release run lock", logging.Error(err), logging.String("lock", lock.File()))
		}
	}()

	warnMissingTools(logger, cfg)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = services.WithRunID(ctx, runID)

	progress := newProgressReporter(cmd.ErrOrStderr(), logger)
	defer progress.Close()

	w := walker.New(walker.OptionsFromConfig(cfg), walker.Converters{
		Video: videoopt.New(cfg, logger, progress.Observe),
		Image: imageopt.New(cfg, logger),
		PDF:   pdfopt.New(cfg, logger),
		Plain: convert.Copier{Logger: logger},
	}, logger)

	logger.InfoContext(ctx, "esdemedia run starting",
		logging.String("input_dir", cfg.Paths.InputDir),
		logging.String("output_dir", cfg.Paths.OutputDir),
		logging.String("log_file", logPath),
		logging.Bool("skip_gamelists", cfg.Pipeline.SkipGamelists),
		logging.Bool("skip_media", cfg.Pipeline.SkipMedia),
		logging.Bool("skip_video_optimization", cfg.Pipeline.SkipVideoOptimization),
		logging.Bool("skip_pdf_optimization", cfg.Pipeline.SkipPDFOptimization),
	)

	summary, runErr := w.Run(ctx)
	progress.Close()
	fmt.Fprintln(cmd.OutOrStdout(), renderSummary(summary))
	if logPath != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Run log: %s\n", logPath)
	}

	if runErr != nil {
		if errors.Is(runErr, context.Canceled) {
			logging.WarnWithContext(logger, "run interrupted; finished files were kept", "run_interrupted",
				logging.String(logging.FieldErrorHint, "rerun to continue; existing outputs are skipped"),
				logging.String(logging.FieldImpact, "remaining files were not processed"),
			)
		}
		return runErr
	}
	logger.InfoContext(ctx, "esdemedia run complete",
		logging.Int("failed", summary.Failed()),
		logging.Duration("duration", summary.Duration),
	)
	return nil
}

// checkPreflight rejects a run before any output is written. The input tree
// must already exist; output and log directories are created on demand.
func checkPreflight(cfg *config.Config) error {
	if res := preflight.CheckInputDir(cfg.Paths.InputDir); !res.Passed {
		return preflightError(res)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("preflight: %w", err)
	}
	for _, res := range preflight.RunAll(cfg) {
		if !res.Passed {
			return preflightError(res)
		}
	}
	return nil
}

func preflightError(res preflight.Result) error {
	return fmt.Errorf("preflight: %s: %s", strings.ToLower(res.Name), res.Detail)
}

func warnMissingTools(logger *slog.Logger, cfg *config.Config) {
	for _, status := range preflight.CheckSystemDeps(cfg) {
		if status.Available || status.Optional {
			continue
		}
		logging.WarnWithContext(logger, "required tool missing; affected jobs will fail", "tool_missing",
			logging.String(logging.FieldTool, status.Name),
			logging.String("command", status.Command),
			logging.String(logging.FieldErrorHint, missingToolHint(status)),
			logging.String(logging.FieldImpact, status.Description),
		)
	}
}

// Only the video tools are ever required; image and PDF tools have library
// fallbacks.
func missingToolHint(status deps.Status) string {
	return "install " + status.Command + " or pass --skip_video_optimization"
}
