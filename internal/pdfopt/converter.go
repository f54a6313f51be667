package pdfopt

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"

	"esdemedia/internal/config"
	"esdemedia/internal/convert"
	"esdemedia/internal/fileutil"
	"esdemedia/internal/logging"
	"esdemedia/internal/pathpolicy"
)

const component = "pdfopt"

// Converter implements convert.Converter for PDF manuals.
type Converter struct {
	Attempts []convert.Attempt
	Logger   *slog.Logger
}

// New builds the default optimizer chain.
func New(cfg *config.Config, logger *slog.Logger) *Converter {
	return &Converter{
		Attempts: []convert.Attempt{
			OCRmyPDFAttempt(cfg.PDF, cfg.PDFTimeout(), nil),
			PdfcpuAttempt(),
		},
		Logger: logging.NewComponentLogger(logger, component),
	}
}

// Convert optimizes one PDF.
func (c *Converter) Convert(ctx context.Context, job convert.Job) convert.Outcome {
	if d := pathpolicy.Evaluate(job.Source, job.Dest); d.Skip {
		return convert.Skipped(d)
	}
	logger := logging.WithContext(ctx, c.logger())
	inSize, _ := fileutil.FileSize(job.Source)

	ws, err := convert.NewWorkspace(filepath.Dir(job.Dest), "pdf", logger)
	if err != nil {
		return convert.Failed(err, inSize)
	}
	defer ws.Close()

	res, err := convert.RunChain(ctx, logger, c.Attempts, job.Source, func(a convert.Attempt) string {
		return ws.Path(a.Name() + ".pdf")
	})
	switch {
	case err == nil:
	case errors.Is(err, ErrAlreadyOptimal):
		logger.Info("pdf images already optimal; copying unchanged")
		return convert.CopyOriginal(ctx, logger, job, res.Tool)
	case ctx.Err() != nil:
		return convert.Failed(err, inSize)
	default:
		logging.WarnWithContext(logger, "pdf optimization failed; copying original", "pdf_optimize_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "install ocrmypdf or check the file opens in a viewer"),
			logging.String(logging.FieldImpact, "manual copied without optimization"),
		)
		return convert.CopyOriginal(ctx, logger, job, "copy")
	}

	used, size, err := convert.KeepSmaller(res.Output, job.Source, job.Dest)
	if err != nil {
		return convert.Failed(err, inSize)
	}
	action := convert.ActionOptimized
	if !used {
		action = convert.ActionCopied
	}
	logger.Info("pdf processed", logging.Args(append(logging.SizeAttrs(inSize, size),
		logging.String(logging.FieldAction, string(action)),
		logging.String(logging.FieldTool, res.Tool))...)...)
	return convert.Done(action, res.Tool, inSize, size)
}

func (c *Converter) logger() *slog.Logger {
	if c.Logger == nil {
		return logging.NewNop()
	}
	return c.Logger
}

var _ convert.Converter = (*Converter)(nil)
