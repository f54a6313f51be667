package convert

import (
	"context"
	"log/slog"

	"esdemedia/internal/fileutil"
	"esdemedia/internal/logging"
	"esdemedia/internal/pathpolicy"
	"esdemedia/internal/services"
)

// Copier handles files that are carried over byte for byte.
type Copier struct {
	Logger *slog.Logger
}

// Convert copies job.Source to job.Dest unless the path policy skips it.
func (c Copier) Convert(ctx context.Context, job Job) Outcome {
	if d := pathpolicy.Evaluate(job.Source, job.Dest); d.Skip {
		return Skipped(d)
	}
	return CopyOriginal(ctx, c.Logger, job, "copy")
}

// CopyOriginal is the terminal fallback shared by every converter.
func CopyOriginal(ctx context.Context, logger *slog.Logger, job Job, tool string) Outcome {
	size, _ := fileutil.FileSize(job.Source)
	if err := fileutil.CopyFile(job.Source, job.Dest); err != nil {
		return Failed(services.Wrap(services.ErrTransient, string(job.Kind), "copy", "copy original", err), size)
	}
	logging.WithContext(ctx, logger).Debug("copied original", logging.String("dest", job.Dest))
	return Done(ActionCopied, tool, size, size)
}
