package convert

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"esdemedia/internal/fileutil"
	"esdemedia/internal/logging"
	"esdemedia/internal/services"
)

// ErrEmptyDestination marks a converter that claimed success without
// producing a usable file.
var ErrEmptyDestination = errors.New("destination missing or empty")

// Guard runs a converter at the job boundary. A panic becomes a failed
// outcome, a claimed success without a non-empty destination is downgraded
// to a failure, and any failure removes the partial destination. After Guard
// returns, either the destination is non-empty or the outcome failed.
func Guard(ctx context.Context, logger *slog.Logger, conv Converter, job Job) (out Outcome) {
	if logger == nil {
		logger = logging.NewNop()
	}
	ctx = services.WithJob(ctx, string(job.Kind), job.Source)

	func() {
		defer func() {
			if r := recover(); r != nil {
				out = Failed(fmt.Errorf("converter panic: %v", r), 0)
			}
		}()
		out = conv.Convert(ctx, job)
	}()

	dest := out.Written(job)
	if out.Succeeded {
		size, ok := fileutil.FileSize(dest)
		if !ok || size == 0 {
			out = Failed(fmt.Errorf("%w: %s", ErrEmptyDestination, dest), out.BytesIn)
		} else if out.BytesOut == 0 {
			out.BytesOut = size
		}
	}
	if !out.Succeeded && out.Action != ActionSkipped {
		for _, path := range []string{job.Dest, out.Dest} {
			if err := fileutil.RemoveIfExists(path); err != nil {
				logging.WarnWithContext(logging.WithContext(ctx, logger), "partial output cleanup failed", "partial_cleanup_failed",
					logging.String("dest", path),
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "delete "+filepath.Base(path)+" before the next run"),
					logging.String(logging.FieldImpact, "a partial file may be mistaken for finished output"),
				)
			}
		}
	}
	return out
}

func parentDir(path string) string {
	return filepath.Dir(path)
}
