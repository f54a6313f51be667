package convert

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"esdemedia/internal/fileutil"
	"esdemedia/internal/logging"
	"esdemedia/internal/services"
)

// ErrChainExhausted is returned when every attempt in a chain was
// unavailable or failed recoverably.
var ErrChainExhausted = errors.New("all attempts failed")

// Attempt is one candidate tool in a fallback chain.
type Attempt interface {
	Name() string
	// Available reports whether the tool can run at all (binary on PATH,
	// library compiled in). Unavailable attempts are skipped without a warning.
	Available() bool
	// Encode reads src and writes the converted artifact to dst.
	Encode(ctx context.Context, src, dst string) error
}

// AttemptFunc adapts plain functions to Attempt.
type AttemptFunc struct {
	Label string
	Ready func() bool
	Fn    func(ctx context.Context, src, dst string) error
}

func (a AttemptFunc) Name() string { return a.Label }

func (a AttemptFunc) Available() bool { return a.Ready == nil || a.Ready() }

func (a AttemptFunc) Encode(ctx context.Context, src, dst string) error {
	return a.Fn(ctx, src, dst)
}

// ChainResult names the attempt that succeeded and where it wrote.
type ChainResult struct {
	Tool   string
	Output string
}

// RunChain tries attempts in order and returns the first success. output
// maps an attempt to its private output path so a failed attempt cannot
// leave bytes for the next one to trip over. An attempt that reports success
// but produces no bytes counts as a tool failure. Errors that are not
// recoverable (cancellation, unclassified errors) stop the chain immediately.
func RunChain(ctx context.Context, logger *slog.Logger, attempts []Attempt, src string, output func(Attempt) string) (ChainResult, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	var failures []error
	for _, attempt := range attempts {
		if err := ctx.Err(); err != nil {
			return ChainResult{}, err
		}
		name := attempt.Name()
		if !attempt.Available() {
			logger.Debug("attempt unavailable", logging.String(logging.FieldTool, name))
			failures = append(failures, services.Wrap(services.ErrToolUnavailable, "chain", name, "unavailable", nil))
			continue
		}

		dst := output(attempt)
		err := attempt.Encode(ctx, src, dst)
		if err == nil && !fileutil.NonEmpty(dst) {
			err = services.Wrap(services.ErrExternalTool, "chain", name, "produced no output", nil)
		}
		if err == nil {
			return ChainResult{Tool: name, Output: dst}, nil
		}
		_ = fileutil.RemoveIfExists(dst)
		if !services.Fallthrough(err) {
			return ChainResult{Tool: name}, err
		}
		failures = append(failures, err)
		logging.WarnWithContext(logger, "attempt failed; trying next", "attempt_failed",
			logging.String(logging.FieldTool, name),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check that "+name+" is installed and can read the file"),
			logging.String(logging.FieldImpact, "falling back to the next encoder"),
		)
	}
	return ChainResult{}, fmt.Errorf("%w: %w", ErrChainExhausted, errors.Join(failures...))
}
