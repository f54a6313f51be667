package ffmpeg

import (
	"context"
	"log/slog"
	"time"

	"esdemedia/internal/logging"
	"esdemedia/internal/toolexec"
)

// Encoder runs ffmpeg jobs and forwards their progress.
type Encoder struct {
	Runner   toolexec.Runner
	Observer ProgressObserver
	Logger   *slog.Logger
}

// Transcode re-encodes src into dst. duration drives the percentage; pass 0
// when unknown.
func (e Encoder) Transcode(ctx context.Context, src, dst string, opts TranscodeOptions, duration time.Duration) error {
	return e.run(ctx, src, StageTranscode, TranscodeArgs(src, dst, opts), duration)
}

// Remux copies every stream of src into dst.
func (e Encoder) Remux(ctx context.Context, src, dst string, duration time.Duration) error {
	return e.run(ctx, src, StageRemux, RemuxArgs(src, dst), duration)
}

func (e Encoder) run(ctx context.Context, src, stage string, args []string, duration time.Duration) error {
	logger := e.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	logging.WithContext(ctx, logger).Debug("launching ffmpeg",
		logging.String("command", CommandString(e.Runner.Binary, args)),
		logging.String(logging.FieldProgressStage, stage),
	)

	parser := newProgressParser(src, stage, duration)
	dispatch := newDispatcher(e.Observer, logger)
	defer dispatch.Close()

	return e.Runner.Run(ctx, args, func(line string) {
		if update, ok := parser.Feed(line); ok {
			dispatch.Send(update)
		}
	})
}
