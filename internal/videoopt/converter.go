// Package videoopt re-encodes gameplay clips to HEVC in Matroska, falling
// back to a stream-copy remux (and finally a raw copy) whenever the
// re-encode would make the file larger.
package videoopt

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"esdemedia/internal/config"
	"esdemedia/internal/convert"
	"esdemedia/internal/ffmpeg"
	"esdemedia/internal/fileutil"
	"esdemedia/internal/logging"
	"esdemedia/internal/media/ffprobe"
	"esdemedia/internal/pathpolicy"
	"esdemedia/internal/services"
	"esdemedia/internal/toolexec"
)

const component = "videoopt"

// Prober inspects a source clip.
type Prober func(ctx context.Context, path string) (ffprobe.Result, error)

// Converter implements convert.Converter for video jobs.
type Converter struct {
	Settings config.Video
	Encoder  ffmpeg.Encoder
	Probe    Prober
	Logger   *slog.Logger
}

// New builds a converter from configuration. observer may be nil.
func New(cfg *config.Config, logger *slog.Logger, observer ffmpeg.ProgressObserver) *Converter {
	logger = logging.NewComponentLogger(logger, component)
	ffprobeBinary := cfg.FFprobeBinary()
	return &Converter{
		Settings: cfg.Video,
		Encoder: ffmpeg.Encoder{
			Runner: toolexec.Runner{
				Component: component,
				Binary:    cfg.FFmpegBinary(),
				Timeout:   cfg.VideoTimeout(),
			},
			Observer: observer,
			Logger:   logger,
		},
		Probe: func(ctx context.Context, path string) (ffprobe.Result, error) {
			result, err := ffprobe.Inspect(ctx, ffprobeBinary, path)
			return result, toolexec.Classify(ctx, ctx, component, ffprobeBinary, err)
		},
		Logger: logger,
	}
}

// Convert transcodes job.Source into job.Dest.
func (c *Converter) Convert(ctx context.Context, job convert.Job) convert.Outcome {
	if d := pathpolicy.Evaluate(job.Source, job.Dest); d.Skip {
		return convert.Skipped(d)
	}
	logger := logging.WithContext(ctx, c.logger())
	inSize, _ := fileutil.FileSize(job.Source)

	probe, err := c.Probe(ctx, job.Source)
	if err != nil {
		return convert.Failed(fmt.Errorf("probe: %w", err), inSize)
	}
	if !probe.HasVideo() {
		return convert.Failed(services.Wrap(services.ErrValidation, component, "probe", "no video stream", nil), inSize)
	}
	duration := time.Duration(probe.DurationSeconds() * float64(time.Second))

	ws, err := convert.NewWorkspace(filepath.Dir(job.Dest), "video", logger)
	if err != nil {
		return convert.Failed(err, inSize)
	}
	defer ws.Close()

	ext := filepath.Ext(job.Dest)
	transcoded := ws.Path("transcode" + ext)
	opts := c.transcodeOptions(probe.PrimaryAudioCodec())
	if err := c.Encoder.Transcode(ctx, job.Source, transcoded, opts, duration); err != nil {
		return convert.Failed(err, inSize)
	}
	outSize, ok := fileutil.FileSize(transcoded)
	if !ok || outSize == 0 {
		return convert.Failed(services.Wrap(services.ErrExternalTool, component, "transcode", "empty output", nil), inSize)
	}

	if outSize > inSize {
		logger.Info("transcode larger than source; remuxing instead",
			logging.Args(logging.SizeAttrs(inSize, outSize)...)...)
		_ = fileutil.RemoveIfExists(transcoded)
		return c.remux(ctx, logger, ws, job, inSize, duration)
	}

	if err := convert.Install(transcoded, job.Dest); err != nil {
		return convert.Failed(err, inSize)
	}
	logger.Info("video transcoded", logging.Args(append(logging.SizeAttrs(inSize, outSize),
		logging.String(logging.FieldAction, string(convert.ActionTranscoded)))...)...)
	return convert.Done(convert.ActionTranscoded, "ffmpeg", inSize, outSize)
}

func (c *Converter) remux(ctx context.Context, logger *slog.Logger, ws *convert.Workspace, job convert.Job, inSize int64, duration time.Duration) convert.Outcome {
	ext := filepath.Ext(job.Dest)
	attempts := []convert.Attempt{
		convert.AttemptFunc{
			Label: "remux",
			Fn: func(ctx context.Context, src, dst string) error {
				return c.Encoder.Remux(ctx, src, dst, duration)
			},
		},
		convert.AttemptFunc{
			Label: "copy",
			Fn: func(_ context.Context, src, dst string) error {
				return fileutil.CopyFile(src, dst)
			},
		},
	}
	res, err := convert.RunChain(ctx, logger, attempts, job.Source, func(a convert.Attempt) string {
		return ws.Path(a.Name() + ext)
	})
	if err != nil {
		return convert.Failed(err, inSize)
	}
	size, _ := fileutil.FileSize(res.Output)
	if err := convert.Install(res.Output, job.Dest); err != nil {
		return convert.Failed(err, inSize)
	}
	logger.Info("video remuxed", logging.Args(append(logging.SizeAttrs(inSize, size),
		logging.String(logging.FieldAction, string(convert.ActionRemuxed)),
		logging.String(logging.FieldTool, res.Tool))...)...)
	return convert.Done(convert.ActionRemuxed, res.Tool, inSize, size)
}

func (c *Converter) transcodeOptions(sourceAudio string) ffmpeg.TranscodeOptions {
	s := c.Settings
	return ffmpeg.TranscodeOptions{
		Codec:            s.Codec,
		Preset:           s.Preset,
		CRF:              s.CRF,
		X265Params:       s.X265Params,
		PixelFormat:      s.PixelFormat,
		CopyAudioCodec:   s.CopyAudioCodec,
		AudioCodec:       s.AudioCodec,
		AudioBitrate:     s.AudioBitrate,
		SourceAudioCodec: sourceAudio,
	}
}

func (c *Converter) logger() *slog.Logger {
	if c.Logger == nil {
		return logging.NewNop()
	}
	return c.Logger
}

var _ convert.Converter = (*Converter)(nil)
