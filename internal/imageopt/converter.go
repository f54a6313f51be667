package imageopt

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"esdemedia/internal/config"
	"esdemedia/internal/convert"
	"esdemedia/internal/fileutil"
	"esdemedia/internal/logging"
	"esdemedia/internal/pathpolicy"
)

const component = "imageopt"

// WebPExtension is used when image.webp_extension is enabled.
const WebPExtension = ".webp"

var supported = map[string]struct{}{".png": {}, ".jpg": {}, ".jpeg": {}}

// Supported reports whether path has an extension the encoders accept.
func Supported(path string) bool {
	_, ok := supported[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Converter implements convert.Converter for artwork.
type Converter struct {
	Settings config.Image
	Attempts []convert.Attempt
	Logger   *slog.Logger
}

// New builds the default encoder chain.
func New(cfg *config.Config, logger *slog.Logger) *Converter {
	quality := cfg.Image.Quality
	timeout := cfg.ImageTimeout()
	return &Converter{
		Settings: cfg.Image,
		Attempts: []convert.Attempt{
			MagickAttempt(quality, timeout, nil),
			CWebPAttempt(quality, timeout, nil),
			LibraryAttempt(quality),
		},
		Logger: logging.NewComponentLogger(logger, component),
	}
}

// Convert optimizes one image.
func (c *Converter) Convert(ctx context.Context, job convert.Job) convert.Outcome {
	if d := pathpolicy.Evaluate(job.Source, job.Dest); d.Skip {
		return convert.Skipped(d)
	}
	logger := logging.WithContext(ctx, c.logger())
	if !Supported(job.Source) {
		return convert.CopyOriginal(ctx, logger, job, "copy")
	}
	webpDest := ""
	if c.Settings.WebPExtension {
		webpDest = fileutil.ReplaceExtension(job.Dest, WebPExtension)
		if d := pathpolicy.Evaluate(job.Source, webpDest); d.Skip {
			out := convert.Skipped(d)
			out.Dest = webpDest
			return out
		}
	}

	inSize, _ := fileutil.FileSize(job.Source)
	ws, err := convert.NewWorkspace(filepath.Dir(job.Dest), "image", logger)
	if err != nil {
		return convert.Failed(err, inSize)
	}
	defer ws.Close()

	// Some tools choke on shell-hostile names; encode from a plain one.
	input := ws.Path("input" + strings.ToLower(filepath.Ext(job.Source)))
	if err := fileutil.CopyFile(job.Source, input); err != nil {
		return convert.Failed(err, inSize)
	}

	res, err := convert.RunChain(ctx, logger, c.Attempts, input, func(a convert.Attempt) string {
		return ws.Path(a.Name() + WebPExtension)
	})
	if err != nil {
		if ctx.Err() != nil {
			return convert.Failed(err, inSize)
		}
		logging.WarnWithContext(logger, "no image encoder succeeded; copying original", "image_encode_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "install ImageMagick or cwebp"),
			logging.String(logging.FieldImpact, "image copied without optimization"),
		)
		return convert.CopyOriginal(ctx, logger, job, "copy")
	}

	out := c.install(res, job, webpDest)
	if out.Succeeded {
		logger.Info("image optimized", logging.Args(append(logging.SizeAttrs(out.BytesIn, out.BytesOut),
			logging.String(logging.FieldAction, string(out.Action)),
			logging.String(logging.FieldTool, out.Tool))...)...)
	}
	return out
}

func (c *Converter) install(res convert.ChainResult, job convert.Job, webpDest string) convert.Outcome {
	inSize, _ := fileutil.FileSize(job.Source)
	if webpDest == "" {
		used, size, err := convert.KeepSmaller(res.Output, job.Source, job.Dest)
		if err != nil {
			return convert.Failed(err, inSize)
		}
		if !used {
			return convert.Done(convert.ActionCopied, res.Tool, inSize, size)
		}
		return convert.Done(convert.ActionOptimized, res.Tool, inSize, size)
	}

	size, _ := fileutil.FileSize(res.Output)
	if size > inSize {
		if err := fileutil.CopyFile(job.Source, job.Dest); err != nil {
			return convert.Failed(err, inSize)
		}
		return convert.Done(convert.ActionCopied, res.Tool, inSize, inSize)
	}
	if err := convert.Install(res.Output, webpDest); err != nil {
		return convert.Failed(err, inSize)
	}
	out := convert.Done(convert.ActionOptimized, res.Tool, inSize, size)
	out.Dest = webpDest
	return out
}

func (c *Converter) logger() *slog.Logger {
	if c.Logger == nil {
		return logging.NewNop()
	}
	return c.Logger
}

var _ convert.Converter = (*Converter)(nil)
