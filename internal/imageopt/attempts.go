package imageopt

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"

	"esdemedia/internal/convert"
	"esdemedia/internal/deps"
	"esdemedia/internal/services"
	"esdemedia/internal/toolexec"
)

// cliAttempt runs the first available binary of a candidate list.
type cliAttempt struct {
	name       string
	candidates []string
	args       func(src, dst string) []string
	timeout    time.Duration
	exec       toolexec.Executor
}

func (a cliAttempt) Name() string { return a.name }

func (a cliAttempt) Available() bool {
	_, _, ok := deps.Resolve(a.candidates...)
	return ok
}

func (a cliAttempt) Encode(ctx context.Context, src, dst string) error {
	_, path, ok := deps.Resolve(a.candidates...)
	if !ok {
		return services.Wrap(services.ErrToolUnavailable, component, a.name, "not on PATH", nil)
	}
	runner := toolexec.Runner{Component: component, Binary: path, Timeout: a.timeout, Exec: a.exec}
	return runner.Run(ctx, a.args(src, dst), nil)
}

// MagickAttempt encodes with ImageMagick, preferring magick over the legacy
// convert entry point.
func MagickAttempt(quality int, timeout time.Duration, exec toolexec.Executor) convert.Attempt {
	return cliAttempt{
		name:       "magick",
		candidates: []string{"magick", "convert"},
		timeout:    timeout,
		exec:       exec,
		args: func(src, dst string) []string {
			return []string{"-quality", strconv.Itoa(quality), src, "webp:" + dst}
		},
	}
}

// CWebPAttempt encodes with libwebp's cwebp tool.
func CWebPAttempt(quality int, timeout time.Duration, exec toolexec.Executor) convert.Attempt {
	return cliAttempt{
		name:       "cwebp",
		candidates: []string{"cwebp"},
		timeout:    timeout,
		exec:       exec,
		args: func(src, dst string) []string {
			return []string{"-q", strconv.Itoa(quality), src, "-o", dst}
		},
	}
}

// LibraryAttempt decodes with imaging (honouring EXIF orientation) and
// encodes with libwebp bindings. It is always available.
func LibraryAttempt(quality int) convert.Attempt {
	return convert.AttemptFunc{
		Label: "library",
		Fn: func(ctx context.Context, src, dst string) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			img, err := imaging.Open(src, imaging.AutoOrientation(true))
			if err != nil {
				return services.Wrap(services.ErrExternalTool, component, "decode", "decode image", err)
			}
			f, err := os.Create(dst)
			if err != nil {
				return services.Wrap(services.ErrExternalTool, component, "encode", "create output", err)
			}
			if err := webp.Encode(f, img, &webp.Options{Quality: float32(quality)}); err != nil {
				_ = f.Close()
				return services.Wrap(services.ErrExternalTool, component, "encode", "encode webp", err)
			}
			if err := f.Close(); err != nil {
				return services.Wrap(services.ErrExternalTool, component, "encode", "close output", err)
			}
			return nil
		},
	}
}
