package pdfopt

import (
	"context"
	"errors"
	"strconv"
	"time"

	"esdemedia/internal/config"
	"esdemedia/internal/convert"
	"esdemedia/internal/deps"
	"esdemedia/internal/services"
	"esdemedia/internal/toolexec"
)

const ocrmypdfBinary = "ocrmypdf"

// OCRmyPDFArgs builds the optimizer invocation. force replaces --skip-text
// with --force-ocr for documents that already carry a text layer ocrmypdf
// refuses to touch.
func OCRmyPDFArgs(settings config.PDF, src, dst string, force bool) []string {
	args := []string{"--optimize", strconv.Itoa(settings.OptimizeLevel)}
	if force {
		args = append(args, "--force-ocr")
	} else {
		args = append(args, "--skip-text")
	}
	if settings.JBIG2Lossy {
		args = append(args, "--jbig2-lossy")
	}
	if settings.JPEGQuality > 0 {
		args = append(args, "--jpeg-quality", strconv.Itoa(settings.JPEGQuality))
	}
	return append(args, "--output-type", "pdf", "--quiet", src, dst)
}

type ocrmypdfAttempt struct {
	settings config.PDF
	timeout  time.Duration
	exec     toolexec.Executor
}

// OCRmyPDFAttempt runs ocrmypdf, retrying once with --force-ocr.
func OCRmyPDFAttempt(settings config.PDF, timeout time.Duration, exec toolexec.Executor) convert.Attempt {
	return ocrmypdfAttempt{settings: settings, timeout: timeout, exec: exec}
}

func (a ocrmypdfAttempt) Name() string { return ocrmypdfBinary }

func (a ocrmypdfAttempt) Available() bool {
	_, _, ok := deps.Resolve(ocrmypdfBinary)
	return ok
}

func (a ocrmypdfAttempt) Encode(ctx context.Context, src, dst string) error {
	_, path, ok := deps.Resolve(ocrmypdfBinary)
	if !ok {
		return services.Wrap(services.ErrToolUnavailable, component, ocrmypdfBinary, "not on PATH", nil)
	}
	runner := toolexec.Runner{Component: component, Binary: path, Timeout: a.timeout, Exec: a.exec}
	err := runner.Run(ctx, OCRmyPDFArgs(a.settings, src, dst, false), nil)
	if err == nil || !errors.Is(err, services.ErrExternalTool) {
		return err
	}
	return runner.Run(ctx, OCRmyPDFArgs(a.settings, src, dst, true), nil)
}
