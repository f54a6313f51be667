package convert

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"esdemedia/internal/pathpolicy"
	"esdemedia/internal/testsupport"
)

func TestGuardDowngradesSuccessWithoutDestination(t *testing.T) {
	dir := t.TempDir()
	job := Job{Source: filepath.Join(dir, "a.pdf"), Dest: filepath.Join(dir, "out", "a.pdf"), Kind: KindPDF}
	conv := ConverterFunc(func(context.Context, Job) Outcome {
		return Done(ActionOptimized, "pdfcpu", 10, 5)
	})
	out := Guard(context.Background(), nil, conv, job)
	if out.Succeeded || out.Action != ActionFailed {
		t.Fatalf("expected failure, got %+v", out)
	}
	if !errors.Is(out.Err, ErrEmptyDestination) {
		t.Fatalf("expected ErrEmptyDestination, got %v", out.Err)
	}
}

func TestGuardRemovesPartialOnFailure(t *testing.T) {
	dir := t.TempDir()
	job := Job{Source: filepath.Join(dir, "a.mp4"), Dest: filepath.Join(dir, "out", "a.mkv"), Kind: KindVideo}
	conv := ConverterFunc(func(_ context.Context, j Job) Outcome {
		testsupport.WriteFile(t, j.Dest, 64)
		return Failed(errors.New("encoder crashed"), 100)
	})
	out := Guard(context.Background(), nil, conv, job)
	if out.Succeeded {
		t.Fatal("expected failure")
	}
	if _, err := os.Stat(job.Dest); !os.IsNotExist(err) {
		t.Fatalf("partial destination should be removed, got %v", err)
	}
}

func TestGuardKeepsExistingDestinationOnSkip(t *testing.T) {
	dir := t.TempDir()
	job := Job{Source: filepath.Join(dir, "a.png"), Dest: filepath.Join(dir, "out", "a.png"), Kind: KindImage}
	testsupport.WriteFile(t, job.Dest, 10)
	conv := ConverterFunc(func(context.Context, Job) Outcome {
		return Skipped(pathpolicy.Decision{Skip: true, Reason: pathpolicy.ReasonSourceMissing})
	})
	out := Guard(context.Background(), nil, conv, job)
	if out.Succeeded || out.Action != ActionSkipped {
		t.Fatalf("unexpected outcome %+v", out)
	}
	if _, err := os.Stat(job.Dest); err != nil {
		t.Fatalf("skip must not touch destination: %v", err)
	}
}

func TestGuardRecoversPanics(t *testing.T) {
	dir := t.TempDir()
	job := Job{Source: filepath.Join(dir, "a"), Dest: filepath.Join(dir, "b"), Kind: KindPlain}
	out := Guard(context.Background(), nil, ConverterFunc(func(context.Context, Job) Outcome {
		panic("bad input")
	}), job)
	if out.Succeeded || out.Err == nil {
		t.Fatalf("expected failed outcome from panic, got %+v", out)
	}
}

func TestGuardFillsBytesOut(t *testing.T) {
	dir := t.TempDir()
	job := Job{Source: filepath.Join(dir, "a"), Dest: filepath.Join(dir, "b"), Kind: KindPlain}
	testsupport.WriteFile(t, job.Source, 42)
	out := Guard(context.Background(), nil, Copier{}, job)
	if !out.Succeeded || out.Action != ActionCopied || out.BytesOut != 42 {
		t.Fatalf("unexpected outcome %+v", out)
	}
	again := Guard(context.Background(), nil, Copier{}, job)
	if !again.Succeeded || again.Action != ActionSkipped || again.Reason != pathpolicy.ReasonDestExists {
		t.Fatalf("rerun should skip, got %+v", again)
	}
}
