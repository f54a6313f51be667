package toolexec

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"esdemedia/internal/services"
)

type stubExecutor struct {
	lines []string
	err   error
	block bool
	args  [][]string
}

func (s *stubExecutor) Run(ctx context.Context, binary string, args []string, onStdout func(string)) error {
	s.args = append(s.args, append([]string{binary}, args...))
	for _, line := range s.lines {
		if onStdout != nil {
			onStdout(line)
		}
	}
	if s.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return s.err
}

func TestRunnerForwardsStdout(t *testing.T) {
	stub := &stubExecutor{lines: []string{"a", "b"}}
	var got []string
	r := Runner{Component: "test", Binary: "tool", Exec: stub}
	if err := r.Run(context.Background(), []string{"-x"}, func(line string) { got = append(got, line) }); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if strings.Join(got, ",") != "a,b" {
		t.Fatalf("unexpected lines %v", got)
	}
	if strings.Join(stub.args[0], " ") != "tool -x" {
		t.Fatalf("unexpected invocation %v", stub.args[0])
	}
}

func TestRunnerClassifiesFailures(t *testing.T) {
	notFound := Runner{Component: "image", Binary: "cwebp", Exec: &stubExecutor{err: fmt.Errorf("start command: %w", exec.ErrNotFound)}}
	if err := notFound.Run(context.Background(), nil, nil); !errors.Is(err, services.ErrToolUnavailable) {
		t.Fatalf("expected tool unavailable, got %v", err)
	}

	failing := Runner{Component: "pdf", Binary: "ocrmypdf", Exec: &stubExecutor{err: errors.New("exit status 2")}}
	if err := failing.Run(context.Background(), nil, nil); !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}

	slow := Runner{Component: "video", Binary: "ffmpeg", Timeout: 10 * time.Millisecond, Exec: &stubExecutor{block: true}}
	if err := slow.Run(context.Background(), nil, nil); !errors.Is(err, services.ErrTimeout) {
		t.Fatalf("expected timeout, got %v", err)
	}
}

func TestRunnerCancellationIsNotRecoverable(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := Runner{Component: "video", Binary: "ffmpeg", Exec: &stubExecutor{block: true}}
	err := r.Run(ctx, nil, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
	if services.Fallthrough(err) {
		t.Fatal("cancellation must stop fallback chains")
	}
}

func TestCommandExecutorRealProcess(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "tool")
	body := "#!/bin/sh\necho out-1\necho err-1 >&2\necho out-2\nexit 3\n"
	if err := os.WriteFile(script, []byte(body), 0o755); err != nil {
		t.Fatal(err)
	}
	var lines []string
	err := CommandExecutor{}.Run(context.Background(), script, nil, func(line string) { lines = append(lines, line) })
	if err == nil {
		t.Fatal("expected non-zero exit to fail")
	}
	if !strings.Contains(err.Error(), "err-1") {
		t.Fatalf("expected stderr tail in error, got %v", err)
	}
	if strings.Join(lines, ",") != "out-1,out-2" {
		t.Fatalf("unexpected stdout lines %v", lines)
	}
}

func TestCommandExecutorMissingBinary(t *testing.T) {
	err := CommandExecutor{}.Run(context.Background(), "definitely-not-a-real-tool", nil, nil)
	if !errors.Is(err, exec.ErrNotFound) {
		t.Fatalf("expected exec.ErrNotFound, got %v", err)
	}
}

func TestRunnerTimeoutKillsBackgroundedChildren(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "tool")
	body := "#!/bin/sh\nsleep 6 &\nsleep 6\n"
	if err := os.WriteFile(script, []byte(body), 0o755); err != nil {
		t.Fatal(err)
	}
	runner := Runner{Component: "test", Binary: script, Timeout: 300 * time.Millisecond}

	started := time.Now()
	err := runner.Run(context.Background(), nil, nil)
	elapsed := time.Since(started)

	if !errors.Is(err, services.ErrTimeout) {
		t.Fatalf("expected timeout marker, got %v", err)
	}
	if elapsed > 3*time.Second {
		t.Fatalf("timeout not enforced: returned after %v", elapsed)
	}
}
