// Package toolexec runs external encoder binaries and classifies their
// failures with the services error markers, so converters can decide whether
// to fall through to the next attempt.
package toolexec

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sys/unix"

	"esdemedia/internal/services"
)

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string, onStdout func(string)) error
}

// Runner executes one tool with an optional per-invocation deadline.
type Runner struct {
	Component string
	Binary    string
	Timeout   time.Duration
	Exec      Executor
}

// Run invokes the tool and classifies the result. Stdout lines are forwarded
// to onStdout when it is non-nil.
func (r Runner) Run(ctx context.Context, args []string, onStdout func(string)) error {
	executor := r.Exec
	if executor == nil {
		executor = CommandExecutor{}
	}
	runCtx := ctx
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}
	err := executor.Run(runCtx, r.Binary, args, onStdout)
	return Classify(ctx, runCtx, r.Component, r.Binary, err)
}

// Classify maps an execution error onto the services markers. Cancellation of
// the parent context is returned unmarked so fallback chains stop.
func Classify(parent, runCtx context.Context, component, binary string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, exec.ErrNotFound):
		return services.Wrap(services.ErrToolUnavailable, component, binary, "not installed", err)
	case parent.Err() != nil:
		return fmt.Errorf("%s: %s: %w", component, binary, parent.Err())
	case errors.Is(runCtx.Err(), context.DeadlineExceeded):
		return services.Wrap(services.ErrTimeout, component, binary, "deadline exceeded", err)
	default:
		return services.Wrap(services.ErrExternalTool, component, binary, "command failed", err)
	}
}

// CommandExecutor runs real processes. Stderr is retained (last lines only)
// and appended to the error when the process fails. Each tool runs in its own
// process group; cancellation kills the whole group so helpers spawned by the
// tool (tesseract, gs, ImageMagick delegates) cannot hold the output pipes
// open after the deadline.
type CommandExecutor struct{}

const (
	stderrTailLines = 12
	pipeWaitDelay   = 2 * time.Second
)

func (CommandExecutor) Run(ctx context.Context, binary string, args []string, onStdout func(string)) error {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return killGroup(cmd)
	}
	cmd.WaitDelay = pipeWaitDelay
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start command: %w", err)
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		tail []string
	)
	scan := func(r io.Reader, forward func(string)) {
		defer wg.Done()
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		for scanner.Scan() {
			forward(scanner.Text())
		}
		// Drain so the child never blocks on a full pipe.
		_, _ = io.Copy(io.Discard, r)
	}

	wg.Add(2)
	go scan(stdout, func(line string) {
		if onStdout != nil {
			onStdout(line)
		}
	})
	go scan(stderr, func(line string) {
		line = strings.TrimSpace(line)
		if line == "" {
			return
		}
		mu.Lock()
		tail = append(tail, line)
		if len(tail) > stderrTailLines {
			tail = tail[len(tail)-stderrTailLines:]
		}
		mu.Unlock()
	})
	wg.Wait()

	if err := cmd.Wait(); err != nil {
		if len(tail) > 0 {
			return fmt.Errorf("wait command: %w: %s", err, strings.Join(tail, " | "))
		}
		return fmt.Errorf("wait command: %w", err)
	}
	return nil
}

func killGroup(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	if err := unix.Kill(-cmd.Process.Pid, unix.SIGKILL); err != nil && !errors.Is(err, unix.ESRCH) {
		return cmd.Process.Kill()
	}
	return nil
}
