// Package runner spawns compiler and program processes with piped stdin,
// captured output and a hard wall-clock timeout.
package runner

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"
	"time"

	"judgecore/internal/judge/verdict"
)

const defaultMaxOutputBytes = 64 * 1024

// Spec describes one process execution.
type Spec struct {
	Path    string
	Args    []string
	Dir     string
	Stdin   string
	Env     []string
	Timeout time.Duration
}

// Runner executes a Spec and reports an Outcome.
type Runner interface {
	Exec(ctx context.Context, spec Spec) (verdict.Outcome, error)
}

// ProcessRunner runs child processes on the host.
type ProcessRunner struct {
	maxOutputBytes int64
}

// NewProcessRunner creates a runner with the given stdout/stderr byte cap.
// A non-positive cap falls back to the default.
func NewProcessRunner(maxOutputBytes int64) *ProcessRunner {
	if maxOutputBytes <= 0 {
		maxOutputBytes = defaultMaxOutputBytes
	}
	return &ProcessRunner{maxOutputBytes: maxOutputBytes}
}

// Exec spawns the process, writes stdin fully, waits for exit or deadline.
// The deadline and natural exit share one wait point: the context cancels
// the command, and Cancel kills the whole process group so grandchildren
// cannot outlive the run.
//
// Spawn failures (missing executable, permission denied) come back as an
// Outcome with a synthetic exit code and the error text in Stderr, never as
// a Go error; the common missing-toolchain case needs no error handling in
// callers.
func (r *ProcessRunner) Exec(ctx context.Context, spec Spec) (verdict.Outcome, error) {
	runCtx := ctx
	if spec.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, spec.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, spec.Path, spec.Args...)
	cmd.Dir = spec.Dir
	cmd.Stdin = strings.NewReader(spec.Stdin)
	if len(spec.Env) > 0 {
		cmd.Env = append(os.Environ(), spec.Env...)
	}

	stdout := newLimitWriter(r.maxOutputBytes)
	stderr := newLimitWriter(r.maxOutputBytes)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	cmd.SysProcAttr = sysProcAttr()
	cmd.Cancel = func() error {
		return killProcess(cmd)
	}
	// Reap lingering pipe readers shortly after the kill instead of hanging.
	cmd.WaitDelay = 2 * time.Second

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return verdict.Outcome{
			ExitCode: -1,
			Stderr:   err.Error(),
			Duration: time.Since(start),
		}, nil
	}

	waitErr := cmd.Wait()
	duration := time.Since(start)

	outcome := verdict.Outcome{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: exitCode(waitErr, cmd),
		TimedOut: errors.Is(runCtx.Err(), context.DeadlineExceeded),
		Duration: duration,
	}
	if outcome.TimedOut && outcome.ExitCode == 0 {
		outcome.ExitCode = -1
	}
	return outcome, nil
}

func exitCode(waitErr error, cmd *exec.Cmd) int {
	if cmd.ProcessState != nil {
		return cmd.ProcessState.ExitCode()
	}
	if waitErr == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

// limitWriter keeps up to max bytes and silently discards the rest, so a
// program flooding stdout cannot exhaust memory.
type limitWriter struct {
	buf []byte
	max int64
}

func newLimitWriter(max int64) *limitWriter {
	return &limitWriter{max: max}
}

func (w *limitWriter) Write(p []byte) (int, error) {
	remaining := w.max - int64(len(w.buf))
	if remaining > 0 {
		if int64(len(p)) > remaining {
			w.buf = append(w.buf, p[:remaining]...)
		} else {
			w.buf = append(w.buf, p...)
		}
	}
	return len(p), nil
}

func (w *limitWriter) String() string {
	return string(w.buf)
}
