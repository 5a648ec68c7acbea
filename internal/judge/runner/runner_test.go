package runner

import (
	"context"
	"runtime"
	"strings"
	"testing"
	"time"
)

func requireUnixShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a unix shell")
	}
}

func TestExecCapturesStdout(t *testing.T) {
	requireUnixShell(t)
	r := NewProcessRunner(0)
	out, err := r.Exec(context.Background(), Spec{
		Path:    "/bin/sh",
		Args:    []string{"-c", "echo hello"},
		Timeout: 5 * time.Second,
	})
	if err != nil {
		t.Fatalf("Exec failed: %v", err)
	}
	if out.ExitCode != 0 {
		t.Fatalf("expected exit 0, got %d (stderr %q)", out.ExitCode, out.Stderr)
	}
	if strings.TrimSpace(out.Stdout) != "hello" {
		t.Fatalf("expected hello, got %q", out.Stdout)
	}
	if out.TimedOut {
		t.Fatalf("must not report timeout")
	}
}

func TestExecPipesStdin(t *testing.T) {
	requireUnixShell(t)
	r := NewProcessRunner(0)
	out, err := r.Exec(context.Background(), Spec{
		Path:    "/bin/sh",
		Args:    []string{"-c", "cat"},
		Stdin:   "1 2\n",
		Timeout: 5 * time.Second,
	})
	if err != nil {
		t.Fatalf("Exec failed: %v", err)
	}
	if out.Stdout != "1 2\n" {
		t.Fatalf("expected stdin echoed back, got %q", out.Stdout)
	}
}

func TestExecNonZeroExit(t *testing.T) {
	requireUnixShell(t)
	r := NewProcessRunner(0)
	out, err := r.Exec(context.Background(), Spec{
		Path:    "/bin/sh",
		Args:    []string{"-c", "echo boom >&2; exit 3"},
		Timeout: 5 * time.Second,
	})
	if err != nil {
		t.Fatalf("Exec failed: %v", err)
	}
	if out.ExitCode != 3 {
		t.Fatalf("expected exit 3, got %d", out.ExitCode)
	}
	if strings.TrimSpace(out.Stderr) != "boom" {
		t.Fatalf("expected stderr captured, got %q", out.Stderr)
	}
}

func TestExecTimeoutKillsProcess(t *testing.T) {
	requireUnixShell(t)
	r := NewProcessRunner(0)
	start := time.Now()
	out, err := r.Exec(context.Background(), Spec{
		Path:    "/bin/sh",
		Args:    []string{"-c", "sleep 30"},
		Timeout: 200 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("Exec failed: %v", err)
	}
	if !out.TimedOut {
		t.Fatalf("expected TimedOut")
	}
	if out.ExitCode == 0 {
		t.Fatalf("timed out run must not report exit 0")
	}
	if elapsed := time.Since(start); elapsed > 10*time.Second {
		t.Fatalf("kill took too long: %v", elapsed)
	}
}

func TestExecTimeoutKillsDescendants(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("process group kill is linux only")
	}
	r := NewProcessRunner(0)
	start := time.Now()
	// The shell forks a grandchild holding the output pipes; without a
	// group kill Wait would block on the pipe until the grandchild exits.
	out, err := r.Exec(context.Background(), Spec{
		Path:    "/bin/sh",
		Args:    []string{"-c", "sleep 30 & wait"},
		Timeout: 200 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("Exec failed: %v", err)
	}
	if !out.TimedOut {
		t.Fatalf("expected TimedOut")
	}
	if elapsed := time.Since(start); elapsed > 10*time.Second {
		t.Fatalf("group kill took too long: %v", elapsed)
	}
}

func TestExecSpawnFailureIsData(t *testing.T) {
	r := NewProcessRunner(0)
	out, err := r.Exec(context.Background(), Spec{
		Path:    "/definitely/not/a/compiler",
		Timeout: 5 * time.Second,
	})
	if err != nil {
		t.Fatalf("spawn failure must not surface as a Go error, got %v", err)
	}
	if out.ExitCode != -1 {
		t.Fatalf("expected synthetic exit -1, got %d", out.ExitCode)
	}
	if out.Stderr == "" {
		t.Fatalf("expected spawn error text in stderr")
	}
	if out.TimedOut {
		t.Fatalf("spawn failure must not count as timeout")
	}
}

func TestExecOutputCap(t *testing.T) {
	requireUnixShell(t)
	r := NewProcessRunner(128)
	out, err := r.Exec(context.Background(), Spec{
		Path:    "/bin/sh",
		Args:    []string{"-c", "yes x | head -c 100000"},
		Timeout: 10 * time.Second,
	})
	if err != nil {
		t.Fatalf("Exec failed: %v", err)
	}
	if len(out.Stdout) != 128 {
		t.Fatalf("expected stdout capped at 128 bytes, got %d", len(out.Stdout))
	}
	if out.ExitCode != 0 {
		t.Fatalf("capped output must not change the exit code, got %d", out.ExitCode)
	}
}

func TestLimitWriterNeverErrors(t *testing.T) {
	w := newLimitWriter(4)
	for _, chunk := range []string{"ab", "cd", "ef"} {
		n, err := w.Write([]byte(chunk))
		if err != nil || n != len(chunk) {
			t.Fatalf("limit writer must accept all bytes: n=%d err=%v", n, err)
		}
	}
	if w.String() != "abcd" {
		t.Fatalf("expected first 4 bytes kept, got %q", w.String())
	}
}
