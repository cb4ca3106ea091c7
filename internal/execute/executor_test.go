package execute

import (
	"context"
	"testing"
	"time"
)

func TestRunSingleCancelledBeforeStart(t *testing.T) {
	called := false
	e := New(nil, WithProcessRunner(runnerFunc(func(Spec) Result {
		called = true
		return Result{Success: true}
	})))
	res := e.RunSingle(context.Background(), Spec{Argv: []string{"true"}}, func() bool { return true })
	if !res.Cancelled {
		t.Error("expected cancelled result")
	}
	if called {
		t.Error("process must not start when already cancelled")
	}
}

func TestRunSingleContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	e := New(nil, WithProcessRunner(runnerFunc(func(Spec) Result {
		t.Error("process must not start under a cancelled context")
		return Result{}
	})))
	res := e.RunSingle(ctx, Spec{Argv: []string{"true"}}, nil)
	if !res.Cancelled {
		t.Error("expected cancelled result")
	}
}

func TestProcessRunnerCapturesOutputAndExitCode(t *testing.T) {
	e := New(nil, WithPollInterval(10*time.Millisecond))

	res := e.RunSingle(context.Background(), Spec{Argv: []string{"sh", "-c", "echo out; echo err >&2"}}, nil)
	if !res.Success {
		t.Fatalf("expected success, got %+v", res)
	}
	if res.Stdout != "out\n" || res.Stderr != "err\n" {
		t.Errorf("captured output = (%q, %q)", res.Stdout, res.Stderr)
	}

	res = e.RunSingle(context.Background(), Spec{Argv: []string{"sh", "-c", "exit 3"}}, nil)
	if res.Success || res.ExitCode != 3 {
		t.Errorf("expected exit code 3, got %+v", res)
	}
}

func TestProcessRunnerShellMode(t *testing.T) {
	e := New(nil, WithPollInterval(10*time.Millisecond))
	res := e.RunSingle(context.Background(), Spec{Shell: true, ShellCommand: "echo a && echo b"}, nil)
	if !res.Success || res.Stdout != "a\nb\n" {
		t.Errorf("shell chain result = %+v", res)
	}
}

func TestProcessRunnerKillsOnCancel(t *testing.T) {
	e := New(nil, WithPollInterval(10*time.Millisecond))
	start := time.Now()
	res := e.RunSingle(context.Background(), Spec{Argv: []string{"sleep", "10"}}, func() bool {
		return time.Since(start) > 30*time.Millisecond
	})
	if !res.Cancelled {
		t.Fatalf("expected cancellation, got %+v", res)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("cancellation took too long: %v", elapsed)
	}
}

func TestProcessRunnerMissingBinary(t *testing.T) {
	e := New(nil)
	res := e.RunSingle(context.Background(), Spec{Argv: []string{"transmute-no-such-tool-xyz"}}, nil)
	if res.Success || res.Cancelled {
		t.Errorf("expected plain failure, got %+v", res)
	}
	if res.ErrorOutput() == "" {
		t.Error("missing binary should produce an error message")
	}
}

func TestErrorOutputFallbacks(t *testing.T) {
	if got := (Result{Stderr: "bad"}).ErrorOutput(); got != "bad" {
		t.Errorf("stderr preferred, got %q", got)
	}
	if got := (Result{Stdout: "only out"}).ErrorOutput(); got != "only out" {
		t.Errorf("stdout fallback, got %q", got)
	}
	if got := (Result{}).ErrorOutput(); got == "" {
		t.Error("empty output should fall back to a generic message")
	}
}

// runnerFunc adapts a function to ProcessRunner for tests.
type runnerFunc func(Spec) Result

func (f runnerFunc) Run(_ context.Context, spec Spec, _ time.Duration, _ CancelCheck) Result {
	return f(spec)
}
