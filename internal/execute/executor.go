package execute

import (
	"bytes"
	"context"
	"log/slog"
	"os/exec"
	"time"

	"transmute/internal/logging"
)

const (
	defaultPollInterval = 50 * time.Millisecond
	// Each poll interval is divided into subticks so cancellation is
	// noticed faster than the interval itself.
	pollSubticks = 5

	cancelledMessage = "operation cancelled by user"
)

// CancelCheck reports whether the current operation should stop.
type CancelCheck func() bool

// ProcessRunner launches one subprocess and waits for it under
// cancellation polling. The default implementation shells out; tests
// substitute fakes.
type ProcessRunner interface {
	Run(ctx context.Context, spec Spec, poll time.Duration, cancelled CancelCheck) Result
}

// Spec describes one command to run.
type Spec struct {
	Argv         []string
	Shell        bool
	ShellCommand string
	Dir          string
}

func (s Spec) display() string {
	if s.Shell {
		return s.ShellCommand
	}
	out := ""
	for i, a := range s.Argv {
		if i > 0 {
			out += " "
		}
		out += a
	}
	return out
}

// Option configures an Executor.
type Option func(*Executor)

// WithPollInterval overrides the cancellation poll interval.
func WithPollInterval(d time.Duration) Option {
	return func(e *Executor) {
		if d > 0 {
			e.poll = d
		}
	}
}

// WithProcessRunner substitutes the subprocess launcher, used by tests.
func WithProcessRunner(r ProcessRunner) Option {
	return func(e *Executor) {
		if r != nil {
			e.runner = r
		}
	}
}

// Executor runs compiled commands with cancellation support.
type Executor struct {
	poll   time.Duration
	runner ProcessRunner
	log    *slog.Logger
}

// New builds an executor. A nil logger disables logging.
func New(logger *slog.Logger, opts ...Option) *Executor {
	if logger == nil {
		logger = logging.NewNop()
	}
	e := &Executor{
		poll:   defaultPollInterval,
		runner: processRunner{},
		log:    logging.NewComponentLogger(logger, "executor"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RunSingle executes one command. The cancel check is consulted before
// launch and at every poll subtick while the process runs; on cancel
// the child is killed and the result is marked cancelled.
func (e *Executor) RunSingle(ctx context.Context, spec Spec, cancelled CancelCheck) Result {
	if isStopped(ctx, cancelled) {
		return Result{Cancelled: true, ExitCode: -1, Stderr: cancelledMessage, Command: spec.display()}
	}
	e.log.Debug("running command",
		logging.String(logging.FieldCommand, spec.display()),
		logging.Bool("shell", spec.Shell))
	res := e.runner.Run(ctx, spec, e.poll, cancelled)
	if !res.Success && !res.Cancelled {
		e.log.Debug("command failed",
			logging.String(logging.FieldCommand, res.Command),
			logging.Int("exit_code", res.ExitCode))
	}
	return res
}

func isStopped(ctx context.Context, cancelled CancelCheck) bool {
	if ctx != nil {
		select {
		case <-ctx.Done():
			return true
		default:
		}
	}
	return cancelled != nil && cancelled()
}

// processRunner is the real subprocess launcher.
type processRunner struct{}

func (processRunner) Run(ctx context.Context, spec Spec, poll time.Duration, cancelled CancelCheck) Result {
	var cmd *exec.Cmd
	if spec.Shell {
		cmd = exec.Command("sh", "-c", spec.ShellCommand)
	} else {
		if len(spec.Argv) == 0 {
			return Result{ExitCode: -1, Stderr: "no command to execute"}
		}
		cmd = exec.Command(spec.Argv[0], spec.Argv[1:]...)
	}
	if spec.Dir != "" {
		cmd.Dir = spec.Dir
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	display := spec.display()
	if err := cmd.Start(); err != nil {
		return Result{ExitCode: -1, Stderr: err.Error(), Command: display}
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	if poll <= 0 {
		poll = defaultPollInterval
	}
	ticker := time.NewTicker(poll / pollSubticks)
	defer ticker.Stop()

	for {
		select {
		case err := <-done:
			exitCode := 0
			if err != nil {
				exitCode = -1
				if exitErr, ok := err.(*exec.ExitError); ok {
					exitCode = exitErr.ExitCode()
				}
			}
			return Result{
				Success:  err == nil,
				ExitCode: exitCode,
				Stdout:   stdout.String(),
				Stderr:   stderr.String(),
				Command:  display,
			}
		case <-ticker.C:
			if isStopped(ctx, cancelled) {
				_ = cmd.Process.Kill()
				<-done
				return Result{
					Cancelled: true,
					ExitCode:  -1,
					Stderr:    cancelledMessage,
					Command:   display,
				}
			}
		}
	}
}
