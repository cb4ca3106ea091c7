package convert

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"transmute/internal/command"
	"transmute/internal/deps"
	"transmute/internal/execute"
	"transmute/internal/faults"
	"transmute/internal/fileutil"
	"transmute/internal/format"
	"transmute/internal/history"
	"transmute/internal/logging"
	"transmute/internal/notifications"
	"transmute/internal/plan"
	"transmute/internal/preflight"
)

// Request describes one conversion to perform. OutputDir may be empty
// to place the result next to the input. BatchID correlates history
// records when the request is part of a batch.
type Request struct {
	InputPath    string
	TargetFormat string
	OutputDir    string
	BatchID      string
}

// Outcome reports a finished conversion.
type Outcome struct {
	Plan       *plan.Plan
	TargetPath string
	Duration   time.Duration
}

// Option configures optional runner collaborators.
type Option func(*Runner)

// WithHistory records every conversion attempt in the given store.
func WithHistory(store *history.Store) Option {
	return func(r *Runner) {
		r.history = store
	}
}

// WithNotifier sends desktop notifications on completion and failure.
func WithNotifier(svc notifications.Service) Option {
	return func(r *Runner) {
		r.notifier = svc
	}
}

// WithToolCheck replaces the PATH lookup used to verify external
// tools. Tests use this to avoid depending on installed binaries.
func WithToolCheck(check func(tools []string) error) Option {
	return func(r *Runner) {
		r.toolCheck = check
	}
}

// Runner converts one file at a time.
type Runner struct {
	planner   *plan.Planner
	compiler  *command.Compiler
	executor  *execute.Executor
	history   *history.Store
	notifier  notifications.Service
	toolCheck func(tools []string) error
	log       *slog.Logger
}

// NewRunner assembles a conversion runner. A nil logger disables
// logging.
func NewRunner(planner *plan.Planner, compiler *command.Compiler, executor *execute.Executor, logger *slog.Logger, opts ...Option) *Runner {
	r := &Runner{
		planner:   planner,
		compiler:  compiler,
		executor:  executor,
		toolCheck: verifyTools,
		log:       logging.NewComponentLogger(logger, "convert"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Planner exposes the runner's planner for target listings.
func (r *Runner) Planner() *plan.Planner {
	return r.planner
}

// PreferredTarget picks the target to use when none was requested: the
// most-used recorded target still reachable from the source, falling
// back to the format graph's default.
func (r *Runner) PreferredTarget(ctx context.Context, source string) string {
	g := r.planner.Graph()
	if r.history != nil && source != "" {
		used, err := r.history.MostUsedTarget(ctx, strings.ToUpper(source))
		switch {
		case err != nil:
			r.log.Warn("could not read usage statistics", logging.Error(err))
		case used != "" && targetReachable(g, source, used):
			return used
		}
	}
	return g.DefaultTargetFor(source)
}

func targetReachable(g *format.Graph, source, target string) bool {
	canonical := g.Canonical(target)
	for _, t := range g.AvailableTargets(source) {
		if t == target || t == canonical {
			return true
		}
	}
	return false
}

// Convert performs the full conversion flow for one request. cancelled
// may be nil; when it returns true the running process is killed, the
// partial output is removed, and the returned error matches
// faults.ErrCancelled.
func (r *Runner) Convert(ctx context.Context, req Request, cancelled execute.CancelCheck) (*Outcome, error) {
	started := time.Now()

	outDir := req.OutputDir
	if outDir == "" {
		outDir = filepath.Dir(req.InputPath)
	}
	if failure, failed := preflight.FirstFailure(preflight.ForConversion(req.InputPath, outDir)); failed {
		return nil, faults.Wrap(faults.ErrValidation, "convert", failure.Name, failure.Detail, nil)
	}

	pl, err := r.planner.Plan(req.InputPath, req.TargetFormat, req.OutputDir)
	if err != nil {
		return nil, err
	}

	compiled, err := r.compiler.Compile(pl.Template, command.Substitution{
		InputPath:  pl.InputPath,
		OutputPath: pl.TargetPath,
	}, pl.TempFileSuffix)
	if err != nil {
		return nil, err
	}
	defer func() { compiled.Cleanup() }()

	if r.toolCheck != nil {
		if err := r.toolCheck(compiled.Tools()); err != nil {
			return nil, err
		}
	}

	// Another writer can claim the planned name while the command is
	// prepared; re-check and recompile against a free name.
	if unique := plan.EnsureUnique(r.planner.Graph(), pl.TargetPath); unique != pl.TargetPath {
		pl.TargetPath = unique
		compiled.Cleanup()
		compiled, err = r.compiler.Compile(pl.Template, command.Substitution{
			InputPath:  pl.InputPath,
			OutputPath: pl.TargetPath,
		}, pl.TempFileSuffix)
		if err != nil {
			return nil, err
		}
	}

	r.log.Info("starting conversion",
		logging.String(logging.FieldFile, pl.InputPath),
		logging.String(logging.FieldSourceFormat, pl.SourceFormat),
		logging.String(logging.FieldTargetFormat, pl.TargetFormat),
		logging.String(logging.FieldCommand, compiled.Display))

	runErr := r.execute(ctx, pl, compiled, cancelled)
	duration := time.Since(started)

	if runErr == nil && !fileutil.Exists(pl.TargetPath) {
		runErr = faults.Wrap(faults.ErrProcess, "convert", "verify",
			fmt.Sprintf("the command finished but %s was not created", filepath.Base(pl.TargetPath)), nil)
	}

	r.record(ctx, req, pl, duration, runErr)

	if runErr != nil {
		r.removePartial(pl.TargetPath)
		r.notifyFailure(ctx, pl, runErr)
		return nil, runErr
	}

	r.log.Info("conversion finished",
		logging.String(logging.FieldFile, pl.InputPath),
		logging.String("target_path", pl.TargetPath),
		logging.Duration("duration", duration))
	r.notifySuccess(ctx, pl)

	return &Outcome{Plan: pl, TargetPath: pl.TargetPath, Duration: duration}, nil
}

// verifyTools checks every external binary the compiled command needs
// is on PATH, reporting the first missing one with its install hint.
func verifyTools(tools []string) error {
	statuses := deps.CheckBinaries(deps.RequirementsForTools(tools))
	missing := deps.MissingRequired(statuses)
	if len(missing) == 0 {
		return nil
	}
	first := missing[0]
	msg := fmt.Sprintf("required tool %q is not installed", first.Command)
	if first.InstallHint != "" {
		msg += "; install it with: " + first.InstallHint
	}
	return faults.Wrap(faults.ErrMissingTool, "convert", "dependencies", msg, nil)
}

func (r *Runner) execute(ctx context.Context, pl *plan.Plan, compiled *command.Compiled, cancelled execute.CancelCheck) error {
	if compiled.Chained() {
		res := r.executor.RunChained(ctx, compiled.Steps, cancelled)
		if res.Cancelled {
			return cancelledError(pl)
		}
		if !res.Success {
			return faults.Wrap(faults.ErrChainStep, "convert", "execute", res.Message, nil)
		}
		return nil
	}

	spec := execute.Spec{Argv: compiled.Argv}
	if compiled.Shell {
		spec = execute.Spec{Shell: true, ShellCommand: compiled.ShellCommand}
	}
	res := r.executor.RunSingle(ctx, spec, cancelled)
	if res.Cancelled {
		return cancelledError(pl)
	}
	if !res.Success {
		return faults.Wrap(faults.ErrProcess, "convert", "execute",
			fmt.Sprintf("%s (command: %s)", res.ErrorOutput(), compiled.Display), nil)
	}
	return nil
}

func cancelledError(pl *plan.Plan) error {
	return faults.Wrap(faults.ErrCancelled, "convert", "execute",
		fmt.Sprintf("conversion of %s was cancelled", filepath.Base(pl.InputPath)), nil)
}

// removePartial deletes whatever the failed or cancelled command left
// behind at the target path.
func (r *Runner) removePartial(targetPath string) {
	if !fileutil.Exists(targetPath) {
		return
	}
	if err := fileutil.RemoveWithRetries(targetPath); err != nil {
		r.log.Warn("could not remove partial output",
			logging.String("target_path", targetPath),
			logging.Error(err))
	}
}

func (r *Runner) record(ctx context.Context, req Request, pl *plan.Plan, duration time.Duration, runErr error) {
	if r.history == nil {
		return
	}
	rec := history.Record{
		BatchID:      req.BatchID,
		InputPath:    pl.InputPath,
		SourceFormat: pl.SourceFormat,
		TargetFormat: pl.TargetFormat,
		TargetPath:   pl.TargetPath,
		Category:     pl.Category,
		Success:      runErr == nil,
		Cancelled:    faults.IsCancelled(runErr),
		Duration:     duration,
	}
	if runErr != nil {
		rec.ErrorMessage = faults.UserFacing(runErr)
	}
	if _, err := r.history.Add(ctx, rec); err != nil {
		r.log.Warn("could not record conversion history", logging.Error(err))
	}
}

func (r *Runner) notifySuccess(ctx context.Context, pl *plan.Plan) {
	if r.notifier == nil {
		return
	}
	if err := r.notifier.NotifyConversionCompleted(ctx, filepath.Base(pl.InputPath), pl.TargetFormat); err != nil {
		r.log.Warn("notification failed", logging.Error(err))
	}
}

func (r *Runner) notifyFailure(ctx context.Context, pl *plan.Plan, runErr error) {
	if r.notifier == nil || faults.IsCancelled(runErr) {
		return
	}
	reason := strings.TrimSpace(faults.UserFacing(runErr))
	if err := r.notifier.NotifyConversionFailed(ctx, filepath.Base(pl.InputPath), reason); err != nil {
		r.log.Warn("notification failed", logging.Error(err))
	}
}
