package batch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"transmute/internal/convert"
	"transmute/internal/faults"
	"transmute/internal/format"
	"transmute/internal/logging"
	"transmute/internal/notifications"
)

const (
	defaultPollInterval = 50 * time.Millisecond
	defaultCancelGrace  = 50
	defaultDirThreshold = 5
)

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithNotifier sends a desktop notification when the batch finishes or
// is cancelled.
func WithNotifier(svc notifications.Service) Option {
	return func(o *Orchestrator) {
		o.notifier = svc
	}
}

// WithProgress installs a callback invoked before each file starts.
func WithProgress(fn func(Progress)) Option {
	return func(o *Orchestrator) {
		o.progress = fn
	}
}

// WithOutputThreshold sets how many files a batch must exceed before
// results go into a dedicated output directory.
func WithOutputThreshold(n int) Option {
	return func(o *Orchestrator) {
		o.threshold = n
	}
}

// WithPollInterval sets how often a cancelled batch polls for the
// in-flight worker to stop.
func WithPollInterval(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.poll = d
		}
	}
}

// WithCancelGrace sets how many poll ticks to wait for a stuck worker
// after cancellation before giving up on it.
func WithCancelGrace(ticks int) Option {
	return func(o *Orchestrator) {
		if ticks > 0 {
			o.grace = ticks
		}
	}
}

// Orchestrator runs batches. A single Orchestrator runs one batch at a
// time; files are converted strictly in order by one worker.
type Orchestrator struct {
	runner    *convert.Runner
	notifier  notifications.Service
	progress  func(Progress)
	threshold int
	poll      time.Duration
	grace     int
	log       *slog.Logger

	mu        sync.Mutex
	state     State
	cancelled atomic.Bool
}

// NewOrchestrator assembles a batch orchestrator around a conversion
// runner. A nil logger disables logging.
func NewOrchestrator(runner *convert.Runner, logger *slog.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		runner:    runner,
		threshold: defaultDirThreshold,
		poll:      defaultPollInterval,
		grace:     defaultCancelGrace,
		log:       logging.NewComponentLogger(logger, "batch"),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// State returns the current lifecycle phase.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Cancel requests cancellation. The in-flight conversion is killed at
// its next poll tick; completed results are kept and no further files
// start.
func (o *Orchestrator) Cancel() {
	o.cancelled.Store(true)
}

func (o *Orchestrator) cancelRequested() bool {
	return o.cancelled.Load()
}

func (o *Orchestrator) setState(s State) {
	o.mu.Lock()
	o.state = s
	o.mu.Unlock()
}

// Run converts every file of the request in order and returns the
// aggregated summary. A non-nil error is returned only when the batch
// aborts before converting anything; per-file failures are collected
// in the summary instead.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*Summary, error) {
	o.mu.Lock()
	if o.state != StateIdle && !o.state.Terminal() {
		o.mu.Unlock()
		return nil, faults.Wrap(faults.ErrValidation, "batch", "run",
			"a batch is already running", nil)
	}
	o.state = StateValidating
	o.mu.Unlock()
	o.cancelled.Store(false)

	summary := &Summary{BatchID: uuid.NewString()}
	o.log.Info("batch starting",
		logging.String(logging.FieldBatchID, summary.BatchID),
		logging.Int("files", len(req.Files)))

	validation := Validate(o.graph(), req.Files)
	summary.Errors = append(summary.Errors, validation.Errors...)
	if len(validation.Valid) == 0 {
		return o.finish(ctx, summary, StateAborted, 0),
			faults.Wrap(faults.ErrValidation, "batch", "validate",
				"none of the requested files can be converted", nil)
	}

	o.setState(StateSelectingFormat)
	target, err := o.selectTarget(ctx, validation, req.TargetFormat)
	if err != nil {
		return o.finish(ctx, summary, StateAborted, 0), err
	}
	summary.TargetFormat = target

	outDir := req.OutputDir
	allocated := false
	if outDir == "" {
		dir, allocErr := allocateOutputDir(filepath.Dir(validation.Valid[0]), target,
			len(validation.Valid), o.threshold)
		if allocErr != nil {
			return o.finish(ctx, summary, StateAborted, 0),
				faults.Wrap(faults.ErrValidation, "batch", "output-directory", allocErr.Error(), nil)
		}
		outDir = dir
		allocated = dir != ""
	}
	summary.OutputDir = outDir

	o.setState(StateConverting)
	total := len(validation.Valid)
	wasCancelled := false

	for i, file := range validation.Valid {
		if o.cancelRequested() || ctx.Err() != nil {
			wasCancelled = true
			break
		}
		o.report(Progress{Index: i, Total: total, File: file,
			Succeeded: summary.Succeeded, State: StateConverting})

		out, done, convErr := o.convertOne(ctx, file, target, outDir, summary.BatchID)
		if !done {
			// The worker did not stop within the cancellation grace
			// period; abandon it and proceed to cleanup.
			o.log.Warn("gave up waiting for the cancelled conversion to stop",
				logging.String(logging.FieldFile, file))
			summary.Results = append(summary.Results, FileResult{
				File: file,
				Err: faults.Wrap(faults.ErrCancelled, "batch", "cancel",
					fmt.Sprintf("conversion of %s did not stop in time", filepath.Base(file)), nil),
			})
			wasCancelled = true
			break
		}

		res := FileResult{File: file, Err: convErr}
		switch {
		case convErr == nil:
			summary.Succeeded++
			res.TargetPath = out.TargetPath
			res.Duration = out.Duration
		case faults.IsCancelled(convErr):
			wasCancelled = true
		default:
			summary.Failed++
			summary.Errors = append(summary.Errors, FileError{
				File:    filepath.Base(file),
				Message: faults.UserFacing(convErr),
			})
		}
		summary.Results = append(summary.Results, res)
		if wasCancelled {
			break
		}
	}

	if allocated && summary.Succeeded == 0 {
		removeIfEmpty(outDir)
		summary.OutputDir = ""
	}

	final := StateCompleted
	if wasCancelled || o.cancelRequested() || ctx.Err() != nil {
		final = StateCancelled
	}
	return o.finish(ctx, summary, final, total), nil
}

func (o *Orchestrator) graph() *format.Graph {
	return o.runner.Planner().Graph()
}

// selectTarget resolves the batch target format: the requested one
// when every file can reach it, otherwise the source's preferred
// target (usage history, then the group default) or the first common
// target.
func (o *Orchestrator) selectTarget(ctx context.Context, v Validation, requested string) (string, error) {
	g := o.graph()
	common := g.CommonTargets(v.SourceFormats)

	if requested != "" {
		want := strings.ToUpper(requested)
		canonical := g.Canonical(want)
		for _, t := range common {
			if t == want || t == canonical {
				return want, nil
			}
		}
		return "", faults.Wrap(faults.ErrUnsupported, "batch", "select-format",
			fmt.Sprintf("not every selected file can be converted to %s", want), nil)
	}

	if len(v.SourceFormats) == 1 {
		if t := o.runner.PreferredTarget(ctx, v.SourceFormats[0]); t != "" {
			return t, nil
		}
	}
	if len(common) > 0 {
		return common[0], nil
	}
	return "", faults.Wrap(faults.ErrUnsupported, "batch", "select-format",
		"the selected files share no common target format", nil)
}

// convertOne runs a single file on a worker goroutine and waits for
// its result. After cancellation the wait is bounded by the grace
// period; done is false when the worker was abandoned.
func (o *Orchestrator) convertOne(ctx context.Context, file, target, outDir, batchID string) (out *convert.Outcome, done bool, err error) {
	type outcome struct {
		out *convert.Outcome
		err error
	}
	ch := make(chan outcome, 1)
	go func() {
		out, err := o.runner.Convert(ctx, convert.Request{
			InputPath:    file,
			TargetFormat: target,
			OutputDir:    outDir,
			BatchID:      batchID,
		}, o.cancelRequested)
		ch <- outcome{out: out, err: err}
	}()

	ticker := time.NewTicker(o.poll)
	defer ticker.Stop()
	waited := 0
	for {
		select {
		case res := <-ch:
			return res.out, true, res.err
		case <-ticker.C:
			if !o.cancelRequested() && ctx.Err() == nil {
				continue
			}
			waited++
			if waited >= o.grace {
				return nil, false, nil
			}
		}
	}
}

func (o *Orchestrator) report(p Progress) {
	if o.progress != nil {
		o.progress(p)
	}
}

func (o *Orchestrator) finish(ctx context.Context, summary *Summary, state State, total int) *Summary {
	o.setState(state)
	summary.State = state

	o.log.Info("batch finished",
		logging.String(logging.FieldBatchID, summary.BatchID),
		logging.String("state", state.String()),
		logging.Int("succeeded", summary.Succeeded),
		logging.Int("failed", summary.Failed))

	if o.notifier != nil {
		var err error
		switch state {
		case StateCompleted:
			err = o.notifier.NotifyBatchCompleted(ctx, summary.Succeeded, summary.Failed)
		case StateCancelled:
			err = o.notifier.NotifyBatchCancelled(ctx, summary.Succeeded, total)
		}
		if err != nil {
			o.log.Warn("notification failed", logging.Error(err))
		}
	}
	return summary
}
