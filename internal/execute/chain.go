package execute

import (
	"context"
	"fmt"
	"strings"

	"transmute/internal/command"
	"transmute/internal/logging"
)

// RunChained executes a multi-step command. When any step needs shell
// semantics the whole chain folds back into one shell invocation so
// builtins and operators work; otherwise steps run one at a time,
// aborting at the first failure with the failing step recorded.
func (e *Executor) RunChained(ctx context.Context, steps [][]string, cancelled CancelCheck) ChainResult {
	if len(steps) == 0 {
		return ChainResult{
			Result:  Result{ExitCode: -1, Stderr: "no commands to execute"},
			Message: "no commands to execute",
		}
	}
	if isStopped(ctx, cancelled) {
		return ChainResult{Result: Result{Cancelled: true, ExitCode: -1, Stderr: cancelledMessage}}
	}

	if chainNeedsShell(steps) {
		return e.runFoldedChain(ctx, steps, cancelled)
	}
	return e.runStepwiseChain(ctx, steps, cancelled)
}

func chainNeedsShell(steps [][]string) bool {
	for _, step := range steps {
		if len(step) == 0 {
			continue
		}
		if _, ok := command.ShellBuiltins[step[0]]; ok {
			return true
		}
		if len(step) == 2 && command.IsShellCommand(step[1]) {
			return true
		}
	}
	return false
}

func (e *Executor) runFoldedChain(ctx context.Context, steps [][]string, cancelled CancelCheck) ChainResult {
	parts := make([]string, 0, len(steps))
	for _, step := range steps {
		if len(step) == 2 && command.IsShellCommand(step[1]) {
			parts = append(parts, step[1])
			continue
		}
		parts = append(parts, command.QuoteArgv(step))
	}
	joined := strings.Join(parts, command.ChainSeparator)
	e.log.Debug("folding chain into shell command", logging.String(logging.FieldCommand, joined))

	res := e.RunSingle(ctx, Spec{Shell: true, ShellCommand: joined}, cancelled)
	out := ChainResult{Result: res, StepTotal: len(steps)}
	if !res.Success && !res.Cancelled {
		out.Message = res.ErrorOutput()
	}
	return out
}

func (e *Executor) runStepwiseChain(ctx context.Context, steps [][]string, cancelled CancelCheck) ChainResult {
	total := len(steps)
	var previous *Result

	for i, step := range steps {
		if isStopped(ctx, cancelled) {
			return ChainResult{
				Result:    Result{Cancelled: true, ExitCode: -1, Stderr: cancelledMessage},
				StepIndex: i + 1,
				StepTotal: total,
			}
		}
		res := e.RunSingle(ctx, Spec{Argv: step}, cancelled)
		if res.Cancelled {
			return ChainResult{Result: res, StepIndex: i + 1, StepTotal: total}
		}
		if !res.Success {
			return ChainResult{
				Result:    res,
				StepIndex: i + 1,
				StepTotal: total,
				Message:   stepFailureMessage(step, i+1, total, res, previous),
			}
		}
		prev := res
		previous = &prev
	}
	return ChainResult{Result: Result{Success: true}, StepTotal: total}
}

// stepFailureMessage builds the user-facing error for a failed step.
// A failed test -f guard means the previous tool claimed success but
// never wrote its output, so the message reports that file and the
// previous step's output instead of the guard's own empty stderr.
func stepFailureMessage(step []string, index, total int, res Result, previous *Result) string {
	if len(step) >= 3 && step[0] == "test" && step[1] == "-f" && previous != nil {
		return fmt.Sprintf("expected file %s was not created; previous step reported: %s",
			step[2], previous.ErrorOutput())
	}
	return fmt.Sprintf("step %d/%d failed: %s (command: %s)",
		index, total, res.ErrorOutput(), strings.Join(step, " "))
}
