package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"transmute/internal/batch"
	"transmute/internal/convert"
	"transmute/internal/faults"
)

func newConvertCommand(ctx *commandContext) *cobra.Command {
	var targetFlag string
	var outputDirFlag string
	var noProgress bool

	cmd := &cobra.Command{
		Use:   "convert FILE [FILE...]",
		Short: "Convert one or more files to another format",
		Long: "Convert files to the format given with --to. With several files the\n" +
			"conversion runs as a batch: files are converted one at a time, failures\n" +
			"are collected, and large batches write into a dedicated output\n" +
			"directory. Without --to the source group's preferred target is used.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := ctx.ensureEngine()
			if err != nil {
				return err
			}

			lock, err := batch.AcquireLock(eng.cfg.LockPath())
			if err != nil {
				return err
			}
			defer func() { _ = lock.Unlock() }()

			if len(args) == 1 {
				return runSingleConversion(cmd, eng, args[0], targetFlag, outputDirFlag)
			}
			return runBatchConversion(cmd, eng, args, targetFlag, outputDirFlag, noProgress)
		},
	}

	cmd.Flags().StringVarP(&targetFlag, "to", "t", "", "Target format (e.g. PNG, MP3, PDF)")
	cmd.Flags().StringVarP(&outputDirFlag, "output-dir", "o", "", "Directory for the converted files")
	cmd.Flags().BoolVar(&noProgress, "no-progress", false, "Disable the progress bar")
	return cmd
}

func runSingleConversion(cmd *cobra.Command, eng *engine, file, target, outputDir string) error {
	if target == "" {
		source := eng.graph.FormatOf(file)
		target = eng.runner.PreferredTarget(cmd.Context(), source)
		if target == "" {
			return faults.Wrap(faults.ErrValidation, "cli", "convert",
				fmt.Sprintf("cannot pick a default target for %s; use --to", filepath.Base(file)), nil)
		}
	}

	var cancelled atomic.Bool
	restore := trapInterrupt(func() { cancelled.Store(true) })
	defer restore()

	out, err := eng.runner.Convert(cmd.Context(), convert.Request{
		InputPath:    file,
		TargetFormat: target,
		OutputDir:    outputDir,
	}, cancelled.Load)
	if err != nil {
		if faults.IsCancelled(err) {
			fmt.Fprintln(cmd.OutOrStdout(), "Conversion cancelled")
			return nil
		}
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Converted %s to %s (%s)\n",
		filepath.Base(file), out.TargetPath, out.Duration.Round(10*time.Millisecond))
	return nil
}

func runBatchConversion(cmd *cobra.Command, eng *engine, files []string, target, outputDir string, noProgress bool) error {
	var bar *progressbar.ProgressBar
	if !noProgress && isTerminal(os.Stderr) {
		bar = progressbar.NewOptions(len(files),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("converting"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	orch := batch.NewOrchestrator(eng.runner, eng.log,
		batch.WithNotifier(eng.notifier),
		batch.WithOutputThreshold(eng.cfg.Conversion.BatchOutputThreshold),
		batch.WithPollInterval(time.Duration(eng.cfg.Conversion.PollIntervalMS)*time.Millisecond),
		batch.WithCancelGrace(eng.cfg.Conversion.CancelGraceTicks),
		batch.WithProgress(func(p batch.Progress) {
			if bar != nil {
				bar.Describe(filepath.Base(p.File))
				_ = bar.Set(p.Index)
			}
		}),
	)

	restore := trapInterrupt(orch.Cancel)
	defer restore()

	summary, err := orch.Run(cmd.Context(), batch.Request{
		Files:        files,
		TargetFormat: target,
		OutputDir:    outputDir,
	})
	if bar != nil {
		_ = bar.Finish()
	}
	if summary != nil {
		printBatchSummary(cmd, summary, len(files))
	}
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d files failed", summary.Failed, len(files))
	}
	return nil
}

func printBatchSummary(cmd *cobra.Command, summary *batch.Summary, total int) {
	out := cmd.OutOrStdout()

	switch summary.State {
	case batch.StateCancelled:
		fmt.Fprintf(out, "Batch cancelled: %d of %d files converted\n", summary.Succeeded, total)
	case batch.StateAborted:
		fmt.Fprintln(out, "Batch aborted: nothing was converted")
	default:
		fmt.Fprintf(out, "Batch finished: %d converted, %d failed\n", summary.Succeeded, summary.Failed)
	}
	if summary.OutputDir != "" {
		fmt.Fprintf(out, "Output directory: %s\n", summary.OutputDir)
	}

	if len(summary.Errors) > 0 {
		rows := make([][]string, 0, len(summary.Errors))
		for _, e := range summary.Errors {
			rows = append(rows, []string{e.File, e.Message})
		}
		writeTable(out, []string{"File", "Error"}, rows)
	}
}

// trapInterrupt invokes fn on the first SIGINT or SIGTERM. The caller
// must run the returned restore function when done.
func trapInterrupt(fn func()) func() {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	done := make(chan struct{})
	go func() {
		select {
		case <-sig:
			fn()
		case <-done:
		}
	}()
	return func() {
		signal.Stop(sig)
		close(done)
	}
}
