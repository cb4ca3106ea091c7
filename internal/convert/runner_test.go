package convert

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"transmute/internal/command"
	"transmute/internal/execute"
	"transmute/internal/faults"
	"transmute/internal/format"
	"transmute/internal/history"
	"transmute/internal/plan"
	"transmute/internal/rules"
)

// fakeRunner adapts a function to execute.ProcessRunner.
type fakeRunner func(execute.Spec) execute.Result

func (f fakeRunner) Run(_ context.Context, spec execute.Spec, _ time.Duration, _ execute.CancelCheck) execute.Result {
	return f(spec)
}

func testRunner(t *testing.T, run fakeRunner, opts ...Option) *Runner {
	t.Helper()
	src, err := rules.Load("")
	if err != nil {
		t.Fatalf("load rules: %v", err)
	}
	planner := plan.NewPlanner(format.NewGraph(src, true), src, nil)
	compiler := command.NewCompiler(command.TempOptions{Directory: t.TempDir()}, nil)
	executor := execute.New(nil, execute.WithProcessRunner(run))
	opts = append([]Option{WithToolCheck(nil)}, opts...)
	return NewRunner(planner, compiler, executor, nil, opts...)
}

func writeInput(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("input data"), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	return path
}

func TestConvertSuccess(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "photo.jpg")
	want := filepath.Join(dir, "photo.png")

	var got execute.Spec
	r := testRunner(t, func(spec execute.Spec) execute.Result {
		got = spec
		if err := os.WriteFile(want, []byte("png"), 0o644); err != nil {
			t.Fatalf("write output: %v", err)
		}
		return execute.Result{Success: true}
	})

	out, err := r.Convert(context.Background(), Request{InputPath: input, TargetFormat: "PNG"}, nil)
	if err != nil {
		t.Fatalf("Convert() error: %v", err)
	}
	if out.TargetPath != want {
		t.Errorf("target path = %q, want %q", out.TargetPath, want)
	}
	if len(got.Argv) == 0 || got.Argv[0] != "convert" {
		t.Errorf("argv = %v, want imagemagick convert invocation", got.Argv)
	}
	if out.Plan.SourceFormat != "JPG" || out.Plan.TargetFormat != "PNG" {
		t.Errorf("plan formats = %s to %s", out.Plan.SourceFormat, out.Plan.TargetFormat)
	}
}

func TestConvertUnsupportedTarget(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "photo.png")

	r := testRunner(t, func(execute.Spec) execute.Result {
		t.Fatal("no process should run for an unsupported conversion")
		return execute.Result{}
	})

	_, err := r.Convert(context.Background(), Request{InputPath: input, TargetFormat: "MP3"}, nil)
	if !errors.Is(err, faults.ErrUnsupported) {
		t.Fatalf("error = %v, want ErrUnsupported", err)
	}
}

func TestConvertMissingInput(t *testing.T) {
	r := testRunner(t, func(execute.Spec) execute.Result {
		t.Fatal("no process should run when preflight fails")
		return execute.Result{}
	})

	_, err := r.Convert(context.Background(), Request{
		InputPath:    filepath.Join(t.TempDir(), "absent.jpg"),
		TargetFormat: "PNG",
	}, nil)
	if !errors.Is(err, faults.ErrValidation) {
		t.Fatalf("error = %v, want ErrValidation", err)
	}
}

func TestConvertFailureRemovesPartialOutput(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "photo.jpg")
	partial := filepath.Join(dir, "photo.png")

	r := testRunner(t, func(execute.Spec) execute.Result {
		if err := os.WriteFile(partial, []byte("trunc"), 0o644); err != nil {
			t.Fatalf("write partial: %v", err)
		}
		return execute.Result{Stderr: "convert: no decode delegate"}
	})

	_, err := r.Convert(context.Background(), Request{InputPath: input, TargetFormat: "PNG"}, nil)
	if !errors.Is(err, faults.ErrProcess) {
		t.Fatalf("error = %v, want ErrProcess", err)
	}
	if !strings.Contains(err.Error(), "no decode delegate") {
		t.Errorf("error %q should carry the command stderr", err)
	}
	if _, statErr := os.Stat(partial); !os.IsNotExist(statErr) {
		t.Error("partial output should have been removed")
	}
}

func TestConvertNoOutputProduced(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "photo.jpg")

	r := testRunner(t, func(execute.Spec) execute.Result {
		return execute.Result{Success: true}
	})

	_, err := r.Convert(context.Background(), Request{InputPath: input, TargetFormat: "PNG"}, nil)
	if !errors.Is(err, faults.ErrProcess) {
		t.Fatalf("error = %v, want ErrProcess", err)
	}
	if !strings.Contains(err.Error(), "was not created") {
		t.Errorf("error %q should report the missing output", err)
	}
}

func TestConvertPicksFreshNameWhenTargetAppears(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "photo.jpg")
	planned := filepath.Join(dir, "photo.png")
	want := filepath.Join(dir, "photo (1).png")

	var got execute.Spec
	r := testRunner(t, func(spec execute.Spec) execute.Result {
		got = spec
		output := spec.Argv[len(spec.Argv)-1]
		if err := os.WriteFile(output, []byte("png"), 0o644); err != nil {
			t.Fatalf("write output: %v", err)
		}
		return execute.Result{Success: true}
	}, WithToolCheck(func([]string) error {
		// Another writer claims the planned name while the command is
		// being prepared.
		return os.WriteFile(planned, []byte("other"), 0o644)
	}))

	out, err := r.Convert(context.Background(), Request{InputPath: input, TargetFormat: "PNG"}, nil)
	if err != nil {
		t.Fatalf("Convert() error: %v", err)
	}
	if out.TargetPath != want {
		t.Errorf("target path = %q, want %q", out.TargetPath, want)
	}
	if output := got.Argv[len(got.Argv)-1]; output != want {
		t.Errorf("command output argument = %q, want %q", output, want)
	}
	data, err := os.ReadFile(planned)
	if err != nil || string(data) != "other" {
		t.Errorf("existing file was touched: %q, %v", data, err)
	}
}

func TestConvertCancelledBeforeStart(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "photo.jpg")

	r := testRunner(t, func(execute.Spec) execute.Result {
		t.Fatal("no process should start when already cancelled")
		return execute.Result{}
	})

	_, err := r.Convert(context.Background(), Request{InputPath: input, TargetFormat: "PNG"},
		func() bool { return true })
	if !faults.IsCancelled(err) {
		t.Fatalf("error = %v, want cancellation", err)
	}
}

func TestConvertMissingToolHint(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "photo.jpg")

	r := testRunner(t, func(execute.Spec) execute.Result {
		t.Fatal("no process should run when a tool is missing")
		return execute.Result{}
	}, WithToolCheck(func(tools []string) error {
		return faults.Wrap(faults.ErrMissingTool, "convert", "dependencies",
			`required tool "convert" is not installed`, nil)
	}))

	_, err := r.Convert(context.Background(), Request{InputPath: input, TargetFormat: "PNG"}, nil)
	if !errors.Is(err, faults.ErrMissingTool) {
		t.Fatalf("error = %v, want ErrMissingTool", err)
	}
}

func TestConvertChainedStepsRunInOrder(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "report.docx")
	want := filepath.Join(dir, "report.pdf")

	var specs []execute.Spec
	r := testRunner(t, func(spec execute.Spec) execute.Result {
		specs = append(specs, spec)
		if len(spec.Argv) > 0 && spec.Argv[0] == "mv" {
			if err := os.WriteFile(want, []byte("pdf"), 0o644); err != nil {
				t.Fatalf("write output: %v", err)
			}
		}
		return execute.Result{Success: true}
	})

	out, err := r.Convert(context.Background(), Request{InputPath: input, TargetFormat: "PDF"}, nil)
	if err != nil {
		t.Fatalf("Convert() error: %v", err)
	}
	if out.TargetPath != want {
		t.Errorf("target path = %q, want %q", out.TargetPath, want)
	}
	// libreoffice export, injected existence check, then the move.
	if len(specs) != 3 {
		t.Fatalf("got %d steps, want 3", len(specs))
	}
	if specs[0].Argv[0] != "libreoffice" || specs[1].Argv[0] != "test" || specs[2].Argv[0] != "mv" {
		t.Errorf("step order = %v", specs)
	}
}

func TestPreferredTargetFollowsUsage(t *testing.T) {
	ctx := context.Background()
	store, err := history.Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("open history: %v", err)
	}
	defer store.Close()

	noRun := func(execute.Spec) execute.Result {
		t.Fatal("no process should run")
		return execute.Result{}
	}

	r := testRunner(t, noRun, WithHistory(store))
	if got := r.PreferredTarget(ctx, "JPG"); got != "PNG" {
		t.Errorf("default with no usage = %q, want PNG", got)
	}

	for i := 0; i < 2; i++ {
		if _, err := store.Add(ctx, history.Record{InputPath: "/p.jpg", SourceFormat: "JPG", TargetFormat: "WEBP", Success: true}); err != nil {
			t.Fatal(err)
		}
	}
	if got := r.PreferredTarget(ctx, "JPG"); got != "WEBP" {
		t.Errorf("usage-preferred target = %q, want WEBP", got)
	}

	// A recorded target the source can no longer reach falls back to
	// the graph default.
	for i := 0; i < 5; i++ {
		if _, err := store.Add(ctx, history.Record{InputPath: "/s.flac", SourceFormat: "FLAC", TargetFormat: "PNG", Success: true}); err != nil {
			t.Fatal(err)
		}
	}
	if got := r.PreferredTarget(ctx, "FLAC"); got != "MP3" {
		t.Errorf("unreachable usage target should fall back, got %q", got)
	}

	bare := testRunner(t, noRun)
	if got := bare.PreferredTarget(ctx, "JPG"); got != "PNG" {
		t.Errorf("without history = %q, want PNG", got)
	}
}

func TestConvertRecordsHistory(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "photo.jpg")
	want := filepath.Join(dir, "photo.png")

	store, err := history.Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("open history: %v", err)
	}
	defer store.Close()

	r := testRunner(t, func(execute.Spec) execute.Result {
		if err := os.WriteFile(want, []byte("png"), 0o644); err != nil {
			t.Fatalf("write output: %v", err)
		}
		return execute.Result{Success: true}
	}, WithHistory(store))

	if _, err := r.Convert(context.Background(), Request{
		InputPath:    input,
		TargetFormat: "PNG",
		BatchID:      "batch-1",
	}, nil); err != nil {
		t.Fatalf("Convert() error: %v", err)
	}

	records, err := store.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("read history: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	rec := records[0]
	if !rec.Success || rec.BatchID != "batch-1" || rec.TargetFormat != "PNG" {
		t.Errorf("record = %+v", rec)
	}
}
