package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestAddAndRecent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for i, rec := range []Record{
		{InputPath: "/a.wav", SourceFormat: "WAV", TargetFormat: "MP3", Success: true, Duration: 1200 * time.Millisecond},
		{InputPath: "/b.png", SourceFormat: "PNG", TargetFormat: "JPEG", ErrorMessage: "convert exploded"},
		{InputPath: "/c.gif", SourceFormat: "GIF", TargetFormat: "MP4", Cancelled: true, BatchID: "batch-1"},
	} {
		if _, err := store.Add(ctx, rec); err != nil {
			t.Fatalf("Add %d: %v", i, err)
		}
	}

	recent, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("got %d records", len(recent))
	}
	if recent[0].InputPath != "/c.gif" || !recent[0].Cancelled || recent[0].BatchID != "batch-1" {
		t.Errorf("newest record = %+v", recent[0])
	}
	if recent[2].Duration != 1200*time.Millisecond || !recent[2].Success {
		t.Errorf("oldest record = %+v", recent[2])
	}
	if recent[1].ErrorMessage != "convert exploded" {
		t.Errorf("error message = %q", recent[1].ErrorMessage)
	}
}

func TestUsageCountsOnlySuccesses(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := store.Add(ctx, Record{InputPath: "/x.wav", SourceFormat: "WAV", TargetFormat: "MP3", Success: true}); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := store.Add(ctx, Record{InputPath: "/y.wav", SourceFormat: "WAV", TargetFormat: "MP3"}); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Add(ctx, Record{InputPath: "/z.png", SourceFormat: "PNG", TargetFormat: "WEBP", Success: true}); err != nil {
		t.Fatal(err)
	}

	usage, err := store.Usage(ctx)
	if err != nil {
		t.Fatalf("Usage: %v", err)
	}
	if len(usage) != 2 {
		t.Fatalf("got %d usage rows", len(usage))
	}
	if usage[0].SourceFormat != "WAV" || usage[0].Count != 3 {
		t.Errorf("top usage = %+v", usage[0])
	}
}

func TestMostUsedTarget(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := store.Add(ctx, Record{InputPath: "/p.jpg", SourceFormat: "JPG", TargetFormat: "WEBP", Success: true}); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := store.Add(ctx, Record{InputPath: "/q.jpg", SourceFormat: "JPG", TargetFormat: "PNG", Success: true}); err != nil {
		t.Fatal(err)
	}
	// Failures never influence the preference.
	for i := 0; i < 5; i++ {
		if _, err := store.Add(ctx, Record{InputPath: "/r.jpg", SourceFormat: "JPG", TargetFormat: "BMP"}); err != nil {
			t.Fatal(err)
		}
	}

	got, err := store.MostUsedTarget(ctx, "JPG")
	if err != nil {
		t.Fatalf("MostUsedTarget: %v", err)
	}
	if got != "WEBP" {
		t.Errorf("most used target = %q, want WEBP", got)
	}

	got, err = store.MostUsedTarget(ctx, "FLAC")
	if err != nil {
		t.Fatalf("MostUsedTarget: %v", err)
	}
	if got != "" {
		t.Errorf("unrecorded source should yield %q, got %q", "", got)
	}
}

func TestPrune(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	if _, err := store.Add(ctx, Record{InputPath: "/a.png", SourceFormat: "PNG", TargetFormat: "JPEG", Success: true}); err != nil {
		t.Fatal(err)
	}

	deleted, err := store.Prune(ctx, time.Now().Add(-time.Hour))
	if err != nil || deleted != 0 {
		t.Fatalf("prune of recent records deleted %d, err %v", deleted, err)
	}
	deleted, err = store.Prune(ctx, time.Now().Add(time.Hour))
	if err != nil || deleted != 1 {
		t.Fatalf("prune deleted %d, err %v", deleted, err)
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	s1, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	s1.Close()
	s2, err := Open(path)
	if err != nil {
		t.Fatalf("second Open: %v", err)
	}
	s2.Close()
}
