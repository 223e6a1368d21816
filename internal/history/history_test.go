package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"yashubustudio/pyroclassifier/classifier"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_RecordAndRecent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	first := Run{
		StartedAt: base,
		Elapsed:   1500 * time.Millisecond,
		ModelPath: "/models/a.onnx",
		Directory: "/data/day1",
		Processed: 3,
		Skipped:   1,
		Counts:    map[string]int{"Veg": 2, "Dead": 1},
	}
	second := Run{
		StartedAt: base.Add(time.Hour),
		ModelPath: "/models/a.onnx",
		Directory: "/data/day2",
		Processed: 1,
		Counts:    map[string]int{"Spore": 1},
	}

	id1, err := store.Record(ctx, first)
	if err != nil {
		t.Fatalf("Record(first) error = %v", err)
	}
	id2, err := store.Record(ctx, second)
	if err != nil {
		t.Fatalf("Record(second) error = %v", err)
	}
	if id2 <= id1 {
		t.Errorf("ids not increasing: %d then %d", id1, id2)
	}

	runs, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("Recent() returned %d runs, want 2", len(runs))
	}
	if runs[0].Directory != "/data/day2" {
		t.Errorf("newest run directory = %q, want /data/day2", runs[0].Directory)
	}

	got := runs[1]
	if got.Processed != 3 || got.Skipped != 1 {
		t.Errorf("processed/skipped = %d/%d, want 3/1", got.Processed, got.Skipped)
	}
	if got.Elapsed != 1500*time.Millisecond {
		t.Errorf("Elapsed = %v, want 1.5s", got.Elapsed)
	}
	if !got.StartedAt.Equal(base) {
		t.Errorf("StartedAt = %v, want %v", got.StartedAt, base)
	}
	if got.Counts["Veg"] != 2 || got.Counts["Dead"] != 1 || len(got.Counts) != 2 {
		t.Errorf("Counts = %v", got.Counts)
	}
}

func TestStore_RecentLimit(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		run := Run{StartedAt: time.Now().Add(time.Duration(i) * time.Minute), ModelPath: "m", Directory: "d"}
		if _, err := store.Record(ctx, run); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}
	runs, err := store.Recent(ctx, 3)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(runs) != 3 {
		t.Errorf("Recent(3) returned %d runs", len(runs))
	}
}

func TestFromResult(t *testing.T) {
	res := &classifier.Result{
		Directory: "/data",
		Counts:    classifier.Counts{"Div": 4},
		Processed: 4,
		Skipped:   []classifier.FileError{{Path: "/data/x.txt"}},
		Started:   time.Unix(1700000000, 0),
		Elapsed:   2 * time.Second,
	}
	run := FromResult("/models/m.onnx", res)
	if run.ModelPath != "/models/m.onnx" || run.Directory != "/data" {
		t.Errorf("paths = %q, %q", run.ModelPath, run.Directory)
	}
	if run.Processed != 4 || run.Skipped != 1 {
		t.Errorf("processed/skipped = %d/%d, want 4/1", run.Processed, run.Skipped)
	}
	res.Counts["Div"] = 99
	if run.Counts["Div"] != 4 {
		t.Error("FromResult should copy the counts")
	}
}
