package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTest(t *testing.T) *BenchStore {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "bench.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndLoadRun(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()

	run := Run{ID: "run-1", Seed: 42, Maps: 3, Width: 16, Height: 16, StartedAt: time.Now().UTC().Truncate(time.Second)}
	results := []VariantResult{
		{Variant: "first", Turns: 30, Actions: 120, Moves: 80, MeanMs: 0.4},
		{Variant: "aggro", Turns: 30, Actions: 150, Moves: 100, Unresolved: 2, MeanMs: 0.5},
	}
	if err := s.SaveRun(ctx, run, results); err != nil {
		t.Fatalf("save: %v", err)
	}

	runs, err := s.RecentRuns(ctx, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != "run-1" || runs[0].Seed != 42 {
		t.Fatalf("got %+v", runs)
	}

	got, err := s.Results(ctx, "run-1")
	if err != nil {
		t.Fatalf("results: %v", err)
	}
	if len(got) != 2 || got[0].Variant != "aggro" || got[1].Variant != "first" {
		t.Fatalf("got %+v", got)
	}
	if got[0].RunID != "run-1" || got[0].Unresolved != 2 {
		t.Errorf("aggro row: %+v", got[0])
	}
}

func TestSaveRunDuplicateRollsBack(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()
	run := Run{ID: "run-1", StartedAt: time.Now().UTC()}

	if err := s.SaveRun(ctx, run, []VariantResult{{Variant: "aggro"}}); err != nil {
		t.Fatalf("save: %v", err)
	}
	err := s.SaveRun(ctx, Run{ID: "run-2", StartedAt: time.Now().UTC()},
		[]VariantResult{{Variant: "aggro"}, {Variant: "aggro"}})
	if err == nil {
		t.Fatal("expected duplicate variant error")
	}
	runs, _ := s.RecentRuns(ctx, 10)
	if len(runs) != 1 {
		t.Errorf("failed run should be rolled back, got %d runs", len(runs))
	}
}
