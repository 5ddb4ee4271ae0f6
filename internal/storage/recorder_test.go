package storage

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestRecorder(t *testing.T) *Recorder {
	t.Helper()
	rec, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = rec.Close() })
	return rec
}

func TestSaveAndGetRun(t *testing.T) {
	ctx := context.Background()
	rec := openTestRecorder(t)

	run := RunRecord{
		ID:        "run-1",
		Symbol:    "NVDA",
		TradeDate: "2024-05-10",
		Market:    "US",
		Status:    StatusRunning,
	}
	if err := rec.SaveRun(ctx, run); err != nil {
		t.Fatal(err)
	}

	run.Decision = "BUY"
	run.FinalDecision = "FINAL TRANSACTION PROPOSAL: **BUY**"
	run.ModelCalls = 12
	run.Status = StatusDone
	if err := rec.SaveRun(ctx, run); err != nil {
		t.Fatal(err)
	}

	got, err := rec.GetRun(ctx, "run-1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Decision != "BUY" || got.Status != StatusDone || got.ModelCalls != 12 {
		t.Fatalf("unexpected run: %+v", got)
	}
}

func TestListRunsFiltersBySymbol(t *testing.T) {
	ctx := context.Background()
	rec := openTestRecorder(t)

	for _, run := range []RunRecord{
		{ID: "a", Symbol: "NVDA", TradeDate: "2024-05-10", Status: StatusDone},
		{ID: "b", Symbol: "600519", TradeDate: "2024-05-10", Status: StatusDone},
		{ID: "c", Symbol: "NVDA", TradeDate: "2024-05-11", Status: StatusError},
	} {
		if err := rec.SaveRun(ctx, run); err != nil {
			t.Fatal(err)
		}
	}

	runs, err := rec.ListRuns(ctx, "NVDA", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d NVDA runs, want 2", len(runs))
	}

	all, err := rec.ListRuns(ctx, "", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d total runs, want 3", len(all))
	}
}

func TestSaveRunRequiresID(t *testing.T) {
	rec := openTestRecorder(t)
	if err := rec.SaveRun(context.Background(), RunRecord{Symbol: "NVDA"}); err == nil {
		t.Fatal("run without id must be rejected")
	}
}
