package storage

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStoreRunRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	input := testRun("run-1", time.Now().UTC())
	if err := store.SaveRun(ctx, input); err != nil {
		t.Fatalf("save run: %v", err)
	}
	input.Inputs["distance"] = 99

	output, ok, err := store.GetRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("get run: %v", err)
	}
	if !ok {
		t.Fatal("expected persisted run")
	}
	if output.Inputs["distance"] != 20 {
		t.Fatalf("stored run aliased caller map: %+v", output.Inputs)
	}

	if _, ok, err := store.GetRun(ctx, "missing"); err != nil || ok {
		t.Fatalf("expected missing run, ok=%t err=%v", ok, err)
	}
}

func TestMemoryStoreListRunsNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		if err := store.SaveRun(ctx, testRun(id, base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("save %s: %v", id, err)
		}
	}
	// same timestamp as "c": insertion order decides
	if err := store.SaveRun(ctx, testRun("d", base.Add(2*time.Minute))); err != nil {
		t.Fatalf("save d: %v", err)
	}

	runs, err := store.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	got := make([]string, len(runs))
	for i, run := range runs {
		got[i] = run.ID
	}
	want := []string{"d", "c", "b", "a"}
	for i := range want {
		if i >= len(got) || got[i] != want[i] {
			t.Fatalf("unexpected order: got %v want %v", got, want)
		}
	}

	limited, err := store.ListRuns(ctx, 2)
	if err != nil {
		t.Fatalf("list limited: %v", err)
	}
	if len(limited) != 2 || limited[0].ID != "d" {
		t.Fatalf("unexpected limited runs: %+v", limited)
	}
}

func TestMemoryStoreRequiresInit(t *testing.T) {
	store := NewMemoryStore()
	if err := store.SaveRun(context.Background(), testRun("run-1", time.Now())); err == nil {
		t.Fatal("expected uninitialized store error")
	}
}
