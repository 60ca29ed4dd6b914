package journal

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "provision.db"))
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestBeginFinishCompleted(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Begin(ctx, 1, "update-os"); err != nil {
		t.Fatalf("Begin returned error: %v", err)
	}
	if err := store.Finish(ctx, 1, "update-os", StatusCompleted, ""); err != nil {
		t.Fatalf("Finish returned error: %v", err)
	}

	completed, err := store.Completed(ctx, 1)
	if err != nil {
		t.Fatalf("Completed returned error: %v", err)
	}
	if !completed["update-os"] {
		t.Fatal("update-os should be completed")
	}
}

func TestFailedStepIsNotCompleted(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Begin(ctx, 1, "install-docker"); err != nil {
		t.Fatal(err)
	}
	if err := store.Finish(ctx, 1, "install-docker", StatusFailed, "exit status 100"); err != nil {
		t.Fatal(err)
	}

	completed, err := store.Completed(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if completed["install-docker"] {
		t.Fatal("failed step must not count as completed")
	}
}

func TestBeginReplacesPriorFailure(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Begin(ctx, 1, "install-docker"); err != nil {
		t.Fatal(err)
	}
	if err := store.Finish(ctx, 1, "install-docker", StatusFailed, "boom"); err != nil {
		t.Fatal(err)
	}
	if err := store.Begin(ctx, 1, "install-docker"); err != nil {
		t.Fatalf("Begin after failure returned error: %v", err)
	}

	records, err := store.Records(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("expected a single record, got %d", len(records))
	}
	if records[0].Status != StatusRunning {
		t.Fatalf("expected running status, got %q", records[0].Status)
	}
	if records[0].Detail != "" {
		t.Fatalf("detail should be cleared on re-run, got %q", records[0].Detail)
	}
}

func TestFinishWithoutBeginFails(t *testing.T) {
	store := openTestStore(t)
	if err := store.Finish(context.Background(), 1, "never-begun", StatusCompleted, ""); err == nil {
		t.Fatal("expected error finishing a step that never began")
	}
}

func TestResetClearsStage(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for _, step := range []string{"a", "b"} {
		if err := store.Begin(ctx, 1, step); err != nil {
			t.Fatal(err)
		}
		if err := store.Finish(ctx, 1, step, StatusCompleted, ""); err != nil {
			t.Fatal(err)
		}
	}
	if err := store.Reset(ctx, 1); err != nil {
		t.Fatalf("Reset returned error: %v", err)
	}
	completed, err := store.Completed(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(completed) != 0 {
		t.Fatalf("expected empty journal after reset, got %v", completed)
	}
}
