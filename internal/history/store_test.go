package history_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"mangarchive/internal/history"
)

func openStore(t *testing.T) *history.Store {
	t.Helper()
	store, err := history.Open(context.Background(), filepath.Join(t.TempDir(), "state", "history.db"))
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRunLifecycle(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	started := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	if err := store.StartRun(ctx, history.Run{ID: "run-1", Collection: "slug-en", Language: "en", SourceURL: "https://mangadex.org/title/x/slug", StartedAt: started}); err != nil {
		t.Fatalf("StartRun returned error: %v", err)
	}
	for _, outcome := range []history.ChapterOutcome{
		{Key: "1", EntryID: "a", Status: "completed", Pages: 10, Fetched: 11},
		{Key: "2", EntryID: "b", Status: "external"},
	} {
		if err := store.RecordChapter(ctx, "run-1", outcome); err != nil {
			t.Fatalf("RecordChapter returned error: %v", err)
		}
	}

	runs, err := store.ListRuns(ctx, 0)
	if err != nil || len(runs) != 1 {
		t.Fatalf("ListRuns: runs=%v err=%v", runs, err)
	}
	if runs[0].Status != history.RunRunning || !runs[0].FinishedAt.IsZero() || runs[0].Duration() != 0 {
		t.Fatalf("unexpected running run: %+v", runs[0])
	}

	if err := store.FinishRun(ctx, "run-1", history.RunTotals{Selected: 2, Completed: 1, External: 1, Fetched: 11}, nil); err != nil {
		t.Fatalf("FinishRun returned error: %v", err)
	}
	runs, _ = store.ListRuns(ctx, 10)
	run := runs[0]
	if run.Status != history.RunSucceeded || run.Completed != 1 || run.External != 1 || run.Fetched != 11 || run.Selected != 2 {
		t.Fatalf("unexpected finished run: %+v", run)
	}
	if !run.StartedAt.Equal(started) || run.FinishedAt.IsZero() {
		t.Fatalf("unexpected timestamps: %+v", run)
	}

	chapters, err := store.ListChapters(ctx, "run-1")
	if err != nil {
		t.Fatalf("ListChapters returned error: %v", err)
	}
	if len(chapters) != 2 || chapters[0].Key != "1" || chapters[1].Status != "external" {
		t.Fatalf("unexpected chapters: %+v", chapters)
	}
}

func TestFinishRunRecordsFailure(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	if err := store.StartRun(ctx, history.Run{ID: "run-2", Collection: "c", Language: "en"}); err != nil {
		t.Fatal(err)
	}
	if err := store.FinishRun(ctx, "run-2", history.RunTotals{}, errors.New("transport error: 503")); err != nil {
		t.Fatal(err)
	}
	runs, _ := store.ListRuns(ctx, 1)
	if runs[0].Status != history.RunFailed || runs[0].Error != "transport error: 503" {
		t.Fatalf("unexpected failed run: %+v", runs[0])
	}
	if err := store.FinishRun(ctx, "missing", history.RunTotals{}, nil); err == nil {
		t.Fatal("expected error for unknown run")
	}
}

func TestListRunsOrdersNewestFirstAndLimits(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		if err := store.StartRun(ctx, history.Run{ID: id, Collection: "c", Language: "en", StartedAt: base.Add(time.Duration(i) * time.Hour)}); err != nil {
			t.Fatal(err)
		}
	}
	runs, err := store.ListRuns(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 || runs[0].ID != "c" || runs[1].ID != "b" {
		t.Fatalf("unexpected order: %+v", runs)
	}
}

func TestOpenIsReentrant(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	for range 2 {
		store, err := history.Open(context.Background(), path)
		if err != nil {
			t.Fatalf("Open returned error: %v", err)
		}
		if err := store.Close(); err != nil {
			t.Fatal(err)
		}
	}
}
