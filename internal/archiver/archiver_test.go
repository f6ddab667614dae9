package archiver_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"mangarchive/internal/archiver"
	"mangarchive/internal/chapter"
	"mangarchive/internal/collection"
	"mangarchive/internal/history"
	"mangarchive/internal/logging"
	"mangarchive/internal/mangadex"
	"mangarchive/internal/services"
	"mangarchive/internal/testsupport"
)

type stubLister struct {
	pages []mangadex.ListingPage
	err   error
}

func (l stubLister) ListAll(context.Context, collection.Ref) ([]mangadex.ListingPage, error) {
	return l.pages, l.err
}

type recordingProcessor struct {
	order  []string
	failOn string
}

func (p *recordingProcessor) Process(_ context.Context, entry mangadex.Entry) (chapter.Result, error) {
	key := entry.OrderingKey()
	p.order = append(p.order, key)
	if key == p.failOn {
		return chapter.Result{Key: key, Fetched: 1}, services.Wrap(services.ErrTransport, "fetch", "", "boom", nil)
	}
	if entry.IsExternal() {
		return chapter.Result{Key: key, Status: chapter.StatusExternal}, nil
	}
	return chapter.Result{Key: key, Status: chapter.StatusCompleted, Pages: 2, Fetched: 3, Produced: []string{key + ".cbz"}}, nil
}

type failingRecorder struct{ calls int }

func (r *failingRecorder) StartRun(context.Context, history.Run) error {
	r.calls++
	return errors.New("disk full")
}

func (r *failingRecorder) RecordChapter(context.Context, string, history.ChapterOutcome) error {
	r.calls++
	return errors.New("disk full")
}

func (r *failingRecorder) FinishRun(context.Context, string, history.RunTotals, error) error {
	r.calls++
	return errors.New("disk full")
}

var testRef = collection.Ref{ID: "abc-123", Name: "one-piece", Language: "en"}

func entry(id, ch string) mangadex.Entry {
	return mangadex.Entry{ID: id, Type: "chapter", Language: "en", Chapter: ch}
}

func TestRunProcessesSelectedEntriesOldestFirst(t *testing.T) {
	pages := []mangadex.ListingPage{
		{Index: 0, Total: 4, Entries: []mangadex.Entry{entry("c10", "10"), entry("c2", "2")}},
		{Index: 1, Total: 4, Entries: []mangadex.Entry{
			{ID: "fr1", Type: "chapter", Language: "fr", Chapter: "1"},
			entry("c1", "1"),
		}},
	}
	proc := &recordingProcessor{}
	a, err := archiver.New(archiver.Options{
		RunID:     "run-1",
		Ref:       testRef,
		Lister:    stubLister{pages: pages},
		Processor: proc,
		Logger:    logging.NewNop(),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	summary, err := a.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if want := []string{"1", "2", "10"}; !reflect.DeepEqual(proc.order, want) {
		t.Fatalf("order = %v, want %v", proc.order, want)
	}
	if summary.Pages != 2 || summary.Selected != 3 || summary.Completed != 3 || summary.Fetched != 9 || summary.Produced != 3 {
		t.Fatalf("unexpected summary %+v", summary)
	}
}

func TestRunExternalEntryDoesNotStopLaterEntries(t *testing.T) {
	ext := entry("c2", "2")
	ext.ExternalURL = "https://example.com/read/2"
	pages := []mangadex.ListingPage{{Total: 3, Entries: []mangadex.Entry{entry("c3", "3"), ext, entry("c1", "1")}}}
	proc := &recordingProcessor{}
	a, err := archiver.New(archiver.Options{Ref: testRef, Lister: stubLister{pages: pages}, Processor: proc})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	summary, err := a.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if want := []string{"1", "2", "3"}; !reflect.DeepEqual(proc.order, want) {
		t.Fatalf("order = %v, want %v", proc.order, want)
	}
	if summary.Completed != 2 || summary.External != 1 {
		t.Fatalf("unexpected summary %+v", summary)
	}
}

func TestRunStopsAtFirstFailure(t *testing.T) {
	pages := []mangadex.ListingPage{{Total: 3, Entries: []mangadex.Entry{entry("c3", "3"), entry("c2", "2"), entry("c1", "1")}}}
	proc := &recordingProcessor{failOn: "2"}
	a, err := archiver.New(archiver.Options{Ref: testRef, Lister: stubLister{pages: pages}, Processor: proc})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	summary, err := a.Run(context.Background())
	if !errors.Is(err, services.ErrTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if want := []string{"1", "2"}; !reflect.DeepEqual(proc.order, want) {
		t.Fatalf("order = %v, want %v", proc.order, want)
	}
	if summary.Completed != 1 || summary.Fetched != 4 {
		t.Fatalf("unexpected summary %+v", summary)
	}
}

func TestRunListingFailureIsReturned(t *testing.T) {
	listErr := services.Wrap(services.ErrMalformed, "parse", "listing page 0", "missing total", nil)
	a, err := archiver.New(archiver.Options{Ref: testRef, Lister: stubLister{err: listErr}, Processor: &recordingProcessor{}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := a.Run(context.Background()); !errors.Is(err, services.ErrMalformed) {
		t.Fatalf("expected malformed error, got %v", err)
	}
}

func TestRunIgnoresRecorderFailures(t *testing.T) {
	pages := []mangadex.ListingPage{{Total: 1, Entries: []mangadex.Entry{entry("c1", "1")}}}
	rec := &failingRecorder{}
	a, err := archiver.New(archiver.Options{Ref: testRef, Lister: stubLister{pages: pages}, Processor: &recordingProcessor{}, Recorder: rec})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	summary, err := a.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Completed != 1 {
		t.Fatalf("expected chapter to complete, got %+v", summary)
	}
	if rec.calls != 3 {
		t.Fatalf("expected 3 recorder calls, got %d", rec.calls)
	}
}

func TestNewRequiresListerAndProcessor(t *testing.T) {
	if _, err := archiver.New(archiver.Options{}); err == nil {
		t.Fatal("expected error for missing collaborators")
	}
}

func TestOldestFirstLeavesInputUntouched(t *testing.T) {
	in := []mangadex.Entry{entry("a", "3"), entry("b", "2")}
	out := archiver.OldestFirst(in)
	if out[0].ID != "b" || in[0].ID != "a" {
		t.Fatalf("OldestFirst mutated input or misordered: in=%v out=%v", in, out)
	}
}

func TestNewFromConfigArchivesAndResumesWithoutRefetching(t *testing.T) {
	fake := testsupport.NewFakeMangaDex(t,
		[]testsupport.FeedEntry{
			{ID: "chap-0002", Type: "chapter", Language: "en", Chapter: "2"},
			{ID: "chap-0002-fr", Type: "chapter", Language: "fr", Chapter: "2"},
			{ID: "chap-ext", Type: "chapter", Language: "en", Chapter: "1.5", ExternalURL: "https://example.com/1.5"},
			{ID: "chap-0001", Type: "chapter", Language: "en", Chapter: "1"},
		},
		map[string]testsupport.FakeChapter{
			"chap-0001": {Hash: "h1", Pages: []string{"a1.png"}},
			"chap-0002": {Hash: "h2", Pages: []string{"b1.png", "b2.jpg"}},
		},
	)
	cfg := testsupport.NewConfig(t,
		testsupport.WithAPI(fake.URL()),
		testsupport.WithStubbedBinaries(),
		testsupport.WithRender("asciidoctor-epub3", "-d", "book"),
	)
	store := testsupport.MustOpenHistory(t, cfg)

	run := func(runID string) archiver.Summary {
		t.Helper()
		a, err := archiver.NewFromConfig(cfg, archiver.RunInputs{
			RunID:     runID,
			SourceURL: "https://mangadex.org/title/abc-123/one-piece",
			Ref:       testRef,
			Recorder:  store,
			Logger:    logging.NewNop(),
		})
		if err != nil {
			t.Fatalf("NewFromConfig: %v", err)
		}
		summary, err := a.Run(context.Background())
		if err != nil {
			t.Fatalf("Run %s: %v", runID, err)
		}
		return summary
	}

	first := run("run-1")
	if first.Selected != 3 || first.Completed != 2 || first.External != 1 {
		t.Fatalf("unexpected first summary %+v", first)
	}
	// metadata plus page images: 1+1 and 1+2
	if first.Fetched != 5 {
		t.Fatalf("first run fetched %d, want 5", first.Fetched)
	}

	dir := archiver.CollectionDir(cfg, testRef)
	for _, name := range []string{
		"page-0.json", "page-1.json",
		"chapter-1.json", "1/0.png",
		"chapter-2.json", "2/0.png", "2/1.jpg",
		"one-piece-en-1.cbz", "one-piece-en-1.adoc", "one-piece-en-1.epub",
		"one-piece-en-2.cbz", "one-piece-en-2.adoc", "one-piece-en-2.epub",
	} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Fatalf("expected artifact %s: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "chapter-1.5.json")); !os.IsNotExist(err) {
		t.Fatalf("external chapter must not be fetched, stat err=%v", err)
	}

	page, err := os.ReadFile(filepath.Join(dir, "2", "1.jpg"))
	if err != nil {
		t.Fatalf("read page: %v", err)
	}
	if !bytes.Equal(page, testsupport.PageBody("h2", "b2.jpg")) {
		t.Fatalf("unexpected page body %q", page)
	}
	epub, err := os.ReadFile(filepath.Join(dir, "one-piece-en-2.epub"))
	if err != nil {
		t.Fatalf("read epub: %v", err)
	}
	if string(epub) != "epub:one-piece-en-2.adoc" {
		t.Fatalf("unexpected rendered output %q", epub)
	}

	snapshot := readTree(t, dir)
	requests := len(fake.Requests())

	second := run("run-2")
	if second.Fetched != 0 || second.Produced != 0 {
		t.Fatalf("second run should reuse every artifact, got %+v", second)
	}
	if got := len(fake.Requests()); got != requests {
		t.Fatalf("second run issued %d requests", got-requests)
	}
	if !reflect.DeepEqual(readTree(t, dir), snapshot) {
		t.Fatal("artifacts changed between runs")
	}

	runs, err := store.ListRuns(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "run-2" || runs[0].Status != history.RunSucceeded {
		t.Fatalf("unexpected ledger %+v", runs)
	}
	chapters, err := store.ListChapters(context.Background(), "run-1")
	if err != nil {
		t.Fatalf("ListChapters: %v", err)
	}
	if len(chapters) != 3 || chapters[0].Key != "1" || chapters[1].Status != chapter.StatusExternal {
		t.Fatalf("unexpected chapter outcomes %+v", chapters)
	}
}

func TestNewFromConfigRecoversAfterTransportFailure(t *testing.T) {
	fake := testsupport.NewFakeMangaDex(t,
		[]testsupport.FeedEntry{{ID: "chap-0001", Type: "chapter", Language: "en", Chapter: "1"}},
		map[string]testsupport.FakeChapter{"chap-0001": {Hash: "h1", Pages: []string{"p1.png", "p2.png"}}},
	)
	cfg := testsupport.NewConfig(t, testsupport.WithAPI(fake.URL()))
	newArchiver := func() *archiver.Archiver {
		a, err := archiver.NewFromConfig(cfg, archiver.RunInputs{RunID: "r", Ref: testRef, Logger: logging.NewNop()})
		if err != nil {
			t.Fatalf("NewFromConfig: %v", err)
		}
		return a
	}

	fake.FailPath("/data/h1/p2.png", 503)
	_, err := newArchiver().Run(context.Background())
	if !errors.Is(err, services.ErrTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
	dir := archiver.CollectionDir(cfg, testRef)
	if _, err := os.Stat(filepath.Join(dir, "1", "0.png")); err != nil {
		t.Fatalf("first page should be kept: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "1", "1.png")); !os.IsNotExist(err) {
		t.Fatalf("failed page must not exist, stat err=%v", err)
	}

	fake.FailPath("/data/h1/p2.png", 0)
	before := len(fake.Requests())
	summary, err := newArchiver().Run(context.Background())
	if err != nil {
		t.Fatalf("resume run: %v", err)
	}
	if summary.Fetched != 1 {
		t.Fatalf("resume should fetch only the missing page, fetched %d", summary.Fetched)
	}
	if got := fake.Requests()[before:]; len(got) != 1 || got[0] != "/data/h1/p2.png" {
		t.Fatalf("unexpected resume requests %v", got)
	}
	if _, err := os.Stat(filepath.Join(dir, "one-piece-en-1.cbz")); err != nil {
		t.Fatalf("archive missing after resume: %v", err)
	}
}

func readTree(t *testing.T, root string) map[string]string {
	t.Helper()
	tree := map[string]string{}
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(root, path)
		tree[filepath.ToSlash(rel)] = string(data)
		return nil
	})
	if err != nil {
		t.Fatalf("walk %s: %v", root, err)
	}
	for key := range tree {
		if strings.Contains(key, ".render-") {
			t.Fatalf("render scratch left behind: %s", key)
		}
	}
	return tree
}
