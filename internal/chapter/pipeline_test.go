package chapter_test

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"mangarchive/internal/artifact"
	"mangarchive/internal/chapter"
	"mangarchive/internal/collection"
	"mangarchive/internal/logging"
	"mangarchive/internal/mangadex"
	"mangarchive/internal/services"
)

var testRef = collection.Ref{ID: "m1", Name: "slug", Language: "en"}

var testEndpoints = mangadex.Endpoints{
	APIBase:     "https://api.test",
	UploadsBase: "https://uploads.test",
	PageSize:    100,
}

type fakeFetcher struct {
	responses map[string][]byte
	calls     []string
	delays    []time.Duration
}

func (f *fakeFetcher) Fetch(_ context.Context, url string, minDelay time.Duration) ([]byte, error) {
	f.calls = append(f.calls, url)
	f.delays = append(f.delays, minDelay)
	data, ok := f.responses[url]
	if !ok {
		return nil, services.Wrap(services.ErrTransport, "fetch", "get", url, errors.New("unexpected status 404"))
	}
	return data, nil
}

type fakeRenderer struct {
	requests []chapter.RenderRequest
}

func (r *fakeRenderer) Render(_ context.Context, req chapter.RenderRequest) ([]byte, error) {
	r.requests = append(r.requests, req)
	return []byte("epub:" + req.Manifest), nil
}

func chapterFixture(id string, pages int) map[string][]byte {
	paths := make([]string, pages)
	responses := map[string][]byte{}
	for i := range pages {
		paths[i] = fmt.Sprintf(`"p%d-abcdef.png"`, i)
		responses[testEndpoints.AssetURL("hash-"+id, fmt.Sprintf("p%d-abcdef.png", i))] = fmt.Appendf(nil, "image-%s-%d", id, i)
	}
	responses[testEndpoints.AtHomeURL(id)] = fmt.Appendf(nil, `{"result":"ok","chapter":{"hash":"hash-%s","data":[%s]}}`, id, strings.Join(paths, ","))
	return responses
}

func newPipeline(t *testing.T, store artifact.Store, fetcher chapter.Fetcher, renderer chapter.Renderer) *chapter.Pipeline {
	t.Helper()
	opts := chapter.Options{
		Cache:         artifact.NewCache(store, nil),
		Fetcher:       fetcher,
		Endpoints:     testEndpoints,
		Ref:           testRef,
		MetadataDelay: 5 * time.Second,
		AssetDelay:    2 * time.Second,
		Logger:        logging.NewNop(),
	}
	if renderer != nil {
		opts.Renderer = renderer
	}
	p, err := chapter.NewPipeline(opts)
	if err != nil {
		t.Fatalf("NewPipeline returned error: %v", err)
	}
	return p
}

func TestAssetNamesPadding(t *testing.T) {
	pages := make([]string, 12)
	for i := range pages {
		pages[i] = fmt.Sprintf("x%d.png", i)
	}
	names := chapter.AssetNames(pages)
	if names[0] != "00.png" || names[11] != "11.png" {
		t.Fatalf("unexpected names: %v", names)
	}
	for count, width := range map[int]int{1: 1, 9: 1, 10: 2, 99: 2, 100: 3} {
		if got := chapter.PaddingWidth(count); got != width {
			t.Fatalf("PaddingWidth(%d) = %d, want %d", count, got, width)
		}
	}
	if got := chapter.AssetName("a/b/c.jpeg", 7, 3); got != "007.jpeg" {
		t.Fatalf("unexpected asset name: %q", got)
	}
}

func TestBuildManifest(t *testing.T) {
	got := string(chapter.BuildManifest("slug", "en", "3", []string{"0.png", "1.jpg"}))
	want := "= slug - en - Chapter 3\n" +
		":lang: en\n" +
		":front-cover-image: 3/0.png\n" +
		"\n" +
		"image::3/0.png[]\n" +
		"image::3/1.jpg[]\n"
	if got != want {
		t.Fatalf("unexpected manifest:\n%s\nwant:\n%s", got, want)
	}
}

func TestBuildArchiveIsDeterministic(t *testing.T) {
	read := func(name string) ([]byte, error) { return []byte("data-" + name), nil }
	first, err := chapter.BuildArchive([]string{"0.png", "1.png"}, read)
	if err != nil {
		t.Fatalf("BuildArchive returned error: %v", err)
	}
	second, _ := chapter.BuildArchive([]string{"0.png", "1.png"}, read)
	if !bytes.Equal(first, second) {
		t.Fatal("expected identical archives for identical input")
	}
	zr, err := zip.NewReader(bytes.NewReader(first), int64(len(first)))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	if !reflect.DeepEqual(names, []string{"0.png", "1.png"}) {
		t.Fatalf("unexpected archive entries: %v", names)
	}
}

func TestProcessProducesEveryArtifactThenIsIdempotent(t *testing.T) {
	store := artifact.NewMemStore()
	fetcher := &fakeFetcher{responses: chapterFixture("c1", 3)}
	renderer := &fakeRenderer{}
	p := newPipeline(t, store, fetcher, renderer)
	entry := mangadex.Entry{ID: "c1", Type: "chapter", Language: "en", Chapter: "7"}

	result, err := p.Process(context.Background(), entry)
	if err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	if result.Status != chapter.StatusCompleted || result.Pages != 3 || result.Fetched != 4 {
		t.Fatalf("unexpected result: %+v", result)
	}
	wantKeys := []string{"7/0.png", "7/1.png", "7/2.png", "chapter-7.json", "slug-en-7.adoc", "slug-en-7.cbz", "slug-en-7.epub"}
	if got := store.Keys(); !reflect.DeepEqual(got, wantKeys) {
		t.Fatalf("unexpected artifacts:\n got %v\nwant %v", got, wantKeys)
	}
	wantDelays := []time.Duration{5 * time.Second, 2 * time.Second, 2 * time.Second, 2 * time.Second}
	if !reflect.DeepEqual(fetcher.delays, wantDelays) {
		t.Fatalf("unexpected pacing: %v", fetcher.delays)
	}
	if fetcher.calls[1] != testEndpoints.AssetURL("hash-c1", "p0-abcdef.png") {
		t.Fatalf("expected ascending page order, got %v", fetcher.calls)
	}
	if len(renderer.requests) != 1 || renderer.requests[0].Manifest != "slug-en-7.adoc" {
		t.Fatalf("unexpected render requests: %+v", renderer.requests)
	}

	writes := store.Writes
	again, err := p.Process(context.Background(), entry)
	if err != nil {
		t.Fatalf("second Process returned error: %v", err)
	}
	if again.Fetched != 0 || len(again.Produced) != 0 || len(fetcher.calls) != 4 {
		t.Fatalf("expected no work on second run, got %+v with %d calls", again, len(fetcher.calls))
	}
	if store.Writes != writes || len(renderer.requests) != 1 {
		t.Fatal("expected no writes or renders on second run")
	}
}

func TestProcessSkipsCachedAssetsButBuildsDownstream(t *testing.T) {
	store := artifact.NewMemStore()
	responses := chapterFixture("c2", 2)
	must(t, store.Write("chapter-2.json", responses[testEndpoints.AtHomeURL("c2")]))
	must(t, store.MkdirAll("2"))
	must(t, store.Write("2/0.png", []byte("cached-0")))
	must(t, store.Write("2/1.png", []byte("cached-1")))

	fetcher := &fakeFetcher{responses: responses}
	p := newPipeline(t, store, fetcher, &fakeRenderer{})
	result, err := p.Process(context.Background(), mangadex.Entry{ID: "c2", Type: "chapter", Language: "en", Chapter: "2"})
	if err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	if len(fetcher.calls) != 0 {
		t.Fatalf("expected no fetches, got %v", fetcher.calls)
	}
	if want := []string{"slug-en-2.cbz", "slug-en-2.adoc", "slug-en-2.epub"}; !reflect.DeepEqual(result.Produced, want) {
		t.Fatalf("unexpected produced artifacts: %v", result.Produced)
	}
	archive, _ := store.Read("slug-en-2.cbz")
	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	rc, _ := zr.File[0].Open()
	defer rc.Close()
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(rc)
	if buf.String() != "cached-0" {
		t.Fatalf("expected archive built from cached assets, got %q", buf.String())
	}
}

func TestProcessExternalEntryShortCircuits(t *testing.T) {
	store := artifact.NewMemStore()
	fetcher := &fakeFetcher{}
	p := newPipeline(t, store, fetcher, &fakeRenderer{})
	result, err := p.Process(context.Background(), mangadex.Entry{ID: "x", Type: "chapter", Language: "en", Chapter: "1", ExternalURL: "https://elsewhere.example/1"})
	if err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	if result.Status != chapter.StatusExternal {
		t.Fatalf("unexpected status: %q", result.Status)
	}
	if len(store.Keys()) != 0 || len(fetcher.calls) != 0 {
		t.Fatalf("expected no artifacts and no fetches, got %v / %v", store.Keys(), fetcher.calls)
	}
	if exists, _ := store.Exists("1"); exists {
		t.Fatal("expected no asset directory")
	}
}

func TestProcessMalformedMetadataAborts(t *testing.T) {
	store := artifact.NewMemStore()
	fetcher := &fakeFetcher{responses: map[string][]byte{testEndpoints.AtHomeURL("bad"): []byte(`{"result":"ok"}`)}}
	p := newPipeline(t, store, fetcher, nil)
	_, err := p.Process(context.Background(), mangadex.Entry{ID: "bad", Type: "chapter", Language: "en", Chapter: "1"})
	if !errors.Is(err, services.ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
	if exists, _ := store.Exists("1"); exists {
		t.Fatal("expected no asset directory after malformed metadata")
	}
}

func TestProcessTransportErrorAborts(t *testing.T) {
	responses := chapterFixture("c3", 2)
	delete(responses, testEndpoints.AssetURL("hash-c3", "p1-abcdef.png"))
	store := artifact.NewMemStore()
	p := newPipeline(t, store, &fakeFetcher{responses: responses}, nil)
	_, err := p.Process(context.Background(), mangadex.Entry{ID: "c3", Type: "chapter", Language: "en", Chapter: "3"})
	if !errors.Is(err, services.ErrTransport) {
		t.Fatalf("expected ErrTransport, got %v", err)
	}
	if want := []string{"3/0.png", "chapter-3.json"}; !reflect.DeepEqual(store.Keys(), want) {
		t.Fatalf("expected earlier artifacts kept for resume, got %v", store.Keys())
	}
}

func TestProcessWithoutRendererSkipsRender(t *testing.T) {
	store := artifact.NewMemStore()
	p := newPipeline(t, store, &fakeFetcher{responses: chapterFixture("c4", 1)}, nil)
	if _, err := p.Process(context.Background(), mangadex.Entry{ID: "c4", Type: "chapter", Language: "en", Chapter: "4"}); err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	if exists, _ := store.Exists("slug-en-4.epub"); exists {
		t.Fatal("expected no rendered document when rendering is disabled")
	}
	if exists, _ := store.Exists("slug-en-4.adoc"); !exists {
		t.Fatal("expected manifest to be produced")
	}
}

func TestCommandRendererInvokesConverter(t *testing.T) {
	binDir := t.TempDir()
	script := filepath.Join(binDir, "fake-epub3")
	writeScript(t, script, `#!/bin/sh
out=""
while [ $# -gt 0 ]; do
  if [ "$1" = "-o" ]; then out="$2"; shift; fi
  last="$1"
  shift
done
[ -f "$last" ] || exit 3
printf 'rendered %s' "$last" > "$out"
`)

	root := t.TempDir()
	store := artifact.NewFSStore(root)
	renderer := chapter.NewCommandRenderer(script, []string{"-d", "book"})
	p := newPipeline(t, store, &fakeFetcher{responses: chapterFixture("c5", 2)}, renderer)
	if _, err := p.Process(context.Background(), mangadex.Entry{ID: "c5", Type: "chapter", Language: "en", Chapter: "5"}); err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(root, "slug-en-5.epub"))
	if err != nil {
		t.Fatalf("read rendered output: %v", err)
	}
	if string(data) != "rendered slug-en-5.adoc" {
		t.Fatalf("unexpected rendered output: %q", data)
	}
	entries, _ := os.ReadDir(root)
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".render-") {
			t.Fatalf("expected scratch directory removed, found %s", e.Name())
		}
	}
}

func TestCommandRendererFailureIsExternalToolError(t *testing.T) {
	script := filepath.Join(t.TempDir(), "broken")
	writeScript(t, script, "#!/bin/sh\necho boom >&2\nexit 1\n")
	renderer := chapter.NewCommandRenderer(script, nil)
	_, err := renderer.Render(context.Background(), chapter.RenderRequest{Dir: t.TempDir(), Manifest: "a.adoc", Output: "a.epub"})
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected ErrExternalTool, got %v", err)
	}
	if !strings.Contains(err.Error(), "boom") {
		t.Fatalf("expected converter output in error, got %v", err)
	}
}

func TestInspect(t *testing.T) {
	store := artifact.NewMemStore()
	p := newPipeline(t, store, &fakeFetcher{responses: chapterFixture("c6", 2)}, nil)
	if _, err := p.Process(context.Background(), mangadex.Entry{ID: "c6", Type: "chapter", Language: "en", Chapter: "6"}); err != nil {
		t.Fatal(err)
	}
	inspection, err := chapter.Inspect(store, testRef.DirName(), "6")
	if err != nil {
		t.Fatalf("Inspect returned error: %v", err)
	}
	if inspection.Pages != 2 || inspection.AssetsCached != 2 || !inspection.Archive || !inspection.Manifest || inspection.Rendered {
		t.Fatalf("unexpected inspection: %+v", inspection)
	}
	if !inspection.Complete(false) || inspection.Complete(true) {
		t.Fatalf("unexpected completeness for %+v", inspection)
	}
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}

func writeScript(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
}
