package testsupport

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
)

// FeedEntry is one item served by FakeMangaDex's chapter feed.
type FeedEntry struct {
	ID       string
	Type     string
	Language string
	// Chapter is served as JSON null when empty.
	Chapter     string
	ExternalURL string
}

// FakeChapter describes the at-home response of one chapter.
type FakeChapter struct {
	Hash  string
	Pages []string
}

// FakeMangaDex serves the feed, at-home, and page image endpoints from
// memory and records every request path.
type FakeMangaDex struct {
	Server *httptest.Server

	mu       sync.Mutex
	feed     []FeedEntry
	chapters map[string]FakeChapter
	requests []string
	failures map[string]int
}

// NewFakeMangaDex starts a fake server serving feed for any manga id.
func NewFakeMangaDex(t testing.TB, feed []FeedEntry, chapters map[string]FakeChapter) *FakeMangaDex {
	t.Helper()
	fake := &FakeMangaDex{
		feed:     append([]FeedEntry(nil), feed...),
		chapters: chapters,
		failures: map[string]int{},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /manga/{id}/feed", fake.handleFeed)
	mux.HandleFunc("GET /at-home/server/{id}", fake.handleAtHome)
	mux.HandleFunc("GET /data/{hash}/{page}", fake.handlePage)
	fake.Server = httptest.NewServer(fake.record(mux))
	t.Cleanup(fake.Server.Close)
	return fake
}

// URL is the base URL to configure as both API and uploads host.
func (f *FakeMangaDex) URL() string { return f.Server.URL }

// Requests returns the request paths served so far, in order.
func (f *FakeMangaDex) Requests() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

// FailPath makes requests to path answer with status until cleared with 0.
func (f *FakeMangaDex) FailPath(path string, status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if status == 0 {
		delete(f.failures, path)
		return
	}
	f.failures[path] = status
}

// PageBody is the image payload served for hash/page.
func PageBody(hash, page string) []byte {
	return []byte("image:" + hash + "/" + page)
}

func (f *FakeMangaDex) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.requests = append(f.requests, r.URL.Path)
		status := f.failures[r.URL.Path]
		f.mu.Unlock()
		if status != 0 {
			http.Error(w, fmt.Sprintf(`{"result":"error","status":%d}`, status), status)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (f *FakeMangaDex) handleFeed(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit, _ := strconv.Atoi(query.Get("limit"))
	offset, _ := strconv.Atoi(query.Get("offset"))
	if limit <= 0 {
		limit = 100
	}

	data := []map[string]any{}
	for i := offset; i < len(f.feed) && i < offset+limit; i++ {
		entry := f.feed[i]
		var chapter, external any
		if entry.Chapter != "" {
			chapter = entry.Chapter
		}
		if entry.ExternalURL != "" {
			external = entry.ExternalURL
		}
		data = append(data, map[string]any{
			"id":   entry.ID,
			"type": entry.Type,
			"attributes": map[string]any{
				"chapter":            chapter,
				"translatedLanguage": entry.Language,
				"externalUrl":        external,
			},
		})
	}
	writeJSON(w, map[string]any{"result": "ok", "limit": limit, "offset": offset, "total": len(f.feed), "data": data})
}

func (f *FakeMangaDex) handleAtHome(w http.ResponseWriter, r *http.Request) {
	ch, ok := f.chapters[r.PathValue("id")]
	if !ok {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, map[string]any{
		"result":  "ok",
		"baseUrl": f.Server.URL,
		"chapter": map[string]any{"hash": ch.Hash, "data": ch.Pages, "dataSaver": []string{}},
	})
}

func (f *FakeMangaDex) handlePage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(PageBody(r.PathValue("hash"), r.PathValue("page")))
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
