package main

import (
	"fmt"
	"slices"
	"strings"
	"testing"
)

func TestRenderStatusLineNoColor(t *testing.T) {
	got := renderStatusLine("Renderer", statusError, "binary not found", false)
	want := fmt.Sprintf("  %-*s %s", statusLabelWidth, "Renderer:", "[ERROR] binary not found")
	if got != want {
		t.Fatalf("renderStatusLine mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderStatusLineWithColor(t *testing.T) {
	got := renderStatusLine("Library directory", statusOK, "ok", true)
	if !strings.HasPrefix(got, ansiGreen) {
		t.Fatalf("expected green prefix, got %q", got)
	}
	if !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("expected reset suffix, got %q", got)
	}
}

func TestShouldColorizeNonFile(t *testing.T) {
	if shouldColorize(&strings.Builder{}) {
		t.Fatal("expected no color for non-file writer")
	}
}

func TestRenderTablePadsShortRows(t *testing.T) {
	out := renderTable([]string{"Chapter", "Pages"}, [][]string{{"1"}, {"2", "14"}}, []columnAlignment{alignLeft, alignRight})
	for _, want := range []string{"CHAPTER", "PAGES", "14"} {
		if !strings.Contains(out, want) {
			t.Fatalf("table missing %q:\n%s", want, out)
		}
	}
	if renderTable(nil, nil, nil) != "" {
		t.Fatal("expected empty table without headers")
	}
}

func TestCompareChapterKeys(t *testing.T) {
	keys := []string{"10", "oneshot-abcd1234", "2", "1.5", "1", "extra"}
	slices.SortStableFunc(keys, compareChapterKeys)
	want := []string{"1", "1.5", "2", "10", "extra", "oneshot-abcd1234"}
	if !slices.Equal(keys, want) {
		t.Fatalf("sorted = %v, want %v", keys, want)
	}
}

func TestRenderJSONEmptyListing(t *testing.T) {
	var buf strings.Builder
	if err := renderJSON[chapterStatus](&buf, nil); err != nil {
		t.Fatalf("renderJSON: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Fatalf("expected empty array, got %q", buf.String())
	}
}
