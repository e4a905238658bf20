package gositemapgenerator

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func fixedClock() time.Time {
	return time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
}

func TestBuildIndex_StringMode(t *testing.T) {
	gen := New(Options{OutputMode: OutputString, ItemsPerDocument: 2, Now: fixedClock})
	for i := 0; i < 3; i++ {
		if err := gen.Add(fmt.Sprintf("/p%d", i)); err != nil {
			t.Fatalf("add failed: %v", err)
		}
	}

	index, err := gen.BuildIndex("https://example.com/", "")
	if err != nil {
		t.Fatalf("build index failed: %v", err)
	}
	want := `<?xml version="1.0" encoding="UTF-8"?>
<sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <sitemap>
    <loc>https://example.com/sitemap.xml</loc>
    <lastmod>2024-03-15</lastmod>
  </sitemap>
  <sitemap>
    <loc>https://example.com/sitemap-1.xml</loc>
    <lastmod>2024-03-15</lastmod>
  </sitemap>
</sitemapindex>
`
	if diff := cmp.Diff(want, index); diff != "" {
		t.Fatalf("unexpected index (-want +got):\n%s", diff)
	}
	stored, err := gen.IndexString()
	if err != nil {
		t.Fatalf("index string failed: %v", err)
	}
	if stored != index {
		t.Fatalf("expected IndexString to match BuildIndex result")
	}

	docs, _ := gen.Documents()
	if len(docs) != 2 {
		t.Fatalf("expected index build to keep 2 documents, got %d", len(docs))
	}
}

func TestBuildIndex_RepeatLocation(t *testing.T) {
	gen := New(Options{OutputMode: OutputString, ItemsPerDocument: 1, RepeatIndexLocation: true})
	_ = gen.Add("/a")
	_ = gen.Add("/b")
	index, err := gen.BuildIndex("https://example.com/sitemap.xml", "2023-11-14")
	if err != nil {
		t.Fatalf("build index failed: %v", err)
	}
	summary, err := Inspect(strings.NewReader(index))
	if err != nil {
		t.Fatalf("inspect failed: %v", err)
	}
	wantLocs := []string{"https://example.com/sitemap.xml", "https://example.com/sitemap.xml"}
	if diff := cmp.Diff(wantLocs, summary.Locations); diff != "" {
		t.Fatalf("unexpected locations (-want +got):\n%s", diff)
	}
	wantDates := []string{"2023-11-14", "2023-11-14"}
	if diff := cmp.Diff(wantDates, summary.LastMods); diff != "" {
		t.Fatalf("unexpected lastmods (-want +got):\n%s", diff)
	}
}

func TestBuildIndex_EntryCountMatchesDocuments(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping 50001 item test in short mode")
	}
	gen := New(Options{Domain: "https://example.com", OutputMode: OutputString})
	for i := 0; i < DefaultItemsPerDocument+1; i++ {
		if err := gen.Add(fmt.Sprintf("/p%d", i)); err != nil {
			t.Fatalf("add failed: %v", err)
		}
	}
	index, err := gen.BuildIndex("https://example.com/", "1700000000")
	if err != nil {
		t.Fatalf("build index failed: %v", err)
	}
	if gen.DocumentCount() != 2 {
		t.Fatalf("expected 2 documents, got %d", gen.DocumentCount())
	}
	summary, err := Inspect(strings.NewReader(index))
	if err != nil {
		t.Fatalf("inspect failed: %v", err)
	}
	if summary.Kind != "sitemapindex" || summary.Entries != 2 {
		t.Fatalf("expected sitemapindex with 2 entries, got %s with %d", summary.Kind, summary.Entries)
	}
	docs, _ := gen.Documents()
	last, err := Inspect(strings.NewReader(docs[1]))
	if err != nil {
		t.Fatalf("inspect failed: %v", err)
	}
	if last.Entries != 1 || last.Locations[0] != fmt.Sprintf("https://example.com/p%d", DefaultItemsPerDocument) {
		t.Fatalf("expected the last item alone in document 1, got %+v", last.Locations)
	}
}

func TestBuildIndex_EmptyGenerator(t *testing.T) {
	gen := New(Options{OutputMode: OutputString})
	index, err := gen.BuildIndex("https://example.com/", "2024-01-01")
	if err != nil {
		t.Fatalf("build index failed: %v", err)
	}
	summary, err := Inspect(strings.NewReader(index))
	if err != nil {
		t.Fatalf("inspect failed: %v", err)
	}
	if summary.Entries != 1 {
		t.Fatalf("expected index to list the single empty document, got %d entries", summary.Entries)
	}
}

func TestBuildIndex_AfterClose(t *testing.T) {
	gen := New(Options{OutputMode: OutputString})
	_ = gen.Add("/a")
	if err := gen.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	index, err := gen.BuildIndex("https://example.com/", "2024-01-01")
	if err != nil {
		t.Fatalf("build index failed: %v", err)
	}
	summary, _ := Inspect(strings.NewReader(index))
	if summary.Entries != 1 {
		t.Fatalf("expected 1 entry, got %d", summary.Entries)
	}
}

func TestBuildIndex_FileMode(t *testing.T) {
	dir := t.TempDir()
	gen := New(Options{OutputPath: dir, BaseFilename: "site", ItemsPerDocument: 2, Now: fixedClock})
	for i := 0; i < 5; i++ {
		_ = gen.Add(fmt.Sprintf("/p%d", i))
	}
	out, err := gen.BuildIndex("https://cdn.example.com/maps/", "Today")
	if err != nil {
		t.Fatalf("build index failed: %v", err)
	}
	if out != "" {
		t.Fatalf("expected no string result in file mode, got %q", out)
	}
	path, err := gen.IndexPath()
	if err != nil {
		t.Fatalf("index path failed: %v", err)
	}
	if path != filepath.Join(dir, "site-index.xml") {
		t.Fatalf("unexpected index path %s", path)
	}
	summary, err := InspectFile(path)
	if err != nil {
		t.Fatalf("inspect index failed: %v", err)
	}
	want := []string{
		"https://cdn.example.com/maps/site.xml",
		"https://cdn.example.com/maps/site-1.xml",
		"https://cdn.example.com/maps/site-2.xml",
	}
	if diff := cmp.Diff(want, summary.Locations); diff != "" {
		t.Fatalf("unexpected index locations (-want +got):\n%s", diff)
	}
	if _, err := gen.IndexString(); err == nil {
		t.Fatalf("expected IndexString to fail in file mode")
	}
}

func TestBuildIndex_BadLastMod(t *testing.T) {
	gen := New(Options{OutputMode: OutputString})
	_, err := gen.BuildIndex("https://example.com/", "qwerty")
	var dateErr *ErrDateParse
	if !errors.As(err, &dateErr) {
		t.Fatalf("expected ErrDateParse, got %v", err)
	}
}
