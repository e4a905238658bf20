package main

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	gositemapgenerator "github.com/kotylevskiy/go-sitemap-generator"
)

func runCommand(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCommand(strings.NewReader(stdin), &stdout, &stderr)
	cmd.SetArgs(args)
	cmd.SetOut(&stderr)
	cmd.SetErr(&stderr)
	err := cmd.Execute()
	return stdout.String(), err
}

func TestGenerate_Files(t *testing.T) {
	dir := t.TempDir()
	robots := filepath.Join(dir, "robots.txt")
	if err := os.WriteFile(robots, []byte("User-agent: *\nDisallow: /admin\n"), 0o644); err != nil {
		t.Fatalf("write robots failed: %v", err)
	}
	out := filepath.Join(dir, "public")
	metricsFile := filepath.Join(dir, "sitemap.prom")

	input := "/a\t0.9\n/admin/login\n/b\n/c\n/d.pdf\n"
	_, err := runCommand(t, input,
		"--domain", "https://example.com",
		"--output", out,
		"--per-document", "2",
		"--index-loc", "https://example.com/",
		"--index-lastmod", "2024-01-01",
		"--robots", robots,
		"--exclude", `\.pdf$`,
		"--metrics-file", metricsFile,
	)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	first, err := gositemapgenerator.InspectFile(filepath.Join(out, "sitemap.xml"))
	if err != nil {
		t.Fatalf("inspect failed: %v", err)
	}
	second, err := gositemapgenerator.InspectFile(filepath.Join(out, "sitemap-1.xml"))
	if err != nil {
		t.Fatalf("inspect failed: %v", err)
	}
	if first.Entries != 2 || second.Entries != 1 {
		t.Fatalf("expected 2+1 entries, got %d+%d", first.Entries, second.Entries)
	}
	index, err := gositemapgenerator.InspectFile(filepath.Join(out, "sitemap-index.xml"))
	if err != nil {
		t.Fatalf("inspect index failed: %v", err)
	}
	if index.Entries != 2 || index.Locations[1] != "https://example.com/sitemap-1.xml" {
		t.Fatalf("unexpected index %+v", index)
	}

	metrics, err := os.ReadFile(metricsFile)
	if err != nil {
		t.Fatalf("read metrics failed: %v", err)
	}
	if !strings.Contains(string(metrics), "sitemap_generator_items_total 3") {
		t.Fatalf("expected item counter in metrics, got:\n%s", metrics)
	}
}

func TestGenerate_Stdout(t *testing.T) {
	stdout, err := runCommand(t, "/a\n/b\n", "--domain", "https://example.com", "--stdout", "--index-loc", "https://example.com/")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if !strings.Contains(stdout, "<loc>https://example.com/a</loc>") {
		t.Fatalf("expected urlset on stdout, got:\n%s", stdout)
	}
	if !strings.Contains(stdout, "<sitemapindex") {
		t.Fatalf("expected index on stdout, got:\n%s", stdout)
	}
}

func TestGenerate_ConfigFileWithFlagOverride(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "pages.txt")
	if err := os.WriteFile(input, []byte("/x\n/y\n"), 0o644); err != nil {
		t.Fatalf("write input failed: %v", err)
	}
	cfgPath := filepath.Join(dir, "sitemap.yaml")
	cfgBody := "domain: https://from-file.example\noutput_path: " + filepath.Join(dir, "out") + "\nbase_filename: pages\n"
	if err := os.WriteFile(cfgPath, []byte(cfgBody), 0o644); err != nil {
		t.Fatalf("write config failed: %v", err)
	}

	if _, err := runCommand(t, "", "--config", cfgPath, "--domain", "https://flag.example", input); err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	summary, err := gositemapgenerator.InspectFile(filepath.Join(dir, "out", "pages.xml"))
	if err != nil {
		t.Fatalf("inspect failed: %v", err)
	}
	if summary.Locations[0] != "https://flag.example/x" {
		t.Fatalf("expected flag domain to win, got %s", summary.Locations[0])
	}
}

func TestGenerate_PatternWithComma(t *testing.T) {
	stdout, err := runCommand(t, "/p\n/ppp\n/pppp\n", "--stdout", "--domain", "https://example.com",
		"--include", "^/p{1,3}$", "--exclude", "^/x{2,}$")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	for _, loc := range []string{"https://example.com/p", "https://example.com/ppp"} {
		if !strings.Contains(stdout, "<loc>"+loc+"</loc>") {
			t.Fatalf("expected %s in output, got:\n%s", loc, stdout)
		}
	}
	if strings.Contains(stdout, "/pppp<") {
		t.Fatalf("expected /pppp to be filtered out, got:\n%s", stdout)
	}
}

func TestGenerate_BadInput(t *testing.T) {
	_, err := runCommand(t, "/a\tnot-a-number\n", "--stdout")
	if err == nil || !strings.Contains(err.Error(), "line 1") {
		t.Fatalf("expected line error, got %v", err)
	}
}

func TestVerify(t *testing.T) {
	dir := t.TempDir()
	gen := gositemapgenerator.New(gositemapgenerator.Options{OutputPath: dir})
	_ = gen.Add("/a")
	if err := gen.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	good := filepath.Join(dir, "sitemap.xml")
	bad := filepath.Join(dir, "bad.xml")
	if err := os.WriteFile(bad, []byte("<urlset>"), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	stdout, err := runCommand(t, "", "verify", good)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if !strings.HasPrefix(stdout, "urlset\t1\t") {
		t.Fatalf("unexpected verify output %q", stdout)
	}

	stdout, err = runCommand(t, "", "verify", good, bad)
	if err == nil {
		t.Fatalf("expected verify to fail for %s", bad)
	}
	if !strings.Contains(stdout, "invalid\t-\t"+bad) {
		t.Fatalf("expected invalid line for %s, got %q", bad, stdout)
	}
}

func TestResolveLogLevel(t *testing.T) {
	t.Setenv("GO_SITEMAP_GENERATOR_LOG_LEVEL", "")
	cases := map[string]slog.Level{
		"":        slog.LevelError,
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for input, want := range cases {
		got, err := resolveLogLevel(input)
		if err != nil || got != want {
			t.Fatalf("resolveLogLevel(%q) = %v, %v; want %v", input, got, err, want)
		}
	}
	if _, err := resolveLogLevel("loud"); err == nil {
		t.Fatalf("expected error for invalid level")
	}

	t.Setenv("GO_SITEMAP_GENERATOR_LOG_LEVEL", "debug")
	if got, _ := resolveLogLevel(""); got != slog.LevelDebug {
		t.Fatalf("expected env level debug, got %v", got)
	}
}
