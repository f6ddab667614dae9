package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mangarchive/internal/config"
	"mangarchive/internal/testsupport"
)

const testTitleURL = "https://mangadex.org/title/abc-123/one-piece"

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	fake       *testsupport.FakeMangaDex
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	fake := testsupport.NewFakeMangaDex(t,
		[]testsupport.FeedEntry{
			{ID: "chap-0002", Type: "chapter", Language: "en", Chapter: "2"},
			{ID: "chap-0001-de", Type: "chapter", Language: "de", Chapter: "1"},
			{ID: "chap-0001", Type: "chapter", Language: "en", Chapter: "1"},
		},
		map[string]testsupport.FakeChapter{
			"chap-0001": {Hash: "h1", Pages: []string{"x1.png", "x2.png"}},
			"chap-0002": {Hash: "h2", Pages: []string{"y1.jpg"}},
		},
	)

	cfg := testsupport.NewConfig(t, testsupport.WithAPI(fake.URL()))
	t.Setenv("HOME", filepath.Join(testsupport.BaseDir(cfg), "home"))
	t.Setenv("MANGARCHIVE_NTFY_TOPIC", "")
	t.Setenv("MANGARCHIVE_PROXY", "")
	t.Setenv("MANGARCHIVE_LIBRARY_DIR", "")

	configPath := filepath.Join(testsupport.BaseDir(cfg), "config.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{cfg: cfg, configPath: configPath, fake: fake}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(`[paths]
library_dir = %q
state_dir = %q
log_dir = %q

[api]
base_url = %q
uploads_url = %q

[pacing]
listing_delay_seconds = 0
metadata_delay_seconds = 0
asset_delay_seconds = 0

[render]
enabled = %t
command = %q

[logging]
level = "debug"
retention_days = 0
`,
		cfg.Paths.LibraryDir,
		cfg.Paths.StateDir,
		cfg.Paths.LogDir,
		cfg.API.BaseURL,
		cfg.API.UploadsURL,
		cfg.Render.Enabled,
		cfg.Render.Command,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
