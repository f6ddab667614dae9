package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"mangarchive/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Pacing delays are zeroed and rendering is disabled unless an option
// re-enables it.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.LibraryDir = filepath.Join(base, "library")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Pacing = config.Pacing{}
	cfgVal.Render.Enabled = false
	cfgVal.Logging.RetentionDays = 0

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithAPI points both the API and uploads hosts at baseURL.
func WithAPI(baseURL string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.API.BaseURL = baseURL
		b.cfg.API.UploadsURL = baseURL
	}
}

// WithRender enables rendering with the given converter command.
func WithRender(command string, args ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Render.Enabled = true
		b.cfg.Render.Command = command
		b.cfg.Render.Args = args
	}
}

// converterStub writes "epub:<manifest>" to the path following -o, failing
// when the manifest (last argument) does not exist. It answers --version.
const converterStub = `#!/bin/sh
[ "$1" = "--version" ] && { echo "stub converter 0.0.0"; exit 0; }
out=""
last=""
while [ $# -gt 0 ]; do
  if [ "$1" = "-o" ]; then out="$2"; shift; fi
  last="$1"
  shift
done
[ -f "$last" ] || { echo "manifest $last not found" >&2; exit 1; }
[ -n "$out" ] || exit 0
printf 'epub:%s' "$last" > "$out"
`

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, the default renderer binary is
// stubbed. Stubs behave like a document converter that honours -o.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{config.Default().Render.Command}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		for _, name := range names {
			target := filepath.Join(binDir, name)
			if err := os.WriteFile(target, []byte(converterStub), 0o755); err != nil {
				b.t.Fatalf("write stub %s: %v", name, err)
			}
		}

		b.t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.LibraryDir)
}
