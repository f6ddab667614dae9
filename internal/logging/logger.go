package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"mangarchive/internal/config"
)

// Options describes logger construction parameters.
type Options struct {
	Level       string
	Format      string
	Writer      io.Writer
	OutputPaths []string
	Development bool
}

// New constructs a slog logger using the provided options. When Writer is set
// it takes precedence over OutputPaths.
func New(opts Options) (*slog.Logger, error) {
	level := parseLevel(opts.Level)
	levelVar := new(slog.LevelVar)
	levelVar.Set(level)

	writer := opts.Writer
	if writer == nil {
		var err error
		writer, err = openWriters(defaultSlice(opts.OutputPaths, []string{"stdout"}))
		if err != nil {
			return nil, err
		}
	}

	addSource := opts.Development || level <= slog.LevelDebug

	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format == "" {
		format = "console"
	}

	switch format {
	case "json":
		return slog.New(newJSONHandler(writer, levelVar, addSource)), nil
	case "console":
		return slog.New(newPrettyHandler(writer, levelVar, addSource)), nil
	default:
		return nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}
}

// RunLog describes the logger built for one archive run.
type RunLog struct {
	Logger *slog.Logger
	// Path is the per-run JSON log file, empty when no log directory is configured.
	Path  string
	close func() error
}

// Close releases the per-run log file.
func (r *RunLog) Close() error {
	if r == nil || r.close == nil {
		return nil
	}
	return r.close()
}

// NewFromConfig creates a run logger using application config. Console output
// goes to stdout in the configured format; a JSON copy of every record lands in
// mangarchive-<runID>.log under the configured log directory.
func NewFromConfig(cfg *config.Config, runID string) (*RunLog, error) {
	return NewFromConfigWriter(cfg, runID, os.Stdout)
}

// NewFromConfigWriter is NewFromConfig with console output sent to w.
func NewFromConfigWriter(cfg *config.Config, runID string, w io.Writer) (*RunLog, error) {
	if cfg == nil {
		logger, err := New(Options{Level: "info", Format: "console", Writer: w})
		if err != nil {
			return nil, err
		}
		return &RunLog{Logger: logger}, nil
	}

	console, err := New(Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format, Writer: w})
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.Paths.LogDir) == "" || strings.TrimSpace(runID) == "" {
		return &RunLog{Logger: console}, nil
	}

	if err := os.MkdirAll(cfg.Paths.LogDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure log directory: %w", err)
	}
	logPath := filepath.Join(cfg.Paths.LogDir, RunLogFileName(runID))
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", logPath, err)
	}

	fileLevel := new(slog.LevelVar)
	fileLevel.Set(slog.LevelDebug)
	logger := TeeLogger(console, newJSONHandler(file, fileLevel, false))

	CleanupOldLogs(logger, cfg.Logging.RetentionDays, RetentionTarget{
		Dir:     cfg.Paths.LogDir,
		Pattern: "mangarchive-*.log",
		Exclude: []string{logPath},
	})

	return &RunLog{Logger: logger, Path: logPath, close: file.Close}, nil
}

// RunLogFileName returns the per-run log file name for runID.
func RunLogFileName(runID string) string {
	return "mangarchive-" + runID + ".log"
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func defaultSlice(value []string, fallback []string) []string {
	if len(value) == 0 {
		return append([]string(nil), fallback...)
	}
	return append([]string(nil), value...)
}

func openWriters(paths []string) (io.Writer, error) {
	seen := map[string]struct{}{}
	var writers []io.Writer

	for _, path := range paths {
		trimmed := strings.TrimSpace(path)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}

		switch trimmed {
		case "stdout":
			writers = append(writers, os.Stdout)
		case "stderr":
			writers = append(writers, os.Stderr)
		default:
			if dir := filepath.Dir(trimmed); dir != "." && dir != "" {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return nil, err
				}
			}
			file, err := os.OpenFile(trimmed, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o664)
			if err != nil {
				return nil, fmt.Errorf("open log file %s: %w", trimmed, err)
			}
			writers = append(writers, file)
		}
	}

	switch len(writers) {
	case 0:
		return os.Stdout, nil
	case 1:
		return writers[0], nil
	default:
		return io.MultiWriter(writers...), nil
	}
}
