// Package logging assembles structured slog loggers and formatting helpers used
// across mangarchive.
//
// It owns the console and JSON handlers, the per-run log file that mirrors
// console output, and log retention. Context helpers tag lines with the run ID,
// collection, chapter, and pipeline stage carried on the context. The package
// also provides a no-op logger for tests and wiring code that cannot fail.
package logging
