// Package logs reads the per-run JSON log files written under the log
// directory.
//
// It finds the newest run log, returns the last N lines with bounded memory,
// follows a file another process is still appending to, and condenses JSON
// records into one-line summaries for `mangarchive logs`.
package logs
