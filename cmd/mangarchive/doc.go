// Package main hosts the mangarchive CLI entrypoint and command graph.
//
// The root command (or its "fetch" alias) archives one collection: it parses
// the title URL and language, takes the per-collection lock, opens the run
// ledger and per-run log, and hands off to internal/archiver. The remaining
// commands are read-only views (status, history), diagnostics (doctor,
// test-notify), and configuration scaffolding.
//
// Keep this package lean: behaviour belongs in the internal packages and is
// only surfaced here through flags and output formatting.
package main
