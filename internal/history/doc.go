// Package history keeps a SQLite ledger of archive runs and the chapters each
// run processed.
//
// The ledger is an audit trail only. The pipeline never reads it to decide
// whether work is needed; artifact presence on disk remains the sole source of
// truth for resumption.
package history
