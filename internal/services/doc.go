// Package services defines shared utilities consumed by the pipeline stages
// and external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, collection names, chapter keys, and
//     stage names for logging and tracing.
//   - Structured error markers plus the Wrap helper that classify failures
//     into usage, transport, malformed-data, and external-tool errors.
//
// Use these helpers when wiring new stage logic so failure reporting and exit
// codes stay uniform across the pipeline.
package services
