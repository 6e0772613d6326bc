// Package logging assembles the structured slog loggers used by wpmeta.
//
// It owns the console and JSON handlers, level parsing and output routing,
// the standardized field keys, and a run-scoped context so every record
// emitted during one build carries the same run_id. NewNop returns a
// discarding logger for tests and optional wiring.
package logging
