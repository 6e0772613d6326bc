// Package preflight provides readiness checks for the filesystem paths a
// build depends on.
//
// The CLI "wpmeta check" command runs RunAll and prints one row per check.
// Checks for optional features (ledger, log file) are skipped when the
// feature is disabled.
package preflight
