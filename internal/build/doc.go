// Package build runs the wallpaper pipeline end to end.
//
// A build walks the source tree, resolves authors per manifest, rejects
// duplicate ids, normalizes every wallpaper entry into the staging root with
// a bounded worker pool, flattens the results into one collection and hands
// it to the configured generators. The staging root is locked for the whole
// run and every run is recorded in the ledger when one is configured.
package build
