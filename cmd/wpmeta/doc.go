// Package main hosts the wpmeta CLI entrypoint and command graph.
//
// The Cobra-based command tree resolves configuration once, applies command
// line overrides, and hands the work to the internal packages: build runs the
// pipeline, inspect walks a source tree without staging anything, check runs
// the preflight checks, history reads the build ledger and config scaffolds
// or validates the configuration file.
package main
