// Package faults defines the error taxonomy shared by the wallpaper pipeline.
//
// Each failure is tagged with one of the exported marker errors so callers can
// classify it with errors.Is while the message still names the directory,
// manifest or wallpaper id responsible. Causes stay wrapped, so checks against
// package-level sentinels (for example wallpaper.ErrFileNotFound) keep working.
package faults
