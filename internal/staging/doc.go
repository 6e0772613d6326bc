// Package staging owns the on-disk layout of the staging root: the canonical
// directory names, the advisory lock that serializes builds, pruning of stale
// staged images, and listing or removing whole wallpaper directories.
package staging
