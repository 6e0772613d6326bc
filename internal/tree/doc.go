// Package tree walks a wallpaper source tree and resolves the authors in
// scope for every directory that carries a manifest.
//
// Traversal is depth-first pre-order with children in lexical order, so a
// directory's context is always resolved before any of its descendants. The
// inherited context is threaded down explicitly: each pending directory is
// queued together with the nearest ancestor context, and directories without
// a manifest pass that context through unchanged.
package tree
