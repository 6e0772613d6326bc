// Package ledger records build history in SQLite.
//
// Each build is a run row keyed by its run id; the files staged by a
// successful build are stored per wallpaper so `wpmeta history` can show
// what a package contained. Schema changes live in embedded, ordered SQL
// migrations applied on Open.
package ledger
