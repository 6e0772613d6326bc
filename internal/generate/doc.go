// Package generate renders desktop-environment metadata for staged wallpapers.
//
// Generators consume the normalized collection produced by the build pipeline
// and write their documents next to the staged images: GNOME background
// property lists under usr/share/gnome-background-properties and KDE plugin
// metadata (plus a preview screenshot) under usr/share/wallpapers/<id>.
package generate
