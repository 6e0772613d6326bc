// Package wallpaper turns raw manifest entries into normalized wallpapers.
//
// Normalizer resolves the license, probes every image file for its size and
// container format, classifies it as a normal or dark variant, and stages it
// under <staging>/usr/share/wallpapers/<id>/contents. Flatten and Collection
// gather the per-directory results in discovery order for the generators.
package wallpaper
