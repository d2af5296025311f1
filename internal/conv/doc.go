// Package conv provides checked integer conversions for residue positions,
// which are stored as uint32 in occupancy bitmaps.
package conv
