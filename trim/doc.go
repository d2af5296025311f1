// Package trim computes how much to shave off each end of a segment before
// overlaps are checked.
//
// A Spec{FullLength: L, TotalTrimming: M} trims nothing from a single-residue
// segment, grows linearly to M at length L and stays at M beyond it. The
// smaller half of the total comes off the start; the larger half off the stop.
//
//	spec, _ := trim.New(30, 10)
//	start, stop, _ := spec.Copy(101, 200) // (106, 195)
package trim
