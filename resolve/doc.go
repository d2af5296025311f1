// Package resolve selects, for one query, the conflict-free subset of hits
// with the maximal total effective score.
//
// # Optimal
//
// Optimal scans hits in order of their trimmed stop and keeps, for each stop
// position p, the best score achievable by hits ending at or before p. A
// discontinuous hit leaves a gap that later (shorter-stopping) hits may fill,
// so each scan is parameterised by a mask of residues that must stay free.
// Scans are created lazily, one per distinct mask, and extended only as far as
// they are read. For inputs without discontinuous hits only the empty mask is
// ever scanned and the cost is O(n log n).
//
// Selecting multi-segment intervals is NP-hard in general; the number of masks,
// and so the running time, grows with the way discontinuous hits interleave.
//
// # NaiveGreedy
//
// NaiveGreedy accepts hits in descending effective score order whenever they
// do not conflict with anything already accepted. It is deterministic but not
// optimal and exists for comparison.
package resolve
