// Package engine runs the per-query resolution pipeline.
//
// # Pipeline
//
// For one query's hits, a Pipeline applies, in order:
//
//   - the optional CATH rule set (boundary and bitscore rewrites)
//   - the score, coverage and contract filters
//   - boundary trimming and minimum segment length pruning
//   - score adjustment
//   - redundant-hit pruning (optimal mode only)
//   - the architecture optimizer
//
// A Pipeline holds no per-query state: every call owns its hits, conflict
// index and scan state, so distinct queries can be resolved concurrently.
// Only the run Summary counters and the QueryGate are shared, both safe for
// concurrent use.
//
// # Pool
//
// Pool runs a Pipeline on a fixed set of goroutines. Submit blocks while the
// queue is full and hands back a channel carrying that query's Result, so
// callers can emit results in submission order.
package engine
