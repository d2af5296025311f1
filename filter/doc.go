// Package filter discards hits that cannot contribute to a valid architecture.
//
// Filtering is silent: dropped hits are classified by a Reason and counted in a
// Summary, never returned as errors. Only a contradictory Spec is an error,
// reported once by Validate before any hit is processed.
package filter
