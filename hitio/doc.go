// Package hitio reads hit files and writes resolved architectures.
//
// # Input formats
//
//   - raw_with_scores: "query_id match_id score starts-stops" per line
//   - raw_with_evalues: the same layout with an e-value in the score column
//   - domtblout: HMMER --domtblout tables, using the envelope as the segment
//
// Segments are comma separated inclusive ranges, e.g. "37-124,239-331".
// Blank lines and lines starting with '#' are skipped.
//
// # Output formats
//
//   - text: a "#FIELDS query-id match-id score boundaries resolved" table
//   - json: one JSON object per architecture
//   - summary: run counts, written when the writer is closed
package hitio
