// Package domarch resolves domain architectures from sequence-to-model hits.
//
// A search of a protein against a library of domain models (HMMER, PRC and
// similar tools) reports many hits per query, most of them overlapping. domarch
// picks, for every query, the set of non-overlapping hits with the best total
// score: the query's domain architecture.
//
// # Quick Start
//
//	eng, _ := domarch.New(
//	    domarch.WithTrim(trim.MustNew(150, 20)),
//	    domarch.WithLogLevel(slog.LevelInfo),
//	)
//	defer eng.Close()
//
//	arch, _ := eng.Resolve(ctx, "P12345", hits)
//	for _, h := range arch.Selected {
//	    fmt.Println(h.Hit.MatchID, h.Hit.RawScore, model.FormatSegments(h.Boundaries()))
//	}
//
// # Pipeline
//
// Each query's hits run through the same stages:
//
//   - optional CATH-Gene3D rules (discontinuous-domain segments, bitscore penalty)
//   - score, query and HMM coverage filtering
//   - boundary trimming and minimum segment length
//   - score adjustment for length and score preferences
//   - redundant-hit pruning (optimal mode)
//   - optimal or naive-greedy architecture selection
//
// Two hits conflict if their trimmed segments share a residue. Trimming
// only shrinks segments, so hits that overlap slightly at their edges can both
// be chosen.
//
// # Streaming
//
// Hit files are usually grouped by query. ResolveStream consumes such a stream
// with bounded memory and emits architectures in input order; GroupByQuery
// buffers ungrouped input first. ResolveBatch resolves already-grouped batches
// in parallel.
package domarch
