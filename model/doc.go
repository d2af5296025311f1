// Package model defines the core types shared by the resolution pipeline.
//
// # Input Types
//
//   - Segment: an inclusive residue range
//   - Hit: a scored candidate domain match, possibly discontinuous
//   - ScoreKind: how a hit's raw score is interpreted
//
// # Output Types
//
//   - ResolvedSegment: a segment together with its trimmed boundaries
//   - ResolvedHit: a hit whose surviving segments have been trimmed and scored
//   - Architecture: the conflict-free, maximum-score selection for one query
package model
