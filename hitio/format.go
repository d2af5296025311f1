package hitio

import (
	"fmt"
	"strings"

	"github.com/hupe1980/domarch/model"
)

// InputFormat identifies a hit file layout.
type InputFormat int

const (
	// RawWithScores is "query match score segments" with a higher-is-better score.
	RawWithScores InputFormat = iota
	// RawWithEvalues is "query match evalue segments".
	RawWithEvalues
	// Domtblout is HMMER's per-domain table.
	Domtblout
)

func (f InputFormat) String() string {
	switch f {
	case RawWithScores:
		return "raw_with_scores"
	case RawWithEvalues:
		return "raw_with_evalues"
	case Domtblout:
		return "domtblout"
	default:
		return fmt.Sprintf("InputFormat(%d)", int(f))
	}
}

// DefaultKind returns the score kind hits of this format carry by default.
func (f InputFormat) DefaultKind() model.ScoreKind {
	switch f {
	case RawWithEvalues:
		return model.FullEvalue
	case Domtblout:
		return model.Bitscore
	default:
		return model.RawScore
	}
}

// ParseInputFormat parses an input format name. Hyphens and underscores are
// interchangeable.
func ParseInputFormat(s string) (InputFormat, error) {
	switch normalize(s) {
	case "raw_with_scores", "raw":
		return RawWithScores, nil
	case "raw_with_evalues":
		return RawWithEvalues, nil
	case "domtblout", "hmmer_domtblout":
		return Domtblout, nil
	default:
		return 0, fmt.Errorf("%w %q", ErrUnknownFormat, s)
	}
}

// OutputFormat identifies an architecture output layout.
type OutputFormat int

const (
	// Text writes one row per selected hit.
	Text OutputFormat = iota
	// JSON writes one object per architecture.
	JSON
	// Summary writes run counts only.
	Summary
)

func (f OutputFormat) String() string {
	switch f {
	case Text:
		return "text"
	case JSON:
		return "json"
	case Summary:
		return "summary"
	default:
		return fmt.Sprintf("OutputFormat(%d)", int(f))
	}
}

// ParseOutputFormat parses an output format name.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch normalize(s) {
	case "text", "hits_text":
		return Text, nil
	case "json":
		return JSON, nil
	case "summary":
		return Summary, nil
	default:
		return 0, fmt.Errorf("%w %q", ErrUnknownFormat, s)
	}
}

func normalize(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
}
