package resolve

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hupe1980/domarch/model"
)

// ErrUnknownMode is returned for an unrecognised mode name or value.
var ErrUnknownMode = errors.New("resolve: unknown mode")

// Mode selects the resolution algorithm.
type Mode int

const (
	// Optimal finds a maximum-score architecture.
	Optimal Mode = iota
	// NaiveGreedy accepts hits greedily by descending score.
	NaiveGreedy
)

func (m Mode) String() string {
	switch m {
	case Optimal:
		return "optimal"
	case NaiveGreedy:
		return "naive-greedy"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode parses a mode name.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "optimal":
		return Optimal, nil
	case "naive-greedy", "naive_greedy", "greedy":
		return NaiveGreedy, nil
	default:
		return 0, fmt.Errorf("%w %q", ErrUnknownMode, s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(b []byte) error {
	parsed, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Resolve builds the architecture for one query's hits using mode.
// hits must be validated, trimmed and scored; none may be empty.
func Resolve(mode Mode, queryID string, hits []model.ResolvedHit) model.Architecture {
	var selected []model.ResolvedHit
	switch mode {
	case NaiveGreedy:
		selected = Greedy(hits)
	default:
		selected = Best(hits)
	}
	return model.NewArchitecture(queryID, selected)
}
