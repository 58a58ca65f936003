package abstraction

import (
	"fmt"
	"strings"
)

// Street is a betting round
type Street uint8

const (
	Preflop Street = iota
	Flop
	Turn
	River
	Showdown
)

// PostflopStreets lists the streets the strategy table covers, in build order
var PostflopStreets = []Street{Flop, Turn, River}

// String returns the lower-case street name used in keys
func (s Street) String() string {
	switch s {
	case Preflop:
		return "preflop"
	case Flop:
		return "flop"
	case Turn:
		return "turn"
	case River:
		return "river"
	case Showdown:
		return "showdown"
	default:
		return "unknown"
	}
}

// Postflop reports whether the street is flop, turn or river
func (s Street) Postflop() bool {
	return s == Flop || s == Turn || s == River
}

// BoardSize returns the number of community cards dealt by the street
func (s Street) BoardSize() int {
	switch s {
	case Flop:
		return 3
	case Turn:
		return 4
	case River, Showdown:
		return 5
	default:
		return 0
	}
}

// MaxWetness is the highest wetness a street's board can meaningfully reach.
// A flop has at most three suited cards so it tops out at 2.
func (s Street) MaxWetness() int {
	if s == Flop {
		return 2
	}
	return WetnessBuckets - 1
}

// ParseStreet parses a street name, ignoring case
func ParseStreet(s string) (Street, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "preflop":
		return Preflop, nil
	case "flop":
		return Flop, nil
	case "turn":
		return Turn, nil
	case "river":
		return River, nil
	case "showdown":
		return Showdown, nil
	default:
		return 0, fmt.Errorf("unknown street: %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler
func (s Street) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (s *Street) UnmarshalText(text []byte) error {
	parsed, err := ParseStreet(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
