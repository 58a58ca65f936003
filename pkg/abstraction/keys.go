package abstraction

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/behrlich/postflop-solver/pkg/cards"
)

// Coords locates an abstract postflop state
type Coords struct {
	Street    Street
	Strength  int
	Pressure  int
	SPR       int
	Wetness   int
	Position  int
	Aggressor int
}

// Validate checks every coordinate against its bucket range
func (c Coords) Validate() error {
	if !c.Street.Postflop() {
		return fmt.Errorf("street %s has no postflop state", c.Street)
	}
	checks := []struct {
		name  string
		value int
		n     int
	}{
		{"strength", c.Strength, StrengthBuckets},
		{"pressure", c.Pressure, PressureBuckets},
		{"spr", c.SPR, SPRBuckets},
		{"wetness", c.Wetness, WetnessBuckets},
		{"position", c.Position, PositionBuckets},
		{"aggressor", c.Aggressor, AggressorBuckets},
	}
	for _, ch := range checks {
		if ch.value < 0 || ch.value >= ch.n {
			return fmt.Errorf("%s bucket %d out of range [0,%d)", ch.name, ch.value, ch.n)
		}
	}
	return nil
}

// Key returns the full state key "<street>|s<S>|p<P>|r<R>|w<W>|i<I>|a<A>"
func (c Coords) Key() string {
	return fmt.Sprintf("%s|i%d|a%d", c.LegacyKey(), c.Position, c.Aggressor)
}

// LegacyKey returns the key without position and aggressor, as written by
// older tables
func (c Coords) LegacyKey() string {
	return fmt.Sprintf("%s|s%d|p%d|r%d|w%d", c.Street, c.Strength, c.Pressure, c.SPR, c.Wetness)
}

// WithAggressor returns a copy with the aggressor coordinate replaced
func (c Coords) WithAggressor(a int) Coords {
	c.Aggressor = a
	return c
}

// ParseStateKey parses a full or legacy state key. Legacy keys report
// legacy=true and leave position and aggressor at zero.
func ParseStateKey(key string) (c Coords, legacy bool, err error) {
	parts := strings.Split(key, "|")
	if len(parts) != 5 && len(parts) != 7 {
		return Coords{}, false, fmt.Errorf("state key %q: want 5 or 7 fields, got %d", key, len(parts))
	}

	c.Street, err = ParseStreet(parts[0])
	if err != nil || !c.Street.Postflop() {
		return Coords{}, false, fmt.Errorf("state key %q: bad street %q", key, parts[0])
	}

	fields := []struct {
		prefix byte
		dst    *int
	}{
		{'s', &c.Strength},
		{'p', &c.Pressure},
		{'r', &c.SPR},
		{'w', &c.Wetness},
		{'i', &c.Position},
		{'a', &c.Aggressor},
	}
	for i, part := range parts[1:] {
		v, err := parseField(part, fields[i].prefix)
		if err != nil {
			return Coords{}, false, fmt.Errorf("state key %q: %w", key, err)
		}
		*fields[i].dst = v
	}

	if err := c.Validate(); err != nil {
		return Coords{}, false, fmt.Errorf("state key %q: %w", key, err)
	}
	return c, len(parts) == 5, nil
}

func parseField(part string, prefix byte) (int, error) {
	if len(part) < 2 || part[0] != prefix {
		return 0, fmt.Errorf("field %q: want prefix %q", part, prefix)
	}
	v, err := strconv.Atoi(part[1:])
	if err != nil {
		return 0, fmt.Errorf("field %q: %w", part, err)
	}
	return v, nil
}

// BoardKey renders the board as card codes sorted byte-wise and joined by '-'
func BoardKey(board []cards.Card) string {
	codes := cards.Codes(board)
	sort.Strings(codes)
	return strings.Join(codes, "-")
}

// NormalizeBoardCode canonicalizes a single card code to upper-case rank and
// lower-case suit, e.g. "as" -> "As"
func NormalizeBoardCode(code string) (string, error) {
	c, err := cards.ParseCard(code)
	if err != nil {
		return "", err
	}
	return c.String(), nil
}

// SpotKey addresses an override spot: a concrete board plus the non-strength
// coordinates. Players is zero for the two-player river format and the
// active player count for the multiway format.
type SpotKey struct {
	Street    Street
	Board     string
	Players   int
	Pressure  int
	SPR       int
	Position  int
	Aggressor int
}

// RiverSpotKey builds a two-player river spot key
func RiverSpotKey(board []cards.Card, pressure, spr, position, aggressor int) SpotKey {
	return SpotKey{
		Street:    River,
		Board:     BoardKey(board),
		Pressure:  pressure,
		SPR:       spr,
		Position:  position,
		Aggressor: aggressor,
	}
}

// MultiwaySpotKey builds a multiway spot key for a turn or river board
func MultiwaySpotKey(street Street, board []cards.Card, players, pressure, spr, position, aggressor int) SpotKey {
	return SpotKey{
		Street:    street,
		Board:     BoardKey(board),
		Players:   players,
		Pressure:  pressure,
		SPR:       spr,
		Position:  position,
		Aggressor: aggressor,
	}
}

// Multiway reports whether the key uses the multiway format
func (k SpotKey) Multiway() bool {
	return k.Players > 0
}

// WithAggressor returns a copy with the aggressor coordinate replaced
func (k SpotKey) WithAggressor(a int) SpotKey {
	k.Aggressor = a
	return k
}

// String renders "river|b<board>|p<P>|r<R>|i<I>|a<A>" or
// "<street>|b<board>|n<N>|p<P>|r<R>|i<I>|a<A>"
func (k SpotKey) String() string {
	if k.Multiway() {
		return fmt.Sprintf("%s|b%s|n%d|p%d|r%d|i%d|a%d",
			k.Street, k.Board, k.Players, k.Pressure, k.SPR, k.Position, k.Aggressor)
	}
	return fmt.Sprintf("%s|b%s|p%d|r%d|i%d|a%d",
		k.Street, k.Board, k.Pressure, k.SPR, k.Position, k.Aggressor)
}

// ParseSpotKey parses either spot key format
func ParseSpotKey(key string) (SpotKey, error) {
	parts := strings.Split(key, "|")
	if len(parts) != 6 && len(parts) != 7 {
		return SpotKey{}, fmt.Errorf("spot key %q: want 6 or 7 fields, got %d", key, len(parts))
	}

	var k SpotKey
	var err error
	k.Street, err = ParseStreet(parts[0])
	if err != nil || !k.Street.Postflop() {
		return SpotKey{}, fmt.Errorf("spot key %q: bad street %q", key, parts[0])
	}
	if !strings.HasPrefix(parts[1], "b") {
		return SpotKey{}, fmt.Errorf("spot key %q: missing board field", key)
	}
	k.Board = parts[1][1:]

	rest := parts[2:]
	if len(parts) == 7 {
		if k.Players, err = parseField(parts[2], 'n'); err != nil {
			return SpotKey{}, fmt.Errorf("spot key %q: %w", key, err)
		}
		if k.Players < 2 {
			return SpotKey{}, fmt.Errorf("spot key %q: player count %d", key, k.Players)
		}
		rest = parts[3:]
	}

	dsts := []struct {
		prefix byte
		dst    *int
	}{
		{'p', &k.Pressure},
		{'r', &k.SPR},
		{'i', &k.Position},
		{'a', &k.Aggressor},
	}
	for i, part := range rest {
		if *dsts[i].dst, err = parseField(part, dsts[i].prefix); err != nil {
			return SpotKey{}, fmt.Errorf("spot key %q: %w", key, err)
		}
	}
	return k, nil
}
