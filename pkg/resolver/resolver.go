// Package resolver maps live postflop states onto the precomputed strategy
// table and imported override datasets.
package resolver

import (
	"math"

	"github.com/behrlich/postflop-solver/pkg/abstraction"
	"github.com/behrlich/postflop-solver/pkg/cards"
	"github.com/behrlich/postflop-solver/pkg/dataset"
	"github.com/behrlich/postflop-solver/pkg/override"
)

// Provenance strings reported in Advice.Source
const (
	SourceUnavailable      = "postflop abstraction unavailable"
	SourceTable            = "local real-card MCCFR abstraction"
	SourceTableMiss        = "postflop abstraction missing state"
	SourceRiverSolver      = "third-party river subgame solver"
	SourceMultiwaySolver   = "third-party multiway subgame solver"
	SourceMultiwayRiver    = "third-party river subgame solver (legacy multiway fallback)"
	SourceMultiwayMiss     = "postflop multiway override missing state"
	SourceMultiwayDisabled = "postflop multiway abstraction disabled (turn/river override only)"
)

// Query is a live decision point
type Query struct {
	Street abstraction.Street `json:"street"`
	// Equity is the hero's equity as a fraction in [0, 1]
	Equity        float64               `json:"equity"`
	ToCall        float64               `json:"toCall"`
	Pot           float64               `json:"pot"`
	MinRaise      float64               `json:"minRaise"`
	HeroStack     float64               `json:"heroStack"`
	VillainStack  float64               `json:"villainStack"`
	Board         []cards.Card          `json:"board"`
	InPosition    bool                  `json:"inPosition"`
	ActivePlayers int                   `json:"activePlayers,omitempty"`
	ProfileKey    string                `json:"profileKey,omitempty"`
	Aggressor     abstraction.Aggressor `json:"aggressor"`
	ActionPath    []string              `json:"actionPath,omitempty"`

	DisableMultiwayOverrides bool `json:"disableMultiwayOverrides,omitempty"`
}

// Coords classifies the query into table coordinates
func (q Query) Coords() abstraction.Coords {
	return abstraction.Coords{
		Street:    q.Street,
		Strength:  abstraction.StrengthBucket(q.Equity),
		Pressure:  abstraction.PressureBucket(q.ToCall, q.Pot),
		SPR:       abstraction.SPRBucket(math.Min(q.HeroStack, q.VillainStack), q.Pot),
		Wetness:   abstraction.Wetness(q.Board),
		Position:  abstraction.PositionBucket(q.InPosition),
		Aggressor: q.Aggressor.Bucket(),
	}
}

// Players returns the active player count, at least two
func (q Query) Players() int {
	return max(2, q.ActivePlayers)
}

// Resolver answers queries from a strategy table and optional overrides.
// It never mutates its inputs and is safe for concurrent use.
type Resolver struct {
	table    *dataset.Table
	river    *override.Dataset
	multiway *override.Dataset
}

// Option configures a Resolver
type Option func(*Resolver)

// WithRiverOverrides layers a two-player river override dataset over the table
func WithRiverOverrides(d *override.Dataset) Option {
	return func(r *Resolver) {
		r.river = d
	}
}

// WithMultiwayOverrides sets the dataset consulted for multiway spots
func WithMultiwayOverrides(d *override.Dataset) Option {
	return func(r *Resolver) {
		r.multiway = d
	}
}

// New creates a resolver over table. A nil table resolves nothing from
// the generated abstraction.
func New(table *dataset.Table, opts ...Option) *Resolver {
	if table == nil {
		table = dataset.NewTable()
	}
	r := &Resolver{table: table}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns advice for q. Multiway spots are served by overrides
// only; two-player spots try the river override before the table.
func (r *Resolver) Resolve(q Query) Advice {
	if !q.Street.Postflop() {
		return notFound(q, "n/a", SourceUnavailable)
	}

	c := q.Coords()
	players := q.Players()

	if players > 2 {
		overrideStreet := q.Street == abstraction.Turn || q.Street == abstraction.River
		mwKey := abstraction.MultiwaySpotKey(q.Street, q.Board, players, c.Pressure, c.SPR, c.Position, c.Aggressor)

		if !q.DisableMultiwayOverrides && overrideStreet {
			if adv, ok := r.fromOverride(q, c, r.multiway, mwKey, SourceMultiwaySolver, "third-party multiway override"); ok {
				return adv
			}
		}
		if q.Street == abstraction.River {
			key := abstraction.RiverSpotKey(q.Board, c.Pressure, c.SPR, c.Position, c.Aggressor)
			if adv, ok := r.fromOverride(q, c, r.river, key, SourceMultiwayRiver, "third-party river override"); ok {
				adv.Exact = false
				return adv
			}
		}

		if overrideStreet {
			return notFound(q, mwKey.String(), SourceMultiwayMiss)
		}
		return notFound(q, c.Key(), SourceMultiwayDisabled)
	}

	if q.Street == abstraction.River {
		key := abstraction.RiverSpotKey(q.Board, c.Pressure, c.SPR, c.Position, c.Aggressor)
		if adv, ok := r.fromOverride(q, c, r.river, key, SourceRiverSolver, "third-party river override"); ok {
			return adv
		}
	}

	return r.fromTable(q, c)
}

// fromOverride tries the exact spot, then the neutral-aggressor spot. A
// spot that exists but yields no profile ends the search.
func (r *Resolver) fromOverride(q Query, c abstraction.Coords, d *override.Dataset, key abstraction.SpotKey, source, tag string) (Advice, bool) {
	candidates := []struct {
		key      abstraction.SpotKey
		fallback bool
	}{
		{key, false},
		{key.WithAggressor(0), true},
	}

	for _, cand := range candidates {
		if _, ok := d.Lookup(cand.key); !ok {
			continue
		}
		m, ok := d.Resolve(cand.key, q.InPosition, q.ProfileKey, q.ActionPath)
		if !ok {
			return Advice{}, false
		}

		suffix := " (" + tag
		if cand.fallback {
			suffix += ", aggressor fallback"
		}
		if m.ProfileFallback {
			suffix += ", profile fallback"
		}
		if m.NodeFallback {
			suffix += " (node fallback to root)"
		}
		suffix += ")"

		exact := !cand.fallback && !m.ProfileFallback && !m.NodeFallback
		return buildAdvice(q, m.Mix, c.Strength, m.Key, source+suffix, exact), true
	}
	return Advice{}, false
}

// fromTable tries the full key, the neutral-aggressor key and the legacy key
func (r *Resolver) fromTable(q Query, c abstraction.Coords) Advice {
	candidates := []struct {
		key    string
		suffix string
	}{
		{c.Key(), ""},
		{c.WithAggressor(0).Key(), " (aggressor fallback)"},
		{c.LegacyKey(), " (legacy state key)"},
	}

	for i, cand := range candidates {
		mix, ok := r.table.Lookup(cand.key)
		if !ok {
			continue
		}
		return buildAdvice(q, mix.Probabilities(), c.Strength, cand.key, SourceTable+cand.suffix, i == 0)
	}
	return notFound(q, c.Key(), SourceTableMiss)
}
