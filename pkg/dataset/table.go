package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/behrlich/postflop-solver/pkg/abstraction"
	"github.com/behrlich/postflop-solver/pkg/scenario"
	"github.com/behrlich/postflop-solver/pkg/strategy"
)

// Table identity written by the builder
const (
	TableName    = "postflop-srp-mccfr-real-cards"
	TableVersion = 2
	TableModel   = "monte-carlo CFR over real holdem card rollouts (single-raise abstraction)"
	TableNote    = "Payoff values are derived from sampled real card equities and exact 7-card hand ranking, not handcrafted matrices."
)

// State is one stored abstract state
type State struct {
	MixBP strategy.Mix `json:"mix_bp"`
}

// Buckets records the abstraction's cardinalities. Position and aggressor
// are absent from legacy tables.
type Buckets struct {
	Streets   []string `json:"streets"`
	Strength  int      `json:"strength"`
	Pressure  int      `json:"pressure"`
	SPR       int      `json:"spr"`
	Wetness   int      `json:"wetness"`
	Position  int      `json:"position,omitempty"`
	Aggressor int      `json:"aggressor,omitempty"`
}

// Sampling records the scenario sampling parameters of a build
type Sampling struct {
	TextureCandidates   int `json:"texture_candidates"`
	EquitySamples       int `json:"equity_samples"`
	ScenariosPerState   int `json:"scenarios_per_state"`
	MissingBucketTarget int `json:"missing_bucket_target"`
}

// TextureCoverage reports how each strength bucket of a texture pool was served
type TextureCoverage struct {
	Generated int                       `json:"generated"`
	Attempts  int                       `json:"attempts,omitempty"`
	Buckets   []scenario.BucketCoverage `json:"buckets"`
}

// Meta describes how a table was produced
type Meta struct {
	Name            string                     `json:"name"`
	Version         int                        `json:"version"`
	Model           string                     `json:"model,omitempty"`
	Iterations      int                        `json:"iterations"`
	Actions         []string                   `json:"actions"`
	Buckets         Buckets                    `json:"buckets"`
	Sampling        *Sampling                  `json:"sampling,omitempty"`
	TextureCoverage map[string]TextureCoverage `json:"texture_coverage,omitempty"`
	Unreachable     []string                   `json:"unreachable,omitempty"`
	Note            string                     `json:"note,omitempty"`
	GeneratedAt     string                     `json:"generated_at,omitempty"`
	RunID           string                     `json:"run_id,omitempty"`
	Seed            int64                      `json:"seed,omitempty"`
}

// Table maps state keys to solved mixes. A loaded Table is read-only and
// safe for concurrent lookups.
type Table struct {
	Meta   Meta             `json:"meta"`
	States map[string]State `json:"states"`
}

// NewTable creates an empty table with default metadata
func NewTable() *Table {
	return &Table{
		Meta: Meta{
			Name:    TableName,
			Version: TableVersion,
			Model:   TableModel,
			Actions: append([]string(nil), strategy.ActionNames...),
			Buckets: Buckets{
				Streets:   streetNames(abstraction.PostflopStreets),
				Strength:  abstraction.StrengthBuckets,
				Pressure:  abstraction.PressureBuckets,
				SPR:       abstraction.SPRBuckets,
				Wetness:   abstraction.WetnessBuckets,
				Position:  abstraction.PositionBuckets,
				Aggressor: abstraction.AggressorBuckets,
			},
			Note: TableNote,
		},
		States: make(map[string]State),
	}
}

// Lookup returns the mix stored under key
func (t *Table) Lookup(key string) (strategy.Mix, bool) {
	s, ok := t.States[key]
	return s.MixBP, ok
}

// Len returns the number of stored states
func (t *Table) Len() int {
	return len(t.States)
}

// Keys returns every state key in sorted order
func (t *Table) Keys() []string {
	keys := make([]string, 0, len(t.States))
	for k := range t.States {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Validate checks every key parses and every mix sums to exactly 10000 bp
func (t *Table) Validate() error {
	for key, s := range t.States {
		if _, _, err := abstraction.ParseStateKey(key); err != nil {
			return err
		}
		if err := s.MixBP.Validate(); err != nil {
			return fmt.Errorf("state %s: %w", key, err)
		}
	}
	return nil
}

// ToJSON serializes the table to indented JSON
func (t *Table) ToJSON() ([]byte, error) {
	return json.MarshalIndent(t, "", "  ")
}

// FromJSON deserializes and validates a table
func FromJSON(data []byte) (*Table, error) {
	var t Table
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("decode strategy table: %w", err)
	}
	if t.States == nil {
		t.States = make(map[string]State)
	}
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("invalid strategy table: %w", err)
	}
	return &t, nil
}

// SaveToFile saves the table to a JSON file
func (t *Table) SaveToFile(filename string) error {
	data, err := t.ToJSON()
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0644)
}

// LoadFromFile loads a table from a JSON or binary snapshot file,
// detected from the content
func LoadFromFile(filename string) (*Table, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	if IsBinary(data) {
		var t Table
		if err := t.UnmarshalBinary(data); err != nil {
			return nil, err
		}
		return &t, nil
	}
	return FromJSON(data)
}

func streetNames(streets []abstraction.Street) []string {
	out := make([]string, len(streets))
	for i, s := range streets {
		out[i] = s.String()
	}
	return out
}
