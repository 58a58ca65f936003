// Package preflop blends static preflop charts solved at fixed stack
// depths into advice for an arbitrary depth.
package preflop

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/behrlich/postflop-solver/pkg/cards"
)

// MatrixSize is the side of the 13x13 starting hand matrix
const MatrixSize = 13

// Meta describes the solver run behind a chart
type Meta struct {
	Source         string  `json:"source"`
	License        string  `json:"license,omitempty"`
	StackBB        float64 `json:"stack_bb,omitempty"`
	Iterations     int     `json:"iterations,omitempty"`
	EVSmallBlind   float64 `json:"ev_sb_bb"`
	Exploitability float64 `json:"exploitability_bb"`
	Scale          string  `json:"scale,omitempty"`
}

// State holds, per action code, the basis-point frequency of every cell
// of the hand matrix: ProbsBP[code][row][col].
type State struct {
	NumActions int           `json:"num_actions"`
	ProbsBP    [][][]float64 `json:"probs_bp"`
}

// prob returns the frequency of code for a matrix cell, zero when absent
func (s State) prob(code, row, col int) float64 {
	if code < 0 || code >= s.NumActions || code >= len(s.ProbsBP) {
		return 0
	}
	grid := s.ProbsBP[code]
	if row >= len(grid) || col >= len(grid[row]) {
		return 0
	}
	return grid[row][col] / 10000
}

// Chart is one solved stack depth
type Chart struct {
	StackBB float64          `json:"-"`
	Meta    Meta             `json:"meta"`
	States  map[string]State `json:"states"`
}

// StateKey renders an action code sequence, "root" when empty
func StateKey(codes []int) string {
	if len(codes) == 0 {
		return "root"
	}
	parts := make([]string, len(codes))
	for i, c := range codes {
		parts[i] = strconv.Itoa(c)
	}
	return strings.Join(parts, "-")
}

// resolve finds the state for codes, dropping trailing codes until a
// stored state is found. depth counts the dropped codes.
func (c *Chart) resolve(codes []int) (state State, key string, depth int, ok bool) {
	for n := len(codes); n >= 0; n-- {
		key = StateKey(codes[:n])
		if state, ok = c.States[key]; ok {
			return state, key, len(codes) - n, true
		}
	}
	return State{}, "", 0, false
}

// ParseChart decodes a chart solved at stackBB big blinds
func ParseChart(data []byte, stackBB float64) (*Chart, error) {
	var c Chart
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode preflop chart: %w", err)
	}
	if stackBB <= 0 {
		stackBB = c.Meta.StackBB
	}
	if stackBB <= 0 {
		return nil, errors.New("preflop chart has no stack depth")
	}
	c.StackBB = stackBB
	if c.States == nil {
		c.States = make(map[string]State)
	}
	return &c, nil
}

// LoadChart reads a chart file
func LoadChart(path string, stackBB float64) (*Chart, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseChart(data, stackBB)
}

// LoadDir loads every preflop-<N>bb.json chart in dir
func LoadDir(dir string) (*Charts, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "preflop-*bb.json"))
	if err != nil {
		return nil, err
	}
	var charts []*Chart
	for _, path := range paths {
		var depth float64
		if _, err := fmt.Sscanf(filepath.Base(path), "preflop-%gbb.json", &depth); err != nil {
			continue
		}
		c, err := LoadChart(path, depth)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		charts = append(charts, c)
	}
	return NewCharts(charts...)
}

// Charts is a set of charts ordered by stack depth
type Charts struct {
	charts []*Chart
}

// NewCharts orders charts by depth. At least one chart is required and
// depths must be distinct.
func NewCharts(charts ...*Chart) (*Charts, error) {
	if len(charts) == 0 {
		return nil, errors.New("no preflop charts")
	}
	sorted := append([]*Chart(nil), charts...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].StackBB < sorted[j].StackBB })
	for i := 1; i < len(sorted); i++ {
		if sorted[i].StackBB == sorted[i-1].StackBB {
			return nil, fmt.Errorf("duplicate preflop chart at %gbb", sorted[i].StackBB)
		}
	}
	return &Charts{charts: sorted}, nil
}

// Depths returns the chart depths in ascending order
func (cs *Charts) Depths() []float64 {
	out := make([]float64, len(cs.charts))
	for i, c := range cs.charts {
		out[i] = c.StackBB
	}
	return out
}

// bracket returns the charts around stackBB and the weight of the upper
// one. Depths outside the solved range clamp to the nearest chart.
func (cs *Charts) bracket(stackBB float64) (lower, upper *Chart, upperWeight float64) {
	first, last := cs.charts[0], cs.charts[len(cs.charts)-1]
	if stackBB <= first.StackBB {
		return first, first, 0
	}
	if stackBB >= last.StackBB {
		return last, last, 0
	}
	for i := 0; i+1 < len(cs.charts); i++ {
		left, right := cs.charts[i], cs.charts[i+1]
		if stackBB >= left.StackBB && stackBB <= right.StackBB {
			return left, right, (stackBB - left.StackBB) / (right.StackBB - left.StackBB)
		}
	}
	return last, last, 0
}

// MatrixIndex locates a starting hand in the 13x13 matrix: pairs on the
// diagonal, suited hands at (low, high), offsuit hands at (high, low).
func MatrixIndex(a, b cards.Card) (row, col int) {
	ra, rb := int(a.Rank()-cards.Two), int(b.Rank()-cards.Two)
	if ra == rb {
		return ra, rb
	}
	high, low := max(ra, rb), min(ra, rb)
	if a.Suit() == b.Suit() {
		return low, high
	}
	return high, low
}
