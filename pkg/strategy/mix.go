// Package strategy holds the basis-point action mixes shared by the trainer,
// the strategy table and the runtime resolver.
package strategy

import (
	"fmt"
	"math"
	"strings"
)

// BasisPoints is the total of every stored mix
const BasisPoints = 10000

// Hero action indices in a Mix
const (
	Fold = iota
	CallOrCheck
	Raise
	NumActions
)

// ActionNames are the table's action labels, in index order
var ActionNames = []string{"fold", "call_or_check", "raise"}

// Mix is an action distribution in basis points, indexed by Fold, CallOrCheck, Raise
type Mix [NumActions]int

// Sum returns the total basis points
func (m Mix) Sum() int {
	return m[0] + m[1] + m[2]
}

// Validate checks the mix is non-negative and sums to exactly BasisPoints
func (m Mix) Validate() error {
	for i, v := range m {
		if v < 0 {
			return fmt.Errorf("mix %v: negative entry for %s", m, ActionNames[i])
		}
	}
	if m.Sum() != BasisPoints {
		return fmt.Errorf("mix %v: sums to %d, want %d", m, m.Sum(), BasisPoints)
	}
	return nil
}

// Probabilities converts basis points to fractions
func (m Mix) Probabilities() [NumActions]float64 {
	var p [NumActions]float64
	for i, v := range m {
		p[i] = float64(v) / BasisPoints
	}
	return p
}

// String renders the mix as "fold=1200 call_or_check=6300 raise=2500"
func (m Mix) String() string {
	parts := make([]string, NumActions)
	for i, v := range m {
		parts[i] = fmt.Sprintf("%s=%d", ActionNames[i], v)
	}
	return strings.Join(parts, " ")
}

// Normalize clamps negatives to zero and scales to sum to one.
// An all-zero input stays all zero.
func Normalize(values [NumActions]float64) [NumActions]float64 {
	sum := 0.0
	for i, v := range values {
		if v < 0 {
			values[i] = 0
			continue
		}
		sum += v
	}
	if sum <= 0 {
		return [NumActions]float64{}
	}
	for i := range values {
		values[i] /= sum
	}
	return values
}

// NormalizeEnabled zeroes disabled and negative entries and renormalizes the
// rest. If the enabled actions carry (almost) no weight they share it uniformly.
func NormalizeEnabled(values [NumActions]float64, enabled [NumActions]bool) [NumActions]float64 {
	n := 0
	sum := 0.0
	for i := range values {
		if !enabled[i] || values[i] < 0 {
			values[i] = 0
		}
		if enabled[i] {
			n++
		}
		sum += values[i]
	}
	if sum <= zeroWeight {
		for i := range values {
			values[i] = 0
			if enabled[i] {
				values[i] = 1 / float64(n)
			}
		}
		return values
	}
	for i := range values {
		values[i] /= sum
	}
	return values
}

// zeroWeight is the total below which a distribution counts as empty
const zeroWeight = 1e-9

// ToBasisPoints rounds each enabled probability to basis points and assigns
// the rounding remainder to the largest enabled entry (the first on ties), so
// the result sums to exactly BasisPoints. Disabled entries are zero.
func ToBasisPoints(probs [NumActions]float64, enabled [NumActions]bool) Mix {
	var m Mix
	best := -1
	for i, p := range probs {
		if !enabled[i] {
			continue
		}
		m[i] = int(math.Round(math.Max(0, math.Min(1, p)) * BasisPoints))
		if best < 0 || m[i] > m[best] {
			best = i
		}
	}
	if best < 0 {
		return m
	}
	m[best] += BasisPoints - m.Sum()
	return m
}
