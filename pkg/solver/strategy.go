package solver

import (
	"fmt"
	"math"
	"strings"
)

// Strategy stores the regret-matching state of one decision point whose
// actions may be individually disabled
type Strategy struct {
	Names   []string // Action labels, for display
	Enabled []bool

	// CFR algorithm state
	RegretSum   []float64 // Cumulative regret for each action
	StrategySum []float64 // Cumulative strategy (for averaging)

	current []float64
}

// NewStrategy creates a strategy over the given actions
func NewStrategy(names []string, enabled []bool) *Strategy {
	n := len(names)
	return &Strategy{
		Names:       names,
		Enabled:     enabled,
		RegretSum:   make([]float64, n),
		StrategySum: make([]float64, n),
		current:     make([]float64, n),
	}
}

// GetStrategy computes the current strategy using regret matching over the
// enabled actions. When no enabled action has positive regret the enabled
// actions are played uniformly. The returned slice is reused by the next call.
func (s *Strategy) GetStrategy() []float64 {
	normalizingSum := 0.0
	for i := range s.current {
		s.current[i] = 0
		if s.Enabled[i] && s.RegretSum[i] > 0 {
			s.current[i] = s.RegretSum[i]
			normalizingSum += s.RegretSum[i]
		}
	}

	if normalizingSum > zeroSum {
		for i := range s.current {
			s.current[i] /= normalizingSum
		}
		return s.current
	}

	s.uniform(s.current)
	return s.current
}

// GetAverageStrategy returns the average strategy over all iterations,
// renormalized over the enabled actions
func (s *Strategy) GetAverageStrategy() []float64 {
	avg := make([]float64, len(s.StrategySum))

	normalizingSum := 0.0
	for i, v := range s.StrategySum {
		if s.Enabled[i] && v > 0 {
			avg[i] = v
			normalizingSum += v
		}
	}

	if normalizingSum > zeroSum {
		for i := range avg {
			avg[i] /= normalizingSum
		}
		return avg
	}

	s.uniform(avg)
	return avg
}

// UpdateRegrets adds regrets for each enabled action
func (s *Strategy) UpdateRegrets(regrets []float64) {
	for i := range s.RegretSum {
		if s.Enabled[i] {
			s.RegretSum[i] += regrets[i]
		}
	}
}

// UpdateStrategy adds the current strategy to the strategy sum (for averaging)
// weighted by reachProb
func (s *Strategy) UpdateStrategy(strategy []float64, reachProb float64) {
	for i := range s.StrategySum {
		s.StrategySum[i] += reachProb * strategy[i]
	}
}

// MeanAbsRegret is a cheap convergence signal: the mean absolute cumulative
// regret per enabled action, divided by iterations
func (s *Strategy) MeanAbsRegret(iterations int) float64 {
	total, n := 0.0, 0
	for i, r := range s.RegretSum {
		if s.Enabled[i] {
			total += math.Abs(r)
			n++
		}
	}
	if n == 0 || iterations <= 0 {
		return 0
	}
	return total / float64(n) / float64(iterations)
}

func (s *Strategy) uniform(dst []float64) {
	n := 0
	for _, e := range s.Enabled {
		if e {
			n++
		}
	}
	for i := range dst {
		dst[i] = 0
		if s.Enabled[i] {
			dst[i] = 1 / float64(n)
		}
	}
}

// String returns a human-readable representation
func (s *Strategy) String() string {
	var b strings.Builder
	avg := s.GetAverageStrategy()
	for i, name := range s.Names {
		if !s.Enabled[i] {
			fmt.Fprintf(&b, "  %s: disabled\n", name)
			continue
		}
		fmt.Fprintf(&b, "  %s: %.1f%% (regret: %.2f)\n", name, avg[i]*100, s.RegretSum[i])
	}
	return b.String()
}

// zeroSum is the weight below which a distribution is treated as empty
const zeroSum = 1e-9
