package solver

import (
	"errors"

	"github.com/behrlich/postflop-solver/pkg/scenario"
	"github.com/behrlich/postflop-solver/pkg/strategy"
)

// ErrNoScenarios is returned when a state is solved without scenarios
var ErrNoScenarios = errors.New("no scenarios to solve")

// DefaultIterations is the CFR iteration count used for production tables
const DefaultIterations = 1500

var villainActions = []string{"fold", "call"}

// Result is the solved strategy of one abstract state
type Result struct {
	Mix     strategy.Mix
	Hero    *Strategy
	Villain *Strategy
}

// MCCFR solves the single-raise game of an abstract state by iterating over
// sampled real-card scenarios. Hero chooses fold, call/check or raise;
// villain answers a raise with fold or call.
type MCCFR struct {
	iterations int
}

// NewMCCFR creates a solver running the given number of iterations per state
func NewMCCFR(iterations int) *MCCFR {
	if iterations <= 0 {
		iterations = DefaultIterations
	}
	return &MCCFR{iterations: iterations}
}

// Iterations returns the per-state iteration count
func (m *MCCFR) Iterations() int {
	return m.iterations
}

// Solve runs regret matching for both players. Scenarios are visited
// round-robin, so the result is a pure function of its inputs.
func (m *MCCFR) Solve(scenarios []scenario.Scenario, p Params) (Result, error) {
	if len(scenarios) == 0 {
		return Result{}, ErrNoScenarios
	}

	heroEnabled := p.HeroEnabled()
	hero := NewStrategy(strategy.ActionNames, heroEnabled[:])
	villain := NewStrategy(villainActions, []bool{true, true})

	fixedVillain := []float64{1, 0}
	heroUtil := make([]float64, strategy.NumActions)
	heroRegret := make([]float64, strategy.NumActions)
	villainRegret := make([]float64, 2)

	for iter := 0; iter < m.iterations; iter++ {
		sc := scenarios[iter%len(scenarios)]

		heroStrat := hero.GetStrategy()
		villainStrat := fixedVillain
		if p.RaiseAvailable {
			villainStrat = villain.GetStrategy()
		}

		hero.UpdateStrategy(heroStrat, 1)

		eq := clamp(sc.Equity-p.EquityDiscount, 0.01, 0.99)
		callU := eq*p.PotIfCall - p.ToCall
		raiseFoldU := p.Pot
		raiseCallU := eq*p.PotIfRaiseCall - p.RaiseTo

		raiseU := callU
		if p.RaiseAvailable {
			raiseU = villainStrat[0]*raiseFoldU + villainStrat[1]*raiseCallU
		}

		heroUtil[strategy.Fold] = 0
		heroUtil[strategy.CallOrCheck] = callU
		heroUtil[strategy.Raise] = raiseU

		ev := 0.0
		for a, prob := range heroStrat {
			ev += prob * heroUtil[a]
		}
		for a := range heroRegret {
			heroRegret[a] = heroUtil[a] - ev
		}

		if p.RaiseAvailable {
			vFold, vCall := -raiseFoldU, -raiseCallU
			vEV := villainStrat[0]*vFold + villainStrat[1]*vCall
			reach := heroStrat[strategy.Raise]
			villainRegret[0] = (vFold - vEV) * reach
			villainRegret[1] = (vCall - vEV) * reach
			villain.UpdateRegrets(villainRegret)
		}

		hero.UpdateRegrets(heroRegret)
	}

	avg := hero.GetAverageStrategy()
	probs := strategy.NormalizeEnabled([strategy.NumActions]float64(avg), heroEnabled)

	return Result{
		Mix:     strategy.ToBasisPoints(probs, heroEnabled),
		Hero:    hero,
		Villain: villain,
	}, nil
}
