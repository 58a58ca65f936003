package solver

import (
	"math"

	"github.com/behrlich/postflop-solver/pkg/abstraction"
)

// PotBase is the normalized pot every abstract state is solved with
const PotBase = 100

var (
	pressureToCallRatio    = [abstraction.PressureBuckets]float64{0, 0.15, 0.32, 0.58, 0.95}
	pressureEquityDiscount = [abstraction.PressureBuckets]float64{0, 0.07, 0.16, 0.30, 0.45}
	sprMultipliers         = [abstraction.SPRBuckets]float64{1.4, 2.5, 4.5, 8.0}
)

// betFactor sizes an opening bet as a fraction of the pot
func betFactor(s abstraction.Street) float64 {
	switch s {
	case abstraction.Flop:
		return 0.55
	case abstraction.Turn:
		return 0.68
	default:
		return 0.82
	}
}

// raiseFactor sizes a raise as a fraction of pot plus the call
func raiseFactor(s abstraction.Street) float64 {
	switch s {
	case abstraction.Flop:
		return 0.82
	case abstraction.Turn:
		return 0.94
	default:
		return 1.02
	}
}

// Params are the concrete payoffs of one abstract state's single-raise game
type Params struct {
	Pot            float64
	ToCall         float64
	RaiseTo        float64
	MinRaise       float64
	EffectiveStack float64
	RaiseAvailable bool
	EquityDiscount float64
	PotIfCall      float64
	PotIfRaiseCall float64
}

// NewParams derives payoffs from bucket coordinates. Street must be flop,
// turn or river; other coordinates must be inside their bucket ranges.
func NewParams(c abstraction.Coords) Params {
	pot := float64(PotBase)

	toCall := 0.0
	if c.Pressure > 0 {
		toCall = math.Max(1, roundHalfUp(pot*pressureToCallRatio[c.Pressure]))
	}
	stack := math.Max(toCall+2, roundHalfUp(pot*sprMultipliers[c.SPR]))
	minRaise := math.Max(2, roundHalfUp(math.Max(toCall*0.5, pot*0.08)))

	inPosition := c.Position == 1
	self := c.Aggressor == int(abstraction.AggressorSelf)
	opponent := c.Aggressor == int(abstraction.AggressorOpponent)

	posBias := -0.04
	if inPosition {
		posBias = 0.06
	}
	aggBias := 0.0
	switch {
	case self:
		aggBias = 0.05
	case opponent:
		aggBias = -0.05
	}

	var raiseTo float64
	if toCall == 0 {
		f := clamp(betFactor(c.Street)+posBias+aggBias, 0.45, 1.15)
		raiseTo = math.Min(stack, math.Max(minRaise, roundHalfUp(pot*f)))
	} else {
		f := clamp(raiseFactor(c.Street)+posBias*0.7+aggBias, 0.72, 1.28)
		raiseTo = math.Min(stack, math.Max(toCall+minRaise, roundHalfUp((pot+toCall)*f)))
	}

	discount := pressureEquityDiscount[c.Pressure]
	if inPosition {
		discount -= 0.02
	} else {
		discount += 0.03
	}
	switch {
	case self:
		discount -= 0.02
	case opponent:
		discount += 0.04
	}

	return Params{
		Pot:            pot,
		ToCall:         toCall,
		RaiseTo:        raiseTo,
		MinRaise:       minRaise,
		EffectiveStack: stack,
		RaiseAvailable: raiseTo > toCall,
		EquityDiscount: clamp(discount, 0, 0.75),
		PotIfCall:      pot + 2*toCall,
		PotIfRaiseCall: pot + raiseTo + math.Max(0, raiseTo-toCall),
	}
}

// HeroEnabled returns which hero actions exist: fold only when facing a bet,
// raise only when the stack allows one
func (p Params) HeroEnabled() [3]bool {
	return [3]bool{p.ToCall > 0, true, p.RaiseAvailable}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// roundHalfUp rounds .5 toward positive infinity, matching the rounding the
// stored tables were produced with
func roundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}
