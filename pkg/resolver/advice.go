package resolver

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/behrlich/postflop-solver/pkg/abstraction"
	"github.com/behrlich/postflop-solver/pkg/strategy"
)

// Action is a recommended decision
type Action string

const (
	Fold  Action = "fold"
	Check Action = "check"
	Call  Action = "call"
	Raise Action = "raise"
)

// Label returns the display label used in mix text
func (a Action) Label() string {
	switch a {
	case Check:
		return "Check"
	case Call:
		return "Call"
	case Raise:
		return "Raise"
	default:
		return "Fold"
	}
}

// ActionProb is one entry of an advice mix
type ActionProb struct {
	Action Action  `json:"action"`
	Prob   float64 `json:"prob"`
}

// Advice is the resolver's answer for one live state
type Advice struct {
	Found     bool         `json:"found"`
	StateKey  string       `json:"stateKey"`
	Action    Action       `json:"recommendedAction"`
	Amount    float64      `json:"recommendedAmount,omitempty"`
	BestProb  float64      `json:"bestProb"`
	MixText   string       `json:"mixText"`
	ActionMix []ActionProb `json:"actionMix"`
	Source    string       `json:"source"`
	// Exact is set when no fallback of any kind was used
	Exact bool `json:"exact"`
}

// notFound is the conservative default returned on a lookup miss
func notFound(q Query, key, source string) Advice {
	action := Check
	if q.ToCall > 0 {
		action = Call
	}
	return Advice{
		StateKey:  key,
		Action:    action,
		ActionMix: []ActionProb{},
		Source:    source,
	}
}

func actionAt(index int, toCall float64) Action {
	switch index {
	case strategy.Fold:
		if toCall > 0 {
			return Fold
		}
		return Check
	case strategy.CallOrCheck:
		if toCall > 0 {
			return Call
		}
		return Check
	default:
		return Raise
	}
}

// buildAdvice turns a probability mix into a decision
func buildAdvice(q Query, mix [strategy.NumActions]float64, strength int, key, source string, exact bool) Advice {
	if q.ToCall == 0 {
		mix[strategy.Fold] = 0
		mix = strategy.Normalize(mix)
	}

	best, bestProb := 0, -1.0
	for i, p := range mix {
		if p > bestProb {
			best, bestProb = i, p
		}
	}

	adv := Advice{
		Found:     true,
		StateKey:  key,
		Action:    actionAt(best, q.ToCall),
		BestProb:  math.Max(0, math.Min(1, bestProb)),
		ActionMix: []ActionProb{},
		Source:    source,
		Exact:     exact,
	}
	if adv.Action == Raise {
		adv.Amount = raiseAmount(q, strength)
	}

	for i, p := range mix {
		if p > 0.01 {
			adv.ActionMix = append(adv.ActionMix, ActionProb{Action: actionAt(i, q.ToCall), Prob: p})
		}
	}
	sort.SliceStable(adv.ActionMix, func(i, j int) bool {
		return adv.ActionMix[i].Prob > adv.ActionMix[j].Prob
	})

	parts := make([]string, len(adv.ActionMix))
	for i, ap := range adv.ActionMix {
		parts[i] = fmt.Sprintf("%s %d%%", ap.Action.Label(), int(roundHalfUp(ap.Prob*100)))
	}
	adv.MixText = strings.Join(parts, " | ")
	return adv
}

// raiseAmount sizes a raise from the pot, scaled by street, strength,
// position and initiative, and bounded by the minimum raise and stack
func raiseAmount(q Query, strength int) float64 {
	base := 0.80
	switch q.Street {
	case abstraction.Flop:
		base = 0.65
	case abstraction.Turn:
		base = 0.72
	}

	factor := base + (float64(strength)/7-0.5)*0.18
	if q.InPosition {
		factor += 0.04
	} else {
		factor -= 0.02
	}
	switch q.Aggressor {
	case abstraction.AggressorSelf:
		factor += 0.03
	case abstraction.AggressorOpponent:
		factor -= 0.03
	}
	factor = clamp(factor, 0.48, 1.08)

	raw := roundHalfUp(q.Pot * factor)
	return clamp(math.Max(q.MinRaise, raw), q.MinRaise, q.HeroStack)
}

// clamp bounds v to [lo, hi]; lo wins when the bounds cross
func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func roundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}
