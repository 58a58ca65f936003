package preflop

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/behrlich/postflop-solver/pkg/cards"
	"github.com/behrlich/postflop-solver/pkg/resolver"
)

// Action codes used by the charts
const (
	CodeFold = iota
	CodeCall
	CodeRaise25
	CodeRaise3
	CodeRaise35
	CodeRaise4
	CodeAllIn
)

// CodeLabel names an action code
func CodeLabel(code int) string {
	switch code {
	case CodeFold:
		return "Fold"
	case CodeCall:
		return "Call/Check"
	case CodeRaise25:
		return "Raise 2.5x"
	case CodeRaise3:
		return "Raise 3x"
	case CodeRaise35:
		return "Raise 3.5x"
	case CodeRaise4:
		return "Raise 4x"
	case CodeAllIn:
		return "All-in"
	default:
		return fmt.Sprintf("Action %d", code)
	}
}

// Query is a live preflop decision
type Query struct {
	StackBB     float64
	ActionCodes []int
	Hole        [2]cards.Card
	ToCall      float64
	MinRaise    float64
	HeroStack   float64
}

// CodeProb is one entry of a preflop mix
type CodeProb struct {
	Code  int     `json:"code"`
	Prob  float64 `json:"prob"`
	Label string  `json:"label"`
}

// Advice is the blended chart answer
type Advice struct {
	Found       bool            `json:"found"`
	StateKey    string          `json:"stateKey"`
	UsedStackBB float64         `json:"usedStackBb"`
	BestCode    int             `json:"bestCode"`
	BestProb    float64         `json:"bestProb"`
	Action      resolver.Action `json:"recommendedAction"`
	Amount      float64         `json:"recommendedAmount,omitempty"`
	MixText     string          `json:"mixText"`
	ActionMix   []CodeProb      `json:"actionMix"`
	Source      string          `json:"source"`
}

// Source suffixes
const (
	suffixMiss       = " (fallback miss)"
	suffixDepthGuard = " (fallback depth guard)"
	suffixFallback   = " (state fallback)"
)

// Advise blends the charts bracketing the query's stack depth. States are
// looked up with trailing codes dropped; when both charts had to drop two
// or more codes of a history of two or more, the result is a miss.
func (cs *Charts) Advise(q Query) Advice {
	lower, upper, w := cs.bracket(q.StackBB)
	requested := StateKey(q.ActionCodes)
	source := lower.Meta.Source
	if source == "" {
		source = "preflop chart"
	}

	ls, lkey, ldepth, lok := lower.resolve(q.ActionCodes)
	us, ukey, udepth, uok := upper.resolve(q.ActionCodes)

	miss := func(suffix string) Advice {
		action := resolver.Check
		if q.ToCall > 0 {
			action = resolver.Call
		}
		return Advice{
			StateKey:    requested,
			UsedStackBB: q.StackBB,
			BestCode:    CodeCall,
			Action:      action,
			ActionMix:   []CodeProb{},
			Source:      source + suffix,
		}
	}

	if !lok && !uok {
		return miss(suffixMiss)
	}
	minDepth := math.MaxInt
	if lok {
		minDepth = ldepth
	}
	if uok && udepth < minDepth {
		minDepth = udepth
	}
	if minDepth >= 2 && len(q.ActionCodes) >= 2 {
		return miss(suffixDepthGuard)
	}

	row, col := MatrixIndex(q.Hole[0], q.Hole[1])
	numActions := max(ls.NumActions, us.NumActions)
	probs := make([]float64, numActions)
	var sum float64
	for code := range probs {
		lp, up := ls.prob(code, row, col), us.prob(code, row, col)
		// A chart missing the state takes the other chart's frequency. For
		// 0 < w < 1 this matches blending it as zero once normalised; at the
		// bracket ends it keeps the mix from collapsing to all zeros.
		if !lok {
			lp = up
		}
		if !uok {
			up = lp
		}
		probs[code] = lp
		if lower != upper {
			probs[code] = lp*(1-w) + up*w
		}
		sum += probs[code]
	}
	for code := range probs {
		if sum > 0 {
			probs[code] /= sum
		} else {
			probs[code] = 0
		}
	}

	adv := Advice{
		Found:       true,
		UsedStackBB: q.StackBB,
		BestCode:    CodeCall,
		BestProb:    -1,
		ActionMix:   []CodeProb{},
	}
	if lower == upper {
		adv.UsedStackBB = lower.StackBB
	}
	for code, p := range probs {
		if p > adv.BestProb {
			adv.BestCode, adv.BestProb = code, p
		}
	}
	adv.Action = codeAction(adv.BestCode, q.ToCall)
	if adv.Action == resolver.Raise {
		adv.Amount = RaiseAmount(adv.BestCode, q.ToCall, q.MinRaise, q.HeroStack)
	}

	for code, p := range probs {
		if p > 0.01 {
			adv.ActionMix = append(adv.ActionMix, CodeProb{Code: code, Prob: p, Label: CodeLabel(code)})
		}
	}
	sort.SliceStable(adv.ActionMix, func(i, j int) bool { return adv.ActionMix[i].Prob > adv.ActionMix[j].Prob })
	if len(adv.ActionMix) > 4 {
		adv.ActionMix = adv.ActionMix[:4]
	}
	parts := make([]string, len(adv.ActionMix))
	for i, cp := range adv.ActionMix {
		parts[i] = fmt.Sprintf("%s %d%%", cp.Label, int(math.Floor(cp.Prob*100+0.5)))
	}
	adv.MixText = strings.Join(parts, " | ")

	adv.StateKey = ukey
	if lok {
		adv.StateKey = lkey
	}
	adv.Source = source
	if adv.StateKey != requested {
		adv.Source += suffixFallback
	}
	return adv
}

func codeAction(code int, toCall float64) resolver.Action {
	switch code {
	case CodeFold:
		return resolver.Fold
	case CodeCall:
		if toCall > 0 {
			return resolver.Call
		}
		return resolver.Check
	default:
		return resolver.Raise
	}
}

// RaiseAmount sizes a raise code as a multiple of the minimum legal raise
func RaiseAmount(code int, toCall, minRaise, heroStack float64) float64 {
	if code <= CodeCall {
		return 0
	}
	base := math.Max(2, toCall+minRaise)
	suggested := base
	switch code {
	case CodeRaise25:
		suggested = math.Floor(base*1.1 + 0.5)
	case CodeRaise3:
		suggested = math.Floor(base*1.25 + 0.5)
	case CodeRaise35:
		suggested = math.Floor(base*1.4 + 0.5)
	case CodeRaise4:
		suggested = math.Floor(base*1.7 + 0.5)
	default:
		suggested = heroStack
	}
	return math.Max(toCall+minRaise, math.Min(heroStack, suggested))
}

// MapRaiseAmountToCode classifies a raise size into the nearest chart code
func MapRaiseAmountToCode(raise, toCall, minRaise, heroStack float64) int {
	if heroStack <= 0 || raise >= heroStack*0.95 {
		return CodeAllIn
	}
	ratio := raise / math.Max(1, toCall+minRaise)
	switch {
	case ratio < 1.16:
		return CodeRaise25
	case ratio < 1.33:
		return CodeRaise3
	case ratio < 1.55:
		return CodeRaise35
	default:
		return CodeRaise4
	}
}

// MapActionToCode converts a taken action into its chart code
func MapActionToCode(action resolver.Action, raise, toCall, minRaise, heroStack float64) int {
	switch action {
	case resolver.Fold:
		return CodeFold
	case resolver.Call, resolver.Check:
		return CodeCall
	default:
		return MapRaiseAmountToCode(raise, toCall, minRaise, heroStack)
	}
}
