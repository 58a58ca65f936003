package equity

import (
	"math"
	"math/rand"

	"github.com/behrlich/postflop-solver/pkg/cards"
)

// Result is the outcome of a Monte Carlo or exhaustive equity run
type Result struct {
	Wins    int
	Ties    int
	Samples int
}

// Equity returns (wins + ties/2) / samples, or 0 when nothing was sampled
func (r Result) Equity() float64 {
	if r.Samples <= 0 {
		return 0
	}
	return (float64(r.Wins) + 0.5*float64(r.Ties)) / float64(r.Samples)
}

// WinPct returns the fraction of samples hero won outright
func (r Result) WinPct() float64 {
	if r.Samples <= 0 {
		return 0
	}
	return float64(r.Wins) / float64(r.Samples)
}

// TiePct returns the fraction of samples that split the pot
func (r Result) TiePct() float64 {
	if r.Samples <= 0 {
		return 0
	}
	return float64(r.Ties) / float64(r.Samples)
}

// ConfidenceInterval returns the 95% normal-approximation interval for equity
func (r Result) ConfidenceInterval() (lower, upper float64) {
	if r.Samples <= 0 {
		return 0, 0
	}
	eq := r.Equity()
	margin := 1.96 * math.Sqrt(eq*(1-eq)/float64(r.Samples))
	return math.Max(0, eq-margin), math.Min(1, eq+margin)
}

// Estimator computes hero equity against one uniformly random villain hand.
// An Estimator owns its random source and must not be shared between goroutines.
type Estimator struct {
	rng  *rand.Rand
	eval Evaluator

	// scratch deck reused across samples
	deck []cards.Card
}

// NewEstimator creates an estimator seeded for reproducible sampling.
// A nil evaluator selects NativeEvaluator.
func NewEstimator(seed int64, eval Evaluator) *Estimator {
	return NewEstimatorWithRand(rand.New(rand.NewSource(seed)), eval)
}

// NewEstimatorWithRand creates an estimator drawing from an existing random source
func NewEstimatorWithRand(rng *rand.Rand, eval Evaluator) *Estimator {
	if eval == nil {
		eval = NativeEvaluator{}
	}
	return &Estimator{
		rng:  rng,
		eval: eval,
		deck: make([]cards.Card, 0, cards.DeckSize),
	}
}

// Estimate samples villain hole cards and the missing board cards without
// replacement and scores the resulting showdowns. Board may hold 0 to 5 cards.
// Hero and board must not share cards.
func (e *Estimator) Estimate(hero [2]cards.Card, board []cards.Card, samples int) Result {
	if samples <= 0 {
		return Result{}
	}

	dead := make([]cards.Card, 0, 2+len(board))
	dead = append(dead, hero[0], hero[1])
	dead = append(dead, board...)
	e.deck = appendRemaining(e.deck[:0], dead)

	missing := 5 - len(board)
	need := 2 + missing

	var full [5]cards.Card
	copy(full[:], board)

	res := Result{Samples: samples}
	for s := 0; s < samples; s++ {
		drawDistinct(e.rng, e.deck, need)
		villain := [2]cards.Card{e.deck[0], e.deck[1]}
		for i := 0; i < missing; i++ {
			full[len(board)+i] = e.deck[2+i]
		}

		switch e.eval.Showdown(hero, villain, full) {
		case 1:
			res.Wins++
		case 0:
			res.Ties++
		}
	}

	return res
}

// drawDistinct moves n uniformly chosen distinct cards to the front of deck
// using a partial Fisher-Yates shuffle
func drawDistinct(rng *rand.Rand, deck []cards.Card, n int) {
	for i := 0; i < n; i++ {
		j := i + rng.Intn(len(deck)-i)
		deck[i], deck[j] = deck[j], deck[i]
	}
}

func appendRemaining(dst []cards.Card, dead []cards.Card) []cards.Card {
	var mask uint64
	for _, c := range dead {
		mask |= 1 << c
	}
	for c := cards.Card(0); c < cards.DeckSize; c++ {
		if mask&(1<<c) == 0 {
			dst = append(dst, c)
		}
	}
	return dst
}
