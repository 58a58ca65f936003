package equity

import (
	"math"
	"math/rand"
	"testing"

	"github.com/behrlich/postflop-solver/pkg/cards"
)

func hole(s string) [2]cards.Card {
	return [2]cards.Card(cards.MustParseCards(s))
}

func TestEstimate_AcesPreflop(t *testing.T) {
	est := NewEstimator(7, nil)

	// AA vs a random hand is roughly 85%
	res := est.Estimate(hole("AsAh"), nil, 4000)
	eq := res.Equity()
	if math.Abs(eq-0.85) > 0.03 {
		t.Errorf("AA preflop equity = %.3f, want 0.85 ± 0.03", eq)
	}
	lo, hi := res.ConfidenceInterval()
	if lo > eq || hi < eq || hi-lo > 0.05 {
		t.Errorf("ConfidenceInterval = [%.3f, %.3f], equity %.3f", lo, hi, eq)
	}
}

func TestEstimate_RiverNuts(t *testing.T) {
	est := NewEstimator(1, nil)

	// Royal flush on board: every showdown is a tie
	board := cards.MustParseCards("AhKhQhJhTh")
	res := est.Estimate(hole("2c3d"), board, 200)
	if res.Ties != 200 {
		t.Errorf("expected every sample to tie, got wins=%d ties=%d", res.Wins, res.Ties)
	}
	if res.Equity() != 0.5 {
		t.Errorf("Equity() = %v, want 0.5", res.Equity())
	}
}

func TestEstimate_ZeroSamples(t *testing.T) {
	est := NewEstimator(1, nil)
	res := est.Estimate(hole("AsAh"), nil, 0)
	if res.Equity() != 0 || res.Samples != 0 {
		t.Errorf("zero samples should give zero result, got %+v", res)
	}
	if res.WinPct() != 0 || res.TiePct() != 0 {
		t.Errorf("zero samples should give zero rates, got %+v", res)
	}
}

func TestEstimate_Deterministic(t *testing.T) {
	board := cards.MustParseCards("Kh9s4c")
	a := NewEstimator(42, nil).Estimate(hole("QdQc"), board, 500)
	b := NewEstimator(42, nil).Estimate(hole("QdQc"), board, 500)
	if a != b {
		t.Errorf("same seed produced different results: %+v vs %+v", a, b)
	}
}

func TestEstimate_NeverDealsDeadCards(t *testing.T) {
	var seen [cards.DeckSize]bool
	spy := evaluatorFunc(func(hero, villain [2]cards.Card, board [5]cards.Card) int {
		for _, c := range villain {
			seen[c] = true
		}
		for _, c := range board[3:] {
			seen[c] = true
		}
		return 0
	})

	h := hole("AsAh")
	board := cards.MustParseCards("Kd7c2s")
	NewEstimator(3, spy).Estimate(h, board, 2000)

	for _, dead := range append([]cards.Card{h[0], h[1]}, board...) {
		if seen[dead] {
			t.Errorf("dead card %v was dealt", dead)
		}
	}
}

func TestDrawDistinct(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	deck := cards.Deck()
	for trial := 0; trial < 100; trial++ {
		drawDistinct(rng, deck, 7)
		seen := map[cards.Card]bool{}
		for _, c := range deck[:7] {
			if seen[c] {
				t.Fatalf("duplicate card %v drawn", c)
			}
			seen[c] = true
		}
	}
	if len(deck) != cards.DeckSize {
		t.Fatalf("deck size changed to %d", len(deck))
	}
}

type evaluatorFunc func(hero, villain [2]cards.Card, board [5]cards.Card) int

func (f evaluatorFunc) Showdown(hero, villain [2]cards.Card, board [5]cards.Card) int {
	return f(hero, villain, board)
}
