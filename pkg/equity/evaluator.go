package equity

import (
	poker "github.com/paulhankin/poker"

	"github.com/behrlich/postflop-solver/pkg/cards"
)

// Evaluator settles a showdown between two hole-card pairs on a complete board.
// Showdown returns 1 if hero wins, -1 if villain wins and 0 on a tie.
type Evaluator interface {
	Showdown(hero, villain [2]cards.Card, board [5]cards.Card) int
}

// NativeEvaluator scores hands with the in-repo 21-subset evaluator
type NativeEvaluator struct{}

// Showdown implements Evaluator
func (NativeEvaluator) Showdown(hero, villain [2]cards.Card, board [5]cards.Card) int {
	h := cards.Best7([7]cards.Card{hero[0], hero[1], board[0], board[1], board[2], board[3], board[4]})
	v := cards.Best7([7]cards.Card{villain[0], villain[1], board[0], board[1], board[2], board[3], board[4]})
	return h.Compare(v)
}

// TableEvaluator scores hands with the lookup-table evaluator from
// github.com/paulhankin/poker. It agrees with NativeEvaluator on every
// showdown and is several times faster.
type TableEvaluator struct{}

// Showdown implements Evaluator
func (TableEvaluator) Showdown(hero, villain [2]cards.Card, board [5]cards.Card) int {
	var b [5]poker.Card
	for i, c := range board {
		b[i] = tableCards[c]
	}
	h := [7]poker.Card{tableCards[hero[0]], tableCards[hero[1]], b[0], b[1], b[2], b[3], b[4]}
	v := [7]poker.Card{tableCards[villain[0]], tableCards[villain[1]], b[0], b[1], b[2], b[3], b[4]}

	// Larger scores are stronger
	hs, vs := poker.Eval7(&h), poker.Eval7(&v)
	switch {
	case hs > vs:
		return 1
	case hs < vs:
		return -1
	default:
		return 0
	}
}

// tableCards maps every deck index to the library's card encoding
var tableCards = func() [cards.DeckSize]poker.Card {
	var out [cards.DeckSize]poker.Card
	for _, c := range cards.Deck() {
		out[c] = toTableCard(c)
	}
	return out
}()

func toTableCard(c cards.Card) poker.Card {
	var s poker.Suit
	switch c.Suit() {
	case cards.Clubs:
		s = poker.Club
	case cards.Diamonds:
		s = poker.Diamond
	case cards.Hearts:
		s = poker.Heart
	default:
		s = poker.Spade
	}
	// Library ranks run 1..13 with the ace low
	r := poker.Rank(c.Rank())
	if c.Rank() == cards.Ace {
		r = poker.Rank(1)
	}
	card, err := poker.MakeCard(s, r)
	if err != nil {
		panic(err)
	}
	return card
}

// EvaluatorByName returns the evaluator registered under name ("native" or "table")
func EvaluatorByName(name string) (Evaluator, bool) {
	switch name {
	case "", "native":
		return NativeEvaluator{}, true
	case "table":
		return TableEvaluator{}, true
	default:
		return nil, false
	}
}
