package equity

import (
	"fmt"

	"github.com/behrlich/postflop-solver/pkg/cards"
)

// Enumerate computes exact equity against every villain holding on a complete
// board. On the river there are only C(45,2) = 990 holdings, which is cheaper
// than a large Monte Carlo run and carries no sampling error.
func Enumerate(eval Evaluator, hero [2]cards.Card, board []cards.Card) (Result, error) {
	if len(board) != 5 {
		return Result{}, fmt.Errorf("enumerate requires a 5-card board, got %d", len(board))
	}
	if eval == nil {
		eval = NativeEvaluator{}
	}

	dead := append([]cards.Card{hero[0], hero[1]}, board...)
	rest := appendRemaining(nil, dead)
	if len(rest) != cards.DeckSize-7 {
		return Result{}, fmt.Errorf("hero and board share cards")
	}
	full := [5]cards.Card(board)

	var res Result
	for i := 0; i < len(rest); i++ {
		for j := i + 1; j < len(rest); j++ {
			switch eval.Showdown(hero, [2]cards.Card{rest[i], rest[j]}, full) {
			case 1:
				res.Wins++
			case 0:
				res.Ties++
			}
			res.Samples++
		}
	}
	return res, nil
}
