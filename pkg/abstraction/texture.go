package abstraction

import (
	"github.com/behrlich/postflop-solver/pkg/cards"
)

// Wetness scores how coordinated a board is, from 0 (dry) to 3 (very wet).
//
// Suits add 2 for four or more of one suit, 1 for exactly three. Ranks add 1
// when at least two neighbouring distinct ranks sit within two pips of each
// other, and 1 more when the board is paired. Boards shorter than a flop
// score 1.
func Wetness(board []cards.Card) int {
	if len(board) < 3 {
		return 1
	}

	var suitCount [4]int
	var rankSeen [cards.Ace + 1]bool
	for _, c := range board {
		suitCount[c.Suit()]++
		rankSeen[c.Rank()] = true
	}

	maxSuit := 0
	for _, n := range suitCount {
		if n > maxSuit {
			maxSuit = n
		}
	}

	unique := 0
	closeGaps := 0
	prev := -1
	for r := int(cards.Two); r <= int(cards.Ace); r++ {
		if !rankSeen[r] {
			continue
		}
		unique++
		if prev >= 0 && r-prev <= 2 {
			closeGaps++
		}
		prev = r
	}

	score := 0
	switch {
	case maxSuit >= 4:
		score += 2
	case maxSuit == 3:
		score++
	}
	if closeGaps >= 2 {
		score++
	}
	if unique < len(board) {
		score++
	}

	return clamp(score, 0, WetnessBuckets-1)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
