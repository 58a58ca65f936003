package cards

// Category represents the class of a poker hand
type Category uint8

const (
	HighCard Category = iota
	OnePair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
)

// HandScore is the comparable value of a 5-card poker hand.
// Higher scores beat lower scores; equal scores tie.
type HandScore struct {
	Category Category
	Tiebreak [5]Rank // Group ranks then kickers, descending; unused slots are zero
}

// Compare returns -1 if h < other, 0 if equal, 1 if h > other
func (h HandScore) Compare(other HandScore) int {
	if h.Category != other.Category {
		if h.Category < other.Category {
			return -1
		}
		return 1
	}

	for i := 0; i < 5; i++ {
		if h.Tiebreak[i] != other.Tiebreak[i] {
			if h.Tiebreak[i] < other.Tiebreak[i] {
				return -1
			}
			return 1
		}
	}

	return 0
}

// Evaluate scores 5 or 7 cards. Any other count is a caller error and panics.
func Evaluate(cards []Card) HandScore {
	switch len(cards) {
	case 5:
		return Score5([5]Card(cards))
	case 7:
		return Best7([7]Card(cards))
	default:
		panic("Evaluate requires exactly 5 or 7 cards")
	}
}

// Best7 returns the best 5-card score among the 21 subsets of 7 cards
func Best7(cards [7]Card) HandScore {
	best := HandScore{Category: HighCard}
	first := true

	var hand [5]Card
	for i := 0; i < 7; i++ {
		for j := i + 1; j < 7; j++ {
			// The five cards kept are everything except i and j
			n := 0
			for k := 0; k < 7; k++ {
				if k != i && k != j {
					hand[n] = cards[k]
					n++
				}
			}
			score := Score5(hand)
			if first || score.Compare(best) > 0 {
				best = score
				first = false
			}
		}
	}

	return best
}

// Score5 evaluates exactly 5 cards
func Score5(cards [5]Card) HandScore {
	var rankCounts [Ace + 1]int
	var suitCounts [4]int

	for _, card := range cards {
		rankCounts[card.Rank()]++
		suitCounts[card.Suit()]++
	}

	isFlush := false
	for _, count := range suitCounts {
		if count == 5 {
			isFlush = true
			break
		}
	}

	isStraight, straightHigh := checkStraight(&rankCounts)

	if isFlush && isStraight {
		return HandScore{
			Category: StraightFlush,
			Tiebreak: [5]Rank{straightHigh},
		}
	}

	groups, n := rankGroups(&rankCounts)

	if groups[0].count == 4 {
		return HandScore{
			Category: FourOfAKind,
			Tiebreak: [5]Rank{groups[0].rank, groups[1].rank},
		}
	}

	if n >= 2 && groups[0].count == 3 && groups[1].count == 2 {
		return HandScore{
			Category: FullHouse,
			Tiebreak: [5]Rank{groups[0].rank, groups[1].rank},
		}
	}

	if isFlush {
		// Five distinct ranks, already sorted descending by rankGroups
		return HandScore{
			Category: Flush,
			Tiebreak: [5]Rank{groups[0].rank, groups[1].rank, groups[2].rank, groups[3].rank, groups[4].rank},
		}
	}

	if isStraight {
		return HandScore{
			Category: Straight,
			Tiebreak: [5]Rank{straightHigh},
		}
	}

	if groups[0].count == 3 {
		return HandScore{
			Category: ThreeOfAKind,
			Tiebreak: [5]Rank{groups[0].rank, groups[1].rank, groups[2].rank},
		}
	}

	if n >= 2 && groups[0].count == 2 && groups[1].count == 2 {
		return HandScore{
			Category: TwoPair,
			Tiebreak: [5]Rank{groups[0].rank, groups[1].rank, groups[2].rank},
		}
	}

	if groups[0].count == 2 {
		return HandScore{
			Category: OnePair,
			Tiebreak: [5]Rank{groups[0].rank, groups[1].rank, groups[2].rank, groups[3].rank},
		}
	}

	return HandScore{
		Category: HighCard,
		Tiebreak: [5]Rank{groups[0].rank, groups[1].rank, groups[2].rank, groups[3].rank, groups[4].rank},
	}
}

type rankGroup struct {
	rank  Rank
	count int
}

// rankGroups returns ranks grouped by count, sorted by count descending, then rank descending
func rankGroups(rankCounts *[Ace + 1]int) ([5]rankGroup, int) {
	var groups [5]rankGroup
	n := 0

	for r := int(Ace); r >= int(Two); r-- {
		if rankCounts[r] > 0 {
			groups[n] = rankGroup{rank: Rank(r), count: rankCounts[r]}
			n++
		}
	}

	// Insertion sort on at most five entries; stable, so equal counts stay rank-descending
	for i := 1; i < n; i++ {
		g := groups[i]
		j := i - 1
		for j >= 0 && groups[j].count < g.count {
			groups[j+1] = groups[j]
			j--
		}
		groups[j+1] = g
	}

	return groups, n
}

// checkStraight checks if the ranks form a straight
// Returns (isStraight, highCard)
func checkStraight(rankCounts *[Ace + 1]int) (bool, Rank) {
	for h := int(Ace); h >= int(Six); h-- {
		hasStraight := true
		for i := 0; i < 5; i++ {
			if rankCounts[h-i] == 0 {
				hasStraight = false
				break
			}
		}
		if hasStraight {
			return true, Rank(h)
		}
	}

	// Wheel (A-2-3-4-5) plays as five-high
	if rankCounts[Ace] > 0 && rankCounts[Two] > 0 && rankCounts[Three] > 0 &&
		rankCounts[Four] > 0 && rankCounts[Five] > 0 {
		return true, Five
	}

	return false, 0
}

// String returns a human-readable representation of the hand category
func (c Category) String() string {
	switch c {
	case HighCard:
		return "High Card"
	case OnePair:
		return "One Pair"
	case TwoPair:
		return "Two Pair"
	case ThreeOfAKind:
		return "Three of a Kind"
	case Straight:
		return "Straight"
	case Flush:
		return "Flush"
	case FullHouse:
		return "Full House"
	case FourOfAKind:
		return "Four of a Kind"
	case StraightFlush:
		return "Straight Flush"
	default:
		return "Unknown"
	}
}
