package cards

import (
	"math/rand"
	"testing"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name         string
		cards        string
		wantCategory Category
	}{
		{"Royal flush", "AhKhQhJhTh2d3c", StraightFlush},
		{"Straight flush", "9s8s7s6s5s2h3d", StraightFlush},
		{"Wheel straight flush", "5d4d3d2dAd7h8c", StraightFlush},
		{"Quad aces", "AsAhAdAcKs2d3c", FourOfAKind},
		{"Quad twos", "2s2h2d2cAhKsQd", FourOfAKind},
		{"Aces full of kings", "AsAhAdKsKh2d3c", FullHouse},
		{"Two trips make a full house", "AsAhAdKsKhKd3c", FullHouse},
		{"Threes full of twos", "3s3h3d2s2hAcKd", FullHouse},
		{"Ace-high flush", "AhKh9h5h2h3dQc", Flush},
		{"King-high flush", "KsQs9s7s2s3h4d", Flush},
		{"Broadway straight", "AhKdQcJs Ts 2h 3c", Straight},
		{"Wheel straight", "Ah2s3d4c5h7s9d", Straight},
		{"Seven-high straight", "7h6d5s4c3h2sAd", Straight},
		{"Trip aces", "AsAhAdKsQh2d3c", ThreeOfAKind},
		{"Aces and kings", "AsAhKdKs Qh 2d 3c", TwoPair},
		{"Threes and twos", "3s3h2d2sAhKdQc", TwoPair},
		{"Pair of aces", "AsAhKdQs Jh 9d 7c", OnePair},
		{"Pair of twos", "2s2hAhKd9cJs7d", OnePair},
		{"Ace high", "AhKd9s7c5h3d2s", HighCard},
		{"Five card flush", "Ah9h7h4h2h", Flush},
		{"Five card pair", "KsKd9h4c2s", OnePair},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cards, err := ParseCards(tt.cards)
			if err != nil {
				t.Fatalf("Failed to parse cards: %v", err)
			}

			got := Evaluate(cards)
			if got.Category != tt.wantCategory {
				t.Errorf("Evaluate(%v) = %v, want %v", tt.name, got.Category, tt.wantCategory)
			}
		})
	}
}

func TestEvaluatePanicsOnBadLength(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Evaluate with 6 cards should panic")
		}
	}()
	Evaluate(MustParseCards("AsKsQsJsTs9s"))
}

func TestTiebreakLayout(t *testing.T) {
	tests := []struct {
		name  string
		cards string
		want  HandScore
	}{
		{"Wheel plays five-high", "Ah2s3d4c5h", HandScore{Straight, [5]Rank{Five}}},
		{"Two pair with kicker", "KsKd4h4c9s", HandScore{TwoPair, [5]Rank{King, Four, Nine}}},
		{"Full house trips first", "4s4d4hKcKs", HandScore{FullHouse, [5]Rank{Four, King}}},
		{"Best kicker kept from seven", "AsAd9h8c2s3dKh", HandScore{OnePair, [5]Rank{Ace, King, Nine, Eight}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(MustParseCards(tt.cards))
			if got != tt.want {
				t.Errorf("Evaluate(%s) = %+v, want %+v", tt.cards, got, tt.want)
			}
		})
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		name  string
		hand1 string
		hand2 string
		want  int // -1 if hand1 < hand2, 0 if equal, 1 if hand1 > hand2
	}{
		{"Straight flush beats quads", "9s8s7s6s5s2h3d", "AsAhAdAcKs2d3c", 1},
		{"Quads beat full house", "2s2h2d2cAhKsQd", "AsAhAdKsKh2d3c", 1},
		{"Full house beats flush", "3s3h3d2s2hAcKd", "AhKh9h5h2h3dQc", 1},
		{"Flush beats straight", "AhKh9h5h2h3dQc", "AhKdQcJsTs2h3c", 1},
		{"Six-high straight beats wheel", "6h5d4c3s2h9dKc", "Ah2s3d4c5h9sKd", 1},
		{"Higher pair wins", "AsAhKdQsJh9d7c", "KsKhAdQsJh9d7c", 1},
		{"Same pair, higher kicker wins", "AsAhKdQsJh9d7c", "AdAcQh9s7d5c3h", 1},
		{"Lower two pair loses", "9s9h4d4s2hKd7c", "TsTh3d3s2hKd7c", -1},
		{"Identical hands tie", "AsAhKdQsJh9d7c", "AdAcKhQcJs9h7s", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cards1, err := ParseCards(tt.hand1)
			if err != nil {
				t.Fatalf("Failed to parse hand1: %v", err)
			}

			cards2, err := ParseCards(tt.hand2)
			if err != nil {
				t.Fatalf("Failed to parse hand2: %v", err)
			}

			val1 := Evaluate(cards1)
			val2 := Evaluate(cards2)
			got := val1.Compare(val2)

			if got != tt.want {
				t.Errorf("Compare(%v) = %v, want %v\n  hand1: %v %v\n  hand2: %v %v",
					tt.name, got, tt.want,
					val1.Category, val1.Tiebreak,
					val2.Category, val2.Tiebreak)
			}
			if back := val2.Compare(val1); back != -tt.want {
				t.Errorf("Compare is not antisymmetric: got %d, want %d", back, -tt.want)
			}
		})
	}
}

func TestCheckStraight(t *testing.T) {
	tests := []struct {
		name     string
		ranks    []Rank
		wantIs   bool
		wantHigh Rank
	}{
		{"Broadway", []Rank{Ace, King, Queen, Jack, Ten}, true, Ace},
		{"Wheel (A-2-3-4-5)", []Rank{Ace, Two, Three, Four, Five}, true, Five},
		{"Seven high straight", []Rank{Seven, Six, Five, Four, Three}, true, Seven},
		{"Not a straight (gap)", []Rank{Ace, King, Queen, Jack, Nine}, false, 0},
		{"Not a straight (pair)", []Rank{Ace, Ace, King, Queen, Jack}, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rankCounts [Ace + 1]int
			for _, rank := range tt.ranks {
				rankCounts[rank]++
			}

			gotIs, gotHigh := checkStraight(&rankCounts)
			if gotIs != tt.wantIs || gotHigh != tt.wantHigh {
				t.Errorf("checkStraight(%v) = (%v, %v), want (%v, %v)",
					tt.name, gotIs, gotHigh, tt.wantIs, tt.wantHigh)
			}
		})
	}
}

func TestBest7OrderInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	deck := Deck()

	for i := 0; i < 20000; i++ {
		rng.Shuffle(len(deck), func(a, b int) { deck[a], deck[b] = deck[b], deck[a] })
		var hand [7]Card
		copy(hand[:], deck[:7])
		want := Evaluate(hand[:])

		shuffled := hand
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		got := Evaluate(shuffled[:])
		if got.Compare(want) != 0 {
			t.Fatalf("%v scored %v %v, reordered %v scored %v %v",
				hand, want.Category, want.Tiebreak, shuffled, got.Category, got.Tiebreak)
		}
	}
}
