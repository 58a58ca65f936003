package cards

import (
	"fmt"
	"strings"
)

// Rank represents a card rank (2-A), valued by its pip count with Ace high
type Rank uint8

const (
	Two Rank = iota + 2
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

// Suit represents a card suit
type Suit uint8

const (
	Clubs Suit = iota
	Diamonds
	Hearts
	Spades
)

// DeckSize is the number of distinct cards in a standard deck
const DeckSize = 52

// Card is one of the 52 cards, stored as an index so that
// Rank = index/4 + 2 and Suit = index%4
type Card uint8

// NewCard creates a card from rank and suit
func NewCard(rank Rank, suit Suit) Card {
	return Card((uint8(rank)-uint8(Two))*4 + uint8(suit))
}

// Rank returns the card's rank
func (c Card) Rank() Rank {
	return Rank(uint8(c)/4) + Two
}

// Suit returns the card's suit
func (c Card) Suit() Suit {
	return Suit(uint8(c) % 4)
}

// Valid reports whether the card index is inside the deck
func (c Card) Valid() bool {
	return c < DeckSize
}

// ParseCard parses a card from string notation (e.g., "As", "Kh", "Td")
func ParseCard(s string) (Card, error) {
	s = strings.TrimSpace(s)
	if len(s) != 2 {
		return 0, fmt.Errorf("invalid card string: %q (must be 2 characters)", s)
	}

	rank, err := parseRank(s[0])
	if err != nil {
		return 0, err
	}

	suit, err := parseSuit(s[1])
	if err != nil {
		return 0, err
	}

	return NewCard(rank, suit), nil
}

// parseRank converts a character to a Rank
func parseRank(b byte) (Rank, error) {
	switch b {
	case '2', '3', '4', '5', '6', '7', '8', '9':
		return Rank(b - '0'), nil
	case 'T', 't':
		return Ten, nil
	case 'J', 'j':
		return Jack, nil
	case 'Q', 'q':
		return Queen, nil
	case 'K', 'k':
		return King, nil
	case 'A', 'a':
		return Ace, nil
	default:
		return 0, fmt.Errorf("invalid rank: %c", b)
	}
}

// parseSuit converts a character to a Suit
func parseSuit(b byte) (Suit, error) {
	switch b {
	case 's', 'S':
		return Spades, nil
	case 'h', 'H':
		return Hearts, nil
	case 'd', 'D':
		return Diamonds, nil
	case 'c', 'C':
		return Clubs, nil
	default:
		return 0, fmt.Errorf("invalid suit: %c", b)
	}
}

// String returns the card in standard notation (e.g., "As", "Kh")
func (c Card) String() string {
	if !c.Valid() {
		return "??"
	}
	return c.Rank().String() + c.Suit().String()
}

const rankChars = "23456789TJQKA"

// String returns the rank as a single character
func (r Rank) String() string {
	if r < Two || r > Ace {
		return "?"
	}
	return rankChars[r-Two : r-Two+1]
}

// String returns the suit as a single character
func (s Suit) String() string {
	switch s {
	case Spades:
		return "s"
	case Hearts:
		return "h"
	case Diamonds:
		return "d"
	case Clubs:
		return "c"
	default:
		return "?"
	}
}

// ParseCards parses multiple cards from a string (e.g., "AsKhQd").
// Spaces and dashes between cards are ignored.
func ParseCards(s string) ([]Card, error) {
	s = strings.NewReplacer(" ", "", "-", "", ",", "").Replace(s)
	if len(s)%2 != 0 {
		return nil, fmt.Errorf("invalid cards string: %q (must have even length)", s)
	}

	cards := make([]Card, 0, len(s)/2)
	seen := uint64(0)
	for i := 0; i < len(s); i += 2 {
		card, err := ParseCard(s[i : i+2])
		if err != nil {
			return nil, fmt.Errorf("error parsing card at position %d: %w", i, err)
		}
		if seen&(1<<card) != 0 {
			return nil, fmt.Errorf("duplicate card %s at position %d", card, i)
		}
		seen |= 1 << card
		cards = append(cards, card)
	}

	return cards, nil
}

// MustParseCards is like ParseCards but panics on error. Intended for tests and fixtures.
func MustParseCards(s string) []Card {
	cards, err := ParseCards(s)
	if err != nil {
		panic(err)
	}
	return cards
}

// Deck returns all 52 cards in index order
func Deck() []Card {
	deck := make([]Card, DeckSize)
	for i := range deck {
		deck[i] = Card(i)
	}
	return deck
}

// Remaining returns the deck minus the excluded cards, in index order
func Remaining(exclude ...Card) []Card {
	var dead uint64
	for _, c := range exclude {
		dead |= 1 << c
	}
	out := make([]Card, 0, DeckSize-len(exclude))
	for i := Card(0); i < DeckSize; i++ {
		if dead&(1<<i) == 0 {
			out = append(out, i)
		}
	}
	return out
}

// Codes returns the string form of each card
func Codes(cards []Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.String()
	}
	return out
}

// MarshalText implements encoding.TextMarshaler
func (c Card) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("invalid card index %d", uint8(c))
	}
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (c *Card) UnmarshalText(text []byte) error {
	parsed, err := ParseCard(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
