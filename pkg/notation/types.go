package notation

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/behrlich/postflop-solver/pkg/abstraction"
	"github.com/behrlich/postflop-solver/pkg/cards"
	"github.com/behrlich/postflop-solver/pkg/resolver"
)

// Position represents a player's seat label at the table
type Position string

const (
	BTN Position = "BTN" // Button
	SB  Position = "SB"  // Small blind
	BB  Position = "BB"  // Big blind
	UTG Position = "UTG" // Under the gun
	MP  Position = "MP"  // Middle position
	CO  Position = "CO"  // Cutoff
)

// Player is one seat in a spot. Hole is nil when the cards are unknown.
type Player struct {
	Position Position
	Hole     []cards.Card
	Stack    float64 // Chips behind
}

// Known reports whether the player's hole cards are given
func (p Player) Known() bool {
	return len(p.Hole) == 2
}

// Spot is a live decision point for the hero, the only player with known cards
type Spot struct {
	Players []Player
	Hero    int // Index into Players

	Pot        float64
	Board      []cards.Card
	ToCall     float64
	MinRaise   float64
	InPosition bool
	Aggressor  abstraction.Aggressor

	// ActivePlayers counts players still in the hand; zero means len(Players)
	ActivePlayers int
	ActionPath    []string
	ProfileKey    string

	// Equity is the hero's equity fraction when supplied with E
	Equity *float64
}

// Street determines the street from the board size
func (s *Spot) Street() abstraction.Street {
	return GetStreet(len(s.Board))
}

// GetStreet determines the street based on board cards
func GetStreet(boardSize int) abstraction.Street {
	switch boardSize {
	case 3:
		return abstraction.Flop
	case 4:
		return abstraction.Turn
	case 5:
		return abstraction.River
	default:
		return abstraction.Preflop
	}
}

// HeroPlayer returns the hero's seat
func (s *Spot) HeroPlayer() Player {
	return s.Players[s.Hero]
}

// HeroHole returns the hero's hole cards and whether they are known
func (s *Spot) HeroHole() ([2]cards.Card, bool) {
	hero := s.HeroPlayer()
	if !hero.Known() {
		return [2]cards.Card{}, false
	}
	return [2]cards.Card{hero.Hole[0], hero.Hole[1]}, true
}

// VillainStack returns the deepest stack among the hero's opponents
func (s *Spot) VillainStack() float64 {
	stack := 0.0
	for i, p := range s.Players {
		if i != s.Hero {
			stack = math.Max(stack, p.Stack)
		}
	}
	return stack
}

// Query converts the spot into a resolver query. The equity field is taken
// from E when present and left at zero otherwise; callers that hold an
// equity source fill it in with QueryWithEquity.
func (s *Spot) Query() resolver.Query {
	eq := 0.0
	if s.Equity != nil {
		eq = *s.Equity
	}
	return s.QueryWithEquity(eq)
}

// QueryWithEquity converts the spot into a resolver query with the given equity
func (s *Spot) QueryWithEquity(eq float64) resolver.Query {
	active := s.ActivePlayers
	if active == 0 {
		active = len(s.Players)
	}
	var path []string
	if s.ActionPath != nil {
		path = append([]string{}, s.ActionPath...)
	}
	return resolver.Query{
		Street:        s.Street(),
		Equity:        eq,
		ToCall:        s.ToCall,
		Pot:           s.Pot,
		MinRaise:      s.MinRaise,
		HeroStack:     s.HeroPlayer().Stack,
		VillainStack:  s.VillainStack(),
		Board:         append([]cards.Card{}, s.Board...),
		InPosition:    s.InPosition,
		ActivePlayers: active,
		ProfileKey:    s.ProfileKey,
		Aggressor:     s.Aggressor,
		ActionPath:    path,
	}
}

// String renders the spot back into notation
func (s *Spot) String() string {
	players := make([]string, len(s.Players))
	for i, p := range s.Players {
		if p.Known() {
			players[i] = fmt.Sprintf("%s:%s%s:S%s", p.Position, p.Hole[0], p.Hole[1], formatAmount(p.Stack))
		} else {
			players[i] = fmt.Sprintf("%s:S%s", p.Position, formatAmount(p.Stack))
		}
	}

	parts := []string{
		strings.Join(players, "/"),
		"P" + formatAmount(s.Pot),
		strings.Join(cards.Codes(s.Board), ""),
	}
	if s.ToCall != 0 {
		parts = append(parts, "C"+formatAmount(s.ToCall))
	}
	if s.MinRaise != 0 {
		parts = append(parts, "M"+formatAmount(s.MinRaise))
	}
	if s.InPosition {
		parts = append(parts, "IP")
	} else {
		parts = append(parts, "OOP")
	}
	if s.Aggressor != abstraction.AggressorNone {
		parts = append(parts, "A"+s.Aggressor.String())
	}
	if s.ActivePlayers != 0 {
		parts = append(parts, "N"+strconv.Itoa(s.ActivePlayers))
	}
	if len(s.ActionPath) > 0 {
		parts = append(parts, "H"+strings.Join(s.ActionPath, "/"))
	}
	if s.ProfileKey != "" {
		parts = append(parts, "K"+s.ProfileKey)
	}
	if s.Equity != nil {
		parts = append(parts, "E"+formatAmount(*s.Equity))
	}
	return strings.Join(parts, "|")
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
