package notation

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/behrlich/postflop-solver/pkg/abstraction"
	"github.com/behrlich/postflop-solver/pkg/cards"
)

// ParseSpot parses a live spot string into a Spot
// Format: <players>|<pot>|<board>[|<field>...]
// Fields may appear in any order:
//
//	C<amount>   amount to call
//	M<amount>   minimum raise increment
//	IP / OOP    hero position relative to the opponent
//	A<who>      last street aggressor: none, self, opp (or n, s, o)
//	N<count>    active players
//	H<path>     river action path, tokens separated by /
//	K<key>      override profile key
//	E<equity>   hero equity as a fraction
//
// Example: "BTN:AsKd:S400/BB:S380|P100|Kh9s4c7d2s|C20|M10|IP|Aopp|N3|Hc/b50|Kp1|E0.72"
func ParseSpot(notation string) (*Spot, error) {
	notation = strings.TrimSpace(notation)
	if notation == "" {
		return nil, fmt.Errorf("empty spot notation")
	}

	parts := strings.Split(notation, "|")
	if len(parts) < 3 {
		return nil, fmt.Errorf("invalid spot format: expected at least 3 parts separated by |, got %d", len(parts))
	}

	players, hero, err := parsePlayers(parts[0])
	if err != nil {
		return nil, fmt.Errorf("error parsing players: %w", err)
	}

	pot, err := parsePot(parts[1])
	if err != nil {
		return nil, fmt.Errorf("error parsing pot: %w", err)
	}

	board, err := parseBoard(parts[2])
	if err != nil {
		return nil, fmt.Errorf("error parsing board: %w", err)
	}

	spot := &Spot{
		Players: players,
		Hero:    hero,
		Pot:     pot,
		Board:   board,
	}

	seen := make(map[byte]bool)
	for _, field := range parts[3:] {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		tag := field[0]
		if field == "IP" || field == "OOP" {
			tag = 'I'
		}
		if seen[tag] {
			return nil, fmt.Errorf("duplicate field %q", field)
		}
		seen[tag] = true
		if err := parseField(spot, field); err != nil {
			return nil, fmt.Errorf("error parsing field %q: %w", field, err)
		}
	}

	if err := checkDeadCards(spot); err != nil {
		return nil, err
	}
	if _, ok := spot.HeroHole(); !ok && spot.Equity == nil {
		return nil, fmt.Errorf("spot needs hero hole cards or an E field")
	}
	if spot.ActivePlayers != 0 && spot.ActivePlayers < 2 {
		return nil, fmt.Errorf("active players must be at least 2, got %d", spot.ActivePlayers)
	}

	return spot, nil
}

// MustParseSpot is like ParseSpot but panics on error. Intended for tests and fixtures.
func MustParseSpot(notation string) *Spot {
	spot, err := ParseSpot(notation)
	if err != nil {
		panic(err)
	}
	return spot
}

// parsePlayers parses the players section: "POS:CARDS:STACK/POS:STACK/..."
// and returns the index of the hero, the only player with cards
func parsePlayers(playersStr string) ([]Player, int, error) {
	playersStr = strings.TrimSpace(playersStr)
	if playersStr == "" {
		return nil, 0, fmt.Errorf("empty players string")
	}

	playerParts := strings.Split(playersStr, "/")
	if len(playerParts) < 2 {
		return nil, 0, fmt.Errorf("need at least 2 players, got %d", len(playerParts))
	}
	players := make([]Player, 0, len(playerParts))
	hero := -1

	for i, playerStr := range playerParts {
		player, err := parsePlayer(playerStr)
		if err != nil {
			return nil, 0, fmt.Errorf("error parsing player %q: %w", playerStr, err)
		}
		if player.Known() {
			if hero >= 0 {
				return nil, 0, fmt.Errorf("only the hero may show cards, got %s and %s",
					players[hero].Position, player.Position)
			}
			hero = i
		}
		players = append(players, player)
	}

	// With no cards shown the first seat is the hero
	if hero < 0 {
		hero = 0
	}
	return players, hero, nil
}

// parsePlayer parses a single player: "POS:CARDS:STACK" or "POS:STACK".
// CARDS can be specific hole cards ("AsKd") or unknown ("??").
func parsePlayer(playerStr string) (Player, error) {
	playerStr = strings.TrimSpace(playerStr)
	parts := strings.Split(playerStr, ":")

	var cardsStr, stackStr string
	switch len(parts) {
	case 2:
		stackStr = parts[1]
	case 3:
		cardsStr = strings.TrimSpace(parts[1])
		stackStr = parts[2]
	default:
		return Player{}, fmt.Errorf("invalid player format %q (expected POS:CARDS:STACK or POS:STACK)", playerStr)
	}

	position := Position(strings.TrimSpace(parts[0]))
	if position == "" {
		return Player{}, fmt.Errorf("missing position")
	}
	stackStr = strings.TrimSpace(stackStr)

	// Parse stack (format: S100 for 100 chips)
	if len(stackStr) < 2 || stackStr[0] != 'S' {
		return Player{}, fmt.Errorf("invalid stack format %q (expected S{amount})", stackStr)
	}

	stack, err := parseAmount(stackStr[1:])
	if err != nil {
		return Player{}, fmt.Errorf("invalid stack amount %q: %w", stackStr, err)
	}

	player := Player{Position: position, Stack: stack}
	if cardsStr == "" || cardsStr == "??" {
		return player, nil
	}

	hole, err := cards.ParseCards(cardsStr)
	if err != nil {
		return Player{}, fmt.Errorf("invalid hole cards %q: %w", cardsStr, err)
	}
	if len(hole) != 2 {
		return Player{}, fmt.Errorf("expected 2 hole cards, got %d", len(hole))
	}
	player.Hole = hole
	return player, nil
}

// parsePot parses the pot section: "P100"
func parsePot(potStr string) (float64, error) {
	potStr = strings.TrimSpace(potStr)
	if len(potStr) < 2 || potStr[0] != 'P' {
		return 0, fmt.Errorf("invalid pot format %q (expected P{amount})", potStr)
	}

	pot, err := parseAmount(potStr[1:])
	if err != nil {
		return 0, fmt.Errorf("invalid pot amount %q: %w", potStr, err)
	}
	return pot, nil
}

// parseBoard parses the board section: "Kh9s4c" (3, 4 or 5 cards, or empty preflop)
func parseBoard(boardStr string) ([]cards.Card, error) {
	boardStr = strings.TrimSpace(boardStr)
	if boardStr == "" {
		return []cards.Card{}, nil
	}

	board, err := cards.ParseCards(boardStr)
	if err != nil {
		return nil, err
	}

	switch len(board) {
	case 3, 4, 5:
		return board, nil
	default:
		return nil, fmt.Errorf("invalid board size %d (expected 3, 4 or 5 cards)", len(board))
	}
}

// parseField parses one tagged field into the spot
func parseField(spot *Spot, field string) error {
	switch {
	case field == "IP":
		spot.InPosition = true
		return nil
	case field == "OOP":
		spot.InPosition = false
		return nil
	}

	value := field[1:]
	switch field[0] {
	case 'C':
		amount, err := parseAmount(value)
		if err != nil {
			return err
		}
		spot.ToCall = amount
	case 'M':
		amount, err := parseAmount(value)
		if err != nil {
			return err
		}
		spot.MinRaise = amount
	case 'A':
		aggressor, err := abstraction.ParseAggressor(value)
		if err != nil {
			return err
		}
		spot.Aggressor = aggressor
	case 'N':
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid player count %q: %w", value, err)
		}
		spot.ActivePlayers = n
	case 'H':
		path, err := parseActionPath(value)
		if err != nil {
			return err
		}
		spot.ActionPath = path
	case 'K':
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("empty profile key")
		}
		spot.ProfileKey = strings.TrimSpace(value)
	case 'E':
		eq, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid equity %q: %w", value, err)
		}
		if !(eq >= 0 && eq <= 1) {
			return fmt.Errorf("equity %v outside [0, 1]", eq)
		}
		spot.Equity = &eq
	default:
		return fmt.Errorf("unknown field tag %q", field[0])
	}
	return nil
}

// parseActionPath parses a river action path: "c/b50/r100/f"
func parseActionPath(pathStr string) ([]string, error) {
	pathStr = strings.TrimSpace(pathStr)
	if pathStr == "" {
		return []string{}, nil
	}

	tokens := strings.Split(pathStr, "/")
	for _, token := range tokens {
		if err := checkPathToken(token); err != nil {
			return nil, fmt.Errorf("error parsing action %q: %w", token, err)
		}
	}
	return tokens, nil
}

// checkPathToken validates a single path token: f, c, b<amount> or r<amount>
func checkPathToken(token string) error {
	if token == "" {
		return fmt.Errorf("empty action")
	}
	switch token[0] {
	case 'f', 'c':
		if len(token) != 1 {
			return fmt.Errorf("%c takes no amount", token[0])
		}
		return nil
	case 'b', 'r':
		if len(token) < 2 {
			return fmt.Errorf("%c requires an amount", token[0])
		}
		_, err := parseAmount(token[1:])
		return err
	default:
		return fmt.Errorf("unknown action type: %c", token[0])
	}
}

// parseAmount parses a non-negative chip amount
func parseAmount(s string) (float64, error) {
	amount, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if amount < 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, fmt.Errorf("invalid amount %v", amount)
	}
	return amount, nil
}

// checkDeadCards rejects hole cards that also appear on the board
func checkDeadCards(spot *Spot) error {
	hole, ok := spot.HeroHole()
	if !ok {
		return nil
	}
	for _, c := range spot.Board {
		if c == hole[0] || c == hole[1] {
			return fmt.Errorf("card %s is both in the hero's hand and on the board", c)
		}
	}
	return nil
}
