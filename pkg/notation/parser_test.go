package notation

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/behrlich/postflop-solver/pkg/abstraction"
	"github.com/behrlich/postflop-solver/pkg/cards"
)

func TestParseSpot_FullRiver(t *testing.T) {
	spot, err := ParseSpot("BTN:AsKd:S400/BB:S380|P100|Kh9s4c7d2s|C20|M10|IP|Aopp|N3|Hc/b50|Kp1|E0.72")
	if err != nil {
		t.Fatalf("ParseSpot failed: %v", err)
	}

	if len(spot.Players) != 2 {
		t.Fatalf("expected 2 players, got %d", len(spot.Players))
	}
	if spot.Hero != 0 {
		t.Errorf("expected hero 0, got %d", spot.Hero)
	}
	if spot.Players[0].Position != BTN || spot.Players[1].Position != BB {
		t.Errorf("unexpected positions %v / %v", spot.Players[0].Position, spot.Players[1].Position)
	}
	if spot.Players[1].Known() {
		t.Error("villain cards should be unknown")
	}
	hole, ok := spot.HeroHole()
	if !ok || hole != [2]cards.Card{cards.NewCard(cards.Ace, cards.Spades), cards.NewCard(cards.King, cards.Diamonds)} {
		t.Errorf("unexpected hero hole %v (known=%v)", hole, ok)
	}
	if spot.Pot != 100 || spot.ToCall != 20 || spot.MinRaise != 10 {
		t.Errorf("pot/toCall/minRaise = %v/%v/%v", spot.Pot, spot.ToCall, spot.MinRaise)
	}
	if spot.Street() != abstraction.River {
		t.Errorf("expected river, got %v", spot.Street())
	}
	if !spot.InPosition {
		t.Error("expected in position")
	}
	if spot.Aggressor != abstraction.AggressorOpponent {
		t.Errorf("expected opponent aggressor, got %v", spot.Aggressor)
	}
	if spot.ActivePlayers != 3 {
		t.Errorf("expected 3 active players, got %d", spot.ActivePlayers)
	}
	if diff := cmp.Diff([]string{"c", "b50"}, spot.ActionPath); diff != "" {
		t.Errorf("action path mismatch (-want +got):\n%s", diff)
	}
	if spot.ProfileKey != "p1" {
		t.Errorf("expected profile p1, got %q", spot.ProfileKey)
	}
	if spot.Equity == nil || *spot.Equity != 0.72 {
		t.Errorf("expected equity 0.72, got %v", spot.Equity)
	}
}

func TestParseSpot_Minimal(t *testing.T) {
	spot, err := ParseSpot("BTN:S100/BB:QhQd:S90|P20|Kh9s4c")
	if err != nil {
		t.Fatalf("ParseSpot failed: %v", err)
	}

	if spot.Hero != 1 {
		t.Errorf("expected hero 1 (BB), got %d", spot.Hero)
	}
	if spot.Street() != abstraction.Flop {
		t.Errorf("expected flop, got %v", spot.Street())
	}
	if spot.InPosition || spot.ToCall != 0 || spot.Equity != nil || spot.ActionPath != nil {
		t.Errorf("unexpected defaults: %+v", spot)
	}
	if spot.VillainStack() != 100 {
		t.Errorf("expected villain stack 100, got %v", spot.VillainStack())
	}
}

func TestParseSpot_UnknownHeroWithEquity(t *testing.T) {
	spot, err := ParseSpot("CO:??:S200/BTN:S150/BB:S90|P30|Kh9s4c7d|N3|E0.4")
	if err != nil {
		t.Fatalf("ParseSpot failed: %v", err)
	}
	if spot.Hero != 0 {
		t.Errorf("expected first seat as hero, got %d", spot.Hero)
	}
	if _, ok := spot.HeroHole(); ok {
		t.Error("hero hole should be unknown")
	}
	if spot.VillainStack() != 150 {
		t.Errorf("expected deepest villain stack 150, got %v", spot.VillainStack())
	}
}

func TestParseSpot_Errors(t *testing.T) {
	tests := []struct {
		name string
		fen  string
	}{
		{"empty", ""},
		{"too few parts", "BTN:AsKd:S100/BB:S100|P10"},
		{"single player", "BTN:AsKd:S100|P10|Kh9s4c"},
		{"bad stack", "BTN:AsKd:100/BB:S100|P10|Kh9s4c"},
		{"negative stack", "BTN:AsKd:S-5/BB:S100|P10|Kh9s4c"},
		{"bad pot", "BTN:AsKd:S100/BB:S100|10|Kh9s4c"},
		{"board size", "BTN:AsKd:S100/BB:S100|P10|Kh9s"},
		{"duplicate board card", "BTN:AsKd:S100/BB:S100|P10|Kh9sKh"},
		{"hole on board", "BTN:AsKd:S100/BB:S100|P10|Kh9sAs"},
		{"two heroes", "BTN:AsKd:S100/BB:QhQd:S100|P10|Kh9s4c"},
		{"three hole cards", "BTN:AsKdQc:S100/BB:S100|P10|Kh9s4c"},
		{"no hero and no equity", "BTN:S100/BB:S100|P10|Kh9s4c"},
		{"unknown field", "BTN:AsKd:S100/BB:S100|P10|Kh9s4c|Z1"},
		{"duplicate field", "BTN:AsKd:S100/BB:S100|P10|Kh9s4c|C5|C6"},
		{"ip and oop", "BTN:AsKd:S100/BB:S100|P10|Kh9s4c|IP|OOP"},
		{"bad aggressor", "BTN:AsKd:S100/BB:S100|P10|Kh9s4c|Amaybe"},
		{"bad count", "BTN:AsKd:S100/BB:S100|P10|Kh9s4c|Nx"},
		{"one active", "BTN:AsKd:S100/BB:S100|P10|Kh9s4c|N1"},
		{"equity range", "BTN:AsKd:S100/BB:S100|P10|Kh9s4c|E1.5"},
		{"bad path token", "BTN:AsKd:S100/BB:S100|P10|Kh9s4c7d2s|Hc/x"},
		{"bet without amount", "BTN:AsKd:S100/BB:S100|P10|Kh9s4c7d2s|Hb"},
		{"empty profile", "BTN:AsKd:S100/BB:S100|P10|Kh9s4c|K"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseSpot(tt.fen); err == nil {
				t.Errorf("ParseSpot(%q) expected error", tt.fen)
			}
		})
	}
}

func TestSpotQuery(t *testing.T) {
	spot := MustParseSpot("BTN:AsKd:S400/BB:S380|P100|Kh9s4c7d2s|C20|M10|IP|Aopp|N3|Hc/b50|Kp1|E0.72")
	q := spot.Query()

	if q.Street != abstraction.River {
		t.Errorf("expected river, got %v", q.Street)
	}
	if q.Equity != 0.72 {
		t.Errorf("expected equity 0.72, got %v", q.Equity)
	}
	if q.HeroStack != 400 || q.VillainStack != 380 {
		t.Errorf("stacks = %v/%v, want 400/380", q.HeroStack, q.VillainStack)
	}
	if q.ActivePlayers != 3 || q.Players() != 3 {
		t.Errorf("expected 3 active players, got %d", q.ActivePlayers)
	}
	if q.ProfileKey != "p1" || !q.InPosition || q.Aggressor != abstraction.AggressorOpponent {
		t.Errorf("unexpected query %+v", q)
	}
	if len(q.Board) != 5 {
		t.Errorf("expected 5 board cards, got %d", len(q.Board))
	}

	// The query owns its slices
	q.ActionPath[0] = "f"
	q.Board[0] = cards.NewCard(cards.Two, cards.Clubs)
	if spot.ActionPath[0] != "c" || spot.Board[0] != cards.NewCard(cards.King, cards.Hearts) {
		t.Error("Query shares slices with the spot")
	}
}

func TestSpotQueryDefaults(t *testing.T) {
	spot := MustParseSpot("BTN:S100/BB:QhQd:S90|P20|Kh9s4c")
	q := spot.QueryWithEquity(0.8)

	if q.Equity != 0.8 {
		t.Errorf("expected equity 0.8, got %v", q.Equity)
	}
	if q.ActivePlayers != 2 {
		t.Errorf("expected active players from seat count, got %d", q.ActivePlayers)
	}
	if q.ActionPath != nil {
		t.Errorf("expected nil action path, got %v", q.ActionPath)
	}
}

func TestSpotString(t *testing.T) {
	tests := []string{
		"BTN:AsKd:S400/BB:S380|P100|Kh9s4c7d2s|C20|M10|IP|Aopponent|N3|Hc/b50|Kp1|E0.72",
		"BTN:S100/BB:QhQd:S90|P20|Kh9s4c|OOP",
		"SB:Ah2h:S97.5/BB:S98|P4.5||C1|M2|OOP",
	}

	for _, fen := range tests {
		t.Run(fen, func(t *testing.T) {
			spot := MustParseSpot(fen)
			if got := spot.String(); got != fen {
				t.Errorf("String() = %q, want %q", got, fen)
			}
		})
	}
}
