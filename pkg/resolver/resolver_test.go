package resolver

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/behrlich/postflop-solver/pkg/abstraction"
	"github.com/behrlich/postflop-solver/pkg/cards"
	"github.com/behrlich/postflop-solver/pkg/dataset"
	"github.com/behrlich/postflop-solver/pkg/override"
	"github.com/behrlich/postflop-solver/pkg/strategy"
)

func testTable() *dataset.Table {
	t := dataset.NewTable()
	t.States["flop|s3|p0|r2|w0|i1|a1"] = dataset.State{MixBP: strategy.Mix{0, 4000, 6000}}
	t.States["flop|s3|p0|r2|w0|i1|a0"] = dataset.State{MixBP: strategy.Mix{0, 10000, 0}}
	t.States["flop|s3|p0|r2|w0"] = dataset.State{MixBP: strategy.Mix{0, 7000, 3000}}
	t.States["flop|s3|p2|r2|w0|i1|a0"] = dataset.State{MixBP: strategy.Mix{5000, 5000, 0}}
	t.States["river|s5|p0|r2|w1|i0|a0"] = dataset.State{MixBP: strategy.Mix{0, 2000, 8000}}
	return t
}

const riverOverrides = `{"spots": {
	"river|b2c-4d-9s-Kc-Kh|p0|r2|i1|a1": {"profiles": {"p1": {"root_mix_bp": [0, 3000, 7000], "node_mix_bp": {"c": [0, 1000, 9000]}}}},
	"river|b2c-4d-9s-Kc-Kh|p0|r2|i0|a0": {"profiles": {"p0": {"root_mix_bp": [0, 8000, 2000]}, "p1": {"root_mix_bp": [0, 0, 10000]}}}
}}`

const multiwayOverrides = `{"spots": {
	"turn|b4d-9s-Kc-Kh|n3|p0|r2|i1|a0": {"profiles": {"BTN": {"root_mix_bp": [0, 9000, 1000]}}}
}}`

func flopBoard() []cards.Card  { return cards.MustParseCards("Kh9s4c") }
func turnBoard() []cards.Card  { return cards.MustParseCards("KhKc9s4d") }
func riverBoard() []cards.Card { return cards.MustParseCards("KhKc9s4d2c") }

func baseQuery(street abstraction.Street, board []cards.Card) Query {
	return Query{
		Street:       street,
		Equity:       0.5,
		Pot:          100,
		MinRaise:     8,
		HeroStack:    500,
		VillainStack: 300,
		Board:        board,
		InPosition:   true,
	}
}

func newTestResolver(t *testing.T) *Resolver {
	t.Helper()
	river, err := override.Parse([]byte(riverOverrides), override.River)
	if err != nil {
		t.Fatal(err)
	}
	multiway, err := override.Parse([]byte(multiwayOverrides), override.Multiway)
	if err != nil {
		t.Fatal(err)
	}
	return New(testTable(), WithRiverOverrides(river), WithMultiwayOverrides(multiway))
}

func TestQueryCoords(t *testing.T) {
	q := baseQuery(abstraction.Flop, flopBoard())
	q.Aggressor = abstraction.AggressorSelf
	want := abstraction.Coords{Street: abstraction.Flop, Strength: 3, Pressure: 0, SPR: 2, Wetness: 0, Position: 1, Aggressor: 1}
	if diff := cmp.Diff(want, q.Coords()); diff != "" {
		t.Errorf("Coords mismatch (-want +got):\n%s", diff)
	}

	if q.Players() != 2 {
		t.Errorf("zero active players should count as heads-up")
	}
	q.ActivePlayers = 4
	if q.Players() != 4 {
		t.Errorf("Players() = %d, want 4", q.Players())
	}
}

func TestResolveTable(t *testing.T) {
	r := newTestResolver(t)

	tests := []struct {
		name      string
		modify    func(*Query)
		wantKey   string
		wantFound bool
		wantSrc   string
		wantAct   Action
		wantAmt   float64
		wantMix   string
		wantExact bool
	}{
		{
			name:      "full key",
			modify:    func(q *Query) { q.Aggressor = abstraction.AggressorSelf },
			wantKey:   "flop|s3|p0|r2|w0|i1|a1",
			wantFound: true,
			wantSrc:   SourceTable,
			wantAct:   Raise,
			wantAmt:   71,
			wantMix:   "Raise 60% | Check 40%",
			wantExact: true,
		},
		{
			name:      "aggressor fallback",
			modify:    func(q *Query) { q.Aggressor = abstraction.AggressorOpponent },
			wantKey:   "flop|s3|p0|r2|w0|i1|a0",
			wantFound: true,
			wantSrc:   SourceTable + " (aggressor fallback)",
			wantAct:   Check,
			wantMix:   "Check 100%",
		},
		{
			name:      "legacy key",
			modify:    func(q *Query) { q.InPosition = false },
			wantKey:   "flop|s3|p0|r2|w0",
			wantFound: true,
			wantSrc:   SourceTable + " (legacy state key)",
			wantAct:   Check,
			wantMix:   "Check 70% | Raise 30%",
		},
		{
			name:      "tie goes to the first action",
			modify:    func(q *Query) { q.ToCall = 20 },
			wantKey:   "flop|s3|p2|r2|w0|i1|a0",
			wantFound: true,
			wantSrc:   SourceTable,
			wantAct:   Fold,
			wantMix:   "Fold 50% | Call 50%",
			wantExact: true,
		},
		{
			name:    "miss",
			modify:  func(q *Query) { q.Equity = 0.95 },
			wantKey: "flop|s7|p0|r2|w0|i1|a0",
			wantSrc: SourceTableMiss,
			wantAct: Check,
		},
		{
			name:    "miss facing a bet calls",
			modify:  func(q *Query) { q.Equity = 0.95; q.ToCall = 50 },
			wantKey: "flop|s7|p3|r2|w0|i1|a0",
			wantSrc: SourceTableMiss,
			wantAct: Call,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := baseQuery(abstraction.Flop, flopBoard())
			tt.modify(&q)
			adv := r.Resolve(q)

			if adv.Found != tt.wantFound || adv.StateKey != tt.wantKey || adv.Source != tt.wantSrc {
				t.Errorf("got (found=%v, key=%s, source=%q), want (found=%v, key=%s, source=%q)",
					adv.Found, adv.StateKey, adv.Source, tt.wantFound, tt.wantKey, tt.wantSrc)
			}
			if adv.Action != tt.wantAct || adv.Amount != tt.wantAmt {
				t.Errorf("action = %s %v, want %s %v", adv.Action, adv.Amount, tt.wantAct, tt.wantAmt)
			}
			if adv.MixText != tt.wantMix {
				t.Errorf("MixText = %q, want %q", adv.MixText, tt.wantMix)
			}
			if adv.Exact != tt.wantExact {
				t.Errorf("Exact = %v, want %v", adv.Exact, tt.wantExact)
			}
		})
	}
}

func TestResolveNotPostflop(t *testing.T) {
	r := newTestResolver(t)
	for _, street := range []abstraction.Street{abstraction.Preflop, abstraction.Showdown} {
		q := baseQuery(street, nil)
		q.ToCall = 10
		adv := r.Resolve(q)
		if adv.Found || adv.StateKey != "n/a" || adv.Source != SourceUnavailable || adv.Action != Call {
			t.Errorf("%s: unexpected advice %+v", street, adv)
		}
		if adv.ActionMix == nil || len(adv.ActionMix) != 0 || adv.BestProb != 0 {
			t.Errorf("%s: miss should carry an empty mix", street)
		}
	}
}

func TestResolveRiverOverride(t *testing.T) {
	r := newTestResolver(t)

	tests := []struct {
		name    string
		modify  func(*Query)
		wantKey string
		wantSrc string
		wantAct Action
		exact   bool
	}{
		{
			name:    "exact spot and node",
			modify:  func(q *Query) { q.Aggressor = abstraction.AggressorSelf; q.ActionPath = []string{"c"} },
			wantKey: "river|b2c-4d-9s-Kc-Kh|p0|r2|i1|a1#p1:c",
			wantSrc: SourceRiverSolver + " (third-party river override)",
			wantAct: Raise,
			exact:   true,
		},
		{
			name:    "node fallback to root",
			modify:  func(q *Query) { q.Aggressor = abstraction.AggressorSelf; q.ActionPath = []string{"b50"} },
			wantKey: "river|b2c-4d-9s-Kc-Kh|p0|r2|i1|a1#p1:b50",
			wantSrc: SourceRiverSolver + " (third-party river override (node fallback to root))",
			wantAct: Raise,
		},
		{
			name:    "aggressor fallback with default profile",
			modify:  func(q *Query) { q.InPosition = false; q.Aggressor = abstraction.AggressorOpponent },
			wantKey: "river|b2c-4d-9s-Kc-Kh|p0|r2|i0|a0#p0:root",
			wantSrc: SourceRiverSolver + " (third-party river override, aggressor fallback (node fallback to root))",
			wantAct: Check,
		},
		{
			name:    "no spot falls through to the table",
			modify:  func(q *Query) { q.Equity = 0.72; q.InPosition = false; q.Board = cards.MustParseCards("KhQc9s7d2c") },
			wantKey: "river|s5|p0|r2|w1|i0|a0",
			wantSrc: SourceTable,
			wantAct: Raise,
			exact:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := baseQuery(abstraction.River, riverBoard())
			tt.modify(&q)
			adv := r.Resolve(q)
			if !adv.Found || adv.StateKey != tt.wantKey || adv.Source != tt.wantSrc {
				t.Errorf("got (found=%v, key=%s, source=%q), want key %s source %q",
					adv.Found, adv.StateKey, adv.Source, tt.wantKey, tt.wantSrc)
			}
			if adv.Action != tt.wantAct || adv.Exact != tt.exact {
				t.Errorf("action=%s exact=%v, want %s exact=%v", adv.Action, adv.Exact, tt.wantAct, tt.exact)
			}
		})
	}
}

func TestResolveMultiway(t *testing.T) {
	r := newTestResolver(t)

	tests := []struct {
		name      string
		street    abstraction.Street
		board     []cards.Card
		modify    func(*Query)
		wantFound bool
		wantKey   string
		wantSrc   string
	}{
		{
			name:    "flop is not served",
			street:  abstraction.Flop,
			board:   flopBoard(),
			wantKey: "flop|s3|p0|r2|w0|i1|a0",
			wantSrc: SourceMultiwayDisabled,
		},
		{
			name:      "turn override with explicit profile",
			street:    abstraction.Turn,
			board:     turnBoard(),
			modify:    func(q *Query) { q.ProfileKey = "btn" },
			wantFound: true,
			wantKey:   "turn|b4d-9s-Kc-Kh|n3|p0|r2|i1|a0#BTN:root",
			wantSrc:   SourceMultiwaySolver + " (third-party multiway override (node fallback to root))",
		},
		{
			name:      "turn override profile fallback",
			street:    abstraction.Turn,
			board:     turnBoard(),
			wantFound: true,
			wantKey:   "turn|b4d-9s-Kc-Kh|n3|p0|r2|i1|a0#BTN:root",
			wantSrc:   SourceMultiwaySolver + " (third-party multiway override, profile fallback (node fallback to root))",
		},
		{
			name:    "turn override disabled",
			street:  abstraction.Turn,
			board:   turnBoard(),
			modify:  func(q *Query) { q.DisableMultiwayOverrides = true },
			wantKey: "turn|b4d-9s-Kc-Kh|n3|p0|r2|i1|a0",
			wantSrc: SourceMultiwayMiss,
		},
		{
			name:      "river falls back to the heads-up override",
			street:    abstraction.River,
			board:     riverBoard(),
			modify:    func(q *Query) { q.InPosition = false },
			wantFound: true,
			wantKey:   "river|b2c-4d-9s-Kc-Kh|p0|r2|i0|a0#p0:root",
			wantSrc:   SourceMultiwayRiver + " (third-party river override (node fallback to root))",
		},
		{
			name:    "river miss",
			street:  abstraction.River,
			board:   cards.MustParseCards("KhQc9s7d2c"),
			wantKey: "river|b2c-7d-9s-Kh-Qc|n3|p0|r2|i1|a0",
			wantSrc: SourceMultiwayMiss,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := baseQuery(tt.street, tt.board)
			q.ActivePlayers = 3
			if tt.modify != nil {
				tt.modify(&q)
			}
			adv := r.Resolve(q)
			if adv.Found != tt.wantFound || adv.StateKey != tt.wantKey || adv.Source != tt.wantSrc {
				t.Errorf("got (found=%v, key=%s, source=%q)\nwant (found=%v, key=%s, source=%q)",
					adv.Found, adv.StateKey, adv.Source, tt.wantFound, tt.wantKey, tt.wantSrc)
			}
			if adv.Found && adv.Exact {
				t.Error("multiway fallbacks should not be exact")
			}
		})
	}
}

func TestResolveWithoutData(t *testing.T) {
	r := New(nil)
	adv := r.Resolve(baseQuery(abstraction.River, riverBoard()))
	if adv.Found || adv.Source != SourceTableMiss {
		t.Errorf("empty resolver should miss, got %+v", adv)
	}
}

func TestBuildAdvice(t *testing.T) {
	q := baseQuery(abstraction.Turn, turnBoard())

	adv := buildAdvice(q, [3]float64{0.5, 0.3, 0.2}, 4, "k", "s", true)
	if adv.Action != Check || math.Abs(adv.BestProb-0.6) > 1e-9 {
		t.Errorf("fold must be removed when unopened: %+v", adv)
	}
	if adv.MixText != "Check 60% | Raise 40%" {
		t.Errorf("MixText = %q", adv.MixText)
	}

	q.ToCall = 10
	adv = buildAdvice(q, [3]float64{0.005, 0.995, 0}, 4, "k", "s", true)
	if len(adv.ActionMix) != 1 || adv.ActionMix[0].Action != Call {
		t.Errorf("entries at or below 1%% are dropped: %+v", adv.ActionMix)
	}

	adv = buildAdvice(q, [3]float64{}, 4, "k", "s", true)
	if adv.Action != Fold || adv.BestProb != 0 || adv.MixText != "" {
		t.Errorf("all-zero mix: %+v", adv)
	}
}

func TestRaiseAmount(t *testing.T) {
	tests := []struct {
		name     string
		street   abstraction.Street
		strength int
		inPos    bool
		agg      abstraction.Aggressor
		pot      float64
		minRaise float64
		stack    float64
		want     float64
	}{
		{"flop mid strength", abstraction.Flop, 3, true, abstraction.AggressorSelf, 100, 8, 500, 71},
		{"river nuts capped by stack", abstraction.River, 7, true, abstraction.AggressorSelf, 200, 10, 150, 150},
		{"river nuts", abstraction.River, 7, true, abstraction.AggressorSelf, 200, 10, 1000, 192},
		{"turn weak oop", abstraction.Turn, 0, false, abstraction.AggressorOpponent, 100, 8, 500, 58},
		{"min raise floor", abstraction.Flop, 0, false, abstraction.AggressorNone, 10, 20, 500, 20},
		{"min raise wins over short stack", abstraction.Flop, 7, true, abstraction.AggressorNone, 100, 40, 30, 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := Query{Street: tt.street, InPosition: tt.inPos, Aggressor: tt.agg, Pot: tt.pot, MinRaise: tt.minRaise, HeroStack: tt.stack}
			if got := raiseAmount(q, tt.strength); got != tt.want {
				t.Errorf("raiseAmount = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAdviceJSON(t *testing.T) {
	r := newTestResolver(t)
	q := baseQuery(abstraction.Flop, flopBoard())
	q.Aggressor = abstraction.AggressorSelf

	data, err := json.Marshal(r.Resolve(q))
	if err != nil {
		t.Fatalf("marshal advice: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded["recommendedAction"] != "raise" || decoded["recommendedAmount"] != 71.0 {
		t.Errorf("unexpected JSON: %s", data)
	}

	qdata, err := json.Marshal(q)
	if err != nil {
		t.Fatalf("marshal query: %v", err)
	}
	var back Query
	if err := json.Unmarshal(qdata, &back); err != nil {
		t.Fatalf("unmarshal query: %v", err)
	}
	if diff := cmp.Diff(q, back); diff != "" {
		t.Errorf("query JSON mismatch (-want +got):\n%s", diff)
	}
}
