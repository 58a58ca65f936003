package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pterm/pterm"

	"github.com/behrlich/postflop-solver/pkg/cards"
	"github.com/behrlich/postflop-solver/pkg/dataset"
	"github.com/behrlich/postflop-solver/pkg/equity"
	"github.com/behrlich/postflop-solver/pkg/notation"
	"github.com/behrlich/postflop-solver/pkg/override"
	"github.com/behrlich/postflop-solver/pkg/preflop"
	"github.com/behrlich/postflop-solver/pkg/resolver"
)

// ResolveCmd answers a single live spot
type ResolveCmd struct {
	Spot string `arg:"" help:"live spot, e.g. BTN:AsKd:S400/BB:S380|P100|Kh9s4c7d2s|C20|M10|IP"`

	Table             string `help:"strategy table (JSON or binary)" env:"POSTFLOP_TABLE" type:"existingfile"`
	RiverOverrides    string `help:"river override dataset" env:"POSTFLOP_RIVER_OVERRIDES" type:"existingfile"`
	MultiwayOverrides string `help:"multiway override dataset" env:"POSTFLOP_MULTIWAY_OVERRIDES" type:"existingfile"`
	NoMultiway        bool   `help:"skip multiway overrides"`
	EquitySamples     int    `help:"Monte Carlo samples when the spot has no E field" default:"2000"`
	Seed              int64  `help:"equity sampling seed" default:"1" env:"POSTFLOP_SEED"`
	JSON              bool   `help:"print the advice as JSON"`
}

func (cmd *ResolveCmd) Run(rc *runContext) error {
	spot, err := notation.ParseSpot(cmd.Spot)
	if err != nil {
		return err
	}

	r, err := cmd.resolver(rc)
	if err != nil {
		return err
	}

	q := spot.Query()
	if spot.Equity == nil {
		hole, _ := spot.HeroHole()
		cache, err := resolver.NewEquityCache(16, cmd.EquitySamples, cmd.Seed, equity.NativeEvaluator{})
		if err != nil {
			return err
		}
		eq, err := cache.Equity(hole, spot.Board)
		if err != nil {
			return fmt.Errorf("estimate equity: %w", err)
		}
		q.Equity = eq
		rc.log.Debug().Float64("equity", eq).Msg("estimated hero equity")
	}
	q.DisableMultiwayOverrides = cmd.NoMultiway

	advice := r.Resolve(q)
	if cmd.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(advice)
	}
	renderAdvice(spot, q, advice)
	return nil
}

func (cmd *ResolveCmd) resolver(rc *runContext) (*resolver.Resolver, error) {
	var opts []resolver.Option

	table := dataset.NewTable()
	if cmd.Table != "" {
		loaded, err := dataset.LoadFromFile(cmd.Table)
		if err != nil {
			return nil, err
		}
		table = loaded
	} else {
		rc.log.Warn().Msg("no strategy table given; only overrides can answer")
	}

	if cmd.RiverOverrides != "" {
		d, err := override.LoadFile(cmd.RiverOverrides, override.River)
		if err != nil {
			return nil, err
		}
		logSkipped(rc, d)
		opts = append(opts, resolver.WithRiverOverrides(d))
	}
	if cmd.MultiwayOverrides != "" {
		d, err := override.LoadFile(cmd.MultiwayOverrides, override.Multiway)
		if err != nil {
			return nil, err
		}
		logSkipped(rc, d)
		opts = append(opts, resolver.WithMultiwayOverrides(d))
	}

	return resolver.New(table, opts...), nil
}

func logSkipped(rc *runContext, d *override.Dataset) {
	rc.log.Debug().Str("kind", d.Kind.String()).Int("spots", d.Len()).Msg("loaded overrides")
	if len(d.Skipped) > 0 {
		rc.log.Warn().Str("kind", d.Kind.String()).Strs("spots", d.Skipped).Msg("skipped malformed override spots")
	}
}

func renderAdvice(spot *notation.Spot, q resolver.Query, advice resolver.Advice) {
	hero := spot.HeroPlayer()
	rows := pterm.TableData{
		{"Spot", spot.String()},
		{"Hero", fmt.Sprintf("%s %s", hero.Position, strings.Join(cards.Codes(hero.Hole), ""))},
		{"Street", q.Street.String()},
		{"Equity", fmt.Sprintf("%.1f%%", q.Equity*100)},
		{"State", advice.StateKey},
		{"Source", advice.Source},
		{"Mix", advice.MixText},
	}
	_ = pterm.DefaultTable.WithData(rows).Render()

	action := string(advice.Action)
	if advice.Action == resolver.Raise {
		action = fmt.Sprintf("raise to %s", strconv.FormatFloat(advice.Amount, 'f', -1, 64))
	}
	if advice.Found {
		pterm.Success.Printfln("%s (%.0f%%)", action, advice.BestProb*100)
	} else {
		pterm.Warning.Printfln("no strategy for this spot; default %s", action)
	}
}

// PreflopCmd answers a preflop decision from the chart directory
type PreflopCmd struct {
	Charts    string  `help:"directory of preflop-<N>bb.json charts" required:"" type:"existingdir" env:"POSTFLOP_PREFLOP_CHARTS"`
	Stack     float64 `help:"effective stack in big blinds" required:""`
	Hole      string  `help:"hero hole cards, e.g. AsKd" required:""`
	Codes     string  `help:"prior action codes joined by '-' (empty or root for first to act)"`
	ToCall    float64 `help:"chips to call"`
	MinRaise  float64 `help:"minimum raise increment" default:"1"`
	HeroStack float64 `help:"hero chips behind (defaults to the stack in big blinds)"`
	JSON      bool    `help:"print the advice as JSON"`
}

func (cmd *PreflopCmd) Run(rc *runContext) error {
	charts, err := preflop.LoadDir(cmd.Charts)
	if err != nil {
		return err
	}
	rc.log.Debug().Floats64("depths", charts.Depths()).Msg("loaded preflop charts")

	hole, err := cards.ParseCards(cmd.Hole)
	if err != nil {
		return fmt.Errorf("invalid hole cards: %w", err)
	}
	if len(hole) != 2 {
		return fmt.Errorf("expected 2 hole cards, got %d", len(hole))
	}
	codes, err := parseCodes(cmd.Codes)
	if err != nil {
		return err
	}
	heroStack := cmd.HeroStack
	if heroStack == 0 {
		heroStack = cmd.Stack
	}

	advice := charts.Advise(preflop.Query{
		StackBB:     cmd.Stack,
		ActionCodes: codes,
		Hole:        [2]cards.Card{hole[0], hole[1]},
		ToCall:      cmd.ToCall,
		MinRaise:    cmd.MinRaise,
		HeroStack:   heroStack,
	})
	if cmd.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(advice)
	}

	rows := pterm.TableData{
		{"State", advice.StateKey},
		{"Stack", fmt.Sprintf("%gbb", advice.UsedStackBB)},
		{"Source", advice.Source},
		{"Mix", advice.MixText},
	}
	_ = pterm.DefaultTable.WithData(rows).Render()
	if advice.Found {
		pterm.Success.Printfln("%s (%.0f%%)", preflop.CodeLabel(advice.BestCode), advice.BestProb*100)
	} else {
		pterm.Warning.Printfln("no chart entry; default %s", advice.Action)
	}
	return nil
}

// parseCodes parses "2-1-3" into action codes; "" and "root" mean none
func parseCodes(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "root" {
		return nil, nil
	}
	parts := strings.Split(s, "-")
	codes := make([]int, len(parts))
	for i, p := range parts {
		code, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("invalid action code %q: %w", p, err)
		}
		if code < preflop.CodeFold || code > preflop.CodeAllIn {
			return nil, fmt.Errorf("action code %d out of range", code)
		}
		codes[i] = code
	}
	return codes, nil
}
