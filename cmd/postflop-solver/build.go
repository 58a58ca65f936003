package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pterm/pterm"

	"github.com/behrlich/postflop-solver/pkg/dataset"
)

// BuildCmd runs the offline dataset build
type BuildCmd struct {
	Out               string `help:"path to write the strategy table" required:"" env:"POSTFLOP_TABLE"`
	Binary            bool   `help:"write the compact binary snapshot instead of JSON"`
	Iterations        int    `help:"MCCFR iterations per state" default:"1500" env:"POSTFLOP_ITERATIONS"`
	ScenariosPerState int    `help:"scenarios drawn for each state" default:"120"`
	Seed              int64  `help:"master random seed" default:"1" env:"POSTFLOP_SEED"`
	Workers           int    `help:"parallel workers (0 uses GOMAXPROCS)" default:"0" env:"POSTFLOP_WORKERS"`
	Evaluator         string `help:"showdown evaluator" enum:"native,table" default:"native"`
	Candidates        int    `help:"accepted scenarios per texture pool" default:"4000"`
	EquitySamples     int    `help:"Monte Carlo samples behind each scenario equity" default:"160"`
	RequireCoverage   bool   `help:"fail instead of borrowing scenarios for empty strength buckets"`
	Archive           bool   `help:"also save the table to the archive"`

	ArchiveFlags `embed:""`
}

func (cmd *BuildCmd) config() dataset.Config {
	cfg := dataset.DefaultConfig()
	cfg.Iterations = cmd.Iterations
	cfg.ScenariosPerState = cmd.ScenariosPerState
	cfg.Seed = cmd.Seed
	cfg.Workers = cmd.Workers
	cfg.Evaluator = cmd.Evaluator
	cfg.Scenario.Candidates = cmd.Candidates
	cfg.Scenario.EquitySamples = cmd.EquitySamples
	cfg.Scenario.RequireCoverage = cmd.RequireCoverage
	return cfg
}

func (cmd *BuildCmd) Run(rc *runContext) error {
	cfg := cmd.config()
	builder, err := dataset.NewBuilder(cfg, dataset.WithLogger(rc.log))
	if err != nil {
		return err
	}

	rc.log.Info().
		Int("iterations", cfg.Iterations).
		Int("scenarios_per_state", cfg.ScenariosPerState).
		Int64("seed", cfg.Seed).
		Str("evaluator", cfg.Evaluator).
		Str("states", humanize.Comma(int64(dataset.StateCount))).
		Msg("starting build")

	start := time.Now()
	bars := newProgressBars()
	table, err := builder.Build(rc.ctx, bars.update)
	bars.stop()
	if err != nil {
		return fmt.Errorf("build failed: %w", err)
	}

	if cmd.Binary {
		err = table.SaveBinary(cmd.Out)
	} else {
		err = table.SaveToFile(cmd.Out)
	}
	if err != nil {
		return err
	}

	pterm.Success.Printfln("Wrote %s states to %s in %s",
		humanize.Comma(int64(table.Len())), cmd.Out, time.Since(start).Round(time.Second))
	if len(table.Meta.Unreachable) > 0 {
		pterm.Warning.Printfln("%d unreachable states: %s",
			len(table.Meta.Unreachable), strings.Join(table.Meta.Unreachable, ", "))
	}

	if !cmd.Archive {
		return nil
	}
	s, err := cmd.open(rc)
	if err != nil {
		return err
	}
	defer s.Close()
	id, err := s.SaveTable(rc.ctx, table)
	if err != nil {
		return fmt.Errorf("archive table: %w", err)
	}
	rc.log.Info().Int64("id", id).Str("run_id", table.Meta.RunID).Msg("archived table")
	return nil
}

// progressBars renders one pterm progress bar per build phase
type progressBars struct {
	phase dataset.Phase
	bar   *pterm.ProgressbarPrinter
}

func newProgressBars() *progressBars {
	return &progressBars{}
}

// update is called serially by the builder
func (p *progressBars) update(pr dataset.Progress) {
	if p.bar == nil || p.phase != pr.Phase {
		p.stop()
		bar, err := pterm.DefaultProgressbar.
			WithTotal(pr.Total).
			WithTitle(string(pr.Phase)).
			WithRemoveWhenDone(false).
			Start()
		if err != nil {
			return
		}
		p.bar, p.phase = bar, pr.Phase
	}
	if delta := pr.Done - p.bar.Current; delta > 0 {
		p.bar.Add(delta)
	}
}

func (p *progressBars) stop() {
	if p.bar != nil {
		_, _ = p.bar.Stop()
		p.bar = nil
	}
}
