package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/pterm/pterm"

	"github.com/behrlich/postflop-solver/pkg/abstraction"
	"github.com/behrlich/postflop-solver/pkg/dataset"
)

// InspectCmd prints a table's metadata, coverage and selected states
type InspectCmd struct {
	Table    string   `arg:"" help:"strategy table (JSON or binary)" type:"existingfile"`
	Key      []string `help:"state keys to print" short:"k"`
	Prefix   string   `help:"print every state whose key starts with this prefix"`
	Coverage bool     `help:"print texture pool coverage"`
}

func (cmd *InspectCmd) Run(rc *runContext) error {
	table, err := dataset.LoadFromFile(cmd.Table)
	if err != nil {
		return err
	}
	renderMeta(table)

	if cmd.Coverage {
		renderCoverage(table.Meta.TextureCoverage)
	}

	keys := append([]string{}, cmd.Key...)
	if cmd.Prefix != "" {
		for _, k := range table.Keys() {
			if strings.HasPrefix(k, cmd.Prefix) {
				keys = append(keys, k)
			}
		}
	}
	if len(keys) == 0 {
		return nil
	}

	rows := pterm.TableData{{"State", "Fold", "Call/Check", "Raise"}}
	for _, k := range keys {
		if _, _, err := abstraction.ParseStateKey(k); err != nil {
			return err
		}
		mix, ok := table.Lookup(k)
		if !ok {
			rows = append(rows, []string{k, "-", "-", "-"})
			rc.log.Debug().Str("key", k).Msg("state not in table")
			continue
		}
		p := mix.Probabilities()
		rows = append(rows, []string{k, percent(p[0]), percent(p[1]), percent(p[2])})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
}

func renderMeta(table *dataset.Table) {
	m := table.Meta
	rows := pterm.TableData{
		{"Name", m.Name},
		{"Version", strconv.Itoa(m.Version)},
		{"Run", m.RunID},
		{"Generated", m.GeneratedAt},
		{"Seed", strconv.FormatInt(m.Seed, 10)},
		{"Iterations", humanize.Comma(int64(m.Iterations))},
		{"States", fmt.Sprintf("%s of %s", humanize.Comma(int64(table.Len())), humanize.Comma(int64(dataset.StateCount)))},
		{"Unreachable", strconv.Itoa(len(m.Unreachable))},
		{"Actions", strings.Join(m.Actions, ", ")},
	}
	if m.Sampling != nil {
		rows = append(rows,
			[]string{"Scenarios/state", strconv.Itoa(m.Sampling.ScenariosPerState)},
			[]string{"Equity samples", humanize.Comma(int64(m.Sampling.EquitySamples))},
		)
	}
	_ = pterm.DefaultTable.WithData(rows).Render()
}

func renderCoverage(coverage map[string]dataset.TextureCoverage) {
	pools := make([]string, 0, len(coverage))
	for k := range coverage {
		pools = append(pools, k)
	}
	sort.Strings(pools)

	rows := pterm.TableData{{"Pool", "Generated", "Attempts", "Degraded buckets"}}
	for _, pool := range pools {
		c := coverage[pool]
		var degraded []string
		for _, b := range c.Buckets {
			if b.Kind.Degraded() {
				degraded = append(degraded, fmt.Sprintf("s%d<-%s", b.Target, b.Kind))
			}
		}
		rows = append(rows, []string{
			pool,
			humanize.Comma(int64(c.Generated)),
			humanize.Comma(int64(c.Attempts)),
			strings.Join(degraded, " "),
		})
	}
	_ = pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
}

func percent(p float64) string {
	return fmt.Sprintf("%.1f%%", p*100)
}
