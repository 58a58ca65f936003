package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/pterm/pterm"

	"github.com/behrlich/postflop-solver/pkg/dataset"
	"github.com/behrlich/postflop-solver/pkg/store"
)

// ArchiveFlags selects the archive database
type ArchiveFlags struct {
	Driver string `help:"archive database driver" enum:"sqlite,postgres" default:"sqlite" env:"POSTFLOP_ARCHIVE_DRIVER"`
	DSN    string `help:"archive DSN or sqlite path" default:"postflop-archive.db" env:"POSTFLOP_ARCHIVE_DSN"`
}

func (f ArchiveFlags) open(rc *runContext) (*store.Store, error) {
	s, err := store.Open(rc.ctx, f.Driver, f.DSN)
	if err != nil {
		return nil, fmt.Errorf("open %s archive: %w", f.Driver, err)
	}
	return s, nil
}

// ArchiveCmd groups the archive subcommands
type ArchiveCmd struct {
	Save   ArchiveSaveCmd   `cmd:"" help:"archive a table file"`
	List   ArchiveListCmd   `cmd:"" help:"list archived runs"`
	Export ArchiveExportCmd `cmd:"" help:"write an archived table to a file"`
	Delete ArchiveDeleteCmd `cmd:"" help:"remove an archived run"`
}

type ArchiveSaveCmd struct {
	Table string `arg:"" help:"strategy table (JSON or binary)" type:"existingfile"`

	ArchiveFlags `embed:""`
}

func (cmd *ArchiveSaveCmd) Run(rc *runContext) error {
	table, err := dataset.LoadFromFile(cmd.Table)
	if err != nil {
		return err
	}
	s, err := cmd.open(rc)
	if err != nil {
		return err
	}
	defer s.Close()

	id, err := s.SaveTable(rc.ctx, table)
	if err != nil {
		return err
	}
	pterm.Success.Printfln("Archived %s as #%d (run %s)", cmd.Table, id, table.Meta.RunID)
	return nil
}

type ArchiveListCmd struct {
	ArchiveFlags `embed:""`
}

func (cmd *ArchiveListCmd) Run(rc *runContext) error {
	s, err := cmd.open(rc)
	if err != nil {
		return err
	}
	defer s.Close()

	runs, err := s.ListRuns(rc.ctx)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		pterm.Info.Println("archive is empty")
		return nil
	}

	rows := pterm.TableData{{"#", "Run", "Name", "Iterations", "States", "Size", "Archived"}}
	for _, r := range runs {
		rows = append(rows, []string{
			fmt.Sprint(r.ID),
			r.RunID,
			fmt.Sprintf("%s v%d", r.Name, r.Version),
			humanize.Comma(int64(r.Iterations)),
			humanize.Comma(int64(r.States)),
			humanize.Bytes(uint64(r.Bytes)),
			humanize.Time(r.CreatedAt),
		})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
}

type ArchiveExportCmd struct {
	RunID  string `name:"run" help:"run id to export (defaults to the latest run of --name)"`
	Name   string `help:"table name used when --run is empty" default:"postflop-srp-mccfr-real-cards"`
	Out    string `help:"output path" required:""`
	Binary bool   `help:"write the compact binary snapshot instead of JSON"`

	ArchiveFlags `embed:""`
}

func (cmd *ArchiveExportCmd) Run(rc *runContext) error {
	s, err := cmd.open(rc)
	if err != nil {
		return err
	}
	defer s.Close()

	var table *dataset.Table
	if cmd.RunID != "" {
		table, err = s.LoadTable(rc.ctx, cmd.RunID)
	} else {
		table, err = s.LatestTable(rc.ctx, cmd.Name)
	}
	if err != nil {
		return err
	}

	if cmd.Binary {
		err = table.SaveBinary(cmd.Out)
	} else {
		err = table.SaveToFile(cmd.Out)
	}
	if err != nil {
		return err
	}
	pterm.Success.Printfln("Exported run %s to %s", table.Meta.RunID, cmd.Out)
	return nil
}

type ArchiveDeleteCmd struct {
	RunID string `arg:"" name:"run" help:"run id to delete"`

	ArchiveFlags `embed:""`
}

func (cmd *ArchiveDeleteCmd) Run(rc *runContext) error {
	s, err := cmd.open(rc)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.DeleteRun(rc.ctx, cmd.RunID); err != nil {
		return err
	}
	rc.log.Info().Str("run_id", cmd.RunID).Msg("deleted archived run")
	return nil
}
