package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/datamanager/internal/core"
)

type convertOptions struct {
	promote bool
	demote  bool
	sort    string
	desc    bool
	renames []string
}

var convertOpts convertOptions

var convertCmd = &cobra.Command{
	Use:   "convert <in> <out>",
	Short: "Import a file, apply edits, and write CSV or XLSX",
	Long: `convert imports <in>, applies the requested edits in the order
demote, promote, rename, sort, and writes <out> in the format named by its
extension (.csv or .xlsx).`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConvert(cmd.Context(), args[0], args[1], convertOpts)
	},
}

func init() {
	f := convertCmd.Flags()
	f.BoolVar(&convertOpts.promote, "promote", false, "use the first row as headers")
	f.BoolVar(&convertOpts.demote, "demote", false, "move the headers into the first row")
	f.StringVar(&convertOpts.sort, "sort", "", "sort rows by the column with this label or id")
	f.BoolVar(&convertOpts.desc, "desc", false, "sort descending")
	f.StringArrayVar(&convertOpts.renames, "rename", nil, "rename a column, as old=new (repeatable)")
}

func runConvert(ctx context.Context, in, out string, opts convertOptions) error {
	format, err := core.FormatFromName(out)
	if err != nil {
		return err
	}
	format, err = core.ParseExportFormat(string(format))
	if err != nil {
		return fmt.Errorf("output must be .csv or .xlsx: %w", err)
	}

	res, err := importFile(ctx, in)
	if err != nil {
		return err
	}

	state := core.NewTableState(ctx, nil)
	state.Replace(ctx, res.Table)

	if opts.demote {
		state.DemoteHeadersToFirstRow(ctx)
	}
	if opts.promote {
		state.PromoteFirstRowToHeaders(ctx)
	}
	for _, r := range opts.renames {
		from, to, ok := strings.Cut(r, "=")
		if !ok {
			return fmt.Errorf("invalid --rename %q: want old=new", r)
		}
		id, ok := findColumn(state.Columns(), from)
		if !ok {
			return fmt.Errorf("--rename: %w: %q", core.ErrUnknownColumn, from)
		}
		state.Rename(ctx, id, to)
	}
	if opts.sort != "" {
		id, ok := findColumn(state.Columns(), opts.sort)
		if !ok {
			return fmt.Errorf("--sort: %w: %q", core.ErrUnknownColumn, opts.sort)
		}
		if err := state.Sort(id); err != nil {
			return err
		}
		if opts.desc {
			if err := state.Sort(id); err != nil {
				return err
			}
		}
	}

	data, err := core.Serialize(state.Snapshot(), format)
	if err != nil {
		return err
	}
	return os.WriteFile(out, data, 0o644)
}

// findColumn resolves a column by id first, then by label.
func findColumn(cols []core.Column, key string) (string, bool) {
	for _, c := range cols {
		if c.ID == key {
			return c.ID, true
		}
	}
	for _, c := range cols {
		if c.Label == key {
			return c.ID, true
		}
	}
	return "", false
}
