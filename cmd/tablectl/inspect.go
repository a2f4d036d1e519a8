package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/datamanager/internal/core"
)

var (
	inspectRows int
	inspectJSON bool
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Show the detected format, headers and a preview",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := importFile(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if inspectJSON {
			return writeInspectJSON(cmd.OutOrStdout(), res, inspectRows)
		}
		return writeInspect(cmd.OutOrStdout(), res, inspectRows)
	},
}

func init() {
	inspectCmd.Flags().IntVarP(&inspectRows, "rows", "n", 5, "number of preview rows")
	inspectCmd.Flags().BoolVar(&inspectJSON, "json", false, "print JSON instead of a table")
}

type inspectReport struct {
	File       string        `json:"file"`
	Format     core.Format   `json:"format"`
	HasHeaders bool          `json:"hasHeaders"`
	Rows       int           `json:"rows"`
	Columns    []core.Column `json:"columns"`
	Preview    [][]string    `json:"preview"`
}

func report(res *core.ImportResult, n int) inspectReport {
	t := res.Table
	n = min(max(n, 0), len(t.Rows))

	preview := make([][]string, n)
	for i := range preview {
		preview[i] = t.Values(t.Rows[i])
	}
	return inspectReport{
		File:       res.FileName,
		Format:     res.Format,
		HasHeaders: res.HasHeaders,
		Rows:       len(t.Rows),
		Columns:    t.Columns,
		Preview:    preview,
	}
}

func writeInspectJSON(w io.Writer, res *core.ImportResult, n int) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report(res, n))
}

func writeInspect(w io.Writer, res *core.ImportResult, n int) error {
	r := report(res, n)

	headers := "inferred from first row"
	if !r.HasHeaders {
		headers = "none detected, labelled by position"
	}
	fmt.Fprintf(w, "File:    %s\n", r.File)
	fmt.Fprintf(w, "Format:  %s\n", r.Format)
	fmt.Fprintf(w, "Headers: %s\n", headers)
	fmt.Fprintf(w, "Size:    %d columns, %d rows\n\n", len(r.Columns), r.Rows)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tID\tLABEL")
	for i, c := range r.Columns {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", i+1, c.ID, c.Label)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(r.Preview) == 0 {
		return nil
	}
	fmt.Fprintln(w)
	tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for i, c := range r.Columns {
		if i > 0 {
			fmt.Fprint(tw, "\t")
		}
		fmt.Fprint(tw, c.Label)
	}
	fmt.Fprintln(tw)
	for _, row := range r.Preview {
		for i, v := range row {
			if i > 0 {
				fmt.Fprint(tw, "\t")
			}
			fmt.Fprint(tw, v)
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}
