package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/datamanager/internal/core"
)

var (
	headerFlag  string
	charsetFlag string
)

var rootCmd = &cobra.Command{
	Use:   "tablectl",
	Short: "Inspect and convert CSV and Excel files",
	Long: `tablectl reads .csv, .xls and .xlsx files, infers their column headers
the same way the web editor does, and writes them back out as CSV or XLSX.`,
	SilenceUsage: true,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
}

func init() {
	rootCmd.AddCommand(
		inspectCmd,
		convertCmd,
	)
	rootCmd.PersistentFlags().StringVar(&headerFlag, "headers", string(core.HeaderAuto), "header mode: auto, none or first")
	rootCmd.PersistentFlags().StringVar(&charsetFlag, "charset", "windows-1252", "fallback charset for CSV files that are not UTF-8")
}

// importOptions validates the persistent flags.
func importOptions() (core.ImportOptions, error) {
	mode, ok := core.ParseHeaderMode(headerFlag)
	if !ok {
		return core.ImportOptions{}, fmt.Errorf("invalid --headers %q: want auto, none or first", headerFlag)
	}

	opts := core.ImportOptions{Header: mode}
	if charsetFlag != "" {
		enc, err := core.LookupCharset(charsetFlag)
		if err != nil {
			return core.ImportOptions{}, fmt.Errorf("invalid --charset: %w", err)
		}
		opts.Fallback = enc
	}
	return opts, nil
}

// importFile reads and imports path.
func importFile(ctx context.Context, path string) (*core.ImportResult, error) {
	opts, err := importOptions()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	res, err := core.Import(ctx, data, path, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %s: %w", path, core.FormatUserError(err), err)
	}
	return res, nil
}
