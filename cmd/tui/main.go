// Command tui edits one table in the terminal. Its layout is stored under a
// fixed workspace id, so column order and labels survive restarts.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/datamanager/internal/application"
	"github.com/JonMunkholm/datamanager/internal/config"
	"github.com/JonMunkholm/datamanager/internal/core"
	"github.com/JonMunkholm/datamanager/internal/logging"
	"github.com/JonMunkholm/datamanager/internal/session"
	"github.com/JonMunkholm/datamanager/internal/store"
	_ "github.com/JonMunkholm/datamanager/internal/store/postgres" // register "postgres"
	_ "github.com/JonMunkholm/datamanager/internal/store/sqlite"   // register "sqlite"
)

// workspaceID names the terminal's workspace so its layout survives restarts.
const workspaceID = "tui"

func main() {
	var importDir, exportDir string

	cmd := &cobra.Command{
		Use:          "tui",
		Short:        "Edit a CSV or Excel table in the terminal",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), importDir, exportDir)
		},
	}
	cmd.Flags().StringVar(&importDir, "dir", ".", "directory to list importable files from")
	cmd.Flags().StringVar(&exportDir, "out", ".", "directory to write exports to")

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, importDir, exportDir string) error {
	_ = godotenv.Overload()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// The terminal belongs to the UI; logs go to the configured file or nowhere.
	logOpts := logging.OptionsFrom(cfg.Logging)
	logOpts.Stdout = io.Discard
	closer := logging.Setup(logOpts)
	defer closer.Close()

	kv, err := store.Open(ctx, store.ConfigFrom(cfg.Storage))
	if err != nil {
		return fmt.Errorf("open layout store: %w", err)
	}
	defer kv.Close()

	opts, err := session.OptionsFromConfig(cfg)
	if err != nil {
		return err
	}
	ws, err := session.NewManager(kv, session.NewLimiter(cfg), opts).Get(ctx, workspaceID)
	if err != nil {
		return err
	}

	mode, _ := core.ParseHeaderMode(cfg.Import.HeaderMode)
	model := application.NewModel(ws, application.NewActions(ws, importDir, exportDir, mode))

	_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()
	return err
}
