package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jywlabs/analyst/internal/config"
	"github.com/jywlabs/analyst/internal/history"
	"github.com/jywlabs/analyst/internal/output"
)

var (
	historyLimitFlag int
	historyDSNFlag   string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded runs",
	Long: `List recorded runs, newest first.

Runs are recorded when 'history' is set in .analyst/config.yaml or --history
is passed to analyze or demo.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimitFlag, "limit", "n", history.DefaultLimit, "Maximum runs to list")
	historyCmd.Flags().StringVar(&historyDSNFlag, "history", "", "Run history DSN (default from config)")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	dsn := cfg.History
	if historyDSNFlag != "" {
		dsn = historyDSNFlag
	}
	if dsn == "" {
		return errors.New("run history is not configured (set history in .analyst/config.yaml)")
	}

	store, err := history.Open(cmd.Context(), dsn)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.List(cmd.Context(), historyLimitFlag)
	if err != nil {
		return err
	}
	output.New(cmd.OutOrStdout()).Runs(runs)
	return nil
}
