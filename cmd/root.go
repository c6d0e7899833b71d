package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jywlabs/analyst/internal/logging"
)

var (
	verboseFlag bool

	logger        *zap.Logger
	restoreLogger = func() {}
)

var rootCmd = &cobra.Command{
	Use:   "analyst",
	Short: "Auto-Analyst - multi-stage research analysis using LLM agents",
	Long: `Auto-Analyst breaks a problem statement into research subtasks, searches
the web for each one, critiques the findings and assembles a final report.

Workflow:
  analyst init                           Create .analyst/config.yaml
  analyst analyze "problem statement"    Run a live analysis
  analyst demo                           Run with mock model and search data

Commands:
  analyze     Analyze a problem with the configured model and web search
  demo        Run the pipeline on deterministic mock data
  samples     List the built-in sample problems
  history     List recorded runs
  schema      Print the JSON schema of a stage record
  config      Show the effective configuration
  init        Initialize .analyst/ directory
  version     Show version info

Quick Start:
  1. analyst init
  2. export GROQ_API_KEY=... (or put it in .env)
  3. analyst analyze "Is a subscription meal kit viable in Lisbon?"`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := logging.New(verboseFlag)
		if err != nil {
			return err
		}
		logger = l
		restoreLogger = logging.Install(l)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
		restoreLogger()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Debug logging to stderr")
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
