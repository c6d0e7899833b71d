package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jywlabs/analyst/internal/config"
	"github.com/jywlabs/analyst/internal/engine/demo"
	"github.com/jywlabs/analyst/internal/record"
)

var (
	demoSpeedFlag  string
	demoSampleFlag int
	demoFlags      runFlags
)

var demoCmd = &cobra.Command{
	Use:   "demo [problem]",
	Short: "Run the pipeline on deterministic mock data",
	Long: `Run the full pipeline with the built-in mock model and search data.

No API keys are needed. Without a problem argument the first sample problem
is analyzed; --sample picks another one (see 'analyst samples').

Examples:
  analyst demo
  analyst demo --sample 3 --speed fast
  analyst demo "Should we build a budgeting app for students?"`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDemo,
}

func init() {
	demoCmd.Flags().StringVar(&demoSpeedFlag, "speed", "normal", "Simulated latency: fast, normal or realistic")
	demoCmd.Flags().IntVar(&demoSampleFlag, "sample", 1, "Sample problem to analyze when no problem is given")
	demoFlags.register(demoCmd)
	rootCmd.AddCommand(demoCmd)
}

// demoProblem resolves the problem from the argument or the sample index.
func demoProblem(args []string, sample int) (string, error) {
	if len(args) > 0 {
		return problemFromArgs(args)
	}
	samples := demo.SampleProblems()
	if sample < 1 || sample > len(samples) {
		return "", fmt.Errorf("sample must be between 1 and %d, got %d", len(samples), sample)
	}
	return samples[sample-1].Description, nil
}

func runDemo(cmd *cobra.Command, args []string) error {
	problem, err := demoProblem(args, demoSampleFlag)
	if err != nil {
		return err
	}
	factor, err := demo.ParseSpeed(demoSpeedFlag)
	if err != nil {
		return err
	}

	cfg, err := config.Load(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg.Engine = "demo"
	if err := demoFlags.apply(cmd, cfg); err != nil {
		return err
	}

	eng := demo.New(factor)
	searcher := demo.Searcher{}
	return executeRun(cmd.Context(), cmd.OutOrStdout(), problem, runSetup{
		cfg:      cfg,
		flags:    &demoFlags,
		engine:   eng,
		searcher: searcher,
		tools:    []string{eng.Label(), searcher.Name()},
		mode:     record.ModeDemo,
	})
}
