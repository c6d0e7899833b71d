package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jywlabs/analyst/internal/config"
	"github.com/jywlabs/analyst/internal/record"
)

var (
	analyzeEngineFlag string
	analyzeModelFlag  string
	analyzeFlags      runFlags
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <problem>",
	Short: "Analyze a problem with the configured model and web search",
	Long: `Analyze a problem statement end to end.

The planner splits the problem into subtasks, each subtask is researched
with web search (SerpAPI, falling back to DuckDuckGo) and critiqued, and a
final report is assembled. Failed stages are replaced by fallback records,
so a report is always produced.

Artifacts are written to the output directory:
  <timestamp>_<problem>_plan.json
  <timestamp>_<problem>_research.json
  <timestamp>_<problem>_critiques.json
  <timestamp>_<problem>_final_report.json
  <timestamp>_<problem>_summary.txt
  <timestamp>_<problem>_report.md

Examples:
  analyst analyze "Is a meal kit startup viable in Lisbon?"
  analyst analyze -e gemini "Compare Rust and Go for CLI tools"
  analyst analyze -c 3 --markdown "Evaluate the EV charging market in India"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeEngineFlag, "engine", "e", "", "Engine to use (groq, gemini, demo; default from config)")
	analyzeCmd.Flags().StringVarP(&analyzeModelFlag, "model", "m", "", "Model name (default from config or engine)")
	analyzeFlags.register(analyzeCmd)
	rootCmd.AddCommand(analyzeCmd)
}

// problemFromArgs joins the arguments into one problem statement.
func problemFromArgs(args []string) (string, error) {
	problem := strings.TrimSpace(strings.Join(args, " "))
	if problem == "" {
		return "", errors.New("problem statement must not be empty")
	}
	return problem, nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	problem, err := problemFromArgs(args)
	if err != nil {
		return err
	}

	cfg, err := config.Load(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cmd.Flags().Changed("engine") {
		cfg.Engine = analyzeEngineFlag
	}
	if cmd.Flags().Changed("model") {
		cfg.Model = analyzeModelFlag
	}
	if err := analyzeFlags.apply(cmd, cfg); err != nil {
		return err
	}

	secrets, err := config.LoadSecrets(".")
	if err != nil {
		return err
	}
	eng, err := newEngine(cfg, secrets)
	if err != nil {
		return err
	}

	searcher := liveSearcher(cfg, secrets)
	mode := record.ModeLive
	if eng.Name() == "demo" {
		mode = record.ModeDemo
	}
	return executeRun(cmd.Context(), cmd.OutOrStdout(), problem, runSetup{
		cfg:      cfg,
		flags:    &analyzeFlags,
		engine:   eng,
		searcher: searcher,
		tools:    append([]string{eng.Label()}, searcher.Providers()...),
		mode:     mode,
	})
}
