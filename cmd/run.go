package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/jywlabs/analyst/internal/artifact"
	"github.com/jywlabs/analyst/internal/config"
	"github.com/jywlabs/analyst/internal/engine"
	"github.com/jywlabs/analyst/internal/history"
	"github.com/jywlabs/analyst/internal/metrics"
	"github.com/jywlabs/analyst/internal/output"
	"github.com/jywlabs/analyst/internal/pipeline"
	"github.com/jywlabs/analyst/internal/report"
	"github.com/jywlabs/analyst/internal/retry"
	"github.com/jywlabs/analyst/internal/search"
	"github.com/jywlabs/analyst/internal/stage"
)

// defaultRenderWidth is used for markdown output when stdout is not a terminal.
const defaultRenderWidth = 100

// runFlags are shared by analyze and demo.
type runFlags struct {
	outputDir   string
	concurrency int
	history     string
	metricsFile string
	markdown    bool
	noSave      bool
}

func (f *runFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.outputDir, "output", "o", "", "Directory for run artifacts (default from config)")
	cmd.Flags().IntVarP(&f.concurrency, "concurrency", "c", 0, "Parallel research/critique calls (default from config)")
	cmd.Flags().StringVar(&f.history, "history", "", "Run history DSN: sqlite path, libsql://..., or postgres://...")
	cmd.Flags().StringVar(&f.metricsFile, "metrics-file", "", "Write prometheus textfile metrics to this path")
	cmd.Flags().BoolVar(&f.markdown, "markdown", false, "Render the final report as markdown")
	cmd.Flags().BoolVar(&f.noSave, "no-save", false, "Do not write run artifacts")
}

// apply overrides config values with the flags that were set.
func (f *runFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	if cmd.Flags().Changed("output") {
		cfg.OutputDir = f.outputDir
	}
	if cmd.Flags().Changed("concurrency") {
		cfg.Concurrency = f.concurrency
	}
	if cmd.Flags().Changed("history") {
		cfg.History = f.history
	}
	if cmd.Flags().Changed("metrics-file") {
		cfg.MetricsFile = f.metricsFile
	}
	return cfg.Validate()
}

// runSetup is everything one analysis needs besides the problem.
type runSetup struct {
	cfg      *config.Config
	flags    *runFlags
	engine   engine.Engine
	searcher search.Searcher
	tools    []string
	mode     string
}

// liveSearcher chains SerpAPI and DuckDuckGo behind the configured rate limit.
func liveSearcher(cfg *config.Config, secrets config.Secrets) *search.Chain {
	chain := &search.Chain{
		Primary:   search.NewSerpAPI(secrets.SerpAPIKey),
		Secondary: search.NewDuckDuckGo(),
		Recency:   cfg.RecencyToken,
	}
	if cfg.SearchRatePerSecond > 0 {
		chain.Limiter = rate.NewLimiter(rate.Limit(cfg.SearchRatePerSecond), 1)
	}
	return chain
}

// stageOptions maps the config onto runner options.
func stageOptions(cfg *config.Config, display *engine.Display, obs stage.Observer) stage.Options {
	return stage.Options{
		Temperatures: stage.Temperatures{
			Plan:     cfg.Temperatures.Plan,
			Research: cfg.Temperatures.Research,
			Critique: cfg.Temperatures.Critique,
		},
		CallTimeout: cfg.CallTimeout,
		Retry: retry.Config{
			MaxRetries:       cfg.MaxRetries,
			BaseDelay:        cfg.RetryDelay,
			MaxJitterPercent: retry.DefaultMaxJitterPercent,
			OnRetry: func(delay time.Duration, attempt, max int) {
				display.ShowRetry(attempt, max, delay)
			},
		},
		MaxResults: cfg.MaxSearchResults,
		Observer:   obs,
	}
}

// executeRun runs the pipeline for problem, prints the report and persists
// artifacts, history and metrics as configured.
func executeRun(ctx context.Context, out io.Writer, problem string, rs runSetup) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := rs.cfg
	display := engine.NewDisplay(out)
	display.ShowHeader("AUTO-ANALYST", problem, rs.engine.Label())

	var rec *metrics.Recorder
	var obs stage.Observer
	if cfg.MetricsFile != "" {
		rec = metrics.New()
		obs = rec
	}

	runner := stage.NewRunner(rs.engine, rs.searcher, stageOptions(cfg, display, obs))
	p := pipeline.New(runner, display, pipeline.Options{
		Concurrency: cfg.Concurrency,
		Mode:        rs.mode,
		Tools:       rs.tools,
	})

	res, err := p.Run(ctx, problem)
	if err != nil {
		display.ShowError("Analysis interrupted")
		return fmt.Errorf("analysis interrupted: %w", err)
	}

	fmt.Fprintln(out)
	if rs.flags.markdown {
		rendered, err := report.RenderMarkdown(res.Report, renderWidth())
		if err != nil {
			return fmt.Errorf("failed to render report: %w", err)
		}
		fmt.Fprint(out, rendered)
	} else {
		report.Print(out, res.Report)
	}

	var reportPath string
	if !rs.flags.noSave {
		paths, err := (&artifact.Writer{Dir: cfg.OutputDir}).Write(res)
		if err != nil {
			return err
		}
		reportPath = paths.FinalReport
		fmt.Fprintln(out)
		output.New(out).Saved(cfg.OutputDir, paths.All())
	}

	if cfg.History != "" {
		if err := recordHistory(ctx, cfg.History, history.FromResult(res, reportPath)); err != nil {
			// History is an index; a failed insert leaves the artifacts intact.
			zap.L().Warn("history: record failed", zap.Error(err))
			display.ShowWarning("Run history not updated: %v", err)
		}
	}

	if err := rec.WriteFile(cfg.MetricsFile); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}

	display.ShowScore("Overall quality", res.Report.ExecutiveSummary.OverallQualityScore)
	if res.Degraded > 0 {
		display.ShowWarning("%d stage records used fallbacks", res.Degraded)
	}
	display.ShowSuccess("Analysis complete!")
	return nil
}

func recordHistory(ctx context.Context, dsn string, run history.Run) error {
	store, err := history.Open(ctx, dsn)
	if err != nil {
		return err
	}
	defer store.Close()
	return store.Record(ctx, run)
}

func renderWidth() int {
	if w := engine.TerminalWidth(defaultRenderWidth); w > 20 {
		return w - 4
	}
	return defaultRenderWidth
}
