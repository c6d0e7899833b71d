// Package pipeline sequences the plan, research, critique and report stages
// of an analysis run.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jywlabs/analyst/internal/engine"
	"github.com/jywlabs/analyst/internal/record"
	"github.com/jywlabs/analyst/internal/report"
	"github.com/jywlabs/analyst/internal/stage"
)

// Options configures a Pipeline.
type Options struct {
	Concurrency int      // parallel research/critique calls; <= 1 runs them in order
	Mode        string   // record.ModeLive or record.ModeDemo
	Tools       []string // reported as methodology.tools_used
}

// Result holds every record a run produced.
type Result struct {
	RunID      string
	Problem    string
	StartedAt  time.Time
	FinishedAt time.Time
	Plan       record.Plan
	Research   []record.ResearchItem
	Critiques  []record.CritiqueItem
	Overall    record.Critique
	Report     record.FinalReport
	Degraded   int
	Failures   []*stage.Failure
}

// Pipeline runs PLAN -> RESEARCH* -> CRITIQUE* -> REPORT.
type Pipeline struct {
	runner  *stage.Runner
	display *engine.Display
	opts    Options
	now     func() time.Time
}

// New creates a pipeline. display may be nil.
func New(runner *stage.Runner, display *engine.Display, opts Options) *Pipeline {
	if opts.Mode == "" {
		opts.Mode = record.ModeLive
	}
	return &Pipeline{runner: runner, display: display, opts: opts, now: time.Now}
}

// Run analyzes problem. Stage failures never surface as errors; they are
// replaced by fallback records and counted in Result.Degraded. Run only
// returns an error when ctx is done between or during stages.
func (p *Pipeline) Run(ctx context.Context, problem string) (*Result, error) {
	res := &Result{
		RunID:     uuid.NewString(),
		Problem:   problem,
		StartedAt: p.now(),
	}
	log := zap.L().With(zap.String("run_id", res.RunID))
	log.Info("pipeline: starting", zap.String("mode", p.opts.Mode))

	// PLAN
	p.step(1, "Task Planning")
	p.spin("Creating task plan...")
	plan, out := p.runner.Plan(ctx, problem)
	p.note(res, out)
	res.Plan = plan
	p.done(out, "Plan ready: %d subtasks", len(plan.Subtasks))
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// RESEARCH*
	p.step(2, "Research Execution")
	research, outs, err := forEach(ctx, len(plan.Subtasks), p.opts.Concurrency,
		func(ctx context.Context, i int) (record.ResearchItem, stage.Outcome) {
			st := plan.Subtasks[i]
			p.spin(fmt.Sprintf("Researching task %d: %s", st.ID, st.Task))
			r, out := p.runner.Research(ctx, st.Task)
			log.Debug("pipeline: research done", zap.Int("task_id", st.ID), zap.Bool("degraded", out.Degraded))
			p.done(out, "Task %d researched (%d sources)", st.ID, len(r.Sources))
			return record.ResearchItem{TaskID: st.ID, TaskDescription: st.Task, Research: r}, out
		})
	if err != nil {
		return nil, err
	}
	for _, out := range outs {
		p.note(res, out)
	}
	res.Research = research

	// CRITIQUE*
	p.step(3, "Critical Analysis")
	critiques, outs, err := forEach(ctx, len(research), p.opts.Concurrency,
		func(ctx context.Context, i int) (record.CritiqueItem, stage.Outcome) {
			item := research[i]
			p.spin(fmt.Sprintf("Critiquing task %d", item.TaskID))
			c, out := p.runner.Critique(ctx, item.Research)
			log.Debug("pipeline: critique done", zap.Int("task_id", item.TaskID), zap.Bool("degraded", out.Degraded))
			p.done(out, "Task %d critiqued: %d/10", item.TaskID, c.OverallQuality)
			return record.CritiqueItem{TaskID: item.TaskID, Critique: c}, out
		})
	if err != nil {
		return nil, err
	}
	for _, out := range outs {
		p.note(res, out)
	}
	res.Critiques = critiques

	// REPORT
	p.step(4, "Final Report")
	// The overall critique re-runs the critique stage on a synthetic record
	// combining every task's findings. Its scores head the report instead of
	// an aggregate of the per-task critiques; kept as-is, though suspect.
	p.spin("Evaluating combined findings...")
	overall, out := p.runner.Critique(ctx, report.CombineResearch(problem, research))
	p.note(res, out)
	res.Overall = overall
	p.done(out, "Overall quality: %d/10", overall.OverallQuality)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res.FinishedAt = p.now()
	res.Report = report.Assemble(report.Input{
		RunID:       res.RunID,
		Mode:        p.opts.Mode,
		Problem:     problem,
		GeneratedAt: res.FinishedAt,
		Plan:        plan,
		Research:    research,
		Critiques:   critiques,
		Overall:     overall,
		Tools:       p.opts.Tools,
		Degraded:    res.Degraded,
	})

	log.Info("pipeline: finished",
		zap.Int("subtasks", len(plan.Subtasks)),
		zap.Int("degraded", res.Degraded),
		zap.Duration("elapsed", res.FinishedAt.Sub(res.StartedAt)))
	return res, nil
}

func (p *Pipeline) note(res *Result, out stage.Outcome) {
	if out.Degraded {
		res.Degraded++
	}
	if out.Failure != nil {
		res.Failures = append(res.Failures, out.Failure)
	}
}

func (p *Pipeline) step(n int, title string) {
	if p.display != nil {
		p.display.ShowStep(n, title)
	}
}

func (p *Pipeline) spin(msg string) {
	if p.display != nil {
		p.display.StartSpinner(msg)
	}
}

func (p *Pipeline) done(out stage.Outcome, format string, args ...any) {
	if p.display == nil {
		return
	}
	p.display.StopSpinner()
	if out.Degraded {
		p.display.ShowWarning(format+" [fallback: %s]", append(args, out.Failure.Kind)...)
		return
	}
	p.display.ShowOK(format, args...)
}

// forEach calls fn for 0..n-1 and returns the results in index order. With
// limit <= 1 the calls run sequentially; otherwise at most limit run at once.
// It fails only when ctx is done.
func forEach[T any](ctx context.Context, n, limit int, fn func(ctx context.Context, i int) (T, stage.Outcome)) ([]T, []stage.Outcome, error) {
	items := make([]T, n)
	outs := make([]stage.Outcome, n)

	if limit <= 1 {
		for i := 0; i < n; i++ {
			if err := ctx.Err(); err != nil {
				return nil, nil, err
			}
			items[i], outs[i] = fn(ctx, i)
		}
		return items, outs, ctx.Err()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			items[i], outs[i] = fn(gctx, i)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return items, outs, ctx.Err()
}
