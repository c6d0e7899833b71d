package stage

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/jywlabs/analyst/internal/engine"
	"github.com/jywlabs/analyst/internal/extract"
	"github.com/jywlabs/analyst/internal/fallback"
	"github.com/jywlabs/analyst/internal/record"
	"github.com/jywlabs/analyst/internal/retry"
	"github.com/jywlabs/analyst/internal/schema"
	"github.com/jywlabs/analyst/internal/search"
)

// Temperatures holds the sampling temperature used by each model-backed stage.
type Temperatures struct {
	Plan     float64
	Research float64
	Critique float64
}

// DefaultTemperatures returns the per-stage defaults.
func DefaultTemperatures() Temperatures {
	return Temperatures{Plan: 0.3, Research: 0.7, Critique: 0.4}
}

// Observer receives one observation per stage invocation.
type Observer interface {
	ObserveStage(stage record.Stage, elapsed time.Duration, degraded bool, kind string)
}

// Options configures a Runner.
type Options struct {
	Temperatures Temperatures
	CallTimeout  time.Duration // bounds each model attempt; 0 disables
	Retry        retry.Config
	MaxResults   int
	Observer     Observer
}

// DefaultOptions returns Options with default temperatures, timeout and retry.
func DefaultOptions() Options {
	return Options{
		Temperatures: DefaultTemperatures(),
		CallTimeout:  engine.DefaultTimeout,
		Retry:        retry.DefaultConfig(),
		MaxResults:   search.DefaultMaxResults,
	}
}

// Runner executes stages against injected model and search collaborators.
// Its methods never fail: every failure path ends in a fallback record with a
// degraded Outcome. A Runner is safe for concurrent use if its collaborators are.
type Runner struct {
	engine   engine.Engine
	searcher search.Searcher
	opts     Options
}

// NewRunner creates a Runner.
func NewRunner(eng engine.Engine, searcher search.Searcher, opts Options) *Runner {
	if opts.MaxResults <= 0 {
		opts.MaxResults = search.DefaultMaxResults
	}
	return &Runner{engine: eng, searcher: searcher, opts: opts}
}

// Plan decomposes problem into subtasks.
func (r *Runner) Plan(ctx context.Context, problem string) (record.Plan, Outcome) {
	start := time.Now()

	rec, f := r.generate(ctx, record.StagePlan, PlanPrompt(problem), r.opts.Temperatures.Plan)
	var plan record.Plan
	if f == nil {
		f = decode(rec, record.StagePlan, &plan)
	}
	if f != nil {
		out := r.fail(f)
		r.observe(record.StagePlan, start, out)
		return fallback.Plan(problem), out
	}

	plan.Degraded = false
	r.observe(record.StagePlan, start, ok())
	return plan, ok()
}

// Research searches for topic and summarizes the hits. No hits yields the
// empty-research fallback; hits with a failed analysis yield basic research
// built from the hits.
func (r *Runner) Research(ctx context.Context, topic string) (record.ResearchResult, Outcome) {
	start := time.Now()

	hits, err := r.search(ctx, topic)
	if err != nil {
		out := r.fail(&Failure{Kind: KindSearch, Stage: record.StageResearch, Err: err})
		r.observe(record.StageResearch, start, out)
		return fallback.EmptyResearch(topic), out
	}

	prompt := ResearchPrompt(topic, search.FormatHits(hits))
	rec, f := r.generate(ctx, record.StageResearch, prompt, r.opts.Temperatures.Research)
	var res record.ResearchResult
	if f == nil {
		f = decode(rec, record.StageResearch, &res)
	}
	if f != nil {
		out := r.fail(f)
		r.observe(record.StageResearch, start, out)
		return fallback.BasicResearch(topic, hits), out
	}

	res.RawResults = hits
	res.Degraded = false
	r.observe(record.StageResearch, start, ok())
	return res, ok()
}

// Critique evaluates research.
func (r *Runner) Critique(ctx context.Context, research record.ResearchResult) (record.Critique, Outcome) {
	start := time.Now()

	rec, f := r.generate(ctx, record.StageCritique, CritiquePrompt(research), r.opts.Temperatures.Critique)
	var c record.Critique
	if f == nil {
		f = decode(rec, record.StageCritique, &c)
	}
	if f != nil {
		out := r.fail(f)
		r.observe(record.StageCritique, start, out)
		return fallback.Critique(research), out
	}

	c.ResearchTopic = research.Topic
	c.OriginalResearchSummary = research.Summary
	c.Degraded = false
	r.observe(record.StageCritique, start, ok())
	return c, ok()
}

var (
	errNoEngine   = errors.New("no model engine configured")
	errNoSearcher = errors.New("no search provider configured")
)

func (r *Runner) search(ctx context.Context, topic string) ([]record.SearchHit, error) {
	if r.searcher == nil {
		return nil, errNoSearcher
	}
	hits, err := r.searcher.Search(ctx, topic, r.opts.MaxResults)
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return nil, search.ErrNoResults
	}
	return hits, nil
}

// generate calls the model with retry and a per-attempt timeout, then
// extracts and validates the stage record.
func (r *Runner) generate(ctx context.Context, stage record.Stage, prompt string, temp float64) (extract.Record, *Failure) {
	if r.engine == nil {
		return nil, &Failure{Kind: KindModel, Stage: stage, Err: errNoEngine}
	}

	req := engine.Request{Stage: stage, Prompt: prompt, Temperature: temp}
	text, err := retry.Do(ctx, r.opts.Retry, func(ctx context.Context) (string, error) {
		if r.opts.CallTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, r.opts.CallTimeout)
			defer cancel()
		}
		return r.engine.Generate(ctx, req)
	})
	if err != nil {
		return nil, &Failure{Kind: KindModel, Stage: stage, Err: err}
	}

	rec, err := extract.Extract(text)
	if err != nil {
		return nil, &Failure{Kind: KindExtraction, Stage: stage, Err: err}
	}
	if err := schema.Validate(rec, stage); err != nil {
		return nil, &Failure{Kind: KindValidation, Stage: stage, Err: err}
	}
	return rec, nil
}

// decode maps a validated record onto its typed form. A type mismatch on a
// present key is a validation failure.
func decode(rec extract.Record, stage record.Stage, v any) *Failure {
	if err := rec.Decode(v); err != nil {
		return &Failure{Kind: KindValidation, Stage: stage, Err: err}
	}
	return nil
}

func (r *Runner) fail(f *Failure) Outcome {
	zap.L().Warn("stage: substituting fallback",
		zap.String("stage", string(f.Stage)),
		zap.String("kind", string(f.Kind)),
		zap.Bool("degraded", true),
		zap.Error(f.Err))
	return degraded(f)
}

func (r *Runner) observe(stage record.Stage, start time.Time, out Outcome) {
	if r.opts.Observer == nil {
		return
	}
	kind := ""
	if out.Failure != nil {
		kind = string(out.Failure.Kind)
	}
	r.opts.Observer.ObserveStage(stage, time.Since(start), out.Degraded, kind)
}
