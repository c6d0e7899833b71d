// Package demo provides deterministic stand-ins for the model and search
// collaborators so the pipeline runs without network access or API keys.
package demo

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jywlabs/analyst/internal/engine"
	"github.com/jywlabs/analyst/internal/record"
)

func init() {
	engine.RegisterEngine("demo", func(cfg engine.Config) (engine.Engine, error) {
		return New(0), nil
	})
}

// Speed factors scale the simulated per-stage work time.
var speeds = map[string]float64{
	"fast":      0.5,
	"normal":    1.0,
	"realistic": 2.0,
}

// ParseSpeed maps a speed name to its delay factor.
func ParseSpeed(name string) (float64, error) {
	f, ok := speeds[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("unknown demo speed %q (use fast, normal or realistic)", name)
	}
	return f, nil
}

// Base delays per stage at factor 1.
var baseDelay = map[record.Stage]time.Duration{
	record.StagePlan:     time.Second,
	record.StageResearch: 2 * time.Second,
	record.StageCritique: time.Second,
}

// Prompt markers the stage runner renders. The engine reads them back to
// recover the stage input.
const (
	problemMarker = "USER PROBLEM:"
	topicMarker   = "RESEARCH TOPIC:"
	statsMarker   = "\nSTATISTICS:"
	sourcesMarker = "\nSOURCES:"
)

// Engine answers every stage with canned JSON.
type Engine struct {
	factor float64
}

// New creates a demo engine. factor scales simulated work time; 0 disables it.
func New(factor float64) *Engine {
	return &Engine{factor: factor}
}

func (e *Engine) Name() string  { return "demo" }
func (e *Engine) Label() string { return "Demo LLM (mock data)" }

// Generate returns the mock record for the request's stage as JSON text.
func (e *Engine) Generate(ctx context.Context, req engine.Request) (string, error) {
	if err := e.pause(ctx, req.Stage); err != nil {
		return "", err
	}

	var v any
	switch req.Stage {
	case record.StagePlan:
		v = MockPlan(lineAfter(req.Prompt, problemMarker))
	case record.StageResearch:
		v = MockResearch(lineAfter(req.Prompt, topicMarker))
	case record.StageCritique:
		v = MockCritique(
			lineAfter(req.Prompt, topicMarker),
			strings.Contains(req.Prompt, statsMarker),
			strings.Contains(req.Prompt, sourcesMarker),
		)
	default:
		return "", fmt.Errorf("demo engine: no mock for stage %q", req.Stage)
	}

	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return "Here is the analysis:\n" + string(b), nil
}

func (e *Engine) pause(ctx context.Context, stage record.Stage) error {
	d := time.Duration(float64(baseDelay[stage]) * e.factor)
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func lineAfter(prompt, marker string) string {
	i := strings.Index(prompt, marker)
	if i < 0 {
		return ""
	}
	rest := prompt[i+len(marker):]
	if j := strings.IndexByte(rest, '\n'); j >= 0 {
		rest = rest[:j]
	}
	return strings.TrimSpace(rest)
}

// Searcher returns the source templates as search hits.
type Searcher struct{}

func (Searcher) Name() string { return "Demo Search" }

// Search returns up to maxResults template hits picked by query keywords.
func (Searcher) Search(_ context.Context, query string, maxResults int) ([]record.SearchHit, error) {
	srcs := templatesFor(query)
	hits := make([]record.SearchHit, 0, len(srcs))
	for _, s := range srcs {
		if maxResults > 0 && len(hits) >= maxResults {
			break
		}
		hits = append(hits, record.SearchHit{Title: s.Title, Snippet: s.snippet, URL: s.URL})
	}
	return hits, nil
}
