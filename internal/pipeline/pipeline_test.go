package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/jywlabs/analyst/internal/engine"
	"github.com/jywlabs/analyst/internal/engine/demo"
	"github.com/jywlabs/analyst/internal/fallback"
	"github.com/jywlabs/analyst/internal/record"
	"github.com/jywlabs/analyst/internal/retry"
	"github.com/jywlabs/analyst/internal/schema"
	"github.com/jywlabs/analyst/internal/stage"
)

// scriptedEngine answers by stage. Research prompts mentioning failOn fail.
type scriptedEngine struct {
	plan     record.Plan
	failOn   string
	quality  int
	inflight atomic.Int32
	peak     atomic.Int32
	delay    time.Duration
}

func (e *scriptedEngine) Name() string  { return "scripted" }
func (e *scriptedEngine) Label() string { return "Scripted LLM" }

func (e *scriptedEngine) Generate(ctx context.Context, req engine.Request) (string, error) {
	n := e.inflight.Add(1)
	defer e.inflight.Add(-1)
	for {
		p := e.peak.Load()
		if n <= p || e.peak.CompareAndSwap(p, n) {
			break
		}
	}
	if e.delay > 0 {
		select {
		case <-time.After(e.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	var v any
	switch req.Stage {
	case record.StagePlan:
		v = e.plan
	case record.StageResearch:
		if e.failOn != "" && strings.Contains(req.Prompt, "RESEARCH TOPIC: "+e.failOn) {
			return "", errors.New("HTTP 500 model crashed")
		}
		topic := between(req.Prompt, "RESEARCH TOPIC: ", "\n")
		v = record.ResearchResult{
			Topic:       topic,
			Summary:     "Findings for " + topic,
			KeyFindings: []record.Finding{{Category: topic, Points: []string{"point"}}},
			Sources:     []record.Source{{Title: "src " + topic, Credibility: record.CredibilityHigh}},
		}
	case record.StageCritique:
		c := fallback.Critique(record.ResearchResult{Topic: between(req.Prompt, "RESEARCH TOPIC: ", "\n")})
		c.OverallQuality = e.quality
		c.ConfidenceLevel = record.LevelHigh
		c.Recommendation = "Proceed"
		v = c
	}
	b, err := json.Marshal(v)
	return string(b), err
}

func between(s, start, end string) string {
	i := strings.Index(s, start)
	if i < 0 {
		return ""
	}
	s = s[i+len(start):]
	if j := strings.Index(s, end); j >= 0 {
		s = s[:j]
	}
	return s
}

type staticSearcher struct {
	mu    sync.Mutex
	hits  []record.SearchHit
	calls []string
}

func (s *staticSearcher) Name() string { return "Static Search" }

func (s *staticSearcher) Search(_ context.Context, query string, _ int) ([]record.SearchHit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, query)
	return s.hits, nil
}

func threeTaskPlan() record.Plan {
	return record.Plan{
		Problem:   "Should we expand?",
		Rationale: "three angles",
		Subtasks: []record.Subtask{
			{ID: 1, Task: "Task one"},
			{ID: 2, Task: "Task two"},
			{ID: 3, Task: "Task three"},
		},
	}
}

func runnerFor(eng engine.Engine, s *staticSearcher) *stage.Runner {
	opts := stage.DefaultOptions()
	opts.Retry = retry.Config{MaxRetries: 0}
	opts.CallTimeout = 5 * time.Second
	return stage.NewRunner(eng, s, opts)
}

var someHits = []record.SearchHit{{Title: "hit", Snippet: "snippet", URL: "https://example.com"}}

func TestRunSubtaskFailureIsIsolated(t *testing.T) {
	eng := &scriptedEngine{plan: threeTaskPlan(), failOn: "Task two", quality: 8}
	s := &staticSearcher{hits: someHits}
	p := New(runnerFor(eng, s), nil, Options{Tools: []string{"Scripted LLM", "Static Search"}})

	res, err := p.Run(context.Background(), "Should we expand?")
	require.NoError(t, err)

	require.Len(t, res.Research, 3)
	require.Len(t, res.Critiques, 3)
	for i, id := range []int{1, 2, 3} {
		assert.Equal(t, id, res.Research[i].TaskID)
		assert.Equal(t, id, res.Critiques[i].TaskID)
	}

	assert.False(t, res.Research[0].Research.Degraded)
	assert.True(t, res.Research[1].Research.Degraded)
	assert.Equal(t, "Found 1 results but analysis failed", res.Research[1].Research.Summary)
	assert.False(t, res.Research[2].Research.Degraded)
	assert.Equal(t, "Findings for Task three", res.Research[2].Research.Summary)

	assert.Equal(t, 1, res.Degraded)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, stage.KindModel, res.Failures[0].Kind)
	assert.Equal(t, 1, res.Report.Metadata.DegradedRecords)
	assert.Equal(t, []string{"Task one", "Task two", "Task three"}, s.calls)
}

func TestRunEvaluateXWithEmptySearch(t *testing.T) {
	plan := record.Plan{
		Problem:   "Evaluate X",
		Rationale: "one task",
		Subtasks:  []record.Subtask{{ID: 1, Task: "Research X"}},
	}
	eng := &scriptedEngine{plan: plan, quality: 4}
	p := New(runnerFor(eng, &staticSearcher{}), nil, Options{})

	res, err := p.Run(context.Background(), "Evaluate X")
	require.NoError(t, err)

	require.Len(t, res.Research, 1)
	assert.Equal(t, fallback.EmptyResearch("Research X"), res.Research[0].Research)

	c := res.Critiques[0].Critique
	assert.NoError(t, schema.CheckCritique(c))
	assert.True(t, c.ConfidenceLevel.Valid())

	assert.Equal(t, res.Overall.OverallQuality, res.Report.ExecutiveSummary.OverallQualityScore)
	assert.Equal(t, 4, res.Report.ExecutiveSummary.OverallQualityScore)
	assert.Equal(t, "Comprehensive analysis: Evaluate X", res.Overall.ResearchTopic)
	assert.Equal(t, record.ModeLive, res.Report.Metadata.Mode)
	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, res.RunID, res.Report.Metadata.RunID)
}

func TestRunAllFailuresStillReports(t *testing.T) {
	p := New(runnerFor(nil, &staticSearcher{}), nil, Options{})

	res, err := p.Run(context.Background(), "Evaluate X")
	require.NoError(t, err)

	assert.Equal(t, fallback.Plan("Evaluate X"), res.Plan)
	assert.Len(t, res.Research, 3)
	assert.Len(t, res.Critiques, 3)
	// plan + 3 research + 3 critiques + overall critique
	assert.Equal(t, 8, res.Degraded)
	assert.Equal(t, 5, res.Report.ExecutiveSummary.OverallQualityScore)
	assert.Equal(t, record.LevelLow, res.Report.ExecutiveSummary.ConfidenceLevel)
	assert.LessOrEqual(t, len(res.Report.Recommendations), 5)
}

func TestRunConcurrentPreservesOrder(t *testing.T) {
	defer goleak.VerifyNone(t)

	plan := record.Plan{Problem: "p", Rationale: "r"}
	for i := 1; i <= 6; i++ {
		plan.Subtasks = append(plan.Subtasks, record.Subtask{ID: i * 10, Task: "Task " + string(rune('A'+i-1))})
	}
	eng := &scriptedEngine{plan: plan, quality: 7, delay: 5 * time.Millisecond}
	p := New(runnerFor(eng, &staticSearcher{hits: someHits}), nil, Options{Concurrency: 3})

	res, err := p.Run(context.Background(), "p")
	require.NoError(t, err)

	require.Len(t, res.Research, 6)
	for i, item := range res.Research {
		assert.Equal(t, (i+1)*10, item.TaskID)
		assert.Equal(t, plan.Subtasks[i].Task, item.Research.Topic)
		assert.Equal(t, item.TaskID, res.Critiques[i].TaskID)
	}
	assert.LessOrEqual(t, int(eng.peak.Load()), 3)
	assert.Zero(t, res.Degraded)
}

func TestRunCanceled(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	eng := &scriptedEngine{plan: threeTaskPlan(), quality: 7}
	p := New(runnerFor(eng, &staticSearcher{hits: someHits}), nil, Options{Concurrency: 2})

	_, err := p.Run(ctx, "p")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunWithDemoDoubles(t *testing.T) {
	eng := demo.New(0)
	opts := stage.DefaultOptions()
	r := stage.NewRunner(eng, demo.Searcher{}, opts)
	var display strings.Builder
	p := New(r, engine.NewDisplay(&display), Options{Mode: record.ModeDemo, Tools: []string{eng.Label()}})

	res, err := p.Run(context.Background(), "Analyze whether AI interview prep tools are a good startup idea in South Asia")
	require.NoError(t, err)

	assert.Zero(t, res.Degraded)
	assert.Len(t, res.Plan.Subtasks, 3)
	assert.Equal(t, record.ModeDemo, res.Report.Metadata.Mode)
	// The combined record carries sources but no statistics.
	assert.Equal(t, 6, res.Report.ExecutiveSummary.OverallQualityScore)
	assert.Equal(t, 7, res.Critiques[0].Critique.OverallQuality)
	assert.Equal(t, "Task 1: Proceed with cautious optimism. Validate key assumptions with primary research.",
		res.Report.ExecutiveSummary.TopRecommendation)

	out := display.String()
	assert.Contains(t, out, "STEP 1: Task Planning")
	assert.Contains(t, out, "STEP 4: Final Report")
	assert.Contains(t, out, "Plan ready: 3 subtasks")
}

func TestForEachSequential(t *testing.T) {
	var order []int
	items, outs, err := forEach(context.Background(), 4, 1, func(_ context.Context, i int) (int, stage.Outcome) {
		order = append(order, i)
		return i * i, stage.Outcome{Degraded: i == 2}
	})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3}, order)
	assert.Equal(t, []int{0, 1, 4, 9}, items)
	assert.True(t, outs[2].Degraded)
}
