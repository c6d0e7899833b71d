package demo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jywlabs/analyst/internal/engine"
	"github.com/jywlabs/analyst/internal/extract"
	"github.com/jywlabs/analyst/internal/record"
	"github.com/jywlabs/analyst/internal/schema"
)

func TestRegistered(t *testing.T) {
	eng, err := engine.New("demo", engine.Config{})
	require.NoError(t, err)
	assert.Equal(t, "demo", eng.Name())
}

func TestMockPlan(t *testing.T) {
	tests := []struct {
		problem  string
		subtasks int
	}{
		{"Is this a good startup?", 3},
		{"Evaluate my business idea", 3},
		{"New VENTURE in fintech", 3},
		{"Analyze the EV market", 2},
	}
	for _, tt := range tests {
		t.Run(tt.problem, func(t *testing.T) {
			p := MockPlan(tt.problem)
			assert.Equal(t, tt.problem, p.Problem)
			assert.Len(t, p.Subtasks, tt.subtasks)
			for i, st := range p.Subtasks {
				assert.Equal(t, i+1, st.ID)
			}
		})
	}
}

func TestMockResearchTemplates(t *testing.T) {
	tech := MockResearch("AI adoption in software teams")
	require.Len(t, tech.Sources, 2)
	assert.Equal(t, "AI Adoption Growing at 40% CAGR in Target Region", tech.Sources[0].Title)
	assert.Equal(t, "Research indicates strong potential for AI with several key opportunities identified.", tech.Summary)

	other := MockResearch("Regional demand drivers")
	require.Len(t, other.Sources, 2)
	assert.Equal(t, "Success Stories: Similar Startups Securing Series A Funding", other.Sources[0].Title)
}

func TestMockCritiqueScores(t *testing.T) {
	tests := []struct {
		name                string
		stats, sources      bool
		complete, acc, want int
	}{
		{"stats and sources", true, true, 7, 8, 7},
		{"sources only", false, true, 5, 8, 6},
		{"stats only", true, false, 5, 6, 5},
		{"neither", false, false, 5, 6, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := MockCritique("topic", tt.stats, tt.sources)
			assert.Equal(t, tt.complete, c.Validation.CompletenessScore)
			assert.Equal(t, tt.acc, c.Validation.AccuracyScore)
			assert.Equal(t, tt.want, c.OverallQuality)
			assert.NoError(t, schema.CheckCritique(c))
		})
	}
	assert.Equal(t, "Unknown", MockCritique("", false, false).Topic)
}

func TestGenerateByStage(t *testing.T) {
	eng := New(0)
	ctx := context.Background()

	out, err := eng.Generate(ctx, engine.Request{
		Stage:  record.StagePlan,
		Prompt: "You are a planner.\n\nUSER PROBLEM: Should I build a startup?\n\nINSTRUCTIONS:",
	})
	require.NoError(t, err)
	rec, err := extract.Extract(out)
	require.NoError(t, err)
	require.NoError(t, schema.Validate(rec, record.StagePlan))
	var plan record.Plan
	require.NoError(t, rec.Decode(&plan))
	assert.Equal(t, "Should I build a startup?", plan.Problem)
	assert.Len(t, plan.Subtasks, 3)

	out, err = eng.Generate(ctx, engine.Request{
		Stage:  record.StageResearch,
		Prompt: "RESEARCH TOPIC: Software market size\n\nSEARCH RESULTS:\n",
	})
	require.NoError(t, err)
	rec, err = extract.Extract(out)
	require.NoError(t, err)
	require.NoError(t, schema.Validate(rec, record.StageResearch))

	out, err = eng.Generate(ctx, engine.Request{
		Stage:  record.StageCritique,
		Prompt: "RESEARCH TOPIC: Software market size\n\nRESEARCH FINDINGS:\nSUMMARY: s\n\nSTATISTICS:\n- a\n\nSOURCES:\n- b (high)",
	})
	require.NoError(t, err)
	rec, err = extract.Extract(out)
	require.NoError(t, err)
	require.NoError(t, schema.Validate(rec, record.StageCritique))
	var c record.Critique
	require.NoError(t, rec.Decode(&c))
	assert.Equal(t, 7, c.OverallQuality)

	_, err = eng.Generate(ctx, engine.Request{Stage: record.StageReport})
	assert.Error(t, err)
}

func TestGenerateHonorsCancel(t *testing.T) {
	eng := New(10)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := eng.Generate(ctx, engine.Request{Stage: record.StageResearch})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestParseSpeed(t *testing.T) {
	f, err := ParseSpeed("Realistic")
	require.NoError(t, err)
	assert.Equal(t, 2.0, f)

	_, err = ParseSpeed("warp")
	assert.Error(t, err)
}

func TestSearcher(t *testing.T) {
	hits, err := Searcher{}.Search(context.Background(), "tech adoption", 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "https://techreport.example/ai-growth-2024", hits[0].URL)
	assert.NotEmpty(t, hits[0].Snippet)
}

func TestSampleProblems(t *testing.T) {
	samples := SampleProblems()
	assert.Len(t, samples, 4)
	assert.Equal(t, "startup_ai_interview", samples[0].ID)
}
