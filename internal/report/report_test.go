package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jywlabs/analyst/internal/extract"
	"github.com/jywlabs/analyst/internal/fallback"
	"github.com/jywlabs/analyst/internal/record"
	"github.com/jywlabs/analyst/internal/schema"
)

func critiqueItem(id int, rec string, imps ...record.Improvement) record.CritiqueItem {
	c := fallback.Critique(record.ResearchResult{Topic: "t"})
	c.Recommendation = rec
	c.Improvements = imps
	return record.CritiqueItem{TaskID: id, Critique: c}
}

func TestRecommendations(t *testing.T) {
	plan := record.Plan{Subtasks: []record.Subtask{
		{ID: 1, Task: "Research the market"},
		{ID: 2, Task: "RECOMMEND a pricing model"},
		{ID: 3, Task: "Suggest next experiments"},
	}}

	got := Recommendations(plan, []record.CritiqueItem{critiqueItem(1, "Use with care")})
	assert.Equal(t, []string{
		"Consider: RECOMMEND a pricing model",
		"Consider: Suggest next experiments",
		"Task 1: Use with care",
	}, got)
}

func TestRecommendationsKeepEmptyCritiqueText(t *testing.T) {
	got := Recommendations(record.Plan{}, []record.CritiqueItem{
		critiqueItem(1, "Ship it"),
		critiqueItem(2, ""),
	})
	assert.Equal(t, []string{"Task 1: Ship it", "Task 2: "}, got)
}

func TestRecommendationsCapped(t *testing.T) {
	var items []record.CritiqueItem
	for i := 1; i <= 8; i++ {
		items = append(items, critiqueItem(i, fmt.Sprintf("rec %d", i)))
	}
	got := Recommendations(record.Plan{}, items)
	assert.Len(t, got, 5)
	assert.Equal(t, "Task 5: rec 5", got[4])
}

func TestRecommendationsDefault(t *testing.T) {
	got := Recommendations(record.Plan{Subtasks: []record.Subtask{{ID: 1, Task: "Research"}}}, nil)
	assert.Equal(t, DefaultRecommendations(), got)
	assert.Equal(t, "Conduct more targeted market research", got[0])
}

func TestNextSteps(t *testing.T) {
	high := func(s string) record.Improvement {
		return record.Improvement{Area: "a", Suggestion: s, Priority: record.LevelHigh}
	}
	low := record.Improvement{Area: "a", Suggestion: "low", Priority: record.LevelLow}

	tests := []struct {
		name      string
		critiques []record.CritiqueItem
		want      []string
	}{
		{
			name:      "only first two per critique",
			critiques: []record.CritiqueItem{critiqueItem(1, "", low, high("one"), high("ignored"))},
			want:      []string{"High priority: one"},
		},
		{
			name: "capped at five",
			critiques: []record.CritiqueItem{
				critiqueItem(1, "", high("a"), high("b")),
				critiqueItem(2, "", high("c"), high("d")),
				critiqueItem(3, "", high("e"), high("f")),
			},
			want: []string{"High priority: a", "High priority: b", "High priority: c", "High priority: d", "High priority: e"},
		},
		{
			name:      "default when none high",
			critiques: []record.CritiqueItem{critiqueItem(1, "", low)},
			want:      DefaultNextSteps(),
		},
		{
			name: "default when empty",
			want: DefaultNextSteps(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextSteps(tt.critiques))
		})
	}
}

func TestKeyInsights(t *testing.T) {
	long := strings.Repeat("é", 200)
	var items []record.ResearchItem
	for i := 1; i <= 6; i++ {
		items = append(items, record.ResearchItem{TaskID: i, Research: record.ResearchResult{Summary: "short"}})
	}
	items[0].Research.Summary = long

	got := KeyInsights(items)
	require.Len(t, got, 5)
	assert.Equal(t, "Task 1: "+strings.Repeat("é", 150)+"...", got[0])
	assert.Equal(t, "Task 2: short...", got[1])
}

func TestCombineResearch(t *testing.T) {
	items := []record.ResearchItem{
		{TaskID: 1, Research: record.ResearchResult{
			KeyFindings: []record.Finding{{Category: "A"}},
			Sources:     []record.Source{{Title: "s1"}},
		}},
		{TaskID: 2, Research: fallback.EmptyResearch("t")},
		{TaskID: 3, Research: record.ResearchResult{
			KeyFindings: []record.Finding{{Category: "B"}, {Category: "C"}},
		}},
	}

	got := CombineResearch("Evaluate X", items)
	assert.Equal(t, "Comprehensive analysis: Evaluate X", got.Topic)
	assert.Equal(t, "Analysis combining 3 research tasks", got.Summary)
	assert.Len(t, got.KeyFindings, 3)
	assert.Equal(t, "C", got.KeyFindings[2].Category)
	assert.Len(t, got.Sources, 1)
}

func sampleInput() Input {
	research := fallback.EmptyResearch("Research X")
	overall := fallback.Critique(research)
	overall.Degraded = false
	overall.OverallQuality = 6
	overall.ConfidenceLevel = record.LevelMedium

	perTask := fallback.Critique(research)

	return Input{
		RunID:       "run-1",
		Mode:        record.ModeLive,
		Problem:     "Evaluate X",
		GeneratedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Plan: record.Plan{
			Problem:   "Evaluate X",
			Rationale: "single step",
			Subtasks:  []record.Subtask{{ID: 1, Task: "Research X"}},
		},
		Research:  []record.ResearchItem{{TaskID: 1, TaskDescription: "Research X", Research: research}},
		Critiques: []record.CritiqueItem{{TaskID: 1, Critique: perTask}},
		Overall:   overall,
		Tools:     []string{"Fake LLM", "Fake Search"},
		Degraded:  2,
	}
}

func TestAssemble(t *testing.T) {
	in := sampleInput()
	r := Assemble(in)

	assert.Equal(t, "run-1", r.Metadata.RunID)
	assert.Equal(t, "2026-01-02 03:04:05", r.Metadata.GeneratedAt)
	assert.Equal(t, 1, r.Metadata.TotalTasks)
	assert.Equal(t, 1, r.Metadata.ResearchTasksCompleted)
	assert.Equal(t, 1, r.Metadata.CritiquesGenerated)
	assert.Equal(t, 2, r.Metadata.DegradedRecords)

	// Summary scores come from the overall critique, not the per-task one.
	assert.Equal(t, 6, r.ExecutiveSummary.OverallQualityScore)
	assert.Equal(t, record.LevelMedium, r.ExecutiveSummary.ConfidenceLevel)
	assert.Equal(t, 6, r.CriticalAssessment.OverallScore)
	assert.Equal(t, "Task 1: Use with caution and manual verification", r.ExecutiveSummary.TopRecommendation)
	assert.Equal(t, []string{"Task 1: No search results found..."}, r.ExecutiveSummary.KeyInsights)

	assert.Equal(t, AgentsUsed, r.Methodology.AgentsUsed)
	assert.Equal(t, []string{"Fake LLM", "Fake Search"}, r.Methodology.ToolsUsed)
	assert.Equal(t, "single step", r.Methodology.PlanningRationale)

	require.Len(t, r.DetailedFindings, 1)
	assert.Equal(t, "No search results found", r.DetailedFindings[0].ResearchSummary)
	assert.Equal(t, []string{"High priority: Fix critique generation or use manual review"}, r.NextSteps)
}

func TestAssembleDetailedFindingsTopTwo(t *testing.T) {
	in := sampleInput()
	in.Research[0].Research.KeyFindings = []record.Finding{{Category: "a"}, {Category: "b"}, {Category: "c"}}
	r := Assemble(in)
	assert.Len(t, r.DetailedFindings[0].KeyPoints, 2)
}

func TestAssembledReportValidates(t *testing.T) {
	data, err := json.Marshal(Assemble(sampleInput()))
	require.NoError(t, err)
	rec, err := extract.Extract(string(data))
	require.NoError(t, err)
	assert.NoError(t, schema.Validate(rec, record.StageReport))
}

func TestSummary(t *testing.T) {
	r := Assemble(sampleInput())
	got := Summary(r, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))

	assert.True(t, strings.HasPrefix(got, "AUTO-ANALYST REPORT\n"+strings.Repeat("=", 50)+"\nProblem: Evaluate X\nGenerated: 2026-01-02 03:04:05\n"))
	assert.Contains(t, got, "• Task 1: No search results found...\n")
	assert.Contains(t, got, "Overall Quality: 6/10\nConfidence: MEDIUM\n")
	assert.Contains(t, got, "TOP RECOMMENDATION:\nTask 1: Use with caution and manual verification\n")
	assert.Contains(t, got, "RECOMMENDATIONS:\n"+strings.Repeat("-", 30)+"\n1. Task 1:")
	assert.Contains(t, got, "NEXT STEPS:\n"+strings.Repeat("-", 30)+"\n1. High priority:")
}

func TestPrintLimits(t *testing.T) {
	r := Assemble(sampleInput())
	r.NextSteps = []string{"one", "two", "three", "four"}

	var buf bytes.Buffer
	Print(&buf, r)
	out := buf.String()

	assert.Contains(t, out, "Tasks: 1 planned, 1 completed")
	assert.Contains(t, out, "Degraded records: 2")
	assert.Contains(t, out, "   3. three")
	assert.NotContains(t, out, "four")
}

func TestMarkdown(t *testing.T) {
	md := Markdown(Assemble(sampleInput()))
	assert.Contains(t, md, "# Auto-Analyst Report")
	assert.Contains(t, md, "### Task 1: Research X")
	assert.Contains(t, md, "- [HIGH] Critique System: Fix critique generation or use manual review")
	assert.Contains(t, md, "## Next Steps\n\n1. High priority:")
}

func TestRenderMarkdown(t *testing.T) {
	out, err := RenderMarkdown(Assemble(sampleInput()), 60)
	require.NoError(t, err)
	assert.Contains(t, out, "Auto-Analyst Report")
}
