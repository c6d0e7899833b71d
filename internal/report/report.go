// Package report assembles the final report from a run's stage records.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/jywlabs/analyst/internal/record"
)

// TimeLayout formats metadata.generated_at.
const TimeLayout = "2006-01-02 15:04:05"

// List caps.
const (
	maxRecommendations   = 5
	maxNextSteps         = 5
	maxInsights          = 5
	maxImprovementsEach  = 2
	maxDetailedFindings  = 2
	insightSummaryLength = 150
)

// AgentsUsed is reported in the methodology section.
var AgentsUsed = []string{"TaskPlanner", "ResearchAgent", "CriticAgent"}

// DefaultRecommendations is used when neither the plan nor the critiques
// yield a recommendation.
func DefaultRecommendations() []string {
	return []string{
		"Conduct more targeted market research",
		"Validate findings with industry experts",
		"Analyze competitor offerings in detail",
		"Assess technical feasibility and costs",
		"Develop a minimum viable product (MVP) strategy",
	}
}

// DefaultNextSteps is used when no critique carries a high-priority improvement.
func DefaultNextSteps() []string {
	return []string{
		"Expand search to academic databases",
		"Conduct expert interviews",
		"Analyze regional market data",
		"Validate with user surveys",
	}
}

// Input is everything a report is built from.
type Input struct {
	RunID       string
	Mode        string
	Problem     string
	GeneratedAt time.Time
	Plan        record.Plan
	Research    []record.ResearchItem
	Critiques   []record.CritiqueItem
	Overall     record.Critique // critique of CombineResearch output
	Tools       []string        // engine label followed by search providers
	Degraded    int
}

// Assemble builds the final report. It is a pure function of in.
func Assemble(in Input) record.FinalReport {
	recs := Recommendations(in.Plan, in.Critiques)

	findings := make([]record.DetailedFinding, 0, len(in.Research))
	for _, item := range in.Research {
		points := item.Research.KeyFindings
		if len(points) > maxDetailedFindings {
			points = points[:maxDetailedFindings]
		}
		if points == nil {
			points = []record.Finding{}
		}
		findings = append(findings, record.DetailedFinding{
			TaskID:          item.TaskID,
			Task:            item.TaskDescription,
			ResearchSummary: item.Research.Summary,
			KeyPoints:       points,
		})
	}

	tools := in.Tools
	if tools == nil {
		tools = []string{}
	}

	return record.FinalReport{
		Metadata: record.ReportMetadata{
			RunID:                  in.RunID,
			Mode:                   in.Mode,
			Problem:                in.Problem,
			GeneratedAt:            in.GeneratedAt.Format(TimeLayout),
			TotalTasks:             len(in.Plan.Subtasks),
			ResearchTasksCompleted: len(in.Research),
			CritiquesGenerated:     len(in.Critiques),
			DegradedRecords:        in.Degraded,
		},
		ExecutiveSummary: record.ExecutiveSummary{
			ProblemStatement: in.Problem,
			KeyInsights:      KeyInsights(in.Research),
			// Quality and confidence come from the overall critique, not
			// an average of the per-task critiques.
			OverallQualityScore: in.Overall.OverallQuality,
			ConfidenceLevel:     in.Overall.ConfidenceLevel,
			TopRecommendation:   recs[0],
		},
		Methodology: record.Methodology{
			PlanningRationale: in.Plan.Rationale,
			AgentsUsed:        append([]string(nil), AgentsUsed...),
			ToolsUsed:         tools,
		},
		DetailedFindings: findings,
		CriticalAssessment: record.CriticalAssessment{
			OverallScore:           in.Overall.OverallQuality,
			Strengths:              nonNil(in.Overall.Critique.Strengths),
			Weaknesses:             nonNil(in.Overall.Critique.Weaknesses),
			ImprovementSuggestions: nonNilImprovements(in.Overall.Improvements),
		},
		Recommendations: recs,
		NextSteps:       NextSteps(in.Critiques),
	}
}

// Recommendations lists "Consider:" lines for subtasks that recommend or
// suggest, then each critique's recommendation labeled by task id. An empty
// result is replaced by DefaultRecommendations. At most five are returned.
func Recommendations(plan record.Plan, critiques []record.CritiqueItem) []string {
	var recs []string
	for _, st := range plan.Subtasks {
		task := strings.ToLower(st.Task)
		if strings.Contains(task, "recommend") || strings.Contains(task, "suggest") {
			recs = append(recs, "Consider: "+st.Task)
		}
	}
	for _, item := range critiques {
		recs = append(recs, fmt.Sprintf("Task %d: %s", item.TaskID, item.Critique.Recommendation))
	}
	if len(recs) == 0 {
		recs = DefaultRecommendations()
	}
	if len(recs) > maxRecommendations {
		recs = recs[:maxRecommendations]
	}
	return recs
}

// NextSteps collects high-priority improvements, looking at the first two
// of each critique. An empty result is replaced by DefaultNextSteps.
func NextSteps(critiques []record.CritiqueItem) []string {
	var steps []string
	for _, item := range critiques {
		imps := item.Critique.Improvements
		if len(imps) > maxImprovementsEach {
			imps = imps[:maxImprovementsEach]
		}
		for _, imp := range imps {
			if imp.Priority == record.LevelHigh {
				steps = append(steps, "High priority: "+imp.Suggestion)
			}
		}
	}
	if len(steps) == 0 {
		steps = DefaultNextSteps()
	}
	if len(steps) > maxNextSteps {
		steps = steps[:maxNextSteps]
	}
	return steps
}

// KeyInsights renders one line per research item from its summary, at most five.
func KeyInsights(items []record.ResearchItem) []string {
	insights := make([]string, 0, len(items))
	for _, item := range items {
		if len(insights) == maxInsights {
			break
		}
		insights = append(insights, fmt.Sprintf("Task %d: %s...", item.TaskID, truncate(item.Research.Summary, insightSummaryLength)))
	}
	return insights
}

// CombineResearch builds the synthetic research record that the overall
// critique evaluates: all key findings and sources in task order.
func CombineResearch(problem string, items []record.ResearchItem) record.ResearchResult {
	combined := record.ResearchResult{
		Topic:       "Comprehensive analysis: " + problem,
		Summary:     fmt.Sprintf("Analysis combining %d research tasks", len(items)),
		KeyFindings: []record.Finding{},
		Sources:     []record.Source{},
	}
	for _, item := range items {
		combined.KeyFindings = append(combined.KeyFindings, item.Research.KeyFindings...)
		combined.Sources = append(combined.Sources, item.Research.Sources...)
	}
	return combined
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilImprovements(s []record.Improvement) []record.Improvement {
	if s == nil {
		return []record.Improvement{}
	}
	return s
}
