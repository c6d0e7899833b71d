// Package fallback builds the deterministic placeholder records used when a
// stage cannot produce a parsed result. Every placeholder is marked Degraded
// and carries readable markers so report readers can spot it.
package fallback

import (
	"fmt"

	"github.com/jywlabs/analyst/internal/record"
)

// Plan is the default three-step plan used when planning fails.
func Plan(problem string) record.Plan {
	return record.Plan{
		Problem: problem,
		Subtasks: []record.Subtask{
			{
				ID:             1,
				Task:           "Research and gather information about the problem",
				Agent:          "researcher",
				Tools:          []string{"web_search"},
				ExpectedOutput: "Collection of relevant information and sources",
			},
			{
				ID:             2,
				Task:           "Analyze the gathered information",
				Agent:          "analyst",
				Tools:          []string{},
				ExpectedOutput: "Analysis of pros, cons, and insights",
			},
			{
				ID:             3,
				Task:           "Validate the analysis and provide recommendations",
				Agent:          "critic",
				Tools:          []string{},
				ExpectedOutput: "Validated insights and actionable recommendations",
			},
		},
		Rationale: "Default three-step research pipeline",
		Degraded:  true,
	}
}

// EmptyResearch is used when search returned nothing for topic.
func EmptyResearch(topic string) record.ResearchResult {
	return record.ResearchResult{
		Topic:       topic,
		Summary:     "No search results found",
		KeyFindings: []record.Finding{},
		Statistics:  []string{},
		Sources:     []record.Source{},
		Gaps:        []string{"No information available from search"},
		NextSteps:   []string{"Try different search terms", "Check internet connection"},
		RawResults:  []record.SearchHit{},
		Degraded:    true,
	}
}

// BasicResearch is used when search produced hits but the model analysis failed.
// The first three hits become points and sources.
func BasicResearch(topic string, hits []record.SearchHit) record.ResearchResult {
	top := hits
	if len(top) > 3 {
		top = top[:3]
	}

	points := make([]string, 0, len(top))
	sources := make([]record.Source, 0, len(top))
	for _, h := range top {
		points = append(points, clip(h.Title, 100)+"...")
		sources = append(sources, record.Source{
			Title:       h.Title,
			URL:         h.URL,
			Credibility: record.CredibilityUnknown,
		})
	}

	raw := hits
	if raw == nil {
		raw = []record.SearchHit{}
	}

	return record.ResearchResult{
		Topic:   topic,
		Summary: fmt.Sprintf("Found %d results but analysis failed", len(hits)),
		KeyFindings: []record.Finding{
			{Category: "Raw Search Results", Points: points},
		},
		Statistics: []string{fmt.Sprintf("Total results: %d", len(hits))},
		Sources:    sources,
		Gaps:       []string{"LLM analysis unavailable"},
		NextSteps:  []string{"Manual analysis required"},
		RawResults: raw,
		Degraded:   true,
	}
}

// Critique is the default critique of research, with mid-range scores and low confidence.
func Critique(research record.ResearchResult) record.Critique {
	topic := research.Topic
	if topic == "" {
		topic = "Unknown"
	}
	return record.Critique{
		Topic:                   topic,
		ResearchTopic:           research.Topic,
		OriginalResearchSummary: research.Summary,
		Validation: record.Validation{
			CompletenessScore:      5,
			AccuracyScore:          5,
			SourceCredibilityScore: 5,
			BiasesIdentified:       []string{"Unknown due to critique failure"},
			Assumptions:            []string{"Default critique generated"},
		},
		Critique: record.Assessment{
			Strengths:           []string{"Research was conducted", "Findings were documented"},
			Weaknesses:          []string{"Critique system failed", "Limited validation"},
			LogicalIssues:       []string{"Unable to assess"},
			MissingPerspectives: []string{"Full critique unavailable"},
		},
		Improvements: []record.Improvement{
			{
				Area:       "Critique System",
				Suggestion: "Fix critique generation or use manual review",
				Priority:   record.LevelHigh,
			},
		},
		OverallQuality:  5,
		ConfidenceLevel: record.LevelLow,
		Recommendation:  "Use with caution and manual verification",
		Degraded:        true,
	}
}

// clip returns at most n runes of s.
func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
