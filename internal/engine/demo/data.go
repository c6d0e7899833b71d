package demo

import (
	"strings"

	"github.com/jywlabs/analyst/internal/record"
)

// Sample is a ready-made problem for trying the tool.
type Sample struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Difficulty  string `json:"difficulty"`
}

// SampleProblems returns the sample gallery.
func SampleProblems() []Sample {
	return []Sample{
		{
			ID:          "startup_ai_interview",
			Title:       "AI Interview Prep Startup",
			Description: "Analyze whether AI interview prep tools are a good startup idea in South Asia",
			Category:    "startup",
			Difficulty:  "medium",
		},
		{
			ID:          "market_ev_asia",
			Title:       "EV Market in Southeast Asia",
			Description: "Analyze the electric vehicle market growth potential in Southeast Asia",
			Category:    "market",
			Difficulty:  "hard",
		},
		{
			ID:          "tech_ai_healthcare",
			Title:       "AI in Healthcare Diagnosis",
			Description: "Evaluate the adoption of AI in healthcare diagnosis in developing countries",
			Category:    "tech",
			Difficulty:  "hard",
		},
		{
			ID:          "business_food_delivery",
			Title:       "Food Delivery in Rural Areas",
			Description: "Analyze the potential for a food delivery app in rural areas with limited infrastructure",
			Category:    "business",
			Difficulty:  "medium",
		},
	}
}

func containsAny(s string, words ...string) bool {
	s = strings.ToLower(s)
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// MockPlan returns the startup plan for startup-like problems and the
// market-analysis plan otherwise.
func MockPlan(problem string) record.Plan {
	if containsAny(problem, "startup", "business idea", "venture") {
		return record.Plan{
			Problem:   problem,
			Rationale: "This breakdown covers market validation, competitive analysis, technical feasibility, and financial modeling to thoroughly evaluate the startup potential.",
			Subtasks: []record.Subtask{
				{ID: 1, Task: "Research market size and growth trends", Agent: "researcher",
					Tools: []string{"market_reports", "industry_data"}, ExpectedOutput: "Market size estimate and growth projections"},
				{ID: 2, Task: "Analyze competitor landscape and differentiation", Agent: "analyst",
					Tools: []string{"competitor_analysis"}, ExpectedOutput: "Competitive analysis matrix and SWOT"},
				{ID: 3, Task: "Evaluate technical requirements and feasibility", Agent: "technical_expert",
					Tools: []string{"tech_assessment"}, ExpectedOutput: "Technical feasibility report"},
			},
		}
	}
	return record.Plan{
		Problem:   problem,
		Rationale: "Comprehensive market analysis covering demand drivers, segmentation, and regional variations.",
		Subtasks: []record.Subtask{
			{ID: 1, Task: "Analyze demand drivers and customer segments", Agent: "researcher",
				Tools: []string{"customer_surveys", "market_data"}, ExpectedOutput: "Customer segmentation analysis"},
			{ID: 2, Task: "Research regional market variations", Agent: "researcher",
				Tools: []string{"regional_data", "demographics"}, ExpectedOutput: "Regional breakdown report"},
		},
	}
}

type template struct {
	record.Source
	snippet string
}

var techTemplates = []template{
	{record.Source{Title: "AI Adoption Growing at 40% CAGR in Target Region", URL: "https://techreport.example/ai-growth-2024", Credibility: record.CredibilityHigh},
		"Recent industry reports indicate rapid adoption of AI solutions, with the interview preparation segment showing particularly strong growth."},
	{record.Source{Title: "Market Size Estimated at $850M with Strong Growth Projections", URL: "https://marketresearch.example/size-projections", Credibility: record.CredibilityMedium},
		"The target market is projected to reach $1.2B by 2026, driven by increasing digital literacy and job market competition."},
}

var startupTemplates = []template{
	{record.Source{Title: "Success Stories: Similar Startups Securing Series A Funding", URL: "https://startuptracker.example/funding-stories", Credibility: record.CredibilityHigh},
		"Three startups in adjacent spaces have raised over $20M in combined funding in the last 12 months."},
	{record.Source{Title: "Customer Willingness to Pay: Survey Results", URL: "https://surveydata.example/willingness-pay", Credibility: record.CredibilityMedium},
		"68% of surveyed professionals indicated willingness to pay $20-50/month for premium interview preparation tools."},
}

func templatesFor(topic string) []template {
	if containsAny(topic, "tech", "ai", "software") {
		return techTemplates
	}
	return startupTemplates
}

// MockResearch returns canned research for topic with the first two
// matching source templates.
func MockResearch(topic string) record.ResearchResult {
	lead := topic
	if f := strings.Fields(topic); len(f) > 0 {
		lead = f[0]
	}

	tpls := templatesFor(topic)
	sources := make([]record.Source, 0, 2)
	for i := 0; i < len(tpls) && i < 2; i++ {
		sources = append(sources, tpls[i].Source)
	}

	return record.ResearchResult{
		Topic:   topic,
		Summary: "Research indicates strong potential for " + lead + " with several key opportunities identified.",
		KeyFindings: []record.Finding{
			{Category: "Market Opportunity", Points: []string{
				"Growing demand in target demographic (18-35 age group)",
				"Increasing digital adoption post-pandemic",
				"Limited existing high-quality solutions",
			}},
			{Category: "Competitive Landscape", Points: []string{
				"2-3 major players with 60% market share",
				"Several smaller niche competitors",
				"Opportunity for differentiation through AI personalization",
			}},
		},
		Statistics: []string{
			"Market growth: 25% YoY",
			"Target audience size: 15M potential users",
			"Average revenue per user: $180 annually",
		},
		Sources:   sources,
		Gaps:      []string{"Region-specific cultural adaptation data", "Long-term user retention metrics"},
		NextSteps: []string{"Conduct user interviews for validation", "Analyze regional regulatory requirements"},
	}
}

// MockCritique scores research by whether it carried statistics and sources.
func MockCritique(topic string, hasStats, hasSources bool) record.Critique {
	if topic == "" {
		topic = "Unknown"
	}
	completeness, accuracy := 5, 6
	if hasStats && hasSources {
		completeness = 7
	}
	if hasSources {
		accuracy = 8
	}

	return record.Critique{
		Topic: topic,
		Validation: record.Validation{
			CompletenessScore:      completeness,
			AccuracyScore:          accuracy,
			SourceCredibilityScore: 7,
			BiasesIdentified:       []string{"Optimism bias in growth projections"},
			Assumptions:            []string{"Current trends will continue", "No major regulatory changes"},
		},
		Critique: record.Assessment{
			Strengths:           []string{"Comprehensive market data", "Clear opportunity identification", "Actionable insights provided"},
			Weaknesses:          []string{"Limited primary research", "Regional variations not fully addressed"},
			LogicalIssues:       []string{"Correlation vs causation in trend analysis"},
			MissingPerspectives: []string{"User experience considerations", "Implementation challenges"},
		},
		Improvements: []record.Improvement{
			{Area: "Primary Research", Suggestion: "Conduct 20-30 user interviews for validation", Priority: record.LevelHigh},
			{Area: "Regional Analysis", Suggestion: "Break down analysis by country/region", Priority: record.LevelMedium},
		},
		OverallQuality:  (completeness + accuracy) / 2,
		ConfidenceLevel: record.LevelMedium,
		Recommendation:  "Proceed with cautious optimism. Validate key assumptions with primary research.",
	}
}
