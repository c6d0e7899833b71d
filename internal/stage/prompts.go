package stage

import (
	"fmt"
	"strings"

	"github.com/jywlabs/analyst/internal/record"
)

const planPrompt = `You are an expert task planner. Your job is to break down complex problems into clear, actionable subtasks.

USER PROBLEM: %s

INSTRUCTIONS:
1. Analyze the problem and identify the key components
2. Break it down into 3-6 logical subtasks
3. Each subtask should be specific and actionable
4. Consider research, analysis, validation, and reporting phases
5. Output in JSON format with this structure:
{
    "problem": "Original problem",
    "subtasks": [
        {
            "id": 1,
            "task": "Specific task description",
            "agent": "Which agent should handle this (researcher, analyst, critic, etc.)",
            "tools": ["tools needed"],
            "expected_output": "What this task should produce"
        }
    ],
    "rationale": "Brief explanation of why you chose this breakdown"
}

OUTPUT ONLY VALID JSON:`

const researchPrompt = `You are an expert research analyst. Analyze the provided search results and create a comprehensive summary.

RESEARCH TOPIC: %s

SEARCH RESULTS:
%s

INSTRUCTIONS:
1. Extract key insights from the search results
2. Identify trends, statistics, and important facts
3. Note any contradictions or gaps in information
4. Organize findings into logical categories
5. Include source credibility assessment
6. If the topic is about career choices or education decisions, provide comparative analysis with pros/cons
7. Output in JSON format:
{
    "topic": "Research topic",
    "summary": "Concise overview of findings",
    "key_findings": [
        {
            "category": "Category name",
            "points": ["point 1", "point 2"]
        }
    ],
    "statistics": ["stat 1", "stat 2"],
    "sources": [
        {
            "title": "Source title",
            "url": "Source URL",
            "credibility": "high/medium/low"
        }
    ],
    "gaps": ["What information is missing"],
    "next_steps": ["Recommended follow-up research"]
}

OUTPUT ONLY VALID JSON:`

const critiquePrompt = `You are an expert critical analyst. Your job is to validate, critique, and improve research findings.

RESEARCH TOPIC: %s

RESEARCH FINDINGS:
%s

INSTRUCTIONS:
1. Validate the completeness and accuracy of the findings
2. Identify biases, assumptions, or logical fallacies
3. Assess source credibility and potential conflicts
4. Suggest improvements or additional research needed
5. Rate the overall quality (1-10 scale)
6. Output in JSON format:
{
    "topic": "Research topic",
    "validation": {
        "completeness_score": 1-10,
        "accuracy_score": 1-10,
        "source_credibility_score": 1-10,
        "biases_identified": ["bias 1", "bias 2"],
        "assumptions": ["assumption 1", "assumption 2"]
    },
    "critique": {
        "strengths": ["strength 1", "strength 2"],
        "weaknesses": ["weakness 1", "weakness 2"],
        "logical_issues": ["issue 1", "issue 2"],
        "missing_perspectives": ["perspective 1", "perspective 2"]
    },
    "improvements": [
        {
            "area": "Area needing improvement",
            "suggestion": "Specific suggestion",
            "priority": "high/medium/low"
        }
    ],
    "overall_quality": 1-10,
    "confidence_level": "high/medium/low",
    "recommendation": "Overall recommendation for use"
}

OUTPUT ONLY VALID JSON:`

// PlanPrompt renders the planning prompt for problem.
func PlanPrompt(problem string) string {
	return fmt.Sprintf(planPrompt, problem)
}

// ResearchPrompt renders the research prompt with formatted search results.
func ResearchPrompt(topic, formattedHits string) string {
	return fmt.Sprintf(researchPrompt, topic, formattedHits)
}

// CritiquePrompt renders the critique prompt for research.
func CritiquePrompt(research record.ResearchResult) string {
	topic := research.Topic
	if topic == "" {
		topic = "Unknown topic"
	}
	return fmt.Sprintf(critiquePrompt, topic, FindingsSummary(research))
}

// Limits applied when summarizing research for the critic.
const (
	maxPointsPerCategory = 3
	maxStatistics        = 5
	maxSources           = 3
	maxGaps              = 3
)

// FindingsSummary condenses research into the block the critic reads.
// Sections with no entries are omitted.
func FindingsSummary(r record.ResearchResult) string {
	summary := r.Summary
	if summary == "" {
		summary = "No summary"
	}
	parts := []string{"SUMMARY: " + summary}

	if len(r.KeyFindings) > 0 {
		parts = append(parts, "\nKEY FINDINGS:")
		for _, f := range r.KeyFindings {
			parts = append(parts, fmt.Sprintf("- %s:", f.Category))
			for _, p := range head(f.Points, maxPointsPerCategory) {
				parts = append(parts, "  • "+p)
			}
		}
	}

	if len(r.Statistics) > 0 {
		parts = append(parts, "\nSTATISTICS:")
		for _, s := range head(r.Statistics, maxStatistics) {
			parts = append(parts, "- "+s)
		}
	}

	if len(r.Sources) > 0 {
		parts = append(parts, "\nSOURCES:")
		for _, s := range head(r.Sources, maxSources) {
			title, cred := s.Title, s.Credibility
			if title == "" {
				title = "No title"
			}
			if cred == "" {
				cred = record.CredibilityUnknown
			}
			parts = append(parts, fmt.Sprintf("- %s (%s)", title, cred))
		}
	}

	if len(r.Gaps) > 0 {
		parts = append(parts, "\nIDENTIFIED GAPS:")
		for _, g := range head(r.Gaps, maxGaps) {
			parts = append(parts, "- "+g)
		}
	}

	return strings.Join(parts, "\n")
}

func head[T any](s []T, n int) []T {
	if len(s) > n {
		return s[:n]
	}
	return s
}
