// Package record defines the structured records exchanged between pipeline stages.
package record

// Stage identifies a unit of pipeline work.
type Stage string

const (
	StagePlan     Stage = "plan"
	StageResearch Stage = "research"
	StageCritique Stage = "critique"
	StageReport   Stage = "report"
)

// Stages lists every stage in pipeline order.
var Stages = []Stage{StagePlan, StageResearch, StageCritique, StageReport}

// Credibility rates a research source.
type Credibility string

const (
	CredibilityHigh    Credibility = "high"
	CredibilityMedium  Credibility = "medium"
	CredibilityLow     Credibility = "low"
	CredibilityUnknown Credibility = "unknown"
)

// Level is used for both improvement priority and critique confidence.
type Level string

const (
	LevelHigh   Level = "high"
	LevelMedium Level = "medium"
	LevelLow    Level = "low"
)

// Valid reports whether l is one of high, medium or low.
func (l Level) Valid() bool {
	switch l {
	case LevelHigh, LevelMedium, LevelLow:
		return true
	}
	return false
}

// Subtask is one unit of work inside a Plan. ID is the join key used by later stages.
type Subtask struct {
	ID             int      `json:"id" jsonschema:"required,minimum=1"`
	Task           string   `json:"task" jsonschema:"required"`
	Agent          string   `json:"agent"`
	Tools          []string `json:"tools"`
	ExpectedOutput string   `json:"expected_output"`
}

// Plan is the decomposition of a problem into ordered subtasks.
type Plan struct {
	Problem   string    `json:"problem" jsonschema:"required"`
	Rationale string    `json:"rationale" jsonschema:"required"`
	Subtasks  []Subtask `json:"subtasks" jsonschema:"required"`
	Degraded  bool      `json:"degraded"`
}

// SearchHit is a single result returned by a search provider.
type SearchHit struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	URL     string `json:"url"`
}

// Finding groups related points under a category.
type Finding struct {
	Category string   `json:"category"`
	Points   []string `json:"points"`
}

// Source is a cited source with a credibility rating.
type Source struct {
	Title       string      `json:"title"`
	URL         string      `json:"url"`
	Credibility Credibility `json:"credibility"`
}

// ResearchResult is the summarized research for one subtask.
type ResearchResult struct {
	Topic       string      `json:"topic" jsonschema:"required"`
	Summary     string      `json:"summary" jsonschema:"required"`
	KeyFindings []Finding   `json:"key_findings" jsonschema:"required"`
	Statistics  []string    `json:"statistics"`
	Sources     []Source    `json:"sources"`
	Gaps        []string    `json:"gaps"`
	NextSteps   []string    `json:"next_steps"`
	RawResults  []SearchHit `json:"raw_results"`
	Degraded    bool        `json:"degraded"`
}

// Validation holds the critic's scoring of a research result. Scores are 1-10.
type Validation struct {
	CompletenessScore      int      `json:"completeness_score" jsonschema:"required,minimum=1,maximum=10"`
	AccuracyScore          int      `json:"accuracy_score" jsonschema:"required,minimum=1,maximum=10"`
	SourceCredibilityScore int      `json:"source_credibility_score" jsonschema:"required,minimum=1,maximum=10"`
	BiasesIdentified       []string `json:"biases_identified"`
	Assumptions            []string `json:"assumptions"`
}

// Assessment is the qualitative part of a critique.
type Assessment struct {
	Strengths           []string `json:"strengths"`
	Weaknesses          []string `json:"weaknesses"`
	LogicalIssues       []string `json:"logical_issues"`
	MissingPerspectives []string `json:"missing_perspectives"`
}

// Improvement is a suggested change to a research result.
type Improvement struct {
	Area       string `json:"area"`
	Suggestion string `json:"suggestion"`
	Priority   Level  `json:"priority"`
}

// Critique is the critic's evaluation of one research result.
type Critique struct {
	Topic                   string        `json:"topic" jsonschema:"required"`
	Validation              Validation    `json:"validation" jsonschema:"required"`
	Critique                Assessment    `json:"critique" jsonschema:"required"`
	Improvements            []Improvement `json:"improvements" jsonschema:"required"`
	OverallQuality          int           `json:"overall_quality" jsonschema:"required,minimum=1,maximum=10"`
	ConfidenceLevel         Level         `json:"confidence_level" jsonschema:"required,enum=high,enum=medium,enum=low"`
	Recommendation          string        `json:"recommendation" jsonschema:"required"`
	ResearchTopic           string        `json:"research_topic,omitempty"`
	OriginalResearchSummary string        `json:"original_research_summary,omitempty"`
	Degraded                bool          `json:"degraded"`
}

// ResearchItem ties a research result to the subtask it was produced for.
type ResearchItem struct {
	TaskID          int            `json:"task_id"`
	TaskDescription string         `json:"task_description"`
	Research        ResearchResult `json:"research"`
}

// CritiqueItem ties a critique to the subtask whose research it evaluates.
type CritiqueItem struct {
	TaskID   int      `json:"task_id"`
	Critique Critique `json:"critique"`
}
