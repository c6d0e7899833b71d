package record

// Run modes recorded in report metadata.
const (
	ModeLive = "live"
	ModeDemo = "demo"
)

// FinalReport is assembled once at the end of a run and never mutated.
type FinalReport struct {
	Metadata           ReportMetadata     `json:"metadata" jsonschema:"required"`
	ExecutiveSummary   ExecutiveSummary   `json:"executive_summary" jsonschema:"required"`
	Methodology        Methodology        `json:"methodology" jsonschema:"required"`
	DetailedFindings   []DetailedFinding  `json:"detailed_findings" jsonschema:"required"`
	CriticalAssessment CriticalAssessment `json:"critical_assessment" jsonschema:"required"`
	Recommendations    []string           `json:"recommendations" jsonschema:"required"`
	NextSteps          []string           `json:"next_steps" jsonschema:"required"`
}

// ReportMetadata identifies the run and counts what each stage produced.
type ReportMetadata struct {
	RunID                  string `json:"run_id"`
	Mode                   string `json:"mode"`
	Problem                string `json:"problem"`
	GeneratedAt            string `json:"generated_at"`
	TotalTasks             int    `json:"total_tasks"`
	ResearchTasksCompleted int    `json:"research_tasks_completed"`
	CritiquesGenerated     int    `json:"critiques_generated"`
	DegradedRecords        int    `json:"degraded_records"`
}

// ExecutiveSummary is the headline view: insights, scores and the top recommendation.
type ExecutiveSummary struct {
	ProblemStatement    string   `json:"problem_statement"`
	KeyInsights         []string `json:"key_insights"`
	OverallQualityScore int      `json:"overall_quality_score"`
	ConfidenceLevel     Level    `json:"confidence_level"`
	TopRecommendation   string   `json:"top_recommendation"`
}

// Methodology records how the analysis was planned and which agents and tools ran.
type Methodology struct {
	PlanningRationale string   `json:"planning_rationale"`
	AgentsUsed        []string `json:"agents_used"`
	ToolsUsed         []string `json:"tools_used"`
}

// DetailedFinding pairs a subtask with its research summary and key points.
type DetailedFinding struct {
	TaskID          int       `json:"task_id"`
	Task            string    `json:"task"`
	ResearchSummary string    `json:"research_summary"`
	KeyPoints       []Finding `json:"key_points"`
}

// CriticalAssessment carries the overall critique of the combined research.
type CriticalAssessment struct {
	OverallScore           int           `json:"overall_score"`
	Strengths              []string      `json:"strengths"`
	Weaknesses             []string      `json:"weaknesses"`
	ImprovementSuggestions []Improvement `json:"improvement_suggestions"`
}
