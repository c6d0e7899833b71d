package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"

	"github.com/jywlabs/analyst/internal/record"
)

// Summary renders the plain-text summary artifact.
func Summary(r record.FinalReport, now time.Time) string {
	var b strings.Builder
	es := r.ExecutiveSummary

	b.WriteString("AUTO-ANALYST REPORT\n")
	b.WriteString(strings.Repeat("=", 50) + "\n")
	fmt.Fprintf(&b, "Problem: %s\n", r.Metadata.Problem)
	fmt.Fprintf(&b, "Generated: %s\n", now.Format(TimeLayout))

	b.WriteString("\nEXECUTIVE SUMMARY:\n")
	b.WriteString(strings.Repeat("-", 30) + "\n")
	fmt.Fprintf(&b, "%s\n\n", es.ProblemStatement)
	b.WriteString("Key Insights:\n")
	for _, insight := range es.KeyInsights {
		fmt.Fprintf(&b, "• %s\n", insight)
	}
	fmt.Fprintf(&b, "\nOverall Quality: %d/10\n", es.OverallQualityScore)
	fmt.Fprintf(&b, "Confidence: %s\n", strings.ToUpper(string(es.ConfidenceLevel)))
	b.WriteString("\nTOP RECOMMENDATION:\n")
	fmt.Fprintf(&b, "%s\n", es.TopRecommendation)

	b.WriteString("\nRECOMMENDATIONS:\n")
	b.WriteString(strings.Repeat("-", 30) + "\n")
	for i, rec := range r.Recommendations {
		fmt.Fprintf(&b, "%d. %s\n", i+1, rec)
	}

	b.WriteString("\nNEXT STEPS:\n")
	b.WriteString(strings.Repeat("-", 30) + "\n")
	for i, step := range r.NextSteps {
		fmt.Fprintf(&b, "%d. %s\n", i+1, step)
	}
	return b.String()
}

// Print writes the terminal view of a report: metadata, executive summary,
// three insights, five recommendations and three next steps.
func Print(w io.Writer, r record.FinalReport) {
	m, es := r.Metadata, r.ExecutiveSummary

	fmt.Fprintln(w, "FINAL ANALYSIS REPORT")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "METADATA:")
	fmt.Fprintf(w, "   Problem: %s\n", m.Problem)
	fmt.Fprintf(w, "   Generated: %s\n", m.GeneratedAt)
	fmt.Fprintf(w, "   Tasks: %d planned, %d completed\n", m.TotalTasks, m.ResearchTasksCompleted)
	if m.DegradedRecords > 0 {
		fmt.Fprintf(w, "   Degraded records: %d\n", m.DegradedRecords)
	}

	fmt.Fprintln(w, "\nEXECUTIVE SUMMARY:")
	fmt.Fprintf(w, "   Overall Quality: %d/10\n", es.OverallQualityScore)
	fmt.Fprintf(w, "   Confidence: %s\n", strings.ToUpper(string(es.ConfidenceLevel)))

	fmt.Fprintln(w, "\nKEY INSIGHTS:")
	for _, insight := range head(es.KeyInsights, 3) {
		fmt.Fprintf(w, "   • %s\n", insight)
	}

	fmt.Fprintln(w, "\nTOP RECOMMENDATION:")
	fmt.Fprintf(w, "   %s\n", es.TopRecommendation)

	fmt.Fprintln(w, "\nDETAILED RECOMMENDATIONS:")
	for i, rec := range head(r.Recommendations, 5) {
		fmt.Fprintf(w, "   %d. %s\n", i+1, rec)
	}

	fmt.Fprintln(w, "\nNEXT STEPS:")
	for i, step := range head(r.NextSteps, 3) {
		fmt.Fprintf(w, "   %d. %s\n", i+1, step)
	}
}

// Markdown renders the full report as a markdown document.
func Markdown(r record.FinalReport) string {
	var b strings.Builder
	m, es := r.Metadata, r.ExecutiveSummary

	b.WriteString("# Auto-Analyst Report\n\n")
	fmt.Fprintf(&b, "**Problem:** %s\n\n", m.Problem)
	fmt.Fprintf(&b, "_Generated %s · run `%s` · mode %s · %d/%d tasks researched · %d degraded records_\n\n",
		m.GeneratedAt, m.RunID, m.Mode, m.ResearchTasksCompleted, m.TotalTasks, m.DegradedRecords)

	b.WriteString("## Executive Summary\n\n")
	fmt.Fprintf(&b, "- **Overall quality:** %d/10\n", es.OverallQualityScore)
	fmt.Fprintf(&b, "- **Confidence:** %s\n", strings.ToUpper(string(es.ConfidenceLevel)))
	fmt.Fprintf(&b, "- **Top recommendation:** %s\n\n", es.TopRecommendation)
	if len(es.KeyInsights) > 0 {
		b.WriteString("### Key Insights\n\n")
		for _, insight := range es.KeyInsights {
			fmt.Fprintf(&b, "- %s\n", insight)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Methodology\n\n")
	fmt.Fprintf(&b, "%s\n\n", r.Methodology.PlanningRationale)
	fmt.Fprintf(&b, "- **Agents:** %s\n", strings.Join(r.Methodology.AgentsUsed, ", "))
	fmt.Fprintf(&b, "- **Tools:** %s\n\n", strings.Join(r.Methodology.ToolsUsed, ", "))

	b.WriteString("## Detailed Findings\n\n")
	for _, f := range r.DetailedFindings {
		fmt.Fprintf(&b, "### Task %d: %s\n\n%s\n\n", f.TaskID, f.Task, f.ResearchSummary)
		for _, kp := range f.KeyPoints {
			fmt.Fprintf(&b, "**%s**\n\n", kp.Category)
			for _, p := range kp.Points {
				fmt.Fprintf(&b, "- %s\n", p)
			}
			b.WriteString("\n")
		}
	}

	ca := r.CriticalAssessment
	b.WriteString("## Critical Assessment\n\n")
	fmt.Fprintf(&b, "Overall score: **%d/10**\n\n", ca.OverallScore)
	writeList(&b, "Strengths", ca.Strengths)
	writeList(&b, "Weaknesses", ca.Weaknesses)
	if len(ca.ImprovementSuggestions) > 0 {
		b.WriteString("**Improvements**\n\n")
		for _, imp := range ca.ImprovementSuggestions {
			fmt.Fprintf(&b, "- [%s] %s: %s\n", strings.ToUpper(string(imp.Priority)), imp.Area, imp.Suggestion)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Recommendations\n\n")
	for i, rec := range r.Recommendations {
		fmt.Fprintf(&b, "%d. %s\n", i+1, rec)
	}
	b.WriteString("\n## Next Steps\n\n")
	for i, step := range r.NextSteps {
		fmt.Fprintf(&b, "%d. %s\n", i+1, step)
	}
	return b.String()
}

// RenderMarkdown styles the markdown report for a terminal of the given width.
func RenderMarkdown(r record.FinalReport, width int) (string, error) {
	if width <= 0 {
		width = 80
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("create markdown renderer: %w", err)
	}
	return renderer.Render(Markdown(r))
}

func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "**%s**\n\n", title)
	for _, it := range items {
		fmt.Fprintf(b, "- %s\n", it)
	}
	b.WriteString("\n")
}

func head(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
