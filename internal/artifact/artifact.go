// Package artifact writes a finished run to the output directory.
package artifact

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jywlabs/analyst/internal/pipeline"
	"github.com/jywlabs/analyst/internal/report"
)

// TimestampLayout prefixes every artifact name.
const TimestampLayout = "20060102_150405"

// slugLimit is the number of problem runes kept in file names.
const slugLimit = 50

// Paths lists the files written for one run.
type Paths struct {
	Plan        string
	Research    string
	Critiques   string
	FinalReport string
	Summary     string
	Markdown    string
}

// All returns the paths in write order.
func (p Paths) All() []string {
	return []string{p.Plan, p.Research, p.Critiques, p.FinalReport, p.Summary, p.Markdown}
}

// Writer saves run artifacts under Dir.
type Writer struct {
	Dir string
	W   io.Writer // progress lines; nil discards them
}

// Slug turns a problem statement into a file name fragment: the first 50
// runes with spaces as underscores and ? . / \ removed.
func Slug(problem string) string {
	r := []rune(problem)
	if len(r) > slugLimit {
		r = r[:slugLimit]
	}
	return strings.NewReplacer(" ", "_", "?", "", ".", "", "/", "", "\\", "").Replace(string(r))
}

// Write saves the plan, research items, critiques and final report as JSON,
// plus the text summary and a markdown rendering.
func (w *Writer) Write(res *pipeline.Result) (Paths, error) {
	if err := os.MkdirAll(w.Dir, 0755); err != nil {
		return Paths{}, fmt.Errorf("failed to create output directory: %w", err)
	}

	prefix := resolveCollision(filepath.Join(w.Dir,
		fmt.Sprintf("%s_%s", res.FinishedAt.Format(TimestampLayout), Slug(res.Problem))))

	p := Paths{
		Plan:        prefix + "_plan.json",
		Research:    prefix + "_research.json",
		Critiques:   prefix + "_critiques.json",
		FinalReport: prefix + "_final_report.json",
		Summary:     prefix + "_summary.txt",
		Markdown:    prefix + "_report.md",
	}

	for _, f := range []struct {
		path string
		v    any
	}{
		{p.Plan, res.Plan},
		{p.Research, res.Research},
		{p.Critiques, res.Critiques},
		{p.FinalReport, res.Report},
	} {
		if err := writeJSON(f.path, f.v); err != nil {
			return Paths{}, err
		}
		w.progress(f.path)
	}

	if err := os.WriteFile(p.Summary, []byte(report.Summary(res.Report, res.FinishedAt)), 0644); err != nil {
		return Paths{}, fmt.Errorf("failed to write %s: %w", filepath.Base(p.Summary), err)
	}
	w.progress(p.Summary)

	if err := os.WriteFile(p.Markdown, []byte(report.Markdown(res.Report)), 0644); err != nil {
		return Paths{}, fmt.Errorf("failed to write %s: %w", filepath.Base(p.Markdown), err)
	}
	w.progress(p.Markdown)

	return p, nil
}

func (w *Writer) progress(path string) {
	if w.W != nil {
		fmt.Fprintf(w.W, "  saved %s\n", filepath.Base(path))
	}
}

// writeJSON writes v indented, leaving non-ASCII and HTML characters as is.
func writeJSON(path string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return nil
}

// resolveCollision appends -2, -3, etc. while files with the prefix exist.
func resolveCollision(prefix string) string {
	if !taken(prefix) {
		return prefix
	}
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s-%d", prefix, i)
		if !taken(candidate) {
			return candidate
		}
	}
}

func taken(prefix string) bool {
	_, err := os.Stat(prefix + "_final_report.json")
	return err == nil
}
