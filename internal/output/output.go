package output

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"time"

	"github.com/jywlabs/analyst/internal/engine/demo"
	"github.com/jywlabs/analyst/internal/history"
)

// Printer handles formatted output for the CLI.
type Printer struct {
	w io.Writer
}

// New creates a new Printer that writes to the given writer.
func New(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Samples lists the built-in sample problems.
// Format: "N. <title> [category, difficulty]" then the indented problem.
func (p *Printer) Samples(samples []demo.Sample) {
	for i, s := range samples {
		fmt.Fprintf(p.w, "%d. %s [%s, %s]\n", i+1, s.Title, s.Category, s.Difficulty)
		fmt.Fprintf(p.w, "   %s\n", s.Description)
	}
}

// Saved prints the artifact list written after a run.
// Format: "Output saved to <dir>/" then one line per file.
func (p *Printer) Saved(dir string, paths []string) {
	fmt.Fprintf(p.w, "Output saved to %s/\n", dir)
	for _, path := range paths {
		fmt.Fprintf(p.w, "  %s\n", filepath.Base(path))
	}
}

// Runs prints the run history table.
// Format: "<finished>  <quality>/10 <confidence>  <degraded>  <problem>"
func (p *Printer) Runs(runs []history.Run) {
	if len(runs) == 0 {
		fmt.Fprintf(p.w, "No runs recorded\n")
		return
	}
	fmt.Fprintf(p.w, "%-19s  %-5s  %-6s  %-4s  %-4s  %s\n", "FINISHED", "SCORE", "CONF", "MODE", "DEG", "PROBLEM")
	for _, r := range runs {
		fmt.Fprintf(p.w, "%-19s  %2d/10  %-6s  %-4s  %4d  %s\n",
			r.FinishedAt.Local().Format(time.DateTime), r.Quality, r.Confidence, r.Mode, r.Degraded, r.Problem)
	}
}

// Settings prints key/value pairs sorted by key.
// Format: "  key: value"
func (p *Printer) Settings(title string, kv map[string]string) {
	fmt.Fprintf(p.w, "%s:\n", title)
	keys := make([]string, 0, len(kv))
	for k := range kv {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(p.w, "  %s: %s\n", k, kv[k])
	}
}
