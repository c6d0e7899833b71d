package engine

import (
	"bytes"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"
)

var ansiRegex = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func plain(s string) string {
	return ansiRegex.ReplaceAllString(s, "")
}

func TestShowStep(t *testing.T) {
	var out bytes.Buffer
	d := NewDisplay(&out)

	d.ShowStep(2, "Research Execution")

	if !strings.Contains(plain(out.String()), "STEP 2: Research Execution") {
		t.Errorf("expected step banner, got %q", out.String())
	}
}

func TestShowWarningAndOK(t *testing.T) {
	var out bytes.Buffer
	d := NewDisplay(&out)

	d.ShowWarning("task %d degraded", 3)
	d.ShowOK("saved %s", "plan")

	got := plain(out.String())
	if !strings.Contains(got, "[!] task 3 degraded") {
		t.Errorf("missing warning line in %q", got)
	}
	if !strings.Contains(got, "[ok] saved plan") {
		t.Errorf("missing ok line in %q", got)
	}
}

func TestSpinnerIsNoopWithoutTerminal(t *testing.T) {
	var out bytes.Buffer
	d := NewDisplay(&out)

	d.StartSpinner("thinking...")
	if d.spinning {
		t.Fatal("spinner should not start on a non-terminal writer")
	}
	d.StopSpinner()
	if out.Len() != 0 {
		t.Errorf("expected no output, got %q", out.String())
	}
}

func TestSpinnerConcurrentStartStop(t *testing.T) {
	defer goleak.VerifyNone(t)

	var out bytes.Buffer
	d := NewDisplay(&out)
	d.interactive = true

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				d.StartSpinner("worker")
				d.StopSpinner()
			}
		}(i)
	}
	wg.Wait()
	d.StopSpinner()

	d.spinMu.Lock()
	defer d.spinMu.Unlock()
	if d.spinning || d.spinStop != nil || d.spinDone != nil {
		t.Error("spinner state should be cleared after the final stop")
	}
}

func TestShowInfoConcurrent(t *testing.T) {
	var out bytes.Buffer
	d := NewDisplay(&out)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			d.ShowInfo("line %d\n", i)
		}(i)
	}
	wg.Wait()

	if n := strings.Count(out.String(), "\n"); n != 20 {
		t.Errorf("expected 20 lines, got %d", n)
	}
}

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{1040 * time.Millisecond, " 1.04s"},
		{10 * time.Second, " 10.0s"},
		{150 * time.Second, "  150s"},
	}
	for _, tt := range tests {
		if got := formatElapsed(tt.d); got != tt.want {
			t.Errorf("formatElapsed(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate() = %q", got)
	}
	if got := truncate("a very long line of text", 10); got != "a very ..." {
		t.Errorf("truncate() = %q", got)
	}
}

func TestShowScore(t *testing.T) {
	var out bytes.Buffer
	NewDisplay(&out).ShowScore("Overall quality", 6)

	if got := plain(out.String()); got != "   Overall quality: 6/10\n" {
		t.Errorf("got %q", got)
	}
}

func TestScoreStyle(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{10, "success"},
		{7, "success"},
		{6, "warning"},
		{5, "warning"},
		{4, "error"},
		{0, "error"},
	}
	styles := map[string]string{
		"success": StyleSuccess.Render("x"),
		"warning": StyleWarning.Render("x"),
		"error":   StyleError.Render("x"),
	}

	for _, tt := range tests {
		if got := ScoreStyle(tt.score).Render("x"); got != styles[tt.want] {
			t.Errorf("ScoreStyle(%d) rendered %q, want %s style %q", tt.score, got, tt.want, styles[tt.want])
		}
	}
}
