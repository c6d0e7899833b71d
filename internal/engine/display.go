package engine

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/x/term"
)

// Spinner frames using braille characters
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Flusher is an optional interface for writers that support flushing.
type Flusher interface {
	Sync() error
}

// Display handles terminal progress output for a pipeline run.
// It is safe for concurrent use by stage workers.
type Display struct {
	out         io.Writer
	interactive bool
	mu          sync.Mutex
	spinMu      sync.Mutex // Separate mutex for spinner to avoid deadlock
	spinning    bool
	spinStop    chan struct{}
	spinDone    chan struct{}
	spinMsg     string
	spinStart   time.Time
	startTime   time.Time
}

// NewDisplay creates a new display writer. The spinner only animates when
// out is a terminal.
func NewDisplay(out io.Writer) *Display {
	interactive := false
	if f, ok := out.(*os.File); ok {
		interactive = term.IsTerminal(f.Fd())
	}
	return &Display{
		out:         out,
		interactive: interactive,
		startTime:   time.Now(),
	}
}

// flush attempts to flush the output if it supports it.
func (d *Display) flush() {
	if f, ok := d.out.(Flusher); ok {
		f.Sync()
	}
}

// StartSpinner begins the loading spinner with a message.
// If a spinner is already running its message is replaced.
func (d *Display) StartSpinner(msg string) {
	d.spinMu.Lock()
	defer d.spinMu.Unlock()
	if d.spinning {
		d.spinMsg = msg
		return
	}
	if !d.interactive {
		return
	}
	stop := make(chan struct{})
	done := make(chan struct{})
	d.spinning = true
	d.spinMsg = msg
	d.spinStart = time.Now()
	d.spinStop = stop
	d.spinDone = done

	go d.spin(stop, done)
}

// spin animates until stop is closed. It only touches the channels it was
// started with, so a later spinner cannot redirect it.
func (d *Display) spin(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	frame := 0
	ticker := time.NewTicker(80 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			d.mu.Lock()
			fmt.Fprint(d.out, "\r\033[K")
			d.flush()
			d.mu.Unlock()
			return
		case <-ticker.C:
			d.spinMu.Lock()
			msg, started := d.spinMsg, d.spinStart
			d.spinMu.Unlock()

			d.mu.Lock()
			fmt.Fprintf(d.out, "\r\033[K   %s %s (%s)",
				StyleAccent.Render(spinnerFrames[frame]), msg, formatElapsed(time.Since(started)))
			d.flush()
			d.mu.Unlock()
			frame = (frame + 1) % len(spinnerFrames)
		}
	}
}

// StopSpinner stops the loading spinner and waits for its line to clear.
func (d *Display) StopSpinner() {
	d.spinMu.Lock()
	if !d.spinning {
		d.spinMu.Unlock()
		return
	}
	d.spinning = false
	stop, done := d.spinStop, d.spinDone
	d.spinStop, d.spinDone = nil, nil
	close(stop)
	d.spinMu.Unlock()
	<-done
}

// ShowHeader displays the run banner.
func (d *Display) ShowHeader(title, detail, engineName string) {
	d.StopSpinner()
	body := StyleTitle.Render(title)
	if detail != "" {
		body += "\n" + truncate(detail, 70)
	}
	if engineName != "" {
		body += "\n" + StyleMuted.Render("engine: "+engineName)
	}
	d.println(HeaderBox().Render(body))
}

// ShowStep displays a stage banner, e.g. "STEP 2: Research Execution".
func (d *Display) ShowStep(n int, title string) {
	d.StopSpinner()
	d.println("")
	d.println(StyleBold.Render(fmt.Sprintf("STEP %d: %s", n, title)))
	d.println(StyleMuted.Render(strings.Repeat("─", 40)))
}

// ShowInfo displays an info message.
func (d *Display) ShowInfo(format string, args ...interface{}) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fmt.Fprintf(d.out, format, args...)
}

// ShowWarning displays a highlighted warning line.
func (d *Display) ShowWarning(format string, args ...interface{}) {
	d.println("   " + StyleWarning.Render("[!]") + " " + fmt.Sprintf(format, args...))
}

// ShowOK displays a short success line.
func (d *Display) ShowOK(format string, args ...interface{}) {
	d.println("   " + StyleSuccess.Render("[ok]") + " " + fmt.Sprintf(format, args...))
}

// ShowSuccess displays a success box with total run time.
func (d *Display) ShowSuccess(msg string) {
	d.StopSpinner()
	elapsed := time.Since(d.startTime).Round(time.Second)
	d.println(SuccessBox().Render(fmt.Sprintf("%s %s\nTotal time: %s", StyleSuccess.Render("[ok]"), msg, elapsed)))
}

// ShowError displays an error box.
func (d *Display) ShowError(msg string) {
	d.StopSpinner()
	d.println(ErrorBox().Render(StyleError.Render("[!!] Error") + "\n" + msg))
}

// ShowScore displays a labeled 1-10 score, colored by ScoreStyle.
func (d *Display) ShowScore(label string, score int) {
	d.println("   " + label + ": " + ScoreStyle(score).Render(fmt.Sprintf("%d/10", score)))
}

// ShowRetry displays retry information.
func (d *Display) ShowRetry(attempt, max int, delay time.Duration) {
	d.ShowInfo("   ... retrying in %s (attempt %d/%d)\n", delay, attempt, max)
}

func (d *Display) println(s string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fmt.Fprintln(d.out, s)
}

// formatElapsed formats duration with fixed width (always 6 chars like " 1.04s")
func formatElapsed(d time.Duration) string {
	secs := d.Seconds()
	if secs < 10 {
		return fmt.Sprintf("%5.2fs", secs)
	} else if secs < 100 {
		return fmt.Sprintf("%5.1fs", secs)
	}
	return fmt.Sprintf("%5.0fs", secs)
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
