package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// ProgressDisplay draws a single progress line that advances as posts are
// handed to the worker pool. It counts submissions, not completions.
type ProgressDisplay struct {
	mu        sync.Mutex
	out       io.Writer
	label     string
	total     int
	submitted int
	current   string
	startTime time.Time
	redraw    bool
	disabled  bool
}

// NewProgressDisplay creates a progress line for total items. When redraw
// is false every update is printed on its own line instead of rewriting
// the current one.
func NewProgressDisplay(out io.Writer, label string, total int, redraw bool) *ProgressDisplay {
	if out == nil {
		out = io.Discard
	}
	return &ProgressDisplay{
		out:       out,
		label:     label,
		total:     total,
		startTime: time.Now(),
		redraw:    redraw,
		disabled:  quiet.Load(),
	}
}

// Advance records that one more item was submitted
func (p *ProgressDisplay) Advance(item string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.submitted++
	p.current = item

	if !p.disabled {
		p.printProgress()
	}
}

// Submitted returns how many items were recorded
func (p *ProgressDisplay) Submitted() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.submitted
}

// Line renders the current progress line without control characters
func (p *ProgressDisplay) Line() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.line()
}

func (p *ProgressDisplay) line() string {
	const barWidth = 20

	progress := 1.0
	if p.total > 0 {
		progress = float64(p.submitted) / float64(p.total)
	}
	if progress > 1 {
		progress = 1
	}
	filled := int(progress * float64(barWidth))
	bar := strings.Repeat("━", filled) + strings.Repeat("─", barWidth-filled)

	line := fmt.Sprintf("%s [%s] %d/%d", p.label, bar, p.submitted, p.total)
	if p.current != "" {
		line += " • " + p.current
	}
	return line
}

// printProgress prints the progress line
func (p *ProgressDisplay) printProgress() {
	if p.redraw {
		// Clear line and print
		fmt.Fprintf(p.out, "\r%s\r%s", strings.Repeat(" ", 80), Cyan(p.line()))
		return
	}
	fmt.Fprintln(p.out, p.line())
}

// Complete ends the progress line
func (p *ProgressDisplay) Complete() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.disabled && p.redraw {
		fmt.Fprintln(p.out)
	}
}

// Elapsed returns the time since the display was created
func (p *ProgressDisplay) Elapsed() time.Duration {
	return time.Since(p.startTime)
}

// FormatDuration formats a duration in a human-readable way
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	} else if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	} else {
		return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
	}
}

// FormatBytes formats bytes in a human-readable way
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}

	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}

	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
