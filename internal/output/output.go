// Package output provides formatted output utilities for the CLI.
//
// A Writer is safe for concurrent use: every call writes whole lines under a
// lock, so output from parallel tasks interleaves by line and never mid-line.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// Separator is the rule printed around banners and summaries.
var Separator = strings.Repeat("=", 60)

// Markers prefixing per-project and summary lines.
const (
	MarkPassed   = "✅"
	MarkFailed   = "❌"
	MarkSkipped  = "⏭️"
	MarkQueued   = "⏳"
	MarkRetry    = "🔁"
	MarkRunning  = "🔄"
	MarkSummary  = "📊"
	MarkDone     = "🎉"
	MarkWarning  = "⚠️"
	MarkFailList = "🔧"
)

// Writer handles CLI output formatting.
type Writer struct {
	mu    sync.Mutex
	out   io.Writer
	err   io.Writer
	color bool
	quiet bool
}

// New creates a new Writer with default settings.
func New() *Writer {
	return &Writer{
		out:   os.Stdout,
		err:   os.Stderr,
		color: isTerminal(),
	}
}

// NewWithWriters creates a Writer with custom io.Writers (for testing).
func NewWithWriters(out, err io.Writer, color bool) *Writer {
	return &Writer{
		out:   out,
		err:   err,
		color: color,
	}
}

// SetQuiet enables or disables quiet mode. Quiet mode drops per-project
// progress lines but keeps results and summaries.
func (w *Writer) SetQuiet(quiet bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.quiet = quiet
}

func (w *Writer) isQuiet() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.quiet
}

func (w *Writer) write(dst io.Writer, s string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	io.WriteString(dst, s)
}

// Print writes to stdout.
func (w *Writer) Print(format string, args ...interface{}) {
	w.write(w.out, fmt.Sprintf(format, args...))
}

// Println writes a line to stdout.
func (w *Writer) Println(format string, args ...interface{}) {
	w.write(w.out, fmt.Sprintf(format, args...)+"\n")
}

// Error writes to stderr.
func (w *Writer) Error(format string, args ...interface{}) {
	w.write(w.err, fmt.Sprintf(format, args...))
}

// Errorln writes a line to stderr.
func (w *Writer) Errorln(format string, args ...interface{}) {
	w.write(w.err, fmt.Sprintf(format, args...)+"\n")
}

// Lines writes several lines to stdout as one unit.
func (w *Writer) Lines(lines ...string) {
	if len(lines) == 0 {
		return
	}
	w.write(w.out, strings.Join(lines, "\n")+"\n")
}

// Info prints an info message (skipped in quiet mode).
func (w *Writer) Info(format string, args ...interface{}) {
	if w.isQuiet() {
		return
	}
	w.Println(format, args...)
}

// Warning prints a warning message.
func (w *Writer) Warning(format string, args ...interface{}) {
	if w.color {
		w.Errorln(yellow+"warning: "+format+reset, args...)
	} else {
		w.Errorln("warning: "+format, args...)
	}
}

// ErrorPrefix prints an error message with hubrun prefix to stderr.
func (w *Writer) ErrorPrefix(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if w.color {
		w.Errorln("%shubrun:%s %s", red, reset, msg)
	} else {
		w.Errorln("hubrun: %s", msg)
	}
}

// Banner prints the run header followed by the separator.
func (w *Writer) Banner(icon, title string) {
	if w.color {
		w.Lines(fmt.Sprintf("%s %s%s%s", icon, bold, title, reset), Separator)
	} else {
		w.Lines(icon+" "+title, Separator)
	}
}

// Progress prints a per-project progress line (skipped in quiet mode).
func (w *Writer) Progress(icon, format string, args ...interface{}) {
	if w.isQuiet() {
		return
	}
	w.Println("%s %s", icon, fmt.Sprintf(format, args...))
}

// Passed prints a per-project success line.
func (w *Writer) Passed(format string, args ...interface{}) {
	w.marked(MarkPassed, green, fmt.Sprintf(format, args...))
}

// Failed prints a per-project failure line, with optional detail lines
// indented below it.
func (w *Writer) Failed(msg string, details ...string) {
	line := w.paint(red, MarkFailed+" "+msg)
	lines := []string{line}
	for _, d := range details {
		lines = append(lines, "   "+d)
	}
	w.Lines(lines...)
}

// Skipped prints a per-project skip line.
func (w *Writer) Skipped(format string, args ...interface{}) {
	w.marked(MarkSkipped, dim, fmt.Sprintf(format, args...))
}

// Queued prints a line for a project handed to the retry pass.
func (w *Writer) Queued(format string, args ...interface{}) {
	w.marked(MarkQueued, yellow, fmt.Sprintf(format, args...))
}

func (w *Writer) marked(icon, color, msg string) {
	w.Println("%s", w.paint(color, icon+" "+msg))
}

func (w *Writer) paint(color, s string) string {
	if !w.color {
		return s
	}
	return color + s + reset
}

// SummaryHeader prints the blank line, separator and title that open a
// summary block.
func (w *Writer) SummaryHeader(title string) {
	heading := MarkSummary + " " + title + ":"
	if w.color {
		heading = bold + cyan + heading + reset
	}
	w.Lines("", Separator, heading)
}

// SummaryItem prints a labeled summary item with value.
func (w *Writer) SummaryItem(indent int, label string, value interface{}) {
	w.Println("%s%s: %v", strings.Repeat(" ", indent), label, value)
}

// SummaryCount prints a marked summary count such as "✅ Passed: 3".
func (w *Writer) SummaryCount(indent int, icon, label string, n int) {
	w.Println("%s%s %s: %d", strings.Repeat(" ", indent), icon, label, n)
}

// SummaryEnd closes a summary block.
func (w *Writer) SummaryEnd() {
	w.Println("%s", Separator)
}

// FailureList prints an itemised list of failures as "• name: error".
func (w *Writer) FailureList(title string, items [][2]string) {
	lines := []string{MarkFailList + " " + title}
	for _, item := range items {
		lines = append(lines, fmt.Sprintf("   • %s: %s", item[0], item[1]))
	}
	w.Lines(lines...)
}

// FinalSuccess prints a final success message.
func (w *Writer) FinalSuccess(format string, args ...interface{}) {
	w.marked(MarkDone, green, fmt.Sprintf(format, args...))
}

// FinalFailure prints a final failure message.
func (w *Writer) FinalFailure(format string, args ...interface{}) {
	w.marked(MarkWarning, red, fmt.Sprintf(format, args...))
}

// isTerminal returns true if stdout is a terminal.
func isTerminal() bool {
	if fi, _ := os.Stdout.Stat(); fi != nil {
		return (fi.Mode() & os.ModeCharDevice) != 0
	}
	return false
}

// ANSI color codes.
const (
	reset  = "\033[0m"
	bold   = "\033[1m"
	dim    = "\033[2m"
	red    = "\033[31m"
	green  = "\033[32m"
	yellow = "\033[33m"
	cyan   = "\033[36m"
)
