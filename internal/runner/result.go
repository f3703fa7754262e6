package runner

import (
	"time"

	huberrors "github.com/examples-hub/hubrun/internal/errors"
	"github.com/examples-hub/hubrun/internal/project"
)

// Status is the outcome of one project's task.
type Status string

const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
	// StatusQueuedForRetry marks a project waiting for the second pass.
	// It never appears in a finished Report.
	StatusQueuedForRetry Status = "queued_for_retry"
)

// Skip reasons.
const (
	ReasonNoScript     = "no script"
	ReasonDenoNoScript = "Deno project with no install script"
	ReasonCleanup      = "cleanup warning"
)

// TaskResult is the outcome of running a capability in one project.
type TaskResult struct {
	Path    string
	Status  Status
	Reason  string
	Error   string // first line of the last error
	Runtime project.Runtime
	// WasRetry is set when the result comes from the second pass.
	WasRetry bool
	Duration time.Duration
}

// Summary aggregates the terminal results of a run.
type Summary struct {
	Total            int // discovered projects
	Scheduled        int // projects that were not skipped
	Passed           int
	Failed           int
	Skipped          int
	RetriesProcessed int
}

// Summarize counts results. retries is the size of the second-pass queue.
func Summarize(results []TaskResult, retries int) Summary {
	s := Summary{Total: len(results), RetriesProcessed: retries}
	for _, r := range results {
		switch r.Status {
		case StatusPassed:
			s.Passed++
		case StatusFailed:
			s.Failed++
		case StatusSkipped:
			s.Skipped++
		}
	}
	s.Scheduled = s.Total - s.Skipped
	return s
}

// ExitCode returns 1 when any project failed, else 0.
func (s Summary) ExitCode() int {
	if s.Failed > 0 {
		return huberrors.ExitRuntimeError
	}
	return huberrors.ExitSuccess
}

// Report is the result of one Coordinator run.
type Report struct {
	Capability string
	// Results holds one terminal result per discovered project in discovery order.
	Results  []TaskResult
	Summary  Summary
	Duration time.Duration
}

// Failures returns the failed results in discovery order.
func (r *Report) Failures() []TaskResult {
	var failed []TaskResult
	for _, res := range r.Results {
		if res.Status == StatusFailed {
			failed = append(failed, res)
		}
	}
	return failed
}
