package runner

import (
	"fmt"
	"time"

	"github.com/examples-hub/hubrun/internal/config"
	"github.com/examples-hub/hubrun/internal/output"
	"github.com/examples-hub/hubrun/internal/project"
)

// console prints the progress and summary lines of one run.
type console struct {
	out *output.Writer
	cap Capability
}

// nouns used in the closing line of each capability.
var failureNouns = map[string]string{
	config.CapabilityInstall:   "installations",
	config.CapabilityBuild:     "builds",
	config.CapabilityLint:      "lint checks",
	config.CapabilityTypecheck: "typechecks",
}

func (c console) banner() {
	if c.cap.isInstall() {
		c.out.Banner("🚀", "Installing dependencies across all projects (parallel execution)")
		return
	}
	c.out.Banner(c.cap.Icon, fmt.Sprintf("Running %s across all projects (parallel execution)", c.cap.Name))
}

func (c console) starting(limit int) {
	noun := c.cap.Name
	if c.cap.isInstall() {
		noun = "installation"
	}
	c.out.Println("\n%s Starting parallel %s (max %d concurrent)...", output.MarkRunning, noun, max(1, limit))
}

func (c console) started(p project.Project) {
	if c.cap.isInstall() {
		c.out.Progress(c.cap.Icon, "Processing: %s", p.Path)
		c.out.Progress(output.MarkRunning, "Running %s install...", p.Runtime)
		return
	}
	c.out.Progress(c.cap.Icon, "Running %s: %s", c.cap.Name, p.Path)
}

func (c console) passed(res TaskResult) {
	switch {
	case c.cap.isInstall() && res.WasRetry:
		c.out.Passed("Retry success: %s", res.Path)
	case c.cap.isInstall():
		c.out.Passed("Success: %s", res.Path)
	case c.cap.Cleanup && res.Reason == ReasonCleanup:
		c.out.Passed("%s passed (cleanup warning): %s", c.cap.Title, res.Path)
	case c.cap.Cleanup:
		c.out.Passed("%s passed and cleaned: %s", c.cap.Title, res.Path)
	default:
		c.out.Passed("%s passed: %s", c.cap.Title, res.Path)
	}
}

func (c console) failed(res TaskResult) {
	switch {
	case res.WasRetry:
		c.out.Failed("Retry failed: "+res.Path, "Final error: "+res.Error)
	case res.Error != "":
		c.out.Failed(fmt.Sprintf("%s failed: %s - %s", c.cap.Title, res.Path, res.Error))
	default:
		c.out.Failed(fmt.Sprintf("%s failed: %s", c.cap.Title, res.Path))
	}
}

func (c console) skipped(path, reason string) {
	c.out.Skipped("%s skipped (%s): %s", c.cap.Title, reason, path)
}

func (c console) queued(path string) {
	c.out.Queued("Queuing for retry: %s", path)
}

func (c console) requeueHeader(n int) {
	c.out.Lines("",
		output.MarkRetry+" Processing retry queue with rate limiting protection...",
		fmt.Sprintf("   Found %d projects that need retry", n))
}

func (c console) waiting(path string, delay time.Duration) {
	c.out.Progress(output.MarkQueued, "Waiting %s before retrying: %s", delay, path)
}

func (c console) retrying(path string) {
	c.out.Progress(output.MarkRunning, "Retry attempt for: %s", path)
}

func (c console) summary(r *Report) {
	s := r.Summary
	if c.cap.isInstall() {
		c.out.SummaryHeader("Installation Summary")
		c.out.SummaryItem(3, "Total projects", s.Total)
		c.out.SummaryCount(3, output.MarkPassed, "Successful", s.Passed)
		c.out.SummaryCount(3, output.MarkFailed, "Failed", s.Failed)
		c.out.SummaryCount(3, output.MarkSkipped, "Skipped", s.Skipped)
		c.out.SummaryCount(3, output.MarkRetry, "Retries processed", s.RetriesProcessed)
	} else {
		c.out.SummaryHeader(c.cap.Title + " Summary")
		c.out.SummaryItem(3, "Total projects", s.Total)
		c.out.Lines("", "   "+c.cap.Title+" Results:")
		c.out.SummaryCount(5, output.MarkPassed, "Passed", s.Passed)
		c.out.SummaryCount(5, output.MarkFailed, "Failed", s.Failed)
		c.out.SummaryCount(5, output.MarkSkipped, "Skipped", s.Skipped)
	}
	c.out.SummaryEnd()

	if s.Failed == 0 {
		if c.cap.isInstall() {
			c.out.FinalSuccess("All installations completed successfully!")
		} else {
			c.out.FinalSuccess("All %s operations completed successfully!", c.cap.Name)
		}
		return
	}

	noun := failureNouns[c.cap.Name]
	if noun == "" {
		noun = c.cap.Name + " runs"
	}
	if c.cap.isInstall() {
		c.out.FinalFailure("Some %s failed even after retries. Check the output above for details.", noun)
	} else {
		c.out.FinalFailure("Some %s failed. Review the output above for details.", noun)
	}
	var items [][2]string
	for _, f := range r.Failures() {
		items = append(items, [2]string{f.Path, f.Error})
	}
	c.out.FailureList("Failed projects:", items)
}
