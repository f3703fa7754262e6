// Package runner runs one capability across every discovered project with
// bounded concurrency, per-task retries and a slower requeue pass.
package runner

import (
	"context"
	"sync"
	"time"

	"github.com/examples-hub/hubrun/internal/executor"
	"github.com/examples-hub/hubrun/internal/limiter"
	"github.com/examples-hub/hubrun/internal/output"
	"github.com/examples-hub/hubrun/internal/project"
	"github.com/examples-hub/hubrun/internal/retry"
)

// Options configures a Coordinator. Zero values use the real collaborators.
type Options struct {
	Runner   executor.CommandRunner
	Sleep    retry.Sleeper
	Out      *output.Writer
	Discover project.DiscoverOptions
	// Clean removes build outputs after a successful run when the
	// capability asks for it.
	Clean func(dir string) error
}

// Coordinator runs a capability across a monorepo.
type Coordinator struct {
	cap    Capability
	runner executor.CommandRunner
	sleep  retry.Sleeper
	out    *output.Writer
	disc   project.DiscoverOptions
	clean  func(dir string) error
}

// New creates a Coordinator for the capability.
func New(c Capability, opts Options) *Coordinator {
	co := &Coordinator{
		cap:    c,
		runner: opts.Runner,
		sleep:  opts.Sleep,
		out:    opts.Out,
		disc:   opts.Discover,
		clean:  opts.Clean,
	}
	if co.runner == nil {
		co.runner = &executor.ShellRunner{}
	}
	if co.sleep == nil {
		co.sleep = retry.SleepContext
	}
	if co.out == nil {
		co.out = output.New()
	}
	if co.clean == nil {
		co.clean = executor.CleanBuildOutputs
	}
	if co.disc.Manifest == "" {
		co.disc = project.DefaultDiscoverOptions()
	}
	return co
}

// task is a scheduled project with its resolved command.
type task struct {
	index   int
	project project.Project
	command string
}

// run holds the state of one Run call.
type run struct {
	*Coordinator
	ctx     context.Context
	con     console
	mu      sync.Mutex
	requeue []task
}

// Run discovers projects under root, runs the capability in every eligible
// one and prints the summary. Task failures are reported in the Report; the
// only error is a root that cannot be scanned.
func (c *Coordinator) Run(ctx context.Context, root string) (*Report, error) {
	start := time.Now()
	projects, err := project.Discover(root, c.disc)
	if err != nil {
		return nil, err
	}

	r := &run{Coordinator: c, ctx: ctx, con: console{out: c.out, cap: c.cap}}
	r.con.banner()

	results := make([]TaskResult, len(projects))
	var tasks []task
	for i, p := range projects {
		cmd, reason := c.plan(p)
		if reason != "" {
			results[i] = TaskResult{Path: p.Path, Status: StatusSkipped, Reason: reason, Runtime: p.Runtime}
			r.con.skipped(p.Path, reason)
			continue
		}
		tasks = append(tasks, task{index: i, project: p, command: cmd})
	}

	r.con.starting(c.cap.Concurrency)
	for i, res := range r.runPhase(tasks) {
		results[tasks[i].index] = res
	}

	queued := r.requeue
	if len(queued) > 0 {
		r.con.requeueHeader(len(queued))
		for _, res := range r.runRequeue(queued) {
			spliceResult(results, res)
		}
	}

	report := &Report{
		Capability: c.cap.Name,
		Results:    results,
		Summary:    Summarize(results, len(queued)),
		Duration:   time.Since(start),
	}
	r.con.summary(report)
	return report, nil
}

// plan resolves the command for a project, or the reason it is skipped.
func (c *Coordinator) plan(p project.Project) (command, reason string) {
	if c.cap.isInstall() {
		if p.Runtime == project.RuntimeDeno && !p.HasScript("install") {
			return "", ReasonDenoNoScript
		}
		return c.cap.CommandFor(p.Runtime), ""
	}
	if !p.HasScript(c.cap.Name) {
		return "", ReasonNoScript
	}
	return c.cap.CommandFor(p.Runtime), ""
}

// runPhase runs the first pass of every task through a fresh limiter and
// returns the results in task order.
func (r *run) runPhase(tasks []task) []TaskResult {
	lim := limiter.New(r.cap.Concurrency)
	futures := make([]*limiter.Future[TaskResult], len(tasks))
	for i, t := range tasks {
		futures[i] = limiter.Run(lim, func() (TaskResult, error) {
			return r.first(t), nil
		})
	}
	return await(r.ctx, futures)
}

func (r *run) first(t task) TaskResult {
	start := time.Now()
	r.con.started(t.project)

	err := retry.Do(r.ctx, r.cap.Retry, r.sleep, r.attempt(t))
	res := TaskResult{Path: t.project.Path, Runtime: t.project.Runtime}
	switch {
	case err == nil:
		res.Status = StatusPassed
		if r.cap.Cleanup {
			if cerr := r.clean(t.project.Dir); cerr != nil {
				res.Reason = ReasonCleanup
			}
		}
		r.con.passed(res)
	case r.cap.Requeue != nil:
		res.Status = StatusQueuedForRetry
		res.Error = executor.Excerpt(err)
		r.mu.Lock()
		r.requeue = append(r.requeue, t)
		r.mu.Unlock()
		r.con.queued(t.project.Path)
	default:
		res.Status = StatusFailed
		res.Error = executor.Excerpt(err)
		r.con.failed(res)
	}
	res.Duration = time.Since(start)
	return res
}

// runRequeue gives every queued task a second pass through its own, smaller
// limiter. Item i waits the requeue delay plus i staggers before starting.
func (r *run) runRequeue(queued []task) []TaskResult {
	rq := *r.cap.Requeue
	policy := rq.Policy(r.cap.Retry)
	lim := limiter.New(rq.Concurrency)
	futures := make([]*limiter.Future[TaskResult], len(queued))
	for i, t := range queued {
		delay := rq.StartDelay(i)
		futures[i] = limiter.Run(lim, func() (TaskResult, error) {
			return r.second(t, delay, policy), nil
		})
	}
	return await(r.ctx, futures)
}

func (r *run) second(t task, delay time.Duration, policy retry.Policy) TaskResult {
	start := time.Now()
	res := TaskResult{Path: t.project.Path, Runtime: t.project.Runtime, WasRetry: true}

	r.con.waiting(t.project.Path, delay)
	err := r.sleep(r.ctx, delay)
	if err == nil {
		r.con.retrying(t.project.Path)
		err = retry.Do(r.ctx, policy, r.sleep, r.attempt(t))
	}
	if err == nil {
		res.Status = StatusPassed
		r.con.passed(res)
	} else {
		res.Status = StatusFailed
		res.Error = executor.Excerpt(err)
		r.con.failed(res)
	}
	res.Duration = time.Since(start)
	return res
}

func (r *run) attempt(t task) func(context.Context) error {
	return func(ctx context.Context) error {
		return r.runner.Execute(ctx, t.command, t.project.Dir, r.cap.Timeout)
	}
}

// await collects every result. Tasks observe cancellation through their own
// context, so waiting itself is never cut short.
func await(ctx context.Context, futures []*limiter.Future[TaskResult]) []TaskResult {
	results, _ := limiter.WaitAll(context.WithoutCancel(ctx), futures)
	return results
}

// spliceResult replaces the queued entry for res.Path with res.
func spliceResult(results []TaskResult, res TaskResult) {
	for i := range results {
		if results[i].Path == res.Path && results[i].Status == StatusQueuedForRetry {
			results[i] = res
			return
		}
	}
}
