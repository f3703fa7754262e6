package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"pgregory.net/rapid"

	"github.com/examples-hub/hubrun/internal/config"
	huberrors "github.com/examples-hub/hubrun/internal/errors"
	"github.com/examples-hub/hubrun/internal/output"
	"github.com/examples-hub/hubrun/internal/project"
)

// fakeRunner records every Execute call and fails according to fail.
type fakeRunner struct {
	root  string
	fail  func(path string, attempt int) error
	delay time.Duration

	mu          sync.Mutex
	calls       map[string]int
	commands    map[string]string
	inFlight    int
	maxInFlight int
}

func newFakeRunner(root string, fail func(path string, attempt int) error) *fakeRunner {
	return &fakeRunner{root: root, fail: fail, calls: map[string]int{}, commands: map[string]string{}}
}

func (f *fakeRunner) Execute(ctx context.Context, command, dir string, timeout time.Duration) error {
	rel, _ := filepath.Rel(f.root, dir)
	rel = filepath.ToSlash(rel)

	f.mu.Lock()
	f.calls[rel]++
	attempt := f.calls[rel]
	f.commands[rel] = command
	f.inFlight++
	f.maxInFlight = max(f.maxInFlight, f.inFlight)
	f.mu.Unlock()

	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	f.mu.Lock()
	f.inFlight--
	f.mu.Unlock()

	if f.fail != nil {
		return f.fail(rel, attempt)
	}
	return nil
}

func (f *fakeRunner) callCount(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[path]
}

// recordingSleeper returns immediately and records every delay.
type recordingSleeper struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (s *recordingSleeper) sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delays = append(s.delays, d)
	return ctx.Err()
}

func (s *recordingSleeper) sorted() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := append([]time.Duration(nil), s.delays...)
	sort.Slice(d, func(i, j int) bool { return d[i] < d[j] })
	return d
}

// fataler is the part of testing.TB that *rapid.T also provides.
type fataler interface {
	Helper()
	Fatal(args ...any)
}

func writeProject(t fataler, root, dir, manifest string, extra ...string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(dir))
	if err := os.MkdirAll(full, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(full, "package.json"), []byte(manifest), 0644); err != nil {
		t.Fatal(err)
	}
	for _, name := range extra {
		if err := os.WriteFile(filepath.Join(full, name), []byte("{}"), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func mustCapability(t *testing.T, name string) Capability {
	t.Helper()
	c, err := CapabilityFromConfig(name, config.Default())
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func newCoordinator(c Capability, r *fakeRunner, s *recordingSleeper, stdout *bytes.Buffer) *Coordinator {
	return New(c, Options{
		Runner:   r,
		Sleep:    s.sleep,
		Out:      output.NewWithWriters(stdout, &bytes.Buffer{}, false),
		Discover: project.DefaultDiscoverOptions(),
		Clean:    func(string) error { return nil },
	})
}

func statuses(report *Report) map[string]Status {
	m := make(map[string]Status, len(report.Results))
	for _, r := range report.Results {
		m[r.Path] = r.Status
	}
	return m
}

func TestRun_BuildMixedResults(t *testing.T) {
	root := t.TempDir()
	writeProject(t, root, "apps/a", `{"scripts":{"build":"tsc"}}`)
	writeProject(t, root, "apps/b", `{"scripts":{"test":"jest"}}`)
	writeProject(t, root, "apps/c", `{"scripts":{"build":"tsc"}}`)

	runner := newFakeRunner(root, func(path string, _ int) error {
		if path == "apps/c" {
			return huberrors.CommandFailed("yarn build", nil, "type error")
		}
		return nil
	})
	var stdout bytes.Buffer
	co := newCoordinator(mustCapability(t, config.CapabilityBuild), runner, &recordingSleeper{}, &stdout)

	report, err := co.Run(context.Background(), root)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := map[string]Status{"apps/a": StatusPassed, "apps/b": StatusSkipped, "apps/c": StatusFailed}
	if got := statuses(report); !reflect.DeepEqual(got, want) {
		t.Errorf("statuses = %v, want %v", got, want)
	}
	wantSummary := Summary{Total: 3, Scheduled: 2, Passed: 1, Failed: 1, Skipped: 1}
	if report.Summary != wantSummary {
		t.Errorf("Summary = %+v, want %+v", report.Summary, wantSummary)
	}
	if got := report.Summary.ExitCode(); got != 1 {
		t.Errorf("ExitCode() = %d, want 1", got)
	}
	if runner.callCount("apps/b") != 0 {
		t.Error("skipped project was executed")
	}
	if runner.callCount("apps/c") != 1 {
		t.Errorf("build attempts = %d, want 1 (no retry outside install)", runner.callCount("apps/c"))
	}

	out := stdout.String()
	for _, line := range []string{
		"🔨 Running build across all projects (parallel execution)",
		"✅ Build passed and cleaned: apps/a",
		"⏭️ Build skipped (no script): apps/b",
		"❌ Build failed: apps/c - command failed: yarn build",
		"📊 Build Summary:",
		"   Total projects: 3",
		"     ✅ Passed: 1",
		"     ❌ Failed: 1",
		"     ⏭️ Skipped: 1",
		"⚠️ Some builds failed. Review the output above for details.",
		"   • apps/c: command failed: yarn build",
	} {
		if !strings.Contains(out, line) {
			t.Errorf("output missing %q\n%s", line, out)
		}
	}
}

func TestRun_LintAllPassed(t *testing.T) {
	root := t.TempDir()
	writeProject(t, root, ".", `{"scripts":{"lint":"eslint ."}}`)
	writeProject(t, root, "packages/ui", `{"scripts":{"lint":"eslint ."}}`)

	runner := newFakeRunner(root, nil)
	var stdout bytes.Buffer
	co := newCoordinator(mustCapability(t, config.CapabilityLint), runner, &recordingSleeper{}, &stdout)

	report, err := co.Run(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}

	if report.Summary.ExitCode() != 0 {
		t.Errorf("ExitCode() = %d, want 0", report.Summary.ExitCode())
	}
	if got := runner.commands["packages/ui"]; got != "yarn lint" {
		t.Errorf("command = %q, want %q", got, "yarn lint")
	}
	if !strings.Contains(stdout.String(), "🎉 All lint operations completed successfully!") {
		t.Errorf("output missing success line\n%s", stdout.String())
	}
	if paths := []string{report.Results[0].Path, report.Results[1].Path}; !reflect.DeepEqual(paths, []string{".", "packages/ui"}) {
		t.Errorf("result order = %v", paths)
	}
}

func TestRun_BuildCleanupWarning(t *testing.T) {
	root := t.TempDir()
	writeProject(t, root, "web", `{"scripts":{"build":"next build"}}`)

	var stdout bytes.Buffer
	co := New(mustCapability(t, config.CapabilityBuild), Options{
		Runner: newFakeRunner(root, nil),
		Sleep:  (&recordingSleeper{}).sleep,
		Out:    output.NewWithWriters(&stdout, &bytes.Buffer{}, false),
		Clean:  func(string) error { return errors.New("permission denied") },
	})

	report, err := co.Run(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}
	res := report.Results[0]
	if res.Status != StatusPassed || res.Reason != ReasonCleanup {
		t.Errorf("result = %+v, want passed with cleanup warning", res)
	}
	if !strings.Contains(stdout.String(), "✅ Build passed (cleanup warning): web") {
		t.Errorf("output missing cleanup warning line\n%s", stdout.String())
	}
}

func TestRun_InstallRecoversInSecondPass(t *testing.T) {
	root := t.TempDir()
	writeProject(t, root, "apps/flaky", `{}`)

	// Fails both first-pass attempts and the first second-pass attempt.
	runner := newFakeRunner(root, func(_ string, attempt int) error {
		if attempt <= 3 {
			return huberrors.CommandFailed("yarn install", nil, "ETIMEDOUT")
		}
		return nil
	})
	sleeper := &recordingSleeper{}
	var stdout bytes.Buffer
	co := newCoordinator(mustCapability(t, config.CapabilityInstall), runner, sleeper, &stdout)

	report, err := co.Run(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}

	res := report.Results[0]
	if res.Status != StatusPassed || !res.WasRetry {
		t.Errorf("result = %+v, want passed on retry", res)
	}
	if report.Summary.RetriesProcessed != 1 || report.Summary.ExitCode() != 0 {
		t.Errorf("Summary = %+v", report.Summary)
	}
	if got := runner.callCount("apps/flaky"); got != 4 {
		t.Errorf("attempts = %d, want 4", got)
	}
	// 1s first-pass backoff, 5s requeue delay, 1s second-pass backoff.
	want := []time.Duration{time.Second, 5 * time.Second, time.Second}
	if !reflect.DeepEqual(sleeper.delays, want) {
		t.Errorf("delays = %v, want %v", sleeper.delays, want)
	}

	out := stdout.String()
	for _, line := range []string{
		"🚀 Installing dependencies across all projects (parallel execution)",
		"📦 Processing: apps/flaky",
		"🔄 Running yarn install...",
		"⏳ Queuing for retry: apps/flaky",
		"🔁 Processing retry queue with rate limiting protection...",
		"   Found 1 projects that need retry",
		"⏳ Waiting 5s before retrying: apps/flaky",
		"🔄 Retry attempt for: apps/flaky",
		"✅ Retry success: apps/flaky",
		"   🔁 Retries processed: 1",
		"🎉 All installations completed successfully!",
	} {
		if !strings.Contains(out, line) {
			t.Errorf("output missing %q\n%s", line, out)
		}
	}
}

func TestRun_InstallPersistentFailure(t *testing.T) {
	root := t.TempDir()
	writeProject(t, root, "apps/ok", `{}`)
	writeProject(t, root, "apps/broken", `{}`)

	runner := newFakeRunner(root, func(path string, _ int) error {
		if path == "apps/broken" {
			return huberrors.CommandFailed("yarn install --network-timeout 60000", nil, "404 Not Found")
		}
		return nil
	})
	sleeper := &recordingSleeper{}
	var stdout bytes.Buffer
	co := newCoordinator(mustCapability(t, config.CapabilityInstall), runner, sleeper, &stdout)

	report, err := co.Run(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}

	want := map[string]Status{"apps/ok": StatusPassed, "apps/broken": StatusFailed}
	if got := statuses(report); !reflect.DeepEqual(got, want) {
		t.Errorf("statuses = %v, want %v", got, want)
	}
	if got := runner.callCount("apps/broken"); got != 6 {
		t.Errorf("attempts = %d, want 2 + 4", got)
	}
	if report.Summary.ExitCode() != 1 {
		t.Errorf("ExitCode() = %d, want 1", report.Summary.ExitCode())
	}
	wantDelays := []time.Duration{time.Second, time.Second, 2 * time.Second, 4 * time.Second, 5 * time.Second}
	if got := sleeper.sorted(); !reflect.DeepEqual(got, wantDelays) {
		t.Errorf("delays = %v, want %v", got, wantDelays)
	}

	out := stdout.String()
	for _, line := range []string{
		"❌ Retry failed: apps/broken",
		"   Final error: command failed: yarn install --network-timeout 60000",
		"   ✅ Successful: 1",
		"   ❌ Failed: 1",
		"⚠️ Some installations failed even after retries. Check the output above for details.",
		"🔧 Failed projects:",
		"   • apps/broken: command failed: yarn install --network-timeout 60000",
	} {
		if !strings.Contains(out, line) {
			t.Errorf("output missing %q\n%s", line, out)
		}
	}
}

func TestRun_InstallRuntimes(t *testing.T) {
	root := t.TempDir()
	writeProject(t, root, "client/web", `{}`)
	writeProject(t, root, "server/with-bun", `{}`)
	writeProject(t, root, "server/with-deno", `{"scripts":{"start":"deno run main.ts"}}`)
	writeProject(t, root, "server/deno-tasks", `{"scripts":{"install":"deno cache main.ts"}}`, "deno.json")

	runner := newFakeRunner(root, nil)
	var stdout bytes.Buffer
	co := newCoordinator(mustCapability(t, config.CapabilityInstall), runner, &recordingSleeper{}, &stdout)

	report, err := co.Run(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}

	wantCommands := map[string]string{
		"client/web":        "yarn install --network-timeout 60000",
		"server/with-bun":   "bun install",
		"server/deno-tasks": "deno task install",
	}
	if !reflect.DeepEqual(runner.commands, wantCommands) {
		t.Errorf("commands = %v, want %v", runner.commands, wantCommands)
	}
	for _, r := range report.Results {
		if r.Path == "server/with-deno" {
			if r.Status != StatusSkipped || r.Reason != ReasonDenoNoScript {
				t.Errorf("deno result = %+v, want skipped", r)
			}
		}
	}
	if report.Summary.Scheduled != 3 || report.Summary.Skipped != 1 {
		t.Errorf("Summary = %+v", report.Summary)
	}
	if !strings.Contains(stdout.String(), "⏭️ Install skipped (Deno project with no install script): server/with-deno") {
		t.Errorf("output missing deno skip line\n%s", stdout.String())
	}
}

func TestRun_ConcurrencyBound(t *testing.T) {
	root := t.TempDir()
	for i := 0; i < 10; i++ {
		writeProject(t, root, fmt.Sprintf("p%02d", i), `{"scripts":{"typecheck":"tsc --noEmit"}}`)
	}

	runner := newFakeRunner(root, nil)
	runner.delay = 20 * time.Millisecond
	c := mustCapability(t, config.CapabilityTypecheck)
	c.Concurrency = 3
	co := newCoordinator(c, runner, &recordingSleeper{}, &bytes.Buffer{})

	report, err := co.Run(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}
	if report.Summary.Passed != 10 {
		t.Errorf("Passed = %d, want 10", report.Summary.Passed)
	}
	if runner.maxInFlight > 3 {
		t.Errorf("max in flight = %d, want <= 3", runner.maxInFlight)
	}
}

func TestRun_NoProjects(t *testing.T) {
	var stdout bytes.Buffer
	co := newCoordinator(mustCapability(t, config.CapabilityLint), newFakeRunner("", nil), &recordingSleeper{}, &stdout)

	report, err := co.Run(context.Background(), t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if report.Summary != (Summary{}) {
		t.Errorf("Summary = %+v, want zero", report.Summary)
	}
	if report.Summary.ExitCode() != 0 {
		t.Error("empty run should exit 0")
	}
}

func TestRun_BadRoot(t *testing.T) {
	co := newCoordinator(mustCapability(t, config.CapabilityLint), newFakeRunner("", nil), &recordingSleeper{}, &bytes.Buffer{})

	if _, err := co.Run(context.Background(), filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("Run() error = nil, want error for missing root")
	}
}

func TestRun_CanceledContext(t *testing.T) {
	root := t.TempDir()
	writeProject(t, root, "a", `{}`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	runner := newFakeRunner(root, func(string, int) error { return context.Canceled })
	co := newCoordinator(mustCapability(t, config.CapabilityInstall), runner, &recordingSleeper{}, &bytes.Buffer{})

	report, err := co.Run(ctx, root)
	if err != nil {
		t.Fatal(err)
	}
	if got := report.Results[0].Status; got != StatusFailed {
		t.Errorf("status = %s, want failed", got)
	}
	if got := runner.callCount("a"); got != 1 {
		t.Errorf("attempts = %d, want 1 once the context is canceled", got)
	}
}

// Every discovered project ends with exactly one terminal result, whatever
// mix of transient and persistent failures the installs hit.
func TestRun_InstallResultsAreTerminal(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		root, err := os.MkdirTemp("", "hubrun-runner-")
		if err != nil {
			rt.Fatal(err)
		}
		defer os.RemoveAll(root)

		n := rapid.IntRange(0, 8).Draw(rt, "projects")
		failures := make(map[string]int, n)
		for i := 0; i < n; i++ {
			path := fmt.Sprintf("p%d", i)
			writeProject(rt, root, path, `{}`)
			failures[path] = rapid.IntRange(0, 7).Draw(rt, "failures")
		}

		runner := newFakeRunner(root, func(path string, attempt int) error {
			if attempt <= failures[path] {
				return errors.New("network error")
			}
			return nil
		})
		c, err := CapabilityFromConfig(config.CapabilityInstall, config.Default())
		if err != nil {
			rt.Fatal(err)
		}
		co := newCoordinator(c, runner, &recordingSleeper{}, &bytes.Buffer{})

		report, err := co.Run(context.Background(), root)
		if err != nil {
			rt.Fatal(err)
		}
		if len(report.Results) != n {
			rt.Fatalf("results = %d, want %d", len(report.Results), n)
		}

		retries := 0
		for _, r := range report.Results {
			f := failures[r.Path]
			switch {
			case r.Status == StatusQueuedForRetry:
				rt.Fatalf("%s left queued", r.Path)
			case f < 6 && r.Status != StatusPassed:
				rt.Fatalf("%s with %d failures = %s, want passed", r.Path, f, r.Status)
			case f >= 6 && r.Status != StatusFailed:
				rt.Fatalf("%s with %d failures = %s, want failed", r.Path, f, r.Status)
			case r.WasRetry != (f >= 2):
				rt.Fatalf("%s WasRetry = %v with %d failures", r.Path, r.WasRetry, f)
			}
			if f >= 2 {
				retries++
			}
		}
		s := report.Summary
		if s.RetriesProcessed != retries || s.Passed+s.Failed+s.Skipped != s.Total {
			rt.Fatalf("Summary = %+v, retries want %d", s, retries)
		}
		if (s.ExitCode() == 1) != (s.Failed > 0) {
			rt.Fatalf("ExitCode() = %d with %d failures", s.ExitCode(), s.Failed)
		}
	})
}
