// Package integration runs the hubrun commands against fixture monorepos.
package integration

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/examples-hub/hubrun/internal/output"
)

var (
	fixturesDirOnce sync.Once
	fixturesDirPath string
)

// fixturesDir returns the path to the test fixtures directory.
func fixturesDir() string {
	fixturesDirOnce.Do(func() {
		_, filename, _, _ := runtime.Caller(0)
		fixturesDirPath = filepath.Join(filepath.Dir(filename), "..", "fixtures")
	})
	return fixturesDirPath
}

// copyFixture copies a fixture monorepo into a temporary directory so tests
// may modify it.
func copyFixture(t *testing.T, name string) string {
	t.Helper()
	dst := filepath.Join(t.TempDir(), name)
	if err := os.CopyFS(dst, os.DirFS(filepath.Join(fixturesDir(), name))); err != nil {
		t.Fatalf("copy fixture %s: %v", name, err)
	}
	return dst
}

func bufferedWriter() (*output.Writer, *bytes.Buffer) {
	var buf bytes.Buffer
	return output.NewWithWriters(&buf, &buf, false), &buf
}

// scriptedRunner fails the projects (by directory base name) listed in fail
// and records every command it receives.
type scriptedRunner struct {
	root string
	fail map[string]bool

	mu    sync.Mutex
	calls map[string][]string
}

func newScriptedRunner(root string, fail ...string) *scriptedRunner {
	r := &scriptedRunner{root: root, fail: map[string]bool{}, calls: map[string][]string{}}
	for _, f := range fail {
		r.fail[f] = true
	}
	return r
}

func (r *scriptedRunner) Execute(ctx context.Context, command, dir string, timeout time.Duration) error {
	rel, err := filepath.Rel(r.root, dir)
	if err != nil {
		return err
	}
	rel = filepath.ToSlash(rel)

	r.mu.Lock()
	r.calls[rel] = append(r.calls[rel], command)
	r.mu.Unlock()

	if r.fail[rel] {
		return &scriptError{command: command}
	}
	return ctx.Err()
}

func (r *scriptedRunner) paths() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.calls))
	for p := range r.calls {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

type scriptError struct{ command string }

func (e *scriptError) Error() string { return "command failed: " + e.command }

func noSleep(ctx context.Context, d time.Duration) error { return ctx.Err() }
