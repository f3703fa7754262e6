package main

import (
	"os/exec"
	"strings"
	"testing"
)

// TestMain_HelpFlag runs the binary with --help and checks it exits cleanly.
func TestMain_HelpFlag(t *testing.T) {
	if testing.Short() {
		t.Skip("builds the binary")
	}
	t.Parallel()

	cmd := exec.Command("go", "run", ".", "--help")
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("--help failed: %v\noutput: %s", err, out)
	}
	if !strings.Contains(string(out), "lint-all") {
		t.Errorf("--help output missing binary name:\n%s", out)
	}
}
