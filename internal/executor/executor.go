// Package executor runs one shell command in one project directory.
package executor

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	huberrors "github.com/examples-hub/hubrun/internal/errors"
)

// CommandRunner executes a shell command in dir, killing it after timeout.
// A nil error means the command exited zero.
type CommandRunner interface {
	Execute(ctx context.Context, command, dir string, timeout time.Duration) error
}

// ShellRunner runs commands through the platform shell with output captured.
// Nothing is streamed to the terminal; the captured output is attached to
// the returned error.
type ShellRunner struct {
	// Env is appended to the inherited environment.
	Env map[string]string
}

// Execute implements CommandRunner.
func (r *ShellRunner) Execute(ctx context.Context, command, dir string, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := buildShellCommand(ctx, command)
	cmd.Dir = dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.Env = os.Environ()
	for k, v := range r.Env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}
	// Stop waiting for grandchildren holding the pipes once the shell is gone.
	cmd.WaitDelay = time.Second

	err := cmd.Run()
	if err == nil {
		return nil
	}

	output := stderr.String()
	if strings.TrimSpace(output) == "" {
		output = stdout.String()
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return huberrors.CommandTimedOut(command, timeout, output)
	}
	return huberrors.CommandFailed(command, err, output)
}

// buildShellCommand creates a cross-platform shell command.
// On Windows, uses the full path to PowerShell; on Unix, sh -c.
func buildShellCommand(ctx context.Context, command string) *exec.Cmd {
	if runtime.GOOS == "windows" {
		return buildWindowsShellCommand(ctx, command)
	}
	return exec.CommandContext(ctx, "sh", "-c", command)
}

func buildWindowsShellCommand(ctx context.Context, command string) *exec.Cmd {
	systemRoot := os.Getenv("SYSTEMROOT")
	if systemRoot == "" {
		systemRoot = `C:\Windows`
	}
	powershell := filepath.Join(systemRoot, "System32", "WindowsPowerShell", "v1.0", "powershell.exe")
	return exec.CommandContext(ctx, powershell, "-NoProfile", "-NonInteractive", "-Command", command)
}

// Excerpt returns the short form of a command error shown in summaries.
func Excerpt(err error) string {
	return huberrors.FirstLine(err)
}
