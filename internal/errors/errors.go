// Package errors provides structured error types and exit codes for hubrun.
package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/examples-hub/hubrun/pkg/hubrun"
)

// Exit codes returned by every hubrun entry point.
const (
	ExitSuccess      = hubrun.ExitSuccess     // Success
	ExitRuntimeError = hubrun.ExitFailure     // At least one project failed, or a runtime error
	ExitConfigError  = hubrun.ExitConfigError // Invalid hubrun.yaml
)

// ErrorKind represents the type of error.
type ErrorKind int

const (
	KindRuntime ErrorKind = iota
	KindConfig
	KindNotFound
	KindCommand
	KindTimeout
	KindDiscovery
	KindManifest
)

func (k ErrorKind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindNotFound:
		return "not_found"
	case KindCommand:
		return "command"
	case KindTimeout:
		return "timeout"
	case KindDiscovery:
		return "discovery"
	case KindManifest:
		return "manifest"
	default:
		return "runtime"
	}
}

// HubError is the base error type for hubrun.
type HubError struct {
	Kind    ErrorKind
	Message string
	Command string // Shell command if applicable
	Output  string // Captured command output (command and timeout kinds)
	Cause   error  // Underlying error
}

// Error renders the message on the first line and any captured output below it.
// Summaries only ever show the first line, see FirstLine.
func (e *HubError) Error() string {
	msg := e.Message
	if e.Output != "" {
		msg += "\n" + e.Output
	}
	return msg
}

func (e *HubError) Unwrap() error {
	return e.Cause
}

// ExitCode returns the appropriate exit code for this error.
func (e *HubError) ExitCode() int {
	switch e.Kind {
	case KindConfig:
		return ExitConfigError
	default:
		return ExitRuntimeError
	}
}

// New creates a new runtime error.
func New(message string) *HubError {
	return &HubError{
		Kind:    KindRuntime,
		Message: message,
	}
}

// Newf creates a new runtime error with formatting.
func Newf(format string, args ...interface{}) *HubError {
	return New(fmt.Sprintf(format, args...))
}

// Config creates a new configuration error.
func Config(message string) *HubError {
	return &HubError{
		Kind:    KindConfig,
		Message: message,
	}
}

// Configf creates a new configuration error with formatting.
func Configf(format string, args ...interface{}) *HubError {
	return Config(fmt.Sprintf(format, args...))
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) *HubError {
	return &HubError{
		Kind:    KindRuntime,
		Message: message,
		Cause:   err,
	}
}

// NotFound creates a not found error.
func NotFound(what, name string) *HubError {
	return &HubError{
		Kind:    KindNotFound,
		Message: fmt.Sprintf("%s not found: %s", what, name),
	}
}

// CommandFailed reports a command that exited unsuccessfully.
func CommandFailed(command string, cause error, output string) *HubError {
	return &HubError{
		Kind:    KindCommand,
		Message: "command failed: " + command,
		Command: command,
		Output:  strings.TrimSpace(output),
		Cause:   cause,
	}
}

// CommandTimedOut reports a command killed after exceeding its timeout.
func CommandTimedOut(command string, timeout time.Duration, output string) *HubError {
	return &HubError{
		Kind:    KindTimeout,
		Message: fmt.Sprintf("command timed out after %s: %s", timeout, command),
		Command: command,
		Output:  strings.TrimSpace(output),
	}
}

// Discovery reports a directory that could not be listed or stat-ed.
func Discovery(path string, cause error) *HubError {
	return &HubError{
		Kind:    KindDiscovery,
		Message: fmt.Sprintf("cannot read %s", path),
		Cause:   cause,
	}
}

// ManifestParse reports an unreadable or malformed manifest file.
func ManifestParse(path string, cause error) *HubError {
	return &HubError{
		Kind:    KindManifest,
		Message: fmt.Sprintf("invalid manifest %s: %v", path, cause),
		Cause:   cause,
	}
}

// IsKind reports whether err is or wraps a HubError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var he *HubError
	if errors.As(err, &he) {
		return he.Kind == kind
	}
	return false
}

// FirstLine returns the first line of the error text, or "" for a nil error.
func FirstLine(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		msg = msg[:i]
	}
	return strings.TrimRight(msg, "\r")
}

// GetExitCode returns the exit code for an error.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var he *HubError
	if errors.As(err, &he) {
		return he.ExitCode()
	}
	return ExitRuntimeError
}
