// Package hubrun provides public constants for external tools integrating
// with the hubrun commands.
package hubrun

// Exit codes returned by install-all, build-all, lint-all, typecheck-all
// and update-deps. These constants allow scripts and CI wrappers to check
// exit codes symbolically.
const (
	// ExitSuccess indicates every scheduled project passed or was skipped.
	ExitSuccess = 0

	// ExitFailure indicates at least one project failed, or a runtime error.
	ExitFailure = 1

	// ExitConfigError indicates an invalid hubrun.yaml or invalid arguments.
	ExitConfigError = 2
)
