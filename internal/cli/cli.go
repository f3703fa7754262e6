// Package cli implements the hubrun command-line entry points.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/examples-hub/hubrun/internal/config"
	huberrors "github.com/examples-hub/hubrun/internal/errors"
	"github.com/examples-hub/hubrun/internal/output"
)

// Version is set at build time.
var Version = "dev"

// out is the shared output writer for CLI commands.
var out = output.New()

// Help text alignment width for flags.
const helpFlagWidth = 14

// wantsHelp returns true if args contain -h or --help anywhere. The
// commands parse no other flags, so a -- separator ends nothing.
func wantsHelp(args []string) bool {
	for _, arg := range args {
		if arg == "-h" || arg == "--help" {
			return true
		}
	}
	return false
}

// loadConfig loads hubrun.yaml from dir and prints its warnings.
// Returns the configuration and exit code 0 on success, or nil and the
// error's exit code on failure.
func loadConfig(dir string) (*config.Config, int) {
	cfg, warnings, err := config.LoadDir(dir)
	if err != nil {
		out.ErrorPrefix("%v", err)
		return nil, huberrors.GetExitCode(err)
	}
	for _, w := range warnings {
		out.Warning("%s", w)
	}
	return cfg, huberrors.ExitSuccess
}

// signalContext returns a context canceled on interrupt or termination, so
// in-flight commands are killed instead of orphaned.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
