package cli

import (
	"strings"

	"github.com/examples-hub/hubrun/internal/deps"
	huberrors "github.com/examples-hub/hubrun/internal/errors"
	"github.com/examples-hub/hubrun/internal/executor"
)

// updateDepsArgs holds the parsed update-deps arguments.
type updateDepsArgs struct {
	mode deps.Mode
	pin  string
}

func parseUpdateDepsArgs(args []string) (updateDepsArgs, error) {
	var a updateDepsArgs
	for _, arg := range args {
		switch {
		case arg == "--check-only":
			if a.mode == deps.ModeDiffOnly {
				return a, huberrors.Config("--check-only and --diff-only are mutually exclusive")
			}
			a.mode = deps.ModeCheckOnly
		case arg == "--diff-only":
			if a.mode == deps.ModeCheckOnly {
				return a, huberrors.Config("--check-only and --diff-only are mutually exclusive")
			}
			a.mode = deps.ModeDiffOnly
		case strings.HasPrefix(arg, "--"):
			return a, huberrors.Configf("unknown flag: %s", arg)
		case a.pin != "":
			return a, huberrors.Configf("unexpected argument: %s", arg)
		default:
			a.pin = arg
		}
	}
	return a, nil
}

// RunUpdateDeps updates the scoped dependencies of every manifest and
// returns an exit code.
func RunUpdateDeps(args []string) int {
	if wantsHelp(args) {
		printUpdateDepsUsage()
		return huberrors.ExitSuccess
	}

	parsed, err := parseUpdateDepsArgs(args)
	if err != nil {
		out.ErrorPrefix("%v", err)
		return huberrors.GetExitCode(err)
	}

	cfg, code := loadConfig(".")
	if cfg == nil {
		return code
	}

	opts := deps.OptionsFromConfig(cfg)
	opts.Mode = parsed.mode
	opts.Pin = parsed.pin
	opts.Runner = &executor.ShellRunner{}
	opts.Out = out

	cmd := &deps.Command{
		Options:     opts,
		Source:      deps.NewRegistry(cfg.Dependencies.Registry),
		Packages:    cfg.Dependencies.Packages,
		Concurrency: cfg.Dependencies.Concurrency,
	}

	ctx, stop := signalContext()
	defer stop()

	if _, err := cmd.Run(ctx, "."); err != nil {
		out.ErrorPrefix("%v", err)
		return huberrors.GetExitCode(err)
	}
	return huberrors.ExitSuccess
}
