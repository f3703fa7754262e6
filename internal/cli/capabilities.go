package cli

import (
	"github.com/examples-hub/hubrun/internal/config"
	huberrors "github.com/examples-hub/hubrun/internal/errors"
	"github.com/examples-hub/hubrun/internal/executor"
	"github.com/examples-hub/hubrun/internal/project"
	"github.com/examples-hub/hubrun/internal/runner"
)

// RunInstall installs dependencies in every project and returns an exit code.
func RunInstall(args []string) int {
	return runCapability(config.CapabilityInstall, args)
}

// RunBuild builds every project with a build script and returns an exit code.
func RunBuild(args []string) int {
	return runCapability(config.CapabilityBuild, args)
}

// RunLint lints every project with a lint script and returns an exit code.
func RunLint(args []string) int {
	return runCapability(config.CapabilityLint, args)
}

// RunTypecheck typechecks every project with a typecheck script and returns an exit code.
func RunTypecheck(args []string) int {
	return runCapability(config.CapabilityTypecheck, args)
}

// runCapability runs one capability across the projects under the working
// directory. Arguments other than help flags are ignored.
func runCapability(name string, args []string) int {
	if wantsHelp(args) {
		printCapabilityUsage(name)
		return huberrors.ExitSuccess
	}

	cfg, code := loadConfig(".")
	if cfg == nil {
		return code
	}

	c, err := runner.CapabilityFromConfig(name, cfg)
	if err != nil {
		out.ErrorPrefix("%v", err)
		return huberrors.GetExitCode(err)
	}
	c.Concurrency = runner.ConcurrencyFromEnv(c.Concurrency, out)

	disc := project.OptionsFromConfig(cfg)
	disc.OnSkip = func(path string, err error) {
		out.Warning("skipping %s: %v", path, err)
	}

	ctx, stop := signalContext()
	defer stop()

	co := runner.New(c, runner.Options{
		Runner:   &executor.ShellRunner{},
		Out:      out,
		Discover: disc,
	})
	report, err := co.Run(ctx, ".")
	if err != nil {
		out.ErrorPrefix("%v", err)
		return huberrors.GetExitCode(err)
	}
	return report.Summary.ExitCode()
}
