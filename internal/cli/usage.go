package cli

import (
	"fmt"

	"github.com/examples-hub/hubrun/internal/config"
	"github.com/examples-hub/hubrun/internal/output"
	"github.com/examples-hub/hubrun/internal/runner"
)

// binaryNames maps capabilities to their entry point binaries.
var binaryNames = map[string]string{
	config.CapabilityInstall:   "install-all",
	config.CapabilityBuild:     "build-all",
	config.CapabilityLint:      "lint-all",
	config.CapabilityTypecheck: "typecheck-all",
}

var capabilityDescriptions = map[string][]string{
	config.CapabilityInstall: {
		"Installs dependencies in all projects containing package.json files.",
		"Failed installs are retried, then requeued with fewer workers and a staggered delay.",
	},
	config.CapabilityBuild: {
		"Runs build on all projects that have build scripts configured.",
		"Skips projects without build scripts and removes build outputs after a successful build.",
	},
	config.CapabilityLint: {
		"Runs lint on all projects that have lint scripts configured.",
		"Skips projects without lint scripts.",
	},
	config.CapabilityTypecheck: {
		"Runs typecheck on all projects that have typecheck scripts configured.",
		"Skips projects without typecheck scripts.",
	},
}

func printCapabilityUsage(name string) {
	bin := binaryNames[name]
	out.HelpTitle(fmt.Sprintf("%s - %s across all projects (hubrun %s)", bin, runner.Title(name), Version))

	out.HelpSection("Usage:")
	out.HelpUsage(bin + " [-h|--help]")

	out.HelpSection("Description:")
	for _, line := range capabilityDescriptions[name] {
		out.HelpText(line)
	}

	out.HelpSection("Options:")
	out.HelpFlag("-h, --help", "Show this help", helpFlagWidth)

	printCommonHelp(out)
}

func printUpdateDepsUsage() {
	out.HelpTitle(fmt.Sprintf("update-deps - update scoped dependencies across all projects (hubrun %s)", Version))

	out.HelpSection("Usage:")
	out.HelpUsage("update-deps [--check-only|--diff-only] [<version>]")

	out.HelpSection("Modes:")
	out.HelpFlag("(no args)", "Fetch latest alpha versions and update all scoped dependencies", helpFlagWidth)
	out.HelpFlag("<version>", "Pin every scoped dependency to <version>", helpFlagWidth)
	out.HelpFlag("--check-only", "Check for available updates without making changes", helpFlagWidth)
	out.HelpFlag("--diff-only", "Only process files where versions differ", helpFlagWidth)
	out.HelpFlag("-h, --help", "Show this help", helpFlagWidth)

	out.HelpSection("Examples:")
	out.HelpExample("update-deps", "")
	out.HelpExample("update-deps --check-only", "")
	out.HelpExample("update-deps ^2.0.0-alpha.40", "Pin to an explicit version")

	printCommonHelp(out)
}

func printCommonHelp(w *output.Writer) {
	w.HelpSection("Configuration:")
	w.HelpText(config.FileName + " in the working directory (optional)")

	w.HelpSection("Environment:")
	w.HelpFlag(runner.ConcurrencyEnv, "Override the number of concurrent projects (1-64)", helpFlagWidth)
	w.HelpText(runner.ConcurrencyEnv + " applies with or without " + config.FileName + ".")
}
