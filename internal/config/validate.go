package config

import (
	"fmt"
	"path"
	"sort"
)

// maxConcurrency caps per-capability parallelism. Commands here are package
// manager processes; far beyond this the registry and the disk are the bottleneck.
const maxConcurrency = 64

// Validate checks semantic rules the schema cannot express.
// It returns warnings for suspicious but usable values.
func Validate(cfg *Config) ([]string, error) {
	var warnings []string

	names := make([]string, 0, len(cfg.Capabilities))
	for name := range cfg.Capabilities {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		c := cfg.Capabilities[name]
		if c.Concurrency > maxConcurrency {
			return warnings, fmt.Errorf("capabilities.%s.concurrency: %d exceeds maximum %d", name, c.Concurrency, maxConcurrency)
		}
		if c.Requeue != nil && c.Requeue.Concurrency > maxConcurrency {
			return warnings, fmt.Errorf("capabilities.%s.requeue.concurrency: %d exceeds maximum %d", name, c.Requeue.Concurrency, maxConcurrency)
		}
		if name != CapabilityInstall {
			if c.Retry != nil || c.Requeue != nil {
				warnings = append(warnings, fmt.Sprintf("capabilities.%s: retry and requeue apply to install only (ignored)", name))
			}
			if len(c.Commands) > 0 {
				warnings = append(warnings, fmt.Sprintf("capabilities.%s: commands applies to install only (ignored)", name))
			}
		}
	}

	for i, r := range cfg.Runtimes {
		if _, err := path.Match(r.Path, ""); err != nil {
			return warnings, fmt.Errorf("runtimes[%d].path: invalid pattern %q: %w", i, r.Path, err)
		}
	}

	if cfg.Dependencies != nil && len(cfg.Dependencies.Packages) == 0 {
		warnings = append(warnings, "dependencies.packages is empty; update-deps can only pin an explicit version")
	}

	return warnings, nil
}
