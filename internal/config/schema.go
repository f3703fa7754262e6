// Package config provides loading, defaults and validation for hubrun.yaml.
package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete hubrun.yaml configuration.
type Config struct {
	Discovery    *DiscoveryConfig             `yaml:"discovery,omitempty"`
	Capabilities map[string]*CapabilityConfig `yaml:"capabilities,omitempty"`
	Runtimes     []RuntimeOverride            `yaml:"runtimes,omitempty"`
	Dependencies *DependenciesConfig          `yaml:"dependencies,omitempty"`
}

// DiscoveryConfig controls the project directory scan.
type DiscoveryConfig struct {
	Manifest string   `yaml:"manifest,omitempty"`
	MaxDepth *int     `yaml:"max_depth,omitempty"`
	SkipDirs []string `yaml:"skip_dirs,omitempty"`
}

// CapabilityConfig configures one of install, build, lint or typecheck.
type CapabilityConfig struct {
	// Command is the shell command run in every eligible project.
	Command string `yaml:"command,omitempty"`
	// Commands overrides Command per runtime (yarn, bun, deno).
	Commands    map[string]string `yaml:"commands,omitempty"`
	Timeout     Duration          `yaml:"timeout,omitempty"`
	Concurrency int               `yaml:"concurrency,omitempty"`
	// Cleanup removes build output directories after a successful run.
	Cleanup *bool          `yaml:"cleanup,omitempty"`
	Retry   *RetryConfig   `yaml:"retry,omitempty"`
	Requeue *RequeueConfig `yaml:"requeue,omitempty"`
}

// RetryConfig is the immediate retry policy of a capability.
type RetryConfig struct {
	Attempts  int      `yaml:"attempts,omitempty"`
	BaseDelay Duration `yaml:"base_delay,omitempty"`
}

// RequeueConfig is the second, slower retry pass for persistent failures.
type RequeueConfig struct {
	Concurrency int      `yaml:"concurrency,omitempty"`
	Attempts    int      `yaml:"attempts,omitempty"`
	Delay       Duration `yaml:"delay,omitempty"`
	Stagger     Duration `yaml:"stagger,omitempty"`
}

// RuntimeOverride pins the runtime of the projects matching Path.
// Path is a slash-separated project path or a path.Match pattern.
type RuntimeOverride struct {
	Path    string `yaml:"path"`
	Runtime string `yaml:"runtime"`
}

// DependenciesConfig configures the scoped dependency updater.
type DependenciesConfig struct {
	Scope       string   `yaml:"scope,omitempty"`
	Registry    string   `yaml:"registry,omitempty"`
	Packages    []string `yaml:"packages,omitempty"`
	MaxDepth    *int     `yaml:"max_depth,omitempty"`
	Concurrency int      `yaml:"concurrency,omitempty"`
	LockCommand string   `yaml:"lock_command,omitempty"`
	LockTimeout Duration `yaml:"lock_timeout,omitempty"`
}

// Duration is a time.Duration written as a Go duration string ("5m", "1s").
type Duration time.Duration

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// UnmarshalYAML parses a duration string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("line %d: duration must be a string: %w", value.Line, err)
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML renders the duration as a string.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}
