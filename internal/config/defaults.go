package config

import (
	"time"
)

// FileName is the configuration file looked up in the working directory.
const FileName = "hubrun.yaml"

// Capability names.
const (
	CapabilityInstall   = "install"
	CapabilityBuild     = "build"
	CapabilityLint      = "lint"
	CapabilityTypecheck = "typecheck"
)

// Runtime names.
const (
	RuntimeYarn = "yarn"
	RuntimeBun  = "bun"
	RuntimeDeno = "deno"
)

// Default configuration values.
const (
	DefaultManifest         = "package.json"
	DefaultMaxDepth         = 4
	DefaultConcurrency      = 4
	DefaultInstallTimeout   = 2 * time.Minute
	DefaultBuildTimeout     = 5 * time.Minute
	DefaultLintTimeout      = time.Minute
	DefaultTypecheckTimeout = 5 * time.Minute
	DefaultRetryAttempts    = 2
	DefaultRetryBaseDelay   = time.Second
	DefaultRequeueWorkers   = 2
	DefaultRequeueAttempts  = 4
	DefaultRequeueDelay     = 5 * time.Second
	DefaultRequeueStagger   = 2 * time.Second

	DefaultScope          = "@getpara/"
	DefaultRegistry       = "https://registry.npmjs.org"
	DefaultDepsMaxDepth   = 3
	DefaultDepsWorkers    = 4
	DefaultLockCommand    = "yarn install --mode=update-lockfile"
	DefaultLockTimeout    = 30 * time.Second
	defaultYarnInstall    = "yarn install --network-timeout 60000"
	defaultBunInstall     = "bun install"
	defaultDenoInstall    = "deno task install"
	defaultScriptTemplate = "yarn "
)

// DefaultSkipDirs lists directory names never traversed during discovery:
// dependency caches, build outputs and version control metadata.
var DefaultSkipDirs = []string{"node_modules", ".next", ".output", "dist", ".yarn", "build", ".cache", ".git"}

// DefaultRuntimes pins the server examples that do not use yarn.
var DefaultRuntimes = []RuntimeOverride{
	{Path: "server/with-bun", Runtime: RuntimeBun},
	{Path: "server/with-deno", Runtime: RuntimeDeno},
}

// DefaultPackages lists the scoped packages the dependency updater tracks.
var DefaultPackages = []string{
	"@getpara/core-sdk",
	"@getpara/react-sdk",
	"@getpara/web-sdk",
	"@getpara/server-sdk",
	"@getpara/user-management-client",
	"@getpara/cosmos-wallet-connectors",
	"@getpara/evm-wallet-connectors",
	"@getpara/solana-wallet-connectors",
	"@getpara/graz",
	"@getpara/cosmjs-v0-integration",
	"@getpara/ethers-v5-integration",
	"@getpara/ethers-v6-integration",
	"@getpara/solana-web3.js-v1-integration",
	"@getpara/viem-v1-integration",
	"@getpara/viem-v2-integration",
}

// Capabilities lists every capability in a stable order.
var Capabilities = []string{CapabilityInstall, CapabilityBuild, CapabilityLint, CapabilityTypecheck}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// applyDefaults fills in default values for unset configuration fields.
func applyDefaults(cfg *Config) {
	applyDiscoveryDefaults(cfg)
	applyCapabilityDefaults(cfg)
	applyDependencyDefaults(cfg)
	if cfg.Runtimes == nil {
		cfg.Runtimes = append([]RuntimeOverride(nil), DefaultRuntimes...)
	}
}

func applyDiscoveryDefaults(cfg *Config) {
	if cfg.Discovery == nil {
		cfg.Discovery = &DiscoveryConfig{}
	}
	d := cfg.Discovery
	if d.Manifest == "" {
		d.Manifest = DefaultManifest
	}
	if d.MaxDepth == nil {
		depth := DefaultMaxDepth
		d.MaxDepth = &depth
	}
	if d.SkipDirs == nil {
		d.SkipDirs = append([]string(nil), DefaultSkipDirs...)
	}
}

func applyCapabilityDefaults(cfg *Config) {
	if cfg.Capabilities == nil {
		cfg.Capabilities = make(map[string]*CapabilityConfig)
	}
	for _, name := range Capabilities {
		c := cfg.Capabilities[name]
		if c == nil {
			c = &CapabilityConfig{}
			cfg.Capabilities[name] = c
		}
		if c.Command == "" {
			if name == CapabilityInstall {
				c.Command = defaultYarnInstall
			} else {
				c.Command = defaultScriptTemplate + name
			}
		}
		if c.Timeout == 0 {
			c.Timeout = Duration(defaultTimeout(name))
		}
		if c.Concurrency == 0 {
			c.Concurrency = DefaultConcurrency
		}
		if c.Cleanup == nil {
			cleanup := name == CapabilityBuild
			c.Cleanup = &cleanup
		}
		if name == CapabilityInstall {
			applyInstallDefaults(c)
		}
	}
}

func applyInstallDefaults(c *CapabilityConfig) {
	if c.Commands == nil {
		c.Commands = make(map[string]string)
	}
	for runtime, cmd := range map[string]string{
		RuntimeYarn: c.Command,
		RuntimeBun:  defaultBunInstall,
		RuntimeDeno: defaultDenoInstall,
	} {
		if c.Commands[runtime] == "" {
			c.Commands[runtime] = cmd
		}
	}

	if c.Retry == nil {
		c.Retry = &RetryConfig{}
	}
	if c.Retry.Attempts == 0 {
		c.Retry.Attempts = DefaultRetryAttempts
	}
	if c.Retry.BaseDelay == 0 {
		c.Retry.BaseDelay = Duration(DefaultRetryBaseDelay)
	}

	if c.Requeue == nil {
		c.Requeue = &RequeueConfig{}
	}
	r := c.Requeue
	if r.Concurrency == 0 {
		r.Concurrency = DefaultRequeueWorkers
	}
	if r.Attempts == 0 {
		r.Attempts = DefaultRequeueAttempts
	}
	if r.Delay == 0 {
		r.Delay = Duration(DefaultRequeueDelay)
	}
	if r.Stagger == 0 {
		r.Stagger = Duration(DefaultRequeueStagger)
	}
}

func applyDependencyDefaults(cfg *Config) {
	if cfg.Dependencies == nil {
		cfg.Dependencies = &DependenciesConfig{}
	}
	d := cfg.Dependencies
	if d.Scope == "" {
		d.Scope = DefaultScope
	}
	if d.Registry == "" {
		d.Registry = DefaultRegistry
	}
	if d.Packages == nil {
		d.Packages = append([]string(nil), DefaultPackages...)
	}
	if d.MaxDepth == nil {
		depth := DefaultDepsMaxDepth
		d.MaxDepth = &depth
	}
	if d.Concurrency == 0 {
		d.Concurrency = DefaultDepsWorkers
	}
	if d.LockCommand == "" {
		d.LockCommand = DefaultLockCommand
	}
	if d.LockTimeout == 0 {
		d.LockTimeout = Duration(DefaultLockTimeout)
	}
}

func defaultTimeout(capability string) time.Duration {
	switch capability {
	case CapabilityInstall:
		return DefaultInstallTimeout
	case CapabilityLint:
		return DefaultLintTimeout
	case CapabilityTypecheck:
		return DefaultTypecheckTimeout
	default:
		return DefaultBuildTimeout
	}
}
