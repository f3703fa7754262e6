package runner

import (
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/examples-hub/hubrun/internal/config"
	huberrors "github.com/examples-hub/hubrun/internal/errors"
	"github.com/examples-hub/hubrun/internal/project"
	"github.com/examples-hub/hubrun/internal/retry"
)

// Capability is one operation run across every eligible project.
type Capability struct {
	Name  string
	Title string
	Icon  string
	// Command runs in each project; Commands overrides it per runtime.
	Command     string
	Commands    map[project.Runtime]string
	Timeout     time.Duration
	Concurrency int
	// Cleanup removes build output directories after a successful run.
	Cleanup bool
	Retry   retry.Policy
	// Requeue, when set, gives exhausted projects a second pass instead of
	// failing them immediately.
	Requeue *retry.Requeue
}

var capabilityIcons = map[string]string{
	config.CapabilityInstall:   "📦",
	config.CapabilityBuild:     "🔨",
	config.CapabilityLint:      "🔍",
	config.CapabilityTypecheck: "📝",
}

var titleCaser = cases.Title(language.English)

// Title returns the display name of a capability ("build" -> "Build").
func Title(name string) string {
	return titleCaser.String(name)
}

// CapabilityFromConfig resolves the named capability from a configuration
// with defaults applied.
func CapabilityFromConfig(name string, cfg *config.Config) (Capability, error) {
	cc, ok := cfg.Capabilities[name]
	if !ok || cc == nil {
		return Capability{}, huberrors.NotFound("capability", name)
	}

	c := Capability{
		Name:        name,
		Title:       Title(name),
		Icon:        capabilityIcons[name],
		Command:     cc.Command,
		Timeout:     cc.Timeout.Std(),
		Concurrency: cc.Concurrency,
		Cleanup:     cc.Cleanup != nil && *cc.Cleanup,
		Retry:       retry.Policy{MaxAttempts: 1},
	}
	if len(cc.Commands) > 0 {
		c.Commands = make(map[project.Runtime]string, len(cc.Commands))
		for rt, cmd := range cc.Commands {
			c.Commands[project.Runtime(rt)] = cmd
		}
	}
	if cc.Retry != nil {
		c.Retry = retry.Policy{MaxAttempts: cc.Retry.Attempts, BaseDelay: cc.Retry.BaseDelay.Std()}
	}
	if rq := cc.Requeue; rq != nil {
		c.Requeue = &retry.Requeue{
			Concurrency: rq.Concurrency,
			MaxAttempts: rq.Attempts,
			Delay:       rq.Delay.Std(),
			Stagger:     rq.Stagger.Std(),
		}
	}
	return c, nil
}

// CommandFor returns the command to run for a project of the given runtime.
func (c Capability) CommandFor(rt project.Runtime) string {
	if cmd := c.Commands[rt]; cmd != "" {
		return cmd
	}
	return c.Command
}

func (c Capability) isInstall() bool {
	return c.Name == config.CapabilityInstall
}
