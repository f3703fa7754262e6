package deps

import (
	"context"

	huberrors "github.com/examples-hub/hubrun/internal/errors"
	"github.com/examples-hub/hubrun/internal/limiter"
	"github.com/examples-hub/hubrun/internal/output"
)

// Command is one update-deps invocation.
type Command struct {
	Options
	Source      VersionSource
	Packages    []string
	Concurrency int
}

// Run resolves the target versions, rewrites the manifests under root and
// refreshes their lockfiles. It fails only when no version could be resolved
// or root cannot be scanned.
func (c *Command) Run(ctx context.Context, root string) (*Result, error) {
	w := c.Out
	if w == nil {
		w = output.New()
		c.Out = w
	}

	if c.Pin == "" {
		w.Println("🔍 Fetching latest alpha versions for %s* packages...", c.Scope)
		c.Versions = FetchAll(ctx, c.Source, c.Packages, limiter.New(c.Concurrency), w)
		if len(c.Versions) == 0 {
			return nil, huberrors.New("no alpha versions found; cannot proceed with updates")
		}
		w.Println("\n📦 Found %d packages with alpha versions", len(c.Versions))
	} else {
		w.Println("🔄 Updating all %s* dependencies to version: %s", c.Scope, c.Pin)
	}

	switch c.Mode {
	case ModeDiffOnly:
		w.Println("🚀 INCREMENTAL MODE - Only processing files with version differences")
	case ModeCheckOnly:
		w.Println("🔍 CHECK ONLY MODE - No files will be modified")
	default:
		w.Println("🔄 Scanning for package.json files to update...")
	}
	w.Println("%s", rule)

	u := NewUpdater(c.Options)
	res, err := u.Scan(root)
	if err != nil {
		return nil, err
	}

	PrintSummary(w, res, c.Scope)
	if len(res.Files) > 0 {
		u.RefreshLocks(ctx, res)
	}

	if msg := CommitMessage(res, c.Scope, c.Pin); msg != "" && c.Mode != ModeCheckOnly {
		w.Lines("", "💬 Suggested commit message:", rule, msg, rule)
	}
	switch {
	case c.Mode == ModeCheckOnly:
		w.Println("\n🔍 Check complete. Run without --check-only to apply updates.")
	case len(res.Files) > 0:
		w.Println("\n%s Update complete! Package.json and yarn.lock files have been updated.", output.MarkPassed)
	}
	return res, nil
}
