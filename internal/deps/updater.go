package deps

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/examples-hub/hubrun/internal/config"
	huberrors "github.com/examples-hub/hubrun/internal/errors"
	"github.com/examples-hub/hubrun/internal/executor"
	"github.com/examples-hub/hubrun/internal/output"
	"github.com/examples-hub/hubrun/internal/project"
)

// Sections are the manifest objects whose entries are updated.
var Sections = []string{"dependencies", "devDependencies", "peerDependencies", "optionalDependencies"}

// Mode selects how the updater treats manifests.
type Mode int

const (
	// ModeUpdate rewrites every manifest with outdated entries.
	ModeUpdate Mode = iota
	// ModeCheckOnly reports updates without writing anything.
	ModeCheckOnly
	// ModeDiffOnly skips manifests with nothing to update before editing.
	ModeDiffOnly
)

// Change is one updated dependency entry.
type Change struct {
	Package string
	From    string
	To      string
	Section string
}

// FileUpdate lists the changes made to one manifest.
type FileUpdate struct {
	Path    string // "./"-prefixed manifest path relative to the scan root
	Dir     string
	Changes []Change
}

// PackageUpdate aggregates the changes of one package across files.
type PackageUpdate struct {
	Package string
	From    string // first version seen
	To      string
	Files   []string
}

// Result is the outcome of a scan.
type Result struct {
	FilesChecked int
	Files        []FileUpdate
	Packages     []PackageUpdate
	// Locks counts lockfile refreshes.
	LocksUpdated int
	LocksFailed  int
}

// DepsUpdated returns the number of updated entries.
func (r *Result) DepsUpdated() int {
	n := 0
	for _, f := range r.Files {
		n += len(f.Changes)
	}
	return n
}

// Options configures an Updater.
type Options struct {
	Scope    string
	Manifest string
	MaxDepth int
	Mode     Mode
	// Versions maps package names to their latest versions.
	Versions map[string]string
	// Pin, when set, moves every scoped dependency to this version instead.
	Pin string

	LockCommand string
	LockTimeout time.Duration
	Runner      executor.CommandRunner
	Out         *output.Writer
}

// OptionsFromConfig builds updater options from a configuration with
// defaults applied.
func OptionsFromConfig(cfg *config.Config) Options {
	d := cfg.Dependencies
	return Options{
		Scope:       d.Scope,
		Manifest:    cfg.Discovery.Manifest,
		MaxDepth:    *d.MaxDepth,
		LockCommand: d.LockCommand,
		LockTimeout: d.LockTimeout.Std(),
	}
}

// Updater rewrites scoped dependency versions in manifests.
type Updater struct {
	opts Options
	out  *output.Writer
}

// NewUpdater creates an Updater.
func NewUpdater(opts Options) *Updater {
	if opts.Out == nil {
		opts.Out = output.New()
	}
	if opts.Runner == nil {
		opts.Runner = &executor.ShellRunner{}
	}
	if opts.Manifest == "" {
		opts.Manifest = config.DefaultManifest
	}
	return &Updater{opts: opts, out: opts.Out}
}

// Scan visits every manifest under root, at most MaxDepth levels deep and
// never inside node_modules or dot directories, and applies the updates.
func (u *Updater) Scan(root string) (*Result, error) {
	projects, err := project.Discover(root, project.DiscoverOptions{
		Manifest:   u.opts.Manifest,
		MaxDepth:   u.opts.MaxDepth,
		SkipDirs:   []string{"node_modules"},
		SkipHidden: true,
		OnSkip: func(path string, err error) {
			u.out.Warning("error processing %s: %v", path, err)
		},
	})
	if err != nil {
		return nil, err
	}

	res := &Result{}
	index := make(map[string]int)
	for _, p := range projects {
		res.FilesChecked++
		fu, ok := u.updateManifest(p)
		if !ok {
			continue
		}
		res.Files = append(res.Files, fu)
		for _, c := range fu.Changes {
			i, seen := index[c.Package]
			if !seen {
				i = len(res.Packages)
				index[c.Package] = i
				res.Packages = append(res.Packages, PackageUpdate{Package: c.Package, From: c.From, To: c.To})
			}
			res.Packages[i].Files = append(res.Packages[i].Files, fu.Path)
		}
	}
	return res, nil
}

func (u *Updater) updateManifest(p project.Project) (FileUpdate, bool) {
	file := filepath.Join(p.Dir, u.opts.Manifest)
	rel := manifestPath(p.Path, u.opts.Manifest)

	data, err := os.ReadFile(file)
	if err != nil {
		u.out.Warning("error updating %s: %v", rel, err)
		return FileUpdate{}, false
	}
	if !gjson.ValidBytes(data) {
		u.out.Warning("error updating %s: invalid JSON", rel)
		return FileUpdate{}, false
	}
	changes := u.changes(data)
	if len(changes) == 0 {
		return FileUpdate{}, false
	}

	for _, c := range changes {
		u.out.Println("  Updated %s: %s → %s (%s)", c.Package, c.From, c.To, c.Section)
		data, err = sjson.SetBytes(data, c.Section+"."+gjson.Escape(c.Package), c.To)
		if err != nil {
			u.out.Warning("error updating %s: %v", rel, err)
			return FileUpdate{}, false
		}
	}
	if u.opts.Mode != ModeCheckOnly {
		if err := os.WriteFile(file, data, 0644); err != nil {
			u.out.Warning("error writing %s: %v", rel, err)
			return FileUpdate{}, false
		}
	}
	u.out.Passed("Updated %s", rel)
	return FileUpdate{Path: rel, Dir: p.Dir, Changes: changes}, true
}

// changes lists the entries of data to update, in section order.
func (u *Updater) changes(data []byte) []Change {
	var changes []Change
	for _, section := range Sections {
		gjson.GetBytes(data, section).ForEach(func(key, value gjson.Result) bool {
			dep := key.String()
			if !strings.HasPrefix(dep, u.opts.Scope) || value.Type != gjson.String {
				return true
			}
			if to, ok := u.target(dep, value.String()); ok {
				changes = append(changes, Change{Package: dep, From: value.String(), To: to, Section: section})
			}
			return true
		})
	}
	return changes
}

func (u *Updater) target(dep, current string) (string, bool) {
	if u.opts.Pin != "" {
		return u.opts.Pin, current != u.opts.Pin
	}
	latest, ok := u.opts.Versions[dep]
	if !ok || !ShouldUpdate(current, latest) {
		return "", false
	}
	return latest, true
}

// RefreshLocks runs the lockfile command in every updated directory that has
// a yarn.lock, and in the root. Failures are counted, never fatal.
func (u *Updater) RefreshLocks(ctx context.Context, res *Result) {
	if len(res.Files) == 0 {
		u.out.Println("🔒 No yarn.lock files need updating")
		return
	}

	u.out.Lines("", "🔒 Updating yarn.lock files in "+itoa(len(res.Files))+" directories...", rule)
	for _, f := range res.Files {
		relDir := filepath.ToSlash(filepath.Dir(filepath.FromSlash(f.Path)))
		if _, err := os.Stat(filepath.Join(f.Dir, "yarn.lock")); err != nil && relDir != "." {
			u.out.Println("  %s Skipping %s (no yarn.lock found)", output.MarkSkipped, relDir)
			continue
		}
		if u.opts.Mode == ModeCheckOnly {
			u.out.Println("  🔍 Would update yarn.lock in %s", relDir)
			res.LocksUpdated++
			continue
		}

		u.out.Println("  %s Updating %s...", output.MarkRunning, relDir)
		if err := u.opts.Runner.Execute(ctx, u.opts.LockCommand, f.Dir, u.opts.LockTimeout); err != nil {
			u.out.Println("  %s Failed to update yarn.lock in %s: %s", output.MarkFailed, relDir, huberrors.FirstLine(err))
			res.LocksFailed++
			continue
		}
		u.out.Println("  %s Updated yarn.lock in %s", output.MarkPassed, relDir)
		res.LocksUpdated++
	}
	u.out.Lines(rule, "🔒 Yarn.lock update summary: "+itoa(res.LocksUpdated)+" success, "+itoa(res.LocksFailed)+" failures")
	if res.LocksFailed > 0 {
		u.out.Warning("some yarn.lock files failed to update; please check manually")
	}
}

func manifestPath(projectPath, manifest string) string {
	if projectPath == "." {
		return "./" + manifest
	}
	return "./" + projectPath + "/" + manifest
}
