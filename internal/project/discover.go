// Package project discovers the sub-projects of the monorepo and reads their manifests.
package project

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/examples-hub/hubrun/internal/config"
	huberrors "github.com/examples-hub/hubrun/internal/errors"
)

// Project is a directory containing a manifest file.
type Project struct {
	// Path is the slash-separated path relative to the discovery root ("." for the root).
	Path string
	// Dir is the root-joined directory used as the command working directory.
	Dir string
	// Manifest is nil when the manifest could not be read or parsed.
	Manifest    *Manifest
	ManifestErr error
	Runtime     Runtime
}

// HasScript reports whether the project's manifest declares the named script.
func (p Project) HasScript(name string) bool {
	return p.Manifest.HasScript(name)
}

// DiscoverOptions configures Discover.
type DiscoverOptions struct {
	Manifest string
	// MaxDepth is the deepest directory level listed; the root is level 0.
	MaxDepth int
	SkipDirs []string
	// SkipHidden also skips every dot-prefixed directory below the root.
	SkipHidden bool
	Runtimes   []config.RuntimeOverride
	// OnSkip, when set, receives every path that could not be read.
	// Such paths are skipped either way.
	OnSkip func(path string, err error)
}

// OptionsFromConfig builds discovery options from a configuration with defaults applied.
func OptionsFromConfig(cfg *config.Config) DiscoverOptions {
	return DiscoverOptions{
		Manifest: cfg.Discovery.Manifest,
		MaxDepth: *cfg.Discovery.MaxDepth,
		SkipDirs: cfg.Discovery.SkipDirs,
		Runtimes: cfg.Runtimes,
	}
}

// DefaultDiscoverOptions returns the options of the default configuration.
func DefaultDiscoverOptions() DiscoverOptions {
	return OptionsFromConfig(config.Default())
}

// Discover finds every directory under root that contains the manifest file,
// descending at most MaxDepth levels and never into a skipped directory.
// Directories that cannot be read are skipped. Results are sorted by Path
// and contain no duplicates. The only error is an unusable root.
func Discover(root string, opts DiscoverOptions) ([]Project, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, huberrors.Discovery(root, err)
	}
	if !info.IsDir() {
		return nil, huberrors.Newf("discovery root %q is not a directory", root)
	}

	d := &discoverer{
		root:  root,
		opts:  opts,
		skip:  make(map[string]bool, len(opts.SkipDirs)),
		found: make(map[string]Project),
	}
	if d.opts.Manifest == "" {
		d.opts.Manifest = config.DefaultManifest
	}
	for _, name := range opts.SkipDirs {
		d.skip[name] = true
	}

	d.traverse(root, 0)

	projects := make([]Project, 0, len(d.found))
	for _, p := range d.found {
		projects = append(projects, p)
	}
	sort.Slice(projects, func(i, j int) bool { return projects[i].Path < projects[j].Path })
	return projects, nil
}

type discoverer struct {
	root  string
	opts  DiscoverOptions
	skip  map[string]bool
	found map[string]Project
}

func (d *discoverer) traverse(dir string, depth int) {
	if depth > d.opts.MaxDepth {
		return
	}
	name := filepath.Base(dir)
	if d.skip[name] || (depth > 0 && d.opts.SkipHidden && strings.HasPrefix(name, ".")) {
		return
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		d.skipped(dir, err)
		return
	}

	for _, entry := range entries {
		if entry.Name() == d.opts.Manifest {
			d.record(dir)
			break
		}
	}

	for _, entry := range entries {
		fullPath := filepath.Join(dir, entry.Name())
		// Stat rather than entry.IsDir so symlinked directories are followed.
		info, err := os.Stat(fullPath)
		if err != nil {
			d.skipped(fullPath, err)
			continue
		}
		if info.IsDir() {
			d.traverse(fullPath, depth+1)
		}
	}
}

func (d *discoverer) record(dir string) {
	rel, err := filepath.Rel(d.root, dir)
	if err != nil {
		d.skipped(dir, err)
		return
	}
	rel = filepath.ToSlash(rel)
	if _, ok := d.found[rel]; ok {
		return
	}

	p := Project{Path: rel, Dir: dir}
	p.Manifest, p.ManifestErr = LoadManifest(dir, d.opts.Manifest)
	p.Runtime = DetectRuntime(rel, dir, d.opts.Runtimes)
	d.found[rel] = p
}

func (d *discoverer) skipped(path string, err error) {
	if d.opts.OnSkip != nil {
		d.opts.OnSkip(path, err)
	}
}
