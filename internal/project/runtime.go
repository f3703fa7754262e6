package project

import (
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/examples-hub/hubrun/internal/config"
)

// Runtime is the JavaScript runtime and package manager a project uses.
type Runtime string

const (
	RuntimeYarn Runtime = config.RuntimeYarn
	RuntimeBun  Runtime = config.RuntimeBun
	RuntimeDeno Runtime = config.RuntimeDeno
)

// RuntimeMarker defines a file whose presence selects a runtime.
type RuntimeMarker struct {
	File    string
	Runtime Runtime
}

// runtimeMarkers defines the auto-detection order. First match wins;
// projects without any marker use yarn.
var runtimeMarkers = []RuntimeMarker{
	{"bun.lockb", RuntimeBun},
	{"bun.lock", RuntimeBun},
	{"deno.json", RuntimeDeno},
	{"deno.jsonc", RuntimeDeno},
	{"deno.lock", RuntimeDeno},
}

// DetectRuntime resolves the runtime of the project at relPath (slash-separated,
// relative to the discovery root) located in dir. Configured overrides win over
// marker files.
func DetectRuntime(relPath, dir string, overrides []config.RuntimeOverride) Runtime {
	for _, o := range overrides {
		if matchesOverride(o.Path, relPath) {
			return Runtime(o.Runtime)
		}
	}
	for _, marker := range runtimeMarkers {
		if _, err := os.Stat(filepath.Join(dir, marker.File)); err == nil {
			return marker.Runtime
		}
	}
	return RuntimeYarn
}

// matchesOverride reports whether relPath is pattern, lies below it, or
// matches it as a path.Match glob.
func matchesOverride(pattern, relPath string) bool {
	pattern = strings.TrimSuffix(pattern, "/")
	if relPath == pattern || strings.HasPrefix(relPath, pattern+"/") {
		return true
	}
	ok, err := path.Match(pattern, relPath)
	return err == nil && ok
}
