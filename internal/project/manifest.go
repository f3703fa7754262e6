package project

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/gjson"

	huberrors "github.com/examples-hub/hubrun/internal/errors"
)

// Manifest represents the relevant parts of a package.json file.
// Entries whose value is not a string are left out.
type Manifest struct {
	Scripts              map[string]string
	Dependencies         map[string]string
	DevDependencies      map[string]string
	PeerDependencies     map[string]string
	OptionalDependencies map[string]string
}

// HasScript reports whether the manifest declares a non-empty script.
// A nil manifest has no scripts.
func (m *Manifest) HasScript(name string) bool {
	if m == nil {
		return false
	}
	return m.Scripts[name] != ""
}

// LoadManifest loads and parses the manifest file in dir.
// Read and parse failures are returned as manifest errors; callers
// treat them as "capability absent".
func LoadManifest(dir, fileName string) (*Manifest, error) {
	path := filepath.Join(dir, fileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, huberrors.ManifestParse(path, err)
	}
	return ParseManifest(path, data)
}

// ParseManifest parses manifest content read from path. Only malformed JSON
// is an error; an unexpected value in one section never hides the others.
func ParseManifest(path string, data []byte) (*Manifest, error) {
	if !gjson.ValidBytes(data) {
		return nil, huberrors.ManifestParse(path, fmt.Errorf("invalid JSON"))
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return nil, huberrors.ManifestParse(path, fmt.Errorf("top-level value is not an object"))
	}
	return &Manifest{
		Scripts:              stringEntries(doc, "scripts"),
		Dependencies:         stringEntries(doc, "dependencies"),
		DevDependencies:      stringEntries(doc, "devDependencies"),
		PeerDependencies:     stringEntries(doc, "peerDependencies"),
		OptionalDependencies: stringEntries(doc, "optionalDependencies"),
	}, nil
}

// stringEntries returns the string-valued members of the object at key.
func stringEntries(doc gjson.Result, key string) map[string]string {
	section := doc.Get(key)
	if !section.IsObject() {
		return nil
	}
	entries := make(map[string]string)
	section.ForEach(func(k, v gjson.Result) bool {
		if v.Type == gjson.String {
			entries[k.String()] = v.String()
		}
		return true
	})
	return entries
}
