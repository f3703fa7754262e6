package deps

import (
	"regexp"
	"strings"

	"golang.org/x/mod/semver"
)

var alphaPattern = regexp.MustCompile(`(\d+\.\d+\.\d+)-alpha\.(\d+)`)

// rangePrefix strips range operators from a dependency version.
func rangePrefix(v string) string {
	return strings.TrimLeft(v, "^~>=<")
}

// canonicalAlpha returns the semver form ("v2.0.0-alpha.32") of an alpha
// version, or "" when v is not one.
func canonicalAlpha(v string) string {
	m := alphaPattern.FindStringSubmatch(v)
	if m == nil {
		return ""
	}
	c := "v" + m[1] + "-alpha." + m[2]
	if !semver.IsValid(c) {
		return ""
	}
	return c
}

// ShouldUpdate reports whether a dependency declared as current should move
// to latest. Range prefixes are ignored. Two alpha versions are compared by
// semver precedence; any other difference counts as an update.
func ShouldUpdate(current, latest string) bool {
	cur, lat := rangePrefix(current), rangePrefix(latest)
	if cur == lat {
		return false
	}
	cv, lv := canonicalAlpha(cur), canonicalAlpha(lat)
	if cv == "" || lv == "" {
		return true
	}
	return semver.Compare(lv, cv) > 0
}

// LatestAlphaOf returns the highest alpha version in versions, or "" when
// there is none.
func LatestAlphaOf(versions []string) string {
	var best, bestCanon string
	for _, v := range versions {
		if !strings.Contains(v, "-alpha.") {
			continue
		}
		c := canonicalAlpha(v)
		if c == "" {
			continue
		}
		if best == "" || semver.Compare(c, bestCanon) > 0 {
			best, bestCanon = v, c
		}
	}
	return best
}
