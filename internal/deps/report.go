package deps

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/examples-hub/hubrun/internal/output"
)

var (
	rule = strings.Repeat("-", 51)
	wide = strings.Repeat("=", 80)
)

func itoa(n int) string { return strconv.Itoa(n) }

// PrintSummary prints the per-package and per-file update report.
func PrintSummary(w *output.Writer, res *Result, scope string) {
	w.Lines("", wide, output.MarkSummary+" UPDATE SUMMARY", wide)
	if len(res.Packages) == 0 {
		w.FinalSuccess("All %s* packages are already up to date!", scope)
		return
	}

	w.Println("\n📦 Package Updates:")
	for _, p := range res.Packages {
		lines := []string{
			"",
			"  " + p.Package + ":",
			fmt.Sprintf("    %s → %s", p.From, p.To),
			fmt.Sprintf("    Updated in %d files:", len(p.Files)),
		}
		for _, f := range p.Files {
			lines = append(lines, "      - "+f)
		}
		w.Lines(lines...)
	}

	w.Println("\n📁 Files Updated:")
	for _, f := range res.Files {
		lines := []string{"", "  " + f.Path + ":"}
		for _, c := range f.Changes {
			lines = append(lines, fmt.Sprintf("    - %s: %s → %s (%s)", c.Package, c.From, c.To, c.Section))
		}
		w.Lines(lines...)
	}

	w.Lines("",
		wide,
		output.MarkSummary+" STATISTICS:",
		"  - Package.json files checked: "+itoa(res.FilesChecked),
		"  - Files updated: "+itoa(len(res.Files)),
		"  - Dependencies updated: "+itoa(res.DepsUpdated()),
		"  - Unique packages updated: "+itoa(len(res.Packages)),
		wide)
}

// CommitMessage returns a suggested commit message, or "" when nothing changed.
// pin is the explicit target version, empty for the latest alphas.
func CommitMessage(res *Result, scope, pin string) string {
	if len(res.Packages) == 0 {
		return ""
	}

	var b strings.Builder
	if pin != "" {
		fmt.Fprintf(&b, "update %s* dependencies to %s\n\n", scope, pin)
	} else {
		fmt.Fprintf(&b, "update %s* dependencies to latest alpha versions\n\n", scope)
	}

	if len(res.Packages) == 1 {
		p := res.Packages[0]
		fmt.Fprintf(&b, "Updated %s from %s to %s\n", p.Package, p.From, p.To)
	} else {
		fmt.Fprintf(&b, "Updated %d %s packages:\n", len(res.Packages), strings.TrimSuffix(scope, "/"))
		for _, p := range res.Packages {
			fmt.Fprintf(&b, "- %s: %s → %s\n", p.Package, p.From, p.To)
		}
	}

	fmt.Fprintf(&b, "\nAffected %d package.json files across the monorepo.", len(res.Files))
	b.WriteString("\nAutomatically updated yarn.lock files in affected directories.")
	return b.String()
}
