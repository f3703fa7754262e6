// Command lint-all lints every project of the monorepo.
package main

import (
	"os"

	"github.com/examples-hub/hubrun/internal/cli"
)

func main() {
	os.Exit(cli.RunLint(os.Args[1:]))
}
