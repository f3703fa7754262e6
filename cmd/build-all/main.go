// Command build-all builds every project of the monorepo.
package main

import (
	"os"

	"github.com/examples-hub/hubrun/internal/cli"
)

func main() {
	os.Exit(cli.RunBuild(os.Args[1:]))
}
