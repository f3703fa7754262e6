// Command install-all installs dependencies in every project of the monorepo.
package main

import (
	"os"

	"github.com/examples-hub/hubrun/internal/cli"
)

func main() {
	os.Exit(cli.RunInstall(os.Args[1:]))
}
