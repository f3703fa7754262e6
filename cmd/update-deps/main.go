// Command update-deps updates scoped dependencies across the monorepo.
package main

import (
	"os"

	"github.com/examples-hub/hubrun/internal/cli"
)

func main() {
	os.Exit(cli.RunUpdateDeps(os.Args[1:]))
}
