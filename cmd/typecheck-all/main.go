// Command typecheck-all typechecks every project of the monorepo.
package main

import (
	"os"

	"github.com/examples-hub/hubrun/internal/cli"
)

func main() {
	os.Exit(cli.RunTypecheck(os.Args[1:]))
}
