// Command objtok resolves @path@ tokens in YAML, JSON and CUE documents.
package main

import (
	"os"

	"github.com/roach88/objtok/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
