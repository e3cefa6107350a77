// Command specd validates and converts Cinema Spec D catalogs.
package main

import (
	"os"

	"github.com/shapestone/shape-specd/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
