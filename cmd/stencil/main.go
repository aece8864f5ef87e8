package main

import (
	"os"

	"github.com/arthur-debert/stencil/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
