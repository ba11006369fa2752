package main

import (
	"os"

	"github.com/panelarc/panelarc/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
