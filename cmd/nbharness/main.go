package main

import (
	"os"

	"nbharness/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
