package main

import (
	"os"

	"propinfo/internal/ui/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:]))
}
