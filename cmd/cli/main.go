package main

import (
	"os"

	"github.com/pratik-mahalle/dashlist/internal/cli"
)

func main() {
	// Execute prints the error itself
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
