// Package main provides the HomeQL command-line entry point.
package main

import (
	"os"

	"github.com/homestack-labs/homeql/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
