// Package main provides the csmstyle command.
package main

import (
	"os"

	"github.com/leapstack-labs/csmstyle/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
