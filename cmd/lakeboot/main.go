// Package main is the entry point for the lakeboot binary.
package main

import (
	"os"

	"lakeboot/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}
