// Package main provides the entry point for the sqldiff CLI tool.
package main

import (
	"fmt"
	"os"

	"github.com/Sumatoshi-tech/sqldiff/cmd/sqldiff/commands"
	"github.com/Sumatoshi-tech/sqldiff/pkg/version"
)

func main() {
	version.InitBinaryVersion()

	err := commands.NewRootCommand().Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}

	os.Exit(commands.ExitCode(err))
}
