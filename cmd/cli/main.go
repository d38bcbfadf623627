// Package main is the entry point for the caseplot CLI.
package main

import (
	"os"

	"caseplot/cmd/cli/cmd"
	"caseplot/internal/errors"
	"caseplot/internal/logging"
)

func main() {
	err := cmd.Execute()
	logging.Sync()
	if err != nil {
		os.Exit(errors.ExitCode(err))
	}
}
