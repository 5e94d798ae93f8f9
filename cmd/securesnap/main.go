// Package main provides the entry point for the securesnap CLI.
//
// securesnap encrypts messages locally and exchanges them through a
// SecureSnap server for one-time reading.
package main

import (
	"fmt"
	"os"

	"github.com/swissmarley/secure-snap/internal/cli/command"
)

func main() {
	app := command.App()

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
