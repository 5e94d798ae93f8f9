// Package command provides CLI command definitions for securesnap.
package command

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/swissmarley/secure-snap/internal/cli/connection"
)

// Build information, set via ldflags.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "securesnap",
		Usage:   "Share secrets that destroy themselves after one read",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildTime),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			CreateCommand(),
			ReadCommand(),
			DeleteCommand(),
		},
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "SecureSnap server address (e.g., localhost:3000)",
			EnvVars: []string{"SECURESNAP_SERVER"},
			Value:   "localhost:3000",
		},
		&cli.StringFlag{
			Name:    "ca-cert",
			Usage:   "PEM file with additional trusted root certificates",
			EnvVars: []string{"SECURESNAP_CA_CERT"},
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json",
			Value:   "table",
		},
	}
}

// GlobalFlags defines flags available to all commands.
type GlobalFlags struct {
	Server string
	CACert string
	Output string
}

// ParseGlobalFlags extracts global flags from context.
func ParseGlobalFlags(c *cli.Context) *GlobalFlags {
	return &GlobalFlags{
		Server: c.String("server"),
		CACert: c.String("ca-cert"),
		Output: c.String("output"),
	}
}

// EnsureConnected builds the HTTP client from the global flags.
func EnsureConnected(c *cli.Context) (*connection.HTTPClient, error) {
	flags := ParseGlobalFlags(c)
	return connection.NewHTTPClient(flags.Server, flags.CACert)
}

// PrintError prints an error message to stderr.
func PrintError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
}
