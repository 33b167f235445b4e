// Package command provides CLI command definitions for revgate-cli.
package command

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	cliconfig "github.com/revgate-io/revgate/internal/cli/config"
	"github.com/revgate-io/revgate/internal/cli/connection"
)

// Build information, set via ldflags.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// App creates the CLI application.
func App() *cli.App {
	app := &cli.App{
		Name:    "revgate-cli",
		Usage:   "RevGate token revocation management tool",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildTime),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			TokenCommand(),
			StatsCommand(),
			HealthCommand(),
		},
		Before: func(c *cli.Context) error {
			cfg, err := cliconfig.Load(c.String("config"))
			if err != nil {
				return err
			}
			c.App.Metadata["cliConfig"] = cfg
			return nil
		},
	}

	return app
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "RevGate server address (e.g., localhost:5280)",
			EnvVars: []string{"REVGATE_SERVER"},
		},
		&cli.StringFlag{
			Name:    "credential",
			Aliases: []string{"c"},
			Usage:   "Bearer credential for authenticated endpoints",
			EnvVars: []string{"REVGATE_CREDENTIAL"},
		},
		&cli.StringFlag{
			Name:  "config",
			Usage: "Path to CLI config file",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"V"},
			Usage:   "Enable verbose output",
		},
	}
}

// GlobalFlags holds the resolved global flag values.
type GlobalFlags struct {
	Server     string
	Credential string
	Output     string
	Verbose    bool
}

// ParseGlobalFlags extracts global flags from context, falling back
// to the CLI config file for anything left unset.
func ParseGlobalFlags(c *cli.Context) *GlobalFlags {
	flags := &GlobalFlags{
		Server:     c.String("server"),
		Credential: c.String("credential"),
		Output:     c.String("output"),
		Verbose:    c.Bool("verbose"),
	}

	if cfg, ok := c.App.Metadata["cliConfig"].(*cliconfig.CLIConfig); ok {
		if flags.Server == "" {
			flags.Server = cfg.DefaultServer
		}
		if flags.Credential == "" {
			flags.Credential = cfg.Credential
		}
		if flags.Output == "" {
			flags.Output = cfg.DefaultOutput
		}
	}
	if flags.Output == "" {
		flags.Output = "table"
	}

	return flags
}

// NewClient builds the HTTP client from the resolved flags.
func NewClient(c *cli.Context) *connection.HTTPClient {
	flags := ParseGlobalFlags(c)
	return connection.NewHTTPClient(flags.Server, flags.Credential)
}

// PrintError prints an error message to stderr.
func PrintError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}

// PrintSuccess prints a success message to stdout.
func PrintSuccess(format string, args ...any) {
	fmt.Printf(format+"\n", args...)
}
