// Package main provides the entry point for revgate-cli.
//
// revgate-cli issues, revokes and inspects tokens against a running
// revgate server.
package main

import (
	"fmt"
	"os"

	"github.com/revgate-io/revgate/internal/cli/command"
)

func main() {
	app := command.App()

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
