// Package command provides CLI command definitions for revgate-cli.
//
// It uses urfave/cli/v2 for command parsing. Each command talks to
// the RevGate HTTP API through the connection package and renders
// results through the output package.
package command
