// Package main provides the entry point for revgate-cli, the
// command-line management tool for RevGate.
package main
