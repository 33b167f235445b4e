// Package output provides output formatting for revgate-cli.
//
// Commands build their result once and render it as a table, JSON,
// or YAML depending on the --output flag.
package output
