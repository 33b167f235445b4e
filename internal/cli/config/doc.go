// Package config defines the revgate-cli configuration file.
//
// The file lives at ~/.revgate/cli.yaml and stores connection
// defaults so they do not have to repeat on every invocation. Flags
// and REVGATE_* environment variables always win over the file.
package config
