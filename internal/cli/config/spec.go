// Package config defines the revgate-cli configuration file.
package config

// CLIConfig is the configuration for revgate-cli.
type CLIConfig struct {
	// DefaultServer is the server address used when --server is absent.
	DefaultServer string `yaml:"default_server"`

	// DefaultOutput is the output format: table, json or yaml.
	DefaultOutput string `yaml:"default_output"`

	// Credential is a stored bearer credential. Optional; most
	// callers pass it per invocation instead.
	Credential string `yaml:"credential,omitempty"`
}

// Default returns the default CLI configuration.
func Default() *CLIConfig {
	return &CLIConfig{
		DefaultServer: "http://localhost:5280",
		DefaultOutput: "table",
	}
}
