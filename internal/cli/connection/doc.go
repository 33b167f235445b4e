// Package connection provides server communication for revgate-cli.
//
// It wraps a plain HTTP client with the credential header handling
// and response envelope parsing the RevGate API uses.
package connection
