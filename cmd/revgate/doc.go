// Package main provides the entry point for revgate, the stateless
// token revocation gateway.
package main
