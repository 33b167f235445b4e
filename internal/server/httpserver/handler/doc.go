// Package handler provides HTTP request handlers for RevGate.
//
// This package implements the HTTP API endpoints for token issuance,
// revocation, status checks, and administrative statistics.
package handler
