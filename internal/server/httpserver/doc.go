// Package httpserver provides the HTTP/HTTPS server for RevGate.
//
// It uses the Go standard library net/http for implementation,
// providing RESTful API endpoints for token issuance, revocation,
// and administrative queries.
package httpserver
