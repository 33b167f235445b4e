// Package shutdown provides graceful shutdown handling.
//
// The server registers teardown hooks (HTTP drain, store close, audit
// archive close) and blocks in Wait until SIGINT or SIGTERM arrives.
// Hooks run in reverse registration order under a shared timeout.
package shutdown
