// Package localserver serves the management API over a Unix domain
// socket.
//
// Local operators and sidecars get admin access without presenting a
// credential; the socket file's permissions are the access control.
// The socket serves the same HTTP API as the TCP listener, minus the
// validation gate and rate limiting.
package localserver
