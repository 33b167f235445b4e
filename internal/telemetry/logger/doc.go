// Package logger provides structured logging for RevGate.
//
// It wraps log/slog with JSON output, dynamic level adjustment, and
// automatic redaction of token material:
//
//   - logger.go: logger construction and the global default
//   - context.go: context-aware logging with request IDs
//   - redact.go: sensitive data redaction
//
// Token IDs (rgtk- prefixed) are partially masked so log lines stay
// correlatable without ever carrying a usable credential. Raw JWTs and
// secret-looking keys are fully redacted.
package logger
