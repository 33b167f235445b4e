package logger

import (
	"log/slog"
	"strings"
)

// Value prefixes that get partial masking. Token IDs are referenced
// all over the logs, so they keep enough of the body to correlate.
var sensitiveValuePrefixes = []string{
	"rgtk-", // token ID
}

// Values with these markers are credentials; they are never logged
// even partially.
var sensitiveValueMarkers = []string{
	"eyJ", // base64url JWT header, raw bearer credential
}

// Key patterns that force full redaction of the value.
var sensitiveKeyPatterns = []string{
	"password",
	"secret",
	"credential",
	"bearer",
	"passphrase",
	"jwt",
}

// redactedValue is the placeholder for redacted sensitive data.
const redactedValue = "***REDACTED***"

// redactSensitive checks if an attribute contains sensitive data
// and redacts it if necessary.
func redactSensitive(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindString {
		strVal := a.Value.String()

		for _, marker := range sensitiveValueMarkers {
			if strings.HasPrefix(strVal, marker) {
				return slog.String(a.Key, redactedValue)
			}
		}

		for _, prefix := range sensitiveValuePrefixes {
			if strings.HasPrefix(strVal, prefix) {
				return slog.String(a.Key, maskValue(strVal, prefix))
			}
		}

		keyLower := strings.ToLower(a.Key)
		for _, pattern := range sensitiveKeyPatterns {
			if strings.Contains(keyLower, pattern) {
				if strVal != "" {
					return slog.String(a.Key, redactedValue)
				}
				break
			}
		}
	}

	// Handle nested groups recursively
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		newAttrs := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			newAttrs[i] = redactSensitive(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(newAttrs...)}
	}

	return a
}

// maskValue partially masks a sensitive value, keeping prefix and hints.
// Format: prefix + first 3 chars + "..." + last 3 chars
func maskValue(value, prefix string) string {
	body := value[len(prefix):]
	if len(body) > 6 {
		return prefix + body[:3] + "..." + body[len(body)-3:]
	}
	return prefix + "***"
}

// RedactString manually redacts a string value.
// Use this when a value must be sanitized before it reaches a log call.
func RedactString(value string) string {
	for _, marker := range sensitiveValueMarkers {
		if strings.HasPrefix(value, marker) {
			return redactedValue
		}
	}
	for _, prefix := range sensitiveValuePrefixes {
		if strings.HasPrefix(value, prefix) {
			return maskValue(value, prefix)
		}
	}
	return value
}

// IsSensitiveKey checks if a key name suggests sensitive content.
func IsSensitiveKey(key string) bool {
	keyLower := strings.ToLower(key)
	for _, pattern := range sensitiveKeyPatterns {
		if strings.Contains(keyLower, pattern) {
			return true
		}
	}
	return false
}
