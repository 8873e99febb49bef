package redpanda

import "strings"

// classifyFailureCode maps a task error message to a stable code for
// metrics labels. Mirrors the API error taxonomy so dashboards line up
// with HTTP error envelopes.
func classifyFailureCode(msg string) string {
	s := strings.ToLower(strings.TrimSpace(msg))
	if s == "" {
		return "INTERNAL"
	}

	switch {
	case strings.Contains(s, "not found"):
		return "NOT_FOUND"
	case strings.Contains(s, "invalid argument"),
		strings.Contains(s, "unmarshal"):
		return "INVALID_ARGUMENT"
	case strings.Contains(s, "timeout"),
		strings.Contains(s, "deadline exceeded"):
		return "TIMEOUT"
	case strings.Contains(s, "rate limit"):
		return "RATE_LIMITED"
	default:
		return "INTERNAL"
	}
}
