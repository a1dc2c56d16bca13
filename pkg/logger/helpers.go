package logger

import (
	"time"

	"github.com/google/uuid"
)

// WithRunID tags every entry of one command invocation with a fresh id
func WithRunID(l Logger) (Logger, string) {
	id := uuid.NewString()
	return l.WithField("run_id", id), id
}

// LogRequest logs one Graph API round trip. The access token never reaches
// the log because callers pass the path without its query string.
func LogRequest(l Logger, method, path string, statusCode int, duration time.Duration) {
	fields := map[string]interface{}{
		"method":      method,
		"path":        path,
		"status_code": statusCode,
		"duration":    duration,
	}

	switch {
	case statusCode >= 200 && statusCode < 300:
		l.DebugWithFields("Graph API request completed", fields)
	case statusCode == 0:
		l.WarnWithFields("Graph API request failed before a response", fields)
	default:
		l.WarnWithFields("Graph API request returned an error status", fields)
	}
}

// LogRateLimit logs a local wait imposed by the request limiter
func LogRateLimit(l Logger, path string, wait time.Duration) {
	l.WithFields(map[string]interface{}{
		"path":   path,
		"wait":   wait,
		"action": "rate_limited",
	}).Info("Request budget exhausted, waiting")
}

// LogDegraded logs a per-post failure that the report absorbs
func LogDegraded(l Logger, mediaID, stage string, err error) {
	l.WithError(err).WithFields(map[string]interface{}{
		"media_id": mediaID,
		"stage":    stage,
	}).Warn("Post enrichment degraded")
}
