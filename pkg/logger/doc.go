// Package logger wraps zerolog behind a small structured logging interface.
//
// Console output goes to stderr so that stdout carries only the report.
// When a log file is configured, entries are written there as JSON as well.
//
//	if err := logger.Initialize(&cfg.Logging); err != nil {
//	    return err
//	}
//	log, runID := logger.WithRunID(logger.GetLogger())
//	log.WithField("media_id", id).Warn("insights unavailable")
//
// Tests use NewTestLogger to capture entries, or NewNopLogger to discard them.
package logger
