package browser

import (
	"errors"
	"strings"
)

// connectionErrorPatterns are substrings whose presence in an error message
// (case-insensitive) marks it as a connection-level failure rather than a
// page-level one. The classifier is deliberately a flat substring list: the
// browser driver's error shape is outside our control, and only the
// driver's own error kind is ever run through it (see IsConnectionError).
var connectionErrorPatterns = []string{
	"AlreadyClosed",
	"Ws(AlreadyClosed)",
	"WebSocket",
	"connection",
	"ConnectionClosed",
	"channel closed",
	"browser closed",
	"target closed",
	"session closed",
	"pipe",
	"disconnected",
	"not connected",
	"may be dead",
	"Timeout creating page",
	"Timeout setting",
}

// DriverError wraps an error raised by the underlying browser driver, so
// IsConnectionError can distinguish driver-level failures (which may be
// classified as connection errors) from every other kind of error (which
// never are, even if their message happens to contain a matching substring).
type DriverError struct {
	Err error
}

func (e *DriverError) Error() string { return e.Err.Error() }
func (e *DriverError) Unwrap() error { return e.Err }

// IsConnectionError reports whether err represents a dead/closing browser
// connection. Only errors that wrap a *DriverError are classified (whether
// directly or via models.AppError's Unwrap chain); any other error kind
// returns false regardless of its message.
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}
	var de *DriverError
	if !errors.As(err, &de) {
		return false
	}
	return isConnectionErrorString(de.Error())
}

// isConnectionErrorString is the pure substring classifier, exposed for
// testing against the literal pattern list.
func isConnectionErrorString(msg string) bool {
	lower := strings.ToLower(msg)
	for _, p := range connectionErrorPatterns {
		if strings.Contains(lower, strings.ToLower(p)) {
			return true
		}
	}
	return false
}
