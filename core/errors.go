package session

import (
	"errors"
	"strings"
)

var (
	// ErrCapabilityUnavailable means no microphone capability is configured,
	// surfaced before any state change.
	ErrCapabilityUnavailable = errors.New("microphone capability unavailable")
	// ErrPermissionDenied means microphone permission was denied, either
	// up front or while polling after the permission prompt.
	ErrPermissionDenied = errors.New("microphone permission denied")
	// ErrPermissionTimeout means the permission prompt was never answered
	// within the polling window.
	ErrPermissionTimeout = errors.New("microphone permission request timed out")
	// ErrSessionActive means Start was called while a session is running.
	ErrSessionActive = errors.New("a session is already running")
)

// isAuthorizationError splits transcription-channel errors into fatal
// authorization failures and recoverable everything-else. Authorization
// failures end the session since no later turn can succeed either.
func isAuthorizationError(err error) bool {
	if err == nil {
		return false
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"permission", "not allowed", "unauthorized", "authorization"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
