package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/xujimc/read-me/internal/retry"
)

// PermissionState mirrors the capability query result of the host's
// permission surface.
type PermissionState string

const (
	PermissionGranted      PermissionState = "granted"
	PermissionDenied       PermissionState = "denied"
	PermissionUndetermined PermissionState = "undetermined"
)

// MicrophonePermissions is the host permission surface. Prompt asks the user
// out-of-band; the session polls Query afterwards until the state settles.
type MicrophonePermissions interface {
	Query(ctx context.Context) (PermissionState, error)
	Prompt(ctx context.Context) error
}

// ensurePermission resolves microphone permission before any state change.
// Undetermined permission triggers the prompt flow and polls until granted,
// denied, or the timeout elapses.
func (s *Session) ensurePermission(ctx context.Context) error {
	if s.permissions == nil {
		// Permission handling is delegated to the host environment.
		return nil
	}

	state, err := s.permissions.Query(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCapabilityUnavailable, err)
	}

	switch state {
	case PermissionGranted:
		return nil
	case PermissionDenied:
		return ErrPermissionDenied
	}

	if err := s.permissions.Prompt(ctx); err != nil {
		return fmt.Errorf("failed to prompt for microphone permission: %w", err)
	}

	err = retry.Poll(ctx, s.permissionPollInterval, s.permissionTimeout, s.clock,
		func(ctx context.Context) (bool, error) {
			state, err := s.permissions.Query(ctx)
			if err != nil {
				return false, fmt.Errorf("failed to query microphone permission: %w", err)
			}
			switch state {
			case PermissionGranted:
				return true, nil
			case PermissionDenied:
				return false, ErrPermissionDenied
			}
			return false, nil
		})
	if errors.Is(err, retry.ErrPollTimeout) {
		return ErrPermissionTimeout
	}

	return err
}
