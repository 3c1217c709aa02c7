package faults

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel markers for the failure classes surfaced to callers. Every
// exported operation in this module returns either a result or an error
// that wraps exactly one of these.
var (
	ErrConflict      = errors.New("conflict")
	ErrState         = errors.New("invalid state")
	ErrNotFound      = errors.New("not found")
	ErrStorage       = errors.New("storage error")
	ErrNetwork       = errors.New("network error")
	ErrServer        = errors.New("server error")
	ErrSerialization = errors.New("serialization error")
)

// Wrap tags an error with the provided marker and a display message while
// preserving the cause chain for diagnostics. The marker should be one of
// the exported sentinel errors above.
func Wrap(marker error, message string, cause error) error {
	if marker == nil {
		marker = ErrStorage
	}
	message = strings.TrimSpace(message)
	if message == "" {
		message = marker.Error()
	}
	if cause != nil {
		return fmt.Errorf("%w: %s: %w", marker, message, cause)
	}
	return fmt.Errorf("%w: %s", marker, message)
}

// Conflict reports a lifecycle invariant violation, e.g. a second open audit.
func Conflict(message string) error {
	return Wrap(ErrConflict, message, nil)
}

// State reports an invalid lifecycle transition.
func State(message string) error {
	return Wrap(ErrState, message, nil)
}

// NotFound reports a lookup miss for the named entity.
func NotFound(entity string) error {
	return Wrap(ErrNotFound, entity, nil)
}

// Storage wraps an underlying persistence failure.
func Storage(message string, cause error) error {
	return Wrap(ErrStorage, message, cause)
}

// Network wraps a transport-level failure reaching the remote service.
func Network(message string, cause error) error {
	return Wrap(ErrNetwork, message, cause)
}

// Server wraps a failure reported by the remote service itself.
func Server(message string, cause error) error {
	return Wrap(ErrServer, message, cause)
}

// Serialization wraps an encode/decode failure.
func Serialization(message string, cause error) error {
	return Wrap(ErrSerialization, message, cause)
}

// Message returns the caller-facing text of an error produced by this
// package, stripping the leading marker prefix.
func Message(err error) string {
	if err == nil {
		return ""
	}
	text := err.Error()
	for _, marker := range []error{
		ErrConflict, ErrState, ErrNotFound, ErrStorage,
		ErrNetwork, ErrServer, ErrSerialization,
	} {
		prefix := marker.Error() + ": "
		if strings.HasPrefix(text, prefix) {
			return strings.TrimPrefix(text, prefix)
		}
	}
	return text
}
