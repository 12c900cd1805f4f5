package battle

import (
	"errors"
	"fmt"
)

// Error represents a failed session operation.
//
// The taxonomy is small and every code maps to a distinct caller reaction:
// retry the whole operation, refresh the photo list, or surface an access
// failure. Cleanup failures after a committed merge are NOT errors of this
// type - they are logged and swallowed by the coordinator.
type Error struct {
	// Code identifies the failure category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// SessionID identifies the affected session.
	SessionID string

	// PhotoID identifies the photo involved, when there is one.
	PhotoID string
}

// ErrorCode categorizes session operation failures.
type ErrorCode string

const (
	// ErrCodeConcurrentModification means the session's version token moved
	// between the operation's read and its write - most likely a vote landed
	// mid-merge. The caller should retry from the top; no partial state was
	// written.
	ErrCodeConcurrentModification ErrorCode = "CONCURRENT_MODIFICATION"

	// ErrCodeAlreadyMerged means the two ids already resolve to the same
	// canonical photo. The merge is a no-op, not a failure to surface loudly.
	ErrCodeAlreadyMerged ErrorCode = "ALREADY_MERGED"

	// ErrCodePhotoNotFound means the caller referenced a retired or unknown
	// photo id. Surfaced to the user as "photo no longer exists".
	ErrCodePhotoNotFound ErrorCode = "PHOTO_NOT_FOUND"

	// ErrCodeSessionNotFound means no session exists with the given id.
	ErrCodeSessionNotFound ErrorCode = "SESSION_NOT_FOUND"

	// ErrCodePermissionDenied means the caller is not the session owner.
	ErrCodePermissionDenied ErrorCode = "PERMISSION_DENIED"

	// ErrCodeInvalidSecretKey means results access was attempted with a key
	// that does not match the session's current secret.
	ErrCodeInvalidSecretKey ErrorCode = "INVALID_SECRET_KEY"

	// ErrCodeLinkExpired means the secret key matched but the results link
	// is past its expiry.
	ErrCodeLinkExpired ErrorCode = "LINK_EXPIRED"
)

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.SessionID != "" && e.PhotoID != "":
		return fmt.Sprintf("%s: %s (session=%s, photo=%s)", e.Code, e.Message, e.SessionID, e.PhotoID)
	case e.SessionID != "":
		return fmt.Sprintf("%s: %s (session=%s)", e.Code, e.Message, e.SessionID)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

// CodeOf extracts the ErrorCode from err, unwrapping as needed.
// Returns "" if err is not a battle error.
func CodeOf(err error) ErrorCode {
	var be *Error
	if errors.As(err, &be) {
		return be.Code
	}
	return ""
}

// IsConflict reports whether err is a version-token mismatch.
func IsConflict(err error) bool { return CodeOf(err) == ErrCodeConcurrentModification }

// IsAlreadyMerged reports whether err is a no-op merge.
func IsAlreadyMerged(err error) bool { return CodeOf(err) == ErrCodeAlreadyMerged }

// IsNotFound reports whether err is a missing photo or session.
func IsNotFound(err error) bool {
	c := CodeOf(err)
	return c == ErrCodePhotoNotFound || c == ErrCodeSessionNotFound
}

// NewConflictError creates an Error for a version-token mismatch.
func NewConflictError(sessionID string) *Error {
	return &Error{
		Code:      ErrCodeConcurrentModification,
		Message:   "session changed underneath the operation",
		SessionID: sessionID,
	}
}

// NewAlreadyMergedError creates an Error for a no-op merge.
func NewAlreadyMergedError(sessionID, canonicalID string) *Error {
	return &Error{
		Code:      ErrCodeAlreadyMerged,
		Message:   "both ids resolve to the same photo",
		SessionID: sessionID,
		PhotoID:   canonicalID,
	}
}

// NewPhotoNotFoundError creates an Error for a retired or unknown photo id.
func NewPhotoNotFoundError(sessionID, photoID string) *Error {
	return &Error{
		Code:      ErrCodePhotoNotFound,
		Message:   "photo no longer exists",
		SessionID: sessionID,
		PhotoID:   photoID,
	}
}

// NewSessionNotFoundError creates an Error for an unknown session id.
func NewSessionNotFoundError(sessionID string) *Error {
	return &Error{
		Code:      ErrCodeSessionNotFound,
		Message:   "session does not exist",
		SessionID: sessionID,
	}
}

// NewPermissionDeniedError creates an Error for a non-owner caller.
func NewPermissionDeniedError(sessionID string) *Error {
	return &Error{
		Code:      ErrCodePermissionDenied,
		Message:   "caller does not own this session",
		SessionID: sessionID,
	}
}

// NewInvalidSecretKeyError creates an Error for a wrong results key.
func NewInvalidSecretKeyError(sessionID string) *Error {
	return &Error{
		Code:      ErrCodeInvalidSecretKey,
		Message:   "secret key does not match",
		SessionID: sessionID,
	}
}

// NewLinkExpiredError creates an Error for an expired results link.
func NewLinkExpiredError(sessionID string) *Error {
	return &Error{
		Code:      ErrCodeLinkExpired,
		Message:   "results link has expired",
		SessionID: sessionID,
	}
}
