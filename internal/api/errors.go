package api

import (
	"errors"
	"fmt"
)

// AuthError indicates that no credential is available or the server
// rejected it (401/403).
type AuthError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *AuthError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("auth error (%d): %s", e.StatusCode, e.Message)
	}
	return "auth error: " + e.Message
}

func (e *AuthError) Unwrap() error { return e.Err }

// RequestError is a non-success HTTP response, or a 2xx response whose
// envelope carries success:false.
type RequestError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
}

func (e *RequestError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s %s failed with status %d", e.Method, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("%s %s failed with status %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
}

// NetworkError is a transport-level failure: dial, DNS, connection reset.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error during %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// MalformedPayloadError is a live-channel message that is not a
// notification record.
type MalformedPayloadError struct {
	Payload []byte
	Err     error
}

func (e *MalformedPayloadError) Error() string {
	const maxPreview = 120
	p := e.Payload
	if len(p) > maxPreview {
		p = p[:maxPreview]
	}
	return fmt.Sprintf("malformed notification payload %q: %v", p, e.Err)
}

func (e *MalformedPayloadError) Unwrap() error { return e.Err }

// MissingTargetError is returned when a friend-request action is invoked
// on a notification without a target id.
type MissingTargetError struct {
	NotificationID int64
}

func (e *MissingTargetError) Error() string {
	return fmt.Sprintf("notification %d has no target id", e.NotificationID)
}

// IsAuthError reports whether err (or any error in its chain) is an AuthError.
func IsAuthError(err error) bool {
	var target *AuthError
	return errors.As(err, &target)
}

// IsRequestError reports whether err (or any error in its chain) is a RequestError.
func IsRequestError(err error) bool {
	var target *RequestError
	return errors.As(err, &target)
}

// IsNetworkError reports whether err (or any error in its chain) is a NetworkError.
func IsNetworkError(err error) bool {
	var target *NetworkError
	return errors.As(err, &target)
}

// IsMalformedPayload reports whether err (or any error in its chain) is a
// MalformedPayloadError.
func IsMalformedPayload(err error) bool {
	var target *MalformedPayloadError
	return errors.As(err, &target)
}

// IsMissingTarget reports whether err (or any error in its chain) is a
// MissingTargetError.
func IsMissingTarget(err error) bool {
	var target *MissingTargetError
	return errors.As(err, &target)
}
