package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind - stable machine-readable failure category
type Kind string

const (
	KindConfiguration        Kind = "configuration_error"
	KindFileTooLarge         Kind = "file_too_large"
	KindUnsupportedMediaType Kind = "unsupported_media_type"
	KindCorruptImage         Kind = "corrupt_image"
	KindInstructionsTooLong  Kind = "instructions_too_long"
	KindInvalidFramework     Kind = "invalid_framework"
	KindRateLimited          Kind = "rate_limited"
	KindTimeout              Kind = "timeout"
	KindConnectionFailure    Kind = "connection_failure"
	KindUpstream             Kind = "upstream_error"
	KindServiceUnavailable   Kind = "service_unavailable"
	KindInternal             Kind = "internal_error"
)

// Error carries a Kind plus a human-readable message. UpstreamStatus and
// UpstreamBody are only set for KindUpstream.
type Error struct {
	Kind           Kind
	Message        string
	UpstreamStatus int
	UpstreamBody   string
	cause          error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// New - create a typed error
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap - create a typed error keeping the underlying cause for logs.
// The cause is never part of the boundary message.
func Wrap(kind Kind, cause error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), cause: cause}
}

// Upstream - non-2xx, non-429 response from the inference endpoint
func Upstream(status int, body string) *Error {
	return &Error{
		Kind:           KindUpstream,
		Message:        fmt.Sprintf("AI service error (status %d)", status),
		UpstreamStatus: status,
		UpstreamBody:   body,
	}
}

// KindOf - extract the Kind from any error, KindInternal if untyped
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// IsKind - check whether err carries the given kind
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// HTTPStatus - map an error to the status code returned across the boundary.
// Upstream errors pass the upstream status through.
func HTTPStatus(err error) int {
	var ae *Error
	if !errors.As(err, &ae) {
		return http.StatusInternalServerError
	}

	switch ae.Kind {
	case KindFileTooLarge:
		return http.StatusRequestEntityTooLarge
	case KindUnsupportedMediaType:
		return http.StatusUnsupportedMediaType
	case KindCorruptImage, KindInstructionsTooLong, KindInvalidFramework:
		return http.StatusBadRequest
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindTimeout:
		return http.StatusGatewayTimeout
	case KindConnectionFailure, KindServiceUnavailable:
		return http.StatusServiceUnavailable
	case KindUpstream:
		if ae.UpstreamStatus > 0 {
			return ae.UpstreamStatus
		}
		return http.StatusBadGateway
	case KindConfiguration:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
