package relay

import (
	"fmt"
	"net/http"
)

// Kind identifies a relay failure.
type Kind string

const (
	// KindURLRequired is returned when the request body has no url.
	KindURLRequired Kind = "url_required"
	// KindInvalidBody is returned when the request body isn't a valid JSON object.
	KindInvalidBody Kind = "invalid_body"
	// KindInvalidURL is returned when the url can't be parsed or uses a refused scheme.
	KindInvalidURL Kind = "invalid_url"
	// KindDestinationForbidden is returned when the url host is refused by the destination policy.
	KindDestinationForbidden Kind = "destination_forbidden"
	// KindUpstreamUnreachable is returned on transport failures (dns, connection, tls, timeout).
	KindUpstreamUnreachable Kind = "upstream_unreachable"
	// KindUpstreamStatus is returned when the upstream answers with a non 2xx status.
	KindUpstreamStatus Kind = "upstream_status"
	// KindNotMedia is returned when the upstream resource is neither an image nor a video.
	KindNotMedia Kind = "not_media"
	// KindInternal is returned on unexpected failures.
	KindInternal Kind = "internal"
)

// Error is a relay failure mapped to a plain text answer.
type Error struct {
	cause      error
	Kind       Kind
	Message    string
	StatusCode int
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}

	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Cause returns the underlying error if any.
func (e *Error) Cause() error {
	return e.cause
}

func newError(kind Kind, cause error) *Error {
	res := &Error{Kind: kind, cause: cause}

	switch kind {
	case KindURLRequired:
		res.StatusCode = http.StatusBadRequest
		res.Message = "URL is required"
	case KindInvalidBody:
		res.StatusCode = http.StatusBadRequest
		res.Message = "Invalid JSON body"
	case KindInvalidURL:
		res.StatusCode = http.StatusBadRequest
		res.Message = "URL is invalid"
	case KindDestinationForbidden:
		res.StatusCode = http.StatusForbidden
		res.Message = "URL destination is not allowed"
	case KindUpstreamUnreachable:
		res.StatusCode = http.StatusBadGateway
		res.Message = "Failed to fetch URL: upstream unreachable"
	case KindNotMedia:
		res.StatusCode = http.StatusBadRequest
		res.Message = "URL is not an image or video"
	default:
		res.Kind = KindInternal
		res.StatusCode = http.StatusInternalServerError
		res.Message = http.StatusText(http.StatusInternalServerError)
	}

	return res
}

func newUpstreamStatusError(statusCode int) *Error {
	return &Error{
		Kind:       KindUpstreamStatus,
		StatusCode: http.StatusBadRequest,
		Message:    fmt.Sprintf("Failed to fetch URL: HTTP %d", statusCode),
	}
}
