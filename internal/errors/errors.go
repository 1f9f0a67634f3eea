// Package errors defines the typed error kinds surfaced by the catalog core
// and the services around it. Errors carry a kind so the route layer can pick
// a status code with errors.Is instead of string matching.
package errors

import (
	"fmt"
)

// CatalogError represents a classified failure.
type CatalogError struct {
	Kind    string
	Message string
	Cause   error
}

func (e *CatalogError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *CatalogError) Unwrap() error {
	return e.Cause
}

// Is matches any CatalogError of the same kind, so the sentinels below work
// with errors.Is regardless of message or cause.
func (e *CatalogError) Is(target error) bool {
	t, ok := target.(*CatalogError)
	return ok && t.Kind == e.Kind
}

// Error kind constants
const (
	KindUpstreamUnavailable  = "UPSTREAM_UNAVAILABLE"
	KindLoginThrottled       = "LOGIN_THROTTLED"
	KindNotFound             = "NOT_FOUND"
	KindMalformedPayload     = "MALFORMED_PAYLOAD"
	KindInvalidQuery         = "INVALID_QUERY"
	KindInvalidMediaType     = "INVALID_MEDIA_TYPE"
	KindUnauthorized         = "UNAUTHORIZED"
	KindTokenExpired         = "TOKEN_EXPIRED"
	KindInvalidUpload        = "INVALID_UPLOAD"
	KindConfigurationInvalid = "CONFIGURATION_INVALID"
)

// Sentinels for errors.Is.
var (
	ErrUpstreamUnavailable = &CatalogError{Kind: KindUpstreamUnavailable, Message: "upstream unavailable"}
	ErrLoginThrottled      = &CatalogError{Kind: KindLoginThrottled, Message: "too many login attempts"}
	ErrNotFound            = &CatalogError{Kind: KindNotFound, Message: "not found"}
	ErrMalformedPayload    = &CatalogError{Kind: KindMalformedPayload, Message: "malformed upstream payload"}
	ErrInvalidQuery        = &CatalogError{Kind: KindInvalidQuery, Message: "query must not be empty"}
	ErrInvalidMediaType    = &CatalogError{Kind: KindInvalidMediaType, Message: "media type must be movie or tv"}
	ErrUnauthorized        = &CatalogError{Kind: KindUnauthorized, Message: "unauthorized"}
	ErrTokenExpired        = &CatalogError{Kind: KindTokenExpired, Message: "token expired"}
	ErrInvalidUpload       = &CatalogError{Kind: KindInvalidUpload, Message: "invalid upload"}
)

// New creates a new CatalogError
func New(kind, message string, cause error) *CatalogError {
	return &CatalogError{
		Kind:    kind,
		Message: message,
		Cause:   cause,
	}
}

// NewUpstreamError reports an upstream call that produced no usable data.
func NewUpstreamError(endpoint string, cause error) *CatalogError {
	return New(KindUpstreamUnavailable, fmt.Sprintf("request to %s failed", endpoint), cause)
}

// NewNotFoundError reports a missing catalog entry or stored record.
func NewNotFoundError(what string) *CatalogError {
	return New(KindNotFound, fmt.Sprintf("%s not found", what), nil)
}

// NewInvalidMediaTypeError reports a media type outside movie/tv.
func NewInvalidMediaTypeError(mediaType string) *CatalogError {
	return New(KindInvalidMediaType, fmt.Sprintf("unsupported media type: %q", mediaType), nil)
}

// NewInvalidUploadError reports a rejected custom-video upload.
func NewInvalidUploadError(message string, cause error) *CatalogError {
	return New(KindInvalidUpload, message, cause)
}

// NewConfigurationError creates a configuration-related error
func NewConfigurationError(message string, cause error) *CatalogError {
	return New(KindConfigurationInvalid, message, cause)
}
