package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsMatchesByKind(t *testing.T) {
	err := NewNotFoundError("movie 278")
	assert.True(t, stderrors.Is(err, ErrNotFound))
	assert.False(t, stderrors.Is(err, ErrUpstreamUnavailable))

	wrapped := fmt.Errorf("details: %w", err)
	assert.True(t, stderrors.Is(wrapped, ErrNotFound))
}

func TestUnwrapExposesCause(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := NewUpstreamError("/trending/all/week", cause)

	assert.True(t, stderrors.Is(err, cause))
	assert.True(t, stderrors.Is(err, ErrUpstreamUnavailable))
	assert.Contains(t, err.Error(), "UPSTREAM_UNAVAILABLE")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestErrorWithoutCause(t *testing.T) {
	err := NewInvalidMediaTypeError("person")
	assert.Equal(t, `INVALID_MEDIA_TYPE: unsupported media type: "person"`, err.Error())
	assert.Nil(t, err.Unwrap())
}
