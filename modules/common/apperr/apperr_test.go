package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	err := New(KindRateLimited, "slow down")
	assert.Equal(t, KindRateLimited, KindOf(err))
	assert.True(t, IsKind(err, KindRateLimited))

	// Typed errors survive fmt wrapping.
	wrapped := fmt.Errorf("pipeline failed: %w", err)
	assert.Equal(t, KindRateLimited, KindOf(wrapped))

	assert.Equal(t, KindInternal, KindOf(errors.New("untyped")))
	assert.Equal(t, KindInternal, KindOf(nil))
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(KindConnectionFailure, cause, "unable to connect")

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "unable to connect")
	assert.Contains(t, err.Error(), "connection reset")
}

func TestHTTPStatusMapping(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{New(KindFileTooLarge, "x"), http.StatusRequestEntityTooLarge},
		{New(KindUnsupportedMediaType, "x"), http.StatusUnsupportedMediaType},
		{New(KindCorruptImage, "x"), http.StatusBadRequest},
		{New(KindInstructionsTooLong, "x"), http.StatusBadRequest},
		{New(KindInvalidFramework, "x"), http.StatusBadRequest},
		{New(KindRateLimited, "x"), http.StatusTooManyRequests},
		{New(KindTimeout, "x"), http.StatusGatewayTimeout},
		{New(KindConnectionFailure, "x"), http.StatusServiceUnavailable},
		{New(KindServiceUnavailable, "x"), http.StatusServiceUnavailable},
		{New(KindInternal, "x"), http.StatusInternalServerError},
		{errors.New("untyped"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, HTTPStatus(tt.err), "error %v", tt.err)
	}
}

func TestUpstreamStatusPassthrough(t *testing.T) {
	err := Upstream(http.StatusBadGateway, `{"error":"x"}`)
	assert.Equal(t, KindUpstream, err.Kind)
	assert.Equal(t, http.StatusBadGateway, HTTPStatus(err))
	assert.Equal(t, `{"error":"x"}`, err.UpstreamBody)

	// A malformed-body upstream error has no status; default to 502.
	assert.Equal(t, http.StatusBadGateway, HTTPStatus(New(KindUpstream, "malformed response")))
}
