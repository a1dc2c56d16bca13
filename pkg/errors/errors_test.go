package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypeForStatus(t *testing.T) {
	tests := []struct {
		status   int
		expected ErrorType
	}{
		{http.StatusOK, ""},
		{http.StatusUnauthorized, ErrorTypeAuth},
		{http.StatusForbidden, ErrorTypeAuth},
		{http.StatusNotFound, ErrorTypeNotFound},
		{http.StatusTooManyRequests, ErrorTypeRateLimit},
		{http.StatusBadRequest, ErrorTypeBadRequest},
		{http.StatusInternalServerError, ErrorTypeServerError},
		{http.StatusBadGateway, ErrorTypeServerError},
		{http.StatusFound, ErrorTypeUnknown},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("status %d", tt.status), func(t *testing.T) {
			assert.Equal(t, tt.expected, TypeForStatus(tt.status))
		})
	}
}

func TestTypeForGraphCode(t *testing.T) {
	assert.Equal(t, ErrorTypeAuth, TypeForGraphCode(190, ErrorTypeBadRequest))
	assert.Equal(t, ErrorTypeRateLimit, TypeForGraphCode(4, ErrorTypeBadRequest))
	assert.Equal(t, ErrorTypeRateLimit, TypeForGraphCode(613, ErrorTypeBadRequest))
	assert.Equal(t, ErrorTypeBadRequest, TypeForGraphCode(100, ErrorTypeBadRequest))
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(ErrorTypeNetwork))
	assert.True(t, IsRetryable(ErrorTypeRateLimit))
	assert.True(t, IsRetryable(ErrorTypeServerError))
	assert.False(t, IsRetryable(ErrorTypeAuth))
	assert.False(t, IsRetryable(ErrorTypeNotFound))
	assert.False(t, IsRetryable(ErrorTypeParsing))
	assert.False(t, IsRetryable(ErrorTypeBadRequest))

	assert.True(t, IsRetryableStatusCode(0))
	assert.True(t, IsRetryableStatusCode(503))
	assert.False(t, IsRetryableStatusCode(401))
}

func TestAsAndStatusCode(t *testing.T) {
	base := New(ErrorTypeAuth, http.StatusUnauthorized, "invalid token")
	wrapped := fmt.Errorf("fetching account: %w", base)

	apiErr, ok := As(wrapped)
	assert.True(t, ok)
	assert.Same(t, base, apiErr)
	assert.True(t, IsType(wrapped, ErrorTypeAuth))
	assert.False(t, IsType(wrapped, ErrorTypeNotFound))
	assert.Equal(t, http.StatusUnauthorized, StatusCode(wrapped))
	assert.Equal(t, 0, StatusCode(fmt.Errorf("plain")))
	assert.Equal(t, "auth error (code 401): invalid token", base.Error())
}
