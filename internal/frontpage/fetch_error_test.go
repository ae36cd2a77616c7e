package frontpage_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hnwatch/hnwatch/internal/frontpage"
)

func TestClassifyHTTPStatus(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		wantType  frontpage.ErrorType
		wantLevel frontpage.LogLevel
	}{
		{"rate limited", 429, frontpage.ErrTypeRateLimited, frontpage.LevelWarn},
		{"not found", 404, frontpage.ErrTypeNotFound, frontpage.LevelWarn},
		{"bad gateway", 502, frontpage.ErrTypeUpstream, frontpage.LevelWarn},
		{"server error", 500, frontpage.ErrTypeUpstream, frontpage.LevelWarn},
		{"teapot", 418, frontpage.ErrTypeUnexpected, frontpage.LevelError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetchErr := frontpage.ClassifyHTTPStatus(tt.status, "https://example.com/")

			assert.Equal(t, tt.wantType, fetchErr.Type)
			assert.Equal(t, tt.wantLevel, fetchErr.Level)
			assert.Equal(t, tt.status, fetchErr.StatusCode)
			assert.Contains(t, fetchErr.Error(), "https://example.com/")
		})
	}
}

func TestClassifyNetworkError(t *testing.T) {
	cause := errors.New("connection refused")

	fetchErr := frontpage.ClassifyNetworkError(cause, "https://example.com/")

	assert.Equal(t, frontpage.ErrTypeNetwork, fetchErr.Type)
	assert.Equal(t, frontpage.LevelWarn, fetchErr.Level)
	assert.ErrorIs(t, fetchErr, cause)
}
