package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
)

func TestClassifyProviderError(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		wantKind FailureKind
	}{
		{
			name:     "deadline exceeded maps to timeout",
			err:      context.DeadlineExceeded,
			wantKind: FailureTimeout,
		},
		{
			name:     "wrapped deadline exceeded maps to timeout",
			err:      fmt.Errorf("request: %w", context.DeadlineExceeded),
			wantKind: FailureTimeout,
		},
		{
			name:     "502 maps to gateway error",
			err:      &openai.APIError{HTTPStatusCode: http.StatusBadGateway, Message: "bad gateway"},
			wantKind: FailureGateway,
		},
		{
			name:     "503 maps to gateway error",
			err:      &openai.APIError{HTTPStatusCode: http.StatusServiceUnavailable, Message: "down"},
			wantKind: FailureGateway,
		},
		{
			name:     "429 maps to gateway error",
			err:      &openai.APIError{HTTPStatusCode: http.StatusTooManyRequests, Message: "slow down"},
			wantKind: FailureGateway,
		},
		{
			name:     "401 maps to other",
			err:      &openai.APIError{HTTPStatusCode: http.StatusUnauthorized, Message: "bad key"},
			wantKind: FailureOther,
		},
		{
			name:     "unknown error maps to other",
			err:      errors.New("connection refused"),
			wantKind: FailureOther,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			failure := classifyProviderError(tc.err)
			assert.Equal(t, tc.wantKind, failure.Kind)
			assert.ErrorIs(t, failure, tc.err)
		})
	}
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, FailureTimeout, KindOf(NewFailure(FailureTimeout, "", nil)))
	assert.Equal(t, FailureOther, KindOf(errors.New("plain")))

	wrapped := fmt.Errorf("attempt 2: %w", NewFailure(FailureParse, "bad json", nil))
	assert.Equal(t, FailureParse, KindOf(wrapped))
}

func TestRetryable(t *testing.T) {
	assert.True(t, Retryable(NewFailure(FailureTimeout, "", nil)))
	assert.True(t, Retryable(NewFailure(FailureGateway, "", nil)))
	assert.True(t, Retryable(NewFailure(FailureParse, "", nil)))
	assert.False(t, Retryable(NewFailure(FailureQuotaExceeded, "", nil)))
	assert.False(t, Retryable(NewFailure(FailureOther, "", nil)))
	assert.False(t, Retryable(errors.New("unclassified")))
}

func TestNewClient_RequiresAPIKey(t *testing.T) {
	_, err := NewClient("", "", nil)
	assert.Error(t, err)
}
