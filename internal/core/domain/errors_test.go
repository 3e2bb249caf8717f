package domain

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrNotConfigured", ErrNotConfigured},
		{"ErrEmptyCorpus", ErrEmptyCorpus},
		{"ErrIndexNotFound", ErrIndexNotFound},
		{"ErrEmbeddingMismatch", ErrEmbeddingMismatch},
		{"ErrProvider", ErrProvider},
		{"ErrProviderTimeout", ErrProviderTimeout},
		{"ErrRateLimited", ErrRateLimited},
		{"ErrAuthInvalid", ErrAuthInvalid},
		{"ErrProviderUnavailable", ErrProviderUnavailable},
		{"ErrMalformedResponse", ErrMalformedResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestErrEmptyCorpus_DistinctFromIndexNotFound(t *testing.T) {
	assert.False(t, errors.Is(ErrEmptyCorpus, ErrIndexNotFound))
	assert.False(t, errors.Is(ErrIndexNotFound, ErrEmptyCorpus))
}

func TestProviderError_MatchesCategoryKindAndCause(t *testing.T) {
	cause := context.DeadlineExceeded
	err := NewProviderError("openai", "chat", ErrProviderTimeout, cause)

	assert.True(t, errors.Is(err, ErrProvider))
	assert.True(t, errors.Is(err, ErrProviderTimeout))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.False(t, errors.Is(err, ErrRateLimited))
	assert.Equal(t, "openai chat: provider timeout: context deadline exceeded", err.Error())
}

func TestProviderError_Wrapped(t *testing.T) {
	err := fmt.Errorf("synthesize: %w", NewProviderError("anthropic", "chat", ErrMalformedResponse, nil))

	var pe *ProviderError
	assert.True(t, errors.As(err, &pe))
	assert.Equal(t, "anthropic", pe.Provider)
	assert.True(t, errors.Is(err, ErrProvider))
	assert.True(t, errors.Is(err, ErrMalformedResponse))
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"timeout", NewProviderError("p", "op", ErrProviderTimeout, nil), true},
		{"rate limited", NewProviderError("p", "op", ErrRateLimited, nil), true},
		{"server side", NewProviderError("p", "op", ErrProviderUnavailable, nil), true},
		{"auth", NewProviderError("p", "op", ErrAuthInvalid, nil), false},
		{"malformed", NewProviderError("p", "op", ErrMalformedResponse, nil), false},
		{"plain", errors.New("boom"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}

func TestUserMessage(t *testing.T) {
	assert.Empty(t, UserMessage(nil))
	assert.Contains(t, UserMessage(fmt.Errorf("open: %w", ErrIndexNotFound)), "paperchat ingest")
	assert.Contains(t, UserMessage(NewProviderError("openai", "chat", ErrProviderTimeout, nil)), "too long")
	assert.Contains(t, UserMessage(NewProviderError("openai", "chat", ErrRateLimited, nil)), "rate limiting")
	assert.Contains(t, UserMessage(NewProviderError("openai", "chat", nil, errors.New("dial tcp"))), "dial tcp")
	assert.Contains(t, UserMessage(errors.New("boom")), "boom")
}
