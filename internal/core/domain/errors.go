package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotConfigured indicates a required provider has not been set up.
	ErrNotConfigured = errors.New("not configured")

	// Corpus and Index Errors.

	// ErrEmptyCorpus indicates ingestion found no documents or produced no chunks.
	// Ingestion halts rather than writing an empty index.
	ErrEmptyCorpus = errors.New("empty corpus")

	// ErrIndexNotFound indicates no persisted index exists at the given location.
	ErrIndexNotFound = errors.New("index not found")

	// ErrEmbeddingMismatch indicates the index was built with a different
	// embedding model than the one configured for queries.
	ErrEmbeddingMismatch = errors.New("embedding model mismatch")

	// Provider Errors.

	// ErrProvider is the category matched by every ProviderError.
	ErrProvider = errors.New("provider error")

	// ErrProviderTimeout indicates a provider call exceeded its deadline.
	ErrProviderTimeout = errors.New("provider timeout")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// ErrAuthInvalid indicates the authentication credentials are invalid.
	ErrAuthInvalid = errors.New("authentication invalid")

	// ErrProviderUnavailable indicates a server-side failure (5xx) or a dropped connection.
	ErrProviderUnavailable = errors.New("provider unavailable")

	// ErrMalformedResponse indicates a stage returned an unexpected shape.
	ErrMalformedResponse = errors.New("malformed response")
)

// ProviderError describes a failed call to an embedding or language-model provider.
//
// errors.Is matches ErrProvider, the Kind sentinel and anything in the Err chain.
type ProviderError struct {
	// Provider names the backend, e.g. "openai".
	Provider string

	// Op is the operation that failed, e.g. "chat" or "embed".
	Op string

	// Kind is one of ErrProviderTimeout, ErrRateLimited, ErrAuthInvalid,
	// ErrProviderUnavailable, ErrMalformedResponse, or nil for other failures.
	Kind error

	// Err is the underlying cause.
	Err error
}

func (e *ProviderError) Error() string {
	msg := fmt.Sprintf("%s %s", e.Provider, e.Op)
	if e.Kind != nil {
		msg += ": " + e.Kind.Error()
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is reports whether target is the ErrProvider category.
func (e *ProviderError) Is(target error) bool {
	return target == ErrProvider
}

// Unwrap exposes the kind and the cause.
func (e *ProviderError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// NewProviderError builds a ProviderError.
func NewProviderError(provider, op string, kind, err error) *ProviderError {
	return &ProviderError{Provider: provider, Op: op, Kind: kind, Err: err}
}

// IsTransient reports whether a provider failure is worth retrying.
func IsTransient(err error) bool {
	if errors.Is(err, ErrAuthInvalid) || errors.Is(err, ErrMalformedResponse) {
		return false
	}
	return errors.Is(err, ErrProviderTimeout) || errors.Is(err, ErrRateLimited) || errors.Is(err, ErrProviderUnavailable)
}

// UserMessage renders an error in terms an operator or end user can act on.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrIndexNotFound):
		return "No paper index was found. Run `paperchat ingest` to build it first."
	case errors.Is(err, ErrEmptyCorpus):
		return "No papers could be indexed. Add PDF files to the papers directory and try again."
	case errors.Is(err, ErrEmbeddingMismatch):
		return "The index was built with a different embedding model. Re-run `paperchat ingest`."
	case errors.Is(err, ErrProviderTimeout):
		return "Sorry, the language service took too long to respond. Please try again."
	case errors.Is(err, ErrRateLimited):
		return "Sorry, the language service is rate limiting requests. Please wait a moment and try again."
	case errors.Is(err, ErrAuthInvalid):
		return "Sorry, the language service rejected the configured API key."
	case errors.Is(err, ErrMalformedResponse):
		return "Sorry, the language service returned a response that could not be understood."
	case errors.Is(err, ErrProvider):
		return "Sorry, the language service could not be reached: " + err.Error()
	case errors.Is(err, ErrNotConfigured):
		return "The AI providers are not configured. Run `paperchat settings` to set them up."
	case errors.Is(err, ErrInvalidInput):
		return "Please enter a question."
	default:
		return "Sorry, I encountered an error while processing your question: " + err.Error()
	}
}
