// Package provider holds the HTTP plumbing shared by the embedding and LLM
// adapters: failure classification, retry with backoff and a JSON client.
package provider

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/paperchat/internal/core/domain"
)

// StatusError is a non-2xx HTTP response from a provider.
type StatusError struct {
	StatusCode int
	Body       string

	// RetryAfter is the server's requested delay, zero if none was sent.
	RetryAfter time.Duration
}

func (e *StatusError) Error() string {
	body := strings.TrimSpace(e.Body)
	if len(body) > 300 {
		body = body[:300] + "..."
	}
	if body == "" {
		return fmt.Sprintf("status %d", e.StatusCode)
	}
	return fmt.Sprintf("status %d: %s", e.StatusCode, body)
}

// KindForStatus maps an HTTP status code to a provider error kind.
// Returns nil for statuses that have no specific kind.
func KindForStatus(code int) error {
	switch {
	case code == http.StatusTooManyRequests:
		return domain.ErrRateLimited
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return domain.ErrAuthInvalid
	case code == http.StatusRequestTimeout || code == http.StatusGatewayTimeout:
		return domain.ErrProviderTimeout
	case code >= 500:
		return domain.ErrProviderUnavailable
	default:
		return nil
	}
}

// KindForError maps a transport error to a provider error kind.
func KindForError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.ErrProviderTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return domain.ErrProviderTimeout
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return domain.ErrProviderUnavailable
}

// Classify wraps err as a *domain.ProviderError with the kind inferred from
// a StatusError in its chain or from the transport failure.
// Errors that are already ProviderErrors are returned unchanged.
func Classify(name, op string, err error) error {
	if err == nil {
		return nil
	}
	var pe *domain.ProviderError
	if errors.As(err, &pe) {
		return err
	}
	var se *StatusError
	if errors.As(err, &se) {
		return domain.NewProviderError(name, op, KindForStatus(se.StatusCode), err)
	}
	return domain.NewProviderError(name, op, KindForError(err), err)
}

// Malformed wraps a decoding or shape failure.
func Malformed(name, op string, err error) error {
	return domain.NewProviderError(name, op, domain.ErrMalformedResponse, err)
}

// ParseRetryAfter reads a Retry-After header in seconds or HTTP-date form.
func ParseRetryAfter(h http.Header) time.Duration {
	v := strings.TrimSpace(h.Get("Retry-After"))
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil {
		if secs < 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}
