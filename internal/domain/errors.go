package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedInput signals a request rejected before any retrieval work.
	ErrMalformedInput = errors.New("malformed input")
	// ErrExpansion signals that the language model produced no usable sub-queries.
	ErrExpansion = errors.New("query expansion failed")
	// ErrIndexUnavailable signals an unreachable or failing vector index.
	ErrIndexUnavailable = errors.New("vector index unavailable")
	// ErrCandidateNotFound signals a missing candidate record.
	ErrCandidateNotFound = errors.New("candidate not found")

	// ErrProviderAuth signals rejected provider credentials.
	ErrProviderAuth = errors.New("provider authentication failed")
	// ErrProviderRateLimited signals a provider rate limit or quota hit.
	ErrProviderRateLimited = errors.New("provider rate limited")
	// ErrProviderTimeout signals a provider call that did not finish in time.
	ErrProviderTimeout = errors.New("provider timeout")
	// ErrProviderError signals any other provider failure.
	ErrProviderError = errors.New("provider error")
)

// ProviderError carries the failure kind of an embedding or language-model call
// together with what the provider reported.
type ProviderError struct {
	Provider   string
	Kind       error
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: %s (status %d): %s", e.Provider, e.Kind, e.StatusCode, e.Message)
	}
	if e.Message != "" {
		return fmt.Sprintf("%s: %s: %s", e.Provider, e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Kind)
}

func (e *ProviderError) Unwrap() error { return e.Kind }

// NewProviderError builds a ProviderError. A nil kind falls back to ErrProviderError.
func NewProviderError(provider string, kind error, status int, msg string) error {
	if kind == nil {
		kind = ErrProviderError
	}
	return &ProviderError{Provider: provider, Kind: kind, StatusCode: status, Message: msg}
}

// ProviderKindForStatus maps an HTTP status returned by a provider API to a failure kind.
func ProviderKindForStatus(status int) error {
	switch {
	case status == 401 || status == 403:
		return ErrProviderAuth
	case status == 429:
		return ErrProviderRateLimited
	case status == 408 || status == 504:
		return ErrProviderTimeout
	default:
		return ErrProviderError
	}
}

// IsProviderFailure reports whether err carries one of the provider failure kinds.
func IsProviderFailure(err error) bool {
	return errors.Is(err, ErrProviderAuth) ||
		errors.Is(err, ErrProviderRateLimited) ||
		errors.Is(err, ErrProviderTimeout) ||
		errors.Is(err, ErrProviderError)
}
