package resumerank

import "github.com/kailas-cloud/resumerank/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrMalformedInput      = domain.ErrMalformedInput
	ErrExpansion           = domain.ErrExpansion
	ErrIndexUnavailable    = domain.ErrIndexUnavailable
	ErrCandidateNotFound   = domain.ErrCandidateNotFound
	ErrProviderAuth        = domain.ErrProviderAuth
	ErrProviderRateLimited = domain.ErrProviderRateLimited
	ErrProviderTimeout     = domain.ErrProviderTimeout
	ErrProviderError       = domain.ErrProviderError
)
