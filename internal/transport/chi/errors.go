package chi

import (
	"context"
	"errors"
	"net/http"

	"github.com/kailas-cloud/resumerank/internal/domain"
)

// Stable error codes returned in ErrorResponse.Code.
const (
	codeBadRequest          = "bad_request"
	codeUnauthorized        = "unauthorized"
	codeMalformedInput      = "malformed_input"
	codeCandidateNotFound   = "candidate_not_found"
	codeIndexUnavailable    = "index_unavailable"
	codeExpansionFailed     = "expansion_failed"
	codeProviderAuth        = "provider_auth_failed"
	codeProviderRateLimited = "provider_rate_limited"
	codeProviderTimeout     = "provider_timeout"
	codeProviderError       = "provider_error"
	codeTimeout             = "timeout"
	codeInternal            = "internal_error"
)

// errorMapping ties a sentinel to its HTTP status and code. Order matters:
// the first match wins.
type errorMapping struct {
	sentinel error
	status   int
	code     string
	detailed bool // client input errors echo the full message
}

var errorMappings = []errorMapping{
	{domain.ErrMalformedInput, http.StatusBadRequest, codeMalformedInput, true},
	{domain.ErrCandidateNotFound, http.StatusNotFound, codeCandidateNotFound, true},
	{domain.ErrProviderAuth, http.StatusBadGateway, codeProviderAuth, false},
	{domain.ErrProviderRateLimited, http.StatusTooManyRequests, codeProviderRateLimited, false},
	{domain.ErrProviderTimeout, http.StatusGatewayTimeout, codeProviderTimeout, false},
	{domain.ErrProviderError, http.StatusBadGateway, codeProviderError, false},
	{domain.ErrExpansion, http.StatusBadGateway, codeExpansionFailed, false},
	{domain.ErrIndexUnavailable, http.StatusServiceUnavailable, codeIndexUnavailable, false},
	{context.DeadlineExceeded, http.StatusGatewayTimeout, codeTimeout, false},
}

// classify returns the status, code and a client-safe message for err.
func classify(err error) (status int, code, msg string) {
	for _, m := range errorMappings {
		if !errors.Is(err, m.sentinel) {
			continue
		}
		if m.detailed {
			return m.status, m.code, err.Error()
		}
		return m.status, m.code, m.sentinel.Error()
	}
	return http.StatusInternalServerError, codeInternal, "internal error"
}
