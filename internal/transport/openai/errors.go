package openai

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/kailas-cloud/resumerank/internal/domain"
)

// parseAPIError maps a go-openai error to a domain provider failure kind.
func parseAPIError(provider string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.NewProviderError(provider, domain.ErrProviderTimeout, 0, err.Error())
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		msg := extractDetail(reqErr.Body)
		if msg == "" {
			msg = strings.TrimSpace(string(reqErr.Body))
		}
		return domain.NewProviderError(provider,
			domain.ProviderKindForStatus(reqErr.HTTPStatusCode), reqErr.HTTPStatusCode, msg)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		kind := domain.ProviderKindForStatus(apiErr.HTTPStatusCode)
		// Quota exhaustion arrives as 429 with code insufficient_quota on some deployments and 403 on others.
		if code, ok := apiErr.Code.(string); ok && code == "insufficient_quota" {
			kind = domain.ErrProviderRateLimited
		}
		return domain.NewProviderError(provider, kind, apiErr.HTTPStatusCode, apiErr.Message)
	}

	return domain.NewProviderError(provider, domain.ErrProviderError, 0, err.Error())
}

// extractDetail extracts the "detail" field from a JSON error body (Nebius error format).
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
