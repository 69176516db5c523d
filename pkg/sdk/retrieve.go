package resumerank

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/resumerank/internal/domain"
	"github.com/kailas-cloud/resumerank/internal/domain/retrieval/mode"
	"github.com/kailas-cloud/resumerank/internal/domain/retrieval/request"
)

// Retrieve ranks stored candidates against a job description.
//
// In ModeFusion a failed or slow expansion does not fail the call: the
// description is searched verbatim and Metadata.Degraded explains why.
func (c *Client) Retrieve(ctx context.Context, req RetrieveRequest) (_ Result, err error) {
	start := time.Now()
	defer func() { c.obs.observe("retrieve", start, err) }()

	r, err := toRequest(req)
	if err != nil {
		return Result{}, err
	}

	res, err := c.retrieveSvc.Retrieve(ctx, r)
	if err != nil {
		return Result{}, fmt.Errorf("retrieve: %w", err)
	}
	return resultFromDomain(&res), nil
}

// Screen retrieves candidates and asks the language model to assess them.
func (c *Client) Screen(ctx context.Context, req RetrieveRequest) (_ Answer, err error) {
	start := time.Now()
	defer func() { c.obs.observe("screen", start, err) }()

	r, err := toRequest(req)
	if err != nil {
		return Answer{}, err
	}

	ans, err := c.screenSvc.Screen(ctx, r)
	if err != nil {
		return Answer{}, fmt.Errorf("screen: %w", err)
	}
	return Answer{
		Text:             ans.Text,
		Retrieval:        resultFromDomain(&ans.Retrieval),
		PromptTokens:     ans.PromptTokens,
		CompletionTokens: ans.CompletionTokens,
	}, nil
}

func toRequest(req RetrieveRequest) (request.Request, error) {
	m, err := mode.Parse(string(req.Mode))
	if err != nil {
		return request.Request{}, fmt.Errorf("%w: %w", domain.ErrMalformedInput, err)
	}
	r, err := request.New(req.JobDescription, m, req.TopKPerQuery, req.TopKFinal)
	if err != nil {
		return request.Request{}, fmt.Errorf("%w: %w", domain.ErrMalformedInput, err)
	}
	return r, nil
}
