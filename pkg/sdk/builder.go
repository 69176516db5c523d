package resumerank

import "context"

// QueryBuilder is a fluent builder for retrievals.
type QueryBuilder struct {
	client *Client
	req    RetrieveRequest
}

// Query starts a retrieval for a job description. The default mode is generic.
func (c *Client) Query(jobDescription string) *QueryBuilder {
	return &QueryBuilder{client: c, req: RetrieveRequest{JobDescription: jobDescription, Mode: ModeGeneric}}
}

// Fusion expands the description into sub-queries and fuses their rankings.
func (b *QueryBuilder) Fusion() *QueryBuilder {
	b.req.Mode = ModeFusion
	return b
}

// Generic searches with the description verbatim.
func (b *QueryBuilder) Generic() *QueryBuilder {
	b.req.Mode = ModeGeneric
	return b
}

// PerQuery sets how many candidates each query fetches.
func (b *QueryBuilder) PerQuery(k int) *QueryBuilder {
	b.req.TopKPerQuery = k
	return b
}

// Limit sets the length of the final shortlist.
func (b *QueryBuilder) Limit(k int) *QueryBuilder {
	b.req.TopKFinal = k
	return b
}

// Request returns the request built so far.
func (b *QueryBuilder) Request() RetrieveRequest { return b.req }

// Do runs the retrieval.
func (b *QueryBuilder) Do(ctx context.Context) (Result, error) {
	return b.client.Retrieve(ctx, b.req)
}

// Screen runs the retrieval and asks the language model to assess the shortlist.
func (b *QueryBuilder) Screen(ctx context.Context) (Answer, error) {
	return b.client.Screen(ctx, b.req)
}
