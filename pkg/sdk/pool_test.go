package resumerank

import (
	"context"
	"strings"
	"testing"

	dombatch "github.com/kailas-cloud/resumerank/internal/domain/batch"
	domcand "github.com/kailas-cloud/resumerank/internal/domain/candidate"
	"github.com/kailas-cloud/resumerank/internal/domain/retrieval/mode"
	"github.com/kailas-cloud/resumerank/internal/domain/retrieval/request"
	"github.com/kailas-cloud/resumerank/internal/domain/retrieval/result"
)

type applicant struct {
	ID     int    `resumerank:"id"`
	Resume string `resumerank:"text"`
	Email  string
}

func TestParseSchema(t *testing.T) {
	if _, err := parseSchema[applicant](); err != nil {
		t.Fatalf("applicant: %v", err)
	}
	if _, err := parseSchema[*applicant](); err != nil {
		t.Fatalf("*applicant: %v", err)
	}

	type noID struct {
		Text string `resumerank:"text"`
	}
	type noText struct {
		ID string `resumerank:"id"`
	}
	type floatID struct {
		ID   float64 `resumerank:"id"`
		Text string  `resumerank:"text"`
	}
	type twoTexts struct {
		ID string `resumerank:"id"`
		A  string `resumerank:"text"`
		B  string `resumerank:"text"`
	}

	tests := []struct {
		name  string
		parse func() error
		want  string
	}{
		{"not a struct", func() error { _, err := parseSchema[string](); return err }, "not a struct"},
		{"no id", func() error { _, err := parseSchema[noID](); return err }, "no field tagged"},
		{"no text", func() error { _, err := parseSchema[noText](); return err }, "no field tagged"},
		{"float id", func() error { _, err := parseSchema[floatID](); return err }, "string or integer"},
		{"two texts", func() error { _, err := parseSchema[twoTexts](); return err }, "duplicate text"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.parse()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestPool_Ingest(t *testing.T) {
	var got []domcand.Candidate
	mock := &mockIngestionUC{
		ingestFn: func(_ context.Context, items []domcand.Candidate) []dombatch.Result {
			got = items
			out := make([]dombatch.Result, len(items))
			for i, c := range items {
				out[i] = dombatch.NewOK(i, c.ID())
			}
			return out
		},
	}

	pool, err := NewPool[applicant](&Client{ingestSvc: mock})
	if err != nil {
		t.Fatal(err)
	}
	res, err := pool.Ingest(context.Background(), []applicant{
		{ID: 17, Resume: "Go engineer", Email: "a@example.com"},
		{ID: 18, Resume: "Data scientist"},
	})
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if len(res) != 2 || got[0].ID() != "17" || got[1].Text() != "Data scientist" {
		t.Errorf("ingested = %+v", got)
	}
}

func TestQueryBuilder(t *testing.T) {
	var seen request.Request
	mock := &mockRetrievalUC{
		fn: func(_ context.Context, req request.Request) (result.Result, error) {
			seen = req
			return result.Result{Candidates: []result.Candidate{}}, nil
		},
	}

	c := &Client{retrieveSvc: mock}
	b := c.Query("Go engineer").Fusion().PerQuery(20).Limit(3)
	if r := b.Request(); r.Mode != ModeFusion || r.TopKPerQuery != 20 || r.TopKFinal != 3 {
		t.Errorf("request = %+v", r)
	}
	if _, err := b.Do(context.Background()); err != nil {
		t.Fatalf("do: %v", err)
	}
	if seen.Mode() != mode.Fusion || seen.TopKPerQuery() != 20 {
		t.Errorf("service saw %s/%d", seen.Mode(), seen.TopKPerQuery())
	}

	if r := c.Query("x").Fusion().Generic().Request(); r.Mode != ModeGeneric {
		t.Errorf("mode = %s, want generic", r.Mode)
	}
}
