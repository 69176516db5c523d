// Package resumerank is an in-process Go client for resume retrieval backed by
// Valkey or Redis with search modules.
//
// The client stores candidate resumes as embeddings and answers job
// descriptions with a ranked shortlist. In fusion mode a language model first
// rewrites the description into several focused queries; their rankings are
// merged with Reciprocal Rank Fusion.
//
//	client, _ := resumerank.New(ctx,
//	    resumerank.WithValkey("localhost:6379", ""),
//	    resumerank.WithEmbedder(emb),
//	    resumerank.WithCompleter(llm),
//	)
//	defer client.Close()
//
//	_, _ = client.Ingest(ctx, []resumerank.Candidate{{ID: "17", Text: resume}})
//	res, _ := client.Retrieve(ctx, resumerank.RetrieveRequest{
//	    JobDescription: jd,
//	    Mode:           resumerank.ModeFusion,
//	})
//	for _, c := range res.Candidates {
//	    fmt.Println(c.ID, c.FusedScore)
//	}
package resumerank
