package db

// KNNQuery is the input for vector similarity search.
type KNNQuery struct {
	IndexName string
	// VectorAlias is the vector attribute to match against ("vector" when empty).
	VectorAlias  string
	Vector       []float32
	K            int
	ReturnFields []string
}

// SearchResult is the output of a search operation.
// Entries keep the order returned by the server (best match first for KNN).
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}
