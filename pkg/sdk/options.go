package resumerank

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

// RetrievalOptions tune query expansion and fusion. Zero values keep the defaults.
type RetrievalOptions struct {
	RRFConstant         int           // default 60
	TopKPerQuery        int           // default 10
	TopKFinal           int           // default 5
	MaxQueries          int           // sub-queries in fusion mode, default 4
	ExpansionTimeout    time.Duration // default 8s
	IncludeOriginal     bool          // search the verbatim description alongside sub-queries
	OriginalQueryWeight float64       // default 1
}

type clientConfig struct {
	driver    string // "valkey" or "redis"
	addrs     []string
	password  string
	keyPrefix string

	embedder  Embedder
	completer Completer

	vectorDimensions int
	hnswM            int
	hnswEFConstruct  int
	retrieval        RetrievalOptions
	ingestBatchSize  int
	ingestWorkers    int

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithValkey configures the client to connect to a Valkey instance.
func WithValkey(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "valkey"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithRedis configures the client to connect to a Redis 8+ instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "redis"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithKeyPrefix namespaces every stored key. Default: "resumerank:".
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.keyPrefix = prefix
	})
}

// WithEmbedder sets the embedding provider. Required.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
	})
}

// WithCompleter sets the language model used for fusion mode and Screen.
func WithCompleter(l Completer) Option {
	return optionFunc(func(c *clientConfig) {
		c.completer = l
	})
}

// WithVectorDimensions sets the embedding dimension of the index.
// Defaults to 1536 (text-embedding-3-small).
func WithVectorDimensions(dim int) Option {
	return optionFunc(func(c *clientConfig) {
		c.vectorDimensions = dim
	})
}

// WithHNSW configures HNSW index parameters (M and EF construction).
// Defaults: M=16, EFConstruct=200.
func WithHNSW(m, efConstruct int) Option {
	return optionFunc(func(c *clientConfig) {
		c.hnswM = m
		c.hnswEFConstruct = efConstruct
	})
}

// WithRetrieval tunes query expansion and fusion.
func WithRetrieval(o RetrievalOptions) Option {
	return optionFunc(func(c *clientConfig) {
		c.retrieval = o
	})
}

// WithIngestion sets the embed+store batch size and the number of concurrent
// embedding calls for embedders without a batch endpoint. Defaults: 64 and 4.
func WithIngestion(batchSize, workers int) Option {
	return optionFunc(func(c *clientConfig) {
		c.ingestBatchSize = batchSize
		c.ingestWorkers = workers
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
