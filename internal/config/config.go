package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the resumerank service configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Storage   StorageConfig   `yaml:"storage"`
	Index     IndexConfig     `yaml:"index"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	LLM       LLMConfig       `yaml:"llm"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Screening ScreeningConfig `yaml:"screening"`
	Auth      AuthConfig      `yaml:"auth"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Driver           string   `yaml:"driver"` // valkey, redis (default: valkey)
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// StorageConfig holds storage settings.
type StorageConfig struct {
	KeyPrefix          string `yaml:"key_prefix"`
	StatsDailyTTLHours int    `yaml:"stats_daily_ttl_hours"` // lifetime of per-day query counters
}

// IndexConfig holds vector index and ingestion settings.
type IndexConfig struct {
	HNSWM           int `yaml:"hnsw_m"`
	HNSWEFConstruct int `yaml:"hnsw_ef_construction"`
	HNSWEFRuntime   int `yaml:"hnsw_ef_runtime"`
	BatchSize       int `yaml:"batch_size"`
	IngestWorkers   int `yaml:"ingest_workers"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	Provider            string `yaml:"provider"` // metrics label, e.g. openai, nebius
	APIKey              string `yaml:"api_key"`
	BaseURL             string `yaml:"base_url"`
	Model               string `yaml:"model"`
	Dimensions          int    `yaml:"dimensions"`
	DocumentInstruction string `yaml:"document_instruction"`
	QueryInstruction    string `yaml:"query_instruction"`
	MaxBatch            int    `yaml:"max_batch"`
	CacheTTLHours       int    `yaml:"cache_ttl_hours"` // 0 keeps cached vectors forever
}

// LLM providers.
const (
	ProviderOpenAI    = "openai"
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
)

// LLMConfig holds language-model settings for query expansion and screening answers.
type LLMConfig struct {
	Provider    string  `yaml:"provider"` // openai, gemini, anthropic
	APIKey      string  `yaml:"api_key"`
	BaseURL     string  `yaml:"base_url"`
	Model       string  `yaml:"model"`
	Temperature float32 `yaml:"temperature"`
}

// RetrievalConfig holds query expansion and fusion settings.
type RetrievalConfig struct {
	RRFConstant         int     `yaml:"rrf_constant"`
	TopKPerQuery        int     `yaml:"top_k_per_query"`
	TopKFinal           int     `yaml:"top_k_final"`
	MaxQueries          int     `yaml:"max_queries"`
	ExpansionTimeoutSec int     `yaml:"expansion_timeout_sec"`
	ExpansionMaxTokens  int     `yaml:"expansion_max_tokens"`
	IncludeOriginal     bool    `yaml:"include_original"`
	OriginalQueryWeight float64 `yaml:"original_query_weight"`
}

// ScreeningConfig holds answer-generation settings.
type ScreeningConfig struct {
	MaxContextChars int `yaml:"max_context_chars"`
	MaxOutputTokens int `yaml:"max_output_tokens"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
// A .env file in the working directory, if present, is loaded into the process
// environment first; variables already set win.
func Load(env string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit path.
func LoadFile(configPath string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}
	return Parse(data)
}

// Parse expands environment references in data and decodes it.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		// screening waits on retrieval plus one model call
		c.HTTP.WriteTimeoutSec = 60
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "valkey"
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "resumerank:"
	}
	if c.Storage.StatsDailyTTLHours <= 0 {
		c.Storage.StatsDailyTTLHours = 48
	}
	c.applyIndexDefaults()
	c.applyEmbeddingDefaults()
	c.applyRetrievalDefaults()
	if c.LLM.Provider == "" {
		c.LLM.Provider = ProviderOpenAI
	}
	if c.Screening.MaxContextChars <= 0 {
		c.Screening.MaxContextChars = 12000
	}
	if c.Screening.MaxOutputTokens <= 0 {
		c.Screening.MaxOutputTokens = 1024
	}
}

func (c *Config) applyIndexDefaults() {
	if c.Index.HNSWM <= 0 {
		c.Index.HNSWM = 16
	}
	if c.Index.HNSWEFConstruct <= 0 {
		c.Index.HNSWEFConstruct = 200
	}
	if c.Index.BatchSize <= 0 {
		c.Index.BatchSize = 64
	}
	if c.Index.IngestWorkers <= 0 {
		c.Index.IngestWorkers = 4
	}
}

func (c *Config) applyEmbeddingDefaults() {
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = "openai"
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = "text-embedding-3-small"
	}
	if c.Embedding.Dimensions <= 0 {
		c.Embedding.Dimensions = 1536
	}
	if c.Embedding.MaxBatch <= 0 {
		c.Embedding.MaxBatch = 256
	}
}

func (c *Config) applyRetrievalDefaults() {
	r := &c.Retrieval
	if r.RRFConstant <= 0 {
		r.RRFConstant = 60
	}
	if r.TopKPerQuery <= 0 {
		r.TopKPerQuery = 10
	}
	if r.TopKFinal <= 0 {
		r.TopKFinal = 5
	}
	if r.MaxQueries <= 0 {
		r.MaxQueries = 4
	}
	if r.ExpansionTimeoutSec <= 0 {
		r.ExpansionTimeoutSec = 8
	}
	if r.ExpansionMaxTokens <= 0 {
		r.ExpansionMaxTokens = 512
	}
	if r.OriginalQueryWeight <= 0 {
		r.OriginalQueryWeight = 1
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Database.Driver {
	case "valkey", "redis":
	default:
		return fmt.Errorf("database.driver must be \"valkey\" or \"redis\", got %q", c.Database.Driver)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	if strings.ContainsAny(c.Storage.KeyPrefix, " *") {
		return fmt.Errorf("storage.key_prefix must not contain spaces or '*', got %q", c.Storage.KeyPrefix)
	}
	if c.Index.HNSWEFRuntime < 0 {
		return fmt.Errorf("index.hnsw_ef_runtime must not be negative, got %d", c.Index.HNSWEFRuntime)
	}
	switch c.LLM.Provider {
	case ProviderOpenAI, ProviderGemini, ProviderAnthropic:
	default:
		return fmt.Errorf("llm.provider must be one of openai, gemini, anthropic, got %q", c.LLM.Provider)
	}
	if c.Retrieval.MaxQueries > 10 {
		return fmt.Errorf("retrieval.max_queries must be at most 10, got %d", c.Retrieval.MaxQueries)
	}
	if c.Retrieval.IncludeOriginal && c.Retrieval.MaxQueries < 2 {
		return fmt.Errorf("retrieval.include_original needs max_queries >= 2, got %d", c.Retrieval.MaxQueries)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1])
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
