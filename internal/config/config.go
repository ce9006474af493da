// Package config provides configuration loading and structs for the villagerag server.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug       bool              `yaml:"debug"`
	Server      ServerConfig      `yaml:"server"`
	OpenAI      OpenAIConfig      `yaml:"openai"`
	Embedding   EmbeddingConfig   `yaml:"embedding"`
	LLM         LLMConfig         `yaml:"llm"`
	VectorStore VectorStoreConfig `yaml:"vector_store"`
	Documents   DocumentsConfig   `yaml:"documents"`
	Retrieval   RetrievalConfig   `yaml:"retrieval"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host        string   `yaml:"host"`
	Port        int      `yaml:"port"`
	CORSOrigins []string `yaml:"cors_origins"`
	// RequestTimeoutSecs bounds a whole request, including provider calls.
	RequestTimeoutSecs int `yaml:"request_timeout_secs"`
}

// OpenAIConfig holds credentials and transport settings shared by the embedding and chat clients.
type OpenAIConfig struct {
	APIKey            string  `yaml:"api_key"`
	BaseURL           string  `yaml:"base_url"`
	TimeoutSecs       int     `yaml:"timeout_secs"`
	MaxRetries        int     `yaml:"max_retries"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
}

// Timeout returns the per-call timeout.
func (o OpenAIConfig) Timeout() time.Duration {
	return time.Duration(o.TimeoutSecs) * time.Second
}

// EmbeddingConfig selects and configures the embedding provider.
type EmbeddingConfig struct {
	Provider   string `yaml:"provider"` // openai | mock
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
	BatchSize  int    `yaml:"batch_size"`
	CacheSize  int    `yaml:"cache_size"`
}

// LLMConfig configures the chat model used to synthesize answers.
type LLMConfig struct {
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
}

// VectorStoreConfig selects and configures the vector store.
type VectorStoreConfig struct {
	Type         string `yaml:"type"` // qdrant | sqlite | memory
	URL          string `yaml:"url"`
	APIKey       string `yaml:"api_key"`
	Collection   string `yaml:"collection"`
	DatabasePath string `yaml:"database_path"`
	TimeoutSecs  int    `yaml:"timeout_secs"`
	UpsertBatch  int    `yaml:"upsert_batch"`
	// BuildTimeoutSecs bounds a full ingest: load, chunk, embed and upload.
	BuildTimeoutSecs int `yaml:"build_timeout_secs"`
}

// Timeout returns the per-request timeout for vector store calls.
func (v VectorStoreConfig) Timeout() time.Duration {
	return time.Duration(v.TimeoutSecs) * time.Second
}

// BuildTimeout returns the bound on a full index build.
func (v VectorStoreConfig) BuildTimeout() time.Duration {
	return time.Duration(v.BuildTimeoutSecs) * time.Second
}

// DocumentsConfig holds the document source and chunking settings.
type DocumentsConfig struct {
	Directory    string `yaml:"directory"`
	Glob         string `yaml:"glob"`
	ChunkSize    int    `yaml:"chunk_size"`
	ChunkOverlap int    `yaml:"chunk_overlap"`
}

// RetrievalConfig holds per-path retrieval settings.
type RetrievalConfig struct {
	AnswerK       int    `yaml:"answer_k"`
	DiagnoseK     int    `yaml:"diagnose_k"`
	PreviewLength int    `yaml:"preview_length"`
	SmokeQuery    string `yaml:"smoke_query"`
}

// Environment variables recognized as overrides.
const (
	EnvOpenAIKey = "OPENAI_API_KEY"
	EnvQdrantURL = "QDRANT_URL"
	EnvQdrantKey = "QDRANT_API_KEY"
	EnvDebug     = "VILLAGERAG_DEBUG"
)

const dotenvFileName = ".env"

// Load reads and parses the config file at path, loads .env from the config directory and
// the working directory, applies environment overrides, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	configDir := filepath.Dir(path)
	if err := loadDotenv(filepath.Join(configDir, dotenvFileName), dotenvFileName); err != nil {
		return nil, err
	}
	ApplyEnv(&cfg)
	ApplyDefaults(&cfg)

	cfg.Documents.Directory = expandPath(cfg.Documents.Directory, configDir)
	cfg.VectorStore.DatabasePath = expandPath(cfg.VectorStore.DatabasePath, configDir)

	return &cfg, nil
}

// Default returns a config built only from .env, the environment and defaults.
// Used when no config file exists.
func Default() (*Config, error) {
	if err := loadDotenv(dotenvFileName); err != nil {
		return nil, err
	}
	cfg := &Config{}
	ApplyEnv(cfg)
	ApplyDefaults(cfg)
	return cfg, nil
}

// loadDotenv loads each existing file; variables already set in the environment win.
func loadDotenv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv overrides secrets and endpoints from the environment.
func ApplyEnv(cfg *Config) {
	if v := os.Getenv(EnvOpenAIKey); v != "" {
		cfg.OpenAI.APIKey = v
	}
	if v := os.Getenv(EnvQdrantURL); v != "" {
		cfg.VectorStore.URL = v
	}
	if v := os.Getenv(EnvQdrantKey); v != "" {
		cfg.VectorStore.APIKey = v
	}
	if v := os.Getenv(EnvDebug); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Debug = b
		}
	}
}

// Validate reports configuration that cannot work.
func (c *Config) Validate() error {
	var errs []error
	if c.Documents.ChunkSize <= 0 {
		errs = append(errs, errors.New("documents.chunk_size must be positive"))
	}
	if c.Documents.ChunkOverlap < 0 || c.Documents.ChunkOverlap >= c.Documents.ChunkSize {
		errs = append(errs, errors.New("documents.chunk_overlap must be in [0, chunk_size)"))
	}
	if c.Retrieval.AnswerK <= 0 || c.Retrieval.DiagnoseK <= 0 {
		errs = append(errs, errors.New("retrieval.answer_k and retrieval.diagnose_k must be positive"))
	}
	switch c.VectorStore.Type {
	case "qdrant":
		if c.VectorStore.URL == "" {
			errs = append(errs, errors.New("vector_store.url is required for qdrant (or set "+EnvQdrantURL+")"))
		}
	case "sqlite", "memory":
	default:
		errs = append(errs, fmt.Errorf("unknown vector_store.type %q (supported: qdrant, sqlite, memory)", c.VectorStore.Type))
	}
	switch c.Embedding.Provider {
	case "openai", "mock":
	default:
		errs = append(errs, fmt.Errorf("unknown embedding.provider %q (supported: openai, mock)", c.Embedding.Provider))
	}
	if c.OpenAI.APIKey == "" {
		errs = append(errs, errors.New("OpenAI API key not found; set openai.api_key or "+EnvOpenAIKey))
	}
	return errors.Join(errs...)
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
