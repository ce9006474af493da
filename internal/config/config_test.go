package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvOpenAIKey, EnvQdrantURL, EnvQdrantKey, EnvDebug} {
		t.Setenv(k, "")
	}
}

func TestLoad(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  host: "127.0.0.1"
  port: 9000
openai:
  api_key: "sk-test"
documents:
  directory: "./docs"
  chunk_size: 500
  chunk_overlap: 100
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9000 {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
	if cfg.Documents.Directory != filepath.Join(dir, "docs") {
		t.Errorf("documents.directory = %s", cfg.Documents.Directory)
	}
	if cfg.Documents.ChunkSize != 500 || cfg.Documents.ChunkOverlap != 100 {
		t.Errorf("chunking = %d/%d", cfg.Documents.ChunkSize, cfg.Documents.ChunkOverlap)
	}
	if cfg.Debug {
		t.Error("debug should default to false when unset")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoad_envOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvOpenAIKey, "sk-env")
	t.Setenv(EnvQdrantURL, "https://qdrant.example:6333")
	t.Setenv(EnvQdrantKey, "qk")
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("openai:\n  api_key: from-file\n"), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.OpenAI.APIKey != "sk-env" {
		t.Errorf("api key = %q, want env value", cfg.OpenAI.APIKey)
	}
	if cfg.VectorStore.Type != "qdrant" {
		t.Errorf("type = %q, want qdrant when a URL is set", cfg.VectorStore.Type)
	}
	if cfg.VectorStore.APIKey != "qk" {
		t.Errorf("qdrant key = %q", cfg.VectorStore.APIKey)
	}
}

func TestLoad_dotenv(t *testing.T) {
	clearEnv(t)
	// godotenv does not override variables that are already set, so unset the key entirely.
	os.Unsetenv(EnvOpenAIKey)
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("OPENAI_API_KEY=sk-dotenv\n"), 0600); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("debug: true\n"), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv(EnvOpenAIKey) })
	if cfg.OpenAI.APIKey != "sk-dotenv" {
		t.Errorf("api key = %q, want value from .env", cfg.OpenAI.APIKey)
	}
	if !cfg.Debug {
		t.Error("debug should be true when set in config")
	}
}

func TestLoad_missingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	if cfg.Server.Port != 8000 {
		t.Errorf("default port: got %d", cfg.Server.Port)
	}
	if len(cfg.Server.CORSOrigins) != 1 || cfg.Server.CORSOrigins[0] != "http://localhost:5173" {
		t.Errorf("default cors origins: got %v", cfg.Server.CORSOrigins)
	}
	if cfg.Embedding.Model != "text-embedding-ada-002" || cfg.Embedding.Dimensions != 1536 {
		t.Errorf("embedding defaults: %+v", cfg.Embedding)
	}
	if cfg.LLM.Model != "gpt-4o" {
		t.Errorf("llm model: got %s", cfg.LLM.Model)
	}
	if cfg.Documents.ChunkSize != 800 || cfg.Documents.ChunkOverlap != 250 {
		t.Errorf("chunking defaults: %+v", cfg.Documents)
	}
	if cfg.Documents.Glob != "**/*.pdf" {
		t.Errorf("glob: got %s", cfg.Documents.Glob)
	}
	if cfg.Retrieval.AnswerK != 8 || cfg.Retrieval.DiagnoseK != 3 || cfg.Retrieval.PreviewLength != 200 {
		t.Errorf("retrieval defaults: %+v", cfg.Retrieval)
	}
	if cfg.VectorStore.Type != "memory" || cfg.VectorStore.Collection != "docs" {
		t.Errorf("vector store defaults: %+v", cfg.VectorStore)
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg := &Config{OpenAI: OpenAIConfig{APIKey: "k"}}
		ApplyDefaults(cfg)
		return cfg
	}
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"overlap too large", func(c *Config) { c.Documents.ChunkOverlap = c.Documents.ChunkSize }, "chunk_overlap"},
		{"bad k", func(c *Config) { c.Retrieval.DiagnoseK = -1 }, "diagnose_k"},
		{"qdrant without url", func(c *Config) { c.VectorStore.Type = "qdrant" }, "vector_store.url"},
		{"unknown store", func(c *Config) { c.VectorStore.Type = "faiss" }, "unknown vector_store.type"},
		{"unknown provider", func(c *Config) { c.Embedding.Provider = "onnx" }, "unknown embedding.provider"},
		{"missing key", func(c *Config) { c.OpenAI.APIKey = "" }, "API key"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestSave(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "saved.yaml")
	cfg := &Config{
		Server:      ServerConfig{Host: "localhost", Port: 9090},
		VectorStore: VectorStoreConfig{Type: "sqlite", DatabasePath: "/tmp/v.db"},
	}
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Server.Port != 9090 || loaded.VectorStore.Type != "sqlite" {
		t.Errorf("loaded: port=%d type=%s", loaded.Server.Port, loaded.VectorStore.Type)
	}
}
