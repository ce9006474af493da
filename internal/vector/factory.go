package vector

import (
	"fmt"

	"github.com/hyperjump/villagerag/internal/config"
	"github.com/hyperjump/villagerag/internal/provider"
	"go.uber.org/zap"
)

// StoreType represents the type of vector store to use.
type StoreType string

const (
	// StoreTypeQdrant uses a Qdrant server over REST. The collection survives restarts.
	StoreTypeQdrant StoreType = "qdrant"
	// StoreTypeSQLite stores vectors in a local SQLite file with brute-force search.
	StoreTypeSQLite StoreType = "sqlite"
	// StoreTypeMemory keeps vectors in process memory; every start rebuilds the index.
	StoreTypeMemory StoreType = "memory"
)

// NewStore creates a vector store of the configured type.
// Supported types: "qdrant", "sqlite", "memory" (default).
func NewStore(cfg config.VectorStoreConfig, maxRetries int, logger *zap.Logger) (Store, error) {
	switch StoreType(cfg.Type) {
	case StoreTypeMemory, "":
		return NewMemoryStore(), nil
	case StoreTypeSQLite:
		if cfg.DatabasePath == "" {
			return nil, fmt.Errorf("sqlite vector store requires database_path")
		}
		return NewSQLiteStore(cfg.DatabasePath)
	case StoreTypeQdrant:
		if cfg.URL == "" {
			return nil, fmt.Errorf("qdrant vector store requires url")
		}
		headers := map[string]string{}
		if cfg.APIKey != "" {
			headers["api-key"] = cfg.APIKey
		}
		client := provider.NewClient(provider.Options{
			Name:       "qdrant",
			BaseURL:    cfg.URL,
			Headers:    headers,
			Timeout:    cfg.Timeout(),
			MaxRetries: maxRetries,
			Logger:     logger,
		})
		return NewQdrantStore(client, cfg.UpsertBatch, logger), nil
	default:
		return nil, fmt.Errorf("unknown vector store type: %s (supported: qdrant, sqlite, memory)", cfg.Type)
	}
}
