package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8000
	}
	if cfg.Server.CORSOrigins == nil {
		cfg.Server.CORSOrigins = []string{"http://localhost:5173"}
	}
	if cfg.Server.RequestTimeoutSecs == 0 {
		cfg.Server.RequestTimeoutSecs = 120
	}
	if cfg.OpenAI.BaseURL == "" {
		cfg.OpenAI.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.OpenAI.TimeoutSecs == 0 {
		cfg.OpenAI.TimeoutSecs = 60
	}
	if cfg.OpenAI.MaxRetries == 0 {
		cfg.OpenAI.MaxRetries = 3
	}
	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = "openai"
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = "text-embedding-ada-002"
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 1536
	}
	if cfg.Embedding.BatchSize == 0 {
		cfg.Embedding.BatchSize = 64
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 1000
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "gpt-4o"
	}
	if cfg.LLM.Temperature == 0 {
		cfg.LLM.Temperature = 0.7
	}
	if cfg.VectorStore.Type == "" {
		if cfg.VectorStore.URL != "" {
			cfg.VectorStore.Type = "qdrant"
		} else {
			cfg.VectorStore.Type = "memory"
		}
	}
	if cfg.VectorStore.Collection == "" {
		cfg.VectorStore.Collection = "docs"
	}
	if cfg.VectorStore.DatabasePath == "" {
		cfg.VectorStore.DatabasePath = "./data/vectors.db"
	}
	if cfg.VectorStore.TimeoutSecs == 0 {
		cfg.VectorStore.TimeoutSecs = 30
	}
	if cfg.VectorStore.UpsertBatch == 0 {
		cfg.VectorStore.UpsertBatch = 64
	}
	if cfg.VectorStore.BuildTimeoutSecs == 0 {
		cfg.VectorStore.BuildTimeoutSecs = 600
	}
	if cfg.Documents.Directory == "" {
		cfg.Documents.Directory = "./documents"
	}
	if cfg.Documents.Glob == "" {
		cfg.Documents.Glob = "**/*.pdf"
	}
	if cfg.Documents.ChunkSize == 0 {
		cfg.Documents.ChunkSize = 800
	}
	if cfg.Documents.ChunkOverlap == 0 {
		cfg.Documents.ChunkOverlap = 250
	}
	if cfg.Retrieval.AnswerK == 0 {
		cfg.Retrieval.AnswerK = 8
	}
	if cfg.Retrieval.DiagnoseK == 0 {
		cfg.Retrieval.DiagnoseK = 3
	}
	if cfg.Retrieval.PreviewLength == 0 {
		cfg.Retrieval.PreviewLength = 200
	}
	if cfg.Retrieval.SmokeQuery == "" {
		cfg.Retrieval.SmokeQuery = "horarios del centro comercial"
	}
}
