package models

// RetrievedPassage is a chunk returned by a similarity query, ranked 1..k by descending relevance.
type RetrievedPassage struct {
	Chunk Chunk   `json:"chunk"`
	Rank  int     `json:"rank"`
	Score float64 `json:"score"`
}

// Diagnostic describes one retrieved passage without invoking the language model.
type Diagnostic struct {
	Rank           int    `json:"rank"`
	Source         string `json:"source"`
	Page           string `json:"page"`
	ContentPreview string `json:"content_preview"`
	ContentLength  int    `json:"content_length"`
}

// DiagnosticResponse is the response of the diagnose endpoint.
type DiagnosticResponse struct {
	Query              string       `json:"query"`
	RetrievedDocuments []Diagnostic `json:"retrieved_documents"`
	TotalDocuments     int          `json:"total_documents"`
}

// ChatResponse is the response of the chat endpoint.
type ChatResponse struct {
	Response string `json:"response"`
}

// Health reports whether the index handle is available.
type Health struct {
	Ready bool `json:"ready"`
}

// HealthResponse is the response of the health endpoint.
type HealthResponse struct {
	Status          string `json:"status"`
	DocumentsLoaded bool   `json:"documents_loaded"`
}
