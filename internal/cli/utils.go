// Package cli provides output helpers for the villagerag command.
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/hyperjump/villagerag/internal/models"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is the same JSON the HTTP API returns.
	OutputJSON OutputFormat = "json"
)

// ParseOutputFormat accepts "text" or "json"; empty means text.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(s) {
	case "", OutputText:
		return OutputText, nil
	case OutputJSON:
		return OutputJSON, nil
	default:
		return "", fmt.Errorf("invalid output format %q (use text or json)", s)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteAnswer writes an assistant answer to w.
func WriteAnswer(w io.Writer, answer models.ChatResponse, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, answer)
	}
	_, err := fmt.Fprintf(w, "\n%s\n\n", answer.Response)
	return err
}

// WriteDiagnostics writes retrieval diagnostics to w.
func WriteDiagnostics(w io.Writer, resp models.DiagnosticResponse, format OutputFormat) error {
	if format == OutputJSON {
		if resp.RetrievedDocuments == nil {
			resp.RetrievedDocuments = []models.Diagnostic{}
		}
		return writeJSON(w, resp)
	}
	fmt.Fprintf(w, "\nQuery: %s\nRetrieved %d passages\n\n", resp.Query, resp.TotalDocuments)
	for _, d := range resp.RetrievedDocuments {
		fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
		fmt.Fprintf(w, "Rank: %d | Source: %s | Page: %s | Length: %d\n", d.Rank, d.Source, d.Page, d.ContentLength)
		fmt.Fprintf(w, "\n%s\n\n", d.ContentPreview)
	}
	return nil
}

// WriteHealth writes the service status to w.
func WriteHealth(w io.Writer, h models.HealthResponse, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, h)
	}
	_, err := fmt.Fprintf(w, "Status: %s\nDocuments loaded: %t\n", h.Status, h.DocumentsLoaded)
	return err
}
