// Package extract provides page-aware text extraction from document files.
package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Page is the text of one page, sheet or slide of a file.
// Number is 1-based; 0 means the format has no page structure.
type Page struct {
	Number int
	Text   string
}

// Extractor extracts plain text from document files.
type Extractor struct{}

// NewExtractor returns a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract reads the file at path and returns its pages.
// PDF yields one page per PDF page, XLSX one per sheet and PPTX one per slide;
// DOCX and plain text yield a single page with Number 0.
// Returns an error if the file cannot be read or parsed.
func (e *Extractor) Extract(path string) ([]Page, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	ext := strings.ToLower(filepath.Ext(path))
	return e.ExtractBytes(content, ext)
}

// ExtractBytes extracts pages from content based on the given extension.
// ext should include the leading dot (e.g. ".pdf"). Unknown extensions are read as plain text.
func (e *Extractor) ExtractBytes(content []byte, ext string) ([]Page, error) {
	switch ext {
	case ".pdf":
		return extractPDF(content)
	case ".docx":
		return single(extractDOCX(content))
	case ".xlsx":
		return extractExcel(content)
	case ".pptx":
		return extractPPTX(content)
	default:
		return single(extractPlain(content))
	}
}

func single(text string, err error) ([]Page, error) {
	if err != nil {
		return nil, err
	}
	return []Page{{Number: 0, Text: text}}, nil
}
