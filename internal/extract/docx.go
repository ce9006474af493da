package extract

import (
	"archive/zip"
	"bytes"
	"fmt"
	"regexp"
	"strings"
)

// docxDocumentXMLPath is the default path to the main document body inside a .docx zip.
const docxDocumentXMLPath = "word/document.xml"

// contentTypesPath is the path to [Content_Types].xml in OOXML packages.
const contentTypesPath = "[Content_Types].xml"

const docxMainContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"

// wtTag matches <w:t>text</w:t> or <w:t xml:space="preserve">text</w:t> (and any other attributes).
var wtTag = regexp.MustCompile(`<w:t[^>]*>([^<]*)</w:t>`)

// partNameRe and partNameRe2 find the main document part in either attribute order.
var (
	partNameRe  = regexp.MustCompile(`<Override[^>]+PartName="([^"]+)"[^>]+ContentType="` + regexp.QuoteMeta(docxMainContentType) + `"`)
	partNameRe2 = regexp.MustCompile(`<Override[^>]+ContentType="` + regexp.QuoteMeta(docxMainContentType) + `"[^>]+PartName="([^"]+)"`)
)

// findDocxMainDocumentPath returns the main document path from [Content_Types].xml
// without its leading slash, or "" if not declared.
func findDocxMainDocumentPath(zr *zip.Reader) string {
	for _, f := range zr.File {
		if f.Name != contentTypesPath {
			continue
		}
		data, err := readZipFile(f)
		if err != nil {
			return ""
		}
		if m := partNameRe.FindSubmatch(data); len(m) > 1 {
			return strings.TrimPrefix(string(m[1]), "/")
		}
		if m := partNameRe2.FindSubmatch(data); len(m) > 1 {
			return strings.TrimPrefix(string(m[1]), "/")
		}
		return ""
	}
	return ""
}

// extractDOCX returns the document text with one line per paragraph. Runs inside a
// paragraph are concatenated as-is since Word splits words across runs.
func extractDOCX(content []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("extract DOCX: not a zip: %w", err)
	}
	docPath := findDocxMainDocumentPath(zr)
	if docPath == "" {
		docPath = docxDocumentXMLPath
	}
	var docXML []byte
	for _, f := range zr.File {
		if f.Name != docPath {
			continue
		}
		if docXML, err = readZipFile(f); err != nil {
			return "", fmt.Errorf("extract DOCX: %w", err)
		}
		break
	}
	if docXML == nil {
		return "", fmt.Errorf("extract DOCX: %s not found", docPath)
	}
	var paragraphs []string
	for _, para := range strings.Split(string(docXML), "</w:p>") {
		var b strings.Builder
		for _, m := range wtTag.FindAllStringSubmatch(para, -1) {
			b.WriteString(m[1])
		}
		if t := strings.TrimSpace(b.String()); t != "" {
			paragraphs = append(paragraphs, t)
		}
	}
	return strings.Join(paragraphs, "\n"), nil
}
