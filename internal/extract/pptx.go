package extract

import (
	"archive/zip"
	"bytes"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// slideName matches ppt/slides/slideN.xml and captures N.
var slideName = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

// atTag matches <a:t>text</a:t> or <a:t xml:space="preserve">text</a:t> (and any other attributes).
var atTag = regexp.MustCompile(`<a:t[^>]*>([^<]*)</a:t>`)

// extractPPTX returns one Page per slide, ordered by slide number (zip order is not reliable:
// slide10.xml may precede slide2.xml).
func extractPPTX(content []byte) ([]Page, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("extract PPTX: not a zip: %w", err)
	}
	var pages []Page
	for _, f := range zr.File {
		m := slideName.FindStringSubmatch(f.Name)
		if m == nil {
			continue
		}
		num, _ := strconv.Atoi(m[1])
		data, err := readZipFile(f)
		if err != nil {
			return nil, fmt.Errorf("extract PPTX: %w", err)
		}
		var parts []string
		for _, p := range atTag.FindAllStringSubmatch(string(data), -1) {
			if t := strings.TrimSpace(p[1]); t != "" {
				parts = append(parts, t)
			}
		}
		if len(parts) == 0 {
			continue
		}
		pages = append(pages, Page{Number: num, Text: strings.Join(parts, " ")})
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].Number < pages[j].Number })
	return pages, nil
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(rc); err != nil {
		return nil, fmt.Errorf("read %s: %w", f.Name, err)
	}
	return buf.Bytes(), nil
}
