package indexer

import (
	"strings"
)

// Preprocess normalizes extracted text for chunking: runs of spaces and tabs collapse to one
// space, lines are trimmed, and consecutive blank lines collapse to one so paragraph breaks survive.
func Preprocess(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	blank := true
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			if !blank {
				out = append(out, "")
			}
			blank = true
			continue
		}
		out = append(out, line)
		blank = false
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
