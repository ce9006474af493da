package rag

import (
	"regexp"
	"strings"
	"unicode"
)

const bullet = "•"

var blankRun = regexp.MustCompile(`\n{3,}`)

// Normalize cleans raw model output: line endings become "\n", every bullet item is put on its
// own line surrounded by blank lines, trailing spaces are dropped, runs of blank lines collapse
// to one, and the result is trimmed. It accepts any input and is idempotent.
func Normalize(raw string) string {
	text := strings.ReplaceAll(raw, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if !strings.Contains(line, bullet) {
			out = append(out, strings.TrimRightFunc(line, unicode.IsSpace))
			continue
		}
		parts := strings.Split(line, bullet)
		if head := strings.TrimRightFunc(parts[0], unicode.IsSpace); head != "" {
			out = append(out, head)
		}
		for _, p := range parts[1:] {
			item := bullet
			if t := strings.TrimSpace(p); t != "" {
				item += " " + t
			}
			out = append(out, "", item, "")
		}
	}

	text = blankRun.ReplaceAllString(strings.Join(out, "\n"), "\n\n")
	return strings.TrimSpace(text)
}
