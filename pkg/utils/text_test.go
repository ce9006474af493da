package utils

import (
	"strings"
	"testing"
)

func TestTruncate(t *testing.T) {
	if Truncate("hello", 10) != "hello" {
		t.Error("short string unchanged")
	}
	if Truncate("hello world", 5) != "hello..." {
		t.Errorf("got %s", Truncate("hello world", 5))
	}
	if Truncate("x", 0) != "x" {
		t.Error("maxLen 0 returns as-is")
	}
	if Truncate("abc", 3) != "abc" {
		t.Error("exact length is not truncated")
	}
}

func TestTruncate_multibyte(t *testing.T) {
	s := strings.Repeat("ñ", 250)
	got := Truncate(s, 200)
	if RuneLen(got) != 203 {
		t.Errorf("rune length = %d, want 203", RuneLen(got))
	}
	if !strings.HasSuffix(got, "...") {
		t.Error("expected ellipsis")
	}
}
