package engine

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestCleanHTML(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"<b>bold</b> text", "bold text"},
		{"plain text", "plain text"},
		{`<a href="url">link</a>`, "link"},
		{"", ""},
	}

	for _, tt := range tests {
		got := CleanHTML(tt.input)
		if got != tt.want {
			t.Errorf("CleanHTML(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestTruncateRunes(t *testing.T) {
	if got := TruncateRunes("short", 10, "..."); got != "short" {
		t.Errorf("TruncateRunes(short) = %q, want unchanged", got)
	}

	long := TruncateRunes("abcdefghij", 5, "...")
	if !strings.HasSuffix(long, "...") {
		t.Errorf("TruncateRunes(long) = %q, want %q suffix", long, "...")
	}
	if kept := strings.TrimSuffix(long, "..."); utf8.RuneCountInString(kept) > 5 {
		t.Errorf("TruncateRunes(long) = %q, keeps more than 5 runes", long)
	}

	heb := TruncateRunes("שלום עולם", 4, "...")
	if heb == "שלום עולם" {
		t.Errorf("TruncateRunes(hebrew) = %q, want truncated", heb)
	}
	if !utf8.ValidString(heb) {
		t.Errorf("TruncateRunes(hebrew) = %q, invalid UTF-8", heb)
	}
}

func TestCollapseSpaces(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"  My  Episode \n  12:34 ", "My Episode 12:34"},
		{"single", "single"},
		{"\n\t\n", ""},
	}

	for _, tt := range tests {
		got := CollapseSpaces(tt.input)
		if got != tt.want {
			t.Errorf("CollapseSpaces(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
