package engine

import (
	"strings"
	"testing"
)

func TestTextPattern(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"plain", "Generate", "/Generate/i"},
		{"escapes dots", "a.b", `/a\.b/i`},
		{"escapes parens", "Add (source)", `/Add \(source\)/i`},
		{"escapes slash", "a/b", `/a\/b/i`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TextPattern(tt.text); got != tt.want {
				t.Errorf("TextPattern(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestExactTextPattern(t *testing.T) {
	got := ExactTextPattern("Remove source")
	if !strings.HasPrefix(got, `/^\s*`) || !strings.HasSuffix(got, `\s*$/i`) {
		t.Errorf("ExactTextPattern not anchored: %q", got)
	}
	if !strings.Contains(got, "Remove source") {
		t.Errorf("ExactTextPattern lost the literal: %q", got)
	}
}

func TestExactTextPatternEscapesMeta(t *testing.T) {
	got := ExactTextPattern("What's new?")
	if !strings.Contains(got, `\?`) {
		t.Errorf("question mark not escaped: %q", got)
	}
}
