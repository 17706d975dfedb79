package engine

import "testing"

func TestText(t *testing.T) {
	tests := []struct {
		name string
		lang string
		key  string
		want string
	}{
		{"english", "en", "add_source_button", "Add sources"},
		{"hebrew", "he", "add_source_button", "הוספת מקורות"},
		{"chinese", "zh", "insert_button", "插入"},
		{"legacy hebrew alias", "iw", "delete_menu_item", "מחיקה"},
		{"unsupported language falls back to english", "fr", "generate_button", "Generate"},
		{"regioned code falls back to english", "en-US", "generate_button", "Generate"},
		{"unknown key", "en", "no_such_key", ""},
		{"empty language falls back to english", "", "studio_tab", "Studio"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Text(tt.lang, tt.key); got != tt.want {
				t.Errorf("Text(%q, %q) = %q, want %q", tt.lang, tt.key, got, tt.want)
			}
		})
	}
}

func TestTextEnglishCoverage(t *testing.T) {
	// Every key must have an English entry: it is the fallback for all
	// other languages.
	for key, translations := range uiText {
		if translations["en"] == "" {
			t.Errorf("key %q has no English translation", key)
		}
	}
}

func TestNormalizeLanguage(t *testing.T) {
	if got := NormalizeLanguage("iw"); got != "he" {
		t.Errorf("NormalizeLanguage(iw) = %q, want he", got)
	}
	if got := NormalizeLanguage("en"); got != "en" {
		t.Errorf("NormalizeLanguage(en) = %q, want en", got)
	}
	if got := NormalizeLanguage("xx"); got != "xx" {
		t.Errorf("NormalizeLanguage(xx) = %q, want xx", got)
	}
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		attr string
		want string
	}{
		{"en", "en"},
		{"en-US", "en"},
		{"he", "he"},
		{"he-IL", "he"},
		{"iw", "he"},
		{"IW-il", "he"},
		{"zh", "zh"},
		{"zh-CN", "zh"},
		{"ja", "en"},
		{"", "en"},
		{"  he  ", "he"},
	}

	for _, tt := range tests {
		t.Run(tt.attr, func(t *testing.T) {
			if got := DetectLanguage(tt.attr); got != tt.want {
				t.Errorf("DetectLanguage(%q) = %q, want %q", tt.attr, got, tt.want)
			}
		})
	}
}
