package engine

import "strings"

// DefaultLanguage is used when the UI language cannot be detected or a
// translation is missing.
const DefaultLanguage = "en"

// languageAliases maps legacy language codes to their current form.
// Google still reports Hebrew as "iw" in some surfaces.
var languageAliases = map[string]string{
	"iw": "he",
}

// uiText maps semantic UI keys to on-screen strings per language. The
// target application localizes button labels, menu entries and
// placeholders; every DOM probe that matches by text goes through here.
var uiText = map[string]map[string]string{
	// Add-sources dialog.
	"add_source_button":     {"en": "Add sources", "he": "הוספת מקורות", "zh": "添加来源"},
	"source_type_website":   {"en": "Website", "he": "אתר", "zh": "网站"},
	"source_type_youtube":   {"en": "YouTube", "he": "YouTube", "zh": "YouTube"},
	"source_type_text":      {"en": "Copied text", "he": "טקסט שהועתק", "zh": "复制的文字"},
	"insert_button":         {"en": "Insert", "he": "הוספה", "zh": "插入"},
	"url_input_placeholder": {"en": "Paste URLs*", "he": "הדבקת כתובות URL*", "zh": "粘贴网址*"},

	// Audio overview options dialog.
	"generate_button":             {"en": "Generate", "he": "יצירה", "zh": "生成"},
	"prompt_textarea_placeholder": {"en": "Things to try", "he": "דברים שאפשר לנסות", "zh": "提示示例"},
	"deep_dive_radio_button":      {"en": "Deep Dive", "he": "ירידה לפרטים", "zh": "深入探究"},
	"summary_radio_button":        {"en": "Summary", "he": "תקציר", "zh": "摘要"},
	"critique_radio_button":       {"en": "Critique", "he": "ביקורת", "zh": "评论"},
	"debate_radio_button":         {"en": "Debate", "he": "דיבייט", "zh": "辩论"},
	"duration_short":              {"en": "Short", "he": "קצר", "zh": "短"},
	"duration_default":            {"en": "Default", "he": "ברירת מחדל", "zh": "默认"},

	// Item rows, their menus and the inline player.
	"more_button":               {"en": "More", "he": "עוד", "zh": "更多"},
	"delete_menu_item":          {"en": "Delete", "he": "מחיקה", "zh": "删除"},
	"download_menu_item":        {"en": "Download", "he": "הורדה", "zh": "下载"},
	"confirm_delete_button":     {"en": "Delete", "he": "מחיקה", "zh": "删除"},
	"delete_source_menu_item":   {"en": "Remove source", "he": "הסרת המקור", "zh": "移除来源"},
	"play_arrow_button":         {"en": "Play", "he": "הפעלה", "zh": "播放"},
	"close_audio_player_button": {"en": "Close audio player", "he": "סגירת נגן האודיו", "zh": "关闭音频播放器"},
	"error_text":                {"en": "Error", "he": "שגיאה", "zh": "错误"},
	"generating_status_text":    {"en": "Generating", "he": "בתהליך יצירה", "zh": "正在生成"},

	// Narrow-layout tab strip.
	"studio_tab":  {"en": "Studio", "he": "סטודיו", "zh": "Studio"},
	"sources_tab": {"en": "Sources", "he": "מקורות", "zh": "来源"},
}

// NormalizeLanguage resolves aliases like iw → he. Unknown codes pass
// through unchanged; lookup falls back to English anyway.
func NormalizeLanguage(lang string) string {
	if alias, ok := languageAliases[lang]; ok {
		return alias
	}
	return lang
}

// Text returns the on-screen string for a semantic UI key in the given
// language, falling back to English when the language or the key has no
// translation. Returns "" for unknown keys.
func Text(lang, key string) string {
	translations, ok := uiText[key]
	if !ok {
		return ""
	}
	if s, ok := translations[NormalizeLanguage(lang)]; ok {
		return s
	}
	return translations[DefaultLanguage]
}

// DetectLanguage maps a document language attribute (e.g. "en-US",
// "he-IL", "zh-CN") to one of the supported UI languages.
func DetectLanguage(attr string) string {
	lang := strings.ToLower(strings.TrimSpace(attr))
	switch {
	case strings.HasPrefix(lang, "he"), strings.HasPrefix(lang, "iw"):
		return "he"
	case strings.HasPrefix(lang, "zh"):
		return "zh"
	default:
		return DefaultLanguage
	}
}
