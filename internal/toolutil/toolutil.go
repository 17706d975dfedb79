// Package toolutil provides shared helper functions for go_notebooklm MCP tools.
package toolutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/anatolykoptev/go_notebooklm/internal/engine"
)

// SaveFile writes data to path, creating parent directories as needed.
// Returns the absolute path written.
func SaveFile(path string, data []byte) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return "", fmt.Errorf("create directory: %w", err)
	}
	if err := os.WriteFile(abs, data, 0o644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return abs, nil
}

// MarkdownPreview converts an HTML fragment to markdown and truncates it
// to limit runes. Conversions are cached by content, so repeated status
// calls on an unchanged page cost nothing.
func MarkdownPreview(ctx context.Context, html string, limit int) string {
	if html == "" {
		return ""
	}
	key := engine.CacheKey("md_preview", html)
	md, ok := engine.CacheGet(ctx, key)
	if !ok {
		var err error
		md, err = htmltomarkdown.ConvertString(html)
		if err != nil {
			// Fall back to stripped text rather than dropping the preview.
			md = engine.CleanHTML(html)
		}
		engine.CacheSet(ctx, key, md)
	}
	return engine.TruncateRunes(md, limit, "...")
}
