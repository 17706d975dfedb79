// go_notebooklm is an MCP server that drives NotebookLM through a real
// Chrome session. Tools cover source ingestion, audio overview
// generation with positional job tracking, and artifact download.
// Runs as HTTP MCP server or stdio transport.
package main

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-mcpserver"
	"github.com/anatolykoptev/go_notebooklm/internal/engine"
	"github.com/anatolykoptev/go_notebooklm/internal/notebookserver"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var (
	version = "dev"
	mcpPort = env.Str("MCP_PORT", "8891")
)

func main() {
	initEngine()

	slog.Info("starting go_notebooklm",
		slog.String("port", mcpPort),
		slog.String("notebook", engine.Cfg.NotebookURL),
	)

	sess := engine.NewSession()
	defer sess.Close()

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "go_notebooklm",
		Version: version,
	}, nil)

	notebookserver.RegisterTools(server, sess)
	slog.Info("tools registered", slog.Int("count", 9))

	if err := mcpserver.Run(server, mcpserver.Config{
		Name:         "go_notebooklm",
		Version:      version,
		Port:         mcpPort,
		WriteTimeout: 600 * time.Second,
		Metrics:      engine.FormatMetrics,
	}); err != nil {
		slog.Error("server failed", slog.Any("error", err))
	}
}

func initEngine() {
	c := engine.Config{
		NotebookURL:       env.Str("NOTEBOOKLM_URL", "https://notebooklm.google.com"),
		ChromeHost:        env.Str("NOTEBOOKLM_CHROME_HOST", "127.0.0.1"),
		ChromePort:        env.Int("NOTEBOOKLM_CHROME_PORT", 9222),
		ChromePath:        env.Str("NOTEBOOKLM_CHROME_PATH", ""),
		ChromeUserDataDir: env.Str("NOTEBOOKLM_CHROME_USER_DATA_DIR", ""),
		AutoLaunchChrome:  envEnabled("NOTEBOOKLM_AUTO_LAUNCH_CHROME", "1"),
		BrowserWSEndpoint: env.Str("BROWSER_WS_ENDPOINT", ""),
		DownloadDir:       env.Str("DOWNLOAD_DIR", "/tmp/shared-downloads"),

		CookiesFile:      env.Str("NOTEBOOKLM_COOKIES_FILE", ""),
		CookieCloudFile:  env.Str("COOKIECLOUD_FILE", ""),
		StorageStateFile: env.Str("NOTEBOOKLM_STORAGE_STATE", ""),

		ViewportWidth:  env.Int("NOTEBOOKLM_VIEWPORT_WIDTH", 1280),
		ViewportHeight: env.Int("NOTEBOOKLM_VIEWPORT_HEIGHT", 800),

		NavTimeout:      env.Duration("NAV_TIMEOUT", 10*time.Second),
		DialogTimeout:   env.Duration("DIALOG_TIMEOUT", 10*time.Second),
		CaptureTimeout:  env.Duration("CAPTURE_TIMEOUT", 5*time.Second),
		DownloadTimeout: env.Duration("DOWNLOAD_TIMEOUT", 120*time.Second),

		MaxClearAttempts: env.Int("MAX_CLEAR_ATTEMPTS", 200),

		CacheMaxEntries:      env.Int("CACHE_MAX_ENTRIES", 1000),
		CacheCleanupInterval: env.Duration("CACHE_CLEANUP_INTERVAL", 300*time.Second),

		HTTPClient: &http.Client{
			Timeout: 120 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     60 * time.Second,
			},
		},
	}

	bc, err := engine.NewBrowserClient()
	if err != nil {
		slog.Warn("fingerprint client init failed, media fetch falls back to net/http", slog.Any("error", err))
	} else {
		c.BrowserClient = bc
	}

	engine.Init(c)

	cacheTTL := env.Duration("CACHE_TTL", 15*time.Minute)
	engine.InitCache(env.Str("REDIS_URL", ""), cacheTTL, c.CacheMaxEntries, c.CacheCleanupInterval)
}

// envEnabled reads a flag-style env var: "0", "false", and "no" turn it
// off, anything else leaves it on.
func envEnabled(key, def string) bool {
	switch strings.ToLower(env.Str(key, def)) {
	case "0", "false", "no":
		return false
	}
	return true
}
