package engine

import (
	"net/http"
	"time"
)

// Config holds all engine configuration, injected from main.
type Config struct {
	NotebookURL       string // target notebook page
	ChromeHost        string
	ChromePort        int
	ChromePath        string // explicit Chrome binary; "" = auto-resolve
	ChromeUserDataDir string // profile dir used when auto-launching
	AutoLaunchChrome  bool
	BrowserWSEndpoint string // hosted browser endpoint; "" = local Chrome
	DownloadDir       string

	CookiesFile      string // Netscape cookies.txt
	CookieCloudFile  string // CookieCloud JSON export
	StorageStateFile string // Playwright-style storage_state.json

	ViewportWidth  int
	ViewportHeight int

	NavTimeout      time.Duration // page load + DOM settle after navigation
	DialogTimeout   time.Duration // dialogs appearing/disappearing
	CaptureTimeout  time.Duration // network capture of a media URL
	DownloadTimeout time.Duration // new file appearing in the download dir

	MaxClearAttempts int // upper bound for bulk-deletion loops

	CacheMaxEntries      int
	CacheCleanupInterval time.Duration

	HTTPClient    *http.Client
	BrowserClient *BrowserClient // nil = browserless HTTP download disabled
}

var cfg Config

// Cfg exposes the engine configuration for sub-packages (sources, studio).
// Always points to the current cfg value.
var Cfg = &cfg

// Init initializes the engine with the given configuration.
func Init(c Config) {
	cfg = c
	Cfg = &cfg
}
