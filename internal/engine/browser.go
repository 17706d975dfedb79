package engine

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
)

// ChromeManager owns the lifecycle of the local Chrome the session
// attaches to: it probes the DevTools endpoint, auto-launches Chrome
// with the configured user profile when allowed, and kills only what it
// started itself.
type ChromeManager struct {
	host   string
	port   int
	launch *launcher.Launcher // non-nil while a self-started Chrome is alive
}

// NewChromeManager returns a manager for the given DevTools endpoint.
func NewChromeManager(host string, port int) *ChromeManager {
	return &ChromeManager{host: host, port: port}
}

// ControlURL returns a DevTools websocket URL, starting Chrome first
// when the endpoint is down and auto-launch is enabled.
func (cm *ChromeManager) ControlURL(ctx context.Context) (string, error) {
	hostPort := fmt.Sprintf("%s:%d", cm.host, cm.port)

	if cm.cdpAvailable(ctx) {
		return launcher.ResolveURL(hostPort)
	}

	if !cfg.AutoLaunchChrome {
		return "", fmt.Errorf("chrome debugger endpoint not available on %s and auto-launch is disabled", hostPort)
	}

	bin, err := ResolveChromeBinary()
	if err != nil {
		return "", err
	}

	dir := cfg.ChromeUserDataDir
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dir = filepath.Join(home, ".notebooklm-chrome")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create user data dir: %w", err)
	}

	if HasChromeLoginState() {
		slog.Info("chrome profile has existing google login", slog.String("user_data_dir", dir))
	} else {
		slog.Warn("chrome profile has no login state; manual login or cookie import may be needed",
			slog.String("user_data_dir", dir))
	}

	// Headful on purpose: the profile may need an interactive Google
	// login, and headless profiles don't share cookies with it.
	l := launcher.New().
		Bin(bin).
		Headless(false).
		Leakless(false).
		Set(flags.Flag("remote-debugging-port"), strconv.Itoa(cm.port)).
		Set(flags.Flag("user-data-dir"), dir).
		Set(flags.Flag("disable-popup-blocking")).
		Set(flags.Flag("no-first-run")).
		Set(flags.Flag("no-default-browser-check"))

	u, err := l.Launch()
	if err != nil {
		return "", fmt.Errorf("launch chrome: %w", err)
	}
	cm.launch = l
	slog.Info("started chrome with remote debugging",
		slog.String("bin", bin),
		slog.Int("port", cm.port))
	return u, nil
}

// Started reports whether this manager launched the Chrome it points at.
func (cm *ChromeManager) Started() bool {
	return cm != nil && cm.launch != nil
}

// Terminate kills Chrome only if this manager started it. Attaching to
// a user's already-running browser must never shut it down.
func (cm *ChromeManager) Terminate() {
	if cm.launch == nil {
		return
	}
	cm.launch.Kill()
	cm.launch = nil
	slog.Info("terminated self-started chrome")
}

// cdpAvailable probes the DevTools HTTP endpoint with a short timeout.
func (cm *ChromeManager) cdpAvailable(ctx context.Context) bool {
	return cdpAvailable(ctx, cm.host, cm.port)
}

func cdpAvailable(ctx context.Context, host string, port int) bool {
	reqCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	url := fmt.Sprintf("http://%s:%d/json/version", host, port)
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return false
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return true
}

// ResolveChromeBinary finds the Chrome executable: the configured path
// first, then well-known install locations for the current OS, then
// $PATH.
func ResolveChromeBinary() (string, error) {
	if cfg.ChromePath != "" {
		if _, err := os.Stat(cfg.ChromePath); err == nil {
			return cfg.ChromePath, nil
		}
		slog.Warn("configured chrome path not found, falling back to auto-detection",
			slog.String("path", cfg.ChromePath))
	}

	var candidates []string
	switch runtime.GOOS {
	case "windows":
		candidates = []string{
			`C:\Program Files\Google\Chrome\Application\chrome.exe`,
			`C:\Program Files (x86)\Google\Chrome\Application\chrome.exe`,
		}
	case "darwin":
		candidates = []string{
			"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
		}
	default:
		candidates = []string{
			"/usr/bin/google-chrome",
			"/usr/bin/google-chrome-stable",
			"/usr/bin/chromium-browser",
			"/usr/bin/chromium",
		}
	}

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}

	for _, name := range []string{"google-chrome", "chrome", "chromium"} {
		if path, err := exec.LookPath(name); err == nil {
			return path, nil
		}
	}

	return "", fmt.Errorf("could not locate chrome binary; set NOTEBOOKLM_CHROME_PATH to the chrome/chromium executable")
}
