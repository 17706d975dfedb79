package engine

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// Session owns the single browser connection and the NotebookLM tab every
// tool operates on. All DOM work is serialized through WithPage: two tools
// driving the same tab concurrently would race each other's clicks.
type Session struct {
	mu sync.Mutex // serializes DOM operations, connects and teardown

	stateMu sync.RWMutex // guards id and lang for readers outside mu
	id      string
	lang    string

	browser *rod.Browser
	page    *rod.Page
	chrome  *ChromeManager
	pace    *rate.Limiter
}

// NewSession prepares a disconnected session. The browser is attached
// lazily on the first WithPage call.
func NewSession() *Session {
	return &Session{
		chrome: NewChromeManager(cfg.ChromeHost, cfg.ChromePort),
		lang:   DefaultLanguage,
		pace:   rate.NewLimiter(rate.Every(300*time.Millisecond), 1),
	}
}

// ID returns the identifier minted on the last successful connect,
// or "" while disconnected.
func (s *Session) ID() string {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.id
}

// Lang returns the UI language detected from the notebook page.
func (s *Session) Lang() string {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	if s.lang == "" {
		return DefaultLanguage
	}
	return s.lang
}

// Text resolves a UI string key in the session's detected language.
func (s *Session) Text(key string) string {
	return Text(s.Lang(), key)
}

// Pace blocks until the next DOM mutation is allowed. Menu-driven deletes
// fire faster than Angular re-renders the list, so destructive loops call
// this between iterations.
func (s *Session) Pace(ctx context.Context) error {
	return s.pace.Wait(ctx)
}

// Connect eagerly establishes the browser connection.
func (s *Session) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ensureLocked(ctx)
}

// WithPage runs fn against a live notebook page, reconnecting first if the
// previous connection died. The session lock is held for the duration of
// fn, so fn must not call back into Session methods that take it.
func (s *Session) WithPage(ctx context.Context, fn func(p *rod.Page) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLocked(ctx); err != nil {
		return err
	}
	return fn(s.page)
}

// Close tears down the page, the browser connection and any self-started
// Chrome. Safe to call on a session that never connected.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeLocked()
}

// ensureLocked verifies the current page still answers trivial script
// evaluation and reconnects from scratch when it does not.
func (s *Session) ensureLocked(ctx context.Context) error {
	if s.page != nil {
		_, err := s.page.Timeout(5 * time.Second).Eval(`() => 1 + 1`)
		if err == nil {
			return nil
		}
		IncrLivenessFailures()
		slog.Warn("session liveness check failed, reconnecting",
			slog.String("session_id", s.ID()),
			slog.Any("error", err))
		s.closeLocked()
		IncrReconnects()
	}
	return s.connectLocked(ctx)
}

// connectLocked attaches to Chrome, claims or opens the notebook tab and
// readies it for automation. Any failure tears everything down so the next
// call starts clean.
func (s *Session) connectLocked(ctx context.Context) (err error) {
	defer func() {
		if err != nil {
			s.closeLocked()
		}
	}()

	controlURL := cfg.BrowserWSEndpoint
	if controlURL == "" {
		controlURL, err = s.chrome.ControlURL(ctx)
		if err != nil {
			return fmt.Errorf("chrome endpoint: %w", err)
		}
	}

	// The browser handle must outlive the tool request that triggered the
	// connect, so it is bound to the background context. Individual waits
	// are bounded per call instead.
	browser := rod.New().ControlURL(controlURL).Context(context.Background())
	if err = browser.Connect(); err != nil {
		return fmt.Errorf("connect browser: %w", err)
	}
	s.browser = browser

	page, fresh, err := s.claimNotebookPage()
	if err != nil {
		return err
	}
	s.page = page

	// Cookies go in before the first navigation so the initial request is
	// already authenticated.
	if fresh {
		if cookies, source := LoadAuthCookies(); len(cookies) > 0 {
			if cerr := page.SetCookies(CookieParams(cookies)); cerr != nil {
				slog.Warn("applying auth cookies failed", slog.Any("error", cerr))
			} else {
				slog.Info("auth cookies applied",
					slog.String("source", source),
					slog.Int("count", len(cookies)))
			}
		}
	}

	if err = s.applyViewport(page); err != nil {
		return fmt.Errorf("set viewport: %w", err)
	}

	if fresh {
		if err = page.Timeout(cfg.NavTimeout).Navigate(cfg.NotebookURL); err != nil {
			return fmt.Errorf("navigate to notebook: %w", err)
		}
	}

	// Settling is best effort. NotebookLM keeps long-polling channels open,
	// so a quiet network may never happen; the selectors retry anyway.
	settle := page.Timeout(cfg.NavTimeout)
	if werr := settle.WaitLoad(); werr != nil {
		slog.Warn("page load wait timed out, continuing", slog.Any("error", werr))
	} else if werr := settle.WaitDOMStable(time.Second, 0.1); werr != nil {
		slog.Warn("dom settle wait timed out, continuing", slog.Any("error", werr))
	}

	lang := s.detectLanguage(page)

	s.stateMu.Lock()
	s.id = uuid.NewString()
	s.lang = lang
	s.stateMu.Unlock()

	IncrConnects()
	slog.Info("session connected",
		slog.String("session_id", s.ID()),
		slog.String("lang", lang),
		slog.String("url", cfg.NotebookURL),
		slog.Bool("fresh_page", fresh))
	return nil
}

// claimNotebookPage reuses an already-open notebook tab when attaching to a
// user's browser, otherwise opens a blank tab for the caller to navigate.
// The second return reports whether the tab is fresh.
func (s *Session) claimNotebookPage() (*rod.Page, bool, error) {
	pages, err := s.browser.Pages()
	if err == nil && len(pages) > 0 {
		existing, ferr := pages.FindByURL(regexp.QuoteMeta(cfg.NotebookURL))
		if ferr == nil && existing != nil {
			slog.Info("reusing open notebook tab")
			if _, aerr := existing.Activate(); aerr != nil {
				slog.Debug("tab activate failed", slog.Any("error", aerr))
			}
			return existing.Context(context.Background()), false, nil
		}
	}

	page, err := s.browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, false, fmt.Errorf("open notebook tab: %w", err)
	}
	return page, true, nil
}

// applyViewport pins the window to a size where NotebookLM renders the
// desktop layout. Below roughly 1100px wide the Studio panel collapses
// into tabs and half the selectors stop matching.
func (s *Session) applyViewport(page *rod.Page) error {
	w, h := cfg.ViewportWidth, cfg.ViewportHeight
	if w <= 0 {
		w = 1280
	}
	if h <= 0 {
		h = 800
	}
	return (&proto.EmulationSetDeviceMetricsOverride{
		Width:             w,
		Height:            h,
		DeviceScaleFactor: 1,
		Mobile:            false,
	}).Call(page)
}

// detectLanguage reads the document language attribute and maps it onto a
// supported UI locale, falling back to English.
func (s *Session) detectLanguage(page *rod.Page) string {
	obj, err := page.Timeout(5 * time.Second).Eval(`() => document.documentElement.lang || ""`)
	if err != nil {
		slog.Warn("language detection failed, using default",
			slog.String("lang", DefaultLanguage),
			slog.Any("error", err))
		return DefaultLanguage
	}
	lang := DetectLanguage(obj.Value.Str())
	slog.Info("detected ui language",
		slog.String("raw", obj.Value.Str()),
		slog.String("lang", lang))
	return lang
}

// closeLocked releases everything the session holds. Each step is guarded
// on its own so a dead page cannot keep the browser or Chrome alive.
func (s *Session) closeLocked() {
	if s.page != nil {
		if err := s.page.Close(); err != nil {
			slog.Debug("page close failed", slog.Any("error", err))
		}
		s.page = nil
	}
	if s.browser != nil {
		// Browser.close shuts the whole browser down, which is only ours
		// to do for hosted endpoints or a Chrome we launched. An attached
		// user browser just gets its websocket dropped.
		if cfg.BrowserWSEndpoint != "" || s.chrome.Started() {
			if err := s.browser.Close(); err != nil {
				slog.Debug("browser close failed", slog.Any("error", err))
			}
		}
		s.browser = nil
	}
	if s.chrome != nil {
		s.chrome.Terminate()
	}
	s.stateMu.Lock()
	s.id = ""
	s.stateMu.Unlock()
}
