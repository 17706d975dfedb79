package engine

import (
	"bufio"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	_ "modernc.org/sqlite"
)

// AuthCookie is a browser cookie in the portable storage-state shape.
// SameSite is one of "Strict", "Lax", "None" or empty (browser default).
type AuthCookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Expires  float64 `json:"expires,omitempty"`
	HTTPOnly bool    `json:"httpOnly"`
	Secure   bool    `json:"secure"`
	SameSite string  `json:"sameSite,omitempty"`
}

// isGoogleDomain filters cookies to the domains the target application
// actually needs; 3rd-party cookies from an exported jar are dropped.
func isGoogleDomain(domain string) bool {
	return strings.Contains(domain, "google.com") ||
		strings.Contains(domain, "google.") ||
		strings.Contains(domain, "gstatic.com") ||
		strings.Contains(domain, "googleapis.com") ||
		strings.Contains(domain, "youtube.com")
}

// ParseCookiesTxt reads a Netscape cookies.txt file. Format is
// tab-separated: domain, include_subdomains, path, secure, expiration,
// name, value. Comment and malformed lines are skipped; an expiration
// of 0 means a session cookie.
func ParseCookiesTxt(path string) ([]AuthCookie, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open cookies file: %w", err)
	}
	defer f.Close()

	var cookies []AuthCookie
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Split(line, "\t")
		if len(parts) < 7 {
			continue
		}

		domain := parts[0]
		if !isGoogleDomain(domain) {
			continue
		}

		c := AuthCookie{
			Name:   parts[5],
			Value:  parts[6],
			Domain: domain,
			Path:   parts[2],
			Secure: strings.EqualFold(parts[3], "TRUE"),
		}
		if exp, err := strconv.ParseInt(parts[4], 10, 64); err == nil && exp > 0 {
			c.Expires = float64(exp)
		}
		cookies = append(cookies, c)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read cookies file: %w", err)
	}
	return cookies, nil
}

// cookieCloudExport matches the CookieCloud JSON export: an array whose
// first element maps domains to cookie lists.
type cookieCloudExport []struct {
	Data map[string][]cookieCloudCookie `json:"data"`
}

type cookieCloudCookie struct {
	Name           string  `json:"name"`
	Value          string  `json:"value"`
	Domain         string  `json:"domain"`
	Path           string  `json:"path"`
	ExpirationDate float64 `json:"expirationDate"`
	Secure         bool    `json:"secure"`
	HTTPOnly       bool    `json:"httpOnly"`
	SameSite       string  `json:"sameSite"`
}

// ParseCookieCloud reads a CookieCloud JSON export, keeping only
// Google-domain cookies.
func ParseCookieCloud(path string) ([]AuthCookie, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open cookiecloud file: %w", err)
	}

	var export cookieCloudExport
	if err := json.Unmarshal(raw, &export); err != nil {
		return nil, fmt.Errorf("decode cookiecloud file: %w", err)
	}
	if len(export) == 0 || len(export[0].Data) == 0 {
		return nil, fmt.Errorf("cookiecloud file has no cookie data")
	}

	var cookies []AuthCookie
	for _, domainCookies := range export[0].Data {
		for _, cc := range domainCookies {
			if !isGoogleDomain(cc.Domain) {
				continue
			}
			c := AuthCookie{
				Name:     cc.Name,
				Value:    cc.Value,
				Domain:   cc.Domain,
				Path:     cc.Path,
				Secure:   cc.Secure,
				HTTPOnly: cc.HTTPOnly,
			}
			if c.Path == "" {
				c.Path = "/"
			}
			if cc.ExpirationDate > 0 {
				c.Expires = float64(int64(cc.ExpirationDate))
			}
			// CookieCloud uses strict/lax/no_restriction/unspecified.
			switch strings.ToLower(cc.SameSite) {
			case "strict":
				c.SameSite = "Strict"
			case "lax":
				c.SameSite = "Lax"
			case "none", "no_restriction":
				c.SameSite = "None"
			}
			cookies = append(cookies, c)
		}
	}
	return cookies, nil
}

// LoadStorageState reads a storage_state.json file (the portable
// session export: cookies plus origin storage; only cookies are used).
func LoadStorageState(path string) ([]AuthCookie, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open storage state: %w", err)
	}

	var state struct {
		Cookies []AuthCookie `json:"cookies"`
	}
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("decode storage state: %w", err)
	}
	return state.Cookies, nil
}

// LoadAuthCookies resolves the configured auth sources in priority
// order: storage state, CookieCloud export, Netscape cookies.txt.
// Returns the cookies and the name of the winning source ("" when no
// source is configured or usable).
func LoadAuthCookies() ([]AuthCookie, string) {
	type source struct {
		name  string
		path  string
		parse func(string) ([]AuthCookie, error)
	}
	sources := []source{
		{"storage_state", cfg.StorageStateFile, LoadStorageState},
		{"cookiecloud", cfg.CookieCloudFile, ParseCookieCloud},
		{"cookies_txt", cfg.CookiesFile, ParseCookiesTxt},
	}

	for _, src := range sources {
		if src.path == "" {
			continue
		}
		cookies, err := src.parse(src.path)
		if err != nil {
			slog.Warn("auth cookies: source unusable",
				slog.String("source", src.name),
				slog.String("path", src.path),
				slog.Any("error", err))
			continue
		}
		if len(cookies) == 0 {
			continue
		}
		slog.Info("auth cookies loaded",
			slog.String("source", src.name),
			slog.Int("count", len(cookies)))
		return cookies, src.name
	}
	return nil, ""
}

// CookieParams converts portable cookies to the CDP parameter shape
// rod expects for page.SetCookies.
func CookieParams(cookies []AuthCookie) []*proto.NetworkCookieParam {
	params := make([]*proto.NetworkCookieParam, 0, len(cookies))
	for _, c := range cookies {
		p := &proto.NetworkCookieParam{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Secure:   c.Secure,
			HTTPOnly: c.HTTPOnly,
		}
		if c.Expires > 0 {
			p.Expires = proto.TimeSinceEpoch(c.Expires)
		}
		switch c.SameSite {
		case "Strict":
			p.SameSite = proto.NetworkCookieSameSiteStrict
		case "Lax":
			p.SameSite = proto.NetworkCookieSameSiteLax
		case "None":
			p.SameSite = proto.NetworkCookieSameSiteNone
		}
		params = append(params, p)
	}
	return params
}

// PageCookieHeader reads the live cookies scoped to the given URLs and
// formats them as a Cookie request header, for fetching a captured
// media URL outside the browser.
func PageCookieHeader(p *rod.Page, urls ...string) (string, error) {
	req := proto.NetworkGetCookies{}
	if len(urls) > 0 {
		req.Urls = urls
	}
	res, err := req.Call(p)
	if err != nil {
		return "", fmt.Errorf("get page cookies: %w", err)
	}

	var b strings.Builder
	for i, c := range res.Cookies {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(c.Name)
		b.WriteByte('=')
		b.WriteString(c.Value)
	}
	return b.String(), nil
}

// HasChromeLoginState reports whether the Chrome profile used for
// auto-launch already carries Google cookies. The profile stores
// cookies in Default/Cookies (SQLite). Chrome may hold the database
// locked, so a failed query counts as "present" as long as the file
// exists.
func HasChromeLoginState() bool {
	dir := cfg.ChromeUserDataDir
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return false
		}
		dir = filepath.Join(home, ".notebooklm-chrome")
	}

	dbPath := filepath.Join(dir, "Default", "Cookies")
	if _, err := os.Stat(dbPath); err != nil {
		return false
	}

	db, err := sql.Open("sqlite", "file:"+dbPath+"?mode=ro")
	if err != nil {
		return true
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM cookies WHERE host_key LIKE '%google.com'`).Scan(&n); err != nil {
		slog.Debug("chrome cookie db not queryable, assuming login present", slog.Any("error", err))
		return true
	}
	slog.Debug("chrome profile google cookies", slog.Int("count", n))
	return n > 0
}
