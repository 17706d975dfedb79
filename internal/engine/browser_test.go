package engine

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"testing"
)

func TestCDPAvailable(t *testing.T) {
	ctx := context.Background()

	t.Run("endpoint up", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/json/version" {
				t.Errorf("probed %q, want /json/version", r.URL.Path)
			}
			w.Write([]byte(`{"Browser":"Chrome/131.0.0.0"}`))
		}))
		defer srv.Close()

		host, port := splitHostPort(t, srv.URL)
		if !cdpAvailable(ctx, host, port) {
			t.Error("cdpAvailable = false for a live endpoint")
		}
	})

	t.Run("endpoint down", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		host, port := splitHostPort(t, srv.URL)
		srv.Close()

		if cdpAvailable(ctx, host, port) {
			t.Error("cdpAvailable = true for a closed endpoint")
		}
	})
}

func splitHostPort(t *testing.T, rawURL string) (string, int) {
	t.Helper()
	u, err := url.Parse(rawURL)
	if err != nil {
		t.Fatalf("parse test server URL: %v", err)
	}
	port, err := strconv.Atoi(u.Port())
	if err != nil {
		t.Fatalf("parse test server port: %v", err)
	}
	return u.Hostname(), port
}

func TestResolveChromeBinary(t *testing.T) {
	t.Run("configured path wins", func(t *testing.T) {
		fake := filepath.Join(t.TempDir(), "chrome")
		if err := os.WriteFile(fake, []byte("#!/bin/sh\n"), 0o755); err != nil {
			t.Fatal(err)
		}
		withConfig(t, Config{ChromePath: fake})

		got, err := ResolveChromeBinary()
		if err != nil {
			t.Fatalf("ResolveChromeBinary() error = %v", err)
		}
		if got != fake {
			t.Errorf("got %q, want configured path %q", got, fake)
		}
	})

	t.Run("missing configured path falls through", func(t *testing.T) {
		withConfig(t, Config{ChromePath: filepath.Join(t.TempDir(), "nope")})
		// Whether a system chrome exists depends on the host; only the
		// configured-path bypass is asserted here.
		got, err := ResolveChromeBinary()
		if err == nil && got == Cfg.ChromePath {
			t.Errorf("resolved the missing configured path %q", got)
		}
	})
}

func TestNewChromeManager(t *testing.T) {
	cm := NewChromeManager("127.0.0.1", 9222)
	if cm.host != "127.0.0.1" || cm.port != 9222 {
		t.Errorf("unexpected manager: %+v", cm)
	}
	// Terminate without a self-started chrome is a no-op.
	cm.Terminate()
}
