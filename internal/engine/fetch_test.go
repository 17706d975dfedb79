package engine

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestFetchMedia(t *testing.T) {
	ctx := context.Background()

	t.Run("success with headers", func(t *testing.T) {
		var gotReferer, gotCookie string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotReferer = r.Header.Get("Referer")
			gotCookie = r.Header.Get("Cookie")
			w.Write([]byte("audio-bytes"))
		}))
		defer srv.Close()

		data, err := FetchMedia(ctx, srv.URL, "https://notebooklm.google.com/notebook/x", "SID=abc")
		if err != nil {
			t.Fatalf("FetchMedia() error = %v", err)
		}
		if string(data) != "audio-bytes" {
			t.Errorf("got body %q, want audio-bytes", data)
		}
		if gotReferer != "https://notebooklm.google.com/notebook/x" {
			t.Errorf("referer = %q", gotReferer)
		}
		if gotCookie != "SID=abc" {
			t.Errorf("cookie = %q", gotCookie)
		}
	})

	t.Run("retries transient status", func(t *testing.T) {
		var calls atomic.Int64
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) == 1 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			w.Write([]byte("ok"))
		}))
		defer srv.Close()

		data, err := FetchMedia(ctx, srv.URL, "", "")
		if err != nil {
			t.Fatalf("FetchMedia() error = %v", err)
		}
		if string(data) != "ok" {
			t.Errorf("got body %q, want ok", data)
		}
		if calls.Load() != 2 {
			t.Errorf("server saw %d calls, want 2", calls.Load())
		}
	})

	t.Run("stops on client error", func(t *testing.T) {
		var calls atomic.Int64
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		if _, err := FetchMedia(ctx, srv.URL, "", ""); err == nil {
			t.Fatal("expected error for 404")
		}
		if calls.Load() != 1 {
			t.Errorf("server saw %d calls, want 1 (no retries on 4xx)", calls.Load())
		}
	})
}

func TestIsRetryableStatus(t *testing.T) {
	retryable := []int{429, 500, 502, 503, 504}
	for _, code := range retryable {
		if !isRetryableStatus(code) {
			t.Errorf("isRetryableStatus(%d) = false, want true", code)
		}
	}
	for _, code := range []int{200, 301, 400, 403, 404} {
		if isRetryableStatus(code) {
			t.Errorf("isRetryableStatus(%d) = true, want false", code)
		}
	}
}
