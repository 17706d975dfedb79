package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
)

// Metrics tracks operational counters across the engine.
var metrics struct {
	Connects         atomic.Int64
	Reconnects       atomic.Int64
	LivenessFailures atomic.Int64
	SourcesAdded     atomic.Int64
	SourcesCleared   atomic.Int64
	AudioGenerated   atomic.Int64
	StatusChecks     atomic.Int64
	URLCaptures      atomic.Int64
	CaptureTimeouts  atomic.Int64
	FileDownloads    atomic.Int64
	DownloadErrors   atomic.Int64
	ArtifactsCleared atomic.Int64
	FetchRequests    atomic.Int64
	FetchErrors      atomic.Int64
}

// GetMetrics returns a snapshot of all metrics including cache stats.
func GetMetrics() map[string]int64 {
	hits, misses := CacheStats()
	return map[string]int64{
		"connects":          metrics.Connects.Load(),
		"reconnects":        metrics.Reconnects.Load(),
		"liveness_failures": metrics.LivenessFailures.Load(),
		"sources_added":     metrics.SourcesAdded.Load(),
		"sources_cleared":   metrics.SourcesCleared.Load(),
		"audio_generated":   metrics.AudioGenerated.Load(),
		"status_checks":     metrics.StatusChecks.Load(),
		"url_captures":      metrics.URLCaptures.Load(),
		"capture_timeouts":  metrics.CaptureTimeouts.Load(),
		"file_downloads":    metrics.FileDownloads.Load(),
		"download_errors":   metrics.DownloadErrors.Load(),
		"artifacts_cleared": metrics.ArtifactsCleared.Load(),
		"fetch_requests":    metrics.FetchRequests.Load(),
		"fetch_errors":      metrics.FetchErrors.Load(),
		"cache_hits":        hits,
		"cache_misses":      misses,
	}
}

// FormatMetrics returns metrics as a simple text format for HTTP endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	keys := []string{
		"connects", "reconnects", "liveness_failures",
		"sources_added", "sources_cleared",
		"audio_generated", "status_checks",
		"url_captures", "capture_timeouts",
		"file_downloads", "download_errors",
		"artifacts_cleared",
		"fetch_requests", "fetch_errors",
		"cache_hits", "cache_misses",
	}
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

// Incrementors for session lifecycle.
func IncrConnects()         { metrics.Connects.Add(1) }
func IncrReconnects()       { metrics.Reconnects.Add(1) }
func IncrLivenessFailures() { metrics.LivenessFailures.Add(1) }

// Incrementors for the sources/ sub-package.
func IncrSourcesAdded(n int) { metrics.SourcesAdded.Add(int64(n)) }
func IncrSourcesCleared(n int) {
	metrics.SourcesCleared.Add(int64(n))
}

// Incrementors for the studio/ sub-package.
func IncrAudioGenerated()  { metrics.AudioGenerated.Add(1) }
func IncrStatusChecks()    { metrics.StatusChecks.Add(1) }
func IncrURLCaptures()     { metrics.URLCaptures.Add(1) }
func IncrCaptureTimeouts() { metrics.CaptureTimeouts.Add(1) }
func IncrFileDownloads()   { metrics.FileDownloads.Add(1) }
func IncrDownloadErrors()  { metrics.DownloadErrors.Add(1) }
func IncrArtifactsCleared(n int) {
	metrics.ArtifactsCleared.Add(int64(n))
}

// TrackOperation logs a warning if an operation takes longer than threshold.
func TrackOperation(ctx context.Context, name string, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	if elapsed > 5*time.Second {
		slog.Warn("slow operation", slog.String("op", name), slog.Duration("elapsed", elapsed))
	}
	return err
}
