package api

import (
	"net/http"
	"runtime"
	"time"
)

// SystemMetrics represents the complete system metrics response.
type SystemMetrics struct {
	Timestamp     string           `json:"timestamp"`
	Version       string           `json:"version"`
	UptimeSeconds int64            `json:"uptime_seconds"`
	Runtime       RuntimeMetrics   `json:"runtime"`
	Stores        StoreCounts      `json:"stores"`
	RateLimit     *RateLimitMetric `json:"rate_limit,omitempty"`
	Audit         AuditMetrics     `json:"audit"`
}

// RuntimeMetrics contains Go runtime statistics.
type RuntimeMetrics struct {
	Goroutines    int     `json:"goroutines"`
	MemoryAllocMB float64 `json:"memory_alloc_mb"`
	MemoryTotalMB float64 `json:"memory_total_mb"`
	NumGC         uint32  `json:"num_gc"`
}

// StoreCounts contains record counts of the encrypted stores.
type StoreCounts struct {
	Users     int `json:"users"`
	Companies int `json:"companies"`
}

// RateLimitMetric contains rate limiter statistics.
type RateLimitMetric struct {
	TrackedKeys int `json:"tracked_keys"`
}

// AuditMetrics contains audit queue statistics.
type AuditMetrics struct {
	Enabled bool `json:"enabled"`
	Queued  int  `json:"queued"`
}

// bytesPerMB converts byte counts for the runtime section.
const bytesPerMB = 1024 * 1024

// handleMetrics returns runtime and store metrics.
func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	metrics := SystemMetrics{
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		Version:       s.version,
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		Runtime: RuntimeMetrics{
			Goroutines:    runtime.NumGoroutine(),
			MemoryAllocMB: float64(memStats.Alloc) / bytesPerMB,
			MemoryTotalMB: float64(memStats.TotalAlloc) / bytesPerMB,
			NumGC:         memStats.NumGC,
		},
		Stores: StoreCounts{
			Users:     s.users.Count(),
			Companies: s.companies.Count(),
		},
		Audit: AuditMetrics{
			Enabled: s.auditCh != nil,
			Queued:  len(s.auditCh),
		},
	}

	if s.limiter != nil {
		metrics.RateLimit = &RateLimitMetric{TrackedKeys: s.limiter.Len()}
	}

	writeJSON(w, http.StatusOK, metrics)
}
