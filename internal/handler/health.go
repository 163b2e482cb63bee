// Copyright (c) 2026 Shiloh Intercession Mountain
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"syscall"
	"time"

	"github.com/shilointercessionmountain-org/shilohwebsite/internal/cache"
	"github.com/shilointercessionmountain-org/shilohwebsite/internal/middleware"
)

// HealthHandler serves the health, liveness, and readiness endpoints.
type HealthHandler struct {
	db         *sql.DB
	manager    *cache.Manager
	uploadsDir string
	version    string
	startTime  time.Time
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(db *sql.DB, manager *cache.Manager, uploadsDir, version string) *HealthHandler {
	return &HealthHandler{
		db:         db,
		manager:    manager,
		uploadsDir: uploadsDir,
		version:    version,
		startTime:  time.Now(),
	}
}

// healthCheck is a single subsystem check result.
type healthCheck struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// healthStatus is the /health response payload. Check details and cache
// stats are included only for signed-in staff.
type healthStatus struct {
	Status  string                 `json:"status"`
	Version string                 `json:"version"`
	Uptime  string                 `json:"uptime,omitempty"`
	Checks  map[string]healthCheck `json:"checks,omitempty"`
	Cache   any                    `json:"cache,omitempty"`
}

// Health handles GET /health.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	dbCheck := h.checkDatabase(r.Context())
	diskCheck := h.checkDiskSpace()

	status := "ok"
	code := http.StatusOK
	if dbCheck.Status != "ok" || diskCheck.Status != "ok" {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	payload := healthStatus{Status: status, Version: h.version}

	if user := middleware.GetUser(r); user != nil && user.IsModerator() {
		payload.Uptime = time.Since(h.startTime).Round(time.Second).String()
		payload.Checks = map[string]healthCheck{
			"database": dbCheck,
			"disk":     diskCheck,
		}
		if stats, ok := h.manager.Stats(); ok {
			payload.Cache = stats
		}
	}

	writeJSON(w, code, payload)
}

// Liveness handles GET /health/live.
func (h *HealthHandler) Liveness(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// Readiness handles GET /health/ready.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	if check := h.checkDatabase(r.Context()); check.Status != "ok" {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not_ready"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// checkDatabase verifies database connectivity.
func (h *HealthHandler) checkDatabase(ctx context.Context) healthCheck {
	start := time.Now()
	if err := h.db.PingContext(ctx); err != nil {
		return healthCheck{
			Status:  "unreachable",
			Message: err.Error(),
			Latency: time.Since(start).String(),
		}
	}
	return healthCheck{Status: "ok", Latency: time.Since(start).String()}
}

// minUploadsDiskSpace is the free-space floor below which the disk check
// reports degraded.
const minUploadsDiskSpace = 100 * 1024 * 1024

// checkDiskSpace checks the free space where uploads are stored.
func (h *HealthHandler) checkDiskSpace() healthCheck {
	if _, err := os.Stat(h.uploadsDir); os.IsNotExist(err) {
		return healthCheck{Status: "ok", Message: "uploads directory not created yet"}
	}

	var stat syscall.Statfs_t
	if err := syscall.Statfs(h.uploadsDir, &stat); err != nil {
		return healthCheck{Status: "degraded", Message: "disk check failed: " + err.Error()}
	}

	available := stat.Bavail * uint64(stat.Bsize)
	if available < minUploadsDiskSpace {
		return healthCheck{Status: "degraded", Message: "low disk space: " + formatBytes(available) + " available"}
	}
	return healthCheck{Status: "ok", Message: formatBytes(available) + " available"}
}

// formatBytes converts a byte count to a human-readable string.
func formatBytes(bytes uint64) string {
	const (
		kb = 1024
		mb = kb * 1024
		gb = mb * 1024
	)
	switch {
	case bytes >= gb:
		return fmt.Sprintf("%.2f GB", float64(bytes)/gb)
	case bytes >= mb:
		return fmt.Sprintf("%.2f MB", float64(bytes)/mb)
	case bytes >= kb:
		return fmt.Sprintf("%.2f KB", float64(bytes)/kb)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
