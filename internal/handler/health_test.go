// Copyright (c) 2026 Shiloh Intercession Mountain
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shilointercessionmountain-org/shilohwebsite/internal/cache"
	"github.com/shilointercessionmountain-org/shilohwebsite/internal/model"
)

func newHealthTestHandler(t *testing.T) *HealthHandler {
	t.Helper()

	db := testDB(t)
	manager := cache.NewManager(cache.NewSimpleMemoryCache(time.Minute))
	t.Cleanup(func() { manager.Close() })

	return NewHealthHandler(db, manager, t.TempDir(), "test")
}

func TestHealthAnonymous(t *testing.T) {
	h := newHealthTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.Health(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (body %q)", rec.Code, http.StatusOK, rec.Body.String())
	}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if string(payload["status"]) != `"ok"` {
		t.Errorf("status = %s, want ok", payload["status"])
	}
	// Anonymous callers get the verdict without internals.
	if _, ok := payload["checks"]; ok {
		t.Error("check details leaked to anonymous caller")
	}
	if _, ok := payload["uptime"]; ok {
		t.Error("uptime leaked to anonymous caller")
	}
}

func TestHealthModeratorSeesChecks(t *testing.T) {
	h := newHealthTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req = withUser(req, model.User{ID: 1, Role: model.RoleModerator})
	rec := httptest.NewRecorder()
	h.Health(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var payload struct {
		Status string                       `json:"status"`
		Checks map[string]map[string]string `json:"checks"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if payload.Checks["database"]["status"] != "ok" {
		t.Errorf("database check = %v, want ok", payload.Checks["database"])
	}
	if _, ok := payload.Checks["disk"]; !ok {
		t.Error("expected disk check for moderator")
	}
}

func TestLiveness(t *testing.T) {
	h := newHealthTestHandler(t)

	rec := httptest.NewRecorder()
	h.Liveness(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var payload map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if payload["status"] != "alive" {
		t.Errorf("status = %q, want alive", payload["status"])
	}
}

func TestReadiness(t *testing.T) {
	h := newHealthTestHandler(t)

	rec := httptest.NewRecorder()
	h.Readiness(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var payload map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if payload["status"] != "ready" {
		t.Errorf("status = %q, want ready", payload["status"])
	}
}
