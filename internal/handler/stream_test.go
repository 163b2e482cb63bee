// Copyright (c) 2026 Shiloh Intercession Mountain
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shilointercessionmountain-org/shilohwebsite/internal/middleware"
	"github.com/shilointercessionmountain-org/shilohwebsite/internal/model"
)

// The event stream carries admin notifications, so it sits behind the
// moderator gate like the rest of the back office.
func TestStreamRoleGate(t *testing.T) {
	hub := testHub(t)
	gated := middleware.RequireModerator()(http.HandlerFunc(NewStreamHandler(hub).Serve))

	t.Run("user role is denied", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, RouteStream, nil)
		req = withUser(req, model.User{ID: 1, Role: model.RoleUser})

		rec := httptest.NewRecorder()
		gated.ServeHTTP(rec, req)

		if rec.Code != http.StatusForbidden {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusForbidden)
		}
		if strings.Contains(rec.Body.String(), ": connected") {
			t.Error("stream body leaked to a non-moderator")
		}
	})

	t.Run("moderator connects", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel() // the handler returns once the client is gone

		req := httptest.NewRequest(http.MethodGet, RouteStream, nil).WithContext(ctx)
		req = withUser(req, model.User{ID: 2, Role: model.RoleModerator})

		rec := httptest.NewRecorder()
		gated.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
			t.Errorf("content type = %q, want text/event-stream", ct)
		}
		if !strings.Contains(rec.Body.String(), ": connected") {
			t.Errorf("expected connected frame, got %q", rec.Body.String())
		}
	})
}
