// Copyright (c) 2026 Shiloh Intercession Mountain
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/shilointercessionmountain-org/shilohwebsite/internal/middleware"
	"github.com/shilointercessionmountain-org/shilohwebsite/internal/model"
	"github.com/shilointercessionmountain-org/shilohwebsite/internal/render"
	"github.com/shilointercessionmountain-org/shilohwebsite/internal/store"
)

// DashboardHandler serves the admin landing page.
type DashboardHandler struct {
	queries  *store.Queries
	renderer *render.Renderer
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(db *sql.DB, renderer *render.Renderer) *DashboardHandler {
	return &DashboardHandler{
		queries:  store.New(db),
		renderer: renderer,
	}
}

// DashboardData holds the counters shown on the admin dashboard.
type DashboardData struct {
	PendingRequests int64
	UnreadMessages  int64
	UserCount       int64
	EventCount      int64
	RecentEvents    []model.Event
}

// Show handles GET /admin.
func (h *DashboardHandler) Show(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var data DashboardData
	var err error

	if data.PendingRequests, err = h.queries.CountAdminRequestsByStatus(ctx, model.RequestStatusPending); err != nil {
		slog.Error("failed to count pending requests", "error", err)
	}
	if data.UnreadMessages, err = h.queries.CountUnreadContactSubmissions(ctx); err != nil {
		slog.Error("failed to count unread messages", "error", err)
	}
	if data.UserCount, err = h.queries.CountUsers(ctx); err != nil {
		slog.Error("failed to count users", "error", err)
	}
	if data.EventCount, err = h.queries.CountEvents(ctx); err != nil {
		slog.Error("failed to count events", "error", err)
	}
	if data.RecentEvents, err = h.queries.ListEvents(ctx, store.ListEventsParams{Limit: 5}); err != nil {
		slog.Error("failed to list recent events", "error", err)
	}

	if err := h.renderer.Render(w, r, "admin/dashboard", render.TemplateData{
		Title: "Dashboard",
		User:  middleware.GetUser(r),
		Data:  data,
	}); err != nil {
		logAndInternalError(w, "failed to render dashboard", "error", err)
	}
}
