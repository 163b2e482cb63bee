// Copyright (c) 2026 Shiloh Intercession Mountain
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/shilointercessionmountain-org/shilohwebsite/internal/middleware"
	"github.com/shilointercessionmountain-org/shilohwebsite/internal/model"
	"github.com/shilointercessionmountain-org/shilohwebsite/internal/notify"
	"github.com/shilointercessionmountain-org/shilohwebsite/internal/render"
	"github.com/shilointercessionmountain-org/shilohwebsite/internal/service"
	"github.com/shilointercessionmountain-org/shilohwebsite/internal/store"
	"github.com/shilointercessionmountain-org/shilohwebsite/internal/util"
)

// SettingsHandler handles the church information settings form.
type SettingsHandler struct {
	queries  *store.Queries
	audit    *service.AuditService
	renderer *render.Renderer
	hub      *notify.Hub
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(db *sql.DB, audit *service.AuditService, renderer *render.Renderer, hub *notify.Hub) *SettingsHandler {
	return &SettingsHandler{
		queries:  store.New(db),
		audit:    audit,
		renderer: renderer,
		hub:      hub,
	}
}

// SettingsData holds data for the settings template.
type SettingsData struct {
	Info         model.ChurchInfo
	AboutPreview template.HTML
}

// Show handles GET /admin/settings.
func (h *SettingsHandler) Show(w http.ResponseWriter, r *http.Request) {
	info, err := h.queries.GetChurchInfo(r.Context())
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		logAndInternalError(w, "failed to load church info", "error", err)
		return
	}

	if err := h.renderer.Render(w, r, "admin/settings", render.TemplateData{
		Title: "Church Information",
		User:  middleware.GetUser(r),
		Data: SettingsData{
			Info:         info,
			AboutPreview: service.RenderMarkdown(info.About),
		},
	}); err != nil {
		logAndInternalError(w, "failed to render settings page", "error", err)
	}
}

// Update handles POST /admin/settings.
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, redirectAdminSettings) {
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		flashError(w, r, h.renderer, redirectAdminSettings, "Church name is required")
		return
	}
	email := strings.TrimSpace(r.FormValue("email"))
	if email != "" && !ValidateEmail(email) {
		flashError(w, r, h.renderer, redirectAdminSettings, "Contact email is invalid")
		return
	}

	err := h.queries.UpsertChurchInfo(r.Context(), store.UpsertChurchInfoParams{
		Name:      name,
		Tagline:   util.NullStringFromValue(strings.TrimSpace(r.FormValue("tagline"))),
		About:     strings.TrimSpace(r.FormValue("about")),
		Address:   util.NullStringFromValue(strings.TrimSpace(r.FormValue("address"))),
		Phone:     util.NullStringFromValue(strings.TrimSpace(r.FormValue("phone"))),
		Email:     util.NullStringFromValue(email),
		Facebook:  util.NullStringFromValue(strings.TrimSpace(r.FormValue("facebook"))),
		YouTube:   util.NullStringFromValue(strings.TrimSpace(r.FormValue("youtube"))),
		Instagram: util.NullStringFromValue(strings.TrimSpace(r.FormValue("instagram"))),
		UpdatedAt: time.Now(),
	})
	if err != nil {
		slog.Error("failed to save church info", "error", err)
		flashError(w, r, h.renderer, redirectAdminSettings, "Could not save the settings")
		return
	}

	_ = h.audit.LogConfigEvent(r.Context(), model.EventLevelInfo, "Church info updated",
		middleware.GetUserIDPtr(r), util.ClientIP(r), nil)

	h.hub.PublishContentChanged(notify.ContentChurchInfo, "")

	flashSuccess(w, r, h.renderer, redirectAdminSettings, "Settings saved")
}
