// Copyright (c) 2026 Shiloh Intercession Mountain
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/shilointercessionmountain-org/shilohwebsite/internal/middleware"
	"github.com/shilointercessionmountain-org/shilohwebsite/internal/model"
	"github.com/shilointercessionmountain-org/shilohwebsite/internal/render"
	"github.com/shilointercessionmountain-org/shilohwebsite/internal/store"
)

// AuditEventsPerPage is the number of audit entries shown per page.
const AuditEventsPerPage = 25

// auditCategories lists the filterable audit log categories.
var auditCategories = []string{
	model.EventCategoryAuth,
	model.EventCategoryUser,
	model.EventCategoryRequest,
	model.EventCategoryContent,
	model.EventCategoryContact,
	model.EventCategoryConfig,
	model.EventCategorySystem,
	model.EventCategoryCache,
}

// AuditHandler serves the admin audit log viewer.
type AuditHandler struct {
	queries  *store.Queries
	renderer *render.Renderer
}

// NewAuditHandler creates a new AuditHandler.
func NewAuditHandler(db *sql.DB, renderer *render.Renderer) *AuditHandler {
	return &AuditHandler{
		queries:  store.New(db),
		renderer: renderer,
	}
}

// AuditEntry is an audit event prepared for display.
type AuditEntry struct {
	model.AuditEvent
	MetadataText string
}

// AuditListData holds data for the audit log template.
type AuditListData struct {
	Entries    []AuditEntry
	Categories []string
	Category   string
	Pagination AdminPagination
}

// List handles GET /admin/audit.
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	if !validAuditCategory(category) {
		category = ""
	}
	page := parsePage(r.URL.Query())

	total, err := h.queries.CountAuditEvents(r.Context(), category)
	if err != nil {
		logAndInternalError(w, "failed to count audit events", "error", err)
		return
	}

	events, err := h.queries.ListAuditEvents(r.Context(), store.ListAuditEventsParams{
		Category: category,
		Limit:    AuditEventsPerPage,
		Offset:   int64((page - 1) * AuditEventsPerPage),
	})
	if err != nil {
		logAndInternalError(w, "failed to list audit events", "error", err)
		return
	}

	entries := make([]AuditEntry, 0, len(events))
	for _, event := range events {
		entries = append(entries, AuditEntry{
			AuditEvent:   event,
			MetadataText: formatMetadata(event.Metadata),
		})
	}

	var params url.Values
	if category != "" {
		params = url.Values{"category": {category}}
	}

	if err := h.renderer.Render(w, r, "admin/audit", render.TemplateData{
		Title: "Audit Log",
		User:  middleware.GetUser(r),
		Data: AuditListData{
			Entries:    entries,
			Categories: auditCategories,
			Category:   category,
			Pagination: BuildAdminPagination(page, total, AuditEventsPerPage, redirectAdmin+RouteAudit, params),
		},
	}); err != nil {
		logAndInternalError(w, "failed to render audit page", "error", err)
	}
}

func validAuditCategory(category string) bool {
	for _, c := range auditCategories {
		if c == category {
			return true
		}
	}
	return false
}

// formatMetadata turns a metadata JSON object into a compact
// "key: value, key: value" string for display. Non-object payloads are
// returned as-is.
func formatMetadata(raw string) string {
	if raw == "" || raw == "{}" || raw == "null" {
		return ""
	}

	var m map[string]any
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return raw
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %v", k, m[k]))
	}
	return strings.Join(parts, ", ")
}
