// Copyright (c) 2026 Shiloh Intercession Mountain
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/shilointercessionmountain-org/shilohwebsite/internal/middleware"
	"github.com/shilointercessionmountain-org/shilohwebsite/internal/model"
	"github.com/shilointercessionmountain-org/shilohwebsite/internal/notify"
	"github.com/shilointercessionmountain-org/shilohwebsite/internal/render"
	"github.com/shilointercessionmountain-org/shilohwebsite/internal/service"
	"github.com/shilointercessionmountain-org/shilohwebsite/internal/store"
	"github.com/shilointercessionmountain-org/shilohwebsite/internal/util"
)

// ServiceTimesHandler handles admin service schedule management.
type ServiceTimesHandler struct {
	queries  *store.Queries
	audit    *service.AuditService
	renderer *render.Renderer
	hub      *notify.Hub
}

// NewServiceTimesHandler creates a new ServiceTimesHandler.
func NewServiceTimesHandler(db *sql.DB, audit *service.AuditService, renderer *render.Renderer, hub *notify.Hub) *ServiceTimesHandler {
	return &ServiceTimesHandler{
		queries:  store.New(db),
		audit:    audit,
		renderer: renderer,
		hub:      hub,
	}
}

// ServiceTimesListData holds data for the service times template.
type ServiceTimesListData struct {
	Times []model.ServiceTime
}

// List handles GET /admin/service-times.
func (h *ServiceTimesHandler) List(w http.ResponseWriter, r *http.Request) {
	times, err := h.queries.ListServiceTimes(r.Context())
	if err != nil {
		logAndInternalError(w, "failed to list service times", "error", err)
		return
	}

	if err := h.renderer.Render(w, r, "admin/service_times", render.TemplateData{
		Title: "Service Times",
		User:  middleware.GetUser(r),
		Data:  ServiceTimesListData{Times: times},
	}); err != nil {
		logAndInternalError(w, "failed to render service times page", "error", err)
	}
}

// serviceTimeForm holds a parsed and validated service slot form.
type serviceTimeForm struct {
	dayOfWeek int64
	startTime string
	label     string
	isActive  bool
	position  int64
}

func parseServiceTimeForm(r *http.Request) (serviceTimeForm, string) {
	var f serviceTimeForm

	f.label = strings.TrimSpace(r.FormValue("label"))
	if f.label == "" {
		return f, "Label is required"
	}

	day, err := strconv.ParseInt(r.FormValue("day_of_week"), 10, 64)
	if err != nil {
		return f, "Day of week must be between 0 (Sunday) and 6 (Saturday)"
	}
	f.dayOfWeek = day
	f.startTime = strings.TrimSpace(r.FormValue("start_time"))

	if msg := ValidateServiceTime(f.dayOfWeek, f.startTime); msg != "" {
		return f, msg
	}

	f.isActive = r.FormValue("is_active") == "on"
	f.position, _ = strconv.ParseInt(r.FormValue("position"), 10, 64)

	return f, ""
}

// Create handles POST /admin/service-times.
func (h *ServiceTimesHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, redirectAdminServiceTimes) {
		return
	}

	form, msg := parseServiceTimeForm(r)
	if msg != "" {
		flashError(w, r, h.renderer, redirectAdminServiceTimes, msg)
		return
	}

	now := time.Now()
	slot, err := h.queries.CreateServiceTime(r.Context(), store.CreateServiceTimeParams{
		DayOfWeek: form.dayOfWeek,
		StartTime: form.startTime,
		Label:     form.label,
		IsActive:  form.isActive,
		Position:  form.position,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		slog.Error("failed to create service time", "error", err)
		flashError(w, r, h.renderer, redirectAdminServiceTimes, "Could not create the service time")
		return
	}

	h.logContent(r, "Service time created", slot)
	h.hub.PublishContentChanged(notify.ContentServiceTimes, "")

	flashSuccess(w, r, h.renderer, redirectAdminServiceTimes, "Service time created")
}

// Update handles POST /admin/service-times/{id}.
func (h *ServiceTimesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		flashError(w, r, h.renderer, redirectAdminServiceTimes, "Invalid service time ID")
		return
	}

	if _, ok := requireEntityWithRedirect(w, r, h.renderer, redirectAdminServiceTimes, "service time", id,
		func(id int64) (model.ServiceTime, error) { return h.queries.GetServiceTimeByID(r.Context(), id) }); !ok {
		return
	}

	if !parseFormOrRedirect(w, r, h.renderer, redirectAdminServiceTimes) {
		return
	}
	form, msg := parseServiceTimeForm(r)
	if msg != "" {
		flashError(w, r, h.renderer, redirectAdminServiceTimes, msg)
		return
	}

	slot, err := h.queries.UpdateServiceTime(r.Context(), store.UpdateServiceTimeParams{
		ID:        id,
		DayOfWeek: form.dayOfWeek,
		StartTime: form.startTime,
		Label:     form.label,
		IsActive:  form.isActive,
		Position:  form.position,
		UpdatedAt: time.Now(),
	})
	if err != nil {
		slog.Error("failed to update service time", "error", err, "service_time_id", id)
		flashError(w, r, h.renderer, redirectAdminServiceTimes, "Could not save the service time")
		return
	}

	h.logContent(r, "Service time updated", slot)
	h.hub.PublishContentChanged(notify.ContentServiceTimes, "")

	flashSuccess(w, r, h.renderer, redirectAdminServiceTimes, "Service time saved")
}

// Delete handles POST /admin/service-times/{id}/delete.
func (h *ServiceTimesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		flashError(w, r, h.renderer, redirectAdminServiceTimes, "Invalid service time ID")
		return
	}

	slot, ok := requireEntityWithRedirect(w, r, h.renderer, redirectAdminServiceTimes, "service time", id,
		func(id int64) (model.ServiceTime, error) { return h.queries.GetServiceTimeByID(r.Context(), id) })
	if !ok {
		return
	}

	if err := h.queries.DeleteServiceTime(r.Context(), id); err != nil {
		slog.Error("failed to delete service time", "error", err, "service_time_id", id)
		flashError(w, r, h.renderer, redirectAdminServiceTimes, "Could not delete the service time")
		return
	}

	h.logContent(r, "Service time deleted", slot)
	h.hub.PublishContentChanged(notify.ContentServiceTimes, "")

	flashSuccess(w, r, h.renderer, redirectAdminServiceTimes, "Service time deleted")
}

func (h *ServiceTimesHandler) logContent(r *http.Request, message string, slot model.ServiceTime) {
	_ = h.audit.LogContentEvent(r.Context(), model.EventLevelInfo, message, middleware.GetUserIDPtr(r),
		util.ClientIP(r), map[string]any{"service_time_id": slot.ID, "label": slot.Label})
}
