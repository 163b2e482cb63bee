// Copyright (c) 2026 Shiloh Intercession Mountain
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"errors"
	"fmt"
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

// EventsPerPage is the number of events shown per admin listing page.
const EventsPerPage = 20

// datetimeLocalLayout matches the value format of an HTML
// datetime-local input.
const datetimeLocalLayout = "2006-01-02T15:04"

// EventsHandler handles admin event management.
type EventsHandler struct {
	queries  *store.Queries
	media    *service.MediaService
	audit    *service.AuditService
	renderer *render.Renderer
	hub      *notify.Hub
}

// NewEventsHandler creates a new EventsHandler.
func NewEventsHandler(db *sql.DB, media *service.MediaService, audit *service.AuditService, renderer *render.Renderer, hub *notify.Hub) *EventsHandler {
	return &EventsHandler{
		queries:  store.New(db),
		media:    media,
		audit:    audit,
		renderer: renderer,
		hub:      hub,
	}
}

// EventsListData holds data for the events listing template.
type EventsListData struct {
	Events     []model.Event
	Pagination AdminPagination
}

// EventFormData holds data for the event create/edit form template.
type EventFormData struct {
	Event  model.Event
	IsEdit bool
}

// List handles GET /admin/events.
func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	page := parsePage(r.URL.Query())

	total, err := h.queries.CountEvents(r.Context())
	if err != nil {
		logAndInternalError(w, "failed to count events", "error", err)
		return
	}

	events, err := h.queries.ListEvents(r.Context(), store.ListEventsParams{
		Limit:  EventsPerPage,
		Offset: int64((page - 1) * EventsPerPage),
	})
	if err != nil {
		logAndInternalError(w, "failed to list events", "error", err)
		return
	}

	if err := h.renderer.Render(w, r, "admin/events", render.TemplateData{
		Title: "Events",
		User:  middleware.GetUser(r),
		Data: EventsListData{
			Events:     events,
			Pagination: BuildAdminPagination(page, total, EventsPerPage, redirectAdminEvents, nil),
		},
	}); err != nil {
		logAndInternalError(w, "failed to render events page", "error", err)
	}
}

// NewForm handles GET /admin/events/new.
func (h *EventsHandler) NewForm(w http.ResponseWriter, r *http.Request) {
	if err := h.renderer.Render(w, r, "admin/event_form", render.TemplateData{
		Title: "New Event",
		User:  middleware.GetUser(r),
		Data:  EventFormData{IsEdit: false},
	}); err != nil {
		logAndInternalError(w, "failed to render event form", "error", err)
	}
}

// EditForm handles GET /admin/events/{id}.
func (h *EventsHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		flashError(w, r, h.renderer, redirectAdminEvents, "Invalid event ID")
		return
	}

	event, ok := requireEntityWithRedirect(w, r, h.renderer, redirectAdminEvents, "event", id,
		func(id int64) (model.Event, error) { return h.queries.GetEventByID(r.Context(), id) })
	if !ok {
		return
	}

	if err := h.renderer.Render(w, r, "admin/event_form", render.TemplateData{
		Title: "Edit Event",
		User:  middleware.GetUser(r),
		Data:  EventFormData{Event: event, IsEdit: true},
	}); err != nil {
		logAndInternalError(w, "failed to render event form", "error", err)
	}
}

// eventForm holds a parsed and validated event form.
type eventForm struct {
	title       string
	slug        string
	description string
	location    string
	startsAt    time.Time
	endsAt      sql.NullTime
	isActive    bool
	position    int64
}

func parseEventForm(r *http.Request) (eventForm, string) {
	var f eventForm

	f.title = strings.TrimSpace(r.FormValue("title"))
	if f.title == "" {
		return f, "Title is required"
	}

	f.slug = strings.TrimSpace(r.FormValue("slug"))
	if f.slug == "" {
		f.slug = util.Slugify(f.title)
	}

	f.description = strings.TrimSpace(r.FormValue("description"))
	f.location = strings.TrimSpace(r.FormValue("location"))

	startsAt, err := time.ParseInLocation(datetimeLocalLayout, r.FormValue("starts_at"), time.Local)
	if err != nil {
		return f, "Start date and time are required"
	}
	f.startsAt = startsAt

	if raw := r.FormValue("ends_at"); raw != "" {
		endsAt, err := time.ParseInLocation(datetimeLocalLayout, raw, time.Local)
		if err != nil {
			return f, "End date and time are invalid"
		}
		if endsAt.Before(f.startsAt) {
			return f, "End must be after start"
		}
		f.endsAt = sql.NullTime{Time: endsAt, Valid: true}
	}

	f.isActive = r.FormValue("is_active") == "on"
	f.position, _ = strconv.ParseInt(r.FormValue("position"), 10, 64)

	return f, ""
}

// formImage reads the optional banner upload from the parsed form. It
// returns the stored path, or empty string when no file was attached.
func (h *EventsHandler) formImage(r *http.Request) (string, string) {
	file, header, err := r.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", ""
		}
		return "", "Could not read the uploaded image"
	}
	defer file.Close()

	relPath, err := h.media.UploadEventImage(file, header)
	if err != nil {
		slog.Error("failed to store event image", "error", err)
		return "", "Could not process the uploaded image"
	}
	return relPath, ""
}

// Create handles POST /admin/events/new.
func (h *EventsHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(service.MaxUploadSize); err != nil {
		flashError(w, r, h.renderer, redirectAdminEventsNew, "Upload too large or malformed")
		return
	}

	form, msg := parseEventForm(r)
	if msg != "" {
		flashError(w, r, h.renderer, redirectAdminEventsNew, msg)
		return
	}

	if msg := ValidateSlugWithChecker(form.slug, h.slugCount(r, form.slug)); msg != "" {
		flashError(w, r, h.renderer, redirectAdminEventsNew, msg)
		return
	}

	imagePath, msg := h.formImage(r)
	if msg != "" {
		flashError(w, r, h.renderer, redirectAdminEventsNew, msg)
		return
	}

	now := time.Now()
	event, err := h.queries.CreateEvent(r.Context(), store.CreateEventParams{
		Title:       form.title,
		Slug:        form.slug,
		Description: form.description,
		Location:    util.NullStringFromValue(form.location),
		StartsAt:    form.startsAt,
		EndsAt:      form.endsAt,
		ImagePath:   util.NullStringFromValue(imagePath),
		IsActive:    form.isActive,
		Position:    form.position,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		slog.Error("failed to create event", "error", err)
		h.media.RemoveUpload(imagePath)
		flashError(w, r, h.renderer, redirectAdminEventsNew, "Could not create the event")
		return
	}

	h.logContent(r, "Event created", event)
	h.hub.PublishContentChanged(notify.ContentEvents, "")

	flashSuccess(w, r, h.renderer, redirectAdminEvents, "Event created")
}

// Update handles POST /admin/events/{id}.
func (h *EventsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		flashError(w, r, h.renderer, redirectAdminEvents, "Invalid event ID")
		return
	}
	editURL := fmt.Sprintf(redirectAdminEventsID, id)

	existing, ok := requireEntityWithRedirect(w, r, h.renderer, redirectAdminEvents, "event", id,
		func(id int64) (model.Event, error) { return h.queries.GetEventByID(r.Context(), id) })
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(service.MaxUploadSize); err != nil {
		flashError(w, r, h.renderer, editURL, "Upload too large or malformed")
		return
	}
	form, msg := parseEventForm(r)
	if msg != "" {
		flashError(w, r, h.renderer, editURL, msg)
		return
	}

	if msg := ValidateSlugForUpdate(form.slug, existing.Slug, h.slugCount(r, form.slug)); msg != "" {
		flashError(w, r, h.renderer, editURL, msg)
		return
	}

	newPath, msg := h.formImage(r)
	if msg != "" {
		flashError(w, r, h.renderer, editURL, msg)
		return
	}
	removeImage := r.FormValue("remove_image") == "on"

	imagePath := existing.ImagePath
	switch {
	case newPath != "":
		imagePath = util.NullStringFromValue(newPath)
	case removeImage:
		imagePath = sql.NullString{}
	}

	event, err := h.queries.UpdateEvent(r.Context(), store.UpdateEventParams{
		ID:          id,
		Title:       form.title,
		Slug:        form.slug,
		Description: form.description,
		Location:    util.NullStringFromValue(form.location),
		StartsAt:    form.startsAt,
		EndsAt:      form.endsAt,
		ImagePath:   imagePath,
		IsActive:    form.isActive,
		Position:    form.position,
		UpdatedAt:   time.Now(),
	})
	if err != nil {
		slog.Error("failed to update event", "error", err, "event_id", id)
		h.media.RemoveUpload(newPath)
		flashError(w, r, h.renderer, editURL, "Could not save the event")
		return
	}

	if (newPath != "" || removeImage) && existing.ImagePath.Valid {
		h.media.RemoveUpload(existing.ImagePath.String)
	}

	h.logContent(r, "Event updated", event)
	h.hub.PublishContentChanged(notify.ContentEvents, "")

	flashSuccess(w, r, h.renderer, redirectAdminEvents, "Event saved")
}

// Delete handles POST /admin/events/{id}/delete.
func (h *EventsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		flashError(w, r, h.renderer, redirectAdminEvents, "Invalid event ID")
		return
	}

	event, ok := requireEntityWithRedirect(w, r, h.renderer, redirectAdminEvents, "event", id,
		func(id int64) (model.Event, error) { return h.queries.GetEventByID(r.Context(), id) })
	if !ok {
		return
	}

	if err := h.queries.DeleteEvent(r.Context(), id); err != nil {
		slog.Error("failed to delete event", "error", err, "event_id", id)
		flashError(w, r, h.renderer, redirectAdminEvents, "Could not delete the event")
		return
	}

	if event.ImagePath.Valid {
		h.media.RemoveUpload(event.ImagePath.String)
	}

	h.logContent(r, "Event deleted", event)
	h.hub.PublishContentChanged(notify.ContentEvents, "")

	flashSuccess(w, r, h.renderer, redirectAdminEvents, "Event deleted")
}

func (h *EventsHandler) slugCount(r *http.Request, slug string) SlugExistsFunc {
	return func() (int64, error) {
		_, err := h.queries.GetEventBySlug(r.Context(), slug)
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		if err != nil {
			return 0, err
		}
		return 1, nil
	}
}

func (h *EventsHandler) logContent(r *http.Request, message string, event model.Event) {
	_ = h.audit.LogContentEvent(r.Context(), model.EventLevelInfo, message, middleware.GetUserIDPtr(r),
		util.ClientIP(r), map[string]any{"event_id": event.ID, "title": event.Title})
}
