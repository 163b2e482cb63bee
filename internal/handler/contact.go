// Copyright (c) 2026 Shiloh Intercession Mountain
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/mileusna/useragent"

	"github.com/shilointercessionmountain-org/shilohwebsite/internal/geoip"
	"github.com/shilointercessionmountain-org/shilohwebsite/internal/middleware"
	"github.com/shilointercessionmountain-org/shilohwebsite/internal/model"
	"github.com/shilointercessionmountain-org/shilohwebsite/internal/render"
	"github.com/shilointercessionmountain-org/shilohwebsite/internal/service"
	"github.com/shilointercessionmountain-org/shilohwebsite/internal/store"
	"github.com/shilointercessionmountain-org/shilohwebsite/internal/util"
)

// ContactPerPage is the number of submissions shown per inbox page.
const ContactPerPage = 25

// ContactHandler handles the admin contact inbox.
type ContactHandler struct {
	queries  *store.Queries
	audit    *service.AuditService
	renderer *render.Renderer
}

// NewContactHandler creates a new ContactHandler.
func NewContactHandler(db *sql.DB, audit *service.AuditService, renderer *render.Renderer) *ContactHandler {
	return &ContactHandler{
		queries:  store.New(db),
		audit:    audit,
		renderer: renderer,
	}
}

// ContactListData holds data for the inbox listing template.
type ContactListData struct {
	Submissions []model.ContactSubmission
	UnreadCount int64
	Pagination  AdminPagination
}

// ContactDetailData holds data for the submission detail template.
type ContactDetailData struct {
	Submission model.ContactSubmission
	Country    string
	Browser    string
}

// List handles GET /admin/contact.
func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	page := parsePage(r.URL.Query())

	total, err := h.queries.CountContactSubmissions(r.Context())
	if err != nil {
		logAndInternalError(w, "failed to count submissions", "error", err)
		return
	}
	unread, err := h.queries.CountUnreadContactSubmissions(r.Context())
	if err != nil {
		logAndInternalError(w, "failed to count unread submissions", "error", err)
		return
	}

	submissions, err := h.queries.ListContactSubmissions(r.Context(), store.ListContactSubmissionsParams{
		Limit:  ContactPerPage,
		Offset: int64((page - 1) * ContactPerPage),
	})
	if err != nil {
		logAndInternalError(w, "failed to list submissions", "error", err)
		return
	}

	if err := h.renderer.Render(w, r, "admin/contact", render.TemplateData{
		Title: "Contact Inbox",
		User:  middleware.GetUser(r),
		Data: ContactListData{
			Submissions: submissions,
			UnreadCount: unread,
			Pagination:  BuildAdminPagination(page, total, ContactPerPage, redirectAdminContact, nil),
		},
	}); err != nil {
		logAndInternalError(w, "failed to render inbox page", "error", err)
	}
}

// Show handles GET /admin/contact/{id} and marks the submission read.
func (h *ContactHandler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		flashError(w, r, h.renderer, redirectAdminContact, "Invalid submission ID")
		return
	}

	submission, ok := requireEntityWithRedirect(w, r, h.renderer, redirectAdminContact, "submission", id,
		func(id int64) (model.ContactSubmission, error) { return h.queries.GetContactSubmissionByID(r.Context(), id) })
	if !ok {
		return
	}

	if !submission.IsRead {
		if err := h.queries.MarkContactSubmissionRead(r.Context(), id); err != nil {
			slog.Error("failed to mark submission read", "error", err, "submission_id", id)
		} else {
			submission.IsRead = true
		}
	}

	if err := h.renderer.Render(w, r, "admin/contact_detail", render.TemplateData{
		Title: "Message from " + submission.Name,
		User:  middleware.GetUser(r),
		Data: ContactDetailData{
			Submission: submission,
			Country:    geoCountryName(submission),
			Browser:    describeUserAgent(submission.UserAgent.String),
		},
	}); err != nil {
		logAndInternalError(w, "failed to render submission page", "error", err)
	}
}

// Delete handles POST /admin/contact/{id}/delete.
func (h *ContactHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		flashError(w, r, h.renderer, redirectAdminContact, "Invalid submission ID")
		return
	}

	submission, ok := requireEntityWithRedirect(w, r, h.renderer, redirectAdminContact, "submission", id,
		func(id int64) (model.ContactSubmission, error) { return h.queries.GetContactSubmissionByID(r.Context(), id) })
	if !ok {
		return
	}

	if err := h.queries.DeleteContactSubmission(r.Context(), id); err != nil {
		slog.Error("failed to delete submission", "error", err, "submission_id", id)
		flashError(w, r, h.renderer, redirectAdminContact, "Could not delete the message")
		return
	}

	_ = h.audit.LogContactEvent(r.Context(), model.EventLevelInfo, "Contact message deleted",
		middleware.GetUserIDPtr(r), util.ClientIP(r), map[string]any{"submission_id": id, "from": submission.Email})

	flashSuccess(w, r, h.renderer, redirectAdminContact, "Message deleted")
}

// geoCountryName resolves the stored country code into a display name.
func geoCountryName(submission model.ContactSubmission) string {
	if !submission.Country.Valid {
		return ""
	}
	return geoip.CountryName(submission.Country.String)
}

// describeUserAgent condenses a raw user agent string into
// "Browser version on OS" for display.
func describeUserAgent(raw string) string {
	if raw == "" {
		return ""
	}
	ua := useragent.Parse(raw)
	if ua.Name == "" {
		return raw
	}
	desc := ua.Name
	if ua.Version != "" {
		desc += " " + ua.Version
	}
	if ua.OS != "" {
		desc += " on " + ua.OS
	}
	return desc
}
