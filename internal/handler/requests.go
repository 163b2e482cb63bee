// Copyright (c) 2026 Shiloh Intercession Mountain
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/shilointercessionmountain-org/shilohwebsite/internal/middleware"
	"github.com/shilointercessionmountain-org/shilohwebsite/internal/model"
	"github.com/shilointercessionmountain-org/shilohwebsite/internal/notify"
	"github.com/shilointercessionmountain-org/shilohwebsite/internal/render"
	"github.com/shilointercessionmountain-org/shilohwebsite/internal/service"
	"github.com/shilointercessionmountain-org/shilohwebsite/internal/store"
	"github.com/shilointercessionmountain-org/shilohwebsite/internal/util"
)

// RequestsHandler handles admin access request review routes.
type RequestsHandler struct {
	queries  *store.Queries
	accounts *service.AccountService
	audit    *service.AuditService
	renderer *render.Renderer
	hub      *notify.Hub
}

// NewRequestsHandler creates a new RequestsHandler.
func NewRequestsHandler(db *sql.DB, accounts *service.AccountService, audit *service.AuditService,
	renderer *render.Renderer, hub *notify.Hub) *RequestsHandler {
	return &RequestsHandler{
		queries:  store.New(db),
		accounts: accounts,
		audit:    audit,
		renderer: renderer,
		hub:      hub,
	}
}

// RequestsListData holds data for the requests list template.
type RequestsListData struct {
	Pending      []store.AdminRequestWithUser
	PendingCount int64
	Status       string
	Requests     []store.AdminRequestWithUser
}

// List handles GET /admin/requests - pending requests plus an optional
// history filter by status.
func (h *RequestsHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	status := r.URL.Query().Get("status")
	if status != model.RequestStatusApproved && status != model.RequestStatusRejected {
		status = model.RequestStatusPending
	}

	pending, err := h.queries.ListAdminRequestsByStatus(r.Context(), model.RequestStatusPending)
	if err != nil {
		logAndInternalError(w, "failed to list pending requests", "error", err)
		return
	}

	data := RequestsListData{
		Pending:      pending,
		PendingCount: int64(len(pending)),
		Status:       status,
		Requests:     pending,
	}
	if status != model.RequestStatusPending {
		requests, err := h.queries.ListAdminRequestsByStatus(r.Context(), status)
		if err != nil {
			logAndInternalError(w, "failed to list requests", "error", err, "status", status)
			return
		}
		data.Requests = requests
	}

	if err := h.renderer.Render(w, r, "admin/requests", render.TemplateData{
		Title: "Admin Requests",
		User:  user,
		Data:  data,
	}); err != nil {
		logAndInternalError(w, "failed to render requests page", "error", err)
	}
}

// Approve handles POST /admin/requests/{id}/approve. Approval grants
// the requesting user the admin role in the same transaction.
func (h *RequestsHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, true)
}

// Reject handles POST /admin/requests/{id}/reject. Rejection removes
// the requesting user's account entirely.
func (h *RequestsHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, false)
}

func (h *RequestsHandler) review(w http.ResponseWriter, r *http.Request, approve bool) {
	reviewer := middleware.GetUser(r)
	if reviewer == nil {
		http.Redirect(w, r, redirectLogin, http.StatusSeeOther)
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		flashError(w, r, h.renderer, redirectAdminRequests, "Invalid request ID")
		return
	}

	// Load the request up front so the outcome can be reported with the
	// requester's identity even after a rejection deletes the account.
	request, ok := requireEntityWithRedirect(w, r, h.renderer, redirectAdminRequests, "request", id,
		func(id int64) (model.AdminRequest, error) {
			return h.queries.GetAdminRequestByID(r.Context(), id)
		})
	if !ok {
		return
	}
	requester, err := h.queries.GetUserByID(r.Context(), request.UserID)
	if err != nil {
		flashError(w, r, h.renderer, redirectAdminRequests, "Error loading requesting user")
		return
	}

	clientIP := util.ClientIP(r)
	var status string
	if approve {
		_, err = h.accounts.ApproveRequest(r.Context(), id, reviewer.ID)
		status = model.RequestStatusApproved
	} else {
		err = h.accounts.RejectRequest(r.Context(), id, reviewer.ID)
		status = model.RequestStatusRejected
	}

	if err != nil {
		switch {
		case errors.Is(err, service.ErrAlreadyReviewed):
			flashError(w, r, h.renderer, redirectAdminRequests, "This request has already been reviewed")
		case errors.Is(err, service.ErrOwnRequest):
			flashError(w, r, h.renderer, redirectAdminRequests, "You cannot review your own request")
		default:
			slog.Error("request review failed", "error", err, "request_id", id, "approve", approve)
			flashError(w, r, h.renderer, redirectAdminRequests, "Could not complete the review")
		}
		return
	}

	_ = h.audit.LogRequestEvent(r.Context(), model.EventLevelInfo,
		"Admin request "+status, &reviewer.ID, clientIP,
		map[string]any{"request_id": id, "requester_email": requester.Email})

	if h.hub != nil {
		h.hub.Publish(notify.NewEvent(notify.EventAdminRequestDecided, notify.AdminRequestData{
			RequestID: id,
			UserID:    requester.ID,
			Email:     requester.Email,
			Status:    status,
		}))
	}

	if approve {
		flashSuccess(w, r, h.renderer, redirectAdminRequests,
			requester.Email+" has been granted admin access")
	} else {
		flashSuccess(w, r, h.renderer, redirectAdminRequests,
			"Request rejected and account removed for "+requester.Email)
	}
}
