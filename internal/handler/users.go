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
	"github.com/shilointercessionmountain-org/shilohwebsite/internal/render"
	"github.com/shilointercessionmountain-org/shilohwebsite/internal/service"
	"github.com/shilointercessionmountain-org/shilohwebsite/internal/store"
	"github.com/shilointercessionmountain-org/shilohwebsite/internal/util"
)

// UsersPerPage is the number of users to display per page.
const UsersPerPage = 20

// UsersHandler handles member administration routes.
type UsersHandler struct {
	queries  *store.Queries
	accounts *service.AccountService
	audit    *service.AuditService
	renderer *render.Renderer
}

// NewUsersHandler creates a new UsersHandler.
func NewUsersHandler(db *sql.DB, accounts *service.AccountService, audit *service.AuditService,
	renderer *render.Renderer) *UsersHandler {
	return &UsersHandler{
		queries:  store.New(db),
		accounts: accounts,
		audit:    audit,
		renderer: renderer,
	}
}

// UsersListData holds data for the users list template.
type UsersListData struct {
	Users      []model.User
	TotalUsers int64
	Roles      []string
	Pagination AdminPagination
}

// List handles GET /admin/users - paginated member listing.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	page := parsePage(r.URL.Query())

	users, err := h.queries.ListUsers(r.Context(), store.ListUsersParams{
		Limit:  UsersPerPage,
		Offset: int64((page - 1) * UsersPerPage),
	})
	if err != nil {
		logAndInternalError(w, "failed to list users", "error", err)
		return
	}
	total, err := h.queries.CountUsers(r.Context())
	if err != nil {
		logAndInternalError(w, "failed to count users", "error", err)
		return
	}

	if err := h.renderer.Render(w, r, "admin/users", render.TemplateData{
		Title: "Members",
		User:  user,
		Data: UsersListData{
			Users:      users,
			TotalUsers: total,
			Roles:      model.ValidRoles,
			Pagination: BuildAdminPagination(page, total, UsersPerPage, redirectAdminUsers, r.URL.Query()),
		},
	}); err != nil {
		logAndInternalError(w, "failed to render users page", "error", err)
	}
}

// ChangeRole handles POST /admin/users/{id}/role.
func (h *UsersHandler) ChangeRole(w http.ResponseWriter, r *http.Request) {
	actor := middleware.GetUser(r)

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		flashError(w, r, h.renderer, redirectAdminUsers, "Invalid user ID")
		return
	}
	if !parseFormOrRedirect(w, r, h.renderer, redirectAdminUsers) {
		return
	}
	role := r.FormValue("role")

	target, ok := requireEntityWithRedirect(w, r, h.renderer, redirectAdminUsers, "user", id,
		func(id int64) (model.User, error) { return h.queries.GetUserByID(r.Context(), id) })
	if !ok {
		return
	}

	if err := h.accounts.ChangeRole(r.Context(), id, role); err != nil {
		switch {
		case errors.Is(err, service.ErrLastAdmin):
			flashError(w, r, h.renderer, redirectAdminUsers, "Cannot demote the last admin")
		case errors.Is(err, service.ErrInvalidRole):
			flashError(w, r, h.renderer, redirectAdminUsers, "Invalid role")
		default:
			slog.Error("failed to change role", "error", err, "user_id", id)
			flashError(w, r, h.renderer, redirectAdminUsers, "Could not change role")
		}
		return
	}

	_ = h.audit.LogUserEvent(r.Context(), model.EventLevelInfo,
		"User role changed", &actor.ID, util.ClientIP(r),
		map[string]any{"target_email": target.Email, "old_role": target.Role, "new_role": role})

	flashSuccess(w, r, h.renderer, redirectAdminUsers, target.Email+" is now "+role)
}

// Delete handles POST /admin/users/{id}/delete.
func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor := middleware.GetUser(r)

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		flashError(w, r, h.renderer, redirectAdminUsers, "Invalid user ID")
		return
	}
	if actor != nil && actor.ID == id {
		flashError(w, r, h.renderer, redirectAdminUsers, "You cannot delete your own account here. Use your profile page.")
		return
	}

	target, ok := requireEntityWithRedirect(w, r, h.renderer, redirectAdminUsers, "user", id,
		func(id int64) (model.User, error) { return h.queries.GetUserByID(r.Context(), id) })
	if !ok {
		return
	}

	if err := h.accounts.DeleteAccount(r.Context(), id); err != nil {
		if errors.Is(err, service.ErrLastAdmin) {
			flashError(w, r, h.renderer, redirectAdminUsers, "Cannot delete the last admin")
		} else {
			slog.Error("failed to delete user", "error", err, "user_id", id)
			flashError(w, r, h.renderer, redirectAdminUsers, "Could not delete the account")
		}
		return
	}

	_ = h.audit.LogUserEvent(r.Context(), model.EventLevelInfo,
		"User account deleted", &actor.ID, util.ClientIP(r),
		map[string]any{"target_email": target.Email})

	flashSuccess(w, r, h.renderer, redirectAdminUsers, "Account removed for "+target.Email)
}
