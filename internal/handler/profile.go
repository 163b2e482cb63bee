// Copyright (c) 2026 Shiloh Intercession Mountain
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/shilointercessionmountain-org/shilohwebsite/internal/middleware"
	"github.com/shilointercessionmountain-org/shilohwebsite/internal/model"
	"github.com/shilointercessionmountain-org/shilohwebsite/internal/render"
	"github.com/shilointercessionmountain-org/shilohwebsite/internal/service"
	"github.com/shilointercessionmountain-org/shilohwebsite/internal/store"
	"github.com/shilointercessionmountain-org/shilohwebsite/internal/util"
)

// ProfileHandler handles the signed-in user's own profile routes.
type ProfileHandler struct {
	queries        *store.Queries
	accounts       *service.AccountService
	media          *service.MediaService
	audit          *service.AuditService
	renderer       *render.Renderer
	sessionManager *scs.SessionManager
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(db *sql.DB, accounts *service.AccountService, media *service.MediaService,
	audit *service.AuditService, renderer *render.Renderer, sm *scs.SessionManager) *ProfileHandler {
	return &ProfileHandler{
		queries:        store.New(db),
		accounts:       accounts,
		media:          media,
		audit:          audit,
		renderer:       renderer,
		sessionManager: sm,
	}
}

// ProfileData holds data for the profile template.
type ProfileData struct {
	User      model.User
	AvatarURL string
	Request   *model.AdminRequest
}

// Show handles GET /admin/profile.
func (h *ProfileHandler) Show(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		http.Redirect(w, r, redirectLogin, http.StatusSeeOther)
		return
	}

	data := ProfileData{
		User:      *user,
		AvatarURL: service.AvatarURL(*user),
	}

	request, err := h.queries.GetAdminRequestByUserID(r.Context(), user.ID)
	switch {
	case err == nil:
		data.Request = &request
	case !errors.Is(err, sql.ErrNoRows):
		slog.Error("failed to load admin request", "error", err, "user_id", user.ID)
	}

	if err := h.renderer.Render(w, r, "admin/profile", render.TemplateData{
		Title: "My Profile",
		User:  user,
		Data:  data,
	}); err != nil {
		logAndInternalError(w, "failed to render profile page", "error", err)
	}
}

// Update handles POST /admin/profile - edits name, phone and title.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		http.Redirect(w, r, redirectLogin, http.StatusSeeOther)
		return
	}
	if !parseFormOrRedirect(w, r, h.renderer, redirectAdminProfile) {
		return
	}

	firstName := strings.TrimSpace(r.FormValue("first_name"))
	lastName := strings.TrimSpace(r.FormValue("last_name"))
	if firstName == "" || lastName == "" {
		flashError(w, r, h.renderer, redirectAdminProfile, "First and last name are required")
		return
	}

	_, err := h.queries.UpdateUserProfile(r.Context(), store.UpdateUserProfileParams{
		ID:        user.ID,
		FirstName: firstName,
		LastName:  lastName,
		Phone:     util.NullStringFromValue(strings.TrimSpace(r.FormValue("phone"))),
		Title:     util.NullStringFromValue(strings.TrimSpace(r.FormValue("title"))),
		UpdatedAt: time.Now(),
	})
	if err != nil {
		slog.Error("failed to update profile", "error", err, "user_id", user.ID)
		flashError(w, r, h.renderer, redirectAdminProfile, "Could not save your profile")
		return
	}

	_ = h.audit.LogUserEvent(r.Context(), model.EventLevelInfo,
		"Profile updated", &user.ID, util.ClientIP(r), nil)

	flashSuccess(w, r, h.renderer, redirectAdminProfile, "Profile saved")
}

// UploadAvatar handles POST /admin/profile/avatar.
func (h *ProfileHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		http.Redirect(w, r, redirectLogin, http.StatusSeeOther)
		return
	}

	if err := r.ParseMultipartForm(service.MaxUploadSize); err != nil {
		flashError(w, r, h.renderer, redirectAdminProfile, "Upload too large or malformed")
		return
	}
	file, header, err := r.FormFile("avatar")
	if err != nil {
		flashError(w, r, h.renderer, redirectAdminProfile, "Choose an image to upload")
		return
	}
	defer file.Close()

	if _, err := h.media.UploadAvatar(r.Context(), file, header, user.ID); err != nil {
		slog.Error("avatar upload failed", "error", err, "user_id", user.ID)
		flashError(w, r, h.renderer, redirectAdminProfile, "Could not process that image")
		return
	}

	_ = h.audit.LogUserEvent(r.Context(), model.EventLevelInfo,
		"Avatar updated", &user.ID, util.ClientIP(r), nil)

	flashSuccess(w, r, h.renderer, redirectAdminProfile, "Avatar updated")
}

// RemoveAvatar handles POST /admin/profile/avatar/remove.
func (h *ProfileHandler) RemoveAvatar(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		http.Redirect(w, r, redirectLogin, http.StatusSeeOther)
		return
	}

	if err := h.media.RemoveAvatar(r.Context(), user.ID); err != nil {
		slog.Error("avatar removal failed", "error", err, "user_id", user.ID)
		flashError(w, r, h.renderer, redirectAdminProfile, "Could not remove your avatar")
		return
	}

	flashSuccess(w, r, h.renderer, redirectAdminProfile, "Avatar removed")
}

// ChangePassword handles POST /admin/profile/password.
func (h *ProfileHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		http.Redirect(w, r, redirectLogin, http.StatusSeeOther)
		return
	}
	if !parseFormOrRedirect(w, r, h.renderer, redirectAdminProfile) {
		return
	}

	current := r.FormValue("current_password")
	updated := r.FormValue("new_password")
	if updated != r.FormValue("new_password_confirm") {
		flashError(w, r, h.renderer, redirectAdminProfile, "New passwords do not match")
		return
	}

	if err := h.accounts.ChangePassword(r.Context(), user.ID, current, updated); err != nil {
		switch {
		case errors.Is(err, service.ErrWrongPassword):
			flashError(w, r, h.renderer, redirectAdminProfile, "Current password is incorrect")
		case errors.Is(err, service.ErrWeakPassword):
			flashError(w, r, h.renderer, redirectAdminProfile, "New password is too short")
		default:
			slog.Error("password change failed", "error", err, "user_id", user.ID)
			flashError(w, r, h.renderer, redirectAdminProfile, "Could not change your password")
		}
		return
	}

	_ = h.audit.LogAuthEvent(r.Context(), model.EventLevelInfo,
		"Password changed", &user.ID, util.ClientIP(r), nil)

	flashSuccess(w, r, h.renderer, redirectAdminProfile, "Password changed")
}

// DeleteAccount handles POST /admin/profile/delete - removes the
// signed-in user's own account and ends the session.
func (h *ProfileHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		http.Redirect(w, r, redirectLogin, http.StatusSeeOther)
		return
	}

	if err := h.accounts.DeleteAccount(r.Context(), user.ID); err != nil {
		if errors.Is(err, service.ErrLastAdmin) {
			flashError(w, r, h.renderer, redirectAdminProfile,
				"You are the last admin. Promote someone else first.")
		} else {
			slog.Error("account deletion failed", "error", err, "user_id", user.ID)
			flashError(w, r, h.renderer, redirectAdminProfile, "Could not delete your account")
		}
		return
	}

	_ = h.audit.LogUserEvent(r.Context(), model.EventLevelInfo,
		"Account self-deleted", nil, util.ClientIP(r), map[string]any{"email": user.Email})

	if err := h.sessionManager.Destroy(r.Context()); err != nil {
		slog.Error("session destroy error", "error", err)
	}
	http.Redirect(w, r, RouteRoot, http.StatusSeeOther)
}
