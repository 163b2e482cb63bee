// Copyright (c) 2026 Shiloh Intercession Mountain
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/shilointercessionmountain-org/shilohwebsite/internal/auth"
	"github.com/shilointercessionmountain-org/shilohwebsite/internal/mailer"
	"github.com/shilointercessionmountain-org/shilohwebsite/internal/middleware"
	"github.com/shilointercessionmountain-org/shilohwebsite/internal/model"
	"github.com/shilointercessionmountain-org/shilohwebsite/internal/notify"
	"github.com/shilointercessionmountain-org/shilohwebsite/internal/render"
	"github.com/shilointercessionmountain-org/shilohwebsite/internal/service"
	"github.com/shilointercessionmountain-org/shilohwebsite/internal/store"
	"github.com/shilointercessionmountain-org/shilohwebsite/internal/util"
)

// SessionKeyUserID is the session key for storing the authenticated user ID.
const SessionKeyUserID = middleware.SessionKeyUserID

// AuthHandler handles authentication routes.
type AuthHandler struct {
	queries         *store.Queries
	accounts        *service.AccountService
	audit           *service.AuditService
	renderer        *render.Renderer
	sessionManager  *scs.SessionManager
	loginProtection *middleware.LoginProtection
	hub             *notify.Hub
	mail            mailer.Sender
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(db *sql.DB, accounts *service.AccountService, audit *service.AuditService,
	renderer *render.Renderer, sm *scs.SessionManager, lp *middleware.LoginProtection,
	hub *notify.Hub, mail mailer.Sender) *AuthHandler {
	return &AuthHandler{
		queries:         store.New(db),
		accounts:        accounts,
		audit:           audit,
		renderer:        renderer,
		sessionManager:  sm,
		loginProtection: lp,
		hub:             hub,
		mail:            mail,
	}
}

// LoginForm renders the login page. Already-authenticated users are
// redirected: moderators and admins to the dashboard, others home.
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if userID := h.sessionManager.GetInt64(r.Context(), SessionKeyUserID); userID > 0 {
		user, err := h.queries.GetUserByID(r.Context(), userID)
		if err == nil {
			if user.IsModerator() {
				http.Redirect(w, r, redirectAdmin, http.StatusSeeOther)
				return
			}
			http.Redirect(w, r, RouteRoot, http.StatusSeeOther)
			return
		}
	}

	if err := h.renderer.Render(w, r, "auth/login", render.TemplateData{
		Title: "Sign In",
	}); err != nil {
		logAndInternalError(w, "failed to render login page", "error", err)
	}
}

// Login handles the login form submission.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, redirectLogin) {
		return
	}

	email := strings.ToLower(strings.TrimSpace(r.FormValue("email")))
	password := r.FormValue("password")
	rememberMe := r.FormValue("remember_me") == "on"

	if email == "" || password == "" {
		flashError(w, r, h.renderer, redirectLogin, "Email and password are required")
		return
	}

	clientIP := util.ClientIP(r)

	// Check if account is locked
	if h.loginProtection != nil {
		if locked, remaining := h.loginProtection.IsAccountLocked(email); locked {
			_ = h.audit.LogAuthEvent(r.Context(), model.EventLevelWarning,
				"Login attempt on locked account", nil, clientIP, map[string]any{"email": email})
			flashError(w, r, h.renderer, redirectLogin,
				"Too many failed attempts. Try again in "+formatDuration(remaining))
			return
		}
	}

	user, err := h.queries.GetUserByEmail(r.Context(), email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			slog.Debug("login attempt for non-existent user", "email", email)
			_ = h.audit.LogAuthEvent(r.Context(), model.EventLevelWarning,
				"Login failed: user not found", nil, clientIP, map[string]any{"email": email})
		} else {
			slog.Error("database error during login", "error", err)
		}
		// Record failed attempt even for non-existent users to prevent enumeration
		h.recordFailure(w, r, email)
		return
	}

	valid, err := auth.CheckPassword(password, user.PasswordHash)
	if err != nil {
		slog.Error("password check error", "error", err)
		flashError(w, r, h.renderer, redirectLogin, "Invalid email or password")
		return
	}

	if !valid {
		slog.Debug("invalid password attempt", "email", email)
		_ = h.audit.LogAuthEvent(r.Context(), model.EventLevelWarning,
			"Login failed: invalid password", &user.ID, clientIP, map[string]any{"email": email})
		h.recordFailure(w, r, email)
		return
	}

	if h.loginProtection != nil {
		h.loginProtection.RecordSuccessfulLogin(email)
	}

	// Re-hash password if it uses outdated parameters
	if auth.NeedsRehash(user.PasswordHash) {
		if newHash, err := auth.HashPassword(password); err == nil {
			if err := h.queries.UpdateUserPassword(r.Context(), store.UpdateUserPasswordParams{
				PasswordHash: newHash,
				UpdatedAt:    time.Now(),
				ID:           user.ID,
			}); err != nil {
				slog.Error("failed to re-hash password", "error", err, "user_id", user.ID)
			} else {
				slog.Info("password re-hashed with updated parameters", "user_id", user.ID)
			}
		}
	}

	if err := h.queries.UpdateUserLastLogin(r.Context(), user.ID); err != nil {
		slog.Error("failed to update last login time", "error", err, "user_id", user.ID)
		// Don't block login on this error
	}

	// Regenerate session ID to prevent session fixation
	if err := h.sessionManager.RenewToken(r.Context()); err != nil {
		logAndInternalError(w, "session renewal error", "error", err)
		return
	}

	h.sessionManager.Put(r.Context(), SessionKeyUserID, user.ID)

	// Persist the session cookie past the browser session only when the
	// user asked to stay signed in.
	h.sessionManager.RememberMe(r.Context(), rememberMe)

	slog.Info("user logged in", "user_id", user.ID, "email", user.Email)
	_ = h.audit.LogAuthEvent(r.Context(), model.EventLevelInfo,
		"User logged in", &user.ID, clientIP,
		map[string]any{"email": user.Email, "remember_me": rememberMe})

	h.renderer.SetFlash(r, "Welcome back, "+user.FirstName, "success")

	if user.IsModerator() {
		http.Redirect(w, r, redirectAdmin, http.StatusSeeOther)
	} else {
		http.Redirect(w, r, RouteRoot, http.StatusSeeOther)
	}
}

// recordFailure records a failed login attempt and writes the
// appropriate flash response.
func (h *AuthHandler) recordFailure(w http.ResponseWriter, r *http.Request, email string) {
	if h.loginProtection != nil {
		if locked, lockDuration := h.loginProtection.RecordFailedAttempt(email); locked {
			flashError(w, r, h.renderer, redirectLogin,
				"Too many failed attempts. Try again in "+formatDuration(lockDuration))
			return
		}
		remaining := h.loginProtection.GetRemainingAttempts(email)
		if remaining <= 3 && remaining > 0 {
			flashError(w, r, h.renderer, redirectLogin,
				fmt.Sprintf("Invalid email or password. %d attempts remaining", remaining))
			return
		}
	}
	flashError(w, r, h.renderer, redirectLogin, "Invalid email or password")
}

// SignupForm renders the sign-up page.
func (h *AuthHandler) SignupForm(w http.ResponseWriter, r *http.Request) {
	if userID := h.sessionManager.GetInt64(r.Context(), SessionKeyUserID); userID > 0 {
		http.Redirect(w, r, RouteRoot, http.StatusSeeOther)
		return
	}

	if err := h.renderer.Render(w, r, "auth/signup", render.TemplateData{
		Title: "Create Account",
	}); err != nil {
		logAndInternalError(w, "failed to render signup page", "error", err)
	}
}

// Signup handles the sign-up form submission. A new account starts in
// the member role with a pending review request; reviewers are
// notified through the event stream and by email when configured.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, RouteSignup) {
		return
	}

	email := r.FormValue("email")
	if !ValidateEmail(strings.TrimSpace(email)) {
		flashError(w, r, h.renderer, RouteSignup, "A valid email address is required")
		return
	}

	password := r.FormValue("password")
	if password != r.FormValue("password_confirm") {
		flashError(w, r, h.renderer, RouteSignup, "Passwords do not match")
		return
	}

	user, request, err := h.accounts.Register(r.Context(), service.RegisterParams{
		Email:     email,
		Password:  password,
		FirstName: r.FormValue("first_name"),
		LastName:  r.FormValue("last_name"),
		Phone:     r.FormValue("phone"),
		Title:     r.FormValue("title"),
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailTaken):
			flashError(w, r, h.renderer, RouteSignup, "An account with that email already exists")
		case errors.Is(err, service.ErrWeakPassword):
			flashError(w, r, h.renderer, RouteSignup,
				fmt.Sprintf("Password must be at least %d characters", auth.MinPasswordLength))
		default:
			slog.Error("signup failed", "error", err)
			flashError(w, r, h.renderer, RouteSignup, "Could not create your account. Please try again.")
		}
		return
	}

	clientIP := util.ClientIP(r)
	slog.Info("user signed up", "user_id", user.ID, "email", user.Email)
	_ = h.audit.LogAuthEvent(r.Context(), model.EventLevelInfo,
		"User signed up", &user.ID, clientIP, map[string]any{"email": user.Email})

	if h.hub != nil {
		h.hub.Publish(notify.NewEvent(notify.EventAdminRequestCreated, notify.AdminRequestData{
			RequestID: request.ID,
			UserID:    user.ID,
			Email:     user.Email,
		}))
	}
	if h.mail != nil {
		go func(u model.User) {
			if err := h.mail.SendAdminRequestNotification(u); err != nil {
				slog.Error("failed to send signup notification", "error", err)
			}
		}(user)
	}

	flashSuccess(w, r, h.renderer, redirectLogin,
		"Account created. You can sign in now; admin access awaits approval.")
}

// Logout handles user logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID := h.sessionManager.GetInt64(r.Context(), SessionKeyUserID)

	if userID > 0 {
		_ = h.audit.LogAuthEvent(r.Context(), model.EventLevelInfo,
			"User logged out", &userID, util.ClientIP(r), nil)
	}

	if err := h.sessionManager.Destroy(r.Context()); err != nil {
		slog.Error("session destroy error", "error", err)
	}

	slog.Info("user logged out", "user_id", userID)
	flashAndRedirect(w, r, h.renderer, redirectLogin, "You have been signed out", "info")
}

// formatDuration formats a duration into a human-readable string.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%d seconds", int(d.Seconds()))
	}
	if d < time.Hour {
		mins := int(d.Minutes())
		if mins == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", mins)
	}
	hours := int(d.Hours())
	if hours == 1 {
		return "1 hour"
	}
	return fmt.Sprintf("%d hours", hours)
}
