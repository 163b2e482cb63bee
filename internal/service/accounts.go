// Copyright (c) 2026 Shiloh Intercession Mountain
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/shilointercessionmountain-org/shilohwebsite/internal/auth"
	"github.com/shilointercessionmountain-org/shilohwebsite/internal/model"
	"github.com/shilointercessionmountain-org/shilohwebsite/internal/store"
	"github.com/shilointercessionmountain-org/shilohwebsite/internal/util"
)

// Account service errors.
var (
	ErrEmailTaken      = errors.New("email already registered")
	ErrWeakPassword    = fmt.Errorf("password must be at least %d characters", auth.MinPasswordLength)
	ErrAlreadyReviewed = errors.New("request already reviewed")
	ErrWrongPassword   = errors.New("current password is incorrect")
	ErrOwnRequest      = errors.New("cannot review your own request")
	ErrLastAdmin       = errors.New("cannot remove the last administrator")
	ErrInvalidRole     = errors.New("invalid role")
)

// AccountService implements sign-up and the back-office access request
// lifecycle. Approval and rejection each run in a single transaction so a
// decision never leaves a request and its account out of step.
type AccountService struct {
	db         *sql.DB
	queries    *store.Queries
	uploadsDir string
}

// NewAccountService creates a new AccountService. uploadsDir is used to
// remove a deleted account's avatar file.
func NewAccountService(db *sql.DB, uploadsDir string) *AccountService {
	return &AccountService{
		db:         db,
		queries:    store.New(db),
		uploadsDir: uploadsDir,
	}
}

// RegisterParams holds the sign-up form fields.
type RegisterParams struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
	Title     string
}

// Register creates an account and its pending access request in one
// transaction. Every new account starts with the user role and exactly one
// pending request awaiting admin review.
func (s *AccountService) Register(ctx context.Context, arg RegisterParams) (model.User, model.AdminRequest, error) {
	email := strings.ToLower(strings.TrimSpace(arg.Email))

	if len(arg.Password) < auth.MinPasswordLength {
		return model.User{}, model.AdminRequest{}, ErrWeakPassword
	}

	_, err := s.queries.GetUserByEmail(ctx, email)
	if err == nil {
		return model.User{}, model.AdminRequest{}, ErrEmailTaken
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return model.User{}, model.AdminRequest{}, fmt.Errorf("checking email: %w", err)
	}

	hash, err := auth.HashPassword(arg.Password)
	if err != nil {
		return model.User{}, model.AdminRequest{}, fmt.Errorf("hashing password: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.User{}, model.AdminRequest{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	qtx := s.queries.WithTx(tx)
	now := time.Now()

	user, err := qtx.CreateUser(ctx, store.CreateUserParams{
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleUser,
		FirstName:    strings.TrimSpace(arg.FirstName),
		LastName:     strings.TrimSpace(arg.LastName),
		Phone:        util.NullStringFromValue(strings.TrimSpace(arg.Phone)),
		Title:        util.NullStringFromValue(strings.TrimSpace(arg.Title)),
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return model.User{}, model.AdminRequest{}, fmt.Errorf("creating user: %w", err)
	}

	request, err := qtx.CreateAdminRequest(ctx, user.ID, now)
	if err != nil {
		return model.User{}, model.AdminRequest{}, fmt.Errorf("creating access request: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return model.User{}, model.AdminRequest{}, fmt.Errorf("committing registration: %w", err)
	}

	return user, request, nil
}

// ApproveRequest approves a pending access request. Inside one transaction
// the request transitions to approved and the requesting account is granted
// the admin role. Returns ErrAlreadyReviewed if the request was already
// decided and ErrOwnRequest if the reviewer owns it.
func (s *AccountService) ApproveRequest(ctx context.Context, requestID, reviewerID int64) (model.AdminRequest, error) {
	request, err := s.queries.GetAdminRequestByID(ctx, requestID)
	if err != nil {
		return model.AdminRequest{}, fmt.Errorf("loading request: %w", err)
	}
	if request.UserID == reviewerID {
		return model.AdminRequest{}, ErrOwnRequest
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.AdminRequest{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	qtx := s.queries.WithTx(tx)
	now := time.Now()

	updated, err := qtx.UpdateAdminRequestStatus(ctx, store.UpdateAdminRequestStatusParams{
		ID:         requestID,
		Status:     model.RequestStatusApproved,
		ReviewedBy: reviewerID,
		ReviewedAt: now,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.AdminRequest{}, ErrAlreadyReviewed
		}
		return model.AdminRequest{}, fmt.Errorf("updating request: %w", err)
	}

	if err := qtx.UpdateUserRole(ctx, store.UpdateUserRoleParams{
		ID:        request.UserID,
		Role:      model.RoleAdmin,
		UpdatedAt: now,
	}); err != nil {
		return model.AdminRequest{}, fmt.Errorf("granting admin role: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return model.AdminRequest{}, fmt.Errorf("committing approval: %w", err)
	}

	return updated, nil
}

// RejectRequest rejects a pending access request and deletes the requesting
// account in the same transaction. The request row itself is removed by the
// foreign key cascade. Returns ErrAlreadyReviewed if the request was already
// decided and ErrOwnRequest if the reviewer owns it.
func (s *AccountService) RejectRequest(ctx context.Context, requestID, reviewerID int64) error {
	request, err := s.queries.GetAdminRequestByID(ctx, requestID)
	if err != nil {
		return fmt.Errorf("loading request: %w", err)
	}
	if request.UserID == reviewerID {
		return ErrOwnRequest
	}

	user, err := s.queries.GetUserByID(ctx, request.UserID)
	if err != nil {
		return fmt.Errorf("loading requesting user: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	qtx := s.queries.WithTx(tx)

	// The status guard rejects a second review attempt before the delete
	if _, err := qtx.UpdateAdminRequestStatus(ctx, store.UpdateAdminRequestStatusParams{
		ID:         requestID,
		Status:     model.RequestStatusRejected,
		ReviewedBy: reviewerID,
		ReviewedAt: time.Now(),
	}); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrAlreadyReviewed
		}
		return fmt.Errorf("updating request: %w", err)
	}

	if err := qtx.DeleteUser(ctx, request.UserID); err != nil {
		return fmt.Errorf("deleting account: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing rejection: %w", err)
	}

	s.removeAvatarFile(user)
	return nil
}

// DeleteAccount removes an account. The last remaining administrator cannot
// be deleted.
func (s *AccountService) DeleteAccount(ctx context.Context, userID int64) error {
	user, err := s.queries.GetUserByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("loading user: %w", err)
	}

	if user.Role == model.RoleAdmin {
		admins, err := s.queries.CountUsersByRole(ctx, model.RoleAdmin)
		if err != nil {
			return fmt.Errorf("counting administrators: %w", err)
		}
		if admins <= 1 {
			return ErrLastAdmin
		}
	}

	if err := s.queries.DeleteUser(ctx, userID); err != nil {
		return fmt.Errorf("deleting account: %w", err)
	}

	s.removeAvatarFile(user)
	return nil
}

// ChangeRole sets a user's role. Demoting the last remaining administrator
// is refused.
func (s *AccountService) ChangeRole(ctx context.Context, userID int64, role string) error {
	if !model.IsValidRole(role) {
		return fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}

	user, err := s.queries.GetUserByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("loading user: %w", err)
	}

	if user.Role == model.RoleAdmin && role != model.RoleAdmin {
		admins, err := s.queries.CountUsersByRole(ctx, model.RoleAdmin)
		if err != nil {
			return fmt.Errorf("counting administrators: %w", err)
		}
		if admins <= 1 {
			return ErrLastAdmin
		}
	}

	return s.queries.UpdateUserRole(ctx, store.UpdateUserRoleParams{
		ID:        userID,
		Role:      role,
		UpdatedAt: time.Now(),
	})
}

// ChangePassword verifies the current password and stores a new hash.
func (s *AccountService) ChangePassword(ctx context.Context, userID int64, current, updated string) error {
	user, err := s.queries.GetUserByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("loading user: %w", err)
	}

	ok, err := auth.CheckPassword(current, user.PasswordHash)
	if err != nil {
		return fmt.Errorf("verifying password: %w", err)
	}
	if !ok {
		return ErrWrongPassword
	}

	if len(updated) < auth.MinPasswordLength {
		return ErrWeakPassword
	}

	hash, err := auth.HashPassword(updated)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	return s.queries.UpdateUserPassword(ctx, store.UpdateUserPasswordParams{
		ID:           userID,
		PasswordHash: hash,
		UpdatedAt:    time.Now(),
	})
}

// removeAvatarFile deletes a user's avatar from disk, if present. Failures
// are logged, not returned, since the account is already gone.
func (s *AccountService) removeAvatarFile(user model.User) {
	if !user.AvatarPath.Valid || user.AvatarPath.String == "" {
		return
	}

	path, err := util.SafeJoinPath(s.uploadsDir, user.AvatarPath.String)
	if err != nil {
		slog.Warn("skipping avatar cleanup for unsafe path",
			"user_id", user.ID, "path", user.AvatarPath.String)
		return
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to remove avatar file",
			"user_id", user.ID, "path", path, "error", err)
	}
}
