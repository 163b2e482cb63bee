// Copyright (c) 2026 Shiloh Intercession Mountain
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"

	"github.com/shilointercessionmountain-org/shilohwebsite/internal/model"
	"github.com/shilointercessionmountain-org/shilohwebsite/internal/store"
)

// testDB creates a temporary test database with migrations applied.
func testDB(t *testing.T) (*sql.DB, func()) {
	t.Helper()

	f, err := os.CreateTemp("", "shiloh-test-*.db")
	if err != nil {
		t.Fatalf("creating temp file: %v", err)
	}
	dbPath := f.Name()
	f.Close()

	db, err := store.NewDB(dbPath)
	if err != nil {
		os.Remove(dbPath)
		t.Fatalf("NewDB: %v", err)
	}

	if err := store.Migrate(db); err != nil {
		db.Close()
		os.Remove(dbPath)
		t.Fatalf("Migrate: %v", err)
	}

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}

	return db, cleanup
}

func registerTestUser(t *testing.T, s *AccountService, email string) (model.User, model.AdminRequest) {
	t.Helper()

	user, request, err := s.Register(context.Background(), RegisterParams{
		Email:     email,
		Password:  "correct-horse-battery",
		FirstName: "Test",
		LastName:  "Member",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	return user, request
}

func TestRegister(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	s := NewAccountService(db, t.TempDir())
	ctx := context.Background()

	user, request, err := s.Register(ctx, RegisterParams{
		Email:     "New.Member@Example.COM",
		Password:  "correct-horse-battery",
		FirstName: " Grace ",
		LastName:  "Ade",
		Phone:     "555-0101",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if user.Email != "new.member@example.com" {
		t.Errorf("expected normalized email, got %q", user.Email)
	}
	if user.Role != model.RoleUser {
		t.Errorf("expected role %q, got %q", model.RoleUser, user.Role)
	}
	if user.FirstName != "Grace" {
		t.Errorf("expected trimmed first name, got %q", user.FirstName)
	}

	if request.UserID != user.ID {
		t.Errorf("expected request for user %d, got %d", user.ID, request.UserID)
	}
	if request.Status != model.RequestStatusPending {
		t.Errorf("expected pending request, got %q", request.Status)
	}

	// Exactly one pending request exists for the new account
	queries := store.New(db)
	count, err := queries.CountAdminRequestsByStatus(ctx, model.RequestStatusPending)
	if err != nil {
		t.Fatalf("CountAdminRequestsByStatus: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 pending request, got %d", count)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	s := NewAccountService(db, t.TempDir())
	registerTestUser(t, s, "member@example.com")

	_, _, err := s.Register(context.Background(), RegisterParams{
		Email:     "MEMBER@example.com",
		Password:  "correct-horse-battery",
		FirstName: "Other",
		LastName:  "Member",
	})
	if !errors.Is(err, ErrEmailTaken) {
		t.Errorf("expected ErrEmailTaken, got %v", err)
	}
}

func TestRegister_WeakPassword(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	s := NewAccountService(db, t.TempDir())

	_, _, err := s.Register(context.Background(), RegisterParams{
		Email:     "member@example.com",
		Password:  "short",
		FirstName: "Test",
		LastName:  "Member",
	})
	if !errors.Is(err, ErrWeakPassword) {
		t.Errorf("expected ErrWeakPassword, got %v", err)
	}
}

func TestApproveRequest(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	s := NewAccountService(db, t.TempDir())
	ctx := context.Background()
	queries := store.New(db)

	reviewer, _ := registerTestUser(t, s, "reviewer@example.com")
	user, request := registerTestUser(t, s, "member@example.com")

	approved, err := s.ApproveRequest(ctx, request.ID, reviewer.ID)
	if err != nil {
		t.Fatalf("ApproveRequest: %v", err)
	}

	if approved.Status != model.RequestStatusApproved {
		t.Errorf("expected status approved, got %q", approved.Status)
	}
	if !approved.ReviewedBy.Valid || approved.ReviewedBy.Int64 != reviewer.ID {
		t.Error("expected reviewer to be recorded")
	}

	// Approval grants the admin role
	granted, err := queries.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUserByID: %v", err)
	}
	if granted.Role != model.RoleAdmin {
		t.Errorf("expected admin role after approval, got %q", granted.Role)
	}

	// A decided request cannot be reviewed again
	if _, err := s.ApproveRequest(ctx, request.ID, reviewer.ID); !errors.Is(err, ErrAlreadyReviewed) {
		t.Errorf("expected ErrAlreadyReviewed, got %v", err)
	}
}

func TestApproveRequest_OwnRequest(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	s := NewAccountService(db, t.TempDir())
	user, request := registerTestUser(t, s, "member@example.com")

	if _, err := s.ApproveRequest(context.Background(), request.ID, user.ID); !errors.Is(err, ErrOwnRequest) {
		t.Errorf("expected ErrOwnRequest, got %v", err)
	}
}

func TestRejectRequest(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	s := NewAccountService(db, t.TempDir())
	ctx := context.Background()
	queries := store.New(db)

	reviewer, _ := registerTestUser(t, s, "reviewer@example.com")
	user, request := registerTestUser(t, s, "member@example.com")

	if err := s.RejectRequest(ctx, request.ID, reviewer.ID); err != nil {
		t.Fatalf("RejectRequest: %v", err)
	}

	// Rejection removes the account
	if _, err := queries.GetUserByID(ctx, user.ID); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("expected account deleted, got %v", err)
	}

	// The request row cascades away with the account
	if _, err := queries.GetAdminRequestByID(ctx, request.ID); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("expected request removed, got %v", err)
	}
}

func TestDeleteAccount_LastAdmin(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	s := NewAccountService(db, t.TempDir())
	ctx := context.Background()

	admin, _ := registerTestUser(t, s, "pastor@example.com")
	if err := s.ChangeRole(ctx, admin.ID, model.RoleAdmin); err != nil {
		t.Fatalf("ChangeRole: %v", err)
	}

	if err := s.DeleteAccount(ctx, admin.ID); !errors.Is(err, ErrLastAdmin) {
		t.Errorf("expected ErrLastAdmin, got %v", err)
	}

	// A second admin unblocks deletion
	second, _ := registerTestUser(t, s, "elder@example.com")
	if err := s.ChangeRole(ctx, second.ID, model.RoleAdmin); err != nil {
		t.Fatalf("ChangeRole: %v", err)
	}

	if err := s.DeleteAccount(ctx, admin.ID); err != nil {
		t.Errorf("expected deletion to succeed with two admins: %v", err)
	}
}

func TestChangeRole_LastAdmin(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	s := NewAccountService(db, t.TempDir())
	ctx := context.Background()

	admin, _ := registerTestUser(t, s, "pastor@example.com")
	if err := s.ChangeRole(ctx, admin.ID, model.RoleAdmin); err != nil {
		t.Fatalf("ChangeRole: %v", err)
	}

	if err := s.ChangeRole(ctx, admin.ID, model.RoleUser); !errors.Is(err, ErrLastAdmin) {
		t.Errorf("expected ErrLastAdmin, got %v", err)
	}

	if err := s.ChangeRole(ctx, admin.ID, "superuser"); err == nil {
		t.Error("expected error for invalid role")
	}
}

func TestChangePassword(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	s := NewAccountService(db, t.TempDir())
	ctx := context.Background()

	user, _ := registerTestUser(t, s, "member@example.com")

	if err := s.ChangePassword(ctx, user.ID, "wrong-password", "new-password-123"); err == nil {
		t.Error("expected error for wrong current password")
	}

	if err := s.ChangePassword(ctx, user.ID, "correct-horse-battery", "short"); !errors.Is(err, ErrWeakPassword) {
		t.Errorf("expected ErrWeakPassword, got %v", err)
	}

	if err := s.ChangePassword(ctx, user.ID, "correct-horse-battery", "new-password-123"); err != nil {
		t.Errorf("ChangePassword: %v", err)
	}
}
