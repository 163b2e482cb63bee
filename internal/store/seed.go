// Copyright (c) 2026 Shiloh Intercession Mountain
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shilointercessionmountain-org/shilohwebsite/internal/auth"
	"github.com/shilointercessionmountain-org/shilohwebsite/internal/model"
)

// Default admin credentials, meant to be changed immediately after first login.
const (
	DefaultAdminEmail    = "admin@example.com"
	DefaultAdminPassword = "changeme"
)

// Seed creates initial data: the default admin account and the church info
// settings row.
func Seed(ctx context.Context, db *sql.DB) error {
	queries := New(db)

	if err := seedAdmin(ctx, queries); err != nil {
		return err
	}
	return seedChurchInfo(ctx, queries)
}

func seedAdmin(ctx context.Context, queries *Queries) error {
	_, err := queries.GetUserByEmail(ctx, DefaultAdminEmail)
	if err == nil {
		slog.Info("admin user already exists, skipping seed")
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("checking for admin user: %w", err)
	}

	passwordHash, err := auth.HashPassword(DefaultAdminPassword)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	now := time.Now()
	user, err := queries.CreateUser(ctx, CreateUserParams{
		Email:        DefaultAdminEmail,
		PasswordHash: passwordHash,
		Role:         model.RoleAdmin,
		FirstName:    "Site",
		LastName:     "Administrator",
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return fmt.Errorf("creating admin user: %w", err)
	}

	slog.Info("created default admin user",
		"id", user.ID,
		"email", user.Email,
		"password", DefaultAdminPassword,
	)
	return nil
}

func seedChurchInfo(ctx context.Context, queries *Queries) error {
	_, err := queries.GetChurchInfo(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("checking church info: %w", err)
	}

	if err := queries.UpsertChurchInfo(ctx, UpsertChurchInfoParams{
		Name:      "Shiloh Intercession Mountain",
		About:     "Welcome to our church family.",
		UpdatedAt: time.Now(),
	}); err != nil {
		return fmt.Errorf("seeding church info: %w", err)
	}

	slog.Info("created default church info")
	return nil
}
