// Copyright (c) 2026 Shiloh Intercession Mountain
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"time"
)

// Admin request statuses.
const (
	RequestStatusPending  = "pending"
	RequestStatusApproved = "approved"
	RequestStatusRejected = "rejected"
)

// AdminRequest represents a user's request for back-office access.
// Each user has at most one request, created at sign-up.
type AdminRequest struct {
	ID         int64         `json:"id"`
	UserID     int64         `json:"user_id"`
	Status     string        `json:"status"`
	ReviewedBy sql.NullInt64 `json:"reviewed_by,omitempty"`
	ReviewedAt sql.NullTime  `json:"reviewed_at,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
}

// IsPending returns true while the request awaits review.
func (r *AdminRequest) IsPending() bool {
	return r.Status == RequestStatusPending
}
