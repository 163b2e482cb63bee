// Copyright (c) 2026 Shiloh Intercession Mountain
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"time"
)

// ContactSubmission is a message sent through the public contact form.
type ContactSubmission struct {
	ID        int64          `json:"id"`
	Name      string         `json:"name"`
	Email     string         `json:"email"`
	Phone     sql.NullString `json:"phone,omitempty"`
	Subject   sql.NullString `json:"subject,omitempty"`
	Message   string         `json:"message"`
	IP        string         `json:"ip"`
	UserAgent sql.NullString `json:"user_agent,omitempty"`
	Country   sql.NullString `json:"country,omitempty"`
	IsRead    bool           `json:"is_read"`
	CreatedAt time.Time      `json:"created_at"`
}
