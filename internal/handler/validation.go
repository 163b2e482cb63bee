// Copyright (c) 2026 Shiloh Intercession Mountain
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"net/mail"
	"strconv"

	"github.com/shilointercessionmountain-org/shilohwebsite/internal/util"
)

// SlugExistsFunc is a function type for checking if a slug exists.
// Returns count of matching slugs and any error.
type SlugExistsFunc func() (int64, error)

// ValidateSlugWithChecker validates a slug using a custom existence checker.
// Returns an error message string if validation fails, or empty string if valid.
func ValidateSlugWithChecker(slug string, checkExists SlugExistsFunc) string {
	if slug == "" {
		return "Slug is required"
	}
	if !util.IsValidSlug(slug) {
		return "Invalid slug format (use lowercase letters, numbers, and hyphens)"
	}
	exists, err := checkExists()
	if err != nil {
		slog.Error("database error checking slug", "error", err)
		return "Error checking slug"
	}
	if exists != 0 {
		return "Slug already exists"
	}
	return ""
}

// ValidateSlugForUpdate validates a slug for update operations.
// Skips validation if the slug hasn't changed from the current value.
func ValidateSlugForUpdate(slug, currentSlug string, checkExists SlugExistsFunc) string {
	if slug == currentSlug {
		return "" // No change, no validation needed
	}
	return ValidateSlugWithChecker(slug, checkExists)
}

// ValidateEmail checks that an address parses as RFC 5322.
func ValidateEmail(email string) bool {
	if email == "" {
		return false
	}
	_, err := mail.ParseAddress(email)
	return err == nil
}

// ValidateServiceTime checks a day-of-week and HH:MM start time pair.
// Returns an error message or empty string if valid.
func ValidateServiceTime(dayOfWeek int64, startTime string) string {
	if dayOfWeek < 0 || dayOfWeek > 6 {
		return "Day of week must be between 0 (Sunday) and 6 (Saturday)"
	}
	if len(startTime) != 5 || startTime[2] != ':' {
		return "Start time must be in HH:MM format"
	}
	hour, err := strconv.Atoi(startTime[:2])
	if err != nil || hour < 0 || hour > 23 {
		return "Start time must be in HH:MM format"
	}
	minute, err := strconv.Atoi(startTime[3:])
	if err != nil || minute < 0 || minute > 59 {
		return "Start time must be in HH:MM format"
	}
	return ""
}
