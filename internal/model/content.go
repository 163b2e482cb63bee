// Copyright (c) 2026 Shiloh Intercession Mountain
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"time"
)

// Event represents a scheduled church event shown on the public site.
type Event struct {
	ID          int64          `json:"id"`
	Title       string         `json:"title"`
	Slug        string         `json:"slug"`
	Description string         `json:"description"`
	Location    sql.NullString `json:"location,omitempty"`
	StartsAt    time.Time      `json:"starts_at"`
	EndsAt      sql.NullTime   `json:"ends_at,omitempty"`
	ImagePath   sql.NullString `json:"image_path,omitempty"`
	IsActive    bool           `json:"is_active"`
	Position    int64          `json:"position"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// IsPast returns true when the event has already ended.
func (e *Event) IsPast(now time.Time) bool {
	if e.EndsAt.Valid {
		return e.EndsAt.Time.Before(now)
	}
	return e.StartsAt.Before(now)
}

// Video represents an embedded video entry.
type Video struct {
	ID            int64          `json:"id"`
	Title         string         `json:"title"`
	Description   sql.NullString `json:"description,omitempty"`
	VideoURL      string         `json:"video_url"`
	ThumbnailPath sql.NullString `json:"thumbnail_path,omitempty"`
	IsActive      bool           `json:"is_active"`
	Position      int64          `json:"position"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// GalleryAlbum groups gallery images.
type GalleryAlbum struct {
	ID          int64          `json:"id"`
	Title       string         `json:"title"`
	Slug        string         `json:"slug"`
	Description sql.NullString `json:"description,omitempty"`
	CoverPath   sql.NullString `json:"cover_path,omitempty"`
	IsActive    bool           `json:"is_active"`
	Position    int64          `json:"position"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// GalleryImage is a single photo inside an album. Deleting the album
// cascades to its images.
type GalleryImage struct {
	ID        int64          `json:"id"`
	AlbumID   int64          `json:"album_id"`
	UUID      string         `json:"uuid"`
	FilePath  string         `json:"file_path"`
	Caption   sql.NullString `json:"caption,omitempty"`
	Width     sql.NullInt64  `json:"width,omitempty"`
	Height    sql.NullInt64  `json:"height,omitempty"`
	Position  int64          `json:"position"`
	CreatedAt time.Time      `json:"created_at"`
}

// ServiceTime is a recurring weekly service slot.
type ServiceTime struct {
	ID        int64     `json:"id"`
	DayOfWeek int64     `json:"day_of_week"` // 0 = Sunday
	StartTime string    `json:"start_time"`  // HH:MM, 24h
	Label     string    `json:"label"`
	IsActive  bool      `json:"is_active"`
	Position  int64     `json:"position"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DayName returns the English weekday name for the slot.
func (s ServiceTime) DayName() string {
	return time.Weekday(s.DayOfWeek % 7).String()
}

// ChurchInfo is the single-row site settings record.
type ChurchInfo struct {
	ID        int64          `json:"id"`
	Name      string         `json:"name"`
	Tagline   sql.NullString `json:"tagline,omitempty"`
	About     string         `json:"about"` // markdown source
	Address   sql.NullString `json:"address,omitempty"`
	Phone     sql.NullString `json:"phone,omitempty"`
	Email     sql.NullString `json:"email,omitempty"`
	Facebook  sql.NullString `json:"facebook,omitempty"`
	YouTube   sql.NullString `json:"youtube,omitempty"`
	Instagram sql.NullString `json:"instagram,omitempty"`
	UpdatedAt time.Time      `json:"updated_at"`
}
