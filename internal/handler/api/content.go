// Copyright (c) 2026 Shiloh Intercession Mountain
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/shilointercessionmountain-org/shilohwebsite/internal/model"
	"github.com/shilointercessionmountain-org/shilohwebsite/internal/store"
)

// ContentHandler serves the public content endpoints.
type ContentHandler struct {
	queries *store.Queries
}

// NewContentHandler creates a new ContentHandler.
func NewContentHandler(db *sql.DB) *ContentHandler {
	return &ContentHandler{queries: store.New(db)}
}

// eventDTO is the wire shape of an event.
type eventDTO struct {
	ID       int64      `json:"id"`
	Title    string     `json:"title"`
	Slug     string     `json:"slug"`
	Location string     `json:"location,omitempty"`
	StartsAt time.Time  `json:"starts_at"`
	EndsAt   *time.Time `json:"ends_at,omitempty"`
}

func toEventDTO(e model.Event) eventDTO {
	dto := eventDTO{
		ID:       e.ID,
		Title:    e.Title,
		Slug:     e.Slug,
		Location: e.Location.String,
		StartsAt: e.StartsAt,
	}
	if e.EndsAt.Valid {
		t := e.EndsAt.Time
		dto.EndsAt = &t
	}
	return dto
}

// Events handles GET /api/v1/events.
func (h *ContentHandler) Events(w http.ResponseWriter, r *http.Request) {
	events, err := h.queries.ListActiveEvents(r.Context(), time.Now())
	if err != nil {
		slog.Error("api: failed to list events", "error", err)
		WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	dtos := make([]eventDTO, 0, len(events))
	for _, e := range events {
		dtos = append(dtos, toEventDTO(e))
	}
	WriteResponse(w, dtos, &Meta{Count: len(dtos)})
}

// Event handles GET /api/v1/events/{slug}.
func (h *ContentHandler) Event(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	event, err := h.queries.GetEventBySlug(r.Context(), slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteError(w, http.StatusNotFound, "event not found")
			return
		}
		slog.Error("api: failed to load event", "error", err, "slug", slug)
		WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if !event.IsActive {
		WriteError(w, http.StatusNotFound, "event not found")
		return
	}
	WriteResponse(w, toEventDTO(event), nil)
}

// videoDTO is the wire shape of a video entry.
type videoDTO struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	VideoURL    string `json:"video_url"`
}

// Videos handles GET /api/v1/videos.
func (h *ContentHandler) Videos(w http.ResponseWriter, r *http.Request) {
	videos, err := h.queries.ListActiveVideos(r.Context())
	if err != nil {
		slog.Error("api: failed to list videos", "error", err)
		WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	dtos := make([]videoDTO, 0, len(videos))
	for _, v := range videos {
		dtos = append(dtos, videoDTO{
			ID:          v.ID,
			Title:       v.Title,
			Description: v.Description.String,
			VideoURL:    v.VideoURL,
		})
	}
	WriteResponse(w, dtos, &Meta{Count: len(dtos)})
}

// albumDTO is the wire shape of a gallery album.
type albumDTO struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
	CoverPath   string `json:"cover_path,omitempty"`
}

// imageDTO is the wire shape of an album photo.
type imageDTO struct {
	ID       int64  `json:"id"`
	FilePath string `json:"file_path"`
	Caption  string `json:"caption,omitempty"`
	Width    int64  `json:"width,omitempty"`
	Height   int64  `json:"height,omitempty"`
}

// Albums handles GET /api/v1/gallery.
func (h *ContentHandler) Albums(w http.ResponseWriter, r *http.Request) {
	albums, err := h.queries.ListActiveGalleryAlbums(r.Context())
	if err != nil {
		slog.Error("api: failed to list albums", "error", err)
		WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	dtos := make([]albumDTO, 0, len(albums))
	for _, a := range albums {
		dtos = append(dtos, albumDTO{
			ID:          a.ID,
			Title:       a.Title,
			Slug:        a.Slug,
			Description: a.Description.String,
			CoverPath:   a.CoverPath.String,
		})
	}
	WriteResponse(w, dtos, &Meta{Count: len(dtos)})
}

// AlbumImages handles GET /api/v1/gallery/{slug}/images.
func (h *ContentHandler) AlbumImages(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	album, err := h.queries.GetGalleryAlbumBySlug(r.Context(), slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteError(w, http.StatusNotFound, "album not found")
			return
		}
		slog.Error("api: failed to load album", "error", err, "slug", slug)
		WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if !album.IsActive {
		WriteError(w, http.StatusNotFound, "album not found")
		return
	}

	images, err := h.queries.ListGalleryImagesByAlbum(r.Context(), album.ID)
	if err != nil {
		slog.Error("api: failed to list album images", "error", err, "slug", slug)
		WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	dtos := make([]imageDTO, 0, len(images))
	for _, img := range images {
		dtos = append(dtos, imageDTO{
			ID:       img.ID,
			FilePath: img.FilePath,
			Caption:  img.Caption.String,
			Width:    img.Width.Int64,
			Height:   img.Height.Int64,
		})
	}
	WriteResponse(w, dtos, &Meta{Count: len(dtos)})
}

// serviceTimeDTO is the wire shape of a service slot.
type serviceTimeDTO struct {
	ID        int64  `json:"id"`
	Day       string `json:"day"`
	DayOfWeek int64  `json:"day_of_week"`
	StartTime string `json:"start_time"`
	Label     string `json:"label"`
}

// ServiceTimes handles GET /api/v1/service-times.
func (h *ContentHandler) ServiceTimes(w http.ResponseWriter, r *http.Request) {
	times, err := h.queries.ListActiveServiceTimes(r.Context())
	if err != nil {
		slog.Error("api: failed to list service times", "error", err)
		WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	dtos := make([]serviceTimeDTO, 0, len(times))
	for _, s := range times {
		dtos = append(dtos, serviceTimeDTO{
			ID:        s.ID,
			Day:       s.DayName(),
			DayOfWeek: s.DayOfWeek,
			StartTime: s.StartTime,
			Label:     s.Label,
		})
	}
	WriteResponse(w, dtos, &Meta{Count: len(dtos)})
}

// churchInfoDTO is the wire shape of the church profile.
type churchInfoDTO struct {
	Name      string `json:"name"`
	Tagline   string `json:"tagline,omitempty"`
	Address   string `json:"address,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Email     string `json:"email,omitempty"`
	Facebook  string `json:"facebook,omitempty"`
	YouTube   string `json:"youtube,omitempty"`
	Instagram string `json:"instagram,omitempty"`
}

// ChurchInfo handles GET /api/v1/church-info.
func (h *ContentHandler) ChurchInfo(w http.ResponseWriter, r *http.Request) {
	info, err := h.queries.GetChurchInfo(r.Context())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteError(w, http.StatusNotFound, "church info not set")
			return
		}
		slog.Error("api: failed to load church info", "error", err)
		WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	WriteResponse(w, churchInfoDTO{
		Name:      info.Name,
		Tagline:   info.Tagline.String,
		Address:   info.Address.String,
		Phone:     info.Phone.String,
		Email:     info.Email.String,
		Facebook:  info.Facebook.String,
		YouTube:   info.YouTube.String,
		Instagram: info.Instagram.String,
	}, nil)
}
