// Copyright (c) 2026 Shiloh Intercession Mountain
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/shilointercessionmountain-org/shilohwebsite/internal/middleware"
	"github.com/shilointercessionmountain-org/shilohwebsite/internal/model"
	"github.com/shilointercessionmountain-org/shilohwebsite/internal/notify"
	"github.com/shilointercessionmountain-org/shilohwebsite/internal/render"
	"github.com/shilointercessionmountain-org/shilohwebsite/internal/service"
	"github.com/shilointercessionmountain-org/shilohwebsite/internal/store"
	"github.com/shilointercessionmountain-org/shilohwebsite/internal/util"
)

// GalleryHandler handles admin album and photo management.
type GalleryHandler struct {
	queries  *store.Queries
	media    *service.MediaService
	audit    *service.AuditService
	renderer *render.Renderer
	hub      *notify.Hub
}

// NewGalleryHandler creates a new GalleryHandler.
func NewGalleryHandler(db *sql.DB, media *service.MediaService, audit *service.AuditService,
	renderer *render.Renderer, hub *notify.Hub) *GalleryHandler {
	return &GalleryHandler{
		queries:  store.New(db),
		media:    media,
		audit:    audit,
		renderer: renderer,
		hub:      hub,
	}
}

// AlbumsListData holds data for the albums listing template.
type AlbumsListData struct {
	Albums []model.GalleryAlbum
	Counts map[int64]int64
}

// AlbumDetailData holds data for the album detail template.
type AlbumDetailData struct {
	Album  model.GalleryAlbum
	Images []model.GalleryImage
}

// List handles GET /admin/gallery.
func (h *GalleryHandler) List(w http.ResponseWriter, r *http.Request) {
	albums, err := h.queries.ListGalleryAlbums(r.Context())
	if err != nil {
		logAndInternalError(w, "failed to list albums", "error", err)
		return
	}

	counts := make(map[int64]int64, len(albums))
	for _, album := range albums {
		n, err := h.queries.CountGalleryImagesByAlbum(r.Context(), album.ID)
		if err != nil {
			logAndInternalError(w, "failed to count album images", "error", err, "album_id", album.ID)
			return
		}
		counts[album.ID] = n
	}

	if err := h.renderer.Render(w, r, "admin/gallery", render.TemplateData{
		Title: "Gallery",
		User:  middleware.GetUser(r),
		Data:  AlbumsListData{Albums: albums, Counts: counts},
	}); err != nil {
		logAndInternalError(w, "failed to render gallery page", "error", err)
	}
}

// NewForm handles GET /admin/gallery/new.
func (h *GalleryHandler) NewForm(w http.ResponseWriter, r *http.Request) {
	if err := h.renderer.Render(w, r, "admin/album_form", render.TemplateData{
		Title: "New Album",
		User:  middleware.GetUser(r),
	}); err != nil {
		logAndInternalError(w, "failed to render album form", "error", err)
	}
}

// Show handles GET /admin/gallery/{id} - the album detail with its photos.
func (h *GalleryHandler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		flashError(w, r, h.renderer, redirectAdminGallery, "Invalid album ID")
		return
	}

	album, ok := requireEntityWithRedirect(w, r, h.renderer, redirectAdminGallery, "album", id,
		func(id int64) (model.GalleryAlbum, error) { return h.queries.GetGalleryAlbumByID(r.Context(), id) })
	if !ok {
		return
	}

	images, err := h.queries.ListGalleryImagesByAlbum(r.Context(), id)
	if err != nil {
		logAndInternalError(w, "failed to list album images", "error", err, "album_id", id)
		return
	}

	if err := h.renderer.Render(w, r, "admin/album_detail", render.TemplateData{
		Title: album.Title,
		User:  middleware.GetUser(r),
		Data:  AlbumDetailData{Album: album, Images: images},
	}); err != nil {
		logAndInternalError(w, "failed to render album page", "error", err)
	}
}

// albumForm holds a parsed and validated album form.
type albumForm struct {
	title       string
	slug        string
	description string
	isActive    bool
	position    int64
}

func parseAlbumForm(r *http.Request) (albumForm, string) {
	var f albumForm

	f.title = strings.TrimSpace(r.FormValue("title"))
	if f.title == "" {
		return f, "Title is required"
	}

	f.slug = strings.TrimSpace(r.FormValue("slug"))
	if f.slug == "" {
		f.slug = util.Slugify(f.title)
	}

	f.description = strings.TrimSpace(r.FormValue("description"))
	f.isActive = r.FormValue("is_active") == "on"
	f.position, _ = strconv.ParseInt(r.FormValue("position"), 10, 64)

	return f, ""
}

func (h *GalleryHandler) slugCount(r *http.Request, slug string) SlugExistsFunc {
	return func() (int64, error) {
		_, err := h.queries.GetGalleryAlbumBySlug(r.Context(), slug)
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		if err != nil {
			return 0, err
		}
		return 1, nil
	}
}

// Create handles POST /admin/gallery/new.
func (h *GalleryHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, redirectAdminGalleryNew) {
		return
	}

	form, msg := parseAlbumForm(r)
	if msg != "" {
		flashError(w, r, h.renderer, redirectAdminGalleryNew, msg)
		return
	}
	if msg := ValidateSlugWithChecker(form.slug, h.slugCount(r, form.slug)); msg != "" {
		flashError(w, r, h.renderer, redirectAdminGalleryNew, msg)
		return
	}

	now := time.Now()
	album, err := h.queries.CreateGalleryAlbum(r.Context(), store.CreateGalleryAlbumParams{
		Title:       form.title,
		Slug:        form.slug,
		Description: util.NullStringFromValue(form.description),
		IsActive:    form.isActive,
		Position:    form.position,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		slog.Error("failed to create album", "error", err)
		flashError(w, r, h.renderer, redirectAdminGalleryNew, "Could not create the album")
		return
	}

	h.logContent(r, "Album created", album.ID, album.Title)
	h.hub.PublishContentChanged(notify.ContentGallery, "")

	flashSuccess(w, r, h.renderer, fmt.Sprintf(redirectAdminGalleryID, album.ID), "Album created")
}

// Update handles POST /admin/gallery/{id}.
func (h *GalleryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		flashError(w, r, h.renderer, redirectAdminGallery, "Invalid album ID")
		return
	}
	detailURL := fmt.Sprintf(redirectAdminGalleryID, id)

	existing, ok := requireEntityWithRedirect(w, r, h.renderer, redirectAdminGallery, "album", id,
		func(id int64) (model.GalleryAlbum, error) { return h.queries.GetGalleryAlbumByID(r.Context(), id) })
	if !ok {
		return
	}

	if !parseFormOrRedirect(w, r, h.renderer, detailURL) {
		return
	}
	form, msg := parseAlbumForm(r)
	if msg != "" {
		flashError(w, r, h.renderer, detailURL, msg)
		return
	}
	if msg := ValidateSlugForUpdate(form.slug, existing.Slug, h.slugCount(r, form.slug)); msg != "" {
		flashError(w, r, h.renderer, detailURL, msg)
		return
	}

	album, err := h.queries.UpdateGalleryAlbum(r.Context(), store.UpdateGalleryAlbumParams{
		ID:          id,
		Title:       form.title,
		Slug:        form.slug,
		Description: util.NullStringFromValue(form.description),
		CoverPath:   existing.CoverPath,
		IsActive:    form.isActive,
		Position:    form.position,
		UpdatedAt:   time.Now(),
	})
	if err != nil {
		slog.Error("failed to update album", "error", err, "album_id", id)
		flashError(w, r, h.renderer, detailURL, "Could not save the album")
		return
	}

	h.logContent(r, "Album updated", album.ID, album.Title)
	h.hub.PublishContentChanged(notify.ContentGallery, existing.Slug)
	if album.Slug != existing.Slug {
		h.hub.PublishContentChanged(notify.ContentGallery, album.Slug)
	}

	flashSuccess(w, r, h.renderer, detailURL, "Album saved")
}

// Delete handles POST /admin/gallery/{id}/delete - removes the album,
// its photo records and their files.
func (h *GalleryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		flashError(w, r, h.renderer, redirectAdminGallery, "Invalid album ID")
		return
	}

	album, ok := requireEntityWithRedirect(w, r, h.renderer, redirectAdminGallery, "album", id,
		func(id int64) (model.GalleryAlbum, error) { return h.queries.GetGalleryAlbumByID(r.Context(), id) })
	if !ok {
		return
	}

	if err := h.media.DeleteAlbum(r.Context(), id); err != nil {
		slog.Error("failed to delete album", "error", err, "album_id", id)
		flashError(w, r, h.renderer, redirectAdminGallery, "Could not delete the album")
		return
	}

	h.logContent(r, "Album deleted", album.ID, album.Title)
	h.hub.PublishContentChanged(notify.ContentGallery, album.Slug)

	flashSuccess(w, r, h.renderer, redirectAdminGallery, "Album deleted")
}

// UploadImage handles POST /admin/gallery/{id}/images.
func (h *GalleryHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		flashError(w, r, h.renderer, redirectAdminGallery, "Invalid album ID")
		return
	}
	detailURL := fmt.Sprintf(redirectAdminGalleryID, id)

	album, ok := requireEntityWithRedirect(w, r, h.renderer, redirectAdminGallery, "album", id,
		func(id int64) (model.GalleryAlbum, error) { return h.queries.GetGalleryAlbumByID(r.Context(), id) })
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(service.MaxUploadSize); err != nil {
		flashError(w, r, h.renderer, detailURL, "Upload too large or malformed")
		return
	}
	headers := r.MultipartForm.File["image"]
	if len(headers) == 0 {
		flashError(w, r, h.renderer, detailURL, "Choose an image to upload")
		return
	}

	caption := r.FormValue("caption")
	uploaded := 0
	for _, header := range headers {
		file, err := header.Open()
		if err != nil {
			slog.Error("gallery upload open failed", "error", err, "album_id", id)
			continue
		}
		if _, err := h.media.UploadGalleryImage(r.Context(), file, header, id, caption); err != nil {
			slog.Error("gallery upload failed", "error", err, "album_id", id)
		} else {
			uploaded++
		}
		_ = file.Close()
	}

	if uploaded == 0 {
		flashError(w, r, h.renderer, detailURL, "Could not process that image")
		return
	}

	h.logContent(r, "Photos uploaded", album.ID, album.Title)
	h.hub.PublishContentChanged(notify.ContentGallery, album.Slug)

	if uploaded == 1 {
		flashSuccess(w, r, h.renderer, detailURL, "Photo uploaded")
	} else {
		flashSuccess(w, r, h.renderer, detailURL, fmt.Sprintf("%d photos uploaded", uploaded))
	}
}

// UpdateImage handles POST /admin/gallery/{id}/images/{imageID}.
func (h *GalleryHandler) UpdateImage(w http.ResponseWriter, r *http.Request) {
	albumID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		flashError(w, r, h.renderer, redirectAdminGallery, "Invalid album ID")
		return
	}
	detailURL := fmt.Sprintf(redirectAdminGalleryID, albumID)

	imageID, err := strconv.ParseInt(chi.URLParam(r, "imageID"), 10, 64)
	if err != nil {
		flashError(w, r, h.renderer, detailURL, "Invalid photo ID")
		return
	}

	image, ok := requireEntityWithRedirect(w, r, h.renderer, detailURL, "photo", imageID,
		func(id int64) (model.GalleryImage, error) { return h.queries.GetGalleryImageByID(r.Context(), id) })
	if !ok {
		return
	}
	if image.AlbumID != albumID {
		flashError(w, r, h.renderer, detailURL, "Photo not found")
		return
	}

	if !parseFormOrRedirect(w, r, h.renderer, detailURL) {
		return
	}
	position, _ := strconv.ParseInt(r.FormValue("position"), 10, 64)

	if err := h.queries.UpdateGalleryImage(r.Context(), store.UpdateGalleryImageParams{
		ID:       imageID,
		Caption:  util.NullStringFromValue(strings.TrimSpace(r.FormValue("caption"))),
		Position: position,
	}); err != nil {
		slog.Error("failed to update photo", "error", err, "image_id", imageID)
		flashError(w, r, h.renderer, detailURL, "Could not save the photo")
		return
	}

	if album, err := h.queries.GetGalleryAlbumByID(r.Context(), albumID); err == nil {
		h.hub.PublishContentChanged(notify.ContentGallery, album.Slug)
	}

	flashSuccess(w, r, h.renderer, detailURL, "Photo saved")
}

// DeleteImage handles POST /admin/gallery/{id}/images/{imageID}/delete.
func (h *GalleryHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	albumID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		flashError(w, r, h.renderer, redirectAdminGallery, "Invalid album ID")
		return
	}
	detailURL := fmt.Sprintf(redirectAdminGalleryID, albumID)

	imageID, err := strconv.ParseInt(chi.URLParam(r, "imageID"), 10, 64)
	if err != nil {
		flashError(w, r, h.renderer, detailURL, "Invalid photo ID")
		return
	}

	image, ok := requireEntityWithRedirect(w, r, h.renderer, detailURL, "photo", imageID,
		func(id int64) (model.GalleryImage, error) { return h.queries.GetGalleryImageByID(r.Context(), id) })
	if !ok {
		return
	}
	if image.AlbumID != albumID {
		flashError(w, r, h.renderer, detailURL, "Photo not found")
		return
	}

	if err := h.media.DeleteGalleryImage(r.Context(), imageID); err != nil {
		slog.Error("failed to delete photo", "error", err, "image_id", imageID)
		flashError(w, r, h.renderer, detailURL, "Could not delete the photo")
		return
	}

	if album, err := h.queries.GetGalleryAlbumByID(r.Context(), albumID); err == nil {
		h.hub.PublishContentChanged(notify.ContentGallery, album.Slug)
	}

	flashSuccess(w, r, h.renderer, detailURL, "Photo deleted")
}

func (h *GalleryHandler) logContent(r *http.Request, message string, albumID int64, title string) {
	_ = h.audit.LogContentEvent(r.Context(), model.EventLevelInfo, message, middleware.GetUserIDPtr(r),
		util.ClientIP(r), map[string]any{"album_id": albumID, "title": title})
}
