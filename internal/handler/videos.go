// Copyright (c) 2026 Shiloh Intercession Mountain
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
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

// VideosHandler handles admin video management.
type VideosHandler struct {
	queries  *store.Queries
	audit    *service.AuditService
	renderer *render.Renderer
	hub      *notify.Hub
}

// NewVideosHandler creates a new VideosHandler.
func NewVideosHandler(db *sql.DB, audit *service.AuditService, renderer *render.Renderer, hub *notify.Hub) *VideosHandler {
	return &VideosHandler{
		queries:  store.New(db),
		audit:    audit,
		renderer: renderer,
		hub:      hub,
	}
}

// VideosListData holds data for the videos listing template.
type VideosListData struct {
	Videos []model.Video
}

// VideoFormData holds data for the video create/edit form template.
type VideoFormData struct {
	Video  model.Video
	IsEdit bool
}

// List handles GET /admin/videos.
func (h *VideosHandler) List(w http.ResponseWriter, r *http.Request) {
	videos, err := h.queries.ListVideos(r.Context())
	if err != nil {
		logAndInternalError(w, "failed to list videos", "error", err)
		return
	}

	if err := h.renderer.Render(w, r, "admin/videos", render.TemplateData{
		Title: "Videos",
		User:  middleware.GetUser(r),
		Data:  VideosListData{Videos: videos},
	}); err != nil {
		logAndInternalError(w, "failed to render videos page", "error", err)
	}
}

// NewForm handles GET /admin/videos/new.
func (h *VideosHandler) NewForm(w http.ResponseWriter, r *http.Request) {
	if err := h.renderer.Render(w, r, "admin/video_form", render.TemplateData{
		Title: "New Video",
		User:  middleware.GetUser(r),
		Data:  VideoFormData{IsEdit: false},
	}); err != nil {
		logAndInternalError(w, "failed to render video form", "error", err)
	}
}

// EditForm handles GET /admin/videos/{id}.
func (h *VideosHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		flashError(w, r, h.renderer, redirectAdminVideos, "Invalid video ID")
		return
	}

	video, ok := requireEntityWithRedirect(w, r, h.renderer, redirectAdminVideos, "video", id,
		func(id int64) (model.Video, error) { return h.queries.GetVideoByID(r.Context(), id) })
	if !ok {
		return
	}

	if err := h.renderer.Render(w, r, "admin/video_form", render.TemplateData{
		Title: "Edit Video",
		User:  middleware.GetUser(r),
		Data:  VideoFormData{Video: video, IsEdit: true},
	}); err != nil {
		logAndInternalError(w, "failed to render video form", "error", err)
	}
}

// videoForm holds a parsed and validated video form.
type videoForm struct {
	title       string
	description string
	videoURL    string
	isActive    bool
	position    int64
}

func parseVideoForm(r *http.Request) (videoForm, string) {
	var f videoForm

	f.title = strings.TrimSpace(r.FormValue("title"))
	if f.title == "" {
		return f, "Title is required"
	}

	f.videoURL = strings.TrimSpace(r.FormValue("video_url"))
	parsed, err := url.Parse(f.videoURL)
	if f.videoURL == "" || err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return f, "A valid video URL is required"
	}

	f.description = strings.TrimSpace(r.FormValue("description"))
	f.isActive = r.FormValue("is_active") == "on"
	f.position, _ = strconv.ParseInt(r.FormValue("position"), 10, 64)

	return f, ""
}

// Create handles POST /admin/videos/new.
func (h *VideosHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, redirectAdminVideosNew) {
		return
	}

	form, msg := parseVideoForm(r)
	if msg != "" {
		flashError(w, r, h.renderer, redirectAdminVideosNew, msg)
		return
	}

	now := time.Now()
	video, err := h.queries.CreateVideo(r.Context(), store.CreateVideoParams{
		Title:         form.title,
		Description:   util.NullStringFromValue(form.description),
		VideoURL:      form.videoURL,
		ThumbnailPath: util.NullStringFromValue(service.VideoThumbnail(form.videoURL)),
		IsActive:      form.isActive,
		Position:      form.position,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		slog.Error("failed to create video", "error", err)
		flashError(w, r, h.renderer, redirectAdminVideosNew, "Could not create the video")
		return
	}

	h.logContent(r, "Video created", video)
	h.hub.PublishContentChanged(notify.ContentVideos, "")

	flashSuccess(w, r, h.renderer, redirectAdminVideos, "Video created")
}

// Update handles POST /admin/videos/{id}.
func (h *VideosHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		flashError(w, r, h.renderer, redirectAdminVideos, "Invalid video ID")
		return
	}
	editURL := fmt.Sprintf(redirectAdminVideosID, id)

	if _, ok := requireEntityWithRedirect(w, r, h.renderer, redirectAdminVideos, "video", id,
		func(id int64) (model.Video, error) { return h.queries.GetVideoByID(r.Context(), id) }); !ok {
		return
	}

	if !parseFormOrRedirect(w, r, h.renderer, editURL) {
		return
	}
	form, msg := parseVideoForm(r)
	if msg != "" {
		flashError(w, r, h.renderer, editURL, msg)
		return
	}

	video, err := h.queries.UpdateVideo(r.Context(), store.UpdateVideoParams{
		ID:            id,
		Title:         form.title,
		Description:   util.NullStringFromValue(form.description),
		VideoURL:      form.videoURL,
		ThumbnailPath: util.NullStringFromValue(service.VideoThumbnail(form.videoURL)),
		IsActive:      form.isActive,
		Position:      form.position,
		UpdatedAt:     time.Now(),
	})
	if err != nil {
		slog.Error("failed to update video", "error", err, "video_id", id)
		flashError(w, r, h.renderer, editURL, "Could not save the video")
		return
	}

	h.logContent(r, "Video updated", video)
	h.hub.PublishContentChanged(notify.ContentVideos, "")

	flashSuccess(w, r, h.renderer, redirectAdminVideos, "Video saved")
}

// Delete handles POST /admin/videos/{id}/delete.
func (h *VideosHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		flashError(w, r, h.renderer, redirectAdminVideos, "Invalid video ID")
		return
	}

	video, ok := requireEntityWithRedirect(w, r, h.renderer, redirectAdminVideos, "video", id,
		func(id int64) (model.Video, error) { return h.queries.GetVideoByID(r.Context(), id) })
	if !ok {
		return
	}

	if err := h.queries.DeleteVideo(r.Context(), id); err != nil {
		slog.Error("failed to delete video", "error", err, "video_id", id)
		flashError(w, r, h.renderer, redirectAdminVideos, "Could not delete the video")
		return
	}

	h.logContent(r, "Video deleted", video)
	h.hub.PublishContentChanged(notify.ContentVideos, "")

	flashSuccess(w, r, h.renderer, redirectAdminVideos, "Video deleted")
}

func (h *VideosHandler) logContent(r *http.Request, message string, video model.Video) {
	_ = h.audit.LogContentEvent(r.Context(), model.EventLevelInfo, message, middleware.GetUserIDPtr(r),
		util.ClientIP(r), map[string]any{"video_id": video.ID, "title": video.Title})
}
