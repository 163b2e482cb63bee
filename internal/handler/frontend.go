// Copyright (c) 2026 Shiloh Intercession Mountain
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/shilointercessionmountain-org/shilohwebsite/internal/cache"
	"github.com/shilointercessionmountain-org/shilohwebsite/internal/geoip"
	"github.com/shilointercessionmountain-org/shilohwebsite/internal/mailer"
	"github.com/shilointercessionmountain-org/shilohwebsite/internal/model"
	"github.com/shilointercessionmountain-org/shilohwebsite/internal/notify"
	"github.com/shilointercessionmountain-org/shilohwebsite/internal/render"
	"github.com/shilointercessionmountain-org/shilohwebsite/internal/service"
	"github.com/shilointercessionmountain-org/shilohwebsite/internal/store"
	"github.com/shilointercessionmountain-org/shilohwebsite/internal/util"
)

// maxContactMessageLength bounds the contact form message body.
const maxContactMessageLength = 5000

// FrontendHandler serves the public site pages. Content reads go through
// the cache; admin mutations invalidate it via the notification hub.
type FrontendHandler struct {
	queries  *store.Queries
	audit    *service.AuditService
	renderer *render.Renderer
	geo      *geoip.Resolver
	mail     mailer.Sender
	hub      *notify.Hub

	events       *cache.TypedCache[[]model.Event]
	videos       *cache.TypedCache[[]model.Video]
	albums       *cache.TypedCache[[]model.GalleryAlbum]
	albumImages  *cache.TypedCache[[]model.GalleryImage]
	serviceTimes *cache.TypedCache[[]model.ServiceTime]
	churchInfo   *cache.TypedCache[model.ChurchInfo]
}

// NewFrontendHandler creates a new FrontendHandler.
func NewFrontendHandler(db *sql.DB, audit *service.AuditService, renderer *render.Renderer,
	manager *cache.Manager, geo *geoip.Resolver, mail mailer.Sender, hub *notify.Hub,
	cacheTTL time.Duration) *FrontendHandler {
	backend := manager.Backend()
	return &FrontendHandler{
		queries:      store.New(db),
		audit:        audit,
		renderer:     renderer,
		geo:          geo,
		mail:         mail,
		hub:          hub,
		events:       cache.NewTypedCache[[]model.Event](backend, cacheTTL),
		videos:       cache.NewTypedCache[[]model.Video](backend, cacheTTL),
		albums:       cache.NewTypedCache[[]model.GalleryAlbum](backend, cacheTTL),
		albumImages:  cache.NewTypedCache[[]model.GalleryImage](backend, cacheTTL),
		serviceTimes: cache.NewTypedCache[[]model.ServiceTime](backend, cacheTTL),
		churchInfo:   cache.NewTypedCache[model.ChurchInfo](backend, cacheTTL),
	}
}

// HomeData holds data for the home page template.
type HomeData struct {
	Info           model.ChurchInfo
	AboutHTML      template.HTML
	ServiceTimes   []model.ServiceTime
	UpcomingEvents []model.Event
}

// Home handles GET /.
func (h *FrontendHandler) Home(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	info, err := h.loadChurchInfo(r)
	if err != nil {
		logAndInternalError(w, "failed to load church info", "error", err)
		return
	}

	times, err := h.serviceTimes.GetOrSet(ctx, cache.KeyServiceTimes, func() (*[]model.ServiceTime, error) {
		list, err := h.queries.ListActiveServiceTimes(ctx)
		return &list, err
	})
	if err != nil {
		logAndInternalError(w, "failed to load service times", "error", err)
		return
	}

	upcoming, err := h.loadActiveEvents(r)
	if err != nil {
		logAndInternalError(w, "failed to load events", "error", err)
		return
	}
	if len(upcoming) > 3 {
		upcoming = upcoming[:3]
	}

	if err := h.renderer.Render(w, r, "site/home", render.TemplateData{
		Title: info.Name,
		Data: HomeData{
			Info:           info,
			AboutHTML:      service.RenderMarkdown(info.About),
			ServiceTimes:   *times,
			UpcomingEvents: upcoming,
		},
	}); err != nil {
		logAndInternalError(w, "failed to render home page", "error", err)
	}
}

// EventsPageData holds data for the public events template.
type EventsPageData struct {
	Events []model.Event
}

// Events handles GET /events.
func (h *FrontendHandler) Events(w http.ResponseWriter, r *http.Request) {
	events, err := h.loadActiveEvents(r)
	if err != nil {
		logAndInternalError(w, "failed to load events", "error", err)
		return
	}

	if err := h.renderer.Render(w, r, "site/events", render.TemplateData{
		Title: "Events",
		Data:  EventsPageData{Events: events},
	}); err != nil {
		logAndInternalError(w, "failed to render events page", "error", err)
	}
}

// EventDetailData holds data for the public event detail template.
type EventDetailData struct {
	Event           model.Event
	DescriptionHTML template.HTML
	HasEnded        bool
}

// Event handles GET /events/{slug}.
func (h *FrontendHandler) Event(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	event, err := h.queries.GetEventBySlug(r.Context(), slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.NotFound(w, r)
			return
		}
		logAndInternalError(w, "failed to load event", "error", err, "slug", slug)
		return
	}
	if !event.IsActive {
		h.NotFound(w, r)
		return
	}

	if err := h.renderer.Render(w, r, "site/event", render.TemplateData{
		Title: event.Title,
		Data: EventDetailData{
			Event:           event,
			DescriptionHTML: service.RenderMarkdown(event.Description),
			HasEnded:        event.IsPast(time.Now()),
		},
	}); err != nil {
		logAndInternalError(w, "failed to render event page", "error", err)
	}
}

// VideosPageData holds data for the public videos template.
type VideosPageData struct {
	Videos []model.Video
}

// Videos handles GET /videos.
func (h *FrontendHandler) Videos(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	videos, err := h.videos.GetOrSet(ctx, cache.KeyVideos, func() (*[]model.Video, error) {
		list, err := h.queries.ListActiveVideos(ctx)
		return &list, err
	})
	if err != nil {
		logAndInternalError(w, "failed to load videos", "error", err)
		return
	}

	if err := h.renderer.Render(w, r, "site/videos", render.TemplateData{
		Title: "Sermons & Videos",
		Data:  VideosPageData{Videos: *videos},
	}); err != nil {
		logAndInternalError(w, "failed to render videos page", "error", err)
	}
}

// GalleryPageData holds data for the public gallery template.
type GalleryPageData struct {
	Albums []model.GalleryAlbum
}

// Gallery handles GET /gallery.
func (h *FrontendHandler) Gallery(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	albums, err := h.albums.GetOrSet(ctx, cache.KeyAlbums, func() (*[]model.GalleryAlbum, error) {
		list, err := h.queries.ListActiveGalleryAlbums(ctx)
		return &list, err
	})
	if err != nil {
		logAndInternalError(w, "failed to load albums", "error", err)
		return
	}

	if err := h.renderer.Render(w, r, "site/gallery", render.TemplateData{
		Title: "Photo Gallery",
		Data:  GalleryPageData{Albums: *albums},
	}); err != nil {
		logAndInternalError(w, "failed to render gallery page", "error", err)
	}
}

// AlbumPageData holds data for the public album template.
type AlbumPageData struct {
	Album  model.GalleryAlbum
	Images []model.GalleryImage
}

// Album handles GET /gallery/{slug}.
func (h *FrontendHandler) Album(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	slug := chi.URLParam(r, "slug")

	album, err := h.queries.GetGalleryAlbumBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.NotFound(w, r)
			return
		}
		logAndInternalError(w, "failed to load album", "error", err, "slug", slug)
		return
	}
	if !album.IsActive {
		h.NotFound(w, r)
		return
	}

	images, err := h.albumImages.GetOrSet(ctx, cache.KeyPrefixAlbum+slug, func() (*[]model.GalleryImage, error) {
		list, err := h.queries.ListGalleryImagesByAlbum(ctx, album.ID)
		return &list, err
	})
	if err != nil {
		logAndInternalError(w, "failed to load album images", "error", err, "slug", slug)
		return
	}

	if err := h.renderer.Render(w, r, "site/album", render.TemplateData{
		Title: album.Title,
		Data:  AlbumPageData{Album: album, Images: *images},
	}); err != nil {
		logAndInternalError(w, "failed to render album page", "error", err)
	}
}

// ContactPageData holds data for the public contact template.
type ContactPageData struct {
	Info model.ChurchInfo
}

// ContactForm handles GET /contact.
func (h *FrontendHandler) ContactForm(w http.ResponseWriter, r *http.Request) {
	info, err := h.loadChurchInfo(r)
	if err != nil {
		logAndInternalError(w, "failed to load church info", "error", err)
		return
	}

	if err := h.renderer.Render(w, r, "site/contact", render.TemplateData{
		Title: "Contact Us",
		Data:  ContactPageData{Info: info},
	}); err != nil {
		logAndInternalError(w, "failed to render contact page", "error", err)
	}
}

// ContactSubmit handles POST /contact.
func (h *FrontendHandler) ContactSubmit(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, redirectContact) {
		return
	}

	// Honeypot field. Bots fill it, people never see it.
	if r.FormValue("website") != "" {
		http.Redirect(w, r, redirectContact, http.StatusSeeOther)
		return
	}

	// Markup in free-text fields is stripped before validation so the
	// length limit applies to what actually gets stored.
	name := strings.TrimSpace(service.SanitizePlain(r.FormValue("name")))
	email := strings.TrimSpace(strings.ToLower(r.FormValue("email")))
	message := strings.TrimSpace(service.SanitizePlain(r.FormValue("message")))

	switch {
	case name == "":
		flashError(w, r, h.renderer, redirectContact, "Please tell us your name")
		return
	case !ValidateEmail(email):
		flashError(w, r, h.renderer, redirectContact, "Please enter a valid email address")
		return
	case message == "":
		flashError(w, r, h.renderer, redirectContact, "Please write a message")
		return
	case len(message) > maxContactMessageLength:
		flashError(w, r, h.renderer, redirectContact, "Your message is too long")
		return
	}

	ip := util.ClientIP(r)
	submission, err := h.queries.CreateContactSubmission(r.Context(), store.CreateContactSubmissionParams{
		Name:      name,
		Email:     email,
		Phone:     util.NullStringFromValue(strings.TrimSpace(r.FormValue("phone"))),
		Subject:   util.NullStringFromValue(strings.TrimSpace(service.SanitizePlain(r.FormValue("subject")))),
		Message:   message,
		IP:        ip,
		UserAgent: util.NullStringFromValue(r.UserAgent()),
		Country:   util.NullStringFromValue(h.geo.Country(ip)),
		CreatedAt: time.Now(),
	})
	if err != nil {
		slog.Error("failed to store contact submission", "error", err)
		flashError(w, r, h.renderer, redirectContact, "Something went wrong. Please try again.")
		return
	}

	_ = h.audit.LogContactEvent(r.Context(), model.EventLevelInfo, "Contact message received",
		nil, ip, map[string]any{"submission_id": submission.ID, "from": email})

	h.hub.Publish(notify.NewEvent(notify.EventContactReceived, notify.ContactData{
		SubmissionID: submission.ID,
		Name:         submission.Name,
		Subject:      submission.Subject.String,
	}))

	if h.mail != nil {
		go func(s model.ContactSubmission) {
			if err := h.mail.SendContactNotification(s); err != nil {
				slog.Error("contact notification mail failed", "error", err, "submission_id", s.ID)
			}
		}(submission)
	}

	flashSuccess(w, r, h.renderer, redirectContact, "Thank you! We received your message and will be in touch.")
}

// NotFound renders the public 404 page.
func (h *FrontendHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNotFound)
	if err := h.renderer.Render(w, r, "site/notfound", render.TemplateData{
		Title: "Page Not Found",
	}); err != nil {
		slog.Error("failed to render 404 page", "error", err)
	}
}

func (h *FrontendHandler) loadChurchInfo(r *http.Request) (model.ChurchInfo, error) {
	info, err := h.churchInfo.GetOrSet(r.Context(), cache.KeyChurchInfo, func() (*model.ChurchInfo, error) {
		c, err := h.queries.GetChurchInfo(r.Context())
		if errors.Is(err, sql.ErrNoRows) {
			c = model.ChurchInfo{Name: "Shiloh Intercession Mountain"}
			err = nil
		}
		return &c, err
	})
	if err != nil {
		return model.ChurchInfo{}, err
	}
	return *info, nil
}

func (h *FrontendHandler) loadActiveEvents(r *http.Request) ([]model.Event, error) {
	ctx := r.Context()
	events, err := h.events.GetOrSet(ctx, cache.KeyEvents, func() (*[]model.Event, error) {
		list, err := h.queries.ListActiveEvents(ctx, time.Now())
		return &list, err
	})
	if err != nil {
		return nil, err
	}
	return *events, nil
}
