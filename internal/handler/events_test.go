// Copyright (c) 2026 Shiloh Intercession Mountain
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/shilointercessionmountain-org/shilohwebsite/internal/service"
	"github.com/shilointercessionmountain-org/shilohwebsite/internal/store"
	"github.com/shilointercessionmountain-org/shilohwebsite/internal/util"
)

func newEventsTestHandler(t *testing.T) (*EventsHandler, *store.Queries, *scs.SessionManager, string) {
	t.Helper()

	db := testDB(t)
	sm := scs.New()
	renderer := testRenderer(t, sm)
	audit := service.NewAuditService(db)
	hub := testHub(t)
	uploadDir := t.TempDir()
	media := service.NewMediaService(db, uploadDir)

	h := NewEventsHandler(db, media, audit, renderer, hub)
	return h, store.New(db), sm, uploadDir
}

// multipartEventForm builds a multipart POST body from field values plus an
// optional PNG upload under the given file field name.
func multipartEventForm(t *testing.T, target string, fields map[string]string, fileField string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, value := range fields {
		if err := mw.WriteField(name, value); err != nil {
			t.Fatalf("writing field %s: %v", name, err)
		}
	}

	if fileField != "" {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", `form-data; name="`+fileField+`"; filename="banner.png"`)
		header.Set(HeaderContentType, "image/png")
		part, err := mw.CreatePart(header)
		if err != nil {
			t.Fatalf("creating file part: %v", err)
		}

		img := image.NewRGBA(image.Rect(0, 0, 64, 48))
		for y := 0; y < 48; y++ {
			for x := 0; x < 64; x++ {
				img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 64, A: 255})
			}
		}
		if err := png.Encode(part, img); err != nil {
			t.Fatalf("encoding test image: %v", err)
		}
	}

	if err := mw.Close(); err != nil {
		t.Fatalf("closing multipart writer: %v", err)
	}

	r := httptest.NewRequest(http.MethodPost, target, &buf)
	r.Header.Set(HeaderContentType, mw.FormDataContentType())
	return r
}

func TestEventCreateWithBanner(t *testing.T) {
	h, queries, sm, uploadDir := newEventsTestHandler(t)

	req := multipartEventForm(t, redirectAdminEvents, map[string]string{
		"title":     "Harvest Festival",
		"starts_at": "2026-10-03T10:00",
		"is_active": "on",
	}, "image")

	rec := serveWithSession(t, sm, 0, h.Create, req)
	assertRedirect(t, rec, redirectAdminEvents)

	event, err := queries.GetEventBySlug(context.Background(), "harvest-festival")
	if err != nil {
		t.Fatalf("event not created: %v", err)
	}
	if !event.ImagePath.Valid || event.ImagePath.String == "" {
		t.Fatal("expected stored banner path")
	}
	if _, err := os.Stat(filepath.Join(uploadDir, event.ImagePath.String)); err != nil {
		t.Errorf("expected banner file on disk: %v", err)
	}
}

func TestEventCreateWithoutBanner(t *testing.T) {
	h, queries, sm, _ := newEventsTestHandler(t)

	req := multipartEventForm(t, redirectAdminEvents, map[string]string{
		"title":     "Prayer Night",
		"starts_at": "2026-11-07T19:00",
	}, "")

	rec := serveWithSession(t, sm, 0, h.Create, req)
	assertRedirect(t, rec, redirectAdminEvents)

	event, err := queries.GetEventBySlug(context.Background(), "prayer-night")
	if err != nil {
		t.Fatalf("event not created: %v", err)
	}
	if event.ImagePath.Valid {
		t.Errorf("unexpected banner path %q", event.ImagePath.String)
	}
}

func TestEventUpdateRemovesBanner(t *testing.T) {
	h, queries, sm, uploadDir := newEventsTestHandler(t)

	bannerPath := filepath.Join("banners", "old.jpg")
	if err := os.MkdirAll(filepath.Join(uploadDir, "banners"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(uploadDir, bannerPath), []byte("jpg"), 0644); err != nil {
		t.Fatal(err)
	}

	now := time.Now()
	event, err := queries.CreateEvent(context.Background(), store.CreateEventParams{
		Title:     "Carol Service",
		Slug:      "carol-service",
		StartsAt:  now.Add(24 * time.Hour),
		ImagePath: util.NullStringFromValue(bannerPath),
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("seeding event: %v", err)
	}

	req := multipartEventForm(t, redirectAdminEvents, map[string]string{
		"title":        "Carol Service",
		"slug":         "carol-service",
		"starts_at":    "2026-12-20T18:00",
		"is_active":    "on",
		"remove_image": "on",
	}, "")
	req = withURLParam(req, "id", strconv.FormatInt(event.ID, 10))

	rec := serveWithSession(t, sm, 0, h.Update, req)
	assertRedirect(t, rec, redirectAdminEvents)

	updated, err := queries.GetEventByID(context.Background(), event.ID)
	if err != nil {
		t.Fatalf("loading event: %v", err)
	}
	if updated.ImagePath.Valid {
		t.Errorf("banner path not cleared: %q", updated.ImagePath.String)
	}
	if _, err := os.Stat(filepath.Join(uploadDir, bannerPath)); !os.IsNotExist(err) {
		t.Error("expected banner file to be removed")
	}
}
