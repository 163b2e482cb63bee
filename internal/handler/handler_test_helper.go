// Copyright (c) 2026 Shiloh Intercession Mountain
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"

	"github.com/shilointercessionmountain-org/shilohwebsite/internal/middleware"
	"github.com/shilointercessionmountain-org/shilohwebsite/internal/model"
	"github.com/shilointercessionmountain-org/shilohwebsite/internal/notify"
	"github.com/shilointercessionmountain-org/shilohwebsite/internal/render"
	"github.com/shilointercessionmountain-org/shilohwebsite/internal/service"
	"github.com/shilointercessionmountain-org/shilohwebsite/internal/store"
)

// testDB opens a migrated throwaway database.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := store.NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := store.Migrate(db); err != nil {
		t.Fatalf("migrating test db: %v", err)
	}
	return db
}

// testPageNames lists every template the handlers under test may render.
var testPageNames = []string{
	"site/home", "site/events", "site/event", "site/videos", "site/gallery",
	"site/album", "site/contact", "site/notfound",
	"auth/login", "auth/signup",
	"admin/dashboard", "admin/requests", "admin/users", "admin/profile",
	"admin/events", "admin/event_form", "admin/videos", "admin/video_form",
	"admin/gallery", "admin/album_form", "admin/album_detail",
	"admin/service_times", "admin/contact", "admin/contact_detail",
	"admin/settings", "admin/audit",
}

func testRenderer(t *testing.T, sm *scs.SessionManager) *render.Renderer {
	t.Helper()

	mapFS := fstest.MapFS{
		"layouts/base.html": &fstest.MapFile{
			Data: []byte(`{{define "base"}}{{.Title}}|{{template "content" .}}{{end}}`),
		},
		"layouts/admin.html": &fstest.MapFile{
			Data: []byte(`{{define "adminnav"}}nav{{end}}`),
		},
	}
	for _, name := range testPageNames {
		mapFS[name+".html"] = &fstest.MapFile{
			Data: []byte(`{{define "content"}}` + name + `{{end}}`),
		}
	}

	r, err := render.New(render.Config{TemplatesFS: mapFS, SessionManager: sm})
	if err != nil {
		t.Fatalf("building test renderer: %v", err)
	}
	return r
}

// testHub returns a running notification hub.
func testHub(t *testing.T) *notify.Hub {
	t.Helper()
	hub := notify.NewHub()
	hub.Start()
	t.Cleanup(hub.Stop)
	return hub
}

// serveWithSession runs a handler inside the session middleware so
// session operations work, optionally pre-authenticated as userID.
func serveWithSession(t *testing.T, sm *scs.SessionManager, userID int64,
	h http.HandlerFunc, r *http.Request) *httptest.ResponseRecorder {
	t.Helper()

	rec := httptest.NewRecorder()
	wrapped := sm.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if userID > 0 {
			sm.Put(r.Context(), SessionKeyUserID, userID)
		}
		h(w, r)
	}))
	wrapped.ServeHTTP(rec, r)
	return rec
}

// withUser attaches a user to the request context the way the LoadUser
// middleware does.
func withUser(r *http.Request, user model.User) *http.Request {
	ctx := context.WithValue(r.Context(), middleware.ContextKeyUser, user)
	return r.WithContext(ctx)
}

// withURLParam attaches a chi route parameter to the request.
func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// formRequest builds a POST request with form-encoded values.
func formRequest(target string, values url.Values) *http.Request {
	r := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	r.Header.Set(HeaderContentType, "application/x-www-form-urlencoded")
	return r
}

func assertRedirect(t *testing.T, rec *httptest.ResponseRecorder, location string) {
	t.Helper()
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d (body %q)", rec.Code, http.StatusSeeOther, rec.Body.String())
	}
	if got := rec.Header().Get("Location"); got != location {
		t.Errorf("redirect = %q, want %q", got, location)
	}
}

// registerUser creates an account through the service layer and returns it.
func registerUser(t *testing.T, accounts *service.AccountService, email string) (model.User, model.AdminRequest) {
	t.Helper()

	user, request, err := accounts.Register(context.Background(), service.RegisterParams{
		Email:     email,
		Password:  "sufficiently-long",
		FirstName: "Test",
		LastName:  "User",
	})
	if err != nil {
		t.Fatalf("registering %s: %v", email, err)
	}
	return user, request
}
