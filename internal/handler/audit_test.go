// Copyright (c) 2026 Shiloh Intercession Mountain
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alexedwards/scs/v2"

	"github.com/shilointercessionmountain-org/shilohwebsite/internal/model"
	"github.com/shilointercessionmountain-org/shilohwebsite/internal/service"
)

func TestFormatMetadata(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"empty", "", ""},
		{"empty object", "{}", ""},
		{"null", "null", ""},
		{"single key", `{"email":"a@b.org"}`, "email: a@b.org"},
		{"sorted keys", `{"b":2,"a":1}`, "a: 1, b: 2"},
		{"invalid json passes through", "not json", "not json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatMetadata(tt.raw); got != tt.want {
				t.Errorf("formatMetadata(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestAuditListFiltersByCategory(t *testing.T) {
	db := testDB(t)
	sm := scs.New()
	h := NewAuditHandler(db, testRenderer(t, sm))
	audit := service.NewAuditService(db)

	ctx := context.Background()
	if err := audit.LogAuthEvent(ctx, model.EventLevelInfo, "login", nil, "", nil); err != nil {
		t.Fatalf("seeding auth event: %v", err)
	}
	if err := audit.LogContentEvent(ctx, model.EventLevelInfo, "edit", nil, "", nil); err != nil {
		t.Fatalf("seeding content event: %v", err)
	}

	for _, target := range []string{
		"/admin/audit",
		"/admin/audit?category=auth",
		"/admin/audit?category=bogus",
	} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		rec := serveWithSession(t, sm, 0, h.List, req)
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s status = %d, want 200 (body %q)", target, rec.Code, rec.Body.String())
		}
		if !strings.Contains(rec.Body.String(), "admin/audit") {
			t.Errorf("GET %s body = %q, want audit page", target, rec.Body.String())
		}
	}
}

func TestValidAuditCategory(t *testing.T) {
	if !validAuditCategory(model.EventCategoryAuth) {
		t.Error("auth should be a valid category")
	}
	if validAuditCategory("bogus") {
		t.Error("bogus should not be a valid category")
	}
	if validAuditCategory("") {
		t.Error("empty string should not be a valid category")
	}
}
