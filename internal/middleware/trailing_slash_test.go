// Copyright (c) 2026 Shiloh Intercession Mountain
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestStripTrailingSlash(t *testing.T) {
	handler := StripTrailingSlash(simpleOKHandler)

	tests := []struct {
		name     string
		path     string
		wantCode int
		wantLoc  string
	}{
		{"root untouched", "/", http.StatusOK, ""},
		{"no trailing slash untouched", "/events", http.StatusOK, ""},
		{"trailing slash redirects", "/events/", http.StatusMovedPermanently, "/events"},
		{"nested trailing slash redirects", "/gallery/easter-2026/", http.StatusMovedPermanently, "/gallery/easter-2026"},
		{"query string preserved", "/events/?page=2", http.StatusMovedPermanently, "/events?page=2"},
		{"uploads path untouched", "/uploads/avatars/", http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if w.Code != tt.wantCode {
				t.Errorf("expected status %d, got %d", tt.wantCode, w.Code)
			}
			if tt.wantLoc != "" {
				if loc := w.Header().Get("Location"); loc != tt.wantLoc {
					t.Errorf("expected redirect to %q, got %q", tt.wantLoc, loc)
				}
			}
		})
	}
}
