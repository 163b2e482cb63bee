// Copyright (c) 2026 Shiloh Intercession Mountain
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import "testing"

func TestVideoThumbnail(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{
			"watch link",
			"https://www.youtube.com/watch?v=dQw4w9WgXcQ",
			"https://img.youtube.com/vi/dQw4w9WgXcQ/hqdefault.jpg",
		},
		{
			"short link",
			"https://youtu.be/dQw4w9WgXcQ",
			"https://img.youtube.com/vi/dQw4w9WgXcQ/hqdefault.jpg",
		},
		{
			"short link with query",
			"https://youtu.be/dQw4w9WgXcQ?t=42",
			"https://img.youtube.com/vi/dQw4w9WgXcQ/hqdefault.jpg",
		},
		{
			"embed link",
			"https://www.youtube.com/embed/dQw4w9WgXcQ",
			"https://img.youtube.com/vi/dQw4w9WgXcQ/hqdefault.jpg",
		},
		{
			"mobile watch link",
			"https://m.youtube.com/watch?v=dQw4w9WgXcQ",
			"https://img.youtube.com/vi/dQw4w9WgXcQ/hqdefault.jpg",
		},
		{
			"shorts link",
			"https://www.youtube.com/shorts/dQw4w9WgXcQ",
			"https://img.youtube.com/vi/dQw4w9WgXcQ/hqdefault.jpg",
		},
		{"vimeo link", "https://vimeo.com/123456789", ""},
		{"plain site", "https://example.org/sermon.mp4", ""},
		{"not a url", "://broken", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := VideoThumbnail(tt.url); got != tt.want {
				t.Errorf("VideoThumbnail(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}
