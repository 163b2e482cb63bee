// Copyright (c) 2026 Shiloh Intercession Mountain
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"fmt"
	"net/url"
	"strings"
)

// VideoThumbnail derives a preview image URL for a video link. YouTube links
// map to the img.youtube.com hqdefault frame; other hosts get no preview.
func VideoThumbnail(videoURL string) string {
	id := youtubeID(videoURL)
	if id == "" {
		return ""
	}
	return fmt.Sprintf("https://img.youtube.com/vi/%s/hqdefault.jpg", id)
}

// youtubeID extracts the video ID from the YouTube URL shapes in the wild:
// watch?v=, youtu.be short links, and /embed/ player URLs.
func youtubeID(videoURL string) string {
	u, err := url.Parse(videoURL)
	if err != nil {
		return ""
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	switch host {
	case "youtube.com", "m.youtube.com", "youtube-nocookie.com":
		if id := u.Query().Get("v"); id != "" {
			return id
		}
		for _, prefix := range []string{"/embed/", "/shorts/", "/live/"} {
			if rest, ok := strings.CutPrefix(u.Path, prefix); ok {
				if idx := strings.IndexByte(rest, '/'); idx != -1 {
					rest = rest[:idx]
				}
				return rest
			}
		}
	case "youtu.be":
		id := strings.TrimPrefix(u.Path, "/")
		if idx := strings.IndexByte(id, '/'); idx != -1 {
			id = id[:idx]
		}
		return id
	}
	return ""
}
