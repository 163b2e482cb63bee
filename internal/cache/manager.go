// Copyright (c) 2026 Shiloh Intercession Mountain
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"log/slog"
)

// Cache keys for public site content. Album image listings are stored under
// KeyPrefixAlbum followed by the album slug.
const (
	KeyEvents       = "content:events"
	KeyVideos       = "content:videos"
	KeyAlbums       = "content:albums"
	KeyPrefixAlbum  = "content:album:"
	KeyServiceTimes = "content:service_times"
	KeyChurchInfo   = "content:church_info"
)

// Manager wraps a cache backend with invalidation helpers keyed to the
// site's content types. Admin mutations call the matching Invalidate method
// so public pages never serve stale content past a write.
type Manager struct {
	backend Cacher
}

// NewManager creates a new cache manager around a backend.
func NewManager(backend Cacher) *Manager {
	return &Manager{backend: backend}
}

// Backend returns the underlying cache for read-through use.
func (m *Manager) Backend() Cacher {
	return m.backend
}

// InvalidateEvents drops cached event listings.
func (m *Manager) InvalidateEvents(ctx context.Context) {
	m.drop(ctx, KeyEvents)
}

// InvalidateVideos drops cached video listings.
func (m *Manager) InvalidateVideos(ctx context.Context) {
	m.drop(ctx, KeyVideos)
}

// InvalidateGallery drops the album listing and every cached album page.
func (m *Manager) InvalidateGallery(ctx context.Context) {
	m.drop(ctx, KeyAlbums)
	if err := m.backend.DeleteByPrefix(ctx, KeyPrefixAlbum); err != nil {
		slog.Warn("cache invalidation failed", "prefix", KeyPrefixAlbum, "error", err)
	}
}

// InvalidateAlbum drops a single cached album page plus the album listing,
// whose cover and counts may have changed.
func (m *Manager) InvalidateAlbum(ctx context.Context, slug string) {
	m.drop(ctx, KeyAlbums)
	m.drop(ctx, KeyPrefixAlbum+slug)
}

// InvalidateServiceTimes drops the cached service schedule.
func (m *Manager) InvalidateServiceTimes(ctx context.Context) {
	m.drop(ctx, KeyServiceTimes)
}

// InvalidateChurchInfo drops the cached church profile.
func (m *Manager) InvalidateChurchInfo(ctx context.Context) {
	m.drop(ctx, KeyChurchInfo)
}

// InvalidateAll clears every cached entry.
func (m *Manager) InvalidateAll(ctx context.Context) {
	if err := m.backend.Clear(ctx); err != nil {
		slog.Warn("cache clear failed", "error", err)
	}
}

// Stats returns backend statistics when the backend provides them.
func (m *Manager) Stats() (Stats, bool) {
	if sp, ok := m.backend.(StatsProvider); ok {
		return sp.Stats(), true
	}
	return Stats{}, false
}

// Close releases the backend.
func (m *Manager) Close() error {
	return m.backend.Close()
}

func (m *Manager) drop(ctx context.Context, key string) {
	if err := m.backend.Delete(ctx, key); err != nil {
		slog.Warn("cache invalidation failed", "key", key, "error", err)
	}
}
