// Copyright (c) 2026 Shiloh Intercession Mountain
// SPDX-License-Identifier: GPL-3.0-or-later

package notify

import (
	"context"
	"log/slog"
	"sync"

	"github.com/shilointercessionmountain-org/shilohwebsite/internal/cache"
)

// Invalidator subscribes to the hub and drops cached content
// whenever a content.changed event arrives, so public pages are
// rebuilt on the next request instead of waiting out their TTL.
type Invalidator struct {
	hub     *Hub
	manager *cache.Manager

	mu      sync.Mutex
	sub     *Subscriber
	stopped chan struct{}
}

// NewInvalidator creates an invalidator bound to the given hub and
// cache manager. Call Start after the hub is running.
func NewInvalidator(hub *Hub, manager *cache.Manager) *Invalidator {
	return &Invalidator{
		hub:     hub,
		manager: manager,
	}
}

// Start subscribes to the hub and begins processing events.
func (inv *Invalidator) Start() {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	if inv.sub != nil {
		return
	}
	inv.sub = inv.hub.Subscribe()
	inv.stopped = make(chan struct{})

	go inv.run(inv.sub, inv.stopped)
}

// Stop unsubscribes and waits for the processing loop to exit.
func (inv *Invalidator) Stop() {
	inv.mu.Lock()
	sub := inv.sub
	stopped := inv.stopped
	inv.sub = nil
	inv.mu.Unlock()

	if sub == nil {
		return
	}
	inv.hub.Unsubscribe(sub)
	<-stopped
}

func (inv *Invalidator) run(sub *Subscriber, stopped chan struct{}) {
	defer close(stopped)

	for event := range sub.Events() {
		if event.Type != EventContentChanged {
			continue
		}
		data, ok := event.Data.(ContentData)
		if !ok {
			slog.Warn("content event with unexpected payload", "type", event.Type)
			continue
		}
		inv.invalidate(data)
	}
}

func (inv *Invalidator) invalidate(data ContentData) {
	ctx := context.Background()
	switch data.Kind {
	case ContentEvents:
		inv.manager.InvalidateEvents(ctx)
	case ContentVideos:
		inv.manager.InvalidateVideos(ctx)
	case ContentGallery:
		if data.Slug != "" {
			inv.manager.InvalidateAlbum(ctx, data.Slug)
		} else {
			inv.manager.InvalidateGallery(ctx)
		}
	case ContentServiceTimes:
		inv.manager.InvalidateServiceTimes(ctx)
	case ContentChurchInfo:
		inv.manager.InvalidateChurchInfo(ctx)
	default:
		// An unknown kind means a publisher this loop does not understand
		// yet. Dropping everything beats serving stale pages.
		slog.Warn("content event with unknown kind, clearing cache", "kind", data.Kind)
		inv.manager.InvalidateAll(ctx)
	}
}
