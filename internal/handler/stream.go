// Copyright (c) 2026 Shiloh Intercession Mountain
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/shilointercessionmountain-org/shilohwebsite/internal/notify"
)

// streamHeartbeat is how often a comment frame is written to keep
// intermediaries from closing an idle SSE connection.
const streamHeartbeat = 30 * time.Second

// StreamHandler serves the admin live event stream over SSE. The back
// office listens here to refresh request and inbox badges without
// polling.
type StreamHandler struct {
	hub *notify.Hub
}

// NewStreamHandler creates a new StreamHandler.
func NewStreamHandler(hub *notify.Hub) *StreamHandler {
	return &StreamHandler{hub: hub}
}

// Serve handles GET /admin/stream.
func (h *StreamHandler) Serve(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set(HeaderContentType, "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	// The stream outlives the server's write timeout; push the deadline
	// forward ahead of every write.
	rc := http.NewResponseController(w)

	sub := h.hub.Subscribe()
	defer h.hub.Unsubscribe(sub)

	_ = rc.SetWriteDeadline(time.Now().Add(2 * streamHeartbeat))
	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	heartbeat := time.NewTicker(streamHeartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case event, open := <-sub.Events():
			if !open {
				return
			}
			frame, err := event.SSE()
			if err != nil {
				continue
			}
			_ = rc.SetWriteDeadline(time.Now().Add(2 * streamHeartbeat))
			if _, err := w.Write(frame); err != nil {
				return
			}
			flusher.Flush()
		case <-heartbeat.C:
			_ = rc.SetWriteDeadline(time.Now().Add(2 * streamHeartbeat))
			if _, err := fmt.Fprint(w, ": heartbeat\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
