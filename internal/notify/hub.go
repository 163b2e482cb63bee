// Copyright (c) 2026 Shiloh Intercession Mountain
// SPDX-License-Identifier: GPL-3.0-or-later

// Package notify provides an in-process event hub used to push
// server-sent events to connected admin clients and to drive
// cache invalidation when content changes.
package notify

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"
)

// Event types published through the hub.
const (
	EventAdminRequestCreated = "admin_request.created"
	EventAdminRequestDecided = "admin_request.decided"
	EventContactReceived     = "contact.received"
	EventContentChanged      = "content.changed"
)

// Content kinds carried by content.changed events.
const (
	ContentEvents       = "events"
	ContentVideos       = "videos"
	ContentGallery      = "gallery"
	ContentServiceTimes = "service_times"
	ContentChurchInfo   = "church_info"
)

// Event is a single notification delivered to subscribers.
type Event struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data,omitempty"`
}

// NewEvent creates an event stamped with the current UTC time.
func NewEvent(eventType string, data any) Event {
	return Event{
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// AdminRequestData describes an admin request event payload.
type AdminRequestData struct {
	RequestID int64  `json:"request_id"`
	UserID    int64  `json:"user_id"`
	Email     string `json:"email"`
	Status    string `json:"status,omitempty"`
}

// ContactData describes a contact submission event payload.
type ContactData struct {
	SubmissionID int64  `json:"submission_id"`
	Name         string `json:"name"`
	Subject      string `json:"subject"`
}

// ContentData describes a content change event payload.
type ContentData struct {
	Kind string `json:"kind"`
	Slug string `json:"slug,omitempty"`
}

// SSE formats the event as a server-sent event frame.
func (e Event) SSE() ([]byte, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}
	frame := make([]byte, 0, len(e.Type)+len(payload)+16)
	frame = append(frame, "event: "...)
	frame = append(frame, e.Type...)
	frame = append(frame, "\ndata: "...)
	frame = append(frame, payload...)
	frame = append(frame, "\n\n"...)
	return frame, nil
}

const (
	// subscriberBuffer is the per-client event buffer. Clients that
	// fall behind by more than this have events dropped.
	subscriberBuffer = 16

	// publishQueueSize is the hub's intake queue capacity.
	publishQueueSize = 100
)

// Subscriber receives events from the hub until unsubscribed.
type Subscriber struct {
	id int64
	ch chan Event
}

// Events returns the subscriber's receive channel. It is closed
// when the subscription ends or the hub stops.
func (s *Subscriber) Events() <-chan Event {
	return s.ch
}

// Hub fans published events out to all active subscribers.
type Hub struct {
	queue chan Event
	done  chan struct{}
	wg    sync.WaitGroup

	mu      sync.RWMutex
	running bool
	nextID  int64
	subs    map[int64]*Subscriber
}

// NewHub creates a stopped hub. Call Start before publishing.
func NewHub() *Hub {
	return &Hub{
		queue: make(chan Event, publishQueueSize),
		done:  make(chan struct{}),
		subs:  make(map[int64]*Subscriber),
	}
}

// Start launches the fan-out loop.
func (h *Hub) Start() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.running {
		return
	}
	h.running = true

	h.wg.Add(1)
	go h.run()

	slog.Info("notify hub started")
}

// Stop shuts down the hub and closes all subscriber channels.
func (h *Hub) Stop() {
	h.mu.Lock()
	if !h.running {
		h.mu.Unlock()
		return
	}
	h.running = false
	h.mu.Unlock()

	close(h.done)
	h.wg.Wait()

	h.mu.Lock()
	for id, sub := range h.subs {
		close(sub.ch)
		delete(h.subs, id)
	}
	h.mu.Unlock()

	slog.Info("notify hub stopped")
}

// Subscribe registers a new subscriber. The caller must call
// Unsubscribe when done, typically deferred in the SSE handler.
func (h *Hub) Subscribe() *Subscriber {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	sub := &Subscriber{
		id: h.nextID,
		ch: make(chan Event, subscriberBuffer),
	}
	if h.running {
		h.subs[sub.id] = sub
	} else {
		// Hub is stopped; hand back a closed channel so the
		// caller's receive loop exits immediately.
		close(sub.ch)
	}
	return sub
}

// Unsubscribe removes a subscriber and closes its channel.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	if sub == nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.subs[sub.id]; ok {
		delete(h.subs, sub.id)
		close(sub.ch)
	}
}

// Publish queues an event for delivery. It never blocks: when the
// intake queue is full the event is dropped with a warning.
func (h *Hub) Publish(event Event) {
	h.mu.RLock()
	running := h.running
	h.mu.RUnlock()

	if !running {
		return
	}

	select {
	case h.queue <- event:
	default:
		slog.Warn("notify queue full, dropping event", "type", event.Type)
	}
}

// PublishContentChanged is a convenience wrapper for content events.
func (h *Hub) PublishContentChanged(kind, slug string) {
	h.Publish(NewEvent(EventContentChanged, ContentData{Kind: kind, Slug: slug}))
}

// SubscriberCount reports the number of active subscribers.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

func (h *Hub) run() {
	defer h.wg.Done()

	for {
		select {
		case <-h.done:
			return
		case event := <-h.queue:
			h.broadcast(event)
		}
	}
}

func (h *Hub) broadcast(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, sub := range h.subs {
		select {
		case sub.ch <- event:
		default:
			slog.Warn("subscriber buffer full, dropping event",
				"subscriber", sub.id, "type", event.Type)
		}
	}
}
