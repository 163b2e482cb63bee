// Copyright (c) 2026 Shiloh Intercession Mountain
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

type testPayload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestTypedCache_SetGet(t *testing.T) {
	backend := newTestCache()
	defer backend.Close()

	tc := NewTypedCache[testPayload](backend, time.Minute)
	ctx := context.Background()

	if err := tc.Set(ctx, "key", &testPayload{Name: "events", Count: 3}); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, ok := tc.Get(ctx, "key")
	if !ok {
		t.Fatal("expected cached value")
	}
	if got.Name != "events" || got.Count != 3 {
		t.Errorf("unexpected value %+v", got)
	}

	if _, ok := tc.Get(ctx, "absent"); ok {
		t.Error("expected miss for absent key")
	}
}

func TestTypedCache_GetOrSet(t *testing.T) {
	backend := newTestCache()
	defer backend.Close()

	tc := NewTypedCache[testPayload](backend, time.Minute)
	ctx := context.Background()

	calls := 0
	load := func() (*testPayload, error) {
		calls++
		return &testPayload{Name: "videos", Count: calls}, nil
	}

	first, err := tc.GetOrSet(ctx, "key", load)
	if err != nil {
		t.Fatalf("GetOrSet: %v", err)
	}
	second, err := tc.GetOrSet(ctx, "key", load)
	if err != nil {
		t.Fatalf("GetOrSet: %v", err)
	}

	if calls != 1 {
		t.Errorf("expected loader called once, got %d", calls)
	}
	if first.Count != second.Count {
		t.Error("expected cached value on second call")
	}
}

func TestTypedCache_GetOrSetError(t *testing.T) {
	backend := newTestCache()
	defer backend.Close()

	tc := NewTypedCache[testPayload](backend, time.Minute)

	wantErr := errors.New("load failed")
	_, err := tc.GetOrSet(context.Background(), "key", func() (*testPayload, error) {
		return nil, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Errorf("expected loader error, got %v", err)
	}
}
