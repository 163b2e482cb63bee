// Copyright (c) 2026 Shiloh Intercession Mountain
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"
)

func newTestCache() *MemoryCache {
	return NewMemoryCache(MemoryCacheOptions{
		DefaultTTL: time.Minute,
	})
}

func TestMemoryCache_SetGet(t *testing.T) {
	c := newTestCache()
	defer c.Close()
	ctx := context.Background()

	if err := c.Set(ctx, "key", []byte("value"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !bytes.Equal(got, []byte("value")) {
		t.Errorf("expected %q, got %q", "value", got)
	}
}

func TestMemoryCache_Miss(t *testing.T) {
	c := newTestCache()
	defer c.Close()

	if _, err := c.Get(context.Background(), "absent"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("expected ErrCacheMiss, got %v", err)
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := newTestCache()
	defer c.Close()
	ctx := context.Background()

	if err := c.Set(ctx, "key", []byte("value"), time.Millisecond); err != nil {
		t.Fatalf("Set: %v", err)
	}

	time.Sleep(5 * time.Millisecond)

	if _, err := c.Get(ctx, "key"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("expected ErrCacheMiss after expiry, got %v", err)
	}

	has, err := c.Has(ctx, "key")
	if err != nil {
		t.Fatalf("Has: %v", err)
	}
	if has {
		t.Error("expected Has to report false after expiry")
	}
}

func TestMemoryCache_Delete(t *testing.T) {
	c := newTestCache()
	defer c.Close()
	ctx := context.Background()

	_ = c.Set(ctx, "key", []byte("value"), 0)

	if err := c.Delete(ctx, "key"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := c.Get(ctx, "key"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("expected ErrCacheMiss after delete, got %v", err)
	}
}

func TestMemoryCache_DeleteByPrefix(t *testing.T) {
	c := newTestCache()
	defer c.Close()
	ctx := context.Background()

	_ = c.Set(ctx, KeyPrefixAlbum+"easter", []byte("a"), 0)
	_ = c.Set(ctx, KeyPrefixAlbum+"christmas", []byte("b"), 0)
	_ = c.Set(ctx, KeyEvents, []byte("c"), 0)

	if err := c.DeleteByPrefix(ctx, KeyPrefixAlbum); err != nil {
		t.Fatalf("DeleteByPrefix: %v", err)
	}

	if _, err := c.Get(ctx, KeyPrefixAlbum+"easter"); !errors.Is(err, ErrCacheMiss) {
		t.Error("expected album entries to be removed")
	}
	if _, err := c.Get(ctx, KeyEvents); err != nil {
		t.Errorf("expected events entry to survive, got %v", err)
	}
}

func TestMemoryCache_Clear(t *testing.T) {
	c := newTestCache()
	defer c.Close()
	ctx := context.Background()

	_ = c.Set(ctx, "a", []byte("1"), 0)
	_ = c.Set(ctx, "b", []byte("2"), 0)

	if err := c.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	if stats := c.Stats(); stats.Items != 0 {
		t.Errorf("expected empty cache, got %d items", stats.Items)
	}
}

func TestMemoryCache_Closed(t *testing.T) {
	c := newTestCache()
	_ = c.Close()
	ctx := context.Background()

	if _, err := c.Get(ctx, "key"); !errors.Is(err, ErrCacheClosed) {
		t.Errorf("expected ErrCacheClosed from Get, got %v", err)
	}
	if err := c.Set(ctx, "key", []byte("v"), 0); !errors.Is(err, ErrCacheClosed) {
		t.Errorf("expected ErrCacheClosed from Set, got %v", err)
	}

	// Close is idempotent
	if err := c.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

func TestMemoryCache_Stats(t *testing.T) {
	c := newTestCache()
	defer c.Close()
	ctx := context.Background()

	_ = c.Set(ctx, "key", []byte("value"), 0)
	_, _ = c.Get(ctx, "key")
	_, _ = c.Get(ctx, "absent")

	stats := c.Stats()
	if stats.Hits != 1 {
		t.Errorf("expected 1 hit, got %d", stats.Hits)
	}
	if stats.Misses != 1 {
		t.Errorf("expected 1 miss, got %d", stats.Misses)
	}
	if stats.Sets != 1 {
		t.Errorf("expected 1 set, got %d", stats.Sets)
	}
	if stats.Items != 1 {
		t.Errorf("expected 1 item, got %d", stats.Items)
	}
	if stats.HitRate != 50 {
		t.Errorf("expected 50%% hit rate, got %f", stats.HitRate)
	}

	c.ResetStats()
	if stats := c.Stats(); stats.Hits != 0 || stats.Misses != 0 {
		t.Error("expected stats reset")
	}
}

func TestMemoryCache_CopyOnGet(t *testing.T) {
	c := newTestCache()
	defer c.Close()
	ctx := context.Background()

	original := []byte("value")
	_ = c.Set(ctx, "key", original, 0)

	got, _ := c.Get(ctx, "key")
	got[0] = 'X'

	again, _ := c.Get(ctx, "key")
	if !bytes.Equal(again, []byte("value")) {
		t.Error("expected cache value to be immune to caller mutation")
	}
}
