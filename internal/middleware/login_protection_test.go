// Copyright (c) 2026 Shiloh Intercession Mountain
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestLoginProtection() *LoginProtection {
	return NewLoginProtection(LoginProtectionConfig{
		IPRateLimit:       100, // high enough not to interfere
		IPBurst:           100,
		MaxFailedAttempts: 3,
		LockoutDuration:   time.Minute,
		AttemptWindow:     time.Minute,
	})
}

func TestLoginProtection_Defaults(t *testing.T) {
	lp := NewLoginProtection(LoginProtectionConfig{})

	if lp.maxFailedAttempts != 5 {
		t.Errorf("expected default max attempts 5, got %d", lp.maxFailedAttempts)
	}
	if lp.lockoutDuration != 15*time.Minute {
		t.Errorf("expected default lockout 15m, got %v", lp.lockoutDuration)
	}
	if lp.attemptWindow != 15*time.Minute {
		t.Errorf("expected default window 15m, got %v", lp.attemptWindow)
	}
}

func TestLoginProtection_LockoutAfterMaxAttempts(t *testing.T) {
	lp := newTestLoginProtection()
	email := "member@example.com"

	for i := 0; i < 2; i++ {
		locked, _ := lp.RecordFailedAttempt(email)
		if locked {
			t.Fatalf("attempt %d: expected not locked yet", i+1)
		}
	}

	locked, duration := lp.RecordFailedAttempt(email)
	if !locked {
		t.Fatal("expected account to be locked after max attempts")
	}
	if duration != time.Minute {
		t.Errorf("expected base lockout duration 1m, got %v", duration)
	}

	isLocked, remaining := lp.IsAccountLocked(email)
	if !isLocked {
		t.Error("expected IsAccountLocked to report locked")
	}
	if remaining <= 0 || remaining > time.Minute {
		t.Errorf("expected remaining within (0, 1m], got %v", remaining)
	}
}

func TestLoginProtection_ExponentialBackoff(t *testing.T) {
	lp := newTestLoginProtection()
	email := "repeat@example.com"

	// First lockout
	for i := 0; i < 3; i++ {
		lp.RecordFailedAttempt(email)
	}

	// Expire the first lockout so attempts count again
	lp.attemptsMu.Lock()
	lp.failedAttempts[email].lockedUntil = time.Now().Add(-time.Second)
	lp.failedAttempts[email].firstFailed = time.Now()
	lp.attemptsMu.Unlock()

	// Second lockout should double the duration
	var locked bool
	var duration time.Duration
	for i := 0; i < 3; i++ {
		locked, duration = lp.RecordFailedAttempt(email)
	}

	if !locked {
		t.Fatal("expected second lockout")
	}
	if duration != 2*time.Minute {
		t.Errorf("expected doubled lockout duration 2m, got %v", duration)
	}
}

func TestLoginProtection_SuccessClearsAttempts(t *testing.T) {
	lp := newTestLoginProtection()
	email := "member@example.com"

	lp.RecordFailedAttempt(email)
	lp.RecordFailedAttempt(email)

	if remaining := lp.GetRemainingAttempts(email); remaining != 1 {
		t.Errorf("expected 1 remaining attempt, got %d", remaining)
	}

	lp.RecordSuccessfulLogin(email)

	if remaining := lp.GetRemainingAttempts(email); remaining != 3 {
		t.Errorf("expected attempts reset to 3, got %d", remaining)
	}

	if locked, _ := lp.IsAccountLocked(email); locked {
		t.Error("expected account unlocked after successful login")
	}
}

func TestLoginProtection_WindowReset(t *testing.T) {
	lp := newTestLoginProtection()
	email := "slow@example.com"

	lp.RecordFailedAttempt(email)
	lp.RecordFailedAttempt(email)

	// Age the first failure past the window
	lp.attemptsMu.Lock()
	lp.failedAttempts[email].firstFailed = time.Now().Add(-2 * time.Minute)
	lp.attemptsMu.Unlock()

	locked, _ := lp.RecordFailedAttempt(email)
	if locked {
		t.Error("expected window reset, not lockout")
	}

	if remaining := lp.GetRemainingAttempts(email); remaining != 2 {
		t.Errorf("expected 2 remaining attempts after reset, got %d", remaining)
	}
}

func TestLoginProtection_Middleware(t *testing.T) {
	lp := NewLoginProtection(LoginProtectionConfig{
		IPRateLimit:       1,
		IPBurst:           1,
		MaxFailedAttempts: 5,
		LockoutDuration:   time.Minute,
		AttemptWindow:     time.Minute,
	})
	handler := lp.Middleware()(simpleOKHandler)

	// GET requests are never rate limited
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest("GET", "/login", nil)
		req.RemoteAddr = "192.168.1.50:12345"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("GET %d: expected status %d, got %d", i, http.StatusOK, w.Code)
		}
	}

	// First POST allowed
	req := httptest.NewRequest("POST", "/login", nil)
	req.RemoteAddr = "192.168.1.50:12345"
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("first POST: expected status %d, got %d", http.StatusOK, w.Code)
	}

	// Second POST from the same IP is limited
	req = httptest.NewRequest("POST", "/login", nil)
	req.RemoteAddr = "192.168.1.50:12345"
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusTooManyRequests {
		t.Errorf("second POST: expected status %d, got %d", http.StatusTooManyRequests, w.Code)
	}
}
