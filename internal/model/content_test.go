package model

import (
	"database/sql"
	"testing"
	"time"
)

func TestEventIsPast(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		event Event
		want  bool
	}{
		{
			name:  "ended yesterday",
			event: Event{StartsAt: now.Add(-48 * time.Hour), EndsAt: sql.NullTime{Time: now.Add(-24 * time.Hour), Valid: true}},
			want:  true,
		},
		{
			name:  "ends tomorrow",
			event: Event{StartsAt: now.Add(-time.Hour), EndsAt: sql.NullTime{Time: now.Add(24 * time.Hour), Valid: true}},
			want:  false,
		},
		{
			name:  "no end, started in the past",
			event: Event{StartsAt: now.Add(-time.Hour)},
			want:  true,
		},
		{
			name:  "no end, starts in the future",
			event: Event{StartsAt: now.Add(time.Hour)},
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.event.IsPast(now); got != tt.want {
				t.Errorf("IsPast() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestServiceTimeDayName(t *testing.T) {
	tests := []struct {
		day  int64
		want string
	}{
		{0, "Sunday"},
		{3, "Wednesday"},
		{6, "Saturday"},
		{7, "Sunday"},
	}

	for _, tt := range tests {
		s := &ServiceTime{DayOfWeek: tt.day}
		if got := s.DayName(); got != tt.want {
			t.Errorf("DayName(%d) = %q, want %q", tt.day, got, tt.want)
		}
	}
}

func TestAdminRequestIsPending(t *testing.T) {
	for _, tt := range []struct {
		status string
		want   bool
	}{
		{RequestStatusPending, true},
		{RequestStatusApproved, false},
		{RequestStatusRejected, false},
	} {
		r := &AdminRequest{Status: tt.status}
		if got := r.IsPending(); got != tt.want {
			t.Errorf("IsPending() with status %q = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestIsSupportedImageType(t *testing.T) {
	for _, mt := range SupportedImageTypes() {
		if !IsSupportedImageType(mt) {
			t.Errorf("IsSupportedImageType(%q) = false, want true", mt)
		}
	}
	for _, mt := range []string{"image/tiff", "application/pdf", "video/mp4", ""} {
		if IsSupportedImageType(mt) {
			t.Errorf("IsSupportedImageType(%q) = true, want false", mt)
		}
	}
}
