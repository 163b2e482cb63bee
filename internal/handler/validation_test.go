// Copyright (c) 2026 Shiloh Intercession Mountain
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import "testing"

func TestValidateSlugWithChecker(t *testing.T) {
	none := func() (int64, error) { return 0, nil }
	taken := func() (int64, error) { return 1, nil }

	tests := []struct {
		name    string
		slug    string
		checker SlugExistsFunc
		wantOK  bool
	}{
		{"valid", "easter-service-2026", none, true},
		{"empty", "", none, false},
		{"uppercase", "Easter", none, false},
		{"spaces", "easter service", none, false},
		{"taken", "easter-service", taken, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := ValidateSlugWithChecker(tt.slug, tt.checker)
			if (msg == "") != tt.wantOK {
				t.Errorf("ValidateSlugWithChecker(%q) = %q, want ok=%v", tt.slug, msg, tt.wantOK)
			}
		})
	}
}

func TestValidateSlugForUpdateSkipsUnchanged(t *testing.T) {
	taken := func() (int64, error) { return 1, nil }

	if msg := ValidateSlugForUpdate("summer-camp", "summer-camp", taken); msg != "" {
		t.Errorf("unchanged slug rejected: %q", msg)
	}
	if msg := ValidateSlugForUpdate("summer-camp", "old-slug", taken); msg == "" {
		t.Error("changed slug accepted despite being taken")
	}
}

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"pastor@shiloh.org", true},
		{"First Last <pastor@shiloh.org>", true},
		{"", false},
		{"not-an-address", false},
		{"missing@domain@twice", false},
	}

	for _, tt := range tests {
		if got := ValidateEmail(tt.email); got != tt.want {
			t.Errorf("ValidateEmail(%q) = %v, want %v", tt.email, got, tt.want)
		}
	}
}

func TestValidateServiceTime(t *testing.T) {
	tests := []struct {
		name   string
		day    int64
		start  string
		wantOK bool
	}{
		{"sunday morning", 0, "10:30", true},
		{"saturday evening", 6, "18:00", true},
		{"midnight", 3, "00:00", true},
		{"day too high", 7, "10:30", false},
		{"negative day", -1, "10:30", false},
		{"missing colon", 0, "1030", false},
		{"hour out of range", 0, "25:00", false},
		{"minute out of range", 0, "10:75", false},
		{"not a time", 0, "ab:cd", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := ValidateServiceTime(tt.day, tt.start)
			if (msg == "") != tt.wantOK {
				t.Errorf("ValidateServiceTime(%d, %q) = %q, want ok=%v", tt.day, tt.start, msg, tt.wantOK)
			}
		})
	}
}
