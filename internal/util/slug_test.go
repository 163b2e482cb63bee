package util

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "simple title", input: "Sunday Service", want: "sunday-service"},
		{name: "accented characters", input: "Célébration de Pâques", want: "celebration-de-paques"},
		{name: "punctuation stripped", input: "Youth Night! (ages 12+)", want: "youth-night-ages-12"},
		{name: "collapses hyphens", input: "a  --  b", want: "a-b"},
		{name: "trims hyphens", input: "--hello--", want: "hello"},
		{name: "empty", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Slugify(tt.input); got != tt.want {
				t.Errorf("Slugify(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestIsValidSlug(t *testing.T) {
	valid := []string{"a", "easter-2026", "service-times"}
	invalid := []string{"", "-leading", "trailing-", "double--hyphen", "Upper", "with space", "ünicode"}

	for _, s := range valid {
		if !IsValidSlug(s) {
			t.Errorf("IsValidSlug(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		if IsValidSlug(s) {
			t.Errorf("IsValidSlug(%q) = true, want false", s)
		}
	}
}
