// Copyright (c) 2026 Shiloh Intercession Mountain
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import "testing"

func TestSanitizePlain(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain text", "Sunday service at 10am", "Sunday service at 10am"},
		{"tags stripped", "<b>bold</b> words", "bold words"},
		{"script dropped", "hi<script>alert(1)</script>", "hi"},
		{"entities survive round trip", "bread & wine", "bread & wine"},
		{"quotes survive round trip", `say "amen"`, `say "amen"`},
		{"event handlers dropped", `<img src=x onerror=alert(1)>photo`, "photo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizePlain(tt.input); got != tt.want {
				t.Errorf("SanitizePlain(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
