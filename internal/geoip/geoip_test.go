// Copyright (c) 2026 Shiloh Intercession Mountain
// SPDX-License-Identifier: GPL-3.0-or-later

package geoip

import "testing"

func TestResolverDisabled(t *testing.T) {
	r := NewResolver()
	if err := r.Open(""); err != nil {
		t.Fatalf("Open(\"\") error = %v", err)
	}
	if r.Enabled() {
		t.Error("resolver enabled without a database")
	}
	if got := r.Country("8.8.8.8"); got != "" {
		t.Errorf("Country() = %q, want empty for disabled resolver", got)
	}
}

func TestResolverMissingDatabase(t *testing.T) {
	r := NewResolver()
	if err := r.Open("/nonexistent/GeoLite2-Country.mmdb"); err == nil {
		t.Error("Open() with missing file returned nil error")
	}
	if r.Enabled() {
		t.Error("resolver enabled after failed open")
	}
}

func TestResolverCountry(t *testing.T) {
	r := NewResolver()

	tests := []struct {
		name string
		ip   string
		want string
	}{
		{"loopback v4", "127.0.0.1", CodeLocal},
		{"loopback v6", "::1", CodeLocal},
		{"private 10", "10.1.2.3", CodeLocal},
		{"private 172", "172.16.0.5", CodeLocal},
		{"private 192", "192.168.1.1", CodeLocal},
		{"link local v6", "fe80::1", CodeLocal},
		{"invalid", "not-an-ip", ""},
		{"public, no database", "8.8.8.8", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Country(tt.ip); got != tt.want {
				t.Errorf("Country(%q) = %q, want %q", tt.ip, got, tt.want)
			}
		})
	}
}

func TestResolverClose(t *testing.T) {
	r := NewResolver()
	if err := r.Close(); err != nil {
		t.Errorf("Close() on empty resolver error = %v", err)
	}
}

func TestCountryName(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"US", "United States"},
		{"GB", "United Kingdom"},
		{"DE", "Germany"},
		{CodeLocal, "Local Network"},
		{"", "Unknown"},
		{"??", "??"},
	}

	for _, tt := range tests {
		if got := CountryName(tt.code); got != tt.want {
			t.Errorf("CountryName(%q) = %q, want %q", tt.code, got, tt.want)
		}
	}
}
