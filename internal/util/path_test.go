package util

import (
	"path/filepath"
	"testing"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "plain name", input: "photo.jpg", want: "photo.jpg"},
		{name: "strips directories", input: "../../etc/passwd", want: "passwd"},
		{name: "dot", input: ".", wantErr: true},
		{name: "dot dot", input: "..", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SanitizeFilename(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("SanitizeFilename(%q) expected error, got %q", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("SanitizeFilename(%q) error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSafeJoinPath(t *testing.T) {
	base := t.TempDir()

	got, err := SafeJoinPath(base, "gallery", "img.jpg")
	if err != nil {
		t.Fatalf("SafeJoinPath error: %v", err)
	}
	if want := filepath.Join(base, "gallery", "img.jpg"); got != want {
		t.Errorf("SafeJoinPath = %q, want %q", got, want)
	}

	if _, err := SafeJoinPath(base, "..", "escape.txt"); err == nil {
		t.Error("SafeJoinPath with traversal expected error, got nil")
	}
}

func TestValidatePathWithinBase(t *testing.T) {
	base := t.TempDir()

	if err := ValidatePathWithinBase(base, filepath.Join(base, "ok.txt")); err != nil {
		t.Errorf("in-base path rejected: %v", err)
	}
	if err := ValidatePathWithinBase(base, base); err != nil {
		t.Errorf("base itself rejected: %v", err)
	}
	if err := ValidatePathWithinBase(base, base+"-evil/x.txt"); err == nil {
		t.Error("sibling prefix path accepted, want error")
	}
	if err := ValidatePathWithinBase(base, filepath.Join(base, "..", "out.txt")); err == nil {
		t.Error("traversal accepted, want error")
	}
}
