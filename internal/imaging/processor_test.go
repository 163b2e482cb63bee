// Copyright (c) 2026 Shiloh Intercession Mountain
// SPDX-License-Identifier: GPL-3.0-or-later

package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"

	"github.com/shilointercessionmountain-org/shilohwebsite/internal/model"
)

// createTestImage creates a simple test image with the given dimensions.
func createTestImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	return img
}

// encodeTestJPEG encodes a test image as JPEG bytes.
func encodeTestJPEG(t *testing.T, width, height int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, createTestImage(width, height), nil); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

func TestProcessorIsImage(t *testing.T) {
	p := NewProcessor("./uploads")

	tests := []struct {
		mimeType string
		want     bool
	}{
		{model.MimeTypeJPEG, true},
		{model.MimeTypePNG, true},
		{model.MimeTypeGIF, true},
		{model.MimeTypeWebP, true},
		{"application/pdf", false},
		{"application/octet-stream", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.mimeType, func(t *testing.T) {
			if got := p.IsImage(tt.mimeType); got != tt.want {
				t.Errorf("IsImage(%q) = %v, want %v", tt.mimeType, got, tt.want)
			}
		})
	}
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"jpeg magic bytes", []byte{0xFF, 0xD8, 0xFF, 0xE0}, "jpeg"},
		{"png magic bytes", []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, "png"},
		{"gif magic bytes", []byte{0x47, 0x49, 0x46, 0x38, 0x39, 0x61}, "gif"},
		{"unknown", []byte{0x00, 0x01, 0x02, 0x03}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := detectFormat(tt.data); got != tt.want {
				t.Errorf("detectFormat() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDetectFormatFromFilename(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"photo.jpg", "jpeg"},
		{"photo.jpeg", "jpeg"},
		{"photo.JPG", "jpeg"},
		{"photo.png", "png"},
		{"photo.gif", "gif"},
		{"photo.webp", "webp"},
		{"photo.unknown", "jpeg"},
		{"noextension", "jpeg"},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			if got := detectFormatFromFilename(tt.filename); got != tt.want {
				t.Errorf("detectFormatFromFilename(%q) = %v, want %v", tt.filename, got, tt.want)
			}
		})
	}
}

func TestFormatToMimeType(t *testing.T) {
	tests := []struct {
		format string
		want   string
	}{
		{"jpeg", model.MimeTypeJPEG},
		{"jpg", model.MimeTypeJPEG},
		{"png", model.MimeTypePNG},
		{"gif", model.MimeTypeGIF},
		{"webp", model.MimeTypeWebP},
		{"unknown", "application/octet-stream"},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			if got := formatToMimeType(tt.format); got != tt.want {
				t.Errorf("formatToMimeType(%q) = %v, want %v", tt.format, got, tt.want)
			}
		})
	}
}

func TestApplyOrientation(t *testing.T) {
	// Verify the transform doesn't panic for any orientation value
	tests := []int{1, 2, 3, 4, 5, 6, 7, 8, 0, 9}

	for _, orientation := range tests {
		t.Run("orientation_"+string(rune('0'+orientation)), func(t *testing.T) {
			img := createTestImage(10, 10)
			result := applyOrientation(img, orientation)
			if result == nil {
				t.Error("applyOrientation returned nil")
			}
		})
	}
}

func TestProcessImage(t *testing.T) {
	dir := t.TempDir()
	p := NewProcessor(dir)

	data := encodeTestJPEG(t, 40, 30)

	result, err := p.ProcessImage(bytes.NewReader(data), "test-uuid", "photo.jpg")
	if err != nil {
		t.Fatalf("ProcessImage failed: %v", err)
	}

	if result.Width != 40 || result.Height != 30 {
		t.Errorf("expected 40x30, got %dx%d", result.Width, result.Height)
	}
	if result.MimeType != model.MimeTypeJPEG {
		t.Errorf("expected %s, got %s", model.MimeTypeJPEG, result.MimeType)
	}

	if _, err := os.Stat(filepath.Join(dir, "originals", "test-uuid", "photo.jpg")); err != nil {
		t.Errorf("expected saved original: %v", err)
	}
}

func TestProcessImage_UnsupportedData(t *testing.T) {
	p := NewProcessor(t.TempDir())

	if _, err := p.ProcessImage(bytes.NewReader([]byte("not an image")), "u", "f.jpg"); err == nil {
		t.Error("expected error for non-image data")
	}
}

func TestCreateAvatar(t *testing.T) {
	dir := t.TempDir()
	p := NewProcessor(dir)

	data := encodeTestJPEG(t, 600, 400)

	relPath, err := p.CreateAvatar(bytes.NewReader(data), "avatar-uuid")
	if err != nil {
		t.Fatalf("CreateAvatar failed: %v", err)
	}

	if relPath != filepath.Join("avatars", "avatar-uuid.jpg") {
		t.Errorf("unexpected avatar path %q", relPath)
	}

	width, height := imageDimensions(t, filepath.Join(dir, relPath))
	if width != model.AvatarSize || height != model.AvatarSize {
		t.Errorf("expected %dx%d avatar, got %dx%d", model.AvatarSize, model.AvatarSize, width, height)
	}
}

// imageDimensions decodes just the header of a saved image file.
func imageDimensions(t *testing.T, path string) (int, int) {
	t.Helper()
	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open image: %v", err)
	}
	defer file.Close()

	config, _, err := image.DecodeConfig(file)
	if err != nil {
		t.Fatalf("failed to decode image config: %v", err)
	}
	return config.Width, config.Height
}

func TestCreateBanner_ScalesDown(t *testing.T) {
	dir := t.TempDir()
	p := NewProcessor(dir)

	data := encodeTestJPEG(t, 3200, 1200)

	relPath, err := p.CreateBanner(bytes.NewReader(data), "banner-uuid")
	if err != nil {
		t.Fatalf("CreateBanner failed: %v", err)
	}
	if relPath != filepath.Join("banners", "banner-uuid.jpg") {
		t.Errorf("unexpected banner path %q", relPath)
	}

	width, height := imageDimensions(t, filepath.Join(dir, relPath))
	if width > model.BannerWidth || height > model.BannerHeight {
		t.Errorf("banner %dx%d exceeds %dx%d bounds", width, height, model.BannerWidth, model.BannerHeight)
	}
}

func TestCreateBanner_KeepsSmallImages(t *testing.T) {
	dir := t.TempDir()
	p := NewProcessor(dir)

	data := encodeTestJPEG(t, 800, 450)

	relPath, err := p.CreateBanner(bytes.NewReader(data), "small-banner")
	if err != nil {
		t.Fatalf("CreateBanner failed: %v", err)
	}

	width, height := imageDimensions(t, filepath.Join(dir, relPath))
	if width != 800 || height != 450 {
		t.Errorf("expected 800x450 unchanged, got %dx%d", width, height)
	}
}

func TestDeleteImageFiles(t *testing.T) {
	dir := t.TempDir()
	p := NewProcessor(dir)

	data := encodeTestJPEG(t, 40, 30)
	result, err := p.ProcessImage(bytes.NewReader(data), "del-uuid", "photo.jpg")
	if err != nil {
		t.Fatalf("ProcessImage failed: %v", err)
	}

	if err := p.DeleteImageFiles("del-uuid"); err != nil {
		t.Fatalf("DeleteImageFiles failed: %v", err)
	}

	if _, err := os.Stat(result.FilePath); !os.IsNotExist(err) {
		t.Error("expected original to be removed")
	}
}

func TestSaveImageFile_PathTraversal(t *testing.T) {
	p := NewProcessor(t.TempDir())

	if _, err := p.saveImageFile("../escape", "f.jpg", []byte("x")); err == nil {
		t.Error("expected error for traversal subdir")
	}
	if _, err := p.saveImageFile("originals/u", "", []byte("x")); err == nil {
		t.Error("expected error for empty filename")
	}
}
