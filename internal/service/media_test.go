// Copyright (c) 2026 Shiloh Intercession Mountain
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"mime/multipart"
	"net/textproto"
	"testing"
	"time"

	"github.com/shilointercessionmountain-org/shilohwebsite/internal/model"
	"github.com/shilointercessionmountain-org/shilohwebsite/internal/store"
)

// memoryFile adapts an in-memory JPEG to the multipart.File interface.
type memoryFile struct {
	*bytes.Reader
}

func (memoryFile) Close() error { return nil }

func testUploadFile(t *testing.T, filename string) (multipart.File, *multipart.FileHeader) {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 32, 24))
	for y := 0; y < 24; y++ {
		for x := 0; x < 32; x++ {
			img.Set(x, y, color.RGBA{R: uint8(8 * x), G: uint8(10 * y), B: 99, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encoding test image: %v", err)
	}

	header := &multipart.FileHeader{
		Filename: filename,
		Size:     int64(buf.Len()),
		Header:   textproto.MIMEHeader{"Content-Type": {model.MimeTypeJPEG}},
	}
	return memoryFile{bytes.NewReader(buf.Bytes())}, header
}

func testAlbum(t *testing.T, queries *store.Queries, slug string) model.GalleryAlbum {
	t.Helper()

	now := time.Now()
	album, err := queries.CreateGalleryAlbum(context.Background(), store.CreateGalleryAlbumParams{
		Title:     slug,
		Slug:      slug,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("creating album: %v", err)
	}
	return album
}

func TestUploadGalleryImageSetsCover(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	queries := store.New(db)
	media := NewMediaService(db, t.TempDir())
	album := testAlbum(t, queries, "summer-camp")

	file, header := testUploadFile(t, "tent.jpg")
	first, err := media.UploadGalleryImage(context.Background(), file, header, album.ID, "")
	if err != nil {
		t.Fatalf("uploading first image: %v", err)
	}

	got, err := queries.GetGalleryAlbumByID(context.Background(), album.ID)
	if err != nil {
		t.Fatalf("loading album: %v", err)
	}
	if !got.CoverPath.Valid || got.CoverPath.String != first.FilePath {
		t.Errorf("cover = %v, want %q", got.CoverPath, first.FilePath)
	}

	// A second upload leaves the existing cover alone.
	file2, header2 := testUploadFile(t, "campfire.jpg")
	if _, err := media.UploadGalleryImage(context.Background(), file2, header2, album.ID, ""); err != nil {
		t.Fatalf("uploading second image: %v", err)
	}
	got, err = queries.GetGalleryAlbumByID(context.Background(), album.ID)
	if err != nil {
		t.Fatalf("loading album: %v", err)
	}
	if got.CoverPath.String != first.FilePath {
		t.Errorf("cover changed to %q", got.CoverPath.String)
	}
}

func TestDeleteGalleryImagePromotesCover(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	queries := store.New(db)
	media := NewMediaService(db, t.TempDir())
	album := testAlbum(t, queries, "baptisms")

	file, header := testUploadFile(t, "river.jpg")
	first, err := media.UploadGalleryImage(context.Background(), file, header, album.ID, "")
	if err != nil {
		t.Fatalf("uploading first image: %v", err)
	}
	file2, header2 := testUploadFile(t, "shore.jpg")
	second, err := media.UploadGalleryImage(context.Background(), file2, header2, album.ID, "")
	if err != nil {
		t.Fatalf("uploading second image: %v", err)
	}

	if err := media.DeleteGalleryImage(context.Background(), first.ID); err != nil {
		t.Fatalf("deleting cover image: %v", err)
	}

	got, err := queries.GetGalleryAlbumByID(context.Background(), album.ID)
	if err != nil {
		t.Fatalf("loading album: %v", err)
	}
	if !got.CoverPath.Valid || got.CoverPath.String != second.FilePath {
		t.Errorf("cover = %v, want %q", got.CoverPath, second.FilePath)
	}

	if err := media.DeleteGalleryImage(context.Background(), second.ID); err != nil {
		t.Fatalf("deleting last image: %v", err)
	}
	got, err = queries.GetGalleryAlbumByID(context.Background(), album.ID)
	if err != nil {
		t.Fatalf("loading album: %v", err)
	}
	if got.CoverPath.Valid {
		t.Errorf("cover not cleared after last image: %q", got.CoverPath.String)
	}
}
