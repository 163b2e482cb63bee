// Copyright (c) 2026 Shiloh Intercession Mountain
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shilointercessionmountain-org/shilohwebsite/internal/imaging"
	"github.com/shilointercessionmountain-org/shilohwebsite/internal/model"
	"github.com/shilointercessionmountain-org/shilohwebsite/internal/store"
	"github.com/shilointercessionmountain-org/shilohwebsite/internal/util"
)

// Upload limits
const (
	MaxUploadSize    = 20 * 1024 * 1024 // 20MB
	DefaultUploadDir = "./uploads"
)

// MediaService handles gallery photo and avatar uploads.
type MediaService struct {
	db        *sql.DB
	queries   *store.Queries
	processor *imaging.Processor
	uploadDir string
}

// NewMediaService creates a new media service.
func NewMediaService(db *sql.DB, uploadDir string) *MediaService {
	if uploadDir == "" {
		uploadDir = DefaultUploadDir
	}
	return &MediaService{
		db:        db,
		queries:   store.New(db),
		processor: imaging.NewProcessor(uploadDir),
		uploadDir: uploadDir,
	}
}

// UploadGalleryImage processes an uploaded photo, stores the original and
// its variants on disk, and records it in the album.
func (s *MediaService) UploadGalleryImage(ctx context.Context, file multipart.File, header *multipart.FileHeader, albumID int64, caption string) (model.GalleryImage, error) {
	if header.Size > MaxUploadSize {
		return model.GalleryImage{}, fmt.Errorf("file size exceeds maximum allowed (%d bytes)", MaxUploadSize)
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = mimeTypeFromExtension(header.Filename)
	}
	if !model.IsSupportedImageType(mimeType) {
		return model.GalleryImage{}, fmt.Errorf("file type %s is not allowed", mimeType)
	}

	album, err := s.queries.GetGalleryAlbumByID(ctx, albumID)
	if err != nil {
		return model.GalleryImage{}, fmt.Errorf("loading album: %w", err)
	}

	fileUUID := uuid.New().String()
	filename, err := util.SanitizeFilename(header.Filename)
	if err != nil {
		return model.GalleryImage{}, fmt.Errorf("invalid filename: %w", err)
	}

	result, err := s.processor.ProcessImage(file, fileUUID, filename)
	if err != nil {
		return model.GalleryImage{}, fmt.Errorf("processing image: %w", err)
	}

	if _, err := s.processor.CreateAllVariants(result.FilePath, fileUUID, filename); err != nil {
		// The original survived, variants are best effort
		slog.Warn("failed to create image variants", "uuid", fileUUID, "error", err)
	}

	position, err := s.queries.CountGalleryImagesByAlbum(ctx, albumID)
	if err != nil {
		position = 0
	}

	image, err := s.queries.CreateGalleryImage(ctx, store.CreateGalleryImageParams{
		AlbumID:   album.ID,
		UUID:      fileUUID,
		FilePath:  filepath.Join("originals", fileUUID, filename),
		Caption:   util.NullStringFromValue(strings.TrimSpace(caption)),
		Width:     util.NullInt64FromValue(int64(result.Width)),
		Height:    util.NullInt64FromValue(int64(result.Height)),
		Position:  position,
		CreatedAt: time.Now(),
	})
	if err != nil {
		_ = s.processor.DeleteImageFiles(fileUUID)
		return model.GalleryImage{}, fmt.Errorf("recording image: %w", err)
	}

	// The first photo becomes the album cover.
	if !album.CoverPath.Valid || album.CoverPath.String == "" {
		if err := s.queries.SetGalleryAlbumCover(ctx, store.SetGalleryAlbumCoverParams{
			ID:        album.ID,
			CoverPath: util.NullStringFromValue(image.FilePath),
			UpdatedAt: time.Now(),
		}); err != nil {
			slog.Warn("failed to set album cover", "album_id", album.ID, "error", err)
		}
	}

	return image, nil
}

// DeleteGalleryImage removes a photo record and its files. If the photo was
// the album cover, the next remaining photo takes its place.
func (s *MediaService) DeleteGalleryImage(ctx context.Context, imageID int64) error {
	image, err := s.queries.GetGalleryImageByID(ctx, imageID)
	if err != nil {
		return fmt.Errorf("loading image: %w", err)
	}

	if err := s.queries.DeleteGalleryImage(ctx, imageID); err != nil {
		return fmt.Errorf("deleting image record: %w", err)
	}

	if album, err := s.queries.GetGalleryAlbumByID(ctx, image.AlbumID); err == nil &&
		album.CoverPath.Valid && album.CoverPath.String == image.FilePath {
		var cover sql.NullString
		if remaining, err := s.queries.ListGalleryImagesByAlbum(ctx, image.AlbumID); err == nil && len(remaining) > 0 {
			cover = util.NullStringFromValue(remaining[0].FilePath)
		}
		if err := s.queries.SetGalleryAlbumCover(ctx, store.SetGalleryAlbumCoverParams{
			ID:        album.ID,
			CoverPath: cover,
			UpdatedAt: time.Now(),
		}); err != nil {
			slog.Warn("failed to update album cover", "album_id", album.ID, "error", err)
		}
	}

	if err := s.processor.DeleteImageFiles(image.UUID); err != nil {
		// Record is already gone, log and move on
		slog.Warn("failed to delete image files", "uuid", image.UUID, "error", err)
	}

	return nil
}

// DeleteAlbum removes an album, its photo records via the foreign key
// cascade, and all photo files from disk.
func (s *MediaService) DeleteAlbum(ctx context.Context, albumID int64) error {
	images, err := s.queries.ListGalleryImagesByAlbum(ctx, albumID)
	if err != nil {
		return fmt.Errorf("listing album images: %w", err)
	}

	if err := s.queries.DeleteGalleryAlbum(ctx, albumID); err != nil {
		return fmt.Errorf("deleting album: %w", err)
	}

	for _, image := range images {
		if err := s.processor.DeleteImageFiles(image.UUID); err != nil {
			slog.Warn("failed to delete image files", "uuid", image.UUID, "error", err)
		}
	}

	return nil
}

// UploadEventImage validates and scales an uploaded banner image, returning
// its path relative to the uploads directory.
func (s *MediaService) UploadEventImage(file multipart.File, header *multipart.FileHeader) (string, error) {
	if header.Size > MaxUploadSize {
		return "", fmt.Errorf("file size exceeds maximum allowed (%d bytes)", MaxUploadSize)
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = mimeTypeFromExtension(header.Filename)
	}
	if !model.IsSupportedImageType(mimeType) {
		return "", fmt.Errorf("file type %s is not allowed", mimeType)
	}

	relPath, err := s.processor.CreateBanner(file, uuid.New().String())
	if err != nil {
		return "", fmt.Errorf("creating banner: %w", err)
	}
	return relPath, nil
}

// RemoveUpload deletes a file path relative to the uploads directory. Missing
// files are ignored.
func (s *MediaService) RemoveUpload(relPath string) {
	if relPath == "" {
		return
	}
	s.removeFile(relPath)
}

// UploadAvatar crops an uploaded image to a square avatar and stores its
// path on the user, replacing any previous avatar file.
func (s *MediaService) UploadAvatar(ctx context.Context, file multipart.File, header *multipart.FileHeader, userID int64) (string, error) {
	if header.Size > MaxUploadSize {
		return "", fmt.Errorf("file size exceeds maximum allowed (%d bytes)", MaxUploadSize)
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = mimeTypeFromExtension(header.Filename)
	}
	if !model.IsSupportedImageType(mimeType) {
		return "", fmt.Errorf("file type %s is not allowed", mimeType)
	}

	user, err := s.queries.GetUserByID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("loading user: %w", err)
	}

	relPath, err := s.processor.CreateAvatar(file, uuid.New().String())
	if err != nil {
		return "", fmt.Errorf("creating avatar: %w", err)
	}

	if err := s.queries.UpdateUserAvatar(ctx, store.UpdateUserAvatarParams{
		ID:         userID,
		AvatarPath: util.NullStringFromValue(relPath),
		UpdatedAt:  time.Now(),
	}); err != nil {
		s.removeFile(relPath)
		return "", fmt.Errorf("storing avatar path: %w", err)
	}

	if user.AvatarPath.Valid && user.AvatarPath.String != "" {
		s.removeFile(user.AvatarPath.String)
	}

	return relPath, nil
}

// RemoveAvatar clears the user's avatar path and deletes the file.
func (s *MediaService) RemoveAvatar(ctx context.Context, userID int64) error {
	user, err := s.queries.GetUserByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("loading user: %w", err)
	}

	if err := s.queries.UpdateUserAvatar(ctx, store.UpdateUserAvatarParams{
		ID:         userID,
		AvatarPath: sql.NullString{},
		UpdatedAt:  time.Now(),
	}); err != nil {
		return fmt.Errorf("clearing avatar path: %w", err)
	}

	if user.AvatarPath.Valid && user.AvatarPath.String != "" {
		s.removeFile(user.AvatarPath.String)
	}

	return nil
}

// ImageURL returns the public URL path for a gallery photo.
func ImageURL(image model.GalleryImage, variant string) string {
	filename := filepath.Base(image.FilePath)
	if variant == "" || variant == "original" {
		return fmt.Sprintf("/uploads/originals/%s/%s", image.UUID, filename)
	}
	return fmt.Sprintf("/uploads/%s/%s/%s", variant, image.UUID, filename)
}

// AvatarURL returns the public URL path for a user's avatar, or empty
// string if no avatar is set.
func AvatarURL(user model.User) string {
	if !user.AvatarPath.Valid || user.AvatarPath.String == "" {
		return ""
	}
	return "/uploads/" + filepath.ToSlash(user.AvatarPath.String)
}

// removeFile deletes a file path relative to the uploads directory.
func (s *MediaService) removeFile(relPath string) {
	path, err := util.SafeJoinPath(s.uploadDir, relPath)
	if err != nil {
		slog.Warn("skipping file cleanup for unsafe path", "path", relPath)
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to remove file", "path", path, "error", err)
	}
}

func mimeTypeFromExtension(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return model.MimeTypeJPEG
	case ".png":
		return model.MimeTypePNG
	case ".gif":
		return model.MimeTypeGIF
	case ".webp":
		return model.MimeTypeWebP
	default:
		return "application/octet-stream"
	}
}
