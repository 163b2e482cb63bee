// Copyright (c) 2026 Shiloh Intercession Mountain
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/shilointercessionmountain-org/shilohwebsite/internal/model"
)

const eventColumns = `id, title, slug, description, location, starts_at, ends_at,
	image_path, is_active, position, created_at, updated_at`

func scanEvent(row interface{ Scan(...any) error }) (model.Event, error) {
	var e model.Event
	err := row.Scan(
		&e.ID, &e.Title, &e.Slug, &e.Description, &e.Location, &e.StartsAt, &e.EndsAt,
		&e.ImagePath, &e.IsActive, &e.Position, &e.CreatedAt, &e.UpdatedAt,
	)
	return e, err
}

// CreateEventParams holds the fields for creating an event.
type CreateEventParams struct {
	Title       string
	Slug        string
	Description string
	Location    sql.NullString
	StartsAt    time.Time
	EndsAt      sql.NullTime
	ImagePath   sql.NullString
	IsActive    bool
	Position    int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CreateEvent inserts an event and returns the stored row.
func (q *Queries) CreateEvent(ctx context.Context, arg CreateEventParams) (model.Event, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO events (title, slug, description, location, starts_at, ends_at, image_path, is_active, position, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING `+eventColumns,
		arg.Title, arg.Slug, arg.Description, arg.Location, arg.StartsAt, arg.EndsAt,
		arg.ImagePath, arg.IsActive, arg.Position, arg.CreatedAt, arg.UpdatedAt,
	)
	return scanEvent(row)
}

// GetEventByID fetches an event by primary key.
func (q *Queries) GetEventByID(ctx context.Context, id int64) (model.Event, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id = ?`, id)
	return scanEvent(row)
}

// GetEventBySlug fetches an event by slug.
func (q *Queries) GetEventBySlug(ctx context.Context, slug string) (model.Event, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE slug = ?`, slug)
	return scanEvent(row)
}

func (q *Queries) listEvents(ctx context.Context, query string, args ...any) ([]model.Event, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// ListEventsParams paginates the admin event listing.
type ListEventsParams struct {
	Limit  int64
	Offset int64
}

// ListEvents returns all events for the back office, newest first.
func (q *Queries) ListEvents(ctx context.Context, arg ListEventsParams) ([]model.Event, error) {
	return q.listEvents(ctx, `
		SELECT `+eventColumns+` FROM events
		ORDER BY starts_at DESC LIMIT ? OFFSET ?`,
		arg.Limit, arg.Offset)
}

// ListActiveEvents returns active events starting at or after the cutoff,
// soonest first.
func (q *Queries) ListActiveEvents(ctx context.Context, from time.Time) ([]model.Event, error) {
	return q.listEvents(ctx, `
		SELECT `+eventColumns+` FROM events
		WHERE is_active = 1 AND (ends_at >= ? OR (ends_at IS NULL AND starts_at >= ?))
		ORDER BY starts_at ASC`,
		from, from)
}

// CountEvents returns the total number of events.
func (q *Queries) CountEvents(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&n)
	return n, err
}

// UpdateEventParams holds the editable event fields.
type UpdateEventParams struct {
	ID          int64
	Title       string
	Slug        string
	Description string
	Location    sql.NullString
	StartsAt    time.Time
	EndsAt      sql.NullTime
	ImagePath   sql.NullString
	IsActive    bool
	Position    int64
	UpdatedAt   time.Time
}

// UpdateEvent updates an event and returns the stored row.
func (q *Queries) UpdateEvent(ctx context.Context, arg UpdateEventParams) (model.Event, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE events SET title = ?, slug = ?, description = ?, location = ?, starts_at = ?,
			ends_at = ?, image_path = ?, is_active = ?, position = ?, updated_at = ?
		WHERE id = ?
		RETURNING `+eventColumns,
		arg.Title, arg.Slug, arg.Description, arg.Location, arg.StartsAt, arg.EndsAt,
		arg.ImagePath, arg.IsActive, arg.Position, arg.UpdatedAt, arg.ID,
	)
	return scanEvent(row)
}

// DeleteEvent removes an event.
func (q *Queries) DeleteEvent(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	return err
}

// DeactivatePastEvents clears the active flag on events that ended before
// the cutoff. Returns the number of rows changed.
func (q *Queries) DeactivatePastEvents(ctx context.Context, before time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx, `
		UPDATE events SET is_active = 0, updated_at = ?
		WHERE is_active = 1 AND (
			(ends_at IS NOT NULL AND ends_at < ?) OR (ends_at IS NULL AND starts_at < ?)
		)`,
		time.Now(), before, before)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const videoColumns = `id, title, description, video_url, thumbnail_path,
	is_active, position, created_at, updated_at`

func scanVideo(row interface{ Scan(...any) error }) (model.Video, error) {
	var v model.Video
	err := row.Scan(
		&v.ID, &v.Title, &v.Description, &v.VideoURL, &v.ThumbnailPath,
		&v.IsActive, &v.Position, &v.CreatedAt, &v.UpdatedAt,
	)
	return v, err
}

// CreateVideoParams holds the fields for creating a video entry.
type CreateVideoParams struct {
	Title         string
	Description   sql.NullString
	VideoURL      string
	ThumbnailPath sql.NullString
	IsActive      bool
	Position      int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// CreateVideo inserts a video entry and returns the stored row.
func (q *Queries) CreateVideo(ctx context.Context, arg CreateVideoParams) (model.Video, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO videos (title, description, video_url, thumbnail_path, is_active, position, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING `+videoColumns,
		arg.Title, arg.Description, arg.VideoURL, arg.ThumbnailPath,
		arg.IsActive, arg.Position, arg.CreatedAt, arg.UpdatedAt,
	)
	return scanVideo(row)
}

// GetVideoByID fetches a video by primary key.
func (q *Queries) GetVideoByID(ctx context.Context, id int64) (model.Video, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+videoColumns+` FROM videos WHERE id = ?`, id)
	return scanVideo(row)
}

func (q *Queries) listVideos(ctx context.Context, query string, args ...any) ([]model.Video, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var videos []model.Video
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, err
		}
		videos = append(videos, v)
	}
	return videos, rows.Err()
}

// ListVideos returns all videos for the back office, by position.
func (q *Queries) ListVideos(ctx context.Context) ([]model.Video, error) {
	return q.listVideos(ctx,
		`SELECT `+videoColumns+` FROM videos ORDER BY position ASC, created_at DESC`)
}

// ListActiveVideos returns active videos in display order.
func (q *Queries) ListActiveVideos(ctx context.Context) ([]model.Video, error) {
	return q.listVideos(ctx,
		`SELECT `+videoColumns+` FROM videos WHERE is_active = 1 ORDER BY position ASC, created_at DESC`)
}

// UpdateVideoParams holds the editable video fields.
type UpdateVideoParams struct {
	ID            int64
	Title         string
	Description   sql.NullString
	VideoURL      string
	ThumbnailPath sql.NullString
	IsActive      bool
	Position      int64
	UpdatedAt     time.Time
}

// UpdateVideo updates a video entry and returns the stored row.
func (q *Queries) UpdateVideo(ctx context.Context, arg UpdateVideoParams) (model.Video, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE videos SET title = ?, description = ?, video_url = ?, thumbnail_path = ?,
			is_active = ?, position = ?, updated_at = ?
		WHERE id = ?
		RETURNING `+videoColumns,
		arg.Title, arg.Description, arg.VideoURL, arg.ThumbnailPath,
		arg.IsActive, arg.Position, arg.UpdatedAt, arg.ID,
	)
	return scanVideo(row)
}

// DeleteVideo removes a video entry.
func (q *Queries) DeleteVideo(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM videos WHERE id = ?`, id)
	return err
}

const albumColumns = `id, title, slug, description, cover_path, is_active,
	position, created_at, updated_at`

func scanAlbum(row interface{ Scan(...any) error }) (model.GalleryAlbum, error) {
	var a model.GalleryAlbum
	err := row.Scan(
		&a.ID, &a.Title, &a.Slug, &a.Description, &a.CoverPath, &a.IsActive,
		&a.Position, &a.CreatedAt, &a.UpdatedAt,
	)
	return a, err
}

// CreateGalleryAlbumParams holds the fields for creating an album.
type CreateGalleryAlbumParams struct {
	Title       string
	Slug        string
	Description sql.NullString
	CoverPath   sql.NullString
	IsActive    bool
	Position    int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CreateGalleryAlbum inserts an album and returns the stored row.
func (q *Queries) CreateGalleryAlbum(ctx context.Context, arg CreateGalleryAlbumParams) (model.GalleryAlbum, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO gallery_albums (title, slug, description, cover_path, is_active, position, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING `+albumColumns,
		arg.Title, arg.Slug, arg.Description, arg.CoverPath,
		arg.IsActive, arg.Position, arg.CreatedAt, arg.UpdatedAt,
	)
	return scanAlbum(row)
}

// GetGalleryAlbumByID fetches an album by primary key.
func (q *Queries) GetGalleryAlbumByID(ctx context.Context, id int64) (model.GalleryAlbum, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+albumColumns+` FROM gallery_albums WHERE id = ?`, id)
	return scanAlbum(row)
}

// GetGalleryAlbumBySlug fetches an album by slug.
func (q *Queries) GetGalleryAlbumBySlug(ctx context.Context, slug string) (model.GalleryAlbum, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+albumColumns+` FROM gallery_albums WHERE slug = ?`, slug)
	return scanAlbum(row)
}

func (q *Queries) listAlbums(ctx context.Context, query string, args ...any) ([]model.GalleryAlbum, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var albums []model.GalleryAlbum
	for rows.Next() {
		a, err := scanAlbum(rows)
		if err != nil {
			return nil, err
		}
		albums = append(albums, a)
	}
	return albums, rows.Err()
}

// ListGalleryAlbums returns all albums for the back office, by position.
func (q *Queries) ListGalleryAlbums(ctx context.Context) ([]model.GalleryAlbum, error) {
	return q.listAlbums(ctx,
		`SELECT `+albumColumns+` FROM gallery_albums ORDER BY position ASC, created_at DESC`)
}

// ListActiveGalleryAlbums returns active albums in display order.
func (q *Queries) ListActiveGalleryAlbums(ctx context.Context) ([]model.GalleryAlbum, error) {
	return q.listAlbums(ctx,
		`SELECT `+albumColumns+` FROM gallery_albums WHERE is_active = 1 ORDER BY position ASC, created_at DESC`)
}

// UpdateGalleryAlbumParams holds the editable album fields.
type UpdateGalleryAlbumParams struct {
	ID          int64
	Title       string
	Slug        string
	Description sql.NullString
	CoverPath   sql.NullString
	IsActive    bool
	Position    int64
	UpdatedAt   time.Time
}

// UpdateGalleryAlbum updates an album and returns the stored row.
func (q *Queries) UpdateGalleryAlbum(ctx context.Context, arg UpdateGalleryAlbumParams) (model.GalleryAlbum, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE gallery_albums SET title = ?, slug = ?, description = ?, cover_path = ?,
			is_active = ?, position = ?, updated_at = ?
		WHERE id = ?
		RETURNING `+albumColumns,
		arg.Title, arg.Slug, arg.Description, arg.CoverPath,
		arg.IsActive, arg.Position, arg.UpdatedAt, arg.ID,
	)
	return scanAlbum(row)
}

// SetGalleryAlbumCoverParams holds the cover path assignment for an album.
type SetGalleryAlbumCoverParams struct {
	ID        int64
	CoverPath sql.NullString
	UpdatedAt time.Time
}

// SetGalleryAlbumCover updates only the album's cover path.
func (q *Queries) SetGalleryAlbumCover(ctx context.Context, arg SetGalleryAlbumCoverParams) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE gallery_albums SET cover_path = ?, updated_at = ? WHERE id = ?`,
		arg.CoverPath, arg.UpdatedAt, arg.ID,
	)
	return err
}

// DeleteGalleryAlbum removes an album. Its images cascade via the foreign key.
func (q *Queries) DeleteGalleryAlbum(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM gallery_albums WHERE id = ?`, id)
	return err
}

const galleryImageColumns = `id, album_id, uuid, file_path, caption, width, height, position, created_at`

func scanGalleryImage(row interface{ Scan(...any) error }) (model.GalleryImage, error) {
	var img model.GalleryImage
	err := row.Scan(
		&img.ID, &img.AlbumID, &img.UUID, &img.FilePath, &img.Caption,
		&img.Width, &img.Height, &img.Position, &img.CreatedAt,
	)
	return img, err
}

// CreateGalleryImageParams holds the fields for adding a photo to an album.
type CreateGalleryImageParams struct {
	AlbumID   int64
	UUID      string
	FilePath  string
	Caption   sql.NullString
	Width     sql.NullInt64
	Height    sql.NullInt64
	Position  int64
	CreatedAt time.Time
}

// CreateGalleryImage inserts a gallery image and returns the stored row.
func (q *Queries) CreateGalleryImage(ctx context.Context, arg CreateGalleryImageParams) (model.GalleryImage, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO gallery_images (album_id, uuid, file_path, caption, width, height, position, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING `+galleryImageColumns,
		arg.AlbumID, arg.UUID, arg.FilePath, arg.Caption,
		arg.Width, arg.Height, arg.Position, arg.CreatedAt,
	)
	return scanGalleryImage(row)
}

// GetGalleryImageByID fetches a gallery image by primary key.
func (q *Queries) GetGalleryImageByID(ctx context.Context, id int64) (model.GalleryImage, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+galleryImageColumns+` FROM gallery_images WHERE id = ?`, id)
	return scanGalleryImage(row)
}

// ListGalleryImagesByAlbum returns an album's images in display order.
func (q *Queries) ListGalleryImagesByAlbum(ctx context.Context, albumID int64) ([]model.GalleryImage, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+galleryImageColumns+` FROM gallery_images
		WHERE album_id = ? ORDER BY position ASC, id ASC`,
		albumID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var images []model.GalleryImage
	for rows.Next() {
		img, err := scanGalleryImage(rows)
		if err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

// CountGalleryImagesByAlbum returns the number of photos in an album.
func (q *Queries) CountGalleryImagesByAlbum(ctx context.Context, albumID int64) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM gallery_images WHERE album_id = ?`, albumID).Scan(&n)
	return n, err
}

// UpdateGalleryImageParams holds the editable image fields.
type UpdateGalleryImageParams struct {
	ID       int64
	Caption  sql.NullString
	Position int64
}

// UpdateGalleryImage updates a photo's caption and position.
func (q *Queries) UpdateGalleryImage(ctx context.Context, arg UpdateGalleryImageParams) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE gallery_images SET caption = ?, position = ? WHERE id = ?`,
		arg.Caption, arg.Position, arg.ID)
	return err
}

// DeleteGalleryImage removes a photo record.
func (q *Queries) DeleteGalleryImage(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM gallery_images WHERE id = ?`, id)
	return err
}

const serviceTimeColumns = `id, day_of_week, start_time, label, is_active, position, created_at, updated_at`

func scanServiceTime(row interface{ Scan(...any) error }) (model.ServiceTime, error) {
	var s model.ServiceTime
	err := row.Scan(
		&s.ID, &s.DayOfWeek, &s.StartTime, &s.Label, &s.IsActive,
		&s.Position, &s.CreatedAt, &s.UpdatedAt,
	)
	return s, err
}

// CreateServiceTimeParams holds the fields for creating a service slot.
type CreateServiceTimeParams struct {
	DayOfWeek int64
	StartTime string
	Label     string
	IsActive  bool
	Position  int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateServiceTime inserts a service slot and returns the stored row.
func (q *Queries) CreateServiceTime(ctx context.Context, arg CreateServiceTimeParams) (model.ServiceTime, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO service_times (day_of_week, start_time, label, is_active, position, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING `+serviceTimeColumns,
		arg.DayOfWeek, arg.StartTime, arg.Label, arg.IsActive,
		arg.Position, arg.CreatedAt, arg.UpdatedAt,
	)
	return scanServiceTime(row)
}

// GetServiceTimeByID fetches a service slot by primary key.
func (q *Queries) GetServiceTimeByID(ctx context.Context, id int64) (model.ServiceTime, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+serviceTimeColumns+` FROM service_times WHERE id = ?`, id)
	return scanServiceTime(row)
}

func (q *Queries) listServiceTimes(ctx context.Context, query string) ([]model.ServiceTime, error) {
	rows, err := q.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var times []model.ServiceTime
	for rows.Next() {
		s, err := scanServiceTime(rows)
		if err != nil {
			return nil, err
		}
		times = append(times, s)
	}
	return times, rows.Err()
}

// ListServiceTimes returns all service slots for the back office.
func (q *Queries) ListServiceTimes(ctx context.Context) ([]model.ServiceTime, error) {
	return q.listServiceTimes(ctx,
		`SELECT `+serviceTimeColumns+` FROM service_times ORDER BY position ASC, day_of_week ASC, start_time ASC`)
}

// ListActiveServiceTimes returns active service slots in display order.
func (q *Queries) ListActiveServiceTimes(ctx context.Context) ([]model.ServiceTime, error) {
	return q.listServiceTimes(ctx,
		`SELECT `+serviceTimeColumns+` FROM service_times WHERE is_active = 1 ORDER BY position ASC, day_of_week ASC, start_time ASC`)
}

// UpdateServiceTimeParams holds the editable service slot fields.
type UpdateServiceTimeParams struct {
	ID        int64
	DayOfWeek int64
	StartTime string
	Label     string
	IsActive  bool
	Position  int64
	UpdatedAt time.Time
}

// UpdateServiceTime updates a service slot and returns the stored row.
func (q *Queries) UpdateServiceTime(ctx context.Context, arg UpdateServiceTimeParams) (model.ServiceTime, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE service_times SET day_of_week = ?, start_time = ?, label = ?,
			is_active = ?, position = ?, updated_at = ?
		WHERE id = ?
		RETURNING `+serviceTimeColumns,
		arg.DayOfWeek, arg.StartTime, arg.Label, arg.IsActive,
		arg.Position, arg.UpdatedAt, arg.ID,
	)
	return scanServiceTime(row)
}

// DeleteServiceTime removes a service slot.
func (q *Queries) DeleteServiceTime(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM service_times WHERE id = ?`, id)
	return err
}

const churchInfoColumns = `id, name, tagline, about, address, phone, email,
	facebook, youtube, instagram, updated_at`

// GetChurchInfo fetches the single settings row.
func (q *Queries) GetChurchInfo(ctx context.Context) (model.ChurchInfo, error) {
	var c model.ChurchInfo
	err := q.db.QueryRowContext(ctx,
		`SELECT `+churchInfoColumns+` FROM church_info WHERE id = 1`).Scan(
		&c.ID, &c.Name, &c.Tagline, &c.About, &c.Address, &c.Phone, &c.Email,
		&c.Facebook, &c.YouTube, &c.Instagram, &c.UpdatedAt,
	)
	return c, err
}

// UpsertChurchInfoParams holds the settings fields.
type UpsertChurchInfoParams struct {
	Name      string
	Tagline   sql.NullString
	About     string
	Address   sql.NullString
	Phone     sql.NullString
	Email     sql.NullString
	Facebook  sql.NullString
	YouTube   sql.NullString
	Instagram sql.NullString
	UpdatedAt time.Time
}

// UpsertChurchInfo writes the single settings row, creating it if absent.
func (q *Queries) UpsertChurchInfo(ctx context.Context, arg UpsertChurchInfoParams) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO church_info (id, name, tagline, about, address, phone, email, facebook, youtube, instagram, updated_at)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name, tagline = excluded.tagline, about = excluded.about,
			address = excluded.address, phone = excluded.phone, email = excluded.email,
			facebook = excluded.facebook, youtube = excluded.youtube,
			instagram = excluded.instagram, updated_at = excluded.updated_at`,
		arg.Name, arg.Tagline, arg.About, arg.Address, arg.Phone, arg.Email,
		arg.Facebook, arg.YouTube, arg.Instagram, arg.UpdatedAt,
	)
	return err
}
