// Copyright (c) 2026 Shiloh Intercession Mountain
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/shilointercessionmountain-org/shilohwebsite/internal/model"
)

const userColumns = `id, email, password_hash, role, first_name, last_name,
	phone, title, avatar_path, created_at, updated_at, last_login_at`

func scanUser(row interface{ Scan(...any) error }) (model.User, error) {
	var u model.User
	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.FirstName, &u.LastName,
		&u.Phone, &u.Title, &u.AvatarPath, &u.CreatedAt, &u.UpdatedAt, &u.LastLoginAt,
	)
	return u, err
}

// CreateUserParams holds the fields for creating a user.
type CreateUserParams struct {
	Email        string
	PasswordHash string
	Role         string
	FirstName    string
	LastName     string
	Phone        sql.NullString
	Title        sql.NullString
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CreateUser inserts a user and returns the stored row.
func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (model.User, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO users (email, password_hash, role, first_name, last_name, phone, title, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING `+userColumns,
		arg.Email, arg.PasswordHash, arg.Role, arg.FirstName, arg.LastName,
		arg.Phone, arg.Title, arg.CreatedAt, arg.UpdatedAt,
	)
	return scanUser(row)
}

// GetUserByID fetches a user by primary key.
func (q *Queries) GetUserByID(ctx context.Context, id int64) (model.User, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

// GetUserByEmail fetches a user by email.
func (q *Queries) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return scanUser(row)
}

// ListUsersParams paginates the user listing.
type ListUsersParams struct {
	Limit  int64
	Offset int64
}

// ListUsers returns users ordered by creation time, newest first.
func (q *Queries) ListUsers(ctx context.Context, arg ListUsersParams) ([]model.User, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+userColumns+` FROM users
		ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		arg.Limit, arg.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// CountUsers returns the total number of users.
func (q *Queries) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}

// CountUsersByRole returns the number of users holding a role.
func (q *Queries) CountUsersByRole(ctx context.Context, role string) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE role = ?`, role).Scan(&n)
	return n, err
}

// UpdateUserProfileParams holds the editable profile fields.
type UpdateUserProfileParams struct {
	ID        int64
	FirstName string
	LastName  string
	Phone     sql.NullString
	Title     sql.NullString
	UpdatedAt time.Time
}

// UpdateUserProfile updates a user's profile fields and returns the row.
func (q *Queries) UpdateUserProfile(ctx context.Context, arg UpdateUserProfileParams) (model.User, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE users SET first_name = ?, last_name = ?, phone = ?, title = ?, updated_at = ?
		WHERE id = ?
		RETURNING `+userColumns,
		arg.FirstName, arg.LastName, arg.Phone, arg.Title, arg.UpdatedAt, arg.ID,
	)
	return scanUser(row)
}

// UpdateUserRoleParams changes a user's role.
type UpdateUserRoleParams struct {
	ID        int64
	Role      string
	UpdatedAt time.Time
}

// UpdateUserRole updates a user's role.
func (q *Queries) UpdateUserRole(ctx context.Context, arg UpdateUserRoleParams) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE users SET role = ?, updated_at = ? WHERE id = ?`,
		arg.Role, arg.UpdatedAt, arg.ID,
	)
	return err
}

// UpdateUserPasswordParams changes a user's password hash.
type UpdateUserPasswordParams struct {
	ID           int64
	PasswordHash string
	UpdatedAt    time.Time
}

// UpdateUserPassword updates the stored password hash.
func (q *Queries) UpdateUserPassword(ctx context.Context, arg UpdateUserPasswordParams) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`,
		arg.PasswordHash, arg.UpdatedAt, arg.ID,
	)
	return err
}

// UpdateUserAvatarParams sets or clears a user's avatar path.
type UpdateUserAvatarParams struct {
	ID         int64
	AvatarPath sql.NullString
	UpdatedAt  time.Time
}

// UpdateUserAvatar updates the stored avatar path.
func (q *Queries) UpdateUserAvatar(ctx context.Context, arg UpdateUserAvatarParams) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE users SET avatar_path = ?, updated_at = ? WHERE id = ?`,
		arg.AvatarPath, arg.UpdatedAt, arg.ID,
	)
	return err
}

// UpdateUserLastLogin records a successful login timestamp.
func (q *Queries) UpdateUserLastLogin(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE users SET last_login_at = ? WHERE id = ?`, time.Now(), id)
	return err
}

// DeleteUser removes a user. Dependent rows cascade via foreign keys.
func (q *Queries) DeleteUser(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	return err
}

const adminRequestColumns = `id, user_id, status, reviewed_by, reviewed_at, created_at`

func scanAdminRequest(row interface{ Scan(...any) error }) (model.AdminRequest, error) {
	var r model.AdminRequest
	err := row.Scan(&r.ID, &r.UserID, &r.Status, &r.ReviewedBy, &r.ReviewedAt, &r.CreatedAt)
	return r, err
}

// CreateAdminRequest inserts a pending request for a user. The UNIQUE
// constraint on user_id guarantees at most one request per user.
func (q *Queries) CreateAdminRequest(ctx context.Context, userID int64, createdAt time.Time) (model.AdminRequest, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO admin_requests (user_id, status, created_at)
		VALUES (?, ?, ?)
		RETURNING `+adminRequestColumns,
		userID, model.RequestStatusPending, createdAt,
	)
	return scanAdminRequest(row)
}

// GetAdminRequestByID fetches a request by primary key.
func (q *Queries) GetAdminRequestByID(ctx context.Context, id int64) (model.AdminRequest, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+adminRequestColumns+` FROM admin_requests WHERE id = ?`, id)
	return scanAdminRequest(row)
}

// GetAdminRequestByUserID fetches a user's request.
func (q *Queries) GetAdminRequestByUserID(ctx context.Context, userID int64) (model.AdminRequest, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+adminRequestColumns+` FROM admin_requests WHERE user_id = ?`, userID)
	return scanAdminRequest(row)
}

// AdminRequestWithUser joins a request with its requesting user.
type AdminRequestWithUser struct {
	model.AdminRequest
	UserEmail     string
	UserFirstName string
	UserLastName  string
}

// ListAdminRequestsByStatus returns requests in a given status, oldest
// first, joined with the requesting user.
func (q *Queries) ListAdminRequestsByStatus(ctx context.Context, status string) ([]AdminRequestWithUser, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT r.id, r.user_id, r.status, r.reviewed_by, r.reviewed_at, r.created_at,
		       u.email, u.first_name, u.last_name
		FROM admin_requests r
		JOIN users u ON u.id = r.user_id
		WHERE r.status = ?
		ORDER BY r.created_at ASC`,
		status,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AdminRequestWithUser
	for rows.Next() {
		var r AdminRequestWithUser
		if err := rows.Scan(
			&r.ID, &r.UserID, &r.Status, &r.ReviewedBy, &r.ReviewedAt, &r.CreatedAt,
			&r.UserEmail, &r.UserFirstName, &r.UserLastName,
		); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// CountAdminRequestsByStatus returns the number of requests in a status.
func (q *Queries) CountAdminRequestsByStatus(ctx context.Context, status string) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM admin_requests WHERE status = ?`, status).Scan(&n)
	return n, err
}

// UpdateAdminRequestStatusParams records a review decision.
type UpdateAdminRequestStatusParams struct {
	ID         int64
	Status     string
	ReviewedBy int64
	ReviewedAt time.Time
}

// UpdateAdminRequestStatus transitions a request out of pending. The WHERE
// clause rejects re-reviewing an already decided request.
func (q *Queries) UpdateAdminRequestStatus(ctx context.Context, arg UpdateAdminRequestStatusParams) (model.AdminRequest, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE admin_requests SET status = ?, reviewed_by = ?, reviewed_at = ?
		WHERE id = ? AND status = ?
		RETURNING `+adminRequestColumns,
		arg.Status, arg.ReviewedBy, arg.ReviewedAt, arg.ID, model.RequestStatusPending,
	)
	return scanAdminRequest(row)
}
