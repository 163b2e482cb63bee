// Copyright (c) 2026 Shiloh Intercession Mountain
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/shilointercessionmountain-org/shilohwebsite/internal/model"
)

const contactColumns = `id, name, email, phone, subject, message, ip,
	user_agent, country, is_read, created_at`

func scanContactSubmission(row interface{ Scan(...any) error }) (model.ContactSubmission, error) {
	var c model.ContactSubmission
	err := row.Scan(
		&c.ID, &c.Name, &c.Email, &c.Phone, &c.Subject, &c.Message, &c.IP,
		&c.UserAgent, &c.Country, &c.IsRead, &c.CreatedAt,
	)
	return c, err
}

// CreateContactSubmissionParams holds the fields of a contact form post.
type CreateContactSubmissionParams struct {
	Name      string
	Email     string
	Phone     sql.NullString
	Subject   sql.NullString
	Message   string
	IP        string
	UserAgent sql.NullString
	Country   sql.NullString
	CreatedAt time.Time
}

// CreateContactSubmission stores a contact form post and returns the row.
func (q *Queries) CreateContactSubmission(ctx context.Context, arg CreateContactSubmissionParams) (model.ContactSubmission, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO contact_submissions (name, email, phone, subject, message, ip, user_agent, country, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING `+contactColumns,
		arg.Name, arg.Email, arg.Phone, arg.Subject, arg.Message,
		arg.IP, arg.UserAgent, arg.Country, arg.CreatedAt,
	)
	return scanContactSubmission(row)
}

// GetContactSubmissionByID fetches a submission by primary key.
func (q *Queries) GetContactSubmissionByID(ctx context.Context, id int64) (model.ContactSubmission, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+contactColumns+` FROM contact_submissions WHERE id = ?`, id)
	return scanContactSubmission(row)
}

// ListContactSubmissionsParams paginates the inbox.
type ListContactSubmissionsParams struct {
	Limit  int64
	Offset int64
}

// ListContactSubmissions returns submissions, newest first.
func (q *Queries) ListContactSubmissions(ctx context.Context, arg ListContactSubmissionsParams) ([]model.ContactSubmission, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+contactColumns+` FROM contact_submissions
		ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []model.ContactSubmission
	for rows.Next() {
		c, err := scanContactSubmission(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, c)
	}
	return subs, rows.Err()
}

// CountContactSubmissions returns the total number of submissions.
func (q *Queries) CountContactSubmissions(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM contact_submissions`).Scan(&n)
	return n, err
}

// CountUnreadContactSubmissions returns the number of unread submissions.
func (q *Queries) CountUnreadContactSubmissions(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM contact_submissions WHERE is_read = 0`).Scan(&n)
	return n, err
}

// MarkContactSubmissionRead flags a submission as read.
func (q *Queries) MarkContactSubmissionRead(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE contact_submissions SET is_read = 1 WHERE id = ?`, id)
	return err
}

// DeleteContactSubmission removes a submission.
func (q *Queries) DeleteContactSubmission(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM contact_submissions WHERE id = ?`, id)
	return err
}
