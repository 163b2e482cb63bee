// Copyright (c) 2026 Shiloh Intercession Mountain
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/shilointercessionmountain-org/shilohwebsite/internal/model"
)

const auditEventColumns = `id, level, category, message, user_id, metadata, ip, created_at`

func scanAuditEvent(row interface{ Scan(...any) error }) (model.AuditEvent, error) {
	var e model.AuditEvent
	err := row.Scan(
		&e.ID, &e.Level, &e.Category, &e.Message, &e.UserID,
		&e.Metadata, &e.IP, &e.CreatedAt,
	)
	return e, err
}

// CreateAuditEventParams holds the fields of an audit log entry.
type CreateAuditEventParams struct {
	Level     string
	Category  string
	Message   string
	UserID    sql.NullInt64
	Metadata  string
	IP        sql.NullString
	CreatedAt time.Time
}

// CreateAuditEvent appends an entry to the audit log.
func (q *Queries) CreateAuditEvent(ctx context.Context, arg CreateAuditEventParams) (model.AuditEvent, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO audit_events (level, category, message, user_id, metadata, ip, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING `+auditEventColumns,
		arg.Level, arg.Category, arg.Message, arg.UserID, arg.Metadata, arg.IP, arg.CreatedAt,
	)
	return scanAuditEvent(row)
}

// ListAuditEventsParams paginates and optionally filters the audit log.
type ListAuditEventsParams struct {
	Category string // empty means all categories
	Limit    int64
	Offset   int64
}

// ListAuditEvents returns audit entries, newest first.
func (q *Queries) ListAuditEvents(ctx context.Context, arg ListAuditEventsParams) ([]model.AuditEvent, error) {
	query := `SELECT ` + auditEventColumns + ` FROM audit_events`
	args := []any{}
	if arg.Category != "" {
		query += ` WHERE category = ?`
		args = append(args, arg.Category)
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	args = append(args, arg.Limit, arg.Offset)

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []model.AuditEvent
	for rows.Next() {
		e, err := scanAuditEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// CountAuditEvents returns the number of audit entries, optionally filtered
// by category.
func (q *Queries) CountAuditEvents(ctx context.Context, category string) (int64, error) {
	var n int64
	var err error
	if category == "" {
		err = q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_events`).Scan(&n)
	} else {
		err = q.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM audit_events WHERE category = ?`, category).Scan(&n)
	}
	return n, err
}

// DeleteAuditEventsBefore removes entries older than the cutoff. Returns the
// number of rows deleted.
func (q *Queries) DeleteAuditEventsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		`DELETE FROM audit_events WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
