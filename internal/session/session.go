// Copyright (c) 2026 Shiloh Intercession Mountain
// SPDX-License-Identifier: GPL-3.0-or-later

// Package session configures the server-side session manager backed by
// the sessions table.
package session

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
)

// New creates a session manager storing sessions in SQLite. Cookies are
// non-persistent by default; RememberMe is set per login when the user
// asks to stay signed in.
func New(db *sql.DB, lifetime time.Duration, isDev bool) *scs.SessionManager {
	manager := scs.New()
	manager.Store = sqlite3store.New(db)
	manager.Lifetime = lifetime
	manager.Cookie.HttpOnly = true
	manager.Cookie.SameSite = http.SameSiteLaxMode
	manager.Cookie.Secure = !isDev
	manager.Cookie.Persist = false

	return manager
}
