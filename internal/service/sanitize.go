// Copyright (c) 2026 Shiloh Intercession Mountain
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"html"

	"github.com/microcosm-cc/bluemonday"
)

var plainSanitizer = bluemonday.StrictPolicy()

// SanitizePlain strips all HTML from visitor-supplied text, leaving plain
// text. Entities are unescaped afterwards so templates do not double-escape
// ampersands and quotes on output.
func SanitizePlain(s string) string {
	return html.UnescapeString(plainSanitizer.Sanitize(s))
}
