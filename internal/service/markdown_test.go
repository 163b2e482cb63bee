// Copyright (c) 2026 Shiloh Intercession Mountain
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderMarkdownBasics(t *testing.T) {
	html := string(RenderMarkdown("# Welcome\n\nCome worship with **us**."))

	assert.Contains(t, html, "<h1>Welcome</h1>")
	assert.Contains(t, html, "<strong>us</strong>")
}

func TestRenderMarkdownStripsScripts(t *testing.T) {
	html := string(RenderMarkdown("hello <script>alert(1)</script> world"))

	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "hello")
	assert.Contains(t, html, "world")
}

func TestRenderMarkdownSanitizesLinks(t *testing.T) {
	html := string(RenderMarkdown(`[click](javascript:alert(1))`))

	assert.NotContains(t, strings.ToLower(html), "javascript:")
}

func TestRenderMarkdownEmptyInput(t *testing.T) {
	assert.Empty(t, strings.TrimSpace(string(RenderMarkdown(""))))
}
