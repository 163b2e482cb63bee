// Copyright (c) 2026 Shiloh Intercession Mountain
// SPDX-License-Identifier: GPL-3.0-or-later

// Package api serves the read-only public JSON endpoints under /api/v1.
package api

import (
	"encoding/json"
	"net/http"
)

// Response is the envelope for successful API responses.
type Response struct {
	Data any   `json:"data"`
	Meta *Meta `json:"meta,omitempty"`
}

// Meta carries collection metadata.
type Meta struct {
	Count int `json:"count"`
}

// ErrorResponse is the envelope for API errors.
type ErrorResponse struct {
	Error string `json:"error"`
}

// WriteResponse writes a success envelope.
func WriteResponse(w http.ResponseWriter, data any, meta *Meta) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(Response{Data: data, Meta: meta})
}

// WriteError writes an error envelope with the given status code.
func WriteError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}
