// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"net/http"
	"net/mail"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/oins-go/internal/guard"
)

// IDParam extracts the {id} URL parameter.
func IDParam(r *http.Request) string {
	return chi.URLParam(r, "id")
}

// IsValidEmail reports whether the address parses as a bare RFC 5322 address.
func IsValidEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

// ParseTimestamp parses an RFC3339 timestamp from a request field.
func ParseTimestamp(value string) (time.Time, error) {
	return time.Parse(time.RFC3339, value)
}

// authorize applies a guard decision and writes the matching JSON failure.
// Returns true when the request may proceed.
func authorize(w http.ResponseWriter, err error) bool {
	switch {
	case err == nil:
		return true
	case errors.Is(err, guard.ErrUnauthenticated):
		WriteUnauthorized(w, "Authentication required")
	case errors.Is(err, guard.ErrForbidden):
		WriteForbidden(w, "Insufficient permissions")
	default:
		WriteInternalError(w, "Authorization failed")
	}
	return false
}
