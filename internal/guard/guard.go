// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package guard provides the authorization predicates for the portal. Each
// predicate is a pure function of the session principal and, where relevant,
// an owner reference read from storage. Handlers compose them per endpoint
// and must run them before any write. Ownership is always judged against a
// freshly loaded record, never against caller-supplied ids.
package guard

import (
	"errors"

	"github.com/olegiv/oins-go/internal/store"
)

var (
	// ErrUnauthenticated means no valid principal is attached to the request.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrForbidden means the principal is authenticated but not permitted
	// to act on the target resource.
	ErrForbidden = errors.New("insufficient permissions")
)

// RequireAuthenticated allows any authenticated principal.
func RequireAuthenticated(user *store.User) error {
	if user == nil {
		return ErrUnauthenticated
	}
	return nil
}

// RequireAdmin allows administrators only.
func RequireAdmin(user *store.User) error {
	if err := RequireAuthenticated(user); err != nil {
		return err
	}
	if !user.IsAdmin {
		return ErrForbidden
	}
	return nil
}

// RequireNonAdmin allows regular users only. Used for self-service
// operations where administrators act through their own endpoints instead.
func RequireNonAdmin(user *store.User) error {
	if err := RequireAuthenticated(user); err != nil {
		return err
	}
	if user.IsAdmin {
		return ErrForbidden
	}
	return nil
}

// RequireSelfOrAdmin allows administrators and the owner of the target
// resource. ownerUserID must come from a record read from storage.
func RequireSelfOrAdmin(user *store.User, ownerUserID string) error {
	if err := RequireAuthenticated(user); err != nil {
		return err
	}
	if user.IsAdmin || user.ID == ownerUserID {
		return nil
	}
	return ErrForbidden
}
