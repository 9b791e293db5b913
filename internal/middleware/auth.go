// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for authentication,
// authorization, and request context handling.
package middleware

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/oins-go/internal/guard"
	"github.com/olegiv/oins-go/internal/store"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// ContextKeyUser is the context key holding the authenticated user.
const ContextKeyUser ContextKey = "user"

// SessionKeyUserID is the session key for storing the authenticated user ID.
const SessionKeyUserID = "user_id"

// LoadUser creates middleware that resolves the session principal into the
// request context. The user row is re-read on every request: a session whose
// user no longer exists in the store is destroyed on the spot, so the request
// proceeds anonymously and authenticated routes answer 401 instead of acting
// on a stale principal.
func LoadUser(sm *scs.SessionManager, db *sql.DB) func(http.Handler) http.Handler {
	queries := store.New(db)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := sm.GetString(r.Context(), SessionKeyUserID)
			if userID == "" {
				next.ServeHTTP(w, r)
				return
			}

			user, err := queries.GetUserByID(r.Context(), userID)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					slog.Warn("session references missing user, destroying session", "user_id", userID)
				} else {
					slog.Error("loading session user", "error", err, "user_id", userID)
				}
				_ = sm.Destroy(r.Context())
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyUser, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUser retrieves the current user from the request context.
// Returns nil if no user is in context.
func GetUser(r *http.Request) *store.User {
	user, ok := r.Context().Value(ContextKeyUser).(store.User)
	if !ok {
		return nil
	}
	return &user
}

// GetUserID returns the current user's ID from context, or empty string if
// not found. Safe to use in logging.
func GetUserID(r *http.Request) string {
	if user := GetUser(r); user != nil {
		return user.ID
	}
	return ""
}

// RequireAuth creates middleware that requires an authenticated principal
// and answers 401 otherwise. Use after LoadUser.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := guard.RequireAuthenticated(GetUser(r)); err != nil {
			WriteAPIError(w, http.StatusUnauthorized, "unauthenticated", "Authentication required", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin creates middleware that requires an administrator.
func RequireAdmin(next http.Handler) http.Handler {
	return requireGuard(guard.RequireAdmin, next)
}

// RequireUser creates middleware that requires a regular (non-admin) user.
// Self-service endpoints deny administrators explicitly.
func RequireUser(next http.Handler) http.Handler {
	return requireGuard(guard.RequireNonAdmin, next)
}

// requireGuard applies a guard predicate to the context user and maps its
// failures to JSON 401/403 responses.
func requireGuard(check func(*store.User) error, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := GetUser(r)
		switch err := check(user); {
		case errors.Is(err, guard.ErrUnauthenticated):
			WriteAPIError(w, http.StatusUnauthorized, "unauthenticated", "Authentication required", nil)
		case errors.Is(err, guard.ErrForbidden):
			slog.Warn("access denied",
				"status", http.StatusForbidden,
				"method", r.Method,
				"path", r.URL.Path,
				"user_id", GetUserID(r),
				"remote_addr", r.RemoteAddr,
			)
			WriteAPIError(w, http.StatusForbidden, "forbidden", "Insufficient permissions", nil)
		default:
			next.ServeHTTP(w, r)
		}
	})
}
