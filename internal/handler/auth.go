// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/google/uuid"

	"github.com/olegiv/oins-go/internal/auth"
	"github.com/olegiv/oins-go/internal/middleware"
	"github.com/olegiv/oins-go/internal/store"
)

const minPasswordLength = 8

// AuthHandler handles registration, login, logout and admin promotion.
type AuthHandler struct {
	sm      *scs.SessionManager
	queries *store.Queries
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(sm *scs.SessionManager, db *sql.DB) *AuthHandler {
	return &AuthHandler{
		sm:      sm,
		queries: store.New(db),
	}
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles POST /api/register. New accounts always start as regular
// users; registration does not establish a session.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}

	fieldErrors := make(map[string]string)
	if req.Email == "" {
		fieldErrors["email"] = "email is required"
	} else if !IsValidEmail(req.Email) {
		fieldErrors["email"] = "email is not a valid address"
	}
	if req.Password == "" {
		fieldErrors["password"] = "password is required"
	} else if len(req.Password) < minPasswordLength {
		fieldErrors["password"] = "password must be at least 8 characters"
	}
	if len(fieldErrors) > 0 {
		WriteValidationError(w, fieldErrors)
		return
	}

	count, err := h.queries.CountUsersByEmail(r.Context(), req.Email)
	if err != nil {
		slog.Error("checking email uniqueness", "error", err)
		WriteInternalError(w, "Failed to register")
		return
	}
	if count > 0 {
		WriteConflict(w, "duplicate_email", "An account with this email already exists")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		slog.Error("hashing password", "error", err)
		WriteInternalError(w, "Failed to register")
		return
	}

	now := time.Now()
	user, err := h.queries.CreateUser(r.Context(), store.CreateUserParams{
		ID:           uuid.NewString(),
		Email:        req.Email,
		PasswordHash: hash,
		IsAdmin:      false,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		slog.Error("creating user", "error", err)
		WriteInternalError(w, "Failed to register")
		return
	}

	slog.Info("user registered", "user_id", user.ID)
	WriteCreated(w, map[string]string{"id": user.ID})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /api/login. An unknown email and a wrong password
// produce the identical failure so callers cannot enumerate accounts.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}
	if req.Email == "" || req.Password == "" {
		WriteBadRequest(w, "Email and password are required", nil)
		return
	}

	user, err := h.queries.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			slog.Error("loading user for login", "error", err)
			WriteInternalError(w, "Failed to log in")
			return
		}
		// Burn a verify on a dummy digest to keep response timing uniform.
		auth.CheckPassword(req.Password, dummyDigest)
		writeInvalidCredentials(w)
		return
	}

	if !auth.CheckPassword(req.Password, user.PasswordHash) {
		slog.Warn("failed login attempt", "user_id", user.ID, "remote_addr", r.RemoteAddr)
		writeInvalidCredentials(w)
		return
	}

	if auth.NeedsRehash(user.PasswordHash) {
		if hash, err := auth.HashPassword(req.Password); err == nil {
			err = h.queries.UpdateUserPassword(r.Context(), store.UpdateUserPasswordParams{
				PasswordHash: hash,
				UpdatedAt:    time.Now(),
				ID:           user.ID,
			})
			if err != nil {
				slog.Error("rehashing password", "error", err, "user_id", user.ID)
			}
		}
	}

	// New token on privilege change, keeps session fixation off the table.
	if err := h.sm.RenewToken(r.Context()); err != nil {
		slog.Error("renewing session token", "error", err)
		WriteInternalError(w, "Failed to log in")
		return
	}
	h.sm.Put(r.Context(), middleware.SessionKeyUserID, user.ID)

	slog.Info("user logged in", "user_id", user.ID)
	WriteSuccess(w, publicUser(user))
}

// Logout handles POST /api/logout. Destroying an absent session is a no-op,
// so repeated calls always succeed.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sm.Destroy(r.Context()); err != nil {
		slog.Error("destroying session", "error", err)
		WriteInternalError(w, "Failed to log out")
		return
	}
	WriteSuccess(w, map[string]string{"status": "logged_out"})
}

// SetAdmin handles POST /api/set-admin/{id}. Admin only.
func (h *AuthHandler) SetAdmin(w http.ResponseWriter, r *http.Request) {
	user, err := h.queries.SetUserAdmin(r.Context(), store.SetUserAdminParams{
		UpdatedAt: time.Now(),
		ID:        IDParam(r),
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "User not found")
			return
		}
		slog.Error("promoting user to admin", "error", err)
		WriteInternalError(w, "Failed to promote user")
		return
	}

	slog.Info("user promoted to admin", "user_id", user.ID, "promoted_by", middleware.GetUserID(r))
	WriteSuccess(w, publicUser(user))
}

// Session handles GET /api/session, returning the current principal.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		WriteUnauthorized(w, "Authentication required")
		return
	}
	WriteSuccess(w, publicUser(*user))
}

// publicUserView is the principal shape exposed to callers.
type publicUserView struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin"`
}

func publicUser(u store.User) publicUserView {
	return publicUserView{ID: u.ID, Email: u.Email, IsAdmin: u.IsAdmin}
}

func writeInvalidCredentials(w http.ResponseWriter) {
	WriteError(w, http.StatusUnauthorized, "invalid_credentials", "Invalid email or password", nil)
}

// dummyDigest is a throwaway argon2id digest verified when the email does not
// resolve, so both login failure paths cost a hash computation.
var dummyDigest = func() string {
	digest, err := auth.HashPassword("not-a-real-password")
	if err != nil {
		return ""
	}
	return digest
}()
