// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"testing"
)

func TestRegisterAndLogin(t *testing.T) {
	_, srv, client := testServer(t)

	resp := doJSON(t, client, http.MethodPost, srv.URL+"/api/register",
		`{"email":"alice@example.com","password":"correct horse"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register: got status %d, want 201", resp.StatusCode)
	}
	created := decodeData[map[string]string](t, resp)
	if created["id"] == "" {
		t.Fatal("register returned empty id")
	}

	// Registration must not establish a session.
	resp = doJSON(t, client, http.MethodGet, srv.URL+"/api/session", "")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("session after register: got status %d, want 401", resp.StatusCode)
	}

	// Login with the registered credentials binds the session to the new id.
	login(t, client, srv.URL, "alice@example.com", "correct horse")
	resp = doJSON(t, client, http.MethodGet, srv.URL+"/api/session", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("session after login: got status %d, want 200", resp.StatusCode)
	}
	principal := decodeData[publicUserView](t, resp)
	if principal.ID != created["id"] {
		t.Errorf("session principal id = %q, want %q", principal.ID, created["id"])
	}
	if principal.IsAdmin {
		t.Error("freshly registered principal must not be admin")
	}
}

func TestRegisterValidation(t *testing.T) {
	_, srv, client := testServer(t)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"missing email", `{"password":"long enough pw"}`, http.StatusUnprocessableEntity},
		{"bad email", `{"email":"not-an-email","password":"long enough pw"}`, http.StatusUnprocessableEntity},
		{"missing password", `{"email":"bob@example.com"}`, http.StatusUnprocessableEntity},
		{"short password", `{"email":"bob@example.com","password":"short"}`, http.StatusUnprocessableEntity},
		{"malformed body", `{`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doJSON(t, client, http.MethodPost, srv.URL+"/api/register", tt.body)
			if resp.StatusCode != tt.want {
				t.Errorf("got status %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	db, srv, client := testServer(t)
	createTestUser(t, db, "taken@example.com", "some password", false)

	resp := doJSON(t, client, http.MethodPost, srv.URL+"/api/register",
		`{"email":"taken@example.com","password":"another password"}`)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("got status %d, want 409", resp.StatusCode)
	}
	if detail := decodeError(t, resp); detail.Code != "duplicate_email" {
		t.Errorf("error code = %q, want duplicate_email", detail.Code)
	}
}

// A wrong password and an unknown email must be indistinguishable to the
// caller.
func TestLoginInvalidCredentialsUniform(t *testing.T) {
	db, srv, client := testServer(t)
	createTestUser(t, db, "carol@example.com", "the real password", false)

	wrongPw := doJSON(t, client, http.MethodPost, srv.URL+"/api/login",
		`{"email":"carol@example.com","password":"wrong password"}`)
	unknownEmail := doJSON(t, client, http.MethodPost, srv.URL+"/api/login",
		`{"email":"nobody@example.com","password":"wrong password"}`)

	if wrongPw.StatusCode != http.StatusUnauthorized {
		t.Errorf("wrong password: got status %d, want 401", wrongPw.StatusCode)
	}
	if unknownEmail.StatusCode != wrongPw.StatusCode {
		t.Errorf("status codes differ: %d vs %d", wrongPw.StatusCode, unknownEmail.StatusCode)
	}

	d1 := decodeError(t, wrongPw)
	d2 := decodeError(t, unknownEmail)
	if d1.Code != d2.Code || d1.Message != d2.Message {
		t.Errorf("failure bodies differ: %+v vs %+v", d1, d2)
	}
	if d1.Code != "invalid_credentials" {
		t.Errorf("error code = %q, want invalid_credentials", d1.Code)
	}
}

func TestLogoutIdempotent(t *testing.T) {
	db, srv, client := testServer(t)
	createTestUser(t, db, "dave@example.com", "daves password", false)
	login(t, client, srv.URL, "dave@example.com", "daves password")

	for i := 0; i < 2; i++ {
		resp := doJSON(t, client, http.MethodPost, srv.URL+"/api/logout", "")
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("logout %d: got status %d, want 200", i+1, resp.StatusCode)
		}
	}

	resp := doJSON(t, client, http.MethodGet, srv.URL+"/api/session", "")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("session after logout: got status %d, want 401", resp.StatusCode)
	}
}

func TestSetAdmin(t *testing.T) {
	db, srv, client := testServer(t)
	createTestUser(t, db, "root@example.com", "admin password", true)
	target := createTestUser(t, db, "mortal@example.com", "user password", false)
	login(t, client, srv.URL, "root@example.com", "admin password")

	resp := doJSON(t, client, http.MethodPost, srv.URL+"/api/set-admin/"+target.ID, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("got status %d, want 200", resp.StatusCode)
	}
	promoted := decodeData[publicUserView](t, resp)
	if !promoted.IsAdmin {
		t.Error("promoted user is not admin")
	}

	resp = doJSON(t, client, http.MethodPost, srv.URL+"/api/set-admin/no-such-id", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown id: got status %d, want 404", resp.StatusCode)
	}
}

func TestSetAdminForbiddenForRegularUser(t *testing.T) {
	db, srv, client := testServer(t)
	createTestUser(t, db, "plain@example.com", "plain password", false)
	target := createTestUser(t, db, "victim@example.com", "victim password", false)
	login(t, client, srv.URL, "plain@example.com", "plain password")

	resp := doJSON(t, client, http.MethodPost, srv.URL+"/api/set-admin/"+target.ID, "")
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("got status %d, want 403", resp.StatusCode)
	}
}

// A principal deleted behind a live session must surface as unauthenticated
// on the next call, not as a crash or a stale success.
func TestStaleSessionInvalidated(t *testing.T) {
	db, srv, client := testServer(t)
	user := createTestUser(t, db, "ghost@example.com", "ghost password", false)
	login(t, client, srv.URL, "ghost@example.com", "ghost password")

	if _, err := db.Exec(`DELETE FROM users WHERE id = ?`, user.ID); err != nil {
		t.Fatalf("failed to delete user: %v", err)
	}

	resp := doJSON(t, client, http.MethodGet, srv.URL+"/api/session", "")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("got status %d, want 401", resp.StatusCode)
	}
}
