// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/olegiv/oins-go/internal/auth"
	"github.com/olegiv/oins-go/internal/store"
)

// testDB creates an in-memory SQLite database with the full schema.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:?_pragma=foreign_keys(1)")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	schema := `
		CREATE TABLE users (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			is_admin BOOLEAN NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		);

		CREATE TABLE insureds (
			id TEXT PRIMARY KEY,
			first_name TEXT NOT NULL,
			last_name TEXT NOT NULL,
			street TEXT NOT NULL DEFAULT '',
			city TEXT NOT NULL DEFAULT '',
			phone TEXT NOT NULL DEFAULT '',
			user_id TEXT NOT NULL REFERENCES users(id),
			is_admin BOOLEAN NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		);

		CREATE TABLE insurances (
			id TEXT PRIMARY KEY,
			type TEXT NOT NULL,
			amount INTEGER NOT NULL,
			valid_from DATETIME NOT NULL,
			valid_to DATETIME NOT NULL,
			insured_id TEXT NOT NULL REFERENCES insureds(id),
			is_paid BOOLEAN NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		);

		CREATE TABLE events (
			id TEXT PRIMARY KEY,
			text TEXT NOT NULL,
			price INTEGER NOT NULL CHECK (price > 0),
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		);

		CREATE TABLE insurance_events (
			insurance_id TEXT NOT NULL REFERENCES insurances(id) ON DELETE CASCADE,
			event_id TEXT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
			created_at DATETIME NOT NULL,
			PRIMARY KEY (insurance_id, event_id)
		);
	`

	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("failed to create test schema: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Close()
	})

	return db
}

// testServer starts an HTTP server with the full route tree and a
// cookie-carrying client, so requests pass through session loading and the
// authorization middleware exactly as in production.
func testServer(t *testing.T) (*sql.DB, *httptest.Server, *http.Client) {
	t.Helper()

	db := testDB(t)
	sm := scs.New()
	srv := httptest.NewServer(Routes(sm, db, nil))
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("failed to create cookie jar: %v", err)
	}
	client := &http.Client{Jar: jar}

	return db, srv, client
}

// newClient creates an extra cookie-carrying client for a second principal.
func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("failed to create cookie jar: %v", err)
	}
	return &http.Client{Jar: jar}
}

// createTestUser inserts a user with a real password hash.
func createTestUser(t *testing.T, db *sql.DB, email, password string, isAdmin bool) store.User {
	t.Helper()
	now := time.Now()

	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	id := uuid.NewString()
	if _, err := db.Exec(
		`INSERT INTO users (id, email, password_hash, is_admin, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, email, hash, isAdmin, now, now,
	); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}

	return store.User{ID: id, Email: email, PasswordHash: hash, IsAdmin: isAdmin, CreatedAt: now, UpdatedAt: now}
}

// createTestInsured inserts an insured person owned by the given user.
func createTestInsured(t *testing.T, db *sql.DB, userID, firstName, lastName string) store.Insured {
	t.Helper()
	now := time.Now()

	id := uuid.NewString()
	if _, err := db.Exec(
		`INSERT INTO insureds (id, first_name, last_name, user_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, firstName, lastName, userID, now, now,
	); err != nil {
		t.Fatalf("failed to create test insured: %v", err)
	}

	return store.Insured{ID: id, FirstName: firstName, LastName: lastName, UserID: userID, CreatedAt: now, UpdatedAt: now}
}

// createTestInsurance inserts an unpaid policy for the given insured.
func createTestInsurance(t *testing.T, db *sql.DB, insuredID, insuranceType string, amount int64) store.Insurance {
	t.Helper()
	now := time.Now()
	validFrom := now
	validTo := now.AddDate(1, 0, 0)

	id := uuid.NewString()
	if _, err := db.Exec(
		`INSERT INTO insurances (id, type, amount, valid_from, valid_to, insured_id, is_paid, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, 0, ?, ?)`,
		id, insuranceType, amount, validFrom, validTo, insuredID, now, now,
	); err != nil {
		t.Fatalf("failed to create test insurance: %v", err)
	}

	return store.Insurance{
		ID: id, Type: insuranceType, Amount: amount,
		ValidFrom: validFrom, ValidTo: validTo, InsuredID: insuredID,
		CreatedAt: now, UpdatedAt: now,
	}
}

// createTestEvent inserts a claim event into the catalog.
func createTestEvent(t *testing.T, db *sql.DB, text string, price int64) store.Event {
	t.Helper()
	now := time.Now()

	id := uuid.NewString()
	if _, err := db.Exec(
		`INSERT INTO events (id, text, price, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		id, text, price, now, now,
	); err != nil {
		t.Fatalf("failed to create test event: %v", err)
	}

	return store.Event{ID: id, Text: text, Price: price, CreatedAt: now, UpdatedAt: now}
}

// attachTestEvent links an event to an insurance directly in the database.
func attachTestEvent(t *testing.T, db *sql.DB, insuranceID, eventID string) {
	t.Helper()
	if _, err := db.Exec(
		`INSERT INTO insurance_events (insurance_id, event_id, created_at) VALUES (?, ?, ?)`,
		insuranceID, eventID, time.Now(),
	); err != nil {
		t.Fatalf("failed to attach test event: %v", err)
	}
}

// doJSON issues a request with a JSON body through the given client.
func doJSON(t *testing.T, client *http.Client, method, url, body string) *http.Response {
	t.Helper()

	var req *http.Request
	var err error
	if body != "" {
		req, err = http.NewRequest(method, url, strings.NewReader(body))
	} else {
		req, err = http.NewRequest(method, url, nil)
	}
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

// login authenticates the client as the given credentials and fails the test
// on a non-200 response.
func login(t *testing.T, client *http.Client, baseURL, email, password string) {
	t.Helper()
	resp := doJSON(t, client, http.MethodPost, baseURL+"/api/login",
		`{"email":"`+email+`","password":"`+password+`"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login as %s: got status %d, want 200", email, resp.StatusCode)
	}
}

// dataResponse is a generic wrapper for API responses with a "data" field.
type dataResponse[T any] struct {
	Data T `json:"data"`
}

// decodeData decodes a JSON response body into the data field.
func decodeData[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var wrapper dataResponse[T]
	if err := json.NewDecoder(resp.Body).Decode(&wrapper); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return wrapper.Data
}

// decodeError decodes a JSON error response body.
func decodeError(t *testing.T, resp *http.Response) ErrorDetail {
	t.Helper()
	var wrapper ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&wrapper); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	return wrapper.Error
}
