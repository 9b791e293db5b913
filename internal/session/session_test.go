// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package session

import (
	"database/sql"
	"net/http"
	"testing"
	"time"

	_ "modernc.org/sqlite"
	"github.com/stretchr/testify/assert"
)

func sessionTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if _, err := db.Exec(`CREATE TABLE sessions (
		token TEXT PRIMARY KEY,
		data BLOB NOT NULL,
		expiry REAL NOT NULL
	)`); err != nil {
		t.Fatalf("failed to create sessions table: %v", err)
	}
	return db
}

func TestNewDefaults(t *testing.T) {
	sm := New(sessionTestDB(t), true)

	assert.Equal(t, 24*time.Hour, sm.Lifetime)
	assert.True(t, sm.Cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, sm.Cookie.SameSite)
	assert.False(t, sm.Cookie.Secure, "development mode must not require secure cookies")
}

func TestNewProductionSecureCookies(t *testing.T) {
	sm := New(sessionTestDB(t), false)
	assert.True(t, sm.Cookie.Secure)
}
