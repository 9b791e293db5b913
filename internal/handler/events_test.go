// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"testing"

	"github.com/olegiv/oins-go/internal/store"
)

func TestEventMutationsAdminOnly(t *testing.T) {
	db, srv, client := testServer(t)
	createTestUser(t, db, "plain@example.com", "plain password", false)
	event := createTestEvent(t, db, "hailstorm", 300)
	login(t, client, srv.URL, "plain@example.com", "plain password")

	paths := []struct {
		method string
		path   string
		body   string
	}{
		{http.MethodPost, "/api/events", `{"text":"flood","price":500}`},
		{http.MethodPut, "/api/events/" + event.ID, `{"text":"flood","price":500}`},
		{http.MethodDelete, "/api/events/" + event.ID, ""},
	}

	for _, tt := range paths {
		resp := doJSON(t, client, tt.method, srv.URL+tt.path, tt.body)
		if resp.StatusCode != http.StatusForbidden {
			t.Errorf("%s %s: got status %d, want 403", tt.method, tt.path, resp.StatusCode)
		}
	}

	// Reading the catalog is open to any authenticated principal.
	resp := doJSON(t, client, http.MethodGet, srv.URL+"/api/events", "")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("list: got status %d, want 200", resp.StatusCode)
	}
}

// Price zero is rejected, price one is the smallest accepted value.
func TestCreateEventPriceBoundary(t *testing.T) {
	db, srv, client := testServer(t)
	createTestUser(t, db, "root@example.com", "admin password", true)
	login(t, client, srv.URL, "root@example.com", "admin password")

	resp := doJSON(t, client, http.MethodPost, srv.URL+"/api/events",
		`{"text":"flood","price":0}`)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("price 0: got status %d, want 422", resp.StatusCode)
	}

	resp = doJSON(t, client, http.MethodPost, srv.URL+"/api/events",
		`{"text":"flood","price":1}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("price 1: got status %d, want 201", resp.StatusCode)
	}
	event := decodeData[store.Event](t, resp)
	if event.Price != 1 {
		t.Errorf("price = %d, want 1", event.Price)
	}
}

func TestUpdateAndDeleteEvent(t *testing.T) {
	db, srv, client := testServer(t)
	createTestUser(t, db, "root@example.com", "admin password", true)
	event := createTestEvent(t, db, "hailstorm", 300)
	login(t, client, srv.URL, "root@example.com", "admin password")

	resp := doJSON(t, client, http.MethodPut, srv.URL+"/api/events/"+event.ID,
		`{"text":"severe hailstorm","price":450}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update: got status %d, want 200", resp.StatusCode)
	}
	updated := decodeData[store.Event](t, resp)
	if updated.Text != "severe hailstorm" || updated.Price != 450 {
		t.Errorf("unexpected event after update: %+v", updated)
	}

	resp = doJSON(t, client, http.MethodPut, srv.URL+"/api/events/no-such-id",
		`{"text":"severe hailstorm","price":450}`)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("update unknown: got status %d, want 404", resp.StatusCode)
	}

	resp = doJSON(t, client, http.MethodDelete, srv.URL+"/api/events/"+event.ID, "")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("delete: got status %d, want 200", resp.StatusCode)
	}

	resp = doJSON(t, client, http.MethodDelete, srv.URL+"/api/events/"+event.ID, "")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("delete again: got status %d, want 404", resp.StatusCode)
	}
}

// Deleting a catalog event detaches it from every policy referencing it.
func TestDeleteEventDetachesFromPolicies(t *testing.T) {
	db, srv, client := testServer(t)
	owner := createTestUser(t, db, "owner@example.com", "owner password", false)
	createTestUser(t, db, "root@example.com", "admin password", true)
	insured := createTestInsured(t, db, owner.ID, "Karel", "Svoboda")
	policy := createTestInsurance(t, db, insured.ID, "life", 5000)
	event := createTestEvent(t, db, "hailstorm", 300)
	attachTestEvent(t, db, policy.ID, event.ID)

	login(t, client, srv.URL, "root@example.com", "admin password")
	resp := doJSON(t, client, http.MethodDelete, srv.URL+"/api/events/"+event.ID, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete: got status %d, want 200", resp.StatusCode)
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM insurance_events WHERE event_id = ?`, event.ID).Scan(&count); err != nil {
		t.Fatalf("counting attachments: %v", err)
	}
	if count != 0 {
		t.Errorf("attachment rows remaining = %d, want 0", count)
	}
}
