// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"testing"

	"github.com/olegiv/oins-go/internal/service"
)

func TestGenerateReportAdminOnly(t *testing.T) {
	db, srv, client := testServer(t)
	createTestUser(t, db, "plain@example.com", "plain password", false)
	login(t, client, srv.URL, "plain@example.com", "plain password")

	resp := doJSON(t, client, http.MethodGet, srv.URL+"/api/generate-report", "")
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("got status %d, want 403", resp.StatusCode)
	}
}

// Two insureds, each with one policy, each with one event: the report must
// mirror that shape exactly, with the fixture prices carried through.
func TestGenerateReportCascade(t *testing.T) {
	db, srv, client := testServer(t)
	owner := createTestUser(t, db, "owner@example.com", "owner password", false)
	createTestUser(t, db, "root@example.com", "admin password", true)

	first := createTestInsured(t, db, owner.ID, "Karel", "Svoboda")
	second := createTestInsured(t, db, owner.ID, "Jana", "Nováková")
	firstPolicy := createTestInsurance(t, db, first.ID, "life", 5000)
	secondPolicy := createTestInsurance(t, db, second.ID, "travel", 800)
	firstEvent := createTestEvent(t, db, "broken window", 100)
	secondEvent := createTestEvent(t, db, "lost luggage", 200)
	attachTestEvent(t, db, firstPolicy.ID, firstEvent.ID)
	attachTestEvent(t, db, secondPolicy.ID, secondEvent.ID)

	login(t, client, srv.URL, "root@example.com", "admin password")
	resp := doJSON(t, client, http.MethodGet, srv.URL+"/api/generate-report", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("got status %d, want 200", resp.StatusCode)
	}

	rows := decodeData[[]service.ReportRow](t, resp)
	if len(rows) != 2 {
		t.Fatalf("got %d top-level rows, want 2", len(rows))
	}

	prices := make(map[string]int64)
	for _, row := range rows {
		if len(row.Insurances) != 1 {
			t.Fatalf("insured %s: got %d insurances, want 1", row.InsuredID, len(row.Insurances))
		}
		ins := row.Insurances[0]
		if len(ins.Events) != 1 {
			t.Fatalf("insurance %s: got %d events, want 1", ins.InsuranceID, len(ins.Events))
		}
		prices[row.InsuredID] = ins.Events[0].Price
	}
	if prices[first.ID] != 100 {
		t.Errorf("first insured event price = %d, want 100", prices[first.ID])
	}
	if prices[second.ID] != 200 {
		t.Errorf("second insured event price = %d, want 200", prices[second.ID])
	}
}

// A report over an empty graph is an empty list, not null.
func TestGenerateReportEmpty(t *testing.T) {
	db, srv, client := testServer(t)
	createTestUser(t, db, "root@example.com", "admin password", true)
	login(t, client, srv.URL, "root@example.com", "admin password")

	resp := doJSON(t, client, http.MethodGet, srv.URL+"/api/generate-report", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("got status %d, want 200", resp.StatusCode)
	}
	rows := decodeData[[]service.ReportRow](t, resp)
	if rows == nil {
		t.Error("report is null, want empty list")
	}
	if len(rows) != 0 {
		t.Errorf("got %d rows, want 0", len(rows))
	}
}
