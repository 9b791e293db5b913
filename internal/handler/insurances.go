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

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/olegiv/oins-go/internal/guard"
	"github.com/olegiv/oins-go/internal/middleware"
	"github.com/olegiv/oins-go/internal/store"
)

// InsuranceHandler handles insurance policy endpoints.
type InsuranceHandler struct {
	queries *store.Queries
}

// NewInsuranceHandler creates a new InsuranceHandler.
func NewInsuranceHandler(db *sql.DB) *InsuranceHandler {
	return &InsuranceHandler{queries: store.New(db)}
}

type createInsuranceRequest struct {
	Type      string `json:"type"`
	Amount    int64  `json:"amount"`
	ValidFrom string `json:"valid_from"`
	ValidTo   string `json:"valid_to"`
}

// Create handles POST /api/insured/{id}/insurances. The owning insured comes
// from the path only; any insured reference in the body is ignored, so a
// caller cannot spoof ownership through the payload. New policies start
// unpaid.
func (h *InsuranceHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if !authorize(w, guard.RequireNonAdmin(user)) {
		return
	}

	insured, err := h.queries.GetInsuredByID(r.Context(), IDParam(r))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "Insured not found")
			return
		}
		slog.Error("loading insured", "error", err)
		WriteInternalError(w, "Failed to create insurance")
		return
	}
	if !authorize(w, guard.RequireSelfOrAdmin(user, insured.UserID)) {
		return
	}

	var req createInsuranceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}

	fieldErrors := make(map[string]string)
	if len(req.Type) < 3 {
		fieldErrors["type"] = "type must be at least 3 characters"
	}
	if req.Amount < 1 {
		fieldErrors["amount"] = "amount must be at least 1"
	}
	validFrom, err := ParseTimestamp(req.ValidFrom)
	if err != nil {
		fieldErrors["valid_from"] = "valid_from must be an RFC3339 timestamp"
	}
	validTo, err := ParseTimestamp(req.ValidTo)
	if err != nil {
		fieldErrors["valid_to"] = "valid_to must be an RFC3339 timestamp"
	}
	if len(fieldErrors) == 0 && validFrom.After(validTo) {
		fieldErrors["valid_from"] = "valid_from must not be after valid_to"
	}
	if len(fieldErrors) > 0 {
		WriteValidationError(w, fieldErrors)
		return
	}

	now := time.Now()
	insurance, err := h.queries.CreateInsurance(r.Context(), store.CreateInsuranceParams{
		ID:        uuid.NewString(),
		Type:      req.Type,
		Amount:    req.Amount,
		ValidFrom: validFrom,
		ValidTo:   validTo,
		InsuredID: insured.ID,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		slog.Error("creating insurance", "error", err, "insured_id", insured.ID)
		WriteInternalError(w, "Failed to create insurance")
		return
	}

	slog.Info("insurance created", "insurance_id", insurance.ID, "insured_id", insured.ID)
	WriteCreated(w, insurance)
}

// ListAll handles GET /api/all-insurances. Admin only.
func (h *InsuranceHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	insurances, err := h.queries.ListInsurances(r.Context())
	if err != nil {
		slog.Error("listing insurances", "error", err)
		WriteInternalError(w, "Failed to list insurances")
		return
	}
	WriteSuccess(w, insurances)
}

type updateInsuranceRequest struct {
	Type      *string `json:"type"`
	Amount    *int64  `json:"amount"`
	ValidFrom *string `json:"valid_from"`
	ValidTo   *string `json:"valid_to"`
}

// Update handles PUT /api/insurances/{id}. Partial merge; the owning insured
// reference and the paid flag are never mutable here. The validity window is
// checked on the merged values, so a partial update cannot invert it.
func (h *InsuranceHandler) Update(w http.ResponseWriter, r *http.Request) {
	insurance, ok := h.fetchAuthorized(w, r)
	if !ok {
		return
	}

	var req updateInsuranceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}

	params := store.UpdateInsuranceParams{
		Type:      insurance.Type,
		Amount:    insurance.Amount,
		ValidFrom: insurance.ValidFrom,
		ValidTo:   insurance.ValidTo,
		UpdatedAt: time.Now(),
		ID:        insurance.ID,
	}
	fieldErrors := make(map[string]string)
	if req.Type != nil {
		params.Type = *req.Type
	}
	if req.Amount != nil {
		params.Amount = *req.Amount
	}
	if req.ValidFrom != nil {
		t, err := ParseTimestamp(*req.ValidFrom)
		if err != nil {
			fieldErrors["valid_from"] = "valid_from must be an RFC3339 timestamp"
		} else {
			params.ValidFrom = t
		}
	}
	if req.ValidTo != nil {
		t, err := ParseTimestamp(*req.ValidTo)
		if err != nil {
			fieldErrors["valid_to"] = "valid_to must be an RFC3339 timestamp"
		} else {
			params.ValidTo = t
		}
	}
	if len(params.Type) < 3 {
		fieldErrors["type"] = "type must be at least 3 characters"
	}
	if params.Amount < 1 {
		fieldErrors["amount"] = "amount must be at least 1"
	}
	if len(fieldErrors) == 0 && params.ValidFrom.After(params.ValidTo) {
		fieldErrors["valid_from"] = "valid_from must not be after valid_to"
	}
	if len(fieldErrors) > 0 {
		WriteValidationError(w, fieldErrors)
		return
	}

	updated, err := h.queries.UpdateInsurance(r.Context(), params)
	if err != nil {
		slog.Error("updating insurance", "error", err, "insurance_id", insurance.ID)
		WriteInternalError(w, "Failed to update insurance")
		return
	}
	WriteSuccess(w, updated)
}

// Delete handles DELETE /api/insurances/{id}. Self-or-admin; event
// attachments go with the policy.
func (h *InsuranceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	insurance, ok := h.fetchAuthorized(w, r)
	if !ok {
		return
	}

	if err := h.queries.DeleteInsurance(r.Context(), insurance.ID); err != nil {
		slog.Error("deleting insurance", "error", err, "insurance_id", insurance.ID)
		WriteInternalError(w, "Failed to delete insurance")
		return
	}

	slog.Info("insurance deleted", "insurance_id", insurance.ID, "deleted_by", middleware.GetUserID(r))
	WriteSuccess(w, map[string]string{"status": "deleted"})
}

// MarkPaid handles PUT /api/insurances/{id}/mark-as-paid. The transition is
// one-way and idempotent: marking a paid policy returns the same row again.
func (h *InsuranceHandler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	insurance, ok := h.fetchAuthorized(w, r)
	if !ok {
		return
	}

	updated, err := h.queries.MarkInsurancePaid(r.Context(), store.MarkInsurancePaidParams{
		UpdatedAt: time.Now(),
		ID:        insurance.ID,
	})
	if err != nil {
		slog.Error("marking insurance paid", "error", err, "insurance_id", insurance.ID)
		WriteInternalError(w, "Failed to mark insurance as paid")
		return
	}
	WriteSuccess(w, updated)
}

// AttachEvent handles PUT /api/insurances/{id}/events/{eventID}. The event
// must exist in the catalog; attaching an already-attached event is a no-op.
func (h *InsuranceHandler) AttachEvent(w http.ResponseWriter, r *http.Request) {
	insurance, ok := h.fetchAuthorized(w, r)
	if !ok {
		return
	}

	eventID := chi.URLParam(r, "eventID")
	event, err := h.queries.GetEventByID(r.Context(), eventID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "Event not found")
			return
		}
		slog.Error("loading event", "error", err, "event_id", eventID)
		WriteInternalError(w, "Failed to attach event")
		return
	}

	err = h.queries.AttachEventToInsurance(r.Context(), store.AttachEventToInsuranceParams{
		InsuranceID: insurance.ID,
		EventID:     event.ID,
		CreatedAt:   time.Now(),
	})
	if err != nil {
		slog.Error("attaching event", "error", err, "insurance_id", insurance.ID, "event_id", event.ID)
		WriteInternalError(w, "Failed to attach event")
		return
	}
	WriteSuccess(w, map[string]string{"status": "attached"})
}

// DetachEvent handles DELETE /api/insurances/{id}/events/{eventID}.
// Idempotent; detaching an unattached event succeeds.
func (h *InsuranceHandler) DetachEvent(w http.ResponseWriter, r *http.Request) {
	insurance, ok := h.fetchAuthorized(w, r)
	if !ok {
		return
	}

	err := h.queries.DetachEventFromInsurance(r.Context(), store.DetachEventFromInsuranceParams{
		InsuranceID: insurance.ID,
		EventID:     chi.URLParam(r, "eventID"),
	})
	if err != nil {
		slog.Error("detaching event", "error", err, "insurance_id", insurance.ID)
		WriteInternalError(w, "Failed to detach event")
		return
	}
	WriteSuccess(w, map[string]string{"status": "detached"})
}

// fetchAuthorized reads the policy named by the path, resolves its parent
// insured, and applies the self-or-admin rule against the parent's stored
// owner. Ownership is always taken from the two freshly read records.
func (h *InsuranceHandler) fetchAuthorized(w http.ResponseWriter, r *http.Request) (store.Insurance, bool) {
	insurance, err := h.queries.GetInsuranceByID(r.Context(), IDParam(r))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "Insurance not found")
			return store.Insurance{}, false
		}
		slog.Error("loading insurance", "error", err)
		WriteInternalError(w, "Failed to load insurance")
		return store.Insurance{}, false
	}

	insured, err := h.queries.GetInsuredByID(r.Context(), insurance.InsuredID)
	if err != nil {
		// A policy whose parent vanished mid-flight reads as gone.
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "Insurance not found")
			return store.Insurance{}, false
		}
		slog.Error("loading parent insured", "error", err, "insurance_id", insurance.ID)
		WriteInternalError(w, "Failed to load insurance")
		return store.Insurance{}, false
	}

	if !authorize(w, guard.RequireSelfOrAdmin(middleware.GetUser(r), insured.UserID)) {
		return store.Insurance{}, false
	}
	return insurance, true
}
