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

	"github.com/google/uuid"

	"github.com/olegiv/oins-go/internal/guard"
	"github.com/olegiv/oins-go/internal/middleware"
	"github.com/olegiv/oins-go/internal/store"
)

// InsuredHandler handles insured person endpoints.
type InsuredHandler struct {
	queries *store.Queries
}

// NewInsuredHandler creates a new InsuredHandler.
func NewInsuredHandler(db *sql.DB) *InsuredHandler {
	return &InsuredHandler{queries: store.New(db)}
}

type createInsuredRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Street    string `json:"street"`
	City      string `json:"city"`
	Phone     string `json:"phone"`
}

func (req createInsuredRequest) validate() map[string]string {
	fieldErrors := make(map[string]string)
	if len(req.FirstName) < 3 {
		fieldErrors["first_name"] = "first_name must be at least 3 characters"
	}
	if len(req.LastName) < 3 {
		fieldErrors["last_name"] = "last_name must be at least 3 characters"
	}
	if len(fieldErrors) > 0 {
		return fieldErrors
	}
	return nil
}

// Create handles POST /api/insured. Self-service only: the new record is
// always owned by the calling user, and the caller cannot be an admin.
func (h *InsuredHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if !authorize(w, guard.RequireNonAdmin(user)) {
		return
	}

	var req createInsuredRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}
	if fieldErrors := req.validate(); fieldErrors != nil {
		WriteValidationError(w, fieldErrors)
		return
	}

	now := time.Now()
	insured, err := h.queries.CreateInsured(r.Context(), store.CreateInsuredParams{
		ID:        uuid.NewString(),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Street:    req.Street,
		City:      req.City,
		Phone:     req.Phone,
		UserID:    user.ID,
		IsAdmin:   user.IsAdmin,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		slog.Error("creating insured", "error", err, "user_id", user.ID)
		WriteInternalError(w, "Failed to create insured")
		return
	}

	slog.Info("insured created", "insured_id", insured.ID, "user_id", user.ID)
	WriteCreated(w, insured)
}

// Get handles GET /api/insured/{id}. The owner reference comes from the
// freshly read record, never from the caller.
func (h *InsuredHandler) Get(w http.ResponseWriter, r *http.Request) {
	insured, ok := h.fetchAuthorized(w, r)
	if !ok {
		return
	}
	WriteSuccess(w, insured)
}

// ListAll handles GET /api/all-insured. Admin only.
func (h *InsuredHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	insureds, err := h.queries.ListInsureds(r.Context())
	if err != nil {
		slog.Error("listing insureds", "error", err)
		WriteInternalError(w, "Failed to list insureds")
		return
	}
	WriteSuccess(w, insureds)
}

// ListInsurances handles GET /api/insured/{id}/insurances.
func (h *InsuredHandler) ListInsurances(w http.ResponseWriter, r *http.Request) {
	insured, ok := h.fetchAuthorized(w, r)
	if !ok {
		return
	}

	insurances, err := h.queries.ListInsurancesByInsured(r.Context(), insured.ID)
	if err != nil {
		slog.Error("listing insurances for insured", "error", err, "insured_id", insured.ID)
		WriteInternalError(w, "Failed to list insurances")
		return
	}
	WriteSuccess(w, insurances)
}

// insuredDetails is an insured with its policy graph inlined.
type insuredDetails struct {
	store.Insured
	Insurances []insuranceDetails `json:"insurances"`
}

// insuranceDetails is a policy with its attached claim events inlined.
type insuranceDetails struct {
	store.Insurance
	Events []store.Event `json:"events"`
}

// DetailsWithInsurances handles GET /api/insured/{id}/details-with-insurances.
// Children are read explicitly level by level, parent then policies then
// events, in place of any implicit graph traversal.
func (h *InsuredHandler) DetailsWithInsurances(w http.ResponseWriter, r *http.Request) {
	insured, ok := h.fetchAuthorized(w, r)
	if !ok {
		return
	}

	insurances, err := h.queries.ListInsurancesByInsured(r.Context(), insured.ID)
	if err != nil {
		slog.Error("listing insurances for insured", "error", err, "insured_id", insured.ID)
		WriteInternalError(w, "Failed to load insured details")
		return
	}

	details := insuredDetails{Insured: insured, Insurances: make([]insuranceDetails, 0, len(insurances))}
	for _, ins := range insurances {
		events, err := h.queries.ListEventsForInsurance(r.Context(), ins.ID)
		if err != nil {
			slog.Error("listing events for insurance", "error", err, "insurance_id", ins.ID)
			WriteInternalError(w, "Failed to load insured details")
			return
		}
		if events == nil {
			events = []store.Event{}
		}
		details.Insurances = append(details.Insurances, insuranceDetails{Insurance: ins, Events: events})
	}

	WriteSuccess(w, details)
}

type updateInsuredRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Street    *string `json:"street"`
	City      *string `json:"city"`
	Phone     *string `json:"phone"`
}

// Update handles PUT /api/insured/{id}. Partial merge: absent fields keep
// their stored values, and the owner reference is never touched.
func (h *InsuredHandler) Update(w http.ResponseWriter, r *http.Request) {
	insured, ok := h.fetchAuthorized(w, r)
	if !ok {
		return
	}

	var req updateInsuredRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}

	params := store.UpdateInsuredParams{
		FirstName: insured.FirstName,
		LastName:  insured.LastName,
		Street:    insured.Street,
		City:      insured.City,
		Phone:     insured.Phone,
		UpdatedAt: time.Now(),
		ID:        insured.ID,
	}
	if req.FirstName != nil {
		params.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		params.LastName = *req.LastName
	}
	if req.Street != nil {
		params.Street = *req.Street
	}
	if req.City != nil {
		params.City = *req.City
	}
	if req.Phone != nil {
		params.Phone = *req.Phone
	}

	fieldErrors := make(map[string]string)
	if len(params.FirstName) < 3 {
		fieldErrors["first_name"] = "first_name must be at least 3 characters"
	}
	if len(params.LastName) < 3 {
		fieldErrors["last_name"] = "last_name must be at least 3 characters"
	}
	if len(fieldErrors) > 0 {
		WriteValidationError(w, fieldErrors)
		return
	}

	updated, err := h.queries.UpdateInsured(r.Context(), params)
	if err != nil {
		slog.Error("updating insured", "error", err, "insured_id", insured.ID)
		WriteInternalError(w, "Failed to update insured")
		return
	}
	WriteSuccess(w, updated)
}

// Delete handles DELETE /api/insured/{id}. Admin only. Deletion is rejected
// while the insured still holds policies.
func (h *InsuredHandler) Delete(w http.ResponseWriter, r *http.Request) {
	insured, err := h.queries.GetInsuredByID(r.Context(), IDParam(r))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "Insured not found")
			return
		}
		slog.Error("loading insured", "error", err)
		WriteInternalError(w, "Failed to delete insured")
		return
	}

	count, err := h.queries.CountInsurancesByInsured(r.Context(), insured.ID)
	if err != nil {
		slog.Error("counting insurances", "error", err, "insured_id", insured.ID)
		WriteInternalError(w, "Failed to delete insured")
		return
	}
	if count > 0 {
		WriteConflict(w, "insurances_exist", "Cannot delete an insured person with existing insurances")
		return
	}

	if err := h.queries.DeleteInsured(r.Context(), insured.ID); err != nil {
		slog.Error("deleting insured", "error", err, "insured_id", insured.ID)
		WriteInternalError(w, "Failed to delete insured")
		return
	}

	slog.Info("insured deleted", "insured_id", insured.ID, "deleted_by", middleware.GetUserID(r))
	WriteSuccess(w, map[string]string{"status": "deleted"})
}

// fetchAuthorized reads the insured named by the path and applies the
// self-or-admin rule against its stored owner. Writes the failure response
// and reports false when the request may not proceed.
func (h *InsuredHandler) fetchAuthorized(w http.ResponseWriter, r *http.Request) (store.Insured, bool) {
	insured, err := h.queries.GetInsuredByID(r.Context(), IDParam(r))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "Insured not found")
			return store.Insured{}, false
		}
		slog.Error("loading insured", "error", err)
		WriteInternalError(w, "Failed to load insured")
		return store.Insured{}, false
	}

	if !authorize(w, guard.RequireSelfOrAdmin(middleware.GetUser(r), insured.UserID)) {
		return store.Insured{}, false
	}
	return insured, true
}
