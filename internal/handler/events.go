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

	"github.com/olegiv/oins-go/internal/middleware"
	"github.com/olegiv/oins-go/internal/store"
)

// EventHandler handles the shared claim event catalog. All mutations are
// admin-gated at the router, independent of any ownership chain.
type EventHandler struct {
	queries *store.Queries
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(db *sql.DB) *EventHandler {
	return &EventHandler{queries: store.New(db)}
}

type eventRequest struct {
	Text  string `json:"text"`
	Price int64  `json:"price"`
}

func (req eventRequest) validate() map[string]string {
	fieldErrors := make(map[string]string)
	if len(req.Text) < 3 {
		fieldErrors["text"] = "text must be at least 3 characters"
	}
	if req.Price < 1 {
		fieldErrors["price"] = "price must be at least 1"
	}
	if len(fieldErrors) > 0 {
		return fieldErrors
	}
	return nil
}

// List handles GET /api/events.
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	events, err := h.queries.ListEvents(r.Context())
	if err != nil {
		slog.Error("listing events", "error", err)
		WriteInternalError(w, "Failed to list events")
		return
	}
	WriteSuccess(w, events)
}

// Create handles POST /api/events.
func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}
	if fieldErrors := req.validate(); fieldErrors != nil {
		WriteValidationError(w, fieldErrors)
		return
	}

	now := time.Now()
	event, err := h.queries.CreateEvent(r.Context(), store.CreateEventParams{
		ID:        uuid.NewString(),
		Text:      req.Text,
		Price:     req.Price,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		slog.Error("creating event", "error", err)
		WriteInternalError(w, "Failed to create event")
		return
	}

	slog.Info("event created", "event_id", event.ID, "created_by", middleware.GetUserID(r))
	WriteCreated(w, event)
}

// Update handles PUT /api/events/{id}. Events are small, so the update is a
// full overwrite rather than a merge.
func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}
	if fieldErrors := req.validate(); fieldErrors != nil {
		WriteValidationError(w, fieldErrors)
		return
	}

	event, err := h.queries.UpdateEvent(r.Context(), store.UpdateEventParams{
		Text:      req.Text,
		Price:     req.Price,
		UpdatedAt: time.Now(),
		ID:        IDParam(r),
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "Event not found")
			return
		}
		slog.Error("updating event", "error", err)
		WriteInternalError(w, "Failed to update event")
		return
	}
	WriteSuccess(w, event)
}

// Delete handles DELETE /api/events/{id}. Insurances referencing the event
// are detached by the store, never left pointing at a missing record.
func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := IDParam(r)
	if _, err := h.queries.GetEventByID(r.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "Event not found")
			return
		}
		slog.Error("loading event", "error", err)
		WriteInternalError(w, "Failed to delete event")
		return
	}

	if err := h.queries.DeleteEvent(r.Context(), id); err != nil {
		slog.Error("deleting event", "error", err, "event_id", id)
		WriteInternalError(w, "Failed to delete event")
		return
	}

	slog.Info("event deleted", "event_id", id, "deleted_by", middleware.GetUserID(r))
	WriteSuccess(w, map[string]string{"status": "deleted"})
}
