// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/olegiv/oins-go/internal/service"
)

// ReportHandler exposes the full-graph report. Admin only.
type ReportHandler struct {
	reports *service.ReportService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(db *sql.DB) *ReportHandler {
	return &ReportHandler{reports: service.NewReportService(db)}
}

// Generate handles GET /api/generate-report.
func (h *ReportHandler) Generate(w http.ResponseWriter, r *http.Request) {
	rows, err := h.reports.Generate(r.Context())
	if err != nil {
		slog.Error("generating report", "error", err)
		WriteInternalError(w, "Failed to generate report")
		return
	}
	WriteSuccess(w, rows)
}
