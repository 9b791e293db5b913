// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service holds read-side aggregation over the entity graph.
package service

import (
	"context"
	"database/sql"

	"github.com/olegiv/oins-go/internal/store"
)

// ReportService builds the denormalized insured/insurance/event report.
type ReportService struct {
	queries *store.Queries
}

// NewReportService creates a new ReportService.
func NewReportService(db *sql.DB) *ReportService {
	return &ReportService{queries: store.New(db)}
}

// ReportRow is one insured person with their full policy graph.
type ReportRow struct {
	InsuredID  string            `json:"insured_id"`
	FirstName  string            `json:"first_name"`
	LastName   string            `json:"last_name"`
	Insurances []ReportInsurance `json:"insurances"`
}

// ReportInsurance is one policy row within a report.
type ReportInsurance struct {
	InsuranceID string        `json:"insurance_id"`
	Type        string        `json:"type"`
	Amount      int64         `json:"amount"`
	ValidFrom   string        `json:"valid_from"`
	ValidTo     string        `json:"valid_to"`
	IsPaid      bool          `json:"is_paid"`
	Events      []ReportEvent `json:"events"`
}

// ReportEvent is one claim event row within a report.
type ReportEvent struct {
	EventID string `json:"event_id"`
	Text    string `json:"text"`
	Price   int64  `json:"price"`
}

// Generate traverses the whole graph level by level: every insured, then each
// insured's policies, then each policy's events. Rows carry only reporting
// fields, no credentials or owner references. Insureds appear in storage-read
// order; callers needing a stable sort must apply one themselves.
func (s *ReportService) Generate(ctx context.Context) ([]ReportRow, error) {
	insureds, err := s.queries.ListInsureds(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]ReportRow, 0, len(insureds))
	for _, insured := range insureds {
		row := ReportRow{
			InsuredID:  insured.ID,
			FirstName:  insured.FirstName,
			LastName:   insured.LastName,
			Insurances: []ReportInsurance{},
		}

		insurances, err := s.queries.ListInsurancesByInsured(ctx, insured.ID)
		if err != nil {
			return nil, err
		}
		for _, ins := range insurances {
			insRow := ReportInsurance{
				InsuranceID: ins.ID,
				Type:        ins.Type,
				Amount:      ins.Amount,
				ValidFrom:   ins.ValidFrom.Format("2006-01-02"),
				ValidTo:     ins.ValidTo.Format("2006-01-02"),
				IsPaid:      ins.IsPaid,
				Events:      []ReportEvent{},
			}

			events, err := s.queries.ListEventsForInsurance(ctx, ins.ID)
			if err != nil {
				return nil, err
			}
			for _, e := range events {
				insRow.Events = append(insRow.Events, ReportEvent{
					EventID: e.ID,
					Text:    e.Text,
					Price:   e.Price,
				})
			}
			row.Insurances = append(row.Insurances, insRow)
		}
		rows = append(rows, row)
	}
	return rows, nil
}
