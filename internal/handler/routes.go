// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"

	"github.com/olegiv/oins-go/internal/middleware"
)

// Routes assembles the API route tree with session loading and per-route
// authorization applied. loginLimiter throttles the credential endpoints and
// may be nil.
func Routes(sm *scs.SessionManager, db *sql.DB, loginLimiter *middleware.LoginRateLimiter) http.Handler {
	authH := NewAuthHandler(sm, db)
	insuredH := NewInsuredHandler(db)
	insuranceH := NewInsuranceHandler(db)
	eventH := NewEventHandler(db)
	reportH := NewReportHandler(db)
	healthH := NewHealthHandler(db)

	r := chi.NewRouter()
	r.Use(sm.LoadAndSave)
	r.Use(middleware.LoadUser(sm, db))

	r.Get("/health", healthH.Check)

	r.Route("/api", func(r chi.Router) {
		// Credential endpoints, open but throttled.
		r.Group(func(r chi.Router) {
			if loginLimiter != nil {
				r.Use(loginLimiter.Middleware())
			}
			r.Post("/register", authH.Register)
			r.Post("/login", authH.Login)
		})
		r.Post("/logout", authH.Logout)

		// Any authenticated principal. Ownership checks run inside the
		// handlers against freshly read records.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)

			r.Get("/session", authH.Session)

			r.Post("/insured", insuredH.Create)
			r.Get("/insured/{id}", insuredH.Get)
			r.Put("/insured/{id}", insuredH.Update)
			r.Get("/insured/{id}/insurances", insuredH.ListInsurances)
			r.Get("/insured/{id}/details-with-insurances", insuredH.DetailsWithInsurances)
			r.Post("/insured/{id}/insurances", insuranceH.Create)

			r.Put("/insurances/{id}", insuranceH.Update)
			r.Delete("/insurances/{id}", insuranceH.Delete)
			r.Put("/insurances/{id}/mark-as-paid", insuranceH.MarkPaid)
			r.Put("/insurances/{id}/events/{eventID}", insuranceH.AttachEvent)
			r.Delete("/insurances/{id}/events/{eventID}", insuranceH.DetachEvent)

			r.Get("/events", eventH.List)
		})

		// Administrator surface.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin)

			r.Post("/set-admin/{id}", authH.SetAdmin)
			r.Get("/all-insured", insuredH.ListAll)
			r.Get("/all-insurances", insuranceH.ListAll)
			r.Delete("/insured/{id}", insuredH.Delete)

			r.Post("/events", eventH.Create)
			r.Put("/events/{id}", eventH.Update)
			r.Delete("/events/{id}", eventH.Delete)

			r.Get("/generate-report", reportH.Generate)
		})
	})

	return r
}
