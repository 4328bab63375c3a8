package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/facturador/internal/http/auth"
	"github.com/MrJamesThe3rd/facturador/internal/http/client"
	"github.com/MrJamesThe3rd/facturador/internal/http/invoice"
	"github.com/MrJamesThe3rd/facturador/internal/http/numbering"
	"github.com/MrJamesThe3rd/facturador/internal/http/stock"
)

type Handlers struct {
	Invoices  *invoice.Handler
	Numbering *numbering.Handler
	Stock     *stock.Handler
	Clients   *client.Handler
}

func New(authenticator *auth.Authenticator, allowedOrigins []string, v1 Handlers) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Accept-Language", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(authenticator.Middleware)

		r.Route("/invoices", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			v1.Invoices.Routes(r)
		})

		r.Route("/numbering", v1.Numbering.Routes)

		r.Route("/products", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			v1.Stock.Routes(r)
		})

		r.Route("/movements", v1.Stock.MovementRoutes)

		r.Route("/clients", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			v1.Clients.Routes(r)
		})
	})

	return router
}
