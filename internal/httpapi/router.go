// Package httpapi wires the HTTP surface of the shop ledger service.
// It keeps handlers thin, delegating business rules to the service
// layer.
package httpapi

import (
	"log/slog"
	"net/http"

	chi "github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/udhaar/ledger/internal/service/customer"
	"github.com/udhaar/ledger/internal/service/shop"
	"github.com/udhaar/ledger/internal/service/transaction"
)

// Options carries transport-level settings.
type Options struct {
	// AuthToken enables static bearer-token auth when non-empty.
	AuthToken string
	// AllowedOrigins configures CORS; empty means no cross-origin access.
	AllowedOrigins []string
}

// Server wires handlers and middleware using Chi.
type Server struct {
	shops     shop.Service
	customers customer.Service
	txns      transaction.Service
	store     Store
	log       *slog.Logger
	rt        *chi.Mux
}

// New constructs the HTTP server with routes and middleware.
func New(store Store, logger *slog.Logger, opts Options) *Server {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	if len(opts.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: opts.AllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		}))
	}
	r.Use(requestLogger(logger))
	r.Use(recoverer(logger))
	r.Use(metricsMiddleware)
	r.Use(requireJSON)
	if opts.AuthToken != "" {
		r.Use(authBearer(opts.AuthToken))
	}

	s := &Server{
		shops:     shop.New(store, store),
		customers: customer.New(store, store),
		txns:      transaction.New(store, store),
		store:     store,
		rt:        r,
		log:       logger,
	}
	s.routes()
	return s
}

// Handler exposes the configured http.Handler.
func (s *Server) Handler() http.Handler { return s.rt }

// routes declares the public HTTP API endpoints.
func (s *Server) routes() {
	// Shops
	s.rt.Post("/v1/shops", s.postShop)
	s.rt.Get("/v1/shops", s.listShops)
	s.rt.Get("/v1/shops/{id}", s.getShop)
	s.rt.Put("/v1/shops/{id}", s.updateShop)
	s.rt.Delete("/v1/shops/{id}", s.deleteShop)
	// Customers are created and listed through their shop
	s.rt.Post("/v1/shops/{id}/customers", s.postCustomer)
	s.rt.Get("/v1/shops/{id}/customers", s.listCustomers)
	s.rt.Get("/v1/shops/{id}/transactions", s.listShopTransactions)
	s.rt.Get("/v1/shops/{id}/balance", s.getShopBalance)
	s.rt.Get("/v1/customers/{id}", s.getCustomer)
	s.rt.Put("/v1/customers/{id}", s.updateCustomer)
	s.rt.Delete("/v1/customers/{id}", s.deleteCustomer)
	// Ledger
	s.rt.Post("/v1/customers/{id}/transactions", s.postTransaction)
	s.rt.Get("/v1/customers/{id}/transactions", s.listCustomerTransactions)
	s.rt.Get("/v1/customers/{id}/balance", s.getCustomerBalance)
	s.rt.Get("/v1/transactions/{id}", s.getTransaction)
	// Ops (unversioned)
	s.rt.Get("/healthz", s.healthz)
	s.rt.Get("/readyz", s.readyz)
	s.rt.Handle("/metrics", metricsHandler())
}
