package http

import (
	"net/http"
	"time"

	"github.com/fjod/go_cart/pickup-service/internal/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter mounts the pickup routes with the gateway middleware stack
func NewRouter(pickup *PickupHandler, reg *metrics.Registry, requestTimeout time.Duration) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestIDMiddleware)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if reg != nil {
		r.Handle("/metrics", reg.Handler())
	}

	r.Route("/api/v1/stores/{storeID}", func(r chi.Router) {
		r.Get("/products/{productID}/pickup-locations", pickup.ProductPickupLocations)
		r.Post("/pickup-locations/search", pickup.SearchPickupLocations)
		r.Get("/carts/{userID}/pickup-locations", pickup.CartPickupLocations)
	})

	return r
}
