package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/filterdeck/filterdeck/internal/config"
	"github.com/filterdeck/filterdeck/internal/handlers"
	"github.com/filterdeck/filterdeck/internal/middleware"
)

// NewRouter constructs a ServeMux with the filter API routes registered.
func NewRouter(h *handlers.Handler, cors config.CORSConfig) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/v1/sessions", h.Sessions)
	mux.HandleFunc("/api/v1/sessions/", h.SessionByID)
	mux.HandleFunc("/api/v1/compile", h.Compile)
	mux.HandleFunc("/api/v1/search", h.Search)
	mux.HandleFunc("/api/v1/fields", h.Fields)
	mux.HandleFunc("/api/v1/fields/", h.FieldValues)

	mux.HandleFunc("/healthz", h.Health)
	mux.Handle("/metrics", promhttp.Handler())

	withCORS := middleware.CORS(middleware.CORSConfig{
		AllowedOrigins: cors.AllowedOrigins,
		AllowedMethods: cors.AllowedMethods,
		AllowedHeaders: cors.AllowedHeaders,
		MaxAge:         cors.MaxAgeSeconds,
	})

	return middleware.RequestID(withCORS(mux))
}
