package driver

import (
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// RouterConfig groups the handlers and settings the HTTP router needs.
type RouterConfig struct {
	Doc            *openapi3.T
	Imports        *ImportHTTPHandler
	Catalog        *CatalogHTTPHandler
	Health         *HealthHTTPHandler
	Tasks          *TaskHTTPHandler
	MaxUploadBytes int64
	Logger         zerolog.Logger
}

// NewRouter builds the application router. Every /api route is validated
// against the OpenAPI document before reaching its handler.
func NewRouter(cfg RouterConfig) *mux.Router {
	r := mux.NewRouter()
	r.Use(instrument(cfg.Logger))

	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(limitBody(cfg.MaxUploadBytes))
	api.Use(requestValidator(cfg.Doc))

	api.Handle("/health", cfg.Health).Methods(http.MethodGet)
	api.Handle("/openapi.json", NewDocumentationHandler(cfg.Doc)).Methods(http.MethodGet)
	cfg.Imports.RegisterRoutes(api)
	cfg.Catalog.RegisterRoutes(api)
	cfg.Tasks.RegisterRoutes(api)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	return r
}
