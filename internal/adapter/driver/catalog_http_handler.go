package driver

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/alorle/iptv-catalog/internal/application"
	"github.com/alorle/iptv-catalog/internal/catalog"
)

// CatalogHTTPHandler handles HTTP requests for browsing the catalog.
type CatalogHTTPHandler struct {
	service *application.CatalogService
}

// NewCatalogHTTPHandler creates a new HTTP handler for the catalog.
func NewCatalogHTTPHandler(service *application.CatalogService) *CatalogHTTPHandler {
	return &CatalogHTTPHandler{service: service}
}

// RegisterRoutes mounts the catalog endpoints on r.
func (h *CatalogHTTPHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/movies", h.handleListMovies).Methods(http.MethodGet)
	r.HandleFunc("/movies", h.handleDeleteMovie).Methods(http.MethodDelete)
	r.HandleFunc("/series", h.handleListSeries).Methods(http.MethodGet)
	r.HandleFunc("/series/{title}", h.handleGetSeries).Methods(http.MethodGet)
	r.HandleFunc("/series/{title}", h.handleDeleteSeries).Methods(http.MethodDelete)
	r.HandleFunc("/genres", h.handleGenres).Methods(http.MethodGet)
	r.HandleFunc("/catalog", h.handleClear).Methods(http.MethodDelete)
}

func filterFromQuery(r *http.Request) catalog.Filter {
	q := r.URL.Query()
	return catalog.Filter{Query: q.Get("q"), Genre: q.Get("genre")}
}

// handleListMovies handles GET /api/movies
func (h *CatalogHTTPHandler) handleListMovies(w http.ResponseWriter, r *http.Request) {
	movies, err := h.service.ListMovies(r.Context(), filterFromQuery(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, movies)
}

// handleDeleteMovie handles DELETE /api/movies?address=
func (h *CatalogHTTPHandler) handleDeleteMovie(w http.ResponseWriter, r *http.Request) {
	err := h.service.DeleteMovie(r.Context(), r.URL.Query().Get("address"))
	if err != nil {
		writeCatalogError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleListSeries handles GET /api/series
func (h *CatalogHTTPHandler) handleListSeries(w http.ResponseWriter, r *http.Request) {
	series, err := h.service.ListSeries(r.Context(), filterFromQuery(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, series)
}

// handleGetSeries handles GET /api/series/{title}
func (h *CatalogHTTPHandler) handleGetSeries(w http.ResponseWriter, r *http.Request) {
	s, err := h.service.GetSeries(r.Context(), mux.Vars(r)["title"])
	if err != nil {
		writeCatalogError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// handleDeleteSeries handles DELETE /api/series/{title}
func (h *CatalogHTTPHandler) handleDeleteSeries(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteSeries(r.Context(), mux.Vars(r)["title"]); err != nil {
		writeCatalogError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleGenres handles GET /api/genres
func (h *CatalogHTTPHandler) handleGenres(w http.ResponseWriter, r *http.Request) {
	genres, err := h.service.Genres(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, genres)
}

// handleClear handles DELETE /api/catalog
func (h *CatalogHTTPHandler) handleClear(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Clear(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeCatalogError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, catalog.ErrEmptyTitle), errors.Is(err, catalog.ErrEmptyAddress):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, catalog.ErrMovieNotFound), errors.Is(err, catalog.ErrSeriesNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
