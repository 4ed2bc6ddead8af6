package driver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/alorle/iptv-catalog/internal/application"
)

// ImportHTTPHandler handles HTTP requests that trigger imports.
type ImportHTTPHandler struct {
	service        *application.ImportService
	maxUploadBytes int64
	logger         zerolog.Logger
}

// NewImportHTTPHandler creates a new HTTP handler for imports. Uploaded
// playlists larger than maxUploadBytes are rejected.
func NewImportHTTPHandler(service *application.ImportService, maxUploadBytes int64, logger zerolog.Logger) *ImportHTTPHandler {
	return &ImportHTTPHandler{
		service:        service,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// importRequest represents the JSON body for importing playlists by URL.
type importRequest struct {
	URLs []string `json:"urls"`
}

// RegisterRoutes mounts the import endpoints on r.
func (h *ImportHTTPHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/imports", h.handleImport).Methods(http.MethodPost)
	r.HandleFunc("/imports/playlist", h.handleImportPlaylist).Methods(http.MethodPost)
	r.HandleFunc("/imports/last", h.handleLast).Methods(http.MethodGet)
}

// handleImport handles POST /api/imports
func (h *ImportHTTPHandler) handleImport(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	report, err := h.service.Import(r.Context(), req.URLs...)
	if err != nil {
		h.writeImportError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, report)
}

// handleImportPlaylist handles POST /api/imports/playlist
func (h *ImportHTTPHandler) handleImportPlaylist(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.ImportReader(r.Context(), http.MaxBytesReader(w, r.Body, h.maxUploadBytes))
	if err != nil {
		h.writeImportError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, report)
}

// handleLast handles GET /api/imports/last
func (h *ImportHTTPHandler) handleLast(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.LastReport()
	if err != nil {
		if errors.Is(err, application.ErrNoImport) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, report)
}

func (h *ImportHTTPHandler) writeImportError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, "playlist too large")
	case errors.Is(err, application.ErrReadFailed):
		writeError(w, http.StatusBadRequest, "invalid request body")
	case errors.Is(err, application.ErrNoSources):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, application.ErrFetchFailed):
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		h.logger.Error().Err(err).Msg("import failed")
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
