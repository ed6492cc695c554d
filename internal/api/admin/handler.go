// Package admin serves the operator routes of the dashboard.
package admin

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/andresuchdata/procurement-dashboard/internal/dataset"
	"github.com/andresuchdata/procurement-dashboard/internal/loader"
	"github.com/andresuchdata/procurement-dashboard/internal/service"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	dashboardService *service.DashboardService
}

func NewHandler(dashboardService *service.DashboardService) *Handler {
	return &Handler{dashboardService: dashboardService}
}

func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/dataset", h.GetDataset).Methods("GET")
	router.HandleFunc("/dataset/reload", h.ReloadDataset).Methods("POST")
}

func (h *Handler) GetDataset(w http.ResponseWriter, r *http.Request) {
	info, err := h.dashboardService.DatasetInfo()
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, dataset.ErrNotLoaded) {
			status = http.StatusServiceUnavailable
		}
		writeError(w, status, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (h *Handler) ReloadDataset(w http.ResponseWriter, r *http.Request) {
	info, err := h.dashboardService.Reload(r.Context())
	if err != nil {
		status := http.StatusInternalServerError
		var loadErr *loader.LoadError
		if errors.As(err, &loadErr) {
			status = http.StatusUnprocessableEntity
		}
		log.Error().Err(err).Msg("admin: dataset reload failed")
		writeError(w, status, err)
		return
	}
	log.Info().Str("version", info.Version).Int("rows", info.Rows).Msg("admin: dataset reloaded")
	writeJSON(w, http.StatusOK, info)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": http.StatusText(status), "details": err.Error()})
}
