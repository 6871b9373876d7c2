package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/LexiconIndonesia/dqaas-registration-service/common"
	"github.com/LexiconIndonesia/dqaas-registration-service/common/models"
	"github.com/LexiconIndonesia/dqaas-registration-service/common/utils"
	"github.com/go-chi/chi/v5"
)

// Pinger reports whether the backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db     Pinger
	router *chi.Mux
}

func NewHealthHandler(db Pinger) *HealthHandler {
	h := &HealthHandler{
		db: db,
	}

	r := chi.NewRouter()
	r.Get("/", h.handleHealthCheck)
	r.Get("/database", h.handleDatabaseHealth)

	h.router = r
	return h
}

func (h *HealthHandler) Router() *chi.Mux {
	return h.router
}

// @Summary Liveness check
// @Tags health
// @Produce json
// @Success 200 {object} models.HealthResponse
// @Router /health [get]
func (h *HealthHandler) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, models.HealthResponse{
		Status:    "healthy",
		Service:   common.AppName,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// @Summary Database connectivity check
// @Tags health
// @Produce json
// @Success 200 {object} models.HealthResponse
// @Failure 503 {object} models.HealthResponse
// @Router /health/database [get]
func (h *HealthHandler) handleDatabaseHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	response := models.HealthResponse{
		Status:    "healthy",
		Service:   common.AppName,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Database: map[string]any{
			"status": "healthy",
		},
	}

	if err := h.db.Ping(ctx); err != nil {
		response.Status = "unhealthy"
		response.Database["status"] = "unhealthy"
		response.Database["error"] = err.Error()
		utils.WriteJSON(w, http.StatusServiceUnavailable, response)
		return
	}

	utils.WriteJSON(w, http.StatusOK, response)
}
