package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	middleware "github.com/samir1maity/fixy/internal/api/middlewares"
	"github.com/samir1maity/fixy/internal/services"
)

type AnalyticsHandler struct {
	analytics *services.AnalyticsService
}

func NewAnalyticsHandler(analytics *services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

func (h *AnalyticsHandler) UserStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	stats, err := h.analytics.UserStats(r.Context(), userID)
	if err != nil {
		http.Error(w, "failed to retrieve chat stats", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *AnalyticsHandler) WebsiteStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	stats, err := h.analytics.WebsiteStats(r.Context(), userID, chi.URLParam(r, "id"))
	if errors.Is(err, services.ErrWebsiteNotFound) {
		http.Error(w, "website not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "failed to retrieve website chat stats", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
