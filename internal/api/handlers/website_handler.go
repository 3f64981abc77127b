package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	middleware "github.com/samir1maity/fixy/internal/api/middlewares"
	"github.com/samir1maity/fixy/internal/services"
)

type WebsiteHandler struct {
	websites *services.WebsiteService
}

func NewWebsiteHandler(websites *services.WebsiteService) *WebsiteHandler {
	return &WebsiteHandler{websites: websites}
}

type registerWebsiteRequest struct {
	URL string `json:"url"`
}

func (h *WebsiteHandler) Register(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req registerWebsiteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		http.Error(w, "missing required parameters", http.StatusBadRequest)
		return
	}

	site, err := h.websites.Register(r.Context(), userID, req.URL)
	switch {
	case errors.Is(err, services.ErrInvalidURL):
		http.Error(w, "invalid website url", http.StatusBadRequest)
		return
	case errors.Is(err, services.ErrDuplicateWebsite):
		http.Error(w, "website already registered", http.StatusConflict)
		return
	case err != nil:
		http.Error(w, "failed to register website", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"websiteId": site.ID,
		"status":    site.Status,
		"secret":    site.APISecret,
		"message":   "Website registration successful. Processing started.",
	})
}

func (h *WebsiteHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	sites, err := h.websites.List(r.Context(), userID)
	if err != nil {
		http.Error(w, "failed to get websites", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, sites)
}

func (h *WebsiteHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	site, err := h.websites.Get(r.Context(), userID, chi.URLParam(r, "id"))
	if errors.Is(err, services.ErrWebsiteNotFound) {
		http.Error(w, "website not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "failed to get website info", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, site)
}

func (h *WebsiteHandler) RegenerateSecret(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	secret, err := h.websites.RegenerateSecret(r.Context(), userID, chi.URLParam(r, "id"))
	if errors.Is(err, services.ErrWebsiteNotFound) {
		http.Error(w, "website not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "failed to generate secret", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"secret": secret})
}
