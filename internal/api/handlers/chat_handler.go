package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	middleware "github.com/samir1maity/fixy/internal/api/middlewares"
	"github.com/samir1maity/fixy/internal/models"
	"github.com/samir1maity/fixy/internal/services"
)

type ChatHandler struct {
	chat *services.ChatService
}

func NewChatHandler(chat *services.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

type chatRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"sessionId"`
}

// Query answers one widget question. The website is resolved by the
// X-Website-Secret middleware; chat is only served once processing completed.
func (h *ChatHandler) Query(w http.ResponseWriter, r *http.Request) {
	site, ok := middleware.Website(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Query == "" {
		http.Error(w, "missing required parameters", http.StatusBadRequest)
		return
	}

	if site.Status != models.StatusCompleted {
		http.Error(w, "website is still processing", http.StatusConflict)
		return
	}

	res, err := h.chat.Answer(r.Context(), site.ID, req.Query, req.SessionID)
	if errors.Is(err, services.ErrEmptyQuery) {
		http.Error(w, "missing required parameters", http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, "failed to generate response", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// History returns a session's prior turns for widget reloads.
func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	site, ok := middleware.Website(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	sessionID := r.URL.Query().Get("sessionId")
	if sessionID == "" {
		http.Error(w, "missing required parameters", http.StatusBadRequest)
		return
	}

	turns, err := h.chat.History(r.Context(), sessionID)
	if err != nil {
		http.Error(w, "failed to load history", http.StatusInternalServerError)
		return
	}

	// A session belongs to one website; turns from other websites are not shown.
	out := make([]models.ChatInteraction, 0, len(turns))
	for _, t := range turns {
		if t.WebsiteID == site.ID {
			out = append(out, t)
		}
	}
	writeJSON(w, http.StatusOK, out)
}
