package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/yourgrade/gradetrack/internal/app"
)

type FeedbackHandler struct {
	service *app.Service
}

func NewFeedbackHandler(service *app.Service) *FeedbackHandler {
	return &FeedbackHandler{
		service: service,
	}
}

func (h *FeedbackHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	userID, err := h.service.AuthenticateRequest(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var input app.FeedbackInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := input.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	confirmation, err := h.service.SubmitFeedback(r.Context(), userID, input)
	if err != nil {
		logger.Error.Printf("Feedback submission failed: %v", err)
		http.Error(w, "Failed to submit feedback", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"confirmation": confirmation,
	})
}
