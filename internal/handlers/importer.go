package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/yourgrade/gradetrack/internal/app"
)

type ImportHandler struct {
	service *app.Service
}

func NewImportHandler(service *app.Service) *ImportHandler {
	return &ImportHandler{
		service: service,
	}
}

// HandleImport feeds pasted text or a photographed transcript through the
// AI extraction. The extracted rows go through the same validation and
// grade derivation as manual entry.
func (h *ImportHandler) HandleImport(w http.ResponseWriter, r *http.Request) {
	userID, err := h.service.AuthenticateRequest(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req app.ImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Text == "" && req.PhotoDataURI == "" {
		http.Error(w, "Either text or an image must be provided", http.StatusBadRequest)
		return
	}

	result, err := h.service.ImportSemester(r.Context(), userID, req)
	if err != nil {
		logger.Error.Printf("Import failed for user %s: %v", userID, err)
		http.Error(w, "Could not analyze the provided data. Please check your input and try again.", http.StatusBadGateway)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
