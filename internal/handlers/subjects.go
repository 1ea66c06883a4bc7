package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/yourgrade/gradetrack/internal/app"
	"github.com/yourgrade/gradetrack/internal/metrics"
	"github.com/yourgrade/gradetrack/internal/models"
	"github.com/yourgrade/gradetrack/internal/store"
)

type SubjectHandler struct {
	service *app.Service
}

func NewSubjectHandler(service *app.Service) *SubjectHandler {
	return &SubjectHandler{
		service: service,
	}
}

func (h *SubjectHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := http.StatusCreated
	defer func() {
		metrics.APIRequestDuration.WithLabelValues(
			r.URL.Path,
			r.Method,
			strconv.Itoa(status),
		).Observe(time.Since(start).Seconds())
	}()

	userID, err := h.service.AuthenticateRequest(r)
	if err != nil {
		status = http.StatusUnauthorized
		http.Error(w, "Unauthorized", status)
		return
	}

	semesterID := r.PathValue("semesterID")
	if semesterID == "" {
		status = http.StatusBadRequest
		http.Error(w, "Invalid semester id", status)
		return
	}

	var input models.SubjectInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		status = http.StatusBadRequest
		http.Error(w, "Invalid request body", status)
		return
	}
	if err := input.Validate(); err != nil {
		status = http.StatusBadRequest
		http.Error(w, err.Error(), status)
		return
	}

	subject, err := h.service.AddSubject(userID, semesterID, input)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			status = http.StatusNotFound
			http.Error(w, "Semester not found", status)
			return
		}
		logger.Error.Printf("Failed to create subject: %v", err)
		status = http.StatusInternalServerError
		http.Error(w, "Failed to create subject", status)
		return
	}

	writeJSON(w, http.StatusCreated, subject)
}

func (h *SubjectHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, err := h.service.AuthenticateRequest(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	semesterID := r.PathValue("semesterID")
	subjectID := r.PathValue("subjectID")
	if semesterID == "" || subjectID == "" {
		http.Error(w, "Invalid path", http.StatusBadRequest)
		return
	}

	var input models.SubjectInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := input.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	subject, err := h.service.UpdateSubject(userID, semesterID, subjectID, input)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "Subject not found", http.StatusNotFound)
			return
		}
		logger.Error.Printf("Failed to update subject: %v", err)
		http.Error(w, "Failed to update subject", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, subject)
}

func (h *SubjectHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, err := h.service.AuthenticateRequest(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	semesterID := r.PathValue("semesterID")
	subjectID := r.PathValue("subjectID")
	if semesterID == "" || subjectID == "" {
		http.Error(w, "Invalid path", http.StatusBadRequest)
		return
	}

	if err := h.service.Store.DeleteSubject(userID, semesterID, subjectID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "Subject not found", http.StatusNotFound)
			return
		}
		logger.Error.Printf("Failed to delete subject: %v", err)
		http.Error(w, "Failed to delete subject", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
