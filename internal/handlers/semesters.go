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

type SemesterHandler struct {
	service *app.Service
}

func NewSemesterHandler(service *app.Service) *SemesterHandler {
	return &SemesterHandler{
		service: service,
	}
}

func (h *SemesterHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, err := h.service.AuthenticateRequest(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	semesters, err := h.service.SemesterOverview(userID)
	if err != nil {
		logger.Error.Printf("Failed to fetch semesters: %v", err)
		http.Error(w, "Failed to fetch semesters", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"semesters": semesters,
	})
}

func (h *SemesterHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, err := h.service.AuthenticateRequest(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var input models.SemesterInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := input.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	semester, err := h.service.CreateSemester(userID, input.Name)
	if err != nil {
		logger.Error.Printf("Failed to create semester: %v", err)
		http.Error(w, "Failed to create semester", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, semester)
}

func (h *SemesterHandler) HandleRename(w http.ResponseWriter, r *http.Request) {
	userID, err := h.service.AuthenticateRequest(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	semesterID := r.PathValue("semesterID")
	if semesterID == "" {
		http.Error(w, "Invalid semester id", http.StatusBadRequest)
		return
	}

	var input models.SemesterInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := input.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.service.Store.RenameSemester(userID, semesterID, input.Name); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "Semester not found", http.StatusNotFound)
			return
		}
		logger.Error.Printf("Failed to rename semester: %v", err)
		http.Error(w, "Failed to rename semester", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (h *SemesterHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, err := h.service.AuthenticateRequest(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	semesterID := r.PathValue("semesterID")
	if semesterID == "" {
		http.Error(w, "Invalid semester id", http.StatusBadRequest)
		return
	}

	if err := h.service.Store.DeleteSemester(userID, semesterID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "Semester not found", http.StatusNotFound)
			return
		}
		logger.Error.Printf("Failed to delete semester: %v", err)
		http.Error(w, "Failed to delete semester", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *SemesterHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := http.StatusOK
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

	summary, err := h.service.Summary(userID)
	if err != nil {
		logger.Error.Printf("Failed to compute summary: %v", err)
		status = http.StatusInternalServerError
		http.Error(w, "Failed to compute summary", status)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}
