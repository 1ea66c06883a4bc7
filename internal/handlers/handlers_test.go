package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourgrade/gradetrack/internal/ai"
	"github.com/yourgrade/gradetrack/internal/app"
	"github.com/yourgrade/gradetrack/internal/models"
	"github.com/yourgrade/gradetrack/internal/store/sqlite"
)

const testUser = "user-1"

type stubExtractor struct {
	subjects []ai.ExtractedSubject
	ack      string
	err      error
}

func (s *stubExtractor) ExtractSubjects(_ context.Context, text, photoDataURI string) ([]ai.ExtractedSubject, error) {
	return s.subjects, s.err
}

func (s *stubExtractor) FeedbackAck(_ context.Context, feedbackType, message string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.ack, nil
}

func newTestMux(t *testing.T, extractor ai.Extractor) (*http.ServeMux, *app.Service) {
	cfg := &app.Config{}
	cfg.Server.Port = ":0"
	cfg.Server.EnableAuth = false
	cfg.Auth.TokenHeader = "Authorization"
	cfg.API.UserIDHeader = "X-User-ID"

	st, err := sqlite.NewSQLiteStore(":memory:", "../../migrations")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	// dev-mode identity still needs a users row for the semester FK
	require.NoError(t, st.CreateUser(&models.User{
		ID:        testUser,
		Email:     "jane.doe@example.com",
		CreatedAt: time.Now().UTC(),
	}))

	auth, err := app.NewAuth(cfg)
	require.NoError(t, err)

	service := &app.Service{
		Config:    cfg,
		Store:     st,
		Auth:      auth,
		Extractor: extractor,
	}

	semesterHandler := NewSemesterHandler(service)
	subjectHandler := NewSubjectHandler(service)
	importHandler := NewImportHandler(service)
	feedbackHandler := NewFeedbackHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/semesters", semesterHandler.HandleList)
	mux.HandleFunc("POST /api/v1/semesters", semesterHandler.HandleCreate)
	mux.HandleFunc("PATCH /api/v1/semesters/{semesterID}", semesterHandler.HandleRename)
	mux.HandleFunc("DELETE /api/v1/semesters/{semesterID}", semesterHandler.HandleDelete)
	mux.HandleFunc("POST /api/v1/semesters/{semesterID}/subjects", subjectHandler.HandleCreate)
	mux.HandleFunc("PUT /api/v1/semesters/{semesterID}/subjects/{subjectID}", subjectHandler.HandleUpdate)
	mux.HandleFunc("DELETE /api/v1/semesters/{semesterID}/subjects/{subjectID}", subjectHandler.HandleDelete)
	mux.HandleFunc("GET /api/v1/summary", semesterHandler.HandleSummary)
	mux.HandleFunc("POST /api/v1/import", importHandler.HandleImport)
	mux.HandleFunc("POST /api/v1/feedback", feedbackHandler.HandleSubmit)

	return mux, service
}

func doJSON(t *testing.T, mux *http.ServeMux, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("X-User-ID", testUser)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func createSemester(t *testing.T, mux *http.ServeMux, name string) models.Semester {
	rec := doJSON(t, mux, http.MethodPost, "/api/v1/semesters", map[string]string{"name": name})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var semester models.Semester
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &semester))
	return semester
}

func addSubject(t *testing.T, mux *http.ServeMux, semesterID string, input map[string]interface{}) models.Subject {
	rec := doJSON(t, mux, http.MethodPost, fmt.Sprintf("/api/v1/semesters/%s/subjects", semesterID), input)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var subject models.Subject
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &subject))
	return subject
}

func TestMissingIdentityIsUnauthorized(t *testing.T) {
	mux, _ := newTestMux(t, &stubExtractor{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/semesters", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSubjectLifecycle(t *testing.T) {
	mux, _ := newTestMux(t, &stubExtractor{})
	semester := createSemester(t, mux, "Semester 1")

	t.Run("failing marks override a claimed PASS", func(t *testing.T) {
		subject := addSubject(t, mux, semester.ID, map[string]interface{}{
			"name":    "Thermodynamics",
			"credits": 4,
			"marks":   45,
			"status":  "PASS",
		})
		assert.Equal(t, models.StatusReappear, subject.Status)
		assert.Equal(t, 0, subject.GradePoint)
		assert.Equal(t, "RA", subject.LetterGrade)
	})

	t.Run("validation rejects PASS without marks", func(t *testing.T) {
		rec := doJSON(t, mux, http.MethodPost, fmt.Sprintf("/api/v1/semesters/%s/subjects", semester.ID), map[string]interface{}{
			"name":    "Ghost Subject",
			"credits": 3,
			"status":  "PASS",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("validation rejects out-of-range marks", func(t *testing.T) {
		rec := doJSON(t, mux, http.MethodPost, fmt.Sprintf("/api/v1/semesters/%s/subjects", semester.ID), map[string]interface{}{
			"name":    "Overachiever",
			"credits": 3,
			"marks":   104,
			"status":  "PASS",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("update reprocesses the grade", func(t *testing.T) {
		subject := addSubject(t, mux, semester.ID, map[string]interface{}{
			"name":    "Microprocessors",
			"credits": 3,
			"marks":   67,
			"status":  "PASS",
		})
		assert.Equal(t, "B+", subject.LetterGrade)

		rec := doJSON(t, mux, http.MethodPut,
			fmt.Sprintf("/api/v1/semesters/%s/subjects/%s", semester.ID, subject.ID),
			map[string]interface{}{
				"name":    "Microprocessors",
				"credits": 3,
				"marks":   92,
				"status":  "PASS",
			})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var updated models.Subject
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
		assert.Equal(t, subject.ID, updated.ID)
		assert.Equal(t, 10, updated.GradePoint)
		assert.Equal(t, "A++", updated.LetterGrade)
	})

	t.Run("unknown semester is 404", func(t *testing.T) {
		rec := doJSON(t, mux, http.MethodPost, "/api/v1/semesters/sem-nope/subjects", map[string]interface{}{
			"name":    "Nowhere",
			"credits": 3,
			"marks":   70,
			"status":  "PASS",
		})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestSemesterListing(t *testing.T) {
	mux, _ := newTestMux(t, &stubExtractor{})

	// insertion order deliberately mixed up: listing must natural-sort
	createSemester(t, mux, "Semester 10")
	s2 := createSemester(t, mux, "Semester 2")
	createSemester(t, mux, "Semester 1")

	addSubject(t, mux, s2.ID, map[string]interface{}{
		"name":    "Calculus",
		"credits": 4,
		"marks":   95,
		"status":  "PASS",
	})
	addSubject(t, mux, s2.ID, map[string]interface{}{
		"name":    "Chemistry",
		"credits": 2,
		"marks":   55,
		"status":  "PASS",
	})

	rec := doJSON(t, mux, http.MethodGet, "/api/v1/semesters", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Semesters []models.Semester `json:"semesters"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Semesters, 3)

	assert.Equal(t, "Semester 1", resp.Semesters[0].Name)
	assert.Equal(t, "Semester 2", resp.Semesters[1].Name)
	assert.Equal(t, "Semester 10", resp.Semesters[2].Name)

	// (4*10 + 2*6) / 6 = 8.67
	assert.Equal(t, 8.67, resp.Semesters[1].GPA)
	assert.Equal(t, 0.0, resp.Semesters[0].GPA)
}

func TestSemesterDeleteCascades(t *testing.T) {
	mux, _ := newTestMux(t, &stubExtractor{})
	semester := createSemester(t, mux, "Semester 1")
	addSubject(t, mux, semester.ID, map[string]interface{}{
		"name":    "Calculus",
		"credits": 4,
		"marks":   95,
		"status":  "PASS",
	})

	rec := doJSON(t, mux, http.MethodDelete, "/api/v1/semesters/"+semester.ID, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, mux, http.MethodGet, "/api/v1/summary", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var summary app.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, 0, summary.SubjectCount)
	assert.Equal(t, 0.0, summary.CGPA)
}

func TestSummaryUsesFlattenedWeightedAverage(t *testing.T) {
	mux, _ := newTestMux(t, &stubExtractor{})

	// 9 credits at GP 10 and 3 credits at GP 6: a mean of semester GPAs
	// would be 8, the flattened weighted average is 9
	s1 := createSemester(t, mux, "Semester 1")
	addSubject(t, mux, s1.ID, map[string]interface{}{
		"name":    "Linear Algebra",
		"credits": 9,
		"marks":   95,
		"status":  "PASS",
	})

	s2 := createSemester(t, mux, "Semester 2")
	addSubject(t, mux, s2.ID, map[string]interface{}{
		"name":    "Economics",
		"credits": 3,
		"marks":   55,
		"status":  "PASS",
	})

	rec := doJSON(t, mux, http.MethodGet, "/api/v1/summary", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var summary app.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, 9.0, summary.CGPA)
	assert.Equal(t, "First Class – Exemplary", summary.Classification)
	assert.True(t, summary.Awarded)
	assert.Equal(t, 2, summary.SemesterCount)
	assert.Equal(t, 2, summary.SubjectCount)
	assert.Equal(t, 12, summary.CreditsEarned)
}

func TestImport(t *testing.T) {
	marks := func(v float64) *float64 { return &v }

	extractor := &stubExtractor{
		subjects: []ai.ExtractedSubject{
			{Name: "Digital Logic", Credits: 4, Marks: marks(88), Status: models.StatusPass},
			{Name: "Skipped Row", Credits: 0, Marks: marks(70), Status: models.StatusPass},
			{Name: "Withdrawn Elective", Credits: 2, Status: models.StatusWithdrawn},
		},
	}
	mux, _ := newTestMux(t, extractor)

	t.Run("rejects empty input", func(t *testing.T) {
		rec := doJSON(t, mux, http.MethodPost, "/api/v1/import", map[string]string{})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("extracts, validates and inserts", func(t *testing.T) {
		rec := doJSON(t, mux, http.MethodPost, "/api/v1/import", map[string]string{
			"text":          "Digital Logic 4cr 88 ...",
			"semester_name": "Imported Semester",
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var result app.ImportResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))

		assert.Equal(t, 1, result.Skipped)
		assert.Len(t, result.Subjects, 2)
		require.NotNil(t, result.Semester)
		assert.Equal(t, "Imported Semester", result.Semester.Name)
		require.Len(t, result.Semester.Subjects, 2)
		assert.Equal(t, "A+", result.Semester.Subjects[0].LetterGrade)
		assert.Equal(t, 9.0, result.Semester.GPA)
	})

	t.Run("extraction failure maps to bad gateway", func(t *testing.T) {
		failMux, _ := newTestMux(t, &stubExtractor{err: fmt.Errorf("model unavailable")})
		rec := doJSON(t, failMux, http.MethodPost, "/api/v1/import", map[string]string{
			"text": "anything",
		})
		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})
}

func TestFeedback(t *testing.T) {
	t.Run("persists and returns model ack", func(t *testing.T) {
		mux, _ := newTestMux(t, &stubExtractor{ack: "Thanks for the bug report!"})

		rec := doJSON(t, mux, http.MethodPost, "/api/v1/feedback", map[string]string{
			"type":    "bug",
			"message": "CGPA wrong after import",
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "Thanks for the bug report!", resp["confirmation"])
	})

	t.Run("falls back when the model fails", func(t *testing.T) {
		mux, _ := newTestMux(t, &stubExtractor{err: fmt.Errorf("model unavailable")})

		rec := doJSON(t, mux, http.MethodPost, "/api/v1/feedback", map[string]string{
			"type":    "general",
			"message": "love the app",
		})
		require.Equal(t, http.StatusOK, rec.Code)

		var resp map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Contains(t, resp["confirmation"], "Thank you for your feedback")
	})

	t.Run("rejects unknown type", func(t *testing.T) {
		mux, _ := newTestMux(t, &stubExtractor{})

		rec := doJSON(t, mux, http.MethodPost, "/api/v1/feedback", map[string]string{
			"type":    "rant",
			"message": "!!",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
