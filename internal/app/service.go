package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/maruel/natural"
	"golang.org/x/crypto/bcrypt"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/yourgrade/gradetrack/internal/ai"
	"github.com/yourgrade/gradetrack/internal/grading"
	"github.com/yourgrade/gradetrack/internal/metrics"
	"github.com/yourgrade/gradetrack/internal/models"
	"github.com/yourgrade/gradetrack/internal/store"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthorized       = errors.New("unauthorized")
)

// fallbackAck is used when the model cannot phrase a confirmation; the
// feedback itself is persisted either way.
const fallbackAck = "Thank you for your feedback! We've received it and appreciate you helping us improve."

type Service struct {
	Config    *Config
	Store     store.GradeStore
	Auth      *Auth
	Tokens    *TokenManager
	Extractor ai.Extractor
}

func NewService(configPath string) (*Service, error) {
	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	gradeStore, err := NewStore(config.Database.DSN, config.Database.MigrationsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to init store: %w", err)
	}

	auth, err := NewAuth(config)
	if err != nil {
		return nil, fmt.Errorf("failed to init auth: %w", err)
	}

	svc := &Service{
		Config:    config,
		Store:     gradeStore,
		Auth:      auth,
		Extractor: ai.NewClient(config.AI.APIKey, config.AI.BaseURL, config.AI.Model),
	}
	if auth.Enabled() {
		svc.Tokens = NewTokenManager(auth.Redis())
	}

	return svc, nil
}

// AuthenticateRequest resolves the calling user. With auth enabled this
// means a Bearer token backed by a redis session; with auth disabled the
// dev identity header is trusted as-is.
func (s *Service) AuthenticateRequest(r *http.Request) (string, error) {
	if !s.Config.Server.EnableAuth {
		userID := r.Header.Get(s.Config.API.UserIDHeader)
		if userID == "" {
			return "", fmt.Errorf("%w: missing %s header", ErrUnauthorized, s.Config.API.UserIDHeader)
		}
		return userID, nil
	}

	authHeader := r.Header.Get(s.Config.Auth.TokenHeader)
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", fmt.Errorf("%w: invalid authorization header format", ErrUnauthorized)
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")

	userID, err := s.Auth.ResolveToken(r.Context(), token)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	return userID, nil
}

func (s *Service) Signup(ctx context.Context, creds models.Credentials) (*models.User, *models.TokenInfo, error) {
	existing, err := s.Store.GetUserByEmail(creds.Email)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to check email: %w", err)
	}
	if existing != nil {
		return nil, nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Email:        creds.Email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.Store.CreateUser(user); err != nil {
		return nil, nil, fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.issueToken(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	return user, token, nil
}

func (s *Service) Login(ctx context.Context, creds models.Credentials) (*models.User, *models.TokenInfo, error) {
	user, err := s.Store.GetUserByEmail(creds.Email)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return nil, nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	token, err := s.issueToken(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	return user, token, nil
}

func (s *Service) Logout(ctx context.Context, authHeader string) error {
	if s.Tokens == nil {
		return nil
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")
	return s.Tokens.RevokeToken(ctx, token)
}

func (s *Service) issueToken(ctx context.Context, userID string) (*models.TokenInfo, error) {
	if s.Tokens == nil {
		// Auth disabled: nothing to issue, callers use the identity header.
		return &models.TokenInfo{}, nil
	}
	token, err := s.Tokens.IssueToken(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return token, nil
}

// SemesterOverview returns the user's semesters with their subjects and
// derived GPA, sorted by natural name order ("Sem 2" before "Sem 10").
func (s *Service) SemesterOverview(userID string) ([]models.Semester, error) {
	semesters, err := s.Store.ListSemesters(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list semesters: %w", err)
	}

	subjects, err := s.Store.ListAllSubjects(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list subjects: %w", err)
	}

	bySemester := make(map[string][]models.Subject)
	for _, sub := range subjects {
		bySemester[sub.SemesterID] = append(bySemester[sub.SemesterID], sub)
	}

	for i := range semesters {
		semesters[i].Subjects = bySemester[semesters[i].ID]
		if semesters[i].Subjects == nil {
			semesters[i].Subjects = []models.Subject{}
		}
		semesters[i].GPA = grading.SemesterGPA(semesters[i].Subjects)
	}

	sort.Slice(semesters, func(i, j int) bool {
		return natural.Less(semesters[i].Name, semesters[j].Name)
	})

	return semesters, nil
}

type Summary struct {
	CGPA           float64 `json:"cgpa"`
	Classification string  `json:"classification"`
	Awarded        bool    `json:"awarded"`
	SemesterCount  int     `json:"semester_count"`
	SubjectCount   int     `json:"subject_count"`
	CreditsEarned  int     `json:"credits_earned"`
}

// Summary computes the cumulative view: CGPA over every subject across
// all semesters plus the degree classification for it.
func (s *Service) Summary(userID string) (*Summary, error) {
	semesters, err := s.SemesterOverview(userID)
	if err != nil {
		return nil, err
	}

	cgpa := grading.CumulativeGPA(semesters)
	classification := grading.Classify(cgpa)

	summary := &Summary{
		CGPA:           cgpa,
		Classification: classification.Label,
		Awarded:        classification.Awarded,
		SemesterCount:  len(semesters),
	}
	for _, sem := range semesters {
		summary.SubjectCount += len(sem.Subjects)
		for _, sub := range sem.Subjects {
			if sub.Status == models.StatusPass {
				summary.CreditsEarned += sub.Credits
			}
		}
	}

	return summary, nil
}

func (s *Service) CreateSemester(userID, name string) (*models.Semester, error) {
	semester := &models.Semester{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      name,
		CreatedAt: time.Now().UTC(),
		Subjects:  []models.Subject{},
	}
	if err := s.Store.CreateSemester(semester); err != nil {
		return nil, err
	}
	return semester, nil
}

// AddSubject validates nothing itself: the handler has already run the
// input through its validator, so this is process-then-persist.
func (s *Service) AddSubject(userID, semesterID string, input models.SubjectInput) (*models.Subject, error) {
	semester, err := s.Store.GetSemester(userID, semesterID)
	if err != nil {
		return nil, err
	}
	if semester == nil {
		return nil, store.ErrNotFound
	}

	subject := grading.ProcessSubject(grading.RawSubject{
		Name:    input.Name,
		Credits: input.Credits,
		Marks:   input.Marks,
		Status:  input.Status,
	})
	subject.SemesterID = semesterID
	subject.UserID = userID

	if err := s.Store.CreateSubject(&subject); err != nil {
		return nil, err
	}

	metrics.SubjectsProcessedTotal.WithLabelValues(string(subject.Status), subject.LetterGrade).Inc()

	return &subject, nil
}

func (s *Service) UpdateSubject(userID, semesterID, subjectID string, input models.SubjectInput) (*models.Subject, error) {
	existing, err := s.Store.GetSubject(userID, semesterID, subjectID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, store.ErrNotFound
	}

	subject := grading.ProcessSubject(grading.RawSubject{
		ID:      subjectID,
		Name:    input.Name,
		Credits: input.Credits,
		Marks:   input.Marks,
		Status:  input.Status,
	})
	subject.SemesterID = semesterID
	subject.UserID = userID

	if err := s.Store.UpdateSubject(&subject); err != nil {
		return nil, err
	}

	metrics.SubjectsProcessedTotal.WithLabelValues(string(subject.Status), subject.LetterGrade).Inc()

	return &subject, nil
}

type ImportRequest struct {
	Text         string `json:"text"`
	PhotoDataURI string `json:"photo_data_uri"`
	SemesterName string `json:"semester_name"`
}

type ImportResult struct {
	Semester *models.Semester      `json:"semester,omitempty"`
	Subjects []models.SubjectInput `json:"subjects"`
	Skipped  int                   `json:"skipped"`
}

// ImportSemester runs the LLM extraction over pasted text or a photo and
// feeds every extracted row through the same validation and processing
// path as manual entry. Rows the validator rejects are counted, not
// silently dropped. When a semester name is supplied, the semester is
// created and the valid rows are inserted into it.
func (s *Service) ImportSemester(ctx context.Context, userID string, req ImportRequest) (*ImportResult, error) {
	extracted, err := s.Extractor.ExtractSubjects(ctx, req.Text, req.PhotoDataURI)
	if err != nil {
		metrics.ImportsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("extraction failed: %w", err)
	}

	result := &ImportResult{Subjects: []models.SubjectInput{}}
	for _, row := range extracted {
		input := models.SubjectInput{
			Name:    row.Name,
			Credits: row.Credits,
			Marks:   row.Marks,
			Status:  row.Status,
		}
		if err := input.Validate(); err != nil {
			logger.Debug.Printf("Skipping extracted row %q: %v", row.Name, err)
			result.Skipped++
			continue
		}
		result.Subjects = append(result.Subjects, input)
	}

	if req.SemesterName != "" && len(result.Subjects) > 0 {
		semester, err := s.CreateSemester(userID, req.SemesterName)
		if err != nil {
			metrics.ImportsTotal.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("failed to create semester: %w", err)
		}
		for _, input := range result.Subjects {
			subject, err := s.AddSubject(userID, semester.ID, input)
			if err != nil {
				metrics.ImportsTotal.WithLabelValues("error").Inc()
				return nil, fmt.Errorf("failed to insert imported subject: %w", err)
			}
			semester.Subjects = append(semester.Subjects, *subject)
		}
		semester.GPA = grading.SemesterGPA(semester.Subjects)
		result.Semester = semester
	}

	metrics.ImportsTotal.WithLabelValues("ok").Inc()
	return result, nil
}

type FeedbackInput struct {
	Type    string `json:"type" validate:"required,oneof=bug feature general"`
	Message string `json:"message" validate:"required"`
}

func (in *FeedbackInput) Validate() error {
	validate := validator.New()
	return validate.Struct(in)
}

// SubmitFeedback persists the feedback first, then asks the model to
// phrase an acknowledgement. A model failure never loses the feedback;
// the user just gets the canned confirmation.
func (s *Service) SubmitFeedback(ctx context.Context, userID string, input FeedbackInput) (string, error) {
	email := ""
	if user, err := s.Store.GetUserByID(userID); err == nil && user != nil {
		email = user.Email
	}

	feedback := &models.Feedback{
		ID:        uuid.NewString(),
		UserID:    userID,
		Email:     email,
		Type:      input.Type,
		Message:   input.Message,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.Store.CreateFeedback(feedback); err != nil {
		return "", fmt.Errorf("failed to save feedback: %w", err)
	}

	metrics.FeedbackTotal.WithLabelValues(feedback.Type).Inc()

	ack, err := s.Extractor.FeedbackAck(ctx, feedback.Type, feedback.Message)
	if err != nil {
		logger.Debug.Printf("Feedback ack generation failed, using fallback: %v", err)
		return fallbackAck, nil
	}
	return ack, nil
}

func (s *Service) Close() error {
	var errs []error

	if err := s.Store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("store: %w", err))
	}
	if err := s.Auth.Close(); err != nil {
		errs = append(errs, fmt.Errorf("auth: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors while closing: %v", errs)
	}
	return nil
}
