package store

import (
	"database/sql"
	"fmt"
	"os"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/yourgrade/gradetrack/internal/models"
)

type GradeStore interface {
	Close() error
	ApplyMigrations(dir string) error

	CreateUser(user *models.User) error
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	ListUsers() ([]models.User, error)

	CreateSemester(semester *models.Semester) error
	RenameSemester(userID, semesterID, name string) error
	DeleteSemester(userID, semesterID string) error
	GetSemester(userID, semesterID string) (*models.Semester, error)
	ListSemesters(userID string) ([]models.Semester, error)

	CreateSubject(subject *models.Subject) error
	UpdateSubject(subject *models.Subject) error
	DeleteSubject(userID, semesterID, subjectID string) error
	GetSubject(userID, semesterID, subjectID string) (*models.Subject, error)
	ListSubjects(userID, semesterID string) ([]models.Subject, error)
	ListAllSubjects(userID string) ([]models.Subject, error)

	CreateFeedback(feedback *models.Feedback) error
}

// BaseStore provides common functionality for different DB implementations
type BaseStore struct {
	DB        *sqlx.DB
	Converter func(string) string
}

func (s *BaseStore) Close() error {
	if s.DB != nil {
		return s.DB.Close()
	}
	return nil
}

// ApplyMigrations applies SQL migrations from a directory, translating dialect if needed
func (s *BaseStore) ApplyMigrations(dir string, translateSQL func(string) string) error {
	files, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	for _, file := range files {
		if !strings.HasSuffix(file.Name(), ".sql") {
			continue
		}

		content, err := os.ReadFile(fmt.Sprintf("%s/%s", dir, file.Name()))
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", file.Name(), err)
		}

		sql := string(content)
		if translateSQL != nil {
			sql = translateSQL(sql)
		}

		if _, err := s.DB.Exec(sql); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", file.Name(), err)
		}
	}

	return nil
}

func (s *BaseStore) CreateUser(user *models.User) error {
	_, err := s.DB.NamedExec(`
		INSERT INTO users (id, email, password_hash, created_at)
		VALUES (:id, :email, :password_hash, :created_at)
	`, user)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (s *BaseStore) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	query := s.Converter(`
		SELECT id, email, password_hash, created_at
		FROM users
		WHERE email = ?
	`)

	err := s.DB.Get(&user, query, email)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &user, nil
}

func (s *BaseStore) GetUserByID(id string) (*models.User, error) {
	var user models.User
	query := s.Converter(`
		SELECT id, email, password_hash, created_at
		FROM users
		WHERE id = ?
	`)

	err := s.DB.Get(&user, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (s *BaseStore) ListUsers() ([]models.User, error) {
	var users []models.User
	err := s.DB.Select(&users, `
		SELECT id, email, password_hash, created_at
		FROM users
		ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (s *BaseStore) CreateSemester(semester *models.Semester) error {
	_, err := s.DB.NamedExec(`
		INSERT INTO semesters (id, user_id, name, created_at)
		VALUES (:id, :user_id, :name, :created_at)
	`, semester)
	if err != nil {
		return fmt.Errorf("failed to create semester: %w", err)
	}
	return nil
}

func (s *BaseStore) RenameSemester(userID, semesterID, name string) error {
	query := s.Converter(`
		UPDATE semesters
		SET name = ?
		WHERE id = ? AND user_id = ?
	`)

	res, err := s.DB.Exec(query, name, semesterID, userID)
	if err != nil {
		return fmt.Errorf("failed to rename semester: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteSemester removes a semester and all its subjects in a single
// transaction. No orphan subjects may survive their semester.
func (s *BaseStore) DeleteSemester(userID, semesterID string) error {
	tx, err := s.DB.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin semester delete: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(s.Converter(`
		DELETE FROM subjects WHERE semester_id = ? AND user_id = ?
	`), semesterID, userID); err != nil {
		return fmt.Errorf("failed to delete semester subjects: %w", err)
	}

	res, err := tx.Exec(s.Converter(`
		DELETE FROM semesters WHERE id = ? AND user_id = ?
	`), semesterID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete semester: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}

	return tx.Commit()
}

func (s *BaseStore) GetSemester(userID, semesterID string) (*models.Semester, error) {
	var semester models.Semester
	query := s.Converter(`
		SELECT id, user_id, name, created_at
		FROM semesters
		WHERE id = ? AND user_id = ?
	`)

	err := s.DB.Get(&semester, query, semesterID, userID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get semester: %w", err)
	}
	return &semester, nil
}

func (s *BaseStore) ListSemesters(userID string) ([]models.Semester, error) {
	var semesters []models.Semester
	query := s.Converter(`
		SELECT id, user_id, name, created_at
		FROM semesters
		WHERE user_id = ?
		ORDER BY created_at ASC
	`)

	err := s.DB.Select(&semesters, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list semesters: %w", err)
	}
	return semesters, nil
}

func (s *BaseStore) CreateSubject(subject *models.Subject) error {
	_, err := s.DB.NamedExec(`
		INSERT INTO subjects (id, semester_id, user_id, name, credits, marks, status, grade_point, letter_grade)
		VALUES (:id, :semester_id, :user_id, :name, :credits, :marks, :status, :grade_point, :letter_grade)
	`, subject)
	if err != nil {
		return fmt.Errorf("failed to create subject: %w", err)
	}
	return nil
}

func (s *BaseStore) UpdateSubject(subject *models.Subject) error {
	res, err := s.DB.NamedExec(`
		UPDATE subjects
		SET name = :name,
			credits = :credits,
			marks = :marks,
			status = :status,
			grade_point = :grade_point,
			letter_grade = :letter_grade
		WHERE id = :id AND semester_id = :semester_id AND user_id = :user_id
	`, subject)
	if err != nil {
		return fmt.Errorf("failed to update subject: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *BaseStore) DeleteSubject(userID, semesterID, subjectID string) error {
	query := s.Converter(`
		DELETE FROM subjects
		WHERE id = ? AND semester_id = ? AND user_id = ?
	`)

	res, err := s.DB.Exec(query, subjectID, semesterID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete subject: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *BaseStore) GetSubject(userID, semesterID, subjectID string) (*models.Subject, error) {
	var subject models.Subject
	query := s.Converter(`
		SELECT id, semester_id, user_id, name, credits, marks, status, grade_point, letter_grade
		FROM subjects
		WHERE id = ? AND semester_id = ? AND user_id = ?
	`)

	err := s.DB.Get(&subject, query, subjectID, semesterID, userID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get subject: %w", err)
	}
	return &subject, nil
}

func (s *BaseStore) ListSubjects(userID, semesterID string) ([]models.Subject, error) {
	var subjects []models.Subject
	query := s.Converter(`
		SELECT id, semester_id, user_id, name, credits, marks, status, grade_point, letter_grade
		FROM subjects
		WHERE semester_id = ? AND user_id = ?
		ORDER BY name ASC
	`)

	err := s.DB.Select(&subjects, query, semesterID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list subjects: %w", err)
	}
	return subjects, nil
}

func (s *BaseStore) ListAllSubjects(userID string) ([]models.Subject, error) {
	var subjects []models.Subject
	query := s.Converter(`
		SELECT id, semester_id, user_id, name, credits, marks, status, grade_point, letter_grade
		FROM subjects
		WHERE user_id = ?
		ORDER BY semester_id, name ASC
	`)

	err := s.DB.Select(&subjects, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list all subjects: %w", err)
	}
	return subjects, nil
}

func (s *BaseStore) CreateFeedback(feedback *models.Feedback) error {
	_, err := s.DB.NamedExec(`
		INSERT INTO feedback (id, user_id, email, type, message, created_at)
		VALUES (:id, :user_id, :email, :type, :message, :created_at)
	`, feedback)
	if err != nil {
		return fmt.Errorf("failed to create feedback: %w", err)
	}
	return nil
}
