package sqlite

import (
	"log"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourgrade/gradetrack/internal/models"
	"github.com/yourgrade/gradetrack/internal/store"
)

// setupTestDB creates an in-memory SQLite database with the translated schema
func setupTestDB(t *testing.T) (*SQLiteStore, func()) {
	s, err := NewSQLiteStore(":memory:", "../../../migrations")
	require.NoError(t, err, "Failed to create store")

	cleanup := func() {
		err := s.Close()
		require.NoError(t, err, "Failed to close database")
	}

	return s, cleanup
}

type testData struct {
	store *SQLiteStore
	user  models.User
}

func setupTestData(t *testing.T) (*testData, func()) {
	s, cleanup := setupTestDB(t)

	user := models.User{
		ID:           "user-1",
		Email:        "jane.doe@example.com",
		PasswordHash: "$2a$10$notarealhash",
		CreatedAt:    time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, s.CreateUser(&user), "Failed to insert test user")

	return &testData{
		store: s,
		user:  user,
	}, cleanup
}

func TestMain(m *testing.M) {
	log.Println("Starting SQLite store tests...")
	code := m.Run()
	log.Println("Finished SQLite store tests")
	os.Exit(code)
}

func marksOf(v float64) *float64 {
	return &v
}

func TestUserRoundtrip(t *testing.T) {
	td, cleanup := setupTestData(t)
	defer cleanup()

	t.Run("get by email", func(t *testing.T) {
		got, err := td.store.GetUserByEmail(td.user.Email)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, td.user.ID, got.ID)
		assert.Equal(t, td.user.PasswordHash, got.PasswordHash)
	})

	t.Run("get by id", func(t *testing.T) {
		got, err := td.store.GetUserByID(td.user.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, td.user.Email, got.Email)
	})

	t.Run("unknown email yields nil", func(t *testing.T) {
		got, err := td.store.GetUserByEmail("nobody@example.com")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("list users", func(t *testing.T) {
		users, err := td.store.ListUsers()
		require.NoError(t, err)
		assert.Len(t, users, 1)
	})
}

func TestSemesterLifecycle(t *testing.T) {
	td, cleanup := setupTestData(t)
	defer cleanup()

	semester := models.Semester{
		ID:        "sem-1",
		UserID:    td.user.ID,
		Name:      "Semester 1",
		CreatedAt: time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC),
	}

	t.Run("create and get", func(t *testing.T) {
		require.NoError(t, td.store.CreateSemester(&semester))

		got, err := td.store.GetSemester(td.user.ID, semester.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "Semester 1", got.Name)
	})

	t.Run("other users cannot see it", func(t *testing.T) {
		got, err := td.store.GetSemester("someone-else", semester.ID)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("rename", func(t *testing.T) {
		require.NoError(t, td.store.RenameSemester(td.user.ID, semester.ID, "Semester I"))

		got, err := td.store.GetSemester(td.user.ID, semester.ID)
		require.NoError(t, err)
		assert.Equal(t, "Semester I", got.Name)
	})

	t.Run("rename scoped to owner", func(t *testing.T) {
		err := td.store.RenameSemester("someone-else", semester.ID, "hijacked")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("delete cascades to subjects", func(t *testing.T) {
		subject := models.Subject{
			ID:          "sub-1",
			SemesterID:  semester.ID,
			UserID:      td.user.ID,
			Name:        "Calculus",
			Credits:     4,
			Marks:       marksOf(91),
			Status:      models.StatusPass,
			GradePoint:  10,
			LetterGrade: "A++",
		}
		require.NoError(t, td.store.CreateSubject(&subject))

		require.NoError(t, td.store.DeleteSemester(td.user.ID, semester.ID))

		gotSem, err := td.store.GetSemester(td.user.ID, semester.ID)
		require.NoError(t, err)
		assert.Nil(t, gotSem)

		// no orphan subjects may survive the semester
		subjects, err := td.store.ListAllSubjects(td.user.ID)
		require.NoError(t, err)
		assert.Empty(t, subjects)
	})

	t.Run("delete unknown semester", func(t *testing.T) {
		err := td.store.DeleteSemester(td.user.ID, "sem-nope")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestSubjectCRUD(t *testing.T) {
	td, cleanup := setupTestData(t)
	defer cleanup()

	semester := models.Semester{
		ID:        "sem-1",
		UserID:    td.user.ID,
		Name:      "Semester 1",
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, td.store.CreateSemester(&semester))

	subject := models.Subject{
		ID:          "sub-1",
		SemesterID:  semester.ID,
		UserID:      td.user.ID,
		Name:        "Data Structures",
		Credits:     4,
		Marks:       marksOf(82),
		Status:      models.StatusPass,
		GradePoint:  9,
		LetterGrade: "A+",
	}

	t.Run("create and get", func(t *testing.T) {
		require.NoError(t, td.store.CreateSubject(&subject))

		got, err := td.store.GetSubject(td.user.ID, semester.ID, subject.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, 9, got.GradePoint)
		require.NotNil(t, got.Marks)
		assert.Equal(t, 82.0, *got.Marks)
	})

	t.Run("nil marks stay nil", func(t *testing.T) {
		withdrawn := models.Subject{
			ID:          "sub-2",
			SemesterID:  semester.ID,
			UserID:      td.user.ID,
			Name:        "Workshop",
			Credits:     2,
			Status:      models.StatusWithdrawn,
			GradePoint:  0,
			LetterGrade: "-",
		}
		require.NoError(t, td.store.CreateSubject(&withdrawn))

		got, err := td.store.GetSubject(td.user.ID, semester.ID, withdrawn.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Nil(t, got.Marks)
		assert.Equal(t, models.StatusWithdrawn, got.Status)
	})

	t.Run("update", func(t *testing.T) {
		subject.Marks = marksOf(65)
		subject.GradePoint = 7
		subject.LetterGrade = "B+"
		require.NoError(t, td.store.UpdateSubject(&subject))

		got, err := td.store.GetSubject(td.user.ID, semester.ID, subject.ID)
		require.NoError(t, err)
		assert.Equal(t, 7, got.GradePoint)
		assert.Equal(t, "B+", got.LetterGrade)
	})

	t.Run("update scoped to owner", func(t *testing.T) {
		foreign := subject
		foreign.UserID = "someone-else"
		err := td.store.UpdateSubject(&foreign)
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("list per semester", func(t *testing.T) {
		subjects, err := td.store.ListSubjects(td.user.ID, semester.ID)
		require.NoError(t, err)
		assert.Len(t, subjects, 2)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, td.store.DeleteSubject(td.user.ID, semester.ID, subject.ID))

		got, err := td.store.GetSubject(td.user.ID, semester.ID, subject.ID)
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestCreateFeedback(t *testing.T) {
	td, cleanup := setupTestData(t)
	defer cleanup()

	feedback := models.Feedback{
		ID:        "fb-1",
		UserID:    td.user.ID,
		Email:     td.user.Email,
		Type:      "bug",
		Message:   "GPA readout is stuck after deleting a semester",
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, td.store.CreateFeedback(&feedback))
}
