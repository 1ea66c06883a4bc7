package grading

import (
	"github.com/google/uuid"

	"github.com/yourgrade/gradetrack/internal/models"
)

// RawSubject is a subject before derivation, as supplied by forms or the
// AI importer. The caller-supplied status only matters when no marks are
// recorded; once marks exist, the scale decides.
type RawSubject struct {
	ID      string
	Name    string
	Credits int
	Marks   *float64
	Status  models.SubjectStatus
}

// ProcessSubject derives grade point, letter grade and final status for a
// raw subject. Missing IDs get a fresh UUID. Feeding a canonical subject's
// fields back through (with its ID) yields the identical subject.
func ProcessSubject(raw RawSubject) models.Subject {
	gradePoint := 0
	letterGrade := "-"
	finalStatus := raw.Status

	if raw.Marks != nil {
		grade := GradeFor(*raw.Marks)
		gradePoint = grade.Point
		letterGrade = grade.Letter
		if grade.Status == models.StatusReappear {
			finalStatus = models.StatusReappear
		} else {
			finalStatus = models.StatusPass
		}
	}

	// Non-passing subjects never carry grade points.
	if finalStatus != models.StatusPass {
		gradePoint = 0
	}

	id := raw.ID
	if id == "" {
		id = uuid.NewString()
	}

	return models.Subject{
		ID:          id,
		Name:        raw.Name,
		Credits:     raw.Credits,
		Marks:       raw.Marks,
		Status:      finalStatus,
		GradePoint:  gradePoint,
		LetterGrade: letterGrade,
	}
}
