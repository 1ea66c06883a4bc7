package models

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

type SubjectStatus string

const (
	StatusPass      SubjectStatus = "PASS"
	StatusReappear  SubjectStatus = "RA"
	StatusAbsentAAA SubjectStatus = "AAA"
	StatusWithdrawn SubjectStatus = "W"
	StatusAbsent    SubjectStatus = "ABS"
)

// Subject is the canonical course record. GradePoint, LetterGrade and
// (when marks are present) Status are derived by the grading package and
// persisted as-is; readers never recompute them.
type Subject struct {
	ID          string        `db:"id" json:"id"`
	SemesterID  string        `db:"semester_id" json:"semester_id"`
	UserID      string        `db:"user_id" json:"-"`
	Name        string        `db:"name" json:"name" validate:"required"`
	Credits     int           `db:"credits" json:"credits" validate:"min=1"`
	Marks       *float64      `db:"marks" json:"marks,omitempty"`
	Status      SubjectStatus `db:"status" json:"status"`
	GradePoint  int           `db:"grade_point" json:"grade_point"`
	LetterGrade string        `db:"letter_grade" json:"letter_grade"`
}

// SubjectInput is what the form endpoints and the AI importer supply
// before processing. Marks stay a pointer so "no marks recorded" and
// "scored zero" remain distinct.
type SubjectInput struct {
	Name    string        `json:"name" validate:"required"`
	Credits int           `json:"credits" validate:"required,min=1"`
	Marks   *float64      `json:"marks,omitempty" validate:"omitempty,gte=0,lte=100"`
	Status  SubjectStatus `json:"status" validate:"required,oneof=PASS RA AAA W ABS"`
}

func (in *SubjectInput) Validate() error {
	validate := validator.New()
	if err := validate.Struct(in); err != nil {
		return err
	}
	if in.Status == StatusPass && in.Marks == nil {
		return fmt.Errorf("marks are required when status is PASS")
	}
	return nil
}
