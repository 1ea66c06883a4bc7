package models

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// Semester groups subjects. Subjects and GPA are projections filled in by
// the service layer; only id, user_id, name and created_at live in the
// semesters table.
type Semester struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"-"`
	Name      string    `db:"name" json:"name" validate:"required"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`

	Subjects []Subject `db:"-" json:"subjects"`
	GPA      float64   `db:"-" json:"gpa"`
}

type SemesterInput struct {
	Name string `json:"name" validate:"required"`
}

func (in *SemesterInput) Validate() error {
	validate := validator.New()
	return validate.Struct(in)
}
