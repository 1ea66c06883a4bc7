package models

import (
	"time"

	"github.com/go-playground/validator/v10"
)

type Feedback struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Email     string    `db:"email" json:"email"`
	Type      string    `db:"type" json:"type" validate:"required,oneof=bug feature general"`
	Message   string    `db:"message" json:"message" validate:"required"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

func (f *Feedback) Validate() error {
	validate := validator.New()
	return validate.Struct(f)
}
