package grading

import (
	"github.com/yourgrade/gradetrack/internal/models"
)

// Grade is the outcome of looking a mark up in the scale.
type Grade struct {
	Point  int
	Letter string
	Status models.SubjectStatus
}

// GradeFor maps marks to a letter band and grade point. Bands are
// lower-inclusive, upper-exclusive, except the top band which is closed.
// Anything that matches no PASS band falls through to RA; callers are
// expected to have validated marks into [0,100] already.
func GradeFor(marks float64) Grade {
	switch {
	case marks >= 90 && marks <= 100:
		return Grade{Point: 10, Letter: "A++", Status: models.StatusPass}
	case marks >= 80 && marks < 90:
		return Grade{Point: 9, Letter: "A+", Status: models.StatusPass}
	case marks >= 70 && marks < 80:
		return Grade{Point: 8, Letter: "B++", Status: models.StatusPass}
	case marks >= 60 && marks < 70:
		return Grade{Point: 7, Letter: "B+", Status: models.StatusPass}
	case marks >= 50 && marks < 60:
		return Grade{Point: 6, Letter: "C", Status: models.StatusPass}
	default:
		return Grade{Point: 0, Letter: "RA", Status: models.StatusReappear}
	}
}
