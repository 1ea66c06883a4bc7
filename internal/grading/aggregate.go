package grading

import (
	"math"

	"github.com/yourgrade/gradetrack/internal/models"
)

// round2 rounds half away from zero to two decimals.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// SemesterGPA is the credit-weighted average grade point over the passed
// subjects. Empty input, no passed subjects, or zero total credits all
// yield 0.
func SemesterGPA(subjects []models.Subject) float64 {
	var totalCredits, totalScore int
	for _, s := range subjects {
		if s.Status != models.StatusPass {
			continue
		}
		totalCredits += s.Credits
		totalScore += s.Credits * s.GradePoint
	}
	if totalCredits == 0 {
		return 0
	}
	return round2(float64(totalScore) / float64(totalCredits))
}

// CumulativeGPA flattens every subject across all semesters and applies
// the same weighted average. This is NOT the mean of semester GPAs:
// weighting stays per subject credit, so heavy semesters count for more.
func CumulativeGPA(semesters []models.Semester) float64 {
	var all []models.Subject
	for _, sem := range semesters {
		all = append(all, sem.Subjects...)
	}
	return SemesterGPA(all)
}
