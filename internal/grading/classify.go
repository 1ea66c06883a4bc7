package grading

// Classification is the degree-honours tier for a CGPA.
type Classification struct {
	Label   string `json:"classification"`
	Awarded bool   `json:"awarded"`
}

// Classify maps a CGPA to its classification band, first match wins.
// Values outside [0,10] are not rejected: negatives land in Not Awarded,
// anything over 9 in the top band.
func Classify(cgpa float64) Classification {
	switch {
	case cgpa >= 9.0:
		return Classification{Label: "First Class – Exemplary", Awarded: true}
	case cgpa >= 7.5:
		return Classification{Label: "First Class with Distinction", Awarded: true}
	case cgpa >= 6.0:
		return Classification{Label: "First Class", Awarded: true}
	case cgpa >= 5.0:
		return Classification{Label: "Second Class", Awarded: true}
	default:
		return Classification{Label: "Not Awarded", Awarded: false}
	}
}
