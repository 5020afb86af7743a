package srs

import "errors"

// ErrInvalidGrade is returned when a grade falls outside the 0-5 domain.
// Check with errors.Is.
var ErrInvalidGrade = errors.New("srs: invalid grade")
