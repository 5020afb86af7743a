package srs

import "fmt"

// Grade is a recall quality score on the SM-2 scale of 0 to 5.
type Grade int

const (
	GradeBlackout Grade = 0 // no recall at all
	GradeWrong    Grade = 1 // wrong, but the answer felt familiar
	GradeAlmost   Grade = 2 // wrong, but close
	GradeHard     Grade = 3 // correct with serious difficulty
	GradeGood     Grade = 4 // correct after some hesitation
	GradePerfect  Grade = 5 // correct instantly
)

// A grade of 3 or higher counts as a successful recall in SM-2.
const passingGrade = GradeHard

// IsValid reports whether g is within the SM-2 grade domain.
func (g Grade) IsValid() bool {
	return g >= GradeBlackout && g <= GradePerfect
}

// Passed reports whether the grade counts as a successful recall.
func (g Grade) Passed() bool {
	return g >= passingGrade
}

func (g Grade) String() string {
	if !g.IsValid() {
		return fmt.Sprintf("Grade(%d)", int(g))
	}
	return [...]string{"blackout", "wrong", "almost", "hard", "good", "perfect"}[g]
}

// GradeFromAnswer maps the simplified four-button answer scale onto the
// 0-5 SM-2 grade domain.
func GradeFromAnswer(answer string) (Grade, error) {
	switch answer {
	case "again":
		return GradeWrong, nil
	case "hard":
		return GradeHard, nil
	case "good":
		return GradeGood, nil
	case "easy":
		return GradePerfect, nil
	}
	return 0, fmt.Errorf("%w: unknown answer %q", ErrInvalidGrade, answer)
}
