package srs

import (
	"math"
	"time"
)

// Schedule computes the next scheduling state for a card after one graded
// review at the given instant. It follows SM-2:
//
//   - grade < 3: repetitions reset to 0, interval resets to 1 day, the
//     ease factor is left unchanged.
//   - grade >= 3: repetitions increment; the interval is 1 day for the
//     first repetition, 6 days for the second, and round(previous * EF)
//     afterwards; the ease factor moves by
//     0.1 - (5-q)*(0.08 + (5-q)*0.02) and is clamped at 1.3 after the
//     update.
//
// Interval rounding is half-up. The input state is not mutated; the caller
// persists the returned state.
func Schedule(state CardState, grade Grade, now time.Time) (CardState, error) {
	if !grade.IsValid() {
		return CardState{}, ErrInvalidGrade
	}

	next := state
	if next.EaseFactor == 0 {
		next.EaseFactor = DefaultEaseFactor
	}

	if !grade.Passed() {
		next.Repetitions = 0
		next.IntervalDays = 1
	} else {
		next.Repetitions++
		switch next.Repetitions {
		case 1:
			next.IntervalDays = 1
		case 2:
			next.IntervalDays = 6
		default:
			next.IntervalDays = roundHalfUp(float64(next.IntervalDays) * next.EaseFactor)
		}
		next.EaseFactor = nextEaseFactor(next.EaseFactor, grade)
	}

	next.DueAt = now.AddDate(0, 0, next.IntervalDays)
	reviewedAt := now
	next.LastReviewedAt = &reviewedAt
	return next, nil
}

// nextEaseFactor applies the SM-2 ease-factor delta for a successful
// recall and clamps the result at MinEaseFactor.
func nextEaseFactor(ef float64, grade Grade) float64 {
	q := float64(grade)
	next := ef + (0.1 - (5-q)*(0.08+(5-q)*0.02))
	return math.Max(next, MinEaseFactor)
}

func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
