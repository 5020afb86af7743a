// Package streak tracks consecutive calendar days of learner activity.
// All functions are pure over an explicit Record; callers persist the
// result. Day comparisons use the learner's local calendar date.
package streak

import (
	"errors"
	"time"
)

// ErrOutOfOrderActivity is returned when an activity date predates the
// last recorded one. The caller must log and discard the update; it
// protects the record from clock skew and replayed events.
var ErrOutOfOrderActivity = errors.New("streak: activity date is older than the last recorded date")

// Record holds a learner's streak state. LongestStreak >= CurrentStreak
// always holds after a successful update.
type Record struct {
	LastActivityDate Date `yaml:"last_activity_date" db:"last_activity_date"`
	CurrentStreak    int  `yaml:"current_streak" db:"current_streak"`
	LongestStreak    int  `yaml:"longest_streak" db:"longest_streak"`
}

// RecordActivity applies one day of learner activity to the record.
// Repeated calls with the same date are idempotent; the day after the
// last activity extends the streak; a gap of two or more days restarts
// it at 1. An older date fails with ErrOutOfOrderActivity and leaves the
// record unchanged.
func RecordActivity(r Record, activityDate Date) (Record, error) {
	if r.LastActivityDate.IsZero() {
		r.CurrentStreak = 1
		r.LastActivityDate = activityDate
		r.LongestStreak = max(r.LongestStreak, r.CurrentStreak)
		return r, nil
	}

	switch days := activityDate.DaysSince(r.LastActivityDate); {
	case days < 0:
		return r, ErrOutOfOrderActivity
	case days == 0:
		return r, nil
	case days == 1:
		r.CurrentStreak++
	default:
		r.CurrentStreak = 1
	}

	r.LastActivityDate = activityDate
	r.LongestStreak = max(r.LongestStreak, r.CurrentStreak)
	return r, nil
}

// IsAtRisk reports whether the streak will break unless the learner acts
// today: the local day has passed the at-risk threshold and no activity
// has been recorded for today yet. Stateless; recomputed from the clock.
// atRiskHour is the local hour of day (0-23) past which the streak counts
// as at risk.
func IsAtRisk(r Record, now time.Time, atRiskHour int) bool {
	if r.CurrentStreak == 0 {
		return false
	}
	today := DateOf(now)
	if !r.LastActivityDate.Before(today) {
		return false
	}
	return now.Hour() >= atRiskHour
}
