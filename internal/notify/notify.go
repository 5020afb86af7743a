// Package notify computes which reminder notifications should fire and
// when, and hands them to a dispatch collaborator. The scheduler is the
// only component that decides; dispatchers only present, best-effort.
package notify

import "time"

// Kind identifies a notification category. Each kind is independently
// toggle-able via Prefs.
type Kind string

const (
	// KindDueCardsReady fires when cards transition from not-due to due,
	// deduplicated per due set within a cool-down window.
	KindDueCardsReady Kind = "due-cards-ready"
	// KindStreakAtRisk fires at most once per local day, once the evening
	// threshold passes without recorded activity.
	KindStreakAtRisk Kind = "streak-at-risk"
	// KindBreakReminder fires at most once per continuous-active-time
	// threshold crossing during a session.
	KindBreakReminder Kind = "break-reminder"
)

// Notification is one pending reminder. DedupKey identifies the logical
// event so an already-fired notification is never produced again within
// the scheduler's runtime lifetime.
type Notification struct {
	FireAt   time.Time
	Kind     Kind
	DedupKey string
	Payload  map[string]string
}

// Prefs holds the learner's notification preferences.
type Prefs struct {
	DueCardsEnabled bool
	StreakEnabled   bool
	BreakEnabled    bool
	// DueCooldown suppresses repeat due-cards-ready notifications for the
	// same due set. Zero falls back to DefaultDueCooldown.
	DueCooldown time.Duration
	// AtRiskHour is the local hour past which an inactive day puts the
	// streak at risk. Zero falls back to DefaultAtRiskHour.
	AtRiskHour int
}

const (
	DefaultDueCooldown = 4 * time.Hour
	DefaultAtRiskHour  = 18
)

func (p Prefs) dueCooldown() time.Duration {
	if p.DueCooldown <= 0 {
		return DefaultDueCooldown
	}
	return p.DueCooldown
}

func (p Prefs) atRiskHour() int {
	if p.AtRiskHour <= 0 {
		return DefaultAtRiskHour
	}
	return p.AtRiskHour
}

// QueueSnapshot is the review queue's state at one instant, as consumed
// by the notification scheduler.
type QueueSnapshot struct {
	DueCardIDs []string
}
