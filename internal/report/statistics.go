// Package report aggregates study history into per-month statistics and
// renders them as markdown and PDF reports.
package report

import (
	"fmt"
	"sort"

	"github.com/synaptic-study/synaptic/internal/session"
)

// PeriodStatistics holds study statistics for one month.
type PeriodStatistics struct {
	Period            string // "2025-01"
	Sessions          int
	CompletedSessions int
	CardsReviewed     int
	StudyMinutes      int
	FlaggedSessions   int
}

// CompletionRate is the share of sessions that ran to completion, in
// the range 0 to 1.
func (p PeriodStatistics) CompletionRate() float64 {
	if p.Sessions == 0 {
		return 0
	}
	return float64(p.CompletedSessions) / float64(p.Sessions)
}

// AggregateStatistics holds totals across all periods.
type AggregateStatistics struct {
	Sessions          int
	CompletedSessions int
	CardsReviewed     int
	StudyMinutes      int
	FlaggedSessions   int
}

// StatisticsResult holds both per-period and aggregate statistics.
type StatisticsResult struct {
	Periods   []PeriodStatistics
	Aggregate AggregateStatistics
}

// CalculateStatistics aggregates finalized sessions into monthly
// statistics. It accepts optional year and month filters (0 means no
// filter). Sessions that never started are skipped.
func CalculateStatistics(sessions []session.ReviewSession, year, month int) StatisticsResult {
	stats := make(map[string]*PeriodStatistics)
	var aggregate AggregateStatistics

	for _, s := range sessions {
		if s.StartedAt.IsZero() {
			continue
		}

		sessionYear := s.StartedAt.Year()
		sessionMonth := int(s.StartedAt.Month())
		if !matchesFilter(sessionYear, sessionMonth, year, month) {
			continue
		}

		period := fmt.Sprintf("%d-%02d", sessionYear, sessionMonth)
		if stats[period] == nil {
			stats[period] = &PeriodStatistics{Period: period}
		}

		stats[period].Sessions++
		stats[period].CardsReviewed += s.CardsReviewed
		stats[period].StudyMinutes += s.DurationMinutes
		aggregate.Sessions++
		aggregate.CardsReviewed += s.CardsReviewed
		aggregate.StudyMinutes += s.DurationMinutes
		if s.Completed {
			stats[period].CompletedSessions++
			aggregate.CompletedSessions++
		}
		if s.Flagged {
			stats[period].FlaggedSessions++
			aggregate.FlaggedSessions++
		}
	}

	periods := make([]PeriodStatistics, 0, len(stats))
	for _, data := range stats {
		periods = append(periods, *data)
	}

	// Sort by period descending (newest first)
	sort.Slice(periods, func(i, j int) bool {
		return periods[i].Period > periods[j].Period
	})

	return StatisticsResult{
		Periods:   periods,
		Aggregate: aggregate,
	}
}

func matchesFilter(sessionYear, sessionMonth, filterYear, filterMonth int) bool {
	if filterYear == 0 {
		return true
	}
	if sessionYear != filterYear {
		return false
	}
	if filterMonth == 0 {
		return true
	}
	return sessionMonth == filterMonth
}
