package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/synaptic-study/synaptic/internal/streak"
)

// RenderMarkdown formats a statistics result and streak record as a
// markdown report.
func RenderMarkdown(learnerID string, result StatisticsResult, record streak.Record, generatedAt time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Study Report: %s\n\n", learnerID)
	fmt.Fprintf(&b, "Generated on %s\n\n", generatedAt.Format("2006-01-02"))

	b.WriteString("## Streak\n\n")
	fmt.Fprintf(&b, "- Current streak: %d days\n", record.CurrentStreak)
	fmt.Fprintf(&b, "- Longest streak: %d days\n", record.LongestStreak)
	if !record.LastActivityDate.IsZero() {
		fmt.Fprintf(&b, "- Last activity: %s\n", record.LastActivityDate)
	}
	b.WriteString("\n")

	b.WriteString("## Monthly Statistics\n\n")
	if len(result.Periods) == 0 {
		b.WriteString("No study sessions recorded.\n")
		return b.String()
	}

	b.WriteString("| Month | Sessions | Completed | Cards | Minutes | Flagged |\n")
	b.WriteString("| --- | ---: | ---: | ---: | ---: | ---: |\n")
	for _, p := range result.Periods {
		fmt.Fprintf(&b, "| %s | %d | %d (%.0f%%) | %d | %d | %d |\n",
			p.Period, p.Sessions, p.CompletedSessions, p.CompletionRate()*100,
			p.CardsReviewed, p.StudyMinutes, p.FlaggedSessions)
	}
	b.WriteString("\n")

	agg := result.Aggregate
	b.WriteString("## Totals\n\n")
	fmt.Fprintf(&b, "- Sessions: %d (%d completed)\n", agg.Sessions, agg.CompletedSessions)
	fmt.Fprintf(&b, "- Cards reviewed: %d\n", agg.CardsReviewed)
	fmt.Fprintf(&b, "- Study time: %d minutes\n", agg.StudyMinutes)
	if agg.FlaggedSessions > 0 {
		fmt.Fprintf(&b, "- Flagged sessions: %d\n", agg.FlaggedSessions)
	}

	return b.String()
}

// WriteMarkdown writes the report under outputDir and returns the file
// path.
func WriteMarkdown(outputDir, learnerID string, generatedAt time.Time, markdown string) (string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("os.MkdirAll(%s) > %w", outputDir, err)
	}

	fileName := fmt.Sprintf("%s-%s.md", learnerID, generatedAt.Format("2006-01-02"))
	path := filepath.Join(outputDir, fileName)
	if err := os.WriteFile(path, []byte(markdown), 0o644); err != nil {
		return "", fmt.Errorf("os.WriteFile(%s) > %w", path, err)
	}
	return path, nil
}
