package notify

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
)

// ConsoleDispatcher prints notifications to a terminal. It is the default
// dispatcher for CLI sessions and is always supported and enabled.
type ConsoleDispatcher struct {
	writer io.Writer
	bold   *color.Color
	dim    *color.Color
}

// NewConsoleDispatcher creates a dispatcher writing to w.
func NewConsoleDispatcher(w io.Writer) *ConsoleDispatcher {
	return &ConsoleDispatcher{
		writer: w,
		bold:   color.New(color.Bold),
		dim:    color.New(color.Faint),
	}
}

func (d *ConsoleDispatcher) IsSupported() bool {
	return true
}

func (d *ConsoleDispatcher) IsEnabled() bool {
	return true
}

func (d *ConsoleDispatcher) RequestPermission(_ context.Context) (Permission, error) {
	return PermissionGranted, nil
}

// Show renders the notification as a short terminal banner.
func (d *ConsoleDispatcher) Show(_ context.Context, n Notification) error {
	var message string
	switch n.Kind {
	case KindDueCardsReady:
		message = fmt.Sprintf("%s cards are ready for review", n.Payload["due_count"])
	case KindStreakAtRisk:
		message = fmt.Sprintf("your %s-day streak ends tonight without a session", n.Payload["current_streak"])
	case KindBreakReminder:
		message = "you've been studying a while, consider a short break"
	default:
		message = string(n.Kind)
	}

	if _, err := fmt.Fprintf(d.writer, "\n%s %s %s\n",
		d.bold.Sprint("[reminder]"),
		message,
		d.dim.Sprintf("(%s)", n.FireAt.Format("15:04"))); err != nil {
		return fmt.Errorf("fmt.Fprintf() > %w", err)
	}
	return nil
}
