// Package cli implements the interactive terminal front ends: the review
// session loop, the statistics report and the reminder daemon.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/synaptic-study/synaptic/internal/clock"
	"github.com/synaptic-study/synaptic/internal/review"
	"github.com/synaptic-study/synaptic/internal/session"
	"github.com/synaptic-study/synaptic/internal/srs"
	"github.com/synaptic-study/synaptic/internal/store"
)

var errEnd = errors.New("end")

// ReviewCLI manages the interactive review session in the terminal.
type ReviewCLI struct {
	service      *review.Service
	clk          clock.Clock
	learnerID    string
	queueLimit   int
	queue        []string
	timer        *session.Timer
	stdinReader  *bufio.Reader
	stdoutWriter io.Writer
	bold         *color.Color
	faint        *color.Color
	warn         *color.Color
}

// NewReviewCLI creates a new interactive review CLI.
func NewReviewCLI(service *review.Service, clk clock.Clock, learnerID string, queueLimit int) *ReviewCLI {
	return &ReviewCLI{
		service:      service,
		clk:          clk,
		learnerID:    learnerID,
		queueLimit:   queueLimit,
		stdinReader:  bufio.NewReader(os.Stdin),
		stdoutWriter: os.Stdout,
		bold:         color.New(color.Bold),
		faint:        color.New(color.Faint),
		warn:         color.New(color.FgYellow, color.Bold),
	}
}

// Run drives the review session until the queue is drained, the learner
// quits, or an interrupt arrives. The session record is finalized and
// persisted on every exit path.
func (cli *ReviewCLI) Run(ctx context.Context) error {
	queue, err := cli.service.DueQueue(ctx, cli.learnerID, cli.queueLimit)
	if err != nil {
		return fmt.Errorf("service.DueQueue > %w", err)
	}
	if len(queue) == 0 {
		fmt.Fprintln(cli.stdoutWriter, "No cards are due right now. Come back later!")
		return nil
	}
	cli.queue = queue

	timer, err := cli.service.StartSession(session.TypeReview)
	if err != nil {
		return fmt.Errorf("service.StartSession > %w", err)
	}
	cli.timer = timer

	monitor := session.StartMonitor(timer, cli.clk, time.Second, cli.handleTimerEvent)
	defer monitor.Stop()

	fmt.Fprintf(cli.stdoutWriter, "%d cards to review. Answer with again, hard, good or easy; quit to stop.\n\n", len(queue))

	ctx, cancel := signal.NotifyContext(
		ctx,
		os.Interrupt,
	)
	defer cancel()

	errCh := make(chan error)
	go func() {
		defer close(errCh)

	LOOP:
		for {
			select {
			case <-ctx.Done():
				break LOOP
			default:
			}

			if err := cli.session(ctx); err != nil {
				if errors.Is(err, errEnd) {
					break
				}
				errCh <- err
				break
			}
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		fmt.Fprintln(cli.stdoutWriter, "Received interrupt signal, exiting...")
	case err := <-errCh:
		runErr = err
	}

	cli.finish(runErr == nil && len(cli.queue) == 0)
	if runErr != nil {
		return fmt.Errorf("error: %w", runErr)
	}
	return nil
}

// session reviews a single card.
func (cli *ReviewCLI) session(ctx context.Context) error {
	if len(cli.queue) == 0 {
		fmt.Fprintln(cli.stdoutWriter, "All caught up!")
		return errEnd
	}
	cardID := cli.queue[0]

	_, _ = cli.bold.Fprintf(cli.stdoutWriter, "%s", cardID)
	fmt.Fprint(cli.stdoutWriter, " [again/hard/good/easy/quit]: ")

	input, err := cli.stdinReader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("error reading input: %w", err)
	}
	if cli.timer.State() == session.StatePaused {
		// An answer after an inactivity auto-pause resumes the session.
		_ = cli.timer.Resume(cli.clk.Now())
	}
	cli.timer.Touch(cli.clk.Now())

	answer := strings.ToLower(strings.TrimSpace(input))
	if answer == "quit" || answer == "exit" {
		return errEnd
	}

	grade, err := srs.GradeFromAnswer(answer)
	if err != nil {
		_, _ = cli.faint.Fprintln(cli.stdoutWriter, "Please answer with again, hard, good, easy or quit.")
		return nil
	}

	state, err := cli.service.SubmitReview(ctx, cli.learnerID, cardID, grade)
	if err != nil {
		if errors.Is(err, store.ErrUnavailable) {
			_, _ = cli.warn.Fprintln(cli.stdoutWriter, "Could not save; your progress is kept and will be retried.")
		} else {
			return fmt.Errorf("service.SubmitReview(%s) > %w", cardID, err)
		}
	}

	cli.timer.RecordCardReview(cli.clk.Now())
	cli.queue = cli.queue[1:]
	_, _ = cli.faint.Fprintf(cli.stdoutWriter, "Next review on %s. %d cards left.\n\n",
		state.DueAt.Format("2006-01-02"), len(cli.queue))
	return nil
}

func (cli *ReviewCLI) finish(completed bool) {
	// The session record itself must survive an interrupt, so use a
	// fresh context here.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	finished, record, err := cli.service.FinishSession(ctx, cli.learnerID, cli.timer, completed)
	if err != nil {
		_, _ = cli.warn.Fprintf(cli.stdoutWriter, "Failed to record the session: %v\n", err)
		return
	}

	fmt.Fprintf(cli.stdoutWriter, "Session over: %d cards in %d minutes.\n", finished.CardsReviewed, finished.DurationMinutes)
	if record.CurrentStreak > 0 {
		_, _ = cli.bold.Fprintf(cli.stdoutWriter, "Streak: %d days (best %d).\n", record.CurrentStreak, record.LongestStreak)
	}
}

func (cli *ReviewCLI) handleTimerEvent(event session.Event) {
	switch event.Kind {
	case session.EventBreakDue:
		_, _ = cli.warn.Fprintln(cli.stdoutWriter, "\nYou have been reviewing without a break for a while. Stand up and stretch!")
	case session.EventAutoPaused:
		_, _ = cli.faint.Fprintln(cli.stdoutWriter, "\nSession paused after inactivity. Answer to resume.")
	case session.EventTimedOut:
		_, _ = cli.warn.Fprintln(cli.stdoutWriter, "\nSession reached its maximum duration and was closed.")
	}
}
