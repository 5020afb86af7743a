package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"

	"github.com/synaptic-study/synaptic/internal/clock"
	"github.com/synaptic-study/synaptic/internal/report"
	"github.com/synaptic-study/synaptic/internal/review"
)

// StatsCLI prints study statistics and optionally exports them as a
// markdown and PDF report.
type StatsCLI struct {
	service      *review.Service
	clk          clock.Clock
	learnerID    string
	outputDir    string
	stdoutWriter io.Writer
	bold         *color.Color
	faint        *color.Color
}

// NewStatsCLI creates a new statistics CLI.
func NewStatsCLI(service *review.Service, clk clock.Clock, learnerID, outputDir string) *StatsCLI {
	return &StatsCLI{
		service:      service,
		clk:          clk,
		learnerID:    learnerID,
		outputDir:    outputDir,
		stdoutWriter: os.Stdout,
		bold:         color.New(color.Bold),
		faint:        color.New(color.Faint),
	}
}

// Run prints statistics filtered by the optional year and month (0 means
// no filter). With exportPDF the report is also written to the output
// directory as markdown and PDF.
func (cli *StatsCLI) Run(ctx context.Context, year, month int, exportPDF bool) error {
	sessions, err := cli.service.Sessions(ctx, cli.learnerID)
	if err != nil {
		return fmt.Errorf("service.Sessions > %w", err)
	}
	record, atRisk, err := cli.service.Streak(ctx, cli.learnerID)
	if err != nil {
		return fmt.Errorf("service.Streak > %w", err)
	}

	result := report.CalculateStatistics(sessions, year, month)

	_, _ = cli.bold.Fprintf(cli.stdoutWriter, "Streak: %d days (best %d)\n", record.CurrentStreak, record.LongestStreak)
	if atRisk {
		fmt.Fprintln(cli.stdoutWriter, "Your streak is at risk today. Review something before midnight!")
	}
	fmt.Fprintln(cli.stdoutWriter)

	if len(result.Periods) == 0 {
		fmt.Fprintln(cli.stdoutWriter, "No study sessions recorded.")
	}
	for _, p := range result.Periods {
		_, _ = cli.bold.Fprintf(cli.stdoutWriter, "%s\n", p.Period)
		fmt.Fprintf(cli.stdoutWriter, "  sessions: %d (%.0f%% completed)\n", p.Sessions, p.CompletionRate()*100)
		fmt.Fprintf(cli.stdoutWriter, "  cards reviewed: %d\n", p.CardsReviewed)
		fmt.Fprintf(cli.stdoutWriter, "  study time: %d minutes\n", p.StudyMinutes)
		if p.FlaggedSessions > 0 {
			_, _ = cli.faint.Fprintf(cli.stdoutWriter, "  flagged sessions: %d\n", p.FlaggedSessions)
		}
	}

	if !exportPDF {
		return nil
	}

	now := cli.clk.Now()
	markdown := report.RenderMarkdown(cli.learnerID, result, record, now)
	markdownPath, err := report.WriteMarkdown(cli.outputDir, cli.learnerID, now, markdown)
	if err != nil {
		return fmt.Errorf("report.WriteMarkdown > %w", err)
	}
	pdfPath, err := report.ConvertMarkdownToPDF(markdownPath)
	if err != nil {
		return fmt.Errorf("report.ConvertMarkdownToPDF > %w", err)
	}
	fmt.Fprintf(cli.stdoutWriter, "\nReport written to %s\n", pdfPath)
	return nil
}
