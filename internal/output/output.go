package output

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/joescharf/prscore/internal/models"
)

// UI provides colored terminal output and respects verbose/dry-run modes.
type UI struct {
	Verbose bool
	DryRun  bool
	Out     io.Writer
	ErrOut  io.Writer
}

// New creates a UI with default stdout/stderr writers.
func New() *UI {
	return &UI{
		Out:    os.Stdout,
		ErrOut: os.Stderr,
	}
}

var (
	infoPrefix    = color.New(color.FgHiBlue).Sprint("i")
	successPrefix = color.New(color.FgHiGreen).Sprint("✓")
	warningPrefix = color.New(color.FgHiYellow).Sprint("⚠")
	errorPrefix   = color.New(color.FgHiRed).Sprint("✗")
	verbosePrefix = color.New(color.FgHiBlue).Sprint("  →")
	cyan          = color.New(color.FgHiCyan).SprintFunc()
	green         = color.New(color.FgHiGreen).SprintFunc()
	yellow        = color.New(color.FgHiYellow).SprintFunc()
	red           = color.New(color.FgHiRed).SprintFunc()
	bold          = color.New(color.Bold).SprintFunc()
)

// Cyan returns a cyan-colored string.
func Cyan(s string) string { return cyan(s) }

// Green returns a green-colored string.
func Green(s string) string { return green(s) }

// Yellow returns a yellow-colored string.
func Yellow(s string) string { return yellow(s) }

// Red returns a red-colored string.
func Red(s string) string { return red(s) }

// StatusColor returns the job status colored by lifecycle state.
func StatusColor(status models.JobStatus) string {
	s := string(status)
	switch status {
	case models.JobStatusPending:
		return yellow(s)
	case models.JobStatusCompleted:
		return green(s)
	case models.JobStatusFailed:
		return red(s)
	default:
		return s
	}
}

// ScoreColor returns the score colored by band.
func ScoreColor(score int) string {
	s := strconv.Itoa(score)
	switch {
	case score >= 80:
		return green(s)
	case score >= 50:
		return yellow(s)
	default:
		return red(s)
	}
}

// CategoryColor colors an issue category by severity.
func CategoryColor(c models.Category) string {
	s := string(c)
	switch c {
	case models.CategorySecurity, models.CategoryBug:
		return red(s)
	case models.CategoryPerformance, models.CategoryComplexity:
		return yellow(s)
	default:
		return cyan(s)
	}
}

func (u *UI) Info(format string, a ...any) {
	fmt.Fprintf(u.Out, "%s %s\n", infoPrefix, fmt.Sprintf(format, a...))
}

func (u *UI) Success(format string, a ...any) {
	fmt.Fprintf(u.Out, "%s %s\n", successPrefix, fmt.Sprintf(format, a...))
}

func (u *UI) Warning(format string, a ...any) {
	fmt.Fprintf(u.ErrOut, "%s %s\n", warningPrefix, fmt.Sprintf(format, a...))
}

func (u *UI) Error(format string, a ...any) {
	fmt.Fprintf(u.ErrOut, "%s %s\n", errorPrefix, fmt.Sprintf(format, a...))
}

func (u *UI) VerboseLog(format string, a ...any) {
	if u.Verbose {
		fmt.Fprintf(u.Out, "%s %s\n", verbosePrefix, fmt.Sprintf(format, a...))
	}
}

func (u *UI) DryRunMsg(format string, a ...any) {
	if u.DryRun {
		u.Warning("[DRY-RUN] "+format, a...)
	}
}

// Table creates a new tablewriter configured with consistent styling.
func (u *UI) Table(headers []string) *tablewriter.Table {
	table := tablewriter.NewTable(u.Out,
		tablewriter.WithHeaderAlignment(tw.AlignLeft),
		tablewriter.WithRowAlignment(tw.AlignLeft),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Lines:      tw.LinesNone,
				Separators: tw.SeparatorsNone,
			},
		}),
		tablewriter.WithPadding(tw.Padding{Left: "", Right: "  "}),
	)
	table.Header(headers)
	return table
}

// Report prints a review report: a summary line, category scores and the
// per-file issues.
func (u *UI) Report(r *models.Report) error {
	fmt.Fprintf(u.Out, "%s %s#%d (%s)  score %s\n\n",
		bold("Review"), r.Repo, r.PRNumber, r.Server, ScoreColor(r.Score.Overall))

	scores := u.Table([]string{"Category", "Score"})
	for _, c := range scoreCategories(r.Score.Categories) {
		scores.Append([]string{string(c), ScoreColor(r.Score.Categories[c])})
	}
	if err := scores.Render(); err != nil {
		return err
	}

	if len(r.Feedback) == 0 {
		fmt.Fprintln(u.Out)
		u.Success("No issues found")
		return nil
	}

	fmt.Fprintln(u.Out)
	issues := u.Table([]string{"File", "Line", "Type", "Message"})
	for _, f := range r.Feedback {
		for _, is := range f.Issues {
			issues.Append([]string{f.Path, strconv.Itoa(is.Line), CategoryColor(is.Type), is.Message})
		}
	}
	if err := issues.Render(); err != nil {
		return err
	}
	fmt.Fprintf(u.Out, "\n%d issue(s) in %d file(s)\n", r.IssueCount(), len(r.Feedback))
	return nil
}

// scoreCategories orders categories the way tallies do.
func scoreCategories(scores models.CategoryScores) []models.Category {
	t := models.Tally{}
	for c := range scores {
		t[c] = 0
	}
	return t.Categories()
}

// Truncate shortens s to n runes, marking the cut with an ellipsis.
func Truncate(s string, n int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= n || n < 1 {
		return string(r)
	}
	return string(r[:n-1]) + "…"
}
