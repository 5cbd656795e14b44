package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/joescharf/prscore/internal/git"
	"github.com/joescharf/prscore/internal/models"
	"github.com/joescharf/prscore/internal/score"
)

// Defaults applied when a request names no target.
const (
	DefaultRepo     = "sample/repo"
	DefaultPRNumber = 1
	DefaultServer   = git.ServerGitHub
)

// ErrInvalidRequest marks a request that cannot identify an analysis target.
var ErrInvalidRequest = errors.New("invalid request")

// PlatformResolver maps a server name to its platform client.
type PlatformResolver interface {
	Platform(server string) (git.Platform, error)
}

// Target identifies the pull or merge request under analysis.
type Target struct {
	Repo     string
	PRNumber int
	Server   string
}

// ResolveTarget derives the target from req. A PR URL takes precedence over
// the individual fields; missing fields fall back to the defaults.
func ResolveTarget(req models.AnalyzeRequest) (Target, error) {
	if req.PRURL != "" {
		ref, err := git.ParsePRURL(req.PRURL)
		if err != nil {
			return Target{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
		}
		return Target{Repo: ref.Repo, PRNumber: ref.Number, Server: ref.Server}, nil
	}

	t := Target{Repo: req.Repo, PRNumber: DefaultPRNumber, Server: req.Server}
	if t.Repo == "" {
		t.Repo = DefaultRepo
	}
	if req.PRNumber != nil {
		t.PRNumber = *req.PRNumber
	}
	if t.Server == "" {
		t.Server = DefaultServer
	}
	if t.PRNumber <= 0 {
		return Target{}, fmt.Errorf("%w: pr_number must be positive", ErrInvalidRequest)
	}
	return t, nil
}

// Analyzer runs the full pipeline for one request: fetch, check, score, report.
type Analyzer struct {
	platforms  PlatformResolver
	aggregator *Aggregator
	scorer     *score.Scorer
}

// NewAnalyzer wires an analyzer. A nil scorer uses the default weights.
func NewAnalyzer(platforms PlatformResolver, aggregator *Aggregator, scorer *score.Scorer) *Analyzer {
	if scorer == nil {
		scorer = score.NewScorer(nil)
	}
	return &Analyzer{platforms: platforms, aggregator: aggregator, scorer: scorer}
}

// Validate reports whether req names a target on a supported server.
func (a *Analyzer) Validate(req models.AnalyzeRequest) (Target, error) {
	t, err := ResolveTarget(req)
	if err != nil {
		return Target{}, err
	}
	if _, err := a.platforms.Platform(t.Server); err != nil {
		return Target{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	return t, nil
}

// Analyze produces the report for req. When the platform yields no files the
// built-in sample is analyzed instead, so a report is still produced.
func (a *Analyzer) Analyze(ctx context.Context, req models.AnalyzeRequest) (*models.Report, error) {
	t, err := a.Validate(req)
	if err != nil {
		return nil, err
	}
	platform, err := a.platforms.Platform(t.Server)
	if err != nil {
		return nil, err
	}

	files, err := platform.ChangedFiles(ctx, t.Repo, t.PRNumber)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil || len(files) == 0 {
		slog.Warn("using sample files", "fallback", true, "server", t.Server, "repo", t.Repo, "pr", t.PRNumber, "error", err)
		files = SampleFiles()
	}

	perFile, tally := a.aggregator.Aggregate(ctx, files, EnabledChecks(req.EnabledChecks))
	sc := a.scorer.Score(tally)
	report := BuildReport(t.Repo, t.PRNumber, t.Server, perFile, sc)

	slog.Info("analysis complete",
		"server", t.Server,
		"repo", t.Repo,
		"pr", t.PRNumber,
		"files", len(files),
		"issues", report.IssueCount(),
		"score", sc.Overall)
	return report, nil
}
