package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joescharf/prscore/internal/models"
	"github.com/joescharf/prscore/internal/pipeline"
)

var (
	analyzeRepo      string
	analyzePR        int
	analyzeServer    string
	analyzeDisable   []string
	analyzeJSON      bool
	analyzeFailUnder int
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [pr-url]",
	Short: "Review a pull request and print its report",
	Long: `Run the review pipeline once, in the foreground, and print the report.

Identify the pull request with its URL:

  prscore analyze https://github.com/acme/widgets/pull/42

or with --repo, --pr and --server. Skip check categories with --disable
(style, complexity, security, performance, best_practices, documentation).
With --fail-under the command exits non-zero when the score is lower,
for use as a CI gate.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := models.AnalyzeRequest{Repo: analyzeRepo, Server: analyzeServer}
		if len(args) == 1 {
			req.PRURL = args[0]
		}
		if cmd.Flags().Changed("pr") {
			req.PRNumber = &analyzePR
		}
		req.EnabledChecks = disabledChecks(analyzeDisable)
		return analyzeRun(cmd.Context(), newAnalyzer(), req)
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeRepo, "repo", "", "repository as owner/name")
	analyzeCmd.Flags().IntVar(&analyzePR, "pr", 0, "pull or merge request number")
	analyzeCmd.Flags().StringVar(&analyzeServer, "server", "", "github, gitlab or bitbucket (default github)")
	analyzeCmd.Flags().StringSliceVar(&analyzeDisable, "disable", nil, "check categories to skip")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "print the report as JSON")
	analyzeCmd.Flags().IntVar(&analyzeFailUnder, "fail-under", 0, "exit with an error when the score is below this value")
	rootCmd.AddCommand(analyzeCmd)
}

// disabledChecks turns a list of category names into an enablement map.
func disabledChecks(names []string) map[string]bool {
	if len(names) == 0 {
		return nil
	}
	out := make(map[string]bool, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			out[n] = false
		}
	}
	return out
}

// reportAnalyzer is the slice of the pipeline analyzeRun needs.
type reportAnalyzer interface {
	Validate(req models.AnalyzeRequest) (pipeline.Target, error)
	Analyze(ctx context.Context, req models.AnalyzeRequest) (*models.Report, error)
}

func analyzeRun(ctx context.Context, a reportAnalyzer, req models.AnalyzeRequest) error {
	if ctx == nil {
		ctx = context.Background()
	}
	t, err := a.Validate(req)
	if err != nil {
		return err
	}
	ui.VerboseLog("Analyzing %s %s#%d", t.Server, t.Repo, t.PRNumber)

	report, err := a.Analyze(ctx, req)
	if err != nil {
		return err
	}

	if analyzeJSON {
		enc := json.NewEncoder(ui.Out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	} else if err := ui.Report(report); err != nil {
		return err
	}

	if analyzeFailUnder > 0 && report.Score.Overall < analyzeFailUnder {
		return fmt.Errorf("score %d is below --fail-under %d", report.Score.Overall, analyzeFailUnder)
	}
	return nil
}
