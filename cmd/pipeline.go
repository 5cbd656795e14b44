package cmd

import (
	"os"

	"github.com/spf13/viper"

	"github.com/joescharf/prscore/internal/checks"
	"github.com/joescharf/prscore/internal/git"
	"github.com/joescharf/prscore/internal/models"
	"github.com/joescharf/prscore/internal/pipeline"
	"github.com/joescharf/prscore/internal/score"
)

// envFallback returns the config value for key, or the named environment
// variable when the key is unset.
func envFallback(key, env string) string {
	if v := viper.GetString(key); v != "" {
		return v
	}
	return os.Getenv(env)
}

// newRegistry builds the platform clients from config.
func newRegistry() *git.Registry {
	return git.NewRegistry(git.Config{
		GitHubToken:    envFallback("github.token", "GITHUB_TOKEN"),
		GitHubURL:      viper.GetString("github.api_url"),
		GitLabToken:    envFallback("gitlab.token", "GITLAB_TOKEN"),
		GitLabURL:      viper.GetString("gitlab.api_url"),
		BitbucketToken: envFallback("bitbucket.token", "BITBUCKET_TOKEN"),
		BitbucketURL:   viper.GetString("bitbucket.api_url"),
		Timeout:        viper.GetDuration("git.timeout"),
	})
}

// newScorer builds the scorer from score.weights.*.
func newScorer() *score.Scorer {
	w := make(map[string]float64, len(models.BudgetCategories))
	for _, c := range models.BudgetCategories {
		w[string(c)] = viper.GetFloat64("score.weights." + string(c))
	}
	return score.NewScorer(score.WeightsFromMap(w))
}

// newAggregator builds the four checkers from config. The AI checker is
// inert when no Anthropic key is configured.
func newAggregator() *pipeline.Aggregator {
	threshold, ok := checks.ParseRank(viper.GetString("checks.complexity.threshold"))
	if !ok {
		ui.Warning("Invalid checks.complexity.threshold %q, using %s", viper.GetString("checks.complexity.threshold"), checks.DefaultComplexityThreshold)
		threshold = checks.DefaultComplexityThreshold
	}

	var suggester checks.Suggester
	if c := newLLMClient(); c != nil {
		suggester = c
	} else {
		ui.VerboseLog("No Anthropic API key configured; AI suggestions disabled")
	}

	return pipeline.NewAggregator(
		checks.NewStyle(viper.GetString("checks.style.command")),
		checks.NewComplexity(threshold),
		checks.NewUnsafe(),
		checks.NewAI(suggester, viper.GetInt("checks.ai.chunk_size")),
	).WithMaxParallel(viper.GetInt("pipeline.max_parallel_checkers"))
}

// newAnalyzer wires the full review pipeline from config.
func newAnalyzer() *pipeline.Analyzer {
	return pipeline.NewAnalyzer(newRegistry(), newAggregator(), newScorer())
}
