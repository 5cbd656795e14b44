package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joescharf/prscore/internal/llm"
	"github.com/joescharf/prscore/internal/output"
	"github.com/joescharf/prscore/internal/store"
)

// Package-level shared dependencies, initialized in cobra.OnInitialize.
var (
	ui        *output.UI
	dataStore store.Store

	verbose bool
	dryRun  bool
)

var rootCmd = &cobra.Command{
	Use:   "prscore",
	Short: "Automated pull request review and quality scoring",
	Long: `prscore fetches the files changed by a GitHub, GitLab or Bitbucket
pull request, runs style, complexity, unsafe-pattern and AI checks over
them, and produces a per-file report with a weighted 0-100 quality score.

Run it once from the command line with 'prscore analyze', or start the
HTTP service with 'prscore serve'.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	DisableAutoGenTag: true,
}

// Execute is the main entry point called from main.go.
func Execute(version, commit, date string) {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig, initDeps)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output (debug logging)")
	rootCmd.PersistentFlags().BoolVarP(&dryRun, "dry-run", "n", false, "Show what would happen without making changes")
	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.config/prscore/config.yaml)")
	rootCmd.PersistentFlags().String("log-format", "", "Log format: text or json")
	_ = viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
}

func initConfig() {
	// If --config is explicitly set, use that file
	if cfgFile, _ := rootCmd.PersistentFlags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		configDir, err := configDirFunc()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: cannot find home directory: %v\n", err)
			os.Exit(1)
		}
		viper.AddConfigPath(configDir)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("PRSCORE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	defaultConfigDir, _ := configDirFunc()
	setDefaults(defaultConfigDir)

	// Read config file if it exists (optional)
	_ = viper.ReadInConfig()
}

// setDefaults registers every config key with its default value.
func setDefaults(stateDir string) {
	viper.SetDefault("state_dir", stateDir)
	viper.SetDefault("db_path", filepath.Join(stateDir, "prscore.db"))
	viper.SetDefault("store.driver", "memory")

	viper.SetDefault("host", "")
	viper.SetDefault("port", 8000)

	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "text")

	viper.SetDefault("github.token", "")
	viper.SetDefault("github.api_url", "")
	viper.SetDefault("gitlab.token", "")
	viper.SetDefault("gitlab.api_url", "")
	viper.SetDefault("bitbucket.token", "")
	viper.SetDefault("bitbucket.api_url", "")
	viper.SetDefault("git.timeout", "60s")

	viper.SetDefault("anthropic.api_key", "")
	viper.SetDefault("anthropic.model", llm.DefaultModel)

	viper.SetDefault("checks.style.command", "flake8")
	viper.SetDefault("checks.complexity.threshold", "C")
	viper.SetDefault("checks.ai.chunk_size", 1000)

	viper.SetDefault("score.weights.style", 0.15)
	viper.SetDefault("score.weights.performance", 0.20)
	viper.SetDefault("score.weights.security", 0.25)
	viper.SetDefault("score.weights.complexity", 0.15)
	viper.SetDefault("score.weights.best_practices", 0.15)
	viper.SetDefault("score.weights.documentation", 0.10)

	viper.SetDefault("jobs.max_concurrent", 4)
	viper.SetDefault("pipeline.max_parallel_checkers", 4)
}

func initDeps() {
	ui = output.New()
	ui.Verbose = verbose
	ui.DryRun = dryRun

	level := viper.GetString("log.level")
	if verbose {
		level = "debug"
	}
	setupLogging(os.Stderr, level, viper.GetString("log.format"))

	// The store is opened lazily so config/version run without one.
}

// cmdContext returns the running command's context, or Background outside
// of Execute.
func cmdContext() context.Context {
	if ctx := rootCmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// getStore returns the shared store, initializing it on first call.
func getStore() (store.Store, error) {
	if dataStore != nil {
		return dataStore, nil
	}

	switch driver := viper.GetString("store.driver"); driver {
	case "", "memory":
		dataStore = store.NewMemoryStore()
	case "sqlite":
		s, err := store.NewSQLiteStore(viper.GetString("db_path"))
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		if err := s.Migrate(cmdContext()); err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("migrate database: %w", err)
		}
		dataStore = s
	default:
		return nil, fmt.Errorf("unknown store.driver %q (want memory or sqlite)", driver)
	}
	return dataStore, nil
}
