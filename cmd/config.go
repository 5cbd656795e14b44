package cmd

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/joescharf/prscore/internal/models"
)

var (
	configForce    bool
	configShowYAML bool
)

// configDirFunc returns the config directory path, replaceable in tests.
var configDirFunc = defaultConfigDir

func defaultConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "prscore"), nil
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or manage configuration",
	Long: `Show or manage prscore configuration.

Running bare 'prscore config' is the same as 'prscore config show'.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return configShowRun()
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create config file with commented defaults",
	RunE: func(cmd *cobra.Command, args []string) error {
		return configInitRun()
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration with sources",
	RunE: func(cmd *cobra.Command, args []string) error {
		return configShowRun()
	},
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open config file in $EDITOR",
	RunE: func(cmd *cobra.Command, args []string) error {
		return configEditRun()
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite existing config file")
	configShowCmd.Flags().BoolVar(&configShowYAML, "yaml", false, "Print effective settings as YAML")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configEditCmd)
	rootCmd.AddCommand(configCmd)
}

// configTemplate is the template for generating config.yaml with comments.
const configTemplate = `# prscore configuration
# See: prscore config show (for effective values and sources)

# State/data directory (default: ~/.config/prscore)
# state_dir: {{ .StateDir }}

# HTTP service
port: {{ .Port }}

# Job store: "memory" (lost on restart) or "sqlite"
store:
  driver: "{{ .StoreDriver }}"
# SQLite database path, used when store.driver is sqlite
# db_path: {{ .DBPath }}

log:
  # debug, info, warn or error
  level: "{{ .LogLevel }}"
  # text or json
  format: "{{ .LogFormat }}"

# Platform credentials. GITHUB_TOKEN, GITLAB_TOKEN and BITBUCKET_TOKEN
# are read from the environment when these are empty. Set api_url for
# self-hosted instances.
github:
  token: ""
gitlab:
  token: ""
bitbucket:
  token: ""

# AI suggestions run only when an API key is set (or ANTHROPIC_API_KEY)
anthropic:
  api_key: ""
  model: "{{ .AnthropicModel }}"

checks:
  style:
    # flake8-compatible linter
    command: "{{ .StyleCommand }}"
  complexity:
    # Report functions at or above this rank (A-F)
    threshold: "{{ .ComplexityThreshold }}"
  ai:
    # Maximum characters sent per request
    chunk_size: {{ .ChunkSize }}

# Category weights for the overall score
score:
  weights:
{{- range .Weights }}
    {{ .Name }}: {{ .Value }}
{{- end }}

jobs:
  # Analyses running at once
  max_concurrent: {{ .MaxConcurrent }}
`

type configWeight struct {
	Name  string
	Value float64
}

type configTemplateData struct {
	StateDir            string
	DBPath              string
	Port                int
	StoreDriver         string
	LogLevel            string
	LogFormat           string
	AnthropicModel      string
	StyleCommand        string
	ComplexityThreshold string
	ChunkSize           int
	Weights             []configWeight
	MaxConcurrent       int
}

func configFilePath() (string, error) {
	dir, err := configDirFunc()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

func configInitRun() error {
	cfgPath, err := configFilePath()
	if err != nil {
		return err
	}

	// Check if file already exists
	if _, err := os.Stat(cfgPath); err == nil {
		if !configForce {
			return fmt.Errorf("config file already exists: %s (use --force to overwrite)", cfgPath)
		}
		ui.Warning("Overwriting existing config file")
	}

	// Build template data from current viper values
	data := configTemplateData{
		StateDir:            viper.GetString("state_dir"),
		DBPath:              viper.GetString("db_path"),
		Port:                viper.GetInt("port"),
		StoreDriver:         viper.GetString("store.driver"),
		LogLevel:            viper.GetString("log.level"),
		LogFormat:           viper.GetString("log.format"),
		AnthropicModel:      viper.GetString("anthropic.model"),
		StyleCommand:        viper.GetString("checks.style.command"),
		ComplexityThreshold: viper.GetString("checks.complexity.threshold"),
		ChunkSize:           viper.GetInt("checks.ai.chunk_size"),
		MaxConcurrent:       viper.GetInt("jobs.max_concurrent"),
	}
	for _, c := range models.BudgetCategories {
		data.Weights = append(data.Weights, configWeight{Name: string(c), Value: viper.GetFloat64("score.weights." + string(c))})
	}

	tmpl, err := template.New("config").Parse(configTemplate)
	if err != nil {
		return fmt.Errorf("template parse error: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("template execute error: %w", err)
	}

	if dryRun {
		ui.DryRunMsg("Would create config file: %s", cfgPath)
		fmt.Fprintln(ui.Out)
		fmt.Fprint(ui.Out, buf.String())
		return nil
	}

	// Create config directory
	dir := filepath.Dir(cfgPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(cfgPath, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	ui.Success("Config file created: %s", cfgPath)
	fmt.Fprintln(ui.Out)
	fmt.Fprint(ui.Out, buf.String())
	return nil
}

// configKey is one setting listed by config show.
type configKey struct {
	Key    string
	Secret bool
}

var configKeys = []configKey{
	{Key: "state_dir"},
	{Key: "db_path"},
	{Key: "store.driver"},
	{Key: "host"},
	{Key: "port"},
	{Key: "log.level"},
	{Key: "log.format"},
	{Key: "github.token", Secret: true},
	{Key: "github.api_url"},
	{Key: "gitlab.token", Secret: true},
	{Key: "gitlab.api_url"},
	{Key: "bitbucket.token", Secret: true},
	{Key: "bitbucket.api_url"},
	{Key: "git.timeout"},
	{Key: "anthropic.api_key", Secret: true},
	{Key: "anthropic.model"},
	{Key: "checks.style.command"},
	{Key: "checks.complexity.threshold"},
	{Key: "checks.ai.chunk_size"},
	{Key: "score.weights.style"},
	{Key: "score.weights.performance"},
	{Key: "score.weights.security"},
	{Key: "score.weights.complexity"},
	{Key: "score.weights.best_practices"},
	{Key: "score.weights.documentation"},
	{Key: "jobs.max_concurrent"},
	{Key: "pipeline.max_parallel_checkers"},
}

// envVarFor returns the environment variable viper reads for key.
func envVarFor(key string) string {
	return "PRSCORE_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// value returns the effective setting, masked when secret.
func (k configKey) value() any {
	if k.Secret {
		return maskSecret(viper.GetString(k.Key))
	}
	return viper.Get(k.Key)
}

func configShowRun() error {
	cfgPath, err := configFilePath()
	if err != nil {
		return err
	}

	if configShowYAML {
		return writeEffectiveYAML()
	}

	if _, err := os.Stat(cfgPath); err == nil {
		ui.Info("Config file: %s", cfgPath)
	} else {
		ui.Info("Config file: (none)")
	}
	fmt.Fprintln(ui.Out)

	inFile := fileKeys(cfgPath)
	table := ui.Table([]string{"Key", "Value", "Source"})
	for _, k := range configKeys {
		table.Append([]string{k.Key, fmt.Sprint(k.value()), detectSource(k.Key, inFile)})
	}
	return table.Render()
}

// writeEffectiveYAML prints every setting as nested YAML, secrets masked.
func writeEffectiveYAML() error {
	root := map[string]any{}
	for _, k := range configKeys {
		parts := strings.Split(k.Key, ".")
		node := root
		for _, p := range parts[:len(parts)-1] {
			child, ok := node[p].(map[string]any)
			if !ok {
				child = map[string]any{}
				node[p] = child
			}
			node = child
		}
		node[parts[len(parts)-1]] = k.value()
	}

	enc := yaml.NewEncoder(ui.Out)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return enc.Close()
}

// maskSecret hides all but the last four characters of a credential.
func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "****"
	}
	return "****" + s[len(s)-4:]
}

// fileKeys returns the dotted keys set in the YAML file at path. A missing
// or unreadable file has none.
func fileKeys(path string) map[string]bool {
	keys := make(map[string]bool)

	data, err := os.ReadFile(path)
	if err != nil {
		return keys
	}
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return keys
	}

	var walk func(prefix string, m map[string]any)
	walk = func(prefix string, m map[string]any) {
		for k, v := range m {
			if prefix != "" {
				k = prefix + "." + k
			}
			if nested, ok := v.(map[string]any); ok {
				walk(k, nested)
				continue
			}
			keys[k] = true
		}
	}
	walk("", doc)
	return keys
}

// detectSource reports where the effective value of key comes from.
func detectSource(key string, inFile map[string]bool) string {
	env := envVarFor(key)
	switch {
	case os.Getenv(env) != "":
		return "env " + env
	case inFile[key]:
		return "file"
	default:
		return "default"
	}
}

func configEditRun() error {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = os.Getenv("VISUAL")
	}
	if editor == "" {
		return fmt.Errorf("$EDITOR is not set; set it to your preferred editor (e.g. export EDITOR=vim)")
	}

	cfgPath, err := configFilePath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		return fmt.Errorf("config file not found: %s (run 'prscore config init' first)", cfgPath)
	}

	if dryRun {
		ui.DryRunMsg("Would open %s in %s", cfgPath, editor)
		return nil
	}

	editCmd := exec.Command(editor, cfgPath)
	editCmd.Stdin = os.Stdin
	editCmd.Stdout = os.Stdout
	editCmd.Stderr = os.Stderr
	return editCmd.Run()
}
