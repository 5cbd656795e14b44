package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/joescharf/prscore/internal/output"
	"github.com/joescharf/prscore/internal/store"
)

// testEnv sets up isolated config dir, viper, and output for testing.
func testEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	// Override configDirFunc for tests
	origFunc := configDirFunc
	configDirFunc = func() (string, error) { return dir, nil }
	t.Cleanup(func() { configDirFunc = origFunc })

	// Reset viper
	viper.Reset()
	setDefaults(dir)
	t.Cleanup(func() { dataStore = nil })

	// Initialize output
	ui = output.New()

	return dir
}

func TestConfigInit_CreatesFile(t *testing.T) {
	dir := testEnv(t)

	err := configInitRun()
	require.NoError(t, err)

	cfgPath := filepath.Join(dir, "config.yaml")
	_, err = os.Stat(cfgPath)
	assert.NoError(t, err, "config file should exist")

	data, err := os.ReadFile(cfgPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "prscore configuration")
	assert.Contains(t, string(data), "best_practices: 0.15")
	assert.Contains(t, string(data), `threshold: "C"`)
}

func TestConfigInit_RefusesOverwrite(t *testing.T) {
	dir := testEnv(t)

	// Create existing file
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("existing"), 0644))

	configForce = false
	err := configInitRun()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestConfigInit_ForceOverwrite(t *testing.T) {
	dir := testEnv(t)

	// Create existing file
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("existing"), 0644))

	configForce = true
	err := configInitRun()
	require.NoError(t, err)

	data, err := os.ReadFile(cfgPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "prscore configuration")
}

func TestConfigShow_NoFile(t *testing.T) {
	testEnv(t)

	err := configShowRun()
	assert.NoError(t, err)
}

func TestConfigShow_WithFile(t *testing.T) {
	testEnv(t)

	// Create config first
	require.NoError(t, configInitRun())

	err := configShowRun()
	assert.NoError(t, err)
}

func TestConfigEdit_NoEditor(t *testing.T) {
	testEnv(t)

	// Unset EDITOR and VISUAL
	origEditor := os.Getenv("EDITOR")
	origVisual := os.Getenv("VISUAL")
	_ = os.Unsetenv("EDITOR")
	_ = os.Unsetenv("VISUAL")
	t.Cleanup(func() {
		if origEditor != "" {
			_ = os.Setenv("EDITOR", origEditor)
		}
		if origVisual != "" {
			_ = os.Setenv("VISUAL", origVisual)
		}
	})

	err := configEditRun()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "$EDITOR is not set")
}

func TestConfigEdit_NoConfigFile(t *testing.T) {
	testEnv(t)

	_ = os.Setenv("EDITOR", "echo") // harmless command
	t.Cleanup(func() { _ = os.Unsetenv("EDITOR") })

	err := configEditRun()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestDetectSource(t *testing.T) {
	inFile := map[string]bool{"checks.style.command": true}

	t.Setenv("PRSCORE_PORT", "9000")
	assert.Equal(t, "env PRSCORE_PORT", detectSource("port", inFile))
	assert.Equal(t, "file", detectSource("checks.style.command", inFile))
	assert.Equal(t, "default", detectSource("log.level", inFile))
}

func TestEnvVarFor(t *testing.T) {
	assert.Equal(t, "PRSCORE_SCORE_WEIGHTS_BEST_PRACTICES", envVarFor("score.weights.best_practices"))
	assert.Equal(t, "PRSCORE_DB_PATH", envVarFor("db_path"))
}

func TestConfigInit_DryRun(t *testing.T) {
	dir := testEnv(t)
	dryRun = true
	ui.DryRun = true
	defer func() { dryRun = false }()

	err := configInitRun()
	require.NoError(t, err)

	// File should NOT have been created
	cfgPath := filepath.Join(dir, "config.yaml")
	_, err = os.Stat(cfgPath)
	assert.True(t, os.IsNotExist(err), "config file should not exist in dry-run mode")
}

func TestConfigInit_ParsesAsYAML(t *testing.T) {
	dir := testEnv(t)
	require.NoError(t, configInitRun())

	keys := fileKeys(filepath.Join(dir, "config.yaml"))
	assert.True(t, keys["store.driver"])
	assert.True(t, keys["score.weights.security"])
	assert.True(t, keys["checks.ai.chunk_size"])
	assert.False(t, keys["checks"])
	assert.Empty(t, fileKeys(filepath.Join(dir, "missing.yaml")))
}

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "", maskSecret(""))
	assert.Equal(t, "****", maskSecret("abc"))
	assert.Equal(t, "****wxyz", maskSecret("ghp_abcdwxyz"))
}

func TestConfigShow_MasksTokens(t *testing.T) {
	testEnv(t)
	var out bytes.Buffer
	ui.Out = &out
	viper.Set("github.token", "ghp_supersecret1234")

	require.NoError(t, configShowRun())
	assert.NotContains(t, out.String(), "supersecret")
	assert.Contains(t, out.String(), "****1234")
}

func TestConfigShow_YAML(t *testing.T) {
	testEnv(t)
	var out bytes.Buffer
	ui.Out = &out
	configShowYAML = true
	t.Cleanup(func() { configShowYAML = false })
	viper.Set("anthropic.api_key", "sk-ant-abcd9876")

	require.NoError(t, configShowRun())

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &doc))
	score := doc["score"].(map[string]any)["weights"].(map[string]any)
	assert.Equal(t, 0.25, score["security"])
	assert.Equal(t, "****9876", doc["anthropic"].(map[string]any)["api_key"])
	assert.Equal(t, "memory", doc["store"].(map[string]any)["driver"])
}

func TestGetStore_Drivers(t *testing.T) {
	dir := testEnv(t)

	s, err := getStore()
	require.NoError(t, err)
	assert.IsType(t, &store.MemoryStore{}, s)

	dataStore = nil
	viper.Set("store.driver", "sqlite")
	viper.Set("db_path", filepath.Join(dir, "jobs.db"))
	s, err = getStore()
	require.NoError(t, err)
	assert.IsType(t, &store.SQLiteStore{}, s)
	require.NoError(t, s.Close())

	dataStore = nil
	viper.Set("store.driver", "redis")
	_, err = getStore()
	assert.ErrorContains(t, err, "unknown store.driver")
}
