package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests share the cobra and viper globals, so none of them run in parallel.

func TestRuntimeConfigDefaults(t *testing.T) {
	cfg := runtimeConfig()
	assert.Equal(t, "bodycode.db", cfg.DBPath)
	assert.Equal(t, 8080, cfg.MCPPort)
	assert.Equal(t, 15*time.Minute, cfg.PlanInterval)
	assert.Equal(t, time.Hour, cfg.ReminderInterval)
	assert.False(t, cfg.NoWorkers)
	assert.True(t, cfg.Metrics)
	assert.Zero(t, cfg.Seed)
}

func TestRuntimeConfigFromEnv(t *testing.T) {
	t.Setenv("BODYCODE_DB", "/tmp/other.db")
	t.Setenv("BODYCODE_PORT", "0")
	t.Setenv("BODYCODE_PLAN_INTERVAL", "5m")
	t.Setenv("BODYCODE_NO_WORKERS", "true")
	t.Setenv("BODYCODE_SEED", "42")

	cfg := runtimeConfig()
	assert.Equal(t, "/tmp/other.db", cfg.DBPath)
	assert.Equal(t, 0, cfg.MCPPort)
	assert.Equal(t, 5*time.Minute, cfg.PlanInterval)
	assert.True(t, cfg.NoWorkers)
	assert.Equal(t, uint64(42), cfg.Seed)
}

func TestExportAndResetCommands(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "bodycode.db")
	outPath := filepath.Join(dir, "export.json")

	var stdout bytes.Buffer
	rootCmd.SetOut(&stdout)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	rootCmd.SetArgs([]string{"export", "--db", dbPath, "--out", outPath, "--log-format", "json"})
	require.NoError(t, rootCmd.Execute())

	raw, err := os.ReadFile(outPath)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, "BodyCode", doc["app_name"])
	assert.Equal(t, "free", doc["plan"])
	assert.Empty(t, doc["habit_logs"])

	rootCmd.SetArgs([]string{"reset", "--db", dbPath})
	assert.Error(t, rootCmd.Execute(), "reset needs --yes")

	rootCmd.SetArgs([]string{"reset", "--db", dbPath, "--yes"})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, stdout.String(), "Reset complete. Dropped 0 cached habit plans.")
}

func TestBadLogFormat(t *testing.T) {
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	rootCmd.SetArgs([]string{"export", "--db", filepath.Join(t.TempDir(), "x.db"), "--log-format", "xml"})
	assert.Error(t, rootCmd.Execute())
}
