package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, DefaultTokenWindow, cfg.TokenWindow)
	assert.Equal(t, DefaultContextBudget, cfg.Context.BudgetBytes)
	assert.Equal(t, DefaultPerFileCap, cfg.Context.PerFileCapBytes)
	assert.Equal(t, DefaultReadConcurrency, cfg.Context.ReadConcurrency)
	assert.Equal(t, DefaultOutputCap, cfg.Exec.OutputCapBytes)
	assert.Equal(t, DefaultExecTimeout, cfg.ExecTimeout())
	assert.Equal(t, "/bin/sh", cfg.Exec.Shell)
	assert.False(t, cfg.Exec.AutoApproveSafe)
	assert.Contains(t, cfg.Context.SkipGlobs, "**/.git/**")
}

func TestLoadConfigWithoutFiles(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, DefaultTokenWindow, cfg.TokenWindow)
}

func TestLoadConfigProjectFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", t.TempDir())

	writeConfig(t, dir, `
llm: anthropic
model: test-model
token_window: 4096
exec:
  timeout_seconds: 5
  auto_approve_safe: true
safety:
  blocked:
    - '\bnc\b'
`)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "anthropic", cfg.LLMClient)
	assert.Equal(t, "test-model", cfg.Model)
	assert.Equal(t, 4096, cfg.TokenWindow)
	assert.Equal(t, 5*time.Second, cfg.ExecTimeout())
	assert.True(t, cfg.Exec.AutoApproveSafe)
	assert.Equal(t, []string{`\bnc\b`}, cfg.Safety.Blocked)

	// Untouched knobs keep their defaults.
	assert.Equal(t, DefaultContextBudget, cfg.Context.BudgetBytes)
	assert.Equal(t, DefaultOutputCap, cfg.Exec.OutputCapBytes)
}

func TestLoadConfigProjectOverridesUser(t *testing.T) {
	home := t.TempDir()
	project := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(project)

	writeConfig(t, home, "model: user-model\nlog_level: debug\n")
	writeConfig(t, project, "model: project-model\n")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "project-model", cfg.Model)
	// Fields only the user config sets still come through.
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadConfigRejectsInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", t.TempDir())

	writeConfig(t, dir, "model: [unclosed\n")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestNormalizeClampsBadValues(t *testing.T) {
	cfg := &Config{
		TokenWindow: -1,
		Context:     ContextConfig{BudgetBytes: 0, PerFileCapBytes: -5},
		Exec:        ExecConfig{TimeoutSeconds: 0, OutputCapBytes: -1},
	}
	cfg.normalize()

	assert.Equal(t, DefaultTokenWindow, cfg.TokenWindow)
	assert.Equal(t, DefaultContextBudget, cfg.Context.BudgetBytes)
	assert.Equal(t, DefaultPerFileCap, cfg.Context.PerFileCapBytes)
	assert.Equal(t, DefaultReadConcurrency, cfg.Context.ReadConcurrency)
	assert.Equal(t, DefaultExecTimeout, cfg.ExecTimeout())
	assert.Equal(t, DefaultOutputCap, cfg.Exec.OutputCapBytes)
	assert.Equal(t, "/bin/sh", cfg.Exec.Shell)
	assert.NotEmpty(t, cfg.Context.SkipGlobs)
}

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	confDir := filepath.Join(dir, ".codechat")
	require.NoError(t, os.MkdirAll(confDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(confDir, "config.yaml"), []byte(content), 0644))
}
