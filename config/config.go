package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/codechat-dev/codechat/errors"
	"gopkg.in/yaml.v3"
)

// Defaults for every budget and timeout. All of them are policy, not
// contract: any value can be overridden from config.yaml.
const (
	DefaultContextBudget  = 32 * 1024
	DefaultPerFileCap     = 8 * 1024
	DefaultTokenWindow    = 16384
	DefaultExecTimeout    = 30 * time.Second
	DefaultOutputCap      = 64 * 1024
	DefaultReadConcurrency = 8
)

// SafetyRules carries extra command patterns merged over the built-in rule
// set, keyed by risk label. Patterns are Go regular expressions.
type SafetyRules struct {
	Blocked   []string `yaml:"blocked"`
	Dangerous []string `yaml:"dangerous"`
	Caution   []string `yaml:"caution"`
	Safe      []string `yaml:"safe"`
}

// ContextConfig bounds what the context assembler may read and include.
type ContextConfig struct {
	BudgetBytes     int      `yaml:"budget_bytes"`
	PerFileCapBytes int      `yaml:"per_file_cap_bytes"`
	SkipGlobs       []string `yaml:"skip_globs"`
	ReadConcurrency int      `yaml:"read_concurrency"`
}

// ExecConfig bounds command execution.
type ExecConfig struct {
	TimeoutSeconds  int  `yaml:"timeout_seconds"`
	OutputCapBytes  int  `yaml:"output_cap_bytes"`
	AutoApproveSafe bool `yaml:"auto_approve_safe"`
	Shell           string `yaml:"shell"`
}

type Config struct {
	LLMClient string `yaml:"llm"`
	Model     string `yaml:"model"`
	LogLevel  string `yaml:"log_level"`

	SystemPrompt string `yaml:"system_prompt"`
	TokenWindow  int    `yaml:"token_window"`

	Context ContextConfig `yaml:"context"`
	Exec    ExecConfig    `yaml:"exec"`
	Safety  SafetyRules   `yaml:"safety"`
}

// Default returns a Config with every knob at its built-in default.
func Default() *Config {
	return &Config{
		TokenWindow: DefaultTokenWindow,
		Context: ContextConfig{
			BudgetBytes:     DefaultContextBudget,
			PerFileCapBytes: DefaultPerFileCap,
			SkipGlobs:       defaultSkipGlobs(),
			ReadConcurrency: DefaultReadConcurrency,
		},
		Exec: ExecConfig{
			TimeoutSeconds: int(DefaultExecTimeout / time.Second),
			OutputCapBytes: DefaultOutputCap,
			Shell:          "/bin/sh",
		},
	}
}

// defaultSkipGlobs lists directories that never belong in model context.
func defaultSkipGlobs() []string {
	return []string{
		".codechat", ".codechat/**",
		"**/.git/**", "**/node_modules/**", "**/__pycache__/**",
		"**/.venv/**", "**/venv/**", "**/dist/**", "**/build/**",
		"**/target/**", "**/.idea/**", "**/.vscode/**",
	}
}

// LoadConfig loads configuration from the user's home directory and the
// current working directory, with the latter taking precedence.
func LoadConfig() (*Config, error) {
	cfg := Default()

	// Load user-level config first
	home, err := os.UserHomeDir()
	if err == nil {
		userConfigPath := filepath.Join(home, ".codechat", "config.yaml")
		if _, err := os.Stat(userConfigPath); err == nil {
			if err := loadFromFile(userConfigPath, cfg); err != nil {
				return nil, errors.Wrapf(err, "error loading user config")
			}
		}
	}

	// Load project-level config, overriding user-level
	wd, err := os.Getwd()
	if err != nil {
		return nil, errors.Wrapf(err, "could not get working directory")
	}
	projectConfigPath := filepath.Join(wd, ".codechat", "config.yaml")
	if _, err := os.Stat(projectConfigPath); err == nil {
		if err := loadFromFile(projectConfigPath, cfg); err != nil {
			return nil, errors.Wrapf(err, "error loading project config")
		}
	}

	cfg.normalize()
	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	// Unmarshal overwrites fields present in the YAML, which gives a simple
	// merge where project-level config replaces user-level.
	return yaml.Unmarshal(data, cfg)
}

// normalize clamps zero or negative knobs back to their defaults so a
// partially filled config file cannot disable a budget entirely.
func (c *Config) normalize() {
	if c.TokenWindow <= 0 {
		c.TokenWindow = DefaultTokenWindow
	}
	if c.Context.BudgetBytes <= 0 {
		c.Context.BudgetBytes = DefaultContextBudget
	}
	if c.Context.PerFileCapBytes <= 0 {
		c.Context.PerFileCapBytes = DefaultPerFileCap
	}
	if c.Context.ReadConcurrency <= 0 {
		c.Context.ReadConcurrency = DefaultReadConcurrency
	}
	if len(c.Context.SkipGlobs) == 0 {
		c.Context.SkipGlobs = defaultSkipGlobs()
	}
	if c.Exec.TimeoutSeconds <= 0 {
		c.Exec.TimeoutSeconds = int(DefaultExecTimeout / time.Second)
	}
	if c.Exec.OutputCapBytes <= 0 {
		c.Exec.OutputCapBytes = DefaultOutputCap
	}
	if c.Exec.Shell == "" {
		c.Exec.Shell = "/bin/sh"
	}
}

// ExecTimeout returns the execution timeout as a duration.
func (c *Config) ExecTimeout() time.Duration {
	return time.Duration(c.Exec.TimeoutSeconds) * time.Second
}
