// Package config provides configuration management for the csmstyle CLI.
package config

// Config holds all CLI configuration options.
type Config struct {
	// Select is an allow-list of rule code prefixes; empty runs every rule.
	Select []string `koanf:"select"`

	// Severity is the minimum severity reported (error, warning, info, hint).
	Severity string `koanf:"severity"`

	OutputFormat string `koanf:"output"`
	Verbose      bool   `koanf:"verbose"`
	LogLevel     string `koanf:"log_level"`

	// Explain appends rule explanations to reported messages.
	Explain bool `koanf:"explain"`

	// Explanations is an optional YAML or JSON file of extra explanations.
	Explanations string `koanf:"explanations"`

	// RulesDir holds user rule scripts (*.star).
	RulesDir string `koanf:"rules_dir"`

	StatePath   string      `koanf:"state_path"`
	DocsBaseURL string      `koanf:"docs_base_url"`
	Lint        *LintConfig `koanf:"lint"`

	// ProjectRoot is the directory relative paths are resolved against.
	ProjectRoot string `koanf:"-"`
}

// LintConfig configures individual rules.
type LintConfig struct {
	// Disabled contains rule code prefixes to skip
	Disabled []string `koanf:"disabled"`

	// Severity maps rule ID to severity override (error, warning, info, hint)
	Severity map[string]string `koanf:"severity"`

	// Rules contains rule-specific options keyed by rule ID
	Rules map[string]RuleOptions `koanf:"rules"`
}

// RuleOptions holds rule-specific configuration options.
type RuleOptions map[string]any

// Default configuration values.
const (
	DefaultSeverity  = "hint"
	DefaultOutput    = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultLogLevel  = "warn"
	DefaultRulesDir  = ".csmstyle/rules"
	DefaultStateFile = ".csmstyle/state.db"
	EnvPrefix        = "CSMSTYLE_"
)

// ConfigFileNames are searched in order in each candidate directory.
var ConfigFileNames = []string{"csmstyle.yaml", "csmstyle.yml", ".csmstyle.yaml", ".csmstyle.yml"}

// Default returns the configuration used when nothing was loaded.
func Default() *Config {
	return &Config{
		Severity:     DefaultSeverity,
		OutputFormat: DefaultOutput,
		LogLevel:     DefaultLogLevel,
		RulesDir:     DefaultRulesDir,
		StatePath:    DefaultStateFile,
	}
}
