package config

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/leapstack-labs/csmstyle/pkg/core"
	"github.com/leapstack-labs/csmstyle/pkg/lint"
)

var outputFormats = []string{"auto", "text", "markdown", "json"}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if _, ok := core.ParseSeverity(c.Severity); !ok {
		return fmt.Errorf("invalid severity %q: want error, warning, info or hint", c.Severity)
	}

	if c.OutputFormat != "" && !slices.Contains(outputFormats, strings.ToLower(c.OutputFormat)) {
		return fmt.Errorf("invalid output format %q: want one of %s", c.OutputFormat, strings.Join(outputFormats, ", "))
	}

	if _, err := parseLogLevel(c.LogLevel); err != nil {
		return err
	}

	if c.Lint != nil {
		for id, sev := range c.Lint.Severity {
			if _, ok := core.ParseSeverity(sev); !ok {
				return fmt.Errorf("invalid severity %q for rule %s", sev, id)
			}
		}
	}

	return nil
}

// Threshold returns the minimum severity to report.
func (c *Config) Threshold() core.Severity {
	sev, ok := core.ParseSeverity(c.Severity)
	if !ok {
		return core.SeverityHint
	}
	return sev
}

// SlogLevel returns the configured log level; Verbose forces debug.
func (c *Config) SlogLevel() slog.Level {
	if c.Verbose {
		return slog.LevelDebug
	}
	level, err := parseLogLevel(c.LogLevel)
	if err != nil {
		return slog.LevelWarn
	}
	return level
}

func parseLogLevel(s string) (slog.Level, error) {
	if s == "" {
		return slog.LevelWarn, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: want debug, info, warn or error", s)
	}
	return level, nil
}

// LintConfig builds the rule selection for the analyzer.
func (c *Config) LintConfig() *lint.Config {
	lintCfg := lint.NewConfig().SetSelect(c.Select...)

	if c.Lint == nil {
		return lintCfg
	}

	for _, id := range c.Lint.Disabled {
		lintCfg.Disable(id)
	}
	for id, sev := range c.Lint.Severity {
		if s, ok := core.ParseSeverity(sev); ok {
			lintCfg.SetSeverity(id, s)
		}
	}
	for id, opts := range c.Lint.Rules {
		lintCfg.SetRuleOptions(id, opts)
	}

	return lintCfg
}
