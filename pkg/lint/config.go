package lint

import (
	"strings"

	"github.com/leapstack-labs/csmstyle/pkg/core"
)

// Config controls which rules are enabled and their severity.
type Config struct {
	// Select is an allow-list of rule code prefixes; empty selects all.
	Select []string

	// DisabledRules contains rule code prefixes to skip
	DisabledRules map[string]bool

	// SeverityOverrides changes the default severity of rules
	SeverityOverrides map[string]core.Severity

	// RuleOptions holds per-rule options keyed by rule ID
	RuleOptions map[string]map[string]any
}

// NewConfig creates a default configuration with all rules enabled.
func NewConfig() *Config {
	return &Config{
		DisabledRules:     make(map[string]bool),
		SeverityOverrides: make(map[string]core.Severity),
		RuleOptions:       make(map[string]map[string]any),
	}
}

// IsEnabled returns true if the rule is selected and not disabled.
func (c *Config) IsEnabled(ruleID string) bool {
	return c.IsSelected(ruleID) && !c.IsDisabled(ruleID)
}

// IsSelected returns true if the rule matches the allow-list.
// Entries match by prefix, so "CSM" selects every CSM rule.
func (c *Config) IsSelected(ruleID string) bool {
	if c == nil || len(c.Select) == 0 {
		return true
	}
	for _, code := range c.Select {
		if code != "" && strings.HasPrefix(ruleID, code) {
			return true
		}
	}
	return false
}

// IsDisabled returns true if the rule should be skipped.
func (c *Config) IsDisabled(ruleID string) bool {
	if c == nil {
		return false
	}
	for code, disabled := range c.DisabledRules {
		if disabled && code != "" && strings.HasPrefix(ruleID, code) {
			return true
		}
	}
	return false
}

// GetSeverity returns the severity for a rule, applying any override.
func (c *Config) GetSeverity(ruleID string, defaultSeverity core.Severity) core.Severity {
	if c != nil {
		if sev, ok := c.SeverityOverrides[ruleID]; ok {
			return sev
		}
	}
	return defaultSeverity
}

// GetRuleOptions returns the options configured for a rule, or nil.
func (c *Config) GetRuleOptions(ruleID string) map[string]any {
	if c == nil {
		return nil
	}
	return c.RuleOptions[ruleID]
}

// Disable disables a rule by ID.
func (c *Config) Disable(ruleID string) *Config {
	c.DisabledRules[ruleID] = true
	return c
}

// SetSeverity overrides the severity for a rule.
func (c *Config) SetSeverity(ruleID string, severity core.Severity) *Config {
	c.SeverityOverrides[ruleID] = severity
	return c
}

// SetRuleOptions sets the options for a rule.
func (c *Config) SetRuleOptions(ruleID string, opts map[string]any) *Config {
	c.RuleOptions[ruleID] = opts
	return c
}

// SetSelect replaces the allow-list.
func (c *Config) SetSelect(codes ...string) *Config {
	c.Select = codes
	return c
}

// UnknownSelections returns allow-list entries that match no rule in
// registry. These belong to the generic engine and produce no output here.
func (c *Config) UnknownSelections(registry *Registry) []string {
	var unknown []string
	for _, code := range c.Select {
		matched := false
		for _, rule := range registry.Rules() {
			if strings.HasPrefix(rule.ID(), code) {
				matched = true
				break
			}
		}
		if !matched {
			unknown = append(unknown, code)
		}
	}
	return unknown
}
