package lint

import (
	"github.com/leapstack-labs/csmstyle/pkg/core"
	"github.com/leapstack-labs/csmstyle/pkg/token"
)

// Severity aliases for rule definitions.
const (
	SeverityError   = core.SeverityError
	SeverityWarning = core.SeverityWarning
	SeverityInfo    = core.SeverityInfo
	SeverityHint    = core.SeverityHint
)

// =============================================================================
// Violations and Diagnostics
// =============================================================================

// Violation is a finding reported by a rule against one logical line.
type Violation struct {
	Offset  int    // zero-based offset into the logical line text
	Message string // begins with the rule code, e.g. "CSM1 ..."
}

// Diagnostic represents a lint finding located in a file.
type Diagnostic struct {
	RuleID   string         `json:"rule_id"`
	Severity core.Severity  `json:"severity"`
	Message  string         `json:"message"`
	Path     string         `json:"path"`
	Pos      token.Position `json:"position"`

	// DocumentationURL points at the rule documentation.
	DocumentationURL string `json:"documentation_url,omitempty"`
}

// =============================================================================
// Rule Definitions
// =============================================================================

// RuleDef is a data-driven rule definition.
// Rules are stateless - all context comes via the Check function parameters.
type RuleDef struct {
	ID          string        // Unique identifier and message prefix, e.g., "CSM1"
	Name        string        // Human-readable name, e.g., "spacing.top_level_before"
	Group       string        // Category, e.g., "spacing", "placement", "returns"
	Description string        // Human-readable description
	Severity    core.Severity // Default severity
	Check       CheckFunc     // The check function
	ConfigKeys  []string      // Configuration keys this rule accepts (for rule-specific options)
	Source      string        // "builtin" when empty

	// Documentation fields for richer rule documentation
	Rationale   string // Why this rule exists, what problems it prevents
	BadExample  string // Code showing the anti-pattern
	GoodExample string // Code showing the correct pattern
	Fix         string // How to fix violations (when not obvious)
}

// CheckFunc inspects one logical line and returns its violations.
// The opts parameter contains rule-specific options from configuration.
type CheckFunc func(ctx *Context, opts map[string]any) ([]Violation, error)

// =============================================================================
// Rule Interfaces
// =============================================================================

// Rule is the base interface all lint rules implement.
type Rule interface {
	// ID returns the unique identifier, e.g., "CSM1"
	ID() string

	// Name returns the human-readable name, e.g., "spacing.top_level_before"
	Name() string

	// Group returns the category, e.g., "spacing", "placement", "returns"
	Group() string

	// Description returns a human-readable description
	Description() string

	// DefaultSeverity returns the default severity for this rule
	DefaultSeverity() core.Severity

	// ConfigKeys returns configuration keys this rule accepts
	ConfigKeys() []string

	// Documentation methods for richer rule documentation
	Rationale() string   // Why this rule exists, what problems it prevents
	BadExample() string  // Code showing the anti-pattern
	GoodExample() string // Code showing the correct pattern
	Fix() string         // How to fix violations (when not obvious)
}

// LineRule inspects logical lines.
//
// CheckLine is called once per logical line with the full context; the rule
// decides relevance itself. Returned errors and panics are contained by the
// Analyzer and count as no violations for that line.
type LineRule interface {
	Rule

	CheckLine(ctx *Context, opts map[string]any) ([]Violation, error)
}

// GetRuleInfo extracts metadata from a Rule for documentation/tooling.
func GetRuleInfo(r Rule) core.RuleInfo {
	info := core.RuleInfo{
		ID:              r.ID(),
		Name:            r.Name(),
		Group:           r.Group(),
		Description:     r.Description(),
		DefaultSeverity: r.DefaultSeverity(),
		ConfigKeys:      r.ConfigKeys(),
		Source:          "builtin",
		Rationale:       r.Rationale(),
		BadExample:      r.BadExample(),
		GoodExample:     r.GoodExample(),
		Fix:             r.Fix(),
	}
	if s, ok := r.(interface{ Source() string }); ok && s.Source() != "" {
		info.Source = s.Source()
	}
	return info
}

// wrappedRuleDef wraps a RuleDef to implement LineRule.
type wrappedRuleDef struct {
	def RuleDef
}

// WrapRuleDef wraps a RuleDef to implement LineRule.
func WrapRuleDef(def RuleDef) LineRule {
	return &wrappedRuleDef{def: def}
}

func (w *wrappedRuleDef) ID() string                     { return w.def.ID }
func (w *wrappedRuleDef) Name() string                   { return w.def.Name }
func (w *wrappedRuleDef) Group() string                  { return w.def.Group }
func (w *wrappedRuleDef) Description() string            { return w.def.Description }
func (w *wrappedRuleDef) DefaultSeverity() core.Severity { return w.def.Severity }
func (w *wrappedRuleDef) ConfigKeys() []string           { return w.def.ConfigKeys }
func (w *wrappedRuleDef) Source() string                 { return w.def.Source }
func (w *wrappedRuleDef) Rationale() string              { return w.def.Rationale }
func (w *wrappedRuleDef) BadExample() string             { return w.def.BadExample }
func (w *wrappedRuleDef) GoodExample() string            { return w.def.GoodExample }
func (w *wrappedRuleDef) Fix() string                    { return w.def.Fix }

func (w *wrappedRuleDef) CheckLine(ctx *Context, opts map[string]any) ([]Violation, error) {
	return w.def.Check(ctx, opts)
}

// Unwrap returns the underlying RuleDef.
func (w *wrappedRuleDef) Unwrap() RuleDef {
	return w.def
}
