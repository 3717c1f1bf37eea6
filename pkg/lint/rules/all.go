package rules

import (
	"github.com/leapstack-labs/csmstyle/pkg/lint"
	"github.com/leapstack-labs/csmstyle/pkg/lint/rules/placement"
	"github.com/leapstack-labs/csmstyle/pkg/lint/rules/returns"
	"github.com/leapstack-labs/csmstyle/pkg/lint/rules/spacing"
)

// All returns the built-in rules in registration order.
func All() []lint.LineRule {
	return []lint.LineRule{
		lint.WrapRuleDef(spacing.TopLevelBefore),
		lint.WrapRuleDef(spacing.MethodAfterClass),
		lint.WrapRuleDef(spacing.TopLevelAfter),
		lint.WrapRuleDef(placement.Dunder),
		lint.WrapRuleDef(returns.Mixed),
		lint.WrapRuleDef(returns.Missing),
	}
}

// NewRegistry builds a registry of the built-in rules followed by extra.
func NewRegistry(extra ...lint.LineRule) (*lint.Registry, error) {
	return lint.NewRegistry(append(All(), extra...)...)
}
