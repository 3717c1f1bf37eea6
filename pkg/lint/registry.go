package lint

import (
	"errors"
	"fmt"
	"sort"

	"github.com/leapstack-labs/csmstyle/pkg/core"
)

// ErrDuplicateRule is returned when two rules share an ID.
var ErrDuplicateRule = errors.New("duplicate rule")

// Registry is an immutable, ordered set of rules.
// Build it once at startup and pass it to NewAnalyzer.
type Registry struct {
	rules []LineRule
	byID  map[string]LineRule
}

// NewRegistry builds a registry from rules in order.
func NewRegistry(rules ...LineRule) (*Registry, error) {
	r := &Registry{
		rules: make([]LineRule, 0, len(rules)),
		byID:  make(map[string]LineRule, len(rules)),
	}
	for _, rule := range rules {
		if rule == nil {
			continue
		}
		if _, ok := r.byID[rule.ID()]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateRule, rule.ID())
		}
		r.byID[rule.ID()] = rule
		r.rules = append(r.rules, rule)
	}
	return r, nil
}

// With returns a new registry holding the rules of r followed by rules.
func (r *Registry) With(rules ...LineRule) (*Registry, error) {
	all := make([]LineRule, 0, len(r.rules)+len(rules))
	all = append(all, r.rules...)
	all = append(all, rules...)
	return NewRegistry(all...)
}

// Rules returns the rules in registration order.
func (r *Registry) Rules() []LineRule {
	out := make([]LineRule, len(r.rules))
	copy(out, r.rules)
	return out
}

// Get returns a rule by its ID.
func (r *Registry) Get(id string) (LineRule, bool) {
	rule, ok := r.byID[id]
	return rule, ok
}

// Len returns the number of registered rules.
func (r *Registry) Len() int {
	return len(r.rules)
}

// Infos returns metadata for every rule, sorted by ID.
func (r *Registry) Infos() []core.RuleInfo {
	infos := make([]core.RuleInfo, 0, len(r.rules))
	for _, rule := range r.rules {
		infos = append(infos, GetRuleInfo(rule))
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].ID < infos[j].ID
	})
	return infos
}

// Groups returns the distinct rule groups, sorted.
func (r *Registry) Groups() []string {
	seen := make(map[string]bool)
	var groups []string
	for _, rule := range r.rules {
		if !seen[rule.Group()] {
			seen[rule.Group()] = true
			groups = append(groups, rule.Group())
		}
	}
	sort.Strings(groups)
	return groups
}
