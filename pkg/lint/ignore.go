package lint

import (
	"fmt"

	"github.com/leapstack-labs/csmstyle/pkg/core"
)

// IgnoreSet holds violations the user chose to ignore, keyed by
// path, line and message.
type IgnoreSet map[string]struct{}

// IgnoreKey builds the key identifying one violation.
func IgnoreKey(path string, line int, message string) string {
	return fmt.Sprintf("%s:%d:%s", path, line, message)
}

// Add records a violation as ignored.
func (s IgnoreSet) Add(path string, line int, message string) {
	s[IgnoreKey(path, line, message)] = struct{}{}
}

// Contains reports whether d is ignored.
func (s IgnoreSet) Contains(d Diagnostic) bool {
	_, ok := s[IgnoreKey(d.Path, d.Pos.Line, d.Message)]
	return ok
}

// Filter returns the diagnostics not in the set.
func (s IgnoreSet) Filter(diags []Diagnostic) []Diagnostic {
	if len(s) == 0 {
		return diags
	}
	out := make([]Diagnostic, 0, len(diags))
	for _, d := range diags {
		if !s.Contains(d) {
			out = append(out, d)
		}
	}
	return out
}

// FilterSeverity returns the diagnostics at least as severe as threshold.
func FilterSeverity(diags []Diagnostic, threshold core.Severity) []Diagnostic {
	out := make([]Diagnostic, 0, len(diags))
	for _, d := range diags {
		if d.Severity.AtLeast(threshold) {
			out = append(out, d)
		}
	}
	return out
}
