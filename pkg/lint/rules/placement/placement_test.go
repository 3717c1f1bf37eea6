package placement_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/csmstyle/internal/testutil"
	"github.com/leapstack-labs/csmstyle/pkg/lint"
	"github.com/leapstack-labs/csmstyle/pkg/lint/rules"
	"github.com/leapstack-labs/csmstyle/pkg/source"
)

// Helper to run analysis and filter by rule ID
func runRule(t *testing.T, src string, cfg *lint.Config) []lint.Diagnostic {
	t.Helper()
	registry, err := rules.NewRegistry()
	require.NoError(t, err)

	analyzer := lint.NewAnalyzer(registry, cfg, testutil.NewTestLogger(t))
	diags := analyzer.Analyze(source.Parse("test.py", []byte(src)))

	var filtered []lint.Diagnostic
	for _, d := range diags {
		if d.RuleID == "CSM4" {
			filtered = append(filtered, d)
		}
	}
	return filtered
}

func lines(l ...string) string {
	return strings.Join(l, "\n") + "\n"
}

func TestCSM4_Dunder(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		wantLine int // 0 means no diagnostic
	}{
		{
			name: "dunder before import",
			src:  lines(`"""Doc."""`, "", `__all__ = ["x"]`, "", "import os"),
		},
		{
			name:     "import before dunder",
			src:      lines(`"""Doc."""`, "import os", "", `__version__ = "1.0"`),
			wantLine: 4,
		},
		{
			name: "no imports",
			src:  lines(`__all__ = []`, "x = 1"),
		},
		{
			name: "future import does not count",
			src:  lines("from __future__ import annotations", `__all__ = []`, "import os"),
		},
		{
			name:     "from import before dunder",
			src:      lines("from os import path", `__all__ = ["path"]`),
			wantLine: 2,
		},
		{
			name: "no dunder line at all",
			src:  lines("import os", "x = 1"),
		},
		{
			name:     "only first dunder line reports",
			src:      lines("import os", `__all__ = []`, `__version__ = "2"`),
			wantLine: 2,
		},
		{
			name:     "guard comparison is not an assignment",
			src:      lines("__name__ == '__main__' and exit()", "import os"),
			wantLine: 1,
		},
		{
			name: "dunder before docstring allowed by default",
			src:  lines(`__all__ = []`, `"""Doc."""`, "import os"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diags := runRule(t, tt.src, lint.NewConfig())
			if tt.wantLine == 0 {
				assert.Empty(t, diags, "unexpected CSM4 diagnostic")
				return
			}
			require.Len(t, diags, 1, "expected CSM4 diagnostic")
			assert.Equal(t, tt.wantLine, diags[0].Pos.Line)
			assert.Equal(t, "CSM4 module level dunder names should be placed after the module docstring and before imports", diags[0].Message)
		})
	}
}

func TestCSM4_RequireAfterDocstring(t *testing.T) {
	cfg := lint.NewConfig().SetRuleOptions("CSM4", map[string]any{"require_after_docstring": true})

	diags := runRule(t, lines(`__all__ = []`, `"""Doc."""`, "import os"), cfg)
	require.Len(t, diags, 1)
	assert.Equal(t, 1, diags[0].Pos.Line)

	diags = runRule(t, lines(`"""Doc."""`, `__all__ = []`, "import os"), cfg)
	assert.Empty(t, diags)
}
