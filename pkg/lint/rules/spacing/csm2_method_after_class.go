package spacing

import (
	"strings"

	"github.com/leapstack-labs/csmstyle/pkg/lint"
)

// MethodAfterClass requires a blank line between a class header and a
// method defined directly below it. Spacing between sibling methods is
// not checked here.
var MethodAfterClass = lint.RuleDef{
	ID:          "CSM2",
	Name:        "spacing.method_after_class",
	Group:       "spacing",
	Description: "Method definitions inside a class should be preceded by one blank line.",
	Severity:    lint.SeverityWarning,
	Check:       checkMethodAfterClass,
	Rationale:   "A blank line under the class header separates the class signature from its first method.",
	BadExample: `class Account:
    def balance(self):
        return 0`,
	GoodExample: `class Account:

    def balance(self):
        return 0`,
	Fix: "Insert one blank line between the class header and the method.",
}

func checkMethodAfterClass(ctx *lint.Context, _ map[string]any) ([]lint.Violation, error) {
	if ctx.IndentLevel == 0 || !strings.HasPrefix(strings.TrimSpace(ctx.Text()), "def ") {
		return nil, nil
	}
	if ctx.BlankLines >= 1 || !ctx.PrecedingLineIsClassHeader() {
		return nil, nil
	}

	return []lint.Violation{{
		Offset:  0,
		Message: "CSM2 method definitions inside a class should be preceded by one blank line",
	}}, nil
}
