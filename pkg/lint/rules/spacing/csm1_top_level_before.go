package spacing

import (
	"fmt"

	"github.com/leapstack-labs/csmstyle/pkg/lint"
)

// TopLevelBefore requires blank lines before top-level definitions.
var TopLevelBefore = lint.RuleDef{
	ID:          "CSM1",
	Name:        "spacing.top_level_before",
	Group:       "spacing",
	Description: "Top-level function and class definitions should be preceded by two blank lines.",
	Severity:    lint.SeverityWarning,
	ConfigKeys:  []string{"min_blank_lines"},
	Check:       checkTopLevelBefore,
	Rationale:   "Two blank lines visually separate module-level units so a reader can find where one definition ends and the next begins.",
	BadExample: `import os
def main():
    pass`,
	GoodExample: `import os


def main():
    pass`,
	Fix: "Insert blank lines above the definition until there are two.",
}

const defaultTopLevelBlankLines = 2

func checkTopLevelBefore(ctx *lint.Context, opts map[string]any) ([]lint.Violation, error) {
	if !ctx.IsTopLevelDefinition() {
		return nil, nil
	}

	want := lint.GetIntOption(opts, "min_blank_lines", defaultTopLevelBlankLines)
	if ctx.BlankLines >= want {
		return nil, nil
	}

	return []lint.Violation{{
		Offset:  0,
		Message: fmt.Sprintf("CSM1 top-level function/class should be preceded by %s", blankLines(want)),
	}}, nil
}

var numberWords = []string{"zero", "one", "two", "three", "four", "five"}

// blankLines spells out a blank line count, e.g. "two blank lines".
func blankLines(n int) string {
	word := fmt.Sprint(n)
	if n >= 0 && n < len(numberWords) {
		word = numberWords[n]
	}
	if n == 1 {
		return word + " blank line"
	}
	return word + " blank lines"
}
