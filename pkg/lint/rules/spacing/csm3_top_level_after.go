package spacing

import (
	"github.com/leapstack-labs/csmstyle/pkg/lint"
)

// TopLevelAfter requires blank lines after a definition that ends the file.
var TopLevelAfter = lint.RuleDef{
	ID:          "CSM3",
	Name:        "spacing.top_level_after",
	Group:       "spacing",
	Description: "A top-level function or class at the end of the file should be followed by two blank lines.",
	Severity:    lint.SeverityWarning,
	Check:       checkTopLevelAfter,
	Rationale:   "Trailing separation keeps the last definition consistent with the spacing between all others, so appending code never needs a spacing fix.",
	BadExample: `def last():
    return 1`,
	GoodExample: `def last():
    return 1


`,
}

func checkTopLevelAfter(ctx *lint.Context, _ map[string]any) ([]lint.Violation, error) {
	if !ctx.IsLastLogicalLine() {
		return nil, nil
	}

	// trailing separation already present
	if ctx.Lines().IsBlank(ctx.Lines().Len()) {
		return nil, nil
	}

	for i := ctx.Index; i >= 0; i-- {
		line := ctx.File.Logical[i]
		if line.Indent != 0 {
			continue
		}
		if !lint.OpensDefinition(line.Text) {
			return nil, nil
		}
		return []lint.Violation{{
			Offset:  0,
			Message: "CSM3 top-level function/class at end of file should be followed by two blank lines",
		}}, nil
	}
	return nil, nil
}
