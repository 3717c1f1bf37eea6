package returns

import (
	"github.com/leapstack-labs/csmstyle/pkg/lint"
)

// Mixed flags functions mixing value returns and bare returns.
var Mixed = lint.RuleDef{
	ID:          "CSM5",
	Name:        "returns.mixed",
	Group:       "returns",
	Description: "Either all return statements in a function should return an expression, or none of them should.",
	Severity:    lint.SeverityError,
	Check:       checkMixed,
	Rationale:   "A bare return in a function that otherwise returns values silently yields None, which callers rarely expect.",
	BadExample: `def find(items, key):
    for item in items:
        if item.key == key:
            return item
    return`,
	GoodExample: `def find(items, key):
    for item in items:
        if item.key == key:
            return item
    return None`,
	Fix: "Return an explicit value, such as None, from every return statement.",
}

func checkMixed(ctx *lint.Context, _ map[string]any) ([]lint.Violation, error) {
	sum, err := summarize(ctx)
	if err != nil || sum == nil {
		return nil, err
	}
	if sum.valueReturns == 0 || sum.bareReturns == 0 {
		return nil, nil
	}

	return []lint.Violation{{
		Offset:  0,
		Message: "CSM5 either all return statements in a function should return an expression, or none of them should",
	}}, nil
}
