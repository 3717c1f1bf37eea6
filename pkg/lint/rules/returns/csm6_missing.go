package returns

import (
	"github.com/leapstack-labs/csmstyle/pkg/lint"
)

// Missing flags value-returning functions that can fall off the end.
var Missing = lint.RuleDef{
	ID:          "CSM6",
	Name:        "returns.missing",
	Group:       "returns",
	Description: "A function that returns a value should end with a return statement.",
	Severity:    lint.SeverityError,
	Check:       checkMissing,
	Rationale:   "Falling off the end of a value-returning function returns None implicitly, hiding a missing case.",
	BadExample: `def sign(x):
    if x < 0:
        return -1
    result = 1`,
	GoodExample: `def sign(x):
    if x < 0:
        return -1
    return 1`,
	Fix: "End the function with a return statement or raise an exception.",
}

func checkMissing(ctx *lint.Context, _ map[string]any) ([]lint.Violation, error) {
	sum, err := summarize(ctx)
	if err != nil || sum == nil {
		return nil, err
	}
	if sum.valueReturns == 0 || sum.endsInReturn {
		return nil, nil
	}

	return []lint.Violation{{
		Offset:  0,
		Message: "CSM6 function returns a value but does not end with a return statement",
	}}, nil
}
