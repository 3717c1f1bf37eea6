package returns

import (
	"github.com/leapstack-labs/csmstyle/pkg/lint"
	"github.com/leapstack-labs/csmstyle/pkg/lint/internal/span"
)

// summary describes the return statements of one function.
type summary struct {
	valueReturns int
	bareReturns  int
	endsInReturn bool
}

// summaryKey memoizes the summary on the context so CSM5 and CSM6 parse
// each function once.
const summaryKey = "returns.summary"

// summarize parses the function opened by the current line. It returns nil
// when the line does not open a function.
func summarize(ctx *lint.Context) (*summary, error) {
	if !span.IsFunctionHeader(ctx.Text()) {
		return nil, nil
	}

	v, err := ctx.Memo(summaryKey, func() (any, error) {
		return parseSummary(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(*summary), nil
}

func parseSummary(ctx *lint.Context) (*summary, error) {
	s, err := span.Extract(ctx.File, ctx.Index)
	if err != nil {
		return nil, err
	}
	fn, err := span.Parse(s)
	if err != nil {
		return nil, err
	}

	sum := &summary{endsInReturn: fn.EndsInControlTransfer()}
	for _, r := range fn.Returns() {
		if r.Result != nil {
			sum.valueReturns++
		} else {
			sum.bareReturns++
		}
	}
	return sum, nil
}
