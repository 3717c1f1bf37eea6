package source

import (
	"strings"

	"github.com/leapstack-labs/csmstyle/pkg/token"
)

// BuildLogical assembles logical lines from physical lines.
//
// Blank lines increase the blank-line count of the next logical line; a
// comment-only line outside a statement resets it to zero.
func BuildLogical(lines Buffer) []LogicalLine {
	var (
		st    token.State
		out   []LogicalLine
		cur   *logicalBuilder
		blank int
	)

	for i, raw := range lines {
		n := i + 1
		scanned := token.Scan(raw, &st)
		left, right := trimBounds(scanned.Masked)

		if cur == nil {
			if left == right {
				if scanned.Comment >= 0 {
					blank = 0
				} else {
					blank++
				}
				continue
			}
			cur = &logicalBuilder{line: LogicalLine{
				Line:       n,
				Indent:     ExpandIndent(raw),
				BlankLines: blank,
			}}
			blank = 0
		}

		if left < right {
			code := scanned.Code(raw)
			cur.add(n, left, code[left:right], scanned.Masked[left:right])
		}

		if st.Depth == 0 && !st.InString() && !scanned.Continued {
			out = append(out, cur.finish(n))
			cur = nil
		}
	}

	if cur != nil {
		out = append(out, cur.finish(len(lines)))
	}
	return out
}

type logicalBuilder struct {
	line   LogicalLine
	text   strings.Builder
	masked strings.Builder
}

func (b *logicalBuilder) add(lineNo, column int, frag, masked string) {
	if b.text.Len() > 0 {
		prev := b.masked.String()
		if !strings.ContainsRune("([{", rune(prev[len(prev)-1])) && !strings.ContainsRune(")]}", rune(masked[0])) {
			b.text.WriteByte(' ')
			b.masked.WriteByte(' ')
		}
	}
	b.line.Mapping = append(b.line.Mapping, Segment{
		Offset: b.text.Len(),
		Line:   lineNo,
		Column: column,
	})
	b.text.WriteString(frag)
	b.masked.WriteString(masked)
}

func (b *logicalBuilder) finish(endLine int) LogicalLine {
	b.line.EndLine = endLine
	b.line.Text = b.text.String()
	b.line.Masked = b.masked.String()
	return b.line
}

func trimBounds(s string) (int, int) {
	left := 0
	for left < len(s) && isSpace(s[left]) {
		left++
	}
	right := len(s)
	for right > left && isSpace(s[right-1]) {
		right--
	}
	return left, right
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\f' || c == '\r'
}
