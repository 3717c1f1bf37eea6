package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScan_SingleLine(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		masked    string
		comment   int
		continued bool
		depth     int
	}{
		{
			name:    "plain code",
			input:   "x = 1",
			masked:  "x = 1",
			comment: -1,
		},
		{
			name:    "comment after code",
			input:   `x = "a#b"  # note`,
			masked:  `x = "xxx"  `,
			comment: 11,
		},
		{
			name:    "escaped quote",
			input:   `'it\'s'`,
			masked:  `'xxxxx'`,
			comment: -1,
		},
		{
			name:      "backslash continuation",
			input:     `x = 1 + \`,
			masked:    `x = 1 +  `,
			comment:   -1,
			continued: true,
		},
		{
			name:    "open bracket",
			input:   "foo(a,",
			masked:  "foo(a,",
			comment: -1,
			depth:   1,
		},
		{
			name:    "brackets inside strings ignored",
			input:   `print("(")`,
			masked:  `print("x")`,
			comment: -1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var st State
			got := Scan(tt.input, &st)
			assert.Equal(t, tt.masked, got.Masked)
			assert.Equal(t, tt.comment, got.Comment)
			assert.Equal(t, tt.continued, got.Continued)
			assert.Equal(t, tt.depth, st.Depth)
			assert.False(t, st.InString())
		})
	}
}

func TestScan_TripleQuotedStringSpansLines(t *testing.T) {
	var st State

	first := Scan(`s = """abc`, &st)
	assert.Equal(t, `s = """xxx`, first.Masked)
	assert.True(t, st.InString())

	middle := Scan(`# not a comment`, &st)
	assert.Equal(t, -1, middle.Comment)
	assert.True(t, st.InString())

	last := Scan(`def"""`, &st)
	assert.Equal(t, `xxx"""`, last.Masked)
	assert.False(t, st.InString())
}

func TestScan_ClosingBracketClampsDepth(t *testing.T) {
	var st State
	Scan(")]", &st)
	assert.Equal(t, 0, st.Depth)
}

func TestLine_Code(t *testing.T) {
	var st State
	raw := `y = "q" + \`
	line := Scan(raw, &st)
	assert.Equal(t, `y = "q" +  `, line.Code(raw))
	assert.Len(t, line.Code(raw), len(line.Masked))
}

func TestDepthZeroIndex(t *testing.T) {
	assert.Equal(t, 9, DepthZeroIndex("if f(a:b): pass", ':'))
	assert.Equal(t, -1, DepthZeroIndex("d = {1: 2}", ':'))
}

func TestSplitDepthZero(t *testing.T) {
	parts, offsets := SplitDepthZero("a; f(b; c); d", ';')
	assert.Equal(t, []string{"a", " f(b; c)", " d"}, parts)
	assert.Equal(t, []int{0, 2, 11}, offsets)
}

func TestKeyword(t *testing.T) {
	assert.Equal(t, "return", Keyword("return(x)"))
	assert.Equal(t, "__all__", Keyword("__all__ = []"))
	assert.Equal(t, "", Keyword("@decorator"))
}

func TestPosition_String(t *testing.T) {
	assert.Equal(t, "12:5", Position{Line: 12, Column: 5}.String())
}
