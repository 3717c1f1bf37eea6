// Package span extracts the physical-line span of one function and parses
// it in isolation.
//
// The pipeline has two phases. Extract selects the definition line and every
// following logical line indented deeper than it. Parse lowers that block to
// a statement skeleton that keeps line positions and control structure, then
// parses the skeleton with the Starlark syntax parser. A block that cannot be
// parsed on its own fails with ErrNotParseable.
package span

import (
	"errors"
	"fmt"
	"strings"

	"github.com/leapstack-labs/csmstyle/pkg/source"
)

var (
	// ErrNotFunction is returned when the logical line does not open a function.
	ErrNotFunction = errors.New("logical line does not open a function")

	// ErrNotParseable is matched by every *ParseError.
	ErrNotParseable = errors.New("span not self-parseable")
)

// ParseError reports a span that does not parse as a standalone unit.
type ParseError struct {
	Line int // physical line in the file
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("span not self-parseable at line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is matches ErrNotParseable.
func (e *ParseError) Is(target error) bool {
	return target == ErrNotParseable
}

// Span is the contiguous block of one function definition.
type Span struct {
	Start  int // first physical line (the def line)
	End    int // last physical line
	Indent int // indentation of the def line

	// Logical holds the def line followed by its body lines.
	Logical []source.LogicalLine
}

// IsFunctionHeader reports whether logical text opens a function.
func IsFunctionHeader(text string) bool {
	return strings.HasPrefix(text, "def ") || strings.HasPrefix(text, "async def ")
}

// Extract returns the span of the function opened by the logical line at
// index. The body ends at the first logical line indented no deeper than the
// definition, or at end of file. Blank and comment lines inside are kept.
func Extract(file *source.File, index int) (*Span, error) {
	if index < 0 || index >= len(file.Logical) {
		return nil, fmt.Errorf("logical line %d out of range", index)
	}
	header := file.Logical[index]
	if !IsFunctionHeader(header.Text) {
		return nil, ErrNotFunction
	}

	end := index + 1
	for end < len(file.Logical) && file.Logical[end].Indent > header.Indent {
		end++
	}

	lines := file.Logical[index:end]
	return &Span{
		Start:   header.Line,
		End:     lines[len(lines)-1].EndLine,
		Indent:  header.Indent,
		Logical: lines,
	}, nil
}

// Source returns the physical text of the span.
func (s *Span) Source(buf source.Buffer) string {
	var b strings.Builder
	for n := s.Start; n <= s.End; n++ {
		b.WriteString(buf.Line(n))
		b.WriteByte('\n')
	}
	return b.String()
}

// Len returns the number of physical lines in the span.
func (s *Span) Len() int {
	return s.End - s.Start + 1
}
