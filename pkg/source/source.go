// Package source reads Python source files into physical and logical lines.
//
// A logical line is one statement-level unit: physical lines joined while a
// bracket, a triple-quoted string or a backslash continuation is open. Each
// logical line carries the structural facts lint rules depend on.
package source

import (
	"fmt"
	"os"
	"strings"

	"github.com/leapstack-labs/csmstyle/pkg/token"
)

// Buffer is the ordered sequence of physical lines of a file.
type Buffer []string

// Line returns physical line n (1-based), or "" when n is out of range.
func (b Buffer) Line(n int) string {
	if n < 1 || n > len(b) {
		return ""
	}
	return b[n-1]
}

// Len returns the number of physical lines.
func (b Buffer) Len() int {
	return len(b)
}

// IsBlank reports whether physical line n contains only whitespace.
func (b Buffer) IsBlank(n int) bool {
	return strings.TrimSpace(b.Line(n)) == ""
}

// Segment maps a run of logical line text back to a physical line.
type Segment struct {
	Offset int // offset into the logical text
	Line   int // physical line, 1-based
	Column int // 0-based column in the physical line
}

// LogicalLine is one statement-level unit of source.
type LogicalLine struct {
	Text       string    // code without comments, fragments joined by single spaces
	Masked     string    // Text with string literal contents masked
	Line       int       // first physical line
	EndLine    int       // last physical line
	Indent     int       // expanded indentation of the first physical line
	BlankLines int       // blank physical lines immediately before Line
	Mapping    []Segment // ordered by Offset
}

// Position maps a zero-based offset in Text to a physical position.
func (l LogicalLine) Position(offset int) token.Position {
	if len(l.Mapping) == 0 {
		return token.Position{Line: l.Line, Column: offset + 1}
	}
	seg := l.Mapping[0]
	for _, s := range l.Mapping[1:] {
		if s.Offset > offset {
			break
		}
		seg = s
	}
	return token.Position{Line: seg.Line, Column: seg.Column + offset - seg.Offset + 1}
}

// HasPrefix reports whether the logical text begins with prefix.
func (l LogicalLine) HasPrefix(prefix string) bool {
	return strings.HasPrefix(l.Text, prefix)
}

// File is a parsed source file.
type File struct {
	Path    string
	Lines   Buffer
	Logical []LogicalLine
}

// Len returns the number of physical lines.
func (f *File) Len() int {
	return f.Lines.Len()
}

// ReadFile reads and parses the file at path.
func ReadFile(path string) (*File, error) {
	src, err := os.ReadFile(path) //nolint:gosec // G304: path is the file under check
	if err != nil {
		return nil, fmt.Errorf("failed to read source file: %w", err)
	}
	return Parse(path, src), nil
}

// Parse splits src into physical lines and assembles logical lines.
func Parse(path string, src []byte) *File {
	lines := SplitLines(string(src))
	return &File{
		Path:    path,
		Lines:   lines,
		Logical: BuildLogical(lines),
	}
}

// SplitLines splits text into physical lines without terminators.
// A trailing newline does not produce an extra empty line.
func SplitLines(text string) Buffer {
	text = strings.TrimPrefix(text, "\ufeff")
	if text == "" {
		return Buffer{}
	}
	text = strings.TrimSuffix(text, "\n")
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// ExpandIndent returns the width of the leading whitespace of line,
// with tabs advancing to the next multiple of 8.
func ExpandIndent(line string) int {
	width := 0
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case ' ':
			width++
		case '\t':
			width = width/8*8 + 8
		case '\f':
			width = 0
		default:
			return width
		}
	}
	return width
}
