package lint

import (
	"strings"

	"github.com/leapstack-labs/csmstyle/pkg/source"
)

// DefinitionKeywords introduce a function or class definition.
var DefinitionKeywords = []string{"def ", "class "}

// ClassKeyword introduces a class definition.
const ClassKeyword = "class "

// Context carries the structural facts for one logical line.
// It is built by the Analyzer and read-only for rules, apart from the
// Memo cache shared by the rules of one dispatch.
type Context struct {
	Path    string
	File    *source.File
	Logical source.LogicalLine
	Index   int // index of Logical in File.Logical

	// BlankLines is the number of blank physical lines immediately before
	// the logical line.
	BlankLines int

	// IndentLevel is the indentation width of the first physical line;
	// zero means module scope.
	IndentLevel int

	// LineNumber is the last physical line of the logical line.
	LineNumber int

	memo map[string]memoEntry
}

type memoEntry struct {
	value any
	err   error
}

// NewContext builds the context for the logical line at index.
func NewContext(file *source.File, index int) *Context {
	line := file.Logical[index]
	return &Context{
		Path:        file.Path,
		File:        file,
		Logical:     line,
		Index:       index,
		BlankLines:  line.BlankLines,
		IndentLevel: line.Indent,
		LineNumber:  line.EndLine,
	}
}

// Memo returns the result of compute for key, running compute at most once
// per context. Rules sharing derived facts about a line, such as a parsed
// function body, use it so the work is done once per dispatch.
func (c *Context) Memo(key string, compute func() (any, error)) (any, error) {
	if e, ok := c.memo[key]; ok {
		return e.value, e.err
	}
	value, err := compute()
	if c.memo == nil {
		c.memo = make(map[string]memoEntry)
	}
	c.memo[key] = memoEntry{value: value, err: err}
	return value, err
}

// Lines returns the physical lines of the file.
func (c *Context) Lines() source.Buffer {
	return c.File.Lines
}

// Text returns the logical line text.
func (c *Context) Text() string {
	return c.Logical.Text
}

// IsTopLevelDefinition reports whether the line opens a function or class
// at module scope.
func (c *Context) IsTopLevelDefinition() bool {
	return c.IndentLevel == 0 && OpensDefinition(c.Logical.Text)
}

// IsLastLogicalLine reports whether the logical line ends on the final
// physical line of the file.
func (c *Context) IsLastLogicalLine() bool {
	return c.LineNumber == c.File.Lines.Len()
}

// PrecedingLineIsClassHeader reports whether the literal previous physical
// line begins a class definition.
func (c *Context) PrecedingLineIsClassHeader() bool {
	prev := c.File.Lines.Line(c.Logical.Line - 1)
	return strings.HasPrefix(strings.TrimSpace(prev), ClassKeyword)
}

// Previous returns the logical line before this one.
func (c *Context) Previous() (source.LogicalLine, bool) {
	if c.Index == 0 {
		return source.LogicalLine{}, false
	}
	return c.File.Logical[c.Index-1], true
}

// OpensDefinition reports whether text begins with a definition keyword.
func OpensDefinition(text string) bool {
	for _, kw := range DefinitionKeywords {
		if strings.HasPrefix(text, kw) {
			return true
		}
	}
	return false
}
