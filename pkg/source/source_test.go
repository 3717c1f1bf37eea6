package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/csmstyle/pkg/token"
)

func TestSplitLines(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Buffer
	}{
		{name: "empty", input: "", want: Buffer{}},
		{name: "no trailing newline", input: "a\nb", want: Buffer{"a", "b"}},
		{name: "trailing newline", input: "a\nb\n", want: Buffer{"a", "b"}},
		{name: "trailing blank lines", input: "a\n\n\n", want: Buffer{"a", "", ""}},
		{name: "crlf", input: "a\r\nb\r\n", want: Buffer{"a", "b"}},
		{name: "bom", input: "\ufeffa\n", want: Buffer{"a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitLines(tt.input))
		})
	}
}

func TestBuffer_Line(t *testing.T) {
	b := Buffer{"first", "  "}
	assert.Equal(t, "first", b.Line(1))
	assert.Equal(t, "", b.Line(0))
	assert.Equal(t, "", b.Line(3))
	assert.True(t, b.IsBlank(2))
	assert.False(t, b.IsBlank(1))
	assert.Equal(t, 2, b.Len())
}

func TestExpandIndent(t *testing.T) {
	assert.Equal(t, 0, ExpandIndent("x"))
	assert.Equal(t, 4, ExpandIndent("    x"))
	assert.Equal(t, 8, ExpandIndent("\tx"))
	assert.Equal(t, 8, ExpandIndent("   \tx"))
	assert.Equal(t, 16, ExpandIndent("        \tx"))
}

func TestBuildLogical_BlankLinesAndIndent(t *testing.T) {
	src := "import os\n\n\ndef f():\n    return 1\n# note\ndef g():\n    pass\n"
	f := Parse("t.py", []byte(src))

	require.Len(t, f.Logical, 5)

	assert.Equal(t, "import os", f.Logical[0].Text)
	assert.Equal(t, 0, f.Logical[0].BlankLines)

	assert.Equal(t, "def f():", f.Logical[1].Text)
	assert.Equal(t, 4, f.Logical[1].Line)
	assert.Equal(t, 2, f.Logical[1].BlankLines)

	assert.Equal(t, "return 1", f.Logical[2].Text)
	assert.Equal(t, 4, f.Logical[2].Indent)

	// comment-only line resets the count
	assert.Equal(t, "def g():", f.Logical[3].Text)
	assert.Equal(t, 0, f.Logical[3].BlankLines)
}

func TestBuildLogical_Joining(t *testing.T) {
	src := "x = foo(\n    1,\n    2,  # two\n)\ny = 1 + \\\n    2\ns = \"\"\"a\n\nb\"\"\"\n"
	f := Parse("t.py", []byte(src))

	require.Len(t, f.Logical, 3)

	assert.Equal(t, "x = foo(1, 2,)", f.Logical[0].Text)
	assert.Equal(t, 1, f.Logical[0].Line)
	assert.Equal(t, 4, f.Logical[0].EndLine)

	assert.Equal(t, "y = 1 + 2", f.Logical[1].Text)
	assert.Equal(t, 5, f.Logical[1].Line)
	assert.Equal(t, 6, f.Logical[1].EndLine)

	// blank line inside a string is not a blank line
	assert.Equal(t, 7, f.Logical[2].Line)
	assert.Equal(t, 9, f.Logical[2].EndLine)
	assert.Equal(t, `s = """x x"""`, f.Logical[2].Masked)
	assert.Equal(t, `s = """a b"""`, f.Logical[2].Text)
}

func TestBuildLogical_UnterminatedAtEOF(t *testing.T) {
	f := Parse("t.py", []byte("class C:\n    x = [1,\n"))
	require.Len(t, f.Logical, 2)
	assert.Equal(t, 2, f.Logical[1].EndLine)
}

func TestLogicalLine_Position(t *testing.T) {
	f := Parse("t.py", []byte("    x = foo(\n        bar)\n"))
	require.Len(t, f.Logical, 1)
	line := f.Logical[0]

	assert.Equal(t, token.Position{Line: 1, Column: 5}, line.Position(0))
	assert.Equal(t, token.Position{Line: 2, Column: 9}, line.Position(len("x = foo(")))
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mod.py")
	require.NoError(t, os.WriteFile(path, []byte("def f():\n    pass\n"), 0o600))

	f, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, f.Path)
	assert.Equal(t, 2, f.Len())
	assert.Len(t, f.Logical, 2)

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.py"))
	assert.Error(t, err)
}
