// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/leapstack-labs/csmstyle/internal/cli/output"
)

// SampleModule has one violation of each blank-line rule, CSM4 and CSM5.
const SampleModule = `"""Sample module."""
import os
__all__ = ["main"]
class Config:
    def load(self):
        return os.environ


def find(items, key):
    for item in items:
        if item == key:
            return item
    return


def main():
    return Config().load()
`

// SetupTestProject creates a temporary project with a config file, a
// sample module and a user rule. It returns the project directory.
func SetupTestProject(t *testing.T) string {
	t.Helper()

	tmpDir := t.TempDir()

	if err := os.MkdirAll(filepath.Join(tmpDir, ".csmstyle", "rules"), 0o755); err != nil {
		t.Fatalf("failed to create rules directory: %v", err)
	}

	files := map[string]string{
		"csmstyle.yaml": `severity: hint
lint:
  severity:
    CSM2: info
`,
		"app.py": SampleModule,
		filepath.Join(".csmstyle", "rules", "print.star"): `code = "PRJ1"
description = "avoid print calls"

def check(line):
    if line.text.startswith("print("):
        return ["avoid print"]
`,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(tmpDir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("failed to create %s: %v", name, err)
		}
	}

	return tmpDir
}

// TestRenderer wraps a Renderer for testing with captured output buffers.
type TestRenderer struct {
	*output.Renderer
	Out    *bytes.Buffer
	ErrOut *bytes.Buffer
}

// NewTestRenderer creates a new test renderer with the specified mode and TTY state.
// Output is captured in buffers for inspection.
func NewTestRenderer(mode output.OutputMode, isTTY bool) *TestRenderer {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &TestRenderer{
		Renderer: output.NewRendererWithTTY(out, errOut, isTTY, mode),
		Out:      out,
		ErrOut:   errOut,
	}
}

// NewTestRendererAuto creates a renderer in auto mode on a non-terminal,
// which resolves to markdown.
func NewTestRendererAuto() *TestRenderer {
	return NewTestRenderer(output.ModeAuto, false)
}

// NewTestRendererText creates a renderer in text mode on a simulated terminal.
func NewTestRendererText() *TestRenderer {
	return NewTestRenderer(output.ModeText, true)
}

// NewTestRendererJSON creates a new test renderer in JSON mode.
func NewTestRendererJSON() *TestRenderer {
	return NewTestRenderer(output.ModeJSON, false)
}

// Output returns what was written to stdout.
func (tr *TestRenderer) Output() string {
	return tr.Out.String()
}

// ErrorOutput returns what was written to stderr.
func (tr *TestRenderer) ErrorOutput() string {
	return tr.ErrOut.String()
}

// Reset discards everything captured so far.
func (tr *TestRenderer) Reset() {
	tr.Out.Reset()
	tr.ErrOut.Reset()
}

// ansiPattern matches ANSI escape codes.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI checks that a string contains no ANSI escape codes.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("string contains ANSI escape codes: %q", s)
	}
}

// AssertValidMarkdown performs basic markdown validation.
// It checks for unclosed code fences and basic structure.
func AssertValidMarkdown(t *testing.T, md string) {
	t.Helper()

	// Check for balanced code fences
	fenceCount := strings.Count(md, "```")
	if fenceCount%2 != 0 {
		t.Errorf("unbalanced code fences in markdown: found %d occurrences", fenceCount)
	}

	// Check that headers have content
	lines := strings.Split(md, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") && strings.TrimLeft(trimmed, "# ") == "" {
			t.Errorf("empty header at line %d: %q", i+1, line)
		}
	}
}

// AssertOutputMode checks the captured output against the conventions of
// mode: markdown and JSON carry no escape codes, JSON parses, and nothing
// but diagnostics of the run reaches stderr.
func AssertOutputMode(t *testing.T, tr *TestRenderer, mode output.OutputMode) {
	t.Helper()

	if errOut := tr.ErrorOutput(); errOut != "" {
		t.Errorf("unexpected stderr output: %q", errOut)
	}

	switch mode {
	case output.ModeMarkdown:
		AssertNoANSI(t, tr.Output())
		AssertValidMarkdown(t, tr.Output())
	case output.ModeJSON:
		AssertNoANSI(t, tr.Output())
		if !json.Valid(tr.Out.Bytes()) {
			t.Errorf("output is not valid JSON: %q", tr.Output())
		}
	case output.ModeText:
		if strings.TrimSpace(tr.Output()) == "" {
			t.Error("text output is empty")
		}
	}
}
