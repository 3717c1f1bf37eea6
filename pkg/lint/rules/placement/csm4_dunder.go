package placement

import (
	"regexp"
	"strings"

	"github.com/leapstack-labs/csmstyle/pkg/lint"
	"github.com/leapstack-labs/csmstyle/pkg/source"
	"github.com/leapstack-labs/csmstyle/pkg/token"
)

// Dunder checks that module dunder assignments precede imports.
var Dunder = lint.RuleDef{
	ID:          "CSM4",
	Name:        "placement.dunder",
	Group:       "placement",
	Description: "Module level dunder names should be placed after the module docstring and before imports.",
	Severity:    lint.SeverityWarning,
	ConfigKeys:  []string{"require_after_docstring"},
	Check:       checkDunder,
	Rationale:   "Metadata such as __all__ and __version__ is easiest to find at the top of the module, and __all__ must be visible before star imports run.",
	BadExample: `"""Utilities."""
import os

__all__ = ["walk"]`,
	GoodExample: `"""Utilities."""

__all__ = ["walk"]

import os`,
	Fix: "Move dunder assignments between the module docstring and the first import.",
}

var dunderAssign = regexp.MustCompile(`^__\w+__\s*=[^=]`)

var docstringPrefix = regexp.MustCompile(`^(?i:[rub]|rb|br)?("""|''')`)

// moduleLayout holds the first line of each landmark, 0 when absent.
type moduleLayout struct {
	docstring int
	dunder    int
	imports   int
}

func checkDunder(ctx *lint.Context, opts map[string]any) ([]lint.Violation, error) {
	if !ctx.Logical.HasPrefix("__") || !isFirstDunderLine(ctx) {
		return nil, nil
	}

	layout := scanModule(ctx.File)
	if layout.imports == 0 {
		return nil, nil
	}

	misplaced := layout.dunder == 0
	if lint.GetBoolOption(opts, "require_after_docstring", false) &&
		layout.docstring != 0 && layout.dunder != 0 && layout.dunder < layout.docstring {
		misplaced = true
	}
	if !misplaced {
		return nil, nil
	}

	return []lint.Violation{{
		Offset:  0,
		Message: "CSM4 module level dunder names should be placed after the module docstring and before imports",
	}}, nil
}

func isFirstDunderLine(ctx *lint.Context) bool {
	for _, line := range ctx.File.Logical[:ctx.Index] {
		if line.HasPrefix("__") {
			return false
		}
	}
	return true
}

// scanModule walks module-level statements up to the first import.
func scanModule(file *source.File) moduleLayout {
	var layout moduleLayout
	for _, line := range file.Logical {
		if line.Indent != 0 {
			continue
		}
		switch {
		case layout.docstring == 0 && docstringPrefix.MatchString(line.Text):
			layout.docstring = line.Line
		case isImport(line.Text):
			layout.imports = line.Line
			return layout
		case layout.dunder == 0 && dunderAssign.MatchString(line.Masked+" "):
			layout.dunder = line.Line
		}
	}
	return layout
}

func isImport(text string) bool {
	switch token.Keyword(text) {
	case "import":
		return true
	case "from":
		return !strings.HasPrefix(text, "from __future__ ")
	}
	return false
}
