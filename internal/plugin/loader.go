// Package plugin loads user-defined logical-line rules written in Starlark.
//
// Each .star file in the rules directory defines one rule:
//
//	code = "PRJ1"
//	description = "no print calls"
//	severity = "warning"
//
//	def check(line):
//	    if line.text.startswith("print("):
//	        return ["avoid print"]
//
// check receives a line struct and returns None, a list of messages, or a
// list of (offset, message) tuples.
package plugin

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"
	"go.starlark.net/syntax"

	"github.com/leapstack-labs/csmstyle/pkg/core"
	"github.com/leapstack-labs/csmstyle/pkg/lint"
)

// DefaultMaxSteps bounds the work of a single check call.
const DefaultMaxSteps = 1_000_000

// codePattern is the accepted shape of a plugin rule code.
var codePattern = regexp.MustCompile(`^[A-Z]{2,}\d+$`)

// fileOptions enables the language features plugins commonly need.
var fileOptions = &syntax.FileOptions{
	Set:             true,
	While:           true,
	TopLevelControl: true,
	GlobalReassign:  true,
}

// Loader scans a directory for .star files and loads them as rules.
type Loader struct {
	dir      string
	maxSteps uint64
}

// NewLoader creates a new plugin loader for the specified directory.
func NewLoader(dir string) *Loader {
	return &Loader{dir: dir, maxSteps: DefaultMaxSteps}
}

// WithMaxSteps overrides the execution step limit of check calls.
// Zero keeps the default.
func (l *Loader) WithMaxSteps(n uint64) *Loader {
	if n > 0 {
		l.maxSteps = n
	}
	return l
}

// Load loads every .star file in the directory, sorted by name.
// A missing directory yields no rules.
func (l *Loader) Load() ([]lint.LineRule, error) {
	if l.dir == "" {
		return nil, nil
	}

	info, err := os.Stat(l.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to access rules directory: %w", err)
	}

	if !info.IsDir() {
		return nil, fmt.Errorf("rules path is not a directory: %s", l.dir)
	}

	files, err := filepath.Glob(filepath.Join(l.dir, "*.star"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan rules directory: %w", err)
	}

	var rules []lint.LineRule
	for _, file := range files {
		rule, err := l.loadFile(file)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}

	return rules, nil
}

// loadFile executes one script and builds its rule.
func (l *Loader) loadFile(path string) (lint.LineRule, error) {
	content, err := os.ReadFile(path) //nolint:gosec // G304: path comes from glob within rules directory
	if err != nil {
		return nil, &LoadError{File: path, Message: fmt.Sprintf("failed to read file: %v", err)}
	}

	thread := &starlark.Thread{
		Name:  "load:" + filepath.Base(path),
		Print: func(_ *starlark.Thread, _ string) {},
	}
	thread.SetMaxExecutionSteps(l.maxSteps)

	predeclared := starlark.StringDict{
		"struct": starlark.NewBuiltin("struct", starlarkstruct.Make),
	}

	globals, err := starlark.ExecFileOptions(fileOptions, thread, path, content, predeclared)
	if err != nil {
		return nil, &LoadError{File: path, Message: fmt.Sprintf("Starlark execution error: %v", err)}
	}
	// check calls must not be able to mutate module state
	globals.Freeze()

	def, err := l.ruleDef(path, globals)
	if err != nil {
		return nil, &LoadError{File: path, Message: err.Error()}
	}
	return lint.WrapRuleDef(def), nil
}

// ruleDef reads the rule metadata and check function from module globals.
func (l *Loader) ruleDef(path string, globals starlark.StringDict) (lint.RuleDef, error) {
	code, err := stringGlobal(globals, "code", "")
	if err != nil {
		return lint.RuleDef{}, err
	}
	if code == "" {
		return lint.RuleDef{}, fmt.Errorf("missing required global \"code\"")
	}
	if !codePattern.MatchString(code) {
		return lint.RuleDef{}, fmt.Errorf("invalid rule code %q: want letters followed by digits, e.g. PRJ1", code)
	}

	base := strings.TrimSuffix(filepath.Base(path), ".star")
	name, err := stringGlobal(globals, "name", "plugin."+base)
	if err != nil {
		return lint.RuleDef{}, err
	}
	description, err := stringGlobal(globals, "description", "")
	if err != nil {
		return lint.RuleDef{}, err
	}
	rationale, err := stringGlobal(globals, "rationale", "")
	if err != nil {
		return lint.RuleDef{}, err
	}

	sevName, err := stringGlobal(globals, "severity", "warning")
	if err != nil {
		return lint.RuleDef{}, err
	}
	severity, ok := core.ParseSeverity(sevName)
	if !ok {
		return lint.RuleDef{}, fmt.Errorf("invalid severity %q", sevName)
	}

	check, ok := globals["check"].(starlark.Callable)
	if !ok {
		return lint.RuleDef{}, fmt.Errorf("missing required function \"check(line)\"")
	}

	r := &scriptRule{code: code, check: check, maxSteps: l.maxSteps}
	return lint.RuleDef{
		ID:          code,
		Name:        name,
		Group:       "plugin",
		Description: description,
		Severity:    severity,
		Check:       r.Check,
		Source:      "plugin",
		Rationale:   rationale,
	}, nil
}

func stringGlobal(globals starlark.StringDict, name, fallback string) (string, error) {
	v, ok := globals[name]
	if !ok || v == starlark.None {
		return fallback, nil
	}
	s, ok := starlark.AsString(v)
	if !ok {
		return "", fmt.Errorf("global %q must be a string, got %s", name, v.Type())
	}
	return s, nil
}

// LoadError represents an error loading a rule script.
type LoadError struct {
	File    string
	Message string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("rules/%s: %s", filepath.Base(e.File), e.Message)
}
