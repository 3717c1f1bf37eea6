package plugin

import (
	"fmt"

	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"

	"github.com/leapstack-labs/csmstyle/pkg/lint"
	"github.com/leapstack-labs/csmstyle/pkg/source"
)

// scriptRule runs the check function of one loaded script.
type scriptRule struct {
	code     string
	check    starlark.Callable
	maxSteps uint64
}

// Check calls check(line) on a fresh thread and converts its result.
func (r *scriptRule) Check(ctx *lint.Context, _ map[string]any) ([]lint.Violation, error) {
	thread := &starlark.Thread{
		Name:  fmt.Sprintf("%s:%s:%d", r.code, ctx.Path, ctx.Logical.Line),
		Print: func(_ *starlark.Thread, _ string) {},
	}
	thread.SetMaxExecutionSteps(r.maxSteps)

	result, err := starlark.Call(thread, r.check, starlark.Tuple{lineValue(ctx)}, nil)
	if err != nil {
		return nil, fmt.Errorf("plugin %s: %w", r.code, err)
	}
	return r.violations(result)
}

func (r *scriptRule) violations(result starlark.Value) ([]lint.Violation, error) {
	if result == starlark.None {
		return nil, nil
	}

	iterable, ok := result.(starlark.Iterable)
	if !ok {
		return nil, fmt.Errorf("plugin %s: check must return None or a list, got %s", r.code, result.Type())
	}

	var out []lint.Violation
	iter := iterable.Iterate()
	defer iter.Done()

	var item starlark.Value
	for iter.Next(&item) {
		v, err := r.violation(item)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (r *scriptRule) violation(item starlark.Value) (lint.Violation, error) {
	if msg, ok := starlark.AsString(item); ok {
		return lint.Violation{Message: lint.WithCode(r.code, msg)}, nil
	}

	tuple, ok := item.(starlark.Tuple)
	if !ok || tuple.Len() != 2 {
		return lint.Violation{}, fmt.Errorf("plugin %s: violation must be a string or (offset, message), got %s", r.code, item.String())
	}

	var offset int
	if err := starlark.AsInt(tuple[0], &offset); err != nil {
		return lint.Violation{}, fmt.Errorf("plugin %s: invalid offset: %w", r.code, err)
	}
	msg, ok := starlark.AsString(tuple[1])
	if !ok {
		return lint.Violation{}, fmt.Errorf("plugin %s: message must be a string, got %s", r.code, tuple[1].Type())
	}
	return lint.Violation{Offset: offset, Message: lint.WithCode(r.code, msg)}, nil
}

// lineValue exposes the context of one logical line to a script.
func lineValue(ctx *lint.Context) starlark.Value {
	s := starlarkstruct.FromStringDict(starlarkstruct.Default, starlark.StringDict{
		"text":         starlark.String(ctx.Text()),
		"line_number":  starlark.MakeInt(ctx.LineNumber),
		"indent_level": starlark.MakeInt(ctx.IndentLevel),
		"blank_lines":  starlark.MakeInt(ctx.BlankLines),
		"is_last":      starlark.Bool(ctx.IsLastLogicalLine()),
		"path":         starlark.String(ctx.Path),
		"lines":        physicalLines{buf: ctx.Lines()},
	})
	s.Freeze()
	return s
}

// physicalLines is a read-only, 0-indexed view of a file's lines.
type physicalLines struct {
	buf source.Buffer
}

var _ starlark.Indexable = physicalLines{}

func (p physicalLines) String() string       { return fmt.Sprintf("<lines len=%d>", p.buf.Len()) }
func (p physicalLines) Type() string         { return "lines" }
func (p physicalLines) Freeze()              {}
func (p physicalLines) Truth() starlark.Bool { return p.buf.Len() > 0 }
func (p physicalLines) Len() int             { return p.buf.Len() }

func (p physicalLines) Index(i int) starlark.Value {
	return starlark.String(p.buf.Line(i + 1))
}

func (p physicalLines) Hash() (uint32, error) {
	return 0, fmt.Errorf("unhashable type: lines")
}
