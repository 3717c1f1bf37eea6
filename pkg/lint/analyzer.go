package lint

import (
	"cmp"
	"context"
	"errors"
	"log/slog"
	"runtime/debug"
	"slices"

	"github.com/leapstack-labs/csmstyle/pkg/lint/internal/span"
	"github.com/leapstack-labs/csmstyle/pkg/source"
)

// Analyzer runs the rules of a registry over source files.
type Analyzer struct {
	registry *Registry
	config   *Config
	logger   *slog.Logger
}

// NewAnalyzer creates a new analyzer. A nil config enables every rule and
// a nil logger discards rule failures.
func NewAnalyzer(registry *Registry, config *Config, logger *slog.Logger) *Analyzer {
	if registry == nil {
		registry, _ = NewRegistry()
	}
	if config == nil {
		config = NewConfig()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Analyzer{
		registry: registry,
		config:   config,
		logger:   logger,
	}
}

// Analyze dispatches every logical line of file in source order and returns
// the diagnostics ordered by position.
func (a *Analyzer) Analyze(file *source.File) []Diagnostic {
	var diagnostics []Diagnostic
	for i := range file.Logical {
		diagnostics = append(diagnostics, a.Dispatch(NewContext(file, i))...)
	}

	slices.SortStableFunc(diagnostics, func(x, y Diagnostic) int {
		if c := cmp.Compare(x.Pos.Line, y.Pos.Line); c != 0 {
			return c
		}
		return cmp.Compare(x.Pos.Column, y.Pos.Column)
	})
	return diagnostics
}

// Dispatch runs every enabled rule against one logical line. Results keep
// registration order, and each rule's own emission order.
func (a *Analyzer) Dispatch(ctx *Context) []Diagnostic {
	var diagnostics []Diagnostic

	for _, rule := range a.registry.rules {
		if !a.config.IsEnabled(rule.ID()) {
			continue
		}

		opts := a.config.GetRuleOptions(rule.ID())
		severity := a.config.GetSeverity(rule.ID(), rule.DefaultSeverity())

		for _, v := range a.check(rule, ctx, opts) {
			diagnostics = append(diagnostics, Diagnostic{
				RuleID:           rule.ID(),
				Severity:         severity,
				Message:          v.Message,
				Path:             ctx.Path,
				Pos:              ctx.Logical.Position(max(v.Offset, 0)),
				DocumentationURL: BuildDocURL(rule.ID()),
			})
		}
	}

	return diagnostics
}

// check runs one rule, containing any failure to this rule and line.
func (a *Analyzer) check(rule LineRule, ctx *Context, opts map[string]any) (violations []Violation) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("rule panicked",
				"rule", rule.ID(),
				"path", ctx.Path,
				"line", ctx.Logical.Line,
				"panic", r,
				"stack", string(debug.Stack()),
			)
			violations = nil
		}
	}()

	var err error
	violations, err = rule.CheckLine(ctx, opts)
	if err != nil {
		level := slog.LevelWarn
		if errors.Is(err, span.ErrNotParseable) {
			level = slog.LevelDebug
		}
		a.logger.Log(context.Background(), level, "rule failed",
			"rule", rule.ID(),
			"path", ctx.Path,
			"line", ctx.Logical.Line,
			"error", err,
		)
		return nil
	}
	return violations
}
