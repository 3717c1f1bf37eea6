package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/leapstack-labs/csmstyle/internal/cli/output"
	"github.com/leapstack-labs/csmstyle/internal/state"
	"github.com/leapstack-labs/csmstyle/pkg/core"
	"github.com/leapstack-labs/csmstyle/pkg/lint"
	"github.com/leapstack-labs/csmstyle/pkg/lint/explain"
	"github.com/leapstack-labs/csmstyle/pkg/source"
	"github.com/spf13/cobra"
)

// ErrViolationsFound is returned when a check reports at least one violation.
var ErrViolationsFound = errors.New("style violations found")

// NewCheckCommand creates the check command.
func NewCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check <file>",
		Short: "Check a Python file for code style violations",
		Long: `Check one Python file against the csmstyle rules.

Each violation is reported on its own line as:

  path:line:col: CODE message

The command exits with status 1 when violations are found.`,
		Example: `  # Check a file
  csmstyle check app.py

  # Only blank-line rules, as JSON
  csmstyle check app.py --select CSM1,CSM2,CSM3 -o json

  # Append rule explanations to each message
  csmstyle check app.py --explain`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return RunCheck(cmd, args[0])
		},
	}
}

// RunCheck checks path once and renders the result.
func RunCheck(cmd *cobra.Command, path string) error {
	cmdCtx := NewCommandContext(cmd)

	checker, err := NewChecker(cmdCtx)
	if err != nil {
		return err
	}
	defer func() { _ = checker.Close() }()

	diags, err := checker.Check(contextOrBackground(cmd), path)
	if err != nil {
		return err
	}

	if err := checker.Render(cmdCtx.Renderer, diags); err != nil {
		return err
	}
	if len(diags) > 0 {
		return ErrViolationsFound
	}
	return nil
}

// Checker runs check passes over files with a fixed rule set.
type Checker struct {
	cmdCtx    *CommandContext
	analyzer  *lint.Analyzer
	threshold core.Severity
	catalog   *explain.Catalog
	store     state.Store
}

// NewChecker builds the registry, rule selection, explanation catalog and
// ignore store for cmdCtx. Close releases the store.
func NewChecker(cmdCtx *CommandContext) (*Checker, error) {
	registry, err := cmdCtx.Registry()
	if err != nil {
		return nil, err
	}

	lintCfg := cmdCtx.Cfg.LintConfig()
	if unknown := lintCfg.UnknownSelections(registry); len(unknown) > 0 {
		cmdCtx.Logger.Debug("selected codes are not produced by csmstyle", "codes", unknown)
	}

	c := &Checker{
		cmdCtx:    cmdCtx,
		analyzer:  lint.NewAnalyzer(registry, lintCfg, cmdCtx.Logger),
		threshold: cmdCtx.Cfg.Threshold(),
	}

	if cmdCtx.Cfg.Explain {
		if c.catalog, err = cmdCtx.Catalog(registry); err != nil {
			return nil, err
		}
	}

	store, err := cmdCtx.openExistingStore()
	if err != nil {
		return nil, err
	}
	if store != nil {
		c.store = store
	}

	return c, nil
}

// Close releases the ignore store, if one was opened.
func (c *Checker) Close() error {
	if c.store == nil {
		return nil
	}
	return c.store.Close()
}

// Check reads path, runs every enabled rule and drops ignored violations and
// violations below the severity threshold.
func (c *Checker) Check(ctx context.Context, path string) ([]lint.Diagnostic, error) {
	file, err := source.ReadFile(path)
	if err != nil {
		return nil, err
	}

	diags := c.analyzer.Analyze(file)

	if c.store != nil {
		key := c.cmdCtx.storeKey(path)
		ignored, err := c.store.IgnoreSet(ctx, key)
		if err != nil {
			return nil, err
		}
		diags = withoutIgnored(diags, ignored, key)
	}

	return lint.FilterSeverity(diags, c.threshold), nil
}

// withoutIgnored drops diagnostics recorded in ignored under key. Ignore keys
// use the project-relative path, so the set is matched against re-keyed
// copies and the kept diagnostics get their original path back.
func withoutIgnored(diags []lint.Diagnostic, ignored lint.IgnoreSet, key string) []lint.Diagnostic {
	if len(ignored) == 0 || len(diags) == 0 {
		return diags
	}

	path := diags[0].Path
	rekeyed := make([]lint.Diagnostic, len(diags))
	for i, d := range diags {
		d.Path = key
		rekeyed[i] = d
	}

	kept := ignored.Filter(rekeyed)
	for i := range kept {
		kept[i].Path = path
	}
	return kept
}

// Render writes diags in the renderer's mode.
func (c *Checker) Render(r *output.Renderer, diags []lint.Diagnostic) error {
	if c.catalog != nil {
		enhanced := make([]lint.Diagnostic, len(diags))
		for i, d := range diags {
			d.Message = c.catalog.Enhance(d.Message)
			enhanced[i] = d
		}
		diags = enhanced
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		if diags == nil {
			diags = []lint.Diagnostic{}
		}
		return r.JSON(diags)
	case output.ModeText:
		renderDiagnosticsText(r, diags)
	default:
		for _, d := range diags {
			r.Println(formatDiagnostic(d))
		}
	}
	return nil
}

func renderDiagnosticsText(r *output.Renderer, diags []lint.Diagnostic) {
	styles := r.Styles()

	if len(diags) == 0 {
		r.Success("No style issues found")
		return
	}

	for _, d := range diags {
		location := fmt.Sprintf("%s:%d:%d:", d.Path, d.Pos.Line, d.Pos.Column)
		r.Printf("%s %s\n", styles.Path.Render(location), getSeverityStyle(styles, d.Severity).Render(d.Message))
	}

	r.Println(styles.Muted.Render(fmt.Sprintf("%d %s", len(diags), plural(len(diags), "issue", "issues"))))
}

// formatDiagnostic renders d as "path:line:col: CODE message".
func formatDiagnostic(d lint.Diagnostic) string {
	return fmt.Sprintf("%s:%d:%d: %s", d.Path, d.Pos.Line, d.Pos.Column, d.Message)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
