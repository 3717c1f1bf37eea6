// Package lint provides the rule engine for Python module style checks.
//
// # Architecture
//
// A file is read into a source.File: its physical lines and the logical
// lines built from them. The Analyzer walks the logical lines in order,
// builds one Context per line and dispatches it to every enabled rule of a
// Registry. Each rule runs inside its own fault boundary: an error or panic
// is logged and yields no violations, and the remaining rules still run.
//
// # Registry
//
// There is no global registration. A Registry is an immutable, ordered list
// of rules built once and handed to the analyzer:
//
//	registry, err := lint.NewRegistry(lint.WrapRuleDef(MyRule))
//	analyzer := lint.NewAnalyzer(registry, lint.NewConfig(), logger)
//	diags := analyzer.Analyze(source.Parse("app.py", src))
//
// Registering two rules with the same ID fails with ErrDuplicateRule.
//
// # Configuration
//
// Use Config to select rules and adjust them:
//
//	config := lint.NewConfig()
//	config.SetSelect("CSM1", "CSM2")
//	config.Disable("CSM2")
//	config.SetSeverity("CSM1", core.SeverityError)
//	config.SetRuleOptions("CSM4", map[string]any{"require_after_docstring": true})
//
// Selections and disables match rule codes by prefix.
//
// # Creating Custom Rules
//
// Implement LineRule, or describe the rule with RuleDef:
//
//	var MyRule = lint.RuleDef{
//		ID:          "PRJ1",
//		Name:        "project.no_print",
//		Group:       "project",
//		Description: "Avoid print calls.",
//		Severity:    core.SeverityWarning,
//		Check:       checkNoPrint,
//	}
package lint
