// Package rules assembles the built-in csmstyle lint rules.
//
// Rules are organized by category:
//   - spacing: Blank lines around definitions (CSM1-CSM3)
//   - placement: Module-level statement order (CSM4)
//   - returns: Return statement consistency (CSM5-CSM6)
//
// There is no global registration. Build a registry explicitly and hand it
// to the analyzer:
//
//	registry, err := rules.NewRegistry()
//	analyzer := lint.NewAnalyzer(registry, lint.NewConfig(), logger)
package rules
