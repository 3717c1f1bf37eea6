// Package placement provides lint rules for module-level statement order.
//
// Rules in this package:
//   - CSM4: Dunder assignments after the module docstring and before imports
package placement
