// Package spacing provides lint rules for blank lines around definitions.
//
// Rules in this package:
//   - CSM1: Two blank lines before top-level functions and classes
//   - CSM2: One blank line between a class header and its first method
//   - CSM3: Two blank lines after a trailing top-level definition
package spacing
