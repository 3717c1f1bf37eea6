// Package core defines the types shared by the csmstyle rule engine and its
// front ends: rule severities and rule metadata.
//
// The Golden Rule: pkg/core imports ONLY the standard library.
// All other packages depend on core, not the reverse.
package core
