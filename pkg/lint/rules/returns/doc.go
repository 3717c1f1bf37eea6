// Package returns provides lint rules for return statement consistency.
//
// Both rules extract the body of the function opened by the current line
// and parse it on its own. Returns that belong to nested functions are
// attributed to those functions.
//
// Rules in this package:
//   - CSM5: Mixed value and bare return statements
//   - CSM6: Value-returning function that does not end in a return
package returns
