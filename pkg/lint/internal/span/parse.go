package span

import (
	"errors"
	"fmt"

	"go.starlark.net/syntax"
)

var fileOptions = &syntax.FileOptions{
	Set:             true,
	While:           true,
	TopLevelControl: true,
	GlobalReassign:  true,
	Recursion:       true,
}

// Function is a parsed function span.
type Function struct {
	Span *Span
	Def  *syntax.DefStmt
}

// Parse lowers and parses the span. The result must be exactly one function
// definition; anything else is a *ParseError.
func Parse(s *Span) (*Function, error) {
	src, err := Lower(s)
	if err != nil {
		return nil, err
	}

	f, err := fileOptions.Parse(fmt.Sprintf("span:%d", s.Start), src, 0)
	if err != nil {
		line := s.Start
		var serr syntax.Error
		if errors.As(err, &serr) {
			line = s.Start + int(serr.Pos.Line) - 1
		}
		return nil, &ParseError{Line: line, Err: err}
	}

	if len(f.Stmts) != 1 {
		return nil, &ParseError{Line: s.Start, Err: fmt.Errorf("expected one statement, got %d", len(f.Stmts))}
	}
	def, ok := f.Stmts[0].(*syntax.DefStmt)
	if !ok {
		return nil, &ParseError{Line: s.Start, Err: errors.New("span is not a function definition")}
	}

	return &Function{Span: s, Def: def}, nil
}

// Returns lists the return statements that belong to this function.
// Returns inside nested function definitions are excluded.
func (f *Function) Returns() []*syntax.ReturnStmt {
	var out []*syntax.ReturnStmt
	collectReturns(f.Def.Body, &out)
	return out
}

// Line maps a skeleton position to a physical line of the file.
func (f *Function) Line(pos syntax.Position) int {
	return f.Span.Start + int(pos.Line) - 1
}

// EndsInControlTransfer reports whether the textually last statement of the
// function hands control elsewhere: a return, a raise, or a one-line if,
// for or while statement.
func (f *Function) EndsInControlTransfer() bool {
	return endsInTransfer(f.Def.Body)
}

func collectReturns(stmts []syntax.Stmt, out *[]*syntax.ReturnStmt) {
	for _, stmt := range stmts {
		switch s := stmt.(type) {
		case *syntax.ReturnStmt:
			*out = append(*out, s)
		case *syntax.IfStmt:
			collectReturns(s.True, out)
			collectReturns(s.False, out)
		case *syntax.ForStmt:
			collectReturns(s.Body, out)
		case *syntax.WhileStmt:
			collectReturns(s.Body, out)
		}
	}
}

func endsInTransfer(stmts []syntax.Stmt) bool {
	if len(stmts) == 0 {
		return false
	}

	switch s := stmts[len(stmts)-1].(type) {
	case *syntax.ReturnStmt:
		return true
	case *syntax.ExprStmt:
		return isIdentCall(s.X, raiseIdent)
	case *syntax.IfStmt:
		if isIdent(s.Cond, blockIdent) {
			return endsInTransfer(s.True)
		}
		if len(s.False) > 0 {
			return endsInTransfer(s.False)
		}
		if onHeaderLine(s.If, s.True) {
			// a one-line elif ends the function on an elif line
			return isIdent(s.Cond, condIdent)
		}
		return endsInTransfer(s.True)
	case *syntax.ForStmt:
		return onHeaderLine(s.For, s.Body) || endsInTransfer(s.Body)
	case *syntax.WhileStmt:
		return onHeaderLine(s.While, s.Body) || endsInTransfer(s.Body)
	}
	return false
}

func onHeaderLine(header syntax.Position, body []syntax.Stmt) bool {
	if len(body) == 0 {
		return false
	}
	start, _ := body[0].Span()
	return start.Line == header.Line
}

func isIdent(e syntax.Expr, name string) bool {
	id, ok := e.(*syntax.Ident)
	return ok && id.Name == name
}

func isIdentCall(e syntax.Expr, name string) bool {
	call, ok := e.(*syntax.CallExpr)
	return ok && isIdent(call.Fn, name)
}
