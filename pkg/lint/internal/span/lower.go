package span

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/csmstyle/pkg/token"
)

// Placeholder names used in the skeleton.
const (
	condIdent  = "__cond__"
	elifIdent  = "__elif__"
	blockIdent = "__block__"
	raiseIdent = "__raise__"
)

// Lower converts the span into a Starlark-parseable skeleton. Line k of the
// skeleton corresponds to physical line Start+k-1. Expressions are replaced
// by placeholders; statements other than return and raise become pass, and
// compound statements without a Starlark equivalent become plain blocks.
func Lower(s *Span) (string, error) {
	out := make([]string, s.Len())
	lastHeader := make(map[int]string)

	for _, line := range s.Logical {
		indent := line.Indent - s.Indent
		lowered, kind, err := lowerLine(line.Masked, lastHeader[indent])
		if err != nil {
			return "", &ParseError{Line: line.Line, Err: err}
		}
		lastHeader[indent] = kind
		if lowered != "" {
			out[line.Line-s.Start] = strings.Repeat(" ", indent) + lowered
		}
	}

	return strings.Join(out, "\n") + "\n", nil
}

// lowerLine lowers one logical line. prev is the kind of the last statement
// at the same indentation and decides how else is lowered.
func lowerLine(masked, prev string) (string, string, error) {
	if strings.HasPrefix(masked, "@") {
		return "", "decorator", nil
	}

	kw := token.Keyword(masked)
	text := masked
	if kw == "async" {
		text = strings.TrimSpace(masked[len(kw):])
		kw = token.Keyword(text)
	}

	if !isHeader(kw, text) {
		return lowerSimple(masked), "", nil
	}

	colon := headerColon(text)
	if colon < 0 {
		return "", "", fmt.Errorf("%s statement without colon", kw)
	}

	var header string
	switch kw {
	case "if":
		header = "if " + condIdent + ":"
	case "elif":
		header = "elif " + elifIdent + ":"
	case "else":
		if prev == "if" || prev == "elif" {
			header = "else:"
		} else {
			header = "if " + blockIdent + ":"
		}
	case "for":
		header = "for __item__ in __iter__:"
	case "while":
		header = "while " + condIdent + ":"
	case "def":
		header = "def __fn__():"
	default:
		header = "if " + blockIdent + ":"
	}

	if inline := strings.TrimSpace(text[colon+1:]); inline != "" {
		header += " " + lowerSimple(inline)
	}
	return header, kw, nil
}

func lowerSimple(masked string) string {
	parts, _ := token.SplitDepthZero(masked, ';')
	stmts := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		switch token.Keyword(part) {
		case "return":
			if strings.TrimSpace(part[len("return"):]) == "" {
				stmts = append(stmts, "return")
			} else {
				stmts = append(stmts, "return __value__")
			}
		case "raise":
			stmts = append(stmts, raiseIdent+"()")
		default:
			stmts = append(stmts, "pass")
		}
	}
	if len(stmts) == 0 {
		return "pass"
	}
	return strings.Join(stmts, "; ")
}

var compoundKeywords = map[string]bool{
	"if": true, "elif": true, "else": true, "for": true, "while": true,
	"def": true, "try": true, "except": true, "finally": true, "with": true,
	"class": true,
}

// isHeader reports whether text opens a compound statement. match and case
// are soft keywords and only count when followed by a subject.
func isHeader(kw, text string) bool {
	if compoundKeywords[kw] {
		return true
	}
	if kw != "match" && kw != "case" {
		return false
	}
	rest := text[len(kw):]
	if !strings.HasPrefix(rest, " ") {
		return false
	}
	rest = strings.TrimSpace(rest)
	if rest == "" || strings.ContainsAny(rest[:1], "=:.,)]}") {
		return false
	}
	return headerColon(text) > 0
}

// headerColon returns the offset of the colon ending a compound statement
// header, skipping walrus operators.
func headerColon(masked string) int {
	offset := 0
	for {
		idx := token.DepthZeroIndex(masked[offset:], ':')
		if idx < 0 {
			return -1
		}
		pos := offset + idx
		if pos+1 < len(masked) && masked[pos+1] == '=' {
			offset = pos + 1
			continue
		}
		return pos
	}
}
