package token

import "strings"

// MaskByte replaces the contents of string literals in masked text.
const MaskByte = 'x'

// State carries lexical state from one physical line to the next.
// The zero value is the state at the start of a file.
type State struct {
	// Depth is the current bracket nesting depth.
	Depth int

	quote string // open string delimiter, empty outside a string
}

// InString reports whether a string literal is open at the end of the
// last scanned line.
func (s *State) InString() bool {
	return s.quote != ""
}

// Line is the result of scanning one physical line.
type Line struct {
	// Masked is the line up to its comment with string literal contents
	// replaced by MaskByte and a trailing continuation backslash replaced by
	// a space. It has the same byte length as the code part of the line.
	Masked string

	// Comment is the byte offset of the '#' starting a comment, or -1.
	Comment int

	// Continued is true when the line ends with a backslash continuation.
	Continued bool
}

// Code returns the code part of the raw line, aligned with Masked.
func (l Line) Code(raw string) string {
	code := raw[:len(l.Masked)]
	if l.Continued {
		i := strings.LastIndexByte(code, '\\')
		code = code[:i] + " " + code[i+1:]
	}
	return code
}

// Scan scans one physical line, without its line terminator, updating st.
func Scan(text string, st *State) Line {
	out := []byte(text)
	res := Line{Comment: -1}

	i := 0
	for i < len(text) {
		c := text[i]

		if st.quote != "" {
			switch {
			case c == '\\':
				out[i] = MaskByte
				if i+1 < len(text) {
					out[i+1] = MaskByte
					i += 2
					continue
				}
				// escaped newline keeps single-quoted strings open
				i++
				res.Masked = string(out)
				return res
			case strings.HasPrefix(text[i:], st.quote):
				i += len(st.quote)
				st.quote = ""
			default:
				out[i] = MaskByte
				i++
			}
			continue
		}

		switch c {
		case '#':
			res.Comment = i
			res.Masked = string(out[:i])
			return res
		case '"', '\'':
			q := string(c)
			if strings.HasPrefix(text[i:], strings.Repeat(q, 3)) {
				q = strings.Repeat(q, 3)
			}
			st.quote = q
			i += len(q)
			continue
		case '(', '[', '{':
			st.Depth++
		case ')', ']', '}':
			if st.Depth > 0 {
				st.Depth--
			}
		case '\\':
			if strings.TrimRight(text[i+1:], " \t\r\f") == "" {
				out[i] = ' '
				res.Continued = true
			}
		}
		i++
	}

	// an unterminated single-quoted string ends with the line
	if len(st.quote) == 1 {
		st.quote = ""
	}
	res.Masked = string(out)
	return res
}

// DepthZeroIndex returns the offset of the first occurrence of b in masked
// text that is outside any bracket, or -1.
func DepthZeroIndex(masked string, b byte) int {
	depth := 0
	for i := 0; i < len(masked); i++ {
		switch c := masked[i]; c {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			if depth > 0 {
				depth--
			}
		default:
			if c == b && depth == 0 {
				return i
			}
		}
	}
	return -1
}

// SplitDepthZero splits masked text on every occurrence of sep outside
// brackets. The returned offsets are the start of each part.
func SplitDepthZero(masked string, sep byte) (parts []string, offsets []int) {
	start := 0
	for {
		idx := DepthZeroIndex(masked[start:], sep)
		if idx < 0 {
			parts = append(parts, masked[start:])
			offsets = append(offsets, start)
			return parts, offsets
		}
		parts = append(parts, masked[start:start+idx])
		offsets = append(offsets, start)
		start += idx + 1
	}
}

// Keyword returns the leading identifier of text, or "".
func Keyword(text string) string {
	end := 0
	for end < len(text) && isIdentByte(text[end]) {
		end++
	}
	return text[:end]
}

func isIdentByte(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c >= 0x80
}
