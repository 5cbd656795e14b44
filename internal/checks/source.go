package checks

import (
	"fmt"
	"strings"
)

// syntaxError is the first structural problem found in a source file.
type syntaxError struct {
	msg  string
	line int
}

func (e *syntaxError) Error() string {
	return fmt.Sprintf("%s (line %d)", e.msg, e.line)
}

var closers = map[byte]byte{')': '(', ']': '[', '}': '{'}

// scanSource walks Python source and returns it with comments removed and
// string literal bodies blanked to spaces. Newlines are kept so line and
// column positions still match the input. It also reports the first
// unbalanced bracket or unterminated string; the returned code is partial
// in that case.
func scanSource(content string) (string, *syntaxError) {
	type open struct {
		ch   byte
		line int
	}
	var (
		out   strings.Builder
		stack []open
		line  = 1
		n     = len(content)
	)
	out.Grow(n)

	for i := 0; i < n; i++ {
		c := content[i]
		switch c {
		case '\n':
			line++
			out.WriteByte(c)

		case '#':
			for i+1 < n && content[i+1] != '\n' {
				i++
			}

		case '"', '\'':
			start := line
			if i+2 < n && content[i+1] == c && content[i+2] == c {
				delim := content[i : i+3]
				end := strings.Index(content[i+3:], delim)
				if end < 0 {
					return out.String(), &syntaxError{msg: "unterminated triple-quoted string literal", line: start}
				}
				body := content[i+3 : i+3+end]
				line += strings.Count(body, "\n")
				out.WriteString(delim)
				out.WriteString(mask(body))
				out.WriteString(delim)
				i += 3 + end + 2
				continue
			}
			j := i + 1
			nl := 0
			for j < n && content[j] != c && content[j] != '\n' {
				if content[j] == '\\' && j+1 < n {
					if content[j+1] == '\n' {
						nl++
					}
					j++
				}
				j++
			}
			if j >= n || content[j] == '\n' {
				return out.String(), &syntaxError{msg: "unterminated string literal", line: start}
			}
			line += nl
			out.WriteByte(c)
			out.WriteString(mask(content[i+1 : j]))
			out.WriteByte(c)
			i = j

		case '(', '[', '{':
			stack = append(stack, open{ch: c, line: line})
			out.WriteByte(c)

		case ')', ']', '}':
			if len(stack) == 0 {
				return out.String(), &syntaxError{msg: fmt.Sprintf("unmatched '%c'", c), line: line}
			}
			top := stack[len(stack)-1]
			if top.ch != closers[c] {
				return out.String(), &syntaxError{
					msg:  fmt.Sprintf("closing parenthesis '%c' does not match opening parenthesis '%c'", c, top.ch),
					line: line,
				}
			}
			stack = stack[:len(stack)-1]
			out.WriteByte(c)

		default:
			out.WriteByte(c)
		}
	}

	if len(stack) > 0 {
		top := stack[len(stack)-1]
		return out.String(), &syntaxError{msg: fmt.Sprintf("'%c' was never closed", top.ch), line: top.line}
	}
	return out.String(), nil
}

// mask replaces every byte but newlines with a space.
func mask(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c != '\n' {
			b[i] = ' '
		}
	}
	return string(b)
}
