package flow

import "strings"

// constructKind enumerates the restricted grammar the scanner recognizes.
type constructKind int

const (
	constructIf constructKind = iota
	constructElseIf
	constructElse
	constructRequire
)

// construct is one recognized occurrence in a function body, in source order.
// Expr is the trimmed expression text; empty for a bare else.
type construct struct {
	kind constructKind
	expr string
}

// scanConstructs performs a single left-to-right pass over a function body and
// returns every `if (EXPR) {`, `else if (EXPR) {`, `else {` and
// `require(EXPR);` occurrence. Detection is lexical, not a grammar parse:
// anything that does not complete one of the four shapes is skipped without
// error. Scanning resumes after each matched construct's opening delimiter,
// so nested constructs inside braces are still found.
func scanConstructs(body string) []construct {
	var out []construct

	i := 0
	for i < len(body) {
		if !wordStart(body, i) {
			i++
			continue
		}

		switch {
		case keywordAt(body, i, "require"):
			expr, next, ok := matchRequire(body, i+len("require"))
			if !ok {
				i += len("require")
				continue
			}
			out = append(out, construct{kind: constructRequire, expr: expr})
			i = next

		case keywordAt(body, i, "else"):
			c, next, ok := matchElse(body, i+len("else"))
			if !ok {
				i += len("else")
				continue
			}
			out = append(out, c)
			i = next

		case keywordAt(body, i, "if"):
			expr, next, ok := matchGuardedBlock(body, i+len("if"))
			if !ok {
				i += len("if")
				continue
			}
			out = append(out, construct{kind: constructIf, expr: expr})
			i = next

		default:
			i++
		}
	}

	return out
}

// matchRequire matches `(EXPR);` starting at pos, returning the trimmed
// expression and the index just past the semicolon.
func matchRequire(body string, pos int) (string, int, bool) {
	pos = skipSpace(body, pos)
	expr, pos, ok := balancedParen(body, pos)
	if !ok {
		return "", 0, false
	}
	pos = skipSpace(body, pos)
	if pos >= len(body) || body[pos] != ';' {
		return "", 0, false
	}
	return strings.TrimSpace(expr), pos + 1, true
}

// matchElse matches either `if (EXPR) {` (an else-if arm) or a bare `{`
// following the else keyword.
func matchElse(body string, pos int) (construct, int, bool) {
	pos = skipSpace(body, pos)

	if keywordAt(body, pos, "if") {
		expr, next, ok := matchGuardedBlock(body, pos+len("if"))
		if !ok {
			return construct{}, 0, false
		}
		return construct{kind: constructElseIf, expr: expr}, next, true
	}

	if pos < len(body) && body[pos] == '{' {
		return construct{kind: constructElse}, pos + 1, true
	}
	return construct{}, 0, false
}

// matchGuardedBlock matches `(EXPR) {` starting at pos, returning the trimmed
// expression and the index just past the opening brace.
func matchGuardedBlock(body string, pos int) (string, int, bool) {
	pos = skipSpace(body, pos)
	expr, pos, ok := balancedParen(body, pos)
	if !ok {
		return "", 0, false
	}
	pos = skipSpace(body, pos)
	if pos >= len(body) || body[pos] != '{' {
		return "", 0, false
	}
	return strings.TrimSpace(expr), pos + 1, true
}

// balancedParen captures the content of a parenthesized group starting at
// pos, tracking nesting so calls like require(checkSig(s, pk)) capture the
// full inner expression. Returns the content and the index just past the
// closing parenthesis.
func balancedParen(s string, pos int) (string, int, bool) {
	if pos >= len(s) || s[pos] != '(' {
		return "", 0, false
	}

	depth := 0
	for i := pos; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return s[pos+1 : i], i + 1, true
			}
		}
	}
	return "", 0, false // unterminated group
}

// keywordAt reports whether the keyword occurs at pos with an identifier
// boundary on both sides.
func keywordAt(s string, pos int, keyword string) bool {
	end := pos + len(keyword)
	if end > len(s) || s[pos:end] != keyword {
		return false
	}
	if end < len(s) && isIdentByte(s[end]) {
		return false
	}
	return wordStart(s, pos)
}

// wordStart reports whether pos sits at an identifier boundary.
func wordStart(s string, pos int) bool {
	return pos == 0 || !isIdentByte(s[pos-1])
}

func isIdentByte(c byte) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}

func skipSpace(s string, pos int) int {
	for pos < len(s) {
		switch s[pos] {
		case ' ', '\t', '\n', '\r':
			pos++
		default:
			return pos
		}
	}
	return pos
}

// functionBody locates the source body of a named function by splitting the
// source on the `function` keyword and matching the name as the first token
// of each segment. The unnamed constructor/fallback entry never matches.
// A missing body is reported as empty, never as an error.
func functionBody(source, name string) string {
	if name == "" {
		return ""
	}

	segments := strings.Split(source, "function")
	for _, seg := range segments[1:] {
		if firstToken(strings.TrimSpace(seg)) == name {
			return seg
		}
	}
	return ""
}

// firstToken returns the leading identifier of s, or "" if s does not start
// with one.
func firstToken(s string) string {
	i := 0
	for i < len(s) && isIdentByte(s[i]) {
		i++
	}
	return s[:i]
}
