// Package statement implements Cantus's statement engine: the indent-block
// assembler and control-flow result protocol.
// It turns raw source lines into a tree of Statements (keyword, header,
// clauses, nested body) without itself knowing how to execute any of
// them — execution is injected via the Dispatcher interface so this
// package never has to import internal/classes or internal/evalctx.
package statement

import (
	"strings"

	"github.com/cantus-lang/cantus/internal/cantuserr"
)

// SpacesPerTab is how many indent columns one tab counts for.
const SpacesPerTab = 8

// Line is one logical (possibly multi-physical-line) source line: comment
// stripped, indent measured, joiners already applied.
type Line struct {
	Indent int
	Text   string
	LineNo int // 1-based, the first physical line this logical line started on
}

// measureIndent computes a line's indent: spaces plus tabs·SpacesPerTab,
// counted left to right until a non-whitespace rune.
func measureIndent(s string) (indent int, rest string) {
	i := 0
	for i < len(s) {
		switch s[i] {
		case ' ':
			indent++
			i++
			continue
		case '\t':
			indent += SpacesPerTab
			i++
			continue
		}
		break
	}
	return indent, s[i:]
}

// stripComment removes a trailing `#` comment, tracking single- and
// double-quote depth independently (see the Open Question decision
// recorded in DESIGN.md) so a `#` inside a string literal is not
// mistaken for a comment start. It does not understand triple-quoted
// strings; those are handled by the line joiner before this runs.
func stripComment(s string) string {
	inSingle, inDouble := false, false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\\' && i+1 < len(s) && (inSingle || inDouble):
			i++ // skip escaped quote
		case c == '\'' && !inDouble:
			inSingle = !inSingle
		case c == '"' && !inSingle:
			inDouble = !inDouble
		case c == '#' && !inSingle && !inDouble:
			return strings.TrimRight(s[:i], " \t")
		}
	}
	return s
}

// isBlank reports whether a stripped line carries no executable content.
func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// unbalancedJoiner reports whether code ends mid-lambda: an odd number of
// backtick lambda markers, or a trailing `=>` arrow with no statement
// content after it, either of which means the accumulator should keep
// pulling lines in to complete the multi-line joiner.
func unbalancedJoiner(code string) bool {
	if strings.Count(code, "`")%2 == 1 {
		return true
	}
	trimmed := strings.TrimRight(code, " \t")
	return strings.HasSuffix(trimmed, "=>")
}

// JoinLogicalLines groups raw physical lines into logical Lines: comments
// are stripped first (so a `#` inside a triple-quoted string is kept
// intact and a `#` after one is not), then a trailing `\`, an unbalanced
// backtick, or a dangling `=>` pulls the following physical line into the
// same logical line. Triple-quoted strings (`'''`/`"""`) are joined
// verbatim (not comment-stripped line by line) until their matching
// close.
func JoinLogicalLines(raw []string) ([]Line, error) {
	var out []Line
	i := 0
	for i < len(raw) {
		startLine := i + 1
		var b strings.Builder
		indentSet := false
		indent := 0

		for i < len(raw) {
			physical := raw[i]
			if openTriple := findOpenTripleQuote(physical); openTriple != "" {
				// Consume verbatim lines until the triple quote closes.
				if !indentSet {
					indent, physical = measureIndent(physical)
					indentSet = true
				}
				b.WriteString(physical)
				i++
				for i < len(raw) && !strings.Contains(raw[i], openTriple) {
					b.WriteString("\n")
					b.WriteString(raw[i])
					i++
				}
				if i < len(raw) {
					b.WriteString("\n")
					closeAt := strings.Index(raw[i], openTriple) + len(openTriple)
					b.WriteString(raw[i][:closeAt])
					b.WriteString(stripComment(raw[i][closeAt:]))
					i++
				}
				continue
			}

			code := stripComment(physical)
			if !indentSet {
				indent, code = measureIndent(code)
				indentSet = true
			} else {
				_, code = measureIndent(code)
			}

			joinNext := false
			trimmed := strings.TrimRight(code, " \t")
			if strings.HasSuffix(trimmed, "\\") {
				code = strings.TrimRight(trimmed[:len(trimmed)-1], " \t")
				joinNext = true
			}

			if b.Len() > 0 {
				b.WriteString(" ")
			}
			b.WriteString(code)
			i++

			// Backtick/arrow balance is checked against everything
			// accumulated so far, not just this physical line: a lambda
			// opened on one line and closed on the next has exactly one
			// backtick on each, so checking either line alone would see
			// "odd" both times.
			if !joinNext && unbalancedJoiner(b.String()) {
				joinNext = true
			}

			if !joinNext {
				break
			}
			if i >= len(raw) {
				return nil, cantuserr.New(cantuserr.SyntaxError, "unexpected end of input inside a joined line")
			}
		}

		text := b.String()
		if !isBlank(text) {
			out = append(out, Line{Indent: indent, Text: strings.TrimSpace(text), LineNo: startLine})
		} else if indentSet && strings.Contains(text, "\n") {
			// a triple-quoted string that happened to be blank after
			// trimming is still real content; keep it.
			out = append(out, Line{Indent: indent, Text: text, LineNo: startLine})
		}
	}
	return out, nil
}

func findOpenTripleQuote(s string) string {
	for _, q := range []string{`'''`, `"""`} {
		if idx := strings.Index(s, q); idx >= 0 {
			rest := s[idx+3:]
			if !strings.Contains(rest, q) {
				return q
			}
		}
	}
	return ""
}

// SplitInline splits a logical line's text on top-level `;` inline
// separators, respecting string/bracket depth.
func SplitInline(text string) []string {
	var out []string
	depth := 0
	inSingle, inDouble := false, false
	start := 0
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c == '\\' && (inSingle || inDouble):
			i++
		case c == '\'' && !inDouble:
			inSingle = !inSingle
		case c == '"' && !inSingle:
			inDouble = !inDouble
		case inSingle || inDouble:
			// inside a string, ignore brackets/semicolons
		case c == '(' || c == '[' || c == '{':
			depth++
		case c == ')' || c == ']' || c == '}':
			depth--
		case c == ';' && depth == 0:
			out = append(out, strings.TrimSpace(text[start:i]))
			start = i + 1
		}
	}
	if rest := strings.TrimSpace(text[start:]); rest != "" {
		out = append(out, rest)
	}
	return out
}

// SplitThen splits a block header on a top-level ` then ` chaining
// keyword, returning the header and the chained statement text, if any.
func SplitThen(text string) (header string, chained string, ok bool) {
	depth := 0
	inSingle, inDouble := false, false
	for i := 0; i+6 <= len(text); i++ {
		c := text[i]
		switch {
		case c == '\\' && (inSingle || inDouble):
			i++
			continue
		case c == '\'' && !inDouble:
			inSingle = !inSingle
		case c == '"' && !inSingle:
			inDouble = !inDouble
		case inSingle || inDouble:
		case c == '(' || c == '[' || c == '{':
			depth++
		case c == ')' || c == ']' || c == '}':
			depth--
		}
		if depth == 0 && !inSingle && !inDouble && text[i:i+6] == " then " {
			return strings.TrimSpace(text[:i]), strings.TrimSpace(text[i+6:]), true
		}
	}
	return text, "", false
}
