package statement

import (
	"strings"

	"github.com/cantus-lang/cantus/internal/cantuserr"
)

// blockKeywords open a COLLECT body: the first line names the keyword and
// header, every following more-indented line belongs to the block's body.
var blockKeywords = map[string]bool{
	"if": true, "elif": true, "else": true,
	"while": true, "until": true, "for": true, "repeat": true, "run": true,
	"function": true, "class": true,
	"switch": true, "case": true, "default": true,
	"try": true, "catch": true, "finally": true,
	"namespace": true,
}

// auxKeywords continue the previous Statement's Clauses rather than
// opening a new Statement: seeing one of these decides whether the next
// non-blank line continues the statement in progress or terminates it.
var auxKeywords = map[string]bool{
	"elif": true, "else": true, "catch": true, "finally": true,
	"case": true, "default": true,
}

// DeclarativeKeywords are the statement kinds declarative mode still
// permits.
var DeclarativeKeywords = map[string]bool{
	"function": true, "class": true, "let": true, "global": true,
	"import": true, "load": true, "namespace": true,
}

// Clause is one keyword/header/body unit: `if cond`, a following `elif`,
// a following `else`, and so on all become separate Clauses of the same
// Statement.
type Clause struct {
	Keyword string
	Header  string
	Body    []*Statement
	LineNo  int
}

// Statement is a full statement: its clauses (more than one only for
// if/elif/else-, switch/case/default- and try/catch/finally-shaped
// chains) and, if its header
// contained a top-level ` then `, the Chained statement that runs after
// it on the same body.
type Statement struct {
	Clauses []*Clause
	Chained *Statement
}

// Keyword returns the statement's leading keyword, or "" for a bare
// expression statement.
func (s *Statement) Keyword() string {
	if len(s.Clauses) == 0 {
		return ""
	}
	return s.Clauses[0].Keyword
}

// IsDeclarative reports whether s is one of the kinds declarative mode
// still allows.
func (s *Statement) IsDeclarative() bool {
	return DeclarativeKeywords[s.Keyword()]
}

// Parse turns raw source lines into the top-level Statement list,
// applying comment stripping, line joining, indent-based block
// assembly, `;` splitting, and ` then ` chaining throughout.
func Parse(rawLines []string) ([]*Statement, error) {
	lines, err := JoinLogicalLines(rawLines)
	if err != nil {
		return nil, err
	}
	stmts, idx, err := parseBlock(lines, 0, -1)
	if err != nil {
		return nil, err
	}
	if idx != len(lines) {
		return nil, cantuserr.New(cantuserr.SyntaxError, "unexpected indentation").WithLine(lines[idx].LineNo)
	}
	return stmts, nil
}

// parseBlock consumes lines[idx:] until a line's indent drops to or below
// parentIndent (or input ends), returning the Statements found at this
// level and the index just past them. parentIndent is -1 at the top
// level, where every line belongs.
func parseBlock(lines []Line, idx int, parentIndent int) ([]*Statement, int, error) {
	var out []*Statement
	var blockIndent = -1 // fixed by the first line's indent in this block (COLLECT state)

	for idx < len(lines) {
		line := lines[idx]
		if blockIndent == -1 {
			blockIndent = line.Indent
		}
		if line.Indent <= parentIndent {
			break
		}
		if line.Indent != blockIndent {
			return nil, idx, cantuserr.New(cantuserr.SyntaxError, "inconsistent indentation").WithLine(line.LineNo)
		}

		stmt, next, err := parseOneLine(lines, idx, blockIndent)
		if err != nil {
			return nil, idx, err
		}

		if stmt.Keyword() != "" && auxKeywords[stmt.Keyword()] {
			if len(out) == 0 {
				return nil, idx, cantuserr.New(cantuserr.SyntaxError, "'"+stmt.Keyword()+"' with no preceding statement").WithLine(line.LineNo)
			}
			prev := out[len(out)-1]
			prev.Clauses = append(prev.Clauses, stmt.Clauses[0])
		} else {
			out = append(out, stmt)
		}
		idx = next
	}
	return out, idx, nil
}

// parseOneLine parses the statement starting at lines[idx]: a keyword
// header, its COLLECT body (if the keyword opens one), and any `;`-
// separated or ` then `-chained continuations at the same line.
func parseOneLine(lines []Line, idx int, blockIndent int) (*Statement, int, error) {
	line := lines[idx]
	parts := SplitInline(line.Text)
	if len(parts) == 0 {
		parts = []string{line.Text}
	}

	var head *Statement
	var tail *Statement
	for _, part := range parts {
		kw, header := splitKeyword(part)
		clause := &Clause{Keyword: kw, Header: header, LineNo: line.LineNo}

		var chainedHeader string
		var hasChain bool
		if blockKeywords[kw] {
			clause.Header, chainedHeader, hasChain = SplitThen(header)
		} else {
			header, chainedHeader, hasChain = SplitThen(header)
			clause.Header = header
		}

		st := &Statement{Clauses: []*Clause{clause}}
		if hasChain {
			chainedKw, chainedRest := splitKeyword(chainedHeader)
			st.Chained = &Statement{Clauses: []*Clause{{Keyword: chainedKw, Header: chainedRest, LineNo: line.LineNo}}}
		}

		if head == nil {
			head = st
		} else {
			tail.Chained = appendChain(tail.Chained, st)
		}
		tail = st
	}

	idx++
	if blockKeywords[head.Keyword()] {
		body, next, err := parseBlock(lines, idx, blockIndent)
		if err != nil {
			return nil, idx, err
		}
		head.Clauses[0].Body = body
		idx = next
	}
	return head, idx, nil
}

// appendChain walks to the end of an already-built Chained list and
// appends next, so multiple `;`-separated parts on one header-bearing
// line still run in order.
func appendChain(cur *Statement, next *Statement) *Statement {
	if cur == nil {
		return next
	}
	c := cur
	for c.Chained != nil {
		c = c.Chained
	}
	c.Chained = next
	return cur
}

// splitKeyword splits a statement's leading keyword from its header, if
// the first word is a recognized block or declarative keyword; otherwise
// the whole text is the header of a bare ("") statement.
func splitKeyword(text string) (keyword, header string) {
	trimmed := strings.TrimSpace(text)
	word := trimmed
	if sp := strings.IndexAny(trimmed, " \t"); sp >= 0 {
		word = trimmed[:sp]
	}
	if blockKeywords[word] || DeclarativeKeywords[word] {
		return word, strings.TrimSpace(trimmed[len(word):])
	}
	return "", trimmed
}
