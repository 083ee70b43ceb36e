package evaluator

import (
	"strings"

	"github.com/cantus-lang/cantus/internal/cantuserr"
	"github.com/cantus-lang/cantus/internal/classes"
	"github.com/cantus-lang/cantus/internal/object"
	"github.com/cantus-lang/cantus/internal/scope"
)

var modifierWords = map[string]scope.Modifier{
	"private":  scope.ModPrivate,
	"internal": scope.ModInternal,
	"static":   scope.ModStatic,
	"global":   scope.ModGlobal,
}

// splitLeadingWord splits s on its first run of whitespace.
func splitLeadingWord(s string) (word, rest string) {
	s = strings.TrimSpace(s)
	if sp := strings.IndexAny(s, " \t"); sp >= 0 {
		return s[:sp], strings.TrimSpace(s[sp:])
	}
	return s, ""
}

// takeModifiers consumes leading modifier words from header (private,
// internal, static, global, in any combination), returning them plus
// what remains.
func takeModifiers(header string) (map[scope.Modifier]bool, string) {
	mods := map[scope.Modifier]bool{}
	for {
		word, rest := splitLeadingWord(header)
		m, ok := modifierWords[word]
		if !ok {
			break
		}
		mods[m] = true
		header = rest
	}
	return mods, header
}

// splitArgsSrc splits "name(args): returnType" into name, the
// parenthesized args interior (without the parens; may be absent for a
// no-arg class header), and returnType (without the leading colon).
func splitArgsSrc(header string) (name, argsSrc, returnType string, err error) {
	header = strings.TrimSpace(header)
	open := strings.IndexByte(header, '(')
	if open < 0 {
		return header, "", "", nil
	}
	name = strings.TrimSpace(header[:open])
	depth := 0
	close := -1
	for i := open; i < len(header); i++ {
		switch header[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				close = i
			}
		}
		if close >= 0 {
			break
		}
	}
	if close < 0 {
		return "", "", "", cantuserr.New(cantuserr.SyntaxError, "unbalanced parameter list: "+header)
	}
	argsSrc = header[open+1 : close]
	rest := strings.TrimSpace(header[close+1:])
	if strings.HasPrefix(rest, ":") {
		returnType = strings.TrimSpace(rest[1:])
	}
	return name, argsSrc, returnType, nil
}

// splitCommaTopLevel splits s on top-level commas, ignoring commas
// nested inside brackets or quotes.
func splitCommaTopLevel(s string) []string {
	var out []string
	depth := 0
	var quote byte
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '(' || c == '[' || c == '{':
			depth++
		case c == ')' || c == ']' || c == '}':
			depth--
		case c == ',' && depth == 0:
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	out = append(out, s[start:])
	return out
}

// parseParams parses a "function"/lambda-in-class parameter list
// ("a, b = 1") into argNames and eagerly-evaluated defaults, evaluating
// each default expression in definingScope: defaults are plain values,
// not re-evaluated per call.
func (e *Evaluator) parseParams(argsSrc, definingScope string) (names []string, defaults []object.Value, err error) {
	trimmed := strings.TrimSpace(argsSrc)
	if trimmed == "" {
		return nil, nil, nil
	}
	for _, part := range splitCommaTopLevel(trimmed) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if idx := strings.Index(part, "="); idx >= 0 && !strings.HasPrefix(part[idx:], "==") {
			name := strings.TrimSpace(part[:idx])
			val, evalErr := e.Eval(strings.TrimSpace(part[idx+1:]), definingScope, e.ExplicitMode)
			if evalErr != nil {
				return nil, nil, evalErr
			}
			names = append(names, name)
			defaults = append(defaults, object.ResolveObj(val))
			continue
		}
		names = append(names, part)
		defaults = append(defaults, nil)
	}
	return names, defaults, nil
}

// parseBaseList parses a class header's "(Base1, Base2)" interior into
// resolved UserClass bases, looking each name up in definingScope.
func (e *Evaluator) parseBaseList(argsSrc, definingScope string) ([]*classes.UserClass, error) {
	trimmed := strings.TrimSpace(argsSrc)
	if trimmed == "" {
		return nil, nil
	}
	var out []*classes.UserClass
	for _, part := range splitCommaTopLevel(trimmed) {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}
		found, ok := e.Env.FindClass(name, definingScope)
		if !ok {
			return nil, cantuserr.New(cantuserr.EvaluatorError, "undefined base class: "+name)
		}
		cls, ok := found.(*classes.UserClass)
		if !ok {
			return nil, cantuserr.New(cantuserr.EvaluatorError, "not a class: "+name)
		}
		out = append(out, cls)
	}
	return out, nil
}
