// Package tokenizer turns one expression string into a token list of
// (object, operator_before) pairs, interleaving identifier resolution and
// bracket recursion directly into the scan loop. Scanning is byte-at-a-time
// with peek/advance and longest-prefix sign matching, restructured so a
// single pass produces resolved values instead of a flat token stream for
// a later parser.
package tokenizer

import (
	"strings"

	"github.com/cantus-lang/cantus/internal/bignum"
	"github.com/cantus-lang/cantus/internal/cantuserr"
	"github.com/cantus-lang/cantus/internal/object"
	"github.com/cantus-lang/cantus/internal/operator"
)

// Callable is anything the tokenizer can invoke for a call-position
// identifier: a user function, a user class constructor, a bound Lambda
// variable, or a built-in. internal/classes and internal/builtin entries
// all satisfy this.
type Callable interface {
	Call(args []object.Value, named map[string]object.Value, callerScope string) (object.Value, error)
}

// Resolver is the minimal name-resolution surface the tokenizer needs,
// isolated into its own interface so the tokenizer can be unit tested
// against a stub instead of a real
// scope.Environment/internal/classes/internal/builtin wiring.
type Resolver interface {
	// Variable resolves name to its backing reference per the scope
	// lookup protocol (internal/scope's three steps), honoring explicit
	// mode.
	Variable(name, scopePath string, explicit bool) (*object.Reference, error)
	// Known reports whether name already has an existing binding
	// (scope lookup protocol steps 1-2) without declaring anything,
	// letting the tokenizer try variable-splitting before the
	// implicit-declare step in step 3 ever runs.
	Known(name, scopePath string) bool
	// SplitVariable attempts to split an unresolved bare identifier into
	// a sequence of known variable references, longest-prefix first.
	SplitVariable(name, scopePath string) ([]*object.Reference, bool)
	// CallTarget resolves a call-position identifier through the 5-step
	// search order: ClassInstance field, user class, user function,
	// Lambda-valued variable, built-in. receiver is non-nil for both the
	// bare self-referring `.name(args)` form and an explicit-receiver call
	// `recv.name(args)`. bound reports whether the returned Callable
	// already incorporates receiver (a ClassInstance method bound via
	// BindThis) — false means the caller must still prepend receiver to
	// args itself, the way `lst.sort()` dispatches to the built-in
	// `sort(lst)`.
	CallTarget(name, scopePath string, receiver object.Value) (target Callable, bound bool, ok bool)
	// This returns the distinguished `this` variable's reference, used as
	// the implicit receiver for a self-referring call with no explicit
	// left operand.
	This(scopePath string) (*object.Reference, bool)
	// SignificantMode reports whether the number scanner should derive a
	// literal's significant-figure count from its digit text (a trailing
	// zero in "1.20" counts) instead of treating every literal as exact.
	SignificantMode() bool
}

// EvalFunc fully evaluates a sub-expression (bracket contents, call
// arguments) to a single value in the given scope. The top-level glue
// package supplies this as a closure over tokenizer.Tokenize + the
// resolver's resolve step, which keeps this package free of an import
// cycle back to internal/resolve.
type EvalFunc func(expr, scopePath string) (object.Value, error)

// TokenList is an expression flattened to parallel object/operator
// slices: Operators[0] is always the leading null-operator slot; Objects
// and Operators are kept the same length throughout tokenization.
type TokenList struct {
	Objects   []object.Value
	Operators []*operator.Operator
}

func (t *TokenList) appendOperator(op *operator.Operator, expectingObject *bool) {
	if *expectingObject {
		t.Objects = append(t.Objects, nil)
	}
	t.Operators = append(t.Operators, op)
	*expectingObject = true
}

func (t *TokenList) appendObject(v object.Value, expectingObject *bool) {
	t.Objects = append(t.Objects, v)
	*expectingObject = false
}

// scanner holds per-call tokenizing state.
type scanner struct {
	src      string
	pos      int
	reg      *operator.Registry
	res      Resolver
	evalSub  EvalFunc
	scope    string
	explicit bool
}

// Tokenize scans expr into a TokenList, resolving identifiers and
// recursing into bracket groups along the way.
func Tokenize(expr string, reg *operator.Registry, scopePath string, explicit bool, res Resolver, evalSub EvalFunc) (*TokenList, error) {
	s := &scanner{src: expr, reg: reg, res: res, evalSub: evalSub, scope: scopePath, explicit: explicit}
	list := &TokenList{Operators: []*operator.Operator{nil}}
	expectingObject := true

	for {
		s.skipSpace()
		if s.atEnd() {
			break
		}
		if op, n, ok := s.matchOperator(expectingObject); ok {
			s.pos += n
			if op.Shape == operator.Bracket {
				if !expectingObject && op.Sign() == "[" {
					inner, err := s.readBalancedSign(op.Sign(), op.Close)
					if err != nil {
						return nil, err
					}
					key, err := s.evalSub(inner, s.scope)
					if err != nil {
						return nil, err
					}
					indexed, err := index(list.Objects[len(list.Objects)-1], key)
					if err != nil {
						return nil, err
					}
					list.Objects[len(list.Objects)-1] = indexed
					continue
				}
				val, err := s.consumeBracketGroup(op)
				if err != nil {
					return nil, err
				}
				if !expectingObject {
					list.appendOperator(s.reg.Default(), &expectingObject)
				}
				list.appendObject(val, &expectingObject)
				continue
			}
			list.appendOperator(op, &expectingObject)
			continue
		}
		val, err := s.scanObject()
		if err != nil {
			return nil, err
		}
		list.appendObject(val, &expectingObject)
	}
	if expectingObject {
		list.Objects = append(list.Objects, nil)
	}
	return list, nil
}

func (s *scanner) atEnd() bool { return s.pos >= len(s.src) }

func (s *scanner) skipSpace() {
	for !s.atEnd() && (s.src[s.pos] == ' ' || s.src[s.pos] == '\t') {
		s.pos++
	}
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func isIdentStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isIdentChar(b byte) bool { return isIdentStart(b) || isDigit(b) || b == '.' }

func isAlphaSign(sign string) bool {
	for i := 0; i < len(sign); i++ {
		if !isIdentStart(sign[i]) {
			return false
		}
	}
	return len(sign) > 0
}

// matchOperator tries the longest registered sign at the current
// position. Alphabetic signs ("and", "or", "xor", "not") only match on a
// word boundary, so they don't fire in the middle of an identifier like
// "android". A sign can carry more than one shape (e.g. "-" is both
// binary subtraction and unary-after negation); expectingObject picks
// which shape applies: true means no left operand is pending, so a
// prefix-shaped (unary-after) reading is preferred, otherwise binary or
// postfix (unary-before) is preferred.
func (s *scanner) matchOperator(expectingObject bool) (*operator.Operator, int, bool) {
	cands, n, ok := s.reg.LongestPrefixMatchAll(s.src[s.pos:])
	if !ok {
		return nil, 0, false
	}
	if isAlphaSign(cands[0].Sign()) {
		if s.pos > 0 && isIdentChar(s.src[s.pos-1]) {
			return nil, 0, false
		}
		after := s.pos + n
		if after < len(s.src) && isIdentChar(s.src[after]) {
			return nil, 0, false
		}
	}
	return selectShape(cands, expectingObject), n, true
}

// selectShape disambiguates a sign's candidate operators by current scan
// context.
func selectShape(cands []*operator.Operator, expectingObject bool) *operator.Operator {
	if len(cands) == 1 {
		return cands[0]
	}
	for _, c := range cands {
		if c.Shape == operator.Bracket {
			return c
		}
	}
	if expectingObject {
		for _, c := range cands {
			if c.Shape == operator.UnaryAfter {
				return c
			}
		}
	} else {
		for _, c := range cands {
			if c.Shape == operator.Binary {
				return c
			}
		}
		for _, c := range cands {
			if c.Shape == operator.UnaryBefore {
				return c
			}
		}
	}
	return cands[0]
}

// scanObject scans one literal or identifier starting at the current
// position and returns the resolved value.
func (s *scanner) scanObject() (object.Value, error) {
	c := s.src[s.pos]
	switch {
	case c == '"' || c == '\'':
		return s.scanString(c)
	case c == '`':
		body, err := s.scanBacktickBody()
		if err != nil {
			return nil, err
		}
		return object.NewLambda(body, nil, nil, s.scope, false), nil
	case isDigit(c) || (c == '.' && s.pos+1 < len(s.src) && isDigit(s.src[s.pos+1])):
		return s.scanNumber()
	case isIdentStart(c) || c == '.':
		return s.scanIdentifier()
	default:
		return nil, cantuserr.New(cantuserr.SyntaxError, "unexpected character '"+string(c)+"'")
	}
}

func (s *scanner) scanString(quote byte) (object.Value, error) {
	start := s.pos
	s.pos++ // opening quote
	var sb strings.Builder
	for {
		if s.atEnd() {
			return nil, cantuserr.New(cantuserr.SyntaxError, "unterminated string starting at "+s.src[start:])
		}
		c := s.src[s.pos]
		if c == '\\' && s.pos+1 < len(s.src) {
			sb.WriteByte(unescape(s.src[s.pos+1]))
			s.pos += 2
			continue
		}
		if c == quote {
			s.pos++
			break
		}
		sb.WriteByte(c)
		s.pos++
	}
	return object.NewText(sb.String()), nil
}

func unescape(c byte) byte {
	switch c {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	default:
		return c
	}
}

func (s *scanner) scanNumber() (object.Value, error) {
	start := s.pos
	for !s.atEnd() && isDigit(s.src[s.pos]) {
		s.pos++
	}
	if !s.atEnd() && s.src[s.pos] == '.' && s.pos+1 < len(s.src) && isDigit(s.src[s.pos+1]) {
		s.pos++
		for !s.atEnd() && isDigit(s.src[s.pos]) {
			s.pos++
		}
	}
	if !s.atEnd() && (s.src[s.pos] == 'e' || s.src[s.pos] == 'E') {
		save := s.pos
		s.pos++
		if !s.atEnd() && (s.src[s.pos] == '+' || s.src[s.pos] == '-') {
			s.pos++
		}
		if !s.atEnd() && isDigit(s.src[s.pos]) {
			for !s.atEnd() && isDigit(s.src[s.pos]) {
				s.pos++
			}
		} else {
			s.pos = save
		}
	}
	text := s.src[start:s.pos]
	d, ok := bignum.NewFromString(text)
	if !ok {
		return nil, cantuserr.New(cantuserr.SyntaxError, "invalid number literal: "+text)
	}
	if s.res.SignificantMode() {
		d = d.WithSigFigs(bignum.SigFigsOfLiteral(text))
	}
	return object.NewNumber(d), nil
}

func (s *scanner) scanIdentifier() (object.Value, error) {
	start := s.pos
	if s.src[s.pos] == '.' {
		s.pos++
	}
	for !s.atEnd() && isIdentChar(s.src[s.pos]) {
		s.pos++
	}
	name := s.src[start:s.pos]

	switch name {
	case "true":
		return object.NewBoolean(true), nil
	case "false":
		return object.NewBoolean(false), nil
	}

	lookahead := s.pos
	for lookahead < len(s.src) && (s.src[lookahead] == ' ' || s.src[lookahead] == '\t') {
		lookahead++
	}
	if lookahead < len(s.src) && s.src[lookahead] == '(' {
		s.pos = lookahead + 1
		return s.callIdentifier(name)
	}

	if strings.HasPrefix(name, ".") {
		return nil, cantuserr.New(cantuserr.SyntaxError, "self-referring call without arguments: "+name)
	}

	// Splitting is attempted whenever name is not already a known binding
	// — before the implicit-declare step, not only when explicit mode
	// turns a miss into a hard failure. A name that already exists is
	// looked up as-is and never split.
	if s.res.Known(name, s.scope) {
		return s.res.Variable(name, s.scope, s.explicit)
	}
	if refs, ok := s.res.SplitVariable(name, s.scope); ok {
		// Splice the split variables back-to-back under the default
		// operator; represent the whole run as a single grouped value so
		// the caller still receives one object for this segment.
		var acc object.Value = refs[0].GetValue()
		defOp := s.reg.Default()
		for _, r := range refs[1:] {
			next := r.GetValue()
			result, execErr := defOp.Exec(object.ResolveObj(acc), object.ResolveObj(next))
			if execErr != nil {
				return nil, execErr
			}
			acc = result
		}
		return acc, nil
	}
	return s.res.Variable(name, s.scope, s.explicit)
}

// callIdentifier handles a call-target identifier whose next non-space
// character was an already-consumed '('. name may be a leading-dot
// self-referring call (".sort"), an explicit-receiver call ("c.inc",
// "lst.sort"), or a normal call target with no receiver at all.
func (s *scanner) callIdentifier(name string) (object.Value, error) {
	var receiver object.Value
	var hasReceiver bool
	lookupName := name

	switch {
	case strings.HasPrefix(name, "."):
		lookupName = strings.TrimPrefix(name, ".")
		if ref, ok := s.res.This(s.scope); ok {
			receiver = ref.GetValue()
			hasReceiver = true
		}
	case strings.Contains(name, "."):
		// An explicit receiver: split at the last '.' the way
		// internal/scope's fieldWalk splits a dotted field-access name,
		// so `c.inc` resolves `c` as a value first instead of being
		// looked up whole as one opaque compound key.
		idx := strings.LastIndex(name, ".")
		receiverExpr, method := name[:idx], name[idx+1:]
		ref, err := s.res.Variable(receiverExpr, s.scope, s.explicit)
		if err != nil {
			return nil, err
		}
		receiver = ref.GetValue()
		hasReceiver = true
		lookupName = method
	}

	args, named, err := s.parseArgs()
	if err != nil {
		return nil, err
	}

	target, bound, ok := s.res.CallTarget(lookupName, s.scope, receiver)
	if !ok {
		return nil, cantuserr.New(cantuserr.EvaluatorError, "undefined function: "+lookupName)
	}
	if hasReceiver && receiver != nil && !bound {
		args = append([]object.Value{receiver}, args...)
	}
	return target.Call(args, named, s.scope)
}

// parseArgs parses a comma-separated argument list up to the matching
// close paren (already past the open paren). Named arguments (`name :=
// value`) must follow all unnamed arguments.
func (s *scanner) parseArgs() ([]object.Value, map[string]object.Value, error) {
	inner, err := s.readBalanced('(', ')')
	if err != nil {
		return nil, nil, err
	}
	return s.evalArgList(inner)
}

func (s *scanner) evalArgList(inner string) ([]object.Value, map[string]object.Value, error) {
	parts := splitTopLevel(inner, ',')
	var args []object.Value
	var named map[string]object.Value
	sawNamed := false
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if name, valExpr, ok := splitNamedArg(part); ok {
			sawNamed = true
			val, err := s.evalSub(valExpr, s.scope)
			if err != nil {
				return nil, nil, err
			}
			if named == nil {
				named = map[string]object.Value{}
			}
			named[name] = val
			continue
		}
		if sawNamed {
			return nil, nil, cantuserr.New(cantuserr.SyntaxError, "named parameter order: unnamed argument after named")
		}
		val, err := s.evalSub(part, s.scope)
		if err != nil {
			return nil, nil, err
		}
		args = append(args, val)
	}
	return args, named, nil
}

// splitNamedArg splits "name := value" at the top-level `:=`, distinct
// from `==`/`=`.
func splitNamedArg(s string) (name, value string, ok bool) {
	idx := strings.Index(s, ":=")
	if idx < 0 {
		return "", "", false
	}
	name = strings.TrimSpace(s[:idx])
	if name == "" || !isPlainIdent(name) {
		return "", "", false
	}
	return name, s[idx+2:], true
}

func isPlainIdent(s string) bool {
	if s == "" || !isIdentStart(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isIdentStart(s[i]) && !isDigit(s[i]) {
			return false
		}
	}
	return true
}

// splitTopLevel splits s on sep, ignoring separators nested inside
// brackets or quotes.
func splitTopLevel(s string, sep byte) []string {
	var parts []string
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
		case c == sep && depth == 0:
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	parts = append(parts, s[start:])
	return parts
}

// consumeBracketGroup is called right after the open bracket sign has
// been consumed; it locates the matching close (registry-aware nested
// matching), evaluates the interior per the bracket kind, and returns the
// resulting value.
func (s *scanner) consumeBracketGroup(open *operator.Operator) (object.Value, error) {
	inner, err := s.readBalancedSign(open.Sign(), open.Close)
	if err != nil {
		return nil, err
	}
	switch open.Sign() {
	case "(":
		if lam, ok, err := s.tryLambdaAfterParen(inner); ok || err != nil {
			return lam, err
		}
		return s.evalParenGroup(inner)
	case "[":
		return s.evalListLiteral(inner)
	case "{":
		return s.evalBraceLiteral(inner)
	default:
		return s.evalSub(inner, s.scope)
	}
}

// readBalanced consumes up to (and past) the matching close byte, given
// the open byte has already been consumed, returning the interior text.
func (s *scanner) readBalanced(open, close byte) (string, error) {
	return s.readBalancedSign(string(open), string(close))
}

// readBalancedSign is registry-aware nested matching: any of the three
// registered bracket kinds nests correctly inside another, since depth is
// tracked per matching open/close pair only.
func (s *scanner) readBalancedSign(openSign, closeSign string) (string, error) {
	depth := 1
	start := s.pos
	var quote byte
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		if quote != 0 {
			if c == '\\' {
				s.pos += 2
				continue
			}
			if c == quote {
				quote = 0
			}
			s.pos++
			continue
		}
		if c == '"' || c == '\'' {
			quote = c
			s.pos++
			continue
		}
		if strings.HasPrefix(s.src[s.pos:], openSign) {
			depth++
			s.pos += len(openSign)
			continue
		}
		if strings.HasPrefix(s.src[s.pos:], closeSign) {
			depth--
			if depth == 0 {
				inner := s.src[start:s.pos]
				s.pos += len(closeSign)
				return inner, nil
			}
			s.pos += len(closeSign)
			continue
		}
		s.pos++
	}
	return "", cantuserr.New(cantuserr.SyntaxError, "unbalanced bracket: missing "+closeSign)
}

// tryLambdaAfterParen is called right after a "(...)" group's matching
// close has been consumed; argSrc is its interior. If what immediately
// follows is a `=>` arrow or a backtick, the group was a lambda's
// parenthesized argument list rather than a tuple/grouping expression, so
// this builds the Lambda and reports ok=true. Otherwise it rewinds s.pos
// and reports ok=false so consumeBracketGroup falls back to the normal
// paren-group reading.
func (s *scanner) tryLambdaAfterParen(argSrc string) (object.Value, bool, error) {
	save := s.pos
	s.skipSpace()
	switch {
	case strings.HasPrefix(s.src[s.pos:], "=>"):
		s.pos += 2
		s.skipSpace()
		names, defaults, err := s.parseLambdaArgs(argSrc)
		if err != nil {
			return nil, true, err
		}
		// Arrow bodies run to the end of this expression: the line joiner
		// already pulled a multi-line `=>` body into one logical line
		// before tokenizing ever sees it, so whatever remains here is the
		// whole body.
		body := strings.TrimSpace(s.src[s.pos:])
		s.pos = len(s.src)
		return object.NewLambda(body, names, defaults, s.scope, true), true, nil
	case s.pos < len(s.src) && s.src[s.pos] == '`':
		names, defaults, err := s.parseLambdaArgs(argSrc)
		if err != nil {
			return nil, true, err
		}
		body, err := s.scanBacktickBody()
		if err != nil {
			return nil, true, err
		}
		return object.NewLambda(body, names, defaults, s.scope, false), true, nil
	default:
		s.pos = save
		return nil, false, nil
	}
}

// parseLambdaArgs parses a lambda's argument-list interior: a
// comma-separated run of `name` or `name = default` entries, evaluating
// each default eagerly in the defining scope (the same way a `function`
// definition's defaults are evaluated once, at definition time).
func (s *scanner) parseLambdaArgs(argSrc string) ([]string, []object.Value, error) {
	trimmed := strings.TrimSpace(argSrc)
	if trimmed == "" {
		return nil, nil, nil
	}
	var names []string
	var defaults []object.Value
	for _, part := range splitTopLevel(trimmed, ',') {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if idx := strings.Index(part, "="); idx >= 0 && !strings.HasPrefix(part[idx:], "==") {
			name := strings.TrimSpace(part[:idx])
			val, err := s.evalSub(strings.TrimSpace(part[idx+1:]), s.scope)
			if err != nil {
				return nil, nil, err
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

// scanBacktickBody consumes a backtick-delimited lambda block body: the
// opening backtick is at s.pos. Markers don't nest, so the first
// following backtick always closes it (the line joiner that reassembles
// logical lines counts them by simple parity for exactly this reason).
func (s *scanner) scanBacktickBody() (string, error) {
	s.pos++ // opening backtick
	start := s.pos
	for !s.atEnd() && s.src[s.pos] != '`' {
		s.pos++
	}
	if s.atEnd() {
		return "", cantuserr.New(cantuserr.SyntaxError, "unterminated lambda block: missing closing `")
	}
	body := s.src[start:s.pos]
	s.pos++ // closing backtick
	return body, nil
}

// evalParenGroup handles "(...)": empty is an empty Tuple, a single
// top-level element is a grouped expression, more than one is a Tuple
// literal.
func (s *scanner) evalParenGroup(inner string) (object.Value, error) {
	trimmed := strings.TrimSpace(inner)
	if trimmed == "" {
		return object.NewTuple(nil), nil
	}
	parts := splitTopLevel(inner, ',')
	if len(parts) == 1 {
		return s.evalSub(trimmed, s.scope)
	}
	items := make([]object.Value, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := s.evalSub(p, s.scope)
		if err != nil {
			return nil, err
		}
		items = append(items, object.NewReference(object.ResolveObj(v)))
	}
	return object.NewTuple(items), nil
}

// evalListLiteral handles "[...]": a Matrix of references, one per
// comma-separated element.
func (s *scanner) evalListLiteral(inner string) (object.Value, error) {
	trimmed := strings.TrimSpace(inner)
	if trimmed == "" {
		return object.NewMatrix(nil), nil
	}
	parts := splitTopLevel(inner, ',')
	items := make([]object.Value, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := s.evalSub(p, s.scope)
		if err != nil {
			return nil, err
		}
		items = append(items, object.NewReference(object.ResolveObj(v)))
	}
	return object.NewMatrix(items), nil
}

// evalBraceLiteral handles "{...}": a Dictionary if every top-level
// element contains a top-level `:`, otherwise a Set.
func (s *scanner) evalBraceLiteral(inner string) (object.Value, error) {
	trimmed := strings.TrimSpace(inner)
	if trimmed == "" {
		return object.NewSet(), nil
	}
	parts := splitTopLevel(inner, ',')
	allPairs := true
	for _, p := range parts {
		if !strings.Contains(topLevelBeforeColon(p), ":") {
			allPairs = false
			break
		}
	}
	if allPairs {
		dict := object.NewDictionary()
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			kv := splitTopLevel(p, ':')
			if len(kv) < 2 {
				return nil, cantuserr.New(cantuserr.SyntaxError, "malformed dictionary entry: "+p)
			}
			key, err := s.evalSub(strings.TrimSpace(kv[0]), s.scope)
			if err != nil {
				return nil, err
			}
			val, err := s.evalSub(strings.TrimSpace(strings.Join(kv[1:], ":")), s.scope)
			if err != nil {
				return nil, err
			}
			dict.Set(object.ResolveObj(key), object.ResolveObj(val))
		}
		return dict, nil
	}
	set := object.NewSet()
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := s.evalSub(p, s.scope)
		if err != nil {
			return nil, err
		}
		set.Add(object.ResolveObj(v))
	}
	return set, nil
}

// topLevelBeforeColon reports the portion of p up to its first top-level
// colon, used to check "does this element look like a key:value pair"
// without tripping over colons nested in a sub-expression.
func topLevelBeforeColon(p string) string {
	depth := 0
	var quote byte
	for i := 0; i < len(p); i++ {
		c := p[i]
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
		case c == ':' && depth == 0:
			return p[:i+1]
		}
	}
	return ""
}

// index evaluates `receiver[key]` for Matrix (integer position),
// Dictionary (arbitrary key), and Text (character position).
func index(receiver object.Value, key object.Value) (object.Value, error) {
	r := object.ResolveObj(receiver)
	k := object.ResolveObj(key)
	switch v := r.(type) {
	case *object.Matrix:
		n, ok := k.(*object.Number)
		if !ok {
			return nil, cantuserr.New(cantuserr.EvaluatorError, "matrix index must be a number")
		}
		i, ok := n.Value.AsInt()
		if !ok || i < 0 || i >= int64(len(v.Items)) {
			return nil, cantuserr.New(cantuserr.EvaluatorError, "matrix index out of range")
		}
		return v.Items[i], nil
	case *object.Dictionary:
		val, ok := v.Get(k)
		if !ok {
			return nil, cantuserr.New(cantuserr.EvaluatorError, "key not found")
		}
		return val, nil
	case *object.Text:
		n, ok := k.(*object.Number)
		if !ok {
			return nil, cantuserr.New(cantuserr.EvaluatorError, "text index must be a number")
		}
		i, ok := n.Value.AsInt()
		if !ok || i < 0 || int(i) >= len(v.Value) {
			return nil, cantuserr.New(cantuserr.EvaluatorError, "text index out of range")
		}
		return object.NewText(string(v.Value[i])), nil
	default:
		return nil, cantuserr.New(cantuserr.EvaluatorError, "value is not indexable")
	}
}
