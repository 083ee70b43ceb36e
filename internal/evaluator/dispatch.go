package evaluator

import (
	"os"
	"strings"

	"github.com/cantus-lang/cantus/internal/cantuserr"
	"github.com/cantus-lang/cantus/internal/classes"
	"github.com/cantus-lang/cantus/internal/object"
	"github.com/cantus-lang/cantus/internal/scope"
	"github.com/cantus-lang/cantus/internal/statement"
)

// Execute satisfies statement.Dispatcher: it runs one Statement's own
// clauses (its condition, loop mechanics, or body iteration), dispatching
// on the leading keyword.
func (e *Evaluator) Execute(engine *statement.Engine, stmt *statement.Statement, scopePath string, declarativeOnly bool) (statement.Result, error) {
	clause := stmt.Clauses[0]
	switch clause.Keyword {
	case "":
		return e.execBare(clause, scopePath)
	case "let":
		return e.execLet(clause, scopePath)
	case "global":
		return e.execGlobal(clause, scopePath)
	case "if":
		return e.execIf(engine, stmt, scopePath, declarativeOnly)
	case "while":
		return e.execWhile(engine, clause, scopePath, declarativeOnly, false)
	case "until":
		return e.execWhile(engine, clause, scopePath, declarativeOnly, true)
	case "for":
		return e.execFor(engine, clause, scopePath, declarativeOnly)
	case "repeat":
		return e.execRepeat(engine, clause, scopePath, declarativeOnly)
	case "run":
		return e.execRun(engine, clause, scopePath, declarativeOnly)
	case "function":
		return e.execFunctionDef(clause, scopePath)
	case "class":
		return e.execClassDef(engine, clause, scopePath)
	case "switch":
		return e.execSwitch(engine, stmt, scopePath, declarativeOnly)
	case "try":
		return e.execTry(engine, stmt, scopePath, declarativeOnly)
	case "import":
		return e.execImport(clause, scopePath, true)
	case "load":
		return e.execLoad(clause, scopePath)
	case "namespace":
		return e.execNamespace(engine, clause, scopePath, declarativeOnly)
	default:
		return statement.Result{}, cantuserr.New(cantuserr.SyntaxError, "unknown statement keyword: "+clause.Keyword).WithLine(clause.LineNo)
	}
}

// hasLeadingWord reports whether header's first word equals word,
// returning whatever text follows it.
func hasLeadingWord(header, word string) (rest string, ok bool) {
	trimmed := strings.TrimSpace(header)
	if trimmed == word {
		return "", true
	}
	if strings.HasPrefix(trimmed, word+" ") || strings.HasPrefix(trimmed, word+"\t") {
		return strings.TrimSpace(trimmed[len(word):]), true
	}
	return "", false
}

// execBare runs a keyword-less statement: an ordinary expression, or one
// of break/continue/return/unimport, none of which splitKeyword
// recognizes as statement keywords (they are absent from both
// blockKeywords and DeclarativeKeywords), so they arrive here as plain
// header text and are matched by hand.
func (e *Evaluator) execBare(clause *statement.Clause, scopePath string) (statement.Result, error) {
	header := strings.TrimSpace(clause.Header)
	switch header {
	case "":
		return statement.Resumed(nil), nil
	case "break":
		return statement.Result{Code: statement.Break}, nil
	case "continue":
		return statement.Result{Code: statement.Continue}, nil
	case "return":
		return statement.Result{Code: statement.Return, Value: object.NewIdentifier("undefined")}, nil
	}
	if rest, ok := hasLeadingWord(header, "return"); ok {
		v, err := e.Eval(rest, scopePath, e.ExplicitMode)
		if err != nil {
			return statement.Result{}, err
		}
		return statement.Result{Code: statement.Return, Value: v}, nil
	}
	if rest, ok := hasLeadingWord(header, "unimport"); ok {
		e.Env.Unimport(scopePath, strings.TrimSpace(rest))
		return statement.Resumed(nil), nil
	}
	v, err := e.Eval(header, scopePath, e.ExplicitMode)
	if err != nil {
		return statement.Result{}, err
	}
	return statement.Resumed(v), nil
}

// execLet runs a `let` declaration: always non-explicit, so a bare name
// on the left implicitly declares in scopePath rather than erroring or
// reaching for an outer binding of the same name.
func (e *Evaluator) execLet(clause *statement.Clause, scopePath string) (statement.Result, error) {
	v, err := e.Eval(clause.Header, scopePath, false)
	if err != nil {
		return statement.Result{}, err
	}
	return statement.Resumed(v), nil
}

// execGlobal is execLet against RootScope instead of the caller's own
// scope.
func (e *Evaluator) execGlobal(clause *statement.Clause, scopePath string) (statement.Result, error) {
	v, err := e.Eval(clause.Header, e.RootScope, false)
	if err != nil {
		return statement.Result{}, err
	}
	return statement.Resumed(v), nil
}

func (e *Evaluator) evalCondition(expr, scopePath string, lineNo int) (bool, error) {
	v, err := e.Eval(expr, scopePath, e.ExplicitMode)
	if err != nil {
		return false, err
	}
	b, ok := object.ResolveObj(v).(*object.Boolean)
	if !ok {
		return false, cantuserr.New(cantuserr.EvaluatorError, "condition must be a boolean").WithLine(lineNo)
	}
	return b.Value, nil
}

// execIf evaluates each clause's header in order (an "else" clause has
// none and always matches once reached), running the first match's body.
func (e *Evaluator) execIf(engine *statement.Engine, stmt *statement.Statement, scopePath string, declarativeOnly bool) (statement.Result, error) {
	for _, cl := range stmt.Clauses {
		matched := cl.Keyword == "else"
		if !matched {
			var err error
			matched, err = e.evalCondition(cl.Header, scopePath, cl.LineNo)
			if err != nil {
				return statement.Result{}, err
			}
		}
		if matched {
			return engine.Run(cl.Body, scopePath, declarativeOnly)
		}
	}
	return statement.Resumed(nil), nil
}

// loopOutcome maps a body's Result onto what the enclosing loop does
// next: continue looping, stop looping and resume after it, or bubble
// Return straight out.
func loopOutcome(res statement.Result) (keepGoing, stop bool) {
	switch res.Code {
	case statement.Break:
		return false, true
	case statement.Continue, statement.Resume, statement.BreakLevel:
		return true, false
	default: // Return
		return false, false
	}
}

func (e *Evaluator) execWhile(engine *statement.Engine, clause *statement.Clause, scopePath string, declarativeOnly, invert bool) (statement.Result, error) {
	for {
		cont, err := e.evalCondition(clause.Header, scopePath, clause.LineNo)
		if err != nil {
			return statement.Result{}, err
		}
		if invert {
			cont = !cont
		}
		if !cont {
			return statement.Resumed(nil), nil
		}
		res, err := engine.Run(clause.Body, scopePath, declarativeOnly)
		if err != nil {
			return statement.Result{}, err
		}
		keepGoing, stop := loopOutcome(res)
		if stop {
			return statement.Resumed(nil), nil
		}
		if !keepGoing {
			return res, nil
		}
	}
}

// splitInWord finds the top-level " in " separating a for-loop header's
// element name from its collection expression, ignoring occurrences
// nested inside brackets or quotes.
func splitInWord(s string) (before, after string, ok bool) {
	depth := 0
	var quote byte
	for i := 0; i+4 <= len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == '\\' {
				i++
				continue
			}
			if c == quote {
				quote = 0
			}
			continue
		case c == '"' || c == '\'':
			quote = c
			continue
		case c == '(' || c == '[' || c == '{':
			depth++
			continue
		case c == ')' || c == ']' || c == '}':
			depth--
			continue
		}
		if depth == 0 && quote == 0 && s[i:i+4] == " in " {
			return strings.TrimSpace(s[:i]), strings.TrimSpace(s[i+4:]), true
		}
	}
	return s, "", false
}

// iterableItems returns the elements a `for` loop walks over.
func iterableItems(v object.Value) ([]object.Value, error) {
	switch o := object.ResolveObj(v).(type) {
	case *object.Matrix:
		return o.Items, nil
	case *object.Tuple:
		return o.Items, nil
	case *object.Set:
		return o.Elements(), nil
	case *object.HashSet:
		return o.Elements(), nil
	case *object.LinkedList:
		return o.Items(), nil
	case *object.Dictionary:
		return o.Keys(), nil
	case *object.Text:
		runes := []rune(o.Value)
		out := make([]object.Value, len(runes))
		for i, r := range runes {
			out[i] = object.NewText(string(r))
		}
		return out, nil
	default:
		return nil, cantuserr.New(cantuserr.EvaluatorError, "value is not iterable: "+v.Type())
	}
}

func (e *Evaluator) execFor(engine *statement.Engine, clause *statement.Clause, scopePath string, declarativeOnly bool) (statement.Result, error) {
	varName, collExpr, ok := splitInWord(clause.Header)
	if !ok {
		return statement.Result{}, cantuserr.New(cantuserr.SyntaxError, "for requires 'name in collection'").WithLine(clause.LineNo)
	}
	collVal, err := e.Eval(collExpr, scopePath, e.ExplicitMode)
	if err != nil {
		return statement.Result{}, err
	}
	items, err := iterableItems(collVal)
	if err != nil {
		return statement.Result{}, err
	}
	for _, item := range items {
		e.Env.DefineVariable(scope.NewVariable(varName, object.ResolveObj(item).DeepCopy(), scopePath))
		res, err := engine.Run(clause.Body, scopePath, declarativeOnly)
		if err != nil {
			return statement.Result{}, err
		}
		keepGoing, stop := loopOutcome(res)
		if stop {
			return statement.Resumed(nil), nil
		}
		if !keepGoing {
			return res, nil
		}
	}
	return statement.Resumed(nil), nil
}

func (e *Evaluator) execRepeat(engine *statement.Engine, clause *statement.Clause, scopePath string, declarativeOnly bool) (statement.Result, error) {
	countVal, err := e.Eval(clause.Header, scopePath, e.ExplicitMode)
	if err != nil {
		return statement.Result{}, err
	}
	n, ok := object.ResolveObj(countVal).(*object.Number)
	if !ok {
		return statement.Result{}, cantuserr.New(cantuserr.EvaluatorError, "repeat count must be a number").WithLine(clause.LineNo)
	}
	count, _ := n.Value.AsInt()
	for i := int64(0); i < count; i++ {
		res, err := engine.Run(clause.Body, scopePath, declarativeOnly)
		if err != nil {
			return statement.Result{}, err
		}
		keepGoing, stop := loopOutcome(res)
		if stop {
			return statement.Resumed(nil), nil
		}
		if !keepGoing {
			return res, nil
		}
	}
	return statement.Resumed(nil), nil
}

// execRun runs its body exactly once; a ` then while ...` (or similar)
// chained continuation is handled by Engine.Run walking stmt.Chained, not
// by anything here.
func (e *Evaluator) execRun(engine *statement.Engine, clause *statement.Clause, scopePath string, declarativeOnly bool) (statement.Result, error) {
	res, err := engine.Run(clause.Body, scopePath, declarativeOnly)
	if err != nil {
		return statement.Result{}, err
	}
	if res.Code == statement.Return {
		return res, nil
	}
	return statement.Resumed(nil), nil
}

func (e *Evaluator) execFunctionDef(clause *statement.Clause, scopePath string) (statement.Result, error) {
	mods, header := takeModifiers(clause.Header)
	name, argsSrc, returnType, err := splitArgsSrc(header)
	if err != nil {
		return statement.Result{}, err
	}
	argNames, defaults, err := e.parseParams(argsSrc, scopePath)
	if err != nil {
		return statement.Result{}, err
	}
	fn := &classes.UserFunction{
		Name:           name,
		Body:           clause.Body,
		ArgNames:       argNames,
		Defaults:       defaults,
		Modifiers:      mods,
		ReturnType:     returnType,
		DeclaringScope: scopePath,
	}
	e.Env.DefineFunction(fn.EnvName(), fn)
	return statement.Resumed(nil), nil
}

// execClassDef builds the UserClass, runs its body once to populate
// Fields, then registers it. Each field is a Lambda-valued `let` —
// instance methods are plain fields whose value happens to be callable,
// the same mechanic NewUserClass already uses to synthesize
// `init`/`type` — so this only needs to run the body and harvest the
// resulting top-level `let` bindings.
//
// Registration (Env.DefineClass, and marking innerScope as a class scope
// for the implicit-declare guard) happens only AFTER the body runs and
// Fields is populated, not before: the guard rejects implicitly
// declaring any name that isn't already a known field of its class
// scope, which is exactly what every `let` in the body being harvested
// right now is doing. Registering first would make the class body
// unable to declare its own fields.
func (e *Evaluator) execClassDef(engine *statement.Engine, clause *statement.Clause, scopePath string) (statement.Result, error) {
	mods, header := takeModifiers(clause.Header)
	name, argsSrc, _, err := splitArgsSrc(header)
	if err != nil {
		return statement.Result{}, err
	}
	bases, err := e.parseBaseList(argsSrc, scopePath)
	if err != nil {
		return statement.Result{}, err
	}
	innerScope := scope.Combine(scopePath, name)
	cls := classes.NewUserClass(name, clause.Body, bases, nil, scopePath, innerScope)
	for m := range mods {
		cls.Modifiers[m] = true
	}

	if _, err := engine.Run(clause.Body, innerScope, false); err != nil {
		return statement.Result{}, err
	}
	for _, stmt := range clause.Body {
		if stmt.Keyword() != "let" {
			continue
		}
		name := splitAssignName(stmt.Clauses[0].Header)
		if name == "" {
			continue
		}
		if v, ok := e.Env.TryLookup(name, innerScope); ok {
			cls.Fields[name] = v
		}
	}
	e.registerClass(cls)
	return statement.Resumed(nil), nil
}

// splitAssignName extracts the leftmost name out of a `let`-clause header
// such as "x = 1", "x := 1", or "x += 1".
func splitAssignName(header string) string {
	idx := strings.IndexByte(header, '=')
	if idx < 0 {
		return strings.TrimSpace(header)
	}
	left := strings.TrimRight(header[:idx], ":+-*/%")
	return strings.TrimSpace(left)
}

func (e *Evaluator) execSwitch(engine *statement.Engine, stmt *statement.Statement, scopePath string, declarativeOnly bool) (statement.Result, error) {
	subjectClause := stmt.Clauses[0]
	subject, err := e.Eval(subjectClause.Header, scopePath, e.ExplicitMode)
	if err != nil {
		return statement.Result{}, err
	}

	var defaultClause *statement.Clause
	for _, cl := range stmt.Clauses[1:] {
		if cl.Keyword == "default" {
			defaultClause = cl
			continue
		}
		caseVal, err := e.Eval(cl.Header, scopePath, e.ExplicitMode)
		if err != nil {
			return statement.Result{}, err
		}
		if !object.ResolveObj(subject).Equals(object.ResolveObj(caseVal)) {
			continue
		}
		return e.runSwitchBody(engine, cl.Body, scopePath, declarativeOnly)
	}
	if defaultClause != nil {
		return e.runSwitchBody(engine, defaultClause.Body, scopePath, declarativeOnly)
	}
	return statement.Resumed(nil), nil
}

// runSwitchBody runs a matched case's body; a break consumed within it
// (BreakLevel/Resume) just ends the switch, while Return/Continue/Break
// aimed at an outer loop keep propagating.
func (e *Evaluator) runSwitchBody(engine *statement.Engine, body []*statement.Statement, scopePath string, declarativeOnly bool) (statement.Result, error) {
	res, err := engine.Run(body, scopePath, declarativeOnly)
	if err != nil {
		return statement.Result{}, err
	}
	if res.Code == statement.Resume || res.Code == statement.BreakLevel {
		return statement.Resumed(nil), nil
	}
	return res, nil
}

func (e *Evaluator) execTry(engine *statement.Engine, stmt *statement.Statement, scopePath string, declarativeOnly bool) (statement.Result, error) {
	tryClause := stmt.Clauses[0]
	var catchClause, finallyClause *statement.Clause
	for _, cl := range stmt.Clauses[1:] {
		switch cl.Keyword {
		case "catch":
			catchClause = cl
		case "finally":
			finallyClause = cl
		}
	}

	res, err := engine.Run(tryClause.Body, scopePath, declarativeOnly)
	if err != nil {
		// Anything but a cancellation is catchable: most runtime faults
		// (type errors, division by zero) surface as plain errors from
		// internal/operator, not *cantuserr.Error, so catch must not
		// require that concrete type — only stop_all's CancelSignal is a
		// fatal, non-recoverable exemption.
		if _, cancelled := err.(*cantuserr.CancelSignal); cancelled || catchClause == nil {
			e.runFinally(engine, finallyClause, scopePath, declarativeOnly)
			return statement.Result{}, err
		}
		if name := strings.TrimSpace(catchClause.Header); name != "" {
			e.Env.DefineVariable(scope.NewVariable(name, object.NewText(err.Error()), scopePath))
		}
		res, err = engine.Run(catchClause.Body, scopePath, declarativeOnly)
		if err != nil {
			e.runFinally(engine, finallyClause, scopePath, declarativeOnly)
			return statement.Result{}, err
		}
	}

	if finallyClause == nil {
		return res, nil
	}
	fres, ferr := engine.Run(finallyClause.Body, scopePath, declarativeOnly)
	if ferr != nil {
		return statement.Result{}, ferr
	}
	if fres.Code != statement.Resume {
		return fres, nil
	}
	return res, nil
}

func (e *Evaluator) runFinally(engine *statement.Engine, finallyClause *statement.Clause, scopePath string, declarativeOnly bool) {
	if finallyClause == nil {
		return
	}
	_, _ = engine.Run(finallyClause.Body, scopePath, declarativeOnly)
}

func (e *Evaluator) execImport(clause *statement.Clause, scopePath string, doImport bool) (statement.Result, error) {
	target := strings.TrimSpace(clause.Header)
	if doImport {
		e.Env.Import(scopePath, target)
	} else {
		e.Env.Unimport(scopePath, target)
	}
	return statement.Resumed(nil), nil
}

func (e *Evaluator) execNamespace(engine *statement.Engine, clause *statement.Clause, scopePath string, declarativeOnly bool) (statement.Result, error) {
	ns := scope.Combine(scopePath, strings.TrimSpace(clause.Header))
	return engine.Run(clause.Body, ns, declarativeOnly)
}

// splitTopLevelWords splits s on whitespace, keeping quoted or bracketed
// runs intact, for a `load` header's path expression plus trailing
// bare-word flags ("import", "internal").
func splitTopLevelWords(s string) []string {
	var out []string
	depth := 0
	var quote byte
	start := -1
	for i := 0; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
			continue
		}
		switch {
		case c == '"' || c == '\'':
			quote = c
			if start < 0 {
				start = i
			}
			continue
		case c == '(' || c == '[' || c == '{':
			depth++
		case c == ')' || c == ']' || c == '}':
			depth--
		case (c == ' ' || c == '\t') && depth == 0:
			if start >= 0 {
				out = append(out, s[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		out = append(out, s[start:])
	}
	return out
}

// execLoad resolves a load header ("path" [import] [internal]) through
// e.Loader, parses and runs each resolved file once at its derived scope,
// and imports it into scopePath when the `import` flag word is present.
func (e *Evaluator) execLoad(clause *statement.Clause, scopePath string) (statement.Result, error) {
	words := splitTopLevelWords(strings.TrimSpace(clause.Header))
	if len(words) == 0 {
		return statement.Result{}, cantuserr.New(cantuserr.SyntaxError, "load requires a path").WithLine(clause.LineNo)
	}
	asImport := false
	for _, w := range words[1:] {
		if w == "import" {
			asImport = true
		}
	}

	pathVal, err := e.Eval(words[0], scopePath, e.ExplicitMode)
	if err != nil {
		return statement.Result{}, err
	}
	text, ok := object.ResolveObj(pathVal).(*object.Text)
	if !ok {
		return statement.Result{}, cantuserr.New(cantuserr.EvaluatorError, "load path must be text").WithLine(clause.LineNo)
	}
	if e.Loader == nil {
		return statement.Result{}, cantuserr.New(cantuserr.EvaluatorError, "load is unavailable: no file loader configured").WithLine(clause.LineNo)
	}

	files, err := e.Loader.Resolve(text.Value)
	if err != nil {
		return statement.Result{}, err
	}
	for _, f := range files {
		data, rerr := os.ReadFile(f.Path)
		if rerr != nil {
			return statement.Result{}, cantuserr.New(cantuserr.EvaluatorError, "load: "+rerr.Error()).WithLine(clause.LineNo)
		}
		stmts, perr := statement.Parse(strings.Split(string(data), "\n"))
		if perr != nil {
			return statement.Result{}, perr
		}
		if _, rerr := e.Engine.RunProgram(stmts, f.Scope); rerr != nil {
			return statement.Result{}, rerr
		}
		if asImport {
			e.Env.Import(scopePath, f.Scope)
		}
	}
	return statement.Resumed(nil), nil
}
