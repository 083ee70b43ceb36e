// Package evaluator is Cantus's glue collaborator: it wires
// internal/scope, internal/classes, internal/builtin, internal/tokenizer,
// internal/resolve, and internal/statement together behind the
// tokenizer.Resolver and statement.Dispatcher interfaces those packages
// expose for exactly this purpose. Neither tokenizer nor statement may
// import this package's dependencies directly (that would cycle back
// through resolve/classes), so this is the one place that is allowed to
// know about all of them at once.
package evaluator

import (
	"fmt"
	"sync/atomic"

	"github.com/cantus-lang/cantus/internal/builtin"
	"github.com/cantus-lang/cantus/internal/classes"
	"github.com/cantus-lang/cantus/internal/loader"
	"github.com/cantus-lang/cantus/internal/object"
	"github.com/cantus-lang/cantus/internal/operator"
	"github.com/cantus-lang/cantus/internal/resolve"
	"github.com/cantus-lang/cantus/internal/scope"
	"github.com/cantus-lang/cantus/internal/statement"
	"github.com/cantus-lang/cantus/internal/tokenizer"
)

// Evaluator binds one scope.Environment to the operator/builtin
// registries and the statement engine, and is itself the
// tokenizer.Resolver and statement.Dispatcher both packages expect an
// outside collaborator to supply.
type Evaluator struct {
	Env       *scope.Environment
	Operators *operator.Registry
	Builtins  *builtin.Registry
	Engine    *statement.Engine
	Loader    *loader.Loader

	// RootScope is where `global` statements declare into, and the
	// scope a freshly constructed Evaluator starts running at.
	RootScope string
	// ExplicitMode disables implicit variable declaration when on. It
	// applies uniformly to the top-level Eval call and to every nested
	// sub-expression evaluated while resolving it.
	ExplicitMode bool
	// Significant turns on significant-figures mode: a numeric literal's
	// significant-figure count is derived from its rendered digit text
	// (a trailing zero in "1.20" counts) instead of being treated as
	// exact. Read by internal/tokenizer's number scanner through the
	// SignificantMode method below.
	Significant bool

	// classScopes tracks which inner scopes belong to a user class, so
	// Env's implicit-declare guard can tell a field assignment inside a
	// method body from an unrelated stray name.
	classScopes map[string]*classes.UserClass
	callSeq     uint64
}

// New returns an Evaluator with a fresh scope.Environment wired to ops
// and builtins, rooted at "root".
func New(ops *operator.Registry, builtins *builtin.Registry) *Evaluator {
	return NewWithEnvironment(scope.NewEnvironment(), ops, builtins)
}

// NewWithEnvironment is New, but against a caller-supplied environment
// (SubEvaluator/DeepCopy callers share or fork state this way).
func NewWithEnvironment(env *scope.Environment, ops *operator.Registry, builtins *builtin.Registry) *Evaluator {
	e := &Evaluator{
		Env:         env,
		Operators:   ops,
		Builtins:    builtins,
		RootScope:   "root",
		classScopes: map[string]*classes.UserClass{},
	}
	e.Engine = statement.NewEngine(e)
	env.IsClassScope = func(s string) bool {
		_, ok := e.classScopes[s]
		return ok
	}
	env.IsDeclaredField = func(scopePath, name string) bool {
		cls, ok := e.classScopes[scopePath]
		if !ok {
			return false
		}
		_, ok = cls.AllFields()[name]
		return ok
	}
	return e
}

// ClearEverything empties the Environment entirely (variables, functions,
// classes, imports) and forgets every registered class scope, backing the
// embedding API's clear_everything operation. Registered classes must be
// redeclared afterward; a class defined before the clear is no longer
// recognized even if the same *classes.UserClass pointer is reused.
func (e *Evaluator) ClearEverything() {
	e.Env.ClearAll()
	e.classScopes = map[string]*classes.UserClass{}
}

// ClearVariables empties only the variable table, backing the embedding
// API's clear_variables operation; user functions and classes survive.
func (e *Evaluator) ClearVariables() {
	e.Env.ClearVariables()
}

// registerClass records cls's inner scope for the IsClassScope/
// IsDeclaredField callbacks above, and defines it in Env.
func (e *Evaluator) registerClass(cls *classes.UserClass) {
	e.classScopes[cls.InnerScope] = cls
	e.Env.DefineClass(cls.EnvName(), cls)
}

// nextScope mints a unique sub-scope path below base, one per call, so
// concurrent or recursive calls never collide on the same variable
// table entries.
func (e *Evaluator) nextScope(base string) string {
	id := atomic.AddUint64(&e.callSeq, 1)
	return fmt.Sprintf("%s.$%d", base, id)
}

// Eval tokenizes and resolves expr against scopePath, honoring explicit
// for this call only (the Dispatcher passes false for `let`/`global`
// regardless of e.ExplicitMode; every other caller passes
// e.ExplicitMode).
func (e *Evaluator) Eval(expr, scopePath string, explicit bool) (object.Value, error) {
	list, err := tokenizer.Tokenize(expr, e.Operators, scopePath, explicit, e, e.evalSub)
	if err != nil {
		return nil, err
	}
	return resolve.Resolve(list, e.Operators)
}

// evalSub is the tokenizer.EvalFunc closure: every nested sub-expression
// (bracket contents, call arguments, index keys) is evaluated under the
// Evaluator's own configured explicit mode, never an ad hoc override.
func (e *Evaluator) evalSub(expr, scopePath string) (object.Value, error) {
	return e.Eval(expr, scopePath, e.ExplicitMode)
}
