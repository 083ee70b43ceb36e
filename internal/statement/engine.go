package statement

import (
	"github.com/cantus-lang/cantus/internal/cantuserr"
	"github.com/cantus-lang/cantus/internal/object"
)

// Dispatcher executes one Statement's own clauses (its condition, loop
// mechanics, or body iteration) in the given scope. It does not run
// nested bodies itself — Engine.Run does that, recursively, for a
// Dispatcher that wants a Clause's Body executed. Keeping statement
// EXECUTION behind this interface is what lets this package stay free of
// internal/classes, internal/builtin, and internal/evalctx: the concrete
// Dispatcher (built alongside those packages) is the only thing that
// needs to know what "for" or "function" actually do.
type Dispatcher interface {
	Execute(engine *Engine, stmt *Statement, scopePath string, declarativeOnly bool) (Result, error)
}

// Engine runs parsed Statements against an injected Dispatcher.
type Engine struct {
	Dispatcher Dispatcher
	Answers    *AnswerRing
}

// NewEngine returns an Engine with an unbounded answer ring.
func NewEngine(d Dispatcher) *Engine {
	return &Engine{Dispatcher: d, Answers: NewAnswerRing(0)}
}

// Run executes stmts in order within scopePath, short-circuiting the
// moment any statement (or its then-chained continuation) returns a
// non-Resume code.
func (e *Engine) Run(stmts []*Statement, scopePath string, declarativeOnly bool) (Result, error) {
	for _, stmt := range stmts {
		for cur := stmt; cur != nil; cur = cur.Chained {
			if declarativeOnly && !cur.IsDeclarative() {
				return Result{}, cantuserr.New(cantuserr.SyntaxError, "only declarative statements are allowed here").WithLine(cur.Clauses[0].LineNo)
			}
			res, err := e.Dispatcher.Execute(e, cur, scopePath, declarativeOnly)
			if err != nil {
				return Result{}, err
			}
			if cur.Keyword() == "" && res.Code == Resume && !IsUndefined(res.Value) {
				e.Answers.Push(res.Value)
			}
			if res.Code != Resume {
				return res, nil
			}
		}
	}
	return Result{Code: Resume}, nil
}

// RunProgram runs stmts as a full top-level program: a top-level Return
// is the program's final answer; a top-level Break/Continue fails with
// "not in loop"; BreakLevel reaching the top is treated as Resume, since
// nothing above the top level remains to terminate.
func (e *Engine) RunProgram(stmts []*Statement, scopePath string) (Result, error) {
	res, err := e.Run(stmts, scopePath, false)
	if err != nil {
		return Result{}, err
	}
	switch res.Code {
	case Return, Resume, BreakLevel:
		return res, nil
	default:
		return Result{}, cantuserr.New(cantuserr.SyntaxError, "not in loop")
	}
}

// AnswerRing is the "previous answers" ring: a fixed-capacity history of
// recently evaluated top-level expressions. A zero or negative cap means
// unbounded. Index 0 is always the most recently pushed value.
type AnswerRing struct {
	values []object.Value
	cap    int
}

// NewAnswerRing returns a ring capped at n entries; n<=0 means unbounded.
func NewAnswerRing(n int) *AnswerRing {
	return &AnswerRing{cap: n}
}

// Push prepends v, trimming the oldest entry once the ring is at
// capacity.
func (r *AnswerRing) Push(v object.Value) {
	r.values = append([]object.Value{v}, r.values...)
	if r.cap > 0 && len(r.values) > r.cap {
		r.values = r.values[:r.cap]
	}
}

// All returns every stored answer, most recent first.
func (r *AnswerRing) All() []object.Value {
	return append([]object.Value(nil), r.values...)
}
