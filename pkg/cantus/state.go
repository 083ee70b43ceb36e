package cantus

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/cantus-lang/cantus/internal/builtin"
	"github.com/cantus-lang/cantus/internal/cantuserr"
	"github.com/cantus-lang/cantus/internal/classes"
	"github.com/cantus-lang/cantus/internal/evalctx"
	"github.com/cantus-lang/cantus/internal/evaluator"
	"github.com/cantus-lang/cantus/internal/loader"
	"github.com/cantus-lang/cantus/internal/object"
	"github.com/cantus-lang/cantus/internal/operator"
	"github.com/cantus-lang/cantus/internal/scope"
	"github.com/cantus-lang/cantus/internal/statement"
)

// subScopeSeq mints unique child scope names for SubEvaluator, mirroring
// (independently of) internal/evaluator's own nextScope counter: that one
// is private to the nested-call protocol and not exported for this
// package's different purpose of minting a whole new top-level scope.
var subScopeSeq uint64

func nextChildScope(base string) string {
	id := atomic.AddUint64(&subScopeSeq, 1)
	return fmt.Sprintf("%s.sub$%d", base, id)
}

// Config exposes the embedding API's "Recognized configuration" knobs.
type Config struct {
	// AngleMode selects the unit sin/cos/tan/etc. expect, radians by
	// default.
	AngleMode AngleMode
	// ExplicitMode disables implicit variable declaration: every name
	// must be introduced with `let` before it can be assigned.
	ExplicitMode bool
	// SignificantMode, when on, means numeric literals have their
	// significant-figure count derived from their rendered digit form on
	// entry (a trailing zero in "1.20" counts) rather than being treated
	// as exact: internal/tokenizer's number scanner calls
	// bignum.SigFigsOfLiteral on the literal's raw digit text (before
	// NewFromString's normalize pass strips trailing mantissa zeros) and
	// tags the resulting Decimal with WithSigFigs, via the
	// tokenizer.Resolver.SignificantMode method internal/evaluator
	// implements over this field.
	SignificantMode bool
	// SpacesPerTab is carried for callers only: State does not read it,
	// and the parser counts each tab as internal/statement's fixed
	// SpacesPerTab (8) columns whatever this field holds.
	SpacesPerTab int
	// OutputFormat names how a host should render Number results
	// ("decimal", "fraction", ...); State does not interpret it itself,
	// leaving rendering to the embedding host.
	OutputFormat string
}

// DefaultConfig returns the documented default configuration.
func DefaultConfig() Config {
	return Config{
		AngleMode:    Radians,
		SpacesPerTab: 4,
		OutputFormat: "decimal",
	}
}

// EventSink receives notifications the embedding API's Events section
// describes. A host not interested in a given event can embed
// NopEventSink to satisfy the interface without implementing every
// method.
type EventSink interface {
	// EvalComplete fires once an eval_async worker finishes, successfully
	// or not.
	EvalComplete(id string, result Value, err error)
	// ThreadStarted fires the moment an eval_async worker is registered,
	// before it has produced any result.
	ThreadStarted(id string)
	// ReadInput is the input hook of the interface; no statement or
	// built-in in this module calls it.
	ReadInput(kind, prompt string, args []Value) (string, error)
	// WriteOutput is the output hook of the interface; no statement or
	// built-in in this module calls it.
	WriteOutput(text string)
	// ClearConsole is the console-clearing hook of the interface; no
	// statement or built-in in this module calls it.
	ClearConsole()
}

// NopEventSink implements EventSink with no-ops, for embedding into a
// partial sink implementation.
type NopEventSink struct{}

func (NopEventSink) EvalComplete(string, Value, error)      {}
func (NopEventSink) ThreadStarted(string)                   {}
func (NopEventSink) ReadInput(string, string, []Value) (string, error) {
	return "", nil
}
func (NopEventSink) WriteOutput(string) {}
func (NopEventSink) ClearConsole()      {}

// sinkAdapter lets a State's own EventSink back an evalctx.Manager, which
// knows nothing of this package's Value type or its richer event set.
type sinkAdapter struct{ sink EventSink }

func (a sinkAdapter) ThreadStarted(id string) { a.sink.ThreadStarted(id) }
func (a sinkAdapter) EvalComplete(id string, result object.Value, err error) {
	a.sink.EvalComplete(id, fromInternal(result), err)
}

// State is one embeddable Cantus interpreter instance: its own variable
// environment, registered functions/classes, and background worker
// registry. A State is not safe for concurrent Eval calls against the
// same top-level scope from multiple goroutines; EvalAsync exists
// precisely so a host doesn't need to serialize those itself.
type State struct {
	eval      *evaluator.Evaluator
	mgr       *evalctx.Manager
	sink      EventSink
	scopePath string
	cfg       Config
	closed    bool

	// loaderBaseDir/loaderIncludeDir stage WithLoader's arguments until
	// NewState has an *evaluator.Evaluator to attach a *loader.Loader to.
	loaderBaseDir, loaderIncludeDir string
	hasLoader                      bool
}

// StateOption configures a State at construction time.
type StateOption func(*State)

// WithEventSink directs lifecycle and I/O events to sink.
func WithEventSink(sink EventSink) StateOption {
	return func(s *State) { s.sink = sink }
}

// WithConfig overrides the default configuration.
func WithConfig(cfg Config) StateOption {
	return func(s *State) { s.cfg = cfg }
}

// WithLoader enables the `load` statement, rooting relative paths at
// baseDir and dotted scope paths ("math.trig") at includeDir.
func WithLoader(baseDir, includeDir string) StateOption {
	return func(s *State) {
		s.loaderBaseDir, s.loaderIncludeDir, s.hasLoader = baseDir, includeDir, true
	}
}

// WithScope runs top-level source at scopePath instead of the State's
// root scope (useful for a host embedding several independent States
// that still want a shared naming convention).
func WithScope(scopePath string) StateOption {
	return func(s *State) { s.scopePath = scopePath }
}

// NewState returns a ready-to-use State with a fresh environment and the
// core built-ins registered.
func NewState(opts ...StateOption) *State {
	cfg := DefaultConfig()
	s := &State{cfg: cfg}
	for _, opt := range opts {
		opt(s)
	}

	ops := operator.DefaultRegistry()
	builtins := withAngleMode(builtin.NewRegistry(), s.cfg.AngleMode)
	s.eval = evaluator.New(ops, builtins)
	s.eval.ExplicitMode = s.cfg.ExplicitMode
	s.eval.Significant = s.cfg.SignificantMode
	if s.scopePath == "" {
		s.scopePath = s.eval.RootScope
	}
	if s.sink == nil {
		s.sink = NopEventSink{}
	}
	s.mgr = evalctx.NewManager(sinkAdapter{sink: s.sink})
	if s.hasLoader {
		s.eval.Loader = loader.New(s.loaderBaseDir, s.loaderIncludeDir)
	}
	return s
}

func (s *State) checkClosed() error {
	if s.closed {
		return cantuserr.New(cantuserr.EvaluatorError, "state is closed")
	}
	return nil
}

// Close stops every outstanding eval_async worker and marks the State
// unusable. Close is idempotent.
func (s *State) Close() {
	if s.closed {
		return
	}
	s.mgr.StopAll("")
	s.closed = true
}

// Eval parses src as a full program and runs it at the State's top-level
// scope, returning the program's final value: a top-level `return`'s
// value, or the most recent bare-expression answer if none was reached.
func (s *State) Eval(src string) (Value, error) {
	return s.evalAt(src, s.scopePath, s.eval.ExplicitMode)
}

// EvalRaw is Eval, but always in explicit mode regardless of the State's
// own configuration: every name referenced must already be declared,
// matching a host's "run this exactly as written, don't paper over a
// typo with an implicit declaration" use case.
func (s *State) EvalRaw(src string) (Value, error) {
	return s.evalAt(src, s.scopePath, true)
}

// EvalExpr evaluates a single expression (no statement keywords, no
// indentation block) and returns its value directly, without touching
// the answer ring.
func (s *State) EvalExpr(expr string) (Value, error) {
	if err := s.checkClosed(); err != nil {
		return Nil, err
	}
	v, err := s.eval.Eval(expr, s.scopePath, s.eval.ExplicitMode)
	if err != nil {
		return Nil, err
	}
	return fromInternal(v), nil
}

func (s *State) evalAt(src, scopePath string, explicit bool) (Value, error) {
	if err := s.checkClosed(); err != nil {
		return Nil, err
	}
	stmts, err := statement.Parse(strings.Split(src, "\n"))
	if err != nil {
		return Nil, err
	}
	prevExplicit := s.eval.ExplicitMode
	s.eval.ExplicitMode = explicit
	defer func() { s.eval.ExplicitMode = prevExplicit }()

	res, err := s.eval.Engine.RunProgram(stmts, scopePath)
	if err != nil {
		return Nil, err
	}
	if res.Code == statement.Return {
		return fromInternal(res.Value), nil
	}
	all := s.eval.Engine.Answers.All()
	if len(all) == 0 {
		return Nil, nil
	}
	return fromInternal(all[0]), nil
}

// EvalAsync runs src on its own worker goroutine, reporting completion
// through the State's EventSink rather than blocking the caller. It
// returns the worker's ID, which StopAll/Stop can later cancel.
func (s *State) EvalAsync(ctx context.Context, src string) string {
	return s.mgr.EvalAsync(ctx, func(ctx context.Context) (object.Value, error) {
		stmts, err := statement.Parse(strings.Split(src, "\n"))
		if err != nil {
			return nil, err
		}
		// Run one top-level statement at a time instead of handing the
		// whole program to RunProgram in one call, so a stop_all lands
		// between statements instead of only after the entire program
		// has already finished running.
		for _, stmt := range stmts {
			select {
			case <-ctx.Done():
				return nil, &cantuserr.CancelSignal{}
			default:
			}
			res, err := s.eval.Engine.Run([]*statement.Statement{stmt}, s.scopePath, false)
			if err != nil {
				return nil, err
			}
			switch res.Code {
			case statement.Resume:
				continue
			case statement.Return, statement.BreakLevel:
				return res.Value, nil
			default:
				return nil, cantuserr.New(cantuserr.SyntaxError, "not in loop")
			}
		}
		all := s.eval.Engine.Answers.All()
		if len(all) == 0 {
			return nil, nil
		}
		return all[0], nil
	})
}

// StopAll cancels every running eval_async worker except spareID (pass
// "" to spare none).
func (s *State) StopAll(spareID string) { s.mgr.StopAll(spareID) }

// Stop cancels one eval_async worker by ID.
func (s *State) Stop(id string) bool { return s.mgr.Stop(id) }

// ActiveWorkers reports the IDs of currently running eval_async workers.
func (s *State) ActiveWorkers() []string { return s.mgr.Active() }

// Load resolves path through the configured loader and runs each file it
// names under its derived scope, matching the `load` statement. asImport
// additionally imports each loaded scope into the State's top-level
// scope, equivalent to a trailing `import` keyword.
func (s *State) Load(path string, asImport bool) error {
	if err := s.checkClosed(); err != nil {
		return err
	}
	src := "load " + quoteForSource(path)
	if asImport {
		src += " import"
	}
	_, err := s.evalAt(src, s.scopePath, s.eval.ExplicitMode)
	return err
}

// Import makes target's top-level bindings visible from the State's
// current scope.
func (s *State) Import(target string) {
	s.eval.Env.Import(s.scopePath, target)
}

// Unimport reverses a prior Import.
func (s *State) Unimport(target string) {
	s.eval.Env.Unimport(s.scopePath, target)
}

// SetVariable binds name to value at the State's top-level scope,
// creating the binding if it does not already exist.
func (s *State) SetVariable(name string, value Value) {
	s.eval.Env.DefineVariable(scope.NewVariable(name, toInternal(value), s.scopePath))
}

// GetVariable reads name as visible from the State's top-level scope. It
// reports false if name is undefined there.
func (s *State) GetVariable(name string) (Value, bool) {
	v, ok := s.eval.Env.TryLookup(name, s.scopePath)
	if !ok {
		return Nil, false
	}
	return fromInternal(object.ResolveObj(v.Reference)), true
}

// ClearVariables empties the variable table, leaving registered
// functions and classes untouched.
func (s *State) ClearVariables() { s.eval.ClearVariables() }

// ClearEverything empties variables, functions, classes, and the import
// graph, returning the State to the condition NewState left it in (core
// built-ins are unaffected; they live in a separate registry).
func (s *State) ClearEverything() { s.eval.ClearEverything() }

// DefineUserFunction registers a Go-independent Cantus function built
// from already-parsed source, equivalent to running a top-level
// `function name(params) ... ` declaration.
func (s *State) DefineUserFunction(name, paramsAndBody string) error {
	return s.Eval1(("function " + name + paramsAndBody))
}

// Eval1 runs one already-complete statement (such as a function or class
// declaration) at the State's top-level scope and discards its result,
// reporting only whether it succeeded.
func (s *State) Eval1(src string) error {
	_, err := s.evalAt(src, s.scopePath, s.eval.ExplicitMode)
	return err
}

// DefineUserClass registers a Cantus class from already-parsed source
// (the text after `class Name`), equivalent to running a top-level
// `class Name ... ` declaration.
func (s *State) DefineUserClass(name, body string) error {
	return s.Eval1("class " + name + body)
}

// LookupClass returns the class named name, if one is declared and
// visible from the State's top-level scope.
func (s *State) LookupClass(name string) (Class, bool) {
	named, ok := s.eval.Env.FindClass(name, s.scopePath)
	if !ok {
		return Class{}, false
	}
	uc, ok := named.(*classes.UserClass)
	if !ok {
		return Class{}, false
	}
	return Class{cls: uc}, true
}

// Register installs a Go function as a Cantus built-in, callable from
// script source by name like any core built-in. fn receives already-
// converted Values and returns a Value plus an error (use the TypeError/
// ValueError/MathError/RuntimeError constructors in class.go to report
// faults the same way internal/builtin's own entries do).
func (s *State) Register(name string, minArgs, maxArgs int, fn func(args []Value) (Value, error)) {
	s.eval.Builtins.Register(&builtin.Builtin{
		Name:    name,
		MinArgs: minArgs,
		MaxArgs: maxArgs,
		Invoke: func(args []object.Value) (object.Value, error) {
			converted := make([]Value, len(args))
			for i, a := range args {
				converted[i] = fromInternal(a)
			}
			result, err := fn(converted)
			if err != nil {
				return nil, err
			}
			return toInternal(result), nil
		},
	})
}

// SubEvaluator returns a new State running at a fresh child scope nested
// under this one's: the parent's existing variables, functions, and
// classes remain visible to it (scope lookup walks up to an ancestor),
// but any new `let` binding the child makes stays local to its own
// scope and is never seen by the parent or a sibling sub-evaluator. The
// environment, built-ins, and event sink are all shared by reference;
// only the worker registry is the child's own, so stopping the child's
// async workers never touches the parent's.
func (s *State) SubEvaluator() *State {
	child := &State{
		eval:      s.eval,
		sink:      s.sink,
		scopePath: nextChildScope(s.scopePath),
		cfg:       s.cfg,
	}
	child.mgr = evalctx.NewManager(sinkAdapter{sink: child.sink})
	return child
}

// DeepCopy returns a State at the same scope path as this one, backed by
// its own fresh environment seeded with an independent deep copy of
// every variable this State has declared directly at its own scope (not
// one it only sees by inheritance from an ancestor). Mutating a copied
// variable's value on either State never affects the other. Functions
// and classes declared on the original are not carried over at all
// (scope.Environment exposes no way to enumerate them from outside
// internal/scope) — redeclare them on the copy if it needs them.
func (s *State) DeepCopy() *State {
	clone := NewState(WithConfig(s.cfg), WithEventSink(s.sink))
	clone.scopePath = s.scopePath
	clone.eval.Builtins = s.eval.Builtins
	for name, v := range s.eval.Env.OwnVariables(s.scopePath) {
		value := object.ResolveObj(v.Reference).DeepCopy()
		clone.eval.Env.DefineVariable(scope.NewVariable(name, value, clone.scopePath))
	}
	return clone
}

// ShallowCopy returns a State sharing this one's entire environment (so
// a variable set on either is visible from both), but with its own
// worker registry and scope path.
func (s *State) ShallowCopy() *State {
	child := &State{
		eval:      s.eval,
		sink:      s.sink,
		scopePath: s.scopePath,
		cfg:       s.cfg,
	}
	child.mgr = evalctx.NewManager(sinkAdapter{sink: child.sink})
	return child
}

func quoteForSource(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		if r == '"' || r == '\\' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	b.WriteByte('"')
	return b.String()
}
