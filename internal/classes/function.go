// Package classes implements Cantus's user functions and user classes:
// binding call arguments to parameters, the depth-first multi-base field
// walk, and the construction/serialization ordering rules. Running a
// bound call's body is the caller's job (the statement engine and
// tokenizer/resolver do that) — this package only computes what the call
// protocol requires before and after that happens. It imports
// internal/statement only for the parsed-body type, and never imports
// internal/tokenizer or internal/evalctx.
package classes

import (
	"github.com/cantus-lang/cantus/internal/cantuserr"
	"github.com/cantus-lang/cantus/internal/object"
	"github.com/cantus-lang/cantus/internal/scope"
	"github.com/cantus-lang/cantus/internal/statement"
)

// UserFunction is a `{ name, body, arg_names, defaults, modifiers,
// return_type, declaring_scope }` record. Body holds the already-parsed statement
// list rather than raw source text: the statement engine hands it the
// Clause.Body it assembled, so a call never re-parses its own definition.
// A nil entry in Defaults marks that argument as required (the "undefined"
// sentinel).
type UserFunction struct {
	Name           string
	Body           []*statement.Statement
	ArgNames       []string
	Defaults       []object.Value
	Modifiers      map[scope.Modifier]bool
	ReturnType     string
	DeclaringScope string
}

// EnvName satisfies scope.Named.
func (f *UserFunction) EnvName() string { return scope.Combine(f.DeclaringScope, f.Name) }

// MinArgs is the longest all-required prefix of Defaults.
func (f *UserFunction) MinArgs() int {
	n := 0
	for _, d := range f.Defaults {
		if d != nil {
			break
		}
		n++
	}
	return n
}

// BindArguments resolves positional and named call arguments against
// ArgNames/Defaults, following the call protocol: positional args fill
// ArgNames left to right, any remaining parameter takes its named-argument
// value if supplied, else its default; counts outside [MinArgs, len(args)]
// (named arguments don't count toward that upper bound) fail with
// *arity mismatch*.
func (f *UserFunction) BindArguments(positional []object.Value, named map[string]object.Value) (map[string]object.Value, error) {
	if len(positional) > len(f.ArgNames) {
		return nil, cantuserr.New(cantuserr.EvaluatorError, "arity mismatch: too many arguments for '"+f.Name+"'")
	}
	out := make(map[string]object.Value, len(f.ArgNames))
	for i, name := range f.ArgNames {
		switch {
		case i < len(positional):
			out[name] = positional[i]
		case named != nil:
			if v, ok := named[name]; ok {
				out[name] = v
				continue
			}
			fallthrough
		default:
			if f.Defaults[i] == nil {
				return nil, cantuserr.New(cantuserr.EvaluatorError, "arity mismatch: missing required argument '"+name+"' for '"+f.Name+"'")
			}
			out[name] = f.Defaults[i]
		}
	}
	return out, nil
}
