package evaluator

import (
	"github.com/cantus-lang/cantus/internal/classes"
	"github.com/cantus-lang/cantus/internal/object"
	"github.com/cantus-lang/cantus/internal/scope"
	"github.com/cantus-lang/cantus/internal/tokenizer"
)

// Variable satisfies tokenizer.Resolver.
func (e *Evaluator) Variable(name, scopePath string, explicit bool) (*object.Reference, error) {
	v, err := e.Env.LookupVariable(name, scopePath, explicit)
	if err != nil {
		return nil, err
	}
	return v.Reference, nil
}

// SignificantMode satisfies tokenizer.Resolver, reporting whether the
// number scanner should derive a literal's significant-figure count from
// its digit text rather than treating it as exact.
func (e *Evaluator) SignificantMode() bool { return e.Significant }

// Known satisfies tokenizer.Resolver: a non-declaring probe (steps 1-2 of
// the scope lookup protocol only — never step 3's implicit declare) used
// to decide whether to attempt variable-splitting before falling back to
// declaring the whole name undefined.
func (e *Evaluator) Known(name, scopePath string) bool {
	_, err := e.Env.LookupVariable(name, scopePath, true)
	return err == nil
}

// SplitVariable satisfies tokenizer.Resolver: the "longest known prefix
// first, left to right, no backtracking across a failed remainder"
// splitting algorithm, using Env.TryLookup so a probe never implicitly
// declares anything.
func (e *Evaluator) SplitVariable(name, scopePath string) ([]*object.Reference, bool) {
	vars, ok := e.splitGreedy(name, scopePath)
	if !ok {
		return nil, false
	}
	refs := make([]*object.Reference, len(vars))
	for i, v := range vars {
		refs[i] = v.Reference
	}
	return refs, true
}

func (e *Evaluator) splitGreedy(remaining, scopePath string) ([]*scope.Variable, bool) {
	if remaining == "" {
		return []*scope.Variable{}, true
	}
	for l := len(remaining); l >= 1; l-- {
		v, ok := e.Env.TryLookup(remaining[:l], scopePath)
		if !ok {
			continue
		}
		rest, ok := e.splitGreedy(remaining[l:], scopePath)
		if !ok {
			// No backtracking: this prefix matched, but nothing shorter
			// at this same position is retried once its remainder fails.
			return nil, false
		}
		return append([]*scope.Variable{v}, rest...), true
	}
	return nil, false
}

// CallTarget satisfies tokenizer.Resolver, searching in order: a
// ClassInstance field, a user class, a user function, a Lambda-valued
// variable, then a built-in. When receiver is a ClassInstance, bound
// comes back true and the returned Callable already has the receiver
// bound as `this` — the caller must not also pass it as a leading
// argument. When receiver is some other, non-instance value (a list, a
// matrix, ...), there is nothing to bind it to, so it dispatches to a
// built-in taking the receiver as its leading argument instead — the
// way `lst.sort()` means `sort(lst)` — and bound comes back false so
// the caller prepends it.
func (e *Evaluator) CallTarget(name, scopePath string, receiver object.Value) (tokenizer.Callable, bool, bool) {
	if receiver != nil {
		if inst, ok := object.ResolveObj(receiver).(*object.ClassInstance); ok {
			lam, ok := e.instanceMethod(inst, name)
			if !ok {
				return nil, false, false
			}
			return &lambdaCallable{eval: e, lam: lam}, true, true
		}
		if _, ok := e.Builtins.Lookup(name); ok {
			return &builtinCallable{reg: e.Builtins, name: name}, false, true
		}
		return nil, false, false
	}

	if cls, ok := e.Env.FindClass(name, scopePath); ok {
		return &classCallable{eval: e, cls: cls.(*classes.UserClass)}, false, true
	}
	if fn, ok := e.Env.FindFunction(name, scopePath); ok {
		return &functionCallable{eval: e, fn: fn.(*classes.UserFunction)}, false, true
	}
	if v, ok := e.Env.TryLookup(name, scopePath); ok {
		if lam, ok := object.ResolveObj(v.Reference.GetValue()).(*object.Lambda); ok {
			return &lambdaCallable{eval: e, lam: lam}, false, true
		}
	}
	if _, ok := e.Builtins.Lookup(name); ok {
		return &builtinCallable{reg: e.Builtins, name: name}, false, true
	}
	return nil, false, false
}

// instanceMethod looks up name among inst's own fields first, then the
// concrete class's inherited AllFields, binding `this` to inst if the
// field is a Lambda: calling a field whose value is a Lambda binds this.
func (e *Evaluator) instanceMethod(inst *object.ClassInstance, name string) (*object.Lambda, bool) {
	if field, ok := inst.Field(name); ok {
		if lam, ok := object.ResolveObj(field).(*object.Lambda); ok {
			return lam.BindThis(inst), true
		}
	}
	cls, ok := inst.Class.(*classes.UserClass)
	if !ok {
		return nil, false
	}
	v, ok := cls.AllFields()[name]
	if !ok {
		return nil, false
	}
	lam, ok := object.ResolveObj(v.Reference.GetValue()).(*object.Lambda)
	if !ok {
		return nil, false
	}
	return lam.BindThis(inst), true
}

// This satisfies tokenizer.Resolver: an exact, non-implicit-declaring
// lookup of `this` at the call's own scope.
func (e *Evaluator) This(scopePath string) (*object.Reference, bool) {
	v, ok := e.Env.TryLookup("this", scopePath)
	if !ok {
		return nil, false
	}
	return v.Reference, true
}
