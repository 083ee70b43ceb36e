package evaluator

import (
	"github.com/cantus-lang/cantus/internal/builtin"
	"github.com/cantus-lang/cantus/internal/cantuserr"
	"github.com/cantus-lang/cantus/internal/classes"
	"github.com/cantus-lang/cantus/internal/object"
	"github.com/cantus-lang/cantus/internal/scope"
	"github.com/cantus-lang/cantus/internal/statement"
)

// functionCallable adapts a classes.UserFunction to tokenizer.Callable.
type functionCallable struct {
	eval *Evaluator
	fn   *classes.UserFunction
}

func (c *functionCallable) Call(args []object.Value, named map[string]object.Value, callerScope string) (object.Value, error) {
	bound, err := c.fn.BindArguments(args, named)
	if err != nil {
		return nil, err
	}
	sub := c.eval.nextScope(c.fn.DeclaringScope)
	bindArgs(c.eval.Env, bound, sub)

	res, err := c.eval.Engine.RunProgram(c.fn.Body, sub)
	if err != nil {
		if cerr, ok := err.(*cantuserr.Error); ok {
			return nil, cerr.WithTrailFrame(c.fn.Name, c.fn.DeclaringScope, bodyLine(c.fn.Body))
		}
		return nil, err
	}
	return unwrapCall(res), nil
}

// classCallable adapts a classes.UserClass constructor to
// tokenizer.Callable.
type classCallable struct {
	eval *Evaluator
	cls  *classes.UserClass
}

func (c *classCallable) Call(args []object.Value, named map[string]object.Value, callerScope string) (object.Value, error) {
	inst, callInit := c.cls.NewInstance(args)
	if !callInit {
		return inst, nil
	}
	lam, ok := c.cls.InitFunction()
	if !ok {
		return inst, nil
	}
	init := &lambdaCallable{eval: c.eval, lam: lam.BindThis(inst)}
	if _, err := init.Call(args, named, callerScope); err != nil {
		return nil, err
	}
	return inst, nil
}

// lambdaCallable adapts an object.Lambda (free, or bound to `this` via
// BindThis) to tokenizer.Callable.
type lambdaCallable struct {
	eval *Evaluator
	lam  *object.Lambda
}

func (c *lambdaCallable) Call(args []object.Value, named map[string]object.Value, callerScope string) (object.Value, error) {
	bound, err := bindLambdaArgs(c.lam, args, named)
	if err != nil {
		return nil, err
	}
	sub := c.eval.nextScope(c.lam.DeclaringScope)
	if c.lam.BoundThis != nil {
		c.eval.Env.DefineVariable(scope.NewVariable("this", c.lam.BoundThis, sub))
	}
	bindArgs(c.eval.Env, bound, sub)

	if c.lam.IsArrow {
		v, err := c.eval.Eval(c.lam.Body, sub, c.eval.ExplicitMode)
		if err != nil {
			return nil, err
		}
		return v, nil
	}

	stmts, err := statement.Parse([]string{c.lam.Body})
	if err != nil {
		return nil, err
	}
	res, err := c.eval.Engine.RunProgram(stmts, sub)
	if err != nil {
		return nil, err
	}
	return unwrapCall(res), nil
}

// builtinCallable adapts a registered built-in to tokenizer.Callable.
type builtinCallable struct {
	reg  *builtin.Registry
	name string
}

func (c *builtinCallable) Call(args []object.Value, named map[string]object.Value, callerScope string) (object.Value, error) {
	return c.reg.Call(c.name, args)
}

// bindArgs defines each bound argument as a fresh variable in sub,
// deep-copying so the callee can never mutate the caller's own binding
// through shared storage.
func bindArgs(env *scope.Environment, bound map[string]object.Value, sub string) {
	for name, v := range bound {
		env.DefineVariable(scope.NewVariable(name, object.ResolveObj(v).DeepCopy(), sub))
	}
}

// bindLambdaArgs is classes.UserFunction.BindArguments, specialized to
// object.Lambda (which has no BindArguments method of its own since
// internal/object cannot import internal/cantuserr's sibling
// internal/classes without cycling back through internal/statement).
func bindLambdaArgs(lam *object.Lambda, positional []object.Value, named map[string]object.Value) (map[string]object.Value, error) {
	if len(positional) > len(lam.ArgNames) {
		return nil, cantuserr.New(cantuserr.EvaluatorError, "arity mismatch: too many arguments for lambda")
	}
	out := make(map[string]object.Value, len(lam.ArgNames))
	for i, name := range lam.ArgNames {
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
			if lam.Defaults[i] == nil {
				return nil, cantuserr.New(cantuserr.EvaluatorError, "arity mismatch: missing required argument '"+name+"' for lambda")
			}
			out[name] = lam.Defaults[i]
		}
	}
	return out, nil
}

// unwrapCall turns a call body's Result into the value the call
// expression evaluates to: a Return carries its value (or the undefined
// sentinel for a bare `return`); falling off the end of the body without
// one does too.
func unwrapCall(res statement.Result) object.Value {
	if res.Value == nil {
		return object.NewIdentifier("undefined")
	}
	return res.Value
}

// bodyLine reports the first statement's source line, for a call-site
// trail frame; 0 for an empty body.
func bodyLine(stmts []*statement.Statement) int {
	if len(stmts) == 0 || len(stmts[0].Clauses) == 0 {
		return 0
	}
	return stmts[0].Clauses[0].LineNo
}
