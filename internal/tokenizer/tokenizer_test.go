package tokenizer

import (
	"testing"

	"github.com/cantus-lang/cantus/internal/bignum"
	"github.com/cantus-lang/cantus/internal/object"
	"github.com/cantus-lang/cantus/internal/operator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubResolver backs a flat map of variables for testing the tokenizer in
// isolation from scope.Environment/internal/classes.
type stubResolver struct {
	vars        map[string]*object.Reference
	calls       map[string]Callable
	this        *object.Reference
	significant bool
}

func newStubResolver() *stubResolver {
	return &stubResolver{vars: map[string]*object.Reference{}, calls: map[string]Callable{}}
}

func (s *stubResolver) Variable(name, scopePath string, explicit bool) (*object.Reference, error) {
	if ref, ok := s.vars[name]; ok {
		return ref, nil
	}
	if explicit {
		return nil, assertErr(name)
	}
	ref := object.NewReference(object.NewIdentifier(name))
	s.vars[name] = ref
	return ref, nil
}

func assertErr(name string) error { return &undefinedErr{name} }

type undefinedErr struct{ name string }

func (e *undefinedErr) Error() string { return "undefined: " + e.name }

func (s *stubResolver) Known(name, scopePath string) bool {
	_, ok := s.vars[name]
	return ok
}

func (s *stubResolver) SplitVariable(name, scopePath string) ([]*object.Reference, bool) {
	return nil, false
}

func (s *stubResolver) CallTarget(name, scopePath string, receiver object.Value) (Callable, bool, bool) {
	c, ok := s.calls[name]
	return c, false, ok
}

func (s *stubResolver) This(scopePath string) (*object.Reference, bool) {
	if s.this == nil {
		return nil, false
	}
	return s.this, true
}

func (s *stubResolver) SignificantMode() bool { return s.significant }

type funcCallable func(args []object.Value, named map[string]object.Value, scope string) (object.Value, error)

func (f funcCallable) Call(args []object.Value, named map[string]object.Value, scope string) (object.Value, error) {
	return f(args, named, scope)
}

func numOf(s string) *object.Number {
	d, ok := bignum.NewFromString(s)
	if !ok {
		panic("bad number literal in test: " + s)
	}
	return object.NewNumber(d)
}

// simpleEval is a minimal evalSub good enough for bracket/argument content
// in these tests: a single literal, or exactly one binary operator applied
// left-to-right (internal/resolve's full precedence sweep lands
// separately; these tests exercise tokenizer wiring, not resolution).
func simpleEval(reg *operator.Registry, res Resolver) EvalFunc {
	var fn EvalFunc
	fn = func(expr, scopePath string) (object.Value, error) {
		list, err := Tokenize(expr, reg, scopePath, true, res, fn)
		if err != nil {
			return nil, err
		}
		acc := object.ResolveObj(list.Objects[0])
		for i := 1; i < len(list.Objects); i++ {
			op := list.Operators[i]
			operand := object.ResolveObj(list.Objects[i])
			result, err := op.Exec(acc, operand)
			if err != nil {
				return nil, err
			}
			acc = result
		}
		return acc, nil
	}
	return fn
}

func TestTokenizeSimpleArithmetic(t *testing.T) {
	reg := operator.DefaultRegistry()
	res := newStubResolver()
	list, err := Tokenize("2 + 3", reg, "cantus.main", true, res, simpleEval(reg, res))
	require.NoError(t, err)
	require.Len(t, list.Objects, 2)
	require.Len(t, list.Operators, 2)
	assert.Nil(t, list.Operators[0])
	assert.Equal(t, "2", list.Objects[0].String())
	assert.Equal(t, "+", list.Operators[1].Sign())
	assert.Equal(t, "3", list.Objects[1].String())
}

func TestTokenizeSignificantModeTracksLiteralDigits(t *testing.T) {
	reg := operator.DefaultRegistry()
	res := newStubResolver()
	res.significant = true
	list, err := Tokenize("1.20", reg, "cantus.main", true, res, simpleEval(reg, res))
	require.NoError(t, err)
	require.Len(t, list.Objects, 1)
	num, ok := list.Objects[0].(*object.Number)
	require.True(t, ok)
	assert.Equal(t, 3, num.Value.SigFigs())
}

func TestTokenizeUnaryMinusLeavesEmptyLeadingObject(t *testing.T) {
	reg := operator.DefaultRegistry()
	res := newStubResolver()
	list, err := Tokenize("-5", reg, "cantus.main", true, res, simpleEval(reg, res))
	require.NoError(t, err)
	require.Len(t, list.Objects, 2)
	assert.Nil(t, list.Objects[0])
	assert.Equal(t, "-", list.Operators[1].Sign())
	assert.Equal(t, "5", list.Objects[1].String())
}

func TestTokenizeStringLiteral(t *testing.T) {
	reg := operator.DefaultRegistry()
	res := newStubResolver()
	list, err := Tokenize(`"hello" + "world"`, reg, "cantus.main", true, res, simpleEval(reg, res))
	require.NoError(t, err)
	assert.Equal(t, "hello", list.Objects[0].String())
	assert.Equal(t, "world", list.Objects[1].String())
}

func TestTokenizeVariableLookup(t *testing.T) {
	reg := operator.DefaultRegistry()
	res := newStubResolver()
	res.vars["x"] = object.NewReference(numOf("7"))
	list, err := Tokenize("x + 1", reg, "cantus.main", true, res, simpleEval(reg, res))
	require.NoError(t, err)
	ref, ok := list.Objects[0].(*object.Reference)
	require.True(t, ok)
	assert.Equal(t, "7", ref.GetValue().String())
}

func TestTokenizeParenGroupSplicesValue(t *testing.T) {
	reg := operator.DefaultRegistry()
	res := newStubResolver()
	list, err := Tokenize("(2 + 3) * 4", reg, "cantus.main", true, res, simpleEval(reg, res))
	require.NoError(t, err)
	require.Len(t, list.Objects, 2)
	assert.Equal(t, "5", list.Objects[0].String())
	assert.Equal(t, "*", list.Operators[1].Sign())
	assert.Equal(t, "4", list.Objects[1].String())
}

func TestTokenizeImplicitMultiplicationBeforeParen(t *testing.T) {
	reg := operator.DefaultRegistry()
	res := newStubResolver()
	list, err := Tokenize("2(3)", reg, "cantus.main", true, res, simpleEval(reg, res))
	require.NoError(t, err)
	require.Len(t, list.Objects, 2)
	assert.Equal(t, "2", list.Objects[0].String())
	assert.Equal(t, "*", list.Operators[1].Sign())
	assert.Equal(t, "3", list.Objects[1].String())
}

func TestTokenizeListLiteral(t *testing.T) {
	reg := operator.DefaultRegistry()
	res := newStubResolver()
	list, err := Tokenize("[1, 2, 3]", reg, "cantus.main", true, res, simpleEval(reg, res))
	require.NoError(t, err)
	require.Len(t, list.Objects, 1)
	m, ok := list.Objects[0].(*object.Matrix)
	require.True(t, ok)
	require.Len(t, m.Items, 3)
	assert.Equal(t, "2", m.Items[1].String())
}

func TestTokenizeIndexing(t *testing.T) {
	reg := operator.DefaultRegistry()
	res := newStubResolver()
	res.vars["xs"] = object.NewReference(object.NewMatrix([]object.Value{
		object.NewReference(numOf("10")),
		object.NewReference(numOf("20")),
	}))
	list, err := Tokenize("xs[1]", reg, "cantus.main", true, res, simpleEval(reg, res))
	require.NoError(t, err)
	require.Len(t, list.Objects, 1)
	assert.Equal(t, "20", list.Objects[0].String())
}

func TestTokenizeDictLiteral(t *testing.T) {
	reg := operator.DefaultRegistry()
	res := newStubResolver()
	list, err := Tokenize(`{"a": 1, "b": 2}`, reg, "cantus.main", true, res, simpleEval(reg, res))
	require.NoError(t, err)
	dict, ok := list.Objects[0].(*object.Dictionary)
	require.True(t, ok)
	v, found := dict.Get(object.NewText("b"))
	require.True(t, found)
	assert.Equal(t, "2", v.String())
}

func TestTokenizeSetLiteral(t *testing.T) {
	reg := operator.DefaultRegistry()
	res := newStubResolver()
	list, err := Tokenize("{1, 2, 2, 3}", reg, "cantus.main", true, res, simpleEval(reg, res))
	require.NoError(t, err)
	set, ok := list.Objects[0].(*object.Set)
	require.True(t, ok)
	assert.Len(t, set.Elements(), 3)
}

func TestTokenizeFunctionCallWithNamedArg(t *testing.T) {
	reg := operator.DefaultRegistry()
	res := newStubResolver()
	var gotArgs []object.Value
	var gotNamed map[string]object.Value
	res.calls["f"] = funcCallable(func(args []object.Value, named map[string]object.Value, scope string) (object.Value, error) {
		gotArgs, gotNamed = args, named
		return numOf("0"), nil
	})
	_, err := Tokenize("f(1, label := 2)", reg, "cantus.main", true, res, simpleEval(reg, res))
	require.NoError(t, err)
	require.Len(t, gotArgs, 1)
	assert.Equal(t, "1", gotArgs[0].String())
	require.Contains(t, gotNamed, "label")
	assert.Equal(t, "2", gotNamed["label"].String())
}

func TestTokenizeSelfReferringCallUsesThis(t *testing.T) {
	reg := operator.DefaultRegistry()
	res := newStubResolver()
	receiver := object.NewReference(numOf("9"))
	res.this = receiver
	var gotArgs []object.Value
	res.calls["double"] = funcCallable(func(args []object.Value, named map[string]object.Value, scope string) (object.Value, error) {
		gotArgs = args
		return numOf("18"), nil
	})
	_, err := Tokenize(".double()", reg, "cantus.main", true, res, simpleEval(reg, res))
	require.NoError(t, err)
	require.Len(t, gotArgs, 1)
	assert.Equal(t, "9", gotArgs[0].String())
}

func TestTokenizeNamedArgOrderFails(t *testing.T) {
	reg := operator.DefaultRegistry()
	res := newStubResolver()
	res.calls["f"] = funcCallable(func(args []object.Value, named map[string]object.Value, scope string) (object.Value, error) {
		return numOf("0"), nil
	})
	_, err := Tokenize("f(label := 1, 2)", reg, "cantus.main", true, res, simpleEval(reg, res))
	require.Error(t, err)
}

func TestTokenizeWordOperatorRespectsBoundary(t *testing.T) {
	reg := operator.DefaultRegistry()
	res := newStubResolver()
	res.vars["android"] = object.NewReference(object.NewBoolean(true))
	list, err := Tokenize("android", reg, "cantus.main", true, res, simpleEval(reg, res))
	require.NoError(t, err)
	require.Len(t, list.Objects, 1)
	ref, ok := list.Objects[0].(*object.Reference)
	require.True(t, ok)
	assert.Equal(t, "true", ref.GetValue().String())
}

func TestTokenizeArrowLambda(t *testing.T) {
	reg := operator.DefaultRegistry()
	res := newStubResolver()
	list, err := Tokenize("(x, y) => x + y", reg, "cantus.main", true, res, simpleEval(reg, res))
	require.NoError(t, err)
	require.Len(t, list.Objects, 1)
	lam, ok := object.ResolveObj(list.Objects[0]).(*object.Lambda)
	require.True(t, ok)
	assert.True(t, lam.IsArrow)
	assert.Equal(t, []string{"x", "y"}, lam.ArgNames)
	assert.Equal(t, "x + y", lam.Body)
}

func TestTokenizeBlockLambdaWithDefault(t *testing.T) {
	reg := operator.DefaultRegistry()
	res := newStubResolver()
	list, err := Tokenize("(x, y = 1) `return x + y`", reg, "cantus.main", true, res, simpleEval(reg, res))
	require.NoError(t, err)
	lam, ok := object.ResolveObj(list.Objects[0]).(*object.Lambda)
	require.True(t, ok)
	assert.False(t, lam.IsArrow)
	assert.Equal(t, []string{"x", "y"}, lam.ArgNames)
	require.Len(t, lam.Defaults, 2)
	assert.Nil(t, lam.Defaults[0])
	assert.Equal(t, "1", lam.Defaults[1].String())
	assert.Equal(t, "return x + y", lam.Body)
}

func TestTokenizeBareBacktickZeroArgLambda(t *testing.T) {
	reg := operator.DefaultRegistry()
	res := newStubResolver()
	list, err := Tokenize("`return 1`", reg, "cantus.main", true, res, simpleEval(reg, res))
	require.NoError(t, err)
	lam, ok := object.ResolveObj(list.Objects[0]).(*object.Lambda)
	require.True(t, ok)
	assert.Empty(t, lam.ArgNames)
	assert.Equal(t, "return 1", lam.Body)
}

func TestTokenizeParenGroupWithoutArrowIsStillAGroup(t *testing.T) {
	reg := operator.DefaultRegistry()
	res := newStubResolver()
	list, err := Tokenize("(1 + 2)", reg, "cantus.main", true, res, simpleEval(reg, res))
	require.NoError(t, err)
	require.Len(t, list.Objects, 1)
	_, ok := object.ResolveObj(list.Objects[0]).(*object.Lambda)
	assert.False(t, ok)
}
