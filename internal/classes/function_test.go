package classes

import (
	"testing"

	"github.com/cantus-lang/cantus/internal/bignum"
	"github.com/cantus-lang/cantus/internal/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func num(n int64) object.Value { return object.NewNumber(bignum.NewFromInt(n)) }

func newFn() *UserFunction {
	return &UserFunction{
		Name:           "add",
		ArgNames:       []string{"a", "b"},
		Defaults:       []object.Value{nil, num(5)},
		DeclaringScope: "root",
	}
}

func TestBindArgumentsPositionalFillsLeftToRight(t *testing.T) {
	f := newFn()
	out, err := f.BindArguments([]object.Value{num(1)}, nil)
	require.NoError(t, err)
	assert.Equal(t, "1", out["a"].String())
	assert.Equal(t, "5", out["b"].String())
}

func TestBindArgumentsNamedSatisfiesRequiredParam(t *testing.T) {
	f := newFn()
	out, err := f.BindArguments(nil, map[string]object.Value{"a": num(10)})
	require.NoError(t, err)
	assert.Equal(t, "10", out["a"].String())
	assert.Equal(t, "5", out["b"].String())
}

func TestBindArgumentsMissingRequiredFails(t *testing.T) {
	f := newFn()
	_, err := f.BindArguments(nil, nil)
	assert.Error(t, err)
}

func TestBindArgumentsTooManyPositionalFails(t *testing.T) {
	f := newFn()
	_, err := f.BindArguments([]object.Value{num(1), num(2), num(3)}, nil)
	assert.Error(t, err)
}

func TestMinArgsIsLongestRequiredPrefix(t *testing.T) {
	f := newFn()
	assert.Equal(t, 1, f.MinArgs())
}

func TestEnvNameCombinesScopeAndName(t *testing.T) {
	f := newFn()
	assert.Equal(t, "root.add", f.EnvName())
}
