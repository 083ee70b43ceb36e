package builtin

import (
	"testing"

	"github.com/cantus-lang/cantus/internal/bignum"
	"github.com/cantus-lang/cantus/internal/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func n(s string) object.Value {
	d, ok := bignum.NewFromString(s)
	if !ok {
		panic("bad literal: " + s)
	}
	return object.NewNumber(d)
}

type stubClass struct{ name string }

func (s *stubClass) ClassName() string { return s.name }

func TestTypeReturnsTypeTag(t *testing.T) {
	r := NewRegistry()
	out, err := r.Call("type", []object.Value{n("5")})
	require.NoError(t, err)
	assert.Equal(t, "Number", out.String())
}

func TestTypeReturnsClassNameForInstance(t *testing.T) {
	r := NewRegistry()
	inst := object.NewClassInstance(&stubClass{name: "Animal"}, "root.Animal")
	out, err := r.Call("type", []object.Value{inst})
	require.NoError(t, err)
	assert.Equal(t, "Animal", out.String())
}

func TestLenOfTextCountsRunes(t *testing.T) {
	r := NewRegistry()
	out, err := r.Call("len", []object.Value{object.NewText("hello")})
	require.NoError(t, err)
	assert.Equal(t, "5", out.String())
}

func TestLenOfMatrix(t *testing.T) {
	r := NewRegistry()
	m := object.NewMatrix([]object.Value{n("1"), n("2"), n("3")})
	out, err := r.Call("len", []object.Value{m})
	require.NoError(t, err)
	assert.Equal(t, "3", out.String())
}

func TestLenRejectsUnsupportedType(t *testing.T) {
	r := NewRegistry()
	_, err := r.Call("len", []object.Value{n("5")})
	assert.Error(t, err)
}

func TestStrRendersValue(t *testing.T) {
	r := NewRegistry()
	out, err := r.Call("str", []object.Value{n("5")})
	require.NoError(t, err)
	assert.Equal(t, "5", out.String())
}

func TestSortOrdersNumbersAscending(t *testing.T) {
	r := NewRegistry()
	m := object.NewMatrix([]object.Value{n("3"), n("1"), n("2")})
	out, err := r.Call("sort", []object.Value{m})
	require.NoError(t, err)
	sorted, ok := out.(*object.Matrix)
	require.True(t, ok)
	require.Len(t, sorted.Items, 3)
	assert.Equal(t, "1", sorted.Items[0].String())
	assert.Equal(t, "2", sorted.Items[1].String())
	assert.Equal(t, "3", sorted.Items[2].String())

	// the receiver itself is mutated in place, not just the returned value
	require.Same(t, m, sorted)
	assert.Equal(t, "1", m.Items[0].String())
	assert.Equal(t, "2", m.Items[1].String())
	assert.Equal(t, "3", m.Items[2].String())
}

func TestRoundDefaultsToZeroPlaces(t *testing.T) {
	r := NewRegistry()
	out, err := r.Call("round", []object.Value{n("3.7")})
	require.NoError(t, err)
	assert.Equal(t, "4", out.String())
}

func TestRoundHalfToEven(t *testing.T) {
	r := NewRegistry()
	out, err := r.Call("round", []object.Value{n("2.5")})
	require.NoError(t, err)
	assert.Equal(t, "2", out.String())
}

func TestRoundToGivenPlaces(t *testing.T) {
	r := NewRegistry()
	out, err := r.Call("round", []object.Value{n("3.14159"), n("2")})
	require.NoError(t, err)
	assert.Equal(t, "3.14", out.String())
}

func TestAbsNegatesNegativeNumber(t *testing.T) {
	r := NewRegistry()
	out, err := r.Call("abs", []object.Value{n("-5")})
	require.NoError(t, err)
	assert.Equal(t, "5", out.String())
}

func TestSqrtOfPerfectSquare(t *testing.T) {
	r := NewRegistry()
	out, err := r.Call("sqrt", []object.Value{n("4")})
	require.NoError(t, err)
	assert.Equal(t, "2", out.String())
}

func TestPowComputesExponent(t *testing.T) {
	r := NewRegistry()
	out, err := r.Call("pow", []object.Value{n("2"), n("3")})
	require.NoError(t, err)
	assert.Equal(t, "8", out.String())
}

func TestCallUndefinedFunctionErrors(t *testing.T) {
	r := NewRegistry()
	_, err := r.Call("not_a_builtin", nil)
	assert.Error(t, err)
}

func TestCallArityMismatchErrors(t *testing.T) {
	r := NewRegistry()
	_, err := r.Call("abs", []object.Value{n("1"), n("2")})
	assert.Error(t, err)

	_, err = r.Call("pow", []object.Value{n("1")})
	assert.Error(t, err)
}

func TestAsNumberRejectsNonNumber(t *testing.T) {
	r := NewRegistry()
	_, err := r.Call("abs", []object.Value{object.NewText("x")})
	assert.Error(t, err)
}
