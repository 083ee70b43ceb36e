package operator

import (
	"testing"

	"github.com/cantus-lang/cantus/internal/bignum"
	"github.com/cantus-lang/cantus/internal/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func numOf(s string) *object.Number {
	d, _ := bignum.NewFromString(s)
	return object.NewNumber(d)
}

func TestLongestPrefixMatch(t *testing.T) {
	r := DefaultRegistry()
	op, length, ok := r.LongestPrefixMatch("**2")
	require.True(t, ok)
	assert.Equal(t, 2, length)
	assert.Equal(t, "**", op.Sign())

	op, length, ok = r.LongestPrefixMatch("<=5")
	require.True(t, ok)
	assert.Equal(t, 2, length)
	assert.Equal(t, "<=", op.Sign())
}

func TestPrecedenceLevelsDescending(t *testing.T) {
	r := DefaultRegistry()
	levels := r.PrecedenceLevels()
	require.NotEmpty(t, levels)
	for i := 1; i < len(levels); i++ {
		assert.Greater(t, levels[i-1], levels[i])
	}
	assert.Equal(t, PrecExponent, levels[0])
	assert.Equal(t, PrecAssignment, levels[len(levels)-1])
}

func TestAddExecNumbers(t *testing.T) {
	op, _ := DefaultRegistry().Lookup("+")
	result, err := op.Exec(numOf("2"), numOf("3"))
	require.NoError(t, err)
	assert.Equal(t, "5", result.String())
}

func TestAddExecStrings(t *testing.T) {
	op, _ := DefaultRegistry().Lookup("+")
	result, err := op.Exec(object.NewText("foo"), object.NewText("bar"))
	require.NoError(t, err)
	assert.Equal(t, "foobar", result.String())
}

func TestAssignMutatesReferencedCell(t *testing.T) {
	op, _ := DefaultRegistry().Lookup("=")
	ref := object.NewReference(numOf("1"))
	result, err := op.Exec(ref, numOf("9"))
	require.NoError(t, err)
	assert.Equal(t, "9", result.String())
	assert.Equal(t, "9", ref.GetValue().String())
}

func TestCompoundAssignAddsInPlace(t *testing.T) {
	op, _ := DefaultRegistry().Lookup("+=")
	ref := object.NewReference(numOf("1"))
	_, err := op.Exec(ref, numOf("4"))
	require.NoError(t, err)
	assert.Equal(t, "5", ref.GetValue().String())
}

func TestDivisionByZeroPropagatesMathError(t *testing.T) {
	op, _ := DefaultRegistry().Lookup("/")
	_, err := op.Exec(numOf("1"), numOf("0"))
	require.Error(t, err)
}

func TestDefaultOperatorIsMultiplication(t *testing.T) {
	r := DefaultRegistry()
	def := r.Default()
	require.NotNil(t, def)
	assert.Equal(t, "*", def.Sign())
}

func TestBracketRegistration(t *testing.T) {
	r := DefaultRegistry()
	op, ok := r.BracketFor("(")
	require.True(t, ok)
	assert.Equal(t, ")", op.Close)
	assert.True(t, r.IsClosingSign(")"))
}

func TestIncrementReturnsOldValue(t *testing.T) {
	op, _ := DefaultRegistry().Lookup("++")
	ref := object.NewReference(numOf("5"))
	result, err := op.Exec(ref)
	require.NoError(t, err)
	assert.Equal(t, "5", result.String())
	assert.Equal(t, "6", ref.GetValue().String())
}

func TestMinusSignCarriesBothShapes(t *testing.T) {
	r := DefaultRegistry()
	sub, ok := r.LookupShape("-", Binary)
	require.True(t, ok)
	assert.Equal(t, PrecAdditive, sub.Precedence)

	neg, ok := r.LookupShape("-", UnaryAfter)
	require.True(t, ok)
	assert.Equal(t, PrecUnary, neg.Precedence)

	cands, length, ok := r.LongestPrefixMatchAll("-5")
	require.True(t, ok)
	assert.Equal(t, 1, length)
	assert.Len(t, cands, 2)
}
