package object

import (
	"testing"

	"github.com/cantus-lang/cantus/internal/bignum"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func numVal(t *testing.T, s string) *Number {
	t.Helper()
	d, ok := bignum.NewFromString(s)
	require.True(t, ok)
	return NewNumber(d)
}

func TestReferenceGetValueCollapses(t *testing.T) {
	ref := NewReference(NewText("hello"))
	assert.Equal(t, "hello", ref.GetValue().String())
	assert.Equal(t, "hello", ResolveObj(ref).String())
}

func TestReferenceAliasChainCollapses(t *testing.T) {
	base := NewReference(numVal(t, "5"))
	alias := NewAlias(base)
	aliasOfAlias := NewAlias(alias)

	assert.Equal(t, "5", aliasOfAlias.GetValue().String())

	base.Set(numVal(t, "9"))
	assert.Equal(t, "9", aliasOfAlias.GetValue().String(), "mutation through the owning cell is visible to every alias")
}

func TestReferenceDeepCopyAllocatesNewCell(t *testing.T) {
	base := NewReference(numVal(t, "1"))
	alias := NewAlias(base)
	copied := alias.DeepCopy().(*Reference)

	base.Set(numVal(t, "2"))
	assert.Equal(t, "2", alias.GetValue().String())
	assert.Equal(t, "1", copied.GetValue().String(), "deep copy must not share the original cell")
}

func TestNumberEquals(t *testing.T) {
	a := numVal(t, "1.50")
	b := numVal(t, "1.5")
	assert.True(t, a.Equals(b))
}

func TestTupleDeepCopyIsIndependent(t *testing.T) {
	item := NewReference(NewText("a"))
	tup := NewTuple([]Value{item})
	cp := tup.DeepCopy().(*Tuple)

	item.Set(NewText("b"))
	assert.Equal(t, "b", tup.Items[0].GetValue().String())
	assert.Equal(t, "a", cp.Items[0].GetValue().String())
}

func TestSetDedupsAndOrders(t *testing.T) {
	s := NewSet(numVal(t, "3"), numVal(t, "1"), numVal(t, "2"), numVal(t, "1"))
	elements := s.Elements()
	require.Len(t, elements, 3)
	assert.Equal(t, "1", elements[0].String())
	assert.Equal(t, "2", elements[1].String())
	assert.Equal(t, "3", elements[2].String())
}

func TestHashSetDedups(t *testing.T) {
	h := NewHashSet(NewText("x"), NewText("x"), NewText("y"))
	assert.Len(t, h.Elements(), 2)
	assert.True(t, h.Contains(NewText("x")))
}

func TestDictionaryPreservesInsertionOrder(t *testing.T) {
	d := NewDictionary()
	d.Set(NewText("b"), numVal(t, "2"))
	d.Set(NewText("a"), numVal(t, "1"))
	keys := d.Keys()
	require.Len(t, keys, 2)
	assert.Equal(t, "b", keys[0].String())
	assert.Equal(t, "a", keys[1].String())
}

func TestDictionarySetOverwritesKeepsPosition(t *testing.T) {
	d := NewDictionary()
	d.Set(NewText("a"), numVal(t, "1"))
	d.Set(NewText("b"), numVal(t, "2"))
	d.Set(NewText("a"), numVal(t, "9"))
	keys := d.Keys()
	require.Len(t, keys, 2)
	assert.Equal(t, "a", keys[0].String())
	v, ok := d.Get(NewText("a"))
	require.True(t, ok)
	assert.Equal(t, "9", v.String())
}

func TestLinkedListPushPop(t *testing.T) {
	l := NewLinkedList()
	l.PushBack(numVal(t, "1"))
	l.PushBack(numVal(t, "2"))
	l.PushFront(numVal(t, "0"))

	assert.Equal(t, 3, l.Len())
	front, ok := l.PopFront()
	require.True(t, ok)
	assert.Equal(t, "0", front.String())

	back, ok := l.PopBack()
	require.True(t, ok)
	assert.Equal(t, "2", back.String())
	assert.Equal(t, 1, l.Len())
}

type stubClass struct{ name string }

func (s stubClass) ClassName() string { return s.name }

func TestClassInstanceDeepCopy(t *testing.T) {
	inst := NewClassInstance(stubClass{name: "Point"}, "cantus.Point")
	inst.Fields["x"] = NewReference(numVal(t, "1"))
	cp := inst.DeepCopy().(*ClassInstance)

	inst.Fields["x"].(*Reference).Set(numVal(t, "2"))
	assert.Equal(t, "2", inst.Fields["x"].GetValue().String())
	assert.Equal(t, "1", cp.Fields["x"].GetValue().String())
}

func TestLambdaMinArgs(t *testing.T) {
	l := NewLambda("x + y", []string{"x", "y", "z"}, []Value{nil, nil, numVal(t, "0")}, "cantus", true)
	assert.Equal(t, 2, l.MinArgs())
}

func TestIdentifierAndSystemMessage(t *testing.T) {
	id := NewIdentifier("foo")
	assert.Equal(t, "foo", id.String())
	assert.Equal(t, TypeIdentifier, id.Type())

	msg := NewSystemMessage(SystemMessageDefer)
	assert.Equal(t, TypeSystemMessage, msg.Type())
}
