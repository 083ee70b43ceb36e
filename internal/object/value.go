// Package object implements Cantus's evaluator value model: the tagged
// union of variants every expression eventually reduces to, plus the
// Reference indirection every variable binding goes through.
package object

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/cantus-lang/cantus/internal/bignum"
)

// Value is satisfied by every evaluator value variant.
type Value interface {
	Type() string
	String() string
	DeepCopy() Value
	Equals(other Value) bool
	// GetValue collapses reference indirection transparently; for every
	// non-Reference variant it returns the receiver unchanged.
	GetValue() Value
}

// Type tags, one per value variant in Cantus's data model.
const (
	TypeNumber        = "Number"
	TypeText          = "Text"
	TypeBoolean       = "Boolean"
	TypeDateTime      = "DateTime"
	TypeComplex       = "Complex"
	TypeMatrix        = "Matrix"
	TypeTuple         = "Tuple"
	TypeSet           = "Set"
	TypeHashSet       = "HashSet"
	TypeDictionary    = "Dictionary"
	TypeLinkedList    = "LinkedList"
	TypeLambda        = "Lambda"
	TypeClassInstance = "ClassInstance"
	TypeReference     = "Reference"
	TypeIdentifier    = "Identifier"
	TypeSystemMessage = "SystemMessage"
)

// ---- Number -----------------------------------------------------------

// Number wraps a BigDecimal. BigDecimal values are immutable, so DeepCopy
// is a no-op share rather than a structural clone.
type Number struct {
	Value *bignum.Decimal
}

func NewNumber(d *bignum.Decimal) *Number { return &Number{Value: d} }

func (n *Number) Type() string    { return TypeNumber }
func (n *Number) String() string  { return n.Value.String() }
func (n *Number) DeepCopy() Value { return n }
func (n *Number) GetValue() Value { return n }
func (n *Number) Equals(other Value) bool {
	o, ok := ResolveObj(other).(*Number)
	if !ok {
		return false
	}
	return bignum.Equals(n.Value, o.Value)
}

// ---- Text ---------------------------------------------------------------

type Text struct {
	Value string
}

func NewText(s string) *Text { return &Text{Value: s} }

func (t *Text) Type() string    { return TypeText }
func (t *Text) String() string  { return t.Value }
func (t *Text) DeepCopy() Value { return &Text{Value: t.Value} }
func (t *Text) GetValue() Value { return t }
func (t *Text) Equals(other Value) bool {
	o, ok := ResolveObj(other).(*Text)
	return ok && o.Value == t.Value
}

// ---- Boolean ------------------------------------------------------------

type Boolean struct {
	Value bool
}

func NewBoolean(b bool) *Boolean { return &Boolean{Value: b} }

func (b *Boolean) Type() string   { return TypeBoolean }
func (b *Boolean) GetValue() Value { return b }
func (b *Boolean) String() string {
	if b.Value {
		return "true"
	}
	return "false"
}
func (b *Boolean) DeepCopy() Value { return &Boolean{Value: b.Value} }
func (b *Boolean) Equals(other Value) bool {
	o, ok := ResolveObj(other).(*Boolean)
	return ok && o.Value == b.Value
}

// ---- DateTime -------------------------------------------------------------

type DateTime struct {
	Value time.Time
}

func NewDateTime(t time.Time) *DateTime { return &DateTime{Value: t} }

func (d *DateTime) Type() string    { return TypeDateTime }
func (d *DateTime) String() string  { return d.Value.Format(time.RFC3339) }
func (d *DateTime) DeepCopy() Value { return &DateTime{Value: d.Value} }
func (d *DateTime) GetValue() Value { return d }
func (d *DateTime) Equals(other Value) bool {
	o, ok := ResolveObj(other).(*DateTime)
	return ok && o.Value.Equal(d.Value)
}

// ---- Complex --------------------------------------------------------------

type Complex struct {
	Real *bignum.Decimal
	Imag *bignum.Decimal
}

func NewComplex(real, imag *bignum.Decimal) *Complex { return &Complex{Real: real, Imag: imag} }

func (c *Complex) Type() string { return TypeComplex }
func (c *Complex) String() string {
	if c.Imag.IsUndefined() || bignum.Equals(c.Imag, bignum.Zero()) {
		return c.Real.String()
	}
	sign := "+"
	imag := c.Imag
	if bignum.Cmp(c.Imag, bignum.Zero()) < 0 {
		sign = "-"
		imag = bignum.Abs(c.Imag)
	}
	return fmt.Sprintf("%s%s%si", c.Real.String(), sign, imag.String())
}
func (c *Complex) DeepCopy() Value { return c }
func (c *Complex) GetValue() Value { return c }
func (c *Complex) Equals(other Value) bool {
	o, ok := ResolveObj(other).(*Complex)
	return ok && bignum.Equals(c.Real, o.Real) && bignum.Equals(c.Imag, o.Imag)
}

// ---- Sequence helpers -----------------------------------------------------

func deepCopyElements(items []Value) []Value {
	out := make([]Value, len(items))
	for i, it := range items {
		out[i] = it.DeepCopy()
	}
	return out
}

func elementsEqual(a, b []Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equals(b[i]) {
			return false
		}
	}
	return true
}

func joinElements(items []Value, open, close string) string {
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = it.String()
	}
	return open + strings.Join(parts, ", ") + close
}

// ---- Matrix ---------------------------------------------------------------

// Matrix is an ordered sequence of references.
type Matrix struct {
	Items []Value // each element is a *Reference
}

func NewMatrix(items []Value) *Matrix { return &Matrix{Items: items} }

func (m *Matrix) Type() string    { return TypeMatrix }
func (m *Matrix) String() string  { return joinElements(m.Items, "[", "]") }
func (m *Matrix) DeepCopy() Value { return &Matrix{Items: deepCopyElements(m.Items)} }
func (m *Matrix) GetValue() Value { return m }
func (m *Matrix) Equals(other Value) bool {
	o, ok := ResolveObj(other).(*Matrix)
	return ok && elementsEqual(m.Items, o.Items)
}

// ---- Tuple ------------------------------------------------------------------

// Tuple is a fixed-arity sequence of references.
type Tuple struct {
	Items []Value
}

func NewTuple(items []Value) *Tuple { return &Tuple{Items: items} }

func (t *Tuple) Type() string    { return TypeTuple }
func (t *Tuple) String() string  { return joinElements(t.Items, "(", ")") }
func (t *Tuple) DeepCopy() Value { return &Tuple{Items: deepCopyElements(t.Items)} }
func (t *Tuple) GetValue() Value { return t }
func (t *Tuple) Equals(other Value) bool {
	o, ok := ResolveObj(other).(*Tuple)
	return ok && elementsEqual(t.Items, o.Items)
}

// ---- Set ----------------------------------------------------------------

// Set is an ordered, comparison-sorted mapping of key -> null. Insertion
// dedups by Equals; the element list is kept sorted by compareValues.
type Set struct {
	elements []Value
}

func NewSet(items ...Value) *Set {
	s := &Set{}
	for _, it := range items {
		s.Add(it)
	}
	return s
}

func (s *Set) Add(v Value) {
	v = ResolveObj(v)
	for _, e := range s.elements {
		if e.Equals(v) {
			return
		}
	}
	idx := sort.Search(len(s.elements), func(i int) bool { return compareValues(s.elements[i], v) >= 0 })
	s.elements = append(s.elements, nil)
	copy(s.elements[idx+1:], s.elements[idx:])
	s.elements[idx] = v
}

func (s *Set) Contains(v Value) bool {
	v = ResolveObj(v)
	for _, e := range s.elements {
		if e.Equals(v) {
			return true
		}
	}
	return false
}

func (s *Set) Elements() []Value { return s.elements }

func (s *Set) Type() string   { return TypeSet }
func (s *Set) String() string { return joinElements(s.elements, "{", "}") }
func (s *Set) DeepCopy() Value {
	cp := &Set{elements: deepCopyElements(s.elements)}
	return cp
}
func (s *Set) GetValue() Value { return s }
func (s *Set) Equals(other Value) bool {
	o, ok := ResolveObj(other).(*Set)
	return ok && elementsEqual(s.elements, o.elements)
}

// ---- HashSet --------------------------------------------------------------

// HashSet is an unordered mapping of key -> null, deduped by string
// representation (Go's map iteration order already has no guarantee,
// which is what "unordered" asks for).
type HashSet struct {
	index map[string]Value
}

func NewHashSet(items ...Value) *HashSet {
	h := &HashSet{index: map[string]Value{}}
	for _, it := range items {
		h.Add(it)
	}
	return h
}

func (h *HashSet) Add(v Value) {
	v = ResolveObj(v)
	h.index[hashKey(v)] = v
}

func (h *HashSet) Contains(v Value) bool {
	_, ok := h.index[hashKey(ResolveObj(v))]
	return ok
}

func (h *HashSet) Elements() []Value {
	out := make([]Value, 0, len(h.index))
	for _, v := range h.index {
		out = append(out, v)
	}
	return out
}

func hashKey(v Value) string { return v.Type() + ":" + v.String() }

func (h *HashSet) Type() string   { return TypeHashSet }
func (h *HashSet) String() string { return joinElements(h.Elements(), "{", "}") }
func (h *HashSet) DeepCopy() Value {
	cp := &HashSet{index: map[string]Value{}}
	for k, v := range h.index {
		cp.index[k] = v.DeepCopy()
	}
	return cp
}
func (h *HashSet) GetValue() Value { return h }
func (h *HashSet) Equals(other Value) bool {
	o, ok := ResolveObj(other).(*HashSet)
	if !ok || len(h.index) != len(o.index) {
		return false
	}
	for k := range h.index {
		if _, found := o.index[k]; !found {
			return false
		}
	}
	return true
}

// ---- Dictionary -----------------------------------------------------------

// Dictionary is an insertion-ordered mapping key -> value.
type Dictionary struct {
	keys   []Value
	values map[string]Value
	lookup map[string]Value // hash key -> original key Value, for iteration
}

func NewDictionary() *Dictionary {
	return &Dictionary{values: map[string]Value{}, lookup: map[string]Value{}}
}

func (d *Dictionary) Set(key, value Value) {
	key = ResolveObj(key)
	k := hashKey(key)
	if _, exists := d.values[k]; !exists {
		d.keys = append(d.keys, key)
		d.lookup[k] = key
	}
	d.values[k] = value
}

func (d *Dictionary) Get(key Value) (Value, bool) {
	v, ok := d.values[hashKey(ResolveObj(key))]
	return v, ok
}

func (d *Dictionary) Delete(key Value) {
	k := hashKey(ResolveObj(key))
	if _, ok := d.values[k]; !ok {
		return
	}
	delete(d.values, k)
	delete(d.lookup, k)
	for i, existing := range d.keys {
		if hashKey(existing) == k {
			d.keys = append(d.keys[:i], d.keys[i+1:]...)
			break
		}
	}
}

func (d *Dictionary) Keys() []Value { return d.keys }
func (d *Dictionary) Len() int      { return len(d.keys) }

func (d *Dictionary) Type() string { return TypeDictionary }
func (d *Dictionary) String() string {
	parts := make([]string, 0, len(d.keys))
	for _, k := range d.keys {
		v := d.values[hashKey(k)]
		parts = append(parts, fmt.Sprintf("%s: %s", k.String(), v.String()))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
func (d *Dictionary) DeepCopy() Value {
	cp := NewDictionary()
	for _, k := range d.keys {
		cp.Set(k.DeepCopy(), d.values[hashKey(k)].DeepCopy())
	}
	return cp
}
func (d *Dictionary) GetValue() Value { return d }
func (d *Dictionary) Equals(other Value) bool {
	o, ok := ResolveObj(other).(*Dictionary)
	if !ok || len(d.keys) != len(o.keys) {
		return false
	}
	for _, k := range d.keys {
		ov, found := o.Get(k)
		if !found || !d.values[hashKey(k)].Equals(ov) {
			return false
		}
	}
	return true
}

// ---- LinkedList -------------------------------------------------------------

// listNode is a doubly-linked node; LinkedList keeps head/tail pointers so
// front/back insertion and removal are O(1).
type listNode struct {
	value      Value
	prev, next *listNode
}

// LinkedList is a doubly-linked sequence, distinct from Matrix's flat
// backing array.
type LinkedList struct {
	head, tail *listNode
	length     int
}

func NewLinkedList(items ...Value) *LinkedList {
	l := &LinkedList{}
	for _, it := range items {
		l.PushBack(it)
	}
	return l
}

func (l *LinkedList) PushBack(v Value) {
	n := &listNode{value: v}
	if l.tail == nil {
		l.head, l.tail = n, n
	} else {
		n.prev = l.tail
		l.tail.next = n
		l.tail = n
	}
	l.length++
}

func (l *LinkedList) PushFront(v Value) {
	n := &listNode{value: v}
	if l.head == nil {
		l.head, l.tail = n, n
	} else {
		n.next = l.head
		l.head.prev = n
		l.head = n
	}
	l.length++
}

func (l *LinkedList) PopFront() (Value, bool) {
	if l.head == nil {
		return nil, false
	}
	n := l.head
	l.head = n.next
	if l.head != nil {
		l.head.prev = nil
	} else {
		l.tail = nil
	}
	l.length--
	return n.value, true
}

func (l *LinkedList) PopBack() (Value, bool) {
	if l.tail == nil {
		return nil, false
	}
	n := l.tail
	l.tail = n.prev
	if l.tail != nil {
		l.tail.next = nil
	} else {
		l.head = nil
	}
	l.length--
	return n.value, true
}

func (l *LinkedList) Len() int { return l.length }

func (l *LinkedList) Items() []Value {
	out := make([]Value, 0, l.length)
	for n := l.head; n != nil; n = n.next {
		out = append(out, n.value)
	}
	return out
}

// SetItems rebuilds the list's nodes from items, in order, reusing the
// same *LinkedList so aliases of it observe the new order.
func (l *LinkedList) SetItems(items []Value) {
	l.head, l.tail, l.length = nil, nil, 0
	for _, it := range items {
		l.PushBack(it)
	}
}

func (l *LinkedList) Type() string    { return TypeLinkedList }
func (l *LinkedList) String() string  { return joinElements(l.Items(), "[", "]") }
func (l *LinkedList) GetValue() Value { return l }
func (l *LinkedList) DeepCopy() Value { return NewLinkedList(deepCopyElements(l.Items())...) }
func (l *LinkedList) Equals(other Value) bool {
	o, ok := ResolveObj(other).(*LinkedList)
	return ok && elementsEqual(l.Items(), o.Items())
}

// ---- Identifier -------------------------------------------------------------

// Identifier is a parse-only placeholder for a name the tokenizer has not
// yet resolved to a variable, function, or class.
type Identifier struct {
	Name string
}

func NewIdentifier(name string) *Identifier { return &Identifier{Name: name} }

func (i *Identifier) Type() string    { return TypeIdentifier }
func (i *Identifier) String() string  { return i.Name }
func (i *Identifier) DeepCopy() Value { return &Identifier{Name: i.Name} }
func (i *Identifier) GetValue() Value { return i }
func (i *Identifier) Equals(other Value) bool {
	o, ok := ResolveObj(other).(*Identifier)
	return ok && o.Name == i.Name
}

// ---- SystemMessage ------------------------------------------------------------

// SystemMessage is an internal signal passed through the resolver/statement
// engine, e.g. "defer" (an executor asking the resolver to move on to the
// next operator with the same sign).
type SystemMessage struct {
	Kind string
}

func NewSystemMessage(kind string) *SystemMessage { return &SystemMessage{Kind: kind} }

const SystemMessageDefer = "defer"

func (s *SystemMessage) Type() string    { return TypeSystemMessage }
func (s *SystemMessage) String() string  { return "<system:" + s.Kind + ">" }
func (s *SystemMessage) DeepCopy() Value { return s }
func (s *SystemMessage) GetValue() Value { return s }
func (s *SystemMessage) Equals(other Value) bool {
	o, ok := ResolveObj(other).(*SystemMessage)
	return ok && o.Kind == s.Kind
}

// CompareValues orders values for Set and the sort builtin: numbers compare
// numerically, text lexicographically, everything else falls back to
// string rendering.
func CompareValues(a, b Value) int { return compareValues(a, b) }

// compareValues orders values for Set: numbers compare numerically, text
// lexicographically, everything else falls back to string rendering.
func compareValues(a, b Value) int {
	if an, ok := a.(*Number); ok {
		if bn, ok := b.(*Number); ok {
			return bignum.Cmp(an.Value, bn.Value)
		}
	}
	if at, ok := a.(*Text); ok {
		if bt, ok := b.(*Text); ok {
			return strings.Compare(at.Value, bt.Value)
		}
	}
	return strings.Compare(a.String(), b.String())
}
