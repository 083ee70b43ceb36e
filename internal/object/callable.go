package object

import "fmt"

// Class is the minimal surface object needs from a user-defined class to
// hold a ClassInstance without importing internal/classes (which itself
// imports object for Value) — a one-way dependency broken the usual Go way,
// through an interface owned by the consumer.
type Class interface {
	ClassName() string
}

// ClassInstance is a field mapping plus a class pointer. Field lookup
// walks own fields, then falls through to the class (handled by
// internal/classes, which knows the concrete class type).
type ClassInstance struct {
	Class      Class
	Fields     map[string]Value
	InnerScope string
}

func NewClassInstance(class Class, innerScope string) *ClassInstance {
	return &ClassInstance{Class: class, Fields: map[string]Value{}, InnerScope: innerScope}
}

func (c *ClassInstance) Type() string   { return TypeClassInstance }
func (c *ClassInstance) String() string { return fmt.Sprintf("<%s instance>", c.Class.ClassName()) }
func (c *ClassInstance) GetValue() Value { return c }

func (c *ClassInstance) DeepCopy() Value {
	cp := &ClassInstance{Class: c.Class, Fields: map[string]Value{}, InnerScope: c.InnerScope}
	for k, v := range c.Fields {
		cp.Fields[k] = v.DeepCopy()
	}
	return cp
}

// Equals is identity comparison: two instances are the same value only if
// they are the same object, matching reference-type semantics for classes.
func (c *ClassInstance) Equals(other Value) bool {
	o, ok := ResolveObj(other).(*ClassInstance)
	return ok && o == c
}

// Field looks up a name among the instance's own fields only; falling
// through to the class's AllFields is the caller's (internal/classes)
// responsibility since it requires the concrete class type.
func (c *ClassInstance) Field(name string) (Value, bool) {
	v, ok := c.Fields[name]
	return v, ok
}

// Lambda is a callable closure literal: either a single `=>` expression
// body or a backtick-delimited block body, capturing the scope path it was
// created in.
type Lambda struct {
	Body     string
	ArgNames []string
	// Defaults holds one entry per arg; a nil entry marks that argument as
	// required, the same "undefined" sentinel UserFunction uses.
	Defaults       []Value
	DeclaringScope string
	IsArrow        bool
	// BoundThis is non-nil once the lambda is fetched as an instance field
	// access (`obj.method`), binding `this` for the call.
	BoundThis *ClassInstance
}

func NewLambda(body string, argNames []string, defaults []Value, declaringScope string, isArrow bool) *Lambda {
	return &Lambda{Body: body, ArgNames: argNames, Defaults: defaults, DeclaringScope: declaringScope, IsArrow: isArrow}
}

func (l *Lambda) Type() string    { return TypeLambda }
func (l *Lambda) String() string  { return "<lambda>" }
func (l *Lambda) GetValue() Value { return l }

func (l *Lambda) DeepCopy() Value {
	cp := *l
	cp.ArgNames = append([]string(nil), l.ArgNames...)
	cp.Defaults = append([]Value(nil), l.Defaults...)
	return &cp
}

func (l *Lambda) Equals(other Value) bool {
	o, ok := ResolveObj(other).(*Lambda)
	return ok && o == l
}

// BindThis returns a copy of the lambda bound to instance, used when a
// field access yields a callable method.
func (l *Lambda) BindThis(instance *ClassInstance) *Lambda {
	cp := *l
	cp.BoundThis = instance
	return &cp
}

// MinArgs is the longest prefix of Defaults that is all-required (nil).
func (l *Lambda) MinArgs() int {
	n := 0
	for _, d := range l.Defaults {
		if d != nil {
			break
		}
		n++
	}
	return n
}
