package cantus

import (
	"fmt"

	"github.com/cantus-lang/cantus/internal/cantuserr"
	"github.com/cantus-lang/cantus/internal/classes"
	"github.com/cantus-lang/cantus/internal/object"
)

// Object wraps a Cantus class instance, giving Go code field-level access
// without reaching into internal/object directly.
type Object struct {
	inst *object.ClassInstance
}

func (o Object) Type() string { return object.TypeClassInstance }
func (o Object) String() string {
	if o.inst == nil {
		return "<nil>"
	}
	return o.inst.String()
}
func (o Object) GoValue() interface{}   { return o.inst }
func (o Object) toInternal() object.Value { return o.inst }

// ClassName returns the name of the instance's class.
func (o Object) ClassName() string {
	if o.inst == nil {
		return ""
	}
	return o.inst.Class.ClassName()
}

// Class returns the instance's class, if it is a Cantus user class.
func (o Object) Class() (Class, bool) {
	uc, ok := o.inst.Class.(*classes.UserClass)
	if !ok {
		return Class{}, false
	}
	return Class{cls: uc}, true
}

// Get reads a field by name, walking the instance's own fields first and
// then the class's declared fields.
func (o Object) Get(name string) (Value, bool) {
	if v, ok := o.inst.Field(name); ok {
		return fromInternal(v), true
	}
	if uc, ok := o.inst.Class.(*classes.UserClass); ok {
		if v, ok := uc.AllFields()[name]; ok {
			return fromInternal(object.ResolveObj(v.Reference)), true
		}
	}
	return Nil, false
}

// Set writes an instance field, creating it if it does not already exist.
func (o Object) Set(name string, v Value) {
	o.inst.Fields[name] = object.NewReference(toInternal(v))
}

// Has reports whether name is readable on this instance via Get.
func (o Object) Has(name string) bool {
	_, ok := o.Get(name)
	return ok
}

// Class wraps a Cantus user-defined class.
type Class struct {
	cls *classes.UserClass
}

// Name returns the class's declared name.
func (c Class) Name() string { return c.cls.Name }

// NewInstance allocates a new instance with fields deep-copied from the
// class's declared fields. It does not invoke the class's init field —
// callers that need construction semantics should go through State.Eval
// with a constructor call expression instead.
func (c Class) NewInstance() Object {
	inst, _ := c.cls.NewInstance(nil)
	return Object{inst: inst}
}

// IsSubclassOf reports whether c descends from (or is) other.
func (c Class) IsSubclassOf(other Class) bool {
	return c.cls.IsSubclassOf(other.cls)
}

// =====================================
// Error constructors
//
// These build *cantuserr.Error values carrying the cantuserr.Kind closest
// to the fault being reported, for use from Go functions registered via
// State.Register/RegisterBuiltin — built-ins report faults through
// internal/cantuserr the same way the interpreter's own built-ins do,
// rather than panicking.
// =====================================

func TypeError(format string, args ...interface{}) error {
	return cantuserr.New(cantuserr.EvaluatorError, fmt.Sprintf(format, args...))
}

func ValueError(format string, args ...interface{}) error {
	return cantuserr.New(cantuserr.EvaluatorError, fmt.Sprintf(format, args...))
}

func MathError(format string, args ...interface{}) error {
	return cantuserr.New(cantuserr.MathError, fmt.Sprintf(format, args...))
}

func RuntimeError(format string, args ...interface{}) error {
	return cantuserr.New(cantuserr.EvaluatorError, fmt.Sprintf(format, args...))
}
