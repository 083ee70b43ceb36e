package classes

import (
	"github.com/cantus-lang/cantus/internal/object"
	"github.com/cantus-lang/cantus/internal/scope"
	"github.com/cantus-lang/cantus/internal/statement"
)

// UserClass is a `{ name, body, modifiers, base_classes, fields,
// declaring_scope, inner_scope }` record. Body holds the class body's parsed
// statement list (field/method declarations run once at class-definition
// time, not per-instance). Fields holds this class's own declared fields
// only; AllFields does the depth-first multi-base walk.
type UserClass struct {
	Name           string
	Body           []*statement.Statement
	Modifiers      map[scope.Modifier]bool
	BaseClasses    []*UserClass
	Fields         map[string]*scope.Variable
	DeclaringScope string
	InnerScope     string
}

// NewUserClass builds a UserClass, synthesizing the two fields every
// class is guaranteed to have: an empty no-arg `init` if the user
// declared none, and a `type` field returning the class's own name.
func NewUserClass(name string, body []*statement.Statement, baseClasses []*UserClass, fields map[string]*scope.Variable, declaringScope, innerScope string) *UserClass {
	if fields == nil {
		fields = map[string]*scope.Variable{}
	}
	c := &UserClass{
		Name:           name,
		Body:           body,
		Modifiers:      map[scope.Modifier]bool{},
		BaseClasses:    baseClasses,
		Fields:         fields,
		DeclaringScope: declaringScope,
		InnerScope:     innerScope,
	}
	if _, ok := c.Fields["init"]; !ok {
		c.Fields["init"] = scope.NewVariable("init", object.NewLambda("", nil, nil, innerScope, false), innerScope)
	}
	if _, ok := c.Fields["type"]; !ok {
		nameLiteral := `"` + name + `"`
		c.Fields["type"] = scope.NewVariable("type", object.NewLambda(nameLiteral, nil, nil, innerScope, true), innerScope)
	}
	return c
}

// ClassName satisfies object.Class.
func (c *UserClass) ClassName() string { return c.Name }

// EnvName satisfies scope.Named.
func (c *UserClass) EnvName() string { return scope.Combine(c.DeclaringScope, c.Name) }

// InitFunction returns the class's own or inherited init field as a Lambda,
// and false if there is no init field or it does not hold a Lambda.
func (c *UserClass) InitFunction() (*object.Lambda, bool) {
	v, ok := c.AllFields()["init"]
	if !ok {
		return nil, false
	}
	lam, ok := object.ResolveObj(v.Reference).(*object.Lambda)
	return lam, ok
}

// AllFields walks BaseClasses depth-first (leftmost base wins on name
// conflicts among bases), then overlays this class's own Fields last so
// they always win over anything inherited.
func (c *UserClass) AllFields() map[string]*scope.Variable {
	out := map[string]*scope.Variable{}
	c.collectBaseFields(out, map[*UserClass]bool{})
	for name, v := range c.Fields {
		out[name] = v
	}
	return out
}

func (c *UserClass) collectBaseFields(out map[string]*scope.Variable, visited map[*UserClass]bool) {
	for _, base := range c.BaseClasses {
		if visited[base] {
			continue
		}
		visited[base] = true
		base.collectBaseFields(out, visited)
		for name, v := range base.Fields {
			if _, exists := out[name]; !exists {
				out[name] = v
			}
		}
	}
}

// NewInstance allocates a ClassInstance with fields deep-copied from
// AllFields and reports whether the constructor's
// init should be invoked: it is skipped only when args is empty and init
// requires at least one argument, which allows constructing uninitialized
// objects.
func (c *UserClass) NewInstance(args []object.Value) (*object.ClassInstance, bool) {
	inst := object.NewClassInstance(c, c.InnerScope)
	for name, v := range c.AllFields() {
		inst.Fields[name] = object.NewReference(object.ResolveObj(v.Reference).DeepCopy())
	}

	callInit := true
	if len(args) == 0 {
		if lam, ok := c.InitFunction(); ok && lam.MinArgs() > 0 {
			callInit = false
		}
	}
	return inst, callInit
}

// IsSubclassOf reports whether c descends from (or is) target, walking
// BaseClasses depth-first.
func (c *UserClass) IsSubclassOf(target *UserClass) bool {
	if c == target {
		return true
	}
	for _, base := range c.BaseClasses {
		if base.IsSubclassOf(target) {
			return true
		}
	}
	return false
}
