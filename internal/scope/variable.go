package scope

import "github.com/cantus-lang/cantus/internal/object"

// Modifier is one of the declaration modifiers a Variable, UserFunction, or
// UserClass can carry.
type Modifier string

const (
	ModPrivate  Modifier = "private"
	ModInternal Modifier = "internal"
	ModStatic   Modifier = "static"
	ModGlobal   Modifier = "global"
)

// Variable is a named binding: a reference cell plus the scope it was
// declared in and any access modifiers.
type Variable struct {
	Name           string
	Reference      *object.Reference
	DeclaringScope string
	Modifiers      map[Modifier]bool
}

// NewVariable creates a Variable bound to a fresh reference cell.
func NewVariable(name string, value object.Value, declaringScope string, mods ...Modifier) *Variable {
	set := make(map[Modifier]bool, len(mods))
	for _, m := range mods {
		set[m] = true
	}
	return &Variable{
		Name:           name,
		Reference:      object.NewReference(value),
		DeclaringScope: declaringScope,
		Modifiers:      set,
	}
}

// FullName is declaringScope + "." + name.
func (v *Variable) FullName() string {
	return Combine(v.DeclaringScope, v.Name)
}

func (v *Variable) Has(mod Modifier) bool { return v.Modifiers[mod] }

// VisibleFrom implements the private-modifier accessibility rule: a private
// binding is invisible from any scope that is not a parent of (an ancestor
// of, or equal to) its declaring scope.
func (v *Variable) VisibleFrom(accessingScope string) bool {
	if !v.Has(ModPrivate) {
		return true
	}
	return IsParent(accessingScope, v.DeclaringScope)
}

// Serializable implements the internal-modifier rule: internal bindings are
// excluded from any serialization pass.
func (v *Variable) Serializable() bool { return !v.Has(ModInternal) }
