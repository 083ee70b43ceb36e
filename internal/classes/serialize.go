package classes

import "github.com/cantus-lang/cantus/internal/scope"

// ClassOrder returns classes ordered so that every class appears after all
// of its bases, skipping any class whose scope is external to rootScope
// or whose modifiers mark it internal.
// Visited tracks classes already emitted so a diamond base is only written
// once, at its first topologically-valid position.
func ClassOrder(classes []*UserClass, rootScope string) []*UserClass {
	var out []*UserClass
	visited := map[*UserClass]bool{}
	var visit func(c *UserClass)
	visit = func(c *UserClass) {
		if visited[c] {
			return
		}
		visited[c] = true
		for _, base := range c.BaseClasses {
			visit(base)
		}
		if serializable(c.Modifiers) && !scope.IsExternal(rootScope, c.DeclaringScope) {
			out = append(out, c)
		}
	}
	for _, c := range classes {
		visit(c)
	}
	return out
}

// FunctionOrder filters fns to the ones serialization should emit:
// non-internal and not external to rootScope. Order among functions is not
// significant (they don't depend on each other the way classes do), so
// input order is preserved.
func FunctionOrder(fns []*UserFunction, rootScope string) []*UserFunction {
	var out []*UserFunction
	for _, fn := range fns {
		if serializable(fn.Modifiers) && !scope.IsExternal(rootScope, fn.DeclaringScope) {
			out = append(out, fn)
		}
	}
	return out
}

// VariableOrder filters vars the same way: skips external-scope and
// internal-modifier bindings.
func VariableOrder(vars []*scope.Variable, rootScope string) []*scope.Variable {
	var out []*scope.Variable
	for _, v := range vars {
		if v.Serializable() && !scope.IsExternal(rootScope, v.DeclaringScope) {
			out = append(out, v)
		}
	}
	return out
}

func serializable(mods map[scope.Modifier]bool) bool {
	return !mods[scope.ModInternal]
}
