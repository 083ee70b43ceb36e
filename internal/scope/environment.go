package scope

import (
	"fmt"
	"strings"

	"github.com/cantus-lang/cantus/internal/object"
)

// Named is the minimal surface Environment needs from a user function or
// user class entry. internal/classes's UserFunction and UserClass types
// satisfy it; Environment never needs their richer behavior (arity,
// AllFields, ...) so no import cycle is introduced.
type Named interface {
	EnvName() string
}

// ErrUndefined is returned by Lookup when explicit mode is on and no
// binding is found.
type ErrUndefined struct{ Name string }

func (e *ErrUndefined) Error() string { return fmt.Sprintf("undefined: %s", e.Name) }

// ClassFieldChecker lets internal/classes tell Environment whether a given
// name is a declared field of the class scope being implicitly declared
// into, without Environment importing internal/classes.
type ClassFieldChecker func(scopePath, name string) bool

// Environment holds the three scope-keyed tables the lookup protocol
// covers: variables, user functions, and user classes, plus the
// per-scope import graph the lookup protocol walks.
type Environment struct {
	variables map[string]*Variable
	functions map[string]Named
	classes   map[string]Named
	imports   map[string][]string

	// IsClassScope and IsDeclaredField gate implicit declaration inside a
	// class body: a class scope rejects implicit-declare unless the name
	// matches one of the class's own declared fields.
	IsClassScope    func(scopePath string) bool
	IsDeclaredField ClassFieldChecker
}

// NewEnvironment returns an empty Environment.
func NewEnvironment() *Environment {
	return &Environment{
		variables: map[string]*Variable{},
		functions: map[string]Named{},
		classes:   map[string]Named{},
		imports:   map[string][]string{},
	}
}

// ClearVariables empties the variable table only, leaving functions,
// classes, and imports untouched (backs the embedding API's
// clear_variables operation).
func (e *Environment) ClearVariables() {
	e.variables = map[string]*Variable{}
}

// ClearAll empties every table, including imports (backs the embedding
// API's clear_everything operation).
func (e *Environment) ClearAll() {
	e.variables = map[string]*Variable{}
	e.functions = map[string]Named{}
	e.classes = map[string]Named{}
	e.imports = map[string][]string{}
}

// OwnVariables returns every variable declared exactly at scopePath (not
// one inherited from an ancestor scope), keyed by name. It backs the
// embedding API's deep_copy operation, which needs to transplant one
// scope's own bindings into a fresh Environment without access to this
// package's otherwise-unexported variable table.
func (e *Environment) OwnVariables(scopePath string) map[string]*Variable {
	out := map[string]*Variable{}
	for _, v := range e.variables {
		if v.DeclaringScope == scopePath {
			out[v.Name] = v
		}
	}
	return out
}

// Import registers scope `from` as importing `target`: lookups in `from`
// also search `target`.
func (e *Environment) Import(from, target string) {
	for _, existing := range e.imports[from] {
		if existing == target {
			return
		}
	}
	e.imports[from] = append(e.imports[from], target)
}

func (e *Environment) Unimport(from, target string) {
	list := e.imports[from]
	for i, existing := range list {
		if existing == target {
			e.imports[from] = append(list[:i], list[i+1:]...)
			return
		}
	}
}

// DefineVariable stores v keyed by its full name.
func (e *Environment) DefineVariable(v *Variable) {
	e.variables[v.FullName()] = v
}

// DefineFunction stores a user function keyed by its full scope path.
func (e *Environment) DefineFunction(fullName string, fn Named) {
	e.functions[fullName] = fn
}

// DefineClass stores a user class keyed by its full scope path.
func (e *Environment) DefineClass(fullName string, cls Named) {
	e.classes[fullName] = cls
}

func (e *Environment) GetFunction(fullName string) (Named, bool) {
	fn, ok := e.functions[fullName]
	return fn, ok
}

func (e *Environment) GetClass(fullName string) (Named, bool) {
	cls, ok := e.classes[fullName]
	return cls, ok
}

// FindFunction searches currentScope then its accessible scopes (same order
// as LookupVariable's steps 1-2) for a user function named name.
func (e *Environment) FindFunction(name, currentScope string) (Named, bool) {
	if fn, ok := e.functions[Combine(currentScope, name)]; ok {
		return fn, true
	}
	for _, a := range e.accessibleScopes(currentScope) {
		if fn, ok := e.functions[Combine(a, name)]; ok {
			return fn, true
		}
	}
	return nil, false
}

// FindClass is FindFunction for user classes.
func (e *Environment) FindClass(name, currentScope string) (Named, bool) {
	if cls, ok := e.classes[Combine(currentScope, name)]; ok {
		return cls, true
	}
	for _, a := range e.accessibleScopes(currentScope) {
		if cls, ok := e.classes[Combine(a, name)]; ok {
			return cls, true
		}
	}
	return nil, false
}

// accessibleScopes enumerates the scopes a lookup from currentScope may
// search, in priority order: current scope, then its parent walk, then
// imported scopes (of the current scope only — imports are not
// transitive).
func (e *Environment) accessibleScopes(currentScope string) []string {
	out := Ancestors(currentScope)
	out = append(out, e.imports[currentScope]...)
	return out
}

// classInstanceAt reports whether fullName currently names a variable
// holding (a reference to) a ClassInstance.
func (e *Environment) classInstanceAt(fullName string) (*object.ClassInstance, bool) {
	v, ok := e.variables[fullName]
	if !ok {
		return nil, false
	}
	inst, ok := object.ResolveObj(v.Reference).(*object.ClassInstance)
	return inst, ok
}

// TryLookup performs LookupVariable's steps 1-2 (exact hit, then accessible
// scopes) without the implicit-declare/explicit-error step 3: a miss simply
// reports false. internal/evaluator's variable-splitting search uses this to
// probe candidate prefixes without side effects.
func (e *Environment) TryLookup(name, currentScope string) (*Variable, bool) {
	if v, ok := e.variables[name]; ok && v.VisibleFrom(currentScope) {
		return v, true
	}
	for _, a := range e.accessibleScopes(currentScope) {
		key := Combine(a, name)
		if v, ok := e.variables[key]; ok && v.VisibleFrom(currentScope) {
			return v, true
		}
	}
	return nil, false
}

// LookupVariable implements the three-step lookup protocol. explicit
// mode controls step 3: true fails with ErrUndefined, false implicitly
// declares an undefined variable in currentScope (class scopes refuse
// unless IsDeclaredField says the name is one of their own).
func (e *Environment) LookupVariable(name, currentScope string, explicit bool) (*Variable, error) {
	// Step 1: exact key hit.
	if v, ok := e.variables[name]; ok && v.VisibleFrom(currentScope) {
		return v, nil
	}

	// Step 2: accessible scopes, in order.
	for _, a := range e.accessibleScopes(currentScope) {
		key := Combine(a, name)
		if v, ok := e.variables[key]; ok && v.VisibleFrom(currentScope) {
			return v, nil
		}
		if strings.Contains(name, ".") {
			if v, err := e.fieldWalk(a, name, currentScope); v != nil || err != nil {
				return v, err
			}
		}
	}

	// Step 3: miss.
	if explicit {
		return nil, &ErrUndefined{Name: name}
	}
	if e.IsClassScope != nil && e.IsClassScope(currentScope) {
		leaf := name
		if idx := strings.LastIndex(name, "."); idx >= 0 {
			leaf = name[idx+1:]
		}
		if e.IsDeclaredField == nil || !e.IsDeclaredField(currentScope, leaf) {
			return nil, &ErrUndefined{Name: name}
		}
	}
	v := NewVariable(name, object.NewIdentifier(name), currentScope)
	e.DefineVariable(v)
	return v, nil
}

// fieldWalk implements step 2b: repeatedly strip name's rightmost
// component looking for a ClassInstance at A+"."+prefix, then resolves the
// stripped suffix as a field path on that instance.
func (e *Environment) fieldWalk(scopeA, name, currentScope string) (*Variable, error) {
	prefix := name
	var suffix []string
	for {
		idx := strings.LastIndex(prefix, ".")
		if idx < 0 {
			break
		}
		suffix = append([]string{prefix[idx+1:]}, suffix...)
		prefix = prefix[:idx]

		inst, ok := e.classInstanceAt(Combine(scopeA, prefix))
		if !ok {
			continue
		}
		return e.resolveFieldPath(inst, suffix, currentScope)
	}
	return nil, nil
}

// resolveFieldPath walks field names one at a time through nested
// ClassInstance values, returning a synthetic Variable wrapping the final
// field's reference.
func (e *Environment) resolveFieldPath(inst *object.ClassInstance, path []string, currentScope string) (*Variable, error) {
	var cur object.Value = inst
	for i, segment := range path {
		curInst, ok := cur.(*object.ClassInstance)
		if !ok {
			return nil, &ErrUndefined{Name: segment}
		}
		field, ok := curInst.Field(segment)
		if !ok {
			return nil, &ErrUndefined{Name: segment}
		}
		if i == len(path)-1 {
			ref, isRef := object.ResolveRef(field)
			if !isRef {
				ref = object.NewReference(field)
			}
			return &Variable{Name: segment, Reference: ref, DeclaringScope: curInst.InnerScope}, nil
		}
		cur = object.ResolveObj(field)
	}
	return nil, nil
}
