// Package scope implements Cantus's dotted scope paths and the
// variable/function/class environment keyed by them.
package scope

import "strings"

// Normalize splits name into (scope, leaf): if name has no '.', it belongs
// unchanged to the current scope. Otherwise everything but the last
// segment of name is folded into scope — unless that prefix already equals
// or is rooted under scope, in which case the duplication is dropped.
func Normalize(name, currentScope string) (newScope, leaf string) {
	idx := strings.LastIndex(name, ".")
	if idx < 0 {
		return currentScope, name
	}
	prefix, leafName := name[:idx], name[idx+1:]
	if prefix == currentScope || strings.HasPrefix(prefix, currentScope+".") {
		return prefix, leafName
	}
	return Combine(currentScope, prefix), leafName
}

// Combine strips a redundant prefix then joins scope and name: if name is
// already rooted at scope, it is returned unchanged.
func Combine(scope, name string) string {
	if name == scope || strings.HasPrefix(name, scope+".") {
		return name
	}
	if scope == "" {
		return name
	}
	if name == "" {
		return scope
	}
	return scope + "." + name
}

// IsParent reports whether b is a (or the) descendant of a.
func IsParent(a, b string) bool {
	return b == a || strings.HasPrefix(b, a+".")
}

// IsExternal reports whether a and b have different root (first-component)
// scopes.
func IsExternal(a, b string) bool {
	return base(a) != base(b)
}

func base(path string) string {
	if idx := strings.Index(path, "."); idx >= 0 {
		return path[:idx]
	}
	return path
}

// Parent strips the rightmost component of path; the root scope's parent
// is itself.
func Parent(path string) string {
	idx := strings.LastIndex(path, ".")
	if idx < 0 {
		return path
	}
	return path[:idx]
}

// Ancestors returns path, then each successive parent up to (and
// including) the root, in that order.
func Ancestors(path string) []string {
	var out []string
	cur := path
	for {
		out = append(out, cur)
		idx := strings.LastIndex(cur, ".")
		if idx < 0 {
			return out
		}
		cur = cur[:idx]
	}
}
