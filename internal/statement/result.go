package statement

import "github.com/cantus-lang/cantus/internal/object"

// Code is one of the five statement-result codes.
type Code int

const (
	// Resume is normal continuation: run the next statement in sequence.
	Resume Code = iota
	// Break bubbles out of enclosing non-loop statements until a
	// loop-kind statement (for/while/until/repeat/run) consumes it.
	Break
	// Continue is Break's sibling: skip to the loop's next iteration.
	Continue
	// Return bubbles out of every enclosing non-function statement.
	Return
	// BreakLevel terminates the current block and resumes the enclosing
	// statement with Resume (e.g. switch after a matched case).
	BreakLevel
)

// Result is a statement's outcome: the value it produced (if any) and
// which of the five codes it returned.
type Result struct {
	Value object.Value
	Code  Code
}

// Resumed wraps a value as a normal Resume outcome.
func Resumed(v object.Value) Result { return Result{Value: v, Code: Resume} }

// IsUndefined reports whether v is the tokenizer's unresolved-name
// placeholder, used by the "value is not undefined" answer-persistence
// check.
func IsUndefined(v object.Value) bool {
	if v == nil {
		return true
	}
	_, ok := object.ResolveObj(v).(*object.Identifier)
	return ok
}
