// Package operator implements Cantus's operator catalog: the table of
// binary, unary, and bracket operators the tokenizer and resolver consult,
// carrying precedence, associativity, and evaluation behavior.
package operator

import "github.com/cantus-lang/cantus/internal/object"

// Shape classifies how an operator attaches to its operand(s).
type Shape int

const (
	// Binary takes a left and a right operand.
	Binary Shape = iota
	// UnaryBefore is postfix-like: it applies to the operand on its left
	// (e.g. a factorial `!` or postfix `++`).
	UnaryBefore
	// UnaryAfter is prefix-like: it applies to the operand on its right
	// (e.g. unary minus, logical not).
	UnaryAfter
	// Bracket is a matched open/close pair; the close sign is located via
	// nested bracket matching, not ordinary precedence resolution.
	Bracket
)

// Precedence levels, lowest first, in total order:
// exponent > unary > multiplicative > additive > bitshift > comparison >
// bitwise-and > bitwise-xor > bitwise-or > logical-and > logical-xor >
// logical-or > assignment.
const (
	PrecAssignment = iota
	PrecLogicalOr
	PrecLogicalXor
	PrecLogicalAnd
	PrecBitwiseOr
	PrecBitwiseXor
	PrecBitwiseAnd
	PrecComparison
	PrecBitshift
	PrecAdditive
	PrecMultiplicative
	PrecUnary
	PrecExponent
)

// Executor evaluates an operator against one (unary) or two (binary)
// already-dereferenced operands. It may return an object.SystemMessage
// with Kind object.SystemMessageDefer to ask the resolver to retry the
// operation against the next same-sign operator instance.
type Executor func(operands ...object.Value) (object.Value, error)

// Operator is one catalog entry. Signs holds every textual spelling that
// maps to this operator; Signs[0] is canonical (used for rendering/lookup
// ties).
type Operator struct {
	Signs        []string
	Shape        Shape
	Precedence   int
	ByReference  bool
	IsAssignment bool
	// Close is the matching close sign, only meaningful for Bracket shape.
	Close string
	Exec  Executor
}

func (op *Operator) Sign() string { return op.Signs[0] }

// Registry is the operator catalog: every Operator the tokenizer and
// resolver can look up by sign, indexed for longest-prefix scanning and
// precedence-level sweeps.
type Registry struct {
	operators []*Operator
	// bySign holds every operator registered under a given sign, in
	// registration order. A sign like "-" legitimately carries more than
	// one entry (binary subtraction and unary-after negation); callers
	// that care about shape use LookupShape/LongestPrefixMatchAll.
	bySign        map[string][]*Operator
	brackets      map[string]*Operator // open sign -> operator
	closingSigns  map[string]bool
	maxSignLength int
	defaultOp     *Operator
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		bySign:       map[string][]*Operator{},
		brackets:     map[string]*Operator{},
		closingSigns: map[string]bool{},
	}
}

// Register adds op to the catalog under every one of its signs.
func (r *Registry) Register(op *Operator) {
	r.operators = append(r.operators, op)
	for _, s := range op.Signs {
		r.bySign[s] = append(r.bySign[s], op)
		if len(s) > r.maxSignLength {
			r.maxSignLength = len(s)
		}
	}
	if op.Shape == Bracket {
		r.brackets[op.Sign()] = op
		r.closingSigns[op.Close] = true
	}
}

// SetDefault marks op as the operator spliced in between two adjacent
// operands the tokenizer found with no explicit sign between them (e.g.
// implicit multiplication `xy`).
func (r *Registry) SetDefault(op *Operator) { r.defaultOp = op }

// Default returns the fill-in operator for juxtaposed operands.
func (r *Registry) Default() *Operator { return r.defaultOp }

// MaxSignLength is the longest registered operator sign, bounding the
// tokenizer's longest-prefix scan window.
func (r *Registry) MaxSignLength() int { return r.maxSignLength }

// Lookup returns the first operator registered under sign, if any. For
// signs with more than one shape (e.g. "-"), this is the binary/primary
// entry if one exists, since it is registered first in the catalog; use
// LookupShape to pick a specific shape.
func (r *Registry) Lookup(sign string) (*Operator, bool) {
	ops := r.bySign[sign]
	if len(ops) == 0 {
		return nil, false
	}
	return ops[0], true
}

// LookupShape returns the operator registered under sign with the given
// shape, if any.
func (r *Registry) LookupShape(sign string, shape Shape) (*Operator, bool) {
	for _, op := range r.bySign[sign] {
		if op.Shape == shape {
			return op, true
		}
	}
	return nil, false
}

// LongestPrefixMatch scans s from the start for the longest registered
// operator sign, returning the first-registered operator under that sign
// and the number of bytes it consumed. ok is false if no registered sign
// prefixes s.
func (r *Registry) LongestPrefixMatch(s string) (op *Operator, length int, ok bool) {
	ops, l, found := r.LongestPrefixMatchAll(s)
	if !found {
		return nil, 0, false
	}
	return ops[0], l, true
}

// LongestPrefixMatchAll is LongestPrefixMatch but returns every operator
// registered under the matched sign, letting the caller disambiguate by
// shape (e.g. the tokenizer picks binary vs. unary-after based on whether
// a left operand is already pending).
func (r *Registry) LongestPrefixMatchAll(s string) (ops []*Operator, length int, ok bool) {
	max := r.maxSignLength
	if max > len(s) {
		max = len(s)
	}
	for l := max; l > 0; l-- {
		if candidates, found := r.bySign[s[:l]]; found {
			return candidates, l, true
		}
	}
	return nil, 0, false
}

// BracketFor returns the operator registered for open bracket sign.
func (r *Registry) BracketFor(open string) (*Operator, bool) {
	op, ok := r.brackets[open]
	return op, ok
}

// IsClosingSign reports whether s is the close half of some registered
// bracket pair.
func (r *Registry) IsClosingSign(s string) bool { return r.closingSigns[s] }

// PrecedenceLevels returns every distinct precedence level that has at
// least one non-bracket operator registered, highest first (the order the
// resolver sweeps in).
func (r *Registry) PrecedenceLevels() []int {
	seen := map[int]bool{}
	var levels []int
	for _, op := range r.operators {
		if op.Shape == Bracket {
			continue
		}
		if !seen[op.Precedence] {
			seen[op.Precedence] = true
			levels = append(levels, op.Precedence)
		}
	}
	// Insertion-sort descending; the catalog is small enough that this
	// need not be clever.
	for i := 1; i < len(levels); i++ {
		for j := i; j > 0 && levels[j] > levels[j-1]; j-- {
			levels[j], levels[j-1] = levels[j-1], levels[j]
		}
	}
	return levels
}
