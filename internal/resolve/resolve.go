// Package resolve implements Cantus's operator resolver: the precedence
// sweep that reduces a tokenizer.TokenList down to a single value. It
// walks precedence levels highest to lowest over a linked-removal token
// list, consuming operators and splicing their results back into the
// list until one value remains.
package resolve

import (
	"github.com/cantus-lang/cantus/internal/cantuserr"
	"github.com/cantus-lang/cantus/internal/object"
	"github.com/cantus-lang/cantus/internal/operator"
	"github.com/cantus-lang/cantus/internal/tokenizer"
)

// chain is the linked-removal token list: nodes addressed by index, with
// prev/next forming a doubly linked live sequence. Resolving an operator
// splices its two participating nodes down to one, the same "collapse
// toward a neighbor" shape as any in-place slice-removal idiom, just over
// a linked view instead of a slice.
type chain struct {
	values []object.Value
	ops    []*operator.Operator
	prev   []int
	next   []int
	live   []bool
}

const none = -1

func newChain(list *tokenizer.TokenList) *chain {
	n := len(list.Objects)
	c := &chain{
		values: append([]object.Value(nil), list.Objects...),
		ops:    append([]*operator.Operator(nil), list.Operators...),
		prev:   make([]int, n),
		next:   make([]int, n),
		live:   make([]bool, n),
	}
	for i := 0; i < n; i++ {
		c.prev[i] = i - 1
		if i == n-1 {
			c.next[i] = none
		} else {
			c.next[i] = i + 1
		}
		c.live[i] = true
	}
	return c
}

// remove splices node i out of the live sequence.
func (c *chain) remove(i int) {
	p, nx := c.prev[i], c.next[i]
	if p != none {
		c.next[p] = nx
	}
	if nx != none {
		c.prev[nx] = p
	}
	c.live[i] = false
}

func (c *chain) liveCount() int {
	n := 0
	for _, alive := range c.live {
		if alive {
			n++
		}
	}
	return n
}

func (c *chain) head() int {
	for i := range c.live {
		if c.live[i] {
			return i
		}
	}
	return none
}

// Resolve reduces expr's already-tokenized list to one value by sweeping
// every precedence level, highest first. Assignment-class operators
// within a level are enumerated right-to-left; every other level is
// enumerated left-to-right.
func Resolve(list *tokenizer.TokenList, reg *operator.Registry) (object.Value, error) {
	if len(list.Objects) == 0 {
		return nil, cantuserr.New(cantuserr.SyntaxError, "empty expression")
	}
	c := newChain(list)

	for _, level := range reg.PrecedenceLevels() {
		for {
			progress, err := c.sweepLevel(level, reg)
			if err != nil {
				return nil, err
			}
			if !progress {
				break
			}
		}
	}

	if c.liveCount() != 1 {
		return nil, cantuserr.New(cantuserr.SyntaxError, "could not fully resolve expression")
	}
	h := c.head()
	if c.values[h] == nil {
		return nil, cantuserr.New(cantuserr.SyntaxError, "empty expression")
	}
	return c.values[h], nil
}

// sweepLevel runs one full pass over every live operator at precedence
// level, reporting whether it made any progress: if one full sweep makes
// no progress at this level, the caller breaks out.
func (c *chain) sweepLevel(level int, reg *operator.Registry) (bool, error) {
	indices := c.candidateIndices(level)
	if level == operator.PrecAssignment {
		reverse(indices)
	}
	progress := false
	for _, k := range indices {
		if !c.live[k] || c.ops[k] == nil || c.ops[k].Precedence != level {
			continue
		}
		did, err := c.resolveOne(k, level, reg)
		if err != nil {
			return false, err
		}
		if did {
			progress = true
		}
	}
	return progress, nil
}

func (c *chain) candidateIndices(level int) []int {
	var out []int
	for i := range c.live {
		if c.live[i] && c.ops[i] != nil && c.ops[i].Precedence == level {
			out = append(out, i)
		}
	}
	return out
}

func reverse(s []int) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

// resolveOne attempts to resolve the operator at node k, returning
// whether it made progress this pass (false means deferred).
func (c *chain) resolveOne(k, level int, reg *operator.Registry) (bool, error) {
	op := c.ops[k]
	switch op.Shape {
	case operator.Binary:
		return c.resolveBinary(k, level, op)
	case operator.UnaryBefore:
		return c.resolvePostfix(k, reg, op)
	case operator.UnaryAfter:
		return c.resolvePrefix(k, level, reg, op)
	default:
		return false, cantuserr.New(cantuserr.EvaluatorError, "bracket operator reached the resolver")
	}
}

func (c *chain) resolveBinary(k, level int, op *operator.Operator) (bool, error) {
	l := c.prev[k]
	if l == none {
		return false, cantuserr.New(cantuserr.SyntaxError, "operator '"+op.Sign()+"' is missing a left operand")
	}
	if c.values[k] == nil {
		r := c.next[k]
		if r != none && c.ops[r] != nil && c.ops[r].Precedence <= level {
			return false, nil // defer: right side not resolved yet
		}
		return false, cantuserr.New(cantuserr.SyntaxError, "operator '"+op.Sign()+"' is missing a right operand")
	}

	left := deref(c.values[l], op)
	right := deref(c.values[k], op)
	result, err := op.Exec(left, right)
	if err != nil {
		return false, err
	}
	if deferred(result) {
		return false, nil
	}

	// The merge always folds toward l, never k: l's own operator (the one
	// that links l to ITS left neighbor) is still pending whenever l hasn't
	// been resolved at a higher precedence level yet, and that operator
	// needs l's own slot to hold its eventual right operand. Folding toward
	// k instead would silently drop that pending operator — e.g. `2 + 3 *
	// 4` resolving `*` first would erase the `+` the moment it removed node
	// l — and the same holds for right-to-left chains like `a = b = 5`.
	c.values[l] = result
	c.remove(k)
	return true, nil
}

func (c *chain) resolvePostfix(k int, reg *operator.Registry, op *operator.Operator) (bool, error) {
	l := c.prev[k]
	if l == none {
		return false, cantuserr.New(cantuserr.SyntaxError, "operator '"+op.Sign()+"' is missing a left operand")
	}
	operand := deref(c.values[l], op)
	result, err := op.Exec(operand)
	if err != nil {
		return false, err
	}
	if deferred(result) {
		return false, nil
	}
	c.values[l] = result
	if c.values[k] != nil {
		c.ops[k] = reg.Default()
	} else {
		c.remove(k)
	}
	return true, nil
}

func (c *chain) resolvePrefix(k, level int, reg *operator.Registry, op *operator.Operator) (bool, error) {
	if c.values[k] == nil {
		r := c.next[k]
		if r != none && c.ops[r] != nil && c.ops[r].Precedence == level {
			return false, nil // defer: chained prefix, inner operand not ready
		}
		return false, cantuserr.New(cantuserr.SyntaxError, "operator '"+op.Sign()+"' is missing an operand")
	}

	operand := deref(c.values[k], op)
	result, err := op.Exec(operand)
	if err != nil {
		return false, err
	}
	if deferred(result) {
		return false, nil
	}

	l := c.prev[k]
	switch {
	case l == none:
		c.values[k] = result
		c.ops[k] = nil
	case c.values[l] != nil:
		c.values[k] = result
		c.ops[k] = reg.Default()
	default:
		c.values[l] = result
		c.remove(k)
	}
	return true, nil
}

// deref applies the dereferencing rule: unless the operator is
// by_reference, an operand is resolved past any Reference indirection and
// deep-copied before being handed to the executor, so built-in operators
// never mutate a caller's binding through a loose alias.
func deref(v object.Value, op *operator.Operator) object.Value {
	if op.ByReference {
		return v
	}
	return object.ResolveObj(v).DeepCopy()
}

// deferred reports whether an executor signalled a defer: advance to the
// next operator with the same sign. The current
// built-in catalog never emits this signal (no operator has more than
// one type-based overload yet); callers simply treat it as "no progress
// this pass", which the level's retry loop and the final live-count
// check turn into either eventual resolution (a later same-sign operator
// elsewhere in the list) or a clean "could not fully resolve" error.
func deferred(v object.Value) bool {
	msg, ok := object.ResolveObj(v).(*object.SystemMessage)
	return ok && msg.Kind == object.SystemMessageDefer
}
