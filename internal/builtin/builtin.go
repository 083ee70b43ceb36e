// Package builtin implements Cantus's built-in function registry: an
// explicit name→arity→invoker table, rather than reflection-based
// method dispatch.
package builtin

import (
	"fmt"
	"math/big"
	"sort"

	"github.com/cantus-lang/cantus/internal/bignum"
	"github.com/cantus-lang/cantus/internal/cantuserr"
	"github.com/cantus-lang/cantus/internal/object"
)

// Builtin is one registered function: its arity bounds (MaxArgs == -1
// means variadic) and the invoker itself.
type Builtin struct {
	Name    string
	MinArgs int
	MaxArgs int
	Invoke  func(args []object.Value) (object.Value, error)
}

// Registry maps a built-in's name to its entry, a simple name-to-builtin
// table any RegisterBuiltin(name, fn)-style API needs underneath.
type Registry struct {
	byName map[string]*Builtin
}

// NewRegistry returns a Registry seeded with the core built-ins.
func NewRegistry() *Registry {
	r := &Registry{byName: map[string]*Builtin{}}
	for _, b := range coreBuiltins() {
		r.Register(b)
	}
	return r
}

// Register adds or replaces b, keyed by its name.
func (r *Registry) Register(b *Builtin) { r.byName[b.Name] = b }

// Lookup returns the built-in named name, if registered.
func (r *Registry) Lookup(name string) (*Builtin, bool) {
	b, ok := r.byName[name]
	return b, ok
}

// Call validates arity and invokes the named built-in.
func (r *Registry) Call(name string, args []object.Value) (object.Value, error) {
	b, ok := r.byName[name]
	if !ok {
		return nil, cantuserr.New(cantuserr.SyntaxError, "undefined function: "+name)
	}
	if len(args) < b.MinArgs || (b.MaxArgs >= 0 && len(args) > b.MaxArgs) {
		return nil, cantuserr.New(cantuserr.EvaluatorError, fmt.Sprintf("arity mismatch: '%s' takes %s, got %d", name, arityRange(b), len(args)))
	}
	return b.Invoke(args)
}

func coreBuiltins() []*Builtin {
	return []*Builtin{
		{Name: "type", MinArgs: 1, MaxArgs: 1, Invoke: builtinType},
		{Name: "len", MinArgs: 1, MaxArgs: 1, Invoke: builtinLen},
		{Name: "str", MinArgs: 1, MaxArgs: 1, Invoke: builtinStr},
		{Name: "sort", MinArgs: 1, MaxArgs: 1, Invoke: builtinSort},
		{Name: "round", MinArgs: 1, MaxArgs: 2, Invoke: builtinRound},
		{Name: "abs", MinArgs: 1, MaxArgs: 1, Invoke: unary("abs", bignum.Abs)},
		{Name: "sin", MinArgs: 1, MaxArgs: 1, Invoke: unaryErr("sin", bignum.Sin)},
		{Name: "cos", MinArgs: 1, MaxArgs: 1, Invoke: unaryErr("cos", bignum.Cos)},
		{Name: "tan", MinArgs: 1, MaxArgs: 1, Invoke: unaryErr("tan", bignum.Tan)},
		{Name: "sqrt", MinArgs: 1, MaxArgs: 1, Invoke: unaryErr("sqrt", bignum.Sqrt)},
		{Name: "pow", MinArgs: 2, MaxArgs: 2, Invoke: builtinPow},
	}
}

func arityRange(b *Builtin) string {
	if b.MaxArgs < 0 {
		return fmt.Sprintf("at least %d argument(s)", b.MinArgs)
	}
	if b.MinArgs == b.MaxArgs {
		return fmt.Sprintf("%d argument(s)", b.MinArgs)
	}
	return fmt.Sprintf("%d to %d argument(s)", b.MinArgs, b.MaxArgs)
}

func asNumber(v object.Value, fnName string) (*bignum.Decimal, error) {
	n, ok := object.ResolveObj(v).(*object.Number)
	if !ok {
		return nil, cantuserr.New(cantuserr.EvaluatorError, fmt.Sprintf("type error: '%s' does not accept %s", fnName, object.ResolveObj(v).Type()))
	}
	return n.Value, nil
}

// unary adapts a Decimal->Decimal function (no error) to a Builtin.Invoke.
func unary(name string, fn func(*bignum.Decimal) *bignum.Decimal) func([]object.Value) (object.Value, error) {
	return func(args []object.Value) (object.Value, error) {
		d, err := asNumber(args[0], name)
		if err != nil {
			return nil, err
		}
		return object.NewNumber(fn(d)), nil
	}
}

// unaryErr adapts a Decimal->Decimal function that can fail.
func unaryErr(name string, fn func(*bignum.Decimal) (*bignum.Decimal, error)) func([]object.Value) (object.Value, error) {
	return func(args []object.Value) (object.Value, error) {
		d, err := asNumber(args[0], name)
		if err != nil {
			return nil, err
		}
		result, err := fn(d)
		if err != nil {
			return nil, err
		}
		return object.NewNumber(result), nil
	}
}

func builtinType(args []object.Value) (object.Value, error) {
	v := object.ResolveObj(args[0])
	if inst, ok := v.(*object.ClassInstance); ok {
		return object.NewText(inst.Class.ClassName()), nil
	}
	return object.NewText(v.Type()), nil
}

func builtinStr(args []object.Value) (object.Value, error) {
	return object.NewText(object.ResolveObj(args[0]).String()), nil
}

// lengthOf reports v's element/character count, for the types the data
// model gives a length.
func lengthOf(v object.Value) (int, bool) {
	switch t := object.ResolveObj(v).(type) {
	case *object.Text:
		return len([]rune(t.Value)), true
	case *object.Matrix:
		return len(t.Items), true
	case *object.Tuple:
		return len(t.Items), true
	case *object.Set:
		return len(t.Elements()), true
	case *object.HashSet:
		return len(t.Elements()), true
	case *object.Dictionary:
		return t.Len(), true
	case *object.LinkedList:
		return t.Len(), true
	default:
		return 0, false
	}
}

func builtinLen(args []object.Value) (object.Value, error) {
	n, ok := lengthOf(args[0])
	if !ok {
		return nil, cantuserr.New(cantuserr.EvaluatorError, "type error: 'len' does not accept "+object.ResolveObj(args[0]).Type())
	}
	return object.NewNumber(bignum.NewFromInt(int64(n))), nil
}

// itemsOf returns v's elements as a plain slice, for the ordered
// sequence-like types sort accepts.
func itemsOf(v object.Value) ([]object.Value, bool) {
	switch t := object.ResolveObj(v).(type) {
	case *object.Matrix:
		return t.Items, true
	case *object.Tuple:
		return t.Items, true
	case *object.LinkedList:
		return t.Items(), true
	default:
		return nil, false
	}
}

// builtinSort reorders the receiver's own items in place: the receiver is
// the first argument to sort, and `lst.sort()` is typically called as a
// bare statement whose return value is discarded, so the mutation has to
// land on the bound Matrix/Tuple/LinkedList itself rather than a detached
// copy.
func builtinSort(args []object.Value) (object.Value, error) {
	receiver := object.ResolveObj(args[0])
	items, ok := itemsOf(receiver)
	if !ok {
		return nil, cantuserr.New(cantuserr.EvaluatorError, "type error: 'sort' does not accept "+receiver.Type())
	}
	sorted := make([]object.Value, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return object.CompareValues(object.ResolveObj(sorted[i]), object.ResolveObj(sorted[j])) < 0
	})
	switch t := receiver.(type) {
	case *object.Matrix:
		copy(t.Items, sorted)
	case *object.Tuple:
		copy(t.Items, sorted)
	case *object.LinkedList:
		t.SetItems(sorted)
	}
	return receiver, nil
}

func builtinRound(args []object.Value) (object.Value, error) {
	d, err := asNumber(args[0], "round")
	if err != nil {
		return nil, err
	}
	places := 0
	if len(args) == 2 {
		p, err := asNumber(args[1], "round")
		if err != nil {
			return nil, err
		}
		n, _ := p.AsInt()
		places = int(n)
	}
	return object.NewNumber(roundToPlaces(d, places)), nil
}

// roundToPlaces rounds d to the given number of decimal places, half to
// even. This is a decimal-place operation, distinct from
// bignum.Truncate's total-significant-digit precision — round(x, n)
// converts "how many decimal places to keep" into the equivalent
// significant-digit count Truncate expects.
func roundToPlaces(d *bignum.Decimal, places int) *bignum.Decimal {
	targetExponent := -places
	drop := targetExponent - d.Exponent()
	if drop <= 0 {
		return d
	}
	mantissaDigits := len(new(big.Int).Abs(d.Mantissa()).String())
	precision := mantissaDigits - drop
	if precision < 1 {
		// Every mantissa digit lies below the target place: the result is
		// 0 or one unit at targetExponent (an exact half goes to 0, the
		// even choice).
		unit := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(drop)), nil)
		twice := new(big.Int).Lsh(new(big.Int).Abs(d.Mantissa()), 1)
		if precision == 0 && twice.Cmp(unit) > 0 {
			return bignum.NewTracked(big.NewInt(int64(d.Mantissa().Sign())), targetExponent, d.SigFigs())
		}
		return bignum.NewTracked(big.NewInt(0), 0, d.SigFigs())
	}
	return bignum.Truncate(d, precision, true)
}

func builtinPow(args []object.Value) (object.Value, error) {
	base, err := asNumber(args[0], "pow")
	if err != nil {
		return nil, err
	}
	exp, err := asNumber(args[1], "pow")
	if err != nil {
		return nil, err
	}
	result, err := bignum.Pow(base, exp)
	if err != nil {
		return nil, err
	}
	return object.NewNumber(result), nil
}
