package operator

import (
	"fmt"

	"github.com/cantus-lang/cantus/internal/bignum"
	"github.com/cantus-lang/cantus/internal/object"
)

// typeError reports an operator applied to operand types it does not
// support.
func typeError(sign string, operands ...object.Value) error {
	types := make([]string, len(operands))
	for i, o := range operands {
		types[i] = o.Type()
	}
	return fmt.Errorf("type error: %q does not support operand types %v", sign, types)
}

func asNumber(v object.Value) (*bignum.Decimal, bool) {
	n, ok := object.ResolveObj(v).(*object.Number)
	if !ok {
		return nil, false
	}
	return n.Value, true
}

func asText(v object.Value) (string, bool) {
	t, ok := object.ResolveObj(v).(*object.Text)
	if !ok {
		return "", false
	}
	return t.Value, true
}

func asBool(v object.Value) (bool, bool) {
	b, ok := object.ResolveObj(v).(*object.Boolean)
	if !ok {
		return false, false
	}
	return b.Value, true
}

func truthy(v object.Value) bool {
	v = object.ResolveObj(v)
	switch t := v.(type) {
	case *object.Boolean:
		return t.Value
	case *object.Number:
		return !bignum.Equals(t.Value, bignum.Zero())
	case *object.Text:
		return t.Value != ""
	default:
		return true
	}
}

func asInt64(v object.Value) (int64, bool) {
	n, ok := asNumber(v)
	if !ok {
		return 0, false
	}
	return n.AsInt()
}

// ---- arithmetic -----------------------------------------------------------

func addExec(operands ...object.Value) (object.Value, error) {
	a, b := operands[0], operands[1]
	if na, ok := asNumber(a); ok {
		if nb, ok := asNumber(b); ok {
			return object.NewNumber(bignum.Add(na, nb)), nil
		}
	}
	if ta, ok := asText(a); ok {
		return object.NewText(ta + object.ResolveObj(b).String()), nil
	}
	if ma, ok := object.ResolveObj(a).(*object.Matrix); ok {
		if mb, ok := object.ResolveObj(b).(*object.Matrix); ok {
			items := append(append([]object.Value{}, ma.Items...), mb.Items...)
			return object.NewMatrix(items), nil
		}
	}
	return nil, typeError("+", a, b)
}

func subExec(operands ...object.Value) (object.Value, error) {
	na, ok := asNumber(operands[0])
	if !ok {
		return nil, typeError("-", operands...)
	}
	nb, ok := asNumber(operands[1])
	if !ok {
		return nil, typeError("-", operands...)
	}
	return object.NewNumber(bignum.Sub(na, nb)), nil
}

func mulExec(operands ...object.Value) (object.Value, error) {
	a, b := operands[0], operands[1]
	if na, ok := asNumber(a); ok {
		if nb, ok := asNumber(b); ok {
			return object.NewNumber(bignum.Mul(na, nb)), nil
		}
	}
	if ta, ok := asText(a); ok {
		if n, ok := asNumber(b); ok {
			return object.NewText(repeatText(ta, n)), nil
		}
	}
	return nil, typeError("*", a, b)
}

func repeatText(s string, n *bignum.Decimal) string {
	count, ok := n.AsInt()
	if !ok || count <= 0 {
		return ""
	}
	out := make([]byte, 0, len(s)*int(count))
	for i := int64(0); i < count; i++ {
		out = append(out, s...)
	}
	return string(out)
}

func divExec(operands ...object.Value) (object.Value, error) {
	na, ok := asNumber(operands[0])
	if !ok {
		return nil, typeError("/", operands...)
	}
	nb, ok := asNumber(operands[1])
	if !ok {
		return nil, typeError("/", operands...)
	}
	result, err := bignum.Div(na, nb)
	if err != nil {
		return nil, err
	}
	return object.NewNumber(result), nil
}

func modExec(operands ...object.Value) (object.Value, error) {
	na, ok := asNumber(operands[0])
	if !ok {
		return nil, typeError("%", operands...)
	}
	nb, ok := asNumber(operands[1])
	if !ok {
		return nil, typeError("%", operands...)
	}
	result, err := bignum.Mod(na, nb)
	if err != nil {
		return nil, err
	}
	return object.NewNumber(result), nil
}

func powExec(operands ...object.Value) (object.Value, error) {
	na, ok := asNumber(operands[0])
	if !ok {
		return nil, typeError("**", operands...)
	}
	nb, ok := asNumber(operands[1])
	if !ok {
		return nil, typeError("**", operands...)
	}
	result, err := bignum.Pow(na, nb)
	if err != nil {
		return nil, err
	}
	return object.NewNumber(result), nil
}

func negExec(operands ...object.Value) (object.Value, error) {
	n, ok := asNumber(operands[0])
	if !ok {
		return nil, typeError("-(unary)", operands...)
	}
	return object.NewNumber(bignum.Neg(n)), nil
}

// ---- comparison -------------------------------------------------------------

func equalsExec(operands ...object.Value) (object.Value, error) {
	return object.NewBoolean(object.ResolveObj(operands[0]).Equals(operands[1])), nil
}

func notEqualsExec(operands ...object.Value) (object.Value, error) {
	return object.NewBoolean(!object.ResolveObj(operands[0]).Equals(operands[1])), nil
}

func numericCompare(sign string, cmp func(c int) bool) Executor {
	return func(operands ...object.Value) (object.Value, error) {
		na, ok := asNumber(operands[0])
		if !ok {
			return nil, typeError(sign, operands...)
		}
		nb, ok := asNumber(operands[1])
		if !ok {
			return nil, typeError(sign, operands...)
		}
		return object.NewBoolean(cmp(bignum.Cmp(na, nb))), nil
	}
}

// ---- logical ----------------------------------------------------------------

func andExec(operands ...object.Value) (object.Value, error) {
	return object.NewBoolean(truthy(operands[0]) && truthy(operands[1])), nil
}

func orExec(operands ...object.Value) (object.Value, error) {
	return object.NewBoolean(truthy(operands[0]) || truthy(operands[1])), nil
}

func logicalXorExec(operands ...object.Value) (object.Value, error) {
	return object.NewBoolean(truthy(operands[0]) != truthy(operands[1])), nil
}

func notExec(operands ...object.Value) (object.Value, error) {
	return object.NewBoolean(!truthy(operands[0])), nil
}

// ---- bitwise (operate on exact-integer Numbers) ------------------------------

func bitwiseOp(sign string, fn func(a, b int64) int64) Executor {
	return func(operands ...object.Value) (object.Value, error) {
		a, ok := asInt64(operands[0])
		if !ok {
			return nil, typeError(sign, operands...)
		}
		b, ok := asInt64(operands[1])
		if !ok {
			return nil, typeError(sign, operands...)
		}
		return object.NewNumber(bignum.NewFromInt(fn(a, b))), nil
	}
}

func bitwiseNotExec(operands ...object.Value) (object.Value, error) {
	a, ok := asInt64(operands[0])
	if !ok {
		return nil, typeError("~", operands...)
	}
	return object.NewNumber(bignum.NewFromInt(^a)), nil
}

// ---- assignment ---------------------------------------------------------------

// assignTarget resolves the unevaluated left operand (which the resolver
// passes through untouched for ByReference operators) down to the
// Reference whose cell should be mutated.
func assignTarget(v object.Value) (*object.Reference, error) {
	ref, ok := object.ResolveRef(v)
	if !ok {
		return nil, fmt.Errorf("assignment target is not a reference")
	}
	return ref, nil
}

func assignExec(operands ...object.Value) (object.Value, error) {
	ref, err := assignTarget(operands[0])
	if err != nil {
		return nil, err
	}
	value := object.ResolveObj(operands[1]).DeepCopy()
	ref.Set(value)
	return value, nil
}

// compoundAssign builds `lhs op= rhs` from a plain binary Executor: read
// the current value, apply base, store, return the new value.
func compoundAssign(base Executor) Executor {
	return func(operands ...object.Value) (object.Value, error) {
		ref, err := assignTarget(operands[0])
		if err != nil {
			return nil, err
		}
		result, err := base(ref.GetValue(), object.ResolveObj(operands[1]))
		if err != nil {
			return nil, err
		}
		ref.Set(result)
		return result, nil
	}
}

// postfix increment/decrement (UnaryBefore: applies to the left operand).

func incrExec(operands ...object.Value) (object.Value, error) {
	ref, err := assignTarget(operands[0])
	if err != nil {
		return nil, err
	}
	n, ok := asNumber(ref.GetValue())
	if !ok {
		return nil, typeError("++", operands...)
	}
	old := n
	ref.Set(object.NewNumber(bignum.Add(n, bignum.One())))
	return object.NewNumber(old), nil
}

func decrExec(operands ...object.Value) (object.Value, error) {
	ref, err := assignTarget(operands[0])
	if err != nil {
		return nil, err
	}
	n, ok := asNumber(ref.GetValue())
	if !ok {
		return nil, typeError("--", operands...)
	}
	old := n
	ref.Set(object.NewNumber(bignum.Sub(n, bignum.One())))
	return object.NewNumber(old), nil
}

// DefaultRegistry returns a Registry seeded with Cantus's full operator
// catalog: every symbol and precedence level a sign-table/parser pair
// would need to resolve expressions.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	mul := &Operator{Signs: []string{"*"}, Shape: Binary, Precedence: PrecMultiplicative, Exec: mulExec}
	r.Register(mul)
	r.SetDefault(mul)
	r.Register(&Operator{Signs: []string{"/"}, Shape: Binary, Precedence: PrecMultiplicative, Exec: divExec})
	r.Register(&Operator{Signs: []string{"%"}, Shape: Binary, Precedence: PrecMultiplicative, Exec: modExec})

	r.Register(&Operator{Signs: []string{"+"}, Shape: Binary, Precedence: PrecAdditive, Exec: addExec})
	r.Register(&Operator{Signs: []string{"-"}, Shape: Binary, Precedence: PrecAdditive, Exec: subExec})

	r.Register(&Operator{Signs: []string{"**"}, Shape: Binary, Precedence: PrecExponent, Exec: powExec})

	r.Register(&Operator{Signs: []string{"-"}, Shape: UnaryAfter, Precedence: PrecUnary, Exec: negExec})
	r.Register(&Operator{Signs: []string{"!", "not"}, Shape: UnaryAfter, Precedence: PrecUnary, Exec: notExec})
	r.Register(&Operator{Signs: []string{"~"}, Shape: UnaryAfter, Precedence: PrecUnary, Exec: bitwiseNotExec})
	r.Register(&Operator{Signs: []string{"++"}, Shape: UnaryBefore, Precedence: PrecUnary, ByReference: true, Exec: incrExec})
	r.Register(&Operator{Signs: []string{"--"}, Shape: UnaryBefore, Precedence: PrecUnary, ByReference: true, Exec: decrExec})

	r.Register(&Operator{Signs: []string{"<<"}, Shape: Binary, Precedence: PrecBitshift, Exec: bitwiseOp("<<", func(a, b int64) int64 { return a << uint(b) })})
	r.Register(&Operator{Signs: []string{">>"}, Shape: Binary, Precedence: PrecBitshift, Exec: bitwiseOp(">>", func(a, b int64) int64 { return a >> uint(b) })})

	r.Register(&Operator{Signs: []string{"=="}, Shape: Binary, Precedence: PrecComparison, Exec: equalsExec})
	r.Register(&Operator{Signs: []string{"!="}, Shape: Binary, Precedence: PrecComparison, Exec: notEqualsExec})
	r.Register(&Operator{Signs: []string{"<="}, Shape: Binary, Precedence: PrecComparison, Exec: numericCompare("<=", func(c int) bool { return c <= 0 })})
	r.Register(&Operator{Signs: []string{">="}, Shape: Binary, Precedence: PrecComparison, Exec: numericCompare(">=", func(c int) bool { return c >= 0 })})
	r.Register(&Operator{Signs: []string{"<"}, Shape: Binary, Precedence: PrecComparison, Exec: numericCompare("<", func(c int) bool { return c < 0 })})
	r.Register(&Operator{Signs: []string{">"}, Shape: Binary, Precedence: PrecComparison, Exec: numericCompare(">", func(c int) bool { return c > 0 })})

	r.Register(&Operator{Signs: []string{"&"}, Shape: Binary, Precedence: PrecBitwiseAnd, Exec: bitwiseOp("&", func(a, b int64) int64 { return a & b })})
	r.Register(&Operator{Signs: []string{"^"}, Shape: Binary, Precedence: PrecBitwiseXor, Exec: bitwiseOp("^", func(a, b int64) int64 { return a ^ b })})
	r.Register(&Operator{Signs: []string{"|"}, Shape: Binary, Precedence: PrecBitwiseOr, Exec: bitwiseOp("|", func(a, b int64) int64 { return a | b })})

	r.Register(&Operator{Signs: []string{"&&", "and"}, Shape: Binary, Precedence: PrecLogicalAnd, Exec: andExec})
	r.Register(&Operator{Signs: []string{"xor"}, Shape: Binary, Precedence: PrecLogicalXor, Exec: logicalXorExec})
	r.Register(&Operator{Signs: []string{"||", "or"}, Shape: Binary, Precedence: PrecLogicalOr, Exec: orExec})

	r.Register(&Operator{Signs: []string{"="}, Shape: Binary, Precedence: PrecAssignment, ByReference: true, IsAssignment: true, Exec: assignExec})
	r.Register(&Operator{Signs: []string{"+="}, Shape: Binary, Precedence: PrecAssignment, ByReference: true, IsAssignment: true, Exec: compoundAssign(addExec)})
	r.Register(&Operator{Signs: []string{"-="}, Shape: Binary, Precedence: PrecAssignment, ByReference: true, IsAssignment: true, Exec: compoundAssign(subExec)})
	r.Register(&Operator{Signs: []string{"*="}, Shape: Binary, Precedence: PrecAssignment, ByReference: true, IsAssignment: true, Exec: compoundAssign(mulExec)})
	r.Register(&Operator{Signs: []string{"/="}, Shape: Binary, Precedence: PrecAssignment, ByReference: true, IsAssignment: true, Exec: compoundAssign(divExec)})
	r.Register(&Operator{Signs: []string{"%="}, Shape: Binary, Precedence: PrecAssignment, ByReference: true, IsAssignment: true, Exec: compoundAssign(modExec)})
	r.Register(&Operator{Signs: []string{":="}, Shape: Binary, Precedence: PrecAssignment, ByReference: true, IsAssignment: true, Exec: assignExec})

	r.Register(&Operator{Signs: []string{"("}, Shape: Bracket, Close: ")"})
	r.Register(&Operator{Signs: []string{"["}, Shape: Bracket, Close: "]"})
	r.Register(&Operator{Signs: []string{"{"}, Shape: Bracket, Close: "}"})

	return r
}

// AsBool, AsText are exported for internal/resolve and internal/statement,
// which need the same dereference-and-assert idiom this file already uses
// internally.
func AsBool(v object.Value) (bool, bool) { return asBool(v) }
func AsText(v object.Value) (string, bool) { return asText(v) }
func AsNumber(v object.Value) (*bignum.Decimal, bool) { return asNumber(v) }
func Truthy(v object.Value) bool { return truthy(v) }
