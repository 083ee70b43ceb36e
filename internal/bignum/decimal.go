// Package bignum implements Cantus's arbitrary-precision decimal type.
//
// A Decimal is a triple (mantissa, exponent, sigFigs) representing the
// value mantissa * 10^exponent, plus a record of the last operation kind
// applied to it (addsub or muldiv). Arithmetic propagates significant
// figures the way a chemistry student does it by hand: +/- tracks the
// least-precise decimal place, */÷ tracks the fewest significant digits,
// and crossing from one operator kind to the other bakes the pending
// rounding into the mantissa first.
package bignum

import (
	"math"
	"math/big"
	"strings"
)

// Infinite marks a Decimal whose significant-figure count is not tracked
// ("exact"). Arithmetic treats it as larger than any finite sig-fig count.
const Infinite = math.MaxInt32

// MaxPrecision is the fixed maximum precision P that division truncates to.
const MaxPrecision = 50

// maxPowSteps bounds exact integer exponentiation before falling back to
// the floating decomposition path (and ultimately math-overflow).
const maxPowSteps = 10000

// maxDecompositionSteps bounds the 100-sized exponent decomposition used by
// Pow/Exp so a runaway exponent fails fast instead of spinning forever.
const maxDecompositionSteps = 100000

// LastOp records which operator kind was last applied to a Decimal.
type LastOp int

const (
	OpNone LastOp = iota
	OpAddSub
	OpMulDiv
)

// Decimal is an immutable arbitrary-precision decimal value.
type Decimal struct {
	mantissa  *big.Int
	exponent  int
	sigFigs   int
	lastOp    LastOp
	undefined bool
}

// Kind identifies a domain-specific arithmetic failure.
type Kind int

const (
	KindDivisionByZero Kind = iota
	KindMathOverflow
	KindDomain
)

// Error is a BigDecimal arithmetic fault.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

func newError(k Kind, msg string) *Error { return &Error{Kind: k, Message: msg} }

// Undefined returns the distinguished undefined Decimal. It propagates
// through every operation: any operation with an undefined operand
// produces undefined.
func Undefined() *Decimal {
	return &Decimal{mantissa: big.NewInt(0), undefined: true, sigFigs: Infinite}
}

// IsUndefined reports whether d is the undefined value.
func (d *Decimal) IsUndefined() bool { return d.undefined }

// Zero returns the exact value 0.
func Zero() *Decimal { return &Decimal{mantissa: big.NewInt(0), sigFigs: Infinite} }

// One returns the exact value 1.
func One() *Decimal { return &Decimal{mantissa: big.NewInt(1), sigFigs: Infinite} }

// NewFromInt builds an exact Decimal from an integer.
func NewFromInt(v int64) *Decimal {
	return normalize(&Decimal{mantissa: big.NewInt(v), exponent: 0, sigFigs: Infinite})
}

// NewExact builds an exact Decimal from a mantissa/exponent pair.
func NewExact(mantissa *big.Int, exponent int) *Decimal {
	return normalize(&Decimal{mantissa: new(big.Int).Set(mantissa), exponent: exponent, sigFigs: Infinite})
}

// NewTracked builds a Decimal with an explicit significant-figure count.
func NewTracked(mantissa *big.Int, exponent, sigFigs int) *Decimal {
	return normalize(&Decimal{mantissa: new(big.Int).Set(mantissa), exponent: exponent, sigFigs: sigFigs})
}

// NewFromFloat builds a Decimal from a float64 by an iterative scale-factor
// search: it tries successively larger powers of ten until multiplying the
// float by that scale lands on (or very near) an integer.
func NewFromFloat(f float64) *Decimal {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Undefined()
	}
	if f == 0 {
		return Zero()
	}
	neg := f < 0
	if neg {
		f = -f
	}
	scale := 1.0
	exponent := 0
	for i := 0; i < 18; i++ {
		scaled := f * scale
		if scaled == math.Floor(scaled) {
			mant := new(big.Int)
			big.NewFloat(scaled).Int(mant)
			if neg {
				mant.Neg(mant)
			}
			return normalize(&Decimal{mantissa: mant, exponent: -exponent, sigFigs: Infinite})
		}
		scale *= 10
		exponent++
	}
	// Escape hatch: round at 17 significant digits of scale.
	scaled := f * scale / 10
	mant := new(big.Int)
	big.NewFloat(math.Round(scaled)).Int(mant)
	if neg {
		mant.Neg(mant)
	}
	return normalize(&Decimal{mantissa: mant, exponent: -(exponent - 1), sigFigs: Infinite})
}

// NewFromString parses a plain decimal literal ("123", "12.340", "-0.5")
// into an exact Decimal. sigFigs tracking for literals is the caller's
// responsibility (significant-figures mode re-derives it from the
// rendered digit count before handing the literal to this constructor).
func NewFromString(s string) (*Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, false
	}
	neg := false
	if s[0] == '+' || s[0] == '-' {
		neg = s[0] == '-'
		s = s[1:]
	}
	intPart, fracPart, hasFrac := strings.Cut(s, ".")
	if intPart == "" && fracPart == "" {
		return nil, false
	}
	digits := intPart + fracPart
	if digits == "" {
		digits = "0"
	}
	for _, c := range digits {
		if c < '0' || c > '9' {
			return nil, false
		}
	}
	exponent := 0
	if hasFrac {
		exponent = -len(fracPart)
	}
	mant, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return nil, false
	}
	if neg {
		mant.Neg(mant)
	}
	return normalize(&Decimal{mantissa: mant, exponent: exponent, sigFigs: Infinite}), true
}

// Mantissa, Exponent, SigFigs, and LastOperation expose the triple for
// callers that need to inspect or re-derive a Decimal (rendering, object
// model string conversion, significant-figures mode bookkeeping).
func (d *Decimal) Mantissa() *big.Int   { return new(big.Int).Set(d.mantissa) }
func (d *Decimal) Exponent() int        { return d.exponent }
func (d *Decimal) SigFigs() int         { return d.sigFigs }
func (d *Decimal) LastOperation() LastOp { return d.lastOp }

// WithSigFigs returns a copy of d with an explicit significant-figure
// count, used by significant-figures mode when a literal is re-entered
// with trailing zeros the tokenizer wants honored (e.g. "1.20").
func (d *Decimal) WithSigFigs(sigFigs int) *Decimal {
	cp := *d
	cp.sigFigs = sigFigs
	return &cp
}

// SigFigsOfLiteral derives a significant-figure count straight from a raw
// decimal literal's digit text, before NewFromString's normalize pass
// strips trailing mantissa zeros (the only place that loss happens):
// leading zeros never count, but a trailing zero written explicitly after
// a decimal point does ("1.20" is 3 sig figs, "0.034" is 2). Used by
// significant-figures mode to tag a literal's Decimal via WithSigFigs at
// the moment it is scanned.
func SigFigsOfLiteral(text string) int {
	s := text
	if len(s) > 0 && (s[0] == '+' || s[0] == '-') {
		s = s[1:]
	}
	if i := strings.IndexAny(s, "eE"); i >= 0 {
		s = s[:i]
	}
	intPart, fracPart, _ := strings.Cut(s, ".")
	digits := strings.TrimLeft(intPart+fracPart, "0")
	if digits == "" {
		return 1
	}
	return len(digits)
}

// rawDigitCount returns the number of base-10 digits in |m|, treating 0 as
// having 1 digit.
func rawDigitCount(m *big.Int) int {
	if m.Sign() == 0 {
		return 1
	}
	return len(new(big.Int).Abs(m).Text(10))
}

// highestDigit returns the digit index (power of ten) of d's most
// significant digit, e.g. 1: 0, 120: 2, 0.012: -2.
func highestDigit(d *Decimal) int {
	if d.mantissa.Sign() == 0 {
		return 0
	}
	return d.exponent + rawDigitCount(d.mantissa) - 1
}

// leastSigFig returns the digit index of d's least significant tracked
// digit: for an exact value this is simply its exponent; for a tracked
// value it is derived from the sig-fig count relative to the highest
// digit.
func leastSigFig(d *Decimal) int {
	if d.sigFigs >= Infinite {
		return d.exponent
	}
	return highestDigit(d) - d.sigFigs + 1
}

// normalize strips trailing zero digits from the mantissa (folding them
// into the exponent), and forces exponent to 0 for a zero mantissa. This
// is the invariant every constructor and operation must restore before
// returning.
func normalize(d *Decimal) *Decimal {
	if d.undefined {
		return d
	}
	if d.mantissa.Sign() == 0 {
		d.mantissa = big.NewInt(0)
		d.exponent = 0
		return d
	}
	ten := big.NewInt(10)
	m := new(big.Int).Set(d.mantissa)
	mod := new(big.Int)
	for {
		mod.Mod(m, ten)
		if mod.Sign() != 0 {
			break
		}
		m.Div(m, ten)
		d.exponent++
	}
	d.mantissa = m
	return d
}

// bakeSigFigs truncates the mantissa down to its tracked significant-figure
// count when that count is smaller than the raw mantissa's digit count.
// This realizes the deferred-rounding rule: sig figs are not re-cut into
// the mantissa until an operator of a different kind is about to apply.
func bakeSigFigs(d *Decimal) *Decimal {
	if d.undefined || d.sigFigs >= Infinite {
		return d
	}
	raw := rawDigitCount(d.mantissa)
	if raw <= d.sigFigs {
		return d
	}
	return Truncate(d, d.sigFigs, true)
}

// prepareForOp bakes d's sig figs into its mantissa if the upcoming
// operator kind differs from the kind last applied to d.
func prepareForOp(d *Decimal, kind LastOp) *Decimal {
	if d.lastOp != OpNone && d.lastOp != kind {
		return bakeSigFigs(d)
	}
	return d
}

// Truncate removes least-significant digits from d's mantissa until at
// most precision digits remain, rounding half-to-even on the pivot digit
// when round is true (otherwise truncating toward zero).
func Truncate(d *Decimal, precision int, round bool) *Decimal {
	if d.undefined {
		return d
	}
	raw := rawDigitCount(d.mantissa)
	if raw <= precision {
		return d
	}
	drop := raw - precision
	ten := big.NewInt(10)
	divisor := new(big.Int).Exp(ten, big.NewInt(int64(drop)), nil)

	neg := d.mantissa.Sign() < 0
	abs := new(big.Int).Abs(d.mantissa)
	q, r := new(big.Int).QuoRem(abs, divisor, new(big.Int))

	if round && r.Sign() != 0 {
		twice := new(big.Int).Lsh(r, 1)
		cmp := twice.Cmp(divisor)
		roundUp := false
		switch {
		case cmp > 0:
			roundUp = true
		case cmp == 0:
			// Tie: round half to even using the pivot digit (q's parity).
			roundUp = q.Bit(0) == 1
		}
		if roundUp {
			q.Add(q, big.NewInt(1))
		}
	}
	if neg {
		q.Neg(q)
	}
	out := &Decimal{mantissa: q, exponent: d.exponent + drop, sigFigs: d.sigFigs, lastOp: d.lastOp}
	return normalize(out)
}

func alignExponents(a, b *Decimal) (ma, mb *big.Int, exp int) {
	if a.exponent == b.exponent {
		return new(big.Int).Set(a.mantissa), new(big.Int).Set(b.mantissa), a.exponent
	}
	ten := big.NewInt(10)
	if a.exponent < b.exponent {
		shift := b.exponent - a.exponent
		scale := new(big.Int).Exp(ten, big.NewInt(int64(shift)), nil)
		return new(big.Int).Set(a.mantissa), new(big.Int).Mul(b.mantissa, scale), a.exponent
	}
	shift := a.exponent - b.exponent
	scale := new(big.Int).Exp(ten, big.NewInt(int64(shift)), nil)
	return new(big.Int).Mul(a.mantissa, scale), new(big.Int).Set(b.mantissa), b.exponent
}

func isExact(d *Decimal) bool { return d.sigFigs >= Infinite }

// addsubSigFigs applies the +/- sig-fig propagation rule to the result,
// given the (already baked) operands.
func addsubSigFigs(a, b *Decimal, result *Decimal) int {
	if isExact(a) && isExact(b) {
		return Infinite
	}
	// An exact operand imposes no precision bound of its own; the result's
	// precision is governed entirely by whichever operand is inexact.
	var least int
	switch {
	case isExact(a):
		least = leastSigFig(b)
	case isExact(b):
		least = leastSigFig(a)
	default:
		least = leastSigFig(a)
		if lb := leastSigFig(b); lb > least {
			least = lb
		}
	}
	sf := highestDigit(result) - least + 1
	if sf < 1 {
		sf = 1
	}
	return sf
}

func muldivSigFigs(a, b *Decimal) int {
	if a.sigFigs < b.sigFigs {
		return a.sigFigs
	}
	return b.sigFigs
}

// Add returns a + b.
func Add(a, b *Decimal) *Decimal {
	if a.undefined || b.undefined {
		return Undefined()
	}
	a = prepareForOp(a, OpAddSub)
	b = prepareForOp(b, OpAddSub)
	ma, mb, exp := alignExponents(a, b)
	sum := new(big.Int).Add(ma, mb)
	result := normalize(&Decimal{mantissa: sum, exponent: exp, lastOp: OpAddSub})
	result.sigFigs = addsubSigFigs(a, b, result)
	return result
}

// Sub returns a - b.
func Sub(a, b *Decimal) *Decimal {
	if a.undefined || b.undefined {
		return Undefined()
	}
	a = prepareForOp(a, OpAddSub)
	b = prepareForOp(b, OpAddSub)
	ma, mb, exp := alignExponents(a, b)
	diff := new(big.Int).Sub(ma, mb)
	result := normalize(&Decimal{mantissa: diff, exponent: exp, lastOp: OpAddSub})
	result.sigFigs = addsubSigFigs(a, b, result)
	return result
}

// Neg returns -a, preserving sig figs and last-operation kind.
func Neg(a *Decimal) *Decimal {
	if a.undefined {
		return Undefined()
	}
	out := &Decimal{mantissa: new(big.Int).Neg(a.mantissa), exponent: a.exponent, sigFigs: a.sigFigs, lastOp: a.lastOp}
	return normalize(out)
}

// Mul returns a * b.
func Mul(a, b *Decimal) *Decimal {
	if a.undefined || b.undefined {
		return Undefined()
	}
	a = prepareForOp(a, OpMulDiv)
	b = prepareForOp(b, OpMulDiv)
	m := new(big.Int).Mul(a.mantissa, b.mantissa)
	result := normalize(&Decimal{mantissa: m, exponent: a.exponent + b.exponent, lastOp: OpMulDiv})
	result.sigFigs = muldivSigFigs(a, b)
	return result
}

// Div returns a / b, truncated to MaxPrecision significant digits.
func Div(a, b *Decimal) (*Decimal, error) {
	if a.undefined || b.undefined {
		return Undefined(), nil
	}
	if b.mantissa.Sign() == 0 {
		return nil, newError(KindDivisionByZero, "division by zero")
	}
	a = prepareForOp(a, OpMulDiv)
	b = prepareForOp(b, OpMulDiv)

	if a.mantissa.Sign() == 0 {
		result := Zero()
		result.lastOp = OpMulDiv
		result.sigFigs = muldivSigFigs(a, b)
		return result, nil
	}

	delta := MaxPrecision - (rawDigitCount(a.mantissa) - rawDigitCount(b.mantissa))
	if delta < 0 {
		delta = 0
	}
	ten := big.NewInt(10)
	shift := new(big.Int).Exp(ten, big.NewInt(int64(delta)), nil)
	shiftedDividend := new(big.Int).Mul(a.mantissa, shift)

	neg := (shiftedDividend.Sign() < 0) != (b.mantissa.Sign() < 0)
	num := new(big.Int).Abs(shiftedDividend)
	den := new(big.Int).Abs(b.mantissa)
	q, r := new(big.Int).QuoRem(num, den, new(big.Int))
	if r.Sign() != 0 {
		twice := new(big.Int).Lsh(r, 1)
		cmp := twice.Cmp(den)
		if cmp > 0 || (cmp == 0 && q.Bit(0) == 1) {
			q.Add(q, big.NewInt(1))
		}
	}
	if neg {
		q.Neg(q)
	}
	result := normalize(&Decimal{mantissa: q, exponent: a.exponent - b.exponent - delta, lastOp: OpMulDiv})
	result.sigFigs = muldivSigFigs(a, b)
	result = Truncate(result, MaxPrecision, true)
	return result, nil
}

// toRat converts d to an exact big.Rat, ignoring sig figs (used by Mod,
// which operates at infinite precision).
func toRat(d *Decimal) *big.Rat {
	r := new(big.Rat).SetInt(d.mantissa)
	if d.exponent == 0 {
		return r
	}
	ten := big.NewInt(10)
	if d.exponent > 0 {
		scale := new(big.Int).Exp(ten, big.NewInt(int64(d.exponent)), nil)
		r.Mul(r, new(big.Rat).SetInt(scale))
	} else {
		scale := new(big.Int).Exp(ten, big.NewInt(int64(-d.exponent)), nil)
		r.Quo(r, new(big.Rat).SetInt(scale))
	}
	return r
}

func ratToDecimal(r *big.Rat, exponent int) *Decimal {
	ten := big.NewInt(10)
	scale := new(big.Int).Exp(ten, big.NewInt(int64(-exponent)), nil)
	scaled := new(big.Rat).Mul(r, new(big.Rat).SetInt(scale))
	// scaled should be an integer (we always pick exponent so that it is).
	num := new(big.Int).Quo(scaled.Num(), scaled.Denom())
	return normalize(&Decimal{mantissa: num, exponent: exponent, sigFigs: Infinite})
}

// Mod returns a - trunc(a/b)*b computed at exact (infinite) precision;
// sig figs are temporarily suspended for the intermediate truncated
// quotient.
func Mod(a, b *Decimal) (*Decimal, error) {
	if a.undefined || b.undefined {
		return Undefined(), nil
	}
	if b.mantissa.Sign() == 0 {
		return nil, newError(KindDivisionByZero, "modulo by zero")
	}
	ra, rb := toRat(a), toRat(b)
	quotient := new(big.Rat).Quo(ra, rb)
	intQuotient := new(big.Int).Quo(quotient.Num(), quotient.Denom()) // truncates toward zero
	scaledBack := new(big.Rat).Mul(new(big.Rat).SetInt(intQuotient), rb)
	remainder := new(big.Rat).Sub(ra, scaledBack)

	exponent := a.exponent
	if b.exponent < exponent {
		exponent = b.exponent
	}
	result := ratToDecimal(remainder, exponent)
	result.lastOp = OpMulDiv
	result.sigFigs = muldivSigFigs(a, b)
	return result, nil
}

// Cmp compares a and b as real numbers, aligning exponents first. It
// returns -1, 0, or 1.
func Cmp(a, b *Decimal) int {
	if a.undefined || b.undefined {
		if a.undefined && b.undefined {
			return 0
		}
	}
	ma, mb, _ := alignExponents(a, b)
	return ma.Cmp(mb)
}

// Equals defines equality on the normalized representation. Since every
// constructor and operation normalizes its result, this reduces to
// comparing the aligned integer values.
func Equals(a, b *Decimal) bool {
	if a.undefined || b.undefined {
		return a.undefined == b.undefined
	}
	return Cmp(a, b) == 0
}

// Float64 converts d to the nearest float64 (used by Pow/Exp/trig and by
// host-facing numeric conversions).
func (d *Decimal) Float64() float64 {
	if d.undefined {
		return math.NaN()
	}
	f := new(big.Float).SetInt(d.mantissa)
	if d.exponent != 0 {
		scale := new(big.Float).SetFloat64(math.Pow(10, float64(d.exponent)))
		f.Mul(f, scale)
	}
	out, _ := f.Float64()
	return out
}

// AsInt returns d's value as an int64 and true if d is an exact integer
// that fits, otherwise (0, false).
func (d *Decimal) AsInt() (int64, bool) {
	if d.undefined || d.exponent < 0 {
		return 0, false
	}
	v := new(big.Int).Set(d.mantissa)
	if d.exponent > 0 {
		ten := big.NewInt(10)
		scale := new(big.Int).Exp(ten, big.NewInt(int64(d.exponent)), nil)
		v.Mul(v, scale)
	}
	if !v.IsInt64() {
		return 0, false
	}
	return v.Int64(), true
}

// Pow returns base^exp. Non-negative small integer exponents are computed
// by exact repeated multiplication; otherwise the exponent is decomposed
// into chunks of at most 100 and evaluated in floating point, staying
// within double range and failing with math-overflow if decomposition
// runs away.
func Pow(base, exp *Decimal) (*Decimal, error) {
	if base.undefined || exp.undefined {
		return Undefined(), nil
	}
	if n, ok := exp.AsInt(); ok && n >= 0 && n <= maxPowSteps {
		result := One()
		b := base
		for i := int64(0); i < n; i++ {
			result = Mul(result, b)
		}
		return result, nil
	}

	baseF := base.Float64()
	expF := exp.Float64()
	acc := 1.0
	remaining := expF
	steps := 0
	for remaining != 0 {
		steps++
		if steps > maxDecompositionSteps {
			return nil, newError(KindMathOverflow, "math overflow: exponent decomposition did not converge")
		}
		chunk := remaining
		if chunk > 100 {
			chunk = 100
		} else if chunk < -100 {
			chunk = -100
		}
		acc *= math.Pow(baseF, chunk)
		remaining -= chunk
	}
	if math.IsInf(acc, 0) || math.IsNaN(acc) {
		return nil, newError(KindMathOverflow, "math overflow: result out of range")
	}
	return NewFromFloat(acc), nil
}

// Exp returns e^d.
func Exp(d *Decimal) (*Decimal, error) {
	if d.undefined {
		return Undefined(), nil
	}
	f := d.Float64()
	steps := int(math.Abs(f)/100) + 1
	if steps > maxDecompositionSteps {
		return nil, newError(KindMathOverflow, "math overflow: exp argument too large")
	}
	out := math.Exp(f)
	if math.IsInf(out, 0) {
		return nil, newError(KindMathOverflow, "math overflow: exp result out of range")
	}
	return NewFromFloat(out), nil
}

// reduceAngle pre-reduces a radian angle modulo 2*pi into (-pi, pi]
// before handing it to a trigonometric function.
func reduceAngle(f float64) float64 {
	const twoPi = 2 * math.Pi
	r := math.Mod(f, twoPi)
	if r > math.Pi {
		r -= twoPi
	} else if r <= -math.Pi {
		r += twoPi
	}
	return r
}

// Sin, Cos, and Tan evaluate the trigonometric functions after reducing
// the input modulo 2*pi.
func Sin(d *Decimal) (*Decimal, error) {
	if d.undefined {
		return Undefined(), nil
	}
	return NewFromFloat(math.Sin(reduceAngle(d.Float64()))), nil
}

func Cos(d *Decimal) (*Decimal, error) {
	if d.undefined {
		return Undefined(), nil
	}
	return NewFromFloat(math.Cos(reduceAngle(d.Float64()))), nil
}

func Tan(d *Decimal) (*Decimal, error) {
	if d.undefined {
		return Undefined(), nil
	}
	angle := reduceAngle(d.Float64())
	c := math.Cos(angle)
	if c == 0 {
		return nil, newError(KindMathOverflow, "math overflow: tan undefined at this angle")
	}
	return NewFromFloat(math.Tan(angle)), nil
}

// Sqrt returns the square root of d, failing with a domain error for
// negative operands.
func Sqrt(d *Decimal) (*Decimal, error) {
	if d.undefined {
		return Undefined(), nil
	}
	if d.mantissa.Sign() < 0 {
		return nil, newError(KindDomain, "domain error: sqrt of negative number")
	}
	f := d.Float64()
	return NewFromFloat(math.Sqrt(f)), nil
}

// Abs returns |d|.
func Abs(d *Decimal) *Decimal {
	if d.undefined {
		return Undefined()
	}
	if d.mantissa.Sign() < 0 {
		return Neg(d)
	}
	return d
}

// String renders d in fixed or scientific notation: fixed form inside
// [1e-9, 1e10), scientific outside that band or when fixed form cannot
// represent the tracked significant figures.
func (d *Decimal) String() string {
	if d.undefined {
		return "undefined"
	}
	if d.mantissa.Sign() == 0 {
		return "0"
	}

	// Rendering realizes any sig-fig truncation still deferred in the
	// mantissa (see bakeSigFigs): the display always reflects the tracked
	// precision even though arithmetic keeps the extra digits around until
	// an operator of a different kind forces the bake.
	disp := d
	if d.sigFigs < Infinite && rawDigitCount(d.mantissa) > d.sigFigs {
		disp = bakeSigFigs(d)
	}

	neg := disp.mantissa.Sign() < 0
	digits := new(big.Int).Abs(disp.mantissa).Text(10)
	exponent := disp.exponent

	// Pad the displayed digit string to the tracked significant-figure
	// count (display-only: it does not change the underlying mantissa).
	if disp.sigFigs < Infinite && disp.sigFigs > len(digits) {
		pad := disp.sigFigs - len(digits)
		digits += strings.Repeat("0", pad)
		exponent -= pad
	}

	hd := exponent + len(digits) - 1
	// A positive exponent left after padding means fixed form would append
	// zeros beyond the tracked significant figures.
	tooFewFigures := disp.sigFigs < Infinite && exponent > 0
	var out string
	if hd < -9 || hd >= 10 || tooFewFigures {
		out = scientificForm(digits, hd, neg)
	} else {
		out = fixedForm(digits, exponent, neg)
	}
	return out
}

func fixedForm(digits string, exponent int, neg bool) string {
	var sb strings.Builder
	if neg {
		sb.WriteByte('-')
	}
	if exponent >= 0 {
		sb.WriteString(digits)
		sb.WriteString(strings.Repeat("0", exponent))
		return sb.String()
	}
	fracLen := -exponent
	if fracLen >= len(digits) {
		sb.WriteString("0.")
		sb.WriteString(strings.Repeat("0", fracLen-len(digits)))
		sb.WriteString(digits)
	} else {
		intPart := digits[:len(digits)-fracLen]
		fracPart := digits[len(digits)-fracLen:]
		sb.WriteString(intPart)
		sb.WriteByte('.')
		sb.WriteString(fracPart)
	}
	return sb.String()
}

func scientificForm(digits string, highestDigit int, neg bool) string {
	var sb strings.Builder
	if neg {
		sb.WriteByte('-')
	}
	sb.WriteByte(digits[0])
	if len(digits) > 1 {
		sb.WriteByte('.')
		sb.WriteString(digits[1:])
	}
	sb.WriteByte('E')
	if highestDigit >= 0 {
		sb.WriteByte('+')
	}
	sb.WriteString(bigIntToString(highestDigit))
	return sb.String()
}

func bigIntToString(n int) string {
	return new(big.Int).SetInt64(int64(n)).Text(10)
}
