package cantus

import (
	"github.com/cantus-lang/cantus/internal/bignum"
	"github.com/cantus-lang/cantus/internal/builtin"
	"github.com/cantus-lang/cantus/internal/cantuserr"
	"github.com/cantus-lang/cantus/internal/object"
)

// AngleMode selects the unit sin/cos/tan expect their argument in, one of
// the "Recognized configuration" knobs a host can set before running any
// source.
type AngleMode int

const (
	Radians AngleMode = iota
	Degrees
)

// piDigits is precomputed since internal/bignum exports no Pi constant;
// 50 digits is comfortably past bignum's own working precision.
const piDigits = "3.14159265358979323846264338327950288419716939937510"

// withAngleMode returns reg unchanged for Radians (internal/builtin's
// sin/cos/tan already operate in radians), or reg itself with sin/cos/tan
// re-registered in place to convert their argument from degrees first.
func withAngleMode(reg *builtin.Registry, mode AngleMode) *builtin.Registry {
	if mode == Radians {
		return reg
	}

	pi, ok := bignum.NewFromString(piDigits)
	if !ok {
		return reg
	}
	oneEighty := bignum.NewFromInt(180)

	toRadians := func(deg *bignum.Decimal) (*bignum.Decimal, error) {
		return bignum.Div(bignum.Mul(deg, pi), oneEighty)
	}

	wrap := func(name string, fn func(*bignum.Decimal) (*bignum.Decimal, error)) *builtin.Builtin {
		return &builtin.Builtin{
			Name:    name,
			MinArgs: 1,
			MaxArgs: 1,
			Invoke: func(args []object.Value) (object.Value, error) {
				n, ok := object.ResolveObj(args[0]).(*object.Number)
				if !ok {
					return nil, cantuserr.New(cantuserr.EvaluatorError, name+" requires a Number argument")
				}
				rad, err := toRadians(n.Value)
				if err != nil {
					return nil, err
				}
				result, err := fn(rad)
				if err != nil {
					return nil, err
				}
				return object.NewNumber(result), nil
			},
		}
	}

	reg.Register(wrap("sin", bignum.Sin))
	reg.Register(wrap("cos", bignum.Cos))
	reg.Register(wrap("tan", bignum.Tan))
	return reg
}
