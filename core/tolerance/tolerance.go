// Package tolerance resolves numeric-response acceptance intervals.
//
// An authored tolerance specification (exact match, percent margin,
// absolute margin, inclusive range, significant digits, decimal places)
// plus a target value yields a lower and upper bound. All bound arithmetic
// is exact decimal arithmetic, and all serialization of bounds happens
// through Dec.Wire so producers cannot drift out of the import format's
// strict decimal notation.
package tolerance

import (
	"fmt"

	"github.com/longhornadam/QuizForge-sub000/core/quizerr"
)

// Mode identifies a tolerance specification kind.
type Mode int

const (
	// Exact accepts only the target value.
	Exact Mode = iota
	// PercentMargin accepts target ± target*margin/100.
	PercentMargin
	// AbsoluteMargin accepts target ± margin.
	AbsoluteMargin
	// Range accepts any value in [Min, Max].
	Range
	// SigFigs accepts values that round to the target at N significant digits.
	SigFigs
	// DecimalPlaces accepts values that round to the target at N decimal places.
	DecimalPlaces
)

// String returns the mode's authoring-facing label.
func (m Mode) String() string {
	switch m {
	case Exact:
		return "exact"
	case PercentMargin:
		return "percent-margin"
	case AbsoluteMargin:
		return "absolute-margin"
	case Range:
		return "range"
	case SigFigs:
		return "significant-digits"
	case DecimalPlaces:
		return "decimal-places"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Spec is one authored tolerance specification. Exactly the fields for its
// Mode are meaningful.
type Spec struct {
	Mode   Mode
	Margin Dec // PercentMargin, AbsoluteMargin
	Min    Dec // Range
	Max    Dec // Range
	Digits int // SigFigs, DecimalPlaces
}

// Bounds is a resolved acceptance interval. StrictLower marks the lower
// bound exclusive; precision modes round asymmetrically (the value exactly
// half an ulp below the target rounds away, so it must not be accepted).
type Bounds struct {
	Lower       Dec
	Upper       Dec
	StrictLower bool
}

// Resolve computes the acceptance interval for target under spec.
// zeroFallback is the absolute margin substituted when a percent margin is
// applied to a zero target (a percentage of zero is always zero, which
// would reject every response but exactly 0).
func Resolve(target Dec, spec Spec, zeroFallback Dec) (Bounds, error) {
	switch spec.Mode {
	case Exact:
		return Bounds{Lower: target, Upper: target}, nil

	case PercentMargin:
		offset := target.Abs().Mul(spec.Margin.Abs())
		// Divide by 100 exactly: shift the exponent.
		offset = Dec{coef: offset.coefOrZero(), exp: offset.exp - 2}
		if target.IsZero() {
			offset = zeroFallback.Abs()
		}
		return Bounds{Lower: target.Sub(offset), Upper: target.Add(offset)}, nil

	case AbsoluteMargin:
		offset := spec.Margin.Abs()
		return Bounds{Lower: target.Sub(offset), Upper: target.Add(offset)}, nil

	case Range:
		if spec.Min.Cmp(spec.Max) > 0 {
			return Bounds{}, &quizerr.BoundsError{
				Mode:    spec.Mode.String(),
				Message: fmt.Sprintf("minimum %s exceeds maximum %s", spec.Min, spec.Max),
			}
		}
		return Bounds{Lower: spec.Min, Upper: spec.Max}, nil

	case SigFigs:
		if spec.Digits < 0 {
			return Bounds{}, &quizerr.BoundsError{Mode: spec.Mode.String(), Message: "digit count must be non-negative"}
		}
		var offset Dec
		if target.IsZero() {
			offset = halfUlp(0) // 0.5
		} else {
			offset = halfUlp(target.adjustedExp() - spec.Digits + 1)
		}
		return Bounds{Lower: target.Sub(offset), Upper: target.Add(offset), StrictLower: true}, nil

	case DecimalPlaces:
		if spec.Digits < 0 {
			return Bounds{}, &quizerr.BoundsError{Mode: spec.Mode.String(), Message: "place count must be non-negative"}
		}
		offset := halfUlp(-spec.Digits) // 0.5 * 10^-digits
		return Bounds{Lower: target.Sub(offset), Upper: target.Add(offset), StrictLower: true}, nil

	default:
		return Bounds{}, &quizerr.BoundsError{Mode: spec.Mode.String(), Message: "unsupported tolerance mode"}
	}
}

// Validate reports whether a resolved interval is internally consistent
// with its target: lower ≤ target ≤ upper.
func (b Bounds) Validate(target Dec) error {
	if b.Lower.Cmp(b.Upper) > 0 {
		return &quizerr.BoundsError{Message: fmt.Sprintf("lower bound %s exceeds upper bound %s", b.Lower, b.Upper)}
	}
	if target.Cmp(b.Lower) < 0 || target.Cmp(b.Upper) > 0 {
		return &quizerr.BoundsError{Message: fmt.Sprintf("target %s outside resolved bounds [%s, %s]", target, b.Lower, b.Upper)}
	}
	return nil
}
